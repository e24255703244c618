package middleware

import (
	"context"
	"errors"
	"net/http"
	"os"
	"strings"

	"coral-embed-be/config"
	"coral-embed-be/models"
	"coral-embed-be/utils"
)

type contextKey string

const UserContextKey contextKey = "user"

var errNoToken = errors.New("no bearer token")

// LookupUser loads the user a token was issued for. Tests replace it.
var LookupUser = func(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := config.GetDB().WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// ClaimsFromContext returns the claims AuthMiddleware stored on the request
func ClaimsFromContext(ctx context.Context) (*utils.Claims, bool) {
	claims, ok := ctx.Value(UserContextKey).(*utils.Claims)
	return claims, ok
}

// WithClaims stores claims on ctx the way AuthMiddleware does
func WithClaims(ctx context.Context, claims *utils.Claims) context.Context {
	return context.WithValue(ctx, UserContextKey, claims)
}

// BearerToken extracts the token of an "Authorization: Bearer" header
func BearerToken(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", errNoToken
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", errors.New("invalid authorization header format")
	}
	return parts[1], nil
}

// authenticate validates the token and checks the user still exists.
// The role stored in the database wins over the one in the token.
func authenticate(r *http.Request, token string) (*utils.Claims, *models.User, error) {
	claims, err := utils.ValidateJWT(token, os.Getenv("JWT_SECRET"))
	if err != nil {
		return nil, nil, err
	}
	user, err := LookupUser(r.Context(), claims.UserID)
	if err != nil {
		return nil, nil, err
	}
	claims.Role = string(user.Role)
	return claims, user, nil
}

// AuthMiddleware validates JWT token
func AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Skip auth check for OPTIONS requests (CORS preflight)
		if r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}

		token, err := BearerToken(r)
		if errors.Is(err, errNoToken) {
			utils.RespondUnauthorized(w, "Authorization header required")
			return
		}
		if err != nil {
			utils.RespondUnauthorized(w, "Invalid authorization header format")
			return
		}

		claims, user, err := authenticate(r, token)
		if err != nil {
			utils.RespondUnauthorized(w, "Invalid or expired token")
			return
		}
		if user.Banned {
			utils.RespondForbidden(w, "User is banned")
			return
		}

		next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
	})
}

// OptionalAuthMiddleware attaches claims when a valid token is sent and
// lets anonymous requests through untouched
func OptionalAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, err := BearerToken(r)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}
		if claims, _, err := authenticate(r, token); err == nil {
			r = r.WithContext(WithClaims(r.Context(), claims))
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole lets through users whose role ranks at least as high as role
func RequireRole(role models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Skip for OPTIONS requests (already handled by CORS middleware)
			if r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			claims, ok := ClaimsFromContext(r.Context())
			if !ok {
				utils.RespondUnauthorized(w, "Unauthorized")
				return
			}
			if models.Role(claims.Role).Rank() < role.Rank() {
				utils.RespondForbidden(w, "Insufficient permissions")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin is a helper for admin-only routes
func RequireAdmin(next http.Handler) http.Handler {
	return RequireRole(models.RoleAdmin)(next)
}

// RequireModerator is a helper for moderation routes; admins pass too
func RequireModerator(next http.Handler) http.Handler {
	return RequireRole(models.RoleModerator)(next)
}
