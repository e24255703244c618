package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"coral-embed-be/models"
	"coral-embed-be/utils"
)

const testSecret = "test-secret"

func stubUsers(t *testing.T, users ...models.User) {
	t.Helper()
	t.Setenv("JWT_SECRET", testSecret)

	byID := make(map[string]models.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}

	prev := LookupUser
	LookupUser = func(_ context.Context, id string) (*models.User, error) {
		u, ok := byID[id]
		if !ok {
			return nil, errors.New("record not found")
		}
		return &u, nil
	}
	t.Cleanup(func() { LookupUser = prev })
}

func tokenFor(t *testing.T, id string, role models.Role) string {
	t.Helper()
	token, err := utils.GenerateJWT(id, id+"@example.com", string(role), testSecret)
	if err != nil {
		t.Fatal(err)
	}
	return token
}

// echoRole writes the role found in the request context, or "anonymous"
var echoRole = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		w.Write([]byte("anonymous"))
		return
	}
	w.Write([]byte(claims.Role))
})

func serve(h http.Handler, method, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/api/comments", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestAuthMiddleware(t *testing.T) {
	stubUsers(t,
		models.User{ID: "mod", Role: models.RoleModerator},
		models.User{ID: "banned", Role: models.RoleCommenter, Banned: true},
	)

	tests := []struct {
		name     string
		header   string
		wantCode int
		wantBody string
	}{
		{"no header", "", http.StatusUnauthorized, ""},
		{"wrong scheme", "Token abc", http.StatusUnauthorized, ""},
		{"bad token", "Bearer nope", http.StatusUnauthorized, ""},
		{"unknown user", "Bearer " + tokenFor(t, "ghost", models.RoleAdmin), http.StatusUnauthorized, ""},
		{"banned user", "Bearer " + tokenFor(t, "banned", models.RoleCommenter), http.StatusForbidden, ""},
		// the stored role wins over the one in the token
		{"valid", "Bearer " + tokenFor(t, "mod", models.RoleAdmin), http.StatusOK, "moderator"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(AuthMiddleware(echoRole), "GET", tt.header)
			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantCode)
			}
			if tt.wantBody != "" && rec.Body.String() != tt.wantBody {
				t.Errorf("body = %q, want %q", rec.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestAuthMiddlewareSkipsPreflight(t *testing.T) {
	stubUsers(t)
	if rec := serve(AuthMiddleware(echoRole), http.MethodOptions, ""); rec.Code != http.StatusOK {
		t.Errorf("OPTIONS status = %d, want 200", rec.Code)
	}
}

func TestOptionalAuthMiddleware(t *testing.T) {
	stubUsers(t, models.User{ID: "c1", Role: models.RoleCommenter})

	tests := []struct {
		name   string
		header string
		want   string
	}{
		{"anonymous", "", "anonymous"},
		{"invalid token stays anonymous", "Bearer nope", "anonymous"},
		{"valid token", "Bearer " + tokenFor(t, "c1", models.RoleCommenter), "commenter"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(OptionalAuthMiddleware(echoRole), "GET", tt.header)
			if rec.Code != http.StatusOK || rec.Body.String() != tt.want {
				t.Errorf("got %d %q, want 200 %q", rec.Code, rec.Body.String(), tt.want)
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	tests := []struct {
		name     string
		gate     func(http.Handler) http.Handler
		role     models.Role
		wantCode int
	}{
		{"commenter on moderation", RequireModerator, models.RoleCommenter, http.StatusForbidden},
		{"moderator on moderation", RequireModerator, models.RoleModerator, http.StatusOK},
		{"admin on moderation", RequireModerator, models.RoleAdmin, http.StatusOK},
		{"moderator on admin", RequireAdmin, models.RoleModerator, http.StatusForbidden},
		{"admin on admin", RequireAdmin, models.RoleAdmin, http.StatusOK},
		{"unknown role", RequireModerator, models.Role("guest"), http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/api/settings", nil)
			req = req.WithContext(WithClaims(req.Context(), &utils.Claims{UserID: "u", Role: string(tt.role)}))
			rec := httptest.NewRecorder()
			tt.gate(echoRole).ServeHTTP(rec, req)
			if rec.Code != tt.wantCode {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantCode)
			}
		})
	}
}

func TestRequireRoleWithoutClaims(t *testing.T) {
	if rec := serve(RequireAdmin(echoRole), "GET", ""); rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}
