package utils

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestJWTRoundTrip(t *testing.T) {
	token, err := GenerateJWT("u1", "ann@example.com", "moderator", "secret")
	if err != nil {
		t.Fatal(err)
	}

	claims, err := ValidateJWT(token, "secret")
	if err != nil {
		t.Fatal(err)
	}
	if claims.UserID != "u1" || claims.Email != "ann@example.com" || claims.Role != "moderator" {
		t.Errorf("unexpected claims %+v", claims)
	}
	if claims.ExpiresAt == nil || time.Until(claims.ExpiresAt.Time) > TokenTTL {
		t.Errorf("expiry not within TokenTTL: %v", claims.ExpiresAt)
	}
}

func TestGenerateJWTRequiresSecret(t *testing.T) {
	if _, err := GenerateJWT("u1", "a@b.c", "admin", ""); err == nil {
		t.Error("expected an error without a secret")
	}
}

func TestValidateJWTRejects(t *testing.T) {
	good, _ := GenerateJWT("u1", "a@b.c", "admin", "secret")

	expired, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		UserID: "u1",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	}).SignedString([]byte("secret"))

	otherAlg, _ := jwt.NewWithClaims(jwt.SigningMethodHS512, &Claims{
		UserID: "u1",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte("secret"))

	tests := []struct {
		name   string
		token  string
		secret string
	}{
		{"wrong secret", good, "other"},
		{"expired", expired, "secret"},
		{"other algorithm", otherAlg, "secret"},
		{"garbage", "not.a.token", "secret"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ValidateJWT(tt.token, tt.secret)
			if !errors.Is(err, ErrInvalidToken) {
				t.Errorf("expected ErrInvalidToken, got %v", err)
			}
		})
	}
}
