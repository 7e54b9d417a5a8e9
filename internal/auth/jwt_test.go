package auth

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
)

func TestGenerateAndValidateTokens(t *testing.T) {
	a := NewJWTAuthenticator("access-secret", "refresh-secret", "gigrate", "gigrate")

	access, refresh, err := a.GenerateTokens(42, "user")
	if err != nil {
		t.Fatalf("generate tokens: %v", err)
	}
	if access == "" || refresh == "" {
		t.Fatal("expected non-empty token pair")
	}

	token, err := a.ValidateAccessToken(access)
	if err != nil {
		t.Fatalf("validate access token: %v", err)
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		t.Fatal("expected map claims")
	}
	if sub, _ := claims["sub"].(float64); int64(sub) != 42 {
		t.Fatalf("expected sub 42, got %v", claims["sub"])
	}
	if role, _ := claims["role"].(string); role != "user" {
		t.Fatalf("expected role user, got %v", claims["role"])
	}

	if _, err := a.ValidateRefreshToken(refresh); err != nil {
		t.Fatalf("validate refresh token: %v", err)
	}
}

func TestValidateRejectsWrongSecret(t *testing.T) {
	a := NewJWTAuthenticator("access-secret", "refresh-secret", "gigrate", "gigrate")
	b := NewJWTAuthenticator("other-secret", "other-refresh", "gigrate", "gigrate")

	access, _, err := a.GenerateTokens(1, "user")
	if err != nil {
		t.Fatalf("generate tokens: %v", err)
	}
	if _, err := b.ValidateAccessToken(access); err == nil {
		t.Fatal("expected validation to fail with a different secret")
	}
}

func TestAccessTokenIsNotARefreshToken(t *testing.T) {
	a := NewJWTAuthenticator("access-secret", "refresh-secret", "gigrate", "gigrate")

	access, _, err := a.GenerateTokens(1, "user")
	if err != nil {
		t.Fatalf("generate tokens: %v", err)
	}
	if _, err := a.ValidateRefreshToken(access); err == nil {
		t.Fatal("expected access token to fail refresh validation")
	}
}
