package utils

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
)

func TestInitSecret_UsesKeyConfiguredAfterStartup(t *testing.T) {
	// The key arrives via .env, which is loaded well after this package's
	// init; InitSecret must pick up the value present at call time.
	t.Setenv("JWT_SECRET", "env-configured-key")
	if err := InitSecret(); err != nil {
		t.Fatalf("failed to init secret: %v", err)
	}

	token, err := GenerateToken("sujan", "u1")
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte("env-configured-key"), nil
	})
	if err != nil || !parsed.Valid {
		t.Fatalf("token not signed with the configured key: %v", err)
	}

	claims, err := ValidateToken(token)
	if err != nil {
		t.Fatalf("failed to validate token: %v", err)
	}
	if claims.UserID != "u1" || claims.Username != "sujan" {
		t.Errorf("expected claims u1/sujan, got %s/%s", claims.UserID, claims.Username)
	}
}

func TestInitSecret_RotatedKeyInvalidatesOldTokens(t *testing.T) {
	t.Setenv("JWT_SECRET", "first-key")
	if err := InitSecret(); err != nil {
		t.Fatalf("failed to init secret: %v", err)
	}
	token, err := GenerateToken("sujan", "u1")
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	t.Setenv("JWT_SECRET", "second-key")
	if err := InitSecret(); err != nil {
		t.Fatalf("failed to init secret: %v", err)
	}
	if _, err := ValidateToken(token); err == nil {
		t.Error("expected validation to fail after the key change")
	}
}

func TestInitSecret_MissingKey(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	if err := InitSecret(); err == nil {
		t.Error("expected an error when JWT_SECRET is unset")
	}
}
