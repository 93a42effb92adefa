package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/licensepro/alvara-backend/pkg/config"
	"github.com/licensepro/alvara-backend/pkg/enums"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "unit-test-secret",
		Issuer:            "alvara-test",
		ExpirationMinutes: 15,
	}
}

func TestMintAndParseRoundTrip(t *testing.T) {
	cfg := testJWTConfig()
	subject := uuid.New()

	signed, err := MintAccessToken(cfg, time.Now(), AccessTokenPayload{
		SubjectID: subject,
		Role:      enums.UserRoleAdmin,
		JTI:       "session-1",
	})
	if err != nil {
		t.Fatalf("mint failed: %v", err)
	}

	claims, err := ParseAccessToken(cfg, signed)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if claims.SubjectID != subject {
		t.Fatalf("subject mismatch: %s", claims.SubjectID)
	}
	if claims.Role != enums.UserRoleAdmin {
		t.Fatalf("role mismatch: %s", claims.Role)
	}
	if claims.ID != "session-1" {
		t.Fatalf("jti mismatch: %s", claims.ID)
	}
}

func TestMintRejectsInvalidRole(t *testing.T) {
	if _, err := MintAccessToken(testJWTConfig(), time.Now(), AccessTokenPayload{
		SubjectID: uuid.New(),
		Role:      enums.UserRole("superuser"),
	}); err == nil {
		t.Fatal("expected invalid role error")
	}
}

func TestMintGeneratesJTIWhenMissing(t *testing.T) {
	cfg := testJWTConfig()
	signed, err := MintAccessToken(cfg, time.Now(), AccessTokenPayload{
		SubjectID: uuid.New(),
		Role:      enums.UserRoleUser,
	})
	if err != nil {
		t.Fatalf("mint failed: %v", err)
	}
	claims, err := ParseAccessToken(cfg, signed)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if claims.ID == "" {
		t.Fatal("expected generated jti")
	}
}

func TestParseRejectsExpiredUnlessAllowed(t *testing.T) {
	cfg := testJWTConfig()
	past := time.Now().Add(-2 * time.Hour)
	signed, err := MintAccessToken(cfg, past, AccessTokenPayload{
		SubjectID: uuid.New(),
		Role:      enums.UserRoleUser,
		JTI:       "expired-session",
	})
	if err != nil {
		t.Fatalf("mint failed: %v", err)
	}

	if _, err := ParseAccessToken(cfg, signed); err == nil {
		t.Fatal("expected expiry validation error")
	}

	claims, err := ParseAccessTokenAllowExpired(cfg, signed)
	if err != nil {
		t.Fatalf("allow-expired parse failed: %v", err)
	}
	if claims.ID != "expired-session" {
		t.Fatalf("jti mismatch: %s", claims.ID)
	}
}

func TestParseRejectsWrongIssuer(t *testing.T) {
	cfg := testJWTConfig()
	signed, err := MintAccessToken(cfg, time.Now(), AccessTokenPayload{
		SubjectID: uuid.New(),
		Role:      enums.UserRoleUser,
	})
	if err != nil {
		t.Fatalf("mint failed: %v", err)
	}

	other := cfg
	other.Issuer = "someone-else"
	if _, err := ParseAccessToken(other, signed); err == nil {
		t.Fatal("expected issuer validation error")
	}
}
