package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/licensepro/alvara-backend/pkg/enums"
)

// AccessTokenPayload captures the data available when minting a JWT.
// SubjectID identifies the session, not a User row: the login flow is a
// role-selection stub and never consults the user directory.
type AccessTokenPayload struct {
	SubjectID uuid.UUID
	Role      enums.UserRole
	JTI       string
}

// AccessTokenClaims represents the typed JWT issued to clients.
type AccessTokenClaims struct {
	SubjectID uuid.UUID      `json:"subject_id"`
	Role      enums.UserRole `json:"role"`
	jwt.RegisteredClaims
}
