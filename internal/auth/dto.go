package auth

import (
	"time"

	"github.com/google/uuid"

	"github.com/licensepro/alvara-backend/pkg/enums"
)

// LoginInput carries the role the session runs under. There is no
// credential: the endpoint is a documented convenience stub.
type LoginInput struct {
	Role enums.UserRole
}

// LoginResponse returns the minted session pair.
type LoginResponse struct {
	SubjectID    uuid.UUID      `json:"subject_id"`
	Role         enums.UserRole `json:"role"`
	AccessToken  string         `json:"access_token"`
	RefreshToken string         `json:"refresh_token"`
	ExpiresAt    time.Time      `json:"expires_at"`
	Theme        enums.Theme    `json:"theme"`
}

// RefreshInput carries the expired-or-valid access token plus the
// refresh token to rotate.
type RefreshInput struct {
	AccessToken  string
	RefreshToken string
}

// RefreshResponse returns the rotated session pair.
type RefreshResponse struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}
