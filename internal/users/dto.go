package users

import (
	"time"

	"github.com/google/uuid"

	"github.com/licensepro/alvara-backend/pkg/db/models"
	"github.com/licensepro/alvara-backend/pkg/enums"
)

// UserDTO exposes directory data in API responses.
type UserDTO struct {
	ID        uuid.UUID      `json:"id"`
	Name      string         `json:"name"`
	Email     string         `json:"email"`
	Role      enums.UserRole `json:"role"`
	Active    bool           `json:"active"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// CreateUserInput holds creation-time data for a new directory entry.
type CreateUserInput struct {
	Name   string
	Email  string
	Role   enums.UserRole
	Active *bool
}

// UpdateUserInput captures the allowed user fields for mutation.
// Nil pointers leave the stored value untouched.
type UpdateUserInput struct {
	Name   *string
	Email  *string
	Role   *enums.UserRole
	Active *bool
}

// FromModel maps the persisted user into a DTO.
func FromModel(m *models.User) *UserDTO {
	if m == nil {
		return nil
	}
	return &UserDTO{
		ID:        m.ID,
		Name:      m.Name,
		Email:     m.Email,
		Role:      m.Role,
		Active:    m.Active,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// ToModel prepares the GORM model from creation input, supplying defaults.
func (c CreateUserInput) ToModel() *models.User {
	model := &models.User{
		ID:     uuid.New(),
		Name:   c.Name,
		Email:  c.Email,
		Role:   c.Role,
		Active: true,
	}
	if c.Role == "" {
		model.Role = enums.UserRoleUser
	}
	if c.Active != nil {
		model.Active = *c.Active
	}
	return model
}
