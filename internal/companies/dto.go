package companies

import (
	"time"

	"github.com/google/uuid"

	"github.com/licensepro/alvara-backend/pkg/db/models"
	"github.com/licensepro/alvara-backend/pkg/types"
)

// CompanyDTO exposes company data in API responses.
type CompanyDTO struct {
	ID           uuid.UUID     `json:"id"`
	Name         string        `json:"name"`
	FantasyName  string        `json:"fantasy_name"`
	CNPJ         string        `json:"cnpj"`
	Active       bool          `json:"active"`
	Latitude     *string       `json:"latitude,omitempty"`
	Longitude    *string       `json:"longitude,omitempty"`
	RenewalLinks types.JSONMap `json:"renewal_links,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// CreateCompanyInput holds creation-time data for a new company.
type CreateCompanyInput struct {
	Name         string
	FantasyName  string
	CNPJ         string
	Active       *bool
	Latitude     *string
	Longitude    *string
	RenewalLinks types.JSONMap
}

// UpdateCompanyInput captures the allowed company fields for mutation.
// Nil pointers leave the stored value untouched.
type UpdateCompanyInput struct {
	Name         *string
	FantasyName  *string
	CNPJ         *string
	Active       *bool
	Latitude     *string
	Longitude    *string
	RenewalLinks *types.JSONMap
}

// FromModel maps the persisted company into a DTO.
func FromModel(m *models.Company) *CompanyDTO {
	if m == nil {
		return nil
	}
	return &CompanyDTO{
		ID:           m.ID,
		Name:         m.Name,
		FantasyName:  m.FantasyName,
		CNPJ:         m.CNPJ,
		Active:       m.Active,
		Latitude:     m.Latitude,
		Longitude:    m.Longitude,
		RenewalLinks: m.RenewalLinks,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

// ToModel prepares the GORM model from creation input, supplying defaults.
func (c CreateCompanyInput) ToModel() *models.Company {
	model := &models.Company{
		ID:           uuid.New(),
		Name:         c.Name,
		FantasyName:  c.FantasyName,
		CNPJ:         c.CNPJ,
		Active:       true,
		Latitude:     c.Latitude,
		Longitude:    c.Longitude,
		RenewalLinks: c.RenewalLinks,
	}
	if c.Active != nil {
		model.Active = *c.Active
	}
	return model
}
