package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/licensepro/alvara-backend/pkg/types"
)

// Company is a legal entity/unit that holds licenses.
type Company struct {
	ID           uuid.UUID     `gorm:"column:id;type:uuid;primaryKey"`
	Name         string        `gorm:"column:name;not null"`
	FantasyName  string        `gorm:"column:fantasy_name;not null"`
	CNPJ         string        `gorm:"column:cnpj;not null"`
	Active       bool          `gorm:"column:active;not null;default:true"`
	Latitude     *string       `gorm:"column:latitude"`
	Longitude    *string       `gorm:"column:longitude"`
	RenewalLinks types.JSONMap `gorm:"column:renewal_links;type:jsonb"`
	CreatedAt    time.Time     `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time     `gorm:"column:updated_at;autoUpdateTime"`
}
