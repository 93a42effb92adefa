package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/licensepro/alvara-backend/pkg/enums"
)

// User is a directory record. It carries no credential: sessions pick their
// role at login and are not verified against this table.
type User struct {
	ID        uuid.UUID      `gorm:"column:id;type:uuid;primaryKey"`
	Name      string         `gorm:"column:name;not null"`
	Email     string         `gorm:"column:email;not null"`
	Role      enums.UserRole `gorm:"column:role;not null;default:'user'"`
	Active    bool           `gorm:"column:active;not null;default:true"`
	CreatedAt time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}
