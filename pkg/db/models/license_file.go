package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/licensepro/alvara-backend/pkg/enums"
)

// LicenseFile is a stored attachment owned exclusively by one license:
// either the current valid copy or a renewal-process document.
type LicenseFile struct {
	ID          uuid.UUID            `gorm:"column:id;type:uuid;primaryKey"`
	LicenseID   uuid.UUID            `gorm:"column:license_id;type:uuid;not null;index"`
	Kind        enums.AttachmentKind `gorm:"column:kind;not null"`
	FileName    string               `gorm:"column:file_name;not null"`
	StorageKey  string               `gorm:"column:storage_key;not null"`
	ContentType string               `gorm:"column:content_type;not null"`
	SizeBytes   int64                `gorm:"column:size_bytes;not null"`
	Position    int                  `gorm:"column:position;not null;default:0"`
	UploadedAt  time.Time            `gorm:"column:uploaded_at;autoCreateTime"`
}
