package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/licensepro/alvara-backend/pkg/enums"
)

// License is a regulatory document record owned by exactly one company.
// Its expiration classification is derived at read time, never stored.
type License struct {
	ID             uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	CompanyID      uuid.UUID         `gorm:"column:company_id;type:uuid;not null;index"`
	Name           string            `gorm:"column:name;not null"`
	Type           enums.LicenseType `gorm:"column:type;not null"`
	ExpirationDate time.Time         `gorm:"column:expiration_date;not null"`
	Notes          *string           `gorm:"column:notes"`
	Files          []LicenseFile     `gorm:"foreignKey:LicenseID"`
	CreatedAt      time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

// CurrentFile returns the single current attachment, if any.
func (l License) CurrentFile() *LicenseFile {
	for i := range l.Files {
		if l.Files[i].Kind == enums.AttachmentKindCurrent {
			return &l.Files[i]
		}
	}
	return nil
}

// RenewalDocuments returns the renewal attachments in upload order.
func (l License) RenewalDocuments() []LicenseFile {
	var docs []LicenseFile
	for _, f := range l.Files {
		if f.Kind == enums.AttachmentKindRenewal {
			docs = append(docs, f)
		}
	}
	return docs
}
