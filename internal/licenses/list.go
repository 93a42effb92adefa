package licenses

import (
	"time"

	"github.com/google/uuid"

	"github.com/licensepro/alvara-backend/pkg/db/models"
	"github.com/licensepro/alvara-backend/pkg/enums"
	pkgpagination "github.com/licensepro/alvara-backend/pkg/pagination"
)

// ListParams holds the list filters accepted by the licenses endpoint.
// Status filtering happens after classification, never in SQL.
type ListParams struct {
	CompanyID *uuid.UUID
	Type      *enums.LicenseType
	Status    *enums.LicenseStatus
	pkgpagination.Params
}

// ListResult is a single page of licenses plus the next-page cursor.
type ListResult struct {
	Items  []LicenseDTO `json:"items"`
	Cursor string       `json:"cursor"`
}

type listQuery struct {
	companyID *uuid.UUID
	typ       *enums.LicenseType
	limit     int
	cursor    *pkgpagination.Cursor
}

// LicenseDTO exposes license data plus its derived status.
type LicenseDTO struct {
	ID             uuid.UUID           `json:"id"`
	CompanyID      uuid.UUID           `json:"company_id"`
	Name           string              `json:"name"`
	Type           enums.LicenseType   `json:"type"`
	TypeName       string              `json:"type_name"`
	ExpirationDate time.Time           `json:"expiration_date"`
	Status         enums.LicenseStatus `json:"status"`
	Notes          *string             `json:"notes,omitempty"`
	CurrentFile    *AttachmentDTO      `json:"current_file,omitempty"`
	RenewalFiles   []AttachmentDTO     `json:"renewal_files,omitempty"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
}

// AttachmentDTO describes a stored license document.
type AttachmentDTO struct {
	ID          uuid.UUID            `json:"id"`
	Kind        enums.AttachmentKind `json:"kind"`
	FileName    string               `json:"file_name"`
	ContentType string               `json:"content_type"`
	SizeBytes   int64                `json:"size_bytes"`
	Position    int                  `json:"position"`
	UploadedAt  time.Time            `json:"uploaded_at"`
	SignedURL   string               `json:"signed_url,omitempty"`
}

func toAttachmentDTO(f models.LicenseFile) AttachmentDTO {
	return AttachmentDTO{
		ID:          f.ID,
		Kind:        f.Kind,
		FileName:    f.FileName,
		ContentType: f.ContentType,
		SizeBytes:   f.SizeBytes,
		Position:    f.Position,
		UploadedAt:  f.UploadedAt,
	}
}

func toLicenseDTO(m *models.License, now time.Time) *LicenseDTO {
	if m == nil {
		return nil
	}
	dto := &LicenseDTO{
		ID:             m.ID,
		CompanyID:      m.CompanyID,
		Name:           m.Name,
		Type:           m.Type,
		TypeName:       m.Type.DisplayName(),
		ExpirationDate: m.ExpirationDate,
		Status:         ClassifyExpiration(m.ExpirationDate, now),
		Notes:          m.Notes,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
	if current := m.CurrentFile(); current != nil {
		att := toAttachmentDTO(*current)
		dto.CurrentFile = &att
	}
	for _, f := range m.RenewalDocuments() {
		dto.RenewalFiles = append(dto.RenewalFiles, toAttachmentDTO(f))
	}
	return dto
}
