package attachments

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/licensepro/alvara-backend/pkg/db/models"
	"github.com/licensepro/alvara-backend/pkg/enums"
	pkgerrors "github.com/licensepro/alvara-backend/pkg/errors"
	"github.com/licensepro/alvara-backend/pkg/logger"
)

type filesRepository interface {
	Create(ctx context.Context, file *models.LicenseFile) (*models.LicenseFile, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.LicenseFile, error)
	FindCurrent(ctx context.Context, licenseID uuid.UUID) (*models.LicenseFile, error)
	CountRenewals(ctx context.Context, licenseID uuid.UUID) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type licenseFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.License, error)
}

type objectStore interface {
	UploadObject(ctx context.Context, bucket, object, contentType string, body io.Reader) error
	DeleteObject(ctx context.Context, bucket, object string) error
	SignedReadURL(bucket, object string, expires time.Duration) (string, error)
}

// Service exposes license-document upload, download, and removal semantics.
type Service interface {
	Upload(ctx context.Context, licenseID uuid.UUID, input UploadInput) (*FileDTO, error)
	SignedDownload(ctx context.Context, fileID uuid.UUID) (string, error)
	Delete(ctx context.Context, fileID uuid.UUID) error
}

// UploadInput models an incoming document.
type UploadInput struct {
	Kind        enums.AttachmentKind
	FileName    string
	ContentType string
	SizeBytes   int64
	Content     io.Reader
}

// FileDTO describes a stored document returned to the client.
type FileDTO struct {
	ID          uuid.UUID            `json:"id"`
	LicenseID   uuid.UUID            `json:"license_id"`
	Kind        enums.AttachmentKind `json:"kind"`
	FileName    string               `json:"file_name"`
	ContentType string               `json:"content_type"`
	SizeBytes   int64                `json:"size_bytes"`
	Position    int                  `json:"position"`
	UploadedAt  time.Time            `json:"uploaded_at"`
}

type service struct {
	repo        filesRepository
	licenses    licenseFinder
	store       objectStore
	bucket      string
	maxBytes    int64
	downloadTTL time.Duration
	logg        *logger.Logger
}

// NewService builds an attachment service backed by the provided
// repositories and object store.
func NewService(repo filesRepository, licenses licenseFinder, store objectStore, bucket string, maxBytes int64, downloadTTL time.Duration, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("attachment repository required")
	}
	if licenses == nil {
		return nil, fmt.Errorf("license repository required")
	}
	if store == nil {
		return nil, fmt.Errorf("object store required")
	}
	if bucket == "" {
		return nil, fmt.Errorf("bucket required")
	}
	if maxBytes <= 0 {
		return nil, fmt.Errorf("max upload size must be positive")
	}
	if downloadTTL <= 0 {
		return nil, fmt.Errorf("download ttl must be positive")
	}
	return &service{
		repo:        repo,
		licenses:    licenses,
		store:       store,
		bucket:      bucket,
		maxBytes:    maxBytes,
		downloadTTL: downloadTTL,
		logg:        logg,
	}, nil
}

// Upload validates the document, writes the object, then records the row.
// A current-kind upload replaces the existing current document.
func (s *service) Upload(ctx context.Context, licenseID uuid.UUID, input UploadInput) (*FileDTO, error) {
	if licenseID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "license id is required")
	}
	if !input.Kind.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid attachment kind")
	}

	fileName := strings.TrimSpace(input.FileName)
	if fileName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "file_name is required")
	}
	if input.SizeBytes <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "file is empty")
	}
	if input.SizeBytes > s.maxBytes {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("file exceeds the %d byte limit", s.maxBytes)).
			WithDetails(map[string]any{"max_bytes": s.maxBytes})
	}
	if !isAllowedMime(input.ContentType) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "content type not allowed").
			WithDetails(map[string]any{"allowed": AllowedMimeTypes()})
	}
	if input.Content == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "file content is required")
	}

	if _, err := s.licenses.FindByID(ctx, licenseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "license not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup license")
	}

	var replaced *models.LicenseFile
	position := 0
	switch input.Kind {
	case enums.AttachmentKindCurrent:
		existing, err := s.repo.FindCurrent(ctx, licenseID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup current document")
		}
		replaced = existing
	case enums.AttachmentKindRenewal:
		count, err := s.repo.CountRenewals(ctx, licenseID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count renewal documents")
		}
		position = int(count)
	}

	fileID := uuid.New()
	storageKey := buildStorageKey(input.Kind, fileID, fileName)

	// Object first, row second: a failed insert leaves at worst an
	// unreferenced object, never a row pointing at nothing.
	if err := s.store.UploadObject(ctx, s.bucket, storageKey, input.ContentType, input.Content); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store document")
	}

	row := &models.LicenseFile{
		ID:          fileID,
		LicenseID:   licenseID,
		Kind:        input.Kind,
		FileName:    fileName,
		StorageKey:  storageKey,
		ContentType: input.ContentType,
		SizeBytes:   input.SizeBytes,
		Position:    position,
	}
	created, err := s.repo.Create(ctx, row)
	if err != nil {
		if delErr := s.store.DeleteObject(ctx, s.bucket, storageKey); delErr != nil && s.logg != nil {
			s.logg.Warn(ctx, fmt.Sprintf("orphaned storage object %s: %v", storageKey, delErr))
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist document row")
	}

	if replaced != nil {
		s.removeReplaced(ctx, replaced)
	}

	return toFileDTO(created), nil
}

// SignedDownload mints a short-lived read URL for the stored document.
func (s *service) SignedDownload(ctx context.Context, fileID uuid.UUID) (string, error) {
	file, err := s.findFile(ctx, fileID)
	if err != nil {
		return "", err
	}
	url, err := s.store.SignedReadURL(s.bucket, file.StorageKey, s.downloadTTL)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sign download url")
	}
	return url, nil
}

// Delete removes the row, then best-effort deletes the object.
func (s *service) Delete(ctx context.Context, fileID uuid.UUID) error {
	file, err := s.findFile(ctx, fileID)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, fileID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "attachment not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete document row")
	}
	if err := s.store.DeleteObject(ctx, s.bucket, file.StorageKey); err != nil && s.logg != nil {
		s.logg.Warn(ctx, fmt.Sprintf("orphaned storage object %s: %v", file.StorageKey, err))
	}
	return nil
}

func (s *service) findFile(ctx context.Context, fileID uuid.UUID) (*models.LicenseFile, error) {
	if fileID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "attachment id is required")
	}
	file, err := s.repo.FindByID(ctx, fileID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "attachment not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load attachment")
	}
	return file, nil
}

func (s *service) removeReplaced(ctx context.Context, old *models.LicenseFile) {
	if err := s.repo.Delete(ctx, old.ID); err != nil {
		if s.logg != nil {
			s.logg.Warn(ctx, fmt.Sprintf("stale current document row %s: %v", old.ID, err))
		}
		return
	}
	if err := s.store.DeleteObject(ctx, s.bucket, old.StorageKey); err != nil && s.logg != nil {
		s.logg.Warn(ctx, fmt.Sprintf("orphaned storage object %s: %v", old.StorageKey, err))
	}
}

func toFileDTO(m *models.LicenseFile) *FileDTO {
	if m == nil {
		return nil
	}
	return &FileDTO{
		ID:          m.ID,
		LicenseID:   m.LicenseID,
		Kind:        m.Kind,
		FileName:    m.FileName,
		ContentType: m.ContentType,
		SizeBytes:   m.SizeBytes,
		Position:    m.Position,
		UploadedAt:  m.UploadedAt,
	}
}

func buildStorageKey(kind enums.AttachmentKind, id uuid.UUID, fileName string) string {
	cleanName := sanitizeFileName(fileName)
	if cleanName == "" {
		cleanName = id.String()
	}
	return fmt.Sprintf("attachments/%s/%s/%s", kind, id.String(), cleanName)
}

func sanitizeFileName(name string) string {
	if name == "" {
		return ""
	}
	clean := path.Base(strings.TrimSpace(name))
	if clean == "" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(clean))
	for _, r := range clean {
		switch {
		case r == '/' || r == '\\' || unicode.IsControl(r):
			continue
		case unicode.IsSpace(r):
			b.WriteRune('-')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
