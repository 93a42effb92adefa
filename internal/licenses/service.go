package licenses

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/licensepro/alvara-backend/pkg/db/models"
	"github.com/licensepro/alvara-backend/pkg/enums"
	pkgerrors "github.com/licensepro/alvara-backend/pkg/errors"
	"github.com/licensepro/alvara-backend/pkg/logger"
	pkgpagination "github.com/licensepro/alvara-backend/pkg/pagination"
)

type licensesRepository interface {
	Create(ctx context.Context, license *models.License) (*models.License, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.License, error)
	List(ctx context.Context, opts listQuery) ([]models.License, error)
	Update(ctx context.Context, license *models.License) error
	StorageKeysWithTx(tx *gorm.DB, licenseID uuid.UUID) ([]string, error)
	DeleteWithTx(tx *gorm.DB, licenseID uuid.UUID) error
	Expirations(ctx context.Context, companyID *uuid.UUID) ([]time.Time, error)
}

type companiesRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Company, error)
	Count(ctx context.Context) (int64, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type storageClient interface {
	DeleteObject(ctx context.Context, bucket, object string) error
}

type urlSigner interface {
	SignedReadURL(bucket, object string, expires time.Duration) (string, error)
}

// Service exposes license management and classification semantics.
type Service interface {
	Create(ctx context.Context, input CreateLicenseInput) (*LicenseDTO, error)
	GetByID(ctx context.Context, id uuid.UUID) (*LicenseDTO, error)
	List(ctx context.Context, params ListParams) (*ListResult, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateLicenseInput) (*LicenseDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Stats(ctx context.Context, companyID *uuid.UUID) (*Stats, error)
}

// CreateLicenseInput holds the metadata required to create a license.
type CreateLicenseInput struct {
	CompanyID      uuid.UUID
	Name           string
	Type           enums.LicenseType
	ExpirationDate time.Time
	Notes          *string
}

// UpdateLicenseInput captures the allowed license fields for mutation.
// Nil pointers leave the stored value untouched.
type UpdateLicenseInput struct {
	CompanyID      *uuid.UUID
	Name           *string
	Type           *enums.LicenseType
	ExpirationDate *time.Time
	Notes          *string
}

type service struct {
	repo        licensesRepository
	companies   companiesRepository
	tx          txRunner
	storage     storageClient
	signer      urlSigner
	bucket      string
	downloadTTL time.Duration
	logg        *logger.Logger
	now         func() time.Time
}

// NewService builds a license service. The storage client and signer may
// be nil when object storage is not configured.
func NewService(repo licensesRepository, companies companiesRepository, tx txRunner, storage storageClient, signer urlSigner, bucket string, downloadTTL time.Duration, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("license repository required")
	}
	if companies == nil {
		return nil, fmt.Errorf("company repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if signer != nil && downloadTTL <= 0 {
		return nil, fmt.Errorf("download ttl must be positive")
	}
	return &service{
		repo:        repo,
		companies:   companies,
		tx:          tx,
		storage:     storage,
		signer:      signer,
		bucket:      bucket,
		downloadTTL: downloadTTL,
		logg:        logg,
		now:         time.Now,
	}, nil
}

func (s *service) Create(ctx context.Context, input CreateLicenseInput) (*LicenseDTO, error) {
	input.Name = strings.TrimSpace(input.Name)

	if input.CompanyID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "company_id is required")
	}
	if input.Name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if !input.Type.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid license type")
	}
	if input.ExpirationDate.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "expiration_date is required")
	}

	// The company reference is checked before the insert; a dangling
	// company_id never reaches the table.
	if err := s.ensureCompanyExists(ctx, input.CompanyID); err != nil {
		return nil, err
	}

	license := &models.License{
		ID:             uuid.New(),
		CompanyID:      input.CompanyID,
		Name:           input.Name,
		Type:           input.Type,
		ExpirationDate: input.ExpirationDate,
		Notes:          input.Notes,
	}
	created, err := s.repo.Create(ctx, license)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist license")
	}
	return toLicenseDTO(created, s.now()), nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*LicenseDTO, error) {
	license, err := s.findLicense(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := toLicenseDTO(license, s.now())
	s.signAttachments(ctx, license, dto)
	return dto, nil
}

func (s *service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	if params.Status != nil && !params.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid status filter")
	}
	if params.Type != nil && !params.Type.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid type filter")
	}
	cursor, err := pkgpagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	query := listQuery{
		companyID: params.CompanyID,
		typ:       params.Type,
		cursor:    cursor,
	}
	limit := pkgpagination.NormalizeLimit(params.Limit)
	if params.Status == nil {
		query.limit = pkgpagination.LimitWithBuffer(params.Limit)
	}

	rows, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list licenses")
	}

	now := s.now()
	result := &ListResult{}

	if params.Status != nil {
		// Status is derived, so the filter runs after classification
		// over the full candidate set.
		var matched []models.License
		for i := range rows {
			if ClassifyExpiration(rows[i].ExpirationDate, now) == *params.Status {
				matched = append(matched, rows[i])
			}
		}
		rows = matched
	}

	if len(rows) > limit {
		rows = rows[:limit]
		last := rows[len(rows)-1]
		result.Cursor = pkgpagination.EncodeCursor(pkgpagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}

	items := make([]LicenseDTO, 0, len(rows))
	for i := range rows {
		items = append(items, *toLicenseDTO(&rows[i], now))
	}
	result.Items = items
	return result, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateLicenseInput) (*LicenseDTO, error) {
	license, err := s.findLicense(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.CompanyID != nil {
		if *input.CompanyID == uuid.Nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "company_id cannot be blank")
		}
		if err := s.ensureCompanyExists(ctx, *input.CompanyID); err != nil {
			return nil, err
		}
		license.CompanyID = *input.CompanyID
	}
	if input.Name != nil {
		trimmed := strings.TrimSpace(*input.Name)
		if trimmed == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name cannot be blank")
		}
		license.Name = trimmed
	}
	if input.Type != nil {
		if !input.Type.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid license type")
		}
		license.Type = *input.Type
	}
	if input.ExpirationDate != nil {
		if input.ExpirationDate.IsZero() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "expiration_date cannot be blank")
		}
		license.ExpirationDate = *input.ExpirationDate
	}
	if input.Notes != nil {
		license.Notes = input.Notes
	}

	if err := s.repo.Update(ctx, license); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update license")
	}
	return toLicenseDTO(license, s.now()), nil
}

// Delete removes the license and its attachment rows in one transaction,
// then best-effort deletes the orphaned storage objects.
func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.findLicense(ctx, id); err != nil {
		return err
	}

	var storageKeys []string
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		keys, err := s.repo.StorageKeysWithTx(tx, id)
		if err != nil {
			return err
		}
		storageKeys = keys
		return s.repo.DeleteWithTx(tx, id)
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "license not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete license")
	}

	if s.storage != nil {
		for _, key := range storageKeys {
			if err := s.storage.DeleteObject(ctx, s.bucket, key); err != nil {
				s.logg.Warn(ctx, fmt.Sprintf("orphaned storage object %s: %v", key, err))
			}
		}
	}
	return nil
}

// Stats recomputes the dashboard counters on every call.
func (s *service) Stats(ctx context.Context, companyID *uuid.UUID) (*Stats, error) {
	expirations, err := s.repo.Expirations(ctx, companyID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load expirations")
	}
	companiesCount, err := s.companies.Count(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count companies")
	}

	stats := computeStats(expirations, s.now())
	stats.CompaniesCount = companiesCount
	return &stats, nil
}

func (s *service) ensureCompanyExists(ctx context.Context, companyID uuid.UUID) error {
	if _, err := s.companies.FindByID(ctx, companyID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "company not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup company")
	}
	return nil
}

func (s *service) findLicense(ctx context.Context, id uuid.UUID) (*models.License, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "license id is required")
	}
	license, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "license not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load license")
	}
	return license, nil
}

func (s *service) signAttachments(ctx context.Context, license *models.License, dto *LicenseDTO) {
	if s.signer == nil || license == nil || dto == nil {
		return
	}
	sign := func(att *AttachmentDTO, key string) {
		url, err := s.signer.SignedReadURL(s.bucket, key, s.downloadTTL)
		if err != nil {
			s.logg.Warn(ctx, fmt.Sprintf("sign read url for %s: %v", key, err))
			return
		}
		att.SignedURL = url
	}

	// Keys are not exposed on the DTO; look them up from the stored rows.
	byID := make(map[uuid.UUID]string, len(license.Files))
	for _, f := range license.Files {
		byID[f.ID] = f.StorageKey
	}
	if dto.CurrentFile != nil {
		if key, ok := byID[dto.CurrentFile.ID]; ok {
			sign(dto.CurrentFile, key)
		}
	}
	for i := range dto.RenewalFiles {
		if key, ok := byID[dto.RenewalFiles[i].ID]; ok {
			sign(&dto.RenewalFiles[i], key)
		}
	}
}
