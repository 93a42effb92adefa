package companies

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/licensepro/alvara-backend/pkg/db/models"
	pkgerrors "github.com/licensepro/alvara-backend/pkg/errors"
	"github.com/licensepro/alvara-backend/pkg/logger"
	pkgpagination "github.com/licensepro/alvara-backend/pkg/pagination"
)

type companiesRepository interface {
	Create(ctx context.Context, company *models.Company) (*models.Company, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Company, error)
	List(ctx context.Context, opts listQuery) ([]models.Company, error)
	Update(ctx context.Context, company *models.Company) error
	LicenseStorageKeysWithTx(tx *gorm.DB, companyID uuid.UUID) ([]string, error)
	DeleteWithTx(tx *gorm.DB, companyID uuid.UUID) error
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type storageClient interface {
	DeleteObject(ctx context.Context, bucket, object string) error
}

// Service exposes company management semantics.
type Service interface {
	Create(ctx context.Context, input CreateCompanyInput) (*CompanyDTO, error)
	GetByID(ctx context.Context, id uuid.UUID) (*CompanyDTO, error)
	List(ctx context.Context, params ListParams) (*ListResult, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateCompanyInput) (*CompanyDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo    companiesRepository
	tx      txRunner
	storage storageClient
	bucket  string
	logg    *logger.Logger
}

// NewService builds a company service backed by the provided repository.
// The storage client may be nil; orphaned objects are then left behind.
func NewService(repo companiesRepository, tx txRunner, storage storageClient, bucket string, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("company repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, tx: tx, storage: storage, bucket: bucket, logg: logg}, nil
}

func (s *service) Create(ctx context.Context, input CreateCompanyInput) (*CompanyDTO, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.FantasyName = strings.TrimSpace(input.FantasyName)
	input.CNPJ = strings.TrimSpace(input.CNPJ)

	if input.Name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if input.FantasyName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "fantasy_name is required")
	}
	if input.CNPJ == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cnpj is required")
	}

	company, err := s.repo.Create(ctx, input.ToModel())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist company")
	}
	return FromModel(company), nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*CompanyDTO, error) {
	company, err := s.findCompany(ctx, id)
	if err != nil {
		return nil, err
	}
	return FromModel(company), nil
}

func (s *service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	cursor, err := pkgpagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	limit := pkgpagination.NormalizeLimit(params.Limit)
	rows, err := s.repo.List(ctx, listQuery{
		search: strings.TrimSpace(params.Search),
		active: params.Active,
		limit:  pkgpagination.LimitWithBuffer(params.Limit),
		cursor: cursor,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list companies")
	}

	result := &ListResult{}
	if len(rows) > limit {
		rows = rows[:limit]
		last := rows[len(rows)-1]
		result.Cursor = pkgpagination.EncodeCursor(pkgpagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	result.Items = toListItems(rows)
	return result, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateCompanyInput) (*CompanyDTO, error) {
	company, err := s.findCompany(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		trimmed := strings.TrimSpace(*input.Name)
		if trimmed == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name cannot be blank")
		}
		company.Name = trimmed
	}
	if input.FantasyName != nil {
		trimmed := strings.TrimSpace(*input.FantasyName)
		if trimmed == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "fantasy_name cannot be blank")
		}
		company.FantasyName = trimmed
	}
	if input.CNPJ != nil {
		trimmed := strings.TrimSpace(*input.CNPJ)
		if trimmed == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "cnpj cannot be blank")
		}
		company.CNPJ = trimmed
	}
	if input.Active != nil {
		company.Active = *input.Active
	}
	if input.Latitude != nil {
		company.Latitude = input.Latitude
	}
	if input.Longitude != nil {
		company.Longitude = input.Longitude
	}
	if input.RenewalLinks != nil {
		company.RenewalLinks = *input.RenewalLinks
	}

	if err := s.repo.Update(ctx, company); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update company")
	}
	return FromModel(company), nil
}

// Delete removes the company and all licenses it owns in one transaction,
// then best-effort deletes the orphaned storage objects.
func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.findCompany(ctx, id); err != nil {
		return err
	}

	var storageKeys []string
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		keys, err := s.repo.LicenseStorageKeysWithTx(tx, id)
		if err != nil {
			return err
		}
		storageKeys = keys
		return s.repo.DeleteWithTx(tx, id)
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "company not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete company")
	}

	s.cleanupObjects(ctx, storageKeys)
	return nil
}

func (s *service) findCompany(ctx context.Context, id uuid.UUID) (*models.Company, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "company id is required")
	}
	company, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "company not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load company")
	}
	return company, nil
}

func (s *service) cleanupObjects(ctx context.Context, keys []string) {
	if s.storage == nil || len(keys) == 0 {
		return
	}
	for _, key := range keys {
		if err := s.storage.DeleteObject(ctx, s.bucket, key); err != nil {
			s.logg.Warn(ctx, fmt.Sprintf("orphaned storage object %s: %v", key, err))
		}
	}
}
