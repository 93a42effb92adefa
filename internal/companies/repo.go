package companies

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/licensepro/alvara-backend/pkg/db/models"
)

// Repository handles company persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to company operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create persists a new company row.
func (r *Repository) Create(ctx context.Context, company *models.Company) (*models.Company, error) {
	if err := r.db.WithContext(ctx).Create(company).Error; err != nil {
		return nil, err
	}
	return company, nil
}

// FindByID loads a company by its UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Company, error) {
	var company models.Company
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&company).Error; err != nil {
		return nil, err
	}
	return &company, nil
}

// List returns companies using cursor pagination with optional filters.
func (r *Repository) List(ctx context.Context, opts listQuery) ([]models.Company, error) {
	query := r.db.WithContext(ctx).Model(&models.Company{})

	if opts.search != "" {
		like := "%" + opts.search + "%"
		query = query.Where("name LIKE ? OR fantasy_name LIKE ? OR cnpj LIKE ?", like, like, like)
	}
	if opts.active != nil {
		query = query.Where("active = ?", *opts.active)
	}
	if opts.cursor != nil {
		query = query.Where("(created_at < ?) OR (created_at = ? AND id < ?)", opts.cursor.CreatedAt, opts.cursor.CreatedAt, opts.cursor.ID)
	}

	query = query.Order("created_at DESC").Order("id DESC").Limit(opts.limit)

	var rows []models.Company
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Count reports the total number of companies.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Company{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// NamesByIDs returns the display names of the requested companies.
func (r *Repository) NamesByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	names := make(map[uuid.UUID]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}
	var rows []models.Company
	err := r.db.WithContext(ctx).
		Select("id", "name").
		Where("id IN ?", ids).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		names[row.ID] = row.Name
	}
	return names, nil
}

// Update saves the provided company.
func (r *Repository) Update(ctx context.Context, company *models.Company) error {
	if company == nil {
		return fmt.Errorf("company is required")
	}
	return r.db.WithContext(ctx).Save(company).Error
}

// LicenseStorageKeysWithTx returns the storage keys of every attachment
// owned by the company's licenses, using the provided transaction.
func (r *Repository) LicenseStorageKeysWithTx(tx *gorm.DB, companyID uuid.UUID) ([]string, error) {
	if tx == nil {
		return nil, gorm.ErrInvalidTransaction
	}
	var keys []string
	err := tx.Model(&models.LicenseFile{}).
		Joins("JOIN licenses ON licenses.id = license_files.license_id").
		Where("licenses.company_id = ?", companyID).
		Pluck("license_files.storage_key", &keys).Error
	if err != nil {
		return nil, err
	}
	return keys, nil
}

// DeleteWithTx removes the company and everything it owns inside the
// provided transaction: attachment rows first, then licenses, then the
// company row itself.
func (r *Repository) DeleteWithTx(tx *gorm.DB, companyID uuid.UUID) error {
	if tx == nil {
		return gorm.ErrInvalidTransaction
	}

	err := tx.Where("license_id IN (?)",
		tx.Model(&models.License{}).Select("id").Where("company_id = ?", companyID),
	).Delete(&models.LicenseFile{}).Error
	if err != nil {
		return err
	}

	if err := tx.Where("company_id = ?", companyID).Delete(&models.License{}).Error; err != nil {
		return err
	}

	result := tx.Where("id = ?", companyID).Delete(&models.Company{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
