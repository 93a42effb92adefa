package licenses

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/licensepro/alvara-backend/pkg/db/models"
)

// Repository exposes license persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a license repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new license row.
func (r *Repository) Create(ctx context.Context, license *models.License) (*models.License, error) {
	if err := r.db.WithContext(ctx).Create(license).Error; err != nil {
		return nil, err
	}
	return license, nil
}

// FindByID loads a license with its attachments.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.License, error) {
	var license models.License
	err := r.db.WithContext(ctx).
		Preload("Files", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC, uploaded_at ASC")
		}).
		Where("id = ?", id).
		First(&license).Error
	if err != nil {
		return nil, err
	}
	return &license, nil
}

// List returns licenses using cursor pagination with optional filters.
func (r *Repository) List(ctx context.Context, opts listQuery) ([]models.License, error) {
	query := r.db.WithContext(ctx).Model(&models.License{}).
		Preload("Files", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC, uploaded_at ASC")
		})

	if opts.companyID != nil {
		query = query.Where("company_id = ?", *opts.companyID)
	}
	if opts.typ != nil {
		query = query.Where("type = ?", *opts.typ)
	}
	if opts.cursor != nil {
		query = query.Where("(created_at < ?) OR (created_at = ? AND id < ?)", opts.cursor.CreatedAt, opts.cursor.CreatedAt, opts.cursor.ID)
	}

	query = query.Order("created_at DESC").Order("id DESC")
	if opts.limit > 0 {
		query = query.Limit(opts.limit)
	}

	var rows []models.License
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Update saves the provided license.
func (r *Repository) Update(ctx context.Context, license *models.License) error {
	if license == nil {
		return fmt.Errorf("license is required")
	}
	return r.db.WithContext(ctx).Omit("Files").Save(license).Error
}

// StorageKeysWithTx returns the storage keys of the license's attachments
// using the provided transaction.
func (r *Repository) StorageKeysWithTx(tx *gorm.DB, licenseID uuid.UUID) ([]string, error) {
	if tx == nil {
		return nil, gorm.ErrInvalidTransaction
	}
	var keys []string
	err := tx.Model(&models.LicenseFile{}).
		Where("license_id = ?", licenseID).
		Pluck("storage_key", &keys).Error
	if err != nil {
		return nil, err
	}
	return keys, nil
}

// DeleteWithTx removes the license and its attachment rows inside the
// provided transaction.
func (r *Repository) DeleteWithTx(tx *gorm.DB, licenseID uuid.UUID) error {
	if tx == nil {
		return gorm.ErrInvalidTransaction
	}
	if err := tx.Where("license_id = ?", licenseID).Delete(&models.LicenseFile{}).Error; err != nil {
		return err
	}
	result := tx.Where("id = ?", licenseID).Delete(&models.License{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Expirations returns every expiration date, optionally scoped to one
// company. Classification happens in Go to keep the day-window rule in
// one place.
func (r *Repository) Expirations(ctx context.Context, companyID *uuid.UUID) ([]time.Time, error) {
	query := r.db.WithContext(ctx).Model(&models.License{})
	if companyID != nil {
		query = query.Where("company_id = ?", *companyID)
	}
	var expirations []time.Time
	if err := query.Pluck("expiration_date", &expirations).Error; err != nil {
		return nil, err
	}
	return expirations, nil
}

// ExpiringBefore returns licenses whose expiration falls before the given
// deadline, ordered soonest first. The cron report uses it to bound its
// candidate set; exact classification still runs per row.
func (r *Repository) ExpiringBefore(ctx context.Context, deadline time.Time) ([]models.License, error) {
	var rows []models.License
	err := r.db.WithContext(ctx).
		Where("expiration_date < ?", deadline).
		Order("expiration_date ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
