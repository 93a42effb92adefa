package attachments

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/licensepro/alvara-backend/pkg/db/models"
	"github.com/licensepro/alvara-backend/pkg/enums"
)

// Repository exposes attachment persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs an attachment repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new attachment row.
func (r *Repository) Create(ctx context.Context, file *models.LicenseFile) (*models.LicenseFile, error) {
	if err := r.db.WithContext(ctx).Create(file).Error; err != nil {
		return nil, err
	}
	return file, nil
}

// FindByID loads an attachment by its UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.LicenseFile, error) {
	var file models.LicenseFile
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&file).Error; err != nil {
		return nil, err
	}
	return &file, nil
}

// FindByLicense returns a license's attachments in stored order.
func (r *Repository) FindByLicense(ctx context.Context, licenseID uuid.UUID) ([]models.LicenseFile, error) {
	var files []models.LicenseFile
	err := r.db.WithContext(ctx).
		Where("license_id = ?", licenseID).
		Order("position ASC, uploaded_at ASC").
		Find(&files).Error
	if err != nil {
		return nil, err
	}
	return files, nil
}

// FindCurrent returns the license's current-kind attachment, if any.
func (r *Repository) FindCurrent(ctx context.Context, licenseID uuid.UUID) (*models.LicenseFile, error) {
	var file models.LicenseFile
	err := r.db.WithContext(ctx).
		Where("license_id = ? AND kind = ?", licenseID, enums.AttachmentKindCurrent).
		First(&file).Error
	if err != nil {
		return nil, err
	}
	return &file, nil
}

// CountRenewals reports how many renewal documents the license holds.
func (r *Repository) CountRenewals(ctx context.Context, licenseID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.LicenseFile{}).
		Where("license_id = ? AND kind = ?", licenseID, enums.AttachmentKindRenewal).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

// Delete removes the attachment row.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.LicenseFile{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
