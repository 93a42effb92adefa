package cron

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/licensepro/alvara-backend/internal/licenses"
	"github.com/licensepro/alvara-backend/pkg/db/models"
	"github.com/licensepro/alvara-backend/pkg/enums"
	"github.com/licensepro/alvara-backend/pkg/logger"
)

type expiringLicenseSource interface {
	ExpiringBefore(ctx context.Context, deadline time.Time) ([]models.License, error)
}

type companyNameSource interface {
	NamesByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error)
}

// ExpiryReportJobParams configures the scheduled expiry report.
type ExpiryReportJobParams struct {
	Logger    *logger.Logger
	Licenses  expiringLicenseSource
	Companies companyNameSource
}

// NewExpiryReportJob constructs the daily expiry report. The job is
// read-only: license status is always derived from the expiration date,
// so the report classifies rows on the fly and never writes anything back.
func NewExpiryReportJob(params ExpiryReportJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Licenses == nil {
		return nil, fmt.Errorf("license source required")
	}
	if params.Companies == nil {
		return nil, fmt.Errorf("company source required")
	}
	return &expiryReportJob{
		logg:      params.Logger,
		licenses:  params.Licenses,
		companies: params.Companies,
		now:       time.Now,
	}, nil
}

type expiryReportJob struct {
	logg      *logger.Logger
	licenses  expiringLicenseSource
	companies companyNameSource
	now       func() time.Time
}

func (j *expiryReportJob) Name() string { return "license-expiry-report" }

func (j *expiryReportJob) Run(ctx context.Context) error {
	now := j.now().UTC()
	deadline := now.Add(licenses.WarningWindowDays * 24 * time.Hour)

	rows, err := j.licenses.ExpiringBefore(ctx, deadline)
	if err != nil {
		return fmt.Errorf("query expiring licenses: %w", err)
	}
	if len(rows) == 0 {
		j.logg.Info(ctx, "no licenses inside the warning window")
		return nil
	}

	var errs []error
	byCompany := make(map[uuid.UUID][]models.License)
	for _, row := range rows {
		byCompany[row.CompanyID] = append(byCompany[row.CompanyID], row)
	}

	companyIDs := make([]uuid.UUID, 0, len(byCompany))
	for id := range byCompany {
		companyIDs = append(companyIDs, id)
	}
	sort.Slice(companyIDs, func(i, k int) bool {
		return companyIDs[i].String() < companyIDs[k].String()
	})

	names, err := j.companies.NamesByIDs(ctx, companyIDs)
	if err != nil {
		errs = append(errs, fmt.Errorf("resolve company names: %w", err))
		names = map[uuid.UUID]string{}
	}

	expiredTotal := 0
	warningTotal := 0
	for _, companyID := range companyIDs {
		expired, warning := j.reportCompany(ctx, companyID, names[companyID], byCompany[companyID], now)
		expiredTotal += expired
		warningTotal += warning
	}

	summaryCtx := j.logg.WithFields(ctx, map[string]any{
		"companies": len(companyIDs),
		"expired":   expiredTotal,
		"warning":   warningTotal,
	})
	j.logg.Info(summaryCtx, "expiry report complete")
	return multierr.Combine(errs...)
}

func (j *expiryReportJob) reportCompany(ctx context.Context, companyID uuid.UUID, name string, rows []models.License, now time.Time) (expired, warning int) {
	if name == "" {
		name = "desconhecida"
	}
	companyCtx := j.logg.WithFields(ctx, map[string]any{
		"company_id": companyID,
		"company":    name,
	})
	for _, row := range rows {
		status := licenses.ClassifyExpiration(row.ExpirationDate, now)
		switch status {
		case enums.LicenseStatusExpired:
			expired++
		case enums.LicenseStatusWarning:
			warning++
		default:
			// ExpiringBefore bounds candidates by the warning deadline,
			// so an active row here means the clock moved between the
			// query and classification. Skip it.
			continue
		}
		daysLeft := int(row.ExpirationDate.Sub(now).Hours() / 24)
		rowCtx := j.logg.WithFields(companyCtx, map[string]any{
			"license_id":      row.ID,
			"license":         row.Name,
			"type":            row.Type,
			"status":          status,
			"expiration_date": row.ExpirationDate.Format("2006-01-02"),
			"days_left":       daysLeft,
		})
		j.logg.Warn(rowCtx, "license requires attention")
	}
	summaryCtx := j.logg.WithFields(companyCtx, map[string]any{
		"expired": expired,
		"warning": warning,
	})
	j.logg.Info(summaryCtx, "company expiry report")
	return expired, warning
}
