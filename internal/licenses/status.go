package licenses

import (
	"time"

	"github.com/licensepro/alvara-backend/pkg/enums"
)

// WarningWindowDays is how far ahead of expiration a license is flagged
// for renewal.
const WarningWindowDays = 60

// ClassifyExpiration derives the status of a license at the given
// reference time. The result is never persisted.
//
// A license expiring exactly at now is not yet expired; one expiring in
// exactly 60 whole days is still active. Partial days are truncated, so
// 59 days and 23 hours counts as 59 days.
func ClassifyExpiration(expiresAt, now time.Time) enums.LicenseStatus {
	if expiresAt.Before(now) {
		return enums.LicenseStatusExpired
	}
	wholeDays := int(expiresAt.Sub(now).Hours() / 24)
	if wholeDays < WarningWindowDays {
		return enums.LicenseStatusWarning
	}
	return enums.LicenseStatusActive
}

// Stats aggregates the classification of a license collection plus the
// company count, recomputed on every call.
type Stats struct {
	Expired        int64 `json:"expired"`
	Warning        int64 `json:"warning"`
	Active         int64 `json:"active"`
	Total          int64 `json:"total"`
	CompaniesCount int64 `json:"companies_count"`
}

func computeStats(expirations []time.Time, now time.Time) Stats {
	var stats Stats
	for _, expiresAt := range expirations {
		switch ClassifyExpiration(expiresAt, now) {
		case enums.LicenseStatusExpired:
			stats.Expired++
		case enums.LicenseStatusWarning:
			stats.Warning++
		default:
			stats.Active++
		}
	}
	stats.Total = int64(len(expirations))
	return stats
}
