package licenses

import (
	"testing"
	"time"

	"github.com/licensepro/alvara-backend/pkg/enums"
)

func TestClassifyExpiration(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name      string
		expiresAt time.Time
		want      enums.LicenseStatus
	}{
		{"one second in the past", now.Add(-time.Second), enums.LicenseStatusExpired},
		{"one year in the past", now.AddDate(-1, 0, 0), enums.LicenseStatusExpired},
		{"exactly now", now, enums.LicenseStatusWarning},
		{"one hour ahead", now.Add(time.Hour), enums.LicenseStatusWarning},
		{"59 days ahead", now.AddDate(0, 0, 59), enums.LicenseStatusWarning},
		{"59 days 23 hours ahead", now.AddDate(0, 0, 59).Add(23 * time.Hour), enums.LicenseStatusWarning},
		{"exactly 60 days ahead", now.AddDate(0, 0, 60), enums.LicenseStatusActive},
		{"61 days ahead", now.AddDate(0, 0, 61), enums.LicenseStatusActive},
		{"one year ahead", now.AddDate(1, 0, 0), enums.LicenseStatusActive},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ClassifyExpiration(tc.expiresAt, now); got != tc.want {
				t.Fatalf("ClassifyExpiration(%s) = %s, want %s", tc.expiresAt, got, tc.want)
			}
		})
	}
}

func TestComputeStats(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	expirations := []time.Time{
		now.AddDate(0, 0, -10), // expired
		now.AddDate(0, 0, -1),  // expired
		now.AddDate(0, 0, 5),   // warning
		now.AddDate(0, 0, 59),  // warning
		now.AddDate(0, 0, 60),  // active
		now.AddDate(0, 0, 365), // active
	}

	stats := computeStats(expirations, now)
	if stats.Expired != 2 || stats.Warning != 2 || stats.Active != 2 {
		t.Fatalf("unexpected stats %+v", stats)
	}
	if stats.Total != 6 {
		t.Fatalf("expected total 6, got %d", stats.Total)
	}
}

func TestComputeStatsEmpty(t *testing.T) {
	stats := computeStats(nil, time.Now())
	if stats.Total != 0 || stats.Expired != 0 || stats.Warning != 0 || stats.Active != 0 {
		t.Fatalf("expected zero stats, got %+v", stats)
	}
}
