package ports

import (
	"context"
	"time"

	"scan-stats-service/internal/stats/core/domain"

	"github.com/golang-sql/civil"
)

// ScanFilter selects live scans with From <= scanned_at < To.
// UserID 0 means every user.
type ScanFilter struct {
	UserID int64
	From   time.Time
	To     time.Time
}

// DayFilter selects per-day rows in [From, To]. A zero (invalid) bound is
// open. UserID 0 means every user.
type DayFilter struct {
	UserID int64
	From   civil.Date
	To     civil.Date
}

type StatsReaderPort interface {
	ListScans(ctx context.Context, f ScanFilter) ([]domain.Scan, error)

	// LiveDailyCounts groups scans by calendar day in the reference timezone.
	LiveDailyCounts(ctx context.Context, f DayFilter) ([]domain.DailyCount, error)

	HistoricDailyCounts(ctx context.Context, f DayFilter) ([]domain.DailyCount, error)
}
