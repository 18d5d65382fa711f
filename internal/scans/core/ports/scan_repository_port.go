package ports

import (
	"context"

	"scan-stats-service/internal/scans/core/domain"

	"github.com/golang-sql/civil"
)

type ScanRepositoryPort interface {
	// InsertScan appends one scan and returns its id. Duplicates are accepted.
	InsertScan(ctx context.Context, e *domain.ScanEvent) (id int64, err error)

	// UpsertActivity sets the user's last seen date, creating the row if needed.
	UpsertActivity(ctx context.Context, m domain.ActivityMarker) error

	// LastActivity: found = false when the user never touched activity.
	LastActivity(ctx context.Context, userID int64) (day civil.Date, found bool, err error)

	// UpsertHistoric replaces any existing count for (user, day).
	UpsertHistoric(ctx context.Context, c domain.HistoricDailyCount) error
}
