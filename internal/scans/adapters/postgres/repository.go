package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"scan-stats-service/internal/scans/core/domain"
	"scan-stats-service/internal/scans/core/ports"
	"scan-stats-service/internal/storage"

	"github.com/golang-sql/civil"
)

type ScanRepository struct {
	db DB
}

func NewScanRepository(db DB) *ScanRepository {
	return &ScanRepository{db: db}
}

var _ ports.ScanRepositoryPort = (*ScanRepository)(nil)

const insertScanSQL = `
INSERT INTO scan_events (
    user_id,
    identifier,
    scanned_at
) VALUES (
    $1, $2, $3
)
RETURNING id;
`

const upsertActivitySQL = `
INSERT INTO user_activity (user_id, last_seen_date)
VALUES ($1, $2::date)
ON CONFLICT (user_id) DO UPDATE SET last_seen_date = EXCLUDED.last_seen_date;
`

const selectActivitySQL = `
SELECT last_seen_date
FROM user_activity
WHERE user_id = $1;
`

const upsertHistoricSQL = `
INSERT INTO historic_daily_counts (user_id, log_date, count)
VALUES ($1, $2::date, $3)
ON CONFLICT (user_id, log_date) DO UPDATE SET count = EXCLUDED.count;
`

func (r *ScanRepository) InsertScan(ctx context.Context, e *domain.ScanEvent) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx, insertScanSQL,
		e.UserID,
		e.Identifier,
		e.ScannedAt,
	).Scan(&id)
	if err != nil {
		return 0, storage.Wrap("insert scan", err)
	}
	return id, nil
}

func (r *ScanRepository) UpsertActivity(ctx context.Context, m domain.ActivityMarker) error {
	_, err := r.db.ExecContext(ctx, upsertActivitySQL, m.UserID, m.LastSeen.String())
	return storage.Wrap("upsert activity", err)
}

func (r *ScanRepository) LastActivity(ctx context.Context, userID int64) (civil.Date, bool, error) {
	var seen time.Time
	err := r.db.QueryRowContext(ctx, selectActivitySQL, userID).Scan(&seen)
	if errors.Is(err, sql.ErrNoRows) {
		return civil.Date{}, false, nil
	}
	if err != nil {
		return civil.Date{}, false, storage.Wrap("select activity", err)
	}
	return civil.DateOf(seen), true, nil
}

func (r *ScanRepository) UpsertHistoric(ctx context.Context, c domain.HistoricDailyCount) error {
	_, err := r.db.ExecContext(ctx, upsertHistoricSQL, c.UserID, c.LogDate.String(), c.Count)
	return storage.Wrap("upsert historic", err)
}
