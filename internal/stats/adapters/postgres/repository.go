package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"scan-stats-service/internal/stats/core/domain"
	"scan-stats-service/internal/stats/core/ports"
	"scan-stats-service/internal/storage"

	"github.com/golang-sql/civil"
)

// StatsRepository groups live scans into calendar days of loc.
type StatsRepository struct {
	db  DB
	loc *time.Location
}

func NewStatsRepository(db DB, loc *time.Location) *StatsRepository {
	if loc == nil {
		loc = time.UTC
	}
	return &StatsRepository{db: db, loc: loc}
}

var _ ports.StatsReaderPort = (*StatsRepository)(nil)

func (r *StatsRepository) ListScans(ctx context.Context, f ports.ScanFilter) ([]domain.Scan, error) {
	where := "scanned_at >= $1 AND scanned_at < $2"
	args := []any{f.From, f.To}
	if f.UserID != 0 {
		where += " AND user_id = $3"
		args = append(args, f.UserID)
	}

	query := `
SELECT
    user_id,
    identifier,
    scanned_at
FROM scan_events
WHERE ` + where + `
ORDER BY scanned_at`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storage.Wrap("list scans", err)
	}
	defer rows.Close()

	var out []domain.Scan
	for rows.Next() {
		var s domain.Scan
		if err := rows.Scan(&s.UserID, &s.Identifier, &s.ScannedAt); err != nil {
			return nil, storage.Wrap("list scans", err)
		}
		s.ScannedAt = s.ScannedAt.In(r.loc)
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, storage.Wrap("list scans", err)
	}
	return out, nil
}

func (r *StatsRepository) LiveDailyCounts(ctx context.Context, f ports.DayFilter) ([]domain.DailyCount, error) {
	day := "(scanned_at AT TIME ZONE $1)::date"
	args := []any{r.loc.String()}
	where, args := dayWhere(day, "user_id", f, args)

	query := fmt.Sprintf(`
SELECT
    user_id,
    %s AS day,
    COUNT(*) AS total_count
FROM scan_events
%s
GROUP BY user_id, day
ORDER BY user_id, day`, day, where)

	return r.queryDaily(ctx, "live daily counts", query, args)
}

func (r *StatsRepository) HistoricDailyCounts(ctx context.Context, f ports.DayFilter) ([]domain.DailyCount, error) {
	where, args := dayWhere("log_date", "user_id", f, nil)

	query := `
SELECT
    user_id,
    log_date,
    count
FROM historic_daily_counts
` + where + `
ORDER BY user_id, log_date`

	return r.queryDaily(ctx, "historic daily counts", query, args)
}

// dayWhere appends filter args after the ones already in args.
func dayWhere(dayExpr, userCol string, f ports.DayFilter, args []any) (string, []any) {
	var conds []string
	argIndex := len(args) + 1

	if f.UserID != 0 {
		conds = append(conds, fmt.Sprintf("%s = $%d", userCol, argIndex))
		args = append(args, f.UserID)
		argIndex++
	}
	if f.From.IsValid() {
		conds = append(conds, fmt.Sprintf("%s >= $%d::date", dayExpr, argIndex))
		args = append(args, f.From.String())
		argIndex++
	}
	if f.To.IsValid() {
		conds = append(conds, fmt.Sprintf("%s <= $%d::date", dayExpr, argIndex))
		args = append(args, f.To.String())
	}

	if len(conds) == 0 {
		return "", args
	}
	return "WHERE " + strings.Join(conds, " AND "), args
}

func (r *StatsRepository) queryDaily(ctx context.Context, op, query string, args []any) ([]domain.DailyCount, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storage.Wrap(op, err)
	}
	defer rows.Close()

	var out []domain.DailyCount
	for rows.Next() {
		var userID, count int64
		var day time.Time
		if err := rows.Scan(&userID, &day, &count); err != nil {
			return nil, storage.Wrap(op, err)
		}
		out = append(out, domain.DailyCount{UserID: userID, Day: civil.DateOf(day), Count: count})
	}
	if err := rows.Err(); err != nil {
		return nil, storage.Wrap(op, err)
	}
	return out, nil
}
