package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"scan-stats-service/internal/scans/core/domain"
	"scan-stats-service/internal/scans/core/ports"
	"scan-stats-service/pkg/metrics"

	"github.com/golang-sql/civil"
)

var ErrInvalidHistory = errors.New("invalid history document")

type ImportHistoryUseCase struct {
	repo    ports.ScanRepositoryPort
	metrics *metrics.Manager
}

func NewImportHistoryUseCase(repo ports.ScanRepositoryPort, m *metrics.Manager) *ImportHistoryUseCase {
	return &ImportHistoryUseCase{repo: repo, metrics: m}
}

type HistoryEntry struct {
	Comment      string
	DailyHistory map[string]int64
}

type ImportHistoryInput struct {
	Entries map[int64]HistoryEntry
}

type ImportHistoryResult struct {
	Users int
	Rows  int
}

// Execute validates the whole document before writing any row. Rows are
// upserted, so re-running the same document changes nothing.
func (uc *ImportHistoryUseCase) Execute(ctx context.Context, in ImportHistoryInput) (ImportHistoryResult, error) {
	var res ImportHistoryResult

	rows, err := flattenHistory(in.Entries)
	if err != nil {
		return res, err
	}

	users := map[int64]struct{}{}
	for _, row := range rows {
		if err := uc.repo.UpsertHistoric(ctx, row); err != nil {
			uc.metrics.RecordHistoricRows(res.Rows)
			return res, err
		}
		users[row.UserID] = struct{}{}
		res.Rows++
	}
	res.Users = len(users)
	uc.metrics.RecordHistoricRows(res.Rows)

	return res, nil
}

func flattenHistory(entries map[int64]HistoryEntry) ([]domain.HistoricDailyCount, error) {
	var rows []domain.HistoricDailyCount
	for userID, entry := range entries {
		if userID <= 0 {
			return nil, fmt.Errorf("%w: user id %d", ErrInvalidHistory, userID)
		}
		for raw, count := range entry.DailyHistory {
			day, err := civil.ParseDate(raw)
			if err != nil {
				return nil, fmt.Errorf("%w: user %d: date %q", ErrInvalidHistory, userID, raw)
			}
			if count < 0 {
				return nil, fmt.Errorf("%w: user %d: negative count on %s", ErrInvalidHistory, userID, raw)
			}
			rows = append(rows, domain.HistoricDailyCount{UserID: userID, LogDate: day, Count: count})
		}
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].UserID != rows[j].UserID {
			return rows[i].UserID < rows[j].UserID
		}
		return rows[i].LogDate.Before(rows[j].LogDate)
	})
	return rows, nil
}

type ImportActivityInput struct {
	// user id -> YYYY-MM-DD
	Markers map[int64]string
}

// ImportActivity loads a legacy last-activity document.
func (uc *ImportHistoryUseCase) ImportActivity(ctx context.Context, in ImportActivityInput) (int, error) {
	markers := make([]domain.ActivityMarker, 0, len(in.Markers))
	for userID, raw := range in.Markers {
		if userID <= 0 {
			return 0, fmt.Errorf("%w: user id %d", ErrInvalidHistory, userID)
		}
		day, err := civil.ParseDate(raw)
		if err != nil {
			return 0, fmt.Errorf("%w: user %d: date %q", ErrInvalidHistory, userID, raw)
		}
		markers = append(markers, domain.ActivityMarker{UserID: userID, LastSeen: day})
	}
	sort.Slice(markers, func(i, j int) bool { return markers[i].UserID < markers[j].UserID })

	n := 0
	for _, m := range markers {
		if err := uc.repo.UpsertActivity(ctx, m); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}
