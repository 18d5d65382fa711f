package usecase_test

import (
	"context"
	"errors"
	"time"

	"scan-stats-service/internal/stats/core/domain"
	"scan-stats-service/internal/stats/core/ports"

	"github.com/golang-sql/civil"
)

// memoryReader is an in-memory StatsReaderPort with the same filter
// semantics as the postgres adapter.
type memoryReader struct {
	loc      *time.Location
	scans    []domain.Scan
	historic []domain.DailyCount

	failScans    error
	failLive     error
	failHistoric error
}

func (m *memoryReader) addScan(userID int64, identifier string, at time.Time) {
	m.scans = append(m.scans, domain.Scan{UserID: userID, Identifier: identifier, ScannedAt: at})
}

func (m *memoryReader) addHistoric(userID int64, day civil.Date, count int64) {
	m.historic = append(m.historic, domain.DailyCount{UserID: userID, Day: day, Count: count})
}

func (m *memoryReader) ListScans(ctx context.Context, f ports.ScanFilter) ([]domain.Scan, error) {
	if m.failScans != nil {
		return nil, m.failScans
	}
	var out []domain.Scan
	for _, s := range m.scans {
		if f.UserID != 0 && s.UserID != f.UserID {
			continue
		}
		if s.ScannedAt.Before(f.From) || !s.ScannedAt.Before(f.To) {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

func (m *memoryReader) LiveDailyCounts(ctx context.Context, f ports.DayFilter) ([]domain.DailyCount, error) {
	if m.failLive != nil {
		return nil, m.failLive
	}
	type key struct {
		user int64
		day  civil.Date
	}
	counts := map[key]int64{}
	for _, s := range m.scans {
		k := key{s.UserID, civil.DateOf(s.ScannedAt.In(m.loc))}
		counts[k]++
	}
	var out []domain.DailyCount
	for k, c := range counts {
		row := domain.DailyCount{UserID: k.user, Day: k.day, Count: c}
		if matches(f, row) {
			out = append(out, row)
		}
	}
	return out, nil
}

func (m *memoryReader) HistoricDailyCounts(ctx context.Context, f ports.DayFilter) ([]domain.DailyCount, error) {
	if m.failHistoric != nil {
		return nil, m.failHistoric
	}
	var out []domain.DailyCount
	for _, r := range m.historic {
		if matches(f, r) {
			out = append(out, r)
		}
	}
	return out, nil
}

func matches(f ports.DayFilter, r domain.DailyCount) bool {
	if f.UserID != 0 && r.UserID != f.UserID {
		return false
	}
	if f.From.IsValid() && r.Day.Before(f.From) {
		return false
	}
	if f.To.IsValid() && r.Day.After(f.To) {
		return false
	}
	return true
}

var errReader = errors.New("reader unavailable")
