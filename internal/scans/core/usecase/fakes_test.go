package usecase_test

import (
	"context"
	"sync"

	"scan-stats-service/internal/scans/core/domain"

	"github.com/golang-sql/civil"
)

// fakeScanRepo implements ports.ScanRepositoryPort for tests.
type fakeScanRepo struct {
	InsertFn   func(ctx context.Context, e *domain.ScanEvent) (int64, error)
	ActivityFn func(ctx context.Context, m domain.ActivityMarker) error
	LastFn     func(ctx context.Context, userID int64) (civil.Date, bool, error)
	HistoricFn func(ctx context.Context, c domain.HistoricDailyCount) error

	inserted []domain.ScanEvent
	markers  []domain.ActivityMarker
	historic []domain.HistoricDailyCount
}

func (f *fakeScanRepo) InsertScan(ctx context.Context, e *domain.ScanEvent) (int64, error) {
	f.inserted = append(f.inserted, *e)
	if f.InsertFn != nil {
		return f.InsertFn(ctx, e)
	}
	return int64(len(f.inserted)), nil
}

func (f *fakeScanRepo) UpsertActivity(ctx context.Context, m domain.ActivityMarker) error {
	f.markers = append(f.markers, m)
	if f.ActivityFn != nil {
		return f.ActivityFn(ctx, m)
	}
	return nil
}

func (f *fakeScanRepo) LastActivity(ctx context.Context, userID int64) (civil.Date, bool, error) {
	if f.LastFn != nil {
		return f.LastFn(ctx, userID)
	}
	return civil.Date{}, false, nil
}

func (f *fakeScanRepo) UpsertHistoric(ctx context.Context, c domain.HistoricDailyCount) error {
	if f.HistoricFn != nil {
		if err := f.HistoricFn(ctx, c); err != nil {
			return err
		}
	}
	f.historic = append(f.historic, c)
	return nil
}

// fakeMirror implements ports.ScanMirrorPort; it fails the first failTimes calls.
type fakeMirror struct {
	mu        sync.Mutex
	failTimes int
	calls     int
	published []domain.MirrorRecord
	err       error
}

func (f *fakeMirror) MirrorScan(ctx context.Context, r domain.MirrorRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.calls <= f.failTimes {
		return f.err
	}
	f.published = append(f.published, r)
	return nil
}

func (f *fakeMirror) snapshot() (int, []domain.MirrorRecord) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls, append([]domain.MirrorRecord(nil), f.published...)
}
