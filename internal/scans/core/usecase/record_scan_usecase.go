package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"scan-stats-service/internal/clock"
	"scan-stats-service/internal/scans/core/domain"
	"scan-stats-service/internal/scans/core/ports"
	"scan-stats-service/pkg/metrics"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"
)

var (
	ErrInvalidScan = errors.New("invalid scan")
	ErrInvalidUser = errors.New("invalid user id")
)

const (
	defaultMirrorTries = 3
	defaultMirrorDelay = 2 * time.Second
)

type RecordScanUseCase struct {
	repo    ports.ScanRepositoryPort
	clock   clock.Clock
	log     *zap.Logger
	metrics *metrics.Manager

	mirror      ports.ScanMirrorPort
	targets     ports.MirrorTargetLookup
	mirrorTries uint
	mirrorDelay time.Duration
	inflight    sync.WaitGroup
}

type Option func(*RecordScanUseCase)

func WithMirror(m ports.ScanMirrorPort, targets ports.MirrorTargetLookup) Option {
	return func(uc *RecordScanUseCase) {
		uc.mirror = m
		uc.targets = targets
	}
}

func WithMirrorRetry(tries uint, delay time.Duration) Option {
	return func(uc *RecordScanUseCase) {
		if tries > 0 {
			uc.mirrorTries = tries
		}
		if delay >= 0 {
			uc.mirrorDelay = delay
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(uc *RecordScanUseCase) {
		if l != nil {
			uc.log = l
		}
	}
}

func WithMetrics(m *metrics.Manager) Option {
	return func(uc *RecordScanUseCase) {
		uc.metrics = m
	}
}

func NewRecordScanUseCase(repo ports.ScanRepositoryPort, clk clock.Clock, opts ...Option) *RecordScanUseCase {
	uc := &RecordScanUseCase{
		repo:        repo,
		clock:       clk,
		log:         zap.NewNop(),
		mirrorTries: defaultMirrorTries,
		mirrorDelay: defaultMirrorDelay,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

type RecordScanInput struct {
	UserID     int64
	Identifier string
}

// Execute appends the scan and refreshes the activity marker. The mirror runs
// after the append has committed and never affects the result.
func (uc *RecordScanUseCase) Execute(ctx context.Context, in RecordScanInput) (*domain.ScanEvent, error) {
	if in.UserID <= 0 {
		return nil, ErrInvalidUser
	}
	identifier := strings.TrimSpace(in.Identifier)
	if identifier == "" {
		return nil, ErrInvalidScan
	}

	now := uc.clock.Now()
	ev := &domain.ScanEvent{
		UserID:     in.UserID,
		Identifier: identifier,
		ScannedAt:  now,
	}

	id, err := uc.repo.InsertScan(ctx, ev)
	if err != nil {
		return nil, err
	}
	ev.ID = id
	uc.metrics.RecordScan()

	marker := domain.ActivityMarker{UserID: in.UserID, LastSeen: clock.Today(uc.clock)}
	if err := uc.repo.UpsertActivity(ctx, marker); err != nil {
		// the scan itself is durable at this point
		uc.metrics.RecordActivityFailure()
		uc.log.Warn("touch activity failed",
			zap.Int64("user_id", in.UserID),
			zap.Error(err),
		)
	}

	uc.startMirror(context.WithoutCancel(ctx), *ev)

	return ev, nil
}

// Wait blocks until every in-flight mirror attempt has finished.
func (uc *RecordScanUseCase) Wait() {
	uc.inflight.Wait()
}

func (uc *RecordScanUseCase) startMirror(ctx context.Context, ev domain.ScanEvent) {
	if uc.mirror == nil {
		return
	}

	var target ports.MirrorTarget
	ok := false
	if uc.targets != nil {
		target, ok = uc.targets(ev.UserID)
	}
	if !ok || target.NumberColumn <= 0 || target.DateColumn <= 0 {
		uc.metrics.RecordMirror(metrics.OutcomeSkipped)
		uc.log.Warn("no mirror columns for user, scan not mirrored",
			zap.Int64("user_id", ev.UserID),
		)
		return
	}

	rec := domain.MirrorRecord{
		UserID:       ev.UserID,
		ShortName:    target.ShortName,
		Identifier:   ev.Identifier,
		ScannedAt:    ev.ScannedAt,
		NumberColumn: target.NumberColumn,
		DateColumn:   target.DateColumn,
	}

	uc.inflight.Add(1)
	go func() {
		defer uc.inflight.Done()
		uc.publishMirror(ctx, rec)
	}()
}

func (uc *RecordScanUseCase) publishMirror(ctx context.Context, rec domain.MirrorRecord) {
	attempt := 0
	_, err := backoff.Retry(ctx,
		func() (struct{}, error) {
			attempt++
			return struct{}{}, uc.mirror.MirrorScan(ctx, rec)
		},
		backoff.WithBackOff(backoff.NewConstantBackOff(uc.mirrorDelay)),
		backoff.WithMaxTries(uc.mirrorTries),
		backoff.WithNotify(func(err error, next time.Duration) {
			uc.log.Warn("mirror attempt failed",
				zap.Int64("user_id", rec.UserID),
				zap.Int("attempt", attempt),
				zap.Duration("retry_in", next),
				zap.Error(err),
			)
		}),
	)
	if err != nil {
		uc.metrics.RecordMirror(metrics.OutcomeFailure)
		uc.log.Error("mirror dropped after retries",
			zap.Int64("user_id", rec.UserID),
			zap.String("identifier", rec.Identifier),
			zap.Error(err),
		)
		return
	}
	uc.metrics.RecordMirror(metrics.OutcomeSuccess)
}
