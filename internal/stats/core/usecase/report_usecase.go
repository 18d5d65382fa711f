package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"scan-stats-service/internal/clock"
	"scan-stats-service/internal/stats/core/domain"
	"scan-stats-service/internal/stats/core/ports"
	"scan-stats-service/pkg/metrics"

	"github.com/golang-sql/civil"
	"golang.org/x/sync/errgroup"
)

const (
	PeriodToday  = "today"
	PeriodDecade = "decade"
)

var (
	ErrInvalidPeriod = errors.New("invalid report period")
	ErrInvalidDecade = errors.New("decade number must be 1, 2 or 3")
)

type GetReportUseCase struct {
	reader  ports.StatsReaderPort
	clock   clock.Clock
	metrics *metrics.Manager
}

func NewGetReportUseCase(reader ports.StatsReaderPort, clk clock.Clock, m *metrics.Manager) *GetReportUseCase {
	return &GetReportUseCase{reader: reader, clock: clk, metrics: m}
}

type GetReportInput struct {
	Period    string
	DecadeNum int
}

func (uc *GetReportUseCase) Execute(ctx context.Context, in GetReportInput) (*domain.ReportData, error) {
	switch in.Period {
	case PeriodToday:
		defer uc.metrics.ObserveQuery("report_today", time.Now())
		today, err := uc.today(ctx)
		if err != nil {
			return nil, err
		}
		return &domain.ReportData{Period: PeriodToday, Today: today}, nil

	case PeriodDecade:
		if in.DecadeNum < 1 || in.DecadeNum > 3 {
			return nil, ErrInvalidDecade
		}
		defer uc.metrics.ObserveQuery("report_decade", time.Now())
		dec, err := uc.decade(ctx, in.DecadeNum)
		if err != nil {
			return nil, err
		}
		return &domain.ReportData{Period: PeriodDecade, Decade: dec}, nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidPeriod, in.Period)
	}
}

func (uc *GetReportUseCase) today(ctx context.Context) (*domain.TodayReport, error) {
	now := uc.clock.Now()
	day := civil.DateOf(now)
	from, to := clock.DayBounds(day, now.Location())

	scans, err := uc.reader.ListScans(ctx, ports.ScanFilter{From: from, To: to})
	if err != nil {
		return nil, fmt.Errorf("today report: %w", err)
	}

	byUser := map[int64][]domain.Scan{}
	for _, s := range scans {
		byUser[s.UserID] = append(byUser[s.UserID], s)
	}

	report := &domain.TodayReport{Day: day, Users: make(map[int64]domain.TodayEntry, len(byUser))}
	for userID, userScans := range byUser {
		t := tallyScans(userScans)
		report.Users[userID] = domain.TodayEntry{
			UserID:     userID,
			Count:      t.count,
			LastAdd:    *t.last,
			Duplicates: t.duplicates,
		}
	}
	return report, nil
}

// decade covers the whole requested decade of the current month only.
func (uc *GetReportUseCase) decade(ctx context.Context, num int) (*domain.DecadeReport, error) {
	today := clock.Today(uc.clock)
	dec := domain.DecadeInMonth(today.Year, today.Month, num)
	filter := ports.DayFilter{From: dec.Start, To: dec.End}

	var live, historic []domain.DailyCount
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		live, err = uc.reader.LiveDailyCounts(gctx, filter)
		return err
	})
	g.Go(func() error {
		var err error
		historic, err = uc.reader.HistoricDailyCounts(gctx, filter)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("decade report: %w", err)
	}

	totals := map[int64]int64{}
	for _, rows := range [][]domain.DailyCount{historic, live} {
		for _, r := range rows {
			if inRange(r.Day, dec.Start, dec.End) {
				totals[r.UserID] += r.Count
			}
		}
	}

	return &domain.DecadeReport{
		Decade:    dec,
		MonthName: domain.MonthName(today.Month),
		Year:      today.Year,
		Totals:    totals,
	}, nil
}
