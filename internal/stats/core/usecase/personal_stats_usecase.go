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

var ErrInvalidUser = errors.New("invalid user id")

type GetPersonalStatsUseCase struct {
	reader  ports.StatsReaderPort
	clock   clock.Clock
	rule    domain.PremiumRule
	metrics *metrics.Manager
}

func NewGetPersonalStatsUseCase(reader ports.StatsReaderPort, clk clock.Clock, rule domain.PremiumRule, m *metrics.Manager) *GetPersonalStatsUseCase {
	return &GetPersonalStatsUseCase{reader: reader, clock: clk, rule: rule, metrics: m}
}

// readSet is everything one personal stats call needs, read once.
type readSet struct {
	now        time.Time
	today      civil.Date
	todayScans []domain.Scan
	live       []domain.DailyCount
	historic   []domain.DailyCount
}

func (uc *GetPersonalStatsUseCase) Execute(ctx context.Context, userID int64) (*domain.PersonalStats, error) {
	if userID <= 0 {
		return nil, ErrInvalidUser
	}
	defer uc.metrics.ObserveQuery("personal_stats", time.Now())

	rs, err := uc.read(ctx, userID)
	if err != nil {
		return nil, err
	}
	return uc.personal(userID, rs), nil
}

// Dashboard returns personal stats and the chart series computed from the
// same reads, so today's numbers agree between the two.
func (uc *GetPersonalStatsUseCase) Dashboard(ctx context.Context, userID int64) (*domain.PersonalStats, *domain.ChartData, error) {
	if userID <= 0 {
		return nil, nil, ErrInvalidUser
	}
	defer uc.metrics.ObserveQuery("dashboard", time.Now())

	rs, err := uc.read(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	chart := buildChart(userID, rs.today, rs.now.Location(), rs.todayScans, rs.live, rs.historic)
	return uc.personal(userID, rs), chart, nil
}

func (uc *GetPersonalStatsUseCase) read(ctx context.Context, userID int64) (*readSet, error) {
	now := uc.clock.Now()
	rs := &readSet{now: now, today: civil.DateOf(now)}
	dayStart, dayEnd := clock.DayBounds(rs.today, now.Location())

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		scans, err := uc.reader.ListScans(gctx, ports.ScanFilter{UserID: userID, From: dayStart, To: dayEnd})
		rs.todayScans = scans
		return err
	})
	// Ranking needs every user's totals, so both day tables are read unfiltered.
	g.Go(func() error {
		rows, err := uc.reader.LiveDailyCounts(gctx, ports.DayFilter{})
		rs.live = rows
		return err
	})
	g.Go(func() error {
		rows, err := uc.reader.HistoricDailyCounts(gctx, ports.DayFilter{})
		rs.historic = rows
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("personal stats: %w", err)
	}
	return rs, nil
}

func (uc *GetPersonalStatsUseCase) personal(userID int64, rs *readSet) *domain.PersonalStats {
	tally := tallyScans(rs.todayScans)
	decade := domain.DecadeOf(rs.today)

	stats := &domain.PersonalStats{
		UserID:          userID,
		AsOf:            rs.now,
		TodayCount:      tally.count,
		TodayDuplicates: tally.duplicates,
		LastAddition:    tally.last,
		Decade:          decade,
	}

	stats.DecadeTotal = sumFor(userID, decade.Start, decade.End, rs.historic, rs.live)
	stats.Premium = uc.rule.Evaluate(stats.DecadeTotal)

	totals := userTotals(rs.historic, rs.live)
	stats.OverallTotal = totals[userID]
	stats.Rank, stats.RankedUsers = rankOf(totals, userID)

	stats.BestDay = betterDay(
		bestDayOf(userID, rs.historic, domain.SourceHistoric),
		bestDayOf(userID, rs.live, domain.SourceLive),
	)

	stats.ActiveDays = activeDays(userID, rs.historic, rs.live)
	if stats.ActiveDays > 0 {
		stats.AveragePerDay = stats.OverallTotal / int64(stats.ActiveDays)
	}

	return stats
}
