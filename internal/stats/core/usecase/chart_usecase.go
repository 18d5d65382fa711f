package usecase

import (
	"context"
	"fmt"
	"time"

	"scan-stats-service/internal/clock"
	"scan-stats-service/internal/stats/core/domain"
	"scan-stats-service/internal/stats/core/ports"
	"scan-stats-service/pkg/metrics"

	"github.com/golang-sql/civil"
	"golang.org/x/sync/errgroup"
)

const weekDays = 7

type GetChartUseCase struct {
	reader  ports.StatsReaderPort
	clock   clock.Clock
	metrics *metrics.Manager
}

func NewGetChartUseCase(reader ports.StatsReaderPort, clk clock.Clock, m *metrics.Manager) *GetChartUseCase {
	return &GetChartUseCase{reader: reader, clock: clk, metrics: m}
}

func (uc *GetChartUseCase) Execute(ctx context.Context, userID int64) (*domain.ChartData, error) {
	if userID <= 0 {
		return nil, ErrInvalidUser
	}
	defer uc.metrics.ObserveQuery("chart_series", time.Now())

	now := uc.clock.Now()
	today := civil.DateOf(now)
	loc := now.Location()
	dayStart, dayEnd := clock.DayBounds(today, loc)
	week := ports.DayFilter{UserID: userID, From: today.AddDays(-(weekDays - 1)), To: today}

	var scans []domain.Scan
	var live, historic []domain.DailyCount

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		scans, err = uc.reader.ListScans(gctx, ports.ScanFilter{UserID: userID, From: dayStart, To: dayEnd})
		return err
	})
	g.Go(func() error {
		var err error
		live, err = uc.reader.LiveDailyCounts(gctx, week)
		return err
	})
	g.Go(func() error {
		var err error
		historic, err = uc.reader.HistoricDailyCounts(gctx, week)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("chart series: %w", err)
	}

	return buildChart(userID, today, loc, scans, live, historic), nil
}

// buildChart fills the hourly series from today's scans and the weekly series
// (six days ago .. today) from both day sources.
func buildChart(userID int64, today civil.Date, loc *time.Location, scans []domain.Scan, sources ...[]domain.DailyCount) *domain.ChartData {
	chart := &domain.ChartData{
		HourlyLabels: make([]string, 24),
		WeeklyLabels: make([]string, weekDays),
	}
	for h := range 24 {
		chart.HourlyLabels[h] = fmt.Sprintf("%02d", h)
	}

	for _, s := range scans {
		if s.UserID != userID {
			continue
		}
		chart.Hourly[s.ScannedAt.In(loc).Hour()]++
	}

	first := today.AddDays(-(weekDays - 1))
	for i := range weekDays {
		d := first.AddDays(i)
		chart.WeeklyDays[i] = d
		chart.WeeklyLabels[i] = fmt.Sprintf("%02d.%02d", d.Day, int(d.Month))
	}
	for _, rows := range sources {
		for _, r := range rows {
			if r.UserID != userID || !inRange(r.Day, first, today) {
				continue
			}
			chart.Weekly[r.Day.DaysSince(first)] += r.Count
		}
	}

	return chart
}
