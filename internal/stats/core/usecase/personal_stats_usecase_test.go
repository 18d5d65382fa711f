package usecase_test

import (
	"context"
	"testing"
	"time"
	_ "time/tzdata"

	"scan-stats-service/internal/clock"
	"scan-stats-service/internal/stats/core/domain"
	"scan-stats-service/internal/stats/core/usecase"

	"github.com/golang-sql/civil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var rule = domain.PremiumRule{Norm: 140, Rate: 200}

func moscow(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Europe/Moscow")
	require.NoError(t, err)
	return loc
}

func date(y int, m time.Month, d int) civil.Date {
	return civil.Date{Year: y, Month: m, Day: d}
}

// fixture: today is 2025-06-15 12:00 Moscow, decade 2.
func fixture(t *testing.T) (*memoryReader, *clock.FakeClock, *time.Location) {
	t.Helper()
	loc := moscow(t)
	now := time.Date(2025, time.June, 15, 12, 0, 0, 0, loc)
	return &memoryReader{loc: loc}, clock.NewFakeClock(now), loc
}

func TestPersonalStats_TodayDuplicatesAndLastAddition(t *testing.T) {
	r, clk, loc := fixture(t)
	r.addScan(1, "A", time.Date(2025, 6, 15, 9, 0, 0, 0, loc))
	r.addScan(1, "A", time.Date(2025, 6, 15, 9, 5, 0, 0, loc))
	r.addScan(1, "B", time.Date(2025, 6, 15, 10, 0, 0, 0, loc))
	r.addScan(1, "C", time.Date(2025, 6, 14, 23, 59, 0, 0, loc)) // yesterday
	r.addScan(2, "A", time.Date(2025, 6, 15, 11, 0, 0, 0, loc))  // other user

	uc := usecase.NewGetPersonalStatsUseCase(r, clk, rule, nil)
	stats, err := uc.Execute(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, int64(3), stats.TodayCount)
	assert.Equal(t, int64(1), stats.TodayDuplicates)
	require.NotNil(t, stats.LastAddition)
	assert.Equal(t, "10:00", stats.LastAddition.In(loc).Format("15:04"))
}

func TestPersonalStats_DecadeIsAdditiveAcrossSources(t *testing.T) {
	r, clk, loc := fixture(t)
	r.addHistoric(1, date(2025, 6, 10), 50) // previous decade
	r.addHistoric(1, date(2025, 6, 11), 60)
	r.addHistoric(1, date(2025, 6, 14), 70)
	r.addScan(1, "X", time.Date(2025, 6, 14, 10, 0, 0, 0, loc))
	r.addScan(1, "Y", time.Date(2025, 6, 15, 10, 0, 0, 0, loc))

	uc := usecase.NewGetPersonalStatsUseCase(r, clk, rule, nil)
	stats, err := uc.Execute(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, 2, stats.Decade.Num)
	assert.Equal(t, date(2025, 6, 11), stats.Decade.Start)
	assert.Equal(t, date(2025, 6, 15), stats.Decade.End)
	assert.Equal(t, int64(132), stats.DecadeTotal)
	assert.Equal(t, int64(182), stats.OverallTotal)
	assert.Equal(t, int64(8), stats.Premium.Remaining)
	assert.Equal(t, int64(0), stats.Premium.Amount)
}

func TestPersonalStats_PremiumAboveNorm(t *testing.T) {
	r, clk, _ := fixture(t)
	r.addHistoric(1, date(2025, 6, 12), 150)

	uc := usecase.NewGetPersonalStatsUseCase(r, clk, rule, nil)
	stats, err := uc.Execute(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, int64(10), stats.Premium.Over)
	assert.Equal(t, int64(2000), stats.Premium.Amount)
}

func TestPersonalStats_BestDayIsNeverSummed(t *testing.T) {
	r, clk, loc := fixture(t)
	r.addHistoric(1, date(2025, 6, 1), 25)
	for i := range 20 {
		r.addScan(1, "S", time.Date(2025, 6, 1, 10, i, 0, 0, loc))
	}

	uc := usecase.NewGetPersonalStatsUseCase(r, clk, rule, nil)
	stats, err := uc.Execute(context.Background(), 1)
	require.NoError(t, err)

	require.NotNil(t, stats.BestDay)
	assert.Equal(t, int64(25), stats.BestDay.Count)
	assert.Equal(t, date(2025, 6, 1), stats.BestDay.Day)
	assert.Equal(t, domain.SourceHistoric, stats.BestDay.Source)
	// additive totals still count both sources
	assert.Equal(t, int64(45), stats.OverallTotal)
	// one distinct day
	assert.Equal(t, 1, stats.ActiveDays)
	assert.Equal(t, int64(45), stats.AveragePerDay)
}

func TestPersonalStats_BestDayTiePrefersRecent(t *testing.T) {
	r, clk, loc := fixture(t)
	r.addHistoric(1, date(2025, 6, 2), 3)
	for i := range 3 {
		r.addScan(1, "S", time.Date(2025, 6, 5, 10, i, 0, 0, loc))
	}

	uc := usecase.NewGetPersonalStatsUseCase(r, clk, rule, nil)
	stats, err := uc.Execute(context.Background(), 1)
	require.NoError(t, err)

	require.NotNil(t, stats.BestDay)
	assert.Equal(t, date(2025, 6, 5), stats.BestDay.Day)
	assert.Equal(t, domain.SourceLive, stats.BestDay.Source)
}

func TestPersonalStats_ZeroHistoricDaysDoNotQualifyAsBest(t *testing.T) {
	r, clk, _ := fixture(t)
	r.addHistoric(1, date(2025, 6, 2), 0)

	uc := usecase.NewGetPersonalStatsUseCase(r, clk, rule, nil)
	stats, err := uc.Execute(context.Background(), 1)
	require.NoError(t, err)

	assert.Nil(t, stats.BestDay)
	assert.Equal(t, 1, stats.ActiveDays)
	assert.Equal(t, int64(0), stats.AveragePerDay)
	assert.Equal(t, domain.Rank(1), stats.Rank)
}

func TestPersonalStats_AverageFloorsOverDistinctDays(t *testing.T) {
	r, clk, loc := fixture(t)
	r.addHistoric(1, date(2025, 6, 1), 10)
	r.addHistoric(1, date(2025, 6, 2), 5)
	r.addScan(1, "S", time.Date(2025, 6, 2, 10, 0, 0, 0, loc))
	r.addScan(1, "T", time.Date(2025, 6, 3, 10, 0, 0, 0, loc))

	uc := usecase.NewGetPersonalStatsUseCase(r, clk, rule, nil)
	stats, err := uc.Execute(context.Background(), 1)
	require.NoError(t, err)

	// 17 over 3 distinct days
	assert.Equal(t, int64(17), stats.OverallTotal)
	assert.Equal(t, 3, stats.ActiveDays)
	assert.Equal(t, int64(5), stats.AveragePerDay)
}

func TestPersonalStats_Rank(t *testing.T) {
	r, clk, loc := fixture(t)
	r.addHistoric(1, date(2025, 6, 1), 100)
	r.addHistoric(2, date(2025, 6, 1), 40)
	r.addHistoric(3, date(2025, 6, 1), 40)
	r.addScan(3, "S", time.Date(2025, 6, 2, 10, 0, 0, 0, loc))

	uc := usecase.NewGetPersonalStatsUseCase(r, clk, rule, nil)

	cases := map[int64]domain.Rank{1: 1, 3: 2, 2: 3}
	for userID, want := range cases {
		stats, err := uc.Execute(context.Background(), userID)
		require.NoError(t, err)
		assert.Equal(t, want, stats.Rank, "user %d", userID)
		assert.Equal(t, 3, stats.RankedUsers)
	}
}

func TestPersonalStats_RankTieBreaksByUserID(t *testing.T) {
	r, clk, _ := fixture(t)
	r.addHistoric(9, date(2025, 6, 1), 40)
	r.addHistoric(4, date(2025, 6, 1), 40)

	uc := usecase.NewGetPersonalStatsUseCase(r, clk, rule, nil)

	s4, err := uc.Execute(context.Background(), 4)
	require.NoError(t, err)
	s9, err := uc.Execute(context.Background(), 9)
	require.NoError(t, err)

	assert.Equal(t, domain.Rank(1), s4.Rank)
	assert.Equal(t, domain.Rank(2), s9.Rank)
}

func TestPersonalStats_RankIsMonotonicInTotal(t *testing.T) {
	r, clk, loc := fixture(t)
	r.addHistoric(1, date(2025, 6, 1), 10)
	r.addHistoric(2, date(2025, 6, 1), 12)

	uc := usecase.NewGetPersonalStatsUseCase(r, clk, rule, nil)
	before, err := uc.Execute(context.Background(), 1)
	require.NoError(t, err)

	for i := range 5 {
		r.addScan(1, "S", time.Date(2025, 6, 15, 10, i, 0, 0, loc))
	}
	after, err := uc.Execute(context.Background(), 1)
	require.NoError(t, err)

	assert.LessOrEqual(t, after.Rank, before.Rank)
	assert.Equal(t, domain.Rank(1), after.Rank)
}

func TestPersonalStats_UnknownUser(t *testing.T) {
	r, clk, _ := fixture(t)
	r.addHistoric(1, date(2025, 6, 1), 10)

	uc := usecase.NewGetPersonalStatsUseCase(r, clk, rule, nil)
	stats, err := uc.Execute(context.Background(), 77)
	require.NoError(t, err)

	assert.Equal(t, int64(0), stats.TodayCount)
	assert.Nil(t, stats.LastAddition)
	assert.Equal(t, int64(0), stats.OverallTotal)
	assert.Equal(t, domain.Rank(0), stats.Rank)
	assert.Nil(t, stats.BestDay)
	assert.Equal(t, int64(0), stats.AveragePerDay)
	assert.Equal(t, int64(140), stats.Premium.Remaining)
}

func TestPersonalStats_InvalidUser(t *testing.T) {
	r, clk, _ := fixture(t)
	uc := usecase.NewGetPersonalStatsUseCase(r, clk, rule, nil)

	_, err := uc.Execute(context.Background(), 0)
	assert.ErrorIs(t, err, usecase.ErrInvalidUser)
}

func TestPersonalStats_ReadFailureFailsWholeCall(t *testing.T) {
	r, clk, _ := fixture(t)
	r.failHistoric = errReader

	uc := usecase.NewGetPersonalStatsUseCase(r, clk, rule, nil)
	stats, err := uc.Execute(context.Background(), 1)

	assert.ErrorIs(t, err, errReader)
	assert.Nil(t, stats)
}

func TestPersonalStats_RoundTripOfSubmittedScans(t *testing.T) {
	r, clk, _ := fixture(t)
	ids := []string{"A", "B", "A", "C", "B", "A"}
	for i, id := range ids {
		r.addScan(5, id, clk.Now().Add(time.Duration(-i)*time.Minute))
	}

	uc := usecase.NewGetPersonalStatsUseCase(r, clk, rule, nil)
	stats, err := uc.Execute(context.Background(), 5)
	require.NoError(t, err)

	assert.Equal(t, int64(len(ids)), stats.TodayCount)
	assert.Equal(t, int64(len(ids)-3), stats.TodayDuplicates)
}

func TestDashboard_SharesReads(t *testing.T) {
	r, clk, loc := fixture(t)
	r.addScan(1, "A", time.Date(2025, 6, 15, 9, 0, 0, 0, loc))
	r.addScan(1, "B", time.Date(2025, 6, 15, 9, 30, 0, 0, loc))
	r.addHistoric(1, date(2025, 6, 10), 7)

	uc := usecase.NewGetPersonalStatsUseCase(r, clk, rule, nil)
	stats, chart, err := uc.Dashboard(context.Background(), 1)
	require.NoError(t, err)

	var hourly int64
	for _, v := range chart.Hourly {
		hourly += v
	}
	assert.Equal(t, stats.TodayCount, hourly)
	assert.Equal(t, int64(2), chart.Hourly[9])
	assert.Equal(t, int64(7), chart.Weekly[1]) // 10.06 in 09.06..15.06
	assert.Equal(t, int64(2), chart.Weekly[6])
}
