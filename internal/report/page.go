package report

import (
	"fmt"

	"scan-stats-service/internal/stats/core/domain"
)

// Page is the data context for the personal statistics web page.
type Page struct {
	UserFirstName   string `json:"user_first_name"`
	CurrentDate     string `json:"current_date"`
	TodayCount      int64  `json:"today_count"`
	DuplicatesToday int64  `json:"duplicates_today"`
	LastAddition    string `json:"last_addition"`

	DecadeDates         string `json:"decade_dates"`
	DecadeProgress      int64  `json:"decade_progress"`
	DecadeNorm          int64  `json:"decade_norm"`
	RemainingForPremium int64  `json:"remaining_for_premium"`
	Premium             string `json:"premium"`

	OverallTotal  int64       `json:"overall_total"`
	BestDayCount  int64       `json:"best_day_count"`
	BestDayDate   string      `json:"best_day_date"`
	AveragePerDay int64       `json:"average_per_day"`
	OverallRank   domain.Rank `json:"overall_rank"`
	RankedUsers   int         `json:"ranked_users"`

	HourlyLabels []string  `json:"hourly_labels"`
	HourlyData   [24]int64 `json:"hourly_data"`
	WeeklyLabels []string  `json:"weekly_labels"`
	WeeklyData   [7]int64  `json:"weekly_data"`
}

func BuildPage(name string, s *domain.PersonalStats, chart *domain.ChartData) Page {
	p := Page{
		UserFirstName:   FirstName(name),
		CurrentDate:     s.AsOf.Format("02.01.2006"),
		TodayCount:      s.TodayCount,
		DuplicatesToday: s.TodayDuplicates,
		LastAddition:    "N/A",

		DecadeDates:         fmt.Sprintf("%s - %s", dayMonth(s.Decade.Start), dayMonth(s.Decade.End)),
		DecadeProgress:      s.DecadeTotal,
		DecadeNorm:          s.Premium.Norm,
		RemainingForPremium: s.Premium.Remaining,
		Premium:             Money(s.Premium.Amount),

		OverallTotal:  s.OverallTotal,
		BestDayDate:   "N/A",
		AveragePerDay: s.AveragePerDay,
		OverallRank:   s.Rank,
		RankedUsers:   s.RankedUsers,
	}
	if s.LastAddition != nil {
		p.LastAddition = s.LastAddition.Format("15:04")
	}
	if s.BestDay != nil {
		p.BestDayDate = dayMonth(s.BestDay.Day)
		p.BestDayCount = s.BestDay.Count
	}
	if chart != nil {
		p.HourlyLabels = chart.HourlyLabels
		p.HourlyData = chart.Hourly
		p.WeeklyLabels = chart.WeeklyLabels
		p.WeeklyData = chart.Weekly
	}
	return p
}
