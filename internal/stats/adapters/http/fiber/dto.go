package fiber

import (
	"sort"
	"time"

	"scan-stats-service/internal/report"
	"scan-stats-service/internal/stats/core/domain"
)

type TextResponse struct {
	Text string `json:"text"`
}

type BestDayResponse struct {
	Date   string `json:"date"`
	Count  int64  `json:"count"`
	Source string `json:"source"`
}

type PremiumResponse struct {
	Norm      int64 `json:"norm"`
	Over      int64 `json:"over"`
	Amount    int64 `json:"amount"`
	Remaining int64 `json:"remaining"`
}

// PersonalStatsResponse
// @Description Personal statistics of one user as of the service clock
type PersonalStatsResponse struct {
	UserID          int64      `json:"user_id"`
	Name            string     `json:"name"`
	AsOf            time.Time  `json:"as_of"`
	TodayCount      int64      `json:"today_count"`
	TodayDuplicates int64      `json:"today_duplicates"`
	LastAddition    *time.Time `json:"last_addition,omitempty"`

	DecadeNum   int             `json:"decade_num"`
	DecadeStart string          `json:"decade_start"`
	DecadeEnd   string          `json:"decade_end"`
	DecadeTotal int64           `json:"decade_total"`
	Premium     PremiumResponse `json:"premium"`

	OverallTotal  int64            `json:"overall_total"`
	Rank          domain.Rank      `json:"rank" swaggertype:"string" example:"2"`
	RankedUsers   int              `json:"ranked_users"`
	BestDay       *BestDayResponse `json:"best_day,omitempty"`
	ActiveDays    int              `json:"active_days"`
	AveragePerDay int64            `json:"average_per_day"`
}

func toPersonalResponse(name string, s *domain.PersonalStats) PersonalStatsResponse {
	resp := PersonalStatsResponse{
		UserID:          s.UserID,
		Name:            name,
		AsOf:            s.AsOf,
		TodayCount:      s.TodayCount,
		TodayDuplicates: s.TodayDuplicates,
		LastAddition:    s.LastAddition,
		DecadeNum:       s.Decade.Num,
		DecadeStart:     s.Decade.Start.String(),
		DecadeEnd:       s.Decade.End.String(),
		DecadeTotal:     s.DecadeTotal,
		Premium: PremiumResponse{
			Norm:      s.Premium.Norm,
			Over:      s.Premium.Over,
			Amount:    s.Premium.Amount,
			Remaining: s.Premium.Remaining,
		},
		OverallTotal:  s.OverallTotal,
		Rank:          s.Rank,
		RankedUsers:   s.RankedUsers,
		ActiveDays:    s.ActiveDays,
		AveragePerDay: s.AveragePerDay,
	}
	if s.BestDay != nil {
		resp.BestDay = &BestDayResponse{
			Date:   s.BestDay.Day.String(),
			Count:  s.BestDay.Count,
			Source: string(s.BestDay.Source),
		}
	}
	return resp
}

type ChartResponse struct {
	UserID       int64     `json:"user_id"`
	HourlyLabels []string  `json:"hourly_labels"`
	HourlyData   [24]int64 `json:"hourly_data"`
	WeeklyLabels []string  `json:"weekly_labels"`
	WeeklyData   [7]int64  `json:"weekly_data"`
}

func toChartResponse(userID int64, c *domain.ChartData) ChartResponse {
	return ChartResponse{
		UserID:       userID,
		HourlyLabels: c.HourlyLabels,
		HourlyData:   c.Hourly,
		WeeklyLabels: c.WeeklyLabels,
		WeeklyData:   c.Weekly,
	}
}

type TodayUserResponse struct {
	UserID     int64     `json:"user_id"`
	Name       string    `json:"name"`
	Count      int64     `json:"count"`
	Duplicates int64     `json:"duplicates"`
	LastAdd    time.Time `json:"last_add"`
}

type TodayReportResponse struct {
	Date       string              `json:"date"`
	Users      []TodayUserResponse `json:"users"`
	Total      int64               `json:"total"`
	Duplicates int64               `json:"duplicates"`
}

func toTodayResponse(r *domain.TodayReport, names report.Names) TodayReportResponse {
	resp := TodayReportResponse{Date: r.Day.String(), Users: []TodayUserResponse{}}
	for _, e := range r.Users {
		resp.Users = append(resp.Users, TodayUserResponse{
			UserID:     e.UserID,
			Name:       names.Name(e.UserID),
			Count:      e.Count,
			Duplicates: e.Duplicates,
			LastAdd:    e.LastAdd,
		})
		resp.Total += e.Count
		resp.Duplicates += e.Duplicates
	}
	sort.Slice(resp.Users, func(i, j int) bool {
		if resp.Users[i].Count != resp.Users[j].Count {
			return resp.Users[i].Count > resp.Users[j].Count
		}
		return resp.Users[i].UserID < resp.Users[j].UserID
	})
	return resp
}

type DecadeUserResponse struct {
	UserID  int64  `json:"user_id"`
	Name    string `json:"name"`
	Total   int64  `json:"total"`
	Over    int64  `json:"over"`
	Premium int64  `json:"premium"`
}

type DecadeReportResponse struct {
	Decade    int                  `json:"decade"`
	MonthName string               `json:"month_name"`
	Year      int                  `json:"year"`
	Start     string               `json:"start"`
	End       string               `json:"end"`
	Norm      int64                `json:"norm"`
	Users     []DecadeUserResponse `json:"users"`
}

func toDecadeResponse(r *domain.DecadeReport, rule domain.PremiumRule, names report.Names) DecadeReportResponse {
	resp := DecadeReportResponse{
		Decade:    r.Decade.Num,
		MonthName: r.MonthName,
		Year:      r.Year,
		Start:     r.Decade.Start.String(),
		End:       r.Decade.End.String(),
		Norm:      rule.Norm,
		Users:     []DecadeUserResponse{},
	}
	for id, total := range r.Totals {
		p := rule.Evaluate(total)
		resp.Users = append(resp.Users, DecadeUserResponse{
			UserID:  id,
			Name:    names.Name(id),
			Total:   total,
			Over:    p.Over,
			Premium: p.Amount,
		})
	}
	sort.Slice(resp.Users, func(i, j int) bool {
		if resp.Users[i].Total != resp.Users[j].Total {
			return resp.Users[i].Total > resp.Users[j].Total
		}
		return resp.Users[i].UserID < resp.Users[j].UserID
	})
	return resp
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
