package domain

import (
	"encoding/json"
	"time"

	"github.com/golang-sql/civil"
)

// Scan is one live scan as seen by the aggregation engine.
type Scan struct {
	UserID     int64
	Identifier string
	ScannedAt  time.Time
}

// DailyCount is a per (user, day) total from one source.
type DailyCount struct {
	UserID int64
	Day    civil.Date
	Count  int64
}

type Source string

const (
	SourceHistoric Source = "historic"
	SourceLive     Source = "live"
)

type BestDay struct {
	Day    civil.Date
	Count  int64
	Source Source
}

// Rank is 1-based; zero means the user has no data anywhere.
type Rank int

func (r Rank) String() string {
	if r <= 0 {
		return "N/A"
	}
	return itoa(int(r))
}

// MarshalJSON renders an unranked user as "N/A".
func (r Rank) MarshalJSON() ([]byte, error) {
	if r <= 0 {
		return json.Marshal("N/A")
	}
	return json.Marshal(int(r))
}

type PersonalStats struct {
	UserID int64
	AsOf   time.Time

	TodayCount      int64
	TodayDuplicates int64
	// LastAddition is nil when there are no scans today.
	LastAddition *time.Time

	Decade      Decade
	DecadeTotal int64
	Premium     Premium

	OverallTotal  int64
	Rank          Rank
	RankedUsers   int
	BestDay       *BestDay
	ActiveDays    int
	AveragePerDay int64
}

type TodayEntry struct {
	UserID     int64
	Count      int64
	LastAdd    time.Time
	Duplicates int64
}

type TodayReport struct {
	Day   civil.Date
	Users map[int64]TodayEntry
}

type DecadeReport struct {
	Decade    Decade
	MonthName string
	Year      int
	Totals    map[int64]int64
}

type ReportData struct {
	Period string
	Today  *TodayReport
	Decade *DecadeReport
}

type ChartData struct {
	HourlyLabels []string
	Hourly       [24]int64
	WeeklyLabels []string
	WeeklyDays   [7]civil.Date
	Weekly       [7]int64
}
