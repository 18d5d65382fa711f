package domain

import (
	"time"

	"github.com/golang-sql/civil"
)

type ScanEvent struct {
	ID         int64
	UserID     int64
	Identifier string
	ScannedAt  time.Time
}

// HistoricDailyCount is one imported (user, day) total. Count is never negative.
type HistoricDailyCount struct {
	UserID  int64
	LogDate civil.Date
	Count   int64
}

type ActivityMarker struct {
	UserID   int64
	LastSeen civil.Date
}

// MirrorRecord is what the spreadsheet mirror receives for one scan.
type MirrorRecord struct {
	UserID       int64
	ShortName    string
	Identifier   string
	ScannedAt    time.Time
	NumberColumn int
	DateColumn   int
}
