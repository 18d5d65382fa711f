package fiber

import "time"

// CreateScanRequest carries the raw chat text; the identifier is extracted from it.
// @Description Scan submission DTO
type CreateScanRequest struct {
	UserID int64  `json:"user_id" example:"1181905320"`
	Text   string `json:"text" example:"00123456"`
}

type CreateScanResponse struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"user_id"`
	Identifier string    `json:"identifier"`
	ScannedAt  time.Time `json:"scanned_at"`
}

// HistoryDocumentEntry is one user's block in the bulk history document,
// keyed by user id: {"123": {"comment": "...", "daily_history": {"2025-06-01": 12}}}.
type HistoryDocumentEntry struct {
	Comment      string           `json:"comment"`
	DailyHistory map[string]int64 `json:"daily_history"`
}

type BulkHistoryResponse struct {
	Users int `json:"users"`
	Rows  int `json:"rows"`
}

type BulkActivityResponse struct {
	Imported int `json:"imported"`
}

type ActivityResponse struct {
	UserID       int64  `json:"user_id"`
	Found        bool   `json:"found"`
	LastSeenDate string `json:"last_seen_date,omitempty"`
}

type ErrorResponse struct {
	Error   string `json:"error" example:"invalid_request"`
	Message string `json:"message" example:"no scooter identifier in text"`
}
