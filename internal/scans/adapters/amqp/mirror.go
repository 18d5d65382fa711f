package amqp

import (
	"context"
	"fmt"
	"time"

	"scan-stats-service/internal/scans/core/domain"
	"scan-stats-service/internal/scans/core/ports"
)

type Publisher interface {
	Publish(ctx context.Context, queue string, v any) error
}

// MirrorMessage is consumed by the spreadsheet writer, which puts
// Identifier into NumberColumn and Stamp into DateColumn of the next row.
type MirrorMessage struct {
	UserID       int64     `json:"user_id"`
	ShortName    string    `json:"short_name"`
	Identifier   string    `json:"identifier"`
	Stamp        string    `json:"stamp"`
	ScannedAt    time.Time `json:"scanned_at"`
	NumberColumn int       `json:"number_column"`
	DateColumn   int       `json:"date_column"`
}

type ScanMirror struct {
	pub   Publisher
	queue string
}

func NewScanMirror(pub Publisher, queue string) *ScanMirror {
	return &ScanMirror{pub: pub, queue: queue}
}

var _ ports.ScanMirrorPort = (*ScanMirror)(nil)

func (m *ScanMirror) MirrorScan(ctx context.Context, r domain.MirrorRecord) error {
	msg := MirrorMessage{
		UserID:       r.UserID,
		ShortName:    r.ShortName,
		Identifier:   r.Identifier,
		Stamp:        r.ScannedAt.Format("02.01. 15:04"),
		ScannedAt:    r.ScannedAt,
		NumberColumn: r.NumberColumn,
		DateColumn:   r.DateColumn,
	}
	if err := m.pub.Publish(ctx, m.queue, msg); err != nil {
		return fmt.Errorf("mirror scan: %w", err)
	}
	return nil
}
