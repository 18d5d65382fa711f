package ports

import (
	"context"

	"scan-stats-service/internal/scans/core/domain"
)

// ScanMirrorPort publishes a recorded scan to the external spreadsheet mirror.
type ScanMirrorPort interface {
	MirrorScan(ctx context.Context, r domain.MirrorRecord) error
}

type MirrorTarget struct {
	ShortName    string
	NumberColumn int
	DateColumn   int
}

// MirrorTargetLookup resolves where a user's scans are mirrored.
type MirrorTargetLookup func(userID int64) (MirrorTarget, bool)
