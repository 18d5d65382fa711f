package amqp

import (
	"context"
	"errors"
	"testing"
	"time"

	"scan-stats-service/internal/scans/core/domain"
)

type fakePublisher struct {
	queue string
	msg   any
	err   error
}

func (f *fakePublisher) Publish(ctx context.Context, queue string, v any) error {
	f.queue = queue
	f.msg = v
	return f.err
}

func TestScanMirror_MirrorScan(t *testing.T) {
	pub := &fakePublisher{}
	m := NewScanMirror(pub, "scans.mirror")

	at := time.Date(2025, time.June, 15, 9, 7, 0, 0, time.UTC)
	err := m.MirrorScan(context.Background(), domain.MirrorRecord{
		UserID: 7, ShortName: "Иванов Иван", Identifier: "00123456", ScannedAt: at, NumberColumn: 3, DateColumn: 4,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pub.queue != "scans.mirror" {
		t.Fatalf("expected queue scans.mirror, got %s", pub.queue)
	}
	msg, ok := pub.msg.(MirrorMessage)
	if !ok {
		t.Fatalf("expected MirrorMessage, got %T", pub.msg)
	}
	if msg.Stamp != "15.06. 09:07" {
		t.Fatalf("unexpected stamp %q", msg.Stamp)
	}
	if msg.NumberColumn != 3 || msg.DateColumn != 4 || msg.Identifier != "00123456" {
		t.Fatalf("unexpected message: %+v", msg)
	}
}

func TestScanMirror_PublishError(t *testing.T) {
	brokerErr := errors.New("connection refused")
	m := NewScanMirror(&fakePublisher{err: brokerErr}, "scans.mirror")

	err := m.MirrorScan(context.Background(), domain.MirrorRecord{UserID: 7})
	if !errors.Is(err, brokerErr) {
		t.Fatalf("expected wrapped broker error, got %v", err)
	}
}
