package broadcast

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRoster struct {
	names   map[int64]string
	special map[int64]bool
	users   []int64
}

func (f *fakeRoster) Name(id int64) string {
	if n, ok := f.names[id]; ok {
		return n
	}
	return fmt.Sprintf("ID %d", id)
}

func (f *fakeRoster) IsSpecial(id int64) bool { return f.special[id] }

func (f *fakeRoster) Recipients(sender int64) []int64 {
	var out []int64
	for _, id := range f.users {
		if id != sender {
			out = append(out, id)
		}
	}
	return out
}

type fakeSender struct {
	mu     sync.Mutex
	sent   []Delivery
	failOn map[int64]bool
}

func (f *fakeSender) Send(ctx context.Context, d Delivery) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failOn[d.RecipientID] {
		return errors.New("blocked by user")
	}
	f.sent = append(f.sent, d)
	return nil
}

func newFixture() (*Service, *fakeRoster, *fakeSender) {
	r := &fakeRoster{
		names:   map[int64]string{1: "Админ Главный", 10: "Бобров Борис", 11: "Алексеев Алексей", 12: "Волков Виктор"},
		special: map[int64]bool{1: true},
		users:   []int64{10, 11, 12},
	}
	snd := &fakeSender{failOn: map[int64]bool{}}
	svc := NewService(func() Roster { return r }, snd, WithConcurrency(2))
	return svc, r, snd
}

func TestBroadcast_DeliversToEveryRecipient(t *testing.T) {
	svc, _, snd := newFixture()

	tally, err := svc.Broadcast(context.Background(), Input{SenderID: 1, Text: "Завтра собрание"})
	require.NoError(t, err)

	assert.NotEmpty(t, tally.ID)
	assert.Equal(t, 3, tally.Recipients)
	assert.Equal(t, 3, tally.Delivered)
	assert.Zero(t, tally.Failed)
	require.Len(t, snd.sent, 3)
	assert.Equal(t, "📢 Сообщение от: *Админ Главный*\n\nЗавтра собрание", snd.sent[0].Text)
	assert.Equal(t, KindMessage, snd.sent[0].Kind)
}

func TestBroadcast_FailuresDoNotAbort(t *testing.T) {
	svc, _, snd := newFixture()
	snd.failOn[12] = true
	snd.failOn[10] = true

	tally, err := svc.Broadcast(context.Background(), Input{SenderID: 1, PhotoID: "photo-1"})
	require.NoError(t, err)

	assert.Equal(t, 3, tally.Recipients)
	assert.Equal(t, 1, tally.Delivered)
	assert.Equal(t, 2, tally.Failed)
	assert.Equal(t, []int64{10, 12}, tally.FailedIDs)
	assert.Equal(t, tally.Recipients, tally.Delivered+tally.Failed)
}

func TestBroadcast_Validation(t *testing.T) {
	svc, r, _ := newFixture()

	_, err := svc.Broadcast(context.Background(), Input{SenderID: 10, Text: "hi"})
	assert.ErrorIs(t, err, ErrNotPermitted)

	_, err = svc.Broadcast(context.Background(), Input{SenderID: 1, Text: "   "})
	assert.ErrorIs(t, err, ErrEmptyMessage)

	r.users = nil
	_, err = svc.Broadcast(context.Background(), Input{SenderID: 1, Text: "hi"})
	assert.ErrorIs(t, err, ErrNoRecipients)
}

func TestAcknowledge(t *testing.T) {
	svc, _, snd := newFixture()
	snd.failOn[12] = true

	_, err := svc.Acknowledge(context.Background(), 10, true)
	assert.ErrorIs(t, err, ErrNoBroadcast)

	_, err = svc.Broadcast(context.Background(), Input{SenderID: 1, Text: "hi"})
	require.NoError(t, err)

	_, err = svc.Acknowledge(context.Background(), 10, true)
	require.NoError(t, err)
	ack, err := svc.Acknowledge(context.Background(), 11, true)
	require.NoError(t, err)

	assert.Equal(t, []string{"Алексеев Алексей", "Бобров Борис"}, ack.Accepted)
	assert.Empty(t, ack.Skipped)
	assert.Equal(t, "📢 Отчет:\n✅ Приняли (2): Алексеев Алексей, Бобров Борис\n⏭ Пропустили (0): -", ack.Text)

	ack, err = svc.Acknowledge(context.Background(), 11, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"Бобров Борис"}, ack.Accepted)
	assert.Equal(t, []string{"Алексеев Алексей"}, ack.Skipped)

	// 12 never received the message
	_, err = svc.Acknowledge(context.Background(), 12, true)
	assert.ErrorIs(t, err, ErrNoBroadcast)

	last := snd.sent[len(snd.sent)-1]
	assert.Equal(t, KindReport, last.Kind)
	assert.Equal(t, int64(1), last.RecipientID)
}
