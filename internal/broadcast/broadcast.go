// Package broadcast fans a message from a privileged sender out to every
// user-tier member of the roster and collects their acknowledgements.
package broadcast

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"scan-stats-service/pkg/metrics"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	ErrNotPermitted = errors.New("sender may not broadcast")
	ErrNoRecipients = errors.New("no broadcast recipients")
	ErrEmptyMessage = errors.New("broadcast needs text or a photo")
	ErrNoBroadcast  = errors.New("no active broadcast for user")
)

// Roster is the part of the user directory a broadcast needs.
type Roster interface {
	Name(userID int64) string
	IsSpecial(userID int64) bool
	Recipients(senderID int64) []int64
}

type Delivery struct {
	BroadcastID string `json:"broadcast_id"`
	RecipientID int64  `json:"recipient_id"`
	Text        string `json:"text"`
	PhotoID     string `json:"photo_id,omitempty"`
	// Kind is "message" for the fan-out and "report" for the
	// acknowledgement summary sent back to the sender.
	Kind string `json:"kind"`
}

const (
	KindMessage = "message"
	KindReport  = "report"
)

type Sender interface {
	Send(ctx context.Context, d Delivery) error
}

type Input struct {
	SenderID int64
	Text     string
	PhotoID  string
}

type Tally struct {
	ID         string
	Recipients int
	Delivered  int
	Failed     int
	FailedIDs  []int64
}

type Ack struct {
	Accepted []string
	Skipped  []string
	Text     string
}

type state struct {
	id         string
	senderID   int64
	recipients map[int64]struct{}
	accepted   map[int64]struct{}
	skipped    map[int64]struct{}
}

type Service struct {
	roster      func() Roster
	sender      Sender
	concurrency int
	log         *zap.Logger
	metrics     *metrics.Manager

	mu   sync.Mutex
	last *state
}

type Option func(*Service)

func WithLogger(l *zap.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

func WithMetrics(m *metrics.Manager) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithConcurrency bounds parallel deliveries.
func WithConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

func NewService(roster func() Roster, sender Sender, opts ...Option) *Service {
	s := &Service{
		roster:      roster,
		sender:      sender,
		concurrency: 8,
		log:         zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Broadcast delivers to every recipient independently. Individual failures
// are counted in the tally and never abort the fan-out.
func (s *Service) Broadcast(ctx context.Context, in Input) (*Tally, error) {
	if strings.TrimSpace(in.Text) == "" && in.PhotoID == "" {
		return nil, ErrEmptyMessage
	}

	r := s.roster()
	if !r.IsSpecial(in.SenderID) {
		return nil, fmt.Errorf("%w: user %d", ErrNotPermitted, in.SenderID)
	}
	recipients := r.Recipients(in.SenderID)
	if len(recipients) == 0 {
		return nil, ErrNoRecipients
	}

	tally := &Tally{ID: uuid.NewString(), Recipients: len(recipients)}
	text := fmt.Sprintf("📢 Сообщение от: *%s*\n\n%s", r.Name(in.SenderID), in.Text)

	st := &state{
		id:         tally.ID,
		senderID:   in.SenderID,
		recipients: make(map[int64]struct{}, len(recipients)),
		accepted:   map[int64]struct{}{},
		skipped:    map[int64]struct{}{},
	}

	var mu sync.Mutex
	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for _, id := range recipients {
		g.Go(func() error {
			err := s.sender.Send(ctx, Delivery{
				BroadcastID: tally.ID,
				RecipientID: id,
				Text:        text,
				PhotoID:     in.PhotoID,
				Kind:        KindMessage,
			})

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				tally.Failed++
				tally.FailedIDs = append(tally.FailedIDs, id)
				s.metrics.RecordBroadcast(metrics.OutcomeFailure)
				s.log.Warn("broadcast delivery failed",
					zap.String("broadcast_id", tally.ID),
					zap.Int64("recipient_id", id),
					zap.Error(err),
				)
				return nil
			}
			tally.Delivered++
			st.recipients[id] = struct{}{}
			s.metrics.RecordBroadcast(metrics.OutcomeSuccess)
			return nil
		})
	}
	_ = g.Wait()

	sort.Slice(tally.FailedIDs, func(i, j int) bool { return tally.FailedIDs[i] < tally.FailedIDs[j] })

	s.mu.Lock()
	s.last = st
	s.mu.Unlock()

	s.log.Info("broadcast sent",
		zap.String("broadcast_id", tally.ID),
		zap.Int64("sender_id", in.SenderID),
		zap.Int("recipients", tally.Recipients),
		zap.Int("delivered", tally.Delivered),
		zap.Int("failed", tally.Failed),
	)
	return tally, nil
}

// Acknowledge records a recipient's reply to the latest broadcast and sends
// the updated summary to its sender. Only recipients that received the
// message may answer.
func (s *Service) Acknowledge(ctx context.Context, userID int64, accepted bool) (*Ack, error) {
	s.mu.Lock()
	st := s.last
	if st == nil {
		s.mu.Unlock()
		return nil, ErrNoBroadcast
	}
	if _, ok := st.recipients[userID]; !ok {
		s.mu.Unlock()
		return nil, ErrNoBroadcast
	}
	if accepted {
		st.accepted[userID] = struct{}{}
		delete(st.skipped, userID)
	} else {
		st.skipped[userID] = struct{}{}
		delete(st.accepted, userID)
	}
	r := s.roster()
	ack := &Ack{
		Accepted: sortedNames(r, st.accepted),
		Skipped:  sortedNames(r, st.skipped),
	}
	id, senderID := st.id, st.senderID
	s.mu.Unlock()

	ack.Text = fmt.Sprintf("📢 Отчет:\n✅ Приняли (%d): %s\n⏭ Пропустили (%d): %s",
		len(ack.Accepted), joinOrDash(ack.Accepted),
		len(ack.Skipped), joinOrDash(ack.Skipped),
	)

	if err := s.sender.Send(ctx, Delivery{
		BroadcastID: id,
		RecipientID: senderID,
		Text:        ack.Text,
		Kind:        KindReport,
	}); err != nil {
		s.log.Warn("broadcast report delivery failed",
			zap.String("broadcast_id", id),
			zap.Int64("sender_id", senderID),
			zap.Error(err),
		)
	}
	return ack, nil
}

func sortedNames(r Roster, ids map[int64]struct{}) []string {
	names := make([]string, 0, len(ids))
	for id := range ids {
		names = append(names, r.Name(id))
	}
	sort.Strings(names)
	return names
}

func joinOrDash(names []string) string {
	if len(names) == 0 {
		return "-"
	}
	return strings.Join(names, ", ")
}
