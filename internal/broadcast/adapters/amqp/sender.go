package amqp

import (
	"context"
	"fmt"

	"scan-stats-service/internal/broadcast"
)

type Publisher interface {
	Publish(ctx context.Context, queue string, v any) error
}

// Sender hands deliveries to the chat gateway through the outbound queue.
type Sender struct {
	pub   Publisher
	queue string
}

func NewSender(pub Publisher, queue string) *Sender {
	return &Sender{pub: pub, queue: queue}
}

var _ broadcast.Sender = (*Sender)(nil)

func (s *Sender) Send(ctx context.Context, d broadcast.Delivery) error {
	if err := s.pub.Publish(ctx, s.queue, d); err != nil {
		return fmt.Errorf("send to %d: %w", d.RecipientID, err)
	}
	return nil
}
