package email

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// NoopSender logs messages instead of delivering them and keeps them for
// inspection. Used in development and tests.
type NoopSender struct {
	mu   sync.Mutex
	sent []Message
}

// NewNoopSender creates a new NoopSender.
func NewNoopSender() *NoopSender {
	return &NoopSender{}
}

// Send records the message without delivery.
func (s *NoopSender) Send(_ context.Context, msg Message) (Receipt, error) {
	if len(msg.To) == 0 {
		return Receipt{}, ErrNoRecipients
	}
	s.mu.Lock()
	s.sent = append(s.sent, msg)
	n := len(s.sent)
	s.mu.Unlock()

	slog.Info("noop_email_send", "to", msg.To, "subject", msg.Subject)
	return Receipt{MessageID: fmt.Sprintf("noop-%d", n), SentAt: time.Now()}, nil
}

// Sent returns a copy of every recorded message.
func (s *NoopSender) Sent() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.sent))
	copy(out, s.sent)
	return out
}
