package email

import (
	"context"
	"time"
)

// Message is one outbound email.
type Message struct {
	To      []string
	From    string // falls back to the sender's default
	Subject string
	HTML    string
	ReplyTo string
	Tags    map[string]string // provider tags, e.g. {"kind": "performance_report"}
}

// Receipt is the provider's acknowledgement of a send.
type Receipt struct {
	MessageID string
	SentAt    time.Time
}

// Sender delivers email through an external provider.
type Sender interface {
	Send(ctx context.Context, msg Message) (Receipt, error)
}

// NewSender returns a Resend-backed sender when apiKey is set and a logging
// no-op sender otherwise.
func NewSender(apiKey, from string) Sender {
	if apiKey == "" {
		return NewNoopSender()
	}
	return NewResendSender(apiKey, from)
}
