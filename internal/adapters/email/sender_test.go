package email

import (
	"context"
	"testing"
)

// TestNewSender verifies provider selection by API key.
func TestNewSender(t *testing.T) {
	if _, ok := NewSender("", "from@x.test").(*NoopSender); !ok {
		t.Error("empty key should yield NoopSender")
	}
	if _, ok := NewSender("re_123", "from@x.test").(*ResendSender); !ok {
		t.Error("key should yield ResendSender")
	}
}

// TestNoopSender_RecordsMessages verifies messages are kept in order.
func TestNoopSender_RecordsMessages(t *testing.T) {
	s := NewNoopSender()
	ctx := context.Background()

	r, err := s.Send(ctx, Message{To: []string{"a@x.test"}, Subject: "one"})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if r.MessageID != "noop-1" {
		t.Errorf("MessageID = %q", r.MessageID)
	}
	s.Send(ctx, Message{To: []string{"b@x.test"}, Subject: "two"})

	sent := s.Sent()
	if len(sent) != 2 || sent[1].Subject != "two" {
		t.Errorf("Sent = %+v", sent)
	}
	if _, err := s.Send(ctx, Message{Subject: "nobody"}); err != ErrNoRecipients {
		t.Errorf("err = %v, want ErrNoRecipients", err)
	}
}

// TestResendSender_Request verifies default from and sorted tags.
func TestResendSender_Request(t *testing.T) {
	s := NewResendSender("re_test", "Portal <reports@athleteportal.app>")
	req, err := s.request(Message{
		To:      []string{"coach@club.test"},
		Subject: "Report",
		HTML:    "<p>hi</p>",
		Tags:    map[string]string{"kind": "performance_report", "athlete": "a1"},
	})
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if req.From != "Portal <reports@athleteportal.app>" {
		t.Errorf("From = %q", req.From)
	}
	if len(req.Tags) != 2 || req.Tags[0].Name != "athlete" || req.Tags[1].Value != "performance_report" {
		t.Errorf("Tags = %+v", req.Tags)
	}
	if _, err := s.request(Message{}); err != ErrNoRecipients {
		t.Errorf("err = %v, want ErrNoRecipients", err)
	}
}
