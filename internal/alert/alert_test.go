package alert

import (
	"errors"
	"io"
	"log/slog"
	"net/smtp"
	"strings"
	"testing"
)

func discardLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestTailBufferDiscardsOldest(t *testing.T) {
	b := NewTailBuffer(2)
	b.Add("one")
	b.Add("two")
	b.Add("three")

	got := b.Snapshot()
	if got != "two\nthree" {
		t.Fatalf("Snapshot() = %q, want %q", got, "two\nthree")
	}
}

func TestAlertSendsTailInBody(t *testing.T) {
	tail := NewTailBuffer(10)
	tail.Add("reset timed out")

	var gotBody string
	a := NewSMTPAlerter("smtp.example.com:25", nil, "kaffi@example.com", []string{"ops@example.com"}, "kaffi watchdog", tail, discardLogger())
	a.sendMail = func(addr string, auth smtp.Auth, from string, to []string, msg []byte) error {
		gotBody = string(msg)
		return nil
	}

	a.Alert()

	if !strings.Contains(gotBody, "reset timed out") {
		t.Errorf("body missing tail content: %s", gotBody)
	}
}

func TestAlertLogsSendFailure(t *testing.T) {
	tail := NewTailBuffer(1)
	a := NewSMTPAlerter("smtp.example.com:25", nil, "kaffi@example.com", []string{"ops@example.com"}, "kaffi watchdog", tail, discardLogger())
	a.sendMail = func(string, smtp.Auth, string, []string, []byte) error {
		return errors.New("connection refused")
	}

	// Must not panic even though the send fails.
	a.Alert()
}
