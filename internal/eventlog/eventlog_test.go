package eventlog

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestLogEventWritesTypeAndMessage(t *testing.T) {
	var buf bytes.Buffer
	l := New(slog.New(slog.NewTextHandler(&buf, nil)))

	l.LogEvent("DISPENSED", "VIS abcdef")

	out := buf.String()
	if !strings.Contains(out, "type=DISPENSED") {
		t.Errorf("output missing event type: %s", out)
	}
	if !strings.Contains(out, "VIS abcdef") {
		t.Errorf("output missing message: %s", out)
	}
}
