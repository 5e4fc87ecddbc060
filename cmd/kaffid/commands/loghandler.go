package commands

import (
	"context"
	"log/slog"
	"strings"

	"github.com/worxli/kaffi/internal/alert"
)

// tailWriter feeds every log line into an alert.TailBuffer so a watchdog
// alert can attach recent context.
type tailWriter struct {
	tail *alert.TailBuffer
}

func (w tailWriter) Write(p []byte) (int, error) {
	w.tail.Add(strings.TrimRight(string(p), "\n"))
	return len(p), nil
}

// multiHandler fans a log record out to multiple slog.Handlers, used to
// write every record both to the normal log output and into the watchdog's
// tail buffer.
type multiHandler struct {
	handlers []slog.Handler
}

func newMultiHandler(handlers ...slog.Handler) multiHandler {
	return multiHandler{handlers: handlers}
}

func (m multiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range m.handlers {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (m multiHandler) Handle(ctx context.Context, r slog.Record) error {
	for _, h := range m.handlers {
		if h.Enabled(ctx, r.Level) {
			if err := h.Handle(ctx, r.Clone()); err != nil {
				return err
			}
		}
	}
	return nil
}

func (m multiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		next[i] = h.WithAttrs(attrs)
	}
	return multiHandler{handlers: next}
}

func (m multiHandler) WithGroup(name string) slog.Handler {
	next := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		next[i] = h.WithGroup(name)
	}
	return multiHandler{handlers: next}
}
