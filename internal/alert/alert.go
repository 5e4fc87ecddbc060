// Package alert implements the watchdog's failure notification: an email
// to the operators carrying the tail of recent log activity, the same
// mechanism the original translator's response timer used via smtplib. No
// SMTP client library appears anywhere in the example pack, so this adapter
// is justifiably built on net/smtp directly.
package alert

import (
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"
	"sync"
)

// TailBuffer keeps the last N log lines so an alert can attach recent
// context, mirroring the original ResponseTimer's in-memory log tail.
type TailBuffer struct {
	mu    sync.Mutex
	lines []string
	max   int
}

// NewTailBuffer returns a buffer retaining at most max lines.
func NewTailBuffer(max int) *TailBuffer {
	return &TailBuffer{max: max}
}

// Add appends a line, discarding the oldest once max is exceeded.
func (b *TailBuffer) Add(line string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lines = append(b.lines, line)
	if len(b.lines) > b.max {
		b.lines = b.lines[len(b.lines)-b.max:]
	}
}

// Snapshot returns the buffered lines joined by newlines.
func (b *TailBuffer) Snapshot() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return strings.Join(b.lines, "\n")
}

// SMTPAlerter emails the operators when the MDB watchdog fires.
type SMTPAlerter struct {
	addr     string
	auth     smtp.Auth
	from     string
	to       []string
	subject  string
	tail     *TailBuffer
	log      *slog.Logger
	sendMail func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewSMTPAlerter returns an alerter that sends through the SMTP server at
// addr. auth may be nil for a server that accepts unauthenticated mail.
func NewSMTPAlerter(addr string, auth smtp.Auth, from string, to []string, subject string, tail *TailBuffer, log *slog.Logger) *SMTPAlerter {
	return &SMTPAlerter{
		addr:     addr,
		auth:     auth,
		from:     from,
		to:       to,
		subject:  subject,
		tail:     tail,
		log:      log,
		sendMail: smtp.SendMail,
	}
}

// Alert sends the notification. Failures are logged, never panicked or
// propagated: alerting must never itself take down T_mdb.
func (a *SMTPAlerter) Alert() {
	body := fmt.Sprintf("Subject: %s\r\n\r\nMDB response watchdog fired.\n\nRecent log:\n%s\n",
		a.subject, a.tail.Snapshot())
	if err := a.sendMail(a.addr, a.auth, a.from, a.to, []byte(body)); err != nil {
		a.log.Error("failed to send watchdog alert", "error", err)
	}
}
