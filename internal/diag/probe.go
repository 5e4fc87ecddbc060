// Package diag is a raw byte-level diagnostic driver for the MDB and RFID
// serial links, used by "kaffid probe" to exercise hardware without the
// full FSM running. It adapts the command/response arbiter pattern used
// elsewhere in this codebase's transport layer: send a prototype command,
// read until a response or error pattern matches or the command's timeout
// elapses.
package diag

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/pkg/errors"

	"github.com/worxli/kaffi/byteio"
)

// Command is a single named diagnostic probe: the raw bytes to send, and
// the byte sequences that indicate an acceptable or erroneous response.
type Command struct {
	Name        string
	Description string
	Send        []byte
	Response    []byte // nil means "don't check for a positive match"
	Error       []byte // nil means "don't check for an error match"
	Timeout     time.Duration
}

// Commands is a named set of diagnostic commands.
type Commands map[string]Command

// String renders the command set as a table, in the style this codebase's
// transport layer already uses for dumping its own command sets.
func (c Commands) String() string {
	names := make(sort.StringSlice, 0, len(c))
	for name := range c {
		names = append(names, name)
	}
	names.Sort()

	buf := bytes.NewBufferString("")
	tw := tablewriter.NewWriter(buf)
	tw.SetAutoWrapText(false)
	tw.SetHeader([]string{"Name", "Timeout", "Send", "Response", "Error", "Description"})
	for _, name := range names {
		cmd := c[name]
		tw.Append([]string{
			name,
			cmd.Timeout.String(),
			fmt.Sprintf("% X", cmd.Send),
			fmt.Sprintf("% X", cmd.Response),
			fmt.Sprintf("% X", cmd.Error),
			cmd.Description,
		})
	}
	tw.Render()
	return buf.String()
}

// Result is what a probe returns for a single command.
type Result struct {
	Bytes    []byte
	Err      error
	Duration time.Duration
}

func (r Result) String() string {
	return fmt.Sprintf("probe> rx=% X err=%v duration=%v", r.Bytes, r.Err, r.Duration)
}

// ErrErrorResponse is returned when the peer's reply matched a command's
// Error pattern rather than its Response pattern.
var ErrErrorResponse = errors.New("diag: peer returned an error response")

// Prober serializes raw command/response exchanges over a single IDoIO.
// Only one call to Run may be outstanding at a time.
type Prober struct {
	mu sync.Mutex
	io byteio.IDoIO
}

// NewProber wraps an already-open IDoIO for diagnostic use.
func NewProber(io byteio.IDoIO) *Prober {
	return &Prober{io: io}
}

// Run sends cmd.Send and reads until the response matches cmd.Response
// (success), cmd.Error (failure), or cmd.Timeout elapses.
func (p *Prober) Run(ctx context.Context, cmd Command) (result Result) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.drain()

	start := time.Now()
	defer func() { result.Duration = time.Since(start) }()

	if n, err := p.io.Write(cmd.Send); err != nil || n != len(cmd.Send) {
		return Result{Err: errors.Wrap(err, "diag: writing command")}
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, cmd.Timeout)
	defer cancel()

	rcvd := bytes.NewBuffer(nil)
	buf := bufio.NewReader(p.io)

	for {
		select {
		case <-timeoutCtx.Done():
			return Result{Bytes: rcvd.Bytes(), Err: errors.Wrap(timeoutCtx.Err(), "diag: timed out awaiting response")}
		default:
		}

		b, err := buf.ReadByte()
		if err != nil {
			if byteio.IsTimeout(err) {
				continue
			}
			return Result{Bytes: rcvd.Bytes(), Err: errors.Wrap(err, "diag: read failed")}
		}
		rcvd.WriteByte(b)

		raw := rcvd.Bytes()
		if cmd.Error != nil && bytes.Contains(raw, cmd.Error) {
			return Result{Bytes: raw, Err: ErrErrorResponse}
		}
		if cmd.Response != nil && bytes.Contains(raw, cmd.Response) {
			return Result{Bytes: raw, Err: nil}
		}
	}
}

// drain discards any bytes left over from a previous exchange so they
// don't corrupt the next command's response match.
func (p *Prober) drain() {
	rdr := bufio.NewReader(p.io)
	for {
		if _, err := rdr.ReadByte(); err != nil {
			return
		}
	}
}
