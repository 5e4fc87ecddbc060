package mdb

import (
	"log/slog"

	"github.com/worxli/kaffi/byteio"
)

// frameState is the link-layer framer's own byte-at-a-time state, distinct
// from the application FSM's State.
type frameState int

const (
	frameIdle frameState = iota
	frameInFrame
	frameAfterDLE
)

// Handler is the application layer the translator hands fully-framed
// messages to. *FSM implements it.
type Handler interface {
	ReceivedData(frame []byte) []byte
	ReceivedNack()
}

// Translator is the MDB link layer: it recognizes STX...DLE ETX frames with
// doubled-DLE escaping, replies with ACK + the framed response, and forwards
// out-of-frame NAKs to the handler for resynchronization.
type Translator struct {
	stream   *byteio.Stream
	handler  Handler
	watchdog *Watchdog
	log      *slog.Logger

	state frameState
	rxBuf []byte

	stop chan struct{}
	done chan struct{}
}

// NewTranslator returns a translator ready to Run. watchdog may be nil if no
// response supervision is wanted (e.g. in tests).
func NewTranslator(stream *byteio.Stream, handler Handler, watchdog *Watchdog, log *slog.Logger) *Translator {
	return &Translator{
		stream:   stream,
		handler:  handler,
		watchdog: watchdog,
		log:      log,
		state:    frameIdle,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Run reads bytes from the stream and drives the framer until Stop is
// called or the stream fails. It must run on its own goroutine (T_mdb).
func (t *Translator) Run() error {
	defer close(t.done)
	for {
		select {
		case <-t.stop:
			return nil
		default:
		}
		b, ok, err := t.stream.ReadByte()
		if err != nil {
			t.log.Error("mdb serial read failed", "error", err)
			return err
		}
		if !ok {
			continue
		}
		t.step(b)
	}
}

// Stop requests Run to return; Wait blocks until it has.
func (t *Translator) Stop()  { close(t.stop) }
func (t *Translator) Wait()  { <-t.done }

func (t *Translator) step(c byte) {
	switch t.state {
	case frameIdle:
		switch c {
		case stx:
			t.state = frameInFrame
			t.rxBuf = t.rxBuf[:0]
		case ackByte:
			// link-level ack of our previous reply; nothing to do
		case nakByte:
			t.log.Warn("received NAK")
			t.handler.ReceivedNack()
		default:
			t.log.Debug("unexpected byte while idle", "byte", c)
		}
	case frameInFrame:
		if c == dle {
			t.state = frameAfterDLE
		} else {
			t.rxBuf = append(t.rxBuf, c)
		}
	case frameAfterDLE:
		switch c {
		case etx:
			frame := append([]byte(nil), t.rxBuf...)
			reply := t.handler.ReceivedData(frame)
			if t.watchdog != nil {
				t.watchdog.Rearm()
			}
			t.transmit(reply)
			t.rxBuf = t.rxBuf[:0]
			t.state = frameIdle
		case dle:
			t.rxBuf = append(t.rxBuf, dle)
			t.state = frameInFrame
		default:
			t.log.Debug("unexpected byte after DLE", "byte", c)
			t.state = frameInFrame
		}
	}
}

func (t *Translator) transmit(reply []byte) {
	escaped := make([]byte, 0, len(reply)+2)
	for _, b := range reply {
		escaped = append(escaped, b)
		if b == dle {
			escaped = append(escaped, dle)
		}
	}
	out := make([]byte, 0, len(escaped)+4)
	out = append(out, ackByte, stx)
	out = append(out, escaped...)
	out = append(out, dle, etx)
	if err := t.stream.WriteBytes(out); err != nil {
		t.log.Error("mdb serial write failed", "error", err)
	}
}
