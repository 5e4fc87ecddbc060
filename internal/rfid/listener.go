// Package rfid implements the passive RFID reader's wire protocol: fixed
// 14-byte frames carrying a 3-byte card id, with a re-arm write after every
// successful read.
package rfid

import (
	"encoding/hex"
	"log/slog"

	"github.com/worxli/kaffi/byteio"
)

const frameSize = 14

var magic = [2]byte{0x0D, 0x80}

// Receiver is called with the card id as a 6-char lowercase hex string for
// every valid frame read.
type Receiver func(cardHex string)

// Listener reads fixed-size RFID frames off a serial line and re-arms the
// reader after each one.
type Listener struct {
	io      byteio.IDoIO
	enable  []byte
	receive Receiver
	log     *slog.Logger

	stop chan struct{}
	done chan struct{}
}

// New returns a listener reading frames from io, calling receive for every
// valid card read, and writing enable to re-arm the reader after every
// non-empty read.
func New(io byteio.IDoIO, enable []byte, receive Receiver, log *slog.Logger) *Listener {
	return &Listener{
		io:      io,
		enable:  enable,
		receive: receive,
		log:     log,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// Run arms the reader and reads frames until Stop is called or the
// transport fails. It must run on its own goroutine (T_rfid).
func (l *Listener) Run() error {
	defer close(l.done)
	if err := l.rearm(); err != nil {
		return err
	}
	buf := make([]byte, frameSize)
	for {
		select {
		case <-l.stop:
			return nil
		default:
		}
		n, err := l.io.Read(buf)
		if err != nil {
			if byteio.IsTimeout(err) {
				continue
			}
			l.log.Error("rfid read failed", "error", err)
			return err
		}
		if n == 0 {
			continue
		}
		if n == frameSize && buf[0] == magic[0] && buf[1] == magic[1] {
			card := hex.EncodeToString(buf[10:13])
			l.log.Info("card read", "card", card)
			l.safeReceive(card)
		} else {
			l.log.Debug("dropped malformed rfid frame", "bytes", n)
		}
		if err := l.rearm(); err != nil {
			return err
		}
	}
}

func (l *Listener) rearm() error {
	_, err := l.io.Write(l.enable)
	return err
}

func (l *Listener) safeReceive(card string) {
	defer func() {
		if r := recover(); r != nil {
			l.log.Error("panic in card receiver", "panic", r, "card", card)
		}
	}()
	l.receive(card)
}

// Stop requests Run to return; Wait blocks until it has.
func (l *Listener) Stop() { close(l.stop) }
func (l *Listener) Wait() { <-l.done }
