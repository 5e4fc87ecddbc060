package mdb

import (
	"bytes"
	"net"
	"testing"
	"time"

	"github.com/worxli/kaffi/byteio"
)

type pipeIO struct{ net.Conn }

func (pipeIO) String() string { return "test pipe" }
func (pipeIO) Open() error    { return nil }

type fakeHandler struct {
	frames [][]byte
	reply  []byte
	nacks  int
}

func (h *fakeHandler) ReceivedData(frame []byte) []byte {
	h.frames = append(h.frames, append([]byte(nil), frame...))
	return h.reply
}

func (h *fakeHandler) ReceivedNack() { h.nacks++ }

func newTranslatorHarness(t *testing.T, handler Handler) (peer net.Conn, tr *Translator) {
	t.Helper()
	a, b := net.Pipe()
	stream := byteio.NewStream(pipeIO{a})
	tr = NewTranslator(stream, handler, nil, discardLogger())
	go tr.Run()
	t.Cleanup(func() {
		tr.Stop()
		a.Close()
		b.Close()
	})
	return b, tr
}

func TestTranslatorFramesAndReplies(t *testing.T) {
	h := &fakeHandler{reply: []byte{0x00, 0x00, 0x00}}
	peer, _ := newTranslatorHarness(t, h)

	go func() {
		peer.Write([]byte{stx, 0x12, dle, etx})
	}()

	reply := make([]byte, 16)
	peer.SetReadDeadline(time.Now().Add(time.Second))
	n, err := peer.Read(reply)
	if err != nil {
		t.Fatalf("read reply: %v", err)
	}
	want := []byte{ackByte, stx, 0x00, 0x00, 0x00, dle, etx}
	if !bytes.Equal(reply[:n], want) {
		t.Fatalf("reply = % x, want % x", reply[:n], want)
	}
	if len(h.frames) != 1 || !bytes.Equal(h.frames[0], []byte{0x12}) {
		t.Fatalf("handler frames = %v", h.frames)
	}
}

func TestTranslatorUnescapesDoubledDLE(t *testing.T) {
	h := &fakeHandler{reply: []byte{0x00}}
	peer, _ := newTranslatorHarness(t, h)

	go func() {
		peer.Write([]byte{stx, 0x11, dle, dle, dle, etx})
	}()

	reply := make([]byte, 16)
	peer.SetReadDeadline(time.Now().Add(time.Second))
	peer.Read(reply)

	if len(h.frames) != 1 || !bytes.Equal(h.frames[0], []byte{0x11, 0x10}) {
		t.Fatalf("handler frames = %v, want [[0x11 0x10]]", h.frames)
	}
}

func TestTranslatorEscapesDLEInReply(t *testing.T) {
	h := &fakeHandler{reply: []byte{0x00, 0x10, 0x01}}
	peer, _ := newTranslatorHarness(t, h)

	go func() {
		peer.Write([]byte{stx, 0x12, dle, etx})
	}()

	reply := make([]byte, 16)
	peer.SetReadDeadline(time.Now().Add(time.Second))
	n, err := peer.Read(reply)
	if err != nil {
		t.Fatalf("read reply: %v", err)
	}
	want := []byte{ackByte, stx, 0x00, dle, dle, 0x01, dle, etx}
	if !bytes.Equal(reply[:n], want) {
		t.Fatalf("reply = % x, want % x", reply[:n], want)
	}
}

func TestTranslatorForwardsNack(t *testing.T) {
	h := &fakeHandler{}
	peer, _ := newTranslatorHarness(t, h)

	peer.Write([]byte{nakByte})
	time.Sleep(50 * time.Millisecond)
	if h.nacks != 1 {
		t.Fatalf("nacks = %d, want 1", h.nacks)
	}
}
