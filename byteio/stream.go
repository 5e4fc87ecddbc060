package byteio

import "sync"

// Stream wraps an IDoIO to expose byte-at-a-time reads with an explicit
// "nothing arrived before the deadline" outcome, which is what a framing
// state machine driven one byte at a time needs: it must distinguish "no
// byte yet, keep polling for shutdown" from a fatal transport error.
type Stream struct {
	mu   sync.Mutex
	io   IDoIO
	open bool
}

// NewStream wraps an already-open IDoIO.
func NewStream(io IDoIO) *Stream {
	return &Stream{io: io, open: true}
}

// IsOpen reports whether the stream is still usable.
func (s *Stream) IsOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.open
}

// ReadByte reads a single byte. ok is false when the underlying transport
// timed out with nothing available; err is non-nil only for a fatal
// transport failure, after which the stream is marked closed.
func (s *Stream) ReadByte() (b byte, ok bool, err error) {
	var buf [1]byte
	n, rerr := s.io.Read(buf[:])
	if n == 1 {
		return buf[0], true, nil
	}
	if rerr != nil {
		if IsTimeout(rerr) {
			return 0, false, nil
		}
		s.mu.Lock()
		s.open = false
		s.mu.Unlock()
		return 0, false, rerr
	}
	return 0, false, nil
}

// WriteBytes writes buf in full or returns an error.
func (s *Stream) WriteBytes(buf []byte) error {
	n, err := s.io.Write(buf)
	if err != nil {
		return err
	}
	if n != len(buf) {
		return newErr(true, false, errShortWrite)
	}
	return nil
}

// Close closes the underlying transport.
func (s *Stream) Close() error {
	s.mu.Lock()
	s.open = false
	s.mu.Unlock()
	return s.io.Close()
}

var errShortWrite = shortWriteError{}

type shortWriteError struct{}

func (shortWriteError) Error() string { return "byteio: short write" }
