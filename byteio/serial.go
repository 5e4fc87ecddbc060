/*
MIT License

Copyright (c) 2015-2017 University Corporation for Atmospheric Research

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in all
copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
SOFTWARE.
*/

package byteio

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"go.bug.st/serial"
)

var _ IDoIO = &SerialClient{}
var serialRe = regexp.MustCompile(`^serial://([^:]*):([0-9]*)$`)

// NewSerialClient opens a serial device in 8N1 mode. dial must be in the
// form "serial://<device>:<baud>", e.g. "serial:///dev/ttyUSB0:9600".
func NewSerialClient(ctx context.Context, timeout time.Duration, dial string) (*SerialClient, error) {
	if !serialRe.MatchString(dial) {
		return nil, newErr(false, false, fmt.Errorf("byteio: dial string %q not in serial:// form", dial))
	}
	matches := serialRe.FindStringSubmatch(dial)
	baud, _ := strconv.Atoi(matches[2])
	nctx, cancel := context.WithCancel(ctx)

	sc := &SerialClient{
		ctx:     nctx,
		cancel:  cancel,
		timeout: timeout,
		device:  matches[1],
		mode: &serial.Mode{
			BaudRate: baud,
			DataBits: 8,
			Parity:   serial.NoParity,
			StopBits: serial.OneStopBit,
		},
	}
	return sc, sc.Open()
}

// SerialClient wraps a single serial port.
type SerialClient struct {
	ctx     context.Context
	cancel  context.CancelFunc
	timeout time.Duration
	device  string
	mode    *serial.Mode
	port    serial.Port
}

// String conforms to fmt.Stringer.
func (sc *SerialClient) String() string {
	return fmt.Sprintf("serial connection to %s:%d 8N1", sc.device, sc.mode.BaudRate)
}

// Open closes any existing connection and reopens the port.
func (sc *SerialClient) Open() error {
	select {
	case <-sc.ctx.Done():
		return sc.ctx.Err()
	default:
	}
	if sc.port != nil {
		sc.port.Close()
		sc.port = nil
	}
	port, err := serial.Open(sc.device, sc.mode)
	if err != nil {
		return newErr(false, false, err)
	}
	if sc.timeout > 0 {
		if err := port.SetReadTimeout(sc.timeout); err != nil {
			port.Close()
			return newErr(false, false, err)
		}
	}
	sc.port = port
	return nil
}

// Read conforms to io.Reader. A read that times out returns (0, a
// net.Error with Timeout()==true), never io.EOF.
func (sc *SerialClient) Read(b []byte) (int, error) {
	select {
	case <-sc.ctx.Done():
		defer sc.Close()
		return 0, sc.ctx.Err()
	default:
	}
	if sc.port == nil {
		return 0, newErr(false, false, errors.New("byteio: serial port not open"))
	}
	n, err := sc.port.Read(b)
	if n == 0 && err == nil {
		// go.bug.st/serial returns (0, nil) when SetReadTimeout elapses
		// with nothing available; normalize to a net.Error timeout so
		// callers can use IsTimeout uniformly across transports.
		return 0, newErr(true, true, errors.New("byteio: read timeout"))
	}
	return n, err
}

// Write conforms to io.Writer.
func (sc *SerialClient) Write(b []byte) (int, error) {
	select {
	case <-sc.ctx.Done():
		defer sc.Close()
		return 0, sc.ctx.Err()
	default:
	}
	if sc.port == nil {
		return 0, newErr(false, false, errors.New("byteio: serial port not open"))
	}
	return sc.port.Write(b)
}

// Close conforms to io.Closer.
func (sc *SerialClient) Close() error {
	sc.cancel()
	defer func() { sc.port = nil }()
	if sc.port != nil {
		return sc.port.Close()
	}
	return nil
}
