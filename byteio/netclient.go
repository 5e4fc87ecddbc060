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
	"fmt"
	"net"
	"regexp"
	"time"
)

var _ IDoIO = &NetClient{}
var netClientRe = regexp.MustCompile(`^(tcp|tcp4|tcp6|udp|udp4|udp6)://(.*:[0-9]+)$`)

// NewNetClient dials a TCP or UDP endpoint standing in for real MDB/RFID
// hardware during development. dial is "tcp|udp[46]?://<host>:<port>".
// timeout, if non-zero, bounds both the dial and every subsequent Read/Write.
func NewNetClient(ctx context.Context, timeout time.Duration, dial string) (*NetClient, error) {
	if !netClientRe.MatchString(dial) {
		return nil, newErr(false, false, fmt.Errorf("byteio: dial string %q not in tcp/udp:// form", dial))
	}
	matches := netClientRe.FindStringSubmatch(dial)
	nctx, cancel := context.WithCancel(ctx)
	nc := &NetClient{
		network: matches[1],
		address: matches[2],
		timeout: timeout,
		ctx:     nctx,
		cancel:  cancel,
	}
	return nc, nc.Open()
}

// NetClient is an IDoIO backed by a TCP or UDP socket.
type NetClient struct {
	network, address string
	cancel           context.CancelFunc
	ctx              context.Context
	timeout          time.Duration
	conn             net.Conn
}

func (nc *NetClient) String() string {
	return fmt.Sprintf("%s connection to %s", nc.network, nc.address)
}

// Open closes any existing connection and redials.
func (nc *NetClient) Open() (err error) {
	select {
	case <-nc.ctx.Done():
		return newErr(false, false, nc.ctx.Err())
	default:
	}
	if nc.conn != nil {
		nc.conn.Close()
		nc.conn = nil
	}
	dialer := net.Dialer{Timeout: nc.timeout, KeepAlive: time.Second}
	nc.conn, err = dialer.DialContext(nc.ctx, nc.network, nc.address)
	return
}

func (nc *NetClient) Read(b []byte) (int, error) {
	select {
	case <-nc.ctx.Done():
		defer nc.Close()
		return 0, newErr(false, false, nc.ctx.Err())
	default:
	}
	if nc.timeout > 0 {
		nc.conn.SetReadDeadline(time.Now().Add(nc.timeout))
	}
	return nc.conn.Read(b)
}

func (nc *NetClient) Write(b []byte) (int, error) {
	select {
	case <-nc.ctx.Done():
		defer nc.Close()
		return 0, newErr(false, false, nc.ctx.Err())
	default:
	}
	if nc.timeout > 0 {
		nc.conn.SetWriteDeadline(time.Now().Add(nc.timeout))
	}
	return nc.conn.Write(b)
}

func (nc *NetClient) Close() error {
	nc.cancel()
	defer func() { nc.conn = nil }()
	if nc.conn != nil {
		return nc.conn.Close()
	}
	return nil
}
