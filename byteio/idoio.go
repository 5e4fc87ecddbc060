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
	"regexp"
	"time"

	"io"
)

// IDoIO is the transport every serial line kaffid drives conforms to. It can
// describe itself (fmt.Stringer), read and write byte slices (io.ReadWriter),
// and be opened and closed. A read timeout is reported as a net.Error with
// Timeout()==true; other errors need not implement net.Error.
type IDoIO interface {
	fmt.Stringer
	io.ReadWriter
	io.Closer
	Open() error
}

var known = map[*regexp.Regexp]func(context.Context, time.Duration, string) (IDoIO, error){
	netClientRe: func(ctx context.Context, dur time.Duration, dial string) (IDoIO, error) {
		return NewNetClient(ctx, dur, dial)
	},
	serialRe: func(ctx context.Context, dur time.Duration, dial string) (IDoIO, error) {
		return NewSerialClient(ctx, dur, dial)
	},
}

// Open dispatches dial to the matching IDoIO constructor and opens it.
// dial is one of:
//
//	serial://<device>:<baud>
//	tcp|tcp4|tcp6|udp|udp4|udp6://<host>:<port>
func Open(ctx context.Context, timeout time.Duration, dial string) (IDoIO, error) {
	for re, ctor := range known {
		if re.MatchString(dial) {
			return ctor(ctx, timeout, dial)
		}
	}
	return nil, newErr(false, false, fmt.Errorf("byteio: no known transport for dial string %q", dial))
}
