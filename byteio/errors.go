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

import "net"

var _ error = &netError{}
var _ net.Error = &netError{}

type netError struct {
	err                error
	temporary, timeout bool
}

// newErr returns an error that conforms to net.Error.
func newErr(temporary, timeout bool, err error) *netError {
	return &netError{err: err, temporary: temporary, timeout: timeout}
}

func (ne netError) Error() string { return ne.err.Error() }

func (ne netError) Temporary() bool { return ne.temporary }

func (ne netError) Timeout() bool { return ne.timeout }

// IsTemporary reports whether err is a temporary condition, meaning the
// underlying connection is still usable. Don't pass a nil error.
func IsTemporary(err error) bool {
	if err == nil {
		panic("byteio: IsTemporary called with a nil error")
	}
	if ne, ok := err.(net.Error); ok {
		return ne.Temporary()
	}
	return false
}

// IsTimeout reports whether err is a read/write deadline expiry rather than
// a fatal transport error. Don't pass a nil error.
func IsTimeout(err error) bool {
	if err == nil {
		panic("byteio: IsTimeout called with a nil error")
	}
	if ne, ok := err.(net.Error); ok {
		return ne.Timeout()
	}
	return false
}
