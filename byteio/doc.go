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

/*
Package byteio provides transport-agnostic access to the two serial lines
kaffid drives: the MDB link to the vending controller and the line to the
passive RFID reader.

An IDoIO is opened from a dial string:

	serial:///dev/ttyUSB0:9600
	tcp://localhost:4242

The serial scheme talks to real hardware via go.bug.st/serial. The tcp/udp
schemes exist so kaffid can be pointed at a software MDB or RFID simulator
during development, without any hardware attached.

A read timeout on an IDoIO is reported as a net.Error, so callers can
distinguish a timeout (IsTimeout) or a temporary condition (IsTemporary)
from a fatal one. Other errors may be of any type; IsTimeout and
IsTemporary report false for an error that does not implement net.Error.

Stream wraps an IDoIO to offer byte-at-a-time reads with an explicit
"nothing arrived before the deadline" outcome, which is what the MDB
translator's framing state machine needs; the RFID listener instead reads
whole fixed-size frames directly off the IDoIO.
*/
package byteio
