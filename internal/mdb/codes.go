// Package mdb implements the cashless-peripheral side of the Multi-Drop Bus
// protocol: the link-layer framer, the response watchdog, and the
// application-level state machine that authorizes vends against the
// single-capacity rendezvous slot shared with the authorization coordinator.
package mdb

import "bytes"

// Link-layer out-of-frame bytes.
const (
	stx     = 0x02
	etx     = 0x03
	dle     = 0x10
	ackByte = 0x06
	nakByte = 0x15
)

// command is a command prototype: header byte followed by an optional
// subcommand byte. A frame matches if its first byte equals either
// command[0] or command[0]+0x50 (the peer toggles this offset per
// transaction) and its following bytes match command[1:].
type command []byte

var (
	cmdReset            = command{0x10}
	cmdSetupConfData     = command{0x11, 0x00}
	cmdSetupMaxMinPrice  = command{0x11, 0x01}
	cmdPoll              = command{0x12}
	cmdVendRequest       = command{0x13, 0x00}
	cmdVendCancel        = command{0x13, 0x01}
	cmdVendSuccess       = command{0x13, 0x02}
	cmdVendFailure       = command{0x13, 0x03}
	cmdVendSessComplete  = command{0x13, 0x04}
	cmdReaderDisable     = command{0x14, 0x00}
	cmdReaderEnable      = command{0x14, 0x01}
	cmdReaderCancel      = command{0x14, 0x02}
	cmdExpRequestID      = command{0x17, 0x00}
)

// isCommand reports whether data begins with cmd, honoring the +0x50
// header toggle and treating any bytes after the subcommand as payload.
func isCommand(data []byte, cmd command) bool {
	if len(data) == 0 {
		return false
	}
	if data[0] != cmd[0] && data[0] != cmd[0]+0x50 {
		return false
	}
	sub := cmd[1:]
	if len(data)-1 < len(sub) {
		return false
	}
	return bytes.Equal(data[1:1+len(sub)], sub)
}

// Response payloads, per the MDB cashless-peripheral reply set.
var (
	resReset         = []byte{0x00, 0x00}
	resReaderConfData = byte(0x01)
	resBeginSess      = byte(0x03)
	resSessCancelReq  = []byte{0x04}
	resVendApproved   = byte(0x05)
	resVendDenied     = []byte{0x06}
	resEndSession     = []byte{0x07}
	resCancelled      = []byte{0x08}
	resPeripheralID   = byte(0x09)
	resMalfunction    = []byte{0x0A}
)
