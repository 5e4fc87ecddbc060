package diag

import "time"

// MDBCommands is the diagnostic command set for probing kaffid's MDB
// cashless-peripheral link from the master's side of the wire: useful for
// confirming a serial cable and framing are working before trusting the
// full FSM. Bytes here are the link-layer frame kaffid expects to receive,
// not the ACK/DLE/ETX wrapper kaffid replies with - Run matches on the raw
// reply bytes as they arrive.
var MDBCommands = Commands{
	"reset": {
		Name:        "reset",
		Description: "send MDB RESET and expect an ACK",
		Send:        []byte{0x02, 0x10, 0x10, 0x10, 0x03}, // STX RESET(0x10, doubled) DLE ETX
		Response:    []byte{0x06},                   // ACK
		Timeout:     2 * time.Second,
	},
	"poll": {
		Name:        "poll",
		Description: "send MDB POLL and expect any reply frame",
		Send:        []byte{0x02, 0x12, 0x10, 0x03},
		Response:    []byte{0x06},
		Timeout:     time.Second,
	},
	"reader-enable": {
		Name:        "reader-enable",
		Description: "enable the cashless reader and expect an ACK",
		Send:        []byte{0x02, 0x14, 0x01, 0x10, 0x03},
		Response:    []byte{0x06},
		Timeout:     time.Second,
	},
	"reader-disable": {
		Name:        "reader-disable",
		Description: "disable the cashless reader and expect an ACK",
		Send:        []byte{0x02, 0x14, 0x00, 0x10, 0x03},
		Response:    []byte{0x06},
		Timeout:     time.Second,
	},
}

// RFIDCommands is the diagnostic command set for the passive RFID reader
// link: a single re-arm probe, since the reader otherwise only speaks when
// a card is presented.
var RFIDCommands = Commands{
	"rearm": {
		Name:        "rearm",
		Description: "write the enable byte and expect the reader to accept it",
		Send:        []byte{0x01},
		Timeout:     time.Second,
	},
}
