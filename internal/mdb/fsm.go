package mdb

import (
	"context"
	"encoding/hex"
	"log/slog"
	"sync"
	"time"
)

// State is one of the six states of the MDB cashless-peripheral application
// state machine.
type State int

// States, in the order a session normally passes through them.
const (
	StateInactive State = iota
	StateDisabled
	StateEnabled
	StateSessionIdle
	StateVend
	StateSessionEnding
)

func (s State) String() string {
	switch s {
	case StateInactive:
		return "inactive"
	case StateDisabled:
		return "disabled"
	case StateEnabled:
		return "enabled"
	case StateSessionIdle:
		return "session-idle"
	case StateVend:
		return "vend"
	case StateSessionEnding:
		return "session-ending"
	default:
		return "unknown"
	}
}

// sessionEndingCountdown is the number of POLLs the state machine waits in
// session-ending before it forces a session cancel request, matching the
// original peripheral's grace period for a VEND_SESS_COMPLETE/READER_CANCEL.
const sessionEndingCountdown = 10

// FSM is the MDB application state machine. It is driven synchronously by
// the translator's single reader goroutine via ReceivedData/ReceivedNack,
// and exposes AllowOneAndWait for the authorization coordinator to call from
// a different goroutine.
type FSM struct {
	mu              sync.Mutex
	state           State
	sendReset       bool
	cancelCountdown int
	maxMinData      []byte
	itemData        []byte

	slot *Slot
	log  *slog.Logger
}

// New returns an FSM in the inactive state, ready to send a RESET on its
// first POLL.
func New(slot *Slot, log *slog.Logger) *FSM {
	return &FSM{state: StateInactive, sendReset: true, slot: slot, log: log}
}

// State returns the current state. Safe for concurrent use.
func (f *FSM) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// AllowOneAndWait arms the authorization slot for one vend and blocks until
// it is settled by this FSM or the pre-claim timeout elapses. See Slot for
// the exact contract.
func (f *FSM) AllowOneAndWait(ctx context.Context, timeout time.Duration) (dispensed bool, item []byte) {
	return f.slot.ArmAndWait(ctx, timeout)
}

// ReceivedData is called by the translator with one fully de-escaped,
// de-framed inbound message (the leading link-level ACK byte already
// stripped by the translator is not part of data; data is the MDB command
// byte(s) and any payload). It returns the full reply to send back,
// including the leading 0x00 data-level ACK every reply carries.
func (f *FSM) ReceivedData(data []byte) []byte {
	f.mu.Lock()
	defer f.mu.Unlock()

	var reply []byte
	switch f.state {
	case StateInactive:
		reply = f.stInactive(data)
	case StateDisabled:
		reply = f.stDisabled(data)
	case StateEnabled:
		reply = f.stEnabled(data)
	case StateSessionIdle:
		reply = f.stSessionIdle(data)
	case StateVend:
		reply = f.stVend(data)
	case StateSessionEnding:
		reply = f.stSessionEnding(data)
	}
	return append([]byte{0x00}, reply...)
}

// ReceivedNack is called by the translator when the peer sends an
// out-of-frame NAK, meaning it wants to resynchronize. Any slot held across
// an in-progress vend is released as a denial, and the FSM forces itself
// back to inactive.
func (f *FSM) ReceivedNack() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.log.Error("received NAK, resynchronizing", "state", f.state)
	f.slot.Settle(nil)
	f.maxMinData = nil
	f.itemData = nil
	f.setState(StateInactive)
}

func (f *FSM) setState(s State) {
	if f.log != nil {
		f.log.Debug("mdb state transition", "from", f.state, "to", s)
	}
	f.state = s
	switch s {
	case StateInactive:
		f.sendReset = true
	case StateSessionEnding:
		f.cancelCountdown = sessionEndingCountdown
	}
}

func (f *FSM) stInactive(data []byte) []byte {
	switch {
	case isCommand(data, cmdPoll):
		if f.sendReset {
			f.sendReset = false
			return resReset
		}
		return nil
	case isCommand(data, cmdReaderEnable):
		f.setState(StateEnabled)
		return nil
	case isCommand(data, cmdReset):
		f.setState(StateInactive)
		return nil
	default:
		return f.defaultHandler(data)
	}
}

func (f *FSM) stDisabled(data []byte) []byte {
	switch {
	case isCommand(data, cmdPoll):
		return nil
	case isCommand(data, cmdReset):
		f.setState(StateInactive)
		return resReset
	case isCommand(data, cmdReaderEnable):
		f.setState(StateEnabled)
		return nil
	default:
		return f.defaultHandler(data)
	}
}

func (f *FSM) stEnabled(data []byte) []byte {
	switch {
	case isCommand(data, cmdPoll):
		if f.slot.IsArmed() {
			f.setState(StateSessionIdle)
			return []byte{resBeginSess, 0xFF, 0xFF}
		}
		return nil
	case isCommand(data, cmdReaderDisable):
		f.setState(StateDisabled)
		return nil
	case isCommand(data, cmdReaderCancel):
		return resCancelled
	case isCommand(data, cmdReset):
		f.setState(StateInactive)
		return resReset
	case isCommand(data, cmdSetupConfData):
		f.log.Warn("SETUP_CONF_DATA received in enabled state")
		return resMalfunction
	default:
		return f.defaultHandler(data)
	}
}

func (f *FSM) stSessionIdle(data []byte) []byte {
	switch {
	case isCommand(data, cmdPoll):
		if !f.slot.IsArmed() {
			f.setState(StateSessionEnding)
			return resSessCancelReq
		}
		return nil
	case isCommand(data, cmdVendRequest):
		if f.slot.Claim() {
			f.itemData = nil
			f.setState(StateVend)
			return []byte{resVendApproved, 0xFF, 0xFF}
		}
		f.setState(StateSessionEnding)
		return resVendDenied
	case isCommand(data, cmdVendCancel):
		return resVendDenied
	case isCommand(data, cmdVendSessComplete):
		f.setState(StateEnabled)
		return resEndSession
	case isCommand(data, cmdReaderCancel):
		f.setState(StateEnabled)
		return resCancelled
	case isCommand(data, cmdReset):
		f.setState(StateInactive)
		return resReset
	default:
		return f.outOfSequence(data)
	}
}

func (f *FSM) stVend(data []byte) []byte {
	switch {
	case isCommand(data, cmdPoll):
		return nil
	case isCommand(data, cmdVendSuccess):
		item := append([]byte{}, data[len(cmdVendSuccess):]...)
		f.itemData = item
		f.slot.Settle(item)
		f.setState(StateSessionEnding)
		return nil
	case isCommand(data, cmdVendFailure):
		f.slot.Settle(nil)
		f.setState(StateSessionEnding)
		return nil
	case isCommand(data, cmdVendCancel):
		f.slot.Settle(nil)
		f.setState(StateSessionEnding)
		return resVendDenied
	case isCommand(data, cmdReset):
		f.slot.Settle(nil)
		f.setState(StateInactive)
		return resReset
	default:
		// The peer is expected to resolve this vend explicitly; the slot
		// stays claimed until it does.
		return resMalfunction
	}
}

func (f *FSM) stSessionEnding(data []byte) []byte {
	switch {
	case isCommand(data, cmdPoll):
		if f.cancelCountdown > 0 {
			f.cancelCountdown--
			return nil
		}
		return resSessCancelReq
	case isCommand(data, cmdVendSessComplete):
		f.setState(StateEnabled)
		return resEndSession
	case isCommand(data, cmdVendRequest):
		return resVendDenied
	case isCommand(data, cmdVendCancel):
		return resVendDenied
	case isCommand(data, cmdReaderCancel):
		f.setState(StateEnabled)
		return resCancelled
	case isCommand(data, cmdVendSuccess):
		f.log.Error("unexpected VEND_SUCCESS while ending session")
		return nil
	case isCommand(data, cmdReset):
		f.setState(StateInactive)
		return resReset
	default:
		return f.outOfSequence(data)
	}
}

func (f *FSM) defaultHandler(data []byte) []byte {
	switch {
	case isCommand(data, cmdSetupConfData):
		return []byte{resReaderConfData, 0x01, 0x00, 0x01, 0x01, 0x02, 0x01, 0x00}
	case isCommand(data, cmdSetupMaxMinPrice):
		f.maxMinData = append([]byte{}, data[len(cmdSetupMaxMinPrice):]...)
		return nil
	case isCommand(data, cmdExpRequestID):
		reply := []byte{resPeripheralID}
		reply = append(reply, []byte("ABX")...)
		reply = append(reply, []byte("            ")...)
		reply = append(reply, []byte("A3          ")...)
		reply = append(reply, 0x15, 0x31)
		return reply
	default:
		return f.outOfSequence(data)
	}
}

func (f *FSM) outOfSequence(data []byte) []byte {
	f.log.Error("out-of-sequence MDB command", "data", hex.EncodeToString(data), "state", f.state)
	return resMalfunction
}
