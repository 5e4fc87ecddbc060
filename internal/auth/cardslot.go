// Package auth implements the authorization coordinator: the single-threaded
// loop that takes a scanned card, checks entitlement, and drives the MDB
// state machine's rendezvous slot to approve or deny a vend.
package auth

import "sync"

// CardSlot is the single-element, last-writer-wins mailbox fed by the RFID
// listener and drained by the coordinator loop.
type CardSlot struct {
	mu     sync.Mutex
	cond   *sync.Cond
	card   string
	has    bool
	closed bool
}

// NewCardSlot returns an empty card slot.
func NewCardSlot() *CardSlot {
	s := &CardSlot{}
	s.cond = sync.NewCond(&s.mu)
	return s
}

// Push is called from the RFID listener goroutine. A card not yet consumed
// by Next is overwritten by the newest scan.
func (s *CardSlot) Push(card string) {
	s.mu.Lock()
	s.card = card
	s.has = true
	s.mu.Unlock()
	s.cond.Signal()
}

// Close unblocks any pending Next call, which then returns ok=false.
func (s *CardSlot) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.cond.Broadcast()
}

// Next blocks until a card is available or the slot is closed.
func (s *CardSlot) Next() (card string, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for !s.has && !s.closed {
		s.cond.Wait()
	}
	if !s.has {
		return "", false
	}
	card = s.card
	s.has = false
	return card, true
}
