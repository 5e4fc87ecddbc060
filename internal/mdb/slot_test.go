package mdb

import (
	"context"
	"testing"
	"time"
)

func newRunningSlot(t *testing.T) (*Slot, context.CancelFunc) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	s := NewSlot()
	go s.Run(ctx)
	return s, cancel
}

func TestSlotClaimAndSettleDispensed(t *testing.T) {
	s, cancel := newRunningSlot(t)
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		dispensed, item := s.ArmAndWait(context.Background(), 2*time.Second)
		if !dispensed {
			t.Error("expected a dispense")
		}
		if string(item) != "\x01" {
			t.Errorf("unexpected item bytes: %v", item)
		}
	}()

	// give the arm request time to land before claiming
	time.Sleep(10 * time.Millisecond)
	if !s.Claim() {
		t.Fatal("expected Claim to succeed on an armed slot")
	}
	if s.Claim() {
		t.Fatal("a claimed slot must not be claimable again")
	}
	s.Settle([]byte{0x01})
	<-done
}

func TestSlotTimeoutWithoutClaimDenies(t *testing.T) {
	s, cancel := newRunningSlot(t)
	defer cancel()

	start := time.Now()
	dispensed, item := s.ArmAndWait(context.Background(), 30*time.Millisecond)
	elapsed := time.Since(start)
	if dispensed || item != nil {
		t.Errorf("expected a denial, got dispensed=%v item=%v", dispensed, item)
	}
	if elapsed > 200*time.Millisecond {
		t.Errorf("ArmAndWait took too long to report a pre-claim denial: %v", elapsed)
	}
}

func TestSlotClaimedPastTimeoutStillSettles(t *testing.T) {
	s, cancel := newRunningSlot(t)
	defer cancel()

	resultCh := make(chan bool, 1)
	go func() {
		dispensed, _ := s.ArmAndWait(context.Background(), 20*time.Millisecond)
		resultCh <- dispensed
	}()

	time.Sleep(5 * time.Millisecond)
	if !s.Claim() {
		t.Fatal("expected Claim to succeed before the nominal timeout")
	}

	// Settle well after the 20ms nominal timeout would have elapsed; the
	// claimed arming must still resolve to a dispense, not a dropped result.
	time.Sleep(60 * time.Millisecond)
	s.Settle([]byte{0x02})

	select {
	case dispensed := <-resultCh:
		if !dispensed {
			t.Error("a claimed arming settled as a dispense must not be reported as denied")
		}
	case <-time.After(time.Second):
		t.Fatal("ArmAndWait never returned for a claimed arming")
	}
}

func TestSlotIsArmedReflectsOutstandingArming(t *testing.T) {
	s, cancel := newRunningSlot(t)
	defer cancel()

	if s.IsArmed() {
		t.Fatal("a fresh slot should not be armed")
	}
	go s.ArmAndWait(context.Background(), 200*time.Millisecond)
	time.Sleep(10 * time.Millisecond)
	if !s.IsArmed() {
		t.Fatal("expected the slot to be armed after ArmAndWait started")
	}
}
