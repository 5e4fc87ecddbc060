package mdb

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestWatchdogFiresWithoutRearm(t *testing.T) {
	var fired int32
	w := NewWatchdog(20*time.Millisecond, func() { atomic.AddInt32(&fired, 1) })
	defer w.Stop()

	time.Sleep(80 * time.Millisecond)
	if atomic.LoadInt32(&fired) != 1 {
		t.Fatalf("fired = %d, want 1", fired)
	}
}

func TestWatchdogRearmPreventsFire(t *testing.T) {
	var fired int32
	w := NewWatchdog(30*time.Millisecond, func() { atomic.AddInt32(&fired, 1) })
	defer w.Stop()

	for i := 0; i < 5; i++ {
		time.Sleep(15 * time.Millisecond)
		w.Rearm()
	}
	if atomic.LoadInt32(&fired) != 0 {
		t.Fatalf("fired = %d, want 0 before the quiet period elapses", fired)
	}
	time.Sleep(60 * time.Millisecond)
	if atomic.LoadInt32(&fired) != 1 {
		t.Fatalf("fired = %d, want 1 after the quiet period", fired)
	}
}

func TestWatchdogStopSuppressesFire(t *testing.T) {
	var fired int32
	w := NewWatchdog(20*time.Millisecond, func() { atomic.AddInt32(&fired, 1) })
	w.Stop()
	time.Sleep(60 * time.Millisecond)
	if atomic.LoadInt32(&fired) != 0 {
		t.Fatalf("fired = %d, want 0 after Stop", fired)
	}
}
