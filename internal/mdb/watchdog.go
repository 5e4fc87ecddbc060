package mdb

import (
	"sync"
	"time"
)

// DefaultResponseTimeout is T_resp from the component design: the watchdog
// fires its alert hook if no complete frame is processed within this window.
const DefaultResponseTimeout = 5 * time.Second

// Watchdog rearms on every successfully processed frame and fires an alert
// hook if it is not rearmed again within its timeout. It never resets the
// FSM itself - only the MDB peer's own polling can do that.
type Watchdog struct {
	mu      sync.Mutex
	timer   *time.Timer
	timeout time.Duration
	alert   func()
}

// NewWatchdog returns a watchdog that calls alert if it is not rearmed
// within timeout of the last Rearm call (or of construction).
func NewWatchdog(timeout time.Duration, alert func()) *Watchdog {
	w := &Watchdog{timeout: timeout, alert: alert}
	w.Rearm()
	return w
}

// Rearm resets the timeout window, starting it fresh.
func (w *Watchdog) Rearm() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.timeout, w.alert)
}

// Stop disables the watchdog permanently.
func (w *Watchdog) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
}
