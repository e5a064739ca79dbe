// Package globaltime provides the process-wide clock. Production code reads
// time through it so tests can pin a deterministic instant.
package globaltime

import (
	"sync"
	"time"
)

var clock = struct {
	mu  sync.RWMutex
	now func() time.Time
}{now: time.Now}

// Now returns the current time from the active clock source.
func Now() time.Time {
	clock.mu.RLock()
	defer clock.mu.RUnlock()
	return clock.now()
}

// UTC returns the current time normalized to UTC.
func UTC() time.Time {
	return Now().UTC()
}

// Freeze pins the clock to a fixed instant until Reset is called.
func Freeze(t time.Time) {
	clock.mu.Lock()
	defer clock.mu.Unlock()
	clock.now = func() time.Time { return t }
}

// Reset restores the wall clock.
func Reset() {
	clock.mu.Lock()
	defer clock.mu.Unlock()
	clock.now = time.Now
}
