package ratelimit

import (
	"sync"
	"time"
)

// Window is a fixed-window usage counter for one subject. The window opens on
// the first hit and resets Period after it, regardless of later activity.
type Window struct {
	Count   int
	ResetAt time.Time
}

// Table tracks fixed-window counters keyed by subject identifier. Each bot
// connection owns its tables outright; nothing is shared across processes,
// and the relay backend remains the authoritative counter.
type Table struct {
	mu      sync.Mutex
	windows map[string]*Window
	period  time.Duration
	now     func() time.Time
}

func NewTable(period time.Duration) *Table {
	return &Table{
		windows: make(map[string]*Window),
		period:  period,
		now:     time.Now,
	}
}

// Hit records one request for key against limit. A missing or expired window
// is seeded with count=1 and allowed; an active window at or over the limit
// is denied without incrementing.
func (t *Table) Hit(key string, limit int) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	w, exists := t.windows[key]
	if !exists || now.After(w.ResetAt) {
		t.windows[key] = &Window{Count: 1, ResetAt: now.Add(t.period)}
		return true
	}

	if w.Count >= limit {
		return false
	}

	w.Count++
	return true
}

// Get returns a copy of the window for key, if one exists.
func (t *Table) Get(key string) (Window, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	w, exists := t.windows[key]
	if !exists {
		return Window{}, false
	}
	return *w, true
}

// Cleanup evicts every expired window and reports how many were removed.
func (t *Table) Cleanup() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	evicted := 0
	for key, w := range t.windows {
		if now.After(w.ResetAt) {
			delete(t.windows, key)
			evicted++
		}
	}
	return evicted
}

// Len reports the number of tracked windows, expired or not.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.windows)
}

// Snapshot copies the live windows, for persistence on shutdown.
func (t *Table) Snapshot() map[string]Window {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make(map[string]Window, len(t.windows))
	for key, w := range t.windows {
		out[key] = *w
	}
	return out
}

// Restore seeds a window from persisted state. Already-expired windows are
// dropped rather than restored.
func (t *Table) Restore(key string, count int, resetAt time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.now().After(resetAt) {
		return
	}
	t.windows[key] = &Window{Count: count, ResetAt: resetAt}
}

// SetNowFunc overrides the clock, for deterministic tests.
func (t *Table) SetNowFunc(now func() time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.now = now
}
