package combo

import (
	"fmt"
	"time"
)

// Tracker owns the continuation state of one attacker's hit chain: the hit
// count, the timestamp of the last accepted hit, the combo window, and the
// inter-strike cooldown.
//
// Invariant: Count() resets to a fresh chain whenever the gap since the last
// accepted hit exceeds the window.
//
// Concurrency: Tracker is not safe for concurrent use. The owning encounter
// serializes all access on its tick goroutine.
type Tracker struct {
	window   time.Duration
	cooldown time.Duration
	count    int
	lastHit  time.Time
}

// NewTracker creates a Tracker with the given combo window and strike cooldown.
//
// Precondition: window > 0; cooldown >= 0 and cooldown < window.
func NewTracker(window, cooldown time.Duration) (*Tracker, error) {
	if window <= 0 {
		return nil, fmt.Errorf("combo: window must be > 0, got %v", window)
	}
	if cooldown < 0 || cooldown >= window {
		return nil, fmt.Errorf("combo: cooldown must be in [0, window), got %v", cooldown)
	}
	return &Tracker{window: window, cooldown: cooldown}, nil
}

// Ready reports whether the strike cooldown has elapsed, regardless of
// whether the window is still open. The first strike of an encounter is
// always ready.
func (t *Tracker) Ready(now time.Time) bool {
	if t.lastHit.IsZero() {
		return true
	}
	return now.Sub(t.lastHit) >= t.cooldown
}

// Advance registers an accepted hit at now and returns its 1-based index in
// the chain: the previous count plus one when the window is still open, or 1
// when the gap since the last hit exceeded the window.
//
// Precondition: Ready(now) must have reported true.
// Postcondition: Count() equals the returned index; the window restarts at now.
func (t *Tracker) Advance(now time.Time) int {
	if !t.lastHit.IsZero() && now.Sub(t.lastHit) <= t.window {
		t.count++
	} else {
		t.count = 1
	}
	t.lastHit = now
	return t.count
}

// Count returns the live chain length at now: the stored count while the
// window is open, or 0 once it has lapsed.
func (t *Tracker) Count(now time.Time) int {
	if t.lastHit.IsZero() || now.Sub(t.lastHit) > t.window {
		return 0
	}
	return t.count
}

// Reset abandons the current chain. Called when the chain's target is
// defeated or the attacker switches targets.
//
// Postcondition: the next Advance starts a fresh chain at index 1.
func (t *Tracker) Reset() {
	t.count = 0
	t.lastHit = time.Time{}
}
