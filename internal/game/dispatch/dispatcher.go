// Package dispatch implements the legacy enemy-turn mode: one queued action
// per living opponent, executed sequentially with randomized pacing under a
// hard turn timeout.
package dispatch

import (
	"fmt"
	"time"

	"github.com/kverkest/fray/internal/game/rng"
	"github.com/kverkest/fray/internal/game/roster"
)

// ActionKind is what a queued opponent does when its entry fires.
type ActionKind int

const (
	KindMelee ActionKind = iota
	KindRanged
	KindAdvance
)

// String returns "melee", "ranged", or "advance".
func (k ActionKind) String() string {
	switch k {
	case KindMelee:
		return "melee"
	case KindRanged:
		return "ranged"
	case KindAdvance:
		return "advance"
	default:
		return "unknown"
	}
}

// kindForTurnAction maps an archetype's declared turn action to its ActionKind.
// Unknown strings fall back to melee; archetype validation rejects them at load.
func kindForTurnAction(action string) ActionKind {
	switch action {
	case "ranged":
		return KindRanged
	case "advance":
		return KindAdvance
	default:
		return KindMelee
	}
}

// Entry is one pending enemy action: built fresh at turn start, consumed when
// its delay elapses, discarded after execution or turn end.
type Entry struct {
	OpponentID int
	Kind       ActionKind
	// Delay is the randomized pre-action pause before this entry fires,
	// measured from the previous entry's execution.
	Delay time.Duration
}

// Config holds the dispatcher pacing tuning.
type Config struct {
	// MinDelay and MaxDelay bound the randomized per-entry pre-delay.
	MinDelay time.Duration
	MaxDelay time.Duration
	// Timeout is the hard cap on a whole enemy turn; when it expires the
	// turn completes forcibly and the remaining queue is cleared.
	Timeout time.Duration
}

// Validate checks the pacing invariants.
//
// Postcondition: nil return guarantees 0 < MinDelay < MaxDelay < Timeout.
func (c Config) Validate() error {
	if c.MinDelay <= 0 {
		return fmt.Errorf("dispatch: min delay must be > 0, got %v", c.MinDelay)
	}
	if c.MaxDelay <= c.MinDelay {
		return fmt.Errorf("dispatch: max delay (%v) must exceed min delay (%v)", c.MaxDelay, c.MinDelay)
	}
	if c.Timeout <= c.MaxDelay {
		return fmt.Errorf("dispatch: timeout (%v) must exceed max delay (%v)", c.Timeout, c.MaxDelay)
	}
	return nil
}

// Dispatcher paces one enemy turn at a time. It owns no timers: the encounter
// drives it from the tick callback and executes the entries it releases, so
// a torn-down encounter can never receive a stale callback.
//
// Invariant: at most one turn is in progress; Begin refuses re-entry.
//
// Concurrency: Dispatcher is not safe for concurrent use. The owning
// encounter serializes all access on its tick goroutine.
type Dispatcher struct {
	cfg        Config
	src        rng.Source
	archetypes roster.ArchetypeSet

	queue      []Entry
	inProgress bool
	nextAt     time.Time
	deadline   time.Time
}

// NewDispatcher creates a Dispatcher.
//
// Precondition: cfg must satisfy cfg.Validate(); src and archetypes must be
// non-nil.
func NewDispatcher(cfg Config, archetypes roster.ArchetypeSet, src rng.Source) (*Dispatcher, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if src == nil {
		return nil, fmt.Errorf("dispatch: rng source must not be nil")
	}
	if archetypes == nil {
		return nil, fmt.Errorf("dispatch: archetype set must not be nil")
	}
	return &Dispatcher{cfg: cfg, src: src, archetypes: archetypes}, nil
}

// InProgress reports whether an enemy turn is currently executing.
func (d *Dispatcher) InProgress() bool { return d.inProgress }

// Pending returns the number of entries still queued.
func (d *Dispatcher) Pending() int { return len(d.queue) }

// Begin starts an enemy turn at now: one entry per living opponent, action
// kind fixed by the opponent's archetype, each with a randomized pre-delay in
// [MinDelay, MaxDelay]. A turn already in progress refuses re-entry with an
// error and no state change. An empty living list completes immediately.
//
// Precondition: living holds the current living opponents in roster slot order.
// Postcondition: on nil error with a non-empty list, InProgress() is true and
// the first entry fires at now + its delay; the whole turn force-completes at
// now + Timeout.
func (d *Dispatcher) Begin(now time.Time, living []*roster.Combatant) error {
	if d.inProgress {
		return fmt.Errorf("dispatch: enemy turn already in progress")
	}
	if len(living) == 0 {
		return nil
	}
	d.queue = make([]Entry, 0, len(living))
	for _, opp := range living {
		kind := KindMelee
		if a, ok := d.archetypes[opp.ArchetypeID]; ok {
			kind = kindForTurnAction(a.TurnAction)
		}
		d.queue = append(d.queue, Entry{
			OpponentID: opp.ID,
			Kind:       kind,
			Delay:      d.randomDelay(),
		})
	}
	d.inProgress = true
	d.nextAt = now.Add(d.queue[0].Delay)
	d.deadline = now.Add(d.cfg.Timeout)
	return nil
}

// Tick releases every entry whose delay has elapsed by now. Entries whose
// opponent fails the valid predicate (defeated or recruited since queuing)
// are skipped without error. When the hard timeout has expired the remaining
// queue is cleared and the turn completes forcibly.
//
// Precondition: valid must be non-nil.
// Postcondition: done is true exactly once per turn, on the tick the last
// entry is consumed or the timeout fires; released entries are returned in
// queue order.
func (d *Dispatcher) Tick(now time.Time, valid func(opponentID int) bool) (released []Entry, done bool) {
	if !d.inProgress {
		return nil, false
	}

	if !now.Before(d.deadline) {
		d.queue = nil
		d.inProgress = false
		return nil, true
	}

	for len(d.queue) > 0 && !now.Before(d.nextAt) {
		head := d.queue[0]
		d.queue = d.queue[1:]
		if valid(head.OpponentID) {
			released = append(released, head)
		}
		if len(d.queue) > 0 {
			d.nextAt = now.Add(d.queue[0].Delay)
		}
	}

	if len(d.queue) == 0 {
		d.inProgress = false
		return released, true
	}
	return released, false
}

// Abort cancels the turn in progress, clearing the queue and its pending
// pacing. Safe to call when no turn is running.
//
// Postcondition: InProgress() is false and Pending() is 0.
func (d *Dispatcher) Abort() {
	d.queue = nil
	d.inProgress = false
}

// randomDelay returns a uniform duration in [MinDelay, MaxDelay].
func (d *Dispatcher) randomDelay() time.Duration {
	span := int(d.cfg.MaxDelay-d.cfg.MinDelay) + 1
	return d.cfg.MinDelay + time.Duration(d.src.Intn(span))
}
