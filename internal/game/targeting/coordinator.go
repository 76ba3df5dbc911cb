// Package targeting implements the top-level target-acquisition state
// machine: Free roaming, Selecting (a highlight cycling across the live
// opponent roster), and Locked (committed one-on-one engagement).
package targeting

import "github.com/kverkest/fray/internal/game/roster"

// Mode is the coordinator state.
type Mode int

const (
	ModeFree Mode = iota
	ModeSelecting
	ModeLocked
)

// String returns the human-readable name of the Mode.
func (m Mode) String() string {
	switch m {
	case ModeFree:
		return "free"
	case ModeSelecting:
		return "selecting"
	case ModeLocked:
		return "locked"
	default:
		return "unknown"
	}
}

// LockBreak describes how a roster change affected an active lock.
type LockBreak int

const (
	// LockIntact: the locked opponent is still present, or no lock was active.
	LockIntact LockBreak = iota
	// LockToSelecting: the locked opponent left the roster and opponents
	// remain; the coordinator fell back to Selecting with highlight index 0.
	LockToSelecting
	// LockRosterEmpty: the locked opponent left and no opponents remain; the
	// coordinator returned to Free so the encounter can resolve.
	LockRosterEmpty
)

// Coordinator is the targeting state machine for one encounter.
//
// Invariant: while Locked, the locked ID always references an opponent that
// was live at lock time; the encounter calls NoteRosterChanged synchronously
// after every removal, so the lock never survives its subject.
//
// Concurrency: Coordinator is not safe for concurrent use. The owning
// encounter serializes all access on its tick goroutine.
type Coordinator struct {
	mode      Mode
	highlight int
	lockedID  int
}

// NewCoordinator creates a Coordinator in ModeFree.
func NewCoordinator() *Coordinator {
	return &Coordinator{mode: ModeFree}
}

// Mode returns the current state.
func (c *Coordinator) Mode() Mode { return c.mode }

// HighlightIndex returns the highlighted index into the live opponent list.
// Meaningful only while Selecting.
func (c *Coordinator) HighlightIndex() int { return c.highlight }

// LockedID returns the locked opponent's roster slot ID.
//
// Postcondition: Returns (id, true) iff Mode() == ModeLocked.
func (c *Coordinator) LockedID() (int, bool) {
	if c.mode != ModeLocked {
		return 0, false
	}
	return c.lockedID, true
}

// BeginSelect transitions Free → Selecting with highlight index 0. No-op in
// any other state.
//
// Postcondition: returns true iff the transition happened.
func (c *Coordinator) BeginSelect() bool {
	if c.mode != ModeFree {
		return false
	}
	c.mode = ModeSelecting
	c.highlight = 0
	return true
}

// SelectNext advances the highlight one step, wrapping modulo liveCount.
// No-op unless Selecting with at least one live opponent.
func (c *Coordinator) SelectNext(liveCount int) {
	if c.mode != ModeSelecting || liveCount <= 0 {
		return
	}
	c.highlight = (c.highlight + 1) % liveCount
}

// SelectPrevious moves the highlight one step back, wrapping modulo
// liveCount: index 0 with three opponents yields index 2. No-op unless
// Selecting with at least one live opponent.
func (c *Coordinator) SelectPrevious(liveCount int) {
	if c.mode != ModeSelecting || liveCount <= 0 {
		return
	}
	c.highlight = (c.highlight - 1 + liveCount) % liveCount
}

// Confirm commits the highlighted opponent: Selecting → Locked. Confirming
// with an empty roster, or outside Selecting, is a no-op.
//
// Precondition: live is the current live opponent list in roster slot order.
// Postcondition: on true, Mode() == ModeLocked and the returned combatant is
// the lock subject; on false, state is unchanged.
func (c *Coordinator) Confirm(live []*roster.Combatant) (*roster.Combatant, bool) {
	if c.mode != ModeSelecting || len(live) == 0 {
		return nil, false
	}
	// The roster may have shrunk since the highlight was set.
	subject := live[c.highlight%len(live)]
	c.mode = ModeLocked
	c.lockedID = subject.ID
	return subject, true
}

// Cancel abandons selection: Selecting → Free. No-op in any other state.
func (c *Coordinator) Cancel() bool {
	if c.mode != ModeSelecting {
		return false
	}
	c.mode = ModeFree
	return true
}

// Disengage breaks an active lock: Locked → Free. Used for the explicit
// quick-disengage input and for encounter teardown. No-op unless Locked.
func (c *Coordinator) Disengage() bool {
	if c.mode != ModeLocked {
		return false
	}
	c.mode = ModeFree
	return true
}

// NoteRosterChanged reconciles the coordinator with the live opponent list
// after a removal. When the locked opponent has left the roster the
// coordinator immediately falls back to Selecting with highlight index 0 if
// opponents remain, or to Free when none do.
//
// Precondition: live is the current live opponent list.
// Postcondition: the returned LockBreak describes the transition taken;
// LockIntact means no state change.
func (c *Coordinator) NoteRosterChanged(live []*roster.Combatant) LockBreak {
	if c.mode != ModeLocked {
		return LockIntact
	}
	for _, opp := range live {
		if opp.ID == c.lockedID {
			return LockIntact
		}
	}
	if len(live) > 0 {
		c.mode = ModeSelecting
		c.highlight = 0
		return LockToSelecting
	}
	c.mode = ModeFree
	return LockRosterEmpty
}

// Reset returns the coordinator to Free unconditionally. Called on encounter
// teardown.
func (c *Coordinator) Reset() {
	c.mode = ModeFree
	c.highlight = 0
}
