package behavior

import (
	"time"

	"github.com/kverkest/fray/internal/game/arena"
)

// State is the opponent AI state.
type State int

const (
	StateIdle State = iota
	StateCombat
	StateDefensive
)

// String returns the human-readable name of the State.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateCombat:
		return "combat"
	case StateDefensive:
		return "defensive"
	default:
		return "unknown"
	}
}

// Record is the per-opponent behavior state, created alongside the opponent
// at encounter setup and destroyed when the opponent is removed.
//
// Invariant: State never leaves StateDefensive once entered.
type Record struct {
	// OpponentID is the roster slot of the opponent this record belongs to.
	OpponentID int
	// State is the current AI state.
	State State
	// Heading is the current movement direction (unit vector), zero when the
	// opponent is holding position or frozen.
	Heading arena.Vec2
	// HasBeenAttacked latches once the opponent takes its first hit.
	HasBeenAttacked bool
	// LastAttack is the timestamp of the opponent's last landed attack.
	LastAttack time.Time

	profile  *Profile
	cooldown time.Duration
}

// NewRecord creates a Record in StateIdle for the given opponent and profile.
//
// Precondition: profile must be non-nil and validated.
func NewRecord(opponentID int, profile *Profile) *Record {
	return &Record{
		OpponentID: opponentID,
		State:      StateIdle,
		profile:    profile,
		cooldown:   profile.CooldownDuration(),
	}
}

// Profile returns the tuning this record was created with.
func (r *Record) Profile() *Profile { return r.profile }

// NoteAttacked latches the been-attacked flag and promotes an Idle opponent
// to Combat. Defensive opponents are unaffected.
//
// Postcondition: HasBeenAttacked is true; State is never demoted.
func (r *Record) NoteAttacked() {
	r.HasBeenAttacked = true
	if r.State == StateIdle {
		r.State = StateCombat
	}
}

// ObserveHealth applies the one-way Defensive transition when the health
// fraction is at or below DefensiveThreshold. Idempotent: re-applying while
// already Defensive changes nothing, and healing never reverts the state.
func (r *Record) ObserveHealth(fraction float64) {
	if fraction <= DefensiveThreshold {
		r.State = StateDefensive
	}
}

// CanAttack reports whether the attack cooldown has elapsed at now. An
// opponent that has never attacked may attack immediately.
func (r *Record) CanAttack(now time.Time) bool {
	if r.LastAttack.IsZero() {
		return true
	}
	return now.Sub(r.LastAttack) >= r.cooldown
}
