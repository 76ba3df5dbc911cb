package encounter

import (
	"time"

	"github.com/kverkest/fray/internal/game/arena"
)

// ScheduledKind identifies what a timer-list entry does when it fires.
type ScheduledKind int

const (
	// KindHitboxExpire ends a melee attack hitbox's cosmetic lifetime.
	KindHitboxExpire ScheduledKind = iota
	// KindKnockbackClear zeroes the residual knockback on a combatant.
	KindKnockbackClear
	// KindProjectileImpact lands a ranged attack on its target.
	KindProjectileImpact
	// KindDashEnd closes the player's dash burst.
	KindDashEnd
	// KindFleeWindowClose ends the vulnerability window a flee attempt opened.
	KindFleeWindowClose
)

// ScheduledEvent is one pending delayed action in the encounter's timer list.
// Entries are plain data: firing them is the encounter's job, so no callback
// can outlive its encounter.
type ScheduledEvent struct {
	FireAt time.Time
	Kind   ScheduledKind
	// SourceID and TargetID are roster slots; meaning depends on Kind.
	SourceID int
	TargetID int
	// Damage and Knockback carry projectile impact payloads.
	Damage    int
	Knockback arena.Vec2
}

// Scheduler is the per-encounter timer list. It is drained each tick and
// fully cleared on teardown, so a terminal encounter can never be mutated by
// a stale delayed action.
//
// Concurrency: Scheduler is not safe for concurrent use. The owning
// encounter serializes all access on its tick goroutine.
type Scheduler struct {
	pending []ScheduledEvent
}

// NewScheduler creates an empty Scheduler.
func NewScheduler() *Scheduler {
	return &Scheduler{}
}

// Schedule queues ev to fire at ev.FireAt.
func (s *Scheduler) Schedule(ev ScheduledEvent) {
	s.pending = append(s.pending, ev)
}

// Due removes and returns all entries whose FireAt <= now, preserving
// scheduling order among the ready entries.
//
// Postcondition: no returned entry remains pending.
func (s *Scheduler) Due(now time.Time) []ScheduledEvent {
	var ready, future []ScheduledEvent
	for _, e := range s.pending {
		if !e.FireAt.After(now) {
			ready = append(ready, e)
		} else {
			future = append(future, e)
		}
	}
	s.pending = future
	return ready
}

// Pending returns a snapshot copy of the queued entries.
func (s *Scheduler) Pending() []ScheduledEvent {
	out := make([]ScheduledEvent, len(s.pending))
	copy(out, s.pending)
	return out
}

// Len returns the number of queued entries.
func (s *Scheduler) Len() int { return len(s.pending) }

// Clear drops every pending entry. Called on encounter teardown.
//
// Postcondition: Len() == 0.
func (s *Scheduler) Clear() {
	s.pending = nil
}
