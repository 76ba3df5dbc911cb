package behavior

import (
	"fmt"
	"time"

	"github.com/kverkest/fray/internal/game/arena"
	"github.com/kverkest/fray/internal/game/roster"
)

// Env is the encounter context passed into every update: the single
// "opponents may act now" predicate plus the battlefield geometry. It is a
// value constructed fresh each tick, never ambient state, so tests can drive
// transitions without a running encounter.
//
// MayAct folds together both gating modes: in real-time play it is the
// player's vulnerability (moving, dashing, charging, or fleeing); in the
// legacy turn mode it is the dedicated enemy-turn phase. A non-acting
// encounter phase (dialogue, selection browsing, victory sequence) forces it
// false regardless of mode.
type Env struct {
	MayAct bool
	Arena  *arena.Arena
}

// AttackIntent is one attack the engine resolved this tick. The encounter
// applies the damage, knockback, and AP grant so that event emission stays in
// one place.
type AttackIntent struct {
	OpponentID int
	TargetID   int
	Damage     int
	// Knockback is the impulse to apply to the target, pointing away from the
	// opponent.
	Knockback arena.Vec2
}

// Engine owns the behavior records for every live opponent in one encounter.
//
// Concurrency: Engine is not safe for concurrent use. The owning encounter
// serializes all access on its tick goroutine.
type Engine struct {
	profiles *Registry
	records  map[int]*Record
}

// NewEngine creates an Engine resolving profiles from the given registry.
//
// Precondition: profiles must be non-nil.
func NewEngine(profiles *Registry) *Engine {
	return &Engine{
		profiles: profiles,
		records:  make(map[int]*Record),
	}
}

// Attach creates the behavior record for a newly spawned opponent.
//
// Precondition: opp must be an opposition combatant with a ProfileID known to
// the registry.
// Postcondition: Record(opp.ID) returns a StateIdle record.
func (e *Engine) Attach(opp *roster.Combatant) error {
	if opp.Team != roster.TeamOpposition {
		return fmt.Errorf("behavior.Engine.Attach: combatant %d is not an opponent", opp.ID)
	}
	p, ok := e.profiles.Get(opp.ProfileID)
	if !ok {
		return fmt.Errorf("behavior.Engine.Attach: unknown profile %q for opponent %d", opp.ProfileID, opp.ID)
	}
	e.records[opp.ID] = NewRecord(opp.ID, p)
	return nil
}

// Detach destroys the behavior record for a removed opponent. No-op for
// unknown IDs.
func (e *Engine) Detach(opponentID int) {
	delete(e.records, opponentID)
}

// Record returns the behavior record for the given opponent.
func (e *Engine) Record(opponentID int) (*Record, bool) {
	r, ok := e.records[opponentID]
	return r, ok
}

// NoteAttacked forwards a landed player strike to the opponent's record.
// No-op for unknown IDs.
func (e *Engine) NoteAttacked(opponentID int) {
	if r, ok := e.records[opponentID]; ok {
		r.NoteAttacked()
	}
}

// States returns a snapshot of every record's state keyed by opponent ID.
func (e *Engine) States() map[int]State {
	out := make(map[int]State, len(e.records))
	for id, r := range e.records {
		out[id] = r.State
	}
	return out
}

// ObserveAll applies health-driven transitions for every living opponent
// without moving or attacking. Turn mode runs this between dispatched
// actions so defensive promotion never waits for the next enemy turn.
func (e *Engine) ObserveAll(ros *roster.Roster) {
	for _, opp := range ros.LivingOpponents() {
		if r, ok := e.records[opp.ID]; ok {
			r.ObserveHealth(opp.HealthFraction())
		}
	}
}

// Update advances one opponent by delta. Health-driven transitions apply
// first; a closed act window then freezes the opponent with zero heading and
// no attack; otherwise the opponent moves per its state and may return one
// attack intent.
//
// Precondition: opp must be a live opposition combatant; delta >= 0.
// Postcondition: opp.Pos stays inside env.Arena; the returned intent, if any,
// respects the record's attack cooldown.
func (e *Engine) Update(now time.Time, delta time.Duration, opp *roster.Combatant, env Env, ros *roster.Roster) (AttackIntent, bool) {
	r, ok := e.records[opp.ID]
	if !ok {
		return AttackIntent{}, false
	}

	r.ObserveHealth(opp.HealthFraction())

	if !env.MayAct {
		r.Heading = arena.Vec2{}
		return AttackIntent{}, false
	}

	target := ros.NearestPartyTarget(opp.Pos)
	if target == nil {
		r.Heading = arena.Vec2{}
		return AttackIntent{}, false
	}
	distance := opp.Pos.DistanceTo(target.Pos)

	p := r.profile
	speed := p.MoveSpeed * p.Aggressiveness * p.VulnerabilityBoost
	attackRange := p.AttackRange

	switch r.State {
	case StateIdle:
		speed *= p.IdleSpeedFactor
	case StateDefensive:
		// Banded approach: hold beyond medium range, creep inside it, and
		// only swing at close range.
		if distance >= env.Arena.MediumRange {
			r.Heading = arena.Vec2{}
			return AttackIntent{}, false
		}
		speed *= p.DefensiveSpeedFactor
		attackRange = env.Arena.CloseRange
	}

	if distance > attackRange {
		e.moveToward(opp, r, target.Pos, speed*delta.Seconds(), env.Arena)
		return AttackIntent{}, false
	}

	// In range: stop and attack on cooldown.
	r.Heading = arena.Vec2{}
	if !r.CanAttack(now) {
		return AttackIntent{}, false
	}
	r.LastAttack = now
	dir := target.Pos.Sub(opp.Pos).Normalized()
	return AttackIntent{
		OpponentID: opp.ID,
		TargetID:   target.ID,
		Damage:     p.AttackDamage,
		Knockback:  dir.Scale(p.Knockback),
	}, true
}

// UpdateAll advances every living opponent in roster slot order and returns
// the attack intents resolved this tick, in that order.
func (e *Engine) UpdateAll(now time.Time, delta time.Duration, ros *roster.Roster, env Env) []AttackIntent {
	var intents []AttackIntent
	for _, opp := range ros.LivingOpponents() {
		if intent, ok := e.Update(now, delta, opp, env, ros); ok {
			intents = append(intents, intent)
		}
	}
	return intents
}

func (e *Engine) moveToward(opp *roster.Combatant, r *Record, target arena.Vec2, step float64, a *arena.Arena) {
	r.Heading = target.Sub(opp.Pos).Normalized()
	opp.Pos = a.Clamp(opp.Pos.MoveToward(target, step))
}
