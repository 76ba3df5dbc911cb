package combo

import (
	"math"

	"github.com/kverkest/fray/internal/game/arena"
	"github.com/kverkest/fray/internal/game/roster"
)

// ResolverConfig holds the strike tuning shared by every attacker.
type ResolverConfig struct {
	// PerHitBonus is the fractional damage bonus added per combo step beyond
	// the first, e.g. 0.25 adds 25% at hit 2, 50% at hit 3.
	PerHitBonus float64
	// KnockbackBase is the knockback magnitude of a first hit.
	KnockbackBase float64
	// KnockbackPerHit is added to the magnitude per combo step beyond the first.
	KnockbackPerHit float64
}

// StrikeResult reports the full outcome of one resolved strike.
type StrikeResult struct {
	// AttackerID and TargetID are roster slot IDs.
	AttackerID int
	TargetID   int
	// HitIndex is the 1-based position of this strike in its chain.
	HitIndex int
	// DamageDealt is the health actually subtracted.
	DamageDealt int
	// TargetDefeated is true when the target's health is zero after the
	// strike, including targets that were already at zero.
	TargetDefeated bool
	// Tier is the presentation tier for this hit.
	Tier Tier
	// Knockback is the displacement impulse applied to the target, pointing
	// from attacker toward target.
	Knockback arena.Vec2
}

// Resolver computes strike outcomes. It owns no timing: continuation
// eligibility lives in the caller's Tracker.
type Resolver struct {
	cfg ResolverConfig
}

// NewResolver creates a Resolver from cfg.
func NewResolver(cfg ResolverConfig) *Resolver {
	return &Resolver{cfg: cfg}
}

// Damage returns the damage for a strike with the given base damage at the
// given 1-based hit index: floor(base * (1 + (hitIndex-1) * PerHitBonus)).
//
// Precondition: base >= 0; hitIndex >= 1.
// Postcondition: Returns >= 0; returns base when hitIndex == 1.
func (r *Resolver) Damage(base, hitIndex int) int {
	scale := 1 + float64(hitIndex-1)*r.cfg.PerHitBonus
	return int(math.Floor(float64(base) * scale))
}

// Strike resolves one hit by attacker against target at the given chain
// position: damage from the attacker's flat attack stat scaled by the combo
// formula, applied to the target clamped at zero, plus an index-scaled
// knockback impulse directed from attacker toward target.
//
// A target already at zero health still has damage computed and reported, and
// TargetDefeated is set; the caller must not continue the chain against it.
//
// Precondition: attacker and target must be non-nil; hitIndex >= 1.
// Postcondition: target.CurrentHP >= 0; result fields are fully populated.
func (r *Resolver) Strike(attacker, target *roster.Combatant, hitIndex int) StrikeResult {
	dmg := r.Damage(attacker.Attack, hitIndex)
	target.ApplyDamage(dmg)

	magnitude := r.cfg.KnockbackBase + float64(hitIndex-1)*r.cfg.KnockbackPerHit
	dir := target.Pos.Sub(attacker.Pos).Normalized()

	return StrikeResult{
		AttackerID:     attacker.ID,
		TargetID:       target.ID,
		HitIndex:       hitIndex,
		DamageDealt:    dmg,
		TargetDefeated: target.IsDefeated(),
		Tier:           TierFor(hitIndex),
		Knockback:      dir.Scale(magnitude),
	}
}
