package combo_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"github.com/kverkest/fray/internal/game/arena"
	"github.com/kverkest/fray/internal/game/combo"
	"github.com/kverkest/fray/internal/game/roster"
)

func newResolver() *combo.Resolver {
	return combo.NewResolver(combo.ResolverConfig{
		PerHitBonus:     0.25,
		KnockbackBase:   120,
		KnockbackPerHit: 40,
	})
}

func attacker() *roster.Combatant {
	return &roster.Combatant{
		ID: 0, Name: "Wren", Team: roster.TeamParty, Rank: roster.RankLeader,
		Level: 3, CurrentHP: 60, MaxHP: 60, Attack: 8,
		Pos: arena.Vec2{X: 100, Y: 100},
	}
}

func target() *roster.Combatant {
	return &roster.Combatant{
		ID: 2, Name: "Thicket Boar", Team: roster.TeamOpposition,
		Level: 2, CurrentHP: 28, MaxHP: 28, Attack: 5,
		Pos: arena.Vec2{X: 150, Y: 100},
	}
}

func TestResolver_Damage_FirstHitIsBase(t *testing.T) {
	assert.Equal(t, 8, newResolver().Damage(8, 1))
}

func TestResolver_Damage_Escalates(t *testing.T) {
	r := newResolver()
	assert.Equal(t, 10, r.Damage(8, 2)) // 8 * 1.25
	assert.Equal(t, 12, r.Damage(8, 3)) // 8 * 1.50
	assert.Equal(t, 14, r.Damage(8, 4)) // 8 * 1.75
}

func TestResolver_Damage_FloorsFraction(t *testing.T) {
	// 5 * 1.25 = 6.25, floored to 6.
	assert.Equal(t, 6, newResolver().Damage(5, 2))
}

func TestResolver_Strike_AppliesDamage(t *testing.T) {
	r := newResolver()
	tgt := target()
	res := r.Strike(attacker(), tgt, 1)
	assert.Equal(t, 8, res.DamageDealt)
	assert.Equal(t, 20, tgt.CurrentHP)
	assert.False(t, res.TargetDefeated)
	assert.Equal(t, combo.TierSingle, res.Tier)
}

func TestResolver_Strike_DefeatClampsAtZero(t *testing.T) {
	r := newResolver()
	tgt := target()
	tgt.CurrentHP = 3
	res := r.Strike(attacker(), tgt, 1)
	assert.True(t, res.TargetDefeated)
	assert.Equal(t, 0, tgt.CurrentHP)
}

func TestResolver_Strike_KnockbackPointsAwayFromAttacker(t *testing.T) {
	res := newResolver().Strike(attacker(), target(), 1)
	// Target sits due east of the attacker.
	assert.InDelta(t, 120, res.Knockback.X, 1e-9)
	assert.InDelta(t, 0, res.Knockback.Y, 1e-9)
}

func TestResolver_Strike_KnockbackScalesWithIndex(t *testing.T) {
	res := newResolver().Strike(attacker(), target(), 3)
	assert.InDelta(t, 200, res.Knockback.Length(), 1e-9) // 120 + 2*40
}

func TestResolver_Strike_PopulatesIDs(t *testing.T) {
	res := newResolver().Strike(attacker(), target(), 2)
	assert.Equal(t, 0, res.AttackerID)
	assert.Equal(t, 2, res.TargetID)
	assert.Equal(t, 2, res.HitIndex)
	assert.Equal(t, combo.TierDouble, res.Tier)
}

func TestTierFor_Ladder(t *testing.T) {
	assert.Equal(t, combo.TierSingle, combo.TierFor(1))
	assert.Equal(t, combo.TierDouble, combo.TierFor(2))
	assert.Equal(t, combo.TierTriple, combo.TierFor(3))
	assert.Equal(t, combo.TierRampage, combo.TierFor(4))
	assert.Equal(t, combo.TierRampage, combo.TierFor(9))
}

func TestTier_String(t *testing.T) {
	assert.Equal(t, "hit", combo.TierSingle.String())
	assert.Equal(t, "rampage", combo.TierRampage.String())
}

func TestPropertyResolver_DamageMonotonicInIndex(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		r := newResolver()
		base := rapid.IntRange(1, 50).Draw(t, "base")
		idx := rapid.IntRange(1, 10).Draw(t, "idx")
		assert.LessOrEqual(t, r.Damage(base, idx), r.Damage(base, idx+1),
			"damage must never decrease along a chain")
	})
}

func TestPropertyResolver_StrikeNeverLeavesNegativeHP(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		r := newResolver()
		tgt := target()
		tgt.CurrentHP = rapid.IntRange(0, 28).Draw(t, "hp")
		idx := rapid.IntRange(1, 8).Draw(t, "idx")
		res := r.Strike(attacker(), tgt, idx)
		assert.GreaterOrEqual(t, tgt.CurrentHP, 0)
		assert.Equal(t, tgt.CurrentHP <= 0, res.TargetDefeated)
	})
}
