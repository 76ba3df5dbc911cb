// Package roster provides combatant definitions, opponent templates, and the
// live encounter roster that tracks both sides of a battle.
package roster

import "github.com/kverkest/fray/internal/game/arena"

// Team distinguishes the player's party from the opposing side.
type Team int

const (
	TeamParty Team = iota
	TeamOpposition
)

// String returns "party" or "opposition".
func (t Team) String() string {
	if t == TeamParty {
		return "party"
	}
	return "opposition"
}

// Rank distinguishes the player-controlled leader from AI-followed party members.
// Opponents always carry RankNone.
type Rank int

const (
	RankNone Rank = iota
	RankLeader
	RankFollower
)

// String returns "none", "leader", or "follower".
func (r Rank) String() string {
	switch r {
	case RankLeader:
		return "leader"
	case RankFollower:
		return "follower"
	default:
		return "none"
	}
}

// Combatant is one live participant in an encounter.
//
// IDs are slot indices assigned by the Roster at creation and never reused, so
// they stay valid across opponent removal. Party members are never removed;
// reaching 0 health sets Downed instead.
type Combatant struct {
	// ID is the stable slot index assigned by the Roster.
	ID int
	// Name is the display name.
	Name string
	// Team is the side this combatant fights on.
	Team Team
	// Rank is RankLeader or RankFollower for party members, RankNone otherwise.
	Rank Rank
	// Level scales reward and policy rolls.
	Level int
	// CurrentHP is the combatant's current health. Clamped to [0, MaxHP].
	CurrentHP int
	// MaxHP is the combatant's maximum health.
	MaxHP int
	// Attack is the flat damage stat fed into strike resolution.
	Attack int
	// Pos is the combatant's battlefield position.
	Pos arena.Vec2
	// Knockback is the decaying displacement applied by recent hits.
	Knockback arena.Vec2
	// Downed is set for party members at 0 health: immobilized and untargetable.
	Downed bool
	// Suppressed hides the combatant from presentation during a target lock.
	// Suppressed combatants remain fully simulated.
	Suppressed bool

	// Opponent-only fields, copied from the template at spawn time.
	TemplateID  string
	ArchetypeID string
	ProfileID   string
	Recruitable bool

	// removed is set when an opponent leaves the active roster (defeat or
	// recruitment). The record survives for outcome bookkeeping.
	removed bool
}

// IsLeader reports whether this combatant is the player-controlled party leader.
func (c *Combatant) IsLeader() bool { return c.Team == TeamParty && c.Rank == RankLeader }

// IsDefeated reports whether the combatant has zero or fewer hit points.
func (c *Combatant) IsDefeated() bool { return c.CurrentHP <= 0 }

// HealthFraction returns CurrentHP / MaxHP.
//
// Precondition: MaxHP > 0.
// Postcondition: Returns a value in [0, 1].
func (c *Combatant) HealthFraction() float64 {
	return float64(c.CurrentHP) / float64(c.MaxHP)
}

// ApplyDamage reduces CurrentHP by amount, flooring at zero. Party members
// reaching zero are marked Downed.
//
// Precondition: amount must be >= 0.
// Postcondition: CurrentHP >= 0.
func (c *Combatant) ApplyDamage(amount int) {
	c.CurrentHP -= amount
	if c.CurrentHP < 0 {
		c.CurrentHP = 0
	}
	if c.Team == TeamParty && c.CurrentHP == 0 {
		c.Downed = true
	}
}

// Heal restores CurrentHP by amount, clamped at MaxHP. Healing a downed party
// member above zero clears Downed.
//
// Precondition: amount must be >= 0.
// Postcondition: CurrentHP <= MaxHP.
func (c *Combatant) Heal(amount int) {
	c.CurrentHP += amount
	if c.CurrentHP > c.MaxHP {
		c.CurrentHP = c.MaxHP
	}
	if c.Team == TeamParty && c.CurrentHP > 0 {
		c.Downed = false
	}
}

// Targetable reports whether this combatant is a valid attack target:
// present in the active roster, not defeated, and not downed.
func (c *Combatant) Targetable() bool {
	return !c.removed && !c.Downed && !c.IsDefeated()
}

// StatusDescription returns a visible health state string suitable for
// event text and simulator output.
//
// Postcondition: Returns a non-empty string.
func (c *Combatant) StatusDescription() string {
	if c.CurrentHP <= 0 {
		if c.Team == TeamParty {
			return "down"
		}
		return "defeated"
	}
	pct := c.HealthFraction()
	switch {
	case pct >= 1.0:
		return "unharmed"
	case pct >= 0.85:
		return "barely scratched"
	case pct >= 0.60:
		return "lightly wounded"
	case pct >= 0.40:
		return "moderately wounded"
	case pct >= 0.20:
		return "heavily wounded"
	default:
		return "critically wounded"
	}
}
