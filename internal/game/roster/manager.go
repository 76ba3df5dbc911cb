package roster

import (
	"fmt"

	"github.com/kverkest/fray/internal/game/arena"
)

// Roster tracks every combatant in one encounter, both sides, by stable slot
// index. Slots are never reused: removing an opponent marks the record removed
// but keeps it addressable for outcome bookkeeping.
//
// Concurrency: Roster is not safe for concurrent use. The owning encounter
// serializes all access on its tick goroutine.
type Roster struct {
	combatants []*Combatant
}

// NewRoster creates an empty Roster.
func NewRoster() *Roster {
	return &Roster{}
}

// AddPartyMember appends a party combatant built from def with the given rank.
//
// Precondition: def must be validated; rank must be RankLeader or RankFollower.
// Postcondition: Returns the new Combatant with CurrentHP == MaxHP and a
// unique slot ID.
func (r *Roster) AddPartyMember(def MemberDef, rank Rank, pos arena.Vec2) *Combatant {
	c := &Combatant{
		ID:        len(r.combatants),
		Name:      def.Name,
		Team:      TeamParty,
		Rank:      rank,
		Level:     def.Level,
		CurrentHP: def.MaxHP,
		MaxHP:     def.MaxHP,
		Attack:    def.Attack,
		Pos:       pos,
	}
	r.combatants = append(r.combatants, c)
	return c
}

// SpawnOpponent creates an opposition combatant from tmpl at pos.
//
// Precondition: tmpl must be non-nil and validated.
// Postcondition: Returns a new Combatant with CurrentHP == tmpl.MaxHP
// registered in the active roster.
func (r *Roster) SpawnOpponent(tmpl *Template, pos arena.Vec2) (*Combatant, error) {
	if tmpl == nil {
		return nil, fmt.Errorf("roster.Roster.SpawnOpponent: tmpl must not be nil")
	}
	c := &Combatant{
		ID:          len(r.combatants),
		Name:        tmpl.Name,
		Team:        TeamOpposition,
		Level:       tmpl.Level,
		CurrentHP:   tmpl.MaxHP,
		MaxHP:       tmpl.MaxHP,
		Attack:      tmpl.Attack,
		Pos:         pos,
		TemplateID:  tmpl.ID,
		ArchetypeID: tmpl.Archetype,
		ProfileID:   tmpl.Profile,
		Recruitable: tmpl.Recruitable,
	}
	r.combatants = append(r.combatants, c)
	return c, nil
}

// Get returns the combatant with the given slot ID.
//
// Postcondition: Returns (c, true) if the slot exists, (nil, false) otherwise.
// Removed opponents are still returned; callers check Targetable or IsRemoved.
func (r *Roster) Get(id int) (*Combatant, bool) {
	if id < 0 || id >= len(r.combatants) {
		return nil, false
	}
	return r.combatants[id], true
}

// RemoveOpponent takes an opponent out of the active roster (defeat or
// recruitment). The slot record survives for outcome bookkeeping.
//
// Precondition: id must identify an opposition combatant.
// Postcondition: the combatant is no longer returned by Opponents or
// LivingOpponents; returns an error for unknown or party slots.
func (r *Roster) RemoveOpponent(id int) error {
	c, ok := r.Get(id)
	if !ok {
		return fmt.Errorf("roster: opponent %d not found", id)
	}
	if c.Team != TeamOpposition {
		return fmt.Errorf("roster: combatant %d is not an opponent", id)
	}
	c.removed = true
	return nil
}

// IsRemoved reports whether the opponent with the given ID has left the
// active roster. Unknown IDs report true.
func (r *Roster) IsRemoved(id int) bool {
	c, ok := r.Get(id)
	if !ok {
		return true
	}
	return c.removed
}

// PartyMembers returns a snapshot slice of all party combatants in slot order.
//
// Postcondition: Returns a non-nil slice (may be empty).
func (r *Roster) PartyMembers() []*Combatant {
	out := []*Combatant{}
	for _, c := range r.combatants {
		if c.Team == TeamParty {
			out = append(out, c)
		}
	}
	return out
}

// Leader returns the party leader, or nil when the roster has none.
func (r *Roster) Leader() *Combatant {
	for _, c := range r.combatants {
		if c.IsLeader() {
			return c
		}
	}
	return nil
}

// Opponents returns a snapshot slice of all active opposition combatants in
// slot order, including defeated-but-not-yet-removed ones.
//
// Postcondition: Returns a non-nil slice (may be empty).
func (r *Roster) Opponents() []*Combatant {
	out := []*Combatant{}
	for _, c := range r.combatants {
		if c.Team == TeamOpposition && !c.removed {
			out = append(out, c)
		}
	}
	return out
}

// LivingOpponents returns the active opposition combatants with health above
// zero, in slot order.
//
// Postcondition: Returns a non-nil slice (may be empty).
func (r *Roster) LivingOpponents() []*Combatant {
	out := []*Combatant{}
	for _, c := range r.combatants {
		if c.Team == TeamOpposition && !c.removed && !c.IsDefeated() {
			out = append(out, c)
		}
	}
	return out
}

// All returns every combatant ever added, in slot order, including removed
// opponents. Intended for outcome bookkeeping and snapshots.
func (r *Roster) All() []*Combatant {
	out := make([]*Combatant, len(r.combatants))
	copy(out, r.combatants)
	return out
}

// AlivePartyCount returns the number of party members not downed.
func (r *Roster) AlivePartyCount() int {
	count := 0
	for _, c := range r.combatants {
		if c.Team == TeamParty && !c.Downed {
			count++
		}
	}
	return count
}

// PartyDefeated reports whether every party member is downed.
//
// Postcondition: Returns false for a roster with no party members.
func (r *Roster) PartyDefeated() bool {
	hasParty := false
	for _, c := range r.combatants {
		if c.Team == TeamParty {
			hasParty = true
			if !c.Downed {
				return false
			}
		}
	}
	return hasParty
}

// NearestPartyTarget returns the targetable party combatant closest to pos,
// or nil when every party member is downed.
func (r *Roster) NearestPartyTarget(pos arena.Vec2) *Combatant {
	var nearest *Combatant
	best := 0.0
	for _, c := range r.combatants {
		if c.Team != TeamParty || !c.Targetable() {
			continue
		}
		d := pos.DistanceTo(c.Pos)
		if nearest == nil || d < best {
			nearest = c
			best = d
		}
	}
	return nearest
}
