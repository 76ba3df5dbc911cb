// Package outcome detects encounter resolution — victory, party defeat, or
// disengage — and produces the terminal payload the surrounding transition
// logic consumes. Reward, recruitment, and flee rules are injectable policies.
package outcome

import (
	"time"

	"github.com/google/uuid"

	"github.com/kverkest/fray/internal/game/roster"
)

// Kind is the terminal result of an encounter.
type Kind int

const (
	KindVictory Kind = iota
	KindDefeat
	KindDisengage
)

// String returns "victory", "defeat", or "disengage".
func (k Kind) String() string {
	switch k {
	case KindVictory:
		return "victory"
	case KindDefeat:
		return "defeat"
	case KindDisengage:
		return "disengage"
	default:
		return "unknown"
	}
}

// PartyHealth is one party member's closing state in a terminal payload.
type PartyHealth struct {
	CombatantID int    `json:"combatant_id"`
	Name        string `json:"name"`
	CurrentHP   int    `json:"current_hp"`
	MaxHP       int    `json:"max_hp"`
	Downed      bool   `json:"downed"`
}

// Payload is the terminal transition record. It carries enough state for the
// overworld restore logic: the closing party snapshot, which opponents fell
// or joined, the reward total, and the opaque return context the encounter
// was created with.
type Payload struct {
	Kind         Kind          `json:"kind"`
	EncounterID  uuid.UUID     `json:"encounter_id"`
	Reward       int           `json:"reward"`
	DefeatedIDs  []int         `json:"defeated_ids"`
	RecruitedIDs []int         `json:"recruited_ids"`
	Party        []PartyHealth `json:"party"`
	// ReturnContext is the opaque token supplied at encounter start, passed
	// through untouched for the out-of-scope overworld transition.
	ReturnContext string    `json:"return_context"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// PartySnapshot captures the closing party state from ros.
func PartySnapshot(ros *roster.Roster) []PartyHealth {
	members := ros.PartyMembers()
	out := make([]PartyHealth, 0, len(members))
	for _, m := range members {
		out = append(out, PartyHealth{
			CombatantID: m.ID,
			Name:        m.Name,
			CurrentHP:   m.CurrentHP,
			MaxHP:       m.MaxHP,
			Downed:      m.Downed,
		})
	}
	return out
}
