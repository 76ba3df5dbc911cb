package outcome

import (
	"time"

	"github.com/google/uuid"

	"github.com/kverkest/fray/internal/game/roster"
)

// Resolver watches the roster after every health mutation or roster change
// and emits the terminal payload at most once per encounter.
//
// Invariant: after the first non-nil payload, every further check returns nil.
//
// Concurrency: Resolver is not safe for concurrent use. The owning encounter
// serializes all access on its tick goroutine.
type Resolver struct {
	encounterID   uuid.UUID
	returnContext string
	reward        RewardPolicy
	archetypes    roster.ArchetypeSet

	emitted bool
}

// NewResolver creates a Resolver for one encounter.
//
// Precondition: reward must be non-nil; archetypes must contain every
// archetype the roster's opponents reference.
func NewResolver(encounterID uuid.UUID, returnContext string, reward RewardPolicy, archetypes roster.ArchetypeSet) *Resolver {
	return &Resolver{
		encounterID:   encounterID,
		returnContext: returnContext,
		reward:        reward,
		archetypes:    archetypes,
	}
}

// Emitted reports whether the terminal payload has already been produced.
func (r *Resolver) Emitted() bool { return r.emitted }

// Check inspects ros for a terminal condition: every party member downed is
// defeat; an empty active opponent roster is victory with the summed reward
// for the defeated. Returns nil while the encounter is still live or after
// the terminal payload has already been emitted.
//
// Defeat wins when both conditions hold in the same tick: a wiped party
// never sees a victory screen.
//
// Precondition: defeatedIDs and recruitedIDs list roster slots of removed
// opponents; playerLevel >= 1.
// Postcondition: at most one non-nil return across the Resolver's lifetime.
func (r *Resolver) Check(now time.Time, ros *roster.Roster, playerLevel int, defeatedIDs, recruitedIDs []int) *Payload {
	if r.emitted {
		return nil
	}

	if ros.PartyDefeated() {
		r.emitted = true
		return r.payload(KindDefeat, now, ros, 0, defeatedIDs, recruitedIDs)
	}

	if len(ros.Opponents()) == 0 {
		r.emitted = true
		reward := r.totalReward(ros, playerLevel, defeatedIDs)
		return r.payload(KindVictory, now, ros, reward, defeatedIDs, recruitedIDs)
	}

	return nil
}

// Disengage emits the disengage payload for a successful flee or negotiation.
// Returns nil when a terminal payload was already emitted.
//
// Postcondition: at most one non-nil terminal payload across the Resolver's
// lifetime, shared with Check.
func (r *Resolver) Disengage(now time.Time, ros *roster.Roster, defeatedIDs, recruitedIDs []int) *Payload {
	if r.emitted {
		return nil
	}
	r.emitted = true
	return r.payload(KindDisengage, now, ros, 0, defeatedIDs, recruitedIDs)
}

// totalReward sums the policy's reward for each defeated opponent, resolving
// level and archetype from the surviving slot records.
func (r *Resolver) totalReward(ros *roster.Roster, playerLevel int, defeatedIDs []int) int {
	total := 0
	for _, id := range defeatedIDs {
		opp, ok := ros.Get(id)
		if !ok {
			continue
		}
		base := 0
		if a, found := r.archetypes[opp.ArchetypeID]; found {
			base = a.RewardBase
		}
		total += r.reward(RewardInput{
			OpponentLevel: opp.Level,
			PlayerLevel:   playerLevel,
			ArchetypeID:   opp.ArchetypeID,
			RewardBase:    base,
		})
	}
	return total
}

func (r *Resolver) payload(kind Kind, now time.Time, ros *roster.Roster, reward int, defeatedIDs, recruitedIDs []int) *Payload {
	return &Payload{
		Kind:          kind,
		EncounterID:   r.encounterID,
		Reward:        reward,
		DefeatedIDs:   append([]int(nil), defeatedIDs...),
		RecruitedIDs:  append([]int(nil), recruitedIDs...),
		Party:         PartySnapshot(ros),
		ReturnContext: r.returnContext,
		OccurredAt:    now,
	}
}
