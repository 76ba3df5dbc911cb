package encounter

import (
	"time"

	"github.com/google/uuid"

	"github.com/kverkest/fray/internal/game/arena"
	"github.com/kverkest/fray/internal/game/behavior"
	"github.com/kverkest/fray/internal/game/outcome"
	"github.com/kverkest/fray/internal/game/roster"
)

// CombatantView is the read-only presentation view of one combatant.
type CombatantView struct {
	ID         int        `json:"id"`
	Name       string     `json:"name"`
	Team       string     `json:"team"`
	Rank       string     `json:"rank"`
	Level      int        `json:"level"`
	CurrentHP  int        `json:"current_hp"`
	MaxHP      int        `json:"max_hp"`
	Downed     bool       `json:"downed"`
	Suppressed bool       `json:"suppressed"`
	Status     string     `json:"status"`
	State      string     `json:"state,omitempty"`
	Pos        arena.Vec2 `json:"pos"`
}

// ProjectileView is one ranged attack still in flight.
type ProjectileView struct {
	SourceID int       `json:"source_id"`
	TargetID int       `json:"target_id"`
	ImpactAt time.Time `json:"impact_at"`
}

// TargetingView is the targeting coordinator's presentation state.
type TargetingView struct {
	Mode           string `json:"mode"`
	HighlightIndex int    `json:"highlight_index"`
	// LockedID is -1 unless a lock is active.
	LockedID int `json:"locked_id"`
}

// Snapshot is a self-contained view of the encounter for one frame. It
// shares no pointers with the live state, so the server can serialize it
// after releasing the encounter.
type Snapshot struct {
	EncounterID   uuid.UUID        `json:"encounter_id"`
	Phase         string           `json:"phase"`
	Mode          string           `json:"mode"`
	DialogueOpen  bool             `json:"dialogue_open"`
	AP            float64          `json:"ap"`
	APMax         float64          `json:"ap_max"`
	ComboCount    int              `json:"combo_count"`
	LastHitDamage int              `json:"last_hit_damage"`
	HitboxActive  bool             `json:"hitbox_active"`
	Vulnerable    bool             `json:"vulnerable"`
	Targeting     TargetingView    `json:"targeting"`
	Party         []CombatantView  `json:"party"`
	Opponents     []CombatantView  `json:"opponents"`
	Projectiles   []ProjectileView `json:"projectiles,omitempty"`
	Outcome       *outcome.Payload `json:"outcome,omitempty"`
}

// Snapshot captures the current frame.
func (e *Encounter) Snapshot() Snapshot {
	states := e.engine.States()
	snap := Snapshot{
		EncounterID:   e.id,
		Phase:         e.phase.String(),
		Mode:          e.mode.String(),
		DialogueOpen:  e.dialogueOpen,
		AP:            e.pool.Current(),
		APMax:         e.pool.Max(),
		ComboCount:    e.tracker.Count(e.now),
		LastHitDamage: e.lastDamage,
		HitboxActive:  e.hitboxes > 0,
		Vulnerable:    e.playerVulnerable(),
		Targeting: TargetingView{
			Mode:           e.coord.Mode().String(),
			HighlightIndex: e.coord.HighlightIndex(),
			LockedID:       -1,
		},
		Outcome: e.terminal,
	}
	if id, ok := e.coord.LockedID(); ok {
		snap.Targeting.LockedID = id
	}
	for _, c := range e.ros.PartyMembers() {
		snap.Party = append(snap.Party, viewOf(c, states))
	}
	for _, c := range e.ros.Opponents() {
		snap.Opponents = append(snap.Opponents, viewOf(c, states))
	}
	for _, ev := range e.sched.Pending() {
		if ev.Kind != KindProjectileImpact {
			continue
		}
		snap.Projectiles = append(snap.Projectiles, ProjectileView{
			SourceID: ev.SourceID,
			TargetID: ev.TargetID,
			ImpactAt: ev.FireAt,
		})
	}
	return snap
}

func viewOf(c *roster.Combatant, states map[int]behavior.State) CombatantView {
	v := CombatantView{
		ID:         c.ID,
		Name:       c.Name,
		Team:       c.Team.String(),
		Rank:       c.Rank.String(),
		Level:      c.Level,
		CurrentHP:  c.CurrentHP,
		MaxHP:      c.MaxHP,
		Downed:     c.Downed,
		Suppressed: c.Suppressed,
		Status:     c.StatusDescription(),
		Pos:        c.Pos,
	}
	if st, ok := states[c.ID]; ok {
		v.State = st.String()
	}
	return v
}
