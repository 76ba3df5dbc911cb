package encounter

import (
	"time"

	"github.com/kverkest/fray/internal/game/behavior"
	"github.com/kverkest/fray/internal/game/combo"
	"github.com/kverkest/fray/internal/game/outcome"
	"github.com/kverkest/fray/internal/game/targeting"
)

// EventKind classifies the presentation events an encounter emits.
type EventKind int

const (
	// EventNoResource reports an action refused for lack of action points.
	EventNoResource EventKind = iota
	// EventStrike reports a player strike that landed.
	EventStrike
	// EventOpponentHit reports an opponent attack landing on a party member.
	EventOpponentHit
	// EventOpponentDown reports an opponent removed by defeat.
	EventOpponentDown
	// EventPartyMemberDown reports a party member dropping to zero health.
	EventPartyMemberDown
	// EventBehaviorChanged reports an opponent behavior state transition.
	EventBehaviorChanged
	// EventTargetingChanged reports a targeting mode or highlight change.
	EventTargetingChanged
	// EventTurnStarted reports the start of a dispatched enemy turn.
	EventTurnStarted
	// EventTurnEnded reports the end of a dispatched enemy turn.
	EventTurnEnded
	// EventFleeFailed reports a failed flee attempt.
	EventFleeFailed
	// EventRecruitFailed reports a failed recruitment attempt.
	EventRecruitFailed
	// EventRecruited reports an opponent leaving the encounter by recruitment.
	EventRecruited
	// EventOutcome carries the terminal payload. Emitted exactly once.
	EventOutcome
)

// String implements fmt.Stringer for logging and wire encoding.
func (k EventKind) String() string {
	switch k {
	case EventNoResource:
		return "no_resource"
	case EventStrike:
		return "strike"
	case EventOpponentHit:
		return "opponent_hit"
	case EventOpponentDown:
		return "opponent_down"
	case EventPartyMemberDown:
		return "party_member_down"
	case EventBehaviorChanged:
		return "behavior_changed"
	case EventTargetingChanged:
		return "targeting_changed"
	case EventTurnStarted:
		return "turn_started"
	case EventTurnEnded:
		return "turn_ended"
	case EventFleeFailed:
		return "flee_failed"
	case EventRecruitFailed:
		return "recruit_failed"
	case EventRecruited:
		return "recruited"
	case EventOutcome:
		return "outcome"
	default:
		return "unknown"
	}
}

// Event is one presentation-facing occurrence. Which fields are meaningful
// depends on Kind; unused fields hold zero values.
type Event struct {
	Kind EventKind
	At   time.Time

	// ActorID and TargetID are roster slots.
	ActorID  int
	TargetID int

	// Damage and Tier describe strikes and opponent hits.
	Damage int
	Tier   combo.Tier

	// Mode describes targeting changes.
	Mode targeting.Mode

	// From and To describe behavior transitions.
	From behavior.State
	To   behavior.State

	// Outcome is set only on EventOutcome.
	Outcome *outcome.Payload
}

func (e *Encounter) emit(ev Event) {
	ev.At = e.now
	e.events = append(e.events, ev)
}

// DrainEvents returns the events accumulated since the previous drain and
// resets the buffer. The caller forwards them to presentation after each
// tick or request.
func (e *Encounter) DrainEvents() []Event {
	out := e.events
	e.events = nil
	return out
}
