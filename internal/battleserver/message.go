package battleserver

import (
	"time"

	"github.com/kverkest/fray/internal/game/arena"
	"github.com/kverkest/fray/internal/game/encounter"
	"github.com/kverkest/fray/internal/game/outcome"
)

// Client message types. Each maps onto one encounter request.
const (
	MsgMove           = "move"
	MsgDash           = "dash"
	MsgChargeStart    = "charge_start"
	MsgChargeStop     = "charge_stop"
	MsgStrike         = "strike"
	MsgBeginSelect    = "begin_select"
	MsgSelectNext     = "select_next"
	MsgSelectPrevious = "select_previous"
	MsgConfirmTarget  = "confirm_target"
	MsgCancelSelect   = "cancel_select"
	MsgDisengage      = "disengage"
	MsgFlee           = "flee"
	MsgRecruit        = "recruit"
	MsgDialogue       = "dialogue"
)

// MsgState is the type of every outbound frame.
const MsgState = "state"

// ClientMessage is one inbound control message. X and Y carry the movement
// direction for MsgMove; Open carries the overlay state for MsgDialogue.
type ClientMessage struct {
	Type string  `json:"type"`
	X    float64 `json:"x,omitempty"`
	Y    float64 `json:"y,omitempty"`
	Open bool    `json:"open,omitempty"`
}

// ServerMessage is one outbound frame: the current snapshot plus the events
// accumulated since the previous frame.
type ServerMessage struct {
	Type     string             `json:"type"`
	Snapshot encounter.Snapshot `json:"snapshot"`
	Events   []EventView        `json:"events,omitempty"`
}

// EventView is the wire form of one presentation event. Identifier fields
// are always present; kind-specific fields are filled per kind.
type EventView struct {
	Kind     string           `json:"kind"`
	At       time.Time        `json:"at"`
	ActorID  int              `json:"actor_id"`
	TargetID int              `json:"target_id"`
	Damage   int              `json:"damage,omitempty"`
	Tier     string           `json:"tier,omitempty"`
	Mode     string           `json:"mode,omitempty"`
	From     string           `json:"from,omitempty"`
	To       string           `json:"to,omitempty"`
	Outcome  *outcome.Payload `json:"outcome,omitempty"`
}

// viewOfEvent converts an encounter event to its wire form.
func viewOfEvent(ev encounter.Event) EventView {
	v := EventView{
		Kind:     ev.Kind.String(),
		At:       ev.At,
		ActorID:  ev.ActorID,
		TargetID: ev.TargetID,
	}
	switch ev.Kind {
	case encounter.EventStrike:
		v.Damage = ev.Damage
		v.Tier = ev.Tier.String()
	case encounter.EventOpponentHit:
		v.Damage = ev.Damage
	case encounter.EventBehaviorChanged:
		v.From = ev.From.String()
		v.To = ev.To.String()
	case encounter.EventTargetingChanged:
		v.Mode = ev.Mode.String()
	case encounter.EventOutcome:
		v.Outcome = ev.Outcome
	}
	return v
}

// direction builds a movement vector from message coordinates.
func (m ClientMessage) direction() arena.Vec2 {
	return arena.Vec2{X: m.X, Y: m.Y}
}
