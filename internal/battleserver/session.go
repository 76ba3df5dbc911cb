package battleserver

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/kverkest/fray/internal/game/encounter"
)

// Session binds one WebSocket connection to one live encounter. The shared
// tick loop advances the encounter and pushes a state frame; the read pump
// applies client control messages. Both paths serialize on the session mutex,
// which is the only lock the encounter is ever touched under.
type Session struct {
	ID uuid.UUID

	conn *websocket.Conn
	send chan []byte

	mu     sync.Mutex
	enc    *encounter.Encounter
	closed bool
	done   bool

	logger *zap.Logger
}

func newSession(conn *websocket.Conn, enc *encounter.Encounter, logger *zap.Logger) *Session {
	return &Session{
		ID:     enc.ID(),
		conn:   conn,
		send:   make(chan []byte, 256),
		enc:    enc,
		logger: logger.With(zap.String("encounter_id", enc.ID().String())),
	}
}

// tick advances the encounter one step and enqueues a state frame. Invoked
// from the shared tick loop; never blocks.
//
// Postcondition: after the frame carrying a terminal outcome, no further
// frames are produced.
func (s *Session) tick(now time.Time) {
	s.mu.Lock()
	if s.closed || s.done {
		s.mu.Unlock()
		return
	}
	s.enc.Tick(now)
	events := s.enc.DrainEvents()
	snap := s.enc.Snapshot()
	if s.enc.Terminal() != nil {
		s.done = true
	}
	s.mu.Unlock()

	views := make([]EventView, 0, len(events))
	for _, ev := range events {
		views = append(views, viewOfEvent(ev))
	}
	frame, err := json.Marshal(ServerMessage{Type: MsgState, Snapshot: snap, Events: views})
	if err != nil {
		s.logger.Error("failed to marshal state frame", zap.Error(err))
		return
	}
	s.push(frame)
}

// handle applies one client control message to the encounter. Requests
// against a resolved encounter are discarded by the encounter itself.
func (s *Session) handle(msg ClientMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	switch msg.Type {
	case MsgMove:
		s.enc.RequestMove(msg.direction())
	case MsgDash:
		s.enc.RequestDash()
	case MsgChargeStart:
		s.enc.RequestChargeStart()
	case MsgChargeStop:
		s.enc.RequestChargeStop()
	case MsgStrike:
		s.enc.RequestStrike()
	case MsgBeginSelect:
		s.enc.RequestBeginSelect()
	case MsgSelectNext:
		s.enc.RequestSelectNext()
	case MsgSelectPrevious:
		s.enc.RequestSelectPrevious()
	case MsgConfirmTarget:
		s.enc.RequestConfirmTarget()
	case MsgCancelSelect:
		s.enc.RequestCancelSelect()
	case MsgDisengage:
		s.enc.RequestDisengage()
	case MsgFlee:
		s.enc.RequestFlee()
	case MsgRecruit:
		s.enc.RequestRecruit()
	case MsgDialogue:
		s.enc.SetDialogueOpen(msg.Open)
	default:
		s.logger.Debug("discarding unknown message type", zap.String("type", msg.Type))
	}
}

// push enqueues a frame without blocking. A full buffer means the client has
// stopped consuming; the frame is dropped and the next tick supersedes it.
func (s *Session) push(frame []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	select {
	case s.send <- frame:
	default:
		s.logger.Warn("send buffer full, dropping frame")
	}
}

// shutdown marks the session closed and releases the write pump. Safe to call
// more than once.
func (s *Session) shutdown() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()
	close(s.send)
}

func (s *Session) writePump() {
	defer s.conn.Close()
	for frame := range s.send {
		if err := s.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
			return
		}
	}
	s.conn.WriteMessage(websocket.CloseMessage, []byte{})
}

// readPump consumes control messages until the connection drops. Runs on the
// handler goroutine; onClose fires exactly once on exit.
func (s *Session) readPump(onClose func(*Session)) {
	defer func() {
		onClose(s)
		s.conn.Close()
	}()
	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			return
		}
		var msg ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			s.logger.Debug("discarding malformed client message", zap.Error(err))
			continue
		}
		s.handle(msg)
	}
}
