package battleserver

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/kverkest/fray/internal/config"
	"github.com/kverkest/fray/internal/game/encounter"
	"github.com/kverkest/fray/internal/game/outcome"
	"github.com/kverkest/fray/internal/game/roster"
)

// defaultOpponentCount caps the spawn list when the client does not name
// opponents explicitly.
const defaultOpponentCount = 3

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Policies bundles the outcome policies handed to every encounter. Nil fields
// fall back to the engine defaults; script-backed policies plug in here.
type Policies struct {
	Reward  outcome.RewardPolicy
	Recruit outcome.RecruitPolicy
	Flee    outcome.FleePolicy
}

// Server accepts WebSocket connections on /ws and runs one encounter per
// connection, all advanced by a shared tick loop.
type Server struct {
	cfg      config.ServerConfig
	content  *Content
	policies Policies
	logger   *zap.Logger

	ticks *TickManager
	rules encounter.Rules
	mode  encounter.Mode

	mu         sync.Mutex
	sessions   map[uuid.UUID]*Session
	listener   net.Listener
	httpServer *http.Server
	cancel     context.CancelFunc
	running    bool
}

// New builds the battle server from validated configuration and content.
//
// Precondition: content must have passed Validate; logger must be non-nil.
func New(cfg config.Config, content *Content, policies Policies, logger *zap.Logger) (*Server, error) {
	mode, err := modeFromConfig(cfg.Battle.Mode)
	if err != nil {
		return nil, err
	}
	return &Server{
		cfg:      cfg.Server,
		content:  content,
		policies: policies,
		logger:   logger,
		ticks:    NewTickManager(cfg.Server.TickInterval),
		rules:    rulesFromConfig(cfg.Battle),
		mode:     mode,
		sessions: make(map[uuid.UUID]*Session),
	}, nil
}

// ListenAndServe starts the HTTP listener and the shared tick loop.
// This method blocks until Stop is called.
//
// Precondition: The server must not already be running.
// Postcondition: The listener is closed when this method returns.
func (s *Server) ListenAndServe() error {
	start := time.Now()

	listener, err := net.Listen("tcp", s.cfg.Addr())
	if err != nil {
		return fmt.Errorf("battleserver: listening on %s: %w", s.cfg.Addr(), err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWS)
	mux.HandleFunc("/healthz", s.handleHealth)

	ctx, cancel := context.WithCancel(context.Background())
	httpServer := &http.Server{Handler: mux}

	s.mu.Lock()
	s.listener = listener
	s.httpServer = httpServer
	s.cancel = cancel
	s.running = true
	s.mu.Unlock()

	s.ticks.Start(ctx)

	s.logger.Info("battle server listening",
		zap.String("addr", listener.Addr().String()),
		zap.Duration("tick_interval", s.cfg.TickInterval),
		zap.Duration("startup", time.Since(start)),
	)

	if err := httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("battleserver: %w", err)
	}
	return nil
}

// Stop gracefully stops the server: the listener closes, the tick loop
// exits, and every live session is shut down.
//
// Postcondition: no session produces further frames.
func (s *Server) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	httpServer := s.httpServer
	cancel := s.cancel
	sessions := make([]*Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		sessions = append(sessions, sess)
	}
	s.mu.Unlock()

	cancel()
	for _, sess := range sessions {
		s.ticks.Unregister(sess.ID)
		sess.shutdown()
	}
	if httpServer != nil {
		ctx, cancelTimeout := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancelTimeout()
		if err := httpServer.Shutdown(ctx); err != nil {
			s.logger.Warn("http shutdown", zap.Error(err))
		}
	}
	s.logger.Info("battle server stopped")
}

// Addr returns the actual listening address, or empty string if not yet
// listening.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return ""
}

// SessionCount returns the number of live encounter sessions.
func (s *Server) SessionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

// handleWS starts one encounter per connection. The encounter is assembled
// from query parameters before the upgrade so a bad request still gets a
// plain HTTP error.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	enc, err := s.newEncounter(r)
	if err != nil {
		s.logger.Warn("rejecting encounter request",
			zap.String("remote_addr", r.RemoteAddr),
			zap.Error(err),
		)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", zap.Error(err))
		return
	}

	sess := newSession(conn, enc, s.logger)
	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()
	s.ticks.Register(sess.ID, sess.tick)

	s.logger.Info("encounter started",
		zap.String("encounter_id", sess.ID.String()),
		zap.String("mode", enc.Mode().String()),
		zap.Int("opponents", len(enc.Roster().LivingOpponents())),
		zap.String("remote_addr", r.RemoteAddr),
	)

	go sess.writePump()
	sess.readPump(s.dropSession)
}

// newEncounter assembles an encounter from the request query:
//
//	mode=turns            override the configured opponent-action mode
//	arena=forest-clearing pick a battlefield by id
//	opponents=a,b,c       spawn these templates, in order
//	return=<context>      echoed in the outcome payload
func (s *Server) newEncounter(r *http.Request) (*encounter.Encounter, error) {
	q := r.URL.Query()

	mode := s.mode
	if v := q.Get("mode"); v != "" {
		m, err := modeFromConfig(v)
		if err != nil {
			return nil, err
		}
		mode = m
	}

	battlefield := s.content.Arenas[0]
	if v := q.Get("arena"); v != "" {
		found := false
		for _, a := range s.content.Arenas {
			if a.ID == v {
				battlefield = a
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("battleserver: unknown arena %q", v)
		}
	}

	var opponents []*roster.Template
	if v := q.Get("opponents"); v != "" {
		for _, id := range strings.Split(v, ",") {
			id = strings.TrimSpace(id)
			if id == "" {
				continue
			}
			tmpl, ok := s.content.Template(id)
			if !ok {
				return nil, fmt.Errorf("battleserver: unknown opponent template %q", id)
			}
			opponents = append(opponents, tmpl)
		}
	}
	if len(opponents) == 0 {
		n := len(s.content.Templates)
		if n > defaultOpponentCount {
			n = defaultOpponentCount
		}
		opponents = s.content.Templates[:n]
	}

	returnContext := q.Get("return")
	if returnContext == "" {
		returnContext = "overworld"
	}

	return encounter.New(encounter.Config{
		Mode:          mode,
		Arena:         battlefield,
		Party:         *s.content.Party,
		Opponents:     opponents,
		Profiles:      s.content.Profiles,
		Archetypes:    s.content.Archetypes,
		Rules:         s.rules,
		ReturnContext: returnContext,
		Reward:        s.policies.Reward,
		Recruit:       s.policies.Recruit,
		Flee:          s.policies.Flee,
	}, time.Now())
}

// dropSession tears a session down after its read pump exits.
func (s *Server) dropSession(sess *Session) {
	s.ticks.Unregister(sess.ID)
	s.mu.Lock()
	delete(s.sessions, sess.ID)
	s.mu.Unlock()
	sess.shutdown()
	s.logger.Info("encounter session closed",
		zap.String("encounter_id", sess.ID.String()),
	)
}
