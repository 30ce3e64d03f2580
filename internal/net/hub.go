// Package net is the transport boundary around the simulation: the hub owns
// the authoritative world and its tick loop on the server side, and the
// client half (Client, ClockSync, Interpolator) implements prediction and
// reconciliation against the hub's snapshot stream.
package net

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"dust-and-lead/server/internal/ecs"
	"dust-and-lead/server/internal/net/proto"
	"dust-and-lead/server/internal/sim"
)

const (
	writeWait       = 10 * time.Second
	disconnectAfter = 15 * time.Second

	defaultMaxSessions  = 8
	defaultHUDInterval  = 15
	defaultPerPlayerCap = 8

	// catchupMaxTicks bounds how far a late tick stretches its measured delta
	// before the loop clamps it and reports the clamp.
	catchupMaxTicks = 4
)

// Session registration failures are configuration errors: they indicate a
// matchmaking bug, so they are raised loudly instead of being papered over.
var (
	ErrSessionLimit     = errors.New("net: session capacity exceeded")
	ErrDuplicateSession = errors.New("net: player already has a session")
	ErrUnknownPlayer    = errors.New("net: unknown player")
)

// HubConfig tunes the server-side session layer.
type HubConfig struct {
	MaxSessions    int
	HUDInterval    int
	PerPlayerInput int
	Logger         *log.Logger
}

// Session is one connected player's socket. Writes are serialized through the
// session mutex so the broadcast goroutine and the read loop never interleave
// frames.
type Session struct {
	player ecs.Entity
	conn   *websocket.Conn

	writeMu sync.Mutex

	mu            sync.Mutex
	lastSeq       uint64
	lastHeartbeat time.Time
	lastRTT       time.Duration
}

// Player returns the entity this session controls.
func (s *Session) Player() ecs.Entity { return s.player }

// WriteMessage sends one frame under the session write lock.
func (s *Session) WriteMessage(messageType int, data []byte) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if s.conn == nil {
		return nil
	}
	s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return s.conn.WriteMessage(messageType, data)
}

// LastSeq reports the newest input sequence accepted on this session.
func (s *Session) LastSeq() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeq
}

func (s *Session) storeSeq(seq uint64) {
	s.mu.Lock()
	if seq > s.lastSeq {
		s.lastSeq = seq
	}
	s.mu.Unlock()
}

// Hub owns the authoritative world, its tick loop, and every live session.
// All world access is serialized through the hub mutex; the tick goroutine
// and the per-connection read loops never touch the world concurrently.
type Hub struct {
	mu       sync.Mutex
	world    *sim.World
	loop     *sim.Loop
	sessions map[uint32]*Session
	cfg      HubConfig
	logger   *log.Logger
}

// NewHub wraps an already-constructed world and pipeline.
func NewHub(world *sim.World, pipeline *sim.Pipeline, cfg HubConfig) *Hub {
	if cfg.MaxSessions <= 0 {
		cfg.MaxSessions = defaultMaxSessions
	}
	if cfg.HUDInterval <= 0 {
		cfg.HUDInterval = defaultHUDInterval
	}
	if cfg.PerPlayerInput <= 0 {
		cfg.PerPlayerInput = defaultPerPlayerCap
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}
	h := &Hub{
		world:    world,
		sessions: make(map[uint32]*Session),
		cfg:      cfg,
		logger:   logger,
	}
	h.loop = sim.NewLoop(world, pipeline, sim.LoopConfig{
		TickRate:        sim.TickRate,
		CatchupMaxTicks: catchupMaxTicks,
		PerPlayerLimit:  cfg.PerPlayerInput,
		Locker:          &h.mu,
	}, sim.LoopHooks{
		AfterStep: h.broadcast,
		OnInputDrop: func(reason string, cmd sim.InputCommand) {
			logger.Printf("dropped input seq=%d player=%d: %s", cmd.Input.Sequence, cmd.Player.ID, reason)
		},
	})
	return h
}

// Join spawns a player into the world and returns everything the client
// needs to build its shadow world before opening the socket.
func (h *Hub) Join(characterKey string, loadout []sim.ItemStack) (proto.JoinResponse, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.world.PlayersOrdered()) >= h.cfg.MaxSessions {
		return proto.JoinResponse{}, ErrSessionLimit
	}
	player, err := h.world.SpawnPlayer(characterKey)
	if err != nil {
		return proto.JoinResponse{}, err
	}
	if len(loadout) > 0 {
		if err := h.world.ApplyLoadout(player, loadout); err != nil {
			h.world.DestroyEntity(player)
			return proto.JoinResponse{}, err
		}
	}

	return proto.JoinResponse{
		Ver:       proto.ProtocolVersion,
		ID:        player.ID,
		Character: characterKey,
		Seed:      h.world.Seed(),
		TickRate:  sim.TickRate,
		Obstacles: h.world.Obstacles(),
		State:     h.world.Snapshot(),
	}, nil
}

// Subscribe binds a websocket connection to a joined player. A duplicate
// registration or an unknown player is rejected outright.
func (h *Hub) Subscribe(playerID uint32, conn *websocket.Conn) (*Session, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	player := h.world.Registry().Handle(playerID)
	if player == ecs.None || !h.world.Players.Has(player) {
		return nil, ErrUnknownPlayer
	}
	if _, exists := h.sessions[playerID]; exists {
		return nil, ErrDuplicateSession
	}
	if len(h.sessions) >= h.cfg.MaxSessions {
		return nil, ErrSessionLimit
	}

	s := &Session{player: player, conn: conn, lastHeartbeat: time.Now()}
	h.sessions[playerID] = s
	return s, nil
}

// Disconnect tears a session down and removes its player from the world. The
// simulation keeps running for everyone else.
func (h *Hub) Disconnect(playerID uint32) {
	h.mu.Lock()
	s, ok := h.sessions[playerID]
	if ok {
		delete(h.sessions, playerID)
	}
	player := h.world.Registry().Handle(playerID)
	if player != ecs.None && h.world.Players.Has(player) {
		h.world.DestroyEntity(player)
	}
	h.loop.ForgetPlayer(playerID)
	h.mu.Unlock()

	if ok {
		if s.conn != nil {
			s.conn.Close()
		}
		h.logger.Printf("player %d disconnected", playerID)
	}
}

// EnqueueInput stages one input command for the next tick. Sequence numbers
// at or below the session's newest accepted one are treated as duplicates
// and acknowledged without re-staging.
func (h *Hub) EnqueueInput(s *Session, in sim.InputState) (accepted bool, duplicate bool, reason string) {
	if in.Sequence > 0 && in.Sequence <= s.LastSeq() {
		return false, true, ""
	}
	ok, why := h.loop.Enqueue(sim.InputCommand{Player: s.player, Input: in})
	if !ok {
		return false, false, why
	}
	s.storeSeq(in.Sequence)
	return true, false, ""
}

// Heartbeat records liveness and returns the measured round trip.
func (h *Hub) Heartbeat(s *Session, receivedAt time.Time, clientSent int64) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastHeartbeat = receivedAt
	if clientSent > 0 {
		if rtt := receivedAt.Sub(time.UnixMilli(clientSent)); rtt >= 0 && rtt < time.Minute {
			s.lastRTT = rtt
		}
	}
	return s.lastRTT
}

// CampReady signals the director that this lobby is done shopping.
func (h *Hub) CampReady() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if d := h.world.Director(); d != nil {
		d.SignalCampComplete()
	}
}

// DiagnosticsPlayer is one row of the diagnostics endpoint payload.
type DiagnosticsPlayer struct {
	ID            uint32 `json:"id"`
	LastHeartbeat int64  `json:"lastHeartbeat"`
	RTTMillis     int64  `json:"rtt"`
}

// DiagnosticsSnapshot exposes per-session liveness for operators.
func (h *Hub) DiagnosticsSnapshot() []DiagnosticsPlayer {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]DiagnosticsPlayer, 0, len(h.sessions))
	for id, s := range h.sessions {
		s.mu.Lock()
		out = append(out, DiagnosticsPlayer{
			ID:            id,
			LastHeartbeat: s.lastHeartbeat.UnixMilli(),
			RTTMillis:     s.lastRTT.Milliseconds(),
		})
		s.mu.Unlock()
	}
	return out
}

// Run drives the fixed tick loop until stop closes, broadcasting the
// resulting snapshot after every step.
func (h *Hub) Run(stop <-chan struct{}) {
	h.loop.Run(stop)
}

// Step advances the world one tick and broadcasts the result. Exposed so
// single-process hosts and tests can drive the hub without the ticker.
func (h *Hub) Step(now time.Time, dt float64) {
	h.mu.Lock()
	result := h.loop.Advance(now, dt)
	h.mu.Unlock()
	h.broadcast(result)
}

// broadcast fans one tick's result out to every session. Runs on the loop
// goroutine via the AfterStep hook, after the world lock is released.
func (h *Hub) broadcast(result sim.LoopStepResult) {
	if result.ClampedDelta {
		h.logger.Printf("tick %d clamped a %.3fs catch-up delta", result.Tick, result.Delta)
	} else if result.Budget > 0 && result.Duration > result.Budget {
		h.logger.Printf("tick %d ran %s against a %s budget", result.Tick, result.Duration, result.Budget)
	}

	now := result.Now
	h.mu.Lock()
	h.pruneStaleLocked(now)

	type outbound struct {
		session *Session
		state   []byte
		hud     []byte
	}
	sends := make([]outbound, 0, len(h.sessions))
	hudDue := h.cfg.HUDInterval > 0 && result.Tick%uint64(h.cfg.HUDInterval) == 0
	for id, s := range h.sessions {
		msg := proto.StateMessage{
			Ver:        proto.ProtocolVersion,
			Type:       proto.TypeState,
			ServerTime: now.UnixMilli(),
			Ack:        result.Acks[id],
			State:      result.Snapshot,
		}
		data, err := json.Marshal(msg)
		if err != nil {
			h.logger.Printf("failed to marshal state for %d: %v", id, err)
			continue
		}
		out := outbound{session: s, state: data}
		if hudDue {
			if hud, ok := h.world.HUD(s.player); ok {
				msg := proto.HUDMessage{Ver: proto.ProtocolVersion, Type: proto.TypeHUD, Tick: result.Tick, HUD: hud}
				if data, err := json.Marshal(msg); err == nil {
					out.hud = data
				}
			}
		}
		sends = append(sends, out)
	}
	h.mu.Unlock()

	for _, out := range sends {
		if err := out.session.WriteMessage(websocket.TextMessage, out.state); err != nil {
			h.Disconnect(out.session.player.ID)
			continue
		}
		if out.hud != nil {
			if err := out.session.WriteMessage(websocket.TextMessage, out.hud); err != nil {
				h.Disconnect(out.session.player.ID)
			}
		}
	}
}

// pruneStaleLocked drops sessions that stopped heartbeating.
func (h *Hub) pruneStaleLocked(now time.Time) {
	for id, s := range h.sessions {
		s.mu.Lock()
		stale := now.Sub(s.lastHeartbeat) > disconnectAfter
		s.mu.Unlock()
		if !stale {
			continue
		}
		delete(h.sessions, id)
		player := h.world.Registry().Handle(id)
		if player != ecs.None && h.world.Players.Has(player) {
			h.world.DestroyEntity(player)
		}
		h.loop.ForgetPlayer(id)
		if s.conn != nil {
			s.conn.Close()
		}
		h.logger.Printf("disconnecting %d: heartbeat timeout", id)
	}
}

// WithWorld runs fn against the authoritative world under the hub lock, for
// callers that need a one-off read outside the tick.
func (h *Hub) WithWorld(fn func(w *sim.World)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	fn(h.world)
}

// SessionCount reports the number of live sockets.
func (h *Hub) SessionCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.sessions)
}

func (h *Hub) String() string {
	return fmt.Sprintf("hub(sessions=%d)", h.SessionCount())
}
