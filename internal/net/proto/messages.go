// Package proto defines the JSON wire contract between the arena server and
// its clients. Every message carries a protocol version so mismatched builds
// are detected at the first frame rather than by silent decode drift.
package proto

import "dust-and-lead/server/internal/sim"

// ProtocolVersion is bumped whenever a message shape changes incompatibly.
const ProtocolVersion = 1

// Client-to-server message types.
const (
	TypeInput     = "input"
	TypeHeartbeat = "heartbeat"
	TypeCampReady = "campReady"
)

// Server-to-client message types.
const (
	TypeState       = "state"
	TypeHUD         = "hud"
	TypeInputAck    = "inputAck"
	TypeInputReject = "inputReject"
)

// ClientMessage is the envelope for everything a client sends over the
// socket. Fields are a union across message types; Type selects which are
// meaningful.
type ClientMessage struct {
	Ver     int     `json:"ver,omitempty"`
	Type    string  `json:"type"`
	Seq     uint64  `json:"seq,omitempty"`
	MoveX   float64 `json:"moveX"`
	MoveY   float64 `json:"moveY"`
	Aim     float64 `json:"aim"`
	CursorX float64 `json:"cursorX"`
	CursorY float64 `json:"cursorY"`
	Buttons uint8   `json:"buttons"`
	SentAt  int64   `json:"sentAt,omitempty"`
}

// Input converts an input-typed client message into the simulation's staged
// input form.
func (m ClientMessage) Input() sim.InputState {
	return sim.InputState{
		Sequence: m.Seq,
		MoveX:    m.MoveX,
		MoveY:    m.MoveY,
		Aim:      m.Aim,
		CursorX:  m.CursorX,
		CursorY:  m.CursorY,
		Buttons:  m.Buttons,
	}
}

// StateMessage is the authoritative snapshot stream. Ack is per-recipient:
// the highest input sequence the server has applied for that player.
type StateMessage struct {
	Ver        int          `json:"ver"`
	Type       string       `json:"type"`
	ServerTime int64        `json:"serverTime"`
	Ack        uint64       `json:"ack"`
	State      sim.Snapshot `json:"state"`
}

// HUDMessage is the periodic status summary for the recipient's own player.
type HUDMessage struct {
	Ver  int           `json:"ver"`
	Type string        `json:"type"`
	Tick uint64        `json:"tick"`
	HUD  sim.HUDRecord `json:"hud"`
}

// InputAckMessage confirms a staged input command.
type InputAckMessage struct {
	Ver  int    `json:"ver"`
	Type string `json:"type"`
	Seq  uint64 `json:"seq"`
}

// InputRejectMessage reports a dropped input. Retry is set when the drop was
// transient (queue pressure) rather than a protocol fault.
type InputRejectMessage struct {
	Ver    int    `json:"ver"`
	Type   string `json:"type"`
	Seq    uint64 `json:"seq"`
	Reason string `json:"reason"`
	Retry  bool   `json:"retry,omitempty"`
}

// HeartbeatMessage is the ping/pong pair used for clock-offset convergence.
// The client stamps ClientTime on send; the server echoes it alongside its
// own clock and the measured round trip.
type HeartbeatMessage struct {
	Ver        int    `json:"ver"`
	Type       string `json:"type"`
	ServerTime int64  `json:"serverTime"`
	ClientTime int64  `json:"clientTime"`
	RTTMillis  int64  `json:"rtt"`
}

// JoinResponse is returned from the HTTP join endpoint before the socket is
// opened. Seed lets the client build a shadow world with identical terrain.
type JoinResponse struct {
	Ver       int            `json:"ver"`
	ID        uint32         `json:"id"`
	Character string         `json:"character"`
	Seed      string         `json:"seed"`
	TickRate  int            `json:"tickRate"`
	Obstacles []sim.Obstacle `json:"obstacles"`
	State     sim.Snapshot   `json:"state"`
}
