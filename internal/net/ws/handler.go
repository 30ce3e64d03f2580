// Package ws upgrades HTTP requests into player sessions and runs their read
// loops against the hub.
package ws

import (
	"encoding/json"
	"errors"
	"log"
	nethttp "net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"

	hubnet "dust-and-lead/server/internal/net"
	"dust-and-lead/server/internal/net/proto"
	"dust-and-lead/server/internal/sim"
)

type HandlerConfig struct {
	Logger *log.Logger
}

// Handler upgrades connections and pumps client messages into the hub.
type Handler struct {
	hub      *hubnet.Hub
	logger   *log.Logger
	upgrader websocket.Upgrader
}

func NewHandler(hub *hubnet.Hub, cfg HandlerConfig) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Handler{
		hub:    hub,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *nethttp.Request) bool {
				return true
			},
		},
	}
}

// Handle is the /ws endpoint. The client must have joined over HTTP first
// and passes its player ID as a query parameter.
func (h *Handler) Handle(w nethttp.ResponseWriter, r *nethttp.Request) {
	rawID := r.URL.Query().Get("id")
	playerID, err := strconv.ParseUint(rawID, 10, 32)
	if err != nil {
		nethttp.Error(w, "missing or malformed id", nethttp.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Printf("upgrade failed for %s: %v", rawID, err)
		return
	}

	sess, err := h.hub.Subscribe(uint32(playerID), conn)
	if err != nil {
		reason := "unknown player"
		if errors.Is(err, hubnet.ErrDuplicateSession) {
			reason = "duplicate session"
		} else if errors.Is(err, hubnet.ErrSessionLimit) {
			reason = "server full"
		}
		conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.ClosePolicyViolation, reason))
		conn.Close()
		return
	}

	h.serve(uint32(playerID), sess, conn)
}

func (h *Handler) serve(playerID uint32, sess *hubnet.Session, conn *websocket.Conn) {
	writeJSON := func(payload any) bool {
		data, err := json.Marshal(payload)
		if err != nil {
			h.logger.Printf("failed to marshal response for %d: %v", playerID, err)
			return true
		}
		if err := sess.WriteMessage(websocket.TextMessage, data); err != nil {
			h.hub.Disconnect(playerID)
			return false
		}
		return true
	}

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			h.hub.Disconnect(playerID)
			return
		}

		var msg proto.ClientMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			h.logger.Printf("discarding malformed message from %d: %v", playerID, err)
			continue
		}

		switch msg.Type {
		case proto.TypeInput:
			accepted, duplicate, reason := h.hub.EnqueueInput(sess, msg.Input())
			if msg.Seq == 0 {
				continue
			}
			if accepted || duplicate {
				ack := proto.InputAckMessage{Ver: proto.ProtocolVersion, Type: proto.TypeInputAck, Seq: msg.Seq}
				if !writeJSON(ack) {
					return
				}
				continue
			}
			reject := proto.InputRejectMessage{
				Ver:    proto.ProtocolVersion,
				Type:   proto.TypeInputReject,
				Seq:    msg.Seq,
				Reason: reason,
				Retry:  reason == sim.InputRejectQueueLimit || reason == sim.InputRejectQueueFull,
			}
			if !writeJSON(reject) {
				return
			}
		case proto.TypeHeartbeat:
			now := time.Now()
			rtt := h.hub.Heartbeat(sess, now, msg.SentAt)
			echo := proto.HeartbeatMessage{
				Ver:        proto.ProtocolVersion,
				Type:       proto.TypeHeartbeat,
				ServerTime: now.UnixMilli(),
				ClientTime: msg.SentAt,
				RTTMillis:  rtt.Milliseconds(),
			}
			if !writeJSON(echo) {
				return
			}
		case proto.TypeCampReady:
			h.hub.CampReady()
		default:
			h.logger.Printf("unknown message type %q from %d", msg.Type, playerID)
		}
	}
}
