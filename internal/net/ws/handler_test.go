package ws

import (
	"encoding/json"
	nethttp "net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"dust-and-lead/server/internal/content"
	hubnet "dust-and-lead/server/internal/net"
	"dust-and-lead/server/internal/net/proto"
	"dust-and-lead/server/internal/sim"
	"dust-and-lead/server/logging"
	"dust-and-lead/server/stats"
)

func testCatalog() *content.Catalog {
	return &content.Catalog{
		Characters: map[string]content.CharacterDef{
			"drifter": {
				Key:       "drifter",
				MaxHealth: 100,
				MoveSpeed: 200,
				Radius:    14,
				RollTicks: 12, RollSpeed: 400, RollCooldown: 30,
				IFrameTicks: 10,
				Weapon: content.WeaponDef{
					CylinderSize: 6, ReloadTicks: 30, CooldownTicks: 8,
					Damage: 10, BulletSpeed: 600, BulletRange: 500, Pellets: 1,
				},
			},
		},
		Items: map[string]content.ItemDef{
			"snake-oil": {
				Key: "snake-oil", Trigger: content.TriggerHit, Op: content.OpDamageAdd,
				Formula: stats.Formula{Kind: stats.FormulaLinear, Base: 2, Scale: 2},
			},
		},
	}
}

func wsMux(h *Handler) *nethttp.ServeMux {
	mux := nethttp.NewServeMux()
	mux.HandleFunc("/ws", h.Handle)
	return mux
}

func dialSession(t *testing.T) (*hubnet.Hub, *websocket.Conn, uint32, func()) {
	t.Helper()
	world, err := sim.NewWorld(sim.Config{Seed: "ws-test"}, testCatalog(), logging.NopPublisher())
	if err != nil {
		t.Fatalf("NewWorld: %v", err)
	}
	hub := hubnet.NewHub(world, sim.NewPipeline(), hubnet.HubConfig{})
	join, err := hub.Join("drifter", nil)
	if err != nil {
		t.Fatalf("join: %v", err)
	}

	server := httptest.NewServer(wsMux(NewHandler(hub, HandlerConfig{})))
	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws?id=" + strconv.FormatUint(uint64(join.ID), 10)
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		server.Close()
		t.Fatalf("dial: %v", err)
	}
	cleanup := func() {
		conn.Close()
		server.Close()
	}
	return hub, conn, join.ID, cleanup
}

func readMessage(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, payload, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var msg map[string]any
	if err := json.Unmarshal(payload, &msg); err != nil {
		t.Fatalf("unmarshal %q: %v", payload, err)
	}
	return msg
}

func TestInputMessageIsAcknowledged(t *testing.T) {
	_, conn, _, cleanup := dialSession(t)
	defer cleanup()

	in := proto.ClientMessage{Ver: proto.ProtocolVersion, Type: proto.TypeInput, Seq: 1, MoveX: 1}
	if err := conn.WriteJSON(in); err != nil {
		t.Fatalf("write input: %v", err)
	}

	msg := readMessage(t, conn)
	if msg["type"] != proto.TypeInputAck || msg["seq"] != float64(1) {
		t.Fatalf("unexpected reply: %v", msg)
	}
}

func TestDuplicateInputStillAcknowledged(t *testing.T) {
	_, conn, _, cleanup := dialSession(t)
	defer cleanup()

	in := proto.ClientMessage{Ver: proto.ProtocolVersion, Type: proto.TypeInput, Seq: 3, MoveX: 1}
	for i := 0; i < 2; i++ {
		if err := conn.WriteJSON(in); err != nil {
			t.Fatalf("write input %d: %v", i, err)
		}
		msg := readMessage(t, conn)
		if msg["type"] != proto.TypeInputAck || msg["seq"] != float64(3) {
			t.Fatalf("reply %d: %v", i, msg)
		}
	}
}

func TestHeartbeatEchoesClientTime(t *testing.T) {
	_, conn, _, cleanup := dialSession(t)
	defer cleanup()

	sent := time.Now().UnixMilli()
	hb := proto.ClientMessage{Ver: proto.ProtocolVersion, Type: proto.TypeHeartbeat, SentAt: sent}
	if err := conn.WriteJSON(hb); err != nil {
		t.Fatalf("write heartbeat: %v", err)
	}

	msg := readMessage(t, conn)
	if msg["type"] != proto.TypeHeartbeat {
		t.Fatalf("unexpected reply: %v", msg)
	}
	if int64(msg["clientTime"].(float64)) != sent {
		t.Fatalf("clientTime = %v, want %d", msg["clientTime"], sent)
	}
}

func TestUnknownPlayerIsRefused(t *testing.T) {
	world, err := sim.NewWorld(sim.Config{Seed: "ws-test"}, testCatalog(), logging.NopPublisher())
	if err != nil {
		t.Fatalf("NewWorld: %v", err)
	}
	hub := hubnet.NewHub(world, sim.NewPipeline(), hubnet.HubConfig{})
	server := httptest.NewServer(wsMux(NewHandler(hub, HandlerConfig{})))
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws?id=42"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return
	}
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Fatalf("expected close for unknown player")
	}
}
