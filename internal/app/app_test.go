package app

import (
	"io"
	"log"
	"testing"
	"time"

	"dust-and-lead/server/internal/sim"
	"dust-and-lead/server/logging"
)

// Drives the hub exactly as Run wires it. Players join, the director's first
// wave spawns, and combat systems actually execute; a hub assembled without
// the gameplay pipeline would leave the arena empty forever.
func TestServerWiringRunsFullSimulation(t *testing.T) {
	hub, err := newHub("app-test", logging.NopPublisher(), log.New(io.Discard, "", 0))
	if err != nil {
		t.Fatalf("newHub: %v", err)
	}
	join, err := hub.Join("drifter", nil)
	if err != nil {
		t.Fatalf("Join: %v", err)
	}
	if join.TickRate != sim.TickRate {
		t.Fatalf("join tick rate = %d, want %d", join.TickRate, sim.TickRate)
	}

	now := time.Now()
	for i := 0; i < 300; i++ {
		now = now.Add(time.Second / sim.TickRate)
		hub.Step(now, sim.TickSeconds)
	}

	var tick uint64
	var enemies int
	hub.WithWorld(func(w *sim.World) {
		tick = w.Tick()
		enemies = len(w.Snapshot().Enemies)
	})
	if tick != 300 {
		t.Fatalf("tick = %d, want 300", tick)
	}
	if enemies == 0 {
		t.Fatal("expected the director to have spawned enemies by tick 300")
	}
}
