package net

import (
	"errors"
	"testing"
	"time"

	"dust-and-lead/server/internal/sim"
)

func TestJoinUnknownCharacterFails(t *testing.T) {
	h := newTestHub(t, HubConfig{})
	if _, err := h.Join("nobody", nil); err == nil {
		t.Fatalf("expected join with unknown character to fail")
	}
}

func TestJoinEnforcesCapacity(t *testing.T) {
	h := newTestHub(t, HubConfig{MaxSessions: 2})

	for i := 0; i < 2; i++ {
		if _, err := h.Join("drifter", nil); err != nil {
			t.Fatalf("join %d: %v", i, err)
		}
	}
	if _, err := h.Join("drifter", nil); !errors.Is(err, ErrSessionLimit) {
		t.Fatalf("err = %v, want ErrSessionLimit", err)
	}
}

func TestJoinAppliesLoadout(t *testing.T) {
	h := newTestHub(t, HubConfig{})
	if _, err := h.Join("drifter", []sim.ItemStack{{Key: "snake-oil", Stacks: 2}}); err != nil {
		t.Fatalf("join with loadout: %v", err)
	}
	if _, err := h.Join("drifter", []sim.ItemStack{{Key: "crystal-skull", Stacks: 1}}); err == nil {
		t.Fatalf("expected unknown item to reject the join")
	}
}

func TestSubscribeUnknownPlayer(t *testing.T) {
	h := newTestHub(t, HubConfig{})
	if _, err := h.Subscribe(999, nil); !errors.Is(err, ErrUnknownPlayer) {
		t.Fatalf("err = %v, want ErrUnknownPlayer", err)
	}
}

func TestSubscribeRejectsDuplicateSession(t *testing.T) {
	h := newTestHub(t, HubConfig{})
	join, err := h.Join("drifter", nil)
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	if _, err := h.Subscribe(join.ID, nil); err != nil {
		t.Fatalf("first subscribe: %v", err)
	}
	if _, err := h.Subscribe(join.ID, nil); !errors.Is(err, ErrDuplicateSession) {
		t.Fatalf("err = %v, want ErrDuplicateSession", err)
	}
}

func TestEnqueueInputDeduplicatesBySequence(t *testing.T) {
	h := newTestHub(t, HubConfig{})
	join, err := h.Join("drifter", nil)
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	sess, err := h.Subscribe(join.ID, nil)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	accepted, duplicate, _ := h.EnqueueInput(sess, sim.InputState{Sequence: 5, MoveX: 1})
	if !accepted || duplicate {
		t.Fatalf("fresh sequence: accepted=%v duplicate=%v", accepted, duplicate)
	}
	accepted, duplicate, _ = h.EnqueueInput(sess, sim.InputState{Sequence: 5})
	if accepted || !duplicate {
		t.Fatalf("repeat sequence: accepted=%v duplicate=%v", accepted, duplicate)
	}
	accepted, duplicate, _ = h.EnqueueInput(sess, sim.InputState{Sequence: 4})
	if accepted || !duplicate {
		t.Fatalf("stale sequence: accepted=%v duplicate=%v", accepted, duplicate)
	}
	accepted, duplicate, _ = h.EnqueueInput(sess, sim.InputState{Sequence: 6})
	if !accepted || duplicate {
		t.Fatalf("next sequence: accepted=%v duplicate=%v", accepted, duplicate)
	}
}

func TestStepAdvancesWorldAndAppliesInputs(t *testing.T) {
	h := newTestHub(t, HubConfig{})
	join, err := h.Join("drifter", nil)
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	sess, err := h.Subscribe(join.ID, nil)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	h.Heartbeat(sess, time.Now(), 0)

	if ok, _, _ := h.EnqueueInput(sess, sim.InputState{Sequence: 1, MoveX: 1}); !ok {
		t.Fatalf("enqueue rejected")
	}

	var before, after float64
	h.WithWorld(func(w *sim.World) {
		before = w.Positions.Get(w.PlayersOrdered()[0]).X
	})
	h.Step(time.Now(), sim.TickSeconds)
	h.WithWorld(func(w *sim.World) {
		if w.Tick() != 1 {
			t.Fatalf("tick = %d, want 1", w.Tick())
		}
		after = w.Positions.Get(w.PlayersOrdered()[0]).X
	})
	if after <= before {
		t.Fatalf("input did not move the player: %g -> %g", before, after)
	}
}

func TestDisconnectRemovesPlayerFromWorld(t *testing.T) {
	h := newTestHub(t, HubConfig{})
	join, err := h.Join("drifter", nil)
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	if _, err := h.Subscribe(join.ID, nil); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	h.Disconnect(join.ID)
	if h.SessionCount() != 0 {
		t.Fatalf("sessions = %d after disconnect, want 0", h.SessionCount())
	}
	h.WithWorld(func(w *sim.World) {
		if len(w.PlayersOrdered()) != 0 {
			t.Fatalf("player entity survived disconnect")
		}
	})
}

func TestRunDrivesTheTickLoop(t *testing.T) {
	h := newTestHub(t, HubConfig{})
	if _, err := h.Join("drifter", nil); err != nil {
		t.Fatalf("join: %v", err)
	}

	stop := make(chan struct{})
	go h.Run(stop)
	defer close(stop)

	deadline := time.Now().Add(2 * time.Second)
	for {
		var tick uint64
		h.WithWorld(func(w *sim.World) { tick = w.Tick() })
		if tick >= 2 {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("loop stalled at tick %d", tick)
		}
		time.Sleep(10 * time.Millisecond)
	}
}
