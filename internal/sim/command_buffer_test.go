package sim

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"dust-and-lead/server/internal/ecs"
)

func TestInputBufferWraparound(t *testing.T) {
	buffer := NewInputBuffer(3)
	cmds := []InputCommand{
		{Player: ecs.Entity{ID: 1}},
		{Player: ecs.Entity{ID: 2}},
		{Player: ecs.Entity{ID: 3}},
	}
	for _, cmd := range cmds {
		if !buffer.Push(cmd) {
			t.Fatalf("expected push to succeed for %+v", cmd)
		}
	}
	if buffer.Push(InputCommand{Player: ecs.Entity{ID: 9}}) {
		t.Fatalf("expected push to fail when buffer full")
	}
	drained := buffer.Drain()
	if len(drained) != len(cmds) {
		t.Fatalf("expected %d commands, got %d", len(cmds), len(drained))
	}
	for i, cmd := range drained {
		if cmd.Player != cmds[i].Player {
			t.Fatalf("expected drain order %v, got %v", cmds[i].Player, cmd.Player)
		}
	}
	// Push again to ensure the indices wrap correctly.
	for _, cmd := range []InputCommand{{Player: ecs.Entity{ID: 4}}, {Player: ecs.Entity{ID: 5}}} {
		if !buffer.Push(cmd) {
			t.Fatalf("expected push to succeed after drain for %+v", cmd)
		}
	}
	wrapped := buffer.Drain()
	if len(wrapped) != 2 {
		t.Fatalf("expected 2 commands after wraparound, got %d", len(wrapped))
	}
	if wrapped[0].Player.ID != 4 || wrapped[1].Player.ID != 5 {
		t.Fatalf("unexpected order after wraparound: %+v", wrapped)
	}
}

func TestInputBufferOverflow(t *testing.T) {
	buffer := NewInputBuffer(1)
	if !buffer.Push(InputCommand{Player: ecs.Entity{ID: 1}}) {
		t.Fatalf("expected initial push to succeed")
	}
	if buffer.Push(InputCommand{Player: ecs.Entity{ID: 2}}) {
		t.Fatalf("expected push to fail when capacity exceeded")
	}
	drained := buffer.Drain()
	if len(drained) != 1 || drained[0].Player.ID != 1 {
		t.Fatalf("unexpected drained commands: %+v", drained)
	}
}

func TestLoopEnqueueThrottlesPerPlayer(t *testing.T) {
	w := newTestWorld(t)
	loop := NewLoop(w, NewGameplayPipeline(), LoopConfig{InputCapacity: 8, PerPlayerLimit: 2}, LoopHooks{})
	player := ecs.Entity{ID: 1}

	for i := 0; i < 2; i++ {
		if ok, _ := loop.Enqueue(InputCommand{Player: player}); !ok {
			t.Fatalf("expected enqueue %d to succeed", i)
		}
	}
	ok, reason := loop.Enqueue(InputCommand{Player: player})
	if ok || reason != InputRejectQueueLimit {
		t.Fatalf("expected per-player limit rejection, got ok=%v reason=%q", ok, reason)
	}
	if got := loop.Pending(); got != 2 {
		t.Fatalf("expected 2 pending inputs, got %d", got)
	}
}

type countingLocker struct {
	mu    sync.Mutex
	locks atomic.Int32
}

func (l *countingLocker) Lock() {
	l.mu.Lock()
	l.locks.Add(1)
}

func (l *countingLocker) Unlock() {
	l.mu.Unlock()
}

func TestLoopRunReportsTickTelemetry(t *testing.T) {
	w := newTestWorld(t)
	results := make(chan LoopStepResult, 1)
	locker := &countingLocker{}
	loop := NewLoop(w, NewGameplayPipeline(), LoopConfig{
		TickRate:        120,
		CatchupMaxTicks: 4,
		Locker:          locker,
	}, LoopHooks{
		AfterStep: func(r LoopStepResult) {
			select {
			case results <- r:
			default:
			}
		},
	})

	stop := make(chan struct{})
	go loop.Run(stop)
	defer close(stop)

	select {
	case r := <-results:
		if r.Tick == 0 {
			t.Fatal("expected the runner to advance the world")
		}
		if r.Budget <= 0 {
			t.Fatalf("budget not populated: %v", r.Budget)
		}
		if r.Duration < 0 {
			t.Fatalf("negative step duration: %v", r.Duration)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("runner never ticked")
	}
	if locker.locks.Load() == 0 {
		t.Fatal("expected the runner to hold the configured locker")
	}
}
