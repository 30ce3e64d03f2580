package sim

import (
	"sync"
	"time"

	"dust-and-lead/server/internal/ecs"
	"dust-and-lead/server/logging"
)

const (
	// InputRejectQueueLimit indicates an input was dropped due to per-player
	// queue throttling.
	InputRejectQueueLimit = "queue_limit"
	// InputRejectQueueFull indicates the global input buffer is saturated.
	InputRejectQueueFull = "queue_full"
)

// LoopConfig tunes input buffering and the fixed-timestep runner.
type LoopConfig struct {
	TickRate        int
	CatchupMaxTicks int
	InputCapacity   int
	PerPlayerLimit  int
	// Locker, when set, is held across every Advance that Run makes, so a
	// host can serialize its own world access against the tick goroutine.
	Locker sync.Locker
}

// LoopStepResult is handed to the AfterStep hook after every tick.
type LoopStepResult struct {
	Tick         uint64
	Now          time.Time
	Delta        float64
	Duration     time.Duration
	Budget       time.Duration
	ClampedDelta bool
	Snapshot     Snapshot
	// Acks carries, per player entity ID, the highest input sequence the
	// world has applied up to and including this tick.
	Acks map[uint32]uint64
}

// LoopHooks lets the transport layer observe the loop without owning it.
type LoopHooks struct {
	AfterStep   func(LoopStepResult)
	OnInputDrop func(reason string, cmd InputCommand)
}

// Loop drives a world and its pipeline at a fixed tick rate, applying staged
// inputs at the top of each step. Producers enqueue from any goroutine; the
// loop goroutine is the only one touching the world.
type Loop struct {
	world    *World
	pipeline *Pipeline
	buffer   *InputBuffer
	hooks    LoopHooks
	config   LoopConfig
	clock    logging.Clock

	queueMu        sync.Mutex
	perPlayerCount map[ecs.Entity]int
	lastApplied    map[uint32]uint64
}

// NewLoop wraps a world and pipeline with an input queue and runner.
func NewLoop(world *World, pipeline *Pipeline, cfg LoopConfig, hooks LoopHooks) *Loop {
	if world == nil || pipeline == nil {
		return nil
	}
	if cfg.TickRate <= 0 {
		cfg.TickRate = TickRate
	}
	if cfg.InputCapacity <= 0 {
		cfg.InputCapacity = 256
	}
	return &Loop{
		world:          world,
		pipeline:       pipeline,
		buffer:         NewInputBuffer(cfg.InputCapacity),
		hooks:          hooks,
		config:         cfg,
		clock:          logging.SystemClock{},
		perPlayerCount: make(map[ecs.Entity]int),
		lastApplied:    make(map[uint32]uint64),
	}
}

// Pending reports the number of staged inputs.
func (l *Loop) Pending() int {
	if l == nil {
		return 0
	}
	return l.buffer.Len()
}

// Enqueue stages an input, enforcing per-player throttling and capacity.
func (l *Loop) Enqueue(cmd InputCommand) (bool, string) {
	if l == nil {
		return false, InputRejectQueueFull
	}
	reason := ""
	l.queueMu.Lock()
	if l.config.PerPlayerLimit > 0 {
		count := l.perPlayerCount[cmd.Player]
		if count >= l.config.PerPlayerLimit {
			reason = InputRejectQueueLimit
		} else {
			l.perPlayerCount[cmd.Player] = count + 1
		}
	}
	if reason == "" && !l.buffer.Push(cmd) {
		reason = InputRejectQueueFull
	}
	l.queueMu.Unlock()

	if reason != "" {
		if l.hooks.OnInputDrop != nil {
			l.hooks.OnInputDrop(reason, cmd)
		}
		return false, reason
	}
	return true, ""
}

// Advance executes a single simulation step using the staged inputs. The
// pipeline always receives the fixed tick dt; the measured wall delta only
// rides along for telemetry, so a slow host never changes the simulation.
func (l *Loop) Advance(now time.Time, measured float64) LoopStepResult {
	if l == nil {
		return LoopStepResult{}
	}
	for _, cmd := range l.drainInputs() {
		l.world.SetInput(cmd.Player, cmd.Input)
		if seq := cmd.Input.Sequence; seq > l.lastApplied[cmd.Player.ID] {
			l.lastApplied[cmd.Player.ID] = seq
		}
	}
	l.pipeline.Step(l.world, TickSeconds)
	acks := make(map[uint32]uint64, len(l.lastApplied))
	for id, seq := range l.lastApplied {
		acks[id] = seq
	}
	return LoopStepResult{
		Tick:     l.world.Tick(),
		Now:      now,
		Delta:    measured,
		Snapshot: l.world.Snapshot(),
		Acks:     acks,
	}
}

// ForgetPlayer drops ack bookkeeping for a departed player.
func (l *Loop) ForgetPlayer(id uint32) {
	if l == nil {
		return
	}
	delete(l.lastApplied, id)
}

// Run drives the fixed-timestep loop until the stop channel closes.
func (l *Loop) Run(stop <-chan struct{}) {
	if l == nil {
		return
	}
	ticker := time.NewTicker(time.Second / time.Duration(l.config.TickRate))
	defer ticker.Stop()

	last := l.clock.Now()
	budgetSeconds := 1.0 / float64(l.config.TickRate)
	maxDt := budgetSeconds
	if l.config.CatchupMaxTicks > 1 {
		maxDt = budgetSeconds * float64(l.config.CatchupMaxTicks)
	}
	budgetDuration := time.Second / time.Duration(l.config.TickRate)

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			now := l.clock.Now()
			dt := now.Sub(last).Seconds()
			clamped := false
			if dt <= 0 {
				dt = budgetSeconds
			} else if dt > maxDt {
				dt = maxDt
				clamped = true
			}
			last = now

			start := l.clock.Now()
			if l.config.Locker != nil {
				l.config.Locker.Lock()
			}
			result := l.Advance(now, dt)
			if l.config.Locker != nil {
				l.config.Locker.Unlock()
			}
			result.Duration = l.clock.Now().Sub(start)
			result.Budget = budgetDuration
			result.ClampedDelta = clamped

			if l.hooks.AfterStep != nil {
				l.hooks.AfterStep(result)
			}
		}
	}
}

func (l *Loop) drainInputs() []InputCommand {
	l.queueMu.Lock()
	defer l.queueMu.Unlock()
	commands := l.buffer.Drain()
	if len(l.perPlayerCount) > 0 {
		l.perPlayerCount = make(map[ecs.Entity]int)
	}
	return commands
}
