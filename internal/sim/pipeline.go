package sim

import "dust-and-lead/server/internal/ecs"

// SystemFunc is one pipeline step. Systems mutate only through the world,
// with no I/O and no wall clock, so identical (seed, inputs) replays identically.
type SystemFunc func(w *World, dt float64)

type namedSystem struct {
	name string
	fn   SystemFunc
}

// Pipeline is an ordered system registry. Step runs every system exactly
// once, in registration order, against the same world and a single fixed dt.
// The registration order is the simulation's causal order; reordering it is a
// semantic change, not a refactor.
type Pipeline struct {
	systems []namedSystem
}

func NewPipeline() *Pipeline {
	return &Pipeline{}
}

// Register appends a system. Names exist for diagnostics and tests.
func (p *Pipeline) Register(name string, fn SystemFunc) {
	if fn == nil {
		return
	}
	p.systems = append(p.systems, namedSystem{name: name, fn: fn})
}

// Names returns the registered system order.
func (p *Pipeline) Names() []string {
	names := make([]string, len(p.systems))
	for i, s := range p.systems {
		names[i] = s.name
	}
	return names
}

// Step advances the world one tick.
func (p *Pipeline) Step(w *World, dt float64) {
	if w == nil {
		return
	}
	if dt <= 0 {
		dt = TickSeconds
	}
	w.beginTick()
	for _, s := range p.systems {
		s.fn(w, dt)
	}
	w.endTick()
}

// NewGameplayPipeline assembles the canonical authoritative order. Each
// boundary encodes a dependency: steering needs fresh detection targets and
// must precede attack execution, and the spatial rebuild sits between
// repositioning writes and the queries that consume them this tick.
func NewGameplayPipeline() *Pipeline {
	p := NewPipeline()
	p.Register("inputIntent", SystemInputIntent)
	p.Register("roll", SystemRoll)
	p.Register("showdown", SystemShowdown)
	p.Register("cylinder", SystemCylinder)
	p.Register("weaponFire", SystemWeaponFire)
	p.Register("debugSpawns", SystemDebugSpawns)
	p.Register("director", SystemDirector)
	p.Register("bulletAdvance", SystemBulletAdvance)
	p.Register("aiPerception", SystemAIPerception)
	p.Register("aiDecision", SystemAIDecision)
	p.Register("spatialRebuild", SystemSpatialRebuild)
	p.Register("aiSteering", SystemAISteering)
	p.Register("aiAttack", SystemAIAttack)
	p.Register("movement", SystemMovement)
	p.Register("bulletCollision", SystemBulletCollision)
	p.Register("health", SystemHealth)
	p.Register("passives", SystemPassives)
	p.Register("collision", SystemCollisionResolve)
	return p
}

// NewPredictionPipeline assembles the restricted subset the client replays
// for its local player: movement, roll, and collision only, without combat
// or AI. Server and client share this constructor so replay stays bit-identical.
func NewPredictionPipeline() *Pipeline {
	p := NewPipeline()
	p.Register("inputIntent", SystemInputIntent)
	p.Register("roll", SystemRoll)
	p.Register("spatialRebuild", SystemSpatialRebuild)
	p.Register("movement", SystemMovement)
	p.Register("collision", SystemCollisionResolve)
	return p
}

// SystemSpatialRebuild refreshes the broadphase from current collider
// positions. Queries made before this system in the same tick see the prior
// tick's layout, which is a correctness bug in the caller.
func SystemSpatialRebuild(w *World, _ float64) {
	entities := w.liveEntities()
	collidable := entities[:0]
	for _, e := range entities {
		if w.Colliders.Has(e) && w.Positions.Has(e) {
			collidable = append(collidable, e)
		}
	}
	w.grid.Rebuild(collidable, func(e ecs.Entity) (float64, float64) {
		pos := w.Positions.Get(e)
		return pos.X, pos.Y
	})
}
