package sim

import "dust-and-lead/server/internal/ecs"

// DamageNumber is a render-facing damage popup emitted at most once per hit.
type DamageNumber struct {
	Target ecs.Entity
	X, Y   float64
	Amount float64
}

// DeathEvent records an entity defeated this tick.
type DeathEvent struct {
	Entity ecs.Entity
	Type   string
	Killer ecs.Entity
}

// HitHint tells the camera which direction a hit on a player came from.
type HitHint struct {
	Target     ecs.Entity
	DirX, DirY float64
}

// FrameEvents is the this-tick render event surface. The simulation resets it
// at the start of every tick and sets each entry at most once per qualifying
// event; the render boundary reads it and never writes.
type FrameEvents struct {
	DamageNumbers []DamageNumber
	Deaths        []DeathEvent
	HitHints      []HitHint

	Fired        []ecs.Entity
	DryFired     []ecs.Entity
	ReloadDone   []ecs.Entity
	RollStarted  []ecs.Entity
	RollEnded    []ecs.Entity
	SkillUsed    []ecs.Entity
	SkillExpired []ecs.Entity
}

func (ev *FrameEvents) reset() {
	ev.DamageNumbers = ev.DamageNumbers[:0]
	ev.Deaths = ev.Deaths[:0]
	ev.HitHints = ev.HitHints[:0]
	ev.Fired = ev.Fired[:0]
	ev.DryFired = ev.DryFired[:0]
	ev.ReloadDone = ev.ReloadDone[:0]
	ev.RollStarted = ev.RollStarted[:0]
	ev.RollEnded = ev.RollEnded[:0]
	ev.SkillUsed = ev.SkillUsed[:0]
	ev.SkillExpired = ev.SkillExpired[:0]
}
