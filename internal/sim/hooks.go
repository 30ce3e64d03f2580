package sim

import (
	"fmt"
	"sort"

	"dust-and-lead/server/internal/ecs"
)

// Trigger enumerates the hook event kinds.
type Trigger uint8

const (
	TriggerKill Trigger = iota
	TriggerBulletHit
	TriggerRollEnd
	TriggerRollDodge
	TriggerHealthChanged
	triggerCount
)

// HookID namespaces a registration by effect key and owning player so the
// same effect can be independently owned by multiple players.
type HookID struct {
	Effect string
	Owner  ecs.Entity
}

// HitResult threads mutable hit outcome through the bullet-hit chain; later
// hooks observe earlier hooks' adjustments.
type HitResult struct {
	Damage float64
	Pierce int
}

type (
	KillHook          func(w *World, victim, killer ecs.Entity)
	BulletHitHook     func(w *World, bullet, target ecs.Entity, result *HitResult)
	RollEndHook       func(w *World, player ecs.Entity)
	RollDodgeHook     func(w *World, player, bullet ecs.Entity)
	HealthChangedHook func(w *World, subject ecs.Entity, delta float64)
)

type hookEntry struct {
	id       HookID
	priority int
	seq      uint64

	kill          KillHook
	bulletHit     BulletHitHook
	rollEnd       RollEndHook
	rollDodge     RollDodgeHook
	healthChanged HealthChangedHook
}

// HookRegistry is the typed event bus combat and ability systems consult as
// their extension point. Callbacks fire in ascending priority order with
// registration order breaking ties. The registry provides no cycle
// protection; self-triggering effects carry their own re-entrancy flags.
type HookRegistry struct {
	entries [triggerCount][]hookEntry
	nextSeq uint64
}

func newHookRegistry() *HookRegistry {
	return &HookRegistry{}
}

func (r *HookRegistry) register(kind Trigger, entry hookEntry) error {
	if kind >= triggerCount {
		return fmt.Errorf("sim: unknown hook trigger %d", kind)
	}
	for _, existing := range r.entries[kind] {
		if existing.id == entry.id {
			return fmt.Errorf("sim: duplicate hook registration %s for owner %d", entry.id.Effect, entry.id.Owner.ID)
		}
	}
	r.nextSeq++
	entry.seq = r.nextSeq
	list := append(r.entries[kind], entry)
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].priority != list[j].priority {
			return list[i].priority < list[j].priority
		}
		return list[i].seq < list[j].seq
	})
	r.entries[kind] = list
	return nil
}

func (r *HookRegistry) RegisterKill(id HookID, priority int, fn KillHook) error {
	if fn == nil {
		return fmt.Errorf("sim: nil kill hook %s", id.Effect)
	}
	return r.register(TriggerKill, hookEntry{id: id, priority: priority, kill: fn})
}

func (r *HookRegistry) RegisterBulletHit(id HookID, priority int, fn BulletHitHook) error {
	if fn == nil {
		return fmt.Errorf("sim: nil bullet-hit hook %s", id.Effect)
	}
	return r.register(TriggerBulletHit, hookEntry{id: id, priority: priority, bulletHit: fn})
}

func (r *HookRegistry) RegisterRollEnd(id HookID, priority int, fn RollEndHook) error {
	if fn == nil {
		return fmt.Errorf("sim: nil roll-end hook %s", id.Effect)
	}
	return r.register(TriggerRollEnd, hookEntry{id: id, priority: priority, rollEnd: fn})
}

func (r *HookRegistry) RegisterRollDodge(id HookID, priority int, fn RollDodgeHook) error {
	if fn == nil {
		return fmt.Errorf("sim: nil roll-dodge hook %s", id.Effect)
	}
	return r.register(TriggerRollDodge, hookEntry{id: id, priority: priority, rollDodge: fn})
}

func (r *HookRegistry) RegisterHealthChanged(id HookID, priority int, fn HealthChangedHook) error {
	if fn == nil {
		return fmt.Errorf("sim: nil health-changed hook %s", id.Effect)
	}
	return r.register(TriggerHealthChanged, hookEntry{id: id, priority: priority, healthChanged: fn})
}

// Unregister removes one registration across all trigger kinds.
func (r *HookRegistry) Unregister(id HookID) {
	for kind := range r.entries {
		list := r.entries[kind]
		for i := range list {
			if list[i].id == id {
				r.entries[kind] = append(list[:i], list[i+1:]...)
				break
			}
		}
	}
}

// UnregisterOwner removes every hook owned by the given player. Re-applying a
// loadout calls this first so no effect registers twice.
func (r *HookRegistry) UnregisterOwner(owner ecs.Entity) {
	for kind := range r.entries {
		list := r.entries[kind][:0]
		for _, entry := range r.entries[kind] {
			if entry.id.Owner != owner {
				list = append(list, entry)
			}
		}
		r.entries[kind] = list
	}
}

// Count reports the registrations for one trigger kind.
func (r *HookRegistry) Count(kind Trigger) int {
	if kind >= triggerCount {
		return 0
	}
	return len(r.entries[kind])
}

func (r *HookRegistry) FireKill(w *World, victim, killer ecs.Entity) {
	for _, entry := range r.entries[TriggerKill] {
		entry.kill(w, victim, killer)
	}
}

func (r *HookRegistry) FireBulletHit(w *World, bullet, target ecs.Entity, result *HitResult) {
	if result == nil {
		return
	}
	for _, entry := range r.entries[TriggerBulletHit] {
		entry.bulletHit(w, bullet, target, result)
	}
}

func (r *HookRegistry) FireRollEnd(w *World, player ecs.Entity) {
	for _, entry := range r.entries[TriggerRollEnd] {
		entry.rollEnd(w, player)
	}
}

func (r *HookRegistry) FireRollDodge(w *World, player, bullet ecs.Entity) {
	for _, entry := range r.entries[TriggerRollDodge] {
		entry.rollDodge(w, player, bullet)
	}
}

func (r *HookRegistry) FireHealthChanged(w *World, subject ecs.Entity, delta float64) {
	for _, entry := range r.entries[TriggerHealthChanged] {
		entry.healthChanged(w, subject, delta)
	}
}
