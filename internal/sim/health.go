package sim

import (
	"context"
	"math"

	"dust-and-lead/server/internal/content"
	"dust-and-lead/server/internal/ecs"
	logcombat "dust-and-lead/server/logging/combat"
)

const (
	playerDeathIFrames = TickRate * 2
	nuggetValueFodder  = 1
	nuggetValueThreat  = 5
	nuggetValueBoss    = 25
)

// DealDamage applies a hit to target and records the attribution. Damage is
// applied even when it would overkill; death is evaluated by SystemHealth so
// every hit landed in a tick is accounted before anyone is removed.
func (w *World) DealDamage(target ecs.Entity, amount float64, source ecs.Entity, kind string) {
	if w == nil || amount <= 0 || !w.reg.Alive(target) {
		return
	}
	h := w.Healths.Get(target)
	if h == nil {
		return
	}
	if h.IFrames > 0 {
		return
	}
	if p := w.Players.Get(target); p != nil && p.Dead {
		return
	}

	prev := h.Current
	h.Current -= amount
	h.LastHitBy = source
	if w.Players.Has(target) && h.IFrameDuration > 0 {
		h.IFrames = h.IFrameDuration
	}

	pos := w.Positions.Get(target)
	if pos != nil {
		w.events.DamageNumbers = append(w.events.DamageNumbers, DamageNumber{
			X: pos.X, Y: pos.Y, Amount: amount, Target: target,
		})
	}
	if w.Players.Has(target) && pos != nil {
		hint := HitHint{Target: target}
		if srcPos := w.Positions.Get(source); srcPos != nil {
			if d := math.Hypot(srcPos.X-pos.X, srcPos.Y-pos.Y); d > 0 {
				hint.DirX = (srcPos.X - pos.X) / d
				hint.DirY = (srcPos.Y - pos.Y) / d
			}
		}
		w.events.HitHints = append(w.events.HitHints, hint)
	}

	w.hooks.FireHealthChanged(w, target, h.Current-prev)
	logcombat.Damage(context.Background(), w.publisher, w.tick, w.entityRef(source), w.entityRef(target), amount, kind)

	if w.BossPhases.Has(target) {
		w.checkBossPhases(target)
	}
}

// SystemHealth ticks invulnerability windows and resolves deaths. Kills fire
// the kill hook chain, credit the encounter director, and drop gold by tier.
func SystemHealth(w *World, _ float64) {
	var dead []ecs.Entity
	for _, e := range w.liveEntities() {
		h := w.Healths.Get(e)
		if h == nil {
			continue
		}
		if h.IFrames > 0 {
			h.IFrames--
		}
		if h.Current <= 0 {
			dead = append(dead, e)
		}
	}

	for _, e := range dead {
		if !w.reg.Alive(e) {
			continue
		}
		h := w.Healths.Get(e)
		if h == nil || h.Current > 0 {
			continue
		}
		h.Current = 0

		if p := w.Players.Get(e); p != nil {
			if !p.Dead {
				p.Dead = true
				h.IFrames = playerDeathIFrames
				w.events.Deaths = append(w.events.Deaths, DeathEvent{Entity: e, Type: p.Character, Killer: h.LastHitBy})
				logcombat.Defeat(context.Background(), w.publisher, w.tick, w.entityRef(e), w.entityRef(h.LastHitBy).ID)
			}
			continue
		}

		ai := w.Enemies.Get(e)
		if ai == nil {
			w.DestroyEntity(e)
			continue
		}

		w.events.Deaths = append(w.events.Deaths, DeathEvent{Entity: e, Type: ai.Type, Killer: h.LastHitBy})
		w.hooks.FireKill(w, e, h.LastHitBy)
		logcombat.Defeat(context.Background(), w.publisher, w.tick, w.entityRef(e), w.entityRef(h.LastHitBy).ID)
		if w.director != nil {
			w.director.NoteEnemyKilled(w, e, ai)
		}

		if pos := w.Positions.Get(e); pos != nil {
			if def, ok := w.catalog.Enemies[ai.Type]; ok {
				if def.FuseTicks > 0 {
					w.SpawnCharge(pos.X, pos.Y, def.FuseRadius, def.FuseDamage, def.FuseTicks)
				}
				w.DropNugget(pos.X, pos.Y, nuggetValueForClass(def.Class))
			}
		}
		w.DestroyEntity(e)
	}
}

func nuggetValueForClass(class content.EnemyClass) int {
	switch class {
	case content.ClassThreat:
		return nuggetValueThreat
	case content.ClassBoss:
		return nuggetValueBoss
	default:
		return nuggetValueFodder
	}
}

// SystemPassives handles the slow transients: gold pickup and fuse charges
// left behind by self-destructing enemies.
func SystemPassives(w *World, _ float64) {
	if len(w.nuggets) > 0 {
		kept := w.nuggets[:0]
		for _, n := range w.nuggets {
			claimed := false
			for _, e := range w.PlayersOrdered() {
				p := w.Players.Get(e)
				pos := w.Positions.Get(e)
				if p == nil || p.Dead || pos == nil {
					continue
				}
				if math.Hypot(pos.X-n.X, pos.Y-n.Y) <= defaultPickupRadius {
					p.Gold += n.Value
					claimed = true
					break
				}
			}
			if !claimed {
				kept = append(kept, n)
			}
		}
		w.nuggets = kept
	}

	if len(w.charges) > 0 {
		kept := w.charges[:0]
		for i := range w.charges {
			c := w.charges[i]
			c.FuseLeft--
			if c.FuseLeft > 0 {
				kept = append(kept, c)
				continue
			}
			w.detonateCharge(c)
		}
		w.charges = kept
	}
}

func (w *World) detonateCharge(c FuseCharge) {
	for _, e := range w.liveEntities() {
		pos := w.Positions.Get(e)
		if pos == nil || !w.Healths.Has(e) {
			continue
		}
		if math.Hypot(pos.X-c.X, pos.Y-c.Y) > c.Radius {
			continue
		}
		w.DealDamage(e, c.Damage, ecs.None, "fuse")
	}
}
