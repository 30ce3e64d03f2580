package sim

import (
	"math"

	"dust-and-lead/server/internal/ecs"
)

// SystemShowdown resolves expiring mark zones and activates new ones. A
// character without the showdown ability swings its melee sidearm on the same
// button instead.
func SystemShowdown(w *World, _ float64) {
	// Resolve expiring zones before new activations so a zone never damages
	// on the tick it is placed.
	kept := w.zones[:0]
	for _, zone := range w.zones {
		if w.tick < zone.ExpiresAt {
			kept = append(kept, zone)
			continue
		}
		w.EachEnemy(func(e ecs.Entity, _ *EnemyAI) {
			pos := w.Positions.Get(e)
			if pos == nil {
				return
			}
			if math.Hypot(pos.X-zone.X, pos.Y-zone.Y) <= zone.Radius {
				w.DealDamage(e, zone.Damage, zone.Owner, "showdown")
			}
		})
		if w.reg.Alive(zone.Owner) {
			w.events.SkillExpired = append(w.events.SkillExpired, zone.Owner)
		}
	}
	w.zones = kept

	for _, e := range w.playerOrder {
		p := w.Players.Get(e)
		if p == nil || p.Dead || !p.SkillPressed {
			continue
		}
		if sd := w.Showdowns.Get(e); sd != nil {
			if w.tick < sd.ReadyAtTick {
				continue
			}
			pos := w.Positions.Get(e)
			if pos == nil {
				continue
			}
			zx, zy := p.CursorX, p.CursorY
			if dist := math.Hypot(zx-pos.X, zy-pos.Y); sd.Range > 0 && dist > sd.Range {
				// Clamp placement onto the range circle toward the cursor.
				zx = pos.X + (zx-pos.X)/dist*sd.Range
				zy = pos.Y + (zy-pos.Y)/dist*sd.Range
			}
			w.zones = append(w.zones, MarkZone{
				Owner:     e,
				X:         zx,
				Y:         zy,
				Radius:    sd.Range / 2,
				Damage:    showdownDamage,
				ExpiresAt: w.tick + uint64(sd.DurationTicks),
			})
			sd.ReadyAtTick = w.tick + uint64(sd.DurationTicks+sd.CooldownTicks)
			w.events.SkillUsed = append(w.events.SkillUsed, e)
			continue
		}
		if mw := w.Melees.Get(e); mw != nil && w.tick >= mw.ReadyAtTick {
			w.swingMelee(e, mw)
		}
	}
}

func (w *World) swingMelee(e ecs.Entity, mw *MeleeWeapon) {
	pos := w.Positions.Get(e)
	if pos == nil {
		return
	}
	mw.ReadyAtTick = w.tick + uint64(mw.CooldownTicks)
	w.events.SkillUsed = append(w.events.SkillUsed, e)
	w.EachEnemy(func(target ecs.Entity, _ *EnemyAI) {
		tpos := w.Positions.Get(target)
		if tpos == nil {
			return
		}
		dx := tpos.X - pos.X
		dy := tpos.Y - pos.Y
		dist := math.Hypot(dx, dy)
		if dist > mw.Radius {
			return
		}
		w.DealDamage(target, mw.Damage, e, "melee")
		if dist > 0 && mw.Knockback > 0 {
			w.ApplyKnockback(target, dx/dist*mw.Knockback, dy/dist*mw.Knockback)
		}
	})
}

// SystemCylinder advances reload timers and honors explicit reload requests.
func SystemCylinder(w *World, _ float64) {
	for _, e := range w.playerOrder {
		p := w.Players.Get(e)
		cyl := w.Cylinders.Get(e)
		if p == nil || cyl == nil || p.Dead {
			continue
		}
		if cyl.ReloadLeft > 0 {
			cyl.ReloadLeft--
			if cyl.ReloadLeft == 0 {
				cyl.Rounds = cyl.Size
				w.events.ReloadDone = append(w.events.ReloadDone, e)
			}
			continue
		}
		if p.ReloadPressed && cyl.Rounds < cyl.Size {
			cyl.ReloadLeft = cyl.ReloadTicks
		}
	}
}

// SystemWeaponFire fires the revolver on the fire edge. Dry firing starts a
// reload and emits the dry-fire edge for the render layer.
func SystemWeaponFire(w *World, _ float64) {
	for _, e := range w.playerOrder {
		p := w.Players.Get(e)
		if p == nil || p.Dead || !p.FirePressed || w.Rolls.Has(e) {
			continue
		}
		w.FireWeapon(e)
	}
}

// FireWeapon attempts one trigger pull for the player. Refire effects call
// this directly, so every firing rule lives here.
func (w *World) FireWeapon(e ecs.Entity) {
	p := w.Players.Get(e)
	cyl := w.Cylinders.Get(e)
	if p == nil || cyl == nil || p.Dead {
		return
	}
	if cyl.ReloadLeft > 0 || w.tick < cyl.CooldownAt {
		return
	}
	if cyl.Rounds <= 0 {
		w.events.DryFired = append(w.events.DryFired, e)
		cyl.ReloadLeft = cyl.ReloadTicks
		return
	}

	def, ok := w.catalog.Characters[p.Character]
	if !ok {
		return
	}
	pos := w.Positions.Get(e)
	if pos == nil {
		return
	}

	cyl.Rounds--
	cyl.CooldownAt = w.tick + uint64(def.Weapon.CooldownTicks)

	pellets := def.Weapon.Pellets
	if pellets < 1 {
		pellets = 1
	}
	for i := 0; i < pellets; i++ {
		angle := p.Aim
		if pellets > 1 && def.Weapon.SpreadRadians > 0 {
			frac := float64(i)/float64(pellets-1) - 0.5
			angle += frac * def.Weapon.SpreadRadians
		}
		_, _ = w.SpawnBullet(e, pos.X, pos.Y, angle, BulletParams{
			Damage:   def.Weapon.Damage,
			Speed:    def.Weapon.BulletSpeed,
			Drag:     def.Weapon.BulletDrag,
			MaxRange: def.Weapon.BulletRange,
			Layer:    LayerPlayerBullet,
		})
	}
	w.events.Fired = append(w.events.Fired, e)
}

// SystemDebugSpawns drains administratively queued spawns (console and test
// tooling) so they enter the world at a fixed point in the tick order.
func SystemDebugSpawns(w *World, _ float64) {
	if len(w.debugSpawns) == 0 {
		return
	}
	pending := w.debugSpawns
	w.debugSpawns = w.debugSpawns[:0]
	for _, req := range pending {
		_, _ = w.SpawnEnemy(req.Type, req.X, req.Y)
	}
}

// QueueDebugSpawn stages an administrative enemy spawn for the next tick.
func (w *World) QueueDebugSpawn(typeName string, x, y float64) {
	w.debugSpawns = append(w.debugSpawns, debugSpawn{Type: typeName, X: x, Y: y})
}
