package sim

import (
	"math"

	"dust-and-lead/server/internal/ecs"
)

const maxTargetRadius = 48.0

// maxBulletLifeTicks bounds projectile lifetime. Heavy drag can stall a
// bullet short of its range forever, so travel distance alone cannot cull it.
const maxBulletLifeTicks = 10 * TickRate

// SystemBulletAdvance integrates projectiles: acceleration along the heading,
// drag, range accounting, and culling against bounds and terrain.
func SystemBulletAdvance(w *World, dt float64) {
	var expired []ecs.Entity
	for _, e := range w.liveEntities() {
		b := w.Bullets.Get(e)
		if b == nil {
			continue
		}
		pos := w.Positions.Get(e)
		vel := w.Velocities.Get(e)
		if pos == nil || vel == nil {
			continue
		}

		pos.PrevX = pos.X
		pos.PrevY = pos.Y

		speed := math.Hypot(vel.X, vel.Y)
		if speed > 0 {
			if b.Accel != 0 {
				scale := (speed + b.Accel*dt) / speed
				if scale < 0 {
					scale = 0
				}
				vel.X *= scale
				vel.Y *= scale
			}
			if b.Drag > 0 {
				damp := 1 - b.Drag*dt
				if damp < 0 {
					damp = 0
				}
				vel.X *= damp
				vel.Y *= damp
			}
		}

		stepX := vel.X * dt
		stepY := vel.Y * dt
		pos.X += stepX
		pos.Y += stepY
		b.Travelled += math.Hypot(stepX, stepY)
		b.LifeTicks++

		switch {
		case b.MaxRange > 0 && b.Travelled >= b.MaxRange:
			expired = append(expired, e)
		case b.LifeTicks >= maxBulletLifeTicks:
			expired = append(expired, e)
		case pos.X < 0 || pos.X > w.cfg.Width || pos.Y < 0 || pos.Y > w.cfg.Height:
			expired = append(expired, e)
		case w.insideObstacle(pos.X, pos.Y):
			expired = append(expired, e)
		}
	}
	for _, e := range expired {
		w.DestroyEntity(e)
	}
}

// SystemBulletCollision resolves projectile contact. Player bullets thread
// the on-hit hook chain and may pierce; enemy bullets stop on the first
// player they touch. Rolling or invulnerable players are never hit.
func SystemBulletCollision(w *World, _ float64) {
	bullets := append([]ecs.Entity(nil), w.liveEntities()...)
	for _, e := range bullets {
		b := w.Bullets.Get(e)
		if b == nil {
			continue
		}
		pos := w.Positions.Get(e)
		col := w.Colliders.Get(e)
		if pos == nil || col == nil {
			continue
		}

		destroyed := false
		w.grid.QueryRadius(pos.X, pos.Y, col.Radius+maxTargetRadius, func(target ecs.Entity) {
			if destroyed || target == e || !w.reg.Alive(target) {
				return
			}
			targetCol := w.Colliders.Get(target)
			targetPos := w.Positions.Get(target)
			if targetCol == nil || targetPos == nil {
				return
			}
			if math.Hypot(targetPos.X-pos.X, targetPos.Y-pos.Y) > col.Radius+targetCol.Radius {
				return
			}

			switch col.Layer {
			case LayerPlayerBullet:
				if targetCol.Layer != LayerEnemy {
					return
				}
				result := HitResult{Damage: b.Damage, Pierce: b.Pierce}
				w.hooks.FireBulletHit(w, e, target, &result)
				if fn := w.bulletHitCallback(e); fn != nil {
					fn(w, e, target)
				}
				w.DealDamage(target, result.Damage, b.Owner, "bullet")
				if result.Pierce > 0 {
					b.Pierce = result.Pierce - 1
					return
				}
				w.DestroyEntity(e)
				destroyed = true
			case LayerEnemyBullet:
				if targetCol.Layer != LayerPlayer {
					return
				}
				p := w.Players.Get(target)
				if p == nil || p.Dead || w.Rolls.Has(target) {
					return
				}
				if h := w.Healths.Get(target); h != nil && h.IFrames > 0 {
					return
				}
				w.DealDamage(target, b.Damage, b.Owner, "bullet")
				w.DestroyEntity(e)
				destroyed = true
			}
		})
	}
}
