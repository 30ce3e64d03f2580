package sim

import (
	"math"

	"dust-and-lead/server/internal/ecs"
)

const knockbackEpsilon = 0.5

// SystemMovement integrates intent velocity plus any decaying knockback
// impulse for every non-bullet mover, recording previous positions for render
// interpolation. Bullets advance in their own system earlier in the order.
func SystemMovement(w *World, dt float64) {
	for _, e := range w.liveEntities() {
		if w.Bullets.Has(e) {
			continue
		}
		pos := w.Positions.Get(e)
		vel := w.Velocities.Get(e)
		if pos == nil || vel == nil {
			continue
		}

		pos.PrevX = pos.X
		pos.PrevY = pos.Y

		vx, vy := vel.X, vel.Y
		if kb := w.Knockbacks.Get(e); kb != nil {
			vx += kb.X
			vy += kb.Y
			kb.X *= kb.Decay
			kb.Y *= kb.Decay
			if math.Hypot(kb.X, kb.Y) < knockbackEpsilon {
				w.Knockbacks.Remove(e)
			}
		}

		pos.X += vx * dt
		pos.Y += vy * dt

		radius := 0.0
		if col := w.Colliders.Get(e); col != nil {
			radius = col.Radius
		}
		pos.X = clamp(pos.X, radius, w.cfg.Width-radius)
		pos.Y = clamp(pos.Y, radius, w.cfg.Height-radius)
		pos.X, pos.Y = resolveObstaclePenetration(pos.X, pos.Y, radius, w.obstacles)
	}
}

// SystemCollisionResolve separates overlapping solid bodies (players and
// enemies). Candidates come from the broadphase; the exact circle test and
// the symmetric push both happen here. Pairs resolve once, lower handle
// first, so the outcome is order-independent of the query.
func SystemCollisionResolve(w *World, _ float64) {
	for _, e := range w.liveEntities() {
		col := w.Colliders.Get(e)
		if col == nil || col.Layer&(LayerPlayer|LayerEnemy) == 0 {
			continue
		}
		pos := w.Positions.Get(e)
		if pos == nil {
			continue
		}
		if p := w.Players.Get(e); p != nil && p.Dead {
			continue
		}

		w.grid.QueryRadius(pos.X, pos.Y, col.Radius*4, func(other ecs.Entity) {
			if other.ID <= e.ID || !w.reg.Alive(other) {
				return
			}
			otherCol := w.Colliders.Get(other)
			if otherCol == nil || otherCol.Layer&(LayerPlayer|LayerEnemy) == 0 {
				return
			}
			if p := w.Players.Get(other); p != nil && p.Dead {
				return
			}
			otherPos := w.Positions.Get(other)
			if otherPos == nil {
				return
			}

			dx := otherPos.X - pos.X
			dy := otherPos.Y - pos.Y
			minDist := col.Radius + otherCol.Radius
			dist := math.Hypot(dx, dy)
			if dist >= minDist {
				return
			}
			if dist == 0 {
				// Exactly stacked: separate along x by handle order.
				dx, dy, dist = 1, 0, 1
			}
			push := (minDist - dist) / 2
			nx := dx / dist
			ny := dy / dist
			pos.X -= nx * push
			pos.Y -= ny * push
			otherPos.X += nx * push
			otherPos.Y += ny * push
		})
	}
}

func clamp(v, min, max float64) float64 {
	if max < min {
		return min
	}
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// ApplyKnockback adds an impulse that decays multiplicatively each tick.
func (w *World) ApplyKnockback(e ecs.Entity, x, y float64) {
	if !w.reg.Alive(e) {
		return
	}
	if kb := w.Knockbacks.Get(e); kb != nil {
		kb.X += x
		kb.Y += y
		return
	}
	w.Knockbacks.Set(e, Knockback{X: x, Y: y, Decay: 0.8})
}
