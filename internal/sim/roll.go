package sim

import (
	"context"
	"math"

	logcombat "dust-and-lead/server/logging/combat"

	"dust-and-lead/server/internal/ecs"
)

const dodgeMargin = 18.0

// SystemRoll starts, advances, and ends dodge rolls. While a roll is active
// it owns the player's velocity, the player ignores bullet contact, and
// enemy bullets passing close by count as dodges exactly once each.
func SystemRoll(w *World, _ float64) {
	for _, e := range w.playerOrder {
		p := w.Players.Get(e)
		if p == nil || p.Dead {
			continue
		}

		if roll := w.Rolls.Get(e); roll != nil {
			if vel := w.Velocities.Get(e); vel != nil {
				vel.X = roll.DirX * roll.Speed
				vel.Y = roll.DirY * roll.Speed
			}
			w.detectRollDodges(e)
			roll.TicksLeft--
			if roll.TicksLeft <= 0 {
				w.Rolls.Remove(e)
				w.events.RollEnded = append(w.events.RollEnded, e)
				w.hooks.FireRollEnd(w, e)
				for bullet := range w.dodgeSeen[e] {
					delete(w.dodgeSeen[e], bullet)
				}
			}
			continue
		}

		if !p.RollPressed || w.tick < p.rollReadyAt {
			continue
		}
		def, ok := w.catalog.Characters[p.Character]
		if !ok || def.RollTicks <= 0 {
			continue
		}

		dirX, dirY := 0.0, 0.0
		if vel := w.Velocities.Get(e); vel != nil {
			if length := math.Hypot(vel.X, vel.Y); length > 0 {
				dirX = vel.X / length
				dirY = vel.Y / length
			}
		}
		if dirX == 0 && dirY == 0 {
			dirX = math.Cos(p.Aim)
			dirY = math.Sin(p.Aim)
		}

		w.Rolls.Set(e, Roll{
			TicksLeft: def.RollTicks,
			Duration:  def.RollTicks,
			Speed:     def.RollSpeed,
			DirX:      dirX,
			DirY:      dirY,
		})
		p.rollReadyAt = w.tick + uint64(def.RollTicks+def.RollCooldown)
		w.events.RollStarted = append(w.events.RollStarted, e)
	}
}

// detectRollDodges fires the roll-dodge hook once per enemy bullet that
// passes within the dodge margin during the roll. The per-player seen set is
// pruned when the bullet or the player goes away.
func (w *World) detectRollDodges(player ecs.Entity) {
	pos := w.Positions.Get(player)
	col := w.Colliders.Get(player)
	if pos == nil || col == nil {
		return
	}
	seen := w.dodgeSeen[player]
	if seen == nil {
		seen = make(map[ecs.Entity]struct{})
		w.dodgeSeen[player] = seen
	}

	reach := col.Radius + dodgeMargin
	w.grid.QueryRadius(pos.X, pos.Y, reach, func(candidate ecs.Entity) {
		if !w.reg.Alive(candidate) {
			return
		}
		bulletCol := w.Colliders.Get(candidate)
		if bulletCol == nil || bulletCol.Layer != LayerEnemyBullet {
			return
		}
		if _, already := seen[candidate]; already {
			return
		}
		bulletPos := w.Positions.Get(candidate)
		if bulletPos == nil {
			return
		}
		if math.Hypot(bulletPos.X-pos.X, bulletPos.Y-pos.Y) > reach+bulletCol.Radius {
			return
		}
		seen[candidate] = struct{}{}
		w.hooks.FireRollDodge(w, player, candidate)
		logcombat.Dodge(context.Background(), w.publisher, w.tick, w.entityRef(player), w.entityRef(candidate))
	})
}
