package sim

import (
	"math"

	"dust-and-lead/server/internal/content"
	"dust-and-lead/server/internal/ecs"
)

const fodderFleeFraction = 0.25

// SystemAIPerception acquires and drops targets. An enemy holds its target
// until the player dies or leaves detection range; while committed to an
// attack the target handle is kept even if perception would drop it, so the
// decision system decides how the commitment ends.
func SystemAIPerception(w *World, _ float64) {
	w.EachEnemy(func(e ecs.Entity, ai *EnemyAI) {
		if ai.InitialDelay > 0 {
			ai.InitialDelay--
			return
		}
		if ai.State == AITelegraph || ai.State == AIAttack {
			return
		}

		def, ok := w.catalog.Enemies[ai.Type]
		if !ok {
			return
		}
		pos := w.Positions.Get(e)
		if pos == nil {
			return
		}

		if ai.Target != ecs.None {
			if !w.AlivePlayerTarget(ai.Target) {
				ai.Target = ecs.None
			} else if tp := w.Positions.Get(ai.Target); tp == nil ||
				math.Hypot(tp.X-pos.X, tp.Y-pos.Y) > def.DetectRange {
				ai.Target = ecs.None
			}
		}
		if ai.Target != ecs.None {
			return
		}

		best := ecs.None
		bestDist := def.DetectRange
		for _, candidate := range w.PlayersOrdered() {
			if !w.AlivePlayerTarget(candidate) {
				continue
			}
			cp := w.Positions.Get(candidate)
			if cp == nil {
				continue
			}
			d := math.Hypot(cp.X-pos.X, cp.Y-pos.Y)
			if d < bestDist || (d == bestDist && best != ecs.None && candidate.ID < best.ID) {
				best = candidate
				bestDist = d
			}
		}
		ai.Target = best
	})
}

// SystemAIDecision steps the enemy state machine. Aim is locked exactly once
// when a telegraph begins; losing the target mid-telegraph aborts straight to
// recovery without dealing damage.
func SystemAIDecision(w *World, _ float64) {
	w.EachEnemy(func(e ecs.Entity, ai *EnemyAI) {
		if ai.InitialDelay > 0 {
			return
		}
		atk := w.Attacks.Get(e)
		pos := w.Positions.Get(e)
		if atk == nil || pos == nil {
			return
		}

		if ai.State != AIFlee && ai.State != AIStunned && w.shouldFlee(e, ai) {
			ai.State = AIFlee
			ai.Timer = 0
		}

		switch ai.State {
		case AIIdle:
			if ai.Target != ecs.None {
				ai.State = AIChase
			}
		case AIChase:
			if ai.Target == ecs.None {
				ai.State = AIIdle
				return
			}
			tp := w.Positions.Get(ai.Target)
			if tp == nil {
				ai.Target = ecs.None
				ai.State = AIIdle
				return
			}
			if w.tick < atk.ReadyAtTick {
				return
			}
			if math.Hypot(tp.X-pos.X, tp.Y-pos.Y) <= atk.Range {
				ai.State = AITelegraph
				ai.Timer = atk.TelegraphTicks
				ai.AimX = tp.X
				ai.AimY = tp.Y
			}
		case AITelegraph:
			if ai.Target == ecs.None || !w.AlivePlayerTarget(ai.Target) {
				ai.Target = ecs.None
				ai.State = AIRecovery
				ai.Timer = atk.RecoveryTicks
				atk.ReadyAtTick = w.tick + uint64(atk.CooldownTicks)
				return
			}
			ai.Timer--
			if ai.Timer <= 0 {
				ai.State = AIAttack
				ai.Timer = atk.AttackTicks
				atk.DidDamage = false
			}
		case AIAttack:
			if !w.AlivePlayerTarget(ai.Target) {
				ai.Target = ecs.None
				ai.State = AIRecovery
				ai.Timer = atk.RecoveryTicks
				atk.ReadyAtTick = w.tick + uint64(atk.CooldownTicks)
				return
			}
			ai.Timer--
			if ai.Timer <= 0 {
				ai.State = AIRecovery
				ai.Timer = atk.RecoveryTicks
				atk.ReadyAtTick = w.tick + uint64(atk.CooldownTicks)
			}
		case AIRecovery:
			ai.Timer--
			if ai.Timer <= 0 {
				if ai.Target != ecs.None {
					ai.State = AIChase
				} else {
					ai.State = AIIdle
				}
			}
		case AIStunned:
			ai.Timer--
			if ai.Timer <= 0 {
				if ai.Target != ecs.None {
					ai.State = AIChase
				} else {
					ai.State = AIIdle
				}
			}
		case AIFlee:
			// Flee is terminal for fodder; nothing restores its nerve.
		}
	})
}

func (w *World) shouldFlee(e ecs.Entity, ai *EnemyAI) bool {
	def, ok := w.catalog.Enemies[ai.Type]
	if !ok || def.Class != content.ClassFodder {
		return false
	}
	h := w.Healths.Get(e)
	return h != nil && h.Max > 0 && h.Current/h.Max < fodderFleeFraction
}

// StunEnemy interrupts whatever the enemy was doing. A stun during telegraph
// or attack cancels the swing and starts the cooldown.
func (w *World) StunEnemy(e ecs.Entity, ticks int) {
	ai := w.Enemies.Get(e)
	if ai == nil || ticks <= 0 {
		return
	}
	if ai.State == AITelegraph || ai.State == AIAttack {
		if atk := w.Attacks.Get(e); atk != nil {
			atk.ReadyAtTick = w.tick + uint64(atk.CooldownTicks)
		}
	}
	ai.State = AIStunned
	if ticks > ai.Timer {
		ai.Timer = ticks
	}
}

// SystemAISteering writes enemy velocities: chase to standoff range, flee
// away, separate from packed neighbours, hold still while committed.
func SystemAISteering(w *World, _ float64) {
	w.EachEnemy(func(e ecs.Entity, ai *EnemyAI) {
		vel := w.Velocities.Get(e)
		pos := w.Positions.Get(e)
		spd := w.Speeds.Get(e)
		st := w.Steerings.Get(e)
		if vel == nil || pos == nil || spd == nil {
			return
		}

		vel.X = 0
		vel.Y = 0
		if ai.InitialDelay > 0 {
			return
		}

		switch ai.State {
		case AIChase:
			tp := w.Positions.Get(ai.Target)
			if tp == nil {
				return
			}
			dx := tp.X - pos.X
			dy := tp.Y - pos.Y
			dist := math.Hypot(dx, dy)
			standoff := 0.0
			if st != nil {
				standoff = st.StandoffRange
			}
			if dist > standoff && dist > 0 {
				vel.X = dx / dist * spd.Value
				vel.Y = dy / dist * spd.Value
			}
		case AIFlee:
			tp := w.Positions.Get(ai.Target)
			if tp == nil {
				return
			}
			dx := pos.X - tp.X
			dy := pos.Y - tp.Y
			dist := math.Hypot(dx, dy)
			if dist > 0 {
				vel.X = dx / dist * spd.Value
				vel.Y = dy / dist * spd.Value
			}
		case AIAttack:
			atk := w.Attacks.Get(e)
			if atk != nil && atk.Kind == string(content.AttackRush) {
				dx := ai.AimX - pos.X
				dy := ai.AimY - pos.Y
				dist := math.Hypot(dx, dy)
				if dist > 0 {
					vel.X = dx / dist * atk.RushSpeed
					vel.Y = dy / dist * atk.RushSpeed
				}
			}
			return
		default:
			return
		}

		if st != nil && st.SeparationRadius > 0 {
			sepX, sepY := 0.0, 0.0
			w.grid.QueryRadius(pos.X, pos.Y, st.SeparationRadius, func(other ecs.Entity) {
				if other == e || !w.Enemies.Has(other) {
					return
				}
				op := w.Positions.Get(other)
				if op == nil {
					return
				}
				dx := pos.X - op.X
				dy := pos.Y - op.Y
				d := math.Hypot(dx, dy)
				if d <= 0 || d >= st.SeparationRadius {
					return
				}
				push := (st.SeparationRadius - d) / st.SeparationRadius
				sepX += dx / d * push
				sepY += dy / d * push
			})
			vel.X += sepX * st.SeparationWeight * spd.Value
			vel.Y += sepY * st.SeparationWeight * spd.Value
			if mag := math.Hypot(vel.X, vel.Y); mag > spd.Value && mag > 0 {
				vel.X = vel.X / mag * spd.Value
				vel.Y = vel.Y / mag * spd.Value
			}
		}
	})
}

// SystemAIAttack delivers the committed attack. Volleys fire one burst at
// the start of the attack window, melee lands at most once per swing and can
// whiff if the target slipped out, rushes deal contact damage on touch.
func SystemAIAttack(w *World, _ float64) {
	w.EachEnemy(func(e ecs.Entity, ai *EnemyAI) {
		if ai.State != AIAttack {
			return
		}
		atk := w.Attacks.Get(e)
		pos := w.Positions.Get(e)
		if atk == nil || pos == nil {
			return
		}

		switch atk.Kind {
		case string(content.AttackVolley):
			if atk.DidDamage {
				return
			}
			atk.DidDamage = true
			w.fireVolley(e, ai, atk, pos)
		case string(content.AttackMelee):
			if atk.DidDamage {
				return
			}
			if !w.AlivePlayerTarget(ai.Target) {
				return
			}
			tp := w.Positions.Get(ai.Target)
			if tp == nil {
				return
			}
			dx := tp.X - pos.X
			dy := tp.Y - pos.Y
			if math.Hypot(dx, dy) > atk.MeleeRadius {
				return
			}
			atk.DidDamage = true
			w.DealDamage(ai.Target, atk.Damage, e, "melee")
			if d := math.Hypot(dx, dy); d > 0 && atk.Knockback > 0 {
				w.ApplyKnockback(ai.Target, dx/d*atk.Knockback, dy/d*atk.Knockback)
			}
		case string(content.AttackRush):
			if atk.DidDamage {
				return
			}
			col := w.Colliders.Get(e)
			if col == nil {
				return
			}
			w.grid.QueryRadius(pos.X, pos.Y, col.Radius+maxTargetRadius, func(target ecs.Entity) {
				if atk.DidDamage || !w.AlivePlayerTarget(target) {
					return
				}
				tp := w.Positions.Get(target)
				tc := w.Colliders.Get(target)
				if tp == nil || tc == nil {
					return
				}
				dx := tp.X - pos.X
				dy := tp.Y - pos.Y
				d := math.Hypot(dx, dy)
				if d > col.Radius+tc.Radius {
					return
				}
				atk.DidDamage = true
				w.DealDamage(target, atk.Damage, e, "rush")
				if d > 0 && atk.Knockback > 0 {
					w.ApplyKnockback(target, dx/d*atk.Knockback, dy/d*atk.Knockback)
				}
			})
		}
	})
}

func (w *World) fireVolley(e ecs.Entity, ai *EnemyAI, atk *AttackState, pos *Position) {
	def, ok := w.catalog.Enemies[ai.Type]
	fodder := ok && def.Class == content.ClassFodder

	heading := math.Atan2(ai.AimY-pos.Y, ai.AimX-pos.X)
	count := atk.ProjectileCount
	if count <= 0 {
		count = 1
	}
	for i := 0; i < count; i++ {
		if fodder && w.fodderShots >= w.cfg.FodderShotCap {
			return
		}
		angle := heading
		if count > 1 {
			frac := float64(i)/float64(count-1) - 0.5
			angle += frac * atk.SpreadRadians
		}
		w.SpawnBullet(e, pos.X, pos.Y, angle, BulletParams{
			Damage:     atk.Damage,
			Speed:      atk.ProjectileSpeed,
			Drag:       atk.ProjectileDrag,
			MaxRange:   atk.ProjectileRange,
			Layer:      LayerEnemyBullet,
			FromFodder: fodder,
		})
	}
}
