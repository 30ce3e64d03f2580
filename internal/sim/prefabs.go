package sim

import (
	"fmt"
	"math"

	"dust-and-lead/server/internal/content"
	"dust-and-lead/server/internal/ecs"
)

const (
	bulletRadius     = 4.0
	showdownDamage   = 30.0
	showdownCooldown = TickRate * 8
)

// SpawnPlayer creates a fully initialized player entity from a character
// definition. Unknown keys are configuration errors. Players are spawned near
// the map center, fanned out by join order.
func (w *World) SpawnPlayer(characterKey string) (ecs.Entity, error) {
	def, ok := w.catalog.Characters[characterKey]
	if !ok {
		return ecs.None, fmt.Errorf("sim: unknown character %q", characterKey)
	}

	e, err := w.reg.Create()
	if err != nil {
		return ecs.None, err
	}

	idx := len(w.playerOrder)
	x := w.cfg.Width/2 + float64(idx)*40
	y := w.cfg.Height / 2

	w.Positions.Set(e, Position{X: x, Y: y, PrevX: x, PrevY: y})
	w.Velocities.Set(e, Velocity{})
	w.Speeds.Set(e, Speed{Value: def.MoveSpeed})
	w.Colliders.Set(e, Collider{Radius: def.Radius, Layer: LayerPlayer})
	w.Healths.Set(e, Health{Current: def.MaxHealth, Max: def.MaxHealth, IFrameDuration: def.IFrameTicks})
	w.Players.Set(e, Player{Character: def.Key})
	w.Cylinders.Set(e, Cylinder{
		Rounds:      def.Weapon.CylinderSize,
		Size:        def.Weapon.CylinderSize,
		ReloadTicks: def.Weapon.ReloadTicks,
	})
	if def.ShowdownTicks > 0 {
		w.Showdowns.Set(e, Showdown{
			Range:         def.ShowdownRange,
			DurationTicks: def.ShowdownTicks,
			CooldownTicks: showdownCooldown,
		})
	}
	if def.Melee.Damage > 0 {
		w.Melees.Set(e, MeleeWeapon{
			Damage:        def.Melee.Damage,
			Radius:        def.Melee.Radius,
			Knockback:     def.Melee.Knockback,
			CooldownTicks: def.Melee.CooldownTicks,
		})
	}

	w.playerOrder = append(w.playerOrder, e)
	w.dodgeSeen[e] = make(map[ecs.Entity]struct{})
	return e, nil
}

// RespawnPlayer revives a dead player in place with full health and ammo.
func (w *World) RespawnPlayer(e ecs.Entity) {
	p := w.Players.Get(e)
	if p == nil || !p.Dead {
		return
	}
	def, ok := w.catalog.Characters[p.Character]
	if !ok {
		return
	}
	p.Dead = false
	if h := w.Healths.Get(e); h != nil {
		h.Current = def.MaxHealth
		h.IFrames = def.IFrameTicks
	}
	if c := w.Cylinders.Get(e); c != nil {
		c.Rounds = c.Size
		c.ReloadLeft = 0
	}
}

// SpawnEnemy creates a fully initialized enemy of the named archetype at the
// given point. Unknown types are configuration errors and surface loudly.
func (w *World) SpawnEnemy(typeName string, x, y float64) (ecs.Entity, error) {
	def, ok := w.catalog.Enemies[typeName]
	if !ok {
		return ecs.None, fmt.Errorf("sim: unknown enemy type %q", typeName)
	}

	e, err := w.reg.Create()
	if err != nil {
		return ecs.None, err
	}

	x, y = resolveObstaclePenetration(x, y, def.Radius, w.obstacles)
	w.Positions.Set(e, Position{X: x, Y: y, PrevX: x, PrevY: y})
	w.Velocities.Set(e, Velocity{})
	w.Speeds.Set(e, Speed{Value: def.MoveSpeed})
	w.Colliders.Set(e, Collider{Radius: def.Radius, Layer: LayerEnemy})
	w.Healths.Set(e, Health{Current: def.MaxHealth, Max: def.MaxHealth})

	delay := 0
	if def.InitialDelayMax > 0 {
		// Stagger freshly spawned packs so they do not act in lockstep.
		delay = int(w.randomFloat() * float64(def.InitialDelayMax))
	}
	w.Enemies.Set(e, EnemyAI{
		Type:         def.Type,
		Tier:         def.Tier,
		State:        AIIdle,
		Target:       ecs.None,
		InitialDelay: delay,
		Wave:         -1,
	})
	w.Attacks.Set(e, attackStateFromDef(def.Attack))
	w.Steerings.Set(e, Steering{
		StandoffRange:    def.StandoffRange,
		SeparationRadius: def.SeparationRadius,
		SeparationWeight: def.SeparationWeight,
	})
	if len(def.Phases) > 0 {
		w.BossPhases.Set(e, BossPhase{Index: -1})
	}
	return e, nil
}

func attackStateFromDef(def content.AttackDef) AttackState {
	return AttackState{
		Kind:            string(def.Kind),
		TelegraphTicks:  def.TelegraphTicks,
		AttackTicks:     def.AttackTicks,
		RecoveryTicks:   def.RecoveryTicks,
		CooldownTicks:   def.CooldownTicks,
		Damage:          def.Damage,
		Range:           def.Range,
		ProjectileCount: def.ProjectileCount,
		SpreadRadians:   def.SpreadRadians,
		ProjectileSpeed: def.ProjectileSpeed,
		ProjectileDrag:  def.ProjectileDrag,
		ProjectileRange: def.ProjectileRange,
		MeleeRadius:     def.MeleeRadius,
		Knockback:       def.Knockback,
		RushSpeed:       def.RushSpeed,
	}
}

// BulletParams initializes a projectile prefab.
type BulletParams struct {
	Damage     float64
	Speed      float64
	Accel      float64
	Drag       float64
	MaxRange   float64
	Pierce     int
	Layer      uint32
	FromFodder bool
}

// SpawnBullet creates a projectile travelling along the given heading. The
// owner handle is recorded for hit attribution and hook scoping.
func (w *World) SpawnBullet(owner ecs.Entity, x, y, angle float64, params BulletParams) (ecs.Entity, error) {
	e, err := w.reg.Create()
	if err != nil {
		return ecs.None, err
	}

	w.Positions.Set(e, Position{X: x, Y: y, PrevX: x, PrevY: y})
	w.Velocities.Set(e, Velocity{
		X: math.Cos(angle) * params.Speed,
		Y: math.Sin(angle) * params.Speed,
	})
	w.Colliders.Set(e, Collider{Radius: bulletRadius, Layer: params.Layer})
	w.Bullets.Set(e, Bullet{
		Owner:      owner,
		Damage:     params.Damage,
		Accel:      params.Accel,
		Drag:       params.Drag,
		MaxRange:   params.MaxRange,
		Pierce:     params.Pierce,
		FromFodder: params.FromFodder,
	})
	if params.FromFodder {
		w.fodderShots++
	}
	return e, nil
}
