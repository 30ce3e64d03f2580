package sim

import (
	"fmt"

	"dust-and-lead/server/internal/content"
	"dust-and-lead/server/internal/ecs"
	"dust-and-lead/server/stats"
)

// stunOnHitTicks is how long a stun-proc keeps an enemy locked out.
const stunOnHitTicks = 20

// ApplyLoadout replaces a player's item effects. All hooks previously owned
// by the player are dropped first so reapplying a changed loadout never
// leaves stale registrations behind. Unknown item keys are content bugs and
// fail loudly.
func (w *World) ApplyLoadout(owner ecs.Entity, stacks []ItemStack) error {
	if !w.reg.Alive(owner) || !w.Players.Has(owner) {
		return fmt.Errorf("sim: loadout owner %d is not a player", owner.ID)
	}

	w.hooks.UnregisterOwner(owner)
	for _, stack := range stacks {
		def, ok := w.catalog.Items[stack.Key]
		if !ok {
			w.hooks.UnregisterOwner(owner)
			return fmt.Errorf("sim: unknown item %q", stack.Key)
		}
		if err := w.registerItemEffect(owner, def, stack.Stacks); err != nil {
			w.hooks.UnregisterOwner(owner)
			return err
		}
	}
	w.loadouts[owner] = append([]ItemStack(nil), stacks...)
	return nil
}

func (w *World) registerItemEffect(owner ecs.Entity, def content.ItemDef, stacks int) error {
	id := HookID{Effect: def.Key, Owner: owner}
	value := def.Formula.Eval(stacks)

	switch def.Trigger {
	case content.TriggerHit:
		return w.hooks.RegisterBulletHit(id, def.Priority, w.bulletHitEffect(owner, def, value))
	case content.TriggerKill:
		fn := w.ownerEffect(owner, def, value)
		return w.hooks.RegisterKill(id, def.Priority, func(w *World, victim, killer ecs.Entity) {
			if killer == owner {
				fn(w)
			}
		})
	case content.TriggerRollEnd:
		fn := w.ownerEffect(owner, def, value)
		return w.hooks.RegisterRollEnd(id, def.Priority, func(w *World, player ecs.Entity) {
			if player == owner {
				fn(w)
			}
		})
	case content.TriggerDodge:
		fn := w.ownerEffect(owner, def, value)
		return w.hooks.RegisterRollDodge(id, def.Priority, func(w *World, player, bullet ecs.Entity) {
			if player == owner {
				fn(w)
			}
		})
	case content.TriggerHealthChange:
		fn := w.ownerEffect(owner, def, value)
		return w.hooks.RegisterHealthChanged(id, def.Priority, func(w *World, subject ecs.Entity, delta float64) {
			if subject == owner && delta < 0 {
				fn(w)
			}
		})
	}
	return fmt.Errorf("sim: item %q has unknown trigger %q", def.Key, def.Trigger)
}

// bulletHitEffect builds the on-hit chain entry. Damage and pierce ops
// mutate the shared result so later hooks see earlier adjustments.
func (w *World) bulletHitEffect(owner ecs.Entity, def content.ItemDef, value float64) BulletHitHook {
	apply := w.triggeredOp(owner, def, value)
	return func(w *World, bullet, target ecs.Entity, result *HitResult) {
		b := w.Bullets.Get(bullet)
		if b == nil || b.Owner != owner {
			return
		}
		switch def.Op {
		case content.OpDamageAdd:
			result.Damage += value
		case content.OpDamageMult:
			result.Damage *= 1 + value
		case content.OpPierceAdd:
			result.Pierce += int(value)
		case content.OpStunChance:
			if w.randomFloat() < stats.Clamp(value, 0, 1) {
				w.StunEnemy(target, stunOnHitTicks)
			}
		default:
			apply(w)
		}
	}
}

// ownerEffect builds the value-op body shared by the non-hit triggers.
// Damage and pierce ops have no hit to modify there and do nothing.
func (w *World) ownerEffect(owner ecs.Entity, def content.ItemDef, value float64) func(*World) {
	return w.triggeredOp(owner, def, value)
}

func (w *World) triggeredOp(owner ecs.Entity, def content.ItemDef, value float64) func(*World) {
	switch def.Op {
	case content.OpHeal:
		return func(w *World) {
			w.HealPlayer(owner, value)
		}
	case content.OpRefireChance:
		// Re-entrancy flag: the refire itself can land a hit that walks
		// this same chain again.
		firing := false
		return func(w *World) {
			if firing || value <= 0 {
				return
			}
			if w.randomFloat() >= value {
				return
			}
			firing = true
			w.FireWeapon(owner)
			firing = false
		}
	default:
		return func(*World) {}
	}
}

// HealPlayer restores health up to the cap and reports the change through
// the health-changed chain.
func (w *World) HealPlayer(e ecs.Entity, amount float64) {
	if amount <= 0 || !w.AlivePlayerTarget(e) {
		return
	}
	h := w.Healths.Get(e)
	if h == nil || h.Current >= h.Max {
		return
	}
	prev := h.Current
	h.Current += amount
	if h.Current > h.Max {
		h.Current = h.Max
	}
	w.hooks.FireHealthChanged(w, e, h.Current-prev)
}
