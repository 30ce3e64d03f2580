package combat

import (
	"context"

	"dust-and-lead/server/logging"
)

const (
	// EventDamage is emitted when an attack deals damage to a target.
	EventDamage logging.EventType = "combat.damage"
	// EventDefeat is emitted when an actor is reduced to zero health.
	EventDefeat logging.EventType = "combat.defeat"
	// EventDodge is emitted when a roll avoids an incoming bullet.
	EventDodge logging.EventType = "combat.dodge"
	// EventBossPhase is emitted when a boss crosses a phase threshold.
	EventBossPhase logging.EventType = "combat.boss_phase"
)

type DamagePayload struct {
	Amount float64 `json:"amount"`
	Source string  `json:"source"`
}

func Damage(ctx context.Context, pub logging.Publisher, tick uint64, actor, target logging.EntityRef, amount float64, source string) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventDamage,
		Tick:     tick,
		Actor:    actor,
		Targets:  []logging.EntityRef{target},
		Severity: logging.SeverityDebug,
		Category: logging.CategoryCombat,
		Payload:  DamagePayload{Amount: amount, Source: source},
	})
}

type DefeatPayload struct {
	Killer string `json:"killer,omitempty"`
}

func Defeat(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, killer string) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventDefeat,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryCombat,
		Payload:  DefeatPayload{Killer: killer},
	})
}

func Dodge(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, bullet logging.EntityRef) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventDodge,
		Tick:     tick,
		Actor:    actor,
		Targets:  []logging.EntityRef{bullet},
		Severity: logging.SeverityDebug,
		Category: logging.CategoryCombat,
	})
}

type BossPhasePayload struct {
	Phase int `json:"phase"`
}

func BossPhase(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, phase int) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventBossPhase,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryCombat,
		Payload:  BossPhasePayload{Phase: phase},
	})
}
