package sim

import (
	"context"
	"math"

	"dust-and-lead/server/internal/content"
	"dust-and-lead/server/internal/ecs"
	logcombat "dust-and-lead/server/logging/combat"
)

// checkBossPhases runs after every hit on a phased enemy. A single large hit
// can cross more than one threshold; every crossed phase fires in order so no
// reinforcement burst is skipped.
func (w *World) checkBossPhases(e ecs.Entity) {
	bp := w.BossPhases.Get(e)
	ai := w.Enemies.Get(e)
	h := w.Healths.Get(e)
	if bp == nil || ai == nil || h == nil || h.Max <= 0 {
		return
	}
	def, ok := w.catalog.Enemies[ai.Type]
	if !ok || len(def.Phases) == 0 {
		return
	}

	frac := h.Current / h.Max
	for next := bp.Index + 1; next < len(def.Phases); next++ {
		phase := def.Phases[next]
		if frac > phase.Fraction {
			break
		}
		bp.Index = next
		w.enterBossPhase(e, ai, h, next)
	}
}

func (w *World) enterBossPhase(e ecs.Entity, ai *EnemyAI, h *Health, index int) {
	def := w.catalog.Enemies[ai.Type]
	phase := def.Phases[index]

	if atk := w.Attacks.Get(e); atk != nil {
		ready := atk.ReadyAtTick
		*atk = attackStateFromDef(phase.Attack)
		atk.ReadyAtTick = ready
	}
	if phase.IFrameTicks > 0 {
		h.IFrames = phase.IFrameTicks
	}

	// Interrupt whatever the boss was doing and telegraph the new pattern.
	ai.State = AITelegraph
	ai.Timer = phase.Attack.TelegraphTicks
	if tp := w.Positions.Get(ai.Target); tp != nil {
		ai.AimX = tp.X
		ai.AimY = tp.Y
	}

	w.spawnReinforcements(e, ai, phase.Reinforcements)
	logcombat.BossPhase(context.Background(), w.publisher, w.tick, w.entityRef(e), index)
}

func (w *World) spawnReinforcements(boss ecs.Entity, ai *EnemyAI, bursts []content.ReinforcementDef) {
	pos := w.Positions.Get(boss)
	if pos == nil {
		return
	}
	for _, burst := range bursts {
		for i := 0; i < burst.Count; i++ {
			angle := w.randomAngle()
			dist := w.randomDistance(80, 160)
			x := clamp(pos.X+math.Cos(angle)*dist, 0, w.cfg.Width)
			y := clamp(pos.Y+math.Sin(angle)*dist, 0, w.cfg.Height)
			spawned, err := w.SpawnEnemy(burst.Type, x, y)
			if err != nil {
				continue
			}
			if sai := w.Enemies.Get(spawned); sai != nil {
				sai.Wave = ai.Wave
				sai.Target = ai.Target
			}
		}
	}
}
