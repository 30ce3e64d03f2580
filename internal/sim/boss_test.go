package sim

import (
	"testing"

	"dust-and-lead/server/internal/ecs"
)

func TestBossPhaseTransition(t *testing.T) {
	w := newTestWorld(t)
	player, err := w.SpawnPlayer("drifter")
	if err != nil {
		t.Fatalf("SpawnPlayer: %v", err)
	}
	placeEntity(t, w, player, 400, 300)
	boss, ai := spawnChasing(t, w, "el-patron", 200, 300)
	ai.Target = player

	bp := w.BossPhases.Get(boss)
	if bp == nil || bp.Index != -1 {
		t.Fatalf("expected phase index -1 before any threshold, got %+v", bp)
	}

	// 400 -> 200 crosses the 0.66 threshold only.
	w.DealDamage(boss, 200, player, "test")
	if bp.Index != 0 {
		t.Fatalf("expected phase 0, got %d", bp.Index)
	}
	if ai.State != AITelegraph {
		t.Fatalf("expected forced telegraph on phase entry, got %v", ai.State)
	}
	atk := w.Attacks.Get(boss)
	if atk.ProjectileCount != 7 {
		t.Fatalf("expected phase-0 attack pattern, projectiles=%d", atk.ProjectileCount)
	}
	h := w.Healths.Get(boss)
	if h.IFrames != 20 {
		t.Fatalf("expected 20 phase i-frames, got %d", h.IFrames)
	}
	if got := len(enemiesOfType(w, "coyote")); got != 2 {
		t.Fatalf("expected 2 reinforcements, got %d", got)
	}
}

func TestBossPhaseIFramesBlockFollowupDamage(t *testing.T) {
	w := newTestWorld(t)
	player, err := w.SpawnPlayer("drifter")
	if err != nil {
		t.Fatalf("SpawnPlayer: %v", err)
	}
	boss, _ := spawnChasing(t, w, "el-patron", 200, 300)

	w.DealDamage(boss, 200, player, "test")
	h := w.Healths.Get(boss)
	if h.Current != 200 {
		t.Fatalf("expected 200 health after phase hit, got %g", h.Current)
	}
	w.DealDamage(boss, 50, player, "test")
	if h.Current != 200 {
		t.Fatalf("i-framed boss still took damage, health %g", h.Current)
	}
}

func TestSingleHitCrossesMultiplePhases(t *testing.T) {
	w := newTestWorld(t)
	player, err := w.SpawnPlayer("drifter")
	if err != nil {
		t.Fatalf("SpawnPlayer: %v", err)
	}
	boss, _ := spawnChasing(t, w, "el-patron", 200, 300)
	bp := w.BossPhases.Get(boss)

	// 400 -> 100 is 25%, under both the 0.66 and 0.33 thresholds. Both
	// phases must fire, including both reinforcement bursts.
	w.DealDamage(boss, 300, player, "test")
	if bp.Index != 1 {
		t.Fatalf("expected phase 1 after crossing both thresholds, got %d", bp.Index)
	}
	atk := w.Attacks.Get(boss)
	if atk.Kind != "rush" {
		t.Fatalf("expected final-phase rush pattern, got %q", atk.Kind)
	}
	if got := len(enemiesOfType(w, "coyote")); got != 5 {
		t.Fatalf("expected 2+3 reinforcements across both phases, got %d", got)
	}
}

func TestBossDeathCreditsKiller(t *testing.T) {
	w := newTestWorld(t)
	player, err := w.SpawnPlayer("drifter")
	if err != nil {
		t.Fatalf("SpawnPlayer: %v", err)
	}
	boss, _ := spawnChasing(t, w, "el-patron", 200, 300)

	var killedBy ecs.Entity
	err = w.Hooks().RegisterKill(HookID{Effect: "bounty", Owner: player}, 0,
		func(_ *World, _, killer ecs.Entity) { killedBy = killer })
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	w.DealDamage(boss, 1000, player, "test")
	SystemHealth(w, TickSeconds)
	if w.reg.Alive(boss) {
		t.Fatal("expected boss destroyed")
	}
	if killedBy != player {
		t.Fatalf("kill hook credited %v, want %v", killedBy, player)
	}
}
