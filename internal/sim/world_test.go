package sim

import (
	"testing"

	"dust-and-lead/server/internal/content"
	"dust-and-lead/server/logging"
	"dust-and-lead/server/stats"
)

func testCharacter() content.CharacterDef {
	return content.CharacterDef{
		Key:          "drifter",
		MaxHealth:    100,
		MoveSpeed:    200,
		Radius:       14,
		RollTicks:    12,
		RollSpeed:    400,
		RollCooldown: 30,
		IFrameTicks:  10,
		Weapon: content.WeaponDef{
			CylinderSize:  6,
			ReloadTicks:   30,
			CooldownTicks: 8,
			Damage:        10,
			BulletSpeed:   600,
			BulletRange:   500,
			Pellets:       1,
		},
		Melee: content.MeleeDef{
			Damage:        15,
			Radius:        40,
			Knockback:     120,
			CooldownTicks: 20,
		},
		ShowdownTicks: 45,
		ShowdownRange: 220,
	}
}

func testEnemies() map[string]content.EnemyDef {
	return map[string]content.EnemyDef{
		"coyote": {
			Type:             "coyote",
			Class:            content.ClassFodder,
			Tier:             0,
			MaxHealth:        20,
			MoveSpeed:        120,
			Radius:           12,
			Cost:             1,
			DetectRange:      400,
			StandoffRange:    160,
			SeparationRadius: 30,
			SeparationWeight: 0.5,
			Attack: content.AttackDef{
				Kind:            content.AttackVolley,
				TelegraphTicks:  10,
				AttackTicks:     5,
				RecoveryTicks:   15,
				CooldownTicks:   45,
				Damage:          5,
				Range:           300,
				ProjectileCount: 1,
				ProjectileSpeed: 300,
				ProjectileRange: 400,
			},
		},
		"bruiser": {
			Type:          "bruiser",
			Class:         content.ClassThreat,
			Tier:          1,
			MaxHealth:     80,
			MoveSpeed:     90,
			Radius:        18,
			DetectRange:   450,
			StandoffRange: 0,
			Attack: content.AttackDef{
				Kind:           content.AttackMelee,
				TelegraphTicks: 12,
				AttackTicks:    6,
				RecoveryTicks:  20,
				CooldownTicks:  60,
				Damage:         12,
				Range:          50,
				MeleeRadius:    55,
				Knockback:      150,
			},
		},
		"el-patron": {
			Type:          "el-patron",
			Class:         content.ClassBoss,
			Tier:          2,
			MaxHealth:     400,
			MoveSpeed:     70,
			Radius:        26,
			DetectRange:   600,
			StandoffRange: 200,
			Attack: content.AttackDef{
				Kind:            content.AttackVolley,
				TelegraphTicks:  15,
				AttackTicks:     8,
				RecoveryTicks:   25,
				CooldownTicks:   70,
				Damage:          8,
				Range:           450,
				ProjectileCount: 5,
				SpreadRadians:   0.8,
				ProjectileSpeed: 280,
				ProjectileRange: 500,
			},
			Phases: []content.BossPhaseDef{
				{
					Fraction: 0.66,
					Attack: content.AttackDef{
						Kind:            content.AttackVolley,
						TelegraphTicks:  12,
						AttackTicks:     8,
						RecoveryTicks:   20,
						CooldownTicks:   55,
						Damage:          10,
						Range:           450,
						ProjectileCount: 7,
						SpreadRadians:   1.2,
						ProjectileSpeed: 300,
						ProjectileRange: 500,
					},
					IFrameTicks:    20,
					Reinforcements: []content.ReinforcementDef{{Type: "coyote", Count: 2}},
				},
				{
					Fraction: 0.33,
					Attack: content.AttackDef{
						Kind:           content.AttackRush,
						TelegraphTicks: 18,
						AttackTicks:    12,
						RecoveryTicks:  25,
						CooldownTicks:  80,
						Damage:         20,
						Range:          500,
						Knockback:      200,
						RushSpeed:      450,
					},
					IFrameTicks:    20,
					Reinforcements: []content.ReinforcementDef{{Type: "coyote", Count: 3}},
				},
			},
		},
	}
}

func testItems() map[string]content.ItemDef {
	return map[string]content.ItemDef{
		"snake-oil": {
			Key:      "snake-oil",
			Trigger:  content.TriggerHit,
			Op:       content.OpDamageAdd,
			Priority: -5,
			Formula:  stats.Formula{Kind: stats.FormulaLinear, Base: 2, Scale: 2},
		},
		"dynamite-rounds": {
			Key:      "dynamite-rounds",
			Trigger:  content.TriggerHit,
			Op:       content.OpDamageMult,
			Priority: 20,
			Formula:  stats.Formula{Kind: stats.FormulaLinear, Base: 0.5, Scale: 0.5},
		},
		"bone-drill": {
			Key:      "bone-drill",
			Trigger:  content.TriggerHit,
			Op:       content.OpPierceAdd,
			Priority: 0,
			Formula:  stats.Formula{Kind: stats.FormulaLinear, Base: 1, Scale: 1},
		},
		"vulture-feast": {
			Key:      "vulture-feast",
			Trigger:  content.TriggerKill,
			Op:       content.OpHeal,
			Priority: 0,
			Formula:  stats.Formula{Kind: stats.FormulaHyperbolic, Scale: 0.2, Cap: 10},
		},
		"tanglefoot": {
			Key:      "tanglefoot",
			Trigger:  content.TriggerHit,
			Op:       content.OpStunChance,
			Priority: 40,
			Formula:  stats.Formula{Kind: stats.FormulaCappedChance, Base: 1, Cap: 1},
		},
		"hair-trigger": {
			Key:      "hair-trigger",
			Trigger:  content.TriggerHit,
			Op:       content.OpRefireChance,
			Priority: 50,
			Formula:  stats.Formula{Kind: stats.FormulaCappedChance, Scale: 0.1, Cap: 0.5},
		},
	}
}

func testCatalog() *content.Catalog {
	return &content.Catalog{
		Enemies:    testEnemies(),
		Items:      testItems(),
		Characters: map[string]content.CharacterDef{"drifter": testCharacter()},
	}
}

func testRunCatalog() *content.Catalog {
	cat := testCatalog()
	cat.Run = content.RunDef{Stages: []content.StageDef{
		{
			Waves: []content.WaveDef{
				{
					PreDelayTicks:  2,
					Threats:        []content.ThreatSpawn{{Type: "bruiser", Count: 4}},
					FodderPool:     []content.FodderPoolEntry{{Type: "coyote", Weight: 1}},
					Budget:         10,
					SpawnPerSecond: 2,
					AliveCap:       6,
					ClearRatio:     0.5,
				},
				{
					PreDelayTicks:  2,
					Threats:        []content.ThreatSpawn{{Type: "bruiser", Count: 2}},
					FodderPool:     []content.FodderPoolEntry{{Type: "coyote", Weight: 1}},
					Budget:         6,
					SpawnPerSecond: 2,
					AliveCap:       4,
					ClearRatio:     1,
				},
			},
			ClearingTicks: 5,
			Camp:          true,
		},
		{
			Waves: []content.WaveDef{
				{
					PreDelayTicks: 2,
					Threats:       []content.ThreatSpawn{{Type: "el-patron", Count: 1}},
					ClearRatio:    1,
				},
			},
			ClearingTicks: 5,
		},
	}}
	return cat
}

func newTestWorld(t *testing.T) *World {
	t.Helper()
	w, err := NewWorld(Config{Seed: "test"}, testCatalog(), logging.NopPublisher())
	if err != nil {
		t.Fatalf("NewWorld: %v", err)
	}
	return w
}

func newTestRunWorld(t *testing.T) *World {
	t.Helper()
	w, err := NewWorld(Config{Seed: "test"}, testRunCatalog(), logging.NopPublisher())
	if err != nil {
		t.Fatalf("NewWorld: %v", err)
	}
	return w
}

func stepTicks(t *testing.T, p *Pipeline, w *World, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		p.Step(w, TickSeconds)
	}
}

func TestNewWorldRejectsBadCatalog(t *testing.T) {
	cat := testCatalog()
	bad := cat.Enemies["coyote"]
	bad.MaxHealth = 0
	cat.Enemies["coyote"] = bad
	if _, err := NewWorld(Config{Seed: "test"}, cat, logging.NopPublisher()); err == nil {
		t.Fatal("expected catalog validation error")
	}
}

func TestSpawnPlayerUnknownCharacter(t *testing.T) {
	w := newTestWorld(t)
	if _, err := w.SpawnPlayer("nobody"); err == nil {
		t.Fatal("expected unknown character error")
	}
}

func TestDestroyEntityPrunesBookkeeping(t *testing.T) {
	w := newTestWorld(t)
	player, err := w.SpawnPlayer("drifter")
	if err != nil {
		t.Fatalf("SpawnPlayer: %v", err)
	}
	if err := w.ApplyLoadout(player, []ItemStack{{Key: "snake-oil", Stacks: 1}}); err != nil {
		t.Fatalf("ApplyLoadout: %v", err)
	}
	if w.Hooks().Count(TriggerBulletHit) != 1 {
		t.Fatalf("expected one bullet-hit hook, got %d", w.Hooks().Count(TriggerBulletHit))
	}

	w.DestroyEntity(player)
	if w.Hooks().Count(TriggerBulletHit) != 0 {
		t.Fatal("expected player hooks to be dropped on destroy")
	}
	if len(w.PlayersOrdered()) != 0 {
		t.Fatal("expected player order to be pruned")
	}
	if w.reg.Alive(player) {
		t.Fatal("expected player handle to be dead")
	}
}

func TestSnapshotAscendingOrder(t *testing.T) {
	w := newTestWorld(t)
	if _, err := w.SpawnPlayer("drifter"); err != nil {
		t.Fatalf("SpawnPlayer: %v", err)
	}
	for i := 0; i < 3; i++ {
		if _, err := w.SpawnEnemy("coyote", 100+float64(i)*50, 100); err != nil {
			t.Fatalf("SpawnEnemy: %v", err)
		}
	}
	snap := w.Snapshot()
	if len(snap.Players) != 1 || len(snap.Enemies) != 3 {
		t.Fatalf("unexpected snapshot counts: %d players %d enemies", len(snap.Players), len(snap.Enemies))
	}
	for i := 1; i < len(snap.Enemies); i++ {
		if snap.Enemies[i-1].ID >= snap.Enemies[i].ID {
			t.Fatalf("enemy records not ascending: %d then %d", snap.Enemies[i-1].ID, snap.Enemies[i].ID)
		}
	}
}
