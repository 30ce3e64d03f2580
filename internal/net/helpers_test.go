package net

import (
	"testing"

	"dust-and-lead/server/internal/content"
	"dust-and-lead/server/internal/net/proto"
	"dust-and-lead/server/internal/sim"
	"dust-and-lead/server/logging"
	"dust-and-lead/server/stats"
)

func testCatalog() *content.Catalog {
	return &content.Catalog{
		Characters: map[string]content.CharacterDef{
			"drifter": {
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
			},
		},
		Enemies: map[string]content.EnemyDef{
			"coyote": {
				Type:      "coyote",
				Class:     content.ClassFodder,
				MaxHealth: 20,
				MoveSpeed: 120,
				Radius:    12,
				Cost:      1,
				Attack: content.AttackDef{
					Kind:           content.AttackVolley,
					TelegraphTicks: 10,
					AttackTicks:    5,
					RecoveryTicks:  15,
					CooldownTicks:  45,
					Damage:         5,
					Range:          300,
				},
				DetectRange:   400,
				StandoffRange: 160,
			},
		},
		Items: map[string]content.ItemDef{
			"snake-oil": {
				Key:      "snake-oil",
				Trigger:  content.TriggerHit,
				Op:       content.OpDamageAdd,
				Priority: -5,
				Formula:  stats.Formula{Kind: stats.FormulaLinear, Base: 2, Scale: 2},
			},
		},
	}
}

func newTestHub(t *testing.T, cfg HubConfig) *Hub {
	t.Helper()
	world, err := sim.NewWorld(sim.Config{Seed: "net-test"}, testCatalog(), logging.NopPublisher())
	if err != nil {
		t.Fatalf("NewWorld: %v", err)
	}
	return NewHub(world, sim.NewPipeline(), cfg)
}

func newTestClient(t *testing.T, join proto.JoinResponse) *Client {
	t.Helper()
	c, err := NewClient(join, testCatalog())
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return c
}
