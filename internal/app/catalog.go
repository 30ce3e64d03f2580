package app

import (
	"dust-and-lead/server/internal/content"
	"dust-and-lead/server/stats"
)

// DefaultCatalog is the shipped content set. The simulation core knows
// nothing about any of these; everything below flows through the generic
// definition shapes and formula evaluators.
func DefaultCatalog() *content.Catalog {
	return &content.Catalog{
		Characters: map[string]content.CharacterDef{
			"drifter": {
				Key:          "drifter",
				MaxHealth:    100,
				MoveSpeed:    220,
				Radius:       14,
				RollTicks:    12,
				RollSpeed:    420,
				RollCooldown: 36,
				IFrameTicks:  12,
				Weapon: content.WeaponDef{
					CylinderSize:  6,
					ReloadTicks:   36,
					CooldownTicks: 9,
					Damage:        12,
					BulletSpeed:   640,
					BulletDrag:    0.1,
					BulletRange:   520,
					Pellets:       1,
				},
				Melee: content.MeleeDef{
					Damage:        18,
					Radius:        46,
					Knockback:     160,
					CooldownTicks: 24,
				},
				ShowdownTicks: 45,
				ShowdownRange: 240,
			},
			"deadeye": {
				Key:          "deadeye",
				MaxHealth:    80,
				MoveSpeed:    240,
				Radius:       13,
				RollTicks:    10,
				RollSpeed:    460,
				RollCooldown: 30,
				IFrameTicks:  10,
				Weapon: content.WeaponDef{
					CylinderSize:  2,
					ReloadTicks:   20,
					CooldownTicks: 4,
					Damage:        9,
					BulletSpeed:   720,
					BulletRange:   640,
					Pellets:       3,
					SpreadRadians: 0.22,
				},
				ShowdownTicks: 36,
				ShowdownRange: 300,
			},
		},
		Enemies: map[string]content.EnemyDef{
			"coyote": {
				Type:             "coyote",
				Class:            content.ClassFodder,
				Tier:             1,
				MaxHealth:        24,
				MoveSpeed:        140,
				Radius:           12,
				Cost:             1,
				DetectRange:      460,
				StandoffRange:    180,
				SeparationRadius: 36,
				SeparationWeight: 90,
				InitialDelayMax:  20,
				Attack: content.AttackDef{
					Kind:            content.AttackVolley,
					TelegraphTicks:  12,
					AttackTicks:     4,
					RecoveryTicks:   18,
					CooldownTicks:   54,
					Damage:          6,
					Range:           340,
					ProjectileCount: 1,
					ProjectileSpeed: 320,
					ProjectileRange: 420,
				},
			},
			"dynamite-rat": {
				Type:             "dynamite-rat",
				Class:            content.ClassFodder,
				Tier:             1,
				MaxHealth:        14,
				MoveSpeed:        190,
				Radius:           10,
				Cost:             2,
				DetectRange:      520,
				StandoffRange:    0,
				SeparationRadius: 28,
				SeparationWeight: 70,
				InitialDelayMax:  12,
				Attack: content.AttackDef{
					Kind:           content.AttackMelee,
					TelegraphTicks: 8,
					AttackTicks:    4,
					RecoveryTicks:  20,
					CooldownTicks:  40,
					Damage:         10,
					Range:          40,
					MeleeRadius:    44,
					Knockback:      120,
				},
				FuseTicks:  24,
				FuseDamage: 20,
				FuseRadius: 72,
			},
			"bruiser": {
				Type:             "bruiser",
				Class:            content.ClassThreat,
				Tier:             2,
				MaxHealth:        110,
				MoveSpeed:        120,
				Radius:           20,
				DetectRange:      520,
				StandoffRange:    0,
				SeparationRadius: 48,
				SeparationWeight: 110,
				Attack: content.AttackDef{
					Kind:           content.AttackMelee,
					TelegraphTicks: 14,
					AttackTicks:    6,
					RecoveryTicks:  24,
					CooldownTicks:  66,
					Damage:         16,
					Range:          56,
					MeleeRadius:    62,
					Knockback:      200,
				},
			},
			"gatling-hound": {
				Type:             "gatling-hound",
				Class:            content.ClassThreat,
				Tier:             2,
				MaxHealth:        85,
				MoveSpeed:        150,
				Radius:           16,
				DetectRange:      560,
				StandoffRange:    240,
				SeparationRadius: 44,
				SeparationWeight: 100,
				Attack: content.AttackDef{
					Kind:            content.AttackVolley,
					TelegraphTicks:  16,
					AttackTicks:     8,
					RecoveryTicks:   22,
					CooldownTicks:   72,
					Damage:          7,
					Range:           420,
					ProjectileCount: 5,
					SpreadRadians:   0.5,
					ProjectileSpeed: 360,
					ProjectileRange: 480,
				},
			},
			"el-patron": {
				Type:             "el-patron",
				Class:            content.ClassBoss,
				Tier:             3,
				MaxHealth:        900,
				MoveSpeed:        100,
				Radius:           28,
				DetectRange:      900,
				StandoffRange:    260,
				SeparationRadius: 0,
				SeparationWeight: 0,
				Attack: content.AttackDef{
					Kind:            content.AttackVolley,
					TelegraphTicks:  20,
					AttackTicks:     10,
					RecoveryTicks:   26,
					CooldownTicks:   60,
					Damage:          10,
					Range:           520,
					ProjectileCount: 5,
					SpreadRadians:   0.7,
					ProjectileSpeed: 340,
					ProjectileRange: 560,
				},
				Phases: []content.BossPhaseDef{
					{
						Fraction:    0.66,
						IFrameTicks: 30,
						Attack: content.AttackDef{
							Kind:            content.AttackVolley,
							TelegraphTicks:  16,
							AttackTicks:     10,
							RecoveryTicks:   22,
							CooldownTicks:   48,
							Damage:          11,
							Range:           560,
							ProjectileCount: 9,
							SpreadRadians:   1.1,
							ProjectileSpeed: 360,
							ProjectileRange: 600,
						},
						Reinforcements: []content.ReinforcementDef{{Type: "coyote", Count: 3}},
					},
					{
						Fraction:    0.33,
						IFrameTicks: 30,
						Attack: content.AttackDef{
							Kind:           content.AttackRush,
							TelegraphTicks: 12,
							AttackTicks:    14,
							RecoveryTicks:  20,
							CooldownTicks:  54,
							Damage:         20,
							Range:          480,
							RushSpeed:      520,
						},
						Reinforcements: []content.ReinforcementDef{{Type: "dynamite-rat", Count: 4}},
					},
				},
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
			"dynamite-rounds": {
				Key:      "dynamite-rounds",
				Trigger:  content.TriggerHit,
				Op:       content.OpDamageMult,
				Priority: 20,
				Formula:  stats.Formula{Kind: stats.FormulaLinear, Base: 0.25, Scale: 0.25},
			},
			"bone-drill": {
				Key:      "bone-drill",
				Trigger:  content.TriggerHit,
				Op:       content.OpPierceAdd,
				Priority: 0,
				Formula:  stats.Formula{Kind: stats.FormulaUnique, Base: 1},
			},
			"vulture-feast": {
				Key:     "vulture-feast",
				Trigger: content.TriggerKill,
				Op:      content.OpHeal,
				Formula: stats.Formula{Kind: stats.FormulaHyperbolic, Scale: 0.2, Cap: 12},
			},
			"tanglefoot": {
				Key:      "tanglefoot",
				Trigger:  content.TriggerHit,
				Op:       content.OpStunChance,
				Priority: 40,
				Formula:  stats.Formula{Kind: stats.FormulaCappedChance, Base: 0.1, Scale: 0.08, Cap: 0.45},
			},
			"hair-trigger": {
				Key:      "hair-trigger",
				Trigger:  content.TriggerHit,
				Op:       content.OpRefireChance,
				Priority: 50,
				Formula:  stats.Formula{Kind: stats.FormulaCappedChance, Base: 0.08, Scale: 0.08, Cap: 0.4},
			},
		},
		Run: content.RunDef{
			Stages: []content.StageDef{
				{
					Waves: []content.WaveDef{
						{
							PreDelayTicks: 60,
							Threats:       []content.ThreatSpawn{{Type: "bruiser", Count: 2}},
							FodderPool: []content.FodderPoolEntry{
								{Type: "coyote", Weight: 3},
								{Type: "dynamite-rat", Weight: 1},
							},
							Budget:         16,
							SpawnPerSecond: 1.2,
							AliveCap:       8,
							ClearRatio:     0.5,
						},
						{
							PreDelayTicks: 90,
							Threats: []content.ThreatSpawn{
								{Type: "bruiser", Count: 2},
								{Type: "gatling-hound", Count: 2},
							},
							FodderPool: []content.FodderPoolEntry{
								{Type: "coyote", Weight: 2},
								{Type: "dynamite-rat", Weight: 2},
							},
							Budget:         24,
							SpawnPerSecond: 1.6,
							AliveCap:       10,
							ClearRatio:     0.75,
						},
					},
					ClearingTicks: 90,
					Camp:          true,
				},
				{
					Waves: []content.WaveDef{
						{
							PreDelayTicks:  120,
							Threats:        []content.ThreatSpawn{{Type: "el-patron", Count: 1}},
							FodderPool:     []content.FodderPoolEntry{{Type: "coyote", Weight: 1}},
							Budget:         12,
							SpawnPerSecond: 0.8,
							AliveCap:       6,
							ClearRatio:     1,
						},
					},
					ClearingTicks: 90,
				},
			},
		},
	}
}
