// Package content declares the static-definition shapes the simulation
// consumes: enemy stat blocks, wave and stage layouts, item and character
// definitions. The shapes live here; the concrete tables are supplied by the
// embedding application (or test fixtures) and validated at world construction.
package content

import (
	"fmt"

	"dust-and-lead/server/stats"
)

// EnemyClass separates budget-limited fodder from finite, wave-gating threats.
type EnemyClass string

const (
	ClassFodder EnemyClass = "fodder"
	ClassThreat EnemyClass = "threat"
	ClassBoss   EnemyClass = "boss"
)

// AttackKind selects the attack resolution an enemy commits to after its
// telegraph expires.
type AttackKind string

const (
	// AttackVolley fires a fan of projectiles along the locked aim heading.
	AttackVolley AttackKind = "volley"
	// AttackMelee damages and knocks back a target reached within range.
	AttackMelee AttackKind = "melee"
	// AttackRush charges along the locked vector dealing contact damage.
	AttackRush AttackKind = "rush"
)

// AttackDef carries the tunable constants of one attack pattern. Durations are
// tick counts so the values are exact under the fixed timestep.
type AttackDef struct {
	Kind            AttackKind `json:"kind"`
	TelegraphTicks  int        `json:"telegraphTicks"`
	AttackTicks     int        `json:"attackTicks"`
	RecoveryTicks   int        `json:"recoveryTicks"`
	CooldownTicks   int        `json:"cooldownTicks"`
	Damage          float64    `json:"damage"`
	Range           float64    `json:"range"`
	ProjectileCount int        `json:"projectileCount,omitempty"`
	SpreadRadians   float64    `json:"spreadRadians,omitempty"`
	ProjectileSpeed float64    `json:"projectileSpeed,omitempty"`
	ProjectileDrag  float64    `json:"projectileDrag,omitempty"`
	ProjectileRange float64    `json:"projectileRange,omitempty"`
	MeleeRadius     float64    `json:"meleeRadius,omitempty"`
	Knockback       float64    `json:"knockback,omitempty"`
	RushSpeed       float64    `json:"rushSpeed,omitempty"`
}

// ReinforcementDef is a one-time spawn burst attached to a boss phase.
type ReinforcementDef struct {
	Type  string `json:"type"`
	Count int    `json:"count"`
}

// BossPhaseDef re-tunes the attack constants once health drops to or below
// Fraction of max. Phases are ordered by descending fraction.
type BossPhaseDef struct {
	Fraction       float64            `json:"fraction"`
	Attack         AttackDef          `json:"attack"`
	IFrameTicks    int                `json:"iframeTicks"`
	Reinforcements []ReinforcementDef `json:"reinforcements,omitempty"`
}

// EnemyDef is one enemy archetype's stat block.
type EnemyDef struct {
	Type             string         `json:"type"`
	Class            EnemyClass     `json:"class"`
	Tier             int            `json:"tier"`
	MaxHealth        float64        `json:"maxHealth"`
	MoveSpeed        float64        `json:"moveSpeed"`
	Radius           float64        `json:"radius"`
	Cost             float64        `json:"cost,omitempty"`
	DetectRange      float64        `json:"detectRange"`
	StandoffRange    float64        `json:"standoffRange"`
	SeparationRadius float64        `json:"separationRadius"`
	SeparationWeight float64        `json:"separationWeight"`
	InitialDelayMax  int            `json:"initialDelayMax,omitempty"`
	Attack           AttackDef      `json:"attack"`
	Phases           []BossPhaseDef `json:"phases,omitempty"`

	// Self-destruct charge left behind on death when FuseTicks > 0.
	FuseTicks  int     `json:"fuseTicks,omitempty"`
	FuseDamage float64 `json:"fuseDamage,omitempty"`
	FuseRadius float64 `json:"fuseRadius,omitempty"`
}

// FodderPoolEntry weights one fodder type inside a wave's pool.
type FodderPoolEntry struct {
	Type   string  `json:"type"`
	Weight float64 `json:"weight"`
}

// ThreatSpawn places Count threats of one type at wave start.
type ThreatSpawn struct {
	Type  string `json:"type"`
	Count int    `json:"count"`
}

// WaveDef configures a single wave of an encounter.
type WaveDef struct {
	PreDelayTicks  int               `json:"preDelayTicks"`
	Threats        []ThreatSpawn     `json:"threats"`
	FodderPool     []FodderPoolEntry `json:"fodderPool"`
	Budget         float64           `json:"budget"`
	SpawnPerSecond float64           `json:"spawnPerSecond"`
	AliveCap       int               `json:"aliveCap"`
	ClearRatio     float64           `json:"clearRatio"`
}

// StageDef wraps the waves of one stage plus its post-clear phases.
type StageDef struct {
	Waves         []WaveDef `json:"waves"`
	ClearingTicks int       `json:"clearingTicks"`
	Camp          bool      `json:"camp"`
}

// RunDef is a full multi-stage run.
type RunDef struct {
	Stages []StageDef `json:"stages"`
}

// EffectOp enumerates the generic operations an item hook may perform. The
// core implements only these; which items exist and how they scale is content.
type EffectOp string

const (
	// OpDamageAdd adds the formula value to the hit's damage.
	OpDamageAdd EffectOp = "damageAdd"
	// OpDamageMult multiplies the hit's damage by 1 + formula value.
	OpDamageMult EffectOp = "damageMult"
	// OpPierceAdd grants the bullet extra pierce on hit.
	OpPierceAdd EffectOp = "pierceAdd"
	// OpHeal restores formula-value health to the owning player.
	OpHeal EffectOp = "heal"
	// OpStunChance rolls formula-value chance to stun the struck enemy.
	OpStunChance EffectOp = "stunChance"
	// OpRefireChance rolls formula-value chance to fire the owner's weapon a
	// second time; re-entrancy guarded so it cannot trigger itself.
	OpRefireChance EffectOp = "refireChance"
)

// TriggerKind names the hook an item effect listens on.
type TriggerKind string

const (
	TriggerHit          TriggerKind = "onHit"
	TriggerKill         TriggerKind = "onKill"
	TriggerRollEnd      TriggerKind = "onRollEnd"
	TriggerDodge        TriggerKind = "onDodge"
	TriggerHealthChange TriggerKind = "onHealthChange"
)

// ItemDef binds one effect key to a trigger, an operation, and a scaling
// formula. Priority orders it among simultaneous effects on the same trigger.
type ItemDef struct {
	Key      string        `json:"key"`
	Trigger  TriggerKind   `json:"trigger"`
	Op       EffectOp      `json:"op"`
	Priority int           `json:"priority"`
	Formula  stats.Formula `json:"formula"`
}

// WeaponDef is a character's sidearm configuration.
type WeaponDef struct {
	CylinderSize  int     `json:"cylinderSize"`
	ReloadTicks   int     `json:"reloadTicks"`
	CooldownTicks int     `json:"cooldownTicks"`
	Damage        float64 `json:"damage"`
	BulletSpeed   float64 `json:"bulletSpeed"`
	BulletDrag    float64 `json:"bulletDrag"`
	BulletRange   float64 `json:"bulletRange"`
	Pellets       int     `json:"pellets"`
	SpreadRadians float64 `json:"spreadRadians,omitempty"`
}

// MeleeDef is an optional close-range sidearm; zero Damage disables it.
type MeleeDef struct {
	Damage        float64 `json:"damage"`
	Radius        float64 `json:"radius"`
	Knockback     float64 `json:"knockback"`
	CooldownTicks int     `json:"cooldownTicks"`
}

// CharacterDef is a playable character's stat block.
type CharacterDef struct {
	Key           string    `json:"key"`
	MaxHealth     float64   `json:"maxHealth"`
	MoveSpeed     float64   `json:"moveSpeed"`
	Radius        float64   `json:"radius"`
	RollTicks     int       `json:"rollTicks"`
	RollSpeed     float64   `json:"rollSpeed"`
	RollCooldown  int       `json:"rollCooldown"`
	IFrameTicks   int       `json:"iframeTicks"`
	Weapon        WeaponDef `json:"weapon"`
	Melee         MeleeDef  `json:"melee,omitempty"`
	ShowdownTicks int       `json:"showdownTicks,omitempty"`
	ShowdownRange float64   `json:"showdownRange,omitempty"`
}

// Catalog aggregates the definition tables a world consumes.
type Catalog struct {
	Enemies    map[string]EnemyDef
	Items      map[string]ItemDef
	Characters map[string]CharacterDef
	Run        RunDef
}

// Validate fails fast on malformed content: unknown references and senseless
// stat blocks are content bugs and never reach a running match.
func (c *Catalog) Validate() error {
	if c == nil {
		return fmt.Errorf("content: nil catalog")
	}
	for key, enemy := range c.Enemies {
		if key != enemy.Type {
			return fmt.Errorf("content: enemy %q keyed as %q", enemy.Type, key)
		}
		if enemy.MaxHealth <= 0 {
			return fmt.Errorf("content: enemy %q has non-positive max health", key)
		}
		if enemy.Radius <= 0 {
			return fmt.Errorf("content: enemy %q has non-positive radius", key)
		}
		if enemy.Class == ClassFodder && enemy.Cost <= 0 {
			return fmt.Errorf("content: fodder %q needs a positive budget cost", key)
		}
		for i := 1; i < len(enemy.Phases); i++ {
			if enemy.Phases[i].Fraction >= enemy.Phases[i-1].Fraction {
				return fmt.Errorf("content: boss %q phase fractions must descend", key)
			}
		}
	}
	for key, item := range c.Items {
		if key != item.Key {
			return fmt.Errorf("content: item %q keyed as %q", item.Key, key)
		}
		if err := item.Formula.Validate(); err != nil {
			return fmt.Errorf("content: item %q: %w", key, err)
		}
	}
	for _, stage := range c.Run.Stages {
		for wi, wave := range stage.Waves {
			if wave.ClearRatio < 0 || wave.ClearRatio > 1 {
				return fmt.Errorf("content: wave %d clear ratio %g outside [0,1]", wi, wave.ClearRatio)
			}
			for _, threat := range wave.Threats {
				if _, ok := c.Enemies[threat.Type]; !ok {
					return fmt.Errorf("content: wave %d references unknown threat %q", wi, threat.Type)
				}
			}
			for _, entry := range wave.FodderPool {
				if _, ok := c.Enemies[entry.Type]; !ok {
					return fmt.Errorf("content: wave %d pool references unknown fodder %q", wi, entry.Type)
				}
			}
		}
	}
	return nil
}
