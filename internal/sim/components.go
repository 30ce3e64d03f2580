package sim

import (
	"dust-and-lead/server/internal/ecs"
)

// Component mask bits. One bit per family; the registry tracks presence.
const (
	BitPosition uint8 = iota
	BitVelocity
	BitSpeed
	BitCollider
	BitHealth
	BitPlayer
	BitEnemyAI
	BitAttack
	BitSteering
	BitBullet
	BitBossPhase
	BitRoll
	BitShowdown
	BitCylinder
	BitMeleeWeapon
	BitKnockback
)

// Collision layers.
const (
	LayerPlayer uint32 = 1 << iota
	LayerEnemy
	LayerPlayerBullet
	LayerEnemyBullet
)

// Position carries the current coordinates plus the previous tick's for
// render interpolation.
type Position struct {
	X, Y         float64
	PrevX, PrevY float64
}

type Velocity struct {
	X, Y float64
}

type Speed struct {
	Value float64
}

type Collider struct {
	Radius float64
	Layer  uint32
}

// Health holds hit points and invulnerability frames. Current is clamped to
// [0, Max] only when death is evaluated; transient negatives signal overkill.
type Health struct {
	Current        float64
	Max            float64
	IFrames        int
	IFrameDuration int
	LastHitBy      ecs.Entity
}

// Player is the per-player control component: aim plus sticky button edge
// flags the input system latches once per tick.
type Player struct {
	Aim       float64
	CursorX   float64
	CursorY   float64
	Character string
	Gold      int
	Dead      bool

	FirePressed   bool
	RollPressed   bool
	ReloadPressed bool
	SkillPressed  bool

	heldButtons uint8
	rollReadyAt uint64
}

// AIState enumerates the enemy behavior states. IDLE is the spawn state;
// there is no terminal state, death removes the component.
type AIState uint8

const (
	AIIdle AIState = iota
	AIChase
	AITelegraph
	AIAttack
	AIRecovery
	AIStunned
	AIFlee
)

func (s AIState) String() string {
	switch s {
	case AIIdle:
		return "idle"
	case AIChase:
		return "chase"
	case AITelegraph:
		return "telegraph"
	case AIAttack:
		return "attack"
	case AIRecovery:
		return "recovery"
	case AIStunned:
		return "stunned"
	case AIFlee:
		return "flee"
	default:
		return "unknown"
	}
}

// EnemyAI drives the behavior state machine. Target is either a live handle
// or ecs.None; systems defend against staleness at the point of use.
type EnemyAI struct {
	Type         string
	Tier         int
	State        AIState
	Timer        int
	Target       ecs.Entity
	InitialDelay int

	// Wave is the director wave index this enemy spawned in, or -1 for
	// administrative spawns. Carryover accounting keys off it.
	Wave int

	// Aim locked once at telegraph entry so mid-telegraph target movement
	// does not retarget the committed attack.
	AimX, AimY float64
}

// AttackState is the per-entity attack configuration plus cooldown clock.
type AttackState struct {
	Kind            string
	TelegraphTicks  int
	AttackTicks     int
	RecoveryTicks   int
	CooldownTicks   int
	Damage          float64
	Range           float64
	ProjectileCount int
	SpreadRadians   float64
	ProjectileSpeed float64
	ProjectileDrag  float64
	ProjectileRange float64
	MeleeRadius     float64
	Knockback       float64
	RushSpeed       float64

	ReadyAtTick uint64
	DidDamage   bool
}

// Steering tunes chase behavior: hold StandoffRange from the target and keep
// SeparationRadius from packmates.
type Steering struct {
	StandoffRange    float64
	SeparationRadius float64
	SeparationWeight float64
}

// Bullet is a live projectile. Travelled accumulates against MaxRange.
type Bullet struct {
	Owner      ecs.Entity
	Damage     float64
	Accel      float64
	Drag       float64
	LifeTicks  int
	Travelled  float64
	MaxRange   float64
	Pierce     int
	FromFodder bool
}

// BossPhase tracks which configured phase index a boss has entered.
type BossPhase struct {
	Index int
}

// Roll is the active dodge-roll state.
type Roll struct {
	TicksLeft  int
	Duration   int
	Speed      float64
	DirX, DirY float64
}

// Showdown is the player's zone-mark ability state.
type Showdown struct {
	Range         float64
	DurationTicks int
	CooldownTicks int
	ReadyAtTick   uint64
}

// Cylinder is the revolver ammo state. Reloading counts down ReloadLeft.
type Cylinder struct {
	Rounds      int
	Size        int
	ReloadTicks int
	ReloadLeft  int
	CooldownAt  uint64
}

// MeleeWeapon is the optional sidearm swing for close range.
type MeleeWeapon struct {
	Damage        float64
	Radius        float64
	Knockback     float64
	CooldownTicks int
	ReadyAtTick   uint64
}

// Knockback is a decaying impulse applied on top of intent velocity.
type Knockback struct {
	X, Y  float64
	Decay float64
}
