// Package sim is the deterministic simulation core: one World per match,
// advanced by a fixed-order system pipeline at a fixed tick rate. Given the
// same seed and input sequence, two worlds reproduce identical state
// tick-for-tick, which the reconciliation replay depends on.
package sim

import (
	"fmt"
	"math/rand"

	"dust-and-lead/server/internal/content"
	"dust-and-lead/server/internal/ecs"
	"dust-and-lead/server/internal/spatial"
	"dust-and-lead/server/logging"
)

// BulletHitFunc runs when a specific bullet connects. Keyed by bullet entity
// and pruned exactly when the bullet is removed.
type BulletHitFunc func(w *World, bullet, target ecs.Entity)

// GoldNugget is a collectible dropped by defeated enemies.
type GoldNugget struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Value int     `json:"value"`
}

// MarkZone is a showdown ability zone; enemies inside when it expires take
// the configured damage.
type MarkZone struct {
	Owner     ecs.Entity `json:"-"`
	X         float64    `json:"x"`
	Y         float64    `json:"y"`
	Radius    float64    `json:"radius"`
	Damage    float64    `json:"-"`
	ExpiresAt uint64     `json:"expiresAt"`
}

// FuseCharge is a delayed explosive left behind by self-destructing enemies.
type FuseCharge struct {
	X, Y     float64
	Radius   float64
	Damage   float64
	FuseLeft int
}

type debugSpawn struct {
	Type string
	X, Y float64
}

// World owns all per-match simulation state. It is passed explicitly to every
// system; nothing here is process-global, so concurrent matches coexist.
type World struct {
	cfg       Config
	catalog   *content.Catalog
	publisher logging.Publisher

	reg  *ecs.Registry
	rng  *rand.Rand
	seed string
	tick uint64

	Positions  *ecs.Table[Position]
	Velocities *ecs.Table[Velocity]
	Speeds     *ecs.Table[Speed]
	Colliders  *ecs.Table[Collider]
	Healths    *ecs.Table[Health]
	Players    *ecs.Table[Player]
	Enemies    *ecs.Table[EnemyAI]
	Attacks    *ecs.Table[AttackState]
	Steerings  *ecs.Table[Steering]
	Bullets    *ecs.Table[Bullet]
	BossPhases *ecs.Table[BossPhase]
	Rolls      *ecs.Table[Roll]
	Showdowns  *ecs.Table[Showdown]
	Cylinders  *ecs.Table[Cylinder]
	Melees     *ecs.Table[MeleeWeapon]
	Knockbacks *ecs.Table[Knockback]

	grid     *spatial.Grid
	hooks    *HookRegistry
	director *Director

	obstacles   []Obstacle
	playerOrder []ecs.Entity

	inputs     map[ecs.Entity]InputState
	loadouts   map[ecs.Entity][]ItemStack
	bulletHits map[ecs.Entity]BulletHitFunc
	dodgeSeen  map[ecs.Entity]map[ecs.Entity]struct{}

	nuggets     []GoldNugget
	zones       []MarkZone
	charges     []FuseCharge
	debugSpawns []debugSpawn

	events      FrameEvents
	fodderShots int

	scratch      []ecs.Entity
	enemyScratch []ecs.Entity
}

// NewWorld builds a world from a validated catalog. Catalog or grid problems
// are configuration errors and fail construction outright.
func NewWorld(cfg Config, catalog *content.Catalog, publisher logging.Publisher) (*World, error) {
	cfg = cfg.normalized()
	if catalog == nil {
		return nil, fmt.Errorf("sim: nil content catalog")
	}
	if err := catalog.Validate(); err != nil {
		return nil, err
	}
	if publisher == nil {
		publisher = logging.NopPublisher()
	}

	reg := ecs.NewRegistry(cfg.EntityCapacity)
	grid, err := spatial.NewGrid(cfg.Width, cfg.Height, cfg.CellSize, cfg.EntityCapacity)
	if err != nil {
		return nil, err
	}

	w := &World{
		cfg:       cfg,
		catalog:   catalog,
		publisher: publisher,
		reg:       reg,
		rng:       newDeterministicRNG(cfg.Seed, "world"),
		seed:      cfg.Seed,

		Positions:  ecs.NewTable[Position](reg, BitPosition),
		Velocities: ecs.NewTable[Velocity](reg, BitVelocity),
		Speeds:     ecs.NewTable[Speed](reg, BitSpeed),
		Colliders:  ecs.NewTable[Collider](reg, BitCollider),
		Healths:    ecs.NewTable[Health](reg, BitHealth),
		Players:    ecs.NewTable[Player](reg, BitPlayer),
		Enemies:    ecs.NewTable[EnemyAI](reg, BitEnemyAI),
		Attacks:    ecs.NewTable[AttackState](reg, BitAttack),
		Steerings:  ecs.NewTable[Steering](reg, BitSteering),
		Bullets:    ecs.NewTable[Bullet](reg, BitBullet),
		BossPhases: ecs.NewTable[BossPhase](reg, BitBossPhase),
		Rolls:      ecs.NewTable[Roll](reg, BitRoll),
		Showdowns:  ecs.NewTable[Showdown](reg, BitShowdown),
		Cylinders:  ecs.NewTable[Cylinder](reg, BitCylinder),
		Melees:     ecs.NewTable[MeleeWeapon](reg, BitMeleeWeapon),
		Knockbacks: ecs.NewTable[Knockback](reg, BitKnockback),

		grid:       grid,
		inputs:     make(map[ecs.Entity]InputState),
		loadouts:   make(map[ecs.Entity][]ItemStack),
		bulletHits: make(map[ecs.Entity]BulletHitFunc),
		dodgeSeen:  make(map[ecs.Entity]map[ecs.Entity]struct{}),
	}
	w.hooks = newHookRegistry()
	if len(catalog.Run.Stages) > 0 {
		w.director = newDirector(catalog.Run)
	}
	w.obstacles = generateObstacles(w.subsystemRNG("terrain"), cfg)
	return w, nil
}

func (w *World) subsystemRNG(label string) *rand.Rand {
	return newDeterministicRNG(w.seed, label)
}

func (w *World) Tick() uint64                 { return w.tick }
func (w *World) Seed() string                 { return w.seed }
func (w *World) Config() Config               { return w.cfg }
func (w *World) Registry() *ecs.Registry      { return w.reg }
func (w *World) Grid() *spatial.Grid          { return w.grid }
func (w *World) Hooks() *HookRegistry         { return w.hooks }
func (w *World) Director() *Director          { return w.director }
func (w *World) Catalog() *content.Catalog    { return w.catalog }
func (w *World) Publisher() logging.Publisher { return w.publisher }
func (w *World) Events() *FrameEvents         { return &w.events }
func (w *World) Obstacles() []Obstacle        { return w.obstacles }
func (w *World) Nuggets() []GoldNugget        { return w.nuggets }
func (w *World) Zones() []MarkZone            { return w.zones }
func (w *World) Charges() []FuseCharge        { return w.charges }
func (w *World) ActiveFodderShots() int       { return w.fodderShots }
func (w *World) PlayersOrdered() []ecs.Entity { return w.playerOrder }

// SetInput stages one tick of input for a player entity. The map is drained
// by the input-intent system and cleared when the tick completes.
func (w *World) SetInput(e ecs.Entity, in InputState) {
	if !w.reg.Alive(e) || !w.Players.Has(e) {
		return
	}
	w.inputs[e] = in
}

func (w *World) input(e ecs.Entity) (InputState, bool) {
	in, ok := w.inputs[e]
	return in, ok
}

// beginTick advances the clock and resets the this-tick render event surface.
func (w *World) beginTick() {
	w.tick++
	w.events.reset()
}

// endTick clears the consumed input map.
func (w *World) endTick() {
	for e := range w.inputs {
		delete(w.inputs, e)
	}
}

// DestroyEntity removes an entity and prunes every side table keyed by it.
// A dangling side-table entry is a defect, so this is the only removal path.
func (w *World) DestroyEntity(e ecs.Entity) {
	if !w.reg.Alive(e) {
		return
	}
	if w.Bullets.Has(e) {
		w.removeBulletBookkeeping(e)
	}
	if w.Players.Has(e) {
		w.removePlayerBookkeeping(e)
	}
	w.reg.Destroy(e)
}

func (w *World) removeBulletBookkeeping(e ecs.Entity) {
	if b := w.Bullets.Get(e); b != nil && b.FromFodder {
		w.fodderShots--
		if w.fodderShots < 0 {
			w.fodderShots = 0
		}
	}
	delete(w.bulletHits, e)
	for _, seen := range w.dodgeSeen {
		delete(seen, e)
	}
}

func (w *World) removePlayerBookkeeping(e ecs.Entity) {
	delete(w.inputs, e)
	delete(w.loadouts, e)
	delete(w.dodgeSeen, e)
	w.hooks.UnregisterOwner(e)
	for i, p := range w.playerOrder {
		if p == e {
			w.playerOrder = append(w.playerOrder[:i], w.playerOrder[i+1:]...)
			break
		}
	}
}

// SetBulletHitCallback installs a per-bullet hit callback. It is removed
// exactly when the bullet is removed.
func (w *World) SetBulletHitCallback(bullet ecs.Entity, fn BulletHitFunc) {
	if fn == nil || !w.Bullets.Has(bullet) {
		return
	}
	w.bulletHits[bullet] = fn
}

func (w *World) bulletHitCallback(bullet ecs.Entity) BulletHitFunc {
	return w.bulletHits[bullet]
}

// SpawnCharge queues a delayed-fuse explosive at the given point.
func (w *World) SpawnCharge(x, y, radius, damage float64, fuseTicks int) {
	if fuseTicks <= 0 || radius <= 0 {
		return
	}
	w.charges = append(w.charges, FuseCharge{X: x, Y: y, Radius: radius, Damage: damage, FuseLeft: fuseTicks})
}

// DropNugget queues a gold nugget pickup.
func (w *World) DropNugget(x, y float64, value int) {
	if value <= 0 {
		return
	}
	w.nuggets = append(w.nuggets, GoldNugget{X: x, Y: y, Value: value})
}

// liveEntities refills the world-owned scratch slice with the live handles in
// ascending order. The slice is reused; callers must not retain it.
func (w *World) liveEntities() []ecs.Entity {
	w.scratch = w.reg.AppendLive(w.scratch[:0])
	return w.scratch
}

// EachEnemy visits live enemies in ascending handle order. It keeps its own
// iteration buffer so callers may run it while iterating liveEntities.
func (w *World) EachEnemy(visit func(e ecs.Entity, ai *EnemyAI)) {
	w.enemyScratch = w.reg.AppendLive(w.enemyScratch[:0])
	for _, e := range w.enemyScratch {
		if ai := w.Enemies.Get(e); ai != nil {
			visit(e, ai)
		}
	}
}

// AlivePlayerTarget reports whether a handle is a live, non-dead player.
func (w *World) AlivePlayerTarget(e ecs.Entity) bool {
	if !w.reg.Alive(e) {
		return false
	}
	p := w.Players.Get(e)
	return p != nil && !p.Dead
}
