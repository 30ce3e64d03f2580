package sim

import (
	"testing"

	"dust-and-lead/server/internal/ecs"
)

func pressButtons(w *World, e ecs.Entity, buttons uint8) {
	w.SetInput(e, InputState{Buttons: buttons})
}

func TestWeaponFireConsumesRounds(t *testing.T) {
	w := newTestWorld(t)
	player, err := w.SpawnPlayer("drifter")
	if err != nil {
		t.Fatalf("SpawnPlayer: %v", err)
	}
	p := NewGameplayPipeline()

	pressButtons(w, player, ButtonFire)
	p.Step(w, TickSeconds)

	cyl := w.Cylinders.Get(player)
	if cyl.Rounds != 5 {
		t.Fatalf("expected 5 rounds after one shot, got %d", cyl.Rounds)
	}
	if len(w.Events().Fired) != 1 {
		t.Fatalf("expected one fired event, got %d", len(w.Events().Fired))
	}

	bullets := 0
	for _, e := range w.reg.AppendLive(nil) {
		if w.Bullets.Has(e) {
			bullets++
		}
	}
	if bullets != 1 {
		t.Fatalf("expected one bullet spawned, got %d", bullets)
	}
}

func TestDryFireStartsReload(t *testing.T) {
	w := newTestWorld(t)
	player, err := w.SpawnPlayer("drifter")
	if err != nil {
		t.Fatalf("SpawnPlayer: %v", err)
	}
	cyl := w.Cylinders.Get(player)
	cyl.Rounds = 0

	p := NewGameplayPipeline()
	pressButtons(w, player, ButtonFire)
	p.Step(w, TickSeconds)

	if len(w.Events().DryFired) != 1 {
		t.Fatal("expected dry-fire event")
	}
	if cyl.ReloadLeft == 0 {
		t.Fatal("expected dry fire to start a reload")
	}

	// Ride out the reload; the cylinder refills.
	stepTicks(t, p, w, cyl.ReloadTicks+1)
	if cyl.Rounds != cyl.Size {
		t.Fatalf("expected full cylinder after reload, got %d", cyl.Rounds)
	}
}

func TestFireHeldDoesNotAutofire(t *testing.T) {
	w := newTestWorld(t)
	player, err := w.SpawnPlayer("drifter")
	if err != nil {
		t.Fatalf("SpawnPlayer: %v", err)
	}
	p := NewGameplayPipeline()

	for i := 0; i < 10; i++ {
		pressButtons(w, player, ButtonFire)
		p.Step(w, TickSeconds)
	}
	if cyl := w.Cylinders.Get(player); cyl.Rounds != 5 {
		t.Fatalf("held trigger fired repeatedly, rounds=%d", cyl.Rounds)
	}
}

func TestRollGrantsBulletImmunity(t *testing.T) {
	w := newTestWorld(t)
	player, err := w.SpawnPlayer("drifter")
	if err != nil {
		t.Fatalf("SpawnPlayer: %v", err)
	}
	pos := w.Positions.Get(player)

	w.Rolls.Set(player, Roll{TicksLeft: 10, Duration: 10, Speed: 0, DirX: 1})
	bullet, err := w.SpawnBullet(ecs.None, pos.X, pos.Y, 0, BulletParams{
		Damage: 10, Speed: 0, Layer: LayerEnemyBullet,
	})
	if err != nil {
		t.Fatalf("SpawnBullet: %v", err)
	}

	SystemSpatialRebuild(w, TickSeconds)
	SystemBulletCollision(w, TickSeconds)

	if h := w.Healths.Get(player); h.Current != h.Max {
		t.Fatalf("rolling player was hit for %g", h.Max-h.Current)
	}
	if !w.reg.Alive(bullet) {
		t.Fatal("bullet should pass through a rolling player")
	}
}

func TestRollDodgeFiresOncePerBullet(t *testing.T) {
	w := newTestWorld(t)
	player, err := w.SpawnPlayer("drifter")
	if err != nil {
		t.Fatalf("SpawnPlayer: %v", err)
	}
	pos := w.Positions.Get(player)

	dodges := 0
	err = w.Hooks().RegisterRollDodge(HookID{Effect: "grit", Owner: player}, 0,
		func(_ *World, _, _ ecs.Entity) { dodges++ })
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	w.Rolls.Set(player, Roll{TicksLeft: 5, Duration: 5, Speed: 0, DirX: 1})
	if _, err := w.SpawnBullet(ecs.None, pos.X+10, pos.Y, 0, BulletParams{
		Damage: 10, Speed: 0, Layer: LayerEnemyBullet,
	}); err != nil {
		t.Fatalf("SpawnBullet: %v", err)
	}

	SystemSpatialRebuild(w, TickSeconds)
	for i := 0; i < 3; i++ {
		w.detectRollDodges(player)
	}
	if dodges != 1 {
		t.Fatalf("expected a single dodge per bullet, got %d", dodges)
	}
}

func TestPlayerBulletPierces(t *testing.T) {
	w := newTestWorld(t)
	player, err := w.SpawnPlayer("drifter")
	if err != nil {
		t.Fatalf("SpawnPlayer: %v", err)
	}
	a, err := w.SpawnEnemy("coyote", 300, 300)
	if err != nil {
		t.Fatalf("SpawnEnemy: %v", err)
	}
	bullet, err := w.SpawnBullet(player, 300, 300, 0, BulletParams{
		Damage: 5, Speed: 0, Pierce: 1, Layer: LayerPlayerBullet,
	})
	if err != nil {
		t.Fatalf("SpawnBullet: %v", err)
	}

	SystemSpatialRebuild(w, TickSeconds)
	SystemBulletCollision(w, TickSeconds)

	if h := w.Healths.Get(a); h.Current != 15 {
		t.Fatalf("expected 5 damage on first target, health %g", h.Current)
	}
	if !w.reg.Alive(bullet) {
		t.Fatal("piercing bullet destroyed on first hit")
	}
	if b := w.Bullets.Get(bullet); b.Pierce != 0 {
		t.Fatalf("expected pierce decremented to 0, got %d", b.Pierce)
	}
}

func TestBulletExpiresAtMaxRange(t *testing.T) {
	w := newTestWorld(t)
	bullet, err := w.SpawnBullet(ecs.None, 100, 100, 0, BulletParams{
		Damage: 5, Speed: 600, MaxRange: 30, Layer: LayerPlayerBullet,
	})
	if err != nil {
		t.Fatalf("SpawnBullet: %v", err)
	}

	for i := 0; i < 3; i++ {
		SystemBulletAdvance(w, TickSeconds)
	}
	if w.reg.Alive(bullet) {
		t.Fatal("bullet outlived its range")
	}
}

func TestShowdownZoneDamagesAtExpiry(t *testing.T) {
	w := newTestWorld(t)
	player, err := w.SpawnPlayer("drifter")
	if err != nil {
		t.Fatalf("SpawnPlayer: %v", err)
	}
	placeEntity(t, w, player, 400, 400)
	enemy, err := w.SpawnEnemy("coyote", 450, 400)
	if err != nil {
		t.Fatalf("SpawnEnemy: %v", err)
	}
	w.Enemies.Get(enemy).InitialDelay = 0

	w.SetInput(player, InputState{Buttons: ButtonSkill, CursorX: 450, CursorY: 400})
	p := NewGameplayPipeline()
	p.Step(w, TickSeconds)

	if len(w.Zones()) != 1 {
		t.Fatalf("expected one active zone, got %d", len(w.Zones()))
	}
	if h := w.Healths.Get(enemy); h.Current != 20 {
		t.Fatal("zone damaged before expiry")
	}

	sd := w.Showdowns.Get(player)
	stepTicks(t, p, w, sd.DurationTicks+1)
	if len(w.Zones()) != 0 {
		t.Fatal("zone survived past expiry")
	}
	h := w.Healths.Get(enemy)
	if h != nil && h.Current > 20-showdownDamage {
		t.Fatalf("expected %g zone damage, enemy health %g", showdownDamage, h.Current)
	}
}

func TestGoldPickup(t *testing.T) {
	w := newTestWorld(t)
	player, err := w.SpawnPlayer("drifter")
	if err != nil {
		t.Fatalf("SpawnPlayer: %v", err)
	}
	pos := w.Positions.Get(player)
	w.DropNugget(pos.X+10, pos.Y, 5)
	w.DropNugget(pos.X+500, pos.Y, 5)

	SystemPassives(w, TickSeconds)

	if gold := w.Players.Get(player).Gold; gold != 5 {
		t.Fatalf("expected 5 gold picked up, got %d", gold)
	}
	if len(w.Nuggets()) != 1 {
		t.Fatalf("expected the distant nugget to remain, got %d", len(w.Nuggets()))
	}
}

func TestFuseChargeDamagesBothSides(t *testing.T) {
	w := newTestWorld(t)
	player, err := w.SpawnPlayer("drifter")
	if err != nil {
		t.Fatalf("SpawnPlayer: %v", err)
	}
	placeEntity(t, w, player, 400, 400)
	enemy, err := w.SpawnEnemy("coyote", 420, 400)
	if err != nil {
		t.Fatalf("SpawnEnemy: %v", err)
	}

	w.SpawnCharge(410, 400, 60, 8, 2)
	SystemPassives(w, TickSeconds) // fuse 2 -> 1
	SystemPassives(w, TickSeconds) // detonates

	if h := w.Healths.Get(player); h.Current != h.Max-8 {
		t.Fatalf("expected player caught in blast, health %g", h.Current)
	}
	if h := w.Healths.Get(enemy); h.Current != 12 {
		t.Fatalf("expected enemy caught in blast, health %g", h.Current)
	}
	if len(w.Charges()) != 0 {
		t.Fatal("expected charge consumed")
	}
}

func TestKnockbackDecaysAway(t *testing.T) {
	w := newTestWorld(t)
	player, err := w.SpawnPlayer("drifter")
	if err != nil {
		t.Fatalf("SpawnPlayer: %v", err)
	}
	w.ApplyKnockback(player, 200, 0)

	for i := 0; i < 60 && w.Knockbacks.Has(player); i++ {
		SystemMovement(w, TickSeconds)
	}
	if w.Knockbacks.Has(player) {
		t.Fatal("knockback never decayed below the removal threshold")
	}
}

func TestMovementClampsToWorldBounds(t *testing.T) {
	w := newTestWorld(t)
	player, err := w.SpawnPlayer("drifter")
	if err != nil {
		t.Fatalf("SpawnPlayer: %v", err)
	}
	placeEntity(t, w, player, 5, 5)
	vel := w.Velocities.Get(player)
	vel.X, vel.Y = -1000, -1000

	SystemMovement(w, TickSeconds)

	pos := w.Positions.Get(player)
	radius := w.Colliders.Get(player).Radius
	if pos.X < radius || pos.Y < radius {
		t.Fatalf("player escaped bounds at (%g,%g)", pos.X, pos.Y)
	}
}

func TestDebugSpawnQueueDrains(t *testing.T) {
	w := newTestWorld(t)
	w.QueueDebugSpawn("coyote", 200, 200)
	w.QueueDebugSpawn("bruiser", 300, 300)

	SystemDebugSpawns(w, TickSeconds)

	if got := len(enemiesOfType(w, "coyote")) + len(enemiesOfType(w, "bruiser")); got != 2 {
		t.Fatalf("expected 2 debug spawns, got %d", got)
	}
	SystemDebugSpawns(w, TickSeconds)
	if got := len(enemiesOfType(w, "coyote")) + len(enemiesOfType(w, "bruiser")); got != 2 {
		t.Fatal("debug queue did not drain")
	}
}

func TestStalledBulletExpiresByLifetime(t *testing.T) {
	w := newTestWorld(t)
	// Drag this strong zeroes the velocity on the first step, so the bullet
	// can never close its range and only the lifetime cap can cull it.
	bullet, err := w.SpawnBullet(ecs.None, 400, 300, 0, BulletParams{
		Damage: 5, Speed: 300, Drag: 50, MaxRange: 10000, Layer: LayerEnemyBullet,
	})
	if err != nil {
		t.Fatalf("SpawnBullet: %v", err)
	}

	for i := 0; i < maxBulletLifeTicks-1; i++ {
		SystemBulletAdvance(w, TickSeconds)
	}
	if !w.reg.Alive(bullet) {
		t.Fatal("bullet culled before its lifetime elapsed")
	}
	SystemBulletAdvance(w, TickSeconds)
	if w.reg.Alive(bullet) {
		t.Fatal("stalled bullet outlived the lifetime cap")
	}
}
