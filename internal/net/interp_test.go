package net

import (
	"testing"

	"dust-and-lead/server/internal/sim"
)

func snapWithEnemy(id uint32, x, y float64) sim.Snapshot {
	return sim.Snapshot{Enemies: []sim.EnemyRecord{{ID: id, Type: "coyote", X: x, Y: y, State: "CHASE"}}}
}

func TestInterpolatorLerpsBetweenSnapshots(t *testing.T) {
	var it Interpolator
	it.Push(snapWithEnemy(3, 100, 100), 1000)
	it.Push(snapWithEnemy(3, 200, 140), 1100)

	alpha := it.Alpha(1050)
	if alpha != 0.5 {
		t.Fatalf("alpha = %g, want 0.5", alpha)
	}
	pts := it.Enemies(alpha)
	if len(pts) != 1 {
		t.Fatalf("enemies = %d, want 1", len(pts))
	}
	if pts[0].X != 150 || pts[0].Y != 120 {
		t.Fatalf("point = (%g, %g), want (150, 120)", pts[0].X, pts[0].Y)
	}
}

func TestInterpolatorClampsAlpha(t *testing.T) {
	var it Interpolator
	it.Push(snapWithEnemy(3, 0, 0), 1000)
	it.Push(snapWithEnemy(3, 10, 0), 1100)

	if got := it.Alpha(900); got != 0 {
		t.Fatalf("alpha before prev = %g, want 0", got)
	}
	if got := it.Alpha(1500); got != 1 {
		t.Fatalf("alpha past cur = %g, want 1", got)
	}
}

func TestInterpolatorNewEntityRendersAtNewestPosition(t *testing.T) {
	var it Interpolator
	it.Push(sim.Snapshot{}, 1000)
	it.Push(snapWithEnemy(9, 320, 240), 1100)

	pts := it.Enemies(0.25)
	if len(pts) != 1 || pts[0].X != 320 || pts[0].Y != 240 {
		t.Fatalf("spawned entity should render at its first known position, got %+v", pts)
	}
}

func TestInterpolatorDropsOutOfOrderSnapshots(t *testing.T) {
	var it Interpolator
	it.Push(snapWithEnemy(3, 100, 0), 1000)
	it.Push(snapWithEnemy(3, 200, 0), 1100)
	it.Push(snapWithEnemy(3, 50, 0), 1050)

	pts := it.Enemies(1)
	if pts[0].X != 200 {
		t.Fatalf("stale snapshot replaced the newest: x = %g", pts[0].X)
	}
}

func TestInterpolatorExcludesLocalPlayer(t *testing.T) {
	snap := sim.Snapshot{Players: []sim.PlayerRecord{
		{ID: 1, X: 10, Y: 10},
		{ID: 2, X: 20, Y: 20},
	}}
	var it Interpolator
	it.Push(snap, 1000)

	pts := it.RemotePlayers(1, 1)
	if len(pts) != 1 || pts[0].ID != 2 {
		t.Fatalf("remote players = %+v, want only id 2", pts)
	}
}
