package sim

import "math"

const (
	ringSampleTries    = 12
	uniformSampleTries = 12
)

// pickSpawnPosition selects a point outside terrain and at a defensible
// distance from every live player. Ring-biased sampling around a player is
// tried first, then relaxed uniform sampling, then an unconditional fallback
// so selection never stalls.
func (d *Director) pickSpawnPosition(w *World) (float64, float64) {
	anchorX, anchorY := w.cfg.Width/2, w.cfg.Height/2
	if anchor := d.spawnAnchor(w); anchor != nil {
		anchorX, anchorY = anchor.X, anchor.Y
	}

	for i := 0; i < ringSampleTries; i++ {
		angle := d.rng.Float64() * 2 * math.Pi
		dist := defaultSpawnRingDist * (0.75 + d.rng.Float64()*0.5)
		x := clamp(anchorX+math.Cos(angle)*dist, 0, w.cfg.Width)
		y := clamp(anchorY+math.Sin(angle)*dist, 0, w.cfg.Height)
		if d.spawnPointOK(w, x, y) {
			return x, y
		}
	}

	for i := 0; i < uniformSampleTries; i++ {
		x := d.rng.Float64() * w.cfg.Width
		y := d.rng.Float64() * w.cfg.Height
		if d.spawnPointOK(w, x, y) {
			return x, y
		}
	}

	return d.rng.Float64() * w.cfg.Width, d.rng.Float64() * w.cfg.Height
}

func (d *Director) spawnAnchor(w *World) *Position {
	for _, e := range w.PlayersOrdered() {
		if !w.AlivePlayerTarget(e) {
			continue
		}
		if pos := w.Positions.Get(e); pos != nil {
			return pos
		}
	}
	return nil
}

func (d *Director) spawnPointOK(w *World, x, y float64) bool {
	if w.insideObstacle(x, y) {
		return false
	}
	for _, e := range w.PlayersOrdered() {
		if !w.AlivePlayerTarget(e) {
			continue
		}
		pos := w.Positions.Get(e)
		if pos == nil {
			continue
		}
		if math.Hypot(pos.X-x, pos.Y-y) < defaultSpawnMinDist {
			return false
		}
	}
	return true
}
