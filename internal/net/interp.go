package net

import "dust-and-lead/server/internal/sim"

// interpDelayMillis is how far behind the estimated server clock remote
// entities are rendered, so there is almost always a newer snapshot to
// interpolate toward.
const interpDelayMillis = 100

// RemotePoint is an interpolated render position for a remote entity.
type RemotePoint struct {
	ID   uint32
	X, Y float64
}

// Interpolator renders remote entities between the two most recent
// snapshots. Remote entities are never replayed or predicted; they only ever
// move along the line between their last two authoritative positions.
type Interpolator struct {
	prev, cur         sim.Snapshot
	prevTime, curTime float64
	count             int
}

// Push records a snapshot stamped with its server time in milliseconds.
// Out-of-order arrivals are dropped.
func (it *Interpolator) Push(s sim.Snapshot, serverTime float64) {
	if it.count > 0 && serverTime <= it.curTime {
		return
	}
	it.prev, it.prevTime = it.cur, it.curTime
	it.cur, it.curTime = s, serverTime
	it.count++
}

// Alpha maps a server-clock render time onto [0,1] between the two held
// snapshots. Callers derive renderTime from ClockSync minus the interp delay.
func (it *Interpolator) Alpha(renderTime float64) float64 {
	if it.count < 2 || it.curTime <= it.prevTime {
		return 1
	}
	a := (renderTime - it.prevTime) / (it.curTime - it.prevTime)
	if a < 0 {
		return 0
	}
	if a > 1 {
		return 1
	}
	return a
}

// Enemies returns interpolated positions for every enemy in the newest
// snapshot. Entities without a previous sample render at their newest
// position outright.
func (it *Interpolator) Enemies(alpha float64) []RemotePoint {
	if it.count == 0 {
		return nil
	}
	prevPos := make(map[uint32][2]float64, len(it.prev.Enemies))
	if it.count >= 2 {
		for _, rec := range it.prev.Enemies {
			prevPos[rec.ID] = [2]float64{rec.X, rec.Y}
		}
	}
	out := make([]RemotePoint, 0, len(it.cur.Enemies))
	for _, rec := range it.cur.Enemies {
		out = append(out, lerpPoint(rec.ID, prevPos, rec.X, rec.Y, alpha))
	}
	return out
}

// Bullets returns interpolated positions for every bullet in the newest
// snapshot.
func (it *Interpolator) Bullets(alpha float64) []RemotePoint {
	if it.count == 0 {
		return nil
	}
	prevPos := make(map[uint32][2]float64, len(it.prev.Bullets))
	if it.count >= 2 {
		for _, rec := range it.prev.Bullets {
			prevPos[rec.ID] = [2]float64{rec.X, rec.Y}
		}
	}
	out := make([]RemotePoint, 0, len(it.cur.Bullets))
	for _, rec := range it.cur.Bullets {
		out = append(out, lerpPoint(rec.ID, prevPos, rec.X, rec.Y, alpha))
	}
	return out
}

// RemotePlayers returns interpolated positions for every player except the
// excluded (local) one.
func (it *Interpolator) RemotePlayers(localID uint32, alpha float64) []RemotePoint {
	if it.count == 0 {
		return nil
	}
	prevPos := make(map[uint32][2]float64, len(it.prev.Players))
	if it.count >= 2 {
		for _, rec := range it.prev.Players {
			prevPos[rec.ID] = [2]float64{rec.X, rec.Y}
		}
	}
	out := make([]RemotePoint, 0, len(it.cur.Players))
	for _, rec := range it.cur.Players {
		if rec.ID == localID {
			continue
		}
		out = append(out, lerpPoint(rec.ID, prevPos, rec.X, rec.Y, alpha))
	}
	return out
}

func lerpPoint(id uint32, prevPos map[uint32][2]float64, x, y, alpha float64) RemotePoint {
	if p, ok := prevPos[id]; ok {
		return RemotePoint{ID: id, X: p[0] + (x-p[0])*alpha, Y: p[1] + (y-p[1])*alpha}
	}
	return RemotePoint{ID: id, X: x, Y: y}
}
