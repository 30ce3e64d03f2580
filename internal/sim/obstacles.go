package sim

import (
	"math"
	"math/rand"
)

const (
	obstacleMinSize     = 48.0
	obstacleMaxSize     = 120.0
	obstacleSpawnMargin = 80.0
	obstacleCenterClear = 200.0
)

// Obstacle is an axis-aligned solid terrain block.
type Obstacle struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

func (o Obstacle) contains(x, y float64) bool {
	return x >= o.X && x <= o.X+o.W && y >= o.Y && y <= o.Y+o.H
}

// generateObstacles places solid blocks away from the map center so the
// initial player spawn is never walled in. Placement draws only from the
// dedicated terrain stream.
func generateObstacles(rng *rand.Rand, cfg Config) []Obstacle {
	if cfg.ObstacleCount <= 0 {
		return nil
	}
	centerX := cfg.Width / 2
	centerY := cfg.Height / 2
	obstacles := make([]Obstacle, 0, cfg.ObstacleCount)
	for len(obstacles) < cfg.ObstacleCount {
		w := obstacleMinSize + rng.Float64()*(obstacleMaxSize-obstacleMinSize)
		h := obstacleMinSize + rng.Float64()*(obstacleMaxSize-obstacleMinSize)
		x := obstacleSpawnMargin + rng.Float64()*(cfg.Width-2*obstacleSpawnMargin-w)
		y := obstacleSpawnMargin + rng.Float64()*(cfg.Height-2*obstacleSpawnMargin-h)
		if math.Hypot(x+w/2-centerX, y+h/2-centerY) < obstacleCenterClear {
			continue
		}
		obstacles = append(obstacles, Obstacle{X: x, Y: y, W: w, H: h})
	}
	return obstacles
}

// insideObstacle reports whether the point sits inside any solid block.
func (w *World) insideObstacle(x, y float64) bool {
	for _, o := range w.obstacles {
		if o.contains(x, y) {
			return true
		}
	}
	return false
}

// resolveObstaclePenetration pushes a circle out of any block it overlaps,
// along the shallowest axis.
func resolveObstaclePenetration(x, y, radius float64, obstacles []Obstacle) (float64, float64) {
	for _, o := range obstacles {
		nearestX := math.Max(o.X, math.Min(x, o.X+o.W))
		nearestY := math.Max(o.Y, math.Min(y, o.Y+o.H))
		dx := x - nearestX
		dy := y - nearestY
		distSq := dx*dx + dy*dy
		if distSq >= radius*radius {
			continue
		}
		if distSq > 0 {
			dist := math.Sqrt(distSq)
			push := radius - dist
			x += dx / dist * push
			y += dy / dist * push
			continue
		}
		// Center inside the block: exit through the nearest face.
		left := x - o.X
		right := o.X + o.W - x
		top := y - o.Y
		bottom := o.Y + o.H - y
		min := left
		x2, y2 := o.X-radius, y
		if right < min {
			min = right
			x2, y2 = o.X+o.W+radius, y
		}
		if top < min {
			min = top
			x2, y2 = x, o.Y-radius
		}
		if bottom < min {
			x2, y2 = x, o.Y+o.H+radius
		}
		x, y = x2, y2
	}
	return x, y
}
