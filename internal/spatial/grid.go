// Package spatial implements the uniform-grid broadphase. The grid is rebuilt
// once per tick from component data and queried at cell resolution; callers
// always perform their own exact distance tests.
package spatial

import (
	"fmt"
	"math"

	"dust-and-lead/server/internal/ecs"
)

// Grid buckets entities into uniform cells via a three-pass counting sort.
// All storage is allocated at construction; Rebuild never reallocates.
type Grid struct {
	cellSize float64
	invCell  float64
	width    float64
	height   float64
	cols     int
	rows     int

	counts  []int32
	starts  []int32
	cursor  []int32
	cellOf  []int32
	entries []ecs.Entity
	count   int
}

// NewGrid sizes a grid for the given bounds, cell size, and entity capacity.
func NewGrid(width, height, cellSize float64, capacity int) (*Grid, error) {
	if width <= 0 || height <= 0 || cellSize <= 0 {
		return nil, fmt.Errorf("spatial: invalid grid bounds %gx%g cell %g", width, height, cellSize)
	}
	if capacity <= 0 {
		return nil, fmt.Errorf("spatial: invalid grid capacity %d", capacity)
	}
	cols := int(math.Ceil(width / cellSize))
	rows := int(math.Ceil(height / cellSize))
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}
	cellCount := cols * rows
	return &Grid{
		cellSize: cellSize,
		invCell:  1.0 / cellSize,
		width:    width,
		height:   height,
		cols:     cols,
		rows:     rows,
		counts:   make([]int32, cellCount),
		starts:   make([]int32, cellCount+1),
		cursor:   make([]int32, cellCount),
		cellOf:   make([]int32, capacity),
		entries:  make([]ecs.Entity, capacity),
	}, nil
}

// CellSize returns the configured cell edge length.
func (g *Grid) CellSize() float64 { return g.cellSize }

// Rebuild recomputes the flat entry array from the given entities and their
// positions: count per cell, prefix-sum to offsets, scatter. Entities beyond
// the construction capacity are ignored; out-of-bounds positions clamp to the
// nearest edge cell.
func (g *Grid) Rebuild(entities []ecs.Entity, position func(ecs.Entity) (float64, float64)) {
	n := len(entities)
	if n > len(g.entries) {
		n = len(g.entries)
	}
	g.count = n

	for i := range g.counts {
		g.counts[i] = 0
	}

	for i := 0; i < n; i++ {
		x, y := position(entities[i])
		cell := int32(g.cellIndex(x, y))
		g.cellOf[i] = cell
		g.counts[cell]++
	}

	var sum int32
	for i := range g.counts {
		g.starts[i] = sum
		g.cursor[i] = sum
		sum += g.counts[i]
	}
	g.starts[len(g.counts)] = sum

	for i := 0; i < n; i++ {
		cell := g.cellOf[i]
		g.entries[g.cursor[cell]] = entities[i]
		g.cursor[cell]++
	}
}

// QueryRadius visits every entity bucketed into a cell overlapping the
// axis-aligned square around (x, y) with half-extent r. Candidates are
// cell-resolution: the visitor receives entities outside the exact circle and
// must filter with its own distance test.
func (g *Grid) QueryRadius(x, y, r float64, visit func(ecs.Entity)) {
	if visit == nil || g.count == 0 {
		return
	}
	minCol := g.clampCol(int(math.Floor((x - r) * g.invCell)))
	maxCol := g.clampCol(int(math.Floor((x + r) * g.invCell)))
	minRow := g.clampRow(int(math.Floor((y - r) * g.invCell)))
	maxRow := g.clampRow(int(math.Floor((y + r) * g.invCell)))

	for row := minRow; row <= maxRow; row++ {
		base := row * g.cols
		for col := minCol; col <= maxCol; col++ {
			cell := base + col
			for i := g.starts[cell]; i < g.starts[cell+1]; i++ {
				visit(g.entries[i])
			}
		}
	}
}

// Clear empties the grid without touching capacity. Stage teardown uses this
// so no stale buckets survive a map reset.
func (g *Grid) Clear() {
	g.count = 0
	for i := range g.starts {
		g.starts[i] = 0
	}
}

func (g *Grid) cellIndex(x, y float64) int {
	col := g.clampCol(int(math.Floor(x * g.invCell)))
	row := g.clampRow(int(math.Floor(y * g.invCell)))
	return row*g.cols + col
}

func (g *Grid) clampCol(col int) int {
	if col < 0 {
		return 0
	}
	if col >= g.cols {
		return g.cols - 1
	}
	return col
}

func (g *Grid) clampRow(row int) int {
	if row < 0 {
		return 0
	}
	if row >= g.rows {
		return g.rows - 1
	}
	return row
}
