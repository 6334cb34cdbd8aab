// Package spatial provides a uniform grid for near-neighbor queries in the
// layout plane.
package spatial

import "math"

// Cell addresses one grid square.
type Cell struct {
	X, Y int
}

// Grid buckets integer handles (node indices) by position. Cell size is
// fixed in layout units and does not depend on zoom. A Grid is meant to be
// reset and refilled every simulation tick; bucket storage of occupied
// cells is reused.
type Grid struct {
	size  float64
	cells map[Cell][]int
	count int
}

// New returns an empty grid. Non-positive sizes fall back to 1.
func New(cellSize float64) *Grid {
	if !(cellSize > 0) {
		cellSize = 1
	}
	return &Grid{size: cellSize, cells: make(map[Cell][]int)}
}

// CellSize returns the grid's cell edge length.
func (g *Grid) CellSize() float64 { return g.size }

// Len returns the number of inserted handles.
func (g *Grid) Len() int { return g.count }

// CellOf returns the cell containing (x, y).
func (g *Grid) CellOf(x, y float64) Cell {
	return Cell{X: int(math.Floor(x / g.size)), Y: int(math.Floor(y / g.size))}
}

// Reset empties the grid. Buckets filled since the previous Reset keep
// their storage; buckets that stayed empty are released, so the grid holds
// at most the cells of the last two fills.
func (g *Grid) Reset() {
	for c, b := range g.cells {
		if len(b) == 0 {
			delete(g.cells, c)
			continue
		}
		g.cells[c] = b[:0]
	}
	g.count = 0
}

// Insert adds handle at (x, y). Non-finite coordinates are ignored.
func (g *Grid) Insert(handle int, x, y float64) {
	if math.IsNaN(x) || math.IsNaN(y) || math.IsInf(x, 0) || math.IsInf(y, 0) {
		return
	}
	c := g.CellOf(x, y)
	g.cells[c] = append(g.cells[c], handle)
	g.count++
}

// Neighbors calls fn for every handle in the 3x3 block of cells centered
// on the cell containing (x, y). Handles farther away than one cell size
// are never visited, though visited handles may be up to two cells away.
func (g *Grid) Neighbors(x, y float64, fn func(handle int)) {
	c := g.CellOf(x, y)
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			for _, h := range g.cells[Cell{X: c.X + dx, Y: c.Y + dy}] {
				fn(h)
			}
		}
	}
}

// Query returns the handles Neighbors would visit.
func (g *Grid) Query(x, y float64) []int {
	var out []int
	g.Neighbors(x, y, func(h int) { out = append(out, h) })
	return out
}
