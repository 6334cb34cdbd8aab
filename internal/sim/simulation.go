// Package sim runs the force-directed layout: inverse-square repulsion over
// a spatial grid, springs along edges, gravity toward each location's
// centroid and toward the viewport center.
package sim

import (
	"math"
	"math/rand"

	"github.com/supplynet/scmap/internal/graph"
	"github.com/supplynet/scmap/internal/spatial"
)

// MinDistance substitutes for zero distances in force normalization.
const MinDistance = 1.0

// Simulation owns node positions and velocities between ticks. It is not
// safe for concurrent use; the engine loop is its only caller.
type Simulation struct {
	params Params

	nodes []*graph.Node
	index map[graph.Identity]int
	edges [][2]int
	locOf []int // node -> location group
	nLocs int

	grid   *spatial.Grid
	fx, fy []float64
	sumX   []float64
	sumY   []float64
	sumN   []int

	alpha   float64
	centerX float64
	centerY float64

	dragged      int
	dragX, dragY float64
}

// New returns an empty simulation at full heat.
func New(p Params) *Simulation {
	p = p.withDefaults()
	return &Simulation{
		params:  p,
		index:   make(map[graph.Identity]int),
		grid:    spatial.New(p.CellSize),
		alpha:   1,
		dragged: -1,
	}
}

// Params returns the active parameters.
func (s *Simulation) Params() Params { return s.params }

// Alpha returns the settling factor in [0, 1].
func (s *Simulation) Alpha() float64 { return s.alpha }

// Active reports whether the next Tick will move anything.
func (s *Simulation) Active() bool {
	return s.dragged >= 0 || s.alpha > s.params.MinAlpha
}

// Reheat resets the settling factor to its maximum.
func (s *Simulation) Reheat() { s.alpha = 1 }

// Len returns the number of simulated nodes.
func (s *Simulation) Len() int { return len(s.nodes) }

// SetGraph replaces the simulated population. Node values are used in
// place: the simulation writes X, Y, VX and VY on them every tick. Any drag
// in progress survives when its node is still present.
func (s *Simulation) SetGraph(g *graph.Graph) {
	var draggedID graph.Identity
	if s.dragged >= 0 {
		draggedID = s.nodes[s.dragged].ID
	}

	s.nodes = g.Nodes
	s.index = make(map[graph.Identity]int, len(g.Nodes))
	for i, n := range g.Nodes {
		s.index[n.ID] = i
	}

	s.edges = s.edges[:0]
	for _, e := range g.Edges {
		a, okA := s.index[e.Source]
		b, okB := s.index[e.Target]
		if okA && okB && a != b {
			s.edges = append(s.edges, [2]int{a, b})
		}
	}

	locs := make(map[string]int)
	s.locOf = make([]int, len(g.Nodes))
	for i, n := range g.Nodes {
		id, ok := locs[n.ID.Location]
		if !ok {
			id = len(locs)
			locs[n.ID.Location] = id
		}
		s.locOf[i] = id
	}
	s.nLocs = len(locs)

	s.fx = make([]float64, len(g.Nodes))
	s.fy = make([]float64, len(g.Nodes))
	s.sumX = make([]float64, s.nLocs)
	s.sumY = make([]float64, s.nLocs)
	s.sumN = make([]int, s.nLocs)

	s.dragged = -1
	if !draggedID.IsZero() {
		if i, ok := s.index[draggedID]; ok {
			s.dragged = i
		}
	}
	s.Reheat()
}

// SetParams replaces the tuning and reheats.
func (s *Simulation) SetParams(p Params) {
	p = p.withDefaults()
	if p.CellSize != s.params.CellSize {
		s.grid = spatial.New(p.CellSize)
	}
	s.params = p
	s.Reheat()
}

// SetSpacing changes only the spacing multiplier.
func (s *Simulation) SetSpacing(spacing float64) {
	p := s.params
	p.Spacing = spacing
	s.SetParams(p)
}

// SetCenter moves the center-gravity anchor, normally the viewport center
// in layout coordinates.
func (s *Simulation) SetCenter(x, y float64) {
	if s.centerX == x && s.centerY == y {
		return
	}
	s.centerX, s.centerY = x, y
	s.Reheat()
}

// Center returns the center-gravity anchor.
func (s *Simulation) Center() (x, y float64) { return s.centerX, s.centerY }

// BeginDrag pins the node with identity id under the pointer. It reports
// false when the node is not simulated.
func (s *Simulation) BeginDrag(id graph.Identity) bool {
	i, ok := s.index[id]
	if !ok {
		return false
	}
	s.dragged = i
	n := s.nodes[i]
	s.dragX, s.dragY = n.X, n.Y
	n.VX, n.VY = 0, 0
	if s.alpha < s.params.DragAlpha {
		s.alpha = s.params.DragAlpha
	}
	return true
}

// DragTo moves the pinned node to (x, y) in layout coordinates.
func (s *Simulation) DragTo(x, y float64) {
	if s.dragged < 0 {
		return
	}
	s.dragX, s.dragY = x, y
	n := s.nodes[s.dragged]
	n.X, n.Y = x, y
	n.VX, n.VY = 0, 0
}

// EndDrag releases the pinned node.
func (s *Simulation) EndDrag() {
	s.dragged = -1
}

// Dragging returns the pinned node's identity, if any.
func (s *Simulation) Dragging() (graph.Identity, bool) {
	if s.dragged < 0 {
		return graph.Identity{}, false
	}
	return s.nodes[s.dragged].ID, true
}

// Tick advances the layout one step and reports whether anything moved.
func (s *Simulation) Tick() bool {
	if !s.Active() || len(s.nodes) == 0 {
		return false
	}
	p := s.params

	for i, n := range s.nodes {
		s.sanitize(i, n)
		s.fx[i], s.fy[i] = 0, 0
	}

	s.grid.Reset()
	for i, n := range s.nodes {
		s.grid.Insert(i, n.X, n.Y)
	}

	strength := p.Repulsion * p.Spacing
	cutoff := s.grid.CellSize()
	for i, a := range s.nodes {
		s.grid.Neighbors(a.X, a.Y, func(j int) {
			if j <= i {
				return
			}
			b := s.nodes[j]
			fx, fy := Repulsion(a.X-b.X, a.Y-b.Y, strength, cutoff)
			s.fx[i] += fx
			s.fy[i] += fy
			s.fx[j] -= fx
			s.fy[j] -= fy
		})
	}

	s.applyClusterGravity(p.ClusterGravity)

	for i, n := range s.nodes {
		s.fx[i] += (s.centerX - n.X) * p.CenterGravity
		s.fy[i] += (s.centerY - n.Y) * p.CenterGravity
	}

	rest := p.SpringLength * p.Spacing
	for _, e := range s.edges {
		a, b := s.nodes[e[0]], s.nodes[e[1]]
		fx, fy := Spring(b.X-a.X, b.Y-a.Y, rest, p.SpringStiffness)
		if e[0] != s.dragged {
			s.fx[e[0]] += fx
			s.fy[e[0]] += fy
		}
		if e[1] != s.dragged {
			s.fx[e[1]] -= fx
			s.fy[e[1]] -= fy
		}
	}

	maxSpeed := p.MaxSpeed * s.alpha
	for i, n := range s.nodes {
		if i == s.dragged {
			n.X, n.Y = s.dragX, s.dragY
			n.VX, n.VY = 0, 0
			continue
		}
		vx := (n.VX + s.fx[i]) * p.Damping
		vy := (n.VY + s.fy[i]) * p.Damping
		if speed := math.Hypot(vx, vy); speed > maxSpeed {
			if speed > 0 && !math.IsInf(speed, 0) {
				vx, vy = vx/speed*maxSpeed, vy/speed*maxSpeed
			} else {
				vx, vy = 0, 0
			}
		}
		n.VX, n.VY = vx, vy
		n.X += vx
		n.Y += vy
		s.sanitize(i, n)
	}

	if s.dragged >= 0 {
		if s.alpha < p.DragAlpha {
			s.alpha = p.DragAlpha
		}
	} else {
		s.alpha *= 1 - p.AlphaDecay
	}
	return true
}

func (s *Simulation) applyClusterGravity(k float64) {
	if k == 0 || s.nLocs == 0 {
		return
	}
	for g := range s.sumN {
		s.sumX[g], s.sumY[g], s.sumN[g] = 0, 0, 0
	}
	for i, n := range s.nodes {
		g := s.locOf[i]
		s.sumX[g] += n.X
		s.sumY[g] += n.Y
		s.sumN[g]++
	}
	for i, n := range s.nodes {
		g := s.locOf[i]
		if s.sumN[g] < 2 {
			continue
		}
		cnt := float64(s.sumN[g])
		s.fx[i] += (s.sumX[g]/cnt - n.X) * k
		s.fy[i] += (s.sumY[g]/cnt - n.Y) * k
	}
}

// sanitize resets a node whose position or velocity stopped being finite,
// spreading reset nodes around the center so they do not coincide.
func (s *Simulation) sanitize(i int, n *graph.Node) {
	if !finite(n.VX) || !finite(n.VY) {
		n.VX, n.VY = 0, 0
	}
	if !finite(n.X) || !finite(n.Y) {
		angle := float64(i) * 2.399963 // golden angle
		n.X = s.centerX + math.Cos(angle)*MinDistance*float64(i+1)
		n.Y = s.centerY + math.Sin(angle)*MinDistance*float64(i+1)
		n.VX, n.VY = 0, 0
	}
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Repulsion returns the force on a node offset by (dx, dy) from another
// node: strength/d² along the offset, zero at or beyond cutoff. Coincident
// nodes are treated as MinDistance apart along +x.
func Repulsion(dx, dy, strength, cutoff float64) (fx, fy float64) {
	d2 := dx*dx + dy*dy
	if d2 >= cutoff*cutoff {
		return 0, 0
	}
	if d2 < MinDistance*MinDistance {
		if d2 == 0 {
			dx, dy = MinDistance, 0
		}
		d := math.Sqrt(dx*dx + dy*dy)
		dx, dy = dx/d*MinDistance, dy/d*MinDistance
		d2 = MinDistance * MinDistance
	}
	d := math.Sqrt(d2)
	f := strength / d2
	return f * dx / d, f * dy / d
}

// Spring returns the force on the source end of an edge whose target is at
// offset (dx, dy): stiffness times the deviation from rest, toward the
// target when stretched and away when compressed.
func Spring(dx, dy, rest, stiffness float64) (fx, fy float64) {
	d := math.Hypot(dx, dy)
	if d < MinDistance {
		if d == 0 {
			dx, dy = MinDistance, 0
		} else {
			dx, dy = dx/d*MinDistance, dy/d*MinDistance
		}
		d = MinDistance
	}
	f := stiffness * (d - rest)
	return f * dx / d, f * dy / d
}

// RandomPlacer places new nodes uniformly inside the given layout rectangle.
func RandomPlacer(r *rand.Rand, minX, minY, maxX, maxY float64) graph.Placer {
	return func(graph.Identity) (float64, float64) {
		return minX + r.Float64()*(maxX-minX), minY + r.Float64()*(maxY-minY)
	}
}
