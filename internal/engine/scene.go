// Package engine owns the live graph state and drives it from a single
// frame loop.
package engine

import (
	"math/rand"

	"github.com/supplynet/scmap/internal/graph"
	"github.com/supplynet/scmap/internal/inventory"
	"github.com/supplynet/scmap/internal/render"
	"github.com/supplynet/scmap/internal/sim"
	"github.com/supplynet/scmap/internal/viewport"
)

// Options configures a Scene.
type Options struct {
	Sites    graph.Sites
	Filter   graph.Filter
	Params   sim.Params
	Viewport viewport.Options
	Render   render.Options
	// Seed drives initial placement of new nodes. Zero uses 1.
	Seed int64
}

// DefaultOptions shows everything with default sites and tuning.
func DefaultOptions() Options {
	return Options{
		Sites:  graph.DefaultSites(),
		Filter: graph.DefaultFilter(),
		Params: sim.DefaultParams(),
		Render: render.DefaultOptions(),
	}
}

// Selection describes the focused node for collaborators such as a detail
// panel.
type Selection struct {
	Item     string  `json:"item" yaml:"item"`
	Location string  `json:"location" yaml:"location"`
	Category string  `json:"category" yaml:"category"`
	Current  float64 `json:"current" yaml:"current"`
	Target   float64 `json:"target" yaml:"target"`
	Health   string  `json:"health" yaml:"health"`
	Degree   int     `json:"degree" yaml:"degree"`
}

// SelectionOf describes n.
func SelectionOf(n *graph.Node) Selection {
	return Selection{
		Item:     n.ID.Item,
		Location: n.ID.Location,
		Category: n.Category.String(),
		Current:  n.Current,
		Target:   n.Target,
		Health:   n.Health().String(),
		Degree:   n.Degree,
	}
}

// Stats summarizes the scene.
type Stats struct {
	Nodes        int     `json:"nodes" yaml:"nodes"`
	Edges        int     `json:"edges" yaml:"edges"`
	VisibleNodes int     `json:"visible_nodes" yaml:"visible_nodes"`
	VisibleEdges int     `json:"visible_edges" yaml:"visible_edges"`
	Focus        string  `json:"focus,omitempty" yaml:"focus,omitempty"`
	Alpha        float64 `json:"alpha" yaml:"alpha"`
	Active       bool    `json:"active" yaml:"active"`
	Scale        float64 `json:"scale" yaml:"scale"`
	Frames       uint64  `json:"frames" yaml:"frames"`

	Build graph.BuildStats `json:"build" yaml:"build"`
}

// Scene owns the graph, filter, focus, simulation, viewport and renderer.
// It is not safe for concurrent use: run it from a Loop, or from a single
// goroutine in headless tools.
type Scene struct {
	sites    graph.Sites
	full     *graph.Graph
	view     *graph.View
	filter   graph.Filter
	focus    graph.Identity
	hint     graph.Identity
	build    graph.BuildStats
	frames   uint64
	sim      *sim.Simulation
	ctrl     *viewport.Controller
	renderer *render.Renderer
	rng      *rand.Rand

	onSelect    func(sel Selection, ok bool)
	lastEmitted graph.Identity
}

// NewScene returns an empty scene.
func NewScene(opts Options) *Scene {
	seed := opts.Seed
	if seed == 0 {
		seed = 1
	}
	s := &Scene{
		sites:    opts.Sites,
		filter:   opts.Filter,
		sim:      sim.New(opts.Params),
		renderer: render.NewRenderer(opts.Render),
		rng:      rand.New(rand.NewSource(seed)),
	}
	s.ctrl = viewport.NewController(opts.Viewport, s, s)
	s.full = graph.New(nil, nil)
	s.refresh()
	return s
}

// OnSelect registers fn to be called whenever the focused node changes.
func (s *Scene) OnSelect(fn func(sel Selection, ok bool)) { s.onSelect = fn }

// Load rebuilds the graph from records. Nodes that survive the rebuild
// keep their position and velocity; new nodes are scattered over the
// visible area.
func (s *Scene) Load(records []inventory.Record, boms []inventory.BOM) graph.BuildStats {
	next, stats := graph.Build(records, boms, s.sites)
	b := s.ctrl.Visible()
	graph.Reconcile(s.full, next, sim.RandomPlacer(s.rng, b.MinX, b.MinY, b.MaxX, b.MaxY))
	s.full = next
	s.build = stats
	s.refresh()
	return stats
}

// refresh recomputes the view and hands it to the simulation.
func (s *Scene) refresh() {
	s.view = graph.Apply(s.full, s.filter, s.focus)
	s.focus = s.view.Focus
	s.sim.SetGraph(s.view.Graph)
	s.emitSelection()
}

func (s *Scene) emitSelection() {
	if s.focus == s.lastEmitted {
		return
	}
	s.lastEmitted = s.focus
	if s.onSelect != nil {
		s.onSelect(s.Selection())
	}
}

// Graph returns the full, unfiltered graph.
func (s *Scene) Graph() *graph.Graph { return s.full }

// View returns the visible graph.
func (s *Scene) View() *graph.View { return s.view }

// Filter returns the active filter.
func (s *Scene) Filter() graph.Filter { return s.filter }

// SetFilter applies a new category/location filter.
func (s *Scene) SetFilter(f graph.Filter) {
	s.filter = f
	s.refresh()
}

// Focus narrows the view to id's neighborhood. An identity that is not
// visible under the current filter clears focus instead.
func (s *Scene) Focus(id graph.Identity) {
	s.focus = id
	s.refresh()
}

// ClearFocus restores the full filtered view.
func (s *Scene) ClearFocus() {
	if s.focus.IsZero() {
		return
	}
	s.focus = graph.Identity{}
	s.refresh()
}

// FocusHint follows an externally selected item. It only acts when the
// hint changes, so the user can still click elsewhere while a stale hint
// is in effect. A hint that names no node clears focus.
func (s *Scene) FocusHint(item, location string) {
	id := graph.ID(item, location)
	if id == s.hint {
		return
	}
	s.hint = id
	if id.IsZero() {
		s.ClearFocus()
		return
	}
	s.Focus(id)
}

// Selection returns the focused node, if any.
func (s *Scene) Selection() (Selection, bool) {
	n := s.view.Node(s.focus)
	if n == nil {
		return Selection{}, false
	}
	return SelectionOf(n), true
}

// SetSpacing changes the layout spacing multiplier.
func (s *Scene) SetSpacing(v float64) { s.sim.SetSpacing(v) }

// SetParams replaces all simulation parameters.
func (s *Scene) SetParams(p sim.Params) { s.sim.SetParams(p) }

// SetColorMode switches node coloring.
func (s *Scene) SetColorMode(m render.ColorMode) { s.renderer.SetMode(m) }

// ColorMode returns the active node coloring.
func (s *Scene) ColorMode() render.ColorMode { return s.renderer.Options().Mode }

// Resize changes the screen size.
func (s *Scene) Resize(w, h float64) { s.ctrl.Resize(w, h) }

// Size returns the screen size.
func (s *Scene) Size() (w, h float64) { return s.ctrl.Size() }

// Recenter anchors center gravity at the middle of the current view.
func (s *Scene) Recenter() { s.sim.SetCenter(s.ctrl.Center()) }

// Fit frames every visible node.
func (s *Scene) Fit() { s.ctrl.FitNodes(s.view.Nodes) }

// ResetView returns to the default zoom centered on the layout origin.
func (s *Scene) ResetView() { s.ctrl.Reset() }

// Transform returns the current view transform.
func (s *Scene) Transform() viewport.Transform { return s.ctrl.Transform }

// Controller exposes the pointer state machine.
func (s *Scene) Controller() *viewport.Controller { return s.ctrl }

// PointerDown forwards to the viewport controller.
func (s *Scene) PointerDown(x, y float64) { s.ctrl.PointerDown(x, y) }

// PointerMove forwards to the viewport controller.
func (s *Scene) PointerMove(x, y float64) { s.ctrl.PointerMove(x, y) }

// PointerUp forwards to the viewport controller.
func (s *Scene) PointerUp(x, y float64) { s.ctrl.PointerUp(x, y) }

// Wheel forwards to the viewport controller.
func (s *Scene) Wheel(x, y, deltaY float64) { s.ctrl.Wheel(x, y, deltaY) }

// Pick implements viewport.Picker over the visible nodes.
func (s *Scene) Pick(wx, wy float64) (graph.Identity, bool) {
	return viewport.Hit(s.view.Nodes, wx, wy)
}

// BeginDrag implements viewport.Sink.
func (s *Scene) BeginDrag(id graph.Identity) { s.sim.BeginDrag(id) }

// DragTo implements viewport.Sink.
func (s *Scene) DragTo(wx, wy float64) { s.sim.DragTo(wx, wy) }

// EndDrag implements viewport.Sink.
func (s *Scene) EndDrag() { s.sim.EndDrag() }

// Active reports whether the layout is still moving.
func (s *Scene) Active() bool { return s.sim.Active() }

// Step advances the simulation one tick.
func (s *Scene) Step() bool {
	s.frames++
	return s.sim.Tick()
}

// Settle steps until the layout comes to rest or maxTicks is reached, and
// returns the number of ticks run.
func (s *Scene) Settle(maxTicks int) int {
	n := 0
	for n < maxTicks && s.sim.Active() {
		s.Step()
		n++
	}
	return n
}

// Draw renders the current state onto c.
func (s *Scene) Draw(c render.Canvas) render.Stats {
	return s.renderer.Draw(c, render.Frame{View: s.view, Transform: s.ctrl.Transform})
}

// Stats summarizes the scene.
func (s *Scene) Stats() Stats {
	st := Stats{
		Nodes:        s.full.NodeCount(),
		Edges:        s.full.EdgeCount(),
		VisibleNodes: s.view.NodeCount(),
		VisibleEdges: s.view.EdgeCount(),
		Alpha:        s.sim.Alpha(),
		Active:       s.sim.Active(),
		Scale:        s.ctrl.Transform.Scale,
		Frames:       s.frames,
		Build:        s.build,
	}
	if !s.focus.IsZero() {
		st.Focus = s.focus.String()
	}
	return st
}
