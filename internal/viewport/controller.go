package viewport

import (
	"math"

	"github.com/supplynet/scmap/internal/graph"
)

// State is the pointer interaction mode.
type State int

const (
	Idle State = iota
	Panning
	DraggingNode
)

func (s State) String() string {
	switch s {
	case Panning:
		return "panning"
	case DraggingNode:
		return "dragging"
	default:
		return "idle"
	}
}

// Picker hit-tests layout space.
type Picker interface {
	// Pick returns the node whose radius contains (wx, wy).
	Pick(wx, wy float64) (graph.Identity, bool)
}

// Sink receives the simulation and focus mutations pointer input causes.
type Sink interface {
	BeginDrag(id graph.Identity)
	DragTo(wx, wy float64)
	EndDrag()
	Focus(id graph.Identity)
	ClearFocus()
}

// Options configures a Controller. Zero fields take defaults.
type Options struct {
	MinScale       float64 `yaml:"min_scale" json:"min_scale"`
	MaxScale       float64 `yaml:"max_scale" json:"max_scale"`
	ClickThreshold float64 `yaml:"click_threshold" json:"click_threshold"`
	Width          float64 `yaml:"width" json:"width"`
	Height         float64 `yaml:"height" json:"height"`
	FitPadding     float64 `yaml:"fit_padding" json:"fit_padding"`
}

func (o Options) withDefaults() Options {
	if o.MinScale <= 0 {
		o.MinScale = 0.2
	}
	if o.MaxScale <= 0 {
		o.MaxScale = 5
	}
	if o.MaxScale < o.MinScale {
		o.MaxScale = o.MinScale
	}
	if o.ClickThreshold <= 0 {
		o.ClickThreshold = 3
	}
	if o.Width <= 0 {
		o.Width = 1200
	}
	if o.Height <= 0 {
		o.Height = 800
	}
	if o.FitPadding <= 0 {
		o.FitPadding = 40
	}
	return o
}

// Controller is the pointer state machine:
//
//	Idle --down on node--> DraggingNode --up--> Idle
//	Idle --down on empty-> Panning      --up--> Idle
//
// An up event whose pointer stayed within ClickThreshold screen pixels of
// the down point is a click: it focuses the node under the pointer, or
// clears focus over empty space.
type Controller struct {
	Transform Transform

	opts   Options
	picker Picker
	sink   Sink

	state        State
	downX, downY float64
	lastX, lastY float64
	moved        bool
}

// NewController returns an idle controller with the identity transform
// centered on the layout origin.
func NewController(opts Options, picker Picker, sink Sink) *Controller {
	c := &Controller{opts: opts.withDefaults(), picker: picker, sink: sink}
	c.Reset()
	return c
}

// State returns the current interaction mode.
func (c *Controller) State() State { return c.state }

// Limits returns the zoom range.
func (c *Controller) Limits() Limits {
	return Limits{MinScale: c.opts.MinScale, MaxScale: c.opts.MaxScale}
}

// Size returns the screen size in pixels.
func (c *Controller) Size() (w, h float64) { return c.opts.Width, c.opts.Height }

// Resize changes the screen size, keeping the layout point at the center
// of the old screen at the center of the new one.
func (c *Controller) Resize(w, h float64) {
	if w <= 0 || h <= 0 {
		return
	}
	cx, cy := c.Center()
	c.opts.Width, c.opts.Height = w, h
	c.Transform.CenterOn(cx, cy, w, h)
}

// Center returns the layout point at the middle of the screen.
func (c *Controller) Center() (wx, wy float64) {
	return c.Transform.ToWorld(c.opts.Width/2, c.opts.Height/2)
}

// Visible returns the layout rectangle currently on screen.
func (c *Controller) Visible() Bounds {
	return c.Transform.Visible(c.opts.Width, c.opts.Height)
}

// PointerDown starts a drag when it lands on a node and a pan otherwise.
func (c *Controller) PointerDown(sx, sy float64) {
	c.downX, c.downY = sx, sy
	c.lastX, c.lastY = sx, sy
	c.moved = false

	wx, wy := c.Transform.ToWorld(sx, sy)
	if id, ok := c.picker.Pick(wx, wy); ok {
		c.state = DraggingNode
		c.sink.BeginDrag(id)
		return
	}
	c.state = Panning
}

// PointerMove pans or drags depending on the current state.
func (c *Controller) PointerMove(sx, sy float64) {
	dx, dy := sx-c.lastX, sy-c.lastY
	c.lastX, c.lastY = sx, sy
	if c.state == Idle {
		return
	}
	if math.Hypot(sx-c.downX, sy-c.downY) > c.opts.ClickThreshold {
		c.moved = true
	}

	switch c.state {
	case Panning:
		c.Transform.Pan(dx, dy)
	case DraggingNode:
		c.sink.DragTo(c.Transform.ToWorld(sx, sy))
	}
}

// PointerUp ends the interaction and reports whether it was a click.
func (c *Controller) PointerUp(sx, sy float64) (clicked bool) {
	if c.state == Idle {
		return false
	}
	if math.Hypot(sx-c.downX, sy-c.downY) > c.opts.ClickThreshold {
		c.moved = true
	}
	if c.state == DraggingNode {
		c.sink.EndDrag()
	}
	c.state = Idle

	if c.moved {
		return false
	}
	wx, wy := c.Transform.ToWorld(sx, sy)
	if id, ok := c.picker.Pick(wx, wy); ok {
		c.sink.Focus(id)
	} else {
		c.sink.ClearFocus()
	}
	return true
}

// Wheel zooms around the pointer.
func (c *Controller) Wheel(sx, sy, deltaY float64) {
	c.Transform.ZoomAt(sx, sy, WheelFactor(deltaY), c.Limits())
}

// ZoomBy zooms around the screen center.
func (c *Controller) ZoomBy(factor float64) {
	c.Transform.ZoomAt(c.opts.Width/2, c.opts.Height/2, factor, c.Limits())
}

// Fit frames the given layout bounds.
func (c *Controller) Fit(b Bounds) {
	c.Transform.Fit(b, c.opts.Width, c.opts.Height, c.opts.FitPadding, c.Limits())
}

// FitNodes frames all nodes; it does nothing for an empty slice.
func (c *Controller) FitNodes(nodes []*graph.Node) {
	if b, ok := BoundsOf(nodes); ok {
		c.Fit(b)
	}
}

// Reset returns to scale 1 with the layout origin at the screen center.
func (c *Controller) Reset() {
	c.Transform = IdentityTransform()
	c.Transform.CenterOn(0, 0, c.opts.Width, c.opts.Height)
}

// CenterOn moves the view so (wx, wy) is at the screen center.
func (c *Controller) CenterOn(wx, wy float64) {
	c.Transform.CenterOn(wx, wy, c.opts.Width, c.opts.Height)
}

// Hit returns the topmost node whose radius contains (wx, wy). Nodes drawn
// later sit on top, so the slice is scanned from the end.
func Hit(nodes []*graph.Node, wx, wy float64) (graph.Identity, bool) {
	for i := len(nodes) - 1; i >= 0; i-- {
		n := nodes[i]
		r := n.Radius()
		dx, dy := wx-n.X, wy-n.Y
		if dx*dx+dy*dy <= r*r {
			return n.ID, true
		}
	}
	return graph.Identity{}, false
}
