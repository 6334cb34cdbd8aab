package render

import (
	"fmt"
	"image/color"
	"math"
	"strings"

	"github.com/supplynet/scmap/internal/graph"
	"github.com/supplynet/scmap/internal/viewport"
)

// ColorMode selects how node fills are chosen.
type ColorMode int

const (
	ByCategory ColorMode = iota
	ByHealth
)

func (m ColorMode) String() string {
	if m == ByHealth {
		return "health"
	}
	return "category"
}

// ParseColorMode accepts "category" or "health".
func ParseColorMode(s string) (ColorMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "category":
		return ByCategory, nil
	case "health":
		return ByHealth, nil
	}
	return ByCategory, fmt.Errorf("unknown color mode %q (want category or health)", s)
}

// Options controls drawing.
type Options struct {
	Mode ColorMode
	// LabelZoom is the scale at and above which every label is drawn.
	LabelZoom  float64
	Background color.NRGBA
	LabelColor color.NRGBA
	// DimAlpha is the opacity of elements outside the focus neighborhood.
	DimAlpha float64
}

// DefaultOptions returns the dark theme used by the live view.
func DefaultOptions() Options {
	return Options{
		Mode:       ByCategory,
		LabelZoom:  1.2,
		Background: ParseHex("#0f172a"),
		LabelColor: ParseHex("#e2e8f0"),
		DimAlpha:   0.15,
	}
}

// Screen-space sizes, divided by scale before drawing so they stay
// constant on screen at any zoom.
const (
	edgeWidth     = 1.0
	arrowLength   = 8.0
	arrowWidth    = 5.0
	labelSize     = 11.0
	labelGap      = 4.0
	selectedWidth = 2.5
)

// Frame is everything one draw call reads.
type Frame struct {
	View      *graph.View
	Transform viewport.Transform
}

// Stats reports what a draw call emitted.
type Stats struct {
	Edges  int
	Nodes  int
	Labels int
	Culled int
}

// Renderer draws frames. It only reads node state.
type Renderer struct {
	opts Options
}

// NewRenderer returns a renderer; zero options take defaults.
func NewRenderer(opts Options) *Renderer {
	d := DefaultOptions()
	if opts.LabelZoom <= 0 {
		opts.LabelZoom = d.LabelZoom
	}
	if opts.Background == (color.NRGBA{}) {
		opts.Background = d.Background
	}
	if opts.LabelColor == (color.NRGBA{}) {
		opts.LabelColor = d.LabelColor
	}
	if opts.DimAlpha <= 0 {
		opts.DimAlpha = d.DimAlpha
	}
	return &Renderer{opts: opts}
}

// Options returns the active options.
func (r *Renderer) Options() Options { return r.opts }

// SetMode switches the fill color mode.
func (r *Renderer) SetMode(m ColorMode) { r.opts.Mode = m }

// Draw clears c and draws edges, then nodes, then labels.
func (r *Renderer) Draw(c Canvas, f Frame) Stats {
	var st Stats
	c.Clear(r.opts.Background)
	c.SetTransform(f.Transform)
	v := f.View
	if v == nil || v.Graph == nil {
		return st
	}

	scale := f.Transform.Scale
	if scale <= 0 {
		scale = 1
	}
	w, h := c.Size()
	visible := f.Transform.Visible(float64(w), float64(h))
	margin := arrowLength / scale
	visible.MinX -= margin
	visible.MinY -= margin
	visible.MaxX += margin
	visible.MaxY += margin

	for _, e := range v.Edges {
		a, b := v.Node(e.Source), v.Node(e.Target)
		if a == nil || b == nil {
			continue
		}
		if !segmentMayBeVisible(visible, a, b) {
			st.Culled++
			continue
		}
		stroke := ParseHex(graph.GetEdgeStyle(e.Kind).Stroke)
		if v.Focused() && e.Source != v.Focus && e.Target != v.Focus {
			stroke = fade(stroke, r.opts.DimAlpha)
		}
		r.drawEdge(c, a, b, scale, stroke)
		st.Edges++
	}

	type label struct {
		at   Point
		text string
		fill color.NRGBA
	}
	var labels []label

	for _, n := range v.Nodes {
		rad := n.Radius()
		box := viewport.Bounds{MinX: n.X - rad, MinY: n.Y - rad, MaxX: n.X + rad, MaxY: n.Y + rad}
		if !visible.Intersects(box) {
			st.Culled++
			continue
		}
		selected := v.Focused() && n.ID == v.Focus
		related := selected || v.IsNeighbor(n.ID)

		fill := r.fill(n)
		if v.Focused() && !related {
			fill = fade(fill, r.opts.DimAlpha)
		}
		if selected {
			drawShape(c, graph.GetCategoryStyle(n.Category).Shape, n.X, n.Y, rad+selectedWidth/scale, r.opts.LabelColor)
		}
		drawShape(c, graph.GetCategoryStyle(n.Category).Shape, n.X, n.Y, rad, fill)
		st.Nodes++

		if scale >= r.opts.LabelZoom || related || n.Category == graph.FinishedGood {
			lc := r.opts.LabelColor
			if v.Focused() && !related {
				lc = fade(lc, r.opts.DimAlpha)
			}
			labels = append(labels, label{
				at:   Point{n.X + rad + labelGap/scale, n.Y},
				text: n.ID.Item,
				fill: lc,
			})
		}
	}

	for _, l := range labels {
		c.Text(l.at, labelSize, l.text, l.fill)
	}
	st.Labels = len(labels)
	return st
}

func (r *Renderer) fill(n *graph.Node) color.NRGBA {
	if r.opts.Mode == ByHealth {
		return ParseHex(graph.HealthFills[n.Health()])
	}
	return ParseHex(graph.GetCategoryStyle(n.Category).Fill)
}

// drawEdge draws a line from a to b's rim with an arrowhead at the rim.
func (r *Renderer) drawEdge(c Canvas, a, b *graph.Node, scale float64, stroke color.NRGBA) {
	dx, dy := b.X-a.X, b.Y-a.Y
	d := math.Hypot(dx, dy)
	if d < 1e-9 {
		return
	}
	ux, uy := dx/d, dy/d
	tip := Point{b.X - ux*b.Radius(), b.Y - uy*b.Radius()}
	length := arrowLength / scale
	half := arrowWidth / scale / 2
	base := Point{tip.X - ux*length, tip.Y - uy*length}

	c.Line(Point{a.X, a.Y}, base, edgeWidth/scale, stroke)
	c.Polygon([]Point{
		tip,
		{base.X - uy*half, base.Y + ux*half},
		{base.X + uy*half, base.Y - ux*half},
	}, stroke)
}

// drawShape draws a triangle, square or circle of radius r around (x, y).
func drawShape(c Canvas, s graph.Shape, x, y, r float64, fill color.NRGBA) {
	switch s {
	case graph.Triangle:
		c.Polygon([]Point{
			{x, y - r},
			{x + r*math.Sqrt(3)/2, y + r/2},
			{x - r*math.Sqrt(3)/2, y + r/2},
		}, fill)
	case graph.Square:
		h := r * 0.85
		c.Polygon([]Point{{x - h, y - h}, {x + h, y - h}, {x + h, y + h}, {x - h, y + h}}, fill)
	default:
		c.Circle(Point{x, y}, r, fill)
	}
}

func segmentMayBeVisible(b viewport.Bounds, p, q *graph.Node) bool {
	if math.Max(p.X, q.X) < b.MinX || math.Min(p.X, q.X) > b.MaxX {
		return false
	}
	if math.Max(p.Y, q.Y) < b.MinY || math.Min(p.Y, q.Y) > b.MaxY {
		return false
	}
	return true
}
