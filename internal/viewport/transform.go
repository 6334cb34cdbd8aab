// Package viewport maps between screen and layout coordinates and turns
// pointer input into pan, zoom, node drag and selection.
package viewport

import (
	"math"

	"github.com/supplynet/scmap/internal/graph"
)

// Transform maps layout space to screen space: screen = layout*Scale + (X, Y).
type Transform struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Scale float64 `json:"scale"`
}

// IdentityTransform is the unscaled, untranslated view.
func IdentityTransform() Transform {
	return Transform{Scale: 1}
}

// ToWorld maps a screen point into layout space.
func (t Transform) ToWorld(sx, sy float64) (wx, wy float64) {
	return (sx - t.X) / t.Scale, (sy - t.Y) / t.Scale
}

// ToScreen maps a layout point onto the screen.
func (t Transform) ToScreen(wx, wy float64) (sx, sy float64) {
	return wx*t.Scale + t.X, wy*t.Scale + t.Y
}

// Limits bounds the zoom level.
type Limits struct {
	MinScale float64
	MaxScale float64
}

// Clamp returns scale restricted to [MinScale, MaxScale].
func (l Limits) Clamp(scale float64) float64 {
	return math.Max(l.MinScale, math.Min(l.MaxScale, scale))
}

// WheelFactor converts a wheel delta into a zoom multiplier. Scrolling
// down (positive delta) zooms out; a single event changes scale by at
// most half. A non-finite delta leaves the scale unchanged.
func WheelFactor(deltaY float64) float64 {
	if math.IsNaN(deltaY) || math.IsInf(deltaY, 0) {
		return 1
	}
	return 1 - math.Max(-0.5, math.Min(0.5, deltaY/500))
}

// ZoomAt multiplies the scale by factor, clamped to lim, keeping the layout
// point under screen point (sx, sy) fixed. Non-finite inputs and
// non-positive factors are ignored.
func (t *Transform) ZoomAt(sx, sy, factor float64, lim Limits) {
	if !(factor > 0) || math.IsInf(factor, 0) || !finite(sx) || !finite(sy) {
		return
	}
	wx, wy := t.ToWorld(sx, sy)
	t.Scale = lim.Clamp(t.Scale * factor)
	t.X = sx - wx*t.Scale
	t.Y = sy - wy*t.Scale
}

// Pan shifts the view by a screen-space delta.
func (t *Transform) Pan(dx, dy float64) {
	t.X += dx
	t.Y += dy
}

// CenterOn places layout point (wx, wy) at the middle of a w x h screen.
func (t *Transform) CenterOn(wx, wy, w, h float64) {
	t.X = w/2 - wx*t.Scale
	t.Y = h/2 - wy*t.Scale
}

// Bounds is an axis-aligned rectangle.
type Bounds struct {
	MinX, MinY float64
	MaxX, MaxY float64
}

// Width returns the horizontal extent.
func (b Bounds) Width() float64 { return b.MaxX - b.MinX }

// Height returns the vertical extent.
func (b Bounds) Height() float64 { return b.MaxY - b.MinY }

// Contains reports whether (x, y) lies inside b, edges included.
func (b Bounds) Contains(x, y float64) bool {
	return x >= b.MinX && x <= b.MaxX && y >= b.MinY && y <= b.MaxY
}

// Intersects reports whether b and o overlap, touching edges included.
func (b Bounds) Intersects(o Bounds) bool {
	return b.MinX <= o.MaxX && o.MinX <= b.MaxX && b.MinY <= o.MaxY && o.MinY <= b.MaxY
}

// BoundsOf returns the extent of the nodes including their radii. ok is
// false for an empty slice.
func BoundsOf(nodes []*graph.Node) (b Bounds, ok bool) {
	for _, n := range nodes {
		r := n.Radius()
		if !ok {
			b = Bounds{MinX: n.X - r, MinY: n.Y - r, MaxX: n.X + r, MaxY: n.Y + r}
			ok = true
			continue
		}
		b.MinX = math.Min(b.MinX, n.X-r)
		b.MinY = math.Min(b.MinY, n.Y-r)
		b.MaxX = math.Max(b.MaxX, n.X+r)
		b.MaxY = math.Max(b.MaxY, n.Y+r)
	}
	return b, ok
}

// Fit scales and centers the view so b fills a w x h screen less padding
// on every side.
func (t *Transform) Fit(b Bounds, w, h, padding float64, lim Limits) {
	gw, gh := b.Width(), b.Height()
	if gw <= 0 {
		gw = 1
	}
	if gh <= 0 {
		gh = 1
	}
	sx := (w - 2*padding) / gw
	sy := (h - 2*padding) / gh
	s := math.Min(sx, sy)
	if s <= 0 {
		s = 1
	}
	t.Scale = lim.Clamp(s)
	t.CenterOn(b.MinX+gw/2, b.MinY+gh/2, w, h)
}

// Visible returns the layout-space rectangle shown on a w x h screen.
func (t Transform) Visible(w, h float64) Bounds {
	x0, y0 := t.ToWorld(0, 0)
	x1, y1 := t.ToWorld(w, h)
	return Bounds{MinX: x0, MinY: y0, MaxX: x1, MaxY: y1}
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
