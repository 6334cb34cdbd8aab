package viewport

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/supplynet/scmap/internal/graph"
)

type recorder struct {
	nodes   []*graph.Node
	began   []graph.Identity
	dragged [][2]float64
	ended   int
	focused []graph.Identity
	cleared int
}

func (r *recorder) Pick(wx, wy float64) (graph.Identity, bool) { return Hit(r.nodes, wx, wy) }
func (r *recorder) BeginDrag(id graph.Identity)                { r.began = append(r.began, id) }
func (r *recorder) DragTo(wx, wy float64)                      { r.dragged = append(r.dragged, [2]float64{wx, wy}) }
func (r *recorder) EndDrag()                                   { r.ended++ }
func (r *recorder) Focus(id graph.Identity)                    { r.focused = append(r.focused, id) }
func (r *recorder) ClearFocus()                                { r.cleared++ }

func newTestController(nodes ...*graph.Node) (*Controller, *recorder) {
	r := &recorder{nodes: nodes}
	c := NewController(Options{Width: 800, Height: 600}, r, r)
	return c, r
}

func TestTransform_RoundTrip(t *testing.T) {
	tr := Transform{X: 13, Y: -7, Scale: 2.5}
	wx, wy := tr.ToWorld(100, 200)
	sx, sy := tr.ToScreen(wx, wy)

	assert.InDelta(t, 100, sx, 1e-9)
	assert.InDelta(t, 200, sy, 1e-9)
}

func TestTransform_ZoomAtKeepsCursorPoint(t *testing.T) {
	lim := Limits{MinScale: 0.2, MaxScale: 5}
	tests := []struct {
		name   string
		start  Transform
		px, py float64
		deltaY float64
	}{
		{"zoom in", Transform{X: 0, Y: 0, Scale: 1}, 320, 240, -120},
		{"zoom out", Transform{X: 50, Y: -30, Scale: 2}, 10, 590, 200},
		{"clamped max", Transform{X: 5, Y: 5, Scale: 4.9}, 400, 300, -250},
		{"clamped min", Transform{X: 5, Y: 5, Scale: 0.21}, 700, 20, 250},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := tt.start
			wx, wy := tr.ToWorld(tt.px, tt.py)

			tr.ZoomAt(tt.px, tt.py, WheelFactor(tt.deltaY), lim)

			sx, sy := tr.ToScreen(wx, wy)
			assert.InDelta(t, tt.px, sx, 1e-9)
			assert.InDelta(t, tt.py, sy, 1e-9)
			assert.GreaterOrEqual(t, tr.Scale, lim.MinScale)
			assert.LessOrEqual(t, tr.Scale, lim.MaxScale)
		})
	}
}

func TestWheelFactor(t *testing.T) {
	assert.Equal(t, 1.0, WheelFactor(0))
	assert.Equal(t, 0.5, WheelFactor(10000), "capped at halving")
	assert.Equal(t, 1.5, WheelFactor(-10000))
	assert.Less(t, WheelFactor(100), 1.0, "scrolling down zooms out")
	assert.Equal(t, 1.0, WheelFactor(math.NaN()))
	assert.Equal(t, 1.0, WheelFactor(math.Inf(-1)))
}

func TestTransform_ZoomAtIgnoresNonFinite(t *testing.T) {
	lim := Limits{MinScale: 0.2, MaxScale: 5}
	start := Transform{X: 10, Y: 20, Scale: 1.5}
	inputs := []struct {
		name           string
		sx, sy, factor float64
	}{
		{"nan factor", 100, 100, math.NaN()},
		{"inf factor", 100, 100, math.Inf(1)},
		{"zero factor", 100, 100, 0},
		{"negative factor", 100, 100, -2},
		{"nan cursor", math.NaN(), 100, 1.2},
	}
	for _, in := range inputs {
		t.Run(in.name, func(t *testing.T) {
			tr := start
			tr.ZoomAt(in.sx, in.sy, in.factor, lim)
			assert.Equal(t, start, tr)
		})
	}

	c, _ := newTestController()
	before := c.Transform
	c.Wheel(10, 10, math.NaN())
	assert.Equal(t, before, c.Transform)
}

func TestTransform_Fit(t *testing.T) {
	nodes := []*graph.Node{
		{ID: graph.ID("a", "L"), X: -500, Y: -100},
		{ID: graph.ID("b", "L"), X: 900, Y: 300},
		{ID: graph.ID("c", "L"), X: 0, Y: 2000},
	}
	c, _ := newTestController(nodes...)
	c.FitNodes(nodes)

	vis := c.Visible()
	for _, n := range nodes {
		assert.True(t, vis.Contains(n.X, n.Y), "%s at (%v,%v) not in %+v", n.ID, n.X, n.Y, vis)
	}
}

func TestController_Reset(t *testing.T) {
	c, _ := newTestController()
	c.Wheel(10, 10, -300)
	c.Reset()

	assert.Equal(t, 1.0, c.Transform.Scale)
	wx, wy := c.Center()
	assert.InDelta(t, 0, wx, 1e-9)
	assert.InDelta(t, 0, wy, 1e-9)
}

func TestController_Wheel(t *testing.T) {
	c, _ := newTestController()
	wx, wy := c.Transform.ToWorld(123, 456)

	c.Wheel(123, 456, -100)

	sx, sy := c.Transform.ToScreen(wx, wy)
	assert.InDelta(t, 123, sx, 1e-9)
	assert.InDelta(t, 456, sy, 1e-9)
	assert.Greater(t, c.Transform.Scale, 1.0)
}

func TestController_ClickSelectsNode(t *testing.T) {
	n := &graph.Node{ID: graph.ID("FG-1", "THRYPM")}
	c, r := newTestController(n)
	sx, sy := c.Transform.ToScreen(0, 0)

	c.PointerDown(sx, sy)
	require.Equal(t, DraggingNode, c.State())
	c.PointerMove(sx+1, sy+1) // within threshold
	clicked := c.PointerUp(sx+1, sy+1)

	assert.True(t, clicked)
	assert.Equal(t, Idle, c.State())
	assert.Equal(t, []graph.Identity{n.ID}, r.focused)
	assert.Equal(t, 1, r.ended)
}

func TestController_DragDoesNotSelect(t *testing.T) {
	n := &graph.Node{ID: graph.ID("FG-1", "THRYPM")}
	c, r := newTestController(n)
	sx, sy := c.Transform.ToScreen(0, 0)

	c.PointerDown(sx, sy)
	c.PointerMove(sx+40, sy)
	// Dragging back next to the start still counts as a drag.
	c.PointerMove(sx+1, sy)
	clicked := c.PointerUp(sx+1, sy)

	assert.False(t, clicked)
	assert.Empty(t, r.focused)
	assert.Zero(t, r.cleared)
	assert.Equal(t, []graph.Identity{n.ID}, r.began)
	require.Len(t, r.dragged, 2)
	wx, wy := c.Transform.ToWorld(sx+40, sy)
	assert.Equal(t, [2]float64{wx, wy}, r.dragged[0], "drag target is inverse-transformed")
}

func TestController_ClickEmptyClearsFocus(t *testing.T) {
	c, r := newTestController(&graph.Node{ID: graph.ID("a", "L")})

	c.PointerDown(5, 5)
	require.Equal(t, Panning, c.State())
	assert.True(t, c.PointerUp(6, 5))
	assert.Equal(t, 1, r.cleared)
	assert.Empty(t, r.focused)
}

func TestController_Pan(t *testing.T) {
	c, r := newTestController()
	before := c.Transform

	c.PointerDown(100, 100)
	c.PointerMove(130, 90)
	c.PointerMove(150, 80)
	assert.False(t, c.PointerUp(150, 80))

	assert.Equal(t, before.X+50, c.Transform.X)
	assert.Equal(t, before.Y-20, c.Transform.Y)
	assert.Equal(t, before.Scale, c.Transform.Scale)
	assert.Zero(t, r.cleared, "pan is not a click")
}

func TestController_MoveWhileIdle(t *testing.T) {
	c, _ := newTestController()
	before := c.Transform

	c.PointerMove(300, 300)
	assert.Equal(t, before, c.Transform)
	assert.False(t, c.PointerUp(300, 300))
}

func TestController_Resize(t *testing.T) {
	c, _ := newTestController()
	c.CenterOn(250, -40)

	c.Resize(1600, 900)
	wx, wy := c.Center()
	assert.InDelta(t, 250, wx, 1e-9)
	assert.InDelta(t, -40, wy, 1e-9)
	w, h := c.Size()
	assert.Equal(t, 1600.0, w)
	assert.Equal(t, 900.0, h)
}

func TestHit(t *testing.T) {
	a := &graph.Node{ID: graph.ID("a", "L"), X: 0, Y: 0}
	b := &graph.Node{ID: graph.ID("b", "L"), X: 5, Y: 0, Degree: 10}
	nodes := []*graph.Node{a, b}

	id, ok := Hit(nodes, 1, 0)
	require.True(t, ok)
	assert.Equal(t, b.ID, id, "later nodes win overlaps")

	_, ok = Hit(nodes, 100, 100)
	assert.False(t, ok)

	r := graph.NodeRadius(10)
	_, ok = Hit(nodes, 5+r+0.01, 0)
	assert.False(t, ok)
	_, ok = Hit(nodes, 5+r-0.01, 0)
	assert.True(t, ok)
}
