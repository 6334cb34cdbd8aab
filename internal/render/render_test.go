package render

import (
	"bytes"
	"image/png"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/supplynet/scmap/internal/graph"
	"github.com/supplynet/scmap/internal/viewport"
)

// testView lays out RM -> FG -> DC left to right around the origin, plus a
// second raw material feeding the finished good.
func testView(focus graph.Identity) *graph.View {
	nodes := []*graph.Node{
		{ID: graph.ID("RM-1", "P"), Category: graph.RawMaterial, X: -100, Y: 0, Current: 0, Target: 10},
		{ID: graph.ID("FG-1", "P"), Category: graph.FinishedGood, X: 0, Y: 0, Current: 10, Target: 10},
		{ID: graph.ID("FG-1", "D"), Category: graph.DistributionCenter, X: 100, Y: 0, Current: 50, Target: 10},
		{ID: graph.ID("RM-2", "P"), Category: graph.RawMaterial, X: -100, Y: 80},
	}
	edges := []graph.Edge{
		{Source: nodes[1].ID, Target: nodes[0].ID, Kind: graph.BOMEdge},
		{Source: nodes[1].ID, Target: nodes[3].ID, Kind: graph.BOMEdge},
		{Source: nodes[1].ID, Target: nodes[2].ID, Kind: graph.FlowEdge},
	}
	return graph.Apply(graph.New(nodes, edges), graph.DefaultFilter(), focus)
}

func centered(scale float64) viewport.Transform {
	t := viewport.Transform{Scale: scale}
	t.CenterOn(0, 0, 800, 600)
	return t
}

func kinds(ops []Op) []string {
	var out []string
	for _, op := range ops {
		out = append(out, op.Kind)
	}
	return out
}

func textOps(ops []Op) map[string]Op {
	out := make(map[string]Op)
	for _, op := range ops {
		if op.Kind == OpText {
			out[op.Text] = op
		}
	}
	return out
}

func TestRenderer_DrawOrder(t *testing.T) {
	dl := NewDisplayList(800, 600)
	st := NewRenderer(DefaultOptions()).Draw(dl, Frame{View: testView(graph.Identity{}), Transform: centered(2)})

	require.Equal(t, 3, st.Edges)
	require.Equal(t, 4, st.Nodes)
	require.Equal(t, 4, st.Labels)

	k := kinds(dl.Ops)
	require.Len(t, k, 3*2+4+4)
	for i := 0; i < 6; i += 2 {
		assert.Equal(t, OpLine, k[i], "edge line at %d", i)
		assert.Equal(t, OpPolygon, k[i+1], "arrowhead at %d", i+1)
	}
	for _, kind := range k[6:10] {
		assert.NotEqual(t, OpText, kind, "nodes follow edges")
	}
	for _, kind := range k[10:] {
		assert.Equal(t, OpText, kind, "labels are drawn last")
	}
}

func TestRenderer_Shapes(t *testing.T) {
	dl := NewDisplayList(800, 600)
	NewRenderer(DefaultOptions()).Draw(dl, Frame{View: testView(graph.Identity{}), Transform: centered(1)})

	// Skip the three edges (line + arrowhead each).
	nodeOps := dl.Ops[6 : 6+4]
	assert.Equal(t, OpPolygon, nodeOps[0].Kind)
	assert.Len(t, nodeOps[0].Points, 6, "raw material is a triangle")
	assert.Equal(t, OpPolygon, nodeOps[1].Kind)
	assert.Len(t, nodeOps[1].Points, 8, "finished good is a square")
	assert.Equal(t, OpCircle, nodeOps[2].Kind, "DC is a circle")
}

func arrowLengthOnScreen(t *testing.T, scale float64) float64 {
	t.Helper()
	dl := NewDisplayList(800, 600)
	NewRenderer(DefaultOptions()).Draw(dl, Frame{View: testView(graph.Identity{}), Transform: centered(scale)})
	require.GreaterOrEqual(t, len(dl.Ops), 2)
	line, arrow := dl.Ops[0], dl.Ops[1]
	require.Equal(t, OpLine, line.Kind)
	require.Equal(t, OpPolygon, arrow.Kind)

	// Arrow tip to line end is the head length.
	tipX, tipY := arrow.Points[0], arrow.Points[1]
	endX, endY := line.Points[2], line.Points[3]
	return math.Hypot(tipX-endX, tipY-endY)
}

func TestRenderer_ArrowheadConstantOnScreen(t *testing.T) {
	small := arrowLengthOnScreen(t, 0.5)
	large := arrowLengthOnScreen(t, 3)

	assert.InDelta(t, arrowLength, small, 0.05)
	assert.InDelta(t, arrowLength, large, 0.05)
}

func TestRenderer_LineWidthConstantOnScreen(t *testing.T) {
	for _, scale := range []float64{0.5, 1, 4} {
		dl := NewDisplayList(800, 600)
		NewRenderer(DefaultOptions()).Draw(dl, Frame{View: testView(graph.Identity{}), Transform: centered(scale)})
		assert.InDelta(t, edgeWidth, dl.Ops[0].Width, 0.01, "scale %v", scale)
	}
}

func TestRenderer_LabelLevelOfDetail(t *testing.T) {
	r := NewRenderer(DefaultOptions())

	dl := NewDisplayList(800, 600)
	r.Draw(dl, Frame{View: testView(graph.Identity{}), Transform: centered(0.5)})
	labels := textOps(dl.Ops)
	assert.Contains(t, labels, "FG-1", "finished goods are always labeled")
	assert.NotContains(t, labels, "RM-1")
	assert.NotContains(t, labels, "RM-2")

	dl = NewDisplayList(800, 600)
	r.Draw(dl, Frame{View: testView(graph.Identity{}), Transform: centered(2)})
	labels = textOps(dl.Ops)
	assert.Contains(t, labels, "RM-1")
	assert.Contains(t, labels, "RM-2")
}

func TestRenderer_FocusLabelsAndDimming(t *testing.T) {
	// A -> B -> C: focusing A keeps C in view, but C is not A's neighbor.
	nodes := []*graph.Node{
		{ID: graph.ID("A", "P"), Category: graph.RawMaterial, X: -100},
		{ID: graph.ID("B", "P"), Category: graph.RawMaterial, X: 0},
		{ID: graph.ID("C", "P"), Category: graph.RawMaterial, X: 100},
	}
	g := graph.New(nodes, []graph.Edge{
		{Source: nodes[0].ID, Target: nodes[1].ID},
		{Source: nodes[1].ID, Target: nodes[2].ID},
	})
	view := graph.Apply(g, graph.DefaultFilter(), nodes[0].ID)
	require.Equal(t, 3, view.NodeCount())

	dl := NewDisplayList(800, 600)
	NewRenderer(DefaultOptions()).Draw(dl, Frame{View: view, Transform: centered(0.5)})

	labels := textOps(dl.Ops)
	assert.Contains(t, labels, "A", "selected node is labeled at any zoom")
	assert.Contains(t, labels, "B", "neighbors are labeled at any zoom")
	assert.NotContains(t, labels, "C")
	assert.Equal(t, 1.0, labels["A"].Alpha)
	assert.Equal(t, 1.0, labels["B"].Alpha)

	// Ops: 2 edges (line + head), ring + A, B, C, then labels.
	require.GreaterOrEqual(t, len(dl.Ops), 8)
	assert.Equal(t, 1.0, dl.Ops[0].Alpha, "edge touching the focus")
	assert.Less(t, dl.Ops[2].Alpha, 1.0, "edge away from the focus is dimmed")
	assert.Equal(t, 1.0, dl.Ops[5].Alpha, "focused node")
	assert.Equal(t, 1.0, dl.Ops[6].Alpha, "neighbor")
	assert.Less(t, dl.Ops[7].Alpha, 1.0, "non-neighbor is dimmed")
}

func TestRenderer_NoDimmingWithoutFocus(t *testing.T) {
	dl := NewDisplayList(800, 600)
	NewRenderer(DefaultOptions()).Draw(dl, Frame{View: testView(graph.Identity{}), Transform: centered(1)})

	for _, op := range dl.Ops {
		assert.Equal(t, 1.0, op.Alpha, "%s op should be opaque", op.Kind)
	}
}

func TestRenderer_HealthColors(t *testing.T) {
	opts := DefaultOptions()
	opts.Mode = ByHealth
	dl := NewDisplayList(800, 600)
	NewRenderer(opts).Draw(dl, Frame{View: testView(graph.Identity{}), Transform: centered(1)})

	nodeOps := dl.Ops[6 : 6+4]
	assert.Equal(t, graph.HealthFills[graph.Critical], nodeOps[0].Color, "RM-1 empty")
	assert.Equal(t, graph.HealthFills[graph.Healthy], nodeOps[1].Color, "FG-1 on target")
	assert.Equal(t, graph.HealthFills[graph.Over], nodeOps[2].Color, "DC overstocked")
	assert.Equal(t, graph.HealthFills[graph.Healthy], nodeOps[3].Color, "zero target is healthy")
}

func TestRenderer_CullsOffscreen(t *testing.T) {
	tr := centered(1)
	tr.Pan(5000, 0)
	dl := NewDisplayList(800, 600)
	st := NewRenderer(DefaultOptions()).Draw(dl, Frame{View: testView(graph.Identity{}), Transform: tr})

	assert.Zero(t, st.Nodes)
	assert.Zero(t, st.Edges)
	assert.Equal(t, 7, st.Culled)
}

func TestRenderer_KeepsNodeOverlappingCorner(t *testing.T) {
	tr := centered(1)
	visible := tr.Visible(800, 600)
	r := graph.NodeRadius(0)
	edge := visible.MaxX + arrowLength
	top := visible.MinY - arrowLength

	// Centre and the (-r,-r) and (+r,+r) corners fall outside; the
	// lower-left quarter of the box overlaps the top-right corner.
	n := &graph.Node{ID: graph.ID("FG-9", "P"), Category: graph.FinishedGood, X: edge + r/2, Y: top - r/2}
	v := graph.Apply(graph.New([]*graph.Node{n}, nil), graph.DefaultFilter(), graph.Identity{})

	st := NewRenderer(DefaultOptions()).Draw(NewDisplayList(800, 600), Frame{View: v, Transform: tr})
	assert.Equal(t, 1, st.Nodes)
	assert.Zero(t, st.Culled)
}

func TestRenderer_NilView(t *testing.T) {
	dl := NewDisplayList(10, 10)
	st := NewRenderer(Options{}).Draw(dl, Frame{Transform: viewport.IdentityTransform()})

	assert.Equal(t, Stats{}, st)
	assert.Empty(t, dl.Ops)
	assert.Equal(t, Hex(DefaultOptions().Background), dl.Background)
}

func TestSVGCanvas(t *testing.T) {
	c := NewSVGCanvas(800, 600)
	NewRenderer(DefaultOptions()).Draw(c, Frame{View: testView(graph.ID("FG-1", "P")), Transform: centered(1)})

	var buf bytes.Buffer
	_, err := c.WriteTo(&buf)
	require.NoError(t, err)
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, "<svg"))
	assert.Contains(t, out, "<polygon")
	assert.Contains(t, out, "<circle")
	assert.Contains(t, out, ">FG-1</text>")
	assert.True(t, strings.HasSuffix(out, "</svg>\n"))
}

func TestRasterCanvas(t *testing.T) {
	c := NewRasterCanvas(200, 200)
	tr := viewport.Transform{Scale: 1}
	tr.CenterOn(0, 0, 200, 200)
	NewRenderer(DefaultOptions()).Draw(c, Frame{View: testView(graph.Identity{}), Transform: tr})

	bg := DefaultOptions().Background
	center := c.Image().RGBAAt(100, 100)
	assert.NotEqual(t, [3]uint8{bg.R, bg.G, bg.B}, [3]uint8{center.R, center.G, center.B}, "FG node covers the center")
	corner := c.Image().RGBAAt(1, 199)
	assert.Equal(t, [3]uint8{bg.R, bg.G, bg.B}, [3]uint8{corner.R, corner.G, corner.B})

	var buf bytes.Buffer
	require.NoError(t, c.WritePNG(&buf))
	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, 200, img.Bounds().Dx())
}

func TestParseHex(t *testing.T) {
	assert.Equal(t, "#10b981", Hex(ParseHex("#10b981")))
	assert.Equal(t, uint8(0xff), ParseHex("#10b981").A)
	assert.Equal(t, uint8(0x80), ParseHex("#10b98180").A)
	assert.Equal(t, "#ff00ff", Hex(ParseHex("nope")))
}

func TestParseColorMode(t *testing.T) {
	m, err := ParseColorMode("Health")
	require.NoError(t, err)
	assert.Equal(t, ByHealth, m)

	m, err = ParseColorMode("")
	require.NoError(t, err)
	assert.Equal(t, ByCategory, m)

	_, err = ParseColorMode("rainbow")
	assert.Error(t, err)
}

func TestClipSegment(t *testing.T) {
	a, b, ok := clipSegment(Point{-100, 50}, Point{300, 50}, 0, 0, 100, 100)
	require.True(t, ok)
	assert.InDelta(t, 0, a.X, 1e-9)
	assert.InDelta(t, 100, b.X, 1e-9)

	_, _, ok = clipSegment(Point{-100, -50}, Point{-10, -50}, 0, 0, 100, 100)
	assert.False(t, ok)
}
