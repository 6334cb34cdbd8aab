package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/supplynet/scmap/internal/graph"
	"github.com/supplynet/scmap/internal/inventory"
	"github.com/supplynet/scmap/internal/render"
)

func rec(item, loc, cat string, cur, tgt float64) inventory.Record {
	return inventory.Record{Item: item, Location: loc, Category: cat,
		Current: cur, Target: tgt, HasCurrent: true, HasTarget: true}
}

// testData: FG-1 at plant THRYPM uses RM-1 and ships to DC THBNDM;
// FG-2 stands alone.
func testData() ([]inventory.Record, []inventory.BOM) {
	return []inventory.Record{
			rec("FG-1", "THRYPM", "FG", 100, 100),
			rec("RM-1", "THRYPM", "RM", 5, 100),
			rec("FG-1", "THBNDM", "FG", 10, 0),
			rec("FG-2", "MYBGPM", "FG", 1, 1),
		}, []inventory.BOM{
			{Parent: "FG-1", Child: "RM-1", Site: "THRYPM"},
		}
}

func loadedScene(t *testing.T) *Scene {
	t.Helper()
	s := NewScene(DefaultOptions())
	stats := s.Load(testData())
	require.Equal(t, 1, stats.BOMEdges)
	require.Equal(t, 1, stats.FlowEdges)
	return s
}

// spread puts the nodes on a horizontal line so hit tests are unambiguous.
func spread(s *Scene) {
	for i, n := range s.Graph().Nodes {
		n.X, n.Y = float64(i)*150-225, 0
		n.VX, n.VY = 0, 0
	}
}

func TestScene_Load(t *testing.T) {
	s := loadedScene(t)

	st := s.Stats()
	assert.Equal(t, 4, st.Nodes)
	assert.Equal(t, 2, st.Edges)
	assert.Equal(t, 4, st.VisibleNodes)
	assert.True(t, st.Active)
	assert.Empty(t, st.Focus)

	vis := s.Controller().Visible()
	for _, n := range s.Graph().Nodes {
		assert.True(t, vis.Contains(n.X, n.Y), "%s placed inside the viewport", n.ID)
	}
}

func TestScene_ReloadKeepsLayout(t *testing.T) {
	s := loadedScene(t)
	s.Settle(50)
	id := graph.ID("FG-1", "THRYPM")
	before := *s.Graph().Node(id)

	records, boms := testData()
	records = append(records, rec("RM-9", "THRYPM", "RM", 1, 1))
	s.Load(records, boms)

	after := s.Graph().Node(id)
	assert.Equal(t, before.X, after.X)
	assert.Equal(t, before.Y, after.Y)
	assert.Equal(t, before.VX, after.VX)
	assert.Equal(t, before.VY, after.VY)
	assert.Equal(t, 1.0, s.Stats().Alpha, "rebuild reheats")
}

func TestScene_ClickFocusesNode(t *testing.T) {
	s := loadedScene(t)
	var got []Selection
	s.OnSelect(func(sel Selection, ok bool) {
		if ok {
			got = append(got, sel)
		}
	})

	spread(s)
	n := s.View().Node(graph.ID("RM-1", "THRYPM"))
	sx, sy := s.Transform().ToScreen(n.X, n.Y)
	s.PointerDown(sx, sy)
	s.PointerUp(sx, sy)

	sel, ok := s.Selection()
	require.True(t, ok)
	assert.Equal(t, "RM-1", sel.Item)
	assert.Equal(t, "THRYPM", sel.Location)
	assert.Equal(t, "RM", sel.Category)
	assert.Equal(t, "very_low", sel.Health)
	require.Len(t, got, 1)
	assert.Equal(t, sel, got[0])

	// RM-1 <- FG-1 only; the DC and FG-2 are out of the focus set.
	assert.Equal(t, 2, s.View().NodeCount())
}

func TestScene_ClickEmptyClearsFocus(t *testing.T) {
	s := loadedScene(t)
	s.Focus(graph.ID("FG-1", "THRYPM"))
	require.Equal(t, 3, s.View().NodeCount())

	// Far corner of the layout, nowhere near any node.
	sx, sy := s.Transform().ToScreen(1e6, 1e6)
	s.PointerDown(sx, sy)
	s.PointerUp(sx, sy)

	_, ok := s.Selection()
	assert.False(t, ok)
	assert.Equal(t, 4, s.View().NodeCount())
}

func TestScene_DragMovesNodeWithoutFocus(t *testing.T) {
	s := loadedScene(t)
	spread(s)
	n := s.View().Node(graph.ID("FG-2", "MYBGPM"))
	sx, sy := s.Transform().ToScreen(n.X, n.Y)

	s.PointerDown(sx, sy)
	s.PointerMove(sx+50, sy+50)
	s.Step()
	s.PointerUp(sx+50, sy+50)

	wx, wy := s.Transform().ToWorld(sx+50, sy+50)
	assert.InDelta(t, wx, n.X, 1e-9)
	assert.InDelta(t, wy, n.Y, 1e-9)
	_, ok := s.Selection()
	assert.False(t, ok, "drag is not a click")
}

func TestScene_FocusHint(t *testing.T) {
	s := loadedScene(t)

	s.FocusHint("FG-1", "THRYPM")
	sel, ok := s.Selection()
	require.True(t, ok)
	assert.Equal(t, "FG-1", sel.Item)

	// The user clears focus; repeating the same hint does not refocus.
	s.ClearFocus()
	s.FocusHint("FG-1", "THRYPM")
	_, ok = s.Selection()
	assert.False(t, ok)

	// A hint that names no node clears focus.
	s.FocusHint("FG-2", "MYBGPM")
	_, ok = s.Selection()
	require.True(t, ok)
	s.FocusHint("NOPE", "THRYPM")
	_, ok = s.Selection()
	assert.False(t, ok)
}

func TestScene_FilterClearsFocus(t *testing.T) {
	s := loadedScene(t)
	s.Focus(graph.ID("RM-1", "THRYPM"))
	s.Settle(30)
	require.Less(t, s.Stats().Alpha, 1.0)

	f := graph.DefaultFilter()
	f.ShowRM = false
	s.SetFilter(f)

	_, ok := s.Selection()
	assert.False(t, ok)
	assert.Equal(t, 3, s.View().NodeCount())
	assert.Equal(t, 1.0, s.Stats().Alpha, "filter change reheats")
}

func TestScene_SettleAndDraw(t *testing.T) {
	s := loadedScene(t)
	ticks := s.Settle(10000)

	assert.Greater(t, ticks, 0)
	assert.Less(t, ticks, 10000)
	assert.False(t, s.Active())

	s.Fit()
	s.SetColorMode(render.ByHealth)
	assert.Equal(t, render.ByHealth, s.ColorMode())
	w, h := s.Size()
	dl := render.NewDisplayList(int(w), int(h))
	st := s.Draw(dl)
	assert.Equal(t, 4, st.Nodes)
	assert.Equal(t, 2, st.Edges)
}

func TestScene_SpacingReheats(t *testing.T) {
	s := loadedScene(t)
	s.Settle(10000)
	require.False(t, s.Active())

	s.SetSpacing(1.5)
	assert.True(t, s.Active())
}

func TestScene_EmptyIsSafe(t *testing.T) {
	s := NewScene(DefaultOptions())

	assert.False(t, s.Step())
	s.Fit()
	s.PointerDown(10, 10)
	s.PointerUp(10, 10)
	_, ok := s.Selection()
	assert.False(t, ok)
	assert.Equal(t, 0, s.Stats().Nodes)
}
