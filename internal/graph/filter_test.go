package graph

import (
	"reflect"
	"testing"

	"github.com/supplynet/scmap/internal/inventory"
)

func TestApply_Focus(t *testing.T) {
	// A -> B -> C, D -> A
	g := newTestGraph("A>B", "B>C", "D>A")
	f := DefaultFilter()

	tests := []struct {
		focus string
		want  []string
	}{
		{"B", []string{"A", "B", "C"}},
		{"A", []string{"A", "B", "C", "D"}},
		{"", []string{"A", "B", "C", "D"}},
	}
	for _, tt := range tests {
		var focus Identity
		if tt.focus != "" {
			focus = l(tt.focus)
		}
		v := Apply(g, f, focus)
		if got := nodeItems(v.Graph); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Apply(focus=%q) nodes = %v, want %v", tt.focus, got, tt.want)
		}
		for _, e := range v.Edges {
			if !v.Has(e.Source) || !v.Has(e.Target) {
				t.Errorf("Apply(focus=%q) kept dangling edge %v", tt.focus, e)
			}
		}
	}
}

func TestApply_FocusClearedByCategoryFilter(t *testing.T) {
	nodes := []*Node{
		{ID: ID("FG-1", "P"), Category: FinishedGood},
		{ID: ID("RM-1", "P"), Category: RawMaterial},
	}
	g := New(nodes, []Edge{{Source: nodes[0].ID, Target: nodes[1].ID}})

	f := DefaultFilter()
	f.ShowRM = false
	v := Apply(g, f, ID("RM-1", "P"))

	if v.Focused() {
		t.Errorf("focus should be cleared, got %v", v.Focus)
	}
	if got := nodeItems(v.Graph); !reflect.DeepEqual(got, []string{"FG-1"}) {
		t.Errorf("nodes = %v, want [FG-1]", got)
	}
	if v.EdgeCount() != 0 {
		t.Errorf("expected 0 edges, got %d", v.EdgeCount())
	}
}

func TestApply_FocusMissing(t *testing.T) {
	g := newTestGraph("a>b")

	v := Apply(g, DefaultFilter(), l("nope"))
	if v.Focused() {
		t.Error("unknown focus should be cleared")
	}
	if v.NodeCount() != 2 {
		t.Errorf("expected full graph, got %d nodes", v.NodeCount())
	}
}

func TestApply_Locations(t *testing.T) {
	nodes := []*Node{
		{ID: ID("x", "P1")}, {ID: ID("y", "P1")}, {ID: ID("x", "P2")},
	}
	edges := []Edge{
		{Source: ID("x", "P1"), Target: ID("y", "P1")},
		{Source: ID("x", "P1"), Target: ID("x", "P2")},
	}
	f := DefaultFilter()
	f.Locations = []string{"P1"}
	v := Apply(New(nodes, edges), f, Identity{})

	if v.NodeCount() != 2 || v.EdgeCount() != 1 {
		t.Errorf("got %d nodes, %d edges; want 2, 1", v.NodeCount(), v.EdgeCount())
	}
	if v.Node(ID("x", "P1")).Degree != 1 {
		t.Errorf("degree should count only visible edges, got %d", v.Node(ID("x", "P1")).Degree)
	}
}

func TestApply_HideOrphans(t *testing.T) {
	g := newTestGraph("a>b", "lonely")
	f := DefaultFilter()
	f.HideOrphans = true

	v := Apply(g, f, Identity{})
	if got := nodeItems(v.Graph); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("nodes = %v, want [a b]", got)
	}

	// Ignored while focused: a focused orphan stays visible.
	v = Apply(g, f, l("lonely"))
	if !v.Focused() {
		t.Fatal("focus on an orphan should stay active")
	}
	if got := nodeItems(v.Graph); !reflect.DeepEqual(got, []string{"lonely"}) {
		t.Errorf("nodes = %v, want [lonely]", got)
	}
}

func TestApply_Neighbors(t *testing.T) {
	g := newTestGraph("a>b", "b>c", "c>d")

	v := Apply(g, DefaultFilter(), l("b"))
	for item, want := range map[string]bool{"a": true, "c": true, "d": false, "b": false} {
		if got := v.IsNeighbor(l(item)); got != want {
			t.Errorf("IsNeighbor(%s) = %v, want %v", item, got, want)
		}
	}
}

// Inventory rows define X (finished good at plant A) and Y (raw material);
// a BOM row at site A links them.
func TestScenario_PlantAndRawMaterial(t *testing.T) {
	records := []inventory.Record{
		rec("X", "A", "", 10, 10),
		rec("Y", "A", "RM", 5, 10),
	}
	boms := []inventory.BOM{{Parent: "X", Child: "Y", Site: "A"}}
	g, _ := Build(records, boms, NewSites([]string{"A"}, nil))

	if g.NodeCount() != 2 || g.EdgeCount() != 1 {
		t.Fatalf("built %d nodes, %d edges; want 2, 1", g.NodeCount(), g.EdgeCount())
	}
	if g.Node(ID("X", "A")).Category != FinishedGood {
		t.Errorf("X category = %s, want FG", g.Node(ID("X", "A")).Category)
	}

	want := []string{"X", "Y"}
	for _, focus := range []string{"X", "Y", ""} {
		var id Identity
		if focus != "" {
			id = ID(focus, "A")
		}
		v := Apply(g, DefaultFilter(), id)
		if got := nodeItems(v.Graph); !reflect.DeepEqual(got, want) {
			t.Errorf("focus %q: nodes = %v, want %v", focus, got, want)
		}
		if v.EdgeCount() != 1 {
			t.Errorf("focus %q: edges = %d, want 1", focus, v.EdgeCount())
		}
	}
}

func TestHideCategories(t *testing.T) {
	f := DefaultFilter()
	if err := f.HideCategories([]string{"rm", " DC "}); err != nil {
		t.Fatalf("HideCategories() error = %v", err)
	}
	if f.ShowRM || !f.ShowFG || f.ShowDC {
		t.Errorf("after hiding RM and DC: %+v", f)
	}

	g := DefaultFilter()
	if err := g.HideCategories([]string{"FG", "XX"}); err == nil {
		t.Error("HideCategories() accepted an unknown category")
	}
	if !g.ShowFG {
		t.Error("failed HideCategories() modified the filter")
	}
}
