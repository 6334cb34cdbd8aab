package metrics

import (
	"testing"

	"github.com/supplynet/scmap/internal/graph"
)

func node(item, loc string, c graph.Category) *graph.Node {
	return &graph.Node{ID: graph.ID(item, loc), Category: c}
}

func TestDependencies_ReversesFlow(t *testing.T) {
	g := graph.New(
		[]*graph.Node{
			node("FG", "P", graph.FinishedGood),
			node("RM", "P", graph.RawMaterial),
			node("FG", "D", graph.DistributionCenter),
		},
		[]graph.Edge{
			{Source: graph.ID("FG", "P"), Target: graph.ID("RM", "P"), Kind: graph.BOMEdge},
			{Source: graph.ID("FG", "P"), Target: graph.ID("FG", "D"), Kind: graph.FlowEdge},
		},
	)
	a := Dependencies(g)

	if len(a.Nodes) != 3 {
		t.Fatalf("nodes = %d, want 3", len(a.Nodes))
	}
	if out := a.Out[graph.ID("FG", "P")]; len(out) != 1 || out[0] != graph.ID("RM", "P") {
		t.Errorf("plant good should depend on its raw material only, got %v", out)
	}
	if out := a.Out[graph.ID("FG", "D")]; len(out) != 1 || out[0] != graph.ID("FG", "P") {
		t.Errorf("DC should depend on the plant good, got %v", out)
	}

	in := a.InDegree()
	if in[graph.ID("FG", "P")] != 1 || in[graph.ID("RM", "P")] != 1 || in[graph.ID("FG", "D")] != 0 {
		t.Errorf("in-degree = %v", in)
	}
}

func TestDependencies_Nil(t *testing.T) {
	a := Dependencies(nil)
	if len(a.Nodes) != 0 || a.Out == nil {
		t.Errorf("nil graph should give an empty adjacency, got %+v", a)
	}
}

func TestThresholdsClassify(t *testing.T) {
	th := DefaultThresholds()
	tests := []struct {
		scaled float64
		want   Importance
	}{
		{1.0, Critical},
		{0.5, Critical},
		{0.49, High},
		{0.3, High},
		{0.1, Medium},
		{0.05, Low},
		{0, Low},
	}
	for _, tt := range tests {
		if got := th.Classify(tt.scaled); got != tt.want {
			t.Errorf("Classify(%v) = %s, want %s", tt.scaled, got, tt.want)
		}
	}
}

func TestCompute_SharedRawMaterial(t *testing.T) {
	// Three finished goods at one plant consume RM; FG1 ships to two DCs.
	nodes := []*graph.Node{
		node("FG1", "P", graph.FinishedGood),
		node("FG2", "P", graph.FinishedGood),
		node("FG3", "P", graph.FinishedGood),
		node("RM", "P", graph.RawMaterial),
		node("FG1", "D1", graph.DistributionCenter),
		node("FG1", "D2", graph.DistributionCenter),
	}
	var edges []graph.Edge
	for _, fg := range []string{"FG1", "FG2", "FG3"} {
		edges = append(edges, graph.Edge{Source: graph.ID(fg, "P"), Target: graph.ID("RM", "P"), Kind: graph.BOMEdge})
	}
	edges = append(edges,
		graph.Edge{Source: graph.ID("FG1", "P"), Target: graph.ID("FG1", "D1"), Kind: graph.FlowEdge},
		graph.Edge{Source: graph.ID("FG1", "P"), Target: graph.ID("FG1", "D2"), Kind: graph.FlowEdge},
	)
	scores := Compute(graph.New(nodes, edges), DefaultThresholds())

	if len(scores) != len(nodes) {
		t.Fatalf("scores = %d, want %d", len(scores), len(nodes))
	}
	top := scores[0]
	if top.Node != graph.ID("RM", "P") {
		t.Errorf("top node = %v, want the shared raw material", top.Node)
	}
	if top.Importance != Critical || top.Dependents != 3 || !top.Keystone {
		t.Errorf("raw material score = %+v, want critical keystone with 3 dependents", top)
	}

	byNode := make(map[graph.Identity]Score)
	for _, s := range scores {
		byNode[s.Node] = s
	}
	fg1 := byNode[graph.ID("FG1", "P")]
	if !fg1.Bottleneck {
		t.Errorf("FG1@P links DCs to the raw material and should be a bottleneck: %+v", fg1)
	}
	if byNode[graph.ID("FG1", "D1")].Bottleneck {
		t.Error("a DC with no dependents cannot be a bottleneck")
	}

	for i := 1; i < len(scores); i++ {
		if scores[i].PageRank > scores[i-1].PageRank {
			t.Fatalf("scores not sorted at %d", i)
		}
	}
}

func TestCompute_Empty(t *testing.T) {
	if scores := Compute(graph.New(nil, nil), DefaultThresholds()); scores != nil {
		t.Errorf("empty graph = %v, want nil", scores)
	}
}

func TestTopN(t *testing.T) {
	scores := []Score{{PageRank: 3}, {PageRank: 2}, {PageRank: 1}}
	if got := TopN(scores, 2); len(got) != 2 {
		t.Errorf("TopN(2) = %d scores", len(got))
	}
	if got := TopN(scores, 0); len(got) != 3 {
		t.Errorf("TopN(0) should return all, got %d", len(got))
	}
	if got := TopN(scores, 10); len(got) != 3 {
		t.Errorf("TopN(10) = %d scores", len(got))
	}
}
