package output

import (
	"math"

	"github.com/supplynet/scmap/internal/graph"
	"github.com/supplynet/scmap/internal/metrics"
)

// GraphOutput is the document printed by scmap graph.
type GraphOutput struct {
	Focus   string        `yaml:"focus,omitempty" json:"focus,omitempty"`
	Summary GraphSummary  `yaml:"summary" json:"summary"`
	Nodes   []*NodeOutput `yaml:"nodes" json:"nodes"`
	Edges   []*EdgeOutput `yaml:"edges,omitempty" json:"edges,omitempty"`
}

// GraphSummary counts what the view holds.
type GraphSummary struct {
	Nodes      int            `yaml:"nodes" json:"nodes"`
	Edges      int            `yaml:"edges" json:"edges"`
	ByCategory map[string]int `yaml:"by_category" json:"by_category"`
	ByHealth   map[string]int `yaml:"by_health" json:"by_health"`
}

// NodeOutput describes one node.
type NodeOutput struct {
	ID       string `yaml:"id" json:"id"`
	Category string `yaml:"category,omitempty" json:"category,omitempty"`
	Health   string `yaml:"health,omitempty" json:"health,omitempty"`
	Degree   int    `yaml:"degree,omitempty" json:"degree,omitempty"`

	// Stock is present in dense output only
	Stock *Stock `yaml:"stock,omitempty" json:"stock,omitempty"`

	// Position is present in dense output only
	Position *Position `yaml:"position,omitempty" json:"position,omitempty"`
}

// Stock holds a node's inventory levels.
type Stock struct {
	Current float64 `yaml:"current" json:"current"`
	Target  float64 `yaml:"target" json:"target"`
	// Ratio is current over target as a percentage
	Ratio float64 `yaml:"ratio" json:"ratio"`
}

// Position is a layout coordinate.
type Position struct {
	X float64 `yaml:"x" json:"x"`
	Y float64 `yaml:"y" json:"y"`
}

// EdgeOutput describes one edge.
type EdgeOutput struct {
	From string `yaml:"from" json:"from"`
	To   string `yaml:"to" json:"to"`
	Kind string `yaml:"kind" json:"kind"`
}

// PathOutput is the document printed for a path query.
type PathOutput struct {
	From  string   `yaml:"from" json:"from"`
	To    string   `yaml:"to" json:"to"`
	Found bool     `yaml:"found" json:"found"`
	Hops  int      `yaml:"hops" json:"hops"`
	Path  []string `yaml:"path,omitempty" json:"path,omitempty"`
}

// NewGraphOutput describes view at density d.
func NewGraphOutput(view *graph.View, d Density) *GraphOutput {
	out := &GraphOutput{
		Summary: GraphSummary{
			ByCategory: make(map[string]int),
			ByHealth:   make(map[string]int),
		},
		Nodes: make([]*NodeOutput, 0),
	}
	if view == nil || view.Graph == nil {
		return out
	}
	if view.Focused() {
		out.Focus = view.Focus.String()
	}

	out.Summary.Nodes = view.NodeCount()
	out.Summary.Edges = view.EdgeCount()

	for _, n := range view.Nodes {
		out.Summary.ByCategory[n.Category.String()]++
		out.Summary.ByHealth[n.Health().String()]++
		out.Nodes = append(out.Nodes, NewNodeOutput(n, d))
	}

	if d.IncludesEdges() {
		for _, e := range view.Edges {
			out.Edges = append(out.Edges, &EdgeOutput{
				From: e.Source.String(),
				To:   e.Target.String(),
				Kind: e.Kind.String(),
			})
		}
	}
	return out
}

// NewNodeOutput describes n at density d.
func NewNodeOutput(n *graph.Node, d Density) *NodeOutput {
	out := &NodeOutput{ID: n.ID.String()}
	if d == DensitySparse {
		return out
	}
	out.Category = n.Category.String()
	out.Health = n.Health().String()
	out.Degree = n.Degree
	if d.IncludesStock() {
		out.Stock = &Stock{Current: n.Current, Target: n.Target, Ratio: round2(n.Ratio())}
	}
	if d.IncludesLayout() {
		out.Position = &Position{X: round2(n.X), Y: round2(n.Y)}
	}
	return out
}

// NewPathOutput describes the result of a path query.
func NewPathOutput(from, to graph.Identity, p graph.Path) *PathOutput {
	out := &PathOutput{From: from.String(), To: to.String(), Found: len(p) > 0}
	if len(p) > 0 {
		out.Hops = len(p) - 1
	}
	for _, id := range p {
		out.Path = append(out.Path, id.String())
	}
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// RankOutput is the document printed by scmap rank.
type RankOutput struct {
	Nodes []*RankedNode `yaml:"nodes" json:"nodes"`
}

// RankedNode describes one node's criticality.
type RankedNode struct {
	ID          string  `yaml:"id" json:"id"`
	Category    string  `yaml:"category" json:"category"`
	Importance  string  `yaml:"importance" json:"importance"`
	PageRank    float64 `yaml:"pagerank" json:"pagerank"`
	Betweenness float64 `yaml:"betweenness,omitempty" json:"betweenness,omitempty"`
	Dependents  int     `yaml:"dependents" json:"dependents"`
	Keystone    bool    `yaml:"keystone,omitempty" json:"keystone,omitempty"`
	Bottleneck  bool    `yaml:"bottleneck,omitempty" json:"bottleneck,omitempty"`
}

// NewRankOutput describes scores computed over g.
func NewRankOutput(g *graph.Graph, scores []metrics.Score) *RankOutput {
	out := &RankOutput{Nodes: make([]*RankedNode, 0, len(scores))}
	for _, s := range scores {
		rn := &RankedNode{
			ID:          s.Node.String(),
			Importance:  string(s.Importance),
			PageRank:    round4(s.PageRank),
			Betweenness: round4(s.Betweenness),
			Dependents:  s.Dependents,
			Keystone:    s.Keystone,
			Bottleneck:  s.Bottleneck,
		}
		if n := g.Node(s.Node); n != nil {
			rn.Category = n.Category.String()
		}
		out.Nodes = append(out.Nodes, rn)
	}
	return out
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
