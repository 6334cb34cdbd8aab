package metrics

import "github.com/supplynet/scmap/internal/graph"

// Adjacency is a directed graph over identities with a fixed node order,
// so every computation visits nodes the same way on every run.
type Adjacency struct {
	Nodes []graph.Identity
	Out   map[graph.Identity][]graph.Identity
}

// Dependencies turns g into its dependency view: an edge u -> v means u
// cannot be stocked without v. A parent item depends on the children it
// consumes, and a DC depends on the plant that ships to it, so flow edges
// are reversed.
func Dependencies(g *graph.Graph) Adjacency {
	a := Adjacency{Out: make(map[graph.Identity][]graph.Identity)}
	if g == nil {
		return a
	}
	a.Nodes = make([]graph.Identity, 0, len(g.Nodes))
	for _, n := range g.Nodes {
		a.Nodes = append(a.Nodes, n.ID)
	}
	for _, e := range g.Edges {
		from, to := e.Source, e.Target
		if e.Kind == graph.FlowEdge {
			from, to = to, from
		}
		a.Out[from] = append(a.Out[from], to)
	}
	return a
}

// InDegree counts, per node, how many nodes depend on it directly.
func (a Adjacency) InDegree() map[graph.Identity]int {
	in := make(map[graph.Identity]int, len(a.Nodes))
	for _, targets := range a.Out {
		for _, t := range targets {
			in[t]++
		}
	}
	return in
}
