package graph

// Graph represents an in-memory supply-chain graph.
type Graph struct {
	Nodes []*Node
	Edges []Edge

	index map[Identity]*Node
	// Adjacency list: node -> nodes it points at (parent -> child, plant -> DC)
	succ map[Identity][]Identity
	// Reverse adjacency: node -> nodes pointing at it
	pred map[Identity][]Identity
}

// New indexes nodes and edges. Edges whose endpoints are not both present
// are dropped, so a Graph never holds a dangling edge.
func New(nodes []*Node, edges []Edge) *Graph {
	g := &Graph{
		Nodes: nodes,
		Edges: make([]Edge, 0, len(edges)),
		index: make(map[Identity]*Node, len(nodes)),
		succ:  make(map[Identity][]Identity),
		pred:  make(map[Identity][]Identity),
	}

	for _, n := range nodes {
		g.index[n.ID] = n
	}

	for _, e := range edges {
		if !g.Has(e.Source) || !g.Has(e.Target) {
			continue
		}
		g.Edges = append(g.Edges, e)
		g.succ[e.Source] = append(g.succ[e.Source], e.Target)
		g.pred[e.Target] = append(g.pred[e.Target], e.Source)
	}

	return g
}

// Node returns the node with the given identity, or nil.
func (g *Graph) Node(id Identity) *Node {
	if g == nil {
		return nil
	}
	return g.index[id]
}

// Has reports whether the identity is a node of the graph.
func (g *Graph) Has(id Identity) bool {
	return g.Node(id) != nil
}

// NodeCount returns the number of nodes in the graph.
func (g *Graph) NodeCount() int {
	return len(g.Nodes)
}

// EdgeCount returns the number of edges in the graph.
func (g *Graph) EdgeCount() int {
	return len(g.Edges)
}

// OutDegree returns the number of outgoing edges from a node.
func (g *Graph) OutDegree(id Identity) int {
	return len(g.succ[id])
}

// InDegree returns the number of incoming edges to a node.
func (g *Graph) InDegree(id Identity) int {
	return len(g.pred[id])
}

// Successors returns the nodes this node points at.
func (g *Graph) Successors(id Identity) []Identity {
	return g.succ[id]
}

// Predecessors returns the nodes pointing at this node.
func (g *Graph) Predecessors(id Identity) []Identity {
	return g.pred[id]
}

// Subgraph creates a new graph containing only the specified nodes and the
// edges between them. Node values are shared with g, not copied, so layout
// state written through the subgraph is visible in g.
func (g *Graph) Subgraph(keep map[Identity]bool) *Graph {
	nodes := make([]*Node, 0, len(keep))
	for _, n := range g.Nodes {
		if keep[n.ID] {
			nodes = append(nodes, n)
		}
	}
	return New(nodes, g.Edges)
}

// countDegrees sets Degree on every node to the number of incident edges.
func countDegrees(nodes []*Node, edges []Edge) {
	byID := make(map[Identity]*Node, len(nodes))
	for _, n := range nodes {
		n.Degree = 0
		byID[n.ID] = n
	}
	for _, e := range edges {
		if n := byID[e.Source]; n != nil {
			n.Degree++
		}
		if n := byID[e.Target]; n != nil && e.Target != e.Source {
			n.Degree++
		}
	}
}
