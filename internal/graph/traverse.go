package graph

// BFS performs breadth-first search starting from the given node.
// Returns all nodes reachable from start in BFS order, start first.
// direction: "forward" follows edges, "reverse" follows reverse edges.
func (g *Graph) BFS(start Identity, direction string) []Identity {
	return g.BFSDepth(start, direction, -1)
}

// BFSDepth is BFS limited to maxDepth hops from start. A negative maxDepth
// means no limit.
func (g *Graph) BFSDepth(start Identity, direction string, maxDepth int) []Identity {
	if !g.Has(start) {
		return nil
	}

	var getNeighbors func(Identity) []Identity
	if direction == "reverse" {
		getNeighbors = func(n Identity) []Identity { return g.pred[n] }
	} else {
		getNeighbors = func(n Identity) []Identity { return g.succ[n] }
	}

	depth := map[Identity]int{start: 0}
	result := []Identity{}
	queue := []Identity{start}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		result = append(result, current)

		if maxDepth >= 0 && depth[current] >= maxDepth {
			continue
		}
		for _, neighbor := range getNeighbors(current) {
			if _, seen := depth[neighbor]; !seen {
				depth[neighbor] = depth[current] + 1
				queue = append(queue, neighbor)
			}
		}
	}

	return result
}

// UpstreamDepth is how far Reachable walks against edge direction.
const UpstreamDepth = 1

// Reachable returns the focus set of start: start itself, everything
// reachable from it following edges (its full bill of materials and the
// DCs it supplies), and the nodes within UpstreamDepth hops that point at
// it (its direct consumers). The two walks are independent, so a sibling
// that shares a parent with start is not included.
func (g *Graph) Reachable(start Identity) map[Identity]bool {
	return g.ReachableDepth(start, -1, UpstreamDepth)
}

// ReachableDepth is Reachable with explicit hop limits for each direction.
// Negative limits mean unlimited.
func (g *Graph) ReachableDepth(start Identity, forward, reverse int) map[Identity]bool {
	allowed := make(map[Identity]bool)
	if !g.Has(start) {
		return allowed
	}
	allowed[start] = true
	for _, id := range g.BFSDepth(start, "forward", forward) {
		allowed[id] = true
	}
	for _, id := range g.BFSDepth(start, "reverse", reverse) {
		allowed[id] = true
	}
	return allowed
}

// Neighbors returns the direct successors and predecessors of id.
func (g *Graph) Neighbors(id Identity) map[Identity]bool {
	out := make(map[Identity]bool, len(g.succ[id])+len(g.pred[id]))
	for _, n := range g.succ[id] {
		out[n] = true
	}
	for _, n := range g.pred[id] {
		out[n] = true
	}
	return out
}
