package graph

// Path is a sequence of node identities joined by edges.
type Path []Identity

// ShortestPath returns the shortest directed path from start to end, or nil
// when end is unreachable. direction "reverse" walks edges backwards, which
// answers "what does end feed from" questions.
func (g *Graph) ShortestPath(start, end Identity, direction string) Path {
	if !g.Has(start) || !g.Has(end) {
		return nil
	}
	if start == end {
		return Path{start}
	}

	next := g.succ
	if direction == "reverse" {
		next = g.pred
	}

	parent := map[Identity]Identity{start: start}
	queue := []Identity{start}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, n := range next[current] {
			if _, seen := parent[n]; seen {
				continue
			}
			parent[n] = current
			if n == end {
				return buildPath(parent, start, end)
			}
			queue = append(queue, n)
		}
	}
	return nil
}

func buildPath(parent map[Identity]Identity, start, end Identity) Path {
	var rev Path
	for at := end; ; at = parent[at] {
		rev = append(rev, at)
		if at == start {
			break
		}
	}
	path := make(Path, len(rev))
	for i, id := range rev {
		path[len(rev)-1-i] = id
	}
	return path
}

// Upstream returns every node that feeds id, nearest first, excluding id.
func (g *Graph) Upstream(id Identity) []Identity {
	return dropFirst(g.BFS(id, "reverse"))
}

// Downstream returns every node id feeds, nearest first, excluding id.
func (g *Graph) Downstream(id Identity) []Identity {
	return dropFirst(g.BFS(id, "forward"))
}

func dropFirst(ids []Identity) []Identity {
	if len(ids) == 0 {
		return nil
	}
	return ids[1:]
}
