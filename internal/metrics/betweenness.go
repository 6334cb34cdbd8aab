package metrics

import "github.com/supplynet/scmap/internal/graph"

// Betweenness calculates betweenness centrality using Brandes algorithm.
// Scores are normalized by (n-1)(n-2), the number of ordered pairs a node
// can sit between.
//
// A node with high betweenness lies on many shortest dependency chains,
// such as a plant finished good that links several DCs to its raw
// materials.
func Betweenness(a Adjacency) map[graph.Identity]float64 {
	n := len(a.Nodes)
	bc := make(map[graph.Identity]float64, n)
	for _, id := range a.Nodes {
		bc[id] = 0
	}
	if n < 3 {
		return bc
	}

	for _, source := range a.Nodes {
		stack := make([]graph.Identity, 0, n)
		pred := make(map[graph.Identity][]graph.Identity)
		sigma := map[graph.Identity]float64{source: 1}
		dist := map[graph.Identity]int{source: 0}

		queue := []graph.Identity{source}
		for len(queue) > 0 {
			v := queue[0]
			queue = queue[1:]
			stack = append(stack, v)

			for _, w := range a.Out[v] {
				if _, seen := dist[w]; !seen {
					dist[w] = dist[v] + 1
					queue = append(queue, w)
				}
				if dist[w] == dist[v]+1 {
					sigma[w] += sigma[v]
					pred[w] = append(pred[w], v)
				}
			}
		}

		// Stack pops vertices in order of non-increasing distance from source
		delta := make(map[graph.Identity]float64)
		for len(stack) > 0 {
			w := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			for _, v := range pred[w] {
				delta[v] += (sigma[v] / sigma[w]) * (1 + delta[w])
			}
			if w != source {
				bc[w] += delta[w]
			}
		}
	}

	norm := float64((n - 1) * (n - 2))
	for id := range bc {
		bc[id] /= norm
	}
	return bc
}
