package metrics

import (
	"math"

	"github.com/supplynet/scmap/internal/graph"
)

// PageRankConfig holds algorithm parameters for PageRank computation.
type PageRankConfig struct {
	// Damping is the damping factor (probability of following a link).
	// Standard value is 0.85.
	Damping float64

	// MaxIterations is the maximum number of iterations before stopping.
	MaxIterations int

	// Tolerance is the convergence threshold.
	// Iteration stops when max change between iterations < Tolerance.
	Tolerance float64
}

// DefaultPageRankConfig returns the default PageRank configuration.
func DefaultPageRankConfig() PageRankConfig {
	return PageRankConfig{
		Damping:       0.85,
		MaxIterations: 100,
		Tolerance:     0.0001,
	}
}

// PageRankResult contains the PageRank computation results.
type PageRankResult struct {
	// Scores maps nodes to their PageRank scores; they sum to 1.
	Scores map[graph.Identity]float64

	// Iterations is the number of iterations performed
	Iterations int

	// Converged indicates whether the algorithm converged within MaxIterations
	Converged bool

	// FinalDelta is the maximum change in the last iteration
	FinalDelta float64
}

// PageRank scores every node of a. Rank flows along dependency edges, so
// it pools at whatever many stocked items ultimately rely on.
func PageRank(a Adjacency, config PageRankConfig) PageRankResult {
	n := len(a.Nodes)
	if n == 0 {
		return PageRankResult{Converged: true}
	}

	pr := make(map[graph.Identity]float64, n)
	for _, id := range a.Nodes {
		pr[id] = 1.0 / float64(n)
	}

	incoming := buildIncomingLinks(a)

	result := PageRankResult{Scores: pr, FinalDelta: 1.0}

	for iter := 0; iter < config.MaxIterations; iter++ {
		next := make(map[graph.Identity]float64, n)
		maxDelta := 0.0

		// Nodes with no outgoing links spread their rank evenly
		danglingSum := 0.0
		for _, id := range a.Nodes {
			if len(a.Out[id]) == 0 {
				danglingSum += pr[id]
			}
		}
		base := (1.0-config.Damping)/float64(n) + config.Damping*danglingSum/float64(n)

		for _, id := range a.Nodes {
			score := base
			for _, in := range incoming[id] {
				score += config.Damping * pr[in.source] / float64(in.outDegree)
			}
			next[id] = score
			if delta := math.Abs(score - pr[id]); delta > maxDelta {
				maxDelta = delta
			}
		}

		pr = next
		result.Iterations = iter + 1
		result.FinalDelta = maxDelta

		if maxDelta < config.Tolerance {
			result.Converged = true
			break
		}
	}

	result.Scores = pr
	return result
}

// incomingLink represents a link from source with its out-degree
type incomingLink struct {
	source    graph.Identity
	outDegree int
}

// buildIncomingLinks builds a reverse index of incoming links for each node
func buildIncomingLinks(a Adjacency) map[graph.Identity][]incomingLink {
	incoming := make(map[graph.Identity][]incomingLink, len(a.Nodes))
	for _, source := range a.Nodes {
		targets := a.Out[source]
		for _, target := range targets {
			incoming[target] = append(incoming[target], incomingLink{
				source:    source,
				outDegree: len(targets),
			})
		}
	}
	return incoming
}
