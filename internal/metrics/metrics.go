// Package metrics ranks supply-chain nodes by how much of the network
// depends on them. It includes PageRank-based importance and
// betweenness-based bottleneck detection over the dependency view of a
// graph.
package metrics

import (
	"sort"

	"github.com/supplynet/scmap/internal/graph"
)

// Importance represents the classification level based on PageRank score.
type Importance string

const (
	Critical Importance = "critical"
	High     Importance = "high"
	Medium   Importance = "medium"
	Low      Importance = "low"
)

// Thresholds contains the cutoffs used to classify scores. PageRank and
// betweenness are compared after scaling by the highest score in the graph,
// so the same thresholds fit a ten-node plant and a regional network.
type Thresholds struct {
	Critical float64 // Default: 0.50
	High     float64 // Default: 0.30
	Medium   float64 // Default: 0.10

	// A keystone has scaled PageRank >= KeystonePR and at least
	// KeystoneDependents direct dependents.
	KeystonePR         float64 // Default: 0.30
	KeystoneDependents int     // Default: 3

	Bottleneck float64 // Default: 0.50
}

// DefaultThresholds returns the default importance thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{
		Critical:           0.50,
		High:               0.30,
		Medium:             0.10,
		KeystonePR:         0.30,
		KeystoneDependents: 3,
		Bottleneck:         0.50,
	}
}

// Classify returns the importance level for a scaled PageRank score.
func (t Thresholds) Classify(scaled float64) Importance {
	switch {
	case scaled >= t.Critical:
		return Critical
	case scaled >= t.High:
		return High
	case scaled >= t.Medium:
		return Medium
	default:
		return Low
	}
}

// Score holds the computed metrics for one node.
type Score struct {
	Node        graph.Identity
	PageRank    float64
	Betweenness float64
	// Dependents counts nodes that depend on this one directly: parents
	// consuming a child item, or DCs supplied by a plant finished good.
	Dependents int
	Importance Importance
	Keystone   bool
	Bottleneck bool
}

// Compute scores every node of g, highest PageRank first. Ties keep the
// graph's node order.
func Compute(g *graph.Graph, t Thresholds) []Score {
	a := Dependencies(g)
	if len(a.Nodes) == 0 {
		return nil
	}

	pr := PageRank(a, DefaultPageRankConfig()).Scores
	bc := Betweenness(a)
	in := a.InDegree()

	maxPR, maxBC := 0.0, 0.0
	for _, id := range a.Nodes {
		maxPR = max(maxPR, pr[id])
		maxBC = max(maxBC, bc[id])
	}

	scores := make([]Score, 0, len(a.Nodes))
	for _, id := range a.Nodes {
		s := Score{
			Node:        id,
			PageRank:    pr[id],
			Betweenness: bc[id],
			Dependents:  in[id],
		}
		scaledPR := scale(s.PageRank, maxPR)
		s.Importance = t.Classify(scaledPR)
		s.Keystone = scaledPR >= t.KeystonePR && s.Dependents >= t.KeystoneDependents
		s.Bottleneck = s.Betweenness > 0 && scale(s.Betweenness, maxBC) >= t.Bottleneck
		scores = append(scores, s)
	}

	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].PageRank > scores[j].PageRank
	})
	return scores
}

// TopN returns at most n scores from the front of scores.
func TopN(scores []Score, n int) []Score {
	if n <= 0 || n >= len(scores) {
		return scores
	}
	return scores[:n]
}

func scale(v, maxV float64) float64 {
	if maxV <= 0 {
		return 0
	}
	return v / maxV
}
