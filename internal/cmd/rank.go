package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/supplynet/scmap/internal/graph"
	"github.com/supplynet/scmap/internal/metrics"
	"github.com/supplynet/scmap/internal/output"
)

// rankCmd represents the rank command
var rankCmd = &cobra.Command{
	Use:   "rank",
	Short: "Rank nodes by how much of the network depends on them",
	Long: `Score every node of the filtered graph for supply risk.

Scores are computed on the dependency view of the graph: a finished good
depends on the raw materials it consumes, and a DC depends on the plant that
ships to it.

  pagerank     How much stock ultimately relies on the node
  betweenness  How often the node sits on the shortest dependency chain
  dependents   Nodes that depend on it directly

Keystones are high-ranked nodes with several direct dependents, such as a
raw material shared by many products. Bottlenecks sit between many pairs,
such as a plant good feeding several DCs.

Examples:
  scmap rank                          # Top 20 nodes
  scmap rank --top 5 --keystones      # Only keystones
  scmap rank --bottlenecks --format json
  scmap rank --locations PLANT1       # Rank within one site`,
	Args: cobra.NoArgs,
	RunE: runRank,
}

var (
	rankTop         int
	rankKeystones   bool
	rankBottlenecks bool
	rankHide        string
	rankLocations   string
)

func init() {
	rootCmd.AddCommand(rankCmd)

	rankCmd.Flags().IntVar(&rankTop, "top", 20, "Number of nodes to show (0 for all)")
	rankCmd.Flags().BoolVar(&rankKeystones, "keystones", false, "Only show keystones")
	rankCmd.Flags().BoolVar(&rankBottlenecks, "bottlenecks", false, "Only show bottlenecks")
	rankCmd.Flags().StringVar(&rankHide, "hide", "", "Categories to hide (rm,fg,dc)")
	rankCmd.Flags().StringVar(&rankLocations, "locations", "", "Only rank these locations (comma-separated)")
}

func runRank(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if rankTop < 0 {
		return fmt.Errorf("--top must be non-negative, got %d", rankTop)
	}
	filter, err := viewFilter(cfg, rankHide, rankLocations, false)
	if err != nil {
		return err
	}

	records, boms, err := loadData(cfg)
	if err != nil {
		return err
	}
	g, _ := graph.Build(records, boms, graph.NewSites(cfg.Sites.Plants, cfg.Sites.DCs))
	view := graph.Apply(g, filter, graph.Identity{})

	scores := filterScores(metrics.Compute(view.Graph, metrics.DefaultThresholds()), rankKeystones, rankBottlenecks)
	scores = metrics.TopN(scores, rankTop)

	return writeOutput(cmd.OutOrStdout(), cfg, output.NewRankOutput(view.Graph, scores))
}

// filterScores keeps keystones and/or bottlenecks when asked; with neither
// flag every score is kept.
func filterScores(scores []metrics.Score, keystones, bottlenecks bool) []metrics.Score {
	if !keystones && !bottlenecks {
		return scores
	}
	kept := make([]metrics.Score, 0, len(scores))
	for _, s := range scores {
		if (keystones && s.Keystone) || (bottlenecks && s.Bottleneck) {
			kept = append(kept, s)
		}
	}
	return kept
}
