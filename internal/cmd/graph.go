package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/supplynet/scmap/internal/graph"
	"github.com/supplynet/scmap/internal/output"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Print the filtered supply-chain graph",
	Long: `Build the graph from the stored inventory and print the filtered view.

Filters start from the view section of the config; flags override them.
With --focus the view is restricted to the node, the finished goods it ships
to or from, and the items it consumes or is consumed by, including
neighbors at other locations.

Output Structure:
  focus:    The focal node, when set
  summary:  Node and edge counts, by category and by health
  nodes:    Identity, category, health and degree (stock at medium, layout at dense)
  edges:    [from, to, kind] where kind is bom or flow

Examples:
  scmap graph                                   # Whole network summary
  scmap graph --focus FG-100@PLANT1             # Focused neighborhood
  scmap graph --hide rm --locations PLANT1,DC1  # Finished goods at two sites
  scmap graph --mermaid > network.mmd           # Mermaid flowchart
  scmap graph --path RM-7@PLANT1,FG-100@DC1     # Shortest path
  scmap graph --density dense --format json`,
	Args: cobra.NoArgs,
	RunE: runGraph,
}

var (
	graphFocus       string
	graphHide        string
	graphLocations   string
	graphHideOrphans bool
	graphMermaid     bool
	graphPath        string
	graphReverse     bool
)

func init() {
	rootCmd.AddCommand(graphCmd)

	graphCmd.Flags().StringVar(&graphFocus, "focus", "", "Focus on ITEM@LOCATION")
	graphCmd.Flags().StringVar(&graphHide, "hide", "", "Categories to hide (rm,fg,dc)")
	graphCmd.Flags().StringVar(&graphLocations, "locations", "", "Only show these locations (comma-separated)")
	graphCmd.Flags().BoolVar(&graphHideOrphans, "hide-orphans", false, "Hide nodes with no visible edges")
	graphCmd.Flags().BoolVar(&graphMermaid, "mermaid", false, "Print a Mermaid flowchart instead of YAML/JSON")
	graphCmd.Flags().StringVar(&graphPath, "path", "", "Shortest path FROM,TO (ITEM@LOCATION each)")
	graphCmd.Flags().BoolVar(&graphReverse, "reverse", false, "Walk edges backwards for --path")
}

func runGraph(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	density, err := output.ParseDensity(outputDensity)
	if err != nil {
		return fmt.Errorf("invalid density: %w", err)
	}

	filter, err := viewFilter(cfg, graphHide, graphLocations, graphHideOrphans)
	if err != nil {
		return err
	}

	var focus graph.Identity
	if graphFocus != "" {
		if focus, err = graph.ParseIdentity(graphFocus); err != nil {
			return err
		}
	}

	records, boms, err := loadData(cfg)
	if err != nil {
		return err
	}
	g, _ := graph.Build(records, boms, graph.NewSites(cfg.Sites.Plants, cfg.Sites.DCs))

	out := cmd.OutOrStdout()

	if graphPath != "" {
		from, to, err := parsePathArg(graphPath)
		if err != nil {
			return err
		}
		direction := "forward"
		if graphReverse {
			direction = "reverse"
		}
		return writeOutput(out, cfg, output.NewPathOutput(from, to, g.ShortestPath(from, to, direction)))
	}

	if !focus.IsZero() && !g.Has(focus) {
		return fmt.Errorf("node %s not found", focus)
	}

	view := graph.Apply(g, filter, focus)

	if graphMermaid {
		opts := graph.DefaultMermaidOptions()
		opts.Health = true
		if view.Focused() {
			opts.Title = "Focus: " + view.Focus.String()
		}
		fmt.Fprint(out, graph.GenerateMermaid(view.Graph, opts))
		return nil
	}

	return writeOutput(out, cfg, output.NewGraphOutput(view, density))
}
