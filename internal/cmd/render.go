package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/supplynet/scmap/internal/engine"
	"github.com/supplynet/scmap/internal/graph"
	"github.com/supplynet/scmap/internal/render"
	"github.com/supplynet/scmap/internal/ui"
)

// renderCmd represents the render command
var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Lay out the graph headlessly and write a PNG or SVG snapshot",
	Long: `Run the force simulation without a browser, fit the result to the
canvas and write an image. The file extension picks the encoder.

The layout runs until it settles or --ticks is reached. Filters and the
color mode come from the config unless overridden.

Examples:
  scmap render --out network.png
  scmap render --out fg100.svg --focus FG-100@PLANT1 --color health
  scmap render --out big.png --width 3000 --height 2000 --ticks 1500`,
	Args: cobra.NoArgs,
	RunE: runRender,
}

var (
	renderOut         string
	renderTicks       int
	renderFocus       string
	renderColor       string
	renderWidth       int
	renderHeight      int
	renderHide        string
	renderLocations   string
	renderHideOrphans bool
)

func init() {
	rootCmd.AddCommand(renderCmd)

	renderCmd.Flags().StringVarP(&renderOut, "out", "o", "", "Output file (.png or .svg)")
	renderCmd.Flags().IntVar(&renderTicks, "ticks", 600, "Maximum simulation ticks before drawing")
	renderCmd.Flags().StringVar(&renderFocus, "focus", "", "Focus on ITEM@LOCATION")
	renderCmd.Flags().StringVar(&renderColor, "color", "", "Color mode (category|health)")
	renderCmd.Flags().IntVar(&renderWidth, "width", 0, "Image width (default: viewport width)")
	renderCmd.Flags().IntVar(&renderHeight, "height", 0, "Image height (default: viewport height)")
	renderCmd.Flags().StringVar(&renderHide, "hide", "", "Categories to hide (rm,fg,dc)")
	renderCmd.Flags().StringVar(&renderLocations, "locations", "", "Only show these locations (comma-separated)")
	renderCmd.Flags().BoolVar(&renderHideOrphans, "hide-orphans", false, "Hide nodes with no visible edges")
	renderCmd.MarkFlagRequired("out")
}

// snapshotCanvas is a canvas that can be written to a file.
type snapshotCanvas interface {
	render.Canvas
	save(path string) error
}

type pngSnapshot struct{ *render.RasterCanvas }

func (c pngSnapshot) save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := c.WritePNG(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

type svgSnapshot struct{ *render.SVGCanvas }

func (c svgSnapshot) save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := c.WriteTo(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// newSnapshotCanvas picks the encoder from the file extension.
func newSnapshotCanvas(path string, w, h int) (snapshotCanvas, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return pngSnapshot{render.NewRasterCanvas(w, h)}, nil
	case ".svg":
		return svgSnapshot{render.NewSVGCanvas(w, h)}, nil
	default:
		return nil, fmt.Errorf("unsupported output %q: use .png or .svg", path)
	}
}

func runRender(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	opts, err := cfg.EngineOptions()
	if err != nil {
		return err
	}
	if opts.Filter, err = viewFilter(cfg, renderHide, renderLocations, renderHideOrphans); err != nil {
		return err
	}
	if renderColor != "" {
		if opts.Render.Mode, err = render.ParseColorMode(renderColor); err != nil {
			return err
		}
	}
	if renderWidth > 0 {
		opts.Viewport.Width = float64(renderWidth)
	}
	if renderHeight > 0 {
		opts.Viewport.Height = float64(renderHeight)
	}

	canvas, err := newSnapshotCanvas(renderOut, int(opts.Viewport.Width), int(opts.Viewport.Height))
	if err != nil {
		return err
	}

	records, boms, err := loadData(cfg)
	if err != nil {
		return err
	}

	scene := engine.NewScene(opts)
	scene.Load(records, boms)
	if renderFocus != "" {
		id, err := graph.ParseIdentity(renderFocus)
		if err != nil {
			return err
		}
		if !scene.Graph().Has(id) {
			return fmt.Errorf("node %s not found", renderFocus)
		}
		scene.Focus(id)
	}

	ticks := scene.Settle(renderTicks)
	scene.Fit()
	drawn := scene.Draw(canvas)

	if err := canvas.save(renderOut); err != nil {
		return fmt.Errorf("writing %s: %w", renderOut, err)
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "%s Wrote %s (%d nodes, %d edges, %d labels, %d ticks)\n",
		ui.StatusIcon(true), renderOut, drawn.Nodes, drawn.Edges, drawn.Labels, ticks)
	if scene.Active() {
		fmt.Fprintf(cmd.ErrOrStderr(), "%s Layout had not settled; raise --ticks for a steadier picture\n", ui.WarnIcon())
	}
	return nil
}
