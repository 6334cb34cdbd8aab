package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/supplynet/scmap/internal/engine"
	"github.com/supplynet/scmap/internal/live"
	"github.com/supplynet/scmap/internal/mcp"
	"golang.org/x/sync/errgroup"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the live view and, optionally, an MCP server",
	Long: `Load the stored graph into a running scene and serve it.

The live view streams frames to browsers over a websocket at --addr. Pointer
events from the browser pan, zoom, drag and focus; the force simulation runs
on a single frame loop.

With --mcp the same scene is also exposed over MCP (stdio transport), so an
agent focusing a node moves every connected browser. Add --no-live to run
MCP alone.

Available Tools:
  scm_focus    Focus the view on ITEM@LOCATION (or clear it)
  scm_node     Details and neighbors of one node
  scm_stats    Scene counts and simulation state
  scm_path     Shortest path between two nodes
  scm_graph    The filtered view
  scm_filter   Change category, location and orphan filters
  scm_rank     Rank nodes by supply risk

Examples:
  scmap serve                              # Live view on the configured address
  scmap serve --addr :9000 --fps 60
  scmap serve --mcp                        # Live view plus MCP on stdio
  scmap serve --mcp --no-live --tools focus,node
  scmap serve --mcp --timeout 30m          # Stop MCP after 30m idle`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

var (
	serveAddr    string
	serveFPS     int
	serveMCP     bool
	serveNoLive  bool
	serveTools   string
	serveTimeout string
)

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default from config)")
	serveCmd.Flags().IntVar(&serveFPS, "fps", 0, "Frame rate (default from config)")
	serveCmd.Flags().BoolVar(&serveMCP, "mcp", false, "Also serve MCP tools over stdio")
	serveCmd.Flags().BoolVar(&serveNoLive, "no-live", false, "Do not start the browser view (requires --mcp)")
	serveCmd.Flags().StringVar(&serveTools, "tools", "", "Comma-separated MCP tools to expose (default: all)")
	serveCmd.Flags().StringVar(&serveTimeout, "timeout", "0", "MCP inactivity timeout (0 for no timeout)")
}

func runServe(cmd *cobra.Command, args []string) error {
	if serveNoLive && !serveMCP {
		return fmt.Errorf("--no-live leaves nothing to serve; add --mcp")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	addr := cfg.Serve.Addr
	if serveAddr != "" {
		addr = serveAddr
	}
	fps := cfg.Serve.FPS
	if serveFPS > 0 {
		fps = serveFPS
	}
	timeout, err := parseDuration(serveTimeout)
	if err != nil {
		return fmt.Errorf("invalid timeout: %w", err)
	}

	opts, err := cfg.EngineOptions()
	if err != nil {
		return err
	}
	records, boms, err := loadData(cfg)
	if err != nil {
		return err
	}

	logger := slog.Default()
	scene := engine.NewScene(opts)
	built := scene.Load(records, boms)
	logger.Info("graph loaded",
		"nodes", scene.Graph().NodeCount(),
		"edges", scene.Graph().EdgeCount(),
		"dropped_rows", built.DroppedRows,
		"dropped_bom_rows", built.DroppedBOMRows)

	loop := engine.NewLoop(scene, fps, logger)

	var mcpSrv *mcp.Server
	if serveMCP {
		mcpSrv, err = mcp.New(loop, mcp.Config{Tools: parseToolList(serveTools), Timeout: timeout})
		if err != nil {
			return fmt.Errorf("failed to create MCP server: %w", err)
		}
	}

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	// Attach before the loop starts so OnFrame is set on this goroutine.
	var liveSrv *live.Server
	if !serveNoLive {
		liveSrv = live.NewServer(loop, logger)
		liveSrv.Attach(scene)
	}

	g.Go(func() error { return loop.Run(ctx) })

	if liveSrv != nil {
		httpSrv := &http.Server{
			Addr:              addr,
			Handler:           liveSrv.Handler(),
			ReadHeaderTimeout: 10 * time.Second,
		}
		g.Go(func() error { return liveSrv.Run(ctx) })
		g.Go(func() error {
			logger.Info("live view listening", "url", "http://"+displayAddr(addr))
			if err := httpSrv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return httpSrv.Shutdown(shutdownCtx)
		})
	}

	if mcpSrv != nil {
		g.Go(func() error {
			err := mcpSrv.ServeStdio(ctx)
			// The MCP client going away ends the session.
			stop()
			return err
		})
	}

	err = g.Wait()
	logger.Info("scmap serve: shut down")
	return err
}

// parseToolList expands a comma-separated tool list, accepting names
// without the scm_ prefix.
func parseToolList(s string) []string {
	var tools []string
	for _, t := range splitList(s) {
		tools = append(tools, normalizeToolName(t))
	}
	return tools
}

// parseDuration parses a duration string, treating "0" as no timeout.
func parseDuration(s string) (time.Duration, error) {
	if s == "" || s == "0" {
		return 0, nil
	}
	return time.ParseDuration(s)
}

// displayAddr turns ":8090" into "localhost:8090" for log output.
func displayAddr(addr string) string {
	if strings.HasPrefix(addr, ":") {
		return "localhost" + addr
	}
	return addr
}
