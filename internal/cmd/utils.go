package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/supplynet/scmap/internal/config"
	"github.com/supplynet/scmap/internal/graph"
	"github.com/supplynet/scmap/internal/inventory"
	"github.com/supplynet/scmap/internal/output"
	"github.com/supplynet/scmap/internal/store"
)

// Shared helpers for command implementations

// loadConfig reads --config when given, otherwise the nearest .scmap/config.yaml.
func loadConfig() (*config.Config, error) {
	if configPath != "" {
		cfg, err := config.LoadFromPath(configPath)
		if err != nil {
			return nil, fmt.Errorf("loading config %s: %w", configPath, err)
		}
		return cfg, nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("get working directory: %w", err)
	}
	cfg, err := config.Load(cwd)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

// openStore opens the store configured in cfg.
func openStore(cfg *config.Config) (*store.Store, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("get working directory: %w", err)
	}
	path, err := cfg.StorePath(cwd)
	if err != nil {
		return nil, fmt.Errorf("resolving store path: %w", err)
	}
	st, err := store.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}
	return st, nil
}

// loadData returns the imported inventory and BOM rows.
func loadData(cfg *config.Config) ([]inventory.Record, []inventory.BOM, error) {
	st, err := openStore(cfg)
	if err != nil {
		return nil, nil, err
	}
	defer st.Close()

	records, boms, err := st.Load()
	if errors.Is(err, store.ErrEmpty) {
		return nil, nil, fmt.Errorf("no inventory imported yet (run 'scmap import --inventory <file>')")
	}
	return records, boms, err
}

// resolveFormat picks the --format flag or, when unset, the configured format.
func resolveFormat(cfg *config.Config) (output.Format, error) {
	name := outputFormat
	if name == "" {
		name = cfg.Output.Format
	}
	format, err := output.ParseFormat(name)
	if err != nil {
		return "", fmt.Errorf("invalid format: %w", err)
	}
	return format, nil
}

// writeOutput encodes v in the resolved format.
func writeOutput(w io.Writer, cfg *config.Config, v interface{}) error {
	format, err := resolveFormat(cfg)
	if err != nil {
		return err
	}
	formatter, err := output.GetFormatter(format)
	if err != nil {
		return err
	}
	return formatter.FormatToWriter(w, v)
}

// splitList splits a comma-separated flag value, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// parsePathArg parses FROM,TO where both ends are ITEM@LOCATION.
func parsePathArg(s string) (from, to graph.Identity, err error) {
	parts := splitList(s)
	if len(parts) != 2 {
		return from, to, fmt.Errorf("path must be FROM,TO, got %q", s)
	}
	if from, err = graph.ParseIdentity(parts[0]); err != nil {
		return from, to, err
	}
	if to, err = graph.ParseIdentity(parts[1]); err != nil {
		return from, to, err
	}
	return from, to, nil
}

// viewFilter starts from the configured filter and applies command-line
// overrides. Empty flags keep the configured value.
func viewFilter(cfg *config.Config, hide, locations string, hideOrphans bool) (graph.Filter, error) {
	f := cfg.Filter()
	if hide != "" {
		f.ShowRM, f.ShowFG, f.ShowDC = true, true, true
		if err := f.HideCategories(splitList(hide)); err != nil {
			return f, err
		}
	}
	if locations != "" {
		f.Locations = splitList(locations)
	}
	if hideOrphans {
		f.HideOrphans = true
	}
	return f, nil
}

// commandContext returns the command's context, or Background when the
// command runs outside Execute.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
