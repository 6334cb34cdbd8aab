package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/supplynet/scmap/internal/config"
	"github.com/supplynet/scmap/internal/ui"
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize .scmap directory, config and store",
	Long: `Initialize the .scmap directory in the current directory.

This writes a default config.yaml (site lists, layout tuning, view and server
settings) and creates the store that 'scmap import' fills.

Examples:
  scmap init          # Initialize in current directory`,
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("get working directory: %w", err)
	}
	out := cmd.OutOrStdout()

	existing := filepath.Join(cwd, config.ConfigDirName, config.ConfigFileName)
	if _, err := os.Stat(existing); err == nil {
		rel, _ := filepath.Rel(cwd, existing)
		fmt.Fprintf(out, "%s Already initialized at %s\n", ui.WarnIcon(), rel)
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("checking config path: %w", err)
	}

	path, err := config.SaveDefault(cwd)
	if err != nil {
		return err
	}

	cfg, err := config.LoadFromPath(path)
	if err != nil {
		return err
	}
	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	storePath := st.Path()
	st.Close()

	rel, _ := filepath.Rel(cwd, path)
	fmt.Fprintf(out, "%s Wrote %s\n", ui.StatusIcon(true), rel)
	rel, _ = filepath.Rel(cwd, storePath)
	fmt.Fprintf(out, "%s Created store %s\n", ui.StatusIcon(true), rel)
	fmt.Fprintln(out, ui.Subtle.Sprint("Next: scmap import --inventory <file.csv> [--bom <file.csv>]"))
	return nil
}
