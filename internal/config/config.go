package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/supplynet/scmap/internal/engine"
	"github.com/supplynet/scmap/internal/graph"
	"github.com/supplynet/scmap/internal/render"
	"github.com/supplynet/scmap/internal/sim"
	"github.com/supplynet/scmap/internal/viewport"
	"gopkg.in/yaml.v3"
)

// ConfigFileName is the name of the scmap configuration file
const ConfigFileName = "config.yaml"

// ConfigDirName is the name of the scmap configuration directory
const ConfigDirName = ".scmap"

// Config holds all scmap configuration
type Config struct {
	Sites    SitesConfig      `yaml:"sites"`
	Layout   sim.Params       `yaml:"layout"`
	View     ViewConfig       `yaml:"view"`
	Viewport viewport.Options `yaml:"viewport"`
	Serve    ServeConfig      `yaml:"serve"`
	Store    StoreConfig      `yaml:"store"`
	Output   OutputConfig     `yaml:"output"`
}

// SitesConfig lists the locations treated as plants and DCs.
type SitesConfig struct {
	Plants []string `yaml:"plants"`
	DCs    []string `yaml:"dcs"`
}

// ViewConfig holds the initial filter and drawing mode.
type ViewConfig struct {
	// Hide lists categories (RM, FG, DC) left out of the view.
	Hide        []string `yaml:"hide,omitempty"`
	Locations   []string `yaml:"locations,omitempty"`
	HideOrphans bool     `yaml:"hide_orphans"`
	ColorMode   string   `yaml:"color_mode"`
	LabelZoom   float64  `yaml:"label_zoom"`
}

// ServeConfig holds configuration for the live view server
type ServeConfig struct {
	Addr string `yaml:"addr"`
	FPS  int    `yaml:"fps"`
}

// StoreConfig holds configuration for the imported-data store.
// A relative Path is resolved against the .scmap directory.
type StoreConfig struct {
	Path string `yaml:"path"`
}

// OutputConfig holds configuration for output formatting
type OutputConfig struct {
	Format string `yaml:"format"`
}

// ErrConfigNotFound is returned when no config file can be found
var ErrConfigNotFound = errors.New("config file not found")

// ErrInvalidConfig is returned when config validation fails
var ErrInvalidConfig = errors.New("invalid configuration")

// Load reads config from .scmap/config.yaml, falling back to defaults.
// It searches for the config directory starting from workDir and walking up
// the directory tree. If no config is found, returns defaults.
func Load(workDir string) (*Config, error) {
	configDir, err := FindConfigDir(workDir)
	if err != nil {
		return DefaultConfig(), nil
	}

	return LoadFromPath(filepath.Join(configDir, ConfigFileName))
}

// LoadFromPath reads config from a specific path.
// Merges loaded config with defaults and validates the result.
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	loaded := &Config{}
	if err := yaml.Unmarshal(data, loaded); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	merged := Merge(loaded, DefaultConfig())

	if err := Validate(merged); err != nil {
		return nil, err
	}

	return merged, nil
}

// FindConfigDir locates the .scmap directory by walking up from startDir.
func FindConfigDir(startDir string) (string, error) {
	absDir, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	currentDir := absDir
	for {
		configDir := filepath.Join(currentDir, ConfigDirName)
		info, err := os.Stat(configDir)
		if err == nil && info.IsDir() {
			return configDir, nil
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			return "", ErrConfigNotFound
		}
		currentDir = parentDir
	}
}

// EnsureConfigDir creates the .scmap directory if it doesn't exist.
// Returns the path to the .scmap directory.
func EnsureConfigDir(workDir string) (string, error) {
	absDir, err := filepath.Abs(workDir)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	configDir := filepath.Join(absDir, ConfigDirName)

	info, err := os.Stat(configDir)
	if err == nil {
		if info.IsDir() {
			return configDir, nil
		}
		return "", fmt.Errorf("%s exists but is not a directory", configDir)
	}

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return "", fmt.Errorf("creating config directory: %w", err)
	}

	return configDir, nil
}

// StorePath resolves the store location. Relative paths are joined to the
// nearest .scmap directory above workDir, or to a new one in workDir.
func (c *Config) StorePath(workDir string) (string, error) {
	if filepath.IsAbs(c.Store.Path) {
		return c.Store.Path, nil
	}
	configDir, err := FindConfigDir(workDir)
	if err != nil {
		configDir, err = EnsureConfigDir(workDir)
		if err != nil {
			return "", err
		}
	}
	return filepath.Join(configDir, c.Store.Path), nil
}

// Validate checks that config values are valid.
// Returns an error if validation fails.
func Validate(cfg *Config) error {
	f := graph.DefaultFilter()
	if err := f.HideCategories(cfg.View.Hide); err != nil {
		return fmt.Errorf("%w: view.hide: %v", ErrInvalidConfig, err)
	}

	if _, err := render.ParseColorMode(cfg.View.ColorMode); err != nil {
		return fmt.Errorf("%w: view.color_mode: %v", ErrInvalidConfig, err)
	}

	if cfg.View.LabelZoom < 0 {
		return fmt.Errorf("%w: label_zoom must be non-negative, got %f",
			ErrInvalidConfig, cfg.View.LabelZoom)
	}

	if err := cfg.Layout.Validate(); err != nil {
		return fmt.Errorf("%w: layout: %v", ErrInvalidConfig, err)
	}

	if cfg.Viewport.MinScale <= 0 || cfg.Viewport.MaxScale < cfg.Viewport.MinScale {
		return fmt.Errorf("%w: viewport scale range [%f, %f] is empty",
			ErrInvalidConfig, cfg.Viewport.MinScale, cfg.Viewport.MaxScale)
	}

	if cfg.Viewport.Width <= 0 || cfg.Viewport.Height <= 0 {
		return fmt.Errorf("%w: viewport size must be positive, got %fx%f",
			ErrInvalidConfig, cfg.Viewport.Width, cfg.Viewport.Height)
	}

	if cfg.Serve.FPS <= 0 || cfg.Serve.FPS > 240 {
		return fmt.Errorf("%w: serve.fps must be between 1 and 240, got %d",
			ErrInvalidConfig, cfg.Serve.FPS)
	}

	if !IsValidFormat(cfg.Output.Format) {
		return fmt.Errorf("%w: output.format must be one of %v, got %q",
			ErrInvalidConfig, ValidFormats, cfg.Output.Format)
	}

	return nil
}

// Filter builds the initial graph filter from the view section.
func (c *Config) Filter() graph.Filter {
	f := graph.DefaultFilter()
	// Validate has already rejected unknown names
	_ = f.HideCategories(c.View.Hide)
	f.Locations = append([]string(nil), c.View.Locations...)
	f.HideOrphans = c.View.HideOrphans
	return f
}

// EngineOptions assembles scene options from the configuration.
func (c *Config) EngineOptions() (engine.Options, error) {
	mode, err := render.ParseColorMode(c.View.ColorMode)
	if err != nil {
		return engine.Options{}, err
	}
	ro := render.DefaultOptions()
	ro.Mode = mode
	if c.View.LabelZoom > 0 {
		ro.LabelZoom = c.View.LabelZoom
	}
	return engine.Options{
		Sites:    graph.NewSites(c.Sites.Plants, c.Sites.DCs),
		Filter:   c.Filter(),
		Params:   c.Layout,
		Viewport: c.Viewport,
		Render:   ro,
	}, nil
}

// SaveDefault writes the default configuration to .scmap/config.yaml in workDir.
// Creates the .scmap directory if it doesn't exist.
func SaveDefault(workDir string) (string, error) {
	configDir, err := EnsureConfigDir(workDir)
	if err != nil {
		return "", err
	}

	configPath := filepath.Join(configDir, ConfigFileName)

	if _, err := os.Stat(configPath); err == nil {
		return "", fmt.Errorf("config file already exists: %s", configPath)
	}

	data, err := yaml.Marshal(DefaultConfig())
	if err != nil {
		return "", fmt.Errorf("marshaling config: %w", err)
	}

	header := "# scmap configuration\n# sites classify inventory locations; layout tunes the force simulation\n\n"
	data = append([]byte(header), data...)

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return "", fmt.Errorf("writing config file: %w", err)
	}

	return configPath, nil
}

func normalizeFormat(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
