package config

import (
	"github.com/supplynet/scmap/internal/graph"
	"github.com/supplynet/scmap/internal/sim"
	"github.com/supplynet/scmap/internal/viewport"
)

// DefaultConfig returns configuration with sensible defaults.
// These defaults are used when no config file exists or when
// config file is missing specific fields.
func DefaultConfig() *Config {
	return &Config{
		Sites: SitesConfig{
			Plants: append([]string(nil), graph.DefaultPlants...),
			DCs:    append([]string(nil), graph.DefaultDCs...),
		},
		Layout: sim.DefaultParams(),
		View: ViewConfig{
			ColorMode: "category",
			LabelZoom: 1.2,
		},
		Viewport: viewport.Options{
			MinScale:       0.2,
			MaxScale:       5,
			ClickThreshold: 3,
			Width:          1200,
			Height:         800,
			FitPadding:     40,
		},
		Serve: ServeConfig{
			Addr: "127.0.0.1:8090",
			FPS:  30,
		},
		Store: StoreConfig{
			Path: "scmap.db",
		},
		Output: OutputConfig{
			Format: "yaml",
		},
	}
}

// Merge merges loaded config with defaults.
// Values from loaded config take precedence over defaults.
// Returns a new Config with merged values.
func Merge(loaded, defaults *Config) *Config {
	result := &Config{}

	result.Sites = mergeSitesConfig(loaded.Sites, defaults.Sites)
	result.Layout = mergeLayoutConfig(loaded.Layout, defaults.Layout)
	result.View = mergeViewConfig(loaded.View, defaults.View)
	result.Viewport = mergeViewportConfig(loaded.Viewport, defaults.Viewport)
	result.Serve = mergeServeConfig(loaded.Serve, defaults.Serve)
	result.Store = mergeStoreConfig(loaded.Store, defaults.Store)
	result.Output = mergeOutputConfig(loaded.Output, defaults.Output)

	return result
}

func mergeSitesConfig(loaded, defaults SitesConfig) SitesConfig {
	result := SitesConfig{}

	// A site list replaces the default list wholesale
	if len(loaded.Plants) > 0 {
		result.Plants = loaded.Plants
	} else {
		result.Plants = defaults.Plants
	}

	if len(loaded.DCs) > 0 {
		result.DCs = loaded.DCs
	} else {
		result.DCs = defaults.DCs
	}

	return result
}

// mergeFloat returns loaded if non-zero, otherwise def.
func mergeFloat(loaded, def float64) float64 {
	if loaded != 0 {
		return loaded
	}
	return def
}

func mergeLayoutConfig(loaded, defaults sim.Params) sim.Params {
	return sim.Params{
		Spacing:         mergeFloat(loaded.Spacing, defaults.Spacing),
		Repulsion:       mergeFloat(loaded.Repulsion, defaults.Repulsion),
		SpringLength:    mergeFloat(loaded.SpringLength, defaults.SpringLength),
		SpringStiffness: mergeFloat(loaded.SpringStiffness, defaults.SpringStiffness),
		ClusterGravity:  mergeFloat(loaded.ClusterGravity, defaults.ClusterGravity),
		CenterGravity:   mergeFloat(loaded.CenterGravity, defaults.CenterGravity),
		Damping:         mergeFloat(loaded.Damping, defaults.Damping),
		MaxSpeed:        mergeFloat(loaded.MaxSpeed, defaults.MaxSpeed),
		AlphaDecay:      mergeFloat(loaded.AlphaDecay, defaults.AlphaDecay),
		MinAlpha:        mergeFloat(loaded.MinAlpha, defaults.MinAlpha),
		DragAlpha:       mergeFloat(loaded.DragAlpha, defaults.DragAlpha),
		CellSize:        mergeFloat(loaded.CellSize, defaults.CellSize),
	}
}

func mergeViewConfig(loaded, defaults ViewConfig) ViewConfig {
	result := ViewConfig{}

	if len(loaded.Hide) > 0 {
		result.Hide = loaded.Hide
	} else {
		result.Hide = defaults.Hide
	}

	if len(loaded.Locations) > 0 {
		result.Locations = loaded.Locations
	} else {
		result.Locations = defaults.Locations
	}

	// HideOrphans: YAML unmarshals missing as false, which is also the default
	result.HideOrphans = loaded.HideOrphans

	if loaded.ColorMode != "" {
		result.ColorMode = normalizeFormat(loaded.ColorMode)
	} else {
		result.ColorMode = defaults.ColorMode
	}

	result.LabelZoom = mergeFloat(loaded.LabelZoom, defaults.LabelZoom)

	return result
}

func mergeViewportConfig(loaded, defaults viewport.Options) viewport.Options {
	return viewport.Options{
		MinScale:       mergeFloat(loaded.MinScale, defaults.MinScale),
		MaxScale:       mergeFloat(loaded.MaxScale, defaults.MaxScale),
		ClickThreshold: mergeFloat(loaded.ClickThreshold, defaults.ClickThreshold),
		Width:          mergeFloat(loaded.Width, defaults.Width),
		Height:         mergeFloat(loaded.Height, defaults.Height),
		FitPadding:     mergeFloat(loaded.FitPadding, defaults.FitPadding),
	}
}

func mergeServeConfig(loaded, defaults ServeConfig) ServeConfig {
	result := ServeConfig{}

	if loaded.Addr != "" {
		result.Addr = loaded.Addr
	} else {
		result.Addr = defaults.Addr
	}

	if loaded.FPS != 0 {
		result.FPS = loaded.FPS
	} else {
		result.FPS = defaults.FPS
	}

	return result
}

func mergeStoreConfig(loaded, defaults StoreConfig) StoreConfig {
	if loaded.Path != "" {
		return loaded
	}
	return defaults
}

func mergeOutputConfig(loaded, defaults OutputConfig) OutputConfig {
	result := OutputConfig{}

	if loaded.Format != "" {
		result.Format = normalizeFormat(loaded.Format)
	} else {
		result.Format = defaults.Format
	}

	return result
}

// ValidFormats lists the valid values for output format
var ValidFormats = []string{"yaml", "json"}

// IsValidFormat checks if the given format value is valid
func IsValidFormat(format string) bool {
	for _, valid := range ValidFormats {
		if format == valid {
			return true
		}
	}
	return false
}
