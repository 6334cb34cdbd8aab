package sim

import (
	"fmt"
	"math"
)

// Params tunes the force simulation. Zero force strengths disable that
// force; other zero fields take DefaultParams values.
type Params struct {
	// Spacing scales repulsion strength and spring rest length together.
	Spacing float64 `yaml:"spacing" json:"spacing"`

	Repulsion       float64 `yaml:"repulsion" json:"repulsion"`
	SpringLength    float64 `yaml:"spring_length" json:"spring_length"`
	SpringStiffness float64 `yaml:"spring_stiffness" json:"spring_stiffness"`
	ClusterGravity  float64 `yaml:"cluster_gravity" json:"cluster_gravity"`
	CenterGravity   float64 `yaml:"center_gravity" json:"center_gravity"`

	// Damping multiplies velocity every tick, in (0, 1].
	Damping float64 `yaml:"damping" json:"damping"`
	// MaxSpeed caps |v| at full heat; the cap scales with alpha.
	MaxSpeed float64 `yaml:"max_speed" json:"max_speed"`

	// AlphaDecay is the fraction of alpha lost per tick, in (0, 1).
	AlphaDecay float64 `yaml:"alpha_decay" json:"alpha_decay"`
	// MinAlpha is the threshold below which the simulation is at rest.
	MinAlpha float64 `yaml:"min_alpha" json:"min_alpha"`
	// DragAlpha is the heat held while a node is dragged.
	DragAlpha float64 `yaml:"drag_alpha" json:"drag_alpha"`

	// CellSize is the spatial grid cell edge and the repulsion cutoff.
	CellSize float64 `yaml:"cell_size" json:"cell_size"`
}

// DefaultParams returns the tuning used when nothing is configured.
func DefaultParams() Params {
	return Params{
		Spacing:         1,
		Repulsion:       2000,
		SpringLength:    80,
		SpringStiffness: 0.05,
		ClusterGravity:  0.02,
		CenterGravity:   0.01,
		Damping:         0.85,
		MaxSpeed:        40,
		AlphaDecay:      0.02,
		MinAlpha:        0.005,
		DragAlpha:       0.3,
		CellSize:        200,
	}
}

func (p Params) withDefaults() Params {
	d := DefaultParams()
	set := func(v *float64, def float64) {
		if *v == 0 || math.IsNaN(*v) {
			*v = def
		}
	}
	set(&p.Spacing, d.Spacing)
	set(&p.SpringLength, d.SpringLength)
	set(&p.Damping, d.Damping)
	set(&p.MaxSpeed, d.MaxSpeed)
	set(&p.AlphaDecay, d.AlphaDecay)
	set(&p.MinAlpha, d.MinAlpha)
	set(&p.DragAlpha, d.DragAlpha)
	set(&p.CellSize, d.CellSize)
	return p
}

// Validate reports the first out-of-range parameter.
func (p Params) Validate() error {
	switch {
	case p.Spacing < 0:
		return fmt.Errorf("spacing must be positive, got %v", p.Spacing)
	case p.Damping < 0 || p.Damping > 1:
		return fmt.Errorf("damping must be in [0, 1], got %v", p.Damping)
	case p.AlphaDecay < 0 || p.AlphaDecay >= 1:
		return fmt.Errorf("alpha_decay must be in [0, 1), got %v", p.AlphaDecay)
	case p.MinAlpha < 0 || p.MinAlpha >= 1:
		return fmt.Errorf("min_alpha must be in [0, 1), got %v", p.MinAlpha)
	case p.CellSize < 0:
		return fmt.Errorf("cell_size must be positive, got %v", p.CellSize)
	case p.MaxSpeed < 0:
		return fmt.Errorf("max_speed must be positive, got %v", p.MaxSpeed)
	}
	return nil
}
