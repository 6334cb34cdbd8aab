// Package inventory holds the tabular inputs of the graph builder:
// inventory rows keyed by item code and location, and bill-of-materials rows.
package inventory

import "strings"

// Metric names used by the long (one metric per row) export format.
const (
	MetricInventory = "Tot.Inventory (Forecast)"
	MetricTarget    = "Tot.Target Inv."
)

// Record is one inventory row.
// HasCurrent and HasTarget tell an observed zero apart from a missing value.
type Record struct {
	Item       string  `json:"item" yaml:"item"`
	Location   string  `json:"location" yaml:"location"`
	Category   string  `json:"category,omitempty" yaml:"category,omitempty"`
	Current    float64 `json:"current" yaml:"current"`
	Target     float64 `json:"target" yaml:"target"`
	HasCurrent bool    `json:"has_current" yaml:"has_current"`
	HasTarget  bool    `json:"has_target" yaml:"has_target"`
}

// Valid reports whether the row names both an item and a location.
func (r Record) Valid() bool {
	return strings.TrimSpace(r.Item) != "" && strings.TrimSpace(r.Location) != ""
}

// BOM is one bill-of-materials row: Parent consumes Child at Site.
type BOM struct {
	Parent string  `json:"parent" yaml:"parent"`
	Child  string  `json:"child" yaml:"child"`
	Site   string  `json:"site" yaml:"site"`
	Ratio  float64 `json:"ratio,omitempty" yaml:"ratio,omitempty"`
}

// Valid reports whether the row names a parent, a child and a site.
func (b BOM) Valid() bool {
	return strings.TrimSpace(b.Parent) != "" &&
		strings.TrimSpace(b.Child) != "" &&
		strings.TrimSpace(b.Site) != ""
}
