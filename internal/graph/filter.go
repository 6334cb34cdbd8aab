package graph

import "fmt"

// Filter narrows the full graph before focus is applied.
type Filter struct {
	ShowRM bool `yaml:"show_rm" json:"show_rm"`
	ShowFG bool `yaml:"show_fg" json:"show_fg"`
	ShowDC bool `yaml:"show_dc" json:"show_dc"`

	// Locations is an allow-list of inventory locations. Empty allows all.
	Locations []string `yaml:"locations,omitempty" json:"locations,omitempty"`

	// HideOrphans drops nodes left without edges. Ignored while focused.
	HideOrphans bool `yaml:"hide_orphans" json:"hide_orphans"`
}

// DefaultFilter shows every category and location.
func DefaultFilter() Filter {
	return Filter{ShowRM: true, ShowFG: true, ShowDC: true}
}

// Shows reports whether category c is visible.
func (f Filter) Shows(c Category) bool {
	switch c {
	case RawMaterial:
		return f.ShowRM
	case FinishedGood:
		return f.ShowFG
	case DistributionCenter:
		return f.ShowDC
	}
	return false
}

// HideCategories turns off each named category (RM, FG or DC, any case).
// An unknown name is an error and leaves f unchanged.
func (f *Filter) HideCategories(names []string) error {
	next := *f
	for _, name := range names {
		c, ok := ParseCategory(name)
		if !ok {
			return fmt.Errorf("unknown category %q (want RM, FG or DC)", name)
		}
		switch c {
		case RawMaterial:
			next.ShowRM = false
		case FinishedGood:
			next.ShowFG = false
		case DistributionCenter:
			next.ShowDC = false
		}
	}
	*f = next
	return nil
}

func (f Filter) allows(n *Node, locs map[string]bool) bool {
	if !f.Shows(n.Category) {
		return false
	}
	return len(locs) == 0 || locs[n.ID.Location]
}

// View is the node/edge set currently on screen.
type View struct {
	*Graph

	// Focus is the focal identity, zero when no focus is active.
	Focus Identity

	neighbors map[Identity]bool
}

// Focused reports whether a focus is active.
func (v *View) Focused() bool {
	return v != nil && !v.Focus.IsZero()
}

// IsNeighbor reports whether id is directly linked to the focal node.
func (v *View) IsNeighbor(id Identity) bool {
	return v.neighbors[id]
}

// Apply computes the visible view of g.
//
// Category and location filters run first. If focus is not in what remains
// it is cleared. With a focus, the view keeps the focal node plus everything
// reachable forward and backward from it. Edges survive only when both
// endpoints do. HideOrphans then removes unconnected nodes unless a focus
// is active. Degree on the kept nodes is recounted over the kept edges.
//
// The returned view shares node values with g.
func Apply(g *Graph, f Filter, focus Identity) *View {
	locs := make(map[string]bool, len(f.Locations))
	for _, l := range f.Locations {
		locs[l] = true
	}

	keep := make(map[Identity]bool, len(g.Nodes))
	for _, n := range g.Nodes {
		if f.allows(n, locs) {
			keep[n.ID] = true
		}
	}
	filtered := g.Subgraph(keep)

	if !filtered.Has(focus) {
		focus = Identity{}
	}

	view := filtered
	if !focus.IsZero() {
		view = filtered.Subgraph(filtered.Reachable(focus))
	}

	if f.HideOrphans && focus.IsZero() {
		connected := make(map[Identity]bool, len(view.Nodes))
		for _, e := range view.Edges {
			connected[e.Source] = true
			connected[e.Target] = true
		}
		view = view.Subgraph(connected)
	}

	countDegrees(view.Nodes, view.Edges)

	v := &View{Graph: view, Focus: focus}
	if !focus.IsZero() {
		v.neighbors = view.Neighbors(focus)
	}
	return v
}
