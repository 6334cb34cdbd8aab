package graph

import (
	"github.com/supplynet/scmap/internal/inventory"
)

// Default site sets, from the dashboard's plant and DC organization lists.
var (
	DefaultPlants = []string{"THRYPM", "MYBGPM"}
	DefaultDCs    = []string{"THBNDM", "VNHCDM", "VNHNDM", "IDCKDM", "PHPSDM"}
)

// Sites classifies inventory locations.
type Sites struct {
	plants map[string]bool
	dcs    map[string]bool
}

// NewSites builds a classifier from plant and DC location lists.
func NewSites(plants, dcs []string) Sites {
	s := Sites{plants: make(map[string]bool), dcs: make(map[string]bool)}
	for _, p := range plants {
		s.plants[p] = true
	}
	for _, d := range dcs {
		s.dcs[d] = true
	}
	return s
}

// DefaultSites returns the classifier for DefaultPlants and DefaultDCs.
func DefaultSites() Sites {
	return NewSites(DefaultPlants, DefaultDCs)
}

// Classify returns the category for a row at location. A row explicitly
// typed RM stays a raw material wherever it is stocked. Otherwise plants
// hold finished goods and DCs hold DC stock; any other location falls back
// to the row's own category, then to raw material.
func (s Sites) Classify(location, rowCategory string) Category {
	c, ok := ParseCategory(rowCategory)
	switch {
	case ok && c == RawMaterial:
		return RawMaterial
	case s.plants[location]:
		return FinishedGood
	case s.dcs[location]:
		return DistributionCenter
	case ok:
		return c
	}
	return RawMaterial
}

// BuildStats counts what the builder kept and dropped.
type BuildStats struct {
	Rows           int
	DroppedRows    int
	BOMRows        int
	DroppedBOMRows int
	BOMEdges       int
	FlowEdges      int
}

// Build derives nodes and edges from inventory and BOM rows.
//
// Nodes are deduplicated by identity in first-appearance order. The first
// observed current and target values for an identity win; later rows only
// fill values that are still missing. Rows without an item or location are
// dropped.
//
// BOM rows produce (parent, site) -> (child, site) edges when both nodes
// exist. Every finished good at a plant gets a flow edge to each DC node
// carrying the same item code.
func Build(records []inventory.Record, boms []inventory.BOM, sites Sites) (*Graph, BuildStats) {
	var stats BuildStats
	stats.Rows = len(records)
	stats.BOMRows = len(boms)

	index := make(map[Identity]*Node)
	seenCurrent := make(map[Identity]bool)
	seenTarget := make(map[Identity]bool)
	nodes := make([]*Node, 0)

	for _, rec := range records {
		if !rec.Valid() {
			stats.DroppedRows++
			continue
		}
		id := ID(rec.Item, rec.Location)
		n, ok := index[id]
		if !ok {
			n = &Node{ID: id, Category: sites.Classify(rec.Location, rec.Category)}
			index[id] = n
			nodes = append(nodes, n)
		}
		if rec.HasCurrent && !seenCurrent[id] {
			n.Current = rec.Current
			seenCurrent[id] = true
		}
		if rec.HasTarget && !seenTarget[id] {
			n.Target = rec.Target
			seenTarget[id] = true
		}
	}

	edges := make([]Edge, 0)
	seenEdge := make(map[Edge]bool)
	addEdge := func(e Edge) bool {
		if seenEdge[e] || index[e.Source] == nil || index[e.Target] == nil {
			return false
		}
		seenEdge[e] = true
		edges = append(edges, e)
		return true
	}

	for _, b := range boms {
		if !b.Valid() {
			stats.DroppedBOMRows++
			continue
		}
		e := Edge{Source: ID(b.Parent, b.Site), Target: ID(b.Child, b.Site), Kind: BOMEdge}
		if addEdge(e) {
			stats.BOMEdges++
		}
	}

	dcsByItem := make(map[string][]*Node)
	for _, n := range nodes {
		if n.Category == DistributionCenter {
			dcsByItem[n.ID.Item] = append(dcsByItem[n.ID.Item], n)
		}
	}
	for _, n := range nodes {
		if n.Category != FinishedGood {
			continue
		}
		for _, dc := range dcsByItem[n.ID.Item] {
			if addEdge(Edge{Source: n.ID, Target: dc.ID, Kind: FlowEdge}) {
				stats.FlowEdges++
			}
		}
	}

	countDegrees(nodes, edges)
	return New(nodes, edges), stats
}

// Placer returns an initial layout position for a node that has none.
type Placer func(id Identity) (x, y float64)

// Reconcile carries layout state from prev into next by identity: a node
// present in both keeps its position and velocity, a new node is placed by
// place. prev may be nil.
func Reconcile(prev, next *Graph, place Placer) (kept, placed int) {
	for _, n := range next.Nodes {
		if old := prev.Node(n.ID); old != nil {
			n.X, n.Y, n.VX, n.VY = old.X, old.Y, old.VX, old.VY
			kept++
			continue
		}
		n.VX, n.VY = 0, 0
		if place != nil {
			n.X, n.Y = place(n.ID)
		}
		placed++
	}
	return kept, placed
}
