// Package graph builds the supply-chain node/edge graph from inventory and
// bill-of-materials records and computes filtered, focus-reduced views of it.
package graph

import (
	"fmt"
	"strings"
)

// Category is the role a node plays in the supply chain.
type Category int

const (
	// RawMaterial is an ingredient consumed by a plant.
	RawMaterial Category = iota
	// FinishedGood is an item held at a plant.
	FinishedGood
	// DistributionCenter is a finished good held at a DC.
	DistributionCenter
)

// String returns the short code used in the source data (RM, FG, DC).
func (c Category) String() string {
	switch c {
	case RawMaterial:
		return "RM"
	case FinishedGood:
		return "FG"
	case DistributionCenter:
		return "DC"
	default:
		return fmt.Sprintf("Category(%d)", int(c))
	}
}

// ParseCategory parses RM, FG or DC (case-insensitive).
func ParseCategory(s string) (Category, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "RM":
		return RawMaterial, true
	case "FG":
		return FinishedGood, true
	case "DC":
		return DistributionCenter, true
	default:
		return RawMaterial, false
	}
}

// Identity names a node: an item code held at an inventory location.
type Identity struct {
	Item     string
	Location string
}

// ID builds an identity.
func ID(item, location string) Identity {
	return Identity{Item: item, Location: location}
}

// String returns "item|location", the key format of the source dashboard.
func (id Identity) String() string {
	return id.Item + "|" + id.Location
}

// IsZero reports whether the identity is empty.
func (id Identity) IsZero() bool {
	return id.Item == "" && id.Location == ""
}

// ParseIdentity accepts "item|location" or "item@location".
func ParseIdentity(s string) (Identity, error) {
	sep := "|"
	if !strings.Contains(s, sep) {
		sep = "@"
	}
	item, loc, ok := strings.Cut(s, sep)
	item, loc = strings.TrimSpace(item), strings.TrimSpace(loc)
	if !ok || item == "" || loc == "" {
		return Identity{}, fmt.Errorf("invalid node identity %q: want ITEM@LOCATION", s)
	}
	return Identity{Item: item, Location: loc}, nil
}

// Node is a graph vertex. X, Y, VX and VY belong to the force simulation;
// everything else is derived from the source records.
type Node struct {
	ID       Identity
	Category Category
	Current  float64
	Target   float64
	Degree   int

	X, Y   float64
	VX, VY float64
}

// EdgeKind distinguishes the two derived relations.
type EdgeKind int

const (
	// BOMEdge links a parent item to a child it consumes at the same site.
	BOMEdge EdgeKind = iota
	// FlowEdge links a plant finished good to a DC stocking the same item.
	FlowEdge
)

// String returns "bom" or "flow".
func (k EdgeKind) String() string {
	if k == FlowEdge {
		return "flow"
	}
	return "bom"
}

// Edge is a directed relation between two node identities.
type Edge struct {
	Source Identity
	Target Identity
	Kind   EdgeKind
}
