package graph

import "math"

// Shape is the glyph a node is drawn with.
type Shape int

const (
	Triangle Shape = iota
	Square
	Circle
)

// CategoryStyle defines how a node category is drawn and exported.
type CategoryStyle struct {
	Shape        Shape
	Fill         string // hex fill used in category color mode
	MermaidShape string // Mermaid shape syntax ([], (()), [/\])
	Label        string
}

// CategoryStyles maps categories to their glyphs and colors.
var CategoryStyles = map[Category]CategoryStyle{
	RawMaterial:        {Shape: Triangle, Fill: "#6366f1", MermaidShape: "[/\\]", Label: "Raw material"},
	FinishedGood:       {Shape: Square, Fill: "#10b981", MermaidShape: "[]", Label: "Finished good"},
	DistributionCenter: {Shape: Circle, Fill: "#3b82f6", MermaidShape: "(())", Label: "Distribution center"},
}

// HealthFills maps health bins to fill colors used in health color mode.
var HealthFills = map[Health]string{
	Over:     "#3b82f6", // blue
	Healthy:  "#10b981", // emerald
	Low:      "#f59e0b", // amber
	VeryLow:  "#f97316", // orange
	Critical: "#ef4444", // red
}

// EdgeStyle defines how an edge kind is drawn and exported.
type EdgeStyle struct {
	Stroke       string
	MermaidStyle string
}

// EdgeStyles maps edge kinds to their styles.
var EdgeStyles = map[EdgeKind]EdgeStyle{
	BOMEdge:  {Stroke: "#94a3b8", MermaidStyle: "-->"},
	FlowEdge: {Stroke: "#38bdf8", MermaidStyle: "-.->"},
}

// GetCategoryStyle returns the style for a category, with fallback to raw material.
func GetCategoryStyle(c Category) CategoryStyle {
	if s, ok := CategoryStyles[c]; ok {
		return s
	}
	return CategoryStyles[RawMaterial]
}

// GetEdgeStyle returns the style for an edge kind, with fallback to BOM.
func GetEdgeStyle(k EdgeKind) EdgeStyle {
	if s, ok := EdgeStyles[k]; ok {
		return s
	}
	return EdgeStyles[BOMEdge]
}

// Node radius bounds in layout units.
const (
	BaseRadius = 6.0
	RadiusStep = 3.0
)

// NodeRadius grows logarithmically with degree so hubs stand out without
// swamping their neighborhood.
func NodeRadius(degree int) float64 {
	if degree < 0 {
		degree = 0
	}
	return BaseRadius + RadiusStep*math.Log1p(float64(degree))
}

// Radius is NodeRadius of the node's degree.
func (n *Node) Radius() float64 {
	return NodeRadius(n.Degree)
}
