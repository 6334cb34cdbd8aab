package graph

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// MermaidOptions configures Mermaid diagram generation.
type MermaidOptions struct {
	MaxNodes  int    // Maximum nodes before collapsing to locations (default: 60)
	Direction string // Layout direction: "TD" (top-down) or "LR" (left-right)
	Collapse  bool   // Collapse to one node per location when > MaxNodes
	Health    bool   // Tag nodes with their health class
	Title     string
}

// DefaultMermaidOptions returns sensible defaults for Mermaid diagram generation.
func DefaultMermaidOptions() *MermaidOptions {
	return &MermaidOptions{
		MaxNodes:  60,
		Direction: "LR",
		Collapse:  true,
	}
}

// GenerateMermaid renders g as a Mermaid flowchart.
func GenerateMermaid(g *Graph, opts *MermaidOptions) string {
	if opts == nil {
		opts = DefaultMermaidOptions()
	}
	if opts.MaxNodes <= 0 {
		opts.MaxNodes = 60
	}
	if opts.Direction != "TD" && opts.Direction != "LR" {
		opts.Direction = "LR"
	}

	var sb strings.Builder
	if opts.Title != "" {
		fmt.Fprintf(&sb, "---\ntitle: %s\n---\n", escapeMermaidString(opts.Title))
	}
	fmt.Fprintf(&sb, "flowchart %s\n", opts.Direction)

	if opts.Collapse && g.NodeCount() > opts.MaxNodes {
		writeCollapsedMermaid(&sb, g)
		return sb.String()
	}

	nodes := sortedNodes(g)
	for _, n := range nodes {
		sb.WriteString("    ")
		sb.WriteString(mermaidNode(n))
		if opts.Health {
			sb.WriteString(":::" + n.Health().String())
		}
		sb.WriteString("\n")
	}
	for _, e := range g.Edges {
		fmt.Fprintf(&sb, "    %s %s %s\n",
			sanitizeMermaidID(e.Source.String()), GetEdgeStyle(e.Kind).MermaidStyle, sanitizeMermaidID(e.Target.String()))
	}
	if opts.Health {
		for _, h := range []Health{Critical, VeryLow, Low, Healthy, Over} {
			fmt.Fprintf(&sb, "    classDef %s fill:%s\n", h, HealthFills[h])
		}
	}
	return sb.String()
}

// writeCollapsedMermaid draws one node per location with deduplicated
// cross-location edges.
func writeCollapsedMermaid(sb *strings.Builder, g *Graph) {
	counts := make(map[string]int)
	for _, n := range g.Nodes {
		counts[n.ID.Location]++
	}
	locs := make([]string, 0, len(counts))
	for l := range counts {
		locs = append(locs, l)
	}
	sort.Strings(locs)
	for _, l := range locs {
		fmt.Fprintf(sb, "    %s[(\"%s (%d)\")]\n", sanitizeMermaidID(l), escapeMermaidString(l), counts[l])
	}

	seen := make(map[string]bool)
	for _, e := range g.Edges {
		from, to := e.Source.Location, e.Target.Location
		if from == to {
			continue
		}
		key := from + "->" + to
		if seen[key] {
			continue
		}
		seen[key] = true
		fmt.Fprintf(sb, "    %s --> %s\n", sanitizeMermaidID(from), sanitizeMermaidID(to))
	}
}

func mermaidNode(n *Node) string {
	id := sanitizeMermaidID(n.ID.String())
	label := escapeMermaidString(n.ID.Item + " @ " + n.ID.Location)
	switch GetCategoryStyle(n.Category).MermaidShape {
	case "(())":
		return fmt.Sprintf("%s((\"%s\"))", id, label)
	case "[/\\]":
		return fmt.Sprintf("%s[/\"%s\"\\]", id, label)
	default:
		return fmt.Sprintf("%s[\"%s\"]", id, label)
	}
}

var mermaidIDRegex = regexp.MustCompile(`[^a-zA-Z0-9_]`)

// sanitizeMermaidID converts an ID to be valid in Mermaid.
func sanitizeMermaidID(id string) string {
	sanitized := mermaidIDRegex.ReplaceAllString(id, "_")
	if len(sanitized) > 0 && sanitized[0] >= '0' && sanitized[0] <= '9' {
		sanitized = "_" + sanitized
	}
	if sanitized == "" {
		sanitized = "_empty"
	}
	return sanitized
}

func escapeMermaidString(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "\"", "#quot;")
	s = strings.ReplaceAll(s, "<", "#lt;")
	s = strings.ReplaceAll(s, ">", "#gt;")
	return s
}

// sortedNodes returns nodes ordered by identity for deterministic output.
func sortedNodes(g *Graph) []*Node {
	nodes := make([]*Node, len(g.Nodes))
	copy(nodes, g.Nodes)
	sort.Slice(nodes, func(i, j int) bool {
		return nodes[i].ID.String() < nodes[j].ID.String()
	})
	return nodes
}
