package graph

// Health classifies a node's current inventory against its target.
type Health int

const (
	Critical Health = iota
	VeryLow
	Low
	Healthy
	Over
)

func (h Health) String() string {
	switch h {
	case Critical:
		return "critical"
	case VeryLow:
		return "very_low"
	case Low:
		return "low"
	case Healthy:
		return "healthy"
	case Over:
		return "over"
	}
	return "unknown"
}

// Ratio returns current/target as a percentage. A node without a positive
// target has no meaningful ratio and reports 100.
func (n *Node) Ratio() float64 {
	if n.Target <= 0 {
		return 100
	}
	return n.Current / n.Target * 100
}

// Health bins the node's ratio: above 120% is over stock, 80% and up is
// healthy, 30% and up is low, anything positive is very low, and an empty
// location is critical. Zero target is treated as healthy.
func (n *Node) Health() Health {
	if n.Target <= 0 {
		return Healthy
	}
	r := n.Ratio()
	switch {
	case r > 120:
		return Over
	case r >= 80:
		return Healthy
	case r >= 30:
		return Low
	case r > 0:
		return VeryLow
	default:
		return Critical
	}
}
