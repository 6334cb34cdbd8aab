package live

import (
	"fmt"
	"strings"

	"github.com/supplynet/scmap/internal/engine"
	"github.com/supplynet/scmap/internal/graph"
	"github.com/supplynet/scmap/internal/render"
)

// ClientMessage is an event sent by the browser. Coordinates are screen
// pixels relative to the canvas.
type ClientMessage struct {
	Type   string  `json:"type"`
	X      float64 `json:"x,omitempty"`
	Y      float64 `json:"y,omitempty"`
	DeltaY float64 `json:"dy,omitempty"`
	W      float64 `json:"w,omitempty"`
	H      float64 `json:"h,omitempty"`

	// Node is ITEM@LOCATION for focus and hint; empty clears.
	Node  string  `json:"node,omitempty"`
	Mode  string  `json:"mode,omitempty"`
	Value float64 `json:"value,omitempty"`

	Hide        []string `json:"hide,omitempty"`
	Locations   []string `json:"locations,omitempty"`
	HideOrphans bool     `json:"hide_orphans,omitempty"`
}

// Apply performs the event on the scene. It must run on the loop goroutine.
func (m ClientMessage) Apply(s *engine.Scene) error {
	switch m.Type {
	case "pointer_down":
		s.PointerDown(m.X, m.Y)
	case "pointer_move":
		s.PointerMove(m.X, m.Y)
	case "pointer_up":
		s.PointerUp(m.X, m.Y)
	case "wheel":
		s.Wheel(m.X, m.Y, m.DeltaY)
	case "resize":
		if m.W <= 0 || m.H <= 0 {
			return fmt.Errorf("resize to %vx%v", m.W, m.H)
		}
		s.Resize(m.W, m.H)
	case "focus":
		if strings.TrimSpace(m.Node) == "" {
			s.ClearFocus()
			return nil
		}
		id, err := graph.ParseIdentity(m.Node)
		if err != nil {
			return err
		}
		s.Focus(id)
	case "hint":
		var id graph.Identity
		if strings.TrimSpace(m.Node) != "" {
			parsed, err := graph.ParseIdentity(m.Node)
			if err != nil {
				return err
			}
			id = parsed
		}
		s.FocusHint(id.Item, id.Location)
	case "clear_focus":
		s.ClearFocus()
	case "color_mode":
		mode, err := render.ParseColorMode(m.Mode)
		if err != nil {
			return err
		}
		s.SetColorMode(mode)
	case "spacing":
		if m.Value <= 0 {
			return fmt.Errorf("spacing must be positive, got %v", m.Value)
		}
		s.SetSpacing(m.Value)
	case "filter":
		f, err := m.filter()
		if err != nil {
			return err
		}
		s.SetFilter(f)
	case "fit":
		s.Fit()
	case "reset_view":
		s.ResetView()
	case "recenter":
		s.Recenter()
	default:
		return fmt.Errorf("unknown message type %q", m.Type)
	}
	return nil
}

func (m ClientMessage) filter() (graph.Filter, error) {
	f := graph.DefaultFilter()
	if err := f.HideCategories(m.Hide); err != nil {
		return f, err
	}
	f.Locations = m.Locations
	f.HideOrphans = m.HideOrphans
	return f, nil
}
