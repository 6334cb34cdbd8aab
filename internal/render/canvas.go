// Package render draws a graph view through a small Canvas interface, with
// raster (PNG), SVG and display-list backends.
package render

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/supplynet/scmap/internal/viewport"
)

// Point is a layout-space coordinate.
type Point struct{ X, Y float64 }

// Canvas is a drawing surface. Geometry is given in layout coordinates and
// mapped through the transform set by SetTransform; widths are in layout
// units as well. Text size is in screen pixels.
type Canvas interface {
	Size() (w, h int)
	Clear(bg color.NRGBA)
	SetTransform(t viewport.Transform)
	Line(a, b Point, width float64, stroke color.NRGBA)
	Polygon(pts []Point, fill color.NRGBA)
	Circle(center Point, r float64, fill color.NRGBA)
	Text(at Point, size float64, s string, fill color.NRGBA)
}

// ParseHex parses "#rrggbb" or "#rrggbbaa". Invalid input yields opaque
// magenta so a typo is visible rather than silent.
func ParseHex(s string) color.NRGBA {
	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 && len(s) != 8 {
		return color.NRGBA{R: 0xff, B: 0xff, A: 0xff}
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return color.NRGBA{R: 0xff, B: 0xff, A: 0xff}
	}
	if len(s) == 6 {
		v = v<<8 | 0xff
	}
	return color.NRGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}
}

// Hex formats c as "#rrggbb", dropping alpha.
func Hex(c color.NRGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// fade scales c's alpha by f.
func fade(c color.NRGBA, f float64) color.NRGBA {
	c.A = uint8(float64(c.A) * f)
	return c
}

// screenPoints maps layout points to screen space.
func screenPoints(t viewport.Transform, pts []Point) []Point {
	out := make([]Point, len(pts))
	for i, p := range pts {
		x, y := t.ToScreen(p.X, p.Y)
		out[i] = Point{x, y}
	}
	return out
}
