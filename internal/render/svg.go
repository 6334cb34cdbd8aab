package render

import (
	"fmt"
	"html"
	"image/color"
	"io"
	"math"
	"strings"

	"github.com/supplynet/scmap/internal/viewport"
)

// SVGCanvas accumulates an SVG document in screen coordinates.
type SVGCanvas struct {
	w, h int
	t    viewport.Transform
	bg   color.NRGBA
	body strings.Builder
}

// NewSVGCanvas returns a w x h canvas.
func NewSVGCanvas(w, h int) *SVGCanvas {
	return &SVGCanvas{w: w, h: h, t: viewport.IdentityTransform()}
}

func (c *SVGCanvas) Size() (int, int) { return c.w, c.h }

func (c *SVGCanvas) Clear(bg color.NRGBA) {
	c.bg = bg
	c.body.Reset()
}

func (c *SVGCanvas) SetTransform(t viewport.Transform) { c.t = t }

func (c *SVGCanvas) Line(a, b Point, width float64, stroke color.NRGBA) {
	x1, y1 := c.t.ToScreen(a.X, a.Y)
	x2, y2 := c.t.ToScreen(b.X, b.Y)
	fmt.Fprintf(&c.body, `<line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke="%s"%s stroke-width="%.2f"/>`+"\n",
		x1, y1, x2, y2, Hex(stroke), opacity("stroke-opacity", stroke), math.Max(width*c.t.Scale, 0.5))
}

func (c *SVGCanvas) Polygon(pts []Point, fill color.NRGBA) {
	var sb strings.Builder
	for i, p := range screenPoints(c.t, pts) {
		if i > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "%.2f,%.2f", p.X, p.Y)
	}
	fmt.Fprintf(&c.body, `<polygon points="%s" fill="%s"%s/>`+"\n", sb.String(), Hex(fill), opacity("fill-opacity", fill))
}

func (c *SVGCanvas) Circle(center Point, r float64, fill color.NRGBA) {
	x, y := c.t.ToScreen(center.X, center.Y)
	fmt.Fprintf(&c.body, `<circle cx="%.2f" cy="%.2f" r="%.2f" fill="%s"%s/>`+"\n",
		x, y, r*c.t.Scale, Hex(fill), opacity("fill-opacity", fill))
}

func (c *SVGCanvas) Text(at Point, size float64, s string, fill color.NRGBA) {
	x, y := c.t.ToScreen(at.X, at.Y)
	fmt.Fprintf(&c.body, `<text x="%.2f" y="%.2f" font-size="%.1f" font-family="sans-serif" dominant-baseline="middle" fill="%s"%s>%s</text>`+"\n",
		x, y, size, Hex(fill), opacity("fill-opacity", fill), html.EscapeString(s))
}

// WriteTo writes the complete SVG document.
func (c *SVGCanvas) WriteTo(w io.Writer) (int64, error) {
	var sb strings.Builder
	fmt.Fprintf(&sb, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`+"\n", c.w, c.h, c.w, c.h)
	fmt.Fprintf(&sb, `<rect width="100%%" height="100%%" fill="%s"/>`+"\n", Hex(c.bg))
	sb.WriteString(c.body.String())
	sb.WriteString("</svg>\n")
	n, err := io.WriteString(w, sb.String())
	return int64(n), err
}

func opacity(attr string, c color.NRGBA) string {
	if c.A == 0xff {
		return ""
	}
	return fmt.Sprintf(` %s="%.2f"`, attr, float64(c.A)/255)
}
