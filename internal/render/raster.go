package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"

	"github.com/supplynet/scmap/internal/viewport"
)

// circleSegments is the polygon resolution used for circles.
const circleSegments = 24

// RasterCanvas draws anti-aliased shapes into an RGBA image.
type RasterCanvas struct {
	img *image.RGBA
	z   *vector.Rasterizer
	t   viewport.Transform
}

// NewRasterCanvas returns a w x h canvas.
func NewRasterCanvas(w, h int) *RasterCanvas {
	z := vector.NewRasterizer(w, h)
	z.DrawOp = draw.Over
	return &RasterCanvas{
		img: image.NewRGBA(image.Rect(0, 0, w, h)),
		z:   z,
		t:   viewport.IdentityTransform(),
	}
}

// Image returns the backing image.
func (c *RasterCanvas) Image() *image.RGBA { return c.img }

func (c *RasterCanvas) Size() (int, int) {
	b := c.img.Bounds()
	return b.Dx(), b.Dy()
}

func (c *RasterCanvas) Clear(bg color.NRGBA) {
	draw.Draw(c.img, c.img.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)
}

func (c *RasterCanvas) SetTransform(t viewport.Transform) { c.t = t }

func (c *RasterCanvas) Line(a, b Point, width float64, stroke color.NRGBA) {
	sa, sb := c.screen(a), c.screen(b)
	w, h := c.Size()
	var ok bool
	if sa, sb, ok = clipSegment(sa, sb, -8, -8, float64(w)+8, float64(h)+8); !ok {
		return
	}
	dx, dy := sb.X-sa.X, sb.Y-sa.Y
	d := math.Hypot(dx, dy)
	if d < 1e-9 {
		return
	}
	lw := width * c.t.Scale
	if lw < 1 {
		lw = 1
	}
	nx, ny := -dy/d*lw/2, dx/d*lw/2
	c.fill([]Point{
		{sa.X + nx, sa.Y + ny},
		{sb.X + nx, sb.Y + ny},
		{sb.X - nx, sb.Y - ny},
		{sa.X - nx, sa.Y - ny},
	}, stroke)
}

func (c *RasterCanvas) Polygon(pts []Point, fill color.NRGBA) {
	c.fill(screenPoints(c.t, pts), fill)
}

func (c *RasterCanvas) Circle(center Point, r float64, fill color.NRGBA) {
	s := c.screen(center)
	sr := r * c.t.Scale
	pts := make([]Point, circleSegments)
	for i := range pts {
		a := 2 * math.Pi * float64(i) / circleSegments
		pts[i] = Point{s.X + sr*math.Cos(a), s.Y + sr*math.Sin(a)}
	}
	c.fill(pts, fill)
}

// Text draws s with the built-in 7x13 bitmap face; size is ignored.
func (c *RasterCanvas) Text(at Point, _ float64, s string, fill color.NRGBA) {
	p := c.screen(at)
	d := font.Drawer{
		Dst:  c.img,
		Src:  image.NewUniform(fill),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(int(p.X), int(p.Y)+4),
	}
	d.DrawString(s)
}

// WritePNG encodes the canvas as PNG.
func (c *RasterCanvas) WritePNG(w io.Writer) error {
	if err := png.Encode(w, c.img); err != nil {
		return fmt.Errorf("encoding png: %w", err)
	}
	return nil
}

func (c *RasterCanvas) screen(p Point) Point {
	x, y := c.t.ToScreen(p.X, p.Y)
	return Point{x, y}
}

// fill rasterizes a screen-space polygon. Shapes entirely off the image
// are skipped.
func (c *RasterCanvas) fill(pts []Point, col color.NRGBA) {
	if len(pts) < 3 || col.A == 0 {
		return
	}
	w, h := c.Size()
	minX, minY, maxX, maxY := pts[0].X, pts[0].Y, pts[0].X, pts[0].Y
	for _, p := range pts[1:] {
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
	}
	if maxX < 0 || maxY < 0 || minX > float64(w) || minY > float64(h) {
		return
	}
	if math.IsNaN(minX) || math.IsNaN(minY) || math.IsNaN(maxX) || math.IsNaN(maxY) {
		return
	}

	c.z.Reset(w, h)
	c.z.DrawOp = draw.Over
	c.z.MoveTo(float32(pts[0].X), float32(pts[0].Y))
	for _, p := range pts[1:] {
		c.z.LineTo(float32(p.X), float32(p.Y))
	}
	c.z.ClosePath()
	c.z.Draw(c.img, c.img.Bounds(), image.NewUniform(col), image.Point{})
}

// clipSegment clips a-b to the rectangle (Liang-Barsky).
func clipSegment(a, b Point, minX, minY, maxX, maxY float64) (Point, Point, bool) {
	t0, t1 := 0.0, 1.0
	dx, dy := b.X-a.X, b.Y-a.Y
	clip := func(p, q float64) bool {
		if p == 0 {
			return q >= 0
		}
		r := q / p
		if p < 0 {
			if r > t1 {
				return false
			}
			if r > t0 {
				t0 = r
			}
		} else {
			if r < t0 {
				return false
			}
			if r < t1 {
				t1 = r
			}
		}
		return true
	}
	if !clip(-dx, a.X-minX) || !clip(dx, maxX-a.X) || !clip(-dy, a.Y-minY) || !clip(dy, maxY-a.Y) {
		return a, b, false
	}
	return Point{a.X + t0*dx, a.Y + t0*dy}, Point{a.X + t1*dx, a.Y + t1*dy}, true
}
