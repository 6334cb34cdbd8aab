package render

import (
	"image/color"
	"math"

	"github.com/supplynet/scmap/internal/viewport"
)

// Op is one recorded drawing command in screen coordinates. Points holds
// x,y pairs; circles use the first pair as center and R as radius.
type Op struct {
	Kind   string    `json:"k"`
	Points []float64 `json:"p,omitempty"`
	R      float64   `json:"r,omitempty"`
	Width  float64   `json:"w,omitempty"`
	Color  string    `json:"c"`
	Alpha  float64   `json:"a"`
	Text   string    `json:"t,omitempty"`
	Size   float64   `json:"s,omitempty"`
}

// Op kinds.
const (
	OpLine    = "line"
	OpPolygon = "poly"
	OpCircle  = "circle"
	OpText    = "text"
)

// DisplayList records drawing commands for replay by a remote client.
type DisplayList struct {
	W          int                `json:"w"`
	H          int                `json:"h"`
	Background string             `json:"bg"`
	Transform  viewport.Transform `json:"transform"`
	Ops        []Op               `json:"ops"`
}

// NewDisplayList returns an empty w x h list.
func NewDisplayList(w, h int) *DisplayList {
	return &DisplayList{W: w, H: h, Transform: viewport.IdentityTransform()}
}

func (d *DisplayList) Size() (int, int) { return d.W, d.H }

func (d *DisplayList) Clear(bg color.NRGBA) {
	d.Background = Hex(bg)
	d.Ops = d.Ops[:0]
}

func (d *DisplayList) SetTransform(t viewport.Transform) { d.Transform = t }

func (d *DisplayList) Line(a, b Point, width float64, stroke color.NRGBA) {
	pts := screenPoints(d.Transform, []Point{a, b})
	d.add(Op{
		Kind:   OpLine,
		Points: flatten(pts),
		Width:  round(math.Max(width*d.Transform.Scale, 0.5)),
		Color:  Hex(stroke),
		Alpha:  alpha(stroke),
	})
}

func (d *DisplayList) Polygon(pts []Point, fill color.NRGBA) {
	d.add(Op{Kind: OpPolygon, Points: flatten(screenPoints(d.Transform, pts)), Color: Hex(fill), Alpha: alpha(fill)})
}

func (d *DisplayList) Circle(center Point, r float64, fill color.NRGBA) {
	x, y := d.Transform.ToScreen(center.X, center.Y)
	d.add(Op{Kind: OpCircle, Points: []float64{round(x), round(y)}, R: round(r * d.Transform.Scale), Color: Hex(fill), Alpha: alpha(fill)})
}

func (d *DisplayList) Text(at Point, size float64, s string, fill color.NRGBA) {
	x, y := d.Transform.ToScreen(at.X, at.Y)
	d.add(Op{Kind: OpText, Points: []float64{round(x), round(y)}, Text: s, Size: size, Color: Hex(fill), Alpha: alpha(fill)})
}

func (d *DisplayList) add(op Op) { d.Ops = append(d.Ops, op) }

func flatten(pts []Point) []float64 {
	out := make([]float64, 0, 2*len(pts))
	for _, p := range pts {
		out = append(out, round(p.X), round(p.Y))
	}
	return out
}

// round keeps two decimals; the wire format does not need more.
func round(v float64) float64 {
	return math.Round(v*100) / 100
}

func alpha(c color.NRGBA) float64 {
	return round(float64(c.A) / 255)
}
