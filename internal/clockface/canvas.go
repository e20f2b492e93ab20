package clockface

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/math/f64"
	"golang.org/x/image/vector"
)

// Point is a position in logical (canvas) coordinates.
type Point struct {
	X float64
	Y float64
}

// Canvas is the drawing surface the face is rendered onto. Coordinates passed
// to the fill operations are transformed by the current matrix, which is
// modified by Translate and Rotate and scoped by Save/Restore.
type Canvas interface {
	Save()
	Restore()
	Translate(dx, dy float64)
	Rotate(degrees float64)
	FillPolygon(c color.NRGBA, pts ...Point)
	FillCircle(c color.NRGBA, center Point, radius float64)
	StrokeLine(c color.NRGBA, from, to Point, width float64)
}

// circleSegments is the number of edges used to approximate a circle.
const circleSegments = 96

// Painter is a Canvas that rasterizes onto an RGBA image with anti-aliasing.
type Painter struct {
	dst   *image.RGBA
	ras   *vector.Rasterizer
	m     f64.Aff3
	stack []f64.Aff3
}

var _ Canvas = (*Painter)(nil)

// NewPainter returns a painter drawing onto dst with an identity transform.
func NewPainter(dst *image.RGBA) *Painter {
	b := dst.Bounds()
	return &Painter{
		dst: dst,
		ras: vector.NewRasterizer(b.Dx(), b.Dy()),
		m:   identity(),
	}
}

// SetWindow maps the logical rectangle (0,0)-(lw,lh) onto the device
// viewport at (vx,vy) with size vw x vh. It resets the transform stack.
func (p *Painter) SetWindow(vx, vy, vw, vh int, lw, lh float64) {
	p.stack = p.stack[:0]
	p.m = f64.Aff3{
		float64(vw) / lw, 0, float64(vx),
		0, float64(vh) / lh, float64(vy),
	}
}

// Save pushes the current transform.
func (p *Painter) Save() {
	p.stack = append(p.stack, p.m)
}

// Restore pops the transform pushed by the matching Save. Unbalanced calls
// are ignored.
func (p *Painter) Restore() {
	if len(p.stack) == 0 {
		return
	}
	p.m = p.stack[len(p.stack)-1]
	p.stack = p.stack[:len(p.stack)-1]
}

// Translate moves the origin by (dx, dy) in current coordinates.
func (p *Painter) Translate(dx, dy float64) {
	p.m = mul(p.m, f64.Aff3{1, 0, dx, 0, 1, dy})
}

// Rotate rotates the coordinate system clockwise (y axis points down).
func (p *Painter) Rotate(degrees float64) {
	rad := degrees * math.Pi / 180
	sin, cos := math.Sincos(rad)
	p.m = mul(p.m, f64.Aff3{cos, -sin, 0, sin, cos, 0})
}

// FillPolygon rasterizes only the device-space bounding box of pts, clipped
// to the destination.
func (p *Painter) FillPolygon(c color.NRGBA, pts ...Point) {
	if len(pts) < 3 {
		return
	}
	dev := make([]Point, len(pts))
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for i, pt := range pts {
		x, y := apply(p.m, pt)
		dev[i] = Point{X: x, Y: y}
		minX, maxX = math.Min(minX, x), math.Max(maxX, x)
		minY, maxY = math.Min(minY, y), math.Max(maxY, y)
	}
	box := polygonBounds(minX, minY, maxX, maxY).Intersect(p.dst.Bounds())
	if box.Empty() {
		return
	}

	p.ras.Reset(box.Dx(), box.Dy())
	for i, pt := range dev {
		x := float32(pt.X - float64(box.Min.X))
		y := float32(pt.Y - float64(box.Min.Y))
		if i == 0 {
			p.ras.MoveTo(x, y)
			continue
		}
		p.ras.LineTo(x, y)
	}
	p.ras.ClosePath()
	p.ras.Draw(p.dst, box, image.NewUniform(c), image.Point{})
}

// polygonBounds returns the pixel rectangle covering the given extents.
func polygonBounds(minX, minY, maxX, maxY float64) image.Rectangle {
	return image.Rect(
		int(math.Floor(minX)), int(math.Floor(minY)),
		int(math.Ceil(maxX)), int(math.Ceil(maxY)),
	)
}

func (p *Painter) FillCircle(c color.NRGBA, center Point, radius float64) {
	pts := make([]Point, circleSegments)
	for i := range pts {
		a := 2 * math.Pi * float64(i) / circleSegments
		sin, cos := math.Sincos(a)
		pts[i] = Point{X: center.X + radius*cos, Y: center.Y + radius*sin}
	}
	p.FillPolygon(c, pts...)
}

func (p *Painter) StrokeLine(c color.NRGBA, from, to Point, width float64) {
	dx, dy := to.X-from.X, to.Y-from.Y
	length := math.Hypot(dx, dy)
	if length == 0 {
		return
	}
	nx, ny := -dy/length*width/2, dx/length*width/2
	p.FillPolygon(c,
		Point{X: from.X + nx, Y: from.Y + ny},
		Point{X: to.X + nx, Y: to.Y + ny},
		Point{X: to.X - nx, Y: to.Y - ny},
		Point{X: from.X - nx, Y: from.Y - ny},
	)
}

func identity() f64.Aff3 {
	return f64.Aff3{1, 0, 0, 0, 1, 0}
}

// mul returns a*b, so that b is applied first.
func mul(a, b f64.Aff3) f64.Aff3 {
	return f64.Aff3{
		a[0]*b[0] + a[1]*b[3],
		a[0]*b[1] + a[1]*b[4],
		a[0]*b[2] + a[1]*b[5] + a[2],
		a[3]*b[0] + a[4]*b[3],
		a[3]*b[1] + a[4]*b[4],
		a[3]*b[2] + a[4]*b[5] + a[5],
	}
}

func apply(m f64.Aff3, pt Point) (float64, float64) {
	return m[0]*pt.X + m[1]*pt.Y + m[2], m[3]*pt.X + m[4]*pt.Y + m[5]
}
