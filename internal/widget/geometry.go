package widget

import (
	"math"

	"github.com/1broseidon/clockwidget/internal/clockface"
	"github.com/1broseidon/clockwidget/internal/platform"
)

const (
	// MinSide is the smallest window side the resize gesture allows.
	MinSide = 100

	// hotspotInset is how far the grip and close hotspots sit inside the rim.
	// The face draws its affordance dots with the same inset.
	hotspotInset = clockface.DotInset
	// hotspotRadius is the hit radius of both hotspots.
	hotspotRadius = 15
	cos45         = clockface.Cos45
)

// Vec is a window-local position with sub-pixel precision.
type Vec struct {
	X float64
	Y float64
}

// Hotspots are the centers of the resize grip and close button for a window
// size.
type Hotspots struct {
	Center Vec
	Grip   Vec
	Close  Vec
}

// HotspotsFor computes the hotspot centers of a width x height window. The
// grip sits at 45° below the horizontal and the close button at 45° above,
// both grip-inset pixels inside the inscribed circle.
func HotspotsFor(width, height int) Hotspots {
	side := min(width, height)
	center := Vec{X: float64(width) / 2, Y: float64(height) / 2}
	dist := float64(side)/2 - hotspotInset
	off := dist * cos45
	return Hotspots{
		Center: center,
		Grip:   Vec{X: center.X + off, Y: center.Y + off},
		Close:  Vec{X: center.X + off, Y: center.Y - off},
	}
}

// InGrip reports whether p hits the resize grip.
func (h Hotspots) InGrip(p Vec) bool {
	return within(p, h.Grip, hotspotRadius)
}

// InClose reports whether p hits the close button.
func (h Hotspots) InClose(p Vec) bool {
	return within(p, h.Close, hotspotRadius)
}

func within(p, c Vec, r float64) bool {
	return math.Hypot(p.X-c.X, p.Y-c.Y) < r
}

// CircleMask returns the region of a disc of diameter min(width, height)
// anchored at the window origin, as one rectangle per covered scanline.
func CircleMask(width, height int) []platform.Rect {
	side := min(width, height)
	if side <= 0 {
		return nil
	}
	r := float64(side) / 2
	rects := make([]platform.Rect, 0, side)
	for y := 0; y < side; y++ {
		dy := float64(y) + 0.5 - r
		half := math.Sqrt(math.Max(0, r*r-dy*dy))
		x0 := int(math.Round(r - half))
		x1 := int(math.Round(r + half))
		if x1 <= x0 {
			continue
		}
		rects = append(rects, platform.Rect{X: x0, Y: y, Width: x1 - x0, Height: 1})
	}
	return rects
}
