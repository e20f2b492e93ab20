// Package clockface renders the analog/digital clock face in a logical
// 200x200 coordinate space, independent of the window size.
package clockface

import (
	"image"
	"image/color"
	"math"
	"time"
)

// LogicalSize is the side of the logical drawing square.
const LogicalSize = 200

// Face geometry in logical units.
const (
	faceRadius    = 98
	tickInner     = 90
	tickWidth     = 1
	hourLength    = 50
	hourHalfWidth = 3
	minLength     = 70
	minHalfWidth  = 2
	secLength     = 90
	secHalfWidth  = 1
)

// Seven-segment readout layout in logical units.
const (
	digitWidth   = 8
	digitHeight  = 14
	digitSpacing = 4
	groupSpacing = 6
	readoutTop   = 45
	colonRadius  = 2
)

// Face alpha for focused and unfocused windows.
const (
	FocusedAlpha   = 240
	UnfocusedAlpha = 150
)

// Affordance dots sit DotInset device pixels inside the rim, 45° off the
// horizontal through the center.
const (
	DotInset = 20
	Cos45    = 0.7071
)

var (
	colorTick       = color.NRGBA{255, 255, 255, 255}
	colorHourHand   = color.NRGBA{255, 255, 255, 255}
	colorMinuteHand = color.NRGBA{200, 200, 200, 255}
	colorSecondHand = color.NRGBA{255, 0, 0, 255}
	colorSegmentOff = color.NRGBA{50, 50, 50, 100}
	colorSegmentOn  = color.NRGBA{0, 255, 0, 200}
	colorGripDot    = color.NRGBA{200, 200, 200, 150}
	colorCloseDot   = color.NRGBA{255, 50, 50, 200}
)

// Reading is a wall-clock time sampled for a single frame.
type Reading struct {
	Hour   int
	Minute int
	Second int
}

// ReadingAt samples t in its own location.
func ReadingAt(t time.Time) Reading {
	return Reading{Hour: t.Hour(), Minute: t.Minute(), Second: t.Second()}
}

// Digits returns the HH:MM readout digits.
func (r Reading) Digits() [4]int {
	return [4]int{r.Hour / 10, r.Hour % 10, r.Minute / 10, r.Minute % 10}
}

// HourAngle is the hour hand rotation in degrees clockwise from 12 o'clock,
// in [0, 360).
func (r Reading) HourAngle() float64 {
	return normalize(30 * (float64(r.Hour%12) + float64(r.Minute)/60))
}

// MinuteAngle is the minute hand rotation in degrees, in [0, 360).
func (r Reading) MinuteAngle() float64 {
	return normalize(6 * (float64(r.Minute) + float64(r.Second)/60))
}

// SecondAngle is the rotation applied to the second hand, which is drawn
// along +x, so 0 seconds yields 270 (pointing up).
func (r Reading) SecondAngle() float64 {
	return normalize(6*float64(r.Second) - 90)
}

func normalize(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	return deg
}

// FaceColor returns the background fill for the given focus state.
func FaceColor(focused bool) color.NRGBA {
	if focused {
		return color.NRGBA{0, 0, 0, FocusedAlpha}
	}
	return color.NRGBA{0, 0, 0, UnfocusedAlpha}
}

// Viewport returns the largest square centered in a width x height window.
func Viewport(width, height int) image.Rectangle {
	side := min(width, height)
	x := (width - side) / 2
	y := (height - side) / 2
	return image.Rect(x, y, x+side, y+side)
}

// AffordanceDots returns the grip and close dot centers in logical units for
// a viewport of side device pixels. Scaled back to the device they land on
// the widget's hit-test hotspots.
func AffordanceDots(side int) (grip, closeDot Point) {
	if side <= 0 {
		side = LogicalSize
	}
	off := (LogicalSize/2 - DotInset*LogicalSize/float64(side)) * Cos45
	grip = Point{X: LogicalSize/2 + off, Y: LogicalSize/2 + off}
	closeDot = Point{X: LogicalSize/2 + off, Y: LogicalSize/2 - off}
	return grip, closeDot
}

// Render draws a full frame onto dst, which is expected to be cleared to
// transparent.
func Render(dst *image.RGBA, r Reading, focused bool) {
	b := dst.Bounds()
	vp := Viewport(b.Dx(), b.Dy())
	if vp.Empty() {
		return
	}
	p := NewPainter(dst)
	p.SetWindow(b.Min.X+vp.Min.X, b.Min.Y+vp.Min.Y, vp.Dx(), vp.Dy(), LogicalSize, LogicalSize)
	Draw(p, r, focused, vp.Dx())
}

// Draw issues the drawing operations for one frame in logical coordinates.
// side is the device side of the viewport and only places the affordance
// dots.
func Draw(c Canvas, r Reading, focused bool, side int) {
	drawFace(c, focused)
	drawReadout(c, r)
	drawHand(c, r.HourAngle(), colorHourHand,
		Point{-hourHalfWidth, 0}, Point{0, -hourLength}, Point{hourHalfWidth, 0})
	drawHand(c, r.MinuteAngle(), colorMinuteHand,
		Point{-minHalfWidth, 0}, Point{0, -minLength}, Point{minHalfWidth, 0})
	drawHand(c, r.SecondAngle(), colorSecondHand,
		Point{0, -secHalfWidth}, Point{secLength, 0}, Point{0, secHalfWidth})

	grip, closeDot := AffordanceDots(side)
	c.FillCircle(colorGripDot, grip, 5)
	c.FillCircle(colorCloseDot, closeDot, 6)
}

func drawFace(c Canvas, focused bool) {
	c.Save()
	defer c.Restore()

	c.Translate(LogicalSize/2, LogicalSize/2)
	c.FillCircle(FaceColor(focused), Point{}, faceRadius)
	for i := 0; i < 12; i++ {
		c.StrokeLine(colorTick, Point{0, -tickInner}, Point{0, -faceRadius}, tickWidth)
		c.Rotate(30)
	}
}

func drawHand(c Canvas, angle float64, col color.NRGBA, pts ...Point) {
	c.Save()
	defer c.Restore()

	c.Translate(LogicalSize/2, LogicalSize/2)
	c.Rotate(angle)
	c.FillPolygon(col, pts...)
}

// readoutOrigin returns the left edge of the first digit so the HH:MM group
// is centered on the face.
func readoutOrigin() float64 {
	total := 4*digitWidth + 2*digitSpacing + groupSpacing
	return LogicalSize/2 - float64(total)/2
}

func drawReadout(c Canvas, r Reading) {
	x := readoutOrigin()
	y := float64(readoutTop)
	for i, d := range r.Digits() {
		drawDigit(c, x, y, d)
		x += digitWidth + digitSpacing

		if i == 1 {
			cx := x - digitSpacing/2.0 + groupSpacing/2.0 - 1
			c.FillCircle(colorSegmentOn, Point{cx, y + digitHeight/3.0}, colonRadius)
			c.FillCircle(colorSegmentOn, Point{cx, y + 2*digitHeight/3.0}, colonRadius)
			x += groupSpacing
		}
	}
}

// drawDigit paints every segment dim, then the digit's lit segments on top.
func drawDigit(c Canvas, x, y float64, digit int) {
	for _, seg := range AllSegments {
		c.FillPolygon(colorSegmentOff, segmentPolygon(seg, x, y, digitWidth, digitHeight)...)
	}
	lit := SegmentsFor(digit)
	for _, seg := range AllSegments {
		if lit.Has(seg) {
			c.FillPolygon(colorSegmentOn, segmentPolygon(seg, x, y, digitWidth, digitHeight)...)
		}
	}
}
