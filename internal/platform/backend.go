package platform

import (
	"context"
	"image"
	"time"
)

// WindowID is a platform-neutral window identifier.
type WindowID uint32

// Point is a pixel position, either window-local or in root (screen)
// coordinates depending on context.
type Point struct {
	X int
	Y int
}

// Sub returns p - q.
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Rect describes a rectangular region in pixels.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Centered returns a width x height rect centered in r.
func (r Rect) Centered(width, height int) Rect {
	return Rect{
		X:      r.X + (r.Width-width)/2,
		Y:      r.Y + (r.Height-height)/2,
		Width:  width,
		Height: height,
	}
}

// Display describes a physical display.
type Display struct {
	ID     int
	Name   string
	Bounds Rect
}

// Button identifies a pointer button.
type Button int

const (
	ButtonNone Button = iota
	ButtonLeft
	ButtonMiddle
	ButtonRight
)

func (b Button) String() string {
	switch b {
	case ButtonLeft:
		return "left"
	case ButtonMiddle:
		return "middle"
	case ButtonRight:
		return "right"
	default:
		return "none"
	}
}

// ButtonEvent is a pointer press or release.
type ButtonEvent struct {
	Button Button
	Local  Point // relative to the window origin
	Global Point // relative to the root window
}

// MotionEvent is a pointer move while a button is held.
type MotionEvent struct {
	Local  Point
	Global Point
}

// MenuItem is one entry of a popup menu.
type MenuItem struct {
	Label  string
	Action func()
}

// Handlers are the event callbacks a window delivers. Nil entries are
// skipped. All callbacks run on the event loop's single execution context.
type Handlers struct {
	Paint          func()
	Resized        func(width, height int)
	ButtonPress    func(ev ButtonEvent)
	ButtonRelease  func(ev ButtonEvent)
	Motion         func(ev MotionEvent)
	FocusChanged   func(focused bool)
	CloseRequested func()
}

// WindowOptions configures a new top-level window.
type WindowOptions struct {
	Title   string
	Class   string
	Bounds  Rect
	MinSide int
	Icon    image.Image
}

// Window is a frameless, always-on-top, translucent top-level window.
type Window interface {
	ID() WindowID
	// Size returns the last requested or reported window size.
	Size() (width, height int)
	// Resize changes the window size and reports it through Handlers.Resized.
	Resize(width, height int) error
	// SetShape restricts the visible and input area to the union of rects.
	SetShape(rects []Rect) error
	// StartMove hands an interactive move over to the window manager.
	StartMove(at Point, button Button) error
	// Focused reports whether the window currently has input focus.
	Focused() bool
	// Present shows img, which must match the window size.
	Present(img *image.RGBA) error
	// ShowMenu opens a popup menu at a root position.
	ShowMenu(at Point, items []MenuItem) error
	Handle(h Handlers)
	Show() error
	Close() error
}

// Backend abstracts window-system operations across platforms.
type Backend interface {
	ActiveDisplay() (Display, error)
	NewWindow(opts WindowOptions) (Window, error)
	// Run processes window events and calls tick every interval until ctx is
	// done or every window is closed. Event callbacks and tick never run
	// concurrently.
	Run(ctx context.Context, interval time.Duration, tick func()) error
	Disconnect()
}
