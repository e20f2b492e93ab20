//go:build linux

package platform

import (
	"context"
	"fmt"
	"image"
	"math"
	"time"

	"github.com/1broseidon/clockwidget/internal/x11"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/rs/zerolog"
)

// LinuxBackend wraps an X11 connection behind the platform Backend interface.
type LinuxBackend struct {
	conn    *x11.Connection
	log     zerolog.Logger
	windows []*linuxWindow
}

var _ Backend = (*LinuxBackend)(nil)

// NewLinuxBackend creates a Linux platform backend from an existing X11 connection.
func NewLinuxBackend(conn *x11.Connection, log zerolog.Logger) *LinuxBackend {
	return &LinuxBackend{conn: conn, log: log}
}

// NewLinuxBackendFromDisplay creates a new Linux backend by opening a fresh X11 connection.
func NewLinuxBackendFromDisplay(log zerolog.Logger) (*LinuxBackend, error) {
	conn, err := x11.NewConnection(log.With().Str("component", "x11").Logger())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X11: %w", err)
	}
	return NewLinuxBackend(conn, log), nil
}

// Disconnect closes the underlying X11 connection.
func (b *LinuxBackend) Disconnect() {
	if b != nil && b.conn != nil {
		b.conn.Close()
	}
}

// ActiveDisplay returns the display under the mouse pointer.
func (b *LinuxBackend) ActiveDisplay() (Display, error) {
	conn, err := b.connection()
	if err != nil {
		return Display{}, err
	}

	mon, err := conn.PointerMonitor()
	if err != nil {
		return Display{}, err
	}
	return displayFromMonitor(mon), nil
}

// NewWindow creates an unmapped top-level window.
func (b *LinuxBackend) NewWindow(opts WindowOptions) (Window, error) {
	conn, err := b.connection()
	if err != nil {
		return nil, err
	}

	win, err := conn.CreateWindow(x11.WindowConfig{
		Title:   opts.Title,
		Class:   opts.Class,
		X:       opts.Bounds.X,
		Y:       opts.Bounds.Y,
		Width:   opts.Bounds.Width,
		Height:  opts.Bounds.Height,
		MinSide: opts.MinSide,
		Icon:    opts.Icon,
	})
	if err != nil {
		return nil, err
	}
	b.log.Debug().
		Uint32("window", uint32(win.ID())).
		Bool("argb", win.ARGB()).
		Bool("shaped", conn.HasShape()).
		Msg("window created")

	w := &linuxWindow{backend: b, win: win, menu: conn.NewMenu()}
	b.windows = append(b.windows, w)
	return w, nil
}

// Run processes X events and calls tick every interval until every window is
// closed or ctx is done.
func (b *LinuxBackend) Run(ctx context.Context, interval time.Duration, tick func()) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}
	return conn.Loop(ctx, interval, tick, b.closeAll)
}

// closeAll closes every open window, letting its owner react first.
func (b *LinuxBackend) closeAll() {
	for _, w := range b.windows {
		if w.closed {
			continue
		}
		if w.handlers.CloseRequested != nil {
			w.handlers.CloseRequested()
		}
		if !w.closed {
			w.Close()
		}
	}
}

func (b *LinuxBackend) windowClosed() {
	for _, w := range b.windows {
		if !w.closed {
			return
		}
	}
	b.conn.Quit()
}

func (b *LinuxBackend) connection() (*x11.Connection, error) {
	if b == nil || b.conn == nil {
		return nil, fmt.Errorf("x11 backend connection is nil")
	}
	return b.conn, nil
}

// linuxWindow adapts an x11.Window to the Window interface.
type linuxWindow struct {
	backend  *LinuxBackend
	win      *x11.Window
	menu     *x11.Menu
	handlers Handlers
	closed   bool
}

var _ Window = (*linuxWindow)(nil)

func (w *linuxWindow) ID() WindowID {
	return WindowID(w.win.ID())
}

func (w *linuxWindow) Size() (int, int) {
	return w.win.Size()
}

func (w *linuxWindow) Resize(width, height int) error {
	return w.win.Resize(width, height)
}

// SetShape is a no-op on servers without the SHAPE extension; the window then
// stays square.
func (w *linuxWindow) SetShape(rects []Rect) error {
	if !w.backend.conn.HasShape() {
		return nil
	}
	return w.win.SetShape(xRectangles(rects))
}

func (w *linuxWindow) StartMove(at Point, button Button) error {
	return w.win.StartMove(at.X, at.Y, xButton(button))
}

func (w *linuxWindow) Focused() bool {
	return w.win.Focused()
}

func (w *linuxWindow) Present(img *image.RGBA) error {
	if w.closed {
		return nil
	}
	return w.win.Paint(img)
}

func (w *linuxWindow) ShowMenu(at Point, items []MenuItem) error {
	labels := make([]string, len(items))
	for i, item := range items {
		labels[i] = item.Label
	}
	return w.menu.Open(at.X, at.Y, labels, func(index int) {
		if action := items[index].Action; action != nil {
			action()
		}
	})
}

func (w *linuxWindow) Handle(h Handlers) {
	w.handlers = h
	w.win.SetEvents(x11.Events{
		Expose:    h.Paint,
		Configure: h.Resized,
		ButtonPress: func(p x11.Pointer) {
			if h.ButtonPress != nil {
				h.ButtonPress(buttonEvent(p))
			}
		},
		ButtonRelease: func(p x11.Pointer) {
			if h.ButtonRelease != nil {
				h.ButtonRelease(buttonEvent(p))
			}
		},
		Motion: func(p x11.Pointer) {
			if h.Motion != nil {
				h.Motion(MotionEvent{
					Local:  Point{X: p.X, Y: p.Y},
					Global: Point{X: p.RootX, Y: p.RootY},
				})
			}
		},
		Focus:  h.FocusChanged,
		Delete: h.CloseRequested,
	})
}

func (w *linuxWindow) Show() error {
	return w.win.Map()
}

// Close destroys the window. The event loop stops once no window is left.
func (w *linuxWindow) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	w.menu.Destroy()
	w.win.Destroy()
	w.backend.windowClosed()
	return nil
}

func displayFromMonitor(m x11.Monitor) Display {
	return Display{
		ID:   m.ID,
		Name: m.Name,
		Bounds: Rect{
			X:      m.X,
			Y:      m.Y,
			Width:  m.Width,
			Height: m.Height,
		},
	}
}

func buttonEvent(p x11.Pointer) ButtonEvent {
	return ButtonEvent{
		Button: buttonFromX(p.Button),
		Local:  Point{X: p.X, Y: p.Y},
		Global: Point{X: p.RootX, Y: p.RootY},
	}
}

// buttonFromX maps core protocol button numbers. Wheel and extra buttons map
// to ButtonNone.
func buttonFromX(detail int) Button {
	switch detail {
	case 1:
		return ButtonLeft
	case 2:
		return ButtonMiddle
	case 3:
		return ButtonRight
	default:
		return ButtonNone
	}
}

func xButton(b Button) int {
	switch b {
	case ButtonLeft:
		return 1
	case ButtonMiddle:
		return 2
	case ButtonRight:
		return 3
	default:
		return 0
	}
}

// xRectangles converts rects to protocol rectangles, dropping empty ones and
// clamping to the 16-bit wire range.
func xRectangles(rects []Rect) []xproto.Rectangle {
	out := make([]xproto.Rectangle, 0, len(rects))
	for _, r := range rects {
		if r.Width <= 0 || r.Height <= 0 {
			continue
		}
		out = append(out, xproto.Rectangle{
			X:      int16(clamp(r.X, math.MinInt16, math.MaxInt16)),
			Y:      int16(clamp(r.Y, math.MinInt16, math.MaxInt16)),
			Width:  uint16(clamp(r.Width, 0, math.MaxUint16)),
			Height: uint16(clamp(r.Height, 0, math.MaxUint16)),
		})
	}
	return out
}

func clamp(v, lo, hi int) int {
	return min(max(v, lo), hi)
}
