package x11

import (
	"errors"
	"fmt"
	"image"
	"os"

	"github.com/BurntSushi/xgb/shape"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/BurntSushi/xgbutil/motif"
	"github.com/BurntSushi/xgbutil/xevent"
	"github.com/BurntSushi/xgbutil/xgraphics"
	"github.com/BurntSushi/xgbutil/xwindow"
)

// ErrNoShape is returned by SetShape when the server lacks the SHAPE extension.
var ErrNoShape = errors.New("shape extension not available")

const windowEventMask = xproto.EventMaskExposure |
	xproto.EventMaskStructureNotify |
	xproto.EventMaskFocusChange |
	xproto.EventMaskButtonPress |
	xproto.EventMaskButtonRelease |
	xproto.EventMaskButtonMotion

// WindowConfig describes a top-level window to create.
type WindowConfig struct {
	Title   string
	Class   string
	X, Y    int
	Width   int
	Height  int
	MinSide int
	Icon    image.Image
}

// Pointer is a button or motion event in window and root coordinates.
type Pointer struct {
	Button int // X button number, 0 for motion
	X, Y   int
	RootX  int
	RootY  int
}

// Events are the callbacks a Window dispatches. Nil entries are skipped.
type Events struct {
	Expose        func()
	Configure     func(width, height int)
	ButtonPress   func(p Pointer)
	ButtonRelease func(p Pointer)
	Motion        func(p Pointer)
	Focus         func(focused bool)
	Delete        func()
}

// Window is a frameless, always-on-top client window. When the server offers
// a 32-bit TrueColor visual the window is created on it so the compositor can
// blend it with what is underneath.
type Window struct {
	conn *Connection
	id   xproto.Window

	argb    bool
	gc      xproto.Gcontext
	cmap    xproto.Colormap
	surface *xgraphics.Image

	width, height int
	resize        pendingResize
	focused       bool
	destroyed     bool
	events        Events
}

// pendingResize remembers the last Resize request until the server reports
// the matching size.
type pendingResize struct {
	seq           uint16
	width, height int
	sent          bool
	awaiting      bool
}

// CreateWindow creates (but does not map) a window described by cfg.
func (c *Connection) CreateWindow(cfg WindowConfig) (*Window, error) {
	if cfg.Width < 1 || cfg.Height < 1 {
		return nil, fmt.Errorf("invalid window size %dx%d", cfg.Width, cfg.Height)
	}

	conn := c.XUtil.Conn()
	screen := c.XUtil.Screen()

	wid, err := xproto.NewWindowId(conn)
	if err != nil {
		return nil, err
	}
	w := &Window{conn: c, id: wid, width: cfg.Width, height: cfg.Height}

	if visual, ok := argbVisual(screen); ok {
		if err := w.createARGB(visual, cfg); err != nil {
			return nil, err
		}
	} else {
		c.log.Warn().Msg("no 32-bit visual, painting on the root visual")
		// Value list order follows the bit positions of the mask (low to high).
		err = xproto.CreateWindowChecked(
			conn,
			screen.RootDepth,
			wid,
			c.Root,
			int16(cfg.X), int16(cfg.Y),
			uint16(cfg.Width), uint16(cfg.Height),
			0,
			xproto.WindowClassInputOutput,
			screen.RootVisual,
			xproto.CwBackPixel|xproto.CwEventMask,
			[]uint32{0, windowEventMask},
		).Check()
		if err != nil {
			return nil, fmt.Errorf("create window: %w", err)
		}
	}

	w.setProperties(cfg)
	w.connectEvents()
	return w, nil
}

func (w *Window) createARGB(visual xproto.Visualid, cfg WindowConfig) error {
	conn := w.conn.XUtil.Conn()

	cmap, err := xproto.NewColormapId(conn)
	if err != nil {
		return err
	}
	if err := xproto.CreateColormapChecked(conn, xproto.ColormapAllocNone, cmap, w.conn.Root, visual).Check(); err != nil {
		return fmt.Errorf("create colormap: %w", err)
	}

	// A border pixel and colormap are mandatory when the depth differs from
	// the parent's.
	err = xproto.CreateWindowChecked(
		conn,
		32,
		w.id,
		w.conn.Root,
		int16(cfg.X), int16(cfg.Y),
		uint16(cfg.Width), uint16(cfg.Height),
		0,
		xproto.WindowClassInputOutput,
		visual,
		xproto.CwBackPixel|xproto.CwBorderPixel|xproto.CwEventMask|xproto.CwColormap,
		[]uint32{0, 0, windowEventMask, uint32(cmap)},
	).Check()
	if err != nil {
		xproto.FreeColormap(conn, cmap)
		return fmt.Errorf("create argb window: %w", err)
	}

	gc, err := xproto.NewGcontextId(conn)
	if err != nil {
		xproto.DestroyWindow(conn, w.id)
		xproto.FreeColormap(conn, cmap)
		return err
	}
	if err := xproto.CreateGCChecked(conn, gc, xproto.Drawable(w.id), xproto.GcGraphicsExposures, []uint32{0}).Check(); err != nil {
		xproto.DestroyWindow(conn, w.id)
		xproto.FreeColormap(conn, cmap)
		return fmt.Errorf("create gc: %w", err)
	}

	w.argb = true
	w.cmap = cmap
	w.gc = gc
	return nil
}

// argbVisual returns the first 32-bit TrueColor visual of the screen.
func argbVisual(screen *xproto.ScreenInfo) (xproto.Visualid, bool) {
	if screen == nil {
		return 0, false
	}
	for _, depth := range screen.AllowedDepths {
		if depth.Depth != 32 {
			continue
		}
		for _, v := range depth.Visuals {
			if v.Class == xproto.VisualClassTrueColor {
				return v.VisualId, true
			}
		}
	}
	return 0, false
}

func (w *Window) setProperties(cfg WindowConfig) {
	xu := w.conn.XUtil
	log := w.conn.log

	check := func(what string, err error) {
		if err != nil {
			log.Warn().Err(err).Str("property", what).Msg("set window property failed")
		}
	}

	check("_MOTIF_WM_HINTS", motif.WmHintsSet(xu, w.id, &motif.Hints{
		Flags:      motif.HintDecorations,
		Decoration: motif.DecorationNone,
	}))
	check("_NET_WM_STATE", ewmh.WmStateSet(xu, w.id, []string{"_NET_WM_STATE_ABOVE"}))
	check("_NET_WM_NAME", ewmh.WmNameSet(xu, w.id, cfg.Title))
	check("WM_NAME", icccm.WmNameSet(xu, w.id, cfg.Title))
	check("WM_CLASS", icccm.WmClassSet(xu, w.id, &icccm.WmClass{
		Instance: cfg.Class,
		Class:    cfg.Class,
	}))
	check("WM_NORMAL_HINTS", icccm.WmNormalHintsSet(xu, w.id, &icccm.NormalHints{
		Flags:     icccm.SizeHintUSPosition | icccm.SizeHintUSSize | icccm.SizeHintPMinSize,
		X:         cfg.X,
		Y:         cfg.Y,
		Width:     uint(cfg.Width),
		Height:    uint(cfg.Height),
		MinWidth:  uint(max(cfg.MinSide, 1)),
		MinHeight: uint(max(cfg.MinSide, 1)),
	}))
	check("_NET_WM_PID", ewmh.WmPidSet(xu, w.id, uint(os.Getpid())))
	if cfg.Icon != nil {
		check("_NET_WM_ICON", ewmh.WmIconSet(xu, w.id, []ewmh.WmIcon{IconFromImage(cfg.Icon)}))
	}

	xwindow.New(xu, w.id).WMGracefulClose(func(*xwindow.Window) {
		if w.events.Delete != nil {
			w.events.Delete()
		}
	})
}

func (w *Window) connectEvents() {
	xu := w.conn.XUtil

	xevent.ExposeFun(func(_ *xgbutil.XUtil, ev xevent.ExposeEvent) {
		if ev.Count == 0 && w.events.Expose != nil {
			w.events.Expose()
		}
	}).Connect(xu, w.id)

	// Resize already reported its own size; only sizes imposed from outside
	// are forwarded.
	xevent.ConfigureNotifyFun(func(_ *xgbutil.XUtil, ev xevent.ConfigureNotifyEvent) {
		width, height := int(ev.Width), int(ev.Height)
		if !w.acceptConfigure(ev.Sequence, width, height) {
			return
		}
		w.width, w.height = width, height
		if w.events.Configure != nil {
			w.events.Configure(width, height)
		}
	}).Connect(xu, w.id)

	xevent.ButtonPressFun(func(_ *xgbutil.XUtil, ev xevent.ButtonPressEvent) {
		if w.events.ButtonPress != nil {
			w.events.ButtonPress(Pointer{
				Button: int(ev.Detail),
				X:      int(ev.EventX),
				Y:      int(ev.EventY),
				RootX:  int(ev.RootX),
				RootY:  int(ev.RootY),
			})
		}
	}).Connect(xu, w.id)

	xevent.ButtonReleaseFun(func(_ *xgbutil.XUtil, ev xevent.ButtonReleaseEvent) {
		// A size the window manager refused is never confirmed.
		w.resize.awaiting = false
		if w.events.ButtonRelease != nil {
			w.events.ButtonRelease(Pointer{
				Button: int(ev.Detail),
				X:      int(ev.EventX),
				Y:      int(ev.EventY),
				RootX:  int(ev.RootX),
				RootY:  int(ev.RootY),
			})
		}
	}).Connect(xu, w.id)

	xevent.MotionNotifyFun(func(_ *xgbutil.XUtil, ev xevent.MotionNotifyEvent) {
		if w.events.Motion != nil {
			w.events.Motion(Pointer{
				X:     int(ev.EventX),
				Y:     int(ev.EventY),
				RootX: int(ev.RootX),
				RootY: int(ev.RootY),
			})
		}
	}).Connect(xu, w.id)

	xevent.FocusInFun(func(_ *xgbutil.XUtil, ev xevent.FocusInEvent) {
		if ev.Detail == xproto.NotifyDetailPointer {
			return
		}
		w.setFocused(true)
	}).Connect(xu, w.id)

	xevent.FocusOutFun(func(_ *xgbutil.XUtil, ev xevent.FocusOutEvent) {
		if ev.Detail == xproto.NotifyDetailPointer {
			return
		}
		// A grab (our own popup menu) does not move keyboard focus.
		if ev.Mode == xproto.NotifyModeGrab {
			return
		}
		w.setFocused(false)
	}).Connect(xu, w.id)
}

func (w *Window) setFocused(focused bool) {
	if w.focused == focused {
		return
	}
	w.focused = focused
	if w.events.Focus != nil {
		w.events.Focus(focused)
	}
}

// ID returns the X window id.
func (w *Window) ID() xproto.Window {
	return w.id
}

// ARGB reports whether the window uses a 32-bit visual.
func (w *Window) ARGB() bool {
	return w.argb
}

// SetEvents replaces the window's callbacks.
func (w *Window) SetEvents(ev Events) {
	w.events = ev
}

// Size returns the last requested or reported size.
func (w *Window) Size() (int, int) {
	return w.width, w.height
}

// Focused reports whether the window holds keyboard focus.
func (w *Window) Focused() bool {
	return w.focused
}

// Map shows the window and raises it.
func (w *Window) Map() error {
	conn := w.conn.XUtil.Conn()
	if err := xproto.MapWindowChecked(conn, w.id).Check(); err != nil {
		return fmt.Errorf("map window: %w", err)
	}
	xproto.ConfigureWindow(conn, w.id, xproto.ConfigWindowStackMode, []uint32{xproto.StackModeAbove})
	return nil
}

// Resize sets the window size and reports it through Events.Configure.
func (w *Window) Resize(width, height int) error {
	if width < 1 || height < 1 {
		return fmt.Errorf("invalid window size %dx%d", width, height)
	}
	cookie := xproto.ConfigureWindowChecked(
		w.conn.XUtil.Conn(),
		w.id,
		xproto.ConfigWindowWidth|xproto.ConfigWindowHeight,
		[]uint32{uint32(width), uint32(height)},
	)
	if err := cookie.Check(); err != nil {
		return fmt.Errorf("resize window: %w", err)
	}

	w.resize = pendingResize{
		seq:      cookie.Sequence,
		width:    width,
		height:   height,
		sent:     true,
		awaiting: true,
	}
	w.width, w.height = width, height
	if w.events.Configure != nil {
		w.events.Configure(width, height)
	}
	return nil
}

// acceptConfigure reports whether a ConfigureNotify carrying the given size
// should replace the cached one. Notifies generated before the last Resize
// request are stale; until that request is confirmed only its own size is
// taken.
func (w *Window) acceptConfigure(seq uint16, width, height int) bool {
	p := &w.resize
	if p.sent && int16(seq-p.seq) < 0 {
		return false
	}
	if p.awaiting {
		if width != p.width || height != p.height {
			return false
		}
		p.awaiting = false
	}
	return width != w.width || height != w.height
}

// SetShape sets both the bounding and the input region of the window.
func (w *Window) SetShape(rects []xproto.Rectangle) error {
	if !w.conn.hasShape {
		return ErrNoShape
	}
	conn := w.conn.XUtil.Conn()
	for _, kind := range []shape.Kind{shape.SkBounding, shape.SkInput} {
		err := shape.RectanglesChecked(
			conn,
			shape.SoSet,
			kind,
			xproto.ClipOrderingYXBanded,
			w.id,
			0, 0,
			rects,
		).Check()
		if err != nil {
			return fmt.Errorf("set shape kind %d: %w", kind, err)
		}
	}
	return nil
}

// StartMove hands an interactive move to the window manager. The implicit
// grab from the button press has to be released first or the window manager
// cannot take the pointer.
func (w *Window) StartMove(rootX, rootY, button int) error {
	xu := w.conn.XUtil
	if err := xproto.UngrabPointerChecked(xu.Conn(), xproto.TimeCurrentTime).Check(); err != nil {
		return fmt.Errorf("ungrab pointer: %w", err)
	}
	if err := ewmh.WmMoveresizeExtra(xu, w.id, ewmh.Move, rootX, rootY, button, 2); err != nil {
		return fmt.Errorf("request move: %w", err)
	}
	return nil
}

// Paint uploads img to the window.
func (w *Window) Paint(img *image.RGBA) error {
	if w.destroyed {
		return nil
	}
	if w.argb {
		return w.putImage32(img)
	}

	// Root-visual fallback: xgraphics converts to the server's 24-bit layout
	// and drops alpha, which leaves the face composited onto black.
	surface := xgraphics.NewConvert(w.conn.XUtil, img)
	if err := surface.XSurfaceSet(w.id); err != nil {
		surface.Destroy()
		return fmt.Errorf("create surface: %w", err)
	}
	surface.XDraw()
	surface.XPaint(w.id)
	if w.surface != nil {
		w.surface.Destroy()
	}
	w.surface = surface
	return nil
}

// putImage32 sends img as a depth-32 ZPixmap, split to fit the maximum
// request length.
func (w *Window) putImage32(img *image.RGBA) error {
	width, height := img.Rect.Dx(), img.Rect.Dy()
	if width == 0 || height == 0 {
		return nil
	}
	data := premultipliedBGRA(img)

	// 28 is the fixed part of a PutImage request.
	rowsPer := (xgbutil.MaxReqSize - 28) / (width * 4)
	if rowsPer < 1 {
		return fmt.Errorf("image row of %d pixels exceeds the request size", width)
	}

	conn := w.conn.XUtil.Conn()
	for y := 0; y < height; y += rowsPer {
		rows := min(rowsPer, height-y)
		chunk := data[y*width*4 : (y+rows)*width*4]
		xproto.PutImage(
			conn,
			xproto.ImageFormatZPixmap,
			xproto.Drawable(w.id),
			w.gc,
			uint16(width), uint16(rows),
			0, int16(y),
			0, 32,
			chunk,
		)
	}
	return nil
}

// Destroy destroys the window and frees its server resources. Callbacks are
// detached first so no handler runs for a destroyed window.
func (w *Window) Destroy() {
	if w.destroyed {
		return
	}
	w.destroyed = true

	xu := w.conn.XUtil
	conn := xu.Conn()
	xevent.Detach(xu, w.id)
	if w.surface != nil {
		w.surface.Destroy()
		w.surface = nil
	}
	if w.gc != 0 {
		xproto.FreeGC(conn, w.gc)
	}
	xproto.DestroyWindow(conn, w.id)
	if w.cmap != 0 {
		xproto.FreeColormap(conn, w.cmap)
	}
}
