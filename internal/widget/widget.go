// Package widget implements the clock window's behavior: masking, periodic
// repaint, and translating pointer input into move, resize and close
// gestures. It talks to the window system only through platform.Window.
package widget

import (
	"image"
	"time"

	"github.com/1broseidon/clockwidget/internal/clockface"
	"github.com/1broseidon/clockwidget/internal/platform"
	"github.com/rs/zerolog"
)

// Clock is the clock widget bound to a window.
type Clock struct {
	win     platform.Window
	state   *State
	now     func() time.Time
	log     zerolog.Logger
	minSide int
	closed  bool
}

// Option customizes a Clock.
type Option func(*Clock)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(c *Clock) { c.now = now }
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Clock) { c.log = l }
}

// WithMinSide overrides the minimum window side enforced while resizing.
func WithMinSide(side int) Option {
	return func(c *Clock) {
		if side > 0 {
			c.minSide = side
		}
	}
}

// New binds a clock to win and registers its event handlers.
func New(win platform.Window, opts ...Option) *Clock {
	c := &Clock{
		win:     win,
		state:   NewState(),
		now:     time.Now,
		log:     zerolog.Nop(),
		minSide: MinSide,
	}
	for _, opt := range opts {
		opt(c)
	}

	win.Handle(platform.Handlers{
		Paint:          c.Repaint,
		Resized:        c.onResized,
		ButtonPress:    c.onButtonPress,
		ButtonRelease:  c.onButtonRelease,
		Motion:         c.onMotion,
		FocusChanged:   c.onFocusChanged,
		CloseRequested: c.Close,
	})
	return c
}

// Mode returns the current interaction mode.
func (c *Clock) Mode() Mode {
	return c.state.Mode
}

// Closed reports whether Close has been called.
func (c *Clock) Closed() bool {
	return c.closed
}

// Show applies the initial mask, maps the window and draws the first frame.
func (c *Clock) Show() error {
	w, h := c.win.Size()
	c.applyMask(w, h)
	if err := c.win.Show(); err != nil {
		return err
	}
	c.Repaint()
	return nil
}

// Tick is called by the refresh timer. It only requests a repaint.
func (c *Clock) Tick() {
	c.Repaint()
}

// Repaint renders a frame for the current time and focus state.
func (c *Clock) Repaint() {
	if c.closed {
		return
	}
	w, h := c.win.Size()
	if w <= 0 || h <= 0 {
		return
	}
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	clockface.Render(img, clockface.ReadingAt(c.now()), c.win.Focused())
	if err := c.win.Present(img); err != nil {
		c.log.Warn().Err(err).Msg("present frame failed")
	}
}

// Close closes the window. Further calls are no-ops.
func (c *Clock) Close() {
	if c.closed {
		return
	}
	c.closed = true
	c.state.Reset()
	if err := c.win.Close(); err != nil {
		c.log.Warn().Err(err).Msg("close window failed")
	}
	c.log.Info().Msg("window closed")
}

func (c *Clock) applyMask(w, h int) {
	if err := c.win.SetShape(CircleMask(w, h)); err != nil {
		c.log.Warn().Err(err).Int("width", w).Int("height", h).Msg("set shape failed")
	}
}

func (c *Clock) onResized(w, h int) {
	c.applyMask(w, h)
	c.Repaint()
}

func (c *Clock) onFocusChanged(focused bool) {
	c.log.Debug().Bool("focused", focused).Msg("focus changed")
	c.Repaint()
}

func (c *Clock) onButtonPress(ev platform.ButtonEvent) {
	switch ev.Button {
	case platform.ButtonLeft:
		c.onLeftPress(ev)
	case platform.ButtonRight:
		items := []platform.MenuItem{{Label: "Close", Action: c.Close}}
		if err := c.win.ShowMenu(ev.Global, items); err != nil {
			c.log.Warn().Err(err).Msg("show context menu failed")
		}
	}
}

// onLeftPress checks the resize grip first, then the close button, and
// hands anything else to the window manager as a move.
func (c *Clock) onLeftPress(ev platform.ButtonEvent) {
	w, h := c.win.Size()
	hs := HotspotsFor(w, h)
	p := Vec{X: float64(ev.Local.X), Y: float64(ev.Local.Y)}

	if hs.InGrip(p) {
		c.state.BeginResize(ev.Global)
		c.log.Debug().Int("x", ev.Global.X).Int("y", ev.Global.Y).Msg("resize started")
		return
	}
	if hs.InClose(p) {
		c.Close()
		return
	}
	if err := c.win.StartMove(ev.Global, ev.Button); err != nil {
		c.log.Warn().Err(err).Msg("start move failed")
	}
}

func (c *Clock) onMotion(ev platform.MotionEvent) {
	anchor, ok := c.state.Anchor()
	if !ok {
		return
	}
	delta := ev.Global.Sub(anchor)
	change := max(delta.X, delta.Y)

	w, _ := c.win.Size()
	side := max(c.minSide, w+change)
	if err := c.win.Resize(side, side); err != nil {
		c.log.Warn().Err(err).Int("side", side).Msg("resize failed")
	}
	c.state.MoveAnchor(ev.Global)
}

func (c *Clock) onButtonRelease(platform.ButtonEvent) {
	if c.state.Mode == ModeResizing {
		w, h := c.win.Size()
		c.log.Debug().Int("width", w).Int("height", h).Msg("resize finished")
	}
	c.state.Reset()
}
