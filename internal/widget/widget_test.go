package widget

import (
	"image"
	"math"
	"testing"
	"time"

	"github.com/1broseidon/clockwidget/internal/clockface"
	"github.com/1broseidon/clockwidget/internal/platform"
)

type fakeWindow struct {
	width, height int
	focused       bool
	handlers      platform.Handlers

	shapes  [][]platform.Rect
	frames  []*image.RGBA
	moves   []platform.Point
	menus   [][]platform.MenuItem
	shown   bool
	closed  int
	resizes int
}

func newFakeWindow(w, h int) *fakeWindow {
	return &fakeWindow{width: w, height: h}
}

func (f *fakeWindow) ID() platform.WindowID      { return 1 }
func (f *fakeWindow) Size() (int, int)           { return f.width, f.height }
func (f *fakeWindow) Focused() bool              { return f.focused }
func (f *fakeWindow) Handle(h platform.Handlers) { f.handlers = h }
func (f *fakeWindow) Show() error                { f.shown = true; return nil }
func (f *fakeWindow) Close() error               { f.closed++; return nil }
func (f *fakeWindow) Present(img *image.RGBA) error {
	f.frames = append(f.frames, img)
	return nil
}

func (f *fakeWindow) Resize(w, h int) error {
	f.width, f.height = w, h
	f.resizes++
	if f.handlers.Resized != nil {
		f.handlers.Resized(w, h)
	}
	return nil
}

func (f *fakeWindow) SetShape(rects []platform.Rect) error {
	f.shapes = append(f.shapes, rects)
	return nil
}

func (f *fakeWindow) StartMove(at platform.Point, _ platform.Button) error {
	f.moves = append(f.moves, at)
	return nil
}

func (f *fakeWindow) ShowMenu(_ platform.Point, items []platform.MenuItem) error {
	f.menus = append(f.menus, items)
	return nil
}

func fixedNow() time.Time {
	return time.Date(2024, 1, 1, 14, 7, 30, 0, time.Local)
}

// globalOffset is where the fake window sits on screen.
var globalOffset = platform.Point{X: 1000, Y: 500}

func press(f *fakeWindow, b platform.Button, local Vec) {
	lp := platform.Point{X: int(math.Round(local.X)), Y: int(math.Round(local.Y))}
	f.handlers.ButtonPress(platform.ButtonEvent{
		Button: b,
		Local:  lp,
		Global: platform.Point{X: lp.X + globalOffset.X, Y: lp.Y + globalOffset.Y},
	})
}

func TestHotspotsMirrorAcrossHorizontalAxis(t *testing.T) {
	for _, size := range [][2]int{{100, 100}, {400, 400}, {450, 450}, {640, 300}, {123, 987}} {
		hs := HotspotsFor(size[0], size[1])
		if hs.Grip.X != hs.Close.X {
			t.Errorf("%v: grip x %v != close x %v", size, hs.Grip.X, hs.Close.X)
		}
		if d := (hs.Grip.Y - hs.Center.Y) + (hs.Close.Y - hs.Center.Y); math.Abs(d) > 1e-9 {
			t.Errorf("%v: grip and close not mirrored around center y (%v)", size, d)
		}
	}
}

func TestHotspotsMatchAffordanceDots(t *testing.T) {
	hs := HotspotsFor(400, 400)
	// 200 + 180*0.7071
	if math.Abs(hs.Grip.X-327.278) > 1e-3 || math.Abs(hs.Grip.Y-327.278) > 1e-3 {
		t.Fatalf("grip = %+v", hs.Grip)
	}
	if math.Abs(hs.Close.Y-72.722) > 1e-3 {
		t.Fatalf("close = %+v", hs.Close)
	}

	for _, size := range [][2]int{{100, 100}, {400, 400}, {800, 800}, {640, 300}} {
		w, h := size[0], size[1]
		hs := HotspotsFor(w, h)
		vp := clockface.Viewport(w, h)
		scale := float64(vp.Dx()) / clockface.LogicalSize
		grip, closeDot := clockface.AffordanceDots(vp.Dx())
		drawnGrip := Vec{X: float64(vp.Min.X) + grip.X*scale, Y: float64(vp.Min.Y) + grip.Y*scale}
		drawnClose := Vec{X: float64(vp.Min.X) + closeDot.X*scale, Y: float64(vp.Min.Y) + closeDot.Y*scale}

		if math.Hypot(drawnGrip.X-hs.Grip.X, drawnGrip.Y-hs.Grip.Y) > 1e-9 {
			t.Errorf("%v: grip dot drawn at %+v, hotspot at %+v", size, drawnGrip, hs.Grip)
		}
		if math.Hypot(drawnClose.X-hs.Close.X, drawnClose.Y-hs.Close.Y) > 1e-9 {
			t.Errorf("%v: close dot drawn at %+v, hotspot at %+v", size, drawnClose, hs.Close)
		}
	}
}

func TestPressOnDrawnDots(t *testing.T) {
	for _, side := range []int{100, 400, 800} {
		scale := float64(side) / clockface.LogicalSize
		grip, closeDot := clockface.AffordanceDots(side)

		f := newFakeWindow(side, side)
		c := New(f, WithClock(fixedNow))
		press(f, platform.ButtonLeft, Vec{X: grip.X * scale, Y: grip.Y * scale})
		if c.Mode() != ModeResizing || len(f.moves) != 0 {
			t.Errorf("side %d: grip dot press gave mode=%v moves=%d, want resizing", side, c.Mode(), len(f.moves))
		}

		f = newFakeWindow(side, side)
		c = New(f, WithClock(fixedNow))
		press(f, platform.ButtonLeft, Vec{X: closeDot.X * scale, Y: closeDot.Y * scale})
		if !c.Closed() || len(f.moves) != 0 {
			t.Errorf("side %d: close dot press gave closed=%v moves=%d, want closed", side, c.Closed(), len(f.moves))
		}
	}
}

func TestCircleMaskIsInscribedDisc(t *testing.T) {
	for _, size := range [][2]int{{100, 100}, {101, 101}, {400, 400}, {450, 300}, {300, 450}} {
		w, h := size[0], size[1]
		side := min(w, h)
		r := float64(side) / 2
		rects := CircleMask(w, h)

		covered := make(map[[2]int]bool)
		area := 0
		for _, rc := range rects {
			if rc.X < 0 || rc.Y < 0 || rc.X+rc.Width > side || rc.Y+rc.Height > side {
				t.Fatalf("%v: rect %+v escapes the %dx%d square", size, rc, side, side)
			}
			for y := rc.Y; y < rc.Y+rc.Height; y++ {
				for x := rc.X; x < rc.X+rc.Width; x++ {
					covered[[2]int{x, y}] = true
					area++
				}
			}
		}

		for y := 0; y < side; y++ {
			for x := 0; x < side; x++ {
				d := math.Hypot(float64(x)+0.5-r, float64(y)+0.5-r)
				in := covered[[2]int{x, y}]
				if d < r-1 && !in {
					t.Fatalf("%v: pixel (%d,%d) at distance %.2f not covered", size, x, y, d)
				}
				if d > r+1 && in {
					t.Fatalf("%v: pixel (%d,%d) at distance %.2f covered", size, x, y, d)
				}
			}
		}

		want := math.Pi * r * r
		if math.Abs(float64(area)-want)/want > 0.02 {
			t.Errorf("%v: mask area %d, want about %.0f", size, area, want)
		}
	}
}

func TestCircleMaskEmptyForZeroSize(t *testing.T) {
	if got := CircleMask(0, 400); got != nil {
		t.Fatalf("CircleMask(0, 400) = %v, want nil", got)
	}
}

func TestShowMasksAndPaints(t *testing.T) {
	f := newFakeWindow(400, 400)
	c := New(f, WithClock(fixedNow))
	if err := c.Show(); err != nil {
		t.Fatalf("Show: %v", err)
	}
	if !f.shown {
		t.Fatal("window not shown")
	}
	if len(f.shapes) != 1 || len(f.frames) != 1 {
		t.Fatalf("shapes=%d frames=%d, want 1 and 1", len(f.shapes), len(f.frames))
	}
	if b := f.frames[0].Bounds(); b.Dx() != 400 || b.Dy() != 400 {
		t.Fatalf("frame bounds = %v", b)
	}
}

func TestTickRepaintsWithoutStateChange(t *testing.T) {
	f := newFakeWindow(400, 400)
	c := New(f, WithClock(fixedNow))
	c.Tick()
	c.Tick()
	if len(f.frames) != 2 {
		t.Fatalf("frames = %d, want 2", len(f.frames))
	}
	if c.Mode() != ModeIdle || f.resizes != 0 || len(f.shapes) != 0 {
		t.Fatalf("tick mutated state: mode=%v resizes=%d shapes=%d", c.Mode(), f.resizes, len(f.shapes))
	}
}

func TestResizeScenario(t *testing.T) {
	f := newFakeWindow(400, 400)
	c := New(f, WithClock(fixedNow))

	press(f, platform.ButtonLeft, HotspotsFor(400, 400).Grip)
	if c.Mode() != ModeResizing {
		t.Fatalf("mode = %v, want resizing", c.Mode())
	}

	anchor, _ := c.state.Anchor()
	f.handlers.Motion(platform.MotionEvent{Global: platform.Point{X: anchor.X + 50, Y: anchor.Y + 20}})
	if f.width != 450 || f.height != 450 {
		t.Fatalf("size = %dx%d, want 450x450", f.width, f.height)
	}
	if len(f.moves) != 0 {
		t.Fatalf("grip press must not start a move")
	}

	f.handlers.ButtonRelease(platform.ButtonEvent{Button: platform.ButtonLeft})
	if c.Mode() != ModeIdle {
		t.Fatalf("mode after release = %v, want idle", c.Mode())
	}
	if _, ok := c.state.Anchor(); ok {
		t.Fatal("anchor survived release")
	}
}

func TestResizeIsIncrementalAndClamped(t *testing.T) {
	f := newFakeWindow(400, 400)
	c := New(f, WithClock(fixedNow))
	press(f, platform.ButtonLeft, HotspotsFor(400, 400).Grip)

	start, _ := c.state.Anchor()
	steps := []platform.Point{
		{X: 10, Y: -5},
		{X: 10, Y: 40},
		{X: -400, Y: -400},
		{X: -500, Y: -400},
		{X: -480, Y: -390},
		{X: -470, Y: -300},
	}
	for _, d := range steps {
		f.handlers.Motion(platform.MotionEvent{Global: platform.Point{X: start.X + d.X, Y: start.Y + d.Y}})
		if f.width != f.height {
			t.Fatalf("after %+v: size %dx%d is not square", d, f.width, f.height)
		}
		if f.width < MinSide {
			t.Fatalf("after %+v: side %d below minimum", d, f.width)
		}
	}

	// Deltas are taken from the previous pointer position, not the press.
	// 400 -> 410 -> 455 -> 100 (clamped) -> 100 -> 120 -> 210
	if f.width != 210 {
		t.Fatalf("final side = %d, want 210", f.width)
	}
	// Every resize re-applies the mask.
	if len(f.shapes) != f.resizes {
		t.Fatalf("shapes=%d resizes=%d", len(f.shapes), f.resizes)
	}
}

func TestMotionWhileIdleDoesNothing(t *testing.T) {
	f := newFakeWindow(400, 400)
	New(f, WithClock(fixedNow))
	f.handlers.Motion(platform.MotionEvent{Global: platform.Point{X: 9999, Y: 9999}})
	if f.resizes != 0 {
		t.Fatalf("resizes = %d, want 0", f.resizes)
	}
}

func TestReleaseOfAnyButtonEndsResize(t *testing.T) {
	f := newFakeWindow(400, 400)
	c := New(f, WithClock(fixedNow))
	press(f, platform.ButtonLeft, HotspotsFor(400, 400).Grip)
	f.handlers.ButtonRelease(platform.ButtonEvent{Button: platform.ButtonRight, Local: platform.Point{X: -50, Y: -50}})
	if c.Mode() != ModeIdle {
		t.Fatalf("mode = %v, want idle", c.Mode())
	}
}

func TestClosePress(t *testing.T) {
	f := newFakeWindow(400, 400)
	c := New(f, WithClock(fixedNow))
	press(f, platform.ButtonLeft, HotspotsFor(400, 400).Close)
	if !c.Closed() || f.closed != 1 {
		t.Fatalf("closed=%v calls=%d, want closed once", c.Closed(), f.closed)
	}
	if len(f.moves) != 0 {
		t.Fatal("close press must not start a move")
	}

	c.Close()
	if f.closed != 1 {
		t.Fatalf("second Close called window close again (%d)", f.closed)
	}
	c.Repaint()
	if len(f.frames) != 0 {
		t.Fatal("repaint after close presented a frame")
	}
}

func TestPressOutsideHotspotsStartsMove(t *testing.T) {
	f := newFakeWindow(400, 400)
	c := New(f, WithClock(fixedNow))
	for _, p := range []Vec{{200, 200}, {30, 200}, {200, 390}} {
		press(f, platform.ButtonLeft, p)
	}
	if len(f.moves) != 3 {
		t.Fatalf("moves = %d, want 3", len(f.moves))
	}
	if f.moves[0] != (platform.Point{X: 1200, Y: 700}) {
		t.Fatalf("move started at %+v, want global pointer", f.moves[0])
	}
	if c.Mode() != ModeIdle || c.Closed() {
		t.Fatal("move press changed widget state")
	}
}

func TestGripHitAtMinimumSize(t *testing.T) {
	f := newFakeWindow(MinSide, MinSide)
	c := New(f, WithClock(fixedNow))
	press(f, platform.ButtonLeft, HotspotsFor(MinSide, MinSide).Grip)
	if c.Mode() != ModeResizing || c.Closed() {
		t.Fatalf("mode=%v closed=%v, want resizing and open", c.Mode(), c.Closed())
	}
}

func TestRightClickOpensCloseMenu(t *testing.T) {
	f := newFakeWindow(400, 400)
	c := New(f, WithClock(fixedNow))
	press(f, platform.ButtonRight, HotspotsFor(400, 400).Grip)

	if c.Mode() != ModeIdle {
		t.Fatal("right press on grip must not start a resize")
	}
	if len(f.moves) != 0 {
		t.Fatal("right press must not start a move")
	}
	if len(f.menus) != 1 || len(f.menus[0]) != 1 || f.menus[0][0].Label != "Close" {
		t.Fatalf("menus = %+v, want single Close item", f.menus)
	}

	f.menus[0][0].Action()
	if !c.Closed() {
		t.Fatal("menu Close action did not close the widget")
	}
}

func TestFocusChangeRepaints(t *testing.T) {
	f := newFakeWindow(400, 400)
	New(f, WithClock(fixedNow))

	f.focused = true
	f.handlers.FocusChanged(true)
	f.focused = false
	f.handlers.FocusChanged(false)

	if len(f.frames) != 2 {
		t.Fatalf("frames = %d, want 2", len(f.frames))
	}
	// Lower left of the face, clear of the hands at 14:07:30 and the readout.
	face := func(img *image.RGBA) uint8 { return img.RGBAAt(100, 300).A }
	if a, b := face(f.frames[0]), face(f.frames[1]); a <= b {
		t.Fatalf("focused alpha %d should exceed unfocused alpha %d", a, b)
	}
}

func TestCloseRequestedByWindowManager(t *testing.T) {
	f := newFakeWindow(400, 400)
	c := New(f, WithClock(fixedNow))
	f.handlers.CloseRequested()
	if !c.Closed() || f.closed != 1 {
		t.Fatal("close request not honored")
	}
}

func TestModeString(t *testing.T) {
	if ModeIdle.String() != "idle" || ModeResizing.String() != "resizing" || Mode(7).String() != "unknown" {
		t.Fatal("unexpected mode strings")
	}
}
