package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/xevent"
)

// Menu colors
const (
	ColorMenuText = 0xf5f7fa
	ColorMenuBg   = 0x1f2933
)

const (
	menuPaddingX   = 10
	menuPaddingY   = 6
	menuLineHeight = 18
	menuCharWidth  = 7
	menuMinWidth   = 90
)

// Menu is a popup list of labels drawn with a core font in an
// override-redirect window. While it is open it holds a pointer grab: a press
// on an item selects it, a press anywhere else dismisses the menu.
type Menu struct {
	conn *Connection

	Window xproto.Window
	GC     xproto.Gcontext
	Font   xproto.Font

	labels   []string
	onSelect func(index int)
	width    int
	height   int

	created bool
	mapped  bool
}

// NewMenu creates an empty menu. Server resources are allocated on first use.
func (c *Connection) NewMenu() *Menu {
	return &Menu{conn: c}
}

// Open shows labels at the root position (x, y) and grabs the pointer.
// onSelect runs with the chosen index after the menu has closed.
func (m *Menu) Open(x, y int, labels []string, onSelect func(index int)) error {
	if len(labels) == 0 {
		return fmt.Errorf("menu has no items")
	}
	if err := m.ensureResources(); err != nil {
		return err
	}

	conn := m.conn.XUtil.Conn()
	screen := m.conn.XUtil.Screen()

	m.labels = labels
	m.onSelect = onSelect
	m.width, m.height = menuDimensions(labels)
	x, y = clampMenuOrigin(x, y, m.width, m.height, int(screen.WidthInPixels), int(screen.HeightInPixels))

	xproto.ConfigureWindow(
		conn,
		m.Window,
		xproto.ConfigWindowX|xproto.ConfigWindowY|xproto.ConfigWindowWidth|xproto.ConfigWindowHeight|xproto.ConfigWindowStackMode,
		[]uint32{
			uint32(x),
			uint32(y),
			uint32(m.width),
			uint32(m.height),
			xproto.StackModeAbove,
		},
	)
	xproto.MapWindow(conn, m.Window)
	m.mapped = true
	m.draw()

	reply, err := xproto.GrabPointer(
		conn,
		false,
		m.Window,
		xproto.EventMaskButtonPress|xproto.EventMaskButtonRelease,
		xproto.GrabModeAsync,
		xproto.GrabModeAsync,
		xproto.WindowNone,
		xproto.CursorNone,
		xproto.TimeCurrentTime,
	).Reply()
	if err != nil {
		m.Hide()
		return fmt.Errorf("grab pointer: %w", err)
	}
	if reply.Status != xproto.GrabStatusSuccess {
		m.Hide()
		return fmt.Errorf("grab pointer: status %d", reply.Status)
	}
	return nil
}

// Hide releases the grab and unmaps the menu.
func (m *Menu) Hide() {
	if !m.mapped {
		return
	}
	conn := m.conn.XUtil.Conn()
	xproto.UngrabPointer(conn, xproto.TimeCurrentTime)
	xproto.UnmapWindow(conn, m.Window)
	m.mapped = false
}

// Destroy frees the menu's server resources.
func (m *Menu) Destroy() {
	m.Hide()
	if !m.created {
		return
	}
	xu := m.conn.XUtil
	xevent.Detach(xu, m.Window)
	xproto.FreeGC(xu.Conn(), m.GC)
	xproto.CloseFont(xu.Conn(), m.Font)
	xproto.DestroyWindow(xu.Conn(), m.Window)
	m.Window = 0
	m.GC = 0
	m.Font = 0
	m.created = false
}

func (m *Menu) ensureResources() error {
	if m.created {
		return nil
	}

	xu := m.conn.XUtil
	conn := xu.Conn()
	screen := xu.Screen()

	wid, err := xproto.NewWindowId(conn)
	if err != nil {
		return err
	}
	// Value list order follows the bit positions of the mask (low to high).
	err = xproto.CreateWindowChecked(
		conn,
		screen.RootDepth,
		wid,
		m.conn.Root,
		0, 0,
		1, 1,
		0,
		xproto.WindowClassInputOutput,
		screen.RootVisual,
		xproto.CwBackPixel|xproto.CwOverrideRedirect|xproto.CwEventMask,
		[]uint32{
			ColorMenuBg,
			1,
			xproto.EventMaskExposure | xproto.EventMaskButtonPress | xproto.EventMaskButtonRelease,
		},
	).Check()
	if err != nil {
		return fmt.Errorf("create menu window: %w", err)
	}

	font, err := xproto.NewFontId(conn)
	if err != nil {
		xproto.DestroyWindow(conn, wid)
		return err
	}
	opened := false
	for _, name := range []string{"fixed", "9x15", "8x13", "6x13"} {
		if xproto.OpenFontChecked(conn, font, uint16(len(name)), name).Check() == nil {
			opened = true
			break
		}
	}
	if !opened {
		xproto.DestroyWindow(conn, wid)
		return fmt.Errorf("no core font available for the menu")
	}

	gc, err := xproto.NewGcontextId(conn)
	if err != nil {
		xproto.CloseFont(conn, font)
		xproto.DestroyWindow(conn, wid)
		return err
	}
	err = xproto.CreateGCChecked(
		conn,
		gc,
		xproto.Drawable(wid),
		xproto.GcForeground|xproto.GcBackground|xproto.GcFont|xproto.GcGraphicsExposures,
		[]uint32{ColorMenuText, ColorMenuBg, uint32(font), 0},
	).Check()
	if err != nil {
		xproto.CloseFont(conn, font)
		xproto.DestroyWindow(conn, wid)
		return fmt.Errorf("create menu gc: %w", err)
	}

	m.Window = wid
	m.GC = gc
	m.Font = font
	m.created = true

	xevent.ExposeFun(func(_ *xgbutil.XUtil, ev xevent.ExposeEvent) {
		if ev.Count == 0 {
			m.draw()
		}
	}).Connect(xu, wid)

	// With owner_events false every pointer event goes to the grab window,
	// in its coordinates, so presses outside the menu land out of bounds.
	xevent.ButtonPressFun(func(_ *xgbutil.XUtil, ev xevent.ButtonPressEvent) {
		m.pressed(int(ev.EventX), int(ev.EventY))
	}).Connect(xu, wid)

	return nil
}

func (m *Menu) pressed(x, y int) {
	index := itemAt(x, y, m.width, len(m.labels))
	onSelect := m.onSelect
	m.Hide()
	m.onSelect = nil
	if index >= 0 && onSelect != nil {
		onSelect(index)
	}
}

func (m *Menu) draw() {
	if !m.mapped {
		return
	}
	conn := m.conn.XUtil.Conn()
	xproto.ClearArea(conn, false, m.Window, 0, 0, 0, 0)

	baseline := menuPaddingY + menuLineHeight - 5
	for i, label := range m.labels {
		if len(label) > 255 {
			label = label[:255]
		}
		xproto.ImageText8(
			conn,
			byte(len(label)),
			xproto.Drawable(m.Window),
			m.GC,
			int16(menuPaddingX),
			int16(baseline+i*menuLineHeight),
			label,
		)
	}
}

func menuDimensions(labels []string) (width, height int) {
	maxChars := 0
	for _, label := range labels {
		maxChars = max(maxChars, len(label))
	}
	width = max(menuMinWidth, maxChars*menuCharWidth+2*menuPaddingX)
	height = len(labels)*menuLineHeight + 2*menuPaddingY
	return width, height
}

// itemAt returns the index of the item under menu-local (x, y), or -1.
func itemAt(x, y, width, count int) int {
	if x < 0 || x >= width {
		return -1
	}
	y -= menuPaddingY
	if y < 0 || y >= count*menuLineHeight {
		return -1
	}
	return y / menuLineHeight
}

// clampMenuOrigin keeps a width x height menu opened at (x, y) on a screen of
// the given size.
func clampMenuOrigin(x, y, width, height, screenWidth, screenHeight int) (int, int) {
	if x+width > screenWidth {
		x = screenWidth - width
	}
	if y+height > screenHeight {
		y = screenHeight - height
	}
	return max(x, 0), max(y, 0)
}
