package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
)

// Monitor is a screen area driven by one RandR CRTC.
type Monitor struct {
	ID     int
	Name   string
	X      int
	Y      int
	Width  int
	Height int
}

func (m Monitor) contains(x, y int) bool {
	return x >= m.X && x < m.X+m.Width && y >= m.Y && y < m.Y+m.Height
}

// GetMonitors lists the areas scanned out by connected RandR outputs. The
// primary output comes first and mirrored outputs are reported once.
func (c *Connection) GetMonitors() ([]Monitor, error) {
	conn := c.XUtil.Conn()
	if err := randr.Init(conn); err != nil {
		return nil, fmt.Errorf("randr init failed: %w", err)
	}

	res, err := randr.GetScreenResourcesCurrent(conn, c.Root).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to get screen resources: %w", err)
	}

	areas := make([]outputArea, 0, len(res.Outputs))
	for _, output := range res.Outputs {
		info, err := randr.GetOutputInfo(conn, output, res.ConfigTimestamp).Reply()
		if err != nil {
			c.log.Debug().Err(err).Uint32("output", uint32(output)).Msg("output info unavailable")
			continue
		}
		if info.Connection != randr.ConnectionConnected || info.Crtc == 0 {
			continue
		}
		crtc, err := randr.GetCrtcInfo(conn, info.Crtc, res.ConfigTimestamp).Reply()
		if err != nil {
			continue
		}
		areas = append(areas, outputArea{
			output: output,
			crtc:   info.Crtc,
			name:   string(info.Name),
			x:      int(crtc.X),
			y:      int(crtc.Y),
			width:  int(crtc.Width),
			height: int(crtc.Height),
		})
	}

	var primary randr.Output
	if reply, err := randr.GetOutputPrimary(conn, c.Root).Reply(); err == nil {
		primary = reply.Output
	}
	return monitorsFromOutputs(areas, primary), nil
}

// outputArea is a connected output and the CRTC area it shows.
type outputArea struct {
	output        randr.Output
	crtc          randr.Crtc
	name          string
	x, y          int
	width, height int
}

// monitorsFromOutputs drops empty areas, collapses outputs sharing a CRTC
// into the first one seen and moves primary to the front. IDs follow the
// resulting order.
func monitorsFromOutputs(areas []outputArea, primary randr.Output) []Monitor {
	ordered := make([]outputArea, 0, len(areas))
	for _, a := range areas {
		if primary != 0 && a.output == primary {
			ordered = append(ordered, a)
		}
	}
	for _, a := range areas {
		if primary == 0 || a.output != primary {
			ordered = append(ordered, a)
		}
	}

	seen := make(map[randr.Crtc]bool, len(ordered))
	var monitors []Monitor
	for _, a := range ordered {
		if a.width <= 0 || a.height <= 0 || seen[a.crtc] {
			continue
		}
		seen[a.crtc] = true
		monitors = append(monitors, Monitor{
			ID:     len(monitors),
			Name:   a.name,
			X:      a.x,
			Y:      a.y,
			Width:  a.width,
			Height: a.height,
		})
	}
	return monitors
}

// PointerMonitor returns the monitor under the mouse pointer. Without RandR
// the whole screen is reported as a single monitor.
func (c *Connection) PointerMonitor() (Monitor, error) {
	screen := c.XUtil.Screen()
	whole := Monitor{
		Name:   "screen",
		Width:  int(screen.WidthInPixels),
		Height: int(screen.HeightInPixels),
	}

	monitors, err := c.GetMonitors()
	if err != nil {
		c.log.Debug().Err(err).Msg("monitor query failed, using the whole screen")
		return whole, nil
	}
	if len(monitors) == 0 {
		return whole, nil
	}

	pointer, err := xproto.QueryPointer(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return monitors[0], nil
	}
	return monitorAt(monitors, int(pointer.RootX), int(pointer.RootY)), nil
}

// monitorAt returns the monitor containing (x, y), or the first monitor.
func monitorAt(monitors []Monitor, x, y int) Monitor {
	for _, m := range monitors {
		if m.contains(x, y) {
			return m
		}
	}
	return monitors[0]
}
