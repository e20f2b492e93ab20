package x11

import (
	"context"
	"fmt"
	"time"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/shape"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/xevent"
	"github.com/rs/zerolog"
)

// quitGrace bounds how long Loop waits for the event goroutine to stop after
// the context is cancelled.
const quitGrace = 2 * time.Second

// Connection manages the X11 connection and core X resources
type Connection struct {
	XUtil *xgbutil.XUtil
	Root  xproto.Window

	log      zerolog.Logger
	hasShape bool
}

// NewConnection establishes a connection to the X11 server and initializes required extensions
func NewConnection(log zerolog.Logger) (*Connection, error) {
	xu, err := xgbutil.NewConn()
	if err != nil {
		return nil, err
	}

	c := &Connection{
		XUtil: xu,
		Root:  xu.RootWin(),
		log:   log,
	}

	if err := shape.Init(xu.Conn()); err != nil {
		log.Warn().Err(err).Msg("shape extension unavailable, window will stay square")
	} else {
		c.hasShape = true
	}

	// Request errors are reported asynchronously; log and carry on.
	xevent.ErrorHandlerSet(xu, func(err xgb.Error) {
		c.log.Warn().Str("error", err.Error()).Msg("x request failed")
	})

	return c, nil
}

// HasShape reports whether the SHAPE extension is available.
func (c *Connection) HasShape() bool {
	return c.hasShape
}

// Loop runs the X event loop and calls tick every interval. Event callbacks
// run on the event goroutine while this goroutine is parked between the
// before/after pings, so callbacks and tick never overlap.
//
// When ctx is done, cancel is called once. It is expected to destroy the
// client's windows so the blocked event reader wakes up and observes Quit.
// Loop returns nil after the event loop stops.
func (c *Connection) Loop(ctx context.Context, interval time.Duration, tick func(), cancel func()) error {
	if interval <= 0 {
		return fmt.Errorf("invalid refresh interval %s", interval)
	}

	pingBefore, pingAfter, pingQuit := xevent.MainPing(c.XUtil)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	done := ctx.Done()
	var grace <-chan time.Time

	for {
		select {
		case <-pingBefore:
			<-pingAfter
		case <-ticker.C:
			if !xevent.Quitting(c.XUtil) {
				tick()
			}
		case <-pingQuit:
			return nil
		case <-done:
			done = nil
			c.log.Debug().Msg("shutdown requested")
			if cancel != nil {
				cancel()
			}
			xevent.Quit(c.XUtil)
			c.XUtil.Sync()
			grace = time.After(quitGrace)
		case <-grace:
			return fmt.Errorf("event loop did not stop: %w", ctx.Err())
		}
	}
}

// Quit asks the event loop to stop after the current event.
func (c *Connection) Quit() {
	xevent.Quit(c.XUtil)
}

// Close cleanly disconnects from the X11 server
func (c *Connection) Close() {
	c.XUtil.Conn().Close()
}
