package main

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"os/signal"
	"syscall"

	"github.com/1broseidon/clockwidget/internal/config"
	"github.com/1broseidon/clockwidget/internal/logging"
	"github.com/1broseidon/clockwidget/internal/platform"
	"github.com/1broseidon/clockwidget/internal/resources"
	"github.com/1broseidon/clockwidget/internal/widget"
)

func main() {
	os.Exit(run())
}

func run() int {
	logger, closer := logging.New(config.LoggingFromEnv())
	defer closer.Close()
	log := logging.Component(logger, "main")

	res := resources.Default()
	layout, icon, err := loadBundle(res)
	if err != nil {
		log.Error().Err(err).Strs("roots", res.Roots()).Msg("failed to load bundled resources")
		return 1
	}

	backend, err := platform.NewLinuxBackendFromDisplay(logger)
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize display")
		return 1
	}
	defer backend.Disconnect()

	bounds := platform.Rect{Width: layout.Width, Height: layout.Height}
	if display, err := backend.ActiveDisplay(); err != nil {
		log.Warn().Err(err).Msg("active display unknown, placing at origin")
	} else {
		bounds = display.Bounds.Centered(layout.Width, layout.Height)
	}

	win, err := backend.NewWindow(platform.WindowOptions{
		Title:   layout.Title,
		Class:   layout.Class,
		Bounds:  bounds,
		MinSide: layout.MinSide,
		Icon:    icon,
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to create window")
		return 1
	}

	clock := widget.New(win,
		widget.WithLogger(logging.Component(logger, "widget")),
		widget.WithMinSide(layout.MinSide),
	)
	if err := clock.Show(); err != nil {
		log.Error().Err(err).Msg("failed to show window")
		return 1
	}
	log.Info().
		Int("x", bounds.X).
		Int("y", bounds.Y).
		Int("side", layout.Width).
		Msg("clock started")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := backend.Run(ctx, layout.RefreshInterval, clock.Tick); err != nil {
		log.Error().Err(err).Msg("event loop failed")
		return 1
	}
	log.Info().Msg("exiting")
	return 0
}

// loadBundle reads the layout descriptor and the window icon. Both are
// required.
func loadBundle(res *resources.Resolver) (config.Layout, image.Image, error) {
	path, err := res.Path(resources.LayoutFile)
	if err != nil {
		return config.Layout{}, nil, err
	}
	layout, err := config.LoadLayout(path)
	if err != nil {
		return config.Layout{}, nil, err
	}

	f, err := res.Open(resources.IconFile)
	if err != nil {
		return config.Layout{}, nil, err
	}
	defer f.Close()

	icon, err := png.Decode(f)
	if err != nil {
		return config.Layout{}, nil, fmt.Errorf("decode %s: %w", f.Name(), err)
	}
	return layout, icon, nil
}
