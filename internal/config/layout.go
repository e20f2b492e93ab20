// Package config holds the widget's fixed layout, read from the bundled
// ui/clock.yaml descriptor, and the logging options taken from the
// environment.
package config

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Layout is the window description shipped with the widget.
type Layout struct {
	Title   string `yaml:"title"`
	Class   string `yaml:"class"`
	Width   int    `yaml:"width"`
	Height  int    `yaml:"height"`
	MinSide int    `yaml:"min_side"`
	// RefreshInterval is how often the face is repainted.
	RefreshInterval time.Duration `yaml:"refresh_interval"`
}

// DefaultLayout returns the built-in layout. Keys missing from the
// descriptor keep these values.
func DefaultLayout() Layout {
	return Layout{
		Title:           "Analog Clock",
		Class:           "clockwidget",
		Width:           400,
		Height:          400,
		MinSide:         100,
		RefreshInterval: time.Second,
	}
}

// Validate checks the layout for values the widget cannot work with.
func (l *Layout) Validate() error {
	if strings.TrimSpace(l.Title) == "" {
		return &ValidationError{Path: "title", Err: fmt.Errorf("title must not be empty")}
	}
	if strings.TrimSpace(l.Class) == "" {
		return &ValidationError{Path: "class", Err: fmt.Errorf("class must not be empty")}
	}
	if l.MinSide < 1 {
		return &ValidationError{Path: "min_side", Err: fmt.Errorf("min_side must be >= 1")}
	}
	if l.Width != l.Height {
		return &ValidationError{Path: "width", Err: fmt.Errorf("window must be square, got %dx%d", l.Width, l.Height)}
	}
	if l.Width < l.MinSide {
		return &ValidationError{Path: "width", Err: fmt.Errorf("width %d is below min_side %d", l.Width, l.MinSide)}
	}
	if l.RefreshInterval <= 0 {
		return &ValidationError{Path: "refresh_interval", Err: fmt.Errorf("refresh_interval must be positive")}
	}
	return nil
}

// ParseLayout decodes a layout descriptor over the defaults and validates it.
// Unknown keys are rejected.
func ParseLayout(data []byte) (Layout, error) {
	layout := DefaultLayout()
	if err := decodeStrictYAML(data, &layout); err != nil {
		return Layout{}, fmt.Errorf("failed to parse layout: %w", err)
	}

	if err := layout.Validate(); err != nil {
		return Layout{}, err
	}
	return layout, nil
}

// LoadLayout reads and parses the descriptor at path.
func LoadLayout(path string) (Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Layout{}, fmt.Errorf("failed to read layout: %w", err)
	}
	layout, err := ParseLayout(data)
	if err != nil {
		return Layout{}, fmt.Errorf("%s: %w", path, err)
	}
	return layout, nil
}

func decodeStrictYAML(data []byte, out any) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil {
		if err == io.EOF {
			return nil
		}
		return err
	}
	return nil
}
