package widget

import "github.com/1broseidon/clockwidget/internal/platform"

// Mode is the pointer interaction mode.
type Mode int

const (
	// ModeIdle means no gesture is tracked by the widget.
	ModeIdle Mode = iota
	// ModeResizing means the grip is held and pointer moves resize the window.
	ModeResizing
)

// String returns the string representation of the mode
func (m Mode) String() string {
	switch m {
	case ModeIdle:
		return "idle"
	case ModeResizing:
		return "resizing"
	default:
		return "unknown"
	}
}

// State holds the drag state. The anchor is only meaningful while resizing.
type State struct {
	Mode   Mode
	anchor platform.Point
}

// NewState creates an idle state.
func NewState() *State {
	return &State{Mode: ModeIdle}
}

// BeginResize enters resizing with the given root pointer position as anchor.
func (s *State) BeginResize(anchor platform.Point) {
	s.Mode = ModeResizing
	s.anchor = anchor
}

// Anchor returns the drag anchor, or false when not resizing.
func (s *State) Anchor() (platform.Point, bool) {
	if s.Mode != ModeResizing {
		return platform.Point{}, false
	}
	return s.anchor, true
}

// MoveAnchor replaces the anchor while resizing.
func (s *State) MoveAnchor(p platform.Point) {
	if s.Mode == ModeResizing {
		s.anchor = p
	}
}

// Reset returns to idle and discards the anchor.
func (s *State) Reset() {
	s.Mode = ModeIdle
	s.anchor = platform.Point{}
}
