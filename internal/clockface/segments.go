package clockface

// Segment identifies one bar of a seven-segment glyph:
//
//	  A
//	F   B
//	  G
//	E   C
//	  D
type Segment uint8

const (
	SegA Segment = 1 << iota
	SegB
	SegC
	SegD
	SegE
	SegF
	SegG
)

// AllSegments lists the segments in drawing order.
var AllSegments = []Segment{SegA, SegB, SegC, SegD, SegE, SegF, SegG}

// SegmentSet is a bit set of segments.
type SegmentSet uint8

// Has reports whether seg is in the set.
func (s SegmentSet) Has(seg Segment) bool {
	return s&SegmentSet(seg) != 0
}

// Len returns the number of segments in the set.
func (s SegmentSet) Len() int {
	n := 0
	for _, seg := range AllSegments {
		if s.Has(seg) {
			n++
		}
	}
	return n
}

func (s Segment) String() string {
	switch s {
	case SegA:
		return "A"
	case SegB:
		return "B"
	case SegC:
		return "C"
	case SegD:
		return "D"
	case SegE:
		return "E"
	case SegF:
		return "F"
	case SegG:
		return "G"
	default:
		return "?"
	}
}

func set(segs ...Segment) SegmentSet {
	var s SegmentSet
	for _, seg := range segs {
		s |= SegmentSet(seg)
	}
	return s
}

var digitSegments = [10]SegmentSet{
	0: set(SegA, SegB, SegC, SegD, SegE, SegF),
	1: set(SegB, SegC),
	2: set(SegA, SegB, SegD, SegE, SegG),
	3: set(SegA, SegB, SegC, SegD, SegG),
	4: set(SegB, SegC, SegF, SegG),
	5: set(SegA, SegC, SegD, SegF, SegG),
	6: set(SegA, SegC, SegD, SegE, SegF, SegG),
	7: set(SegA, SegB, SegC),
	8: set(SegA, SegB, SegC, SegD, SegE, SegF, SegG),
	9: set(SegA, SegB, SegC, SegD, SegF, SegG),
}

// SegmentsFor returns the lit segments for a decimal digit. Values outside
// 0-9 yield an empty set, which renders as a blank glyph.
func SegmentsFor(digit int) SegmentSet {
	if digit < 0 || digit > 9 {
		return 0
	}
	return digitSegments[digit]
}

// segmentThickness is the bar thickness in logical units.
const segmentThickness = 2

// segmentPolygon returns the outline of seg for a glyph cell at (x, y) with
// size w x h.
func segmentPolygon(seg Segment, x, y, w, h float64) []Point {
	t := float64(segmentThickness)
	mid := y + h/2
	switch seg {
	case SegA:
		return []Point{{x + 1, y}, {x + w - 1, y}, {x + w - 2, y + t}, {x + 2, y + t}}
	case SegB:
		return []Point{{x + w, y + 1}, {x + w, mid - 1}, {x + w - t, mid - 2}, {x + w - t, y + 2}}
	case SegC:
		return []Point{{x + w, mid + 1}, {x + w, y + h - 1}, {x + w - t, y + h - 2}, {x + w - t, mid + 2}}
	case SegD:
		return []Point{{x + 1, y + h}, {x + w - 1, y + h}, {x + w - 2, y + h - t}, {x + 2, y + h - t}}
	case SegE:
		return []Point{{x, mid + 1}, {x, y + h - 1}, {x + t, y + h - 2}, {x + t, mid + 2}}
	case SegF:
		return []Point{{x, y + 1}, {x, mid - 1}, {x + t, mid - 2}, {x + t, y + 2}}
	case SegG:
		// thinner than the other bars
		return []Point{{x + 2, mid}, {x + w - 2, mid}, {x + w - 3, mid + 1}, {x + 3, mid + 1}}
	default:
		return nil
	}
}
