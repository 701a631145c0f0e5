package selection

import "math"

// Position classifies a beat against an ordered list of ranges.
type Position int

const (
	// Inside means the beat falls within one of the ranges.
	Inside Position = iota + 1
	// Outside means the beat lies past the end of the last range.
	Outside
	// Between means the beat lies in a gap before a later range.
	Between
)

func (p Position) String() string {
	switch p {
	case Inside:
		return "inside"
	case Outside:
		return "outside"
	case Between:
		return "between"
	default:
		return "unknown"
	}
}

// ResolvePosition classifies position against ranges. Bounds are inclusive
// and both sides are rounded to four decimals so tuplet arithmetic does not
// push an onset over a boundary.
func ResolvePosition(ranges []SubRange, beatCount int, position float64) Position {
	if len(ranges) == 0 {
		return Outside
	}
	pos := round4(position)
	var lastEnd float64
	for _, r := range ranges {
		start, end := r.Resolve(beatCount)
		start, end = round4(start), round4(end)
		if pos >= start && pos <= end {
			return Inside
		}
		lastEnd = end
	}
	if pos > lastEnd {
		return Outside
	}
	return Between
}

func round4(v float64) float64 {
	return math.Round(v*1e4) / 1e4
}
