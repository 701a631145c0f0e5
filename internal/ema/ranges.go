package ema

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dgallion1/emamei/internal/selection"
)

// BoundKind distinguishes numeric beat bounds from the start and end tokens.
type BoundKind int

const (
	BoundValue BoundKind = iota
	BoundStart
	BoundEnd
	// BoundLast is the last beat itself, the start of a lone "@end".
	BoundLast
)

// Bound is one side of a beat range.
type Bound struct {
	Kind  BoundKind
	Value float64
}

// resolve turns the bound into a beat. "start" is beat 1; "end" is just past
// the last beat so that off-beat onsets in the final beat stay inside.
func (b Bound) resolve(beatCount int) float64 {
	switch b.Kind {
	case BoundStart:
		return 1
	case BoundEnd:
		return float64(beatCount) + 1
	case BoundLast:
		return float64(beatCount)
	default:
		return b.Value
	}
}

func (b Bound) String() string {
	switch b.Kind {
	case BoundStart:
		return "start"
	case BoundEnd, BoundLast:
		return "end"
	default:
		return strconv.FormatFloat(b.Value, 'f', -1, 64)
	}
}

// BeatRange is an inclusive beat interval within a measure.
type BeatRange struct {
	Start, End Bound
}

// Resolve implements selection.SubRange.
func (r BeatRange) Resolve(beatCount int) (float64, float64) {
	return r.Start.resolve(beatCount), r.End.resolve(beatCount)
}

func (r BeatRange) String() string {
	if r.Start.Kind == BoundLast {
		return "@end"
	}
	return "@" + r.Start.String() + "-" + r.End.String()
}

type measureRange struct {
	lo, hi int
}

func parseMeasureRanges(s string, count int) ([]measureRange, error) {
	if s == "all" {
		if count == 0 {
			return nil, nil
		}
		return []measureRange{{1, count}}, nil
	}
	var out []measureRange
	for _, item := range strings.Split(s, ",") {
		lo, hi, err := parseIntRange(item, count)
		if err != nil {
			return nil, fmt.Errorf("measures: %w", err)
		}
		if lo < 1 || hi < lo || hi > count {
			return nil, fmt.Errorf("%w: measures %q in a document of %d", ErrOutOfRange, item, count)
		}
		out = append(out, measureRange{lo, hi})
	}
	return out, nil
}

// parseStaffRange returns hi == 0 for an open range, which happens for "all"
// and for "end" when the staff count is unknown. A literal 0 is rejected.
func parseStaffRange(s string, count int) (int, int, error) {
	if s == "all" {
		return 1, 0, nil
	}
	lo, hi, err := parseIntRange(s, count)
	if err != nil {
		return 0, 0, fmt.Errorf("staves: %w", err)
	}
	_, hiStr, isRange := strings.Cut(s, "-")
	if lo < 1 || (hi == 0 && (!isRange || hiStr != "end")) {
		return 0, 0, fmt.Errorf("%w: staves %q", ErrSyntax, s)
	}
	return lo, hi, nil
}

// parseIntRange parses "n", "a-b", "start" and "end". "end" resolves to
// count.
func parseIntRange(s string, count int) (int, int, error) {
	loStr, hiStr, isRange := strings.Cut(s, "-")
	lo, err := parseIntToken(loStr, count)
	if err != nil {
		return 0, 0, err
	}
	if !isRange {
		return lo, lo, nil
	}
	hi, err := parseIntToken(hiStr, count)
	if err != nil {
		return 0, 0, err
	}
	if hi != 0 && lo > hi {
		return 0, 0, fmt.Errorf("%w: descending range %q", ErrSyntax, s)
	}
	return lo, hi, nil
}

func parseIntToken(s string, count int) (int, error) {
	switch s {
	case "start":
		return 1, nil
	case "end":
		return count, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: %q is not a position", ErrSyntax, s)
	}
	return n, nil
}

// parseBeatRanges parses a beat entry such as "@1-2@3.5-end" or "@all".
func parseBeatRanges(s string) ([]selection.SubRange, error) {
	rest, ok := strings.CutPrefix(s, "@")
	if !ok {
		return nil, fmt.Errorf("%w: beats %q must start with @", ErrSyntax, s)
	}
	var out []selection.SubRange
	for _, item := range strings.Split(rest, "@") {
		r, err := parseBeatRange(item)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

func parseBeatRange(s string) (BeatRange, error) {
	if s == "all" {
		return BeatRange{Start: Bound{Kind: BoundStart}, End: Bound{Kind: BoundEnd}}, nil
	}
	startStr, endStr, isRange := strings.Cut(s, "-")
	start, err := parseBound(startStr)
	if err != nil {
		return BeatRange{}, err
	}
	if !isRange {
		if start.Kind == BoundEnd {
			// A lone "end" is the whole last beat.
			return BeatRange{Start: Bound{Kind: BoundLast}, End: start}, nil
		}
		return BeatRange{Start: start, End: start}, nil
	}
	end, err := parseBound(endStr)
	if err != nil {
		return BeatRange{}, err
	}
	if start.Kind == BoundValue && end.Kind == BoundValue && start.Value > end.Value {
		return BeatRange{}, fmt.Errorf("%w: descending beat range %q", ErrSyntax, s)
	}
	return BeatRange{Start: start, End: end}, nil
}

func parseBound(s string) (Bound, error) {
	switch s {
	case "start":
		return Bound{Kind: BoundStart}, nil
	case "end":
		return Bound{Kind: BoundEnd}, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 {
		return Bound{}, fmt.Errorf("%w: %q is not a beat", ErrSyntax, s)
	}
	return Bound{Value: v}, nil
}
