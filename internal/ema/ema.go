// Package ema parses EMA selection expressions of the form
//
//	{measures}/{staves}/{beats}[/{completeness}]
//
// into a selection the engine can consult, for example "1-2,10-15/all/@all"
// or "1-2/2,1-2/@1-1.5@3-3.5/highlight".
//
// Measures are positions in document order (not @n labels). Staves and beats
// are comma-separated groups: one group applies to every selected measure, as
// many groups as measure ranges map one group per range, otherwise groups map
// one per selected measure with the last one repeating. Within a group, "+"
// separates staff ranges, and the beat group carries one "+"-separated entry
// per staff range.
package ema

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/dgallion1/emamei/internal/meidoc"
	"github.com/dgallion1/emamei/internal/selection"
)

var (
	// ErrSyntax indicates an expression that cannot be parsed.
	ErrSyntax = errors.New("invalid EMA expression")

	// ErrOutOfRange indicates a measure outside the document.
	ErrOutOfRange = errors.New("selection out of range")
)

type staffRange struct {
	lo, hi int // hi == 0: no upper bound
	beats  []selection.SubRange
}

func (r staffRange) contains(staff int) bool {
	return staff >= r.lo && (r.hi == 0 || staff <= r.hi)
}

// Selection is a parsed expression bound to one document's measure count.
type Selection struct {
	measures     map[int][]staffRange
	order        []int
	completeness selection.Completeness
}

// HasMeasure reports whether the 1-based measure is selected.
func (s *Selection) HasMeasure(measure int) bool {
	_, ok := s.measures[measure]
	return ok
}

// Staff returns the beat ranges of a staff in a measure.
func (s *Selection) Staff(measure, staff int) ([]selection.SubRange, bool) {
	for _, r := range s.measures[measure] {
		if r.contains(staff) {
			return r.beats, true
		}
	}
	return nil, false
}

// Completeness returns the requested output mode.
func (s *Selection) Completeness() selection.Completeness {
	return s.completeness
}

// Measures returns the selected measures in expression order.
func (s *Selection) Measures() []int {
	return append([]int(nil), s.order...)
}

// Parse parses selectors against a document's info.
func Parse(info *meidoc.DocInfo, selectors string) (*Selection, error) {
	parts := strings.Split(strings.Trim(selectors, "/"), "/")
	if len(parts) < 3 || len(parts) > 4 {
		return nil, fmt.Errorf("%w: expected measures/staves/beats[/completeness], got %q", ErrSyntax, selectors)
	}

	completeness := selection.Extract
	if len(parts) == 4 {
		c, err := parseCompleteness(parts[3])
		if err != nil {
			return nil, err
		}
		completeness = c
	}

	ranges, err := parseMeasureRanges(parts[0], info.MeasureCount)
	if err != nil {
		return nil, err
	}
	staffGroups := strings.Split(parts[1], ",")
	beatGroups := strings.Split(parts[2], ",")

	sel := &Selection{
		measures:     make(map[int][]staffRange),
		completeness: completeness,
	}
	i := 0
	for r, mr := range ranges {
		for m := mr.lo; m <= mr.hi; m++ {
			staffGroup := pickGroup(staffGroups, len(ranges), r, i)
			beatGroup := pickGroup(beatGroups, len(ranges), r, i)
			i++
			if _, dup := sel.measures[m]; dup {
				continue
			}
			staves, err := parseStaffGroup(staffGroup, beatGroup, len(info.StavesAt(m)))
			if err != nil {
				return nil, fmt.Errorf("measure %d: %w", m, err)
			}
			sel.measures[m] = staves
			sel.order = append(sel.order, m)
		}
	}
	return sel, nil
}

// SplitFullExpression splits "/{encoded document URI}/{selectors}" into the
// decoded URI and the selectors.
func SplitFullExpression(expr string) (string, string, error) {
	expr = strings.TrimPrefix(expr, "/")
	encoded, selectors, ok := strings.Cut(expr, "/")
	if !ok || encoded == "" || selectors == "" {
		return "", "", fmt.Errorf("%w: expected /{uri}/{selectors}, got %q", ErrSyntax, expr)
	}
	uri, err := url.PathUnescape(encoded)
	if err != nil {
		return "", "", fmt.Errorf("%w: document uri: %w", ErrSyntax, err)
	}
	return uri, selectors, nil
}

func parseCompleteness(s string) (selection.Completeness, error) {
	switch s {
	case "highlight":
		return selection.Highlight, nil
	case "", "extract", "raw", "signature", "compact":
		return selection.Extract, nil
	default:
		return 0, fmt.Errorf("%w: unknown completeness %q", ErrSyntax, s)
	}
}

func pickGroup(groups []string, rangeCount, rangeIdx, measureIdx int) string {
	switch {
	case len(groups) == 1:
		return groups[0]
	case len(groups) == rangeCount:
		return groups[rangeIdx]
	default:
		return groups[min(measureIdx, len(groups)-1)]
	}
}

func parseStaffGroup(staffGroup, beatGroup string, staffCount int) ([]staffRange, error) {
	entries := strings.Split(staffGroup, "+")
	beatEntries := strings.Split(beatGroup, "+")
	out := make([]staffRange, 0, len(entries))
	for j, entry := range entries {
		lo, hi, err := parseStaffRange(entry, staffCount)
		if err != nil {
			return nil, err
		}
		beats, err := parseBeatRanges(beatEntries[min(j, len(beatEntries)-1)])
		if err != nil {
			return nil, err
		}
		out = append(out, staffRange{lo: lo, hi: hi, beats: beats})
	}
	return out, nil
}
