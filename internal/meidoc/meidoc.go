// Package meidoc wraps a parsed MEI document and extracts the measure, meter
// and staff-label index that selection expressions are resolved against.
package meidoc

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dgallion1/emamei/internal/meitree"
)

const ns = meitree.MEINamespace

// MeiDoc owns one document tree. It is not safe for concurrent use.
type MeiDoc struct {
	Doc *meitree.Document

	info *DocInfo
}

// New wraps an already parsed tree.
func New(doc *meitree.Document) *MeiDoc {
	return &MeiDoc{Doc: doc}
}

// Parse reads an MEI document.
func Parse(r io.Reader) (*MeiDoc, error) {
	doc, err := meitree.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse mei: %w", err)
	}
	return New(doc), nil
}

// Music returns the document's music element. The first music element in
// document order is used whatever its namespace, and it must be MEI.
func Music(doc *meitree.Document) (*meitree.Node, error) {
	music := doc.FindFirst("music")
	if music == nil {
		return nil, fmt.Errorf("%w: no <music> element", ErrStructure)
	}
	if music.Space != ns {
		return nil, fmt.Errorf("%w: <music> is in namespace %q, not MEI", ErrStructure, music.Space)
	}
	return music, nil
}

// DocumentInfo computes the document index. The first successful result is
// cached and returned by every later call; a failed call caches nothing.
func (m *MeiDoc) DocumentInfo() (*DocInfo, error) {
	if m.info != nil {
		return m.info, nil
	}

	music, err := Music(m.Doc)
	if err != nil {
		return nil, err
	}

	measures := music.DescendantsNamed(ns, "measure")
	positions := make(map[*meitree.Node]int, len(measures))
	labels := make([]string, len(measures))
	for i, measure := range measures {
		positions[measure] = i
		labels[i] = measure.Attr("n")
	}

	info := &DocInfo{
		MeasureCount:  len(measures),
		MeasureLabels: labels,
		Staves:        make(map[int][]string),
		Beats:         make(map[int]Meter),
	}

	for _, scoreDef := range music.DescendantsNamed(ns, "scoreDef") {
		measure := measureAfter(scoreDef)
		if measure == nil {
			return nil, fmt.Errorf("%w: measure not found after definition", ErrStructure)
		}
		idx := positions[measure]

		if scoreDef.FirstDescendant(ns, "staffGrp") != nil {
			staffDefs := scoreDef.DescendantsNamed(ns, "staffDef")
			staves := make([]string, 0, len(staffDefs))
			for _, staffDef := range staffDefs {
				staves = append(staves, staffLabel(staffDef))
			}
			info.Staves[idx] = staves
		}

		meter, err := definitionMeter(scoreDef)
		if err != nil {
			return nil, fmt.Errorf("measure %d: %w", idx+1, err)
		}
		info.Beats[idx] = meter
	}

	m.info = info
	return info, nil
}

// measureAfter finds the measure a definition applies to: its next sibling
// when that is a measure, else the first measure inside that sibling.
func measureAfter(def *meitree.Node) *meitree.Node {
	next := def.NextElementSibling()
	if next == nil {
		return nil
	}
	if next.Is(ns, "measure") {
		return next
	}
	return next.FirstDescendant(ns, "measure")
}

func staffLabel(staffDef *meitree.Node) string {
	if label := staffDef.Attr("label"); label != "" {
		return label
	}
	if el := staffDef.FirstDescendant(ns, "label"); el != nil {
		if label := strings.Join(strings.Fields(el.TextContent()), " "); label != "" {
			return label
		}
	}
	return staffDef.Attr("label.abbr")
}

func definitionMeter(scoreDef *meitree.Node) (Meter, error) {
	count, _ := ParseLeadingInt(scoreDef.Attr("meter.count"))
	unit, _ := ParseLeadingInt(scoreDef.Attr("meter.unit"))
	if count != 0 && unit != 0 {
		return Meter{Count: count, Unit: unit}, nil
	}

	sigs := scoreDef.DescendantsNamed(ns, "meterSig")
	if len(sigs) > 1 {
		return Meter{}, fmt.Errorf("%w: %d meter signatures in one definition", ErrMixedMeter, len(sigs))
	}
	if len(sigs) == 1 {
		count, _ = ParseLeadingInt(firstAttr(sigs[0], "count", "meter.count"))
		unit, _ = ParseLeadingInt(firstAttr(sigs[0], "unit", "meter.unit"))
		if count != 0 && unit != 0 {
			return Meter{Count: count, Unit: unit}, nil
		}
	}
	return Meter{}, ErrMeterUnresolved
}

// ParseLeadingInt parses the integer at the start of s, ignoring leading
// whitespace and anything after the digits ("3+2" gives 3).
func ParseLeadingInt(s string) (int, bool) {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0, false
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}

func firstAttr(n *meitree.Node, names ...string) string {
	for _, name := range names {
		if v := n.Attr(name); v != "" {
			return v
		}
	}
	return ""
}
