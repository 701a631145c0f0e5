package selection

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/dgallion1/emamei/internal/ident"
	"github.com/dgallion1/emamei/internal/meidoc"
	"github.com/dgallion1/emamei/internal/meitree"
)

const ns = meitree.MEINamespace

// placeholders are events that fill a whole measure without a @dur.
var placeholders = map[string]bool{
	"mRest":     true,
	"mSpace":    true,
	"mRpt":      true,
	"mRpt2":     true,
	"multiRest": true,
	"multiRpt":  true,
}

// referenceAttrs hold pointers to other elements as "#id" tokens.
var referenceAttrs = []string{"startid", "endid", "plist"}

// Engine applies one selection to one document. It is single-use and not
// safe for concurrent use: the first successful call to Selection mutates
// the tree, and every later call returns the same tree untouched.
type Engine struct {
	doc  *meitree.Document
	info *meidoc.DocInfo
	sel  Selection
	log  *slog.Logger

	ids       *ident.Generator
	processed bool
}

// NewEngine returns an engine for doc. info must describe doc.
func NewEngine(doc *meitree.Document, info *meidoc.DocInfo, sel Selection, log *slog.Logger) *Engine {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Engine{
		doc:  doc,
		info: info,
		sel:  sel,
		log:  log,
		ids:  ident.NewGenerator(nil, nil),
	}
}

// UseIDs sets the generator for xml:ids assigned to highlighted nodes.
func (e *Engine) UseIDs(g *ident.Generator) *Engine {
	e.ids = g
	return e
}

// Selection returns the document with the selection applied. All checks run
// before the tree is touched, so a failed call leaves it unmodified.
func (e *Engine) Selection() (*meitree.Document, error) {
	if e.processed {
		return e.doc, nil
	}

	music, err := meidoc.Music(e.doc)
	if err != nil {
		return nil, err
	}

	f, err := e.classify(music)
	if err != nil {
		return nil, err
	}
	e.log.Debug("selection classified",
		"completeness", e.sel.Completeness().String(),
		"remove", f.remove.len(),
		"space", f.space.len(),
		"highlight", f.highlight.len(),
		"recheck", f.recheck.len(),
	)

	if e.sel.Completeness() == Highlight {
		if err := e.applyHighlight(music, f); err != nil {
			return nil, err
		}
	} else {
		e.applyExtract(music, f)
	}

	e.processed = true
	return e.doc, nil
}

// fates are the deferred decisions collected by the classification walk.
type fates struct {
	remove    orderedSet
	space     orderedSet
	highlight orderedSet
	recheck   orderedSet
}

type walker struct {
	sel        Selection
	info       *meidoc.DocInfo
	highlight  bool
	references map[string][]*meitree.Node
	f          *fates

	measure  int
	inRange  bool
	meter    meidoc.Meter
	hasMeter bool
	beat     float64
}

// classify walks the unmodified tree once and records a fate for every node
// that needs one.
func (e *Engine) classify(music *meitree.Node) (*fates, error) {
	f := &fates{}
	w := &walker{
		sel:        e.sel,
		info:       e.info,
		highlight:  e.sel.Completeness() == Highlight,
		references: referenceIndex(music),
		f:          f,
		beat:       1.0,
	}
	containers := measureContainers(music)

	for _, el := range music.Descendants() {
		if el.Space != ns {
			continue
		}

		if el.Local == "measure" {
			w.enterMeasure()
		} else if w.inRange {
			if err := w.visit(el); err != nil {
				return nil, fmt.Errorf("measure %d: %w", w.measure, err)
			}
		}

		if containers[el] {
			f.recheck.add(el)
			continue
		}

		if !w.inRange && !retainedOutOfRange(el) {
			f.remove.add(el)
		}
	}
	return f, nil
}

func (w *walker) enterMeasure() {
	w.measure++
	w.inRange = w.sel.HasMeasure(w.measure)
	if w.inRange {
		w.meter, w.hasMeter = w.info.MeterAt(w.measure)
	}
}

func (w *walker) visit(el *meitree.Node) error {
	if el.Local == "staff" {
		n, ok := meidoc.ParseLeadingInt(el.Attr("n"))
		if !ok {
			return nil
		}
		if _, selected := w.sel.Staff(w.measure, n); !selected {
			w.f.remove.add(el)
		}
		return nil
	}

	decided := false
	if el.HasAttr("staff") && !isClef(el) {
		var err error
		decided, err = w.visitStaffReference(el)
		if err != nil {
			return err
		}
	}

	switch {
	case el.Local == "layer":
		w.beat = 1.0
	case IsTimed(el):
		return w.visitEvent(el, decided)
	case placeholders[el.Local]:
		if w.highlight {
			w.f.highlight.add(el)
		}
	}
	return nil
}

// visitStaffReference handles nodes carrying @staff. It reports whether the
// node was marked for removal.
func (w *walker) visitStaffReference(el *meitree.Node) (bool, error) {
	n, ok := meidoc.ParseLeadingInt(el.Attr("staff"))
	if !ok {
		return false, nil
	}
	ranges, selected := w.sel.Staff(w.measure, n)
	if !selected {
		w.f.remove.add(el)
		return true, nil
	}

	raw, ok := el.LookupAttr("tstamp")
	if !ok {
		return false, nil
	}
	tstamp, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return false, nil
	}
	if !w.hasMeter {
		return false, meidoc.ErrMeterUnresolved
	}
	tstamp = max(tstamp, 1)

	// Between keeps the node: control events are never replaced by spaces.
	switch ResolvePosition(ranges, w.meter.Count, tstamp) {
	case Outside:
		w.f.remove.add(el)
		return true, nil
	case Inside:
		if w.highlight {
			w.f.highlight.add(el)
		}
	}
	return false, nil
}

// visitEvent classifies a timed event at the current beat and advances the
// beat by its duration. The beat follows the original timeline whatever
// happens to the event.
func (w *walker) visitEvent(el *meitree.Node, decided bool) error {
	staff, ok := eventStaff(el)
	if !ok {
		return fmt.Errorf("%w: <%s %s>", ErrStaffUnresolved, el.Local, el.ID())
	}
	ranges, selected := w.sel.Staff(w.measure, staff)
	if !selected {
		return nil
	}
	if !w.hasMeter {
		return meidoc.ErrMeterUnresolved
	}

	if !decided {
		switch ResolvePosition(ranges, w.meter.Count, w.beat) {
		case Outside:
			w.f.remove.add(el)
			w.dropReferences(el)
		case Between:
			w.f.space.add(el)
			w.dropReferences(el)
		case Inside:
			if w.highlight {
				w.f.highlight.add(el)
			}
		}
	}

	dur, err := CalculateDuration(el, w.meter)
	if err != nil {
		return fmt.Errorf("<%s %s>: %w", el.Local, el.ID(), err)
	}
	w.beat += dur
	return nil
}

// dropReferences marks nodes pointing at el or at anything inside it, unless
// they contain el themselves or go with it.
func (w *walker) dropReferences(el *meitree.Node) {
	el.Walk(func(n *meitree.Node) bool {
		id := n.ID()
		if id == "" {
			return true
		}
		for _, ref := range w.references[id] {
			if ref.Contains(el) || el.Contains(ref) {
				continue
			}
			w.f.remove.add(ref)
		}
		return true
	})
}

func eventStaff(el *meitree.Node) (int, bool) {
	if staff := el.Closest(ns, "staff"); staff != nil {
		if n, ok := meidoc.ParseLeadingInt(staff.Attr("n")); ok {
			return n, true
		}
	}
	return meidoc.ParseLeadingInt(el.Attr("staff"))
}

// timeWrappers group timed events. A @dur on them restates the total and
// does not make them events of their own.
var timeWrappers = map[string]bool{
	"tuplet":   true,
	"beam":     true,
	"ligature": true,
	"bTrem":    true,
	"fTrem":    true,
	"graceGrp": true,
}

// IsTimed reports whether el occupies time in its layer. Grace notes, notes
// of a chord that carries the duration, wrappers, and content outside layers
// do not.
func IsTimed(el *meitree.Node) bool {
	if el.Space != ns || el.Attr("dur") == "" || el.Attr("grace") != "" || timeWrappers[el.Local] {
		return false
	}
	for p := el.Parent(); p != nil; p = p.Parent() {
		if p.Space != ns {
			continue
		}
		switch p.Local {
		case "graceGrp":
			return false
		case "chord":
			if p.Attr("dur") != "" {
				return false
			}
		case "layer":
			return true
		case "measure", "music":
			return false
		}
	}
	return false
}

func isClef(el *meitree.Node) bool {
	return el.Local == "clef" || el.Local == "clefGrp"
}

// retainedOutOfRange reports whether an out-of-range node survives pruning.
// Definitions stay so that later measures keep a governing meter and layout;
// content of measures goes with its measure.
func retainedOutOfRange(el *meitree.Node) bool {
	switch el.Local {
	case "clef", "clefGrp", "scoreDef", "staffDef":
		return true
	}
	for p := el.Parent(); p != nil; p = p.Parent() {
		if p.Is(ns, "measure") || p.Is(ns, "scoreDef") {
			return true
		}
	}
	return false
}

// measureContainers returns every node under music with a measure descendant.
func measureContainers(music *meitree.Node) map[*meitree.Node]bool {
	out := make(map[*meitree.Node]bool)
	for _, m := range music.DescendantsNamed(ns, "measure") {
		for p := m.Parent(); p != nil && p != music && !out[p]; p = p.Parent() {
			out[p] = true
		}
	}
	return out
}

// referenceIndex maps xml:ids to the nodes that point at them.
func referenceIndex(music *meitree.Node) map[string][]*meitree.Node {
	index := make(map[string][]*meitree.Node)
	for _, el := range music.Descendants() {
		for _, attr := range referenceAttrs {
			for _, tok := range strings.Fields(el.Attr(attr)) {
				if id, ok := strings.CutPrefix(tok, "#"); ok && id != "" {
					index[id] = append(index[id], el)
				}
			}
		}
	}
	return index
}
