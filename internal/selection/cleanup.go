package selection

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dgallion1/emamei/internal/meidoc"
	"github.com/dgallion1/emamei/internal/meitree"
)

// emptyWrappers are grouping and editorial elements that are dropped once
// pruning leaves them without content. Readings (app, lem, rdg, orig, reg,
// restore) are absent on purpose: they may be empty in a valid edition.
var emptyWrappers = map[string]bool{
	"beam":     true,
	"chord":    true,
	"tuplet":   true,
	"ligature": true,
	"graceGrp": true,
	"bTrem":    true,
	"fTrem":    true,
	"add":      true,
	"del":      true,
	"corr":     true,
	"damage":   true,
	"expan":    true,
	"abbr":     true,
	"supplied": true,
	"unclear":  true,
}

// orderedSet keeps nodes in first-insertion order without duplicates.
type orderedSet struct {
	items []*meitree.Node
	seen  map[*meitree.Node]bool
}

func (s *orderedSet) add(n *meitree.Node) {
	if s.seen == nil {
		s.seen = make(map[*meitree.Node]bool)
	}
	if s.seen[n] {
		return
	}
	s.seen[n] = true
	s.items = append(s.items, n)
}

func (s *orderedSet) len() int {
	return len(s.items)
}

// applyExtract mutates the tree: removals, space substitution, container
// recheck, then one pass over the reduced tree for orphaned definitions and
// emptied wrappers.
func (e *Engine) applyExtract(music *meitree.Node, f *fates) {
	for _, n := range f.remove.items {
		n.Detach()
	}

	for _, n := range f.space.items {
		parent := n.Parent()
		if parent == nil {
			continue
		}
		space := meitree.NewElement(n.Prefix, ns, "space")
		space.SetAttr("dur", n.Attr("dur"))
		if dots := DotCount(n); dots > 0 {
			space.SetAttr("dots", strconv.Itoa(dots))
		}
		space.Tail, n.Tail = n.Tail, ""
		parent.InsertBefore(space, n)
		n.Detach()
	}

	for _, n := range f.recheck.items {
		if n.FirstDescendant(ns, "measure") == nil {
			n.Detach()
		}
	}

	purged, wrappers := tidy(music)
	e.log.Debug("selection extracted", "orphan_definitions", purged, "empty_wrappers", wrappers)
}

// tidy makes one pass over the reduced tree. Going down, it drops every
// scoreDef that follows another scoreDef with no measure in between (the
// document start counts as a measure). Coming back up, it drops wrappers
// left empty, so a tuplet holding only an emptied beam goes too.
func tidy(music *meitree.Node) (purged, wrappers int) {
	hasMeasures := true
	var visit func(n *meitree.Node)
	visit = func(n *meitree.Node) {
		if n != music && n.Space == ns {
			switch n.Local {
			case "scoreDef":
				if !hasMeasures {
					if n.Detach() {
						purged++
					}
					return
				}
				hasMeasures = false
			case "measure":
				hasMeasures = true
			}
		}
		for _, c := range append([]*meitree.Node(nil), n.Children()...) {
			visit(c)
		}
		if n.Space == ns && emptyWrappers[n.Local] && len(n.Children()) == 0 && strings.TrimSpace(n.Text) == "" {
			if n.Detach() {
				wrappers++
			}
		}
	}
	visit(music)
	return purged, wrappers
}

// applyHighlight appends one annotation listing the selected nodes, giving
// an xml:id to those without one.
func (e *Engine) applyHighlight(music *meitree.Node, f *fates) error {
	score := music.FirstDescendant(ns, "score")
	if score == nil {
		return fmt.Errorf("%w: no <score> to annotate", meidoc.ErrStructure)
	}

	refs := make([]string, 0, f.highlight.len())
	for _, n := range f.highlight.items {
		id := n.ID()
		if id == "" {
			id = e.ids.XMLID("ema")
			n.SetID(id)
		}
		refs = append(refs, "#"+id)
	}

	annot := meitree.NewElement(score.Prefix, ns, "annot")
	annot.SetAttr("type", "ema_highlight")
	annot.SetAttr("plist", strings.Join(refs, " "))
	score.AppendChild(annot)
	return nil
}
