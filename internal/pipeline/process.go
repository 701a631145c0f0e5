package pipeline

import (
	"bytes"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dgallion1/emamei/internal/ema"
	"github.com/dgallion1/emamei/internal/meidoc"
	"github.com/dgallion1/emamei/internal/meitree"
	"github.com/dgallion1/emamei/internal/selection"
)

// Counts summarizes a selected document.
type Counts struct {
	Measures    int `json:"measures"`
	Staves      int `json:"staves"`
	Events      int `json:"events"`
	Spaces      int `json:"spaces"`
	Highlighted int `json:"highlighted"`
}

// Result is the outcome of one selection.
type Result struct {
	Document     []byte
	Info         *meidoc.DocInfo
	Completeness selection.Completeness
	Counts       Counts
}

// Select parses data as MEI, applies selectors and serializes the result.
// Every call works on its own tree.
func Select(data []byte, selectors string, log *slog.Logger) (*Result, error) {
	doc, err := meidoc.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	info, err := doc.DocumentInfo()
	if err != nil {
		return nil, fmt.Errorf("document info: %w", err)
	}
	sel, err := ema.Parse(info, selectors)
	if err != nil {
		return nil, err
	}
	out, err := selection.NewEngine(doc.Doc, info, sel, log).Selection()
	if err != nil {
		return nil, fmt.Errorf("select %s: %w", selectors, err)
	}
	b, err := out.Bytes()
	if err != nil {
		return nil, fmt.Errorf("serialize: %w", err)
	}
	return &Result{
		Document:     b,
		Info:         info,
		Completeness: sel.Completeness(),
		Counts:       count(out),
	}, nil
}

// Info parses data as MEI and returns its index.
func Info(data []byte) (*meidoc.DocInfo, error) {
	doc, err := meidoc.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return doc.DocumentInfo()
}

func count(doc *meitree.Document) Counts {
	var c Counts
	music, err := meidoc.Music(doc)
	if err != nil {
		return c
	}
	music.Walk(func(n *meitree.Node) bool {
		if n.Space != meitree.MEINamespace {
			return true
		}
		switch n.Local {
		case "measure":
			c.Measures++
		case "staff":
			c.Staves++
		case "space":
			c.Spaces++
		case "annot":
			if n.Attr("type") == "ema_highlight" {
				c.Highlighted += len(strings.Fields(n.Attr("plist")))
			}
		}
		if n.Local != "space" && selection.IsTimed(n) {
			c.Events++
		}
		return true
	})
	return c
}
