// Package meitest builds small MEI documents for tests.
package meitest

import (
	"fmt"
	"strings"
	"testing"

	"github.com/dgallion1/emamei/internal/meidoc"
	"github.com/dgallion1/emamei/internal/meitree"
)

// Wrap places score content (definitions, sections, measures) inside a
// minimal MEI document.
func Wrap(score string) string {
	return `<?xml version="1.0" encoding="UTF-8"?>
<mei xmlns="http://www.music-encoding.org/ns/mei" meiversion="4.0.1">
<meiHead><fileDesc><titleStmt><title>Fixture</title></titleStmt></fileDesc></meiHead>
<music><body><mdiv><score>
` + score + `
</score></mdiv></body></music>
</mei>`
}

// ScoreDef returns a scoreDef with a meter and staves labeled "Staff n".
func ScoreDef(staves, count, unit int) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, `<scoreDef meter.count="%d" meter.unit="%d"><staffGrp>`, count, unit)
	for s := 1; s <= staves; s++ {
		fmt.Fprintf(&sb, `<staffDef n="%d" lines="5" label="Staff %d"/>`, s, s)
	}
	sb.WriteString(`</staffGrp></scoreDef>`)
	return sb.String()
}

// Measure returns measure m with count quarter-length notes of the given unit
// per staff. Notes are identified as m{m}s{s}n{i}. Staff 1 carries a slur over
// its first two notes and staff 2 a trill at beat 1.
func Measure(m, staves, count, unit int) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, `<measure n="%d" xml:id="m%d">`, m, m)
	for s := 1; s <= staves; s++ {
		fmt.Fprintf(&sb, `<staff n="%d"><layer n="1">`, s)
		for i := 1; i <= count; i++ {
			fmt.Fprintf(&sb, `<note xml:id="m%ds%dn%d" pname="c" oct="4" dur="%d"/>`, m, s, i, unit)
		}
		sb.WriteString(`</layer></staff>`)
	}
	if count >= 2 {
		fmt.Fprintf(&sb, `<slur xml:id="m%dslur" staff="1" startid="#m%ds1n1" endid="#m%ds1n2"/>`, m, m, m)
	}
	if staves >= 2 {
		fmt.Fprintf(&sb, `<trill xml:id="m%dtrill" staff="2" tstamp="1"/>`, m)
	}
	sb.WriteString(`</measure>`)
	return sb.String()
}

// Generated returns a document of measures measures in one section under a
// single definition.
func Generated(measures, staves, count, unit int) string {
	var sb strings.Builder
	sb.WriteString(ScoreDef(staves, count, unit))
	sb.WriteString(`<section>`)
	for m := 1; m <= measures; m++ {
		sb.WriteString(Measure(m, staves, count, unit))
	}
	sb.WriteString(`</section>`)
	return Wrap(sb.String())
}

// Parse parses src or fails the test.
func Parse(t testing.TB, src string) *meidoc.MeiDoc {
	t.Helper()
	doc, err := meidoc.Parse(strings.NewReader(src))
	if err != nil {
		t.Fatalf("parse fixture: %v", err)
	}
	return doc
}

// Count returns the number of MEI elements named local in doc.
func Count(doc *meitree.Document, local string) int {
	n := 0
	doc.Root.Walk(func(el *meitree.Node) bool {
		if el.Is(meitree.MEINamespace, local) {
			n++
		}
		return true
	})
	return n
}

// IDs returns the xml:ids of MEI elements named local in document order.
func IDs(doc *meitree.Document, local string) []string {
	var ids []string
	doc.Root.Walk(func(el *meitree.Node) bool {
		if el.Is(meitree.MEINamespace, local) {
			ids = append(ids, el.ID())
		}
		return true
	})
	return ids
}
