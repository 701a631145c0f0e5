package report

import (
	"strings"
	"testing"

	"github.com/dgallion1/emamei/internal/meidoc"
)

func sampleInfo() *meidoc.DocInfo {
	return &meidoc.DocInfo{
		MeasureCount:  3,
		MeasureLabels: []string{"1", "2", "3a"},
		Staves:        map[int][]string{0: {"Violin", "Cello | Bass"}},
		Beats:         map[int]meidoc.Meter{0: {Count: 4, Unit: 4}, 2: {Count: 6, Unit: 8}},
	}
}

func TestMarkdown_Tables(t *testing.T) {
	out := Markdown("Quartet", sampleInfo())

	for _, want := range []string{
		"# Quartet",
		"3 measures.",
		"| 1 | 1 | 4/4 |",
		"| 3 | 3a | 6/8 |",
		"| 1 | 1 | 2 | Cello \\| Bass |",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected markdown to contain %q, got:\n%s", want, out)
		}
	}
}

func TestHTML_RendersTables(t *testing.T) {
	out, err := HTML("", sampleInfo())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "<h1>MEI document</h1>") {
		t.Errorf("expected default title heading, got:\n%s", out)
	}
	if strings.Count(out, "<table>") != 2 {
		t.Errorf("expected 2 tables, got:\n%s", out)
	}
	if !strings.Contains(out, "<td>6/8</td>") {
		t.Errorf("expected meter cell, got:\n%s", out)
	}
}
