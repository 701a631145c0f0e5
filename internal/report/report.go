// Package report renders a document index as Markdown or HTML.
package report

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/dgallion1/emamei/internal/meidoc"
)

var md = goldmark.New(goldmark.WithExtensions(extension.Table))

// Markdown renders info as a Markdown summary with one table of meter changes
// and one of staff groups. Measures are shown 1-based with their @n label.
func Markdown(title string, info *meidoc.DocInfo) string {
	var sb strings.Builder
	if title == "" {
		title = "MEI document"
	}
	fmt.Fprintf(&sb, "# %s\n\n", cell(title))
	fmt.Fprintf(&sb, "%d measures.\n\n", info.MeasureCount)

	sb.WriteString("## Meter\n\n")
	sb.WriteString("| Measure | Label | Meter |\n|---:|---|---|\n")
	for _, idx := range keys(info.Beats) {
		m := info.Beats[idx]
		fmt.Fprintf(&sb, "| %d | %s | %d/%d |\n", idx+1, cell(label(info, idx)), m.Count, m.Unit)
	}

	sb.WriteString("\n## Staves\n\n")
	sb.WriteString("| Measure | Label | Staff | Name |\n|---:|---|---:|---|\n")
	for _, idx := range keys(info.Staves) {
		for i, name := range info.Staves[idx] {
			fmt.Fprintf(&sb, "| %d | %s | %d | %s |\n", idx+1, cell(label(info, idx)), i+1, cell(name))
		}
	}
	return sb.String()
}

// HTML renders the Markdown summary to an HTML fragment.
func HTML(title string, info *meidoc.DocInfo) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(Markdown(title, info)), &buf); err != nil {
		return "", fmt.Errorf("render report: %w", err)
	}
	return buf.String(), nil
}

func label(info *meidoc.DocInfo, idx int) string {
	if idx < len(info.MeasureLabels) {
		return info.MeasureLabels[idx]
	}
	return ""
}

// cell escapes text for a table cell or heading.
func cell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.Join(strings.Fields(s), " ")
}

func keys[V any](m map[int]V) []int {
	out := make([]int, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Ints(out)
	return out
}
