package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/dgallion1/emamei/internal/meidoc"
	"github.com/dgallion1/emamei/internal/pipeline"
	"github.com/dgallion1/emamei/internal/report"
)

func newInfoCmd(root *rootOptions) *cobra.Command {
	var markdown bool
	cmd := &cobra.Command{
		Use:   "info <file|url>",
		Short: "Show measures, meter changes and staves of a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := root.logger(cmd)
			data, err := root.load(cmd.Context(), cmd, args[0], log)
			if err != nil {
				return err
			}
			info, err := pipeline.Info(data)
			if err != nil {
				return err
			}
			if markdown {
				fmt.Fprint(cmd.OutOrStdout(), report.Markdown(filepath.Base(args[0]), info))
				return nil
			}
			renderTable(cmd, info)
			return nil
		},
	}
	cmd.Flags().BoolVar(&markdown, "markdown", false, "print a Markdown report instead of a table")
	return cmd
}

// renderTable prints one row per measure that changes meter or staves.
func renderTable(cmd *cobra.Command, info *meidoc.DocInfo) {
	table := tablewriter.NewWriter(cmd.OutOrStdout())
	table.SetHeader([]string{"Measure", "Label", "Meter", "Staves"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetAutoWrapText(false)
	table.SetColumnAlignment([]int{tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_LEFT, tablewriter.ALIGN_CENTER, tablewriter.ALIGN_LEFT})

	changes := make(map[int]bool)
	for idx := range info.Beats {
		changes[idx] = true
	}
	for idx := range info.Staves {
		changes[idx] = true
	}
	for idx := 0; idx < info.MeasureCount; idx++ {
		if !changes[idx] {
			continue
		}
		meter := ""
		if m, ok := info.Beats[idx]; ok {
			meter = fmt.Sprintf("%d/%d", m.Count, m.Unit)
		}
		staves := ""
		if s, ok := info.Staves[idx]; ok {
			staves = strings.Join(s, ", ")
		}
		label := ""
		if idx < len(info.MeasureLabels) {
			label = info.MeasureLabels[idx]
		}
		table.Append([]string{fmt.Sprintf("%d", idx+1), label, meter, staves})
	}
	table.SetFooter([]string{"", "", "Total", fmt.Sprintf("%d measures", info.MeasureCount)})
	table.Render()
}
