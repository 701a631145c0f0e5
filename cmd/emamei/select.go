package main

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/dgallion1/emamei/internal/pipeline"
)

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

func newSelectCmd(root *rootOptions) *cobra.Command {
	var output string
	var parallel int
	cmd := &cobra.Command{
		Use:   "select <file|url> <selectors>...",
		Short: "Apply one or more EMA selectors to a document",
		Long: `Apply EMA selectors to a document. With one selector the result goes to
stdout or to the -o file. With several, -o names a directory and each result
is written there under a name derived from its selector.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := root.logger(cmd)
			data, err := root.load(cmd.Context(), cmd, args[0], log)
			if err != nil {
				return err
			}
			selectors := args[1:]
			if len(selectors) > 1 && output == "" {
				return fmt.Errorf("several selectors need -o <directory>")
			}

			results := make([]*pipeline.Result, len(selectors))
			g := new(errgroup.Group)
			g.SetLimit(max(parallel, 1))
			for i, sel := range selectors {
				g.Go(func() error {
					res, err := pipeline.Select(data, sel, log.With("selectors", sel))
					if err != nil {
						return fmt.Errorf("%s: %w", sel, err)
					}
					results[i] = res
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}

			if len(selectors) == 1 {
				if output == "" {
					_, err := cmd.OutOrStdout().Write(results[0].Document)
					return err
				}
				return os.WriteFile(output, results[0].Document, 0o644)
			}

			if err := os.MkdirAll(output, 0o755); err != nil {
				return err
			}
			for i, res := range results {
				path := filepath.Join(output, outputName(i, selectors[i]))
				if err := os.WriteFile(path, res.Document, 0o644); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d measures\t%s\n", path, res.Counts.Measures, res.Completeness)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file, or directory for several selectors")
	cmd.Flags().IntVarP(&parallel, "parallel", "p", runtime.NumCPU(), "number of selectors to run at once")
	return cmd
}

// outputName turns "1-2/all/@all" into "01_1-2_all_all.mei".
func outputName(i int, selectors string) string {
	name := unsafeName.ReplaceAllString(selectors, "_")
	return fmt.Sprintf("%02d_%s.mei", i+1, name)
}
