package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/dgallion1/emamei/internal/fetch"
)

type rootOptions struct {
	logLevel string
	timeout  time.Duration
	maxBytes int64
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "emamei",
		Short: "Extract or highlight parts of MEI scores with EMA expressions",
		Long: `emamei applies Enhancing Music notation Addressability (EMA) expressions
to MEI documents. An expression selects measures, staves and beats:

  1-2,10-15/all/@all          measures 1-2 and 10-15, every staff
  1-4/2+4/@1-2+@3-4           staves 2 and 4 with different beats
  3/all/@2-3/highlight        keep everything, annotate beats 2-3 of measure 3

Documents are read from a file path, an http(s) URL, or "-" for stdin.`,
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	cmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 30*time.Second, "timeout for fetching URLs")
	cmd.PersistentFlags().Int64Var(&opts.maxBytes, "max-bytes", 52428800, "maximum document size when fetching URLs")

	cmd.AddCommand(newSelectCmd(opts), newInfoCmd(opts))
	return cmd
}

func (o *rootOptions) logger(cmd *cobra.Command) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(o.logLevel))); err != nil {
		level = slog.LevelWarn
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
}

// load reads a document from a path, a URL or stdin.
func (o *rootOptions) load(ctx context.Context, cmd *cobra.Command, src string, log *slog.Logger) ([]byte, error) {
	switch {
	case src == "-":
		return io.ReadAll(cmd.InOrStdin())
	case strings.HasPrefix(src, "http://"), strings.HasPrefix(src, "https://"):
		client := fetch.NewClient(fetch.Options{Timeout: o.timeout, MaxBytes: o.maxBytes, AllowHTTP: true}, log)
		defer client.Close()
		return client.GetWithRetry(ctx, src)
	default:
		data, err := os.ReadFile(src)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", src, err)
		}
		return data, nil
	}
}
