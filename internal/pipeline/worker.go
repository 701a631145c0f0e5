package pipeline

import (
	"context"
	"fmt"
	"log/slog"
)

// SelectFunc runs one selection over a fetched document.
type SelectFunc func(ctx context.Context, data []byte, selectors string) (*Result, error)

// Worker processes a single selection job.
type Worker struct {
	fetcher Fetcher
	sel     SelectFunc
	log     *slog.Logger
}

func NewWorker(fetcher Fetcher, sel SelectFunc, log *slog.Logger) *Worker {
	return &Worker{
		fetcher: fetcher,
		sel:     sel,
		log:     log,
	}
}

// Process fetches the job's document and applies its selectors.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "doc_uri", job.DocURI, "selectors", job.Selectors)

	// Phase 1: Fetch
	job.SetStatus(StatusFetching, "fetching")
	data, err := w.fetcher.GetWithRetry(ctx, job.DocURI)
	if err != nil {
		log.Error("fetch failed", "error", err)
		job.AddError(fmt.Sprintf("fetch: %s", err))
		job.SetStatus(StatusFailed, "fetching")
		return
	}
	job.SetDocument(data)
	log.Info("fetched document", "bytes", len(data))

	// Phase 2: Select
	job.SetStatus(StatusSelecting, "selecting")
	res, err := w.sel(ctx, data, job.Selectors)
	if err != nil {
		log.Error("selection failed", "error", err)
		job.AddError(fmt.Sprintf("select: %s", err))
		job.SetStatus(StatusFailed, "selecting")
		return
	}
	job.SetResult(res)
	log.Info("selection complete",
		"completeness", res.Completeness.String(),
		"measures", res.Counts.Measures,
		"events", res.Counts.Events,
		"spaces", res.Counts.Spaces,
	)
	job.SetStatus(StatusCompleted, "done")
}
