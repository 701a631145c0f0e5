package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dgallion1/emamei/internal/config"
	"github.com/dgallion1/emamei/internal/stats"
)

// ErrQueueFull is returned by Submit when no worker can take the job.
var ErrQueueFull = errors.New("job queue is full")

// Fetcher retrieves documents by URI.
type Fetcher interface {
	GetWithRetry(ctx context.Context, uri string) ([]byte, error)
}

// Orchestrator runs selections: synchronously for API callers and through a
// worker pool for queued jobs. Both paths share one concurrency limit.
type Orchestrator struct {
	jobs    *JobStore
	queue   chan *Job
	fetcher Fetcher
	stats   *stats.LatencyStats
	sem     chan struct{}
	log     *slog.Logger
	cfg     config.Config

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewOrchestrator creates the pipeline. Call Start to run workers.
func NewOrchestrator(cfg config.Config, fetcher Fetcher, log *slog.Logger) *Orchestrator {
	return &Orchestrator{
		jobs:    NewJobStore(cfg.JobTTL),
		queue:   make(chan *Job, cfg.MaxQueueSize),
		fetcher: fetcher,
		stats:   stats.NewLatencyStats(cfg.StatsWindow),
		sem:     make(chan struct{}, max(cfg.MaxConcurrentSelect, 1)),
		log:     log,
		cfg:     cfg,
	}
}

// Start launches worker goroutines.
func (o *Orchestrator) Start(ctx context.Context) {
	workerCtx, cancel := context.WithCancel(ctx)
	o.cancel = cancel

	for range o.cfg.WorkerCount {
		o.wg.Add(1)
		go func() {
			defer o.wg.Done()
			w := NewWorker(o.fetcher, o.Select, o.log)
			for {
				select {
				case <-workerCtx.Done():
					return
				case job, ok := <-o.queue:
					if !ok {
						return
					}
					w.Process(workerCtx, job)
				}
			}
		}()
	}

	// Start job store cleanup.
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-workerCtx.Done():
				return
			case <-ticker.C:
				o.jobs.Cleanup()
			}
		}
	}()
}

// Stop gracefully shuts down the pipeline.
func (o *Orchestrator) Stop() {
	if o.cancel != nil {
		o.cancel()
	}
	close(o.queue)
	o.wg.Wait()
}

// Submit queues a new job for processing.
func (o *Orchestrator) Submit(job *Job) error {
	o.jobs.Put(job)
	select {
	case o.queue <- job:
		return nil
	default:
		job.AddError("queue_full")
		job.SetStatus(StatusFailed, "queued")
		return fmt.Errorf("%w (%d)", ErrQueueFull, o.cfg.MaxQueueSize)
	}
}

// GetJob returns a job by ID.
func (o *Orchestrator) GetJob(id string) *Job {
	return o.jobs.Get(id)
}

// QueueDepth returns current queue depth.
func (o *Orchestrator) QueueDepth() int {
	return len(o.queue)
}

// Fetch retrieves a document through the configured fetcher.
func (o *Orchestrator) Fetch(ctx context.Context, uri string) ([]byte, error) {
	return o.fetcher.GetWithRetry(ctx, uri)
}

// Select runs one selection under the shared concurrency limit and records
// its latency.
func (o *Orchestrator) Select(ctx context.Context, data []byte, selectors string) (*Result, error) {
	select {
	case o.sem <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	defer func() { <-o.sem }()

	start := time.Now()
	res, err := Select(data, selectors, o.log)
	if err != nil {
		o.stats.RecordFailure(time.Since(start))
		return nil, err
	}
	o.stats.Record(time.Since(start))
	return res, nil
}

// Stats returns the selection latency snapshot.
func (o *Orchestrator) Stats() stats.Snapshot {
	return o.stats.Snapshot()
}
