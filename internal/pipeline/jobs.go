package pipeline

import (
	"crypto/sha256"
	"fmt"
	"sync"
	"time"

	"github.com/dgallion1/emamei/internal/ident"
)

// JobStatus represents the state of a selection job.
type JobStatus string

const (
	StatusQueued    JobStatus = "queued"
	StatusFetching  JobStatus = "fetching"
	StatusSelecting JobStatus = "selecting"
	StatusCompleted JobStatus = "completed"
	StatusFailed    JobStatus = "failed"
)

// Job tracks the state of a single selection.
type Job struct {
	mu sync.Mutex

	ID        string `json:"job_id"`
	DocURI    string `json:"doc_uri"`
	Selectors string `json:"selectors"`

	Status JobStatus `json:"status"`
	Phase  string    `json:"phase"`

	Progress Progress `json:"progress"`

	ContentHash string    `json:"content_hash,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Internal: not serialized.
	result []byte
	errors []string
}

// Progress tracks processing progress.
type Progress struct {
	DocumentBytes int      `json:"document_bytes"`
	Counts        Counts   `json:"counts"`
	Errors        []string `json:"errors"`
}

// NewJob returns a queued job for one document and selector string.
func NewJob(docURI, selectors string) *Job {
	now := time.Now()
	return &Job{
		ID:        ident.New(),
		DocURI:    docURI,
		Selectors: selectors,
		Status:    StatusQueued,
		Phase:     "queued",
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// JobStore is a thread-safe in-memory job registry with TTL eviction.
type JobStore struct {
	mu   sync.Mutex
	jobs map[string]*Job
	ttl  time.Duration
}

func NewJobStore(ttl time.Duration) *JobStore {
	return &JobStore{
		jobs: make(map[string]*Job),
		ttl:  ttl,
	}
}

func (s *JobStore) Put(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

func (s *JobStore) Get(id string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[id]
}

// Len returns the number of tracked jobs.
func (s *JobStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

// Cleanup removes expired jobs.
func (s *JobStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, job := range s.jobs {
		job.mu.Lock()
		updated := job.UpdatedAt
		job.mu.Unlock()
		if now.Sub(updated) > s.ttl {
			delete(s.jobs, id)
		}
	}
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status JobStatus, phase string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.Phase = phase
	j.UpdatedAt = time.Now()
}

// AddError records an error.
func (j *Job) AddError(err string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.errors = append(j.errors, err)
	j.Progress.Errors = j.errors
	j.UpdatedAt = time.Now()
}

// SetDocument records the fetched document's size and hash.
func (j *Job) SetDocument(data []byte) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.DocumentBytes = len(data)
	j.ContentHash = ContentHashHex(data)
	j.UpdatedAt = time.Now()
}

// SetResult stores the serialized selection.
func (j *Job) SetResult(res *Result) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.result = res.Document
	j.Progress.Counts = res.Counts
	j.UpdatedAt = time.Now()
}

// Result returns the serialized selection, or nil before completion.
func (j *Job) Result() []byte {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.result
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID          string    `json:"job_id"`
	DocURI      string    `json:"doc_uri"`
	Selectors   string    `json:"selectors"`
	Status      JobStatus `json:"status"`
	Phase       string    `json:"phase"`
	ContentHash string    `json:"content_hash,omitempty"`
	Progress    Progress  `json:"progress"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	errs := append([]string{}, j.Progress.Errors...)
	return JobSnapshot{
		ID:          j.ID,
		DocURI:      j.DocURI,
		Selectors:   j.Selectors,
		Status:      j.Status,
		Phase:       j.Phase,
		ContentHash: j.ContentHash,
		Progress: Progress{
			DocumentBytes: j.Progress.DocumentBytes,
			Counts:        j.Progress.Counts,
			Errors:        errs,
		},
	}
}

// ContentHashHex computes SHA-256 of content and returns hex string.
func ContentHashHex(data []byte) string {
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:])
}
