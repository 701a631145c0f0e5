package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dgallion1/emamei/internal/ema"
	"github.com/dgallion1/emamei/internal/pipeline"
)

type submitRequest struct {
	Expr string `json:"expr"`
}

func (s *Server) handleSubmitJob(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 64*1024)

	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid JSON body: "+err.Error(), http.StatusBadRequest)
		return
	}
	uri, selectors, err := ema.SplitFullExpression(req.Expr)
	if err != nil {
		jsonError(w, err.Error(), statusFor(err))
		return
	}

	job := pipeline.NewJob(uri, selectors)
	if err := s.orchestrator.Submit(job); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, pipeline.ErrQueueFull) {
			status = http.StatusServiceUnavailable
		}
		jsonError(w, err.Error(), status)
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]any{
		"job_id":   job.ID,
		"status":   pipeline.StatusQueued,
		"poll_url": fmt.Sprintf("/api/jobs/%s", job.ID),
	})
}

func (s *Server) handleJobStatus(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	job := s.orchestrator.GetJob(jobID)
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, job.Snapshot())
}

func (s *Server) handleJobResult(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	job := s.orchestrator.GetJob(jobID)
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	snap := job.Snapshot()
	switch snap.Status {
	case pipeline.StatusCompleted:
		w.Header().Set("Content-Type", "application/xml; charset=utf-8")
		w.Write(job.Result())
	case pipeline.StatusFailed:
		writeJSON(w, http.StatusConflict, map[string]any{
			"error":  "job failed",
			"errors": snap.Progress.Errors,
		})
	default:
		jsonError(w, fmt.Sprintf("job is %s", snap.Status), http.StatusConflict)
	}
}
