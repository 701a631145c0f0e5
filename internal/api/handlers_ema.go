package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/dgallion1/emamei/internal/ema"
	"github.com/dgallion1/emamei/internal/pipeline"
	"github.com/dgallion1/emamei/internal/report"
)

// handleEMA serves /ema/{docURI}/{measures}/{staves}/{beats}[/{completeness}].
// The document URI must be percent-encoded so that it is one path segment.
func (s *Server) handleEMA(w http.ResponseWriter, r *http.Request) {
	expr := strings.TrimPrefix(r.URL.EscapedPath(), "/ema")
	uri, selectors, err := ema.SplitFullExpression(expr)
	if err != nil {
		jsonError(w, err.Error(), statusFor(err))
		return
	}

	log := s.log.With("doc_uri", uri, "selectors", selectors)
	data, err := s.orchestrator.Fetch(r.Context(), uri)
	if err != nil {
		log.Warn("fetch failed", "error", err)
		jsonError(w, err.Error(), statusFor(err))
		return
	}

	res, err := s.orchestrator.Select(r.Context(), data, selectors)
	if err != nil {
		log.Warn("selection failed", "error", err)
		jsonError(w, err.Error(), statusFor(err))
		return
	}

	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.Header().Set("X-Ema-Completeness", res.Completeness.String())
	w.Header().Set("X-Ema-Measures", strconv.Itoa(res.Counts.Measures))
	w.Write(res.Document)
}

// handleInfo returns the measure, meter and staff index of a document as JSON,
// or as an HTML report with format=html.
func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	uri := r.URL.Query().Get("uri")
	if uri == "" {
		jsonError(w, "uri query parameter is required", http.StatusBadRequest)
		return
	}

	data, err := s.orchestrator.Fetch(r.Context(), uri)
	if err != nil {
		jsonError(w, err.Error(), statusFor(err))
		return
	}
	info, err := pipeline.Info(data)
	if err != nil {
		jsonError(w, err.Error(), statusFor(err))
		return
	}

	if r.URL.Query().Get("format") == "html" {
		html, err := report.HTML(uri, info)
		if err != nil {
			jsonError(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(html))
		return
	}
	writeJSON(w, http.StatusOK, info)
}
