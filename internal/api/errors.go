package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dgallion1/emamei/internal/ema"
	"github.com/dgallion1/emamei/internal/fetch"
	"github.com/dgallion1/emamei/internal/meidoc"
	"github.com/dgallion1/emamei/internal/meitree"
	"github.com/dgallion1/emamei/internal/selection"
)

// statusFor maps pipeline errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, ema.ErrSyntax), errors.Is(err, ema.ErrOutOfRange):
		return http.StatusBadRequest
	case errors.Is(err, fetch.ErrTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, fetch.ErrFetch):
		return http.StatusBadGateway
	case errors.Is(err, meitree.ErrMalformed),
		errors.Is(err, meidoc.ErrStructure),
		errors.Is(err, meidoc.ErrMixedMeter),
		errors.Is(err, meidoc.ErrMeterUnresolved),
		errors.Is(err, selection.ErrMalformedTuplet),
		errors.Is(err, selection.ErrStaffUnresolved),
		errors.Is(err, selection.ErrInvalidDuration):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}
