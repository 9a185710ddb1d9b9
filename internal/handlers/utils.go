package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/akonduru/reviewrag/internal/adapter"
	"github.com/akonduru/reviewrag/internal/config"
	"github.com/akonduru/reviewrag/internal/domain/review"
)

func writeJsonResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Log the error but can't send a clean status code now
		logRH.Error("Error encoding response: %v", err)
	}
}

func validateContext(ctx context.Context) bool {
	log := logRH
	if trace, ok := ctx.Value(config.TRACE_ID_KEY).(string); ok {
		log = log.With("traceId", trace)
	}
	if ctx.Err() != nil {
		log.Warn("context error", "error", ctx.Err())
		return false
	}

	select {
	case <-ctx.Done():
		log.Warn("context cancelled")
		return false
	default:
		return true
	}
}

func WriteErrorResponse(w http.ResponseWriter, httpCode int, message string) {
	retry := httpCode == http.StatusTooManyRequests || httpCode == http.StatusServiceUnavailable
	writeJsonResponse(w, httpCode, adapter.BadRequest(message, httpCode, retry))
}

// statusForError maps the domain error taxonomy onto HTTP status codes.
func statusForError(err error) int {
	switch {
	case errors.Is(err, review.ErrInvalidParameter), errors.Is(err, review.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, review.ErrNoResults):
		return http.StatusNotFound
	case errors.Is(err, review.ErrSyncBusy):
		return http.StatusConflict
	case errors.Is(err, review.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, review.ErrServiceUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, review.ErrGenerationFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
