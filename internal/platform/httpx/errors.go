// Package httpx provides HTTP response utilities.
package httpx

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/odyssey-erp/odyssey-group/internal/shared"
)

// StatusFor maps a domain error to its HTTP status code.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, shared.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, shared.ErrValidation), errors.Is(err, shared.ErrDepthExceeded):
		return http.StatusBadRequest
	case errors.Is(err, shared.ErrHasChildren), errors.Is(err, shared.ErrIdempotencyConflict):
		return http.StatusConflict
	case errors.Is(err, shared.ErrNotImplemented):
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

// KindFor names the domain error kind of err, or "" for internal errors.
func KindFor(err error) string {
	switch {
	case errors.Is(err, shared.ErrNotFound):
		return "not_found"
	case errors.Is(err, shared.ErrValidation):
		return "validation"
	case errors.Is(err, shared.ErrDepthExceeded):
		return "depth_exceeded"
	case errors.Is(err, shared.ErrHasChildren):
		return "has_children"
	case errors.Is(err, shared.ErrIdempotencyConflict):
		return "idempotency_conflict"
	case errors.Is(err, shared.ErrNotImplemented):
		return "not_implemented"
	default:
		return ""
	}
}

// RespondError maps domain errors to RFC 7807 responses. Internal errors
// carry no detail.
func RespondError(w http.ResponseWriter, err error) {
	status := StatusFor(err)
	if status == http.StatusInternalServerError {
		Problem(w, status, "Internal Error", "")
		return
	}
	writeProblem(w, ProblemDetail{
		Title:  http.StatusText(status),
		Status: status,
		Detail: shared.UserSafeMessage(err),
		Kind:   KindFor(err),
	})
}

// Fail logs err at a level matching its status and writes the problem response.
func Fail(w http.ResponseWriter, logger *slog.Logger, msg string, err error, attrs ...any) {
	if logger == nil {
		logger = slog.Default()
	}
	attrs = append(attrs, slog.Any("error", err))
	if StatusFor(err) == http.StatusInternalServerError {
		logger.Error(msg, attrs...)
	} else {
		logger.Warn(msg, attrs...)
	}
	RespondError(w, err)
}
