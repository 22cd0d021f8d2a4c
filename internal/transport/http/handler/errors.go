package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/email-otp-api/internal/application/otp"
	"github.com/email-otp-api/internal/domain"
)

// statusFor maps a domain error kind to an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, domain.ErrNotFound),
		errors.Is(err, domain.ErrExpired),
		errors.Is(err, domain.ErrMismatch):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// errorEnvelope builds the response body for err. Only domain.Error messages
// reach the caller; anything else becomes a generic message.
func errorEnvelope(err error) MessageEnvelope {
	var de *domain.Error
	if errors.As(err, &de) {
		return MessageEnvelope{Message: de.Message}
	}
	return MessageEnvelope{Message: otp.MsgInternal}
}

// httpError writes err as a JSON failure. success is echoed into the body when non-nil.
func httpError(w http.ResponseWriter, r *http.Request, err error, success *bool) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "err", err)
	}
	env := errorEnvelope(err)
	env.Success = success
	writeJSON(w, status, env)
}
