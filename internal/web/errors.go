package web

// errors.go provides unified error response handling for the API.
//
// The error flow:
//  1. Handler encounters an error
//  2. Calls s.respondError(w, r, err)
//  3. Status is chosen with errors.Is against the known sentinels
//  4. Error is mapped via core.MapError to a coded, user-friendly message
//  5. Technical error is logged with the request ID for correlation

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/render"

	"github.com/JonMunkholm/dataquality/internal/core"
	"github.com/JonMunkholm/dataquality/internal/export"
	"github.com/JonMunkholm/dataquality/internal/logging"
)

var (
	errNoFile         = errors.New("no file provided")
	errInvalidRequest = errors.New("invalid request")
)

// ErrorResponse represents the JSON structure for API error responses.
// Includes both machine-readable (Code) and human-readable (Message, Action) fields.
type ErrorResponse struct {
	Error   string   `json:"error"`
	Message string   `json:"message"`
	Action  string   `json:"action,omitempty"`
	Code    string   `json:"code"`
	Details []string `json:"details,omitempty"`
}

// statusFor maps an error to its HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, core.ErrDatasetNotFound), errors.Is(err, core.ErrUnknownCheck):
		return http.StatusNotFound
	case errors.Is(err, core.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, core.ErrEmptyFile),
		errors.Is(err, core.ErrInvalidCSV),
		errors.Is(err, export.ErrUnknownFormat),
		errors.Is(err, errNoFile),
		errors.Is(err, errInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrTooManyUploads), errors.Is(err, export.ErrPublishDisabled):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// respondError logs the technical error and writes the user-facing JSON body.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error, details ...string) {
	status := statusFor(err)
	userMsg := core.MapError(err)

	logger := logging.FromContext(r.Context())
	attrs := []any{
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", err.Error(),
		"code", userMsg.Code,
	}
	if status >= http.StatusInternalServerError {
		logger.Error("request error", attrs...)
	} else {
		logger.Warn("request error", attrs...)
	}

	if status == http.StatusServiceUnavailable {
		w.Header().Set("Retry-After", "30")
	}

	render.Status(r, status)
	render.JSON(w, r, ErrorResponse{
		Error:   userMsg.Message,
		Message: userMsg.Message,
		Action:  userMsg.Action,
		Code:    userMsg.Code,
		Details: details,
	})
}
