package web

// errors.go maps the core error taxonomy to HTTP responses.
//
// Every error is logged with its full technical detail and the request ID.
// Clients get the user-facing message from core.MapError plus its code.
// Insert failures are the one exception: their store detail is returned so
// the uploader can see which row the database refused. Listing failures
// never leak store detail.

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/JonMunkholm/feedbacks/internal/core"
	"github.com/JonMunkholm/feedbacks/internal/logging"
)

// ErrorResponse is the JSON body of a failed API request.
type ErrorResponse struct {
	Error  string `json:"error"`
	Action string `json:"action,omitempty"`
	Code   string `json:"code,omitempty"`
}

// messageResponse is the body used for router level failures.
type messageResponse struct {
	Message string `json:"message"`
}

// statusFor picks the HTTP status for err.
func statusFor(err error) int {
	var maxBytes *http.MaxBytesError
	switch {
	case errors.Is(err, core.ErrNoFileUploaded), errors.Is(err, core.ErrEmptyOrMalformedCSV):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrFileTooLarge), errors.As(err, &maxBytes):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, core.ErrTooManyUploads):
		return http.StatusTooManyRequests
	case errors.Is(err, core.ErrUploadInterrupted):
		return http.StatusRequestTimeout
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// respondError logs err and writes the matching JSON error response.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	var maxBytes *http.MaxBytesError
	if errors.As(err, &maxBytes) {
		err = errors.Join(core.ErrFileTooLarge, err)
	}

	status := statusFor(err)
	msg := core.MapError(err)

	logger := logging.FromContext(r.Context())
	level := slog.LevelWarn
	if status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	logger.Log(r.Context(), level, "request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", err.Error(),
		"code", msg.Code,
	)

	body := ErrorResponse{Error: msg.Message, Action: msg.Action, Code: msg.Code}

	var se *core.StoreError
	switch {
	case errors.As(err, &se) && se.Op == core.OpInsert:
		body.Error = se.Err.Error()
	case status == http.StatusInternalServerError:
		body = ErrorResponse{Error: "Internal Server Error", Code: msg.Code}
	case status == http.StatusTooManyRequests:
		w.Header().Set("Retry-After", strconv.Itoa(retryAfterSeconds))
	}

	writeJSON(w, status, body)
}

// retryAfterSeconds is advertised when the upload limiter is saturated.
const retryAfterSeconds = 5

// writeJSON encodes v as the response body. Encoding errors can only be
// logged since the status line is already written.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode error", "error", err)
	}
}

func notFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, messageResponse{Message: "Not Found"})
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusMethodNotAllowed, messageResponse{Message: "Method Not Allowed"})
}
