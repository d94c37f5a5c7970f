// Package httpx writes the API's JSON error envelope:
//
//	{"error": "<code>", "message": "...", "status": 400, "request_id": "...", "trace_id": "..."}
//
// Details are merged into the top level so clients can read e.g. "fields" or
// "requires_auth" next to the code.
package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/chairlinked/api/internal/platform/requestctx"
)

// Error is an API error with its HTTP status.
type Error struct {
	Code       string
	Message    string
	Status     int
	RetryAfter time.Duration
	Details    map[string]any
}

func NewError(code, message string, status int) Error {
	if status == 0 {
		status = http.StatusInternalServerError
	}
	return Error{
		Code:    oneLine(code, 80),
		Message: oneLine(message, 512),
		Status:  status,
	}
}

func (e Error) Error() string {
	return e.Code + ": " + e.Message
}

// WithDetails copies details into the envelope.
func (e Error) WithDetails(details map[string]any) Error {
	if len(details) == 0 {
		return e
	}
	merged := make(map[string]any, len(e.Details)+len(details))
	for k, v := range e.Details {
		merged[k] = v
	}
	for k, v := range details {
		merged[k] = v
	}
	e.Details = merged
	return e
}

// WithRetryAfter sets the Retry-After header, rounded up to whole seconds.
func (e Error) WithRetryAfter(d time.Duration) Error {
	e.RetryAfter = d
	return e
}

// As extracts an Error from err's chain.
func As(err error) (Error, bool) {
	var apiErr Error
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return Error{}, false
}

// WriteError writes err as JSON, tagging it with the request and trace ids
// found on ctx.
func WriteError(ctx context.Context, w http.ResponseWriter, err Error) {
	status := err.Status
	if status == 0 {
		status = http.StatusInternalServerError
	}

	payload := make(map[string]any, len(err.Details)+5)
	for k, v := range err.Details {
		payload[k] = v
	}
	payload["error"] = err.Code
	payload["message"] = err.Message
	payload["status"] = status
	if id := oneLine(middleware.GetReqID(ctx), 80); id != "" {
		payload["request_id"] = id
	}
	if id := oneLine(requestctx.TraceID(ctx), 64); id != "" {
		payload["trace_id"] = id
	}

	if err.RetryAfter > 0 {
		secs := int((err.RetryAfter + time.Second - 1) / time.Second)
		w.Header().Set("Retry-After", strconv.Itoa(secs))
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func oneLine(value string, limit int) string {
	value = strings.TrimSpace(strings.NewReplacer("\n", " ", "\r", " ").Replace(value))
	if len(value) > limit {
		value = value[:limit]
	}
	return value
}
