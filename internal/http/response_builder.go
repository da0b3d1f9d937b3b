// This file implements a small builder for JSON responses and the mapping
// from service errors to HTTP status codes.

package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"debtpilot/internal/core"
	applog "debtpilot/internal/log"
	"debtpilot/internal/middleware/trace"
)

// ErrMalformedRequest marks request bodies that are not valid JSON for the
// endpoint.
var ErrMalformedRequest = errors.New("malformed request")

// ErrorBody is the JSON document returned for every failed request.
type ErrorBody struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	RequestID string `json:"requestId,omitempty"`
}

// JSONResponseBuilder provides a fluent API for JSON responses.
type JSONResponseBuilder struct {
	statusCode int
	body       any
	headers    map[string]string
}

func NewJSONResponse() *JSONResponseBuilder {
	return &JSONResponseBuilder{
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

func (b *JSONResponseBuilder) Status(code int) *JSONResponseBuilder {
	b.statusCode = code
	return b
}

func (b *JSONResponseBuilder) Header(name, value string) *JSONResponseBuilder {
	b.headers[name] = value
	return b
}

func (b *JSONResponseBuilder) Body(v any) *JSONResponseBuilder {
	b.body = v
	return b
}

// Write encodes the body. Encoding failures after the header is sent can
// only be logged.
func (b *JSONResponseBuilder) Write(w http.ResponseWriter, r *http.Request) {
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}
	if b.body == nil {
		w.WriteHeader(b.statusCode)
		return
	}

	payload, err := json.Marshal(b.body)
	if err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Failed to encode response", applog.FieldError, err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal error","code":"internal"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(b.statusCode)
	_, _ = w.Write(append(payload, '\n'))
}

// ErrorResponse builds an error document tagged with the request ID.
func ErrorResponse(r *http.Request, statusCode int, code, message string) *JSONResponseBuilder {
	return NewJSONResponse().
		Status(statusCode).
		Body(ErrorBody{Error: message, Code: code, RequestID: trace.GetRequestID(r.Context())})
}

// statusFor maps err to a status code and a machine-readable code.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, ErrMalformedRequest):
		return http.StatusBadRequest, "malformed_request"
	case errors.Is(err, core.ErrInvalidStrategy):
		return http.StatusUnprocessableEntity, "invalid_strategy"
	case errors.Is(err, core.ErrInvalidInput):
		return http.StatusUnprocessableEntity, "invalid_input"
	case errors.Is(err, core.ErrPlanNotFound):
		return http.StatusNotFound, "not_found"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

// writeError reports err to the client. Server errors are logged and
// their details withheld.
func writeError(w http.ResponseWriter, r *http.Request, operation string, err error) {
	status, code := statusFor(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		ctx := r.Context()
		applog.NewStructuredLogger(applog.FromContext(ctx)).
			LogError(ctx, "Request failed", err, operation, applog.NewFields().WithHTTPRequest(r.Method, r.URL.Path, "", ""))
		message = "internal error"
	}
	ErrorResponse(r, status, code, message).Write(w, r)
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	NewJSONResponse().Status(status).Body(v).Write(w, r)
}
