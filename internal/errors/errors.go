// Package errors defines the gateway's HTTP error envelope and the
// mapping from store errors to status codes.
//
// Every failure leaves the gateway as:
//
//	{"error": {"code": "...", "message": "...", "requestId": "...", "details": {...}}}
package errors

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/stowgate/stowgate/pkg/store"
)

// Machine-readable error codes surfaced to clients.
const (
	CodeValidation         = "VALIDATION_ERROR"
	CodeNotFound           = "NOT_FOUND"
	CodeAccessDenied       = "ACCESS_DENIED"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeThrottled          = "THROTTLED"
	CodeStoreUnavailable   = "STORE_UNAVAILABLE"
	CodeNotConfigured      = "NOT_CONFIGURED"
	CodeMethodNotAllowed   = "METHOD_NOT_ALLOWED"
	CodeInternal           = "INTERNAL_ERROR"
)

// HTTPErrorResponse is the JSON envelope for every gateway error.
type HTTPErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// ErrorBody carries the machine-readable failure indication.
type ErrorBody struct {
	Code      string         `json:"code"`
	Message   string         `json:"message"`
	RequestID string         `json:"requestId,omitempty"`
	Details   map[string]any `json:"details,omitempty"`
}

// RequestError is a fully specified client-visible error. Handlers return
// it for validation failures and other conditions decided before any
// backend call.
type RequestError struct {
	Status  int
	Code    string
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *RequestError) Error() string {
	return e.Code + ": " + e.Message
}

// Validation builds a 400 RequestError.
func Validation(message string) *RequestError {
	return &RequestError{Status: http.StatusBadRequest, Code: CodeValidation, Message: message}
}

type ctxKey struct{}

// ContextWithRequestID attaches a request ID for inclusion in error
// envelopes.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// RequestIDFromContext returns the request ID attached by the middleware,
// or empty.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

// Respond writes an error envelope with the given status and code.
func Respond(w http.ResponseWriter, r *http.Request, status int, code, message string, details map[string]any) {
	body := HTTPErrorResponse{Error: ErrorBody{
		Code:      code,
		Message:   message,
		RequestID: RequestIDFromContext(r.Context()),
		Details:   details,
	}}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// RespondWithError classifies err and writes the matching envelope.
//
// RequestError is written as-is; store sentinel errors map onto the HTTP
// taxonomy; anything else becomes a 500 INTERNAL_ERROR.
func RespondWithError(w http.ResponseWriter, r *http.Request, err error) {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		Respond(w, r, reqErr.Status, reqErr.Code, reqErr.Message, reqErr.Details)
		return
	}

	status, code := Classify(err)
	Respond(w, r, status, code, err.Error(), nil)
}

// Classify maps a store error to its HTTP status and error code.
func Classify(err error) (status int, code string) {
	switch {
	case store.IsNotConfigured(err):
		return http.StatusServiceUnavailable, CodeNotConfigured
	case store.IsNotFound(err), store.IsBucketNotFound(err):
		return http.StatusNotFound, CodeNotFound
	case store.IsAccessDenied(err):
		return http.StatusForbidden, CodeAccessDenied
	case store.IsInvalidCredentials(err):
		return http.StatusUnauthorized, CodeInvalidCredentials
	case store.IsThrottled(err):
		return http.StatusTooManyRequests, CodeThrottled
	case store.IsStoreUnavailable(err):
		return http.StatusBadGateway, CodeStoreUnavailable
	default:
		return http.StatusInternalServerError, CodeInternal
	}
}
