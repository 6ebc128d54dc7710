// Package middleware provides the gateway's HTTP middleware: request
// IDs, panic recovery, request logging, and rate limiting.
package middleware

import (
	"net/http"

	"github.com/google/uuid"

	apperrors "github.com/stowgate/stowgate/internal/errors"
)

// HeaderRequestID is the request ID header, honored inbound and echoed
// outbound.
const HeaderRequestID = "X-Request-ID"

// RequestID attaches a request ID to the context and response. An inbound
// X-Request-ID is honored so callers can correlate across services;
// otherwise a fresh UUID is assigned.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(HeaderRequestID)
		if id == "" {
			id = uuid.New().String()
		}

		w.Header().Set(HeaderRequestID, id)
		ctx := apperrors.ContextWithRequestID(r.Context(), id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
