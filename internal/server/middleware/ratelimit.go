package middleware

import (
	"net/http"

	"golang.org/x/time/rate"

	apperrors "github.com/stowgate/stowgate/internal/errors"
)

// RateLimit rejects requests beyond the limiter's budget with a 429
// THROTTLED envelope. The limiter is shared across requests; sign-upload
// is the only endpoint worth guarding since every accepted request mints
// a usable upload capability.
func RateLimit(limiter *rate.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				apperrors.Respond(w, r, http.StatusTooManyRequests,
					apperrors.CodeThrottled, "rate limit exceeded", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
