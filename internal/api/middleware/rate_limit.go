package middleware

import (
	"net/http"
	"strconv"

	"github.com/lhyphendixon/sidekick-forge/internal/api"
	"github.com/lhyphendixon/sidekick-forge/internal/ratelimit"
)

// RateLimit rejects requests once a client exceeds its sliding-window quota.
// It keys on the authenticated client ID, so it must run after APIKeyAuth;
// unauthenticated paths fall back to the remote address.
func RateLimit(limiter *ratelimit.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := GetClientID(r.Context())
			if key == "" {
				key = clientIP(r)
			}

			result := limiter.Check(key)
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))

			if !result.Allowed {
				w.Header().Set("Retry-After", strconv.Itoa(int(result.RetryAfter.Seconds())))
				api.Error(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
