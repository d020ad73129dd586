package http

import (
	"math"
	"net/http"
	"strconv"

	"github.com/pedro-fs-garcia/filmmash-api/internal/logger"
)

// withRateLimit takes one token from the bucket of (path, client ip) before
// the request reaches the credential handlers. Limiter failures let the
// request through.
func (h *Handler) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.URL.Path + ":" + clientIP(r.RemoteAddr)

		decision, err := h.limiter.Allow(r.Context(), key)
		if err != nil {
			logger.FromRequest(r).Warn().Err(err).Str("key", key).Msg("rate limiter unavailable, request allowed")
			next.ServeHTTP(w, r)
			return
		}

		if decision.Limit > 0 {
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(decision.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(max(decision.Remaining, 0), 10))
		}

		if !decision.Allowed {
			retryAfter := int(math.Ceil(decision.RetryAfter.Seconds()))
			w.Header().Set("Retry-After", strconv.Itoa(max(retryAfter, 1)))
			writeError(w, r, ErrTooManyRequests)
			return
		}

		next.ServeHTTP(w, r)
	})
}
