package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"veil/internal/ratelimit/models"
	"veil/pkg/platform/httputil"
	"veil/pkg/platform/middleware/metadata"
)

// BucketStore checks and counts requests per key.
type BucketStore interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (*models.RateLimitResult, error)
}

// Middleware throttles requests per client IP. On this service it exists to
// slow identifier enumeration, so it fails open: a broken limiter must not
// take profile fetches down with it.
type Middleware struct {
	store  BucketStore
	logger *slog.Logger
	limit  int
	window time.Duration
}

// New creates a rate limiting middleware.
func New(store BucketStore, logger *slog.Logger, limit int, window time.Duration) *Middleware {
	return &Middleware{
		store:  store,
		logger: logger,
		limit:  limit,
		window: window,
	}
}

// RateLimit enforces the per-IP limit on the wrapped handler.
func (m *Middleware) RateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		ip := metadata.ClientIPFromRequest(r)

		result, err := m.store.Allow(ctx, "ip:"+ip, m.limit, m.window)
		if err != nil {
			m.logger.ErrorContext(ctx, "rate limit check failed", "error", err)
			next.ServeHTTP(w, r)
			return
		}

		addRateLimitHeaders(w, result)

		if !result.Allowed {
			w.Header().Set("Retry-After", strconv.Itoa(result.RetryAfter))
			httputil.WriteJSON(w, http.StatusTooManyRequests, map[string]string{
				"error": "rate_limited",
			})
			return
		}

		next.ServeHTTP(w, r)
	})
}

func addRateLimitHeaders(w http.ResponseWriter, result *models.RateLimitResult) {
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))
}
