package ratelimit

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/abasto-labs/savings-api/internal/common"
)

// Limiter decides whether a keyed event fits within its rate window.
type Limiter interface {
	Allow(ctx context.Context, key string, window time.Duration, max int) (allowed bool, remaining int, reset time.Time, err error)
}

// Config describes how requests are keyed and what one window allows.
type Config struct {
	Key    func(*http.Request) string
	Window time.Duration
	Max    int
}

// Handler applies the limit ahead of the wrapped handler. Limiter errors
// fail open after reporting through OnError.
type Handler struct {
	Limiter Limiter
	Config  Config
	OnError func(error)
}

// Middleware implements the chi middleware contract.
func (h Handler) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.Limiter == nil || h.Config.Key == nil {
			next.ServeHTTP(w, r)
			return
		}
		allowed, remaining, resetAt, err := h.Limiter.Allow(r.Context(), h.Config.Key(r), h.Config.Window, h.Config.Max)
		if err != nil {
			if h.OnError != nil {
				h.OnError(err)
			}
			next.ServeHTTP(w, r)
			return
		}

		writeRateHeaders(w.Header(), h.Config.Max, remaining, resetAt)
		if !allowed {
			retryAfter := max(0, int(time.Until(resetAt).Seconds()))
			w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
			common.JSONError(w, http.StatusTooManyRequests, common.CodeRateLimited, "rate limit exceeded", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeRateHeaders(hdr http.Header, limit, remaining int, resetAt time.Time) {
	hdr.Set("X-RateLimit-Limit", strconv.Itoa(max(0, limit)))
	hdr.Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
	hdr.Set("X-RateLimit-Reset", strconv.FormatInt(resetAt.Unix(), 10))
}
