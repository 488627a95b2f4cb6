package middleware

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/testforge/hrm-e2e/pkg/httputil"
)

// RateLimitMiddleware bounds how often guarded routes may be hit. Each
// accepted request launches browsers against the target, so the bucket is
// shared by all callers.
type RateLimitMiddleware struct {
	limiter *rate.Limiter
	perMin  int
}

// NewRateLimitMiddleware allows perMinute requests per minute with a burst
// of one. perMinute of zero or less disables limiting.
func NewRateLimitMiddleware(perMinute int) *RateLimitMiddleware {
	m := &RateLimitMiddleware{perMin: perMinute}
	if perMinute > 0 {
		m.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), 1)
	}
	return m
}

// Handler returns the middleware handler
func (m *RateLimitMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.limiter == nil {
			next.ServeHTTP(w, r)
			return
		}

		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(m.perMin))

		res := m.limiter.Reserve()
		if delay := res.Delay(); delay > 0 {
			res.Cancel()
			w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(delay.Seconds()))))
			httputil.JSONError(w, http.StatusTooManyRequests, httputil.ErrCodeRateLimited, "rate limit exceeded", nil)
			return
		}

		next.ServeHTTP(w, r)
	})
}
