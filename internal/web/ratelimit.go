package web

import (
	"net/http"

	"golang.org/x/time/rate"
)

// limiter caps how often the expensive validation endpoint may run.
type limiter struct {
	l *rate.Limiter
}

// newLimiter allows n validation requests per second with a burst of one.
func newLimiter(rps float64) *limiter {
	return &limiter{l: rate.NewLimiter(rate.Limit(rps), 1)}
}

// wrap rejects requests beyond the budget with 429 instead of queueing them;
// a validation run is cheap to retry.
func (rl *limiter) wrap(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !rl.l.Allow() {
			http.Error(w, "validation rate limit exceeded, retry shortly", http.StatusTooManyRequests)
			return
		}
		next(w, r)
	}
}
