package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"donorcrm/internal/messages"
)

// window counts the requests of one client within a fixed window.
type window struct {
	count int
	reset time.Time
}

// limiter is a fixed-window counter keyed by client address.
type limiter struct {
	mu        sync.Mutex
	limit     int
	per       time.Duration
	now       func() time.Time
	windows   map[string]*window
	lastSweep time.Time
}

func newLimiter(limit int, per time.Duration, now func() time.Time) *limiter {
	if limit <= 0 {
		limit = 1
	}
	return &limiter{limit: limit, per: per, now: now, windows: map[string]*window{}, lastSweep: now()}
}

// allow records a request from key and reports whether it fits the window;
// when it does not, wait is the time until the window resets.
func (l *limiter) allow(key string) (ok bool, wait time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastSweep) > l.per {
		for k, win := range l.windows {
			if !now.Before(win.reset) {
				delete(l.windows, k)
			}
		}
		l.lastSweep = now
	}

	win, found := l.windows[key]
	if !found || !now.Before(win.reset) {
		win = &window{reset: now.Add(l.per)}
		l.windows[key] = win
	}
	if win.count >= l.limit {
		return false, win.reset.Sub(now)
	}
	win.count++
	return true, 0
}

// RateLimit allows limit requests per client IP in each window of length
// per and answers 429 with Retry-After beyond that.
func RateLimit(limit int, per time.Duration) func(http.Handler) http.Handler {
	l := newLimiter(limit, per, time.Now)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ok, wait := l.allow(ClientIP(r))
			if !ok {
				w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
				writeError(w, r, http.StatusTooManyRequests, "rate_limited", messages.TooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
