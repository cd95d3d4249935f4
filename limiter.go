package folio

import (
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
)

// RateLimiter counts hits per key (usually a client IP) in a sliding window.
type RateLimiter struct {
	mu     sync.Mutex
	hits   map[string][]time.Time
	max    int
	window time.Duration

	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

// NewRateLimiter allows max hits per window for each key. Call Stop to
// release the background sweeper.
func NewRateLimiter(max int, window time.Duration) *RateLimiter {
	l := &RateLimiter{
		hits:   make(map[string][]time.Time),
		max:    max,
		window: window,
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	go l.sweep()
	return l
}

func (l *RateLimiter) sweep() {
	defer close(l.done)
	ticker := time.NewTicker(l.window)
	defer ticker.Stop()
	for {
		select {
		case <-l.stop:
			return
		case now := <-ticker.C:
			cutoff := now.Add(-l.window)
			l.mu.Lock()
			for key := range l.hits {
				if kept := l.prune(key, cutoff); len(kept) == 0 {
					delete(l.hits, key)
				}
			}
			l.mu.Unlock()
		}
	}
}

// prune drops hits older than cutoff. l.mu must be held.
func (l *RateLimiter) prune(key string, cutoff time.Time) []time.Time {
	hits := l.hits[key]
	kept := hits[:0]
	for _, t := range hits {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	if len(kept) > 0 {
		l.hits[key] = kept
	}
	return kept
}

// Stop ends the sweeper and waits for it to exit. It is safe to call more
// than once.
func (l *RateLimiter) Stop() {
	l.stopOnce.Do(func() { close(l.stop) })
	<-l.done
}

// Allow records a hit for key and reports whether it was within the limit.
func (l *RateLimiter) Allow(key string) bool {
	if !l.Check(key) {
		return false
	}
	l.Record(key)
	return true
}

// Check reports whether key is under the limit without recording a hit.
func (l *RateLimiter) Check(key string) bool {
	cutoff := time.Now().Add(-l.window)

	l.mu.Lock()
	defer l.mu.Unlock()

	kept := l.prune(key, cutoff)
	if len(kept) == 0 {
		delete(l.hits, key)
	}
	return len(kept) < l.max
}

// Record registers a hit for key.
func (l *RateLimiter) Record(key string) {
	l.mu.Lock()
	l.hits[key] = append(l.hits[key], time.Now())
	l.mu.Unlock()
}

// Middleware rejects requests over the limit with a JSON 429.
func (l *RateLimiter) Middleware(message string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !l.Allow(c.RealIP()) {
				return c.JSON(http.StatusTooManyRequests, map[string]string{"error": message})
			}
			return next(c)
		}
	}
}
