// Package ratelimit applies a fixed-window request budget per client key.
package ratelimit

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"
)

type Limiter struct {
	mu      sync.Mutex
	clients map[string]*window
	now     func() time.Time
	limit   int
	period  time.Duration
	idleTTL time.Duration
	hits    atomic.Int64
}

type window struct {
	start    time.Time
	requests int
}

type Config struct {
	// RequestsPerMinute is the budget per client per window. Zero or less disables limiting.
	RequestsPerMinute int
	// IdleTTL is how long an idle client stays tracked before Cleanup drops it.
	IdleTTL time.Duration
}

type Metrics struct {
	Rejected    int64
	ClientCount int64
}

func NewLimiter(cfg Config) *Limiter {
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = 10 * time.Minute
	}
	return &Limiter{
		clients: make(map[string]*window),
		now:     time.Now,
		limit:   cfg.RequestsPerMinute,
		period:  time.Minute,
		idleTTL: cfg.IdleTTL,
	}
}

// Allow records a request for key. It returns whether the request fits in the
// current window and, when it does not, how long until the window resets.
func (l *Limiter) Allow(key string) (bool, time.Duration) {
	if l.limit <= 0 {
		return true, 0
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	w, ok := l.clients[key]
	if !ok || now.Sub(w.start) >= l.period {
		l.clients[key] = &window{start: now, requests: 1}
		return true, 0
	}

	if w.requests >= l.limit {
		l.hits.Add(1)
		return false, w.start.Add(l.period).Sub(now)
	}
	w.requests++
	return true, 0
}

// Cleanup forgets clients idle for longer than the idle TTL.
func (l *Limiter) Cleanup() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := l.now().Add(-l.idleTTL)
	removed := 0
	for key, w := range l.clients {
		if w.start.Before(cutoff) {
			delete(l.clients, key)
			removed++
		}
	}
	return removed
}

// Run calls Cleanup every interval until ctx is done.
func (l *Limiter) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			l.Cleanup()
		case <-ctx.Done():
			return
		}
	}
}

func (l *Limiter) GetMetrics() Metrics {
	l.mu.Lock()
	clients := int64(len(l.clients))
	l.mu.Unlock()
	return Metrics{Rejected: l.hits.Load(), ClientCount: clients}
}

// Middleware rejects requests over budget. key derives the client key from
// the request; onLimit writes the rejection and defaults to a plain 429.
func (l *Limiter) Middleware(key func(*http.Request) string, onLimit func(http.ResponseWriter, *http.Request)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ok, retry := l.Allow(key(r))
			if !ok {
				secs := int(retry.Round(time.Second) / time.Second)
				if secs < 1 {
					secs = 1
				}
				w.Header().Set("Retry-After", strconv.Itoa(secs))
				if onLimit != nil {
					onLimit(w, r)
				} else {
					http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
				}
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
