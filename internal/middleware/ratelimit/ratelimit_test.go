package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newTestLimiter(limit int, now *time.Time) *Limiter {
	l := NewLimiter(Config{RequestsPerMinute: limit, IdleTTL: 5 * time.Minute})
	l.now = func() time.Time { return *now }
	return l
}

func TestAllowFixedWindow(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	l := newTestLimiter(2, &now)

	ok, _ := l.Allow("a")
	assert.True(t, ok)
	ok, _ = l.Allow("a")
	assert.True(t, ok)

	now = now.Add(20 * time.Second)
	ok, retry := l.Allow("a")
	assert.False(t, ok)
	assert.Equal(t, 40*time.Second, retry)

	ok, _ = l.Allow("b")
	assert.True(t, ok, "clients are limited independently")

	now = now.Add(40 * time.Second)
	ok, _ = l.Allow("a")
	assert.True(t, ok, "a new window starts after a minute")

	assert.Equal(t, int64(1), l.GetMetrics().Rejected)
}

func TestDisabledLimiter(t *testing.T) {
	now := time.Now()
	l := newTestLimiter(0, &now)
	for i := 0; i < 1000; i++ {
		ok, _ := l.Allow("a")
		assert.True(t, ok)
	}
}

func TestCleanup(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	l := newTestLimiter(10, &now)
	l.Allow("old")
	now = now.Add(4 * time.Minute)
	l.Allow("new")
	now = now.Add(2 * time.Minute)

	assert.Equal(t, 1, l.Cleanup())
	assert.Equal(t, int64(1), l.GetMetrics().ClientCount)
}

func TestMiddlewareSetsRetryAfter(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	l := newTestLimiter(1, &now)
	h := l.Middleware(func(*http.Request) string { return "ip" }, nil)(
		http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) }))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/accounts", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/accounts", nil))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))
}
