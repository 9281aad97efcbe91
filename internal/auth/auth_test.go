package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"finboard/internal/core"
	"finboard/internal/log"
	"finboard/internal/storage/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenHelpers(t *testing.T) {
	a, err := GenerateToken()
	require.NoError(t, err)
	b, err := GenerateToken()
	require.NoError(t, err)

	assert.Len(t, a, 64)
	assert.NotEqual(t, a, b)
	assert.Equal(t, HashToken(a), HashToken(a))
	assert.NotEqual(t, a, HashToken(a))
}

func TestHeaderMode(t *testing.T) {
	r, err := NewResolver(ModeHeader, nil, 0, log.Discard())
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/accounts", nil)
	_, err = r.Resolve(req)
	assert.ErrorIs(t, err, core.ErrUnauthorized)

	req.Header.Set(HeaderUserID, " alice ")
	id, err := r.Resolve(req)
	require.NoError(t, err)
	assert.Equal(t, "alice", id)
}

func TestSessionMode(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	r, err := NewResolver(ModeSession, store, time.Minute, log.Discard())
	require.NoError(t, err)
	sessions := NewSessions(store, time.Hour, r)

	token, expires, err := sessions.Issue(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, expires.After(time.Now()))

	bearer := httptest.NewRequest(http.MethodGet, "/api/accounts", nil)
	bearer.Header.Set("Authorization", "Bearer "+token)
	id, err := r.Resolve(bearer)
	require.NoError(t, err)
	assert.Equal(t, "alice", id)

	cookie := httptest.NewRequest(http.MethodGet, "/api/accounts", nil)
	cookie.AddCookie(&http.Cookie{Name: CookieName, Value: token})
	id, err = r.Resolve(cookie)
	require.NoError(t, err)
	assert.Equal(t, "alice", id)

	wrong := httptest.NewRequest(http.MethodGet, "/api/accounts", nil)
	wrong.Header.Set("Authorization", "Basic "+token)
	_, err = r.Resolve(wrong)
	assert.ErrorIs(t, err, core.ErrUnauthorized)

	require.NoError(t, sessions.Revoke(ctx, token))
	_, err = r.Resolve(bearer)
	assert.ErrorIs(t, err, core.ErrUnauthorized, "revocation clears the local cache")
}

func TestExpiredSession(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	r, err := NewResolver(ModeSession, store, 0, log.Discard())
	require.NoError(t, err)

	sessions := NewSessions(store, time.Hour, r)
	token, _, err := sessions.Issue(ctx, "bob")
	require.NoError(t, err)

	r.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	_, err = r.Resolve(req)
	assert.ErrorIs(t, err, core.ErrUnauthorized)

	sessions.now = r.now
	n, err := sessions.Purge(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestMiddleware(t *testing.T) {
	r, err := NewResolver(ModeHeader, nil, 0, log.Discard())
	require.NoError(t, err)

	var seen string
	h := r.Middleware(func(w http.ResponseWriter, _ *http.Request, _ error) {
		w.WriteHeader(http.StatusUnauthorized)
	})(http.HandlerFunc(func(_ http.ResponseWriter, req *http.Request) {
		seen = UserID(req.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/goals", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, seen)

	req := httptest.NewRequest(http.MethodGet, "/api/goals", nil)
	req.Header.Set(HeaderUserID, "carol")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "carol", seen)
}

func TestNewResolverRejectsBadConfig(t *testing.T) {
	_, err := NewResolver(ModeSession, nil, 0, log.Discard())
	assert.Error(t, err)
	_, err = NewResolver("oauth", nil, 0, log.Discard())
	assert.Error(t, err)
}
