package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"finboard/internal/cache"
	"finboard/internal/core"
	"finboard/internal/log"
	"finboard/internal/storage"
)

type Mode string

const (
	ModeSession Mode = "session"
	ModeHeader  Mode = "header"

	HeaderUserID = "X-User-ID"
	CookieName   = "session"

	maxUserIDLen = 128
	cacheEntries = 10000
)

// Resolver turns a request into a user id.
//
// In session mode the bearer token (or session cookie) is hashed and looked
// up in the session store; positive answers are cached for cacheTTL, so a
// revoked session can stay valid in other processes for at most that long.
// Header mode trusts X-User-ID and is meant for local development.
type Resolver struct {
	mode     Mode
	sessions storage.SessionStore
	cache    *cache.LRUCache[string]
	cacheTTL time.Duration
	now      func() time.Time
	logger   *log.Logger
}

func NewResolver(mode Mode, sessions storage.SessionStore, cacheTTL time.Duration, logger *log.Logger) (*Resolver, error) {
	switch mode {
	case ModeHeader:
	case ModeSession:
		if sessions == nil {
			return nil, errors.New("session mode requires a session store")
		}
	default:
		return nil, fmt.Errorf("unknown auth mode %q", mode)
	}

	r := &Resolver{
		mode:     mode,
		sessions: sessions,
		cacheTTL: cacheTTL,
		now:      time.Now,
		logger:   logger.WithComponent(log.ComponentAuth),
	}
	if cacheTTL > 0 {
		r.cache = cache.NewLRUCache[string](cacheEntries, cacheTTL)
	}
	return r, nil
}

// Cache exposes the session cache so it can be registered with a janitor.
// It is nil when caching is disabled.
func (r *Resolver) Cache() *cache.LRUCache[string] {
	return r.cache
}

// Resolve returns the user id of req or an error wrapping core.ErrUnauthorized.
// Other errors mean the session store failed.
func (r *Resolver) Resolve(req *http.Request) (string, error) {
	if r.mode == ModeHeader {
		id := strings.TrimSpace(req.Header.Get(HeaderUserID))
		if id == "" || len(id) > maxUserIDLen {
			return "", core.ErrUnauthorized
		}
		return id, nil
	}

	token := bearerToken(req)
	if token == "" {
		return "", core.ErrUnauthorized
	}
	hash := HashToken(token)

	if r.cache != nil {
		if userID, ok := r.cache.Get(hash); ok {
			return userID, nil
		}
	}

	userID, err := r.sessions.ResolveSession(req.Context(), hash, r.now())
	if err != nil {
		if errors.Is(err, core.ErrUnauthorized) {
			return "", err
		}
		return "", fmt.Errorf("resolve session: %w", err)
	}

	if r.cache != nil {
		r.cache.Set(hash, userID)
	}
	return userID, nil
}

// Forget drops a token from the local cache.
func (r *Resolver) Forget(token string) {
	if r.cache != nil {
		r.cache.Delete(HashToken(token))
	}
}

func bearerToken(req *http.Request) string {
	if h := req.Header.Get("Authorization"); h != "" {
		scheme, token, ok := strings.Cut(h, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
		return ""
	}
	if c, err := req.Cookie(CookieName); err == nil {
		return c.Value
	}
	return ""
}

// Middleware authenticates every request before it reaches next. fail writes
// the response for requests that cannot be authenticated.
func (r *Resolver) Middleware(fail func(http.ResponseWriter, *http.Request, error)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			userID, err := r.Resolve(req)
			if err != nil {
				if !errors.Is(err, core.ErrUnauthorized) {
					r.logger.ErrorContextErr(req.Context(), "Session lookup failed", err)
				}
				fail(w, req, err)
				return
			}
			ctx := WithUserID(req.Context(), userID)
			ctx = log.NewContext(ctx, log.FromContext(ctx).WithUser(userID))
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	}
}
