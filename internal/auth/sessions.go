package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"finboard/internal/core"
	"finboard/internal/storage"
)

// Sessions issues and revokes session tokens.
type Sessions struct {
	store    storage.SessionStore
	ttl      time.Duration
	now      func() time.Time
	resolver *Resolver
}

// NewSessions builds a session manager. resolver may be nil; when set, revoked
// tokens are also dropped from its cache.
func NewSessions(store storage.SessionStore, ttl time.Duration, resolver *Resolver) *Sessions {
	return &Sessions{store: store, ttl: ttl, now: time.Now, resolver: resolver}
}

// Issue creates a session for userID and returns the raw token. The token is
// shown once; only its hash is stored.
func (s *Sessions) Issue(ctx context.Context, userID string) (string, time.Time, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" || len(userID) > maxUserIDLen {
		return "", time.Time{}, core.Invalid("userId", "must be 1-128 characters")
	}

	token, err := GenerateToken()
	if err != nil {
		return "", time.Time{}, err
	}
	expiresAt := s.now().Add(s.ttl)
	if err := s.store.CreateSession(ctx, HashToken(token), userID, expiresAt); err != nil {
		return "", time.Time{}, fmt.Errorf("issue session: %w", err)
	}
	return token, expiresAt, nil
}

func (s *Sessions) Revoke(ctx context.Context, token string) error {
	if err := s.store.DeleteSession(ctx, HashToken(token)); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	if s.resolver != nil {
		s.resolver.Forget(token)
	}
	return nil
}

// Purge deletes expired sessions and returns how many were removed.
func (s *Sessions) Purge(ctx context.Context) (int, error) {
	return s.store.PurgeExpiredSessions(ctx, s.now())
}
