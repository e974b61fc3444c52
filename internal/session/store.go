// Package session persists wizard state at the boundary: an explicit
// save/load keyed by an opaque resume token, never implicit browser-side
// storage. The same store backs the optional idempotency guard on order
// submission.
package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"refab-api/internal/cache"
)

const (
	// TokenPrefix is the prefix for all wizard resume tokens.
	TokenPrefix = "rfw_"

	// SessionTTL is how long a saved wizard session may be resumed.
	SessionTTL = 7 * 24 * time.Hour

	sessionKeyPrefix = "refab:wizard:"
)

// ErrNotFound indicates the token does not resolve to a saved session.
var ErrNotFound = errors.New("wizard session not found or expired")

// Store saves and loads serialized wizard state.
type Store struct {
	cache cache.Cache
	ttl   time.Duration
}

// NewStore creates a session store over the given cache backend.
func NewStore(c cache.Cache) *Store {
	return &Store{cache: c, ttl: SessionTTL}
}

// Save stores a serialized wizard state and returns the resume token.
func (s *Store) Save(ctx context.Context, state []byte) (string, error) {
	tokenBytes := make([]byte, 16)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", fmt.Errorf("failed to generate session token: %w", err)
	}
	token := TokenPrefix + hex.EncodeToString(tokenBytes)

	if err := s.cache.Set(ctx, sessionKeyPrefix+token, state, s.ttl); err != nil {
		return "", fmt.Errorf("failed to store wizard session: %w", err)
	}
	return token, nil
}

// Update overwrites an existing session in place, refreshing its TTL.
func (s *Store) Update(ctx context.Context, token string, state []byte) error {
	if !validToken(token) {
		return ErrNotFound
	}
	if _, err := s.cache.Get(ctx, sessionKeyPrefix+token); err != nil {
		if err == cache.ErrCacheMiss {
			return ErrNotFound
		}
		return err
	}
	return s.cache.Set(ctx, sessionKeyPrefix+token, state, s.ttl)
}

// Load retrieves the serialized wizard state for a resume token.
func (s *Store) Load(ctx context.Context, token string) ([]byte, error) {
	if !validToken(token) {
		return nil, ErrNotFound
	}
	data, err := s.cache.Get(ctx, sessionKeyPrefix+token)
	if err == cache.ErrCacheMiss {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load wizard session: %w", err)
	}
	return data, nil
}

// Delete discards a saved session.
func (s *Store) Delete(ctx context.Context, token string) error {
	if !validToken(token) {
		return nil
	}
	return s.cache.Delete(ctx, sessionKeyPrefix+token)
}

func validToken(token string) bool {
	return len(token) > len(TokenPrefix) && token[:len(TokenPrefix)] == TokenPrefix
}
