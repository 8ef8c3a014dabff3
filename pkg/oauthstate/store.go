// Package oauthstate provides a Redis-backed implementation of the
// auth.StateStore contract: one-time CSRF state tokens with expiry.
//
// Consumption is atomic (GETDEL), so concurrent callback requests carrying
// the same state cannot both succeed.
package oauthstate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/authkit/authkit/pkg/auth"
)

// ErrStateAlreadyExpired is returned when StoreState is asked to persist a
// state whose expiry is not in the future.
var ErrStateAlreadyExpired = errors.New("oauthstate: state expiry is not in the future")

const defaultPrefix = "oauth:state:"

// Ensure Store implements auth.StateStore.
var _ auth.StateStore = (*Store)(nil)

// Store keeps OAuth state tokens in Redis.
type Store struct {
	client redis.UniversalClient
	prefix string
}

// Option configures a Store during construction.
type Option func(*Store)

// WithPrefix overrides the key prefix state tokens are stored under.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// New creates a state store on top of an established Redis client
// (see pkg/redis.Connect).
func New(client redis.UniversalClient, opts ...Option) *Store {
	s := &Store{
		client: client,
		prefix: defaultPrefix,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// StoreState persists the state token until expiresAt. Redis evicts the key
// on expiry, so stale states fail consumption without cleanup jobs.
func (s *Store) StoreState(ctx context.Context, state string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return ErrStateAlreadyExpired
	}
	if err := s.client.Set(ctx, s.key(state), "1", ttl).Err(); err != nil {
		return fmt.Errorf("failed to store state: %w", err)
	}
	return nil
}

// ConsumeState atomically checks and removes the state token. A missing or
// expired token maps to auth.ErrStateNotFound.
func (s *Store) ConsumeState(ctx context.Context, state string) error {
	err := s.client.GetDel(ctx, s.key(state)).Err()
	if errors.Is(err, redis.Nil) {
		return auth.ErrStateNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to consume state: %w", err)
	}
	return nil
}

func (s *Store) key(state string) string {
	return s.prefix + state
}
