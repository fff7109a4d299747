// Package auth resolves request identity. Login, registration and password
// reset live with the external identity provider; this package only verifies
// the opaque session tokens that provider hands out.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/gstbill/gstbill/internal/shared"
)

const tokenKeyPrefix = "auth:token:"

// TokenStore resolves opaque bearer tokens to owner ids.
type TokenStore interface {
	Resolve(ctx context.Context, token string) (string, error)
}

// RedisTokenStore verifies tokens against the session records the identity
// provider integration writes into Redis.
type RedisTokenStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisTokenStore constructs a RedisTokenStore.
func NewRedisTokenStore(client *redis.Client, ttl time.Duration) *RedisTokenStore {
	return &RedisTokenStore{client: client, ttl: ttl}
}

// Resolve returns the owner id a token belongs to. Unknown or expired tokens
// yield shared.ErrUnauthenticated.
func (s *RedisTokenStore) Resolve(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", shared.ErrUnauthenticated
	}
	ownerID, err := s.client.Get(ctx, tokenKeyPrefix+token).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", shared.ErrUnauthenticated
		}
		return "", fmt.Errorf("auth: resolve token: %w", err)
	}
	if ownerID == "" {
		return "", shared.ErrUnauthenticated
	}
	return ownerID, nil
}

// Grant registers a token for an owner. Used by the identity provider
// integration and by tests.
func (s *RedisTokenStore) Grant(ctx context.Context, ownerID string) (string, error) {
	token := uuid.NewString()
	if err := s.client.Set(ctx, tokenKeyPrefix+token, ownerID, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("auth: grant token: %w", err)
	}
	return token, nil
}

// Revoke removes a token.
func (s *RedisTokenStore) Revoke(ctx context.Context, token string) error {
	if err := s.client.Del(ctx, tokenKeyPrefix+token).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("auth: revoke token: %w", err)
	}
	return nil
}
