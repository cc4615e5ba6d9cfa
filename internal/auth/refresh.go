package auth

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrRefreshTokenInvalid is returned for unknown or expired tokens.
var ErrRefreshTokenInvalid = errors.New("refresh token invalid or expired")

const refreshKeyPrefix = "refresh:"

// RefreshStore persists opaque refresh tokens with a TTL.
type RefreshStore interface {
	Issue(ctx context.Context, userID string) (string, error)
	// Redeem validates the token, revokes it, and returns the owning
	// user ID. Each token is single-use; refresh rotates the token.
	Redeem(ctx context.Context, token string) (string, error)
	Revoke(ctx context.Context, token string) error
}

type redisRefreshStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisRefreshStore builds a Redis-backed refresh token store.
func NewRedisRefreshStore(client *redis.Client, ttl time.Duration) RefreshStore {
	return &redisRefreshStore{client: client, ttl: ttl}
}

func (s *redisRefreshStore) Issue(ctx context.Context, userID string) (string, error) {
	token := uuid.NewString()
	if err := s.client.Set(ctx, refreshKeyPrefix+token, userID, s.ttl).Err(); err != nil {
		return "", err
	}
	return token, nil
}

func (s *redisRefreshStore) Redeem(ctx context.Context, token string) (string, error) {
	key := refreshKeyPrefix + token
	userID, err := s.client.GetDel(ctx, key).Result()
	if err == redis.Nil {
		return "", ErrRefreshTokenInvalid
	}
	if err != nil {
		return "", err
	}
	return userID, nil
}

func (s *redisRefreshStore) Revoke(ctx context.Context, token string) error {
	return s.client.Del(ctx, refreshKeyPrefix+token).Err()
}
