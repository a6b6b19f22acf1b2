package credentials

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const (
	fieldAccess  = "access"
	fieldRefresh = "refresh"
	fieldUser    = "user"
)

// RedisStore keeps the session as one Redis hash, so several gateway
// instances can share it.
type RedisStore struct {
	rdb    *redis.Client
	prefix string
}

// NewRedisStore connects to redisURL (redis://:pass@host:6379/0) and pings it.
// An empty prefix defaults to "expense:session:".
func NewRedisStore(ctx context.Context, redisURL, prefix string) (*RedisStore, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}

	rdb := redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return NewRedisStoreFromClient(rdb, prefix), nil
}

func NewRedisStoreFromClient(rdb *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "expense:session:"
	}
	return &RedisStore{rdb: rdb, prefix: prefix}
}

func (r *RedisStore) key() string { return r.prefix + "current" }

func (r *RedisStore) GetAccessToken(ctx context.Context) (string, error) {
	return r.get(ctx, fieldAccess)
}

func (r *RedisStore) SetAccessToken(ctx context.Context, token string) error {
	if token == "" {
		return ErrEmptyToken
	}
	return r.rdb.HSet(ctx, r.key(), fieldAccess, token).Err()
}

func (r *RedisStore) GetRefreshToken(ctx context.Context) (string, error) {
	return r.get(ctx, fieldRefresh)
}

func (r *RedisStore) SetRefreshToken(ctx context.Context, token string) error {
	if token == "" {
		return ErrEmptyToken
	}
	return r.rdb.HSet(ctx, r.key(), fieldRefresh, token).Err()
}

func (r *RedisStore) ClearAll(ctx context.Context) error {
	return r.rdb.Del(ctx, r.key()).Err()
}

func (r *RedisStore) GetUser(ctx context.Context) (*User, error) {
	raw, err := r.get(ctx, fieldUser)
	if err != nil || raw == "" {
		return nil, err
	}

	var u User
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		return nil, fmt.Errorf("failed to parse stored user: %w", err)
	}
	return &u, nil
}

func (r *RedisStore) SetUser(ctx context.Context, user *User) error {
	if user == nil || *user == (User{}) {
		return ErrEmptyUser
	}
	b, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to marshal user: %w", err)
	}
	return r.rdb.HSet(ctx, r.key(), fieldUser, string(b)).Err()
}

func (r *RedisStore) Close() error { return r.rdb.Close() }

func (r *RedisStore) get(ctx context.Context, field string) (string, error) {
	v, err := r.rdb.HGet(ctx, r.key(), field).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return v, err
}
