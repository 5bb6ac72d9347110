// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/contactbook/internal/platform/constants"
	"github.com/taibuivan/contactbook/internal/users/identity"
)

// # Session Cache

// cachedUser is the wire form of a snapshot. Unlike the API view it keeps the
// password hash and refresh token, because the snapshot stands in for a row.
type cachedUser struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash"`
	Confirmed    bool      `json:"confirmed"`
	RefreshToken *string   `json:"refresh_token"`
	Avatar       *string   `json:"avatar"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// RedisSessionCache implements [SessionCache] using Redis.
type RedisSessionCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSessionCache creates a Redis-backed cache whose entries expire after ttl.
func NewSessionCache(client *redis.Client, ttl time.Duration) *RedisSessionCache {
	return &RedisSessionCache{client: client, ttl: ttl}
}

func sessionKey(email string) string {
	return constants.RedisPrefixSessionUser + email
}

/*
Get retrieves the snapshot stored for email.

Parameters:
  - ctx: context.Context
  - email: string

Returns:
  - *identity.User: nil on a miss
  - error: Connectivity or decoding failures
*/
func (cache *RedisSessionCache) Get(ctx context.Context, email string) (*identity.User, error) {
	payload, err := cache.client.Get(ctx, sessionKey(email)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis_session_get_failed: %w", err)
	}

	var snapshot cachedUser
	if err := json.Unmarshal(payload, &snapshot); err != nil {
		return nil, fmt.Errorf("redis_session_decode_failed: %w", err)
	}

	return &identity.User{
		ID:           snapshot.ID,
		Username:     snapshot.Username,
		Email:        snapshot.Email,
		PasswordHash: snapshot.PasswordHash,
		Confirmed:    snapshot.Confirmed,
		RefreshToken: snapshot.RefreshToken,
		Avatar:       snapshot.Avatar,
		CreatedAt:    snapshot.CreatedAt,
		UpdatedAt:    snapshot.UpdatedAt,
	}, nil
}

/*
Set stores a snapshot of user and resets its TTL.

Parameters:
  - ctx: context.Context
  - user: *identity.User

Returns:
  - error: Encoding or storage failures
*/
func (cache *RedisSessionCache) Set(ctx context.Context, user *identity.User) error {
	payload, err := json.Marshal(cachedUser{
		ID:           user.ID,
		Username:     user.Username,
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
		Confirmed:    user.Confirmed,
		RefreshToken: user.RefreshToken,
		Avatar:       user.Avatar,
		CreatedAt:    user.CreatedAt,
		UpdatedAt:    user.UpdatedAt,
	})
	if err != nil {
		return fmt.Errorf("redis_session_encode_failed: %w", err)
	}

	if err := cache.client.Set(ctx, sessionKey(user.Email), payload, cache.ttl).Err(); err != nil {
		return fmt.Errorf("redis_session_set_failed: %w", err)
	}

	return nil
}

/*
Delete removes the snapshot for email.

Parameters:
  - ctx: context.Context
  - email: string

Returns:
  - error: Execution failures
*/
func (cache *RedisSessionCache) Delete(ctx context.Context, email string) error {
	if err := cache.client.Del(ctx, sessionKey(email)).Err(); err != nil {
		return fmt.Errorf("redis_session_delete_failed: %w", err)
	}
	return nil
}
