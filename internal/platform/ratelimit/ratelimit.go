// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package ratelimit implements a fixed-window request counter on Redis.

Each key gets a counter that lives for exactly one window: the first hit
creates it with an expiry, later hits only increment it. Counters are shared
by every API instance pointing at the same Redis, so the quota holds across
replicas.
*/
package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/contactbook/internal/platform/constants"
)

// Window allows a fixed number of hits per key inside every period.
type Window struct {
	client redis.Cmdable
	times  int64
	period time.Duration
}

// NewWindow returns a limiter allowing times hits per period for each key.
func NewWindow(client redis.Cmdable, times int, period time.Duration) (*Window, error) {
	if times < 1 || period <= 0 {
		return nil, errors.New("ratelimit: times and period must be positive")
	}
	return &Window{client: client, times: int64(times), period: period}, nil
}

/*
Allow records one hit for key and reports whether it fits in the current window.

When the quota is spent the second result is the time left until the window
resets. INCR and EXPIRE NX run in one pipeline so a counter can never be
left without an expiry.
*/
func (window *Window) Allow(ctx context.Context, key string) (bool, time.Duration, error) {
	redisKey := constants.RedisPrefixRateLimit + key

	var (
		count *redis.IntCmd
		ttl   *redis.DurationCmd
	)

	_, err := window.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		count = pipe.Incr(ctx, redisKey)
		pipe.ExpireNX(ctx, redisKey, window.period)
		ttl = pipe.PTTL(ctx, redisKey)
		return nil
	})
	if err != nil {
		return false, 0, fmt.Errorf("ratelimit_window_failed: %w", err)
	}

	if count.Val() <= window.times {
		return true, 0, nil
	}

	retryAfter := ttl.Val()
	if retryAfter <= 0 {
		retryAfter = window.period
	}
	return false, retryAfter, nil
}
