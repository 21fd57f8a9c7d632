package service

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"hirelane/api/internal/models"
)

// RedisCooldown implements RateLimiter with a last-issued marker per
// (email, kind) that expires with the window. SetNX makes check-and-record
// a single atomic step, so two concurrent requests admit exactly one.
type RedisCooldown struct {
	client *redis.Client
	window time.Duration
}

func NewRedisCooldown(client *redis.Client, window time.Duration) *RedisCooldown {
	return &RedisCooldown{client: client, window: window}
}

func (c *RedisCooldown) CheckAndRecord(ctx context.Context, email string, kind models.TokenKind) error {
	key := fmt.Sprintf("cooldown:%s:%s", kind, email)

	ok, err := c.client.SetNX(ctx, key, time.Now().Unix(), c.window).Result()
	if err != nil {
		return fmt.Errorf("cooldown check: %w", err)
	}
	if ok {
		return nil
	}

	remaining := c.window
	if ttl, err := c.client.TTL(ctx, key).Result(); err == nil && ttl > 0 {
		remaining = ttl
	}
	return &CooldownError{Remaining: remaining}
}
