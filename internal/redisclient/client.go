package redisclient

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

type Client struct {
	rdb *redis.Client
}

// NewClient creates a new Redis client
func NewClient(addr, password string, db int) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// GetClient returns the underlying Redis client
func (c *Client) GetClient() *redis.Client {
	return c.rdb
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

// Ping checks connectivity (readiness probe)
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// InvalidateTokensBefore records that all tokens for the user issued before
// the given time are revoked. The key expires with the longest-lived token,
// after which any surviving token has expired on its own.
func (c *Client) InvalidateTokensBefore(ctx context.Context, userID int64, at time.Time, ttl time.Duration) error {
	key := fmt.Sprintf("token_invalid_before:%d", userID)
	return c.rdb.Set(ctx, key, at.Unix(), ttl).Err()
}

// TokensInvalidBefore returns the invalidation cutoff for a user, if any
func (c *Client) TokensInvalidBefore(ctx context.Context, userID int64) (time.Time, bool, error) {
	key := fmt.Sprintf("token_invalid_before:%d", userID)

	val, err := c.rdb.Get(ctx, key).Result()
	if err == redis.Nil {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, err
	}

	unix, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("corrupt invalidation value for user %d: %w", userID, err)
	}

	return time.Unix(unix, 0), true, nil
}
