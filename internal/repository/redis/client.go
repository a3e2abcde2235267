// Package redis backs rate limiting and dashboard view sessions with Redis.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/Rrens/floorboard/internal/config"
)

const (
	connectAttempts = 3
	connectBackoff  = 250 * time.Millisecond
	commandTimeout  = 2 * time.Second
)

// Client is the connection shared by the view store and the rate limiter.
type Client struct {
	rdb *redis.Client
}

// NewClient dials Redis and waits for a PONG. Commands time out quickly so a
// stalled server degrades rate limiting instead of blocking requests.
func NewClient(ctx context.Context, cfg config.RedisConfig) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  commandTimeout,
		ReadTimeout:  commandTimeout,
		WriteTimeout: commandTimeout,
	})

	wait := connectBackoff
	for attempt := 1; ; attempt++ {
		err := rdb.Ping(ctx).Err()
		if err == nil {
			break
		}
		if attempt == connectAttempts {
			_ = rdb.Close()
			return nil, fmt.Errorf("redis %s unreachable: %w", cfg.Addr(), err)
		}
		log.Warn().Err(err).Int("attempt", attempt).Dur("retry_in", wait).Msg("Redis not ready")
		select {
		case <-ctx.Done():
			_ = rdb.Close()
			return nil, fmt.Errorf("redis %s unreachable: %w", cfg.Addr(), ctx.Err())
		case <-time.After(wait):
		}
		wait *= 2
	}

	log.Info().Str("addr", cfg.Addr()).Int("db", cfg.DB).Msg("Redis connected")
	return &Client{rdb: rdb}, nil
}

// Close closes the connection pool.
func (c *Client) Close() error {
	return c.rdb.Close()
}

// Ping reports readiness.
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}
