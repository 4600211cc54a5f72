// Package cache opens the Redis connection shared by the report cache, the
// idempotency keys and the job queue.
package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
)

const clientName = "odyssey-group"

// Options parses REDIS_ADDR. Both host:port and redis:// or rediss:// URLs
// are accepted.
func Options(addr string) (*redis.Options, error) {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return nil, fmt.Errorf("platform/cache: empty redis address")
	}
	if strings.HasPrefix(addr, "redis://") || strings.HasPrefix(addr, "rediss://") {
		opts, err := redis.ParseURL(addr)
		if err != nil {
			return nil, fmt.Errorf("platform/cache: %w", err)
		}
		opts.ClientName = clientName
		return opts, nil
	}
	return &redis.Options{Addr: addr, ClientName: clientName}, nil
}

// QueueOptions converts addr into the connection options the job queue uses.
func QueueOptions(addr string) (asynq.RedisClientOpt, error) {
	opts, err := Options(addr)
	if err != nil {
		return asynq.RedisClientOpt{}, err
	}
	return asynq.RedisClientOpt{
		Addr:      opts.Addr,
		Username:  opts.Username,
		Password:  opts.Password,
		DB:        opts.DB,
		TLSConfig: opts.TLSConfig,
	}, nil
}

// New creates a Redis client and verifies connectivity.
func New(ctx context.Context, addr string) (*redis.Client, error) {
	opts, err := Options(addr)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("platform/cache: ping %s: %w", opts.Addr, err)
	}
	return client, nil
}

// Status values reported by Check.
const (
	StatusDisabled    = "disabled"
	StatusOK          = "ok"
	StatusUnavailable = "unavailable"
)

// Check pings client for a health report. A nil client is disabled.
func Check(ctx context.Context, client *redis.Client) string {
	if client == nil {
		return StatusDisabled
	}
	ctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return StatusUnavailable
	}
	return StatusOK
}
