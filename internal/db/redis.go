package db

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisOptions tunes the Redis client. Zero values keep the URL settings.
type RedisOptions struct {
	ClientName  string
	DialTimeout time.Duration
}

// NewRedisClient connects to the Redis instance behind redisURL, which must
// use the redis:// or rediss:// scheme. The client is closed again when the
// initial PING fails.
func NewRedisClient(ctx context.Context, redisURL string, opts RedisOptions) (*redis.Client, error) {
	ro, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis.ParseURL: %w", err)
	}
	if opts.ClientName != "" {
		ro.ClientName = opts.ClientName
	}
	if opts.DialTimeout > 0 {
		ro.DialTimeout = opts.DialTimeout
	}

	rdb := redis.NewClient(ro)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping %s: %w", ro.Addr, err)
	}
	return rdb, nil
}
