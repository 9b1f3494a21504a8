// Package redis holds the Redis connection and the account view cache built
// on it.
package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// Options selects the Redis server. Zero PoolSize and DialTimeout take the
// defaults below.
type Options struct {
	Addr        string
	Password    string
	DB          int
	PoolSize    int
	DialTimeout time.Duration
}

const (
	defaultPoolSize    = 10
	defaultDialTimeout = 5 * time.Second
	commandTimeout     = 3 * time.Second
)

// Connect dials Redis and verifies the server answers PING before returning
// the client. The caller owns the client and must Close it.
func Connect(ctx context.Context, opts Options) (*goredis.Client, error) {
	if opts.PoolSize == 0 {
		opts.PoolSize = defaultPoolSize
	}
	if opts.DialTimeout == 0 {
		opts.DialTimeout = defaultDialTimeout
	}

	client := goredis.NewClient(&goredis.Options{
		Addr:         opts.Addr,
		Password:     opts.Password,
		DB:           opts.DB,
		PoolSize:     opts.PoolSize,
		DialTimeout:  opts.DialTimeout,
		ReadTimeout:  commandTimeout,
		WriteTimeout: commandTimeout,
	})

	pingCtx, cancel := context.WithTimeout(ctx, opts.DialTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis %s unreachable: %w", opts.Addr, err)
	}
	return client, nil
}
