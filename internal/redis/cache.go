package redis

import (
	"context"
	"encoding/json"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// tombstone marks a key whose view was invalidated. While it lives, Add
// cannot repopulate the key, so a read that loaded the row before the write
// committed cannot cache it afterwards.
const tombstone = "\x00invalidated"

// DefaultTombstoneTTL bounds how long a read may take between loading a row
// and caching it without risking a stale entry.
const DefaultTombstoneTTL = 30 * time.Second

// ViewCache is a JSON-backed Redis cache for one view type T. A zero ttl
// keeps entries until they are invalidated.
type ViewCache[T any] struct {
	client       goredis.Cmdable
	ttl          time.Duration
	tombstoneTTL time.Duration
	log          zerolog.Logger
}

func NewViewCache[T any](client goredis.Cmdable, ttl time.Duration, log zerolog.Logger) *ViewCache[T] {
	return &ViewCache[T]{client: client, ttl: ttl, tombstoneTTL: DefaultTombstoneTTL, log: log}
}

// Get returns (nil, false) on a miss, a tombstone, a Redis error, or an
// entry that no longer decodes into T.
func (c *ViewCache[T]) Get(ctx context.Context, key string) (*T, bool) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != goredis.Nil {
			c.log.Warn().Err(err).Str("key", key).Msg("view cache read failed")
		}
		return nil, false
	}
	if string(data) == tombstone {
		return nil, false
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("view cache entry undecodable")
		return nil, false
	}
	return &v, true
}

// Add stores value under key unless the key already holds an entry or a
// tombstone. Failures are logged, not returned.
func (c *ViewCache[T]) Add(ctx context.Context, key string, value *T) {
	data, err := json.Marshal(value)
	if err != nil {
		c.log.Error().Err(err).Str("key", key).Msg("view cache marshal failed")
		return
	}
	if err := c.client.SetNX(ctx, key, data, c.ttl).Err(); err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("view cache write failed")
	}
}

// Invalidate replaces any entry under key with a tombstone. It returns the
// error so callers that must not serve a stale entry can react.
func (c *ViewCache[T]) Invalidate(ctx context.Context, key string) error {
	if err := c.client.Set(ctx, key, tombstone, c.tombstoneTTL).Err(); err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("view cache invalidate failed")
		return err
	}
	return nil
}
