package generation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Sternrassler/pokedex-client/pkg/logging"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// KeyPrefix namespaces the Redis keys holding session generations.
const KeyPrefix = "pokedex:generation:"

// DefaultTTL expires an idle session's counter.
const DefaultTTL = 30 * time.Minute

// RedisCounter keeps the generation in Redis so that every server replica
// handling the same UI session agrees on which search is current.
type RedisCounter struct {
	redis  *redis.Client
	key    string
	ttl    time.Duration
	logger zerolog.Logger
}

// NewRedisCounter creates a counter for one session id.
func NewRedisCounter(redisClient *redis.Client, sessionID string, ttl time.Duration) *RedisCounter {
	if redisClient == nil {
		panic("redis client cannot be nil")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisCounter{
		redis:  redisClient,
		key:    KeyPrefix + sessionID,
		ttl:    ttl,
		logger: logging.NewLogger(logging.ComponentGeneration),
	}
}

// Key returns the Redis key backing this counter.
func (c *RedisCounter) Key() string {
	return c.key
}

// Next implements Counter. INCR and EXPIRE run in one transaction.
func (c *RedisCounter) Next(ctx context.Context) (uint64, error) {
	pipe := c.redis.TxPipeline()
	incr := pipe.Incr(ctx, c.key)
	pipe.Expire(ctx, c.key, c.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("redis incr generation: %w", err)
	}
	c.logger.Debug().Str("key", c.key).Int64("generation", incr.Val()).Msg("Generation advanced")
	return uint64(incr.Val()), nil
}

// Touch implements Toucher. A missing key stays missing.
func (c *RedisCounter) Touch(ctx context.Context) error {
	if err := c.redis.Expire(ctx, c.key, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis expire generation: %w", err)
	}
	return nil
}

// Current implements Counter. A missing key is generation 0.
func (c *RedisCounter) Current(ctx context.Context) (uint64, error) {
	n, err := c.redis.Get(ctx, c.key).Uint64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("redis get generation: %w", err)
	}
	return n, nil
}
