package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/vitaldent/clinic-site/pkg/logging"
)

const defaultCacheKey = "catalog:treatments"

// CachedSource is a read-through Redis cache in front of another source.
// Only successful loads are cached.
type CachedSource struct {
	inner  Source
	redis  *redis.Client
	key    string
	ttl    time.Duration
	logger *logging.Logger
}

// NewCachedSource wraps inner. A non-positive ttl disables expiry.
func NewCachedSource(inner Source, client *redis.Client, ttl time.Duration, logger *logging.Logger) *CachedSource {
	if inner == nil {
		panic("catalog: inner source required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &CachedSource{inner: inner, redis: client, key: defaultCacheKey, ttl: ttl, logger: logger}
}

// Load returns the cached sequence when present, otherwise loads and stores it.
func (c *CachedSource) Load(ctx context.Context) ([]Treatment, error) {
	if c.redis == nil {
		return c.inner.Load(ctx)
	}

	data, err := c.redis.Get(ctx, c.key).Bytes()
	if err == nil {
		var records []Record
		if jsonErr := json.Unmarshal(data, &records); jsonErr == nil {
			out := make([]Treatment, 0, len(records))
			for _, rec := range records {
				out = append(out, Normalize(rec))
			}
			return out, nil
		}
		c.logger.Warn("discarding undecodable catalog cache entry", "key", c.key)
	} else if !errors.Is(err, redis.Nil) {
		c.logger.Warn("catalog cache read failed", "error", err)
	}

	treatments, err := c.inner.Load(ctx)
	if err != nil {
		return nil, err
	}
	if err := c.store(ctx, treatments); err != nil {
		c.logger.Warn("catalog cache write failed", "error", err)
	}
	return treatments, nil
}

// Invalidate drops the cached sequence, e.g. after staff edits.
func (c *CachedSource) Invalidate(ctx context.Context) error {
	if c.redis == nil {
		return nil
	}
	if err := c.redis.Del(ctx, c.key).Err(); err != nil {
		return fmt.Errorf("catalog: invalidate cache: %w", err)
	}
	return nil
}

func (c *CachedSource) store(ctx context.Context, treatments []Treatment) error {
	data, err := json.Marshal(Records(treatments))
	if err != nil {
		return fmt.Errorf("catalog: encode cache: %w", err)
	}
	if err := c.redis.Set(ctx, c.key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("catalog: write cache: %w", err)
	}
	return nil
}
