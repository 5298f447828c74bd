package redis

import (
	"context"
	stdliberrors "errors"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/turtacn/OrphaMine/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/OrphaMine/pkg/errors"
)

// CountCache stores literature counts keyed by the normalized lookup term.
// Only successful lookups are ever stored.
type CountCache struct {
	client *Client
	logger logging.Logger
	prefix string
	ttl    time.Duration
}

type CacheOption func(*CountCache)

func WithPrefix(prefix string) CacheOption {
	return func(c *CountCache) { c.prefix = prefix }
}

func WithTTL(ttl time.Duration) CacheOption {
	return func(c *CountCache) {
		if ttl >= 0 {
			c.ttl = ttl
		}
	}
}

// NewCountCache returns a cache over client.
func NewCountCache(client *Client, log logging.Logger, opts ...CacheOption) *CountCache {
	if log == nil {
		log = logging.NewNopLogger()
	}
	c := &CountCache{
		client: client,
		logger: log,
		prefix: "orphamine:",
		ttl:    24 * time.Hour,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *CountCache) fullKey(term string) string {
	return c.prefix + "pubmed:" + strings.ToLower(strings.TrimSpace(term))
}

// Get returns the cached count for term.  hit is false on a miss.
func (c *CountCache) Get(ctx context.Context, term string) (count int, hit bool, err error) {
	val, err := c.client.Get(ctx, c.fullKey(term)).Result()
	if stdliberrors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, errors.Wrap(err, errors.ErrCodeCacheError, "cache get")
	}
	n, err := strconv.Atoi(val)
	if err != nil || n < 0 {
		c.logger.Warn("discarding corrupt cache entry", logging.String("key", c.fullKey(term)))
		_ = c.client.Del(ctx, c.fullKey(term)).Err()
		return 0, false, nil
	}
	return n, true, nil
}

// Set stores count for term with the configured TTL.
func (c *CountCache) Set(ctx context.Context, term string, count int) error {
	if err := c.client.Set(ctx, c.fullKey(term), strconv.Itoa(count), c.ttl).Err(); err != nil {
		return errors.Wrap(err, errors.ErrCodeCacheError, "cache set")
	}
	return nil
}

//Personal.AI order the ending
