// Package cache 是公开接口的 Redis 读缓存。缓存是尽力而为的：
// 未配置 Redis 或 Redis 不可用时，所有操作退化为直接读数据库。
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	PrefixPosts    = "posts:"
	PrefixTaxonomy = "taxonomy:"

	DefaultTTL = 5 * time.Minute
)

// Cache wraps a redis client. A nil *Cache is valid and caches nothing.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
	log    zerolog.Logger
}

// New wraps an existing client.
func New(client *redis.Client, ttl time.Duration, logger zerolog.Logger) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{client: client, ttl: ttl, log: logger.With().Str("component", "cache").Logger()}
}

// Connect dials addr, which is either a redis:// URL or a host:port. An empty
// addr or a failed ping disables caching and returns nil.
func Connect(ctx context.Context, addr string, logger zerolog.Logger) *Cache {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		logger.Info().Msg("redis not configured, public cache disabled")
		return nil
	}

	var opts *redis.Options
	if strings.Contains(addr, "://") {
		parsed, err := redis.ParseURL(addr)
		if err != nil {
			logger.Warn().Err(err).Msg("invalid redis url, continuing without cache")
			return nil
		}
		opts = parsed
	} else {
		opts = &redis.Options{Addr: addr}
	}

	client := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Warn().Err(err).Str("addr", opts.Addr).Msg("redis unreachable, continuing without cache")
		_ = client.Close()
		return nil
	}
	logger.Info().Str("addr", opts.Addr).Msg("redis connected")
	return New(client, DefaultTTL, logger)
}

func (c *Cache) enabled() bool {
	return c != nil && c.client != nil
}

// GetJSON reads key into dest and reports whether it was found.
func (c *Cache) GetJSON(ctx context.Context, key string, dest any) (bool, error) {
	if !c.enabled() {
		return false, nil
	}
	raw, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, err
	}
	return true, nil
}

// SetJSON stores v under key with the cache TTL.
func (c *Cache) SetJSON(ctx context.Context, key string, v any) error {
	if !c.enabled() {
		return nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, raw, c.ttl).Err()
}

// Aside serves key from redis, or calls fetch to fill dest and stores the
// result. Redis errors are logged and never fail the read.
func (c *Cache) Aside(ctx context.Context, key string, dest any, fetch func() error) error {
	found, err := c.GetJSON(ctx, key, dest)
	if err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("cache read failed")
	}
	if found {
		return nil
	}
	if err := fetch(); err != nil {
		return err
	}
	if err := c.SetJSON(ctx, key, dest); err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("cache write failed")
	}
	return nil
}

// DeletePrefix removes every key starting with prefix.
func (c *Cache) DeletePrefix(ctx context.Context, prefix string) error {
	if !c.enabled() {
		return nil
	}
	iter := c.client.Scan(ctx, 0, prefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}

// InvalidatePosts drops every cached post listing and post page.
func (c *Cache) InvalidatePosts(ctx context.Context) {
	if err := c.DeletePrefix(ctx, PrefixPosts); err != nil {
		c.log.Warn().Err(err).Msg("post cache invalidation failed")
	}
}

// InvalidateTaxonomy drops cached category and tag lists. Post listings embed
// category and tag names, so they go too.
func (c *Cache) InvalidateTaxonomy(ctx context.Context) {
	if err := c.DeletePrefix(ctx, PrefixTaxonomy); err != nil {
		c.log.Warn().Err(err).Msg("taxonomy cache invalidation failed")
	}
	c.InvalidatePosts(ctx)
}

// Close releases the redis connection.
func (c *Cache) Close() error {
	if !c.enabled() {
		return nil
	}
	return c.client.Close()
}

// PostListKey is the key of a filtered public post listing.
func PostListKey(category, tag, lang string) string {
	return fmt.Sprintf("%slist:c=%s:t=%s:l=%s", PrefixPosts, category, tag, lang)
}

// PostKey is the key of one rendered public post.
func PostKey(slug, lang string) string {
	return fmt.Sprintf("%sslug:%s:l=%s", PrefixPosts, slug, lang)
}

// TaxonomyKey is the key of the category or tag list.
func TaxonomyKey(kind string) string {
	return PrefixTaxonomy + kind
}
