// Package cache provides Redis read-through caching for the market-data providers.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"pe_backend/internal/feature/peratio/domain/entity"
	"pe_backend/internal/feature/peratio/usecase"
)

// MarketDataCache decorates price and earnings providers with Redis caching.
// A nil client disables caching and every call goes to the inner provider.
//
// Keys are laid out per symbol so one SCAN pattern invalidates everything
// cached for it:
//
//	{namespace}:{symbol}:prices:{since}
//	{namespace}:{symbol}:earnings
type MarketDataCache struct {
	rdb       *redis.Client
	ttl       time.Duration
	namespace string
	// expiry が設定されている場合は ttl より優先されます
	expiry func() time.Duration
}

var _ usecase.CacheInvalidator = (*MarketDataCache)(nil)

// NewMarketDataCache returns a cache with the given TTL and key namespace.
// If ttl is 0 it defaults to 5 minutes. If namespace is empty it uses "marketdata".
func NewMarketDataCache(rdb *redis.Client, ttl time.Duration, namespace string) *MarketDataCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if namespace == "" {
		namespace = "marketdata"
	}
	return &MarketDataCache{rdb: rdb, ttl: ttl, namespace: namespace}
}

// ExpireAtHour makes entries live until the next hour:00 in loc instead of a fixed TTL,
// so that cached series roll over together with the daily upstream refresh.
func (c *MarketDataCache) ExpireAtHour(hour int, loc *time.Location) *MarketDataCache {
	c.expiry = func() time.Duration {
		return TimeUntilNextRefresh(time.Now(), hour, loc)
	}
	return c
}

func (c *MarketDataCache) expiration() time.Duration {
	if c.expiry != nil {
		return c.expiry()
	}
	return c.ttl
}

// Prices wraps a PriceProvider.
func (c *MarketDataCache) Prices(inner usecase.PriceProvider) *CachingPriceProvider {
	return &CachingPriceProvider{cache: c, inner: inner}
}

// Earnings wraps an EarningsProvider.
func (c *MarketDataCache) Earnings(inner usecase.EarningsProvider) *CachingEarningsProvider {
	return &CachingEarningsProvider{cache: c, inner: inner}
}

// Invalidate deletes every cached entry for symbol.
func (c *MarketDataCache) Invalidate(ctx context.Context, symbol string) error {
	if c.rdb == nil {
		return nil
	}
	return c.deleteByPattern(ctx, c.symbolPrefix(symbol)+"*")
}

// CachingPriceProvider is a read-through cache in front of a PriceProvider.
type CachingPriceProvider struct {
	cache *MarketDataCache
	inner usecase.PriceProvider
}

var _ usecase.PriceProvider = (*CachingPriceProvider)(nil)

// GetWeeklyPrices checks the cache first, then falls back to the inner provider.
func (p *CachingPriceProvider) GetWeeklyPrices(ctx context.Context, symbol string, since time.Time) ([]entity.PricePoint, error) {
	key := p.cache.symbolPrefix(symbol) + "prices:" + entity.FormatDate(since)
	return readThrough(ctx, p.cache, key, func() ([]entity.PricePoint, error) {
		return p.inner.GetWeeklyPrices(ctx, symbol, since)
	})
}

// CachingEarningsProvider is a read-through cache in front of an EarningsProvider.
type CachingEarningsProvider struct {
	cache *MarketDataCache
	inner usecase.EarningsProvider
}

var _ usecase.EarningsProvider = (*CachingEarningsProvider)(nil)

// GetEarnings checks the cache first, then falls back to the inner provider.
func (p *CachingEarningsProvider) GetEarnings(ctx context.Context, symbol string) ([]entity.EarningsRecord, error) {
	key := p.cache.symbolPrefix(symbol) + "earnings"
	return readThrough(ctx, p.cache, key, func() ([]entity.EarningsRecord, error) {
		return p.inner.GetEarnings(ctx, symbol)
	})
}

// readThrough returns the cached slice for key, or loads, stores and returns it.
// Empty results are not cached so that a newly listed symbol is picked up on the next request.
func readThrough[T any](ctx context.Context, c *MarketDataCache, key string, load func() ([]T, error)) ([]T, error) {
	// Bypass cache if Redis is not configured
	if c.rdb == nil {
		return load()
	}

	// 1) Check cache
	if b, err := c.rdb.Get(ctx, key).Bytes(); err == nil && len(b) > 0 {
		var out []T
		if err := json.Unmarshal(b, &out); err == nil {
			return out, nil
		}
		// Delete corrupted cache entry
		_ = c.rdb.Del(ctx, key).Err()
	}

	// 2) Fallback to provider
	out, err := load()
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return out, nil
	}

	// 3) Store in cache (best effort)
	if b, err := json.Marshal(out); err == nil {
		_ = c.rdb.Set(ctx, key, b, c.expiration()).Err()
	}
	return out, nil
}

// symbolPrefix returns "{namespace}:{symbol}:".
func (c *MarketDataCache) symbolPrefix(symbol string) string {
	return fmt.Sprintf("%s:%s:", c.namespace, safe(symbol))
}

// deleteByPattern deletes all cache keys matching a given pattern using SCAN.
func (c *MarketDataCache) deleteByPattern(ctx context.Context, pattern string) error {
	var cursor uint64
	for {
		keys, cur, err := c.rdb.Scan(ctx, cursor, pattern, 200).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		cursor = cur
		if cursor == 0 {
			break
		}
	}
	return nil
}

// safe escapes characters that are problematic for Redis keys and glob patterns.
func safe(s string) string {
	return strings.NewReplacer(" ", "_", ":", "_", "*", "_", "?", "_", "[", "_", "]", "_").Replace(s)
}
