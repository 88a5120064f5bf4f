package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"sospeso/internal/sospeso/models"
	"sospeso/pkg/domain"
)

// DefaultCacheTTL bounds how long a cached snapshot may be served. The cache
// is invalidated on every write, so the TTL only matters when two processes
// share one Redis and a write bypasses this instance.
const DefaultCacheTTL = 5 * time.Minute

type cachedRecord struct {
	Voucher  models.Voucher `json:"voucher"`
	Revision int64          `json:"revision"`
}

// Cache is a read-through Redis decorator over any Store. Reads are served
// from Redis when possible; writes go to the underlying store first, then
// drop the cached entry so the next read repopulates it. Cache failures are
// swallowed: Redis being down degrades to the inner store, it never fails a
// command.
type Cache struct {
	inner  Store
	client *redis.Client
	ttl    time.Duration
}

func NewCache(inner Store, client *redis.Client) *Cache {
	return &Cache{inner: inner, client: client, ttl: DefaultCacheTTL}
}

func cacheKey(id domain.VoucherID) string {
	return "sospeso:voucher:" + id.String()
}

func (c *Cache) Create(ctx context.Context, voucher models.Voucher) error {
	if err := c.inner.Create(ctx, voucher); err != nil {
		return err
	}
	c.client.Del(ctx, cacheKey(voucher.ID))
	return nil
}

func (c *Cache) FindByID(ctx context.Context, id domain.VoucherID) (Record, error) {
	if payload, err := c.client.Get(ctx, cacheKey(id)).Bytes(); err == nil {
		var cached cachedRecord
		if err := json.Unmarshal(payload, &cached); err == nil {
			return Record{Voucher: cached.Voucher, Revision: cached.Revision}, nil
		}
	}

	record, err := c.inner.FindByID(ctx, id)
	if err != nil {
		return Record{}, err
	}
	if payload, err := json.Marshal(cachedRecord(record)); err == nil {
		c.client.Set(ctx, cacheKey(id), payload, c.ttl)
	}
	return record, nil
}

func (c *Cache) Update(ctx context.Context, voucher models.Voucher, expectedRevision int64) error {
	if err := c.inner.Update(ctx, voucher, expectedRevision); err != nil {
		// A failed revision check still means our cached copy may be stale.
		c.client.Del(ctx, cacheKey(voucher.ID))
		return err
	}
	c.client.Del(ctx, cacheKey(voucher.ID))
	return nil
}

func (c *Cache) List(ctx context.Context, limit, offset int) ([]Record, error) {
	return c.inner.List(ctx, limit, offset)
}
