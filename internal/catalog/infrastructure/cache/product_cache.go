// Package cache decorates the catalog store with a Redis read-through
// cache. Product lookups sit on the ledger's hot path, so single-product
// reads are served from Redis and invalidated on writes.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/vunguard/ledger/internal/catalog/domain"
	"github.com/vunguard/ledger/pkg/cache"
	"github.com/vunguard/ledger/pkg/logger"
)

const productTTL = 5 * time.Minute

type cachedProductRepository struct {
	inner domain.ProductRepository
	redis *cache.RedisCache
}

// NewCachedProductRepository wraps inner with a Redis read-through cache
// on GetByID. Cache failures fall back to the inner store.
func NewCachedProductRepository(inner domain.ProductRepository, redis *cache.RedisCache) domain.ProductRepository {
	return &cachedProductRepository{inner: inner, redis: redis}
}

func productKey(id uint) string {
	return fmt.Sprintf("catalog:product:%d", id)
}

func (r *cachedProductRepository) Create(ctx context.Context, product *domain.Product) error {
	return r.inner.Create(ctx, product)
}

func (r *cachedProductRepository) GetByID(ctx context.Context, id uint) (*domain.Product, error) {
	key := productKey(id)

	var cached domain.Product
	found, err := r.redis.GetJSON(ctx, key, &cached)
	if err != nil {
		logger.Warn(ctx, "product cache read failed", "key", key, "error", err)
	} else if found {
		return &cached, nil
	}

	product, err := r.inner.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := r.redis.SetJSON(ctx, key, product, productTTL); err != nil {
		logger.Warn(ctx, "product cache write failed", "key", key, "error", err)
	}
	return product, nil
}

func (r *cachedProductRepository) List(ctx context.Context, productType domain.ProductType, offset, limit int) ([]*domain.Product, int64, error) {
	return r.inner.List(ctx, productType, offset, limit)
}

func (r *cachedProductRepository) Save(ctx context.Context, product *domain.Product) error {
	if err := r.inner.Save(ctx, product); err != nil {
		return err
	}
	if err := r.redis.Delete(ctx, productKey(product.ID)); err != nil {
		logger.Warn(ctx, "product cache invalidation failed", "product_id", product.ID, "error", err)
	}
	return nil
}
