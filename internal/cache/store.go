package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/codicehealth/codice-inventory/backend-go/internal/config"
	"github.com/codicehealth/codice-inventory/backend-go/internal/domain"
	"github.com/codicehealth/codice-inventory/backend-go/internal/store"
)

const (
	keyPrefix     = "codice:store"
	scanBatchSize = 100
)

// cachedStore decorates a store.Store with read-through redis caching.
// Cache failures never fail a read: the call falls through to the backend
// with a warning.
type cachedStore struct {
	inner  store.Store
	client *redis.Client
	logger zerolog.Logger

	inventoryTTL time.Duration
	salesTTL     time.Duration
	catalogTTL   time.Duration
	lotTTL       time.Duration
}

// NewStore wraps inner with a redis cache when caching is enabled. With
// caching disabled the backend is returned as-is.
func NewStore(inner store.Store, cfg config.CacheConfig) (store.Store, error) {
	if !cfg.Enabled {
		return inner, nil
	}

	client, err := newRedisClient(cfg)
	if err != nil {
		return nil, err
	}

	return &cachedStore{
		inner:        inner,
		client:       client,
		logger:       log.With().Str("component", "cache").Logger(),
		inventoryTTL: ttlSeconds(cfg.InventoryTTLSeconds, 60),
		salesTTL:     ttlSeconds(cfg.SalesTTLSeconds, 300),
		catalogTTL:   ttlSeconds(cfg.CatalogTTLSeconds, 3600),
		lotTTL:       ttlSeconds(cfg.LotTTLSeconds, 300),
	}, nil
}

func ttlSeconds(seconds, fallback int) time.Duration {
	if seconds <= 0 {
		seconds = fallback
	}
	return time.Duration(seconds) * time.Second
}

// readThrough fills dest from cache on a hit, and otherwise from fetch,
// writing the result back with the given TTL.
func (c *cachedStore) readThrough(ctx context.Context, key string, ttl time.Duration, dest any, fetch func() (any, error)) error {
	payload, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		if jsonErr := json.Unmarshal(payload, dest); jsonErr == nil {
			return nil
		}
		c.logger.Warn().Str("key", key).Msg("dropping undecodable cache entry")
		_ = c.client.Del(ctx, key).Err()
	} else if err != redis.Nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("cache read failed, falling through")
	}

	fresh, err := fetch()
	if err != nil {
		return err
	}

	encoded, err := json.Marshal(fresh)
	if err == nil {
		if setErr := c.client.Set(ctx, key, encoded, ttl).Err(); setErr != nil {
			c.logger.Warn().Err(setErr).Str("key", key).Msg("cache write failed")
		}
		// Round-trip through the encoded form so hit and miss paths
		// return identical values.
		return json.Unmarshal(encoded, dest)
	}
	return fmt.Errorf("encode cache entry %s: %w", key, err)
}

func (c *cachedStore) Branches(ctx context.Context) ([]domain.Branch, error) {
	var out []domain.Branch
	err := c.readThrough(ctx, keyPrefix+":branches", c.catalogTTL, &out, func() (any, error) {
		return c.inner.Branches(ctx)
	})
	return out, err
}

func (c *cachedStore) Medications(ctx context.Context) ([]domain.Medication, error) {
	var out []domain.Medication
	err := c.readThrough(ctx, keyPrefix+":medications", c.catalogTTL, &out, func() (any, error) {
		return c.inner.Medications(ctx)
	})
	return out, err
}

func (c *cachedStore) InventorySnapshot(ctx context.Context, branchID int64) ([]domain.InventoryItem, error) {
	key := fmt.Sprintf("%s:inventory:%d", keyPrefix, branchID)

	var out []domain.InventoryItem
	err := c.readThrough(ctx, key, c.inventoryTTL, &out, func() (any, error) {
		return c.inner.InventorySnapshot(ctx, branchID)
	})
	return out, err
}

func (c *cachedStore) SalesHistory(ctx context.Context, medicationID, branchID int64, since time.Time) ([]domain.SaleRecord, error) {
	raw := fmt.Sprintf("med=%d|branch=%d|since=%s", medicationID, branchID, since.Format("2006-01-02"))
	sum := sha1.Sum([]byte(raw))
	key := fmt.Sprintf("%s:sales:%s", keyPrefix, hex.EncodeToString(sum[:]))

	var out []domain.SaleRecord
	err := c.readThrough(ctx, key, c.salesTTL, &out, func() (any, error) {
		return c.inner.SalesHistory(ctx, medicationID, branchID, since)
	})
	return out, err
}

func (c *cachedStore) Lots(ctx context.Context, branchID int64) ([]domain.Lot, error) {
	key := fmt.Sprintf("%s:lots:%d", keyPrefix, branchID)

	var out []domain.Lot
	err := c.readThrough(ctx, key, c.lotTTL, &out, func() (any, error) {
		return c.inner.Lots(ctx, branchID)
	})
	return out, err
}

// Invalidate drops every cached store entry.
func Invalidate(ctx context.Context, s store.Store) error {
	cached, ok := s.(*cachedStore)
	if !ok {
		return nil
	}
	return deleteKeysWithPrefix(ctx, cached.client, keyPrefix, scanBatchSize)
}
