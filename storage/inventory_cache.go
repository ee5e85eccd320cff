package storage

import (
	"time"

	"github.com/maypok86/otter/v2"

	"occupancy-optimizer/models"
)

// InventoryCache keeps recently loaded property inventory for a fixed time
// after it was written. Reservations are never cached.
type InventoryCache struct {
	cache *otter.Cache[int64, models.Property]
}

// NewInventoryCache creates a cache holding up to maxSize properties, each
// for ttl after it was stored.
func NewInventoryCache(maxSize int, ttl time.Duration) *InventoryCache {
	return &InventoryCache{
		cache: otter.Must(&otter.Options[int64, models.Property]{
			MaximumSize:      maxSize,
			ExpiryCalculator: otter.ExpiryWriting[int64, models.Property](ttl),
		}),
	}
}

func (c *InventoryCache) Get(propertyID int64) (models.Property, bool) {
	return c.cache.GetIfPresent(propertyID)
}

func (c *InventoryCache) Put(property models.Property) {
	c.cache.Set(property.ID, property)
}

func (c *InventoryCache) Invalidate(propertyID int64) {
	c.cache.Invalidate(propertyID)
}
