package storage

import (
	"context"
	"time"

	"occupancy-optimizer/models"
)

// PropertySource is the interface any inventory backend must satisfy.
type PropertySource interface {
	LoadProperties(ctx context.Context) ([]models.PropertyData, error)
	Close() error
}

// HolidaySource returns holiday periods for a region that overlap [from, to].
type HolidaySource interface {
	Holidays(ctx context.Context, region string, from, to time.Time) ([]models.HolidayPeriod, error)
}

// MoveWriter persists the final move list of each property.
type MoveWriter interface {
	WriteMoves(ctx context.Context, results []models.PropertyResult) error
	Close() error
}

// ImportanceWriter persists the per-night strategic labels.
type ImportanceWriter interface {
	WriteImportance(ctx context.Context, results []models.PropertyResult) error
	Close() error
}

// InventoryStore caches property inventory between runs.
type InventoryStore interface {
	Get(propertyID int64) (models.Property, bool)
	Put(property models.Property)
	Invalidate(propertyID int64)
}
