package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"occupancy-optimizer/models"
)

func TestInventoryCacheRoundTrip(t *testing.T) {
	var store InventoryStore = NewInventoryCache(10, time.Hour)

	_, ok := store.Get(1)
	assert.False(t, ok)

	store.Put(models.Property{ID: 1, Name: "Lakeside", Categories: []models.Category{{ID: 10, Name: "Cabin"}}})

	got, ok := store.Get(1)
	require.True(t, ok)
	assert.Equal(t, "Lakeside", got.Name)
	require.Len(t, got.Categories, 1)

	store.Invalidate(1)
	_, ok = store.Get(1)
	assert.False(t, ok)
}

func TestInventoryCacheOverwrite(t *testing.T) {
	c := NewInventoryCache(10, time.Hour)
	c.Put(models.Property{ID: 2, Name: "Old"})
	c.Put(models.Property{ID: 2, Name: "New"})

	got, ok := c.Get(2)
	require.True(t, ok)
	assert.Equal(t, "New", got.Name)
}
