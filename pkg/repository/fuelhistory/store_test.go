package fuelhistory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpapenbr/iracelog-fuel-strategy-go/pkg/model"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	got, err := store.Get(ctx, 18, 77)
	require.NoError(t, err)
	assert.Nil(t, got, "unknown key yields no entry")

	entry := &model.HistoryEntry{
		TrackID:     18,
		CarID:       77,
		Consumption: 2.5,
		LapCount:    12,
		LapTime:     90.0,
		PitStopTime: 31.5,
	}
	require.NoError(t, store.Upsert(ctx, entry))

	got, err = store.Get(ctx, 18, 77)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, entry, got)

	// upsert replaces the entry for the same key
	update := *entry
	update.Consumption = 2.7
	update.LapCount = 20
	require.NoError(t, store.Upsert(ctx, &update))

	got, err = store.Get(ctx, 18, 77)
	require.NoError(t, err)
	assert.InDelta(t, 2.7, got.Consumption, 1e-9)
	assert.Equal(t, 20, got.LapCount)
}

func TestMemoryStoreCopiesOut(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Upsert(ctx, &model.HistoryEntry{
		TrackID: 18, CarID: 77, Consumption: 2.5,
	}))

	first, err := store.Get(ctx, 18, 77)
	require.NoError(t, err)
	first.Consumption = 99.0

	second, err := store.Get(ctx, 18, 77)
	require.NoError(t, err)
	assert.InDelta(t, 2.5, second.Consumption, 1e-9)
}

func TestCachedStore(t *testing.T) {
	ctx := context.Background()
	backing := NewMemoryStore()
	require.NoError(t, backing.Upsert(ctx, &model.HistoryEntry{
		TrackID: 18, CarID: 77, Consumption: 2.5,
	}))
	store := NewCachedStore(backing, time.Minute)

	got, err := store.Get(ctx, 18, 77)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.InDelta(t, 2.5, got.Consumption, 1e-9)

	// a change behind the cache's back is not visible yet
	require.NoError(t, backing.Upsert(ctx, &model.HistoryEntry{
		TrackID: 18, CarID: 77, Consumption: 3.0,
	}))
	got, err = store.Get(ctx, 18, 77)
	require.NoError(t, err)
	assert.InDelta(t, 2.5, got.Consumption, 1e-9)

	// upsert through the cache invalidates the key
	require.NoError(t, store.Upsert(ctx, &model.HistoryEntry{
		TrackID: 18, CarID: 77, Consumption: 2.8,
	}))
	got, err = store.Get(ctx, 18, 77)
	require.NoError(t, err)
	assert.InDelta(t, 2.8, got.Consumption, 1e-9)
}
