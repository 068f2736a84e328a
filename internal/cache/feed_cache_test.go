package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nekocare/internal/care"
	dom "nekocare/internal/domain"
)

// Set NEKOCARE_TEST_REDIS=host:port to run against a real redis.
func testClient(t *testing.T) *redis.Client {
	t.Helper()
	addr := os.Getenv("NEKOCARE_TEST_REDIS")
	if addr == "" {
		t.Skip("NEKOCARE_TEST_REDIS not set")
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = rdb.Close() })
	require.NoError(t, rdb.Ping(context.Background()).Err())
	return rdb
}

func TestSnapshotKey(t *testing.T) {
	assert.Equal(t, "care:snapshot:42", snapshotKey(42))
	assert.Equal(t, "care:snapshot:ver:42", versionKey(42))
}

func TestFeedCache_RoundTrip(t *testing.T) {
	c := NewFeedCache(testClient(t), time.Minute)
	ctx := context.Background()
	id := time.Now().UnixNano()

	_, ok, err := c.Get(ctx, id)
	require.NoError(t, err)
	assert.False(t, ok)

	catID := int64(2)
	snap := care.Snapshot{
		HouseholdID: id,
		LoadedAt:    time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC),
		Settings:    dom.Settings{HouseholdID: id, DayStartHour: 4},
		TaskDefs:    []dom.CareTaskDef{{ID: 1, Title: "food", Frequency: dom.FreqTwiceDaily}},
		Logs:        []dom.CareLog{{ID: 9, Type: "1:morning", CatID: &catID}},
	}
	ver, err := c.Version(ctx, id)
	require.NoError(t, err)
	stored, err := c.Set(ctx, snap, ver)
	require.NoError(t, err)
	require.True(t, stored)

	got, ok, err := c.Get(ctx, id)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "food", got.TaskDefs[0].Title)
	require.NotNil(t, got.Logs[0].CatID)
	assert.Equal(t, catID, *got.Logs[0].CatID)
	assert.True(t, snap.LoadedAt.Equal(got.LoadedAt))

	require.NoError(t, c.Invalidate(ctx, id))
	_, ok, err = c.Get(ctx, id)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFeedCache_StaleSetIsDropped(t *testing.T) {
	c := NewFeedCache(testClient(t), time.Minute)
	ctx := context.Background()
	id := time.Now().UnixNano()

	ver, err := c.Version(ctx, id)
	require.NoError(t, err)
	// A write lands while the snapshot is being loaded.
	require.NoError(t, c.Invalidate(ctx, id))

	stored, err := c.Set(ctx, care.Snapshot{HouseholdID: id}, ver)
	require.NoError(t, err)
	assert.False(t, stored)
	_, ok, err := c.Get(ctx, id)
	require.NoError(t, err)
	assert.False(t, ok)

	ver, err = c.Version(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(1), ver)
	stored, err = c.Set(ctx, care.Snapshot{HouseholdID: id}, ver)
	require.NoError(t, err)
	assert.True(t, stored)
}
