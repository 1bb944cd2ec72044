package filestore

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/keyforge/internal/key/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testKey(id int64, keyValue, machine, telegram string, created, expiry time.Time, active bool, price float64) domain.LicenseKey {
	return domain.LicenseKey{
		ID:               snowflake.ID(id),
		KeyValue:         keyValue,
		MachineID:        machine,
		CreatedDate:      created,
		ExpiryDate:       expiry,
		IsActive:         active,
		KeyType:          "Month",
		CustomerTelegram: telegram,
		Price:            price,
	}
}

func TestInsertSurvivesReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keys.json")
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	store := New(path, zap.NewNop())
	key := testKey(1, "AAAA-BBBB", "machine-1", "@alice", now, now.Add(time.Hour), true, 30)
	require.NoError(t, store.Insert(ctx, &key, nil))

	// A fresh store sees what the old one wrote.
	reloaded := New(path, zap.NewNop())
	got, err := reloaded.FindByValue(ctx, "AAAA-BBBB")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, key.ID, got.ID)
	assert.Equal(t, key.MachineID, got.MachineID)
	assert.True(t, got.CreatedDate.Equal(key.CreatedDate))
	assert.True(t, got.ExpiryDate.Equal(key.ExpiryDate))
}

func TestFileIsPrettyPrintedArray(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keys.json")
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	store := New(path, zap.NewNop())
	key := testKey(1, "AAAA-BBBB", "machine-1", "@alice", now, now.Add(time.Hour), true, 30)
	require.NoError(t, store.Insert(ctx, &key, nil))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var records []map[string]any
	require.NoError(t, json.Unmarshal(data, &records))
	require.Len(t, records, 1)
	assert.Contains(t, records[0], "keyValue")
	assert.Contains(t, records[0], "customerTelegram")
	assert.Contains(t, string(data), "\n  ")
}

func TestMissingOrCorruptFileStartsEmpty(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	missing := New(filepath.Join(dir, "absent.json"), zap.NewNop())
	got, err := missing.FindByValue(ctx, "anything")
	require.NoError(t, err)
	assert.Nil(t, got)

	corruptPath := filepath.Join(dir, "corrupt.json")
	require.NoError(t, os.WriteFile(corruptPath, []byte("{not json"), 0o644))
	corrupt := New(corruptPath, zap.NewNop())
	stats, err := corrupt.Stats(ctx, time.Now())
	require.NoError(t, err)
	assert.Zero(t, stats.TotalKeys)
}

func TestFindUsable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keys.json")
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	store := New(path, zap.NewNop())
	active := testKey(1, "ACTIVE", "m-1", "@alice", now, now.Add(time.Hour), true, 30)
	expired := testKey(2, "EXPIRED", "m-1", "@alice", now.Add(-2*time.Hour), now.Add(-time.Hour), true, 30)
	inactive := testKey(3, "INACTIVE", "m-1", "@alice", now, now.Add(time.Hour), false, 30)
	for _, k := range []domain.LicenseKey{active, expired, inactive} {
		key := k
		require.NoError(t, store.Insert(ctx, &key, nil))
	}

	got, err := store.FindUsable(ctx, "ACTIVE", "m-1", now)
	require.NoError(t, err)
	assert.NotNil(t, got)

	got, err = store.FindUsable(ctx, "ACTIVE", "m-2", now)
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = store.FindUsable(ctx, "EXPIRED", "m-1", now)
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = store.FindUsable(ctx, "INACTIVE", "m-1", now)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestDeactivatePersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keys.json")
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	store := New(path, zap.NewNop())
	key := testKey(1, "AAAA-BBBB", "m-1", "@alice", now, now.Add(time.Hour), true, 30)
	require.NoError(t, store.Insert(ctx, &key, nil))

	require.NoError(t, store.Deactivate(ctx, key.ID))
	// Second deactivation is a no-op, not an error.
	require.NoError(t, store.Deactivate(ctx, key.ID))
	assert.ErrorIs(t, store.Deactivate(ctx, 999), domain.ErrNotFound)

	reloaded := New(path, zap.NewNop())
	got, err := reloaded.FindByValue(ctx, "AAAA-BBBB")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.False(t, got.IsActive)
}

func TestStatsPartitionAndGrouping(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keys.json")
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	store := New(path, zap.NewNop())
	a := testKey(1, "KEY-A", "m-a", "@alice", now, now.Add(365*24*time.Hour), true, 30)
	b := testKey(2, "KEY-B", "m-b", "@alice", now, now.Add(365*24*time.Hour), false, 30)
	c := testKey(3, "KEY-C", "m-c", "@alice", now.Add(-2*time.Hour), now.Add(-time.Hour), true, 10)
	c.KeyType = "Week"
	for _, k := range []domain.LicenseKey{a, b, c} {
		key := k
		require.NoError(t, store.Insert(ctx, &key, nil))
	}

	stats, err := store.Stats(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.TotalKeys)
	assert.Equal(t, int64(1), stats.ActiveKeys)
	assert.Equal(t, int64(1), stats.ExpiredKeys)
	assert.Equal(t, float64(70), stats.TotalRevenue)

	require.Len(t, stats.KeyTypeStats, 2)
	assert.Equal(t, "Month", stats.KeyTypeStats[0].KeyType)
	assert.Equal(t, int64(2), stats.KeyTypeStats[0].Count)
	assert.Equal(t, float64(60), stats.KeyTypeStats[0].Revenue)
	assert.Equal(t, "Week", stats.KeyTypeStats[1].KeyType)
}

func TestListByCustomerNewestFirst(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keys.json")
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	store := New(path, zap.NewNop())
	for i, kv := range []string{"KEY-1", "KEY-2", "KEY-3"} {
		key := testKey(int64(i+1), kv, "m", "@alice", now.Add(time.Duration(i)*time.Minute), now.Add(time.Hour), true, 30)
		require.NoError(t, store.Insert(ctx, &key, nil))
	}
	other := testKey(4, "KEY-X", "m", "@bob", now, now.Add(time.Hour), true, 30)
	require.NoError(t, store.Insert(ctx, &other, nil))

	keys, err := store.ListByCustomer(ctx, "@alice")
	require.NoError(t, err)
	require.Len(t, keys, 3)
	assert.Equal(t, "KEY-3", keys[0].KeyValue)
	assert.Equal(t, "KEY-1", keys[2].KeyValue)
}

func TestListTypesServesDefaults(t *testing.T) {
	store := New(filepath.Join(t.TempDir(), "keys.json"), zap.NewNop())

	types, err := store.ListTypes(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, types)
}
