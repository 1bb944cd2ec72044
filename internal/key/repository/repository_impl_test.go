package repository

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/keyforge/internal/key/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestRepository(t *testing.T) domain.Repository {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&domain.LicenseKey{},
		&domain.KeyTypeDefinition{},
		&domain.Sale{},
	))
	return Provide(db)
}

func insertKey(t *testing.T, repo domain.Repository, id int64, active bool) domain.LicenseKey {
	t.Helper()

	key := domain.LicenseKey{
		ID:               snowflake.ID(id),
		KeyValue:         "AAAA-BBBB",
		MachineID:        "machine-1",
		CreatedDate:      time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		ExpiryDate:       time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC),
		IsActive:         active,
		KeyType:          "Month",
		CustomerTelegram: "@alice",
		Price:            30,
	}
	require.NoError(t, repo.Insert(context.Background(), &key, nil))
	return key
}

func TestDeactivateIsRepeatable(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	key := insertKey(t, repo, 1, true)

	require.NoError(t, repo.Deactivate(ctx, key.ID))

	// Deactivating a key that is already inactive is still a success.
	require.NoError(t, repo.Deactivate(ctx, key.ID))

	found, err := repo.FindByValue(ctx, key.KeyValue)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.False(t, found.IsActive)
}

func TestDeactivateLeavesExistenceToCaller(t *testing.T) {
	repo := newTestRepository(t)

	// The service resolves the key before deactivating, so an update that
	// matches no row is not an error at this layer.
	assert.NoError(t, repo.Deactivate(context.Background(), snowflake.ID(404)))
}
