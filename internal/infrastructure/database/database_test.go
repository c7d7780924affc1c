package database

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wekeepgrowing/salon-billing/internal/config"
	"github.com/wekeepgrowing/salon-billing/internal/domain/model"
	"go.uber.org/zap"
)

func TestOpenMigrateAndWire(t *testing.T) {
	cfg := &config.DatabaseConfig{Name: "memory", MaxOpenConns: 1}
	db, err := Open(sqlite.Open(":memory:"), cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(db, zap.NewNop()) })

	require.NoError(t, Migrate(db, zap.NewNop()))
	// idempotent
	require.NoError(t, Migrate(db, zap.NewNop()))

	for _, m := range model.All() {
		assert.True(t, db.Migrator().HasTable(m), "%T", m)
	}
	for _, idx := range customIndexes {
		var count int64
		require.NoError(t, db.Raw(`SELECT count(*) FROM sqlite_master WHERE type = 'index' AND name = ?`, idx.name).Scan(&count).Error)
		assert.Equal(t, int64(1), count, idx.name)
	}

	repos := NewRepositories(db, zap.NewNop())
	assert.NotNil(t, repos.User)
	assert.NotNil(t, repos.Salon)
	assert.NotNil(t, repos.Subscription)
	assert.NotNil(t, repos.Invoice)
	assert.NotNil(t, repos.WebhookEvent)
}
