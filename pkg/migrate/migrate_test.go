package migrate

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/citycare/storefront/pkg/config"
	"github.com/citycare/storefront/pkg/db"
	"github.com/citycare/storefront/pkg/db/models"
	"github.com/citycare/storefront/pkg/logger"
)

func TestEmbeddedMigrationsMatchDisk(t *testing.T) {
	require.NoError(t, ValidateDir("migrations"))

	entries, err := embedded.ReadDir(embeddedDir)
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	content, err := embedded.ReadFile(embeddedDir + "/" + entries[0].Name())
	require.NoError(t, err)
	for _, sub := range []string{
		"CREATE TABLE IF NOT EXISTS local_entries",
		`PRIMARY KEY (namespace, "key")`,
		"DROP TABLE IF EXISTS local_entries",
	} {
		assert.True(t, strings.Contains(string(content), sub), "missing %q", sub)
	}
}

func TestDialect(t *testing.T) {
	assert.Equal(t, "sqlite3", Dialect("sqlite"))
	assert.Equal(t, "postgres", Dialect("postgres"))
	assert.Equal(t, "postgres", Dialect(""))
}

func TestMaybeRunAppliesEmbeddedMigrations(t *testing.T) {
	ctx := context.Background()
	client, err := db.New(ctx, config.DBConfig{DSN: "file::memory:", Driver: db.DriverSQLite, MaxOpenConns: 1}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	cfg := &config.Config{App: config.AppConfig{Env: config.AppEnvDev}}
	require.NoError(t, MaybeRun(ctx, cfg, logger.Nop(), client))

	entry := models.LocalEntry{Namespace: "device", Key: "token", Value: "abc", UpdatedAt: time.Now()}
	require.NoError(t, client.DB().Create(&entry).Error)

	var loaded models.LocalEntry
	require.NoError(t, client.DB().Where("namespace = ? AND key = ?", "device", "token").First(&loaded).Error)
	assert.Equal(t, "abc", loaded.Value)
}

func TestMaybeRunSkipsInProdWithoutFlag(t *testing.T) {
	cfg := &config.Config{App: config.AppConfig{Env: config.AppEnvProd}}
	assert.NoError(t, MaybeRun(context.Background(), cfg, logger.Nop(), nil))
}
