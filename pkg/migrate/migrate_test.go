package migrate

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/dmm341/avocado-ledger/pkg/config"
	"github.com/dmm341/avocado-ledger/pkg/db"
	"github.com/dmm341/avocado-ledger/pkg/logger"
)

func TestCreateSQLMigrationSanitizesAndValidates(t *testing.T) {
	dir := t.TempDir()

	path, err := CreateSQLMigration(dir, "  Add Farmer Region! ")
	require.NoError(t, err)
	assert.Regexp(t, `^\d{14}_add_farmer_region\.sql$`, filepath.Base(path))

	second, err := CreateSQLMigration(dir, "add farmer region")
	require.NoError(t, err)
	assert.NotEqual(t, filepath.Base(path)[:14], filepath.Base(second)[:14], "versions must not collide")

	require.NoError(t, ValidateDir(dir))

	_, err = CreateSQLMigration(dir, "!!!")
	assert.Error(t, err)
	_, err = CreateSQLMigration("", "x")
	assert.Error(t, err)
}

func TestNextVersionSkipsTakenVersions(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "20260301090000_a.sql"), nil, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "20260301090001_b.sql"), nil, 0o644))

	version, err := nextVersion(dir, now)
	require.NoError(t, err)
	assert.Equal(t, "20260301090002", version)
}

func TestValidateDirRejects(t *testing.T) {
	cases := map[string]struct {
		files map[string]string
	}{
		"bad name": {files: map[string]string{"001_init.sql": "-- +goose Up\n-- +goose Down\n"}},
		"duplicate version": {files: map[string]string{
			"20260301090000_a.sql": "-- +goose Up\n-- +goose Down\n",
			"20260301090000_b.sql": "-- +goose Up\n-- +goose Down\n",
		}},
		"missing down":   {files: map[string]string{"20260301090000_a.sql": "-- +goose Up\nSELECT 1;\n"}},
		"down before up": {files: map[string]string{"20260301090000_a.sql": "-- +goose Down\n-- +goose Up\n"}},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			for file, body := range tc.files {
				require.NoError(t, os.WriteFile(filepath.Join(dir, file), []byte(body), 0o644))
			}
			assert.Error(t, ValidateDir(dir))
		})
	}
}

func TestMaybeRunDevAutoMigratesSQLite(t *testing.T) {
	conn, err := gorm.Open(sqlite.Open("file:automigrate?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	client := db.NewFromGorm(conn)
	t.Cleanup(func() { _ = client.Close() })

	cfg := &config.Config{
		App:          config.AppConfig{Env: config.AppEnvDev},
		DB:           config.DBConfig{Driver: config.DBDriverSQLite},
		FeatureFlags: config.FeatureFlagsConfig{UseSQLite: true},
	}
	logg := logger.New(logger.Options{ServiceName: "migrate-test", Output: io.Discard})

	require.NoError(t, MaybeRunDev(context.Background(), cfg, logg, client))
	for _, table := range []string{"farmers", "buyers", "orders", "sales", "outbox_events", "outbox_dlq", "drift_reports"} {
		assert.True(t, conn.Migrator().HasTable(table), table)
	}
}

func TestMaybeRunDevSkipsOutsideDev(t *testing.T) {
	cfg := &config.Config{
		App:          config.AppConfig{Env: "prod"},
		DB:           config.DBConfig{Driver: "postgres"},
		FeatureFlags: config.FeatureFlagsConfig{AutoMigrate: true},
	}
	logg := logger.New(logger.Options{ServiceName: "migrate-test", Output: io.Discard})
	// a nil client proves nothing was touched
	require.NoError(t, MaybeRunDev(context.Background(), cfg, logg, nil))
}
