package persistence

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/account-service/internal/config"
)

func TestNewSQLiteOpensAndPings(t *testing.T) {
	db, err := NewSQLite(config.SQLiteConfig{Path: filepath.Join(t.TempDir(), "app.db")}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(db.Close)

	assert.NoError(t, db.Ping(context.Background()))
}

func TestNewSQLiteRejectsEmptyPath(t *testing.T) {
	_, err := NewSQLite(config.SQLiteConfig{}, zap.NewNop())
	assert.Error(t, err)
}

func TestNilHandlesReportUnconfigured(t *testing.T) {
	ctx := context.Background()
	var (
		pg *Postgres
		rd *Redis
		sq *SQLite
	)
	assert.Error(t, pg.Ping(ctx))
	assert.Error(t, rd.Ping(ctx))
	assert.Error(t, sq.Ping(ctx))

	pg.Close()
	rd.Close()
	sq.Close()
}

func TestRunMigrationsWithoutPoolIsNoop(t *testing.T) {
	assert.NoError(t, RunMigrations(context.Background(), nil, "missing-dir", zap.NewNop()))
}

func TestMigrationFilesExist(t *testing.T) {
	entries, err := os.ReadDir(filepath.Join("..", "..", "migrations"))
	require.NoError(t, err)
	assert.NotEmpty(t, entries)
}

func TestPendingMigrationsSkipsAppliedAndNonSQL(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"002_roles.sql", "001_users.sql", "README.md", "003_idx.sql"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("SELECT 1;"), 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "004_dir.sql"), 0o755))

	pending, err := pendingMigrations(dir, map[string]bool{"002_roles.sql": true})
	require.NoError(t, err)
	assert.Equal(t, []string{"001_users.sql", "003_idx.sql"}, pending)

	_, err = pendingMigrations(filepath.Join(dir, "missing"), nil)
	assert.Error(t, err)
}
