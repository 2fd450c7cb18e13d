package database

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrate(t *testing.T) {
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	defer db.Close()

	dir := filepath.Join("..", "..", "..", "migrations")
	ctx := context.Background()

	applied, err := Migrate(ctx, db, dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"001_profiles.sql", "002_stripe_webhook_events.sql"}, applied)

	// re-running is harmless
	_, err = Migrate(ctx, db, dir)
	require.NoError(t, err)

	for _, table := range []string{"profiles", "stripe_webhook_events"} {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name)
		require.NoError(t, err, table)
	}
}

func TestMigrate_BadFile(t *testing.T) {
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	defer db.Close()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "001_broken.sql"), []byte("CREATE TABLE ("), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("not sql"), 0o644))

	_, err = Migrate(context.Background(), db, dir)
	assert.ErrorContains(t, err, "001_broken.sql")
}

func TestMigrate_MissingDir(t *testing.T) {
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	defer db.Close()

	_, err = Migrate(context.Background(), db, filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}
