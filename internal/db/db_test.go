package db

import (
	"context"
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationsArePaired(t *testing.T) {
	entries, err := fs.ReadDir(migrationsFS, "migrations")
	require.NoError(t, err)

	ups := map[string]bool{}
	downs := map[string]bool{}
	for _, e := range entries {
		name := e.Name()
		switch {
		case strings.HasSuffix(name, ".up.sql"):
			ups[strings.TrimSuffix(name, ".up.sql")] = true
		case strings.HasSuffix(name, ".down.sql"):
			downs[strings.TrimSuffix(name, ".down.sql")] = true
		}
	}

	require.NotEmpty(t, ups)
	assert.Equal(t, ups, downs)
}

func TestSongsMigrationEnforcesUniqueKeys(t *testing.T) {
	b, err := fs.ReadFile(migrationsFS, "migrations/000001_create_songs.up.sql")
	require.NoError(t, err)

	sql := string(b)
	assert.Contains(t, sql, "audio_key   TEXT        NOT NULL UNIQUE")
	assert.Contains(t, sql, "image_key   TEXT        NOT NULL UNIQUE")
	assert.Contains(t, sql, "attempt_id  TEXT        NOT NULL UNIQUE")
}

func TestMigrationSourceStartsWithSongs(t *testing.T) {
	src, err := migrationSource()
	require.NoError(t, err)
	defer src.Close()

	first, err := src.First()
	require.NoError(t, err)
	assert.Equal(t, uint(1), first)

	r, name, err := src.ReadUp(first)
	require.NoError(t, err)
	defer r.Close()
	assert.Equal(t, "create_songs", name)

	_, err = src.Next(first)
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestMigrateRejectsBadURL(t *testing.T) {
	err := Migrate(context.Background(), "notadriver://nowhere")
	assert.Error(t, err)
}
