package store

import (
	"context"
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationsAreEmbedded(t *testing.T) {
	entries, err := fs.ReadDir(migrationFiles, "migrations")
	require.NoError(t, err)

	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.Equal(t, []string{"00001_translation_cache.sql", "00002_translation_memory.sql"}, names)

	for _, name := range names {
		body, err := fs.ReadFile(migrationFiles, "migrations/"+name)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(string(body), "-- +goose Up"), name)
		assert.Contains(t, string(body), "-- +goose Down", name)
	}
}

func TestEmptyURL(t *testing.T) {
	_, err := Open(context.Background(), " ")
	assert.ErrorIs(t, err, ErrNoDatabase)
	assert.ErrorIs(t, Migrate(context.Background(), ""), ErrNoDatabase)
}
