package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jonathan/interview-coach/internal/config"
	"github.com/jonathan/interview-coach/internal/session"
)

func TestOpenSessionStore(t *testing.T) {
	ctx := context.Background()

	t.Run("memory by default", func(t *testing.T) {
		store, closeFn, err := openSessionStore(ctx, &config.Config{}, nil)
		require.NoError(t, err)
		defer closeFn()
		assert.IsType(t, &session.MemoryStore{}, store)
	})

	t.Run("sqlite", func(t *testing.T) {
		cfg := &config.Config{Session: config.SessionConfig{
			Store:      config.StoreSQLite,
			SQLitePath: filepath.Join(t.TempDir(), "sessions.sqlite"),
		}}
		store, closeFn, err := openSessionStore(ctx, cfg, nil)
		require.NoError(t, err)
		defer closeFn()
		assert.IsType(t, &session.SQLiteStore{}, store)
	})

	t.Run("postgres needs a database", func(t *testing.T) {
		cfg := &config.Config{Session: config.SessionConfig{Store: config.StorePostgres}}
		_, _, err := openSessionStore(ctx, cfg, nil)
		assert.Error(t, err)
	})
}

func TestCommandsRegistered(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"serve", "practice", "parse"} {
		assert.True(t, names[want], want)
	}
}

func TestParseRequiresFile(t *testing.T) {
	assert.Error(t, parseCmd.Args(parseCmd, nil))
	assert.NoError(t, parseCmd.Args(parseCmd, []string{"cv.pdf"}))
}

func TestLoadJobText_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "job.txt")
	require.NoError(t, os.WriteFile(path, []byte("Platform engineer"), 0o600))

	text, err := loadJobText(context.Background(), path, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, "Platform engineer", text)

	_, err = loadJobText(context.Background(), filepath.Join(t.TempDir(), "missing.txt"), zap.NewNop())
	assert.Error(t, err)
}
