package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"photoshare/app/config"
	"photoshare/app/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// onDiskConfig loads a configuration whose stores live under dir.
func onDiskConfig(t *testing.T, dir string) *config.Config {
	t.Helper()
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("BADGER_IN_MEMORY", "false")
	t.Setenv("SEARCH_IN_MEMORY", "false")
	t.Setenv("BADGER_PATH", filepath.Join(dir, "db"))
	t.Setenv("SEARCH_INDEX_PATH", filepath.Join(dir, "index.bleve"))
	t.Setenv("ASSOCIATION_MOCK", "true")
	t.Setenv("LOG_LEVEL", "error")
	cfg, err := config.LoadFile("")
	require.NoError(t, err)
	return cfg
}

func mockStdin(t *testing.T, input string) {
	t.Helper()
	old := stdin
	stdin = strings.NewReader(input)
	t.Cleanup(func() { stdin = old })
}

func TestBackupAndRestore(t *testing.T) {
	ctx := context.Background()
	source := onDiskConfig(t, t.TempDir())

	app, err := newApplication(source)
	require.NoError(t, err)
	post := &models.Post{Title: "Harbour", Description: "Boats at dawn"}
	require.NoError(t, app.repo.Posts().Create(post))
	require.NoError(t, app.SyncIndex(ctx))
	require.NoError(t, app.Close())

	dump := filepath.Join(t.TempDir(), "photoshare.bak")
	output := captureOutput(func() {
		require.NoError(t, backup(source, dump))
	})
	assert.Contains(t, output, "Database backed up successfully")
	info, err := os.Stat(dump)
	require.NoError(t, err)
	assert.NotZero(t, info.Size())

	target := onDiskConfig(t, t.TempDir())
	mockStdin(t, "y\n")
	output = captureOutput(func() {
		require.NoError(t, restore(target, dump))
	})
	assert.Contains(t, output, "Database restored successfully")

	restored, err := newApplication(target)
	require.NoError(t, err)
	defer restored.Close()

	got, err := restored.repo.Posts().GetByID(post.ID)
	require.NoError(t, err)
	assert.Equal(t, "Harbour", got.Title)

	doc, err := restored.docs.FindByPostID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "Harbour", doc.Title)
}

func TestRestoreCancelled(t *testing.T) {
	cfg := onDiskConfig(t, t.TempDir())
	dump := filepath.Join(t.TempDir(), "empty.bak")
	require.NoError(t, os.WriteFile(dump, nil, 0644))

	mockStdin(t, "n\n")
	output := captureOutput(func() {
		require.NoError(t, restore(cfg, dump))
	})
	assert.Contains(t, output, "Operation cancelled")

	_, err := os.Stat(cfg.Database.Path)
	assert.True(t, os.IsNotExist(err), "database left untouched")
}

func TestRestoreMissingFile(t *testing.T) {
	cfg := onDiskConfig(t, t.TempDir())
	err := restore(cfg, filepath.Join(t.TempDir(), "nope.bak"))
	assert.Error(t, err)
}

func TestBackupInMemory(t *testing.T) {
	useInMemoryConfig(t)
	cfg, err := config.LoadFile("")
	require.NoError(t, err)
	assert.ErrorContains(t, backup(cfg, ""), "nothing to back up")
}
