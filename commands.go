package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"photoshare/app/config"
	"photoshare/app/logging"
	"photoshare/app/repositories"
)

// stdin is swapped out in tests.
var stdin io.Reader = os.Stdin

const backupDir = "backups"

// backup dumps the record store to path, or to a timestamped file under
// backups/ when path is empty. The search index is derived data and is not
// backed up.
func backup(cfg *config.Config, path string) error {
	if cfg.Database.InMemory {
		return fmt.Errorf("nothing to back up: database.in_memory is set")
	}
	if path == "" {
		if err := os.MkdirAll(backupDir, 0755); err != nil {
			return fmt.Errorf("failed to create backup directory: %w", err)
		}
		path = filepath.Join(backupDir, fmt.Sprintf("photoshare_%d.bak", time.Now().Unix()))
	}

	repo, err := repositories.Open(cfg.Database.Path, false)
	if err != nil {
		return err
	}
	defer repo.Close()

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create backup file: %w", err)
	}
	defer f.Close()

	version, err := repo.Backup(f)
	if err != nil {
		return err
	}
	fmt.Printf("Database backed up successfully to %s\n", path)
	logging.Info().Str("file", path).Uint64("version", version).Msg("record store backed up")
	return nil
}

// restore replaces the record store with the dump at path, discards the
// search index and rebuilds it from the restored posts.
func restore(cfg *config.Config, path string) error {
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("backup file %s: %w", path, err)
	}

	fmt.Print("Restoring replaces the database and rebuilds the search index. Continue? [y/N] ")
	var response string
	fmt.Fscanln(stdin, &response)
	if response != "y" && response != "Y" {
		fmt.Println("Operation cancelled")
		return nil
	}

	if !cfg.Search.InMemory {
		if err := os.RemoveAll(cfg.Search.IndexPath); err != nil {
			return fmt.Errorf("failed to remove search index: %w", err)
		}
	}

	app, err := newApplication(cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open backup file: %w", err)
	}
	defer f.Close()

	if err := app.repo.Restore(f); err != nil {
		return err
	}
	if err := app.SyncIndex(context.Background()); err != nil {
		return err
	}
	fmt.Println("Database restored successfully")
	return nil
}
