package database

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"gorm.io/gorm"
)

// BackupConfig describes the nightly snapshot job.
type BackupConfig struct {
	Driver    string
	UploadDir string
	BackupDir string
	Retention time.Duration
	Hour      int
	Minute    int
}

func backupLogger() *slog.Logger {
	return slog.Default().With("module", "backup")
}

// RunDailyBackups snapshots the database and uploaded images every day at a fixed
// time and removes snapshots older than the retention window. It returns when ctx ends.
func RunDailyBackups(ctx context.Context, db *gorm.DB, cfg BackupConfig) {
	for {
		now := time.Now()
		next := nextRun(now, cfg.Hour, cfg.Minute)
		backupLogger().Info("next backup scheduled", "at", next.Format("2006-01-02 15:04:05"))

		timer := time.NewTimer(next.Sub(now))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}

		dest, err := BackupOnce(db, cfg, time.Now())
		if err != nil {
			backupLogger().Error("backup failed", "error", err)
		} else {
			backupLogger().Info("backup written", "dir", dest)
		}

		cleanupOldBackups(cfg.BackupDir, cfg.Retention, time.Now())
	}
}

func nextRun(now time.Time, hour, min int) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, min, 0, 0, now.Location())
	if !next.After(now) {
		next = next.Add(24 * time.Hour)
	}
	return next
}

// BackupOnce writes one timestamped snapshot directory and returns its path.
// SQLite is copied with VACUUM INTO so the copy is consistent while the server runs;
// other drivers are expected to be dumped by their own tooling.
func BackupOnce(db *gorm.DB, cfg BackupConfig, at time.Time) (string, error) {
	destDir := filepath.Join(cfg.BackupDir, at.Format("2006-01-02_15-04-05"))
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", err
	}

	if cfg.Driver == "sqlite" {
		dbFile := filepath.Join(destDir, "bakery.db")
		if err := db.Exec("VACUUM INTO ?", dbFile).Error; err != nil {
			return "", fmt.Errorf("snapshot database: %w", err)
		}
	}

	if cfg.UploadDir != "" {
		if _, err := os.Stat(cfg.UploadDir); err == nil {
			if err := copyDir(cfg.UploadDir, filepath.Join(destDir, "uploads")); err != nil {
				return "", fmt.Errorf("copy uploads: %w", err)
			}
		}
	}
	return destDir, nil
}

// copyDir recursively copies a folder
func copyDir(src, dest string) error {
	entries, err := os.ReadDir(src)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return err
	}
	for _, entry := range entries {
		srcPath := filepath.Join(src, entry.Name())
		destPath := filepath.Join(dest, entry.Name())

		if entry.IsDir() {
			if err := copyDir(srcPath, destPath); err != nil {
				return err
			}
			continue
		}
		if err := copyFile(srcPath, destPath); err != nil {
			return err
		}
	}
	return nil
}

func copyFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err = io.Copy(out, in); err != nil {
		return err
	}
	return out.Sync()
}

// cleanupOldBackups removes snapshot folders older than retention.
func cleanupOldBackups(backupDir string, retention time.Duration, now time.Time) {
	entries, err := os.ReadDir(backupDir)
	if err != nil {
		backupLogger().Warn("read backup directory", "error", err)
		return
	}

	cutoff := now.Add(-retention)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		folderPath := filepath.Join(backupDir, entry.Name())
		info, err := os.Stat(folderPath)
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			if err := os.RemoveAll(folderPath); err != nil {
				backupLogger().Error("remove old backup", "path", folderPath, "error", err)
			} else {
				backupLogger().Info("removed old backup", "path", folderPath)
			}
		}
	}
}
