package database

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextRun(t *testing.T) {
	loc := time.UTC
	tests := []struct {
		name string
		now  time.Time
		want time.Time
	}{
		{"later today", time.Date(2026, 1, 10, 1, 0, 0, 0, loc), time.Date(2026, 1, 10, 2, 0, 0, 0, loc)},
		{"exactly now rolls over", time.Date(2026, 1, 10, 2, 0, 0, 0, loc), time.Date(2026, 1, 11, 2, 0, 0, 0, loc)},
		{"already passed", time.Date(2026, 1, 10, 23, 30, 0, 0, loc), time.Date(2026, 1, 11, 2, 0, 0, 0, loc)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, nextRun(tt.now, 2, 0))
		})
	}
}

func TestCleanupOldBackups(t *testing.T) {
	dir := t.TempDir()
	now := time.Now()

	old := filepath.Join(dir, "old")
	fresh := filepath.Join(dir, "fresh")
	require.NoError(t, os.Mkdir(old, 0o755))
	require.NoError(t, os.Mkdir(fresh, 0o755))
	require.NoError(t, os.Chtimes(old, now.Add(-72*time.Hour), now.Add(-72*time.Hour)))

	cleanupOldBackups(dir, 48*time.Hour, now)

	_, err := os.Stat(old)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(fresh)
	assert.NoError(t, err)
}
