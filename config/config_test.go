package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, "bakery.db", cfg.DBDSN)
	assert.Equal(t, 7*24*time.Hour, cfg.TokenTTL)
	assert.True(t, cfg.SeedOnStart)
}

func TestLoadFileThenEnv(t *testing.T) {
	path := writeFile(t, `
server:
  port: "9000"
database:
  driver: postgres
  dsn: postgres://bakery@localhost/bakery
  seed: false
backup:
  retention_days: 7
  hour: 3
log:
  format: json
`)
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("PORT", "9100")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "9100", cfg.Port, "env wins over file")
	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, "postgres://bakery@localhost/bakery", cfg.DBDSN)
	assert.False(t, cfg.SeedOnStart)
	assert.Equal(t, 7*24*time.Hour, cfg.BackupRetention)
	assert.Equal(t, 3, cfg.BackupHour)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
}

func TestLoadRejectsBadConfig(t *testing.T) {
	cases := []struct {
		name string
		env  map[string]string
	}{
		{name: "missing jwt secret", env: map[string]string{"JWT_SECRET": ""}},
		{name: "unknown driver", env: map[string]string{"JWT_SECRET": "s", "DB_DRIVER": "oracle"}},
		{name: "bad backup hour", env: map[string]string{"JWT_SECRET": "s", "BACKUP_HOUR": "25"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			_, err := Load("")
			assert.Error(t, err)
		})
	}
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	_, err := Load(writeFile(t, "server: [unterminated"))
	assert.Error(t, err)
}
