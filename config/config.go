package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the resolved runtime configuration: defaults, then the YAML file,
// then environment variables (a local .env is loaded first).
type Config struct {
	Port string

	DBDriver string
	DBDSN    string

	JWTSecret     string
	TokenTTL      time.Duration
	GuestTTL      time.Duration
	AdminAPIKey   string
	AdminPassword string
	BcryptCost    int

	UploadDir       string
	BackupDir       string
	BackupRetention time.Duration
	BackupHour      int
	BackupMinute    int

	SeedOnStart bool

	LogLevel  string
	LogFormat string

	CORSOrigins []string
}

type configFile struct {
	Server struct {
		Port        string   `yaml:"port"`
		CORSOrigins []string `yaml:"cors_origins"`
		UploadDir   string   `yaml:"upload_dir"`
	} `yaml:"server"`
	Database struct {
		Driver string `yaml:"driver"`
		DSN    string `yaml:"dsn"`
		Seed   *bool  `yaml:"seed"`
	} `yaml:"database"`
	Auth struct {
		TokenTTLHours int `yaml:"token_ttl_hours"`
		GuestTTLHours int `yaml:"guest_ttl_hours"`
		BcryptCost    int `yaml:"bcrypt_cost"`
	} `yaml:"auth"`
	Backup struct {
		Dir           string `yaml:"dir"`
		RetentionDays int    `yaml:"retention_days"`
		Hour          *int   `yaml:"hour"`
		Minute        *int   `yaml:"minute"`
	} `yaml:"backup"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
}

func defaults() Config {
	return Config{
		Port:            "8080",
		DBDriver:        "sqlite",
		DBDSN:           "bakery.db",
		TokenTTL:        7 * 24 * time.Hour,
		GuestTTL:        24 * time.Hour,
		AdminPassword:   "admin123",
		BcryptCost:      10,
		UploadDir:       "uploads",
		BackupDir:       "backup",
		BackupRetention: 4 * 24 * time.Hour,
		BackupHour:      2,
		SeedOnStart:     true,
		LogLevel:        "info",
		LogFormat:       "text",
		CORSOrigins:     []string{"*"},
	}
}

// Load resolves configuration. A missing file is not an error.
func Load(path string) (Config, error) {
	_ = godotenv.Load()

	cfg := defaults()

	if path != "" {
		raw, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := applyFile(&cfg, raw); err != nil {
				return Config{}, err
			}
		case !os.IsNotExist(err):
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyFile(cfg *Config, raw []byte) error {
	var f configFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	if f.Server.Port != "" {
		cfg.Port = f.Server.Port
	}
	if len(f.Server.CORSOrigins) > 0 {
		cfg.CORSOrigins = f.Server.CORSOrigins
	}
	if f.Server.UploadDir != "" {
		cfg.UploadDir = f.Server.UploadDir
	}
	if f.Database.Driver != "" {
		cfg.DBDriver = f.Database.Driver
	}
	if f.Database.DSN != "" {
		cfg.DBDSN = f.Database.DSN
	}
	if f.Database.Seed != nil {
		cfg.SeedOnStart = *f.Database.Seed
	}
	if f.Auth.TokenTTLHours > 0 {
		cfg.TokenTTL = time.Duration(f.Auth.TokenTTLHours) * time.Hour
	}
	if f.Auth.GuestTTLHours > 0 {
		cfg.GuestTTL = time.Duration(f.Auth.GuestTTLHours) * time.Hour
	}
	if f.Auth.BcryptCost > 0 {
		cfg.BcryptCost = f.Auth.BcryptCost
	}
	if f.Backup.Dir != "" {
		cfg.BackupDir = f.Backup.Dir
	}
	if f.Backup.RetentionDays > 0 {
		cfg.BackupRetention = time.Duration(f.Backup.RetentionDays) * 24 * time.Hour
	}
	if f.Backup.Hour != nil {
		cfg.BackupHour = *f.Backup.Hour
	}
	if f.Backup.Minute != nil {
		cfg.BackupMinute = *f.Backup.Minute
	}
	if f.Log.Level != "" {
		cfg.LogLevel = f.Log.Level
	}
	if f.Log.Format != "" {
		cfg.LogFormat = f.Log.Format
	}
	return nil
}

func applyEnv(cfg *Config) {
	cfg.Port = envOrDefault("PORT", cfg.Port)
	cfg.DBDriver = strings.ToLower(envOrDefault("DB_DRIVER", cfg.DBDriver))
	cfg.DBDSN = envOrDefault("DATABASE_URL", cfg.DBDSN)
	cfg.JWTSecret = envOrDefault("JWT_SECRET", cfg.JWTSecret)
	cfg.AdminAPIKey = envOrDefault("ADMIN_API_KEY", cfg.AdminAPIKey)
	cfg.AdminPassword = envOrDefault("ADMIN_PASSWORD", cfg.AdminPassword)
	cfg.BcryptCost = envInt("BCRYPT_COST", cfg.BcryptCost)
	cfg.TokenTTL = time.Duration(envInt("TOKEN_TTL_HOURS", int(cfg.TokenTTL.Hours()))) * time.Hour
	cfg.GuestTTL = time.Duration(envInt("GUEST_TTL_HOURS", int(cfg.GuestTTL.Hours()))) * time.Hour
	cfg.UploadDir = envOrDefault("UPLOAD_DIR", cfg.UploadDir)
	cfg.BackupDir = envOrDefault("BACKUP_DIR", cfg.BackupDir)
	cfg.BackupRetention = time.Duration(envInt("BACKUP_RETENTION_DAYS", int(cfg.BackupRetention.Hours()/24))) * 24 * time.Hour
	cfg.BackupHour = envInt("BACKUP_HOUR", cfg.BackupHour)
	cfg.BackupMinute = envInt("BACKUP_MINUTE", cfg.BackupMinute)
	cfg.SeedOnStart = envBool("SEED_ON_START", cfg.SeedOnStart)
	cfg.LogLevel = strings.ToLower(envOrDefault("LOG_LEVEL", cfg.LogLevel))
	cfg.LogFormat = strings.ToLower(envOrDefault("LOG_FORMAT", cfg.LogFormat))
	cfg.CORSOrigins = envCSV("CORS_ORIGINS", cfg.CORSOrigins)
}

// Validate rejects configurations the server cannot start with.
func (c Config) Validate() error {
	switch c.DBDriver {
	case "sqlite", "postgres", "mysql":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	if c.DBDSN == "" {
		return fmt.Errorf("database dsn is required")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET must be set")
	}
	if c.BackupHour < 0 || c.BackupHour > 23 || c.BackupMinute < 0 || c.BackupMinute > 59 {
		return fmt.Errorf("invalid backup time %02d:%02d", c.BackupHour, c.BackupMinute)
	}
	return nil
}

func envOrDefault(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func envBool(key string, fallback bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func envCSV(key string, fallback []string) []string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
