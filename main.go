package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sweetdreams-bakery/storefront/auth"
	"github.com/sweetdreams-bakery/storefront/config"
	orderControllers "github.com/sweetdreams-bakery/storefront/controllers/order"
	"github.com/sweetdreams-bakery/storefront/database"
	"github.com/sweetdreams-bakery/storefront/routes"
	"gorm.io/gorm"
)

const guestPurgeInterval = time.Hour

func main() {
	cfgPath := os.Getenv("CONFIG_FILE")
	if cfgPath == "" {
		cfgPath = "configs/default.yaml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}
	setupLogger(cfg)
	slog.Info("starting application", "driver", cfg.DBDriver, "port", cfg.Port)

	db, err := database.Open(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		slog.Error("db connection failed", "error", err)
		os.Exit(1)
	}
	if err := database.Migrate(db); err != nil {
		slog.Error("auto-migrate failed", "error", err)
		os.Exit(1)
	}

	tokens := auth.NewManager(cfg.JWTSecret, cfg.TokenTTL, cfg.GuestTTL, cfg.BcryptCost)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.SeedOnStart {
		hash, err := tokens.HashPassword(cfg.AdminPassword)
		if err != nil {
			slog.Error("hash admin password", "error", err)
			os.Exit(1)
		}
		res, err := database.Seed(ctx, db, hash)
		if err != nil {
			slog.Error("seed failed", "error", err)
			os.Exit(1)
		}
		slog.Info("seed complete", "categories", res.Categories, "products", res.Products, "admin", res.Admin)
	}

	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()
	r.MaxMultipartMemory = 32 << 20

	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-API-KEY"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: !allowsAnyOrigin(cfg.CORSOrigins),
		MaxAge:           12 * time.Hour,
	}))

	// Serve uploaded images
	r.Static("/uploads", cfg.UploadDir)

	hub := orderControllers.NewHub()
	routes.SetupRoutes(r, db, routes.Deps{
		Tokens:      tokens,
		Engine:      orderControllers.NewEngine(db, hub),
		Hub:         hub,
		AdminAPIKey: cfg.AdminAPIKey,
		UploadDir:   cfg.UploadDir,
	})

	go database.RunDailyBackups(ctx, db, database.BackupConfig{
		Driver:    cfg.DBDriver,
		UploadDir: cfg.UploadDir,
		BackupDir: cfg.BackupDir,
		Retention: cfg.BackupRetention,
		Hour:      cfg.BackupHour,
		Minute:    cfg.BackupMinute,
	})
	go purgeGuests(ctx, db)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown", "error", err)
		}
	}()

	slog.Info("server running", "port", cfg.Port)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("failed to start server", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

func setupLogger(cfg config.Config) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}

func allowsAnyOrigin(origins []string) bool {
	for _, o := range origins {
		if strings.TrimSpace(o) == "*" {
			return true
		}
	}
	return false
}

// purgeGuests drops expired guest sessions and their carts once an hour.
func purgeGuests(ctx context.Context, db *gorm.DB) {
	ticker := time.NewTicker(guestPurgeInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			n, err := auth.PurgeExpiredGuests(ctx, db, now)
			if err != nil {
				slog.Error("purge expired guests", "error", err)
				continue
			}
			if n > 0 {
				slog.Info("purged expired guests", "count", n)
			}
		}
	}
}
