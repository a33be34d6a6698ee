package database_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sweetdreams-bakery/storefront/database"
	"github.com/sweetdreams-bakery/storefront/database/dbtest"
	"github.com/sweetdreams-bakery/storefront/models"
	"gorm.io/gorm"
)

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := database.Open("oracle", "whatever")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported database driver")
}

func TestUniqueViolationIsDuplicatedKey(t *testing.T) {
	db := dbtest.Open(t)

	require.NoError(t, db.Create(&models.User{Username: "nok", Email: "nok@example.com", Password: "x", Role: models.RoleCustomer}).Error)
	err := db.Create(&models.User{Username: "nok", Email: "other@example.com", Password: "x", Role: models.RoleCustomer}).Error

	require.Error(t, err)
	assert.True(t, errors.Is(err, gorm.ErrDuplicatedKey), "got %v", err)
}

func TestSeedIsIdempotent(t *testing.T) {
	db := dbtest.Open(t)
	ctx := context.Background()

	first, err := database.Seed(ctx, db, "hashed-password")
	require.NoError(t, err)
	assert.Equal(t, 5, first.Categories)
	assert.Equal(t, 9, first.Products)
	assert.True(t, first.Admin)

	second, err := database.Seed(ctx, db, "hashed-password")
	require.NoError(t, err)
	assert.Equal(t, database.SeedResult{}, second)

	var products int64
	require.NoError(t, db.Model(&models.Product{}).Count(&products).Error)
	assert.EqualValues(t, 9, products)

	var croissant models.Product
	require.NoError(t, db.Where("name_en = ?", "Croissant").First(&croissant).Error)
	assert.True(t, croissant.Price.Equal(decimal.RequireFromString("45.00")), croissant.Price.String())
	assert.Equal(t, 18, croissant.StockQuantity)
	assert.True(t, croissant.IsAvailable)
	require.NotNil(t, croissant.CategoryID)

	var admin models.User
	require.NoError(t, db.Where("username = ?", "admin").First(&admin).Error)
	assert.Equal(t, models.RoleAdmin, admin.Role)
}

func TestSeedWithoutAdminHash(t *testing.T) {
	db := dbtest.Open(t)

	res, err := database.Seed(context.Background(), db, "")
	require.NoError(t, err)
	assert.False(t, res.Admin)

	var users int64
	require.NoError(t, db.Model(&models.User{}).Count(&users).Error)
	assert.Zero(t, users)
}

func TestBackupOnceSnapshotsDatabaseAndUploads(t *testing.T) {
	db := dbtest.Seeded(t)

	uploads := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(uploads, "products"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(uploads, "products", "cake.jpg"), []byte("img"), 0o644))

	cfg := database.BackupConfig{
		Driver:    "sqlite",
		UploadDir: uploads,
		BackupDir: t.TempDir(),
		Retention: 24 * time.Hour,
	}
	dest, err := database.BackupOnce(db, cfg, time.Date(2026, 3, 1, 2, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, "2026-03-01_02-00-00", filepath.Base(dest))

	info, err := os.Stat(filepath.Join(dest, "bakery.db"))
	require.NoError(t, err)
	assert.Positive(t, info.Size())

	copied, err := os.ReadFile(filepath.Join(dest, "uploads", "products", "cake.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "img", string(copied))

	snapshot, err := database.Open("sqlite", filepath.Join(dest, "bakery.db"))
	require.NoError(t, err)
	var products int64
	require.NoError(t, snapshot.Model(&models.Product{}).Count(&products).Error)
	assert.EqualValues(t, 9, products)
}
