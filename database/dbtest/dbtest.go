// Package dbtest opens throwaway migrated SQLite databases for tests.
package dbtest

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/sweetdreams-bakery/storefront/database"
	"github.com/sweetdreams-bakery/storefront/models"
	"gorm.io/gorm"
)

// Open returns a migrated database stored in the test's temp dir.
func Open(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := database.Open("sqlite", filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// Seeded is Open plus the default catalog and no admin account.
func Seeded(t *testing.T) *gorm.DB {
	t.Helper()

	db := Open(t)
	_, err := database.Seed(context.Background(), db, "")
	require.NoError(t, err)
	return db
}

// User inserts a customer account with a fixed id so orders can reference it.
func User(t *testing.T, db *gorm.DB, id uint) *uint {
	t.Helper()

	user := models.User{
		ID:       id,
		Username: fmt.Sprintf("customer%d", id),
		Email:    fmt.Sprintf("customer%d@example.com", id),
		Password: "not-a-hash",
		Role:     models.RoleCustomer,
	}
	require.NoError(t, db.Create(&user).Error)
	return &user.ID
}
