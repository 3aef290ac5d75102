// Package testutil holds shared fixtures for package tests.
package testutil

import (
	"fmt"
	"testing"

	"blogicum/internal/database"
	"blogicum/internal/seed"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// NewDB returns a migrated, private in-memory SQLite database closed at test cleanup.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=1", uuid.NewString())
	db, err := database.OpenSQLite(dsn)
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// one connection keeps the shared-cache database free of table locks
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.AutoMigrate(db))
	return db
}

// NewFactory returns a seed factory with cheap password hashing.
func NewFactory(db *gorm.DB) *seed.Factory {
	return seed.NewFactory(db, seed.FactoryOptions{SkipBcrypt: true})
}
