// Package testdb opens throwaway in-memory sqlite databases for tests.
package testdb

import (
	"fmt"
	"strings"
	"testing"

	"bullion-backend/internal/database"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Open returns a migrated database private to t. sqlite allows one writer, so
// the pool is pinned to a single connection; it does not stand in for the
// per-nominee lock.
func Open(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), database.GormConfig(false))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}
