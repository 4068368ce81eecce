// Package testutil provides shared fixtures for service and handler
// tests: an isolated in-memory database per test with the production
// schema applied.
package testutil

import (
	"fmt"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/propuestas-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewTestDB opens a fresh in-memory SQLite database with the schema
// migrated. Each call gets its own database, so tests stay isolated.
// The pool is capped at one connection: SQLite serializes writers
// anyway, and a single connection keeps concurrent test traffic from
// tripping over busy errors while the unique index still arbitrates
// duplicate inserts.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.AutoMigrate(&models.User{}, &models.Proposal{}, &models.Vote{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}
