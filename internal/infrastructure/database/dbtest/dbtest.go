// Package dbtest opens throwaway sqlite databases for tests.
package dbtest

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/simplesocial/social-server/internal/infrastructure/database"
)

// NewSQLite returns a migrated sqlite database living in t.TempDir().
func NewSQLite(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := database.Connect(database.Config{
		DSN:      "sqlite://" + filepath.Join(t.TempDir(), "social.db"),
		LogLevel: gormlogger.Silent,
	})
	if err != nil {
		t.Fatalf("connect sqlite: %v", err)
	}
	t.Cleanup(func() { _ = database.Close(db) })

	if err := database.Migrate(context.Background(), db, zerolog.Nop()); err != nil {
		t.Fatalf("migrate sqlite: %v", err)
	}
	return db
}
