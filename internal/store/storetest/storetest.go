// Package storetest opens throwaway databases for tests.
package storetest

import (
	"fmt"
	"testing"

	gormsqlite "github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/suPer8Hu/audios-sac-extract/internal/store"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// OpenDB returns an in-memory sqlite database private to t with every
// store table migrated and foreign keys enforced.
func OpenDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_pragma=foreign_keys(1)", uuid.NewString())
	db, err := gorm.Open(gormsqlite.Open(dsn), &gorm.Config{
		NamingStrategy: store.Naming(""),
		Logger:         logger.Discard,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(store.Models()...); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}
