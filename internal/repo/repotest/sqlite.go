// Package repotest 提供测试用内存 sqlite 库
package repotest

import (
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"hungrypanda/internal/core/database"
	"hungrypanda/internal/repo"
)

// New 每个测试独立的内存库；单连接，事务内不要再用外层 db
func New(t testing.TB) *gorm.DB {
	t.Helper()
	db, err := database.NewGorm(database.Opts{
		Driver:       "sqlite",
		DSN:          "file:" + uuid.NewString() + "?mode=memory&cache=shared",
		MaxOpenConns: 1,
		MaxIdleConns: 1,
		LogLevel:     "silent",
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := repo.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func NewStore(t testing.TB) *repo.Store {
	return repo.NewStore(New(t))
}
