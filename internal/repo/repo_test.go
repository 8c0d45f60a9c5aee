package repo

import (
	"ScholarDesk/internal/model"
	"context"
	"strings"
	"testing"

	"gorm.io/gorm"
)

// newTestDB инициализирует in-memory SQLite (modernc.org/sqlite) для тестов репозитория.
// У каждого теста своя база, имя берётся из t.Name().
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_", "#", "_").Replace(t.Name())
	db, err := OpenDB("sqlite", "file:"+name+"?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("failed to open sqlite (modernc): %v", err)
	}
	if err := Migrate(db); err != nil {
		t.Fatalf("failed to automigrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// mkUser создаёт пользователя напрямую через gorm.
func mkUser(t *testing.T, db *gorm.DB, username string) *model.User {
	t.Helper()
	u := &model.User{Username: username, Password: "hash"}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

func tagCount(t *testing.T, db *gorm.DB, name string) int {
	t.Helper()
	var tag model.Tag
	if err := db.WithContext(context.Background()).Where("name = ?", name).First(&tag).Error; err != nil {
		t.Fatalf("tag %q: %v", name, err)
	}
	return tag.UsageCount
}
