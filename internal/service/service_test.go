package service

import (
	"ScholarDesk/internal/model"
	"ScholarDesk/internal/repo"
	"ScholarDesk/internal/storage"
	"strings"
	"testing"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// newTestDB in-memory SQLite со всеми миграциями, своя база на каждый тест.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_", "#", "_").Replace(t.Name())
	db, err := repo.OpenDB("sqlite", "file:svc_"+name+"?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("failed to open sqlite (modernc): %v", err)
	}
	if err := repo.Migrate(db); err != nil {
		t.Fatalf("failed to automigrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

type library struct {
	db         *gorm.DB
	root       string
	resources  *ResourceService
	folders    *FolderService
	categories *CategoryService
	alice      int64
	bob        int64
}

func newLibrary(t *testing.T) *library {
	t.Helper()
	db := newTestDB(t)
	root := t.TempDir()
	lib := &library{
		db:   db,
		root: root,
		resources: NewResourceService(
			repo.NewResourceRepository(db),
			repo.NewFolderRepository(db),
			repo.NewCategoryRepository(db),
			storage.NewLocalStorage(root),
			zap.NewNop().Sugar(),
		),
		folders:    NewFolderService(repo.NewFolderRepository(db)),
		categories: NewCategoryService(repo.NewCategoryRepository(db)),
	}
	for _, name := range []string{"alice", "bob"} {
		u := &model.User{Username: name, Password: "hash"}
		if err := db.Create(u).Error; err != nil {
			t.Fatalf("create user: %v", err)
		}
		if name == "alice" {
			lib.alice = u.ID
		} else {
			lib.bob = u.ID
		}
	}
	return lib
}

func (l *library) usage(t *testing.T, tag string) int {
	t.Helper()
	var tg model.Tag
	if err := l.db.Where("name = ?", tag).First(&tg).Error; err != nil {
		return 0
	}
	return tg.UsageCount
}

// хелперы
func ptrInt64(v int64) *int64 { return &v }
func ptrStr(s string) *string { return &s }
