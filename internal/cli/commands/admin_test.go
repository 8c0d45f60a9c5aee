package commands

import (
	"ScholarDesk/internal/config"
	"ScholarDesk/internal/model"
	"ScholarDesk/internal/repo"
	"ScholarDesk/internal/service"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// useTestDB подменяет Connect на in-memory SQLite на время теста.
func useTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := repo.OpenDB("sqlite", "file:cli_"+name+"?mode=memory&cache=shared")
	require.NoError(t, err)
	require.NoError(t, repo.Migrate(db))

	old := Connect
	Connect = func(*config.Config) (*Services, error) {
		return NewServices(
			service.NewUserService(repo.NewUserRepository(db), repo.NewSessionRepository(db), time.Hour),
			service.NewCatalogService(repo.NewSubjectRepository(db), repo.NewTagRepository(db)),
		), nil
	}
	t.Cleanup(func() {
		Connect = old
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func TestGrantRevokeList(t *testing.T) {
	db := useTestDB(t)
	require.NoError(t, db.Create(&model.User{Username: "grace", Password: "hash"}).Error)
	ctx := context.Background()
	cfg := &config.Config{}

	out := withStdoutCapture(t, func() {
		assert.Equal(t, 0, Dispatch(ctx, cfg, []string{"grant", "grace"}))
	})
	assert.Contains(t, out, "grace is now an admin")

	var u model.User
	require.NoError(t, db.Where("username = ?", "grace").First(&u).Error)
	assert.True(t, u.IsAdmin)

	out = withStdoutCapture(t, func() {
		assert.Equal(t, 0, Dispatch(ctx, cfg, []string{"list"}))
	})
	assert.Contains(t, out, "grace")
	assert.Contains(t, out, "admin")

	withStdoutCapture(t, func() {
		assert.Equal(t, 0, Dispatch(ctx, cfg, []string{"revoke", "grace"}))
	})
	require.NoError(t, db.Where("username = ?", "grace").First(&u).Error)
	assert.False(t, u.IsAdmin)

	out = withStdoutCapture(t, func() {
		assert.Equal(t, 1, Dispatch(ctx, cfg, []string{"grant", "ghost"}))
	})
	assert.Contains(t, out, "not found")

	out = withStdoutCapture(t, func() {
		assert.Equal(t, 2, Dispatch(ctx, cfg, []string{"grant"}))
	})
	assert.Contains(t, out, "Usage: grant <username>")
}

func TestSeedSubjectsIdempotent(t *testing.T) {
	db := useTestDB(t)
	ctx := context.Background()

	out := withStdoutCapture(t, func() {
		assert.Equal(t, 0, Dispatch(ctx, &config.Config{}, []string{"seed-subjects"}))
	})
	assert.Contains(t, out, "Subjects added: 13")

	out = withStdoutCapture(t, func() {
		assert.Equal(t, 0, Dispatch(ctx, &config.Config{}, []string{"seed-subjects"}))
	})
	assert.Contains(t, out, "Subjects added: 0")

	var n int64
	require.NoError(t, db.Model(&model.Subject{}).Count(&n).Error)
	assert.Equal(t, int64(13), n)
}

func TestVersion(t *testing.T) {
	out := withStdoutCapture(t, func() {
		assert.Equal(t, 0, Dispatch(context.Background(), &config.Config{}, []string{"version"}))
	})
	assert.Contains(t, out, "Version: dev")
}
