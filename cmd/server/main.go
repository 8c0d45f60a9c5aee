package main

import (
	"ScholarDesk/internal/audit"
	"ScholarDesk/internal/config"
	"ScholarDesk/internal/handlers"
	"ScholarDesk/internal/middleware"
	"ScholarDesk/internal/repo"
	"ScholarDesk/internal/service"
	"ScholarDesk/internal/storage"
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// задаётся через -ldflags "-X main.version=..."
var version = "dev"

func main() {
	cfg := config.NewConfig()

	// создаём предустановленный регистратор zap
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}

	// делаем регистратор SugaredLogger
	sugar := logger.Sugar()
	middleware.SetLogger(sugar) // передаём логгер в middleware
	//сброс буфера логгера
	defer func() {
		_ = logger.Sync()
	}()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// журнал администратора обрезается здесь, один раз за запуск
	auditLog, err := audit.Open(cfg.AuditLog, cfg.AdminLog)
	if err != nil {
		sugar.Fatalw("failed to open audit logs", "error", err)
	}
	defer auditLog.Close()

	dsn := cfg.DSN()
	if cfg.DBDriver == "sqlite" {
		dsn = cfg.SQLitePath
	}
	gormDB, err := repo.InitDB(cfg.DBDriver, dsn)
	if err != nil {
		sugar.Fatalw("failed to initialize database", "driver", cfg.DBDriver, "error", err)
	}

	store, err := newStorage(ctx, cfg)
	if err != nil {
		sugar.Fatalw("failed to initialize file storage", "backend", cfg.StorageBackend, "error", err)
	}

	folderRepo := repo.NewFolderRepository(gormDB)
	categoryRepo := repo.NewCategoryRepository(gormDB)
	userService := service.NewUserService(repo.NewUserRepository(gormDB), repo.NewSessionRepository(gormDB), cfg.SessionTTL())
	svc := handlers.Services{
		Users:      userService,
		Resources:  service.NewResourceService(repo.NewResourceRepository(gormDB), folderRepo, categoryRepo, store, sugar),
		Folders:    service.NewFolderService(folderRepo),
		Categories: service.NewCategoryService(categoryRepo),
		Catalog:    service.NewCatalogService(repo.NewSubjectRepository(gormDB), repo.NewTagRepository(gormDB)),
	}

	// чистка истёкших сессий раз в час
	scheduler := cron.New()
	if _, err := scheduler.AddFunc("@hourly", func() {
		n, err := userService.PurgeExpiredSessions(context.Background())
		if err != nil {
			sugar.Errorw("purge expired sessions", "error", err)
			return
		}
		if n > 0 {
			sugar.Infow("expired sessions purged", "count", n)
		}
	}); err != nil {
		sugar.Fatalw("failed to schedule session purge", "error", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	h := handlers.NewHandler(svc, auditLog, sugar, cfg, version)
	defer h.Close()

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           h.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	sugar.Infow("Starting server",
		"addr", cfg.Addr(),
		"version", version,
		"db_driver", cfg.DBDriver,
		"storage", cfg.StorageBackend,
		"metrics", cfg.Metrics(),
	)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			sugar.Errorw("graceful shutdown failed", "error", err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		sugar.Fatalw("Server failed", "error", err)
	}
	sugar.Infow("Server stopped")
}

func newStorage(ctx context.Context, cfg *config.Config) (storage.Storage, error) {
	if cfg.StorageBackend != "s3" {
		return storage.NewLocalStorage(cfg.UploadDir), nil
	}
	client, err := storage.NewS3Client(ctx, storage.S3Config{
		Endpoint:  cfg.S3Endpoint,
		Region:    cfg.S3Region,
		Bucket:    cfg.S3Bucket,
		AccessKey: cfg.S3AccessKey,
		SecretKey: cfg.S3SecretKey,
	})
	if err != nil {
		return nil, err
	}
	return storage.NewS3Storage(client, cfg.S3Bucket), nil
}
