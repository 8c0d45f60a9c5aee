package repo

import (
	"context"
	"fmt"
	"time"

	"ScholarDesk/internal/model"

	"gorm.io/driver/postgres"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite"
)

// OpenDB открывает подключение gorm для драйвера "postgres" или "sqlite" и настраивает пул.
func OpenDB(driver, dsn string) (*gorm.DB, error) {
	var dial gorm.Dialector
	switch driver {
	case "sqlite":
		// modernc.org/sqlite регистрируется как "sqlite", без cgo
		dial = gormsqlite.Dialector{DriverName: "sqlite", DSN: dsn}
	case "postgres":
		dial = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported db driver %q", driver)
	}

	db, err := gorm.Open(dial, &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if driver == "sqlite" {
		// один писатель; in-memory БД живёт, пока жив её коннект
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetMaxOpenConns(100)
	}
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	return db, nil
}

// InitDB открывает БД, применяет миграции и заполняет справочник дисциплин.
func InitDB(driver, dsn string) (*gorm.DB, error) {
	db, err := OpenDB(driver, dsn)
	if err != nil {
		return nil, err
	}
	if err := Migrate(db); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	if _, err := NewSubjectRepository(db).Seed(context.Background(), DefaultSubjects()); err != nil {
		return nil, fmt.Errorf("seed subjects: %w", err)
	}
	return db, nil
}

// Migrate миграции для всех моделей, используемых в репозиториях.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.Session{},
		&model.Folder{},
		&model.UserCategory{},
		&model.Subject{},
		&model.AcademicResource{},
		&model.Tag{},
		&model.AcademicResourceTag{},
	)
}
