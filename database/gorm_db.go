package database

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/camden-git/photocatalog/models"
)

// sqliteBusyTimeoutMillis lets a writer wait for the other process (server, console, seed) instead of failing with SQLITE_BUSY
const sqliteBusyTimeoutMillis = 5000

// sqliteDSN adds the connection settings every catalogue database uses
func sqliteDSN(path string) string {
	return fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=%d", path, sqliteBusyTimeoutMillis)
}

// InitGormDB opens the catalogue database at path, creating its directory if needed
func InitGormDB(path string) (*gorm.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory for database '%s': %w", path, err)
	}

	// stderr so the console menu on stdout stays readable
	gormLogger := logger.New(
		log.New(os.Stderr, "gorm: ", log.LstdFlags),
		logger.Config{
			SlowThreshold:             500 * time.Millisecond,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(sqlite.Open(sqliteDSN(path)), &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open catalogue database '%s': %w", path, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB from GORM: %w", err)
	}
	sqlDB.SetMaxOpenConns(8)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	log.Printf("database: opened catalogue database %s", path)
	return db, nil
}

// AutoMigrateModels creates or updates the photos, albums and users tables
func AutoMigrateModels(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.Photo{}, &models.Album{}, &models.User{}); err != nil {
		return fmt.Errorf("failed to migrate catalogue tables: %w", err)
	}
	return nil
}
