package storage

import (
	"github.com/neuralsense/fusion/internal/core/domain"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/opentelemetry/tracing"
)

// SQLiteAdapter owns the shared GORM connection and implements the user and
// audit repositories (see user_repo.go, audit_repo.go). The fingerprint
// database lives behind a separate store built on the same *gorm.DB; see
// internal/adapters/fingerprint.
type SQLiteAdapter struct {
	db *gorm.DB
}

// ZoneModel is the GORM model backing the static zone geometry table. The
// table is migrated with the shared schema, but nothing in this module
// writes rows to it; zones are loaded from CSV by the internal/zones
// package.
type ZoneModel struct {
	ZoneID int `gorm:"primaryKey"`
	X      float64
	Y      float64
}

// NewSQLiteAdapter opens the database and migrates the shared schema.
func NewSQLiteAdapter(path string) (*SQLiteAdapter, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(&ZoneModel{}, &domain.User{}, &domain.AuditLog{}); err != nil {
		return nil, err
	}

	if err := db.Use(tracing.NewPlugin()); err != nil {
		return nil, err
	}

	// WAL mode allows simultaneous readers and one writer; busy_timeout
	// avoids "database locked" errors from the engine's sink and the
	// control plane's report queries racing a collector run.
	db.Exec("PRAGMA journal_mode=WAL;")
	db.Exec("PRAGMA busy_timeout=5000;")
	db.Exec("PRAGMA synchronous=NORMAL;")

	return &SQLiteAdapter{db: db}, nil
}

// DB exposes the underlying connection so sibling adapters (fingerprint
// store) can share one database file and one migration/tracing setup.
func (a *SQLiteAdapter) DB() *gorm.DB {
	return a.db
}

// Close releases the underlying database connection.
func (a *SQLiteAdapter) Close() error {
	sqlDB, err := a.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
