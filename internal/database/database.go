package database

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"extmedia/internal/models"

	_ "github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Database struct {
	DB *gorm.DB
}

func New(databaseURL, logLevel string) (*Database, error) {
	var db *gorm.DB
	var err error

	gormConfig := &gorm.Config{
		Logger: logger.New(log.New(os.Stdout, "\r\n", log.LstdFlags), logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormLogLevel(logLevel),
			IgnoreRecordNotFoundError: true,
		}),
	}

	if strings.HasPrefix(databaseURL, "sqlite://") {
		// SQLite for development
		dbPath := strings.TrimPrefix(databaseURL, "sqlite://")
		db, err = gorm.Open(sqlite.Open(dbPath), gormConfig)
	} else {
		// PostgreSQL for production, through lib/pq
		db, err = gorm.Open(postgres.New(postgres.Config{
			DriverName: "postgres",
			DSN:        databaseURL,
		}), gormConfig)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	return &Database{DB: db}, nil
}

// Migrate creates the tables and the partial unique index that keeps external ids unique
// among externally sourced records.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.MediaRecord{}, &models.Product{}); err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}

	createIndexSQL := `
	CREATE UNIQUE INDEX IF NOT EXISTS idx_media_records_external_unique
		ON media_records (external_id)
		WHERE is_external
	`
	if err := db.Exec(createIndexSQL).Error; err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	return nil
}

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func gormLogLevel(level string) logger.LogLevel {
	switch level {
	case "debug":
		return logger.Info
	case "info", "warn":
		return logger.Warn
	case "error":
		return logger.Error
	default:
		return logger.Silent
	}
}
