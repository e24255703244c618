package config

import (
	"fmt"
	"log/slog"
	"os"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// ConnectDB opens the PostgreSQL connection. The process exits when the
// database is unreachable.
func ConnectDB() {
	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
		GetEnv("DB_HOST", "localhost"),
		GetEnv("DB_PORT", "5432"),
		GetEnv("DB_USER", "postgres"),
		GetEnv("DB_PASSWORD", ""),
		GetEnv("DB_NAME", "coral_embed"),
		GetEnv("DB_SSLMODE", "disable"),
	)

	logLevel := logger.Warn
	if GetEnv("LOG_LEVEL", "") == "debug" {
		logLevel = logger.Info
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logLevel),
		TranslateError: true,
	})
	if err != nil {
		slog.Error("database connection failed", "err", err)
		os.Exit(1)
	}

	DB = db
	slog.Info("database connected")
}

// GetDB returns the database instance
func GetDB() *gorm.DB {
	return DB
}
