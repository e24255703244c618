package config

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
)

// LoadEnv loads variables from a .env file when one is present.
// Variables already set in the environment take precedence.
func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, using process environment")
	}
}

// GetEnv returns the value of key, or fallback when it is unset or empty
func GetEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
