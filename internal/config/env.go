package config

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
)

// loadEnvFiles fills the process environment from .env/.env.local when they
// exist. godotenv never overrides variables already set, so real environment
// always wins over file contents.
func loadEnvFiles() {
	for _, path := range []string{".env", ".env.local"} {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			slog.Warn("could not load env file", "path", path, "error", err)
			continue
		}
		slog.Debug("loaded environment variables", "path", path)
	}
}
