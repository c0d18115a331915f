package config

import (
	"log/slog"

	"github.com/joho/godotenv"
)

// loadEnvFiles loads environment variables from .env/.env.local if present,
// without overriding the existing process environment. Missing files are not
// an error.
func loadEnvFiles() {
	for _, path := range []string{".env", ".env.local"} {
		if err := godotenv.Load(path); err == nil {
			slog.Debug("Loaded environment variables", slog.String("file", path))
		}
	}
}
