package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds the application configuration.
type Config struct {
	DBPath         string
	CatalogPath    string // empty means the built-in catalog
	LogFile        string
	LogLevel       slog.Level
	GeminiAPIKey   string // empty disables narration
	NarrationModel string
}

// LoadConfig loads the configuration from environment variables, reading
// a .env file in the working directory first if one exists.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	cfg := &Config{
		DBPath:         getenv("FELWINTER_DB", "adventure_game.db"),
		CatalogPath:    os.Getenv("FELWINTER_CATALOG"),
		LogFile:        getenv("FELWINTER_LOG_FILE", "felwinter.log"),
		GeminiAPIKey:   os.Getenv("GEMINI_API_KEY"),
		NarrationModel: getenv("FELWINTER_NARRATION_MODEL", "gemini-2.5-flash"),
	}

	if lvl := os.Getenv("FELWINTER_LOG_LEVEL"); lvl != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(strings.ToUpper(lvl))); err != nil {
			return nil, fmt.Errorf("FELWINTER_LOG_LEVEL: %w", err)
		}
	}

	return cfg, nil
}

// NarrationEnabled reports whether scene narration can be generated.
func (c *Config) NarrationEnabled() bool {
	return c.GeminiAPIKey != ""
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
