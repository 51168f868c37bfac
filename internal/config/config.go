// Package config loads engine configuration from environment variables,
// optionally seeded from a .env file.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config is the runtime configuration of the progression daemon.
type Config struct {
	// Env selects logger behavior: "dev" or "prod".
	Env string `validate:"required,oneof=dev prod"`
	// DBDriver is "sqlite" or "postgres".
	DBDriver string `validate:"required,oneof=sqlite postgres"`
	// DBDSN is the driver-specific connection string. For sqlite this is
	// the database file path.
	DBDSN string `validate:"required"`
	// ReminderStartHour / ReminderEndHour bound the UTC hours during
	// which the due-review reminder scan runs.
	ReminderStartHour int `validate:"gte=0,lte=23"`
	ReminderEndHour   int `validate:"gte=0,lte=23,gtefield=ReminderStartHour"`
	// ReminderLimit caps how many users one reminder scan notifies.
	ReminderLimit int `validate:"gt=0"`
}

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first when present.
func Load() (*Config, error) {
	// Missing .env is fine; real environments set variables directly.
	_ = godotenv.Load()

	cfg := &Config{
		Env:               getEnv("APP_ENV", "dev"),
		DBDriver:          getEnv("DB_DRIVER", "sqlite"),
		DBDSN:             getEnv("DB_DSN", "data/lingopal.db"),
		ReminderStartHour: getEnvInt("REMINDER_START_HOUR", 8),
		ReminderEndHour:   getEnvInt("REMINDER_END_HOUR", 22),
		ReminderLimit:     getEnvInt("REMINDER_LIMIT", 500),
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
