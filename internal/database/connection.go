// Package database provides the sqlx connection and the repositories backing
// the progression engine's stores.
package database

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// Connect opens a database connection for the given driver ("sqlite" or
// "postgres") and initializes the schema. The sqlite DSN is a file path;
// ":memory:" gives an in-memory database for tests.
func Connect(driver, dsn string) (*sqlx.DB, error) {
	var db *sqlx.DB
	var err error

	switch driver {
	case "sqlite":
		if dsn != ":memory:" {
			if dir := filepath.Dir(dsn); dir != "." {
				if err := os.MkdirAll(dir, 0755); err != nil {
					return nil, fmt.Errorf("failed to create data directory: %w", err)
				}
			}
		}
		db, err = sqlx.Connect("sqlite3", dsn)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to sqlite: %w", err)
		}
		if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
			return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
		}
		// SQLite doesn't support multiple writers
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	case "postgres":
		db, err = sqlx.Connect("postgres", dsn)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	if err := initializeSchema(db); err != nil {
		return nil, err
	}
	return db, nil
}

// initializeSchema creates the engine tables if they don't exist. The DDL is
// kept to the subset both sqlite and postgres accept.
func initializeSchema(db *sqlx.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS vocabulary_items (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			word TEXT NOT NULL,
			translation TEXT NOT NULL,
			language TEXT NOT NULL,
			native_language TEXT NOT NULL,
			srs_level INTEGER NOT NULL DEFAULT 0,
			ease_factor REAL NOT NULL DEFAULT 2.5,
			interval_days INTEGER NOT NULL DEFAULT 0,
			next_review TIMESTAMP NOT NULL,
			last_reviewed_at TIMESTAMP,
			total_reviews INTEGER NOT NULL DEFAULT 0,
			correct_reviews INTEGER NOT NULL DEFAULT 0,
			incorrect_reviews INTEGER NOT NULL DEFAULT 0,
			item_streak INTEGER NOT NULL DEFAULT 0,
			best_item_streak INTEGER NOT NULL DEFAULT 0,
			review_history TEXT NOT NULL DEFAULT '[]',
			is_mastered BOOLEAN NOT NULL DEFAULT FALSE,
			mastered_at TIMESTAMP,
			archived BOOLEAN NOT NULL DEFAULT FALSE,
			version INTEGER NOT NULL DEFAULT 1,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(user_id, word, language)
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create vocabulary_items table: %w", err)
	}

	_, err = db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_vocabulary_items_due
		ON vocabulary_items (user_id, next_review)
	`)
	if err != nil {
		return fmt.Errorf("failed to create vocabulary_items index: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS user_progressions (
			user_id TEXT PRIMARY KEY,
			total_xp INTEGER NOT NULL DEFAULT 0,
			weekly_xp INTEGER NOT NULL DEFAULT 0,
			daily_xp INTEGER NOT NULL DEFAULT 0,
			daily_goal_xp INTEGER NOT NULL DEFAULT 50,
			current_streak INTEGER NOT NULL DEFAULT 0,
			longest_streak INTEGER NOT NULL DEFAULT 0,
			last_activity_date TEXT NOT NULL DEFAULT '',
			proficiency_level TEXT NOT NULL DEFAULT 'A1',
			timezone TEXT NOT NULL DEFAULT 'UTC',
			lessons_completed INTEGER NOT NULL DEFAULT 0,
			vocabulary_mastered INTEGER NOT NULL DEFAULT 0,
			corrections_given INTEGER NOT NULL DEFAULT 0,
			messages_sent INTEGER NOT NULL DEFAULT 0,
			reviews_completed INTEGER NOT NULL DEFAULT 0,
			version INTEGER NOT NULL DEFAULT 1,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create user_progressions table: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS xp_awards (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			base_amount INTEGER NOT NULL,
			adjusted_amount INTEGER NOT NULL,
			multiplier REAL NOT NULL,
			reason TEXT NOT NULL,
			source TEXT NOT NULL DEFAULT '',
			idempotency_key TEXT,
			awarded_at TIMESTAMP NOT NULL,
			UNIQUE(user_id, idempotency_key)
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create xp_awards table: %w", err)
	}

	_, err = db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_xp_awards_user_time
		ON xp_awards (user_id, awarded_at)
	`)
	if err != nil {
		return fmt.Errorf("failed to create xp_awards index: %w", err)
	}

	return nil
}
