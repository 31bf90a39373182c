package storage

import (
	"context"
	"fmt"
	"log/slog"
)

// ExpectedSchemaVersion is the schema version this build reads and writes.
// Failing to reach it is fatal.
const ExpectedSchemaVersion = 3

// migration is one schema step. Its statements run in a single transaction
// that also bumps PRAGMA user_version.
type migration struct {
	description string
	statements  []string
	version     int
}

var migrations = []migration{
	{
		version:     1,
		description: "feedback and category catalog",
		statements: []string{
			`CREATE TABLE IF NOT EXISTS feedback (
				seq INTEGER PRIMARY KEY AUTOINCREMENT,
				id TEXT UNIQUE NOT NULL,
				user_id TEXT NOT NULL,
				merchant_text TEXT NOT NULL,
				predicted_category TEXT NOT NULL,
				corrected_category TEXT NOT NULL,
				recorded_at DATETIME NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS idx_feedback_user ON feedback(user_id, seq)`,
			`CREATE TABLE IF NOT EXISTS categories (
				position INTEGER PRIMARY KEY AUTOINCREMENT,
				name TEXT UNIQUE NOT NULL,
				created_at DATETIME DEFAULT CURRENT_TIMESTAMP
			)`,
		},
	},
	{
		version:     2,
		description: "learned overlay tokens",
		statements: []string{
			`CREATE TABLE IF NOT EXISTS overlay_tokens (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				user_id TEXT NOT NULL,
				category TEXT NOT NULL,
				token TEXT NOT NULL,
				learned_at DATETIME DEFAULT CURRENT_TIMESTAMP,
				UNIQUE(user_id, category, token)
			)`,
			`CREATE INDEX IF NOT EXISTS idx_overlay_tokens_user ON overlay_tokens(user_id)`,
		},
	},
	{
		version:     3,
		description: "feedback by corrected category",
		statements: []string{
			`CREATE INDEX IF NOT EXISTS idx_feedback_corrected ON feedback(user_id, corrected_category)`,
		},
	},
}

// Migrate applies every pending migration in order.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	current, err := s.SchemaVersion(ctx)
	if err != nil {
		return err
	}

	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		if err := s.apply(ctx, m); err != nil {
			return fmt.Errorf("migration %d (%s) failed: %w", m.version, m.description, err)
		}
		slog.Info("applied migration", "version", m.version, "description", m.description)
	}

	final, err := s.SchemaVersion(ctx)
	if err != nil {
		return fmt.Errorf("failed to verify final schema version: %w", err)
	}
	if final != ExpectedSchemaVersion {
		return fmt.Errorf("database schema version mismatch: expected %d, got %d", ExpectedSchemaVersion, final)
	}
	return nil
}

func (s *SQLiteStorage) apply(ctx context.Context, m migration) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, stmt := range m.statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	// PRAGMA does not accept bound parameters.
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", m.version)); err != nil {
		return fmt.Errorf("failed to update schema version: %w", err)
	}
	return tx.Commit()
}
