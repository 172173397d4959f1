// Package sqlite is the persistence layer for the StreaX engine.
// The completion log kept here is the system of record: stats and the
// activity map are always reconstructible from it.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// dbtx is satisfied by both *sql.DB and *sql.Tx so every query helper
// works inside and outside a transaction.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// queries carries the shared statement helpers.
type queries struct {
	q dbtx
}

// DB wraps the engine's SQLite handle.
type DB struct {
	queries
	db *sql.DB
}

// Tx exposes the same helpers bound to an open transaction.
type Tx struct {
	queries
}

// DefaultPath returns the default database location under the user's home.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "streax.db"
	}
	return filepath.Join(home, ".streax", "streax.db")
}

// Open opens (creating if missing) the database at path and applies the
// schema migrations.
func Open(path string) (*DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	handle, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// Single-writer discipline lives in the engine; the busy timeout is a
	// backstop for CLI and server sharing one file.
	for _, pragma := range []string{
		`PRAGMA journal_mode = WAL`,
		`PRAGMA busy_timeout = 5000`,
		`PRAGMA foreign_keys = ON`,
	} {
		if _, err := handle.Exec(pragma); err != nil {
			handle.Close()
			return nil, fmt.Errorf("apply pragma: %w", err)
		}
	}

	db := &DB{queries: queries{q: handle}, db: handle}
	if err := db.migrate(context.Background()); err != nil {
		handle.Close()
		return nil, err
	}
	return db, nil
}

// Close releases the underlying handle.
func (db *DB) Close() error { return db.db.Close() }

// WithTx runs fn inside a transaction: either every write in the closure
// lands, or none of them do.
func (db *DB) WithTx(ctx context.Context, fn func(tx *Tx) error) error {
	tx, err := db.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	if err := fn(&Tx{queries: queries{q: tx}}); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// Migrations returns the schema statements. Each string is a single SQL
// statement (SQLite executes one at a time).
func Migrations() []string {
	return []string{
		// Per-user progression aggregate. xp is XP into the current level;
		// the next-level threshold is derived, never stored.
		`CREATE TABLE IF NOT EXISTS user_stats (
			user_id            TEXT PRIMARY KEY,
			level              INTEGER NOT NULL DEFAULT 1,
			xp                 INTEGER NOT NULL DEFAULT 0,
			streak_days        INTEGER NOT NULL DEFAULT 0,
			consecutive_misses INTEGER NOT NULL DEFAULT 0,
			last_processed_day TEXT,
			created_at         TEXT NOT NULL DEFAULT (datetime('now'))
		)`,

		// Task registry. Deleted tasks stay as rows so historical log
		// snapshots keep resolving; they are only hidden from listings
		// and future processing.
		`CREATE TABLE IF NOT EXISTS tasks (
			id             TEXT PRIMARY KEY,
			user_id        TEXT NOT NULL,
			name           TEXT NOT NULL,
			type           TEXT NOT NULL DEFAULT 'small',
			base_xp        INTEGER NOT NULL,
			required_daily INTEGER NOT NULL DEFAULT 0,
			deleted        INTEGER NOT NULL DEFAULT 0,
			created_at     TEXT NOT NULL DEFAULT (datetime('now'))
		)`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_user ON tasks(user_id, deleted)`,

		// Append-only completion log, one row per (user, task, day).
		// task_name and xp_awarded are frozen snapshots from award time.
		`CREATE TABLE IF NOT EXISTS task_logs (
			id             INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id        TEXT NOT NULL,
			task_id        TEXT NOT NULL,
			task_name      TEXT NOT NULL,
			day            TEXT NOT NULL,
			xp_awarded     INTEGER NOT NULL,
			counted        INTEGER NOT NULL DEFAULT 0,
			streak_at_time INTEGER NOT NULL DEFAULT 0,
			created_at     TEXT NOT NULL DEFAULT (datetime('now')),
			UNIQUE(user_id, task_id, day)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_logs_user_day ON task_logs(user_id, day)`,
	}
}

func (db *DB) migrate(ctx context.Context) error {
	for _, stmt := range Migrations() {
		if _, err := db.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
