// Package store handles persistence of collections, stats and preferences.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/verte-zerg/pomodex/internal/battle"
	"github.com/verte-zerg/pomodex/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Store wraps SQLite access. It holds device preferences directly and hands
// out per-trainer collection views with ForTrainer.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data dir: %w", err)
	}
	db, err := sql.Open("sqlite", "file:"+path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks that the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS collection (
			trainer_id TEXT NOT NULL,
			creature_id INTEGER NOT NULL,
			seen INTEGER NOT NULL DEFAULT 0,
			caught INTEGER NOT NULL DEFAULT 0,
			caught_count INTEGER NOT NULL DEFAULT 0,
			PRIMARY KEY (trainer_id, creature_id)
		);`,
		`CREATE TABLE IF NOT EXISTS trainer_stats (
			trainer_id TEXT PRIMARY KEY,
			total_focus_minutes INTEGER NOT NULL DEFAULT 0,
			total_sessions INTEGER NOT NULL DEFAULT 0,
			total_attempts INTEGER NOT NULL DEFAULT 0
		);`,
		`CREATE TABLE IF NOT EXISTS sessions (
			id INTEGER PRIMARY KEY,
			trainer_id TEXT NOT NULL,
			ended_at TEXT NOT NULL,
			duration_minutes INTEGER NOT NULL,
			creature_id INTEGER NOT NULL,
			caught INTEGER NOT NULL,
			chance_pct REAL NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS prefs (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_trainer_ended_at ON sessions(trainer_id, ended_at);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Pref reads a preference. Missing keys report ok=false.
func (s *Store) Pref(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM prefs WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read preference %q: %w", key, err)
	}
	return value, true, nil
}

// SetPref writes a preference.
func (s *Store) SetPref(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO prefs (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	if err != nil {
		return fmt.Errorf("failed to write preference %q: %w", key, err)
	}
	return nil
}

// TrainerID returns the device's trainer id, generating and storing a new
// one on first use.
func (s *Store) TrainerID(ctx context.Context) (string, error) {
	return EnsureTrainerID(ctx, s)
}

// EnsureTrainerID reads the trainer id from prefs, creating one if absent
// or malformed.
func EnsureTrainerID(ctx context.Context, prefs battle.Prefs) (string, error) {
	v, ok, err := prefs.Pref(ctx, battle.PrefTrainerID)
	if err != nil {
		return "", err
	}
	if ok {
		if id, perr := uuid.Parse(v); perr == nil {
			return id.String(), nil
		}
	}
	id := uuid.NewString()
	if err := prefs.SetPref(ctx, battle.PrefTrainerID, id); err != nil {
		return "", err
	}
	return id, nil
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%w: failed to %s: %w", model.ErrStoreUnavailable, op, err)
}
