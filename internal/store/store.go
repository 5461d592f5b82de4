package store

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/GMOnyx/Commandlessapp-sub004/internal/ratelimit"
)

// Namespaces for persisted windows, matching the cache's key spaces.
const (
	NamespaceUser   = "user"
	NamespaceServer = "server"
)

// Store is an optional SQLite mirror of live rate-limit windows. It exists
// only so a restarting client can resume mid-window counts instead of
// briefly failing open; the relay backend remains the authoritative counter.
type Store struct {
	db *sql.DB
}

var globalStore *Store

// Initialize opens (or creates) the mirror database at path.
func Initialize(path string) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}

	db.SetMaxOpenConns(4)
	db.SetConnMaxIdleTime(10 * time.Minute)

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to ping store: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return fmt.Errorf("failed to enable WAL: %w", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS rate_limit_windows (
		namespace   TEXT NOT NULL,
		subject_key TEXT NOT NULL,
		count       INTEGER NOT NULL,
		reset_at    INTEGER NOT NULL,
		PRIMARY KEY (namespace, subject_key)
	);`
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}

	globalStore = &Store{db: db}
	return nil
}

func Get() *Store {
	return globalStore
}

func Close() error {
	if globalStore != nil && globalStore.db != nil {
		return globalStore.db.Close()
	}
	return nil
}

// SaveWindows replaces the persisted windows for one namespace with the
// given snapshot.
func (s *Store) SaveWindows(namespace string, windows map[string]ratelimit.Window) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin save: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM rate_limit_windows WHERE namespace = ?", namespace); err != nil {
		return fmt.Errorf("failed to clear namespace %s: %w", namespace, err)
	}

	stmt, err := tx.Prepare(
		"INSERT INTO rate_limit_windows (namespace, subject_key, count, reset_at) VALUES (?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for key, w := range windows {
		if _, err := stmt.Exec(namespace, key, w.Count, w.ResetAt.UnixMilli()); err != nil {
			return fmt.Errorf("failed to persist window %s/%s: %w", namespace, key, err)
		}
	}

	return tx.Commit()
}

// LoadWindows reads the persisted windows for one namespace. Expired entries
// come back too; Table.Restore drops them.
func (s *Store) LoadWindows(namespace string) (map[string]ratelimit.Window, error) {
	rows, err := s.db.Query(
		"SELECT subject_key, count, reset_at FROM rate_limit_windows WHERE namespace = ?", namespace)
	if err != nil {
		return nil, fmt.Errorf("failed to load namespace %s: %w", namespace, err)
	}
	defer rows.Close()

	windows := make(map[string]ratelimit.Window)
	for rows.Next() {
		var key string
		var count int
		var resetAt int64
		if err := rows.Scan(&key, &count, &resetAt); err != nil {
			return nil, fmt.Errorf("failed to scan window row: %w", err)
		}
		windows[key] = ratelimit.Window{Count: count, ResetAt: time.UnixMilli(resetAt)}
	}
	return windows, rows.Err()
}

// PurgeExpired deletes every persisted window whose reset time has passed.
func (s *Store) PurgeExpired(now time.Time) (int64, error) {
	res, err := s.db.Exec("DELETE FROM rate_limit_windows WHERE reset_at < ?", now.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("failed to purge expired windows: %w", err)
	}
	return res.RowsAffected()
}
