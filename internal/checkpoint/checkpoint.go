// Package checkpoint keeps the client-local record of the last day a
// rollover was confirmed for a user. It is advisory only: the server row
// is authoritative, this cache just saves the CLI a network round trip
// when rollover already ran today.
package checkpoint

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/dailyflow/dailyreset/internal/model"
)

// Store is the local checkpoint database
type Store struct {
	db *sql.DB
}

// DefaultPath returns the default database path (~/.dailyreset/state.db)
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".dailyreset", "state.db"), nil
}

// Open opens or creates the checkpoint database
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create state directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open state database: %w", err)
	}

	if _, err := db.Exec(migrationLocalState); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate state database: %w", err)
	}

	return &Store{db: db}, nil
}

// OpenDefault opens the checkpoint database at the default path
func OpenDefault() (*Store, error) {
	path, err := DefaultPath()
	if err != nil {
		return nil, err
	}
	return Open(path)
}

const migrationLocalState = `
CREATE TABLE IF NOT EXISTS local_state (
    key TEXT PRIMARY KEY,
    value TEXT
);
`

func resetKey(userID string) string {
	return "lastResetDate_" + userID
}

// LastReset returns the last day a rollover was confirmed for the user.
// ok is false when no checkpoint exists, which callers treat the same as
// a stale one.
func (s *Store) LastReset(userID string) (day model.Day, ok bool, err error) {
	var value string
	err = s.db.QueryRow(`SELECT value FROM local_state WHERE key = ?`, resetKey(userID)).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}

	day, err = model.ParseDay(value)
	if err != nil {
		// Unreadable value, same as absent.
		return "", false, nil
	}
	return day, true, nil
}

// SetLastReset records a confirmed rollover day for the user
func (s *Store) SetLastReset(userID string, day model.Day) error {
	_, err := s.db.Exec(`
		INSERT INTO local_state (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		resetKey(userID), day.String(),
	)
	return err
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}
