package store

import (
	"database/sql"
	"errors"
	"time"
)

// Sync state keys
const (
	KeyLastRunsFetch = "last_runs_fetch"
)

// GetSyncState retrieves a sync state value by key.
// Returns empty string if key doesn't exist.
func (db *DB) GetSyncState(key string) (string, error) {
	var value string
	err := db.QueryRow(`
		SELECT value FROM sync_state WHERE key = ?
	`, key).Scan(&value)

	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return value, err
}

// SetSyncState sets a sync state value
func (db *DB) SetSyncState(key, value string) error {
	_, err := db.Exec(`
		INSERT INTO sync_state (key, value, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = CURRENT_TIMESTAMP
	`, key, value)
	return err
}

// LastRunsFetch returns when the run list was last refreshed from Strava,
// or the zero time if never
func (db *DB) LastRunsFetch() (time.Time, error) {
	v, err := db.GetSyncState(KeyLastRunsFetch)
	if err != nil || v == "" {
		return time.Time{}, err
	}
	return time.Parse(time.RFC3339, v)
}

// SetLastRunsFetch records a successful run list refresh
func (db *DB) SetLastRunsFetch(t time.Time) error {
	return db.SetSyncState(KeyLastRunsFetch, t.UTC().Format(time.RFC3339))
}
