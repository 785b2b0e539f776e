package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"runanalyzer/internal/analysis"
)

// SaveStreamBundle caches the raw stream bundle for an activity,
// replacing any earlier copy
func (db *DB) SaveStreamBundle(activityID int64, bundle analysis.StreamBundle) error {
	payload, err := json.Marshal(bundle)
	if err != nil {
		return fmt.Errorf("encoding stream bundle: %w", err)
	}

	_, err = db.Exec(`
		INSERT INTO stream_bundles (activity_id, payload, sample_count, fetched_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(activity_id) DO UPDATE SET
			payload = excluded.payload,
			sample_count = excluded.sample_count,
			fetched_at = CURRENT_TIMESTAMP
	`, activityID, string(payload), bundle.Len())
	if err != nil {
		return fmt.Errorf("saving stream bundle: %w", err)
	}
	return nil
}

// GetStreamBundle loads the cached stream bundle for an activity
func (db *DB) GetStreamBundle(activityID int64) (analysis.StreamBundle, error) {
	var payload string
	err := db.QueryRow(`
		SELECT payload FROM stream_bundles WHERE activity_id = ?
	`, activityID).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrStreamsNotFound
	}
	if err != nil {
		return nil, err
	}

	bundle := analysis.StreamBundle{}
	if err := json.Unmarshal([]byte(payload), &bundle); err != nil {
		return nil, fmt.Errorf("decoding stream bundle: %w", err)
	}
	return bundle, nil
}

// HasStreamBundle checks if an activity has cached stream data
func (db *DB) HasStreamBundle(activityID int64) (bool, error) {
	var exists int
	err := db.QueryRow(`
		SELECT 1 FROM stream_bundles WHERE activity_id = ? LIMIT 1
	`, activityID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// DeleteStreamBundle removes cached stream data for an activity
func (db *DB) DeleteStreamBundle(activityID int64) error {
	_, err := db.Exec("DELETE FROM stream_bundles WHERE activity_id = ?", activityID)
	return err
}
