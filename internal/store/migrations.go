package store

import "database/sql"

// migrate runs all database migrations
func migrate(db *sql.DB) error {
	migrations := []string{
		// Authentication (singleton row)
		`CREATE TABLE IF NOT EXISTS auth (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			athlete_id INTEGER NOT NULL,
			access_token TEXT NOT NULL,
			refresh_token TEXT NOT NULL,
			expires_at INTEGER NOT NULL,
			scope TEXT NOT NULL DEFAULT '',
			created_at TEXT DEFAULT CURRENT_TIMESTAMP,
			updated_at TEXT DEFAULT CURRENT_TIMESTAMP
		)`,

		// Activity summaries seen in /athlete/activities listings
		`CREATE TABLE IF NOT EXISTS activities (
			id INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			type TEXT NOT NULL,
			start_date TEXT NOT NULL,
			start_date_local TEXT NOT NULL,
			timezone TEXT,
			distance REAL NOT NULL,
			moving_time INTEGER NOT NULL,
			elapsed_time INTEGER NOT NULL,
			total_elevation_gain REAL,
			average_speed REAL,
			max_speed REAL,
			average_heartrate REAL,
			max_heartrate REAL,
			has_heartrate INTEGER NOT NULL,
			created_at TEXT DEFAULT CURRENT_TIMESTAMP,
			updated_at TEXT DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE INDEX IF NOT EXISTS idx_activities_start_date ON activities(start_date)`,
		`CREATE INDEX IF NOT EXISTS idx_activities_type ON activities(type)`,

		// Raw stream bundles as returned by /activities/{id}/streams, stored as JSON
		// so non-numeric entries survive until the analysis coerces them
		`CREATE TABLE IF NOT EXISTS stream_bundles (
			activity_id INTEGER PRIMARY KEY,
			payload TEXT NOT NULL,
			sample_count INTEGER NOT NULL,
			fetched_at TEXT DEFAULT CURRENT_TIMESTAMP
		)`,

		// One row per analysis performed, keyed by the run id used in logs
		`CREATE TABLE IF NOT EXISTS analysis_runs (
			run_id TEXT PRIMARY KEY,
			activity_id INTEGER,
			source TEXT NOT NULL,
			sample_count INTEGER NOT NULL,
			walk_count INTEGER NOT NULL,
			avg_pace REAL,
			avg_heartrate REAL,
			warning_count INTEGER NOT NULL,
			error TEXT NOT NULL DEFAULT '',
			analyzed_at TEXT NOT NULL
		)`,

		`CREATE INDEX IF NOT EXISTS idx_analysis_runs_activity ON analysis_runs(activity_id)`,
		`CREATE INDEX IF NOT EXISTS idx_analysis_runs_analyzed_at ON analysis_runs(analyzed_at)`,

		// Sync State (key-value store for fetch bookkeeping)
		`CREATE TABLE IF NOT EXISTS sync_state (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at TEXT DEFAULT CURRENT_TIMESTAMP
		)`,
	}

	for _, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return err
		}
	}

	return nil
}
