package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// analyzedAtLayout has a fixed width so the column sorts chronologically as text
const analyzedAtLayout = "2006-01-02T15:04:05.000000Z07:00"

// RecordAnalysisRun stores the headline numbers of an analysis
func (db *DB) RecordAnalysisRun(r *AnalysisRun) error {
	_, err := db.Exec(`
		INSERT INTO analysis_runs (
			run_id, activity_id, source, sample_count, walk_count,
			avg_pace, avg_heartrate, warning_count, error, analyzed_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		r.RunID, r.ActivityID, r.Source, r.SampleCount, r.WalkCount,
		r.AvgPace, r.AvgHeartrate, r.WarningCount, r.Error,
		r.AnalyzedAt.UTC().Format(analyzedAtLayout),
	)
	if err != nil {
		return fmt.Errorf("recording analysis run: %w", err)
	}
	return nil
}

// LatestAnalysisRun returns the most recent analysis of an activity,
// or nil if it was never analyzed
func (db *DB) LatestAnalysisRun(activityID int64) (*AnalysisRun, error) {
	row := db.QueryRow(`
		SELECT run_id, activity_id, source, sample_count, walk_count,
			avg_pace, avg_heartrate, warning_count, error, analyzed_at
		FROM analysis_runs
		WHERE activity_id = ?
		ORDER BY analyzed_at DESC, rowid DESC
		LIMIT 1
	`, activityID)

	r, err := scanAnalysisRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return r, err
}

// ListAnalysisRuns returns the most recent analyses, newest first
func (db *DB) ListAnalysisRuns(limit int) ([]AnalysisRun, error) {
	rows, err := db.Query(`
		SELECT run_id, activity_id, source, sample_count, walk_count,
			avg_pace, avg_heartrate, warning_count, error, analyzed_at
		FROM analysis_runs
		ORDER BY analyzed_at DESC, rowid DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []AnalysisRun
	for rows.Next() {
		r, err := scanAnalysisRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *r)
	}
	return runs, rows.Err()
}

func scanAnalysisRun(row scanner) (*AnalysisRun, error) {
	var r AnalysisRun
	var analyzedAt string
	err := row.Scan(
		&r.RunID, &r.ActivityID, &r.Source, &r.SampleCount, &r.WalkCount,
		&r.AvgPace, &r.AvgHeartrate, &r.WarningCount, &r.Error, &analyzedAt,
	)
	if err != nil {
		return nil, err
	}
	if r.AnalyzedAt, err = time.Parse(analyzedAtLayout, analyzedAt); err != nil {
		return nil, fmt.Errorf("parsing analyzed_at %q: %w", analyzedAt, err)
	}
	return &r, nil
}
