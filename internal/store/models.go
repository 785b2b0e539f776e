package store

import "time"

// Auth represents OAuth tokens for Strava API access
type Auth struct {
	AthleteID    int64     `db:"athlete_id"`
	AccessToken  string    `db:"access_token"`
	RefreshToken string    `db:"refresh_token"`
	ExpiresAt    time.Time `db:"expires_at"`
	Scope        string    `db:"scope"`
}

// Activity is a cached Strava activity summary
type Activity struct {
	ID                 int64     `db:"id"`
	Name               string    `db:"name"`
	Type               string    `db:"type"`
	StartDate          time.Time `db:"start_date"`
	StartDateLocal     time.Time `db:"start_date_local"`
	Timezone           string    `db:"timezone"`
	Distance           float64   `db:"distance"`     // meters
	MovingTime         int       `db:"moving_time"`  // seconds
	ElapsedTime        int       `db:"elapsed_time"` // seconds
	TotalElevationGain float64   `db:"total_elevation_gain"`
	AverageSpeed       float64   `db:"average_speed"`     // m/s
	MaxSpeed           float64   `db:"max_speed"`         // m/s
	AverageHeartrate   *float64  `db:"average_heartrate"` // nullable
	MaxHeartrate       *float64  `db:"max_heartrate"`     // nullable
	HasHeartrate       bool      `db:"has_heartrate"`
}

// AnalysisRun records one completed analysis
type AnalysisRun struct {
	RunID        string    `db:"run_id"`
	ActivityID   *int64    `db:"activity_id"` // nil for offline files
	Source       string    `db:"source"`      // "strava" or a file path
	SampleCount  int       `db:"sample_count"`
	WalkCount    int       `db:"walk_count"`
	AvgPace      *float64  `db:"avg_pace"`      // min/km
	AvgHeartrate *float64  `db:"avg_heartrate"` // bpm
	WarningCount int       `db:"warning_count"`
	Error        string    `db:"error"`
	AnalyzedAt   time.Time `db:"analyzed_at"`
}
