package strava

import "time"

// ActivityTypeRun is the Strava activity type the analyzer works on
const ActivityTypeRun = "Run"

// Activity is the summary of a Strava activity as returned by the API
type Activity struct {
	ID                 int64     `json:"id"`
	Name               string    `json:"name"`
	Type               string    `json:"type"`
	SportType          string    `json:"sport_type"`
	StartDate          time.Time `json:"start_date"`
	StartDateLocal     time.Time `json:"start_date_local"`
	Timezone           string    `json:"timezone"`
	Distance           float64   `json:"distance"`             // meters
	MovingTime         int       `json:"moving_time"`          // seconds
	ElapsedTime        int       `json:"elapsed_time"`         // seconds
	TotalElevationGain float64   `json:"total_elevation_gain"` // meters
	AverageSpeed       float64   `json:"average_speed"`        // m/s
	MaxSpeed           float64   `json:"max_speed"`            // m/s
	AverageHeartrate   float64   `json:"average_heartrate"`    // bpm
	MaxHeartrate       float64   `json:"max_heartrate"`        // bpm
	HasHeartrate       bool      `json:"has_heartrate"`
}

// IsRun reports whether the activity is a run
func (a Activity) IsRun() bool {
	return a.Type == ActivityTypeRun
}

// PaceMinPerKm returns the average moving pace, or 0 when not moving
func (a Activity) PaceMinPerKm() float64 {
	if a.AverageSpeed <= 0 {
		return 0
	}
	return 1000 / (a.AverageSpeed * 60)
}
