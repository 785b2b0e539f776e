package service

import (
	"time"

	"runanalyzer/internal/analysis"
	"runanalyzer/internal/store"
)

// ActivitySummary describes the activity a report was built from
type ActivitySummary struct {
	ID            int64     `json:"id" yaml:"id"`
	Name          string    `json:"name" yaml:"name"`
	StartDate     time.Time `json:"start_date" yaml:"start_date"`
	DistanceKm    float64   `json:"distance_km" yaml:"distance_km"`
	MovingTimeSec int       `json:"moving_time_sec" yaml:"moving_time_sec"`
	AvgPace       *float64  `json:"avg_pace,omitempty" yaml:"avg_pace,omitempty"` // min/km
	AvgHeartrate  *float64  `json:"avg_heartrate,omitempty" yaml:"avg_heartrate,omitempty"`
}

// Report is one analyzed activity
type Report struct {
	RunID      string           `json:"run_id" yaml:"run_id"`
	Source     string           `json:"source" yaml:"source"` // "strava" or a file path
	Activity   *ActivitySummary `json:"activity,omitempty" yaml:"activity,omitempty"`
	AnalyzedAt time.Time        `json:"analyzed_at" yaml:"analyzed_at"`
	Result     *analysis.Result `json:"result" yaml:"result"`
}

// Title is a one-line heading for the report
func (r *Report) Title() string {
	if r.Activity == nil {
		return r.Source
	}
	return r.Activity.Name + " (" + r.Activity.StartDate.Local().Format("Mon Jan 2, 15:04") + ")"
}

func summarizeActivity(a *store.Activity) *ActivitySummary {
	if a == nil {
		return nil
	}
	s := &ActivitySummary{
		ID:            a.ID,
		Name:          a.Name,
		StartDate:     a.StartDate,
		DistanceKm:    a.Distance / 1000,
		MovingTimeSec: a.MovingTime,
		AvgHeartrate:  a.AverageHeartrate,
	}
	if a.AverageSpeed > 0 {
		pace := 1000 / (a.AverageSpeed * 60)
		s.AvgPace = &pace
	}
	return s
}
