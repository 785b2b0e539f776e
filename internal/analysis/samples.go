package analysis

import (
	"errors"
	"fmt"
)

// ErrNoData is returned when the time stream is empty or absent
var ErrNoData = errors.New("no stream data available for analysis")

// Sample is one row of the aligned time-series
type Sample struct {
	Time      float64  `json:"time" yaml:"time"`                               // seconds
	Distance  *float64 `json:"distance" yaml:"distance"`                       // cumulative meters
	Velocity  *float64 `json:"velocity" yaml:"velocity"`                       // m/s
	Heartrate *float64 `json:"heartrate" yaml:"heartrate"`                     // bpm
	Pace      *float64 `json:"pace_min_km" yaml:"pace_min_km"`                 // min/km
	IsWalking bool     `json:"is_walking" yaml:"is_walking"`
	CumAvg    *float64 `json:"cumulative_avg_pace" yaml:"cumulative_avg_pace"` // min/km
}

// WarningKind classifies a non-fatal data problem
type WarningKind string

const (
	WarnMissingStream    WarningKind = "missing_stream"
	WarnInsufficientData WarningKind = "insufficient_data"
)

// Warning describes a degraded part of the analysis
type Warning struct {
	Kind    WarningKind `json:"kind" yaml:"kind"`
	Stream  string      `json:"stream" yaml:"stream"`
	Message string      `json:"message" yaml:"message"`
}

func (w Warning) String() string {
	return fmt.Sprintf("%s (%s): %s", w.Kind, w.Stream, w.Message)
}

// AlignStreams normalizes the bundle onto the time stream. Optional streams
// shorter than time are padded with missing values; values past the end of
// the time stream are ignored. Non-numeric entries become missing.
func AlignStreams(bundle StreamBundle) ([]Sample, []Warning, error) {
	timeData := bundle.Data(StreamTime)
	if len(timeData) == 0 {
		return nil, nil, ErrNoData
	}

	n := len(timeData)
	samples := make([]Sample, n)

	// A non-numeric time entry keeps the previous timestamp so time stays non-decreasing
	var last float64
	for i, raw := range timeData {
		if t := toFloat(raw); t != nil {
			last = *t
		}
		samples[i].Time = last
	}

	var warnings []Warning
	optional := []struct {
		name string
		set  func(s *Sample, v *float64)
	}{
		{StreamDistance, func(s *Sample, v *float64) { s.Distance = v }},
		{StreamVelocity, func(s *Sample, v *float64) { s.Velocity = v }},
		{StreamHeartrate, func(s *Sample, v *float64) { s.Heartrate = v }},
	}

	for _, o := range optional {
		data := bundle.Data(o.name)
		if len(data) == 0 {
			warnings = append(warnings, Warning{
				Kind:    WarnMissingStream,
				Stream:  o.name,
				Message: "stream not present; dependent metrics are unavailable",
			})
			continue
		}
		for i := 0; i < n && i < len(data); i++ {
			o.set(&samples[i], toFloat(data[i]))
		}
	}

	return samples, warnings, nil
}

// DeriveMetrics fills in pace, walk classification and cumulative average pace
func DeriveMetrics(samples []Sample) {
	var paceSum float64
	var paceCount int

	for i := range samples {
		s := &samples[i]
		s.Pace = PaceFromVelocity(s.Velocity)

		// Missing velocity counts as standing still
		velocity := 0.0
		if s.Velocity != nil {
			velocity = *s.Velocity
		}
		s.IsWalking = velocity < WalkVelocityThreshold

		if s.Pace != nil {
			paceSum += *s.Pace
			paceCount++
		}
		if paceCount > 0 {
			s.CumAvg = ptr(paceSum / float64(paceCount))
		} else {
			s.CumAvg = nil
		}
	}
}

// Paces returns the pace column
func Paces(samples []Sample) []*float64 {
	out := make([]*float64, len(samples))
	for i, s := range samples {
		out[i] = s.Pace
	}
	return out
}

// Heartrates returns the heart rate column
func Heartrates(samples []Sample) []*float64 {
	out := make([]*float64, len(samples))
	for i, s := range samples {
		out[i] = s.Heartrate
	}
	return out
}

// Velocities returns the velocity column
func Velocities(samples []Sample) []*float64 {
	out := make([]*float64, len(samples))
	for i, s := range samples {
		out[i] = s.Velocity
	}
	return out
}
