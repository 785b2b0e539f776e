package analysis

import (
	"encoding/json"
	"fmt"
)

// NoDataMessage is the error reported in Insights when there is nothing to analyze
const NoDataMessage = "No stream data available for analysis."

// Insights is the summary of one analyzed activity. Optional values are nil
// when the underlying data was not available.
type Insights struct {
	AvgPace            *float64      `json:"avg_pace" yaml:"avg_pace"`                 // min/km
	PaceFluctuation    *float64      `json:"pace_fluctuation" yaml:"pace_fluctuation"` // std dev, min/km
	WalkCount          int           `json:"walk_count" yaml:"walk_count"`
	AvgRunDurationMin  float64       `json:"avg_run_duration_min" yaml:"avg_run_duration_min"`
	AvgWalkDurationMin float64       `json:"avg_walk_duration_min" yaml:"avg_walk_duration_min"`
	AvgHeartRate       *float64      `json:"avg_heart_rate" yaml:"avg_heart_rate"`
	MaxHeartRate       *float64      `json:"max_heart_rate" yaml:"max_heart_rate"`
	HRZoneDistribution []ZoneCount   `json:"hr_zone_distribution" yaml:"hr_zone_distribution"`
	MeanMaxPace        []MeanMaxPace `json:"mean_max_pace" yaml:"mean_max_pace"`
	DistanceSplits     []Split       `json:"distance_splits" yaml:"distance_splits"`
	Suggestions        []string      `json:"suggestions" yaml:"suggestions"`
	AISuggestions      []string      `json:"ai_suggestions" yaml:"ai_suggestions"`
	Warnings           []Warning     `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	Error              string        `json:"error,omitempty" yaml:"error,omitempty"`
}

// HasError reports whether the analysis failed for lack of data
func (in Insights) HasError() bool {
	return in.Error != ""
}

type insightsFields Insights

// MarshalJSON emits only the error field for a failed analysis
func (in Insights) MarshalJSON() ([]byte, error) {
	if in.HasError() {
		return json.Marshal(map[string]string{"error": in.Error})
	}
	return json.Marshal(insightsFields(in))
}

// MarshalYAML mirrors MarshalJSON for YAML encoders
func (in Insights) MarshalYAML() (interface{}, error) {
	if in.HasError() {
		return map[string]string{"error": in.Error}, nil
	}
	return insightsFields(in), nil
}

// Result bundles everything Analyze produces
type Result struct {
	Samples  []Sample  `json:"samples" yaml:"samples"`
	Insights Insights  `json:"insights" yaml:"insights"`
	Segments []Segment `json:"segments" yaml:"segments"`
	Effort   Effort    `json:"effort" yaml:"effort"`
}

// RunSegments returns the run segments in time order
func (r *Result) RunSegments() []Segment {
	return FilterSegments(r.Segments, SegmentRun)
}

// WalkSegments returns the walk segments in time order
func (r *Result) WalkSegments() []Segment {
	return FilterSegments(r.Segments, SegmentWalk)
}

// Analyze runs the full local pipeline over one stream bundle. It never
// fails: a bundle without time data yields an empty sample set, no segments,
// and Insights carrying only an error.
func Analyze(bundle StreamBundle) *Result {
	samples, warnings, err := AlignStreams(bundle)
	if err != nil {
		return &Result{
			Samples:  []Sample{},
			Insights: Insights{Error: NoDataMessage},
		}
	}

	DeriveMetrics(samples)
	segments := DetectSegments(samples)
	summary := SummarizeSegments(segments)

	paces := Paces(samples)
	heartrates := Heartrates(samples)

	insights := Insights{
		AvgPace:            meanOf(paces),
		PaceFluctuation:    stdDevOf(paces),
		WalkCount:          summary.WalkCount,
		AvgRunDurationMin:  summary.AvgRunDurationMin,
		AvgWalkDurationMin: summary.AvgWalkDurationMin,
		AvgHeartRate:       meanOf(heartrates),
		MaxHeartRate:       maxOf(heartrates),
		HRZoneDistribution: HeartRateZones(samples),
		MeanMaxPace:        MeanMaxPaces(samples, MeanMaxDurations),
		DistanceSplits:     DistanceSplits(samples),
		Suggestions:        []string{},
		AISuggestions:      []string{},
		Warnings:           warnings,
	}

	insights.Warnings = append(insights.Warnings, insufficientDataWarnings(bundle, &insights)...)
	insights.Suggestions = RuleSuggestions(insights)

	return &Result{
		Samples:  samples,
		Insights: insights,
		Segments: segments,
		Effort:   ComputeEffort(samples),
	}
}

// RuleSuggestions applies the fixed coaching heuristics
func RuleSuggestions(in Insights) []string {
	suggestions := []string{}
	if in.WalkCount > FrequentWalkThreshold {
		suggestions = append(suggestions, fmt.Sprintf(
			"Frequent walks (%d) detected. Try 3:1 run:walk intervals to build stamina.", in.WalkCount))
	}
	if in.PaceFluctuation != nil && *in.PaceFluctuation > PaceVariationThreshold {
		suggestions = append(suggestions, "High pace variation. Start slower to maintain steady effort.")
	}
	return suggestions
}

// insufficientDataWarnings flags streams that were present but produced no usable values
func insufficientDataWarnings(bundle StreamBundle, in *Insights) []Warning {
	var warnings []Warning
	if bundle.Has(StreamVelocity) && in.AvgPace == nil {
		warnings = append(warnings, Warning{
			Kind:    WarnInsufficientData,
			Stream:  StreamVelocity,
			Message: "no positive velocity; pace metrics are unavailable",
		})
	}
	if bundle.Has(StreamHeartrate) && in.HRZoneDistribution == nil {
		warnings = append(warnings, Warning{
			Kind:    WarnInsufficientData,
			Stream:  StreamHeartrate,
			Message: "no numeric heart rate values; zones and heart rate averages are unavailable",
		})
	}
	if bundle.Has(StreamDistance) && in.DistanceSplits == nil {
		warnings = append(warnings, Warning{
			Kind:    WarnInsufficientData,
			Stream:  StreamDistance,
			Message: "no numeric distance values; splits are unavailable",
		})
	}
	return warnings
}
