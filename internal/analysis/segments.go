package analysis

import (
	"fmt"
	"strings"
)

// SegmentType is the walk/run classification of a segment
type SegmentType int

const (
	SegmentRun SegmentType = iota
	SegmentWalk
)

func (t SegmentType) String() string {
	if t == SegmentWalk {
		return "Walk"
	}
	return "Run"
}

// MarshalText encodes the type by name for JSON and YAML output
func (t SegmentType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText decodes "Run" or "Walk"
func (t *SegmentType) UnmarshalText(b []byte) error {
	switch strings.ToLower(string(b)) {
	case "run":
		*t = SegmentRun
	case "walk":
		*t = SegmentWalk
	default:
		return fmt.Errorf("unknown segment type %q", string(b))
	}
	return nil
}

// Segment is a maximal run of consecutive samples with the same classification
type Segment struct {
	Type        SegmentType `json:"type" yaml:"type"`
	StartIndex  int         `json:"start_index" yaml:"start_index"`
	EndIndex    int         `json:"end_index" yaml:"end_index"` // inclusive
	DurationSec float64     `json:"duration_sec" yaml:"duration_sec"`
	AvgPace     *float64    `json:"avg_pace" yaml:"avg_pace"` // min/km
}

// Len returns the number of samples in the segment
func (s Segment) Len() int {
	return s.EndIndex - s.StartIndex + 1
}

// DetectSegments run-length encodes the walk classification in a single pass.
// DeriveMetrics must have been called on the samples first.
func DetectSegments(samples []Sample) []Segment {
	if len(samples) == 0 {
		return nil
	}

	var segments []Segment
	start := 0
	for i := 1; i <= len(samples); i++ {
		if i < len(samples) && samples[i].IsWalking == samples[start].IsWalking {
			continue
		}
		segments = append(segments, buildSegment(samples, start, i-1))
		start = i
	}
	return segments
}

func buildSegment(samples []Sample, start, end int) Segment {
	typ := SegmentRun
	if samples[start].IsWalking {
		typ = SegmentWalk
	}

	// Time is non-decreasing, so first/last give min/max
	return Segment{
		Type:        typ,
		StartIndex:  start,
		EndIndex:    end,
		DurationSec: samples[end].Time - samples[start].Time,
		AvgPace:     meanOf(Paces(samples[start : end+1])),
	}
}

// FilterSegments returns the segments of the given type, in order
func FilterSegments(segments []Segment, typ SegmentType) []Segment {
	var out []Segment
	for _, s := range segments {
		if s.Type == typ {
			out = append(out, s)
		}
	}
	return out
}

// SegmentSummary holds the per-type segment statistics used in insights
type SegmentSummary struct {
	WalkCount          int
	RunCount           int
	AvgRunDurationMin  float64
	AvgWalkDurationMin float64
}

// SummarizeSegments counts walk segments and averages segment durations.
// An empty subset averages to 0.
func SummarizeSegments(segments []Segment) SegmentSummary {
	runs := FilterSegments(segments, SegmentRun)
	walks := FilterSegments(segments, SegmentWalk)

	return SegmentSummary{
		WalkCount:          len(walks),
		RunCount:           len(runs),
		AvgRunDurationMin:  avgDurationSec(runs) / SecondsPerMinute,
		AvgWalkDurationMin: avgDurationSec(walks) / SecondsPerMinute,
	}
}

func avgDurationSec(segments []Segment) float64 {
	if len(segments) == 0 {
		return 0
	}
	var total float64
	for _, s := range segments {
		total += s.DurationSec
	}
	return total / float64(len(segments))
}
