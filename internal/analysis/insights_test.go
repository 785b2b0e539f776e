package analysis

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"
)

func TestAnalyze_NoData(t *testing.T) {
	tests := []struct {
		name   string
		bundle StreamBundle
	}{
		{"nil bundle", nil},
		{"empty time", StreamBundle{StreamTime: NewStream(nil), StreamVelocity: NewStream([]float64{3})}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Analyze(tt.bundle)

			if result.Samples == nil || len(result.Samples) != 0 {
				t.Errorf("Expected empty (non-nil) samples, got %v", result.Samples)
			}
			if result.Segments != nil {
				t.Errorf("Expected no segments, got %v", result.Segments)
			}
			if result.Insights.Error != NoDataMessage {
				t.Errorf("Insights.Error = %q, want %q", result.Insights.Error, NoDataMessage)
			}

			data, err := json.Marshal(result.Insights)
			if err != nil {
				t.Fatalf("json.Marshal() error = %v", err)
			}
			want := `{"error":"No stream data available for analysis."}`
			if string(data) != want {
				t.Errorf("insights JSON = %s, want %s", data, want)
			}
		})
	}
}

func TestAnalyze_RunWalkRun(t *testing.T) {
	result := Analyze(makeBundle(
		[]float64{0, 1, 2, 3, 4, 5},
		[]float64{3, 3, 3, 1, 1, 3},
	))

	if len(result.Samples) != 6 {
		t.Fatalf("len(Samples) = %d, want 6", len(result.Samples))
	}
	if len(result.Segments) != 3 {
		t.Fatalf("len(Segments) = %d, want 3", len(result.Segments))
	}
	if len(result.RunSegments()) != 2 || len(result.WalkSegments()) != 1 {
		t.Errorf("run/walk = %d/%d, want 2/1", len(result.RunSegments()), len(result.WalkSegments()))
	}

	in := result.Insights
	if in.WalkCount != 1 {
		t.Errorf("WalkCount = %d, want 1", in.WalkCount)
	}
	// run durations 2s and 0s -> 1s -> 1/60 min
	if !almostEqual(in.AvgRunDurationMin, 1.0/60.0, 1e-9) {
		t.Errorf("AvgRunDurationMin = %v, want %v", in.AvgRunDurationMin, 1.0/60.0)
	}
	if !almostEqual(in.AvgWalkDurationMin, 1.0/60.0, 1e-9) {
		t.Errorf("AvgWalkDurationMin = %v, want %v", in.AvgWalkDurationMin, 1.0/60.0)
	}

	// No heart rate or distance stream
	if in.HRZoneDistribution != nil {
		t.Errorf("Expected absent HR zones, got %v", in.HRZoneDistribution)
	}
	if in.AvgHeartRate != nil || in.MaxHeartRate != nil {
		t.Error("Expected absent heart rate stats")
	}
	if in.DistanceSplits != nil {
		t.Errorf("Expected absent splits, got %v", in.DistanceSplits)
	}
	if len(in.MeanMaxPace) != 3 {
		t.Errorf("len(MeanMaxPace) = %d, want 3", len(in.MeanMaxPace))
	}

	if in.AISuggestions == nil || len(in.AISuggestions) != 0 {
		t.Errorf("AISuggestions = %v, want empty", in.AISuggestions)
	}
}

func TestAnalyze_FullBundle(t *testing.T) {
	n := 120
	times := seq(n)
	distances := make([]float64, n)
	for i := range distances {
		distances[i] = float64(i) * 10
	}
	heartrates := make([]float64, n)
	for i := range heartrates {
		heartrates[i] = 130 + float64(i%40)
	}

	bundle := StreamBundle{
		StreamTime:      NewStream(times),
		StreamDistance:  NewStream(distances),
		StreamVelocity:  NewStream(constant(n, 10.0/1.0)),
		StreamHeartrate: NewStream(heartrates),
	}

	result := Analyze(bundle)
	in := result.Insights

	if in.HasError() {
		t.Fatalf("unexpected error %q", in.Error)
	}
	if len(in.Warnings) != 0 {
		t.Errorf("Expected no warnings, got %v", in.Warnings)
	}
	if in.MaxHeartRate == nil || *in.MaxHeartRate != 169 {
		t.Errorf("MaxHeartRate = %v, want 169", in.MaxHeartRate)
	}
	if len(in.HRZoneDistribution) != 5 {
		t.Errorf("len(HRZoneDistribution) = %d, want 5", len(in.HRZoneDistribution))
	}
	if TotalZoneSamples(in.HRZoneDistribution) != n {
		t.Errorf("zone total = %d, want %d", TotalZoneSamples(in.HRZoneDistribution), n)
	}
	// 0..1190 m -> km 1 and 2
	if len(in.DistanceSplits) != 2 {
		t.Errorf("len(DistanceSplits) = %d, want 2", len(in.DistanceSplits))
	}
	if in.PaceFluctuation == nil || !almostEqual(*in.PaceFluctuation, 0, 1e-9) {
		t.Errorf("PaceFluctuation = %v, want 0", in.PaceFluctuation)
	}
	if len(in.Suggestions) != 0 {
		t.Errorf("Expected no suggestions for a steady run, got %v", in.Suggestions)
	}
}

func TestAnalyze_StationaryActivity(t *testing.T) {
	result := Analyze(makeBundle(seq(10), constant(10, 0)))
	in := result.Insights

	if len(result.Segments) != 1 || result.Segments[0].Type != SegmentWalk {
		t.Fatalf("Expected a single walk segment, got %v", result.Segments)
	}
	if in.AvgPace != nil || in.PaceFluctuation != nil {
		t.Error("Expected undefined pace statistics")
	}
	for _, entry := range in.MeanMaxPace {
		if entry.Pace != nil {
			t.Errorf("%s pace should be undefined", entry.Label)
		}
	}

	found := false
	for _, w := range in.Warnings {
		if w.Kind == WarnInsufficientData && w.Stream == StreamVelocity {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected insufficient data warning for velocity, got %v", in.Warnings)
	}
}

func TestAnalyze_Deterministic(t *testing.T) {
	velocities := []float64{3, 1, 1, 2.5, 4, 0, 0, 3.3, 1.9, 5}
	bundle := StreamBundle{
		StreamTime:      NewStream(seq(len(velocities))),
		StreamDistance:  NewStream([]float64{0, 300, 600, 900, 1200, 1200, 1200, 1500, 1800, 2100}),
		StreamVelocity:  NewStream(velocities),
		StreamHeartrate: &Stream{Data: []any{120.0, "130", nil, 150.0, 160.0, 165.0, "bad", 170.0, 171.0, 172.0}},
	}

	first := Analyze(bundle)
	for i := 0; i < 5; i++ {
		again := Analyze(bundle)
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("Analyze() run %d differs from the first run", i+2)
		}
	}

	a, _ := json.Marshal(first)
	b, _ := json.Marshal(Analyze(bundle))
	if string(a) != string(b) {
		t.Error("JSON output differs between runs")
	}
}

func TestRuleSuggestions(t *testing.T) {
	tests := []struct {
		name     string
		insights Insights
		want     []string
	}{
		{
			name:     "nothing to say",
			insights: Insights{WalkCount: 3, PaceFluctuation: floatPtr(1.5)},
			want:     []string{},
		},
		{
			name:     "frequent walks",
			insights: Insights{WalkCount: 4},
			want:     []string{"Frequent walks (4) detected. Try 3:1 run:walk intervals to build stamina."},
		},
		{
			name:     "high variation",
			insights: Insights{PaceFluctuation: floatPtr(1.51)},
			want:     []string{"High pace variation. Start slower to maintain steady effort."},
		},
		{
			name:     "both, in order",
			insights: Insights{WalkCount: 7, PaceFluctuation: floatPtr(3)},
			want: []string{
				"Frequent walks (7) detected. Try 3:1 run:walk intervals to build stamina.",
				"High pace variation. Start slower to maintain steady effort.",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RuleSuggestions(tt.insights)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("RuleSuggestions() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAnalyze_IntervalSuggestions(t *testing.T) {
	// Alternating run and walk gives 4 walks and a wide pace spread
	velocities := []float64{3, 1, 3, 1, 3, 1, 3, 1, 3}
	result := Analyze(makeBundle(seq(len(velocities)), velocities))

	if result.Insights.WalkCount != 4 {
		t.Fatalf("WalkCount = %d, want 4", result.Insights.WalkCount)
	}
	if len(result.Insights.Suggestions) != 2 {
		t.Fatalf("len(Suggestions) = %d, want 2: %v", len(result.Insights.Suggestions), result.Insights.Suggestions)
	}
	if !strings.HasPrefix(result.Insights.Suggestions[0], "Frequent walks (4)") {
		t.Errorf("Suggestions[0] = %q", result.Insights.Suggestions[0])
	}
}
