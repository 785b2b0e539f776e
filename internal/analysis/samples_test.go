package analysis

import (
	"errors"
	"math"
	"testing"
)

func floatPtr(f float64) *float64 {
	return &f
}

func almostEqual(a, b, delta float64) bool {
	return math.Abs(a-b) <= delta
}

// makeBundle builds a bundle from time and velocity, with optional extra streams
func makeBundle(times, velocities []float64) StreamBundle {
	b := StreamBundle{StreamTime: NewStream(times)}
	if velocities != nil {
		b[StreamVelocity] = NewStream(velocities)
	}
	return b
}

// seq returns 0, 1, ..., n-1 as float64
func seq(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = float64(i)
	}
	return out
}

func TestAlignStreams_NoTime(t *testing.T) {
	tests := []struct {
		name   string
		bundle StreamBundle
	}{
		{"nil bundle", nil},
		{"empty bundle", StreamBundle{}},
		{"nil time stream", StreamBundle{StreamTime: nil}},
		{"empty time data", StreamBundle{StreamTime: &Stream{Data: []any{}}}},
		{"velocity without time", StreamBundle{StreamVelocity: NewStream([]float64{3, 3})}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			samples, warnings, err := AlignStreams(tt.bundle)
			if !errors.Is(err, ErrNoData) {
				t.Fatalf("AlignStreams() error = %v, want ErrNoData", err)
			}
			if samples != nil || warnings != nil {
				t.Errorf("Expected no samples or warnings on error, got %d samples, %d warnings", len(samples), len(warnings))
			}
		})
	}
}

func TestAlignStreams_PadsShorterStreams(t *testing.T) {
	bundle := StreamBundle{
		StreamTime:      NewStream([]float64{0, 1, 2, 3, 4}),
		StreamDistance:  NewStream([]float64{0, 3, 6}),
		StreamVelocity:  NewStream([]float64{3, 3, 3, 3}),
		StreamHeartrate: NewStream([]float64{140, 141}),
	}

	samples, warnings, err := AlignStreams(bundle)
	if err != nil {
		t.Fatalf("AlignStreams() error = %v", err)
	}
	if len(samples) != 5 {
		t.Fatalf("len(samples) = %d, want 5", len(samples))
	}
	if len(warnings) != 0 {
		t.Errorf("Expected no warnings, got %v", warnings)
	}

	if samples[2].Distance == nil || *samples[2].Distance != 6 {
		t.Errorf("samples[2].Distance = %v, want 6", samples[2].Distance)
	}
	if samples[3].Distance != nil {
		t.Errorf("samples[3].Distance should be missing (padded), got %v", *samples[3].Distance)
	}
	if samples[4].Velocity != nil {
		t.Errorf("samples[4].Velocity should be missing (padded), got %v", *samples[4].Velocity)
	}
	if samples[1].Heartrate == nil || *samples[1].Heartrate != 141 {
		t.Errorf("samples[1].Heartrate = %v, want 141", samples[1].Heartrate)
	}
	if samples[2].Heartrate != nil {
		t.Errorf("samples[2].Heartrate should be missing (padded)")
	}
}

func TestAlignStreams_IgnoresValuesBeyondTime(t *testing.T) {
	bundle := makeBundle([]float64{0, 1}, []float64{3, 3, 3, 3})

	samples, _, err := AlignStreams(bundle)
	if err != nil {
		t.Fatalf("AlignStreams() error = %v", err)
	}
	if len(samples) != 2 {
		t.Errorf("len(samples) = %d, want 2 (time is authoritative)", len(samples))
	}
}

func TestAlignStreams_MissingStreamWarnings(t *testing.T) {
	bundle := makeBundle([]float64{0, 1, 2}, nil)

	samples, warnings, err := AlignStreams(bundle)
	if err != nil {
		t.Fatalf("AlignStreams() error = %v", err)
	}
	if len(samples) != 3 {
		t.Fatalf("len(samples) = %d, want 3", len(samples))
	}

	want := map[string]bool{StreamDistance: true, StreamVelocity: true, StreamHeartrate: true}
	if len(warnings) != len(want) {
		t.Fatalf("len(warnings) = %d, want %d", len(warnings), len(want))
	}
	for _, w := range warnings {
		if w.Kind != WarnMissingStream {
			t.Errorf("warning kind = %q, want %q", w.Kind, WarnMissingStream)
		}
		if !want[w.Stream] {
			t.Errorf("unexpected warning for stream %q", w.Stream)
		}
	}
}

func TestAlignStreams_CoercesHeartrate(t *testing.T) {
	bundle := StreamBundle{
		StreamTime:      NewStream([]float64{0, 1, 2, 3, 4}),
		StreamHeartrate: &Stream{Data: []any{"150", "abc", nil, 160.0, true}},
	}

	samples, _, err := AlignStreams(bundle)
	if err != nil {
		t.Fatalf("AlignStreams() error = %v", err)
	}

	expected := []*float64{floatPtr(150), nil, nil, floatPtr(160), nil}
	for i, want := range expected {
		got := samples[i].Heartrate
		switch {
		case want == nil && got != nil:
			t.Errorf("samples[%d].Heartrate = %v, want missing", i, *got)
		case want != nil && got == nil:
			t.Errorf("samples[%d].Heartrate missing, want %v", i, *want)
		case want != nil && *got != *want:
			t.Errorf("samples[%d].Heartrate = %v, want %v", i, *got, *want)
		}
	}
}

func TestAlignStreams_NonNumericTimeKeepsPrevious(t *testing.T) {
	bundle := StreamBundle{StreamTime: &Stream{Data: []any{0.0, 1.0, "bad", 3.0}}}

	samples, _, err := AlignStreams(bundle)
	if err != nil {
		t.Fatalf("AlignStreams() error = %v", err)
	}
	if samples[2].Time != 1 {
		t.Errorf("samples[2].Time = %v, want 1", samples[2].Time)
	}
}

func TestDeriveMetrics(t *testing.T) {
	samples := []Sample{
		{Time: 0, Velocity: floatPtr(4)},
		{Time: 1, Velocity: floatPtr(0)},
		{Time: 2, Velocity: nil},
		{Time: 3, Velocity: floatPtr(2)},
		{Time: 4, Velocity: floatPtr(1.99)},
	}

	DeriveMetrics(samples)

	// 1000 / (4*60)
	if samples[0].Pace == nil || !almostEqual(*samples[0].Pace, 4.1667, 0.001) {
		t.Errorf("samples[0].Pace = %v, want ~4.1667", samples[0].Pace)
	}
	if samples[1].Pace != nil {
		t.Errorf("Pace should be undefined at zero velocity")
	}
	if samples[2].Pace != nil {
		t.Errorf("Pace should be undefined for missing velocity")
	}

	wantWalking := []bool{false, true, true, false, true}
	for i, want := range wantWalking {
		if samples[i].IsWalking != want {
			t.Errorf("samples[%d].IsWalking = %v, want %v", i, samples[i].IsWalking, want)
		}
	}

	// Cumulative average skips undefined paces
	if samples[2].CumAvg == nil || !almostEqual(*samples[2].CumAvg, 4.1667, 0.001) {
		t.Errorf("samples[2].CumAvg = %v, want ~4.1667", samples[2].CumAvg)
	}
	// mean(4.1667, 8.3333)
	if samples[3].CumAvg == nil || !almostEqual(*samples[3].CumAvg, 6.25, 0.001) {
		t.Errorf("samples[3].CumAvg = %v, want 6.25", samples[3].CumAvg)
	}
}

func TestDeriveMetrics_CumulativeUndefinedUntilFirstPace(t *testing.T) {
	samples := []Sample{
		{Time: 0, Velocity: floatPtr(0)},
		{Time: 1, Velocity: nil},
		{Time: 2, Velocity: floatPtr(5)},
	}

	DeriveMetrics(samples)

	if samples[0].CumAvg != nil || samples[1].CumAvg != nil {
		t.Error("CumAvg should be undefined before the first defined pace")
	}
	if samples[2].CumAvg == nil || !almostEqual(*samples[2].CumAvg, 3.3333, 0.001) {
		t.Errorf("samples[2].CumAvg = %v, want ~3.3333", samples[2].CumAvg)
	}
}

func TestPaceFromVelocity(t *testing.T) {
	tests := []struct {
		name     string
		velocity *float64
		want     *float64
	}{
		{"nil", nil, nil},
		{"zero", floatPtr(0), nil},
		{"negative", floatPtr(-1), nil},
		{"5 min/km", floatPtr(1000.0 / 300.0), floatPtr(5)},
		{"3 min/km", floatPtr(1000.0 / 180.0), floatPtr(3)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PaceFromVelocity(tt.velocity)
			if tt.want == nil {
				if got != nil {
					t.Errorf("PaceFromVelocity() = %v, want nil", *got)
				}
				return
			}
			if got == nil || !almostEqual(*got, *tt.want, 1e-9) {
				t.Errorf("PaceFromVelocity() = %v, want %v", got, *tt.want)
			}
		})
	}
}

func TestToFloat(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  *float64
	}{
		{"float64", 3.5, floatPtr(3.5)},
		{"int", 7, floatPtr(7)},
		{"numeric string", " 12.5 ", floatPtr(12.5)},
		{"junk string", "n/a", nil},
		{"nil", nil, nil},
		{"NaN", math.NaN(), nil},
		{"Inf", math.Inf(1), nil},
		{"bool", true, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := toFloat(tt.value)
			if tt.want == nil {
				if got != nil {
					t.Errorf("toFloat(%v) = %v, want nil", tt.value, *got)
				}
				return
			}
			if got == nil || *got != *tt.want {
				t.Errorf("toFloat(%v) = %v, want %v", tt.value, got, *tt.want)
			}
		})
	}
}
