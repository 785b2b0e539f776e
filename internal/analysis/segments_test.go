package analysis

import "testing"

func derivedSamples(times, velocities []float64) []Sample {
	samples, _, err := AlignStreams(makeBundle(times, velocities))
	if err != nil {
		return nil
	}
	DeriveMetrics(samples)
	return samples
}

func TestDetectSegments_RunWalkRun(t *testing.T) {
	samples := derivedSamples(
		[]float64{0, 1, 2, 3, 4, 5},
		[]float64{3, 3, 3, 1, 1, 3},
	)

	segments := DetectSegments(samples)

	expected := []struct {
		typ        SegmentType
		start, end int
		duration   float64
	}{
		{SegmentRun, 0, 2, 2},
		{SegmentWalk, 3, 4, 1},
		{SegmentRun, 5, 5, 0},
	}

	if len(segments) != len(expected) {
		t.Fatalf("len(segments) = %d, want %d", len(segments), len(expected))
	}
	for i, want := range expected {
		got := segments[i]
		if got.Type != want.typ || got.StartIndex != want.start || got.EndIndex != want.end {
			t.Errorf("segments[%d] = %s[%d-%d], want %s[%d-%d]",
				i, got.Type, got.StartIndex, got.EndIndex, want.typ, want.start, want.end)
		}
		if got.DurationSec != want.duration {
			t.Errorf("segments[%d].DurationSec = %v, want %v", i, got.DurationSec, want.duration)
		}
	}

	// Walk segment pace: mean(1000/60, 1000/60)
	if segments[1].AvgPace == nil || !almostEqual(*segments[1].AvgPace, 16.6667, 0.001) {
		t.Errorf("walk AvgPace = %v, want ~16.6667", segments[1].AvgPace)
	}
}

func TestDetectSegments_Empty(t *testing.T) {
	if segments := DetectSegments(nil); segments != nil {
		t.Errorf("Expected no segments for empty input, got %d", len(segments))
	}
}

func TestDetectSegments_AllStationary(t *testing.T) {
	samples := derivedSamples(seq(10), []float64{0, 0, 0, 0, 0})

	segments := DetectSegments(samples)
	if len(segments) != 1 {
		t.Fatalf("len(segments) = %d, want 1", len(segments))
	}
	if segments[0].Type != SegmentWalk {
		t.Errorf("segment type = %s, want Walk", segments[0].Type)
	}
	if segments[0].AvgPace != nil {
		t.Errorf("AvgPace should be undefined with no moving samples")
	}
	if segments[0].Len() != 10 {
		t.Errorf("segment Len() = %d, want 10", segments[0].Len())
	}
}

func TestDetectSegments_Partition(t *testing.T) {
	velocities := []float64{3, 1, 1, 2.5, 2.5, 0, 4, 4, 4, 1.2, 3, 0.5, 0.5, 6}
	samples := derivedSamples(seq(len(velocities)), velocities)

	segments := DetectSegments(samples)

	total := 0
	for i, s := range segments {
		total += s.Len()
		if i > 0 {
			if s.Type == segments[i-1].Type {
				t.Errorf("segments %d and %d share type %s", i-1, i, s.Type)
			}
			if s.StartIndex != segments[i-1].EndIndex+1 {
				t.Errorf("segment %d starts at %d, want %d", i, s.StartIndex, segments[i-1].EndIndex+1)
			}
		}
	}
	if total != len(samples) {
		t.Errorf("segment sample total = %d, want %d", total, len(samples))
	}
	if segments[0].StartIndex != 0 || segments[len(segments)-1].EndIndex != len(samples)-1 {
		t.Error("segments do not cover the full sample range")
	}
}

func TestSummarizeSegments(t *testing.T) {
	segments := []Segment{
		{Type: SegmentRun, DurationSec: 120},
		{Type: SegmentWalk, DurationSec: 30},
		{Type: SegmentRun, DurationSec: 240},
		{Type: SegmentWalk, DurationSec: 90},
	}

	summary := SummarizeSegments(segments)

	if summary.WalkCount != 2 {
		t.Errorf("WalkCount = %d, want 2", summary.WalkCount)
	}
	if summary.RunCount != 2 {
		t.Errorf("RunCount = %d, want 2", summary.RunCount)
	}
	if summary.AvgRunDurationMin != 3 {
		t.Errorf("AvgRunDurationMin = %v, want 3", summary.AvgRunDurationMin)
	}
	if summary.AvgWalkDurationMin != 1 {
		t.Errorf("AvgWalkDurationMin = %v, want 1", summary.AvgWalkDurationMin)
	}
}

func TestSummarizeSegments_EmptySubsetsAreZero(t *testing.T) {
	summary := SummarizeSegments([]Segment{{Type: SegmentRun, DurationSec: 60}})

	if summary.WalkCount != 0 {
		t.Errorf("WalkCount = %d, want 0", summary.WalkCount)
	}
	if summary.AvgWalkDurationMin != 0 {
		t.Errorf("AvgWalkDurationMin = %v, want 0", summary.AvgWalkDurationMin)
	}

	empty := SummarizeSegments(nil)
	if empty.AvgRunDurationMin != 0 || empty.AvgWalkDurationMin != 0 {
		t.Errorf("Expected zero averages for no segments, got %+v", empty)
	}
}

func TestSegmentType_Text(t *testing.T) {
	for _, typ := range []SegmentType{SegmentRun, SegmentWalk} {
		b, err := typ.MarshalText()
		if err != nil {
			t.Fatalf("MarshalText() error = %v", err)
		}
		var decoded SegmentType
		if err := decoded.UnmarshalText(b); err != nil {
			t.Fatalf("UnmarshalText(%q) error = %v", b, err)
		}
		if decoded != typ {
			t.Errorf("decoded %q = %v, want %v", b, decoded, typ)
		}
	}

	var bad SegmentType
	if err := bad.UnmarshalText([]byte("jog")); err == nil {
		t.Error("Expected error for unknown segment type")
	}
}
