package analysis

import (
	"fmt"
	"math"
)

// MeanMaxPace is the fastest average pace held over one window length
type MeanMaxPace struct {
	DurationSec int      `json:"duration_sec" yaml:"duration_sec"`
	Label       string   `json:"label" yaml:"label"` // e.g. "30s"
	Pace        *float64 `json:"pace" yaml:"pace"`   // min/km, nil when no positive window
}

// MeanMaxPaces computes the best average pace for each window duration.
// Windows are counted in samples (the stream is treated as ~1 Hz). A window
// may be shorter than the duration at the start of the activity, so a short
// recording still yields a value from whatever prefix exists.
func MeanMaxPaces(samples []Sample, durations []int) []MeanMaxPace {
	velocities := Velocities(samples)

	out := make([]MeanMaxPace, 0, len(durations))
	for _, d := range durations {
		entry := MeanMaxPace{
			DurationSec: d,
			Label:       fmt.Sprintf("%ds", d),
		}
		if best, ok := BestWindowVelocity(velocities, d); ok && best > 0 {
			entry.Pace = PaceFromVelocity(&best)
		}
		out = append(out, entry)
	}
	return out
}

// BestWindowVelocity finds the highest mean velocity over any window of up to
// `window` consecutive samples ending at each index. Missing values are
// skipped within a window; a window with no values is ignored.
// Uses a running sum so each duration is O(n). The sum holds offsets from
// the first defined value with Neumaier compensation, so a constant stream
// averages to exactly that constant and long windows don't drift upwards.
// Returns false if no window had a defined value.
func BestWindowVelocity(velocities []*float64, window int) (float64, bool) {
	if window < 1 {
		window = 1
	}

	var base float64
	for _, v := range velocities {
		if v != nil {
			base = *v
			break
		}
	}

	var sum windowSum
	var count int
	var best float64
	found := false

	for right := 0; right < len(velocities); right++ {
		if v := velocities[right]; v != nil {
			sum.add(*v - base)
			count++
		}

		// Drop the sample that just left the window
		if left := right - window; left >= 0 {
			if v := velocities[left]; v != nil {
				sum.add(-(*v - base))
				count--
			}
		}

		if count == 0 {
			continue
		}
		mean := base + sum.value()/float64(count)
		if !found || mean > best {
			best = mean
			found = true
		}
	}

	return best, found
}

// windowSum is a Neumaier compensated sum
type windowSum struct {
	sum, comp float64
}

func (s *windowSum) add(x float64) {
	t := s.sum + x
	if math.Abs(s.sum) >= math.Abs(x) {
		s.comp += (s.sum - t) + x
	} else {
		s.comp += (x - t) + s.sum
	}
	s.sum = t
}

func (s *windowSum) value() float64 {
	return s.sum + s.comp
}
