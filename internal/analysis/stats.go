package analysis

import "math"

// ptr returns a pointer to the given value - useful for optional fields in structs
func ptr[T any](v T) *T {
	return &v
}

// PaceFromVelocity converts m/s to min/km. Returns nil when the velocity
// is missing or not positive.
func PaceFromVelocity(velocity *float64) *float64 {
	if velocity == nil || *velocity <= 0 {
		return nil
	}
	return ptr(1000 / (*velocity * SecondsPerMinute))
}

// meanOf returns the mean of the defined values, or nil if there are none
func meanOf(values []*float64) *float64 {
	var sum float64
	var count int
	for _, v := range values {
		if v == nil {
			continue
		}
		sum += *v
		count++
	}
	if count == 0 {
		return nil
	}
	return ptr(sum / float64(count))
}

// stdDevOf returns the sample standard deviation (n-1) of the defined values.
// Fewer than two defined values gives nil.
func stdDevOf(values []*float64) *float64 {
	mean := meanOf(values)
	if mean == nil {
		return nil
	}

	var sumSq float64
	var count int
	for _, v := range values {
		if v == nil {
			continue
		}
		d := *v - *mean
		sumSq += d * d
		count++
	}
	if count < 2 {
		return nil
	}
	return ptr(math.Sqrt(sumSq / float64(count-1)))
}

// maxOf returns the largest defined value, or nil if there are none
func maxOf(values []*float64) *float64 {
	var best *float64
	for _, v := range values {
		if v == nil {
			continue
		}
		if best == nil || *v > *best {
			best = ptr(*v)
		}
	}
	return best
}
