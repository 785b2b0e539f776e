package tui

import (
	"fmt"
	"math"
)

const metersPerKm = 1000.0

// formatPace formats min/km as m:ss. Missing or non-finite paces render as "-".
func formatPace(pace *float64) string {
	if pace == nil || math.IsNaN(*pace) || math.IsInf(*pace, 0) || *pace <= 0 {
		return "-"
	}
	total := int(math.Round(*pace * 60))
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}

// formatPaceWithUnit formats a pace with the /km suffix
func formatPaceWithUnit(pace *float64) string {
	s := formatPace(pace)
	if s == "-" {
		return s
	}
	return s + " /km"
}

// formatDistance formats meters as km
func formatDistance(meters float64) string {
	return fmt.Sprintf("%.2f km", meters/metersPerKm)
}

// formatDuration formats seconds as "1h 05m", "12m 30s" or "45s"
func formatDuration(seconds float64) string {
	s := int(math.Round(seconds))
	h := s / 3600
	m := (s % 3600) / 60
	sec := s % 60
	switch {
	case h > 0:
		return fmt.Sprintf("%dh %02dm", h, m)
	case m > 0:
		return fmt.Sprintf("%dm %02ds", m, sec)
	}
	return fmt.Sprintf("%ds", sec)
}

// formatClock formats an offset in seconds as m:ss or h:mm:ss
func formatClock(seconds float64) string {
	s := int(math.Round(seconds))
	if s >= 3600 {
		return fmt.Sprintf("%d:%02d:%02d", s/3600, (s%3600)/60, s%60)
	}
	return fmt.Sprintf("%d:%02d", s/60, s%60)
}

// formatOptional formats v with format, or "-" when v is nil
func formatOptional(format string, v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf(format, *v)
}

func truncateName(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}

// defined drops missing values
func defined(values []*float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if v != nil && !math.IsNaN(*v) && !math.IsInf(*v, 0) {
			out = append(out, *v)
		}
	}
	return out
}

// downsample averages data into targetLen buckets
func downsample(data []float64, targetLen int) []float64 {
	if targetLen <= 0 || len(data) <= targetLen {
		return data
	}

	result := make([]float64, targetLen)
	ratio := float64(len(data)) / float64(targetLen)

	for i := 0; i < targetLen; i++ {
		start := int(float64(i) * ratio)
		end := int(float64(i+1) * ratio)
		if end > len(data) {
			end = len(data)
		}
		if end <= start {
			end = start + 1
		}

		sum := 0.0
		for j := start; j < end; j++ {
			sum += data[j]
		}
		result[i] = sum / float64(end-start)
	}

	return result
}
