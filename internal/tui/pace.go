package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"runanalyzer/internal/analysis"
	"runanalyzer/internal/service"
)

// Pace histogram range and resolution
const (
	histMinPace     = 3.0  // min/km
	histMaxPace     = 20.0 // min/km
	histBins        = 30
	histMinVelocity = 0.5 // m/s; slower samples are standing still
)

// renderPaceEffort draws the Pace & Effort tab
func renderPaceEffort(r *service.Report, width int) string {
	in := r.Result.Insights
	var sections []string

	sections = append(sections, renderSummary(in))
	sections = append(sections, renderEffort(r.Result.Effort))

	samples := r.Result.Samples
	if paces := defined(analysis.Paces(samples)); len(paces) > 2 {
		sections = append(sections, renderLineChart("Pace Over Time (min/km)", paces, width))
	}
	if walk := walkShare(samples); walk > 0 {
		sections = append(sections, fmt.Sprintf("  Walking: %.0f%% of samples\n", walk*100))
	}

	cum := make([]*float64, len(samples))
	for i, s := range samples {
		cum[i] = s.CumAvg
	}
	if data := defined(cum); len(data) > 2 {
		sections = append(sections, renderLineChart("Cumulative Average Pace (min/km)", data, width))
	}

	if counts, total := paceHistogram(samples); total > 0 {
		sections = append(sections, renderHistogram(counts, width))
	}

	if len(in.HRZoneDistribution) > 0 {
		sections = append(sections, renderHRZones(in.HRZoneDistribution))
	}

	if len(in.Warnings) > 0 {
		sections = append(sections, renderWarnings(in.Warnings))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func renderSummary(in analysis.Insights) string {
	lines := []string{sectionTitle("Summary")}
	lines = append(lines,
		"  "+RenderMetric("Average Pace", formatPaceWithUnit(in.AvgPace)),
		"  "+RenderMetric("Pace Fluctuation", formatOptional("%.2f min/km", in.PaceFluctuation)),
		"  "+RenderMetric("Walk Breaks", fmt.Sprintf("%d", in.WalkCount)),
		"  "+RenderMetric("Avg Run Segment", fmt.Sprintf("%.1f min", in.AvgRunDurationMin)),
		"  "+RenderMetric("Avg Walk Segment", fmt.Sprintf("%.1f min", in.AvgWalkDurationMin)),
		"  "+RenderMetric("Average HR", formatOptional("%.0f bpm", in.AvgHeartRate)),
		"  "+RenderMetric("Max HR", formatOptional("%.0f bpm", in.MaxHeartRate)),
		"",
	)
	return strings.Join(lines, "\n")
}

func renderEffort(e analysis.Effort) string {
	if e.EfficiencyFactor == nil && e.SteadyStatePct == nil {
		return ""
	}
	lines := []string{sectionTitle("Effort")}
	lines = append(lines,
		"  "+RenderMetric("Efficiency Factor", formatOptional("%.2f", e.EfficiencyFactor)),
		"  "+RenderMetric("Aerobic Decoupling", formatOptional("%.1f%%", e.AerobicDecoupling)),
		"  "+RenderMetric("Cardiac Drift", formatOptional("%+.1f bpm", e.CardiacDrift)),
		"  "+RenderMetric("Steady State", formatOptional("%.0f%%", e.SteadyStatePct)),
		"",
	)
	return strings.Join(lines, "\n")
}

func renderLineChart(title string, data []float64, width int) string {
	w := chartWidth(width)
	chart := asciigraph.Plot(downsample(data, w),
		asciigraph.Height(8),
		asciigraph.Width(w),
		asciigraph.Precision(1),
	)
	return strings.Join([]string{sectionTitle(title), chart, ""}, "\n")
}

func walkShare(samples []analysis.Sample) float64 {
	if len(samples) == 0 {
		return 0
	}
	walking := 0
	for _, s := range samples {
		if s.IsWalking {
			walking++
		}
	}
	return float64(walking) / float64(len(samples))
}

// paceHistogram bins moving samples by pace, clipped to the histogram range
func paceHistogram(samples []analysis.Sample) ([]int, int) {
	counts := make([]int, histBins)
	binWidth := (histMaxPace - histMinPace) / histBins
	total := 0
	for _, s := range samples {
		if s.Velocity == nil || *s.Velocity <= histMinVelocity || s.Pace == nil {
			continue
		}
		p := math.Min(math.Max(*s.Pace, histMinPace), histMaxPace)
		bin := int((p - histMinPace) / binWidth)
		if bin >= histBins {
			bin = histBins - 1
		}
		counts[bin]++
		total++
	}
	return counts, total
}

func renderHistogram(counts []int, width int) string {
	data := make([]float64, len(counts))
	for i, c := range counts {
		data[i] = float64(c)
	}
	chart := asciigraph.Plot(data,
		asciigraph.Height(6),
		asciigraph.Width(chartWidth(width)),
		asciigraph.Precision(0),
		asciigraph.Caption(fmt.Sprintf("samples per bin, %.0f to %.0f min/km", histMinPace, histMaxPace)),
	)
	return strings.Join([]string{sectionTitle("Pace Distribution"), chart, ""}, "\n")
}

func renderHRZones(zones []analysis.ZoneCount) string {
	lines := []string{sectionTitle("Time in Heart Rate Zones")}

	total := 0
	for _, z := range zones {
		total += z.Samples
	}

	const barWidth = 30
	for i, z := range zones {
		frac := 0.0
		if total > 0 {
			frac = float64(z.Samples) / float64(total)
		}
		label := fmt.Sprintf("  %-20s %3.0f-%-3.0f ", z.Label, z.LowerBPM, z.UpperBPM)
		bar := RenderBar(frac, barWidth, zoneColors[i%len(zoneColors)])
		lines = append(lines, label+bar+fmt.Sprintf(" %5.1f%% (%s)", frac*100, formatDuration(float64(z.Samples))))
	}

	lines = append(lines, "")
	return strings.Join(lines, "\n")
}

func renderWarnings(warnings []analysis.Warning) string {
	lines := []string{warningStyle.Bold(true).Render("Data Warnings")}
	for _, w := range warnings {
		lines = append(lines, warningStyle.Render("  ! "+w.Message))
	}
	lines = append(lines, "")
	return strings.Join(lines, "\n")
}
