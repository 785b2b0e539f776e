package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"runanalyzer/internal/analysis"
	"runanalyzer/internal/service"
)

// renderSplitsSegments draws the Splits & Segments tab
func renderSplitsSegments(r *service.Report, width int) string {
	var sections []string

	if splits := r.Result.Insights.DistanceSplits; len(splits) > 0 {
		sections = append(sections, renderSplits(splits))
	} else {
		sections = append(sections, sectionTitle("1 km Splits"), "  Not enough distance data for splits.", "")
	}

	if len(r.Result.Segments) > 0 {
		sections = append(sections, renderTimeline(r.Result.Segments, chartWidth(width)))
		sections = append(sections, renderSegmentTable("Run Bursts", "run", r.Result.RunSegments(), r.Result.Samples))
		sections = append(sections, renderSegmentTable("Walks", "walk", r.Result.WalkSegments(), r.Result.Samples))
	} else {
		sections = append(sections, sectionTitle("Run/Walk Timeline"), "  No segment data to display.", "")
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func renderSplits(splits []analysis.Split) string {
	lines := []string{sectionTitle("1 km Splits")}
	header := fmt.Sprintf("  %-4s  %8s  %8s  %7s", "Km", "Pace", "Time", "Samples")
	lines = append(lines, lipgloss.NewStyle().Foreground(primaryColor).Render(header))

	// Bars scale from the fastest split (full) to the slowest (shortest)
	fastest, slowest := -1.0, -1.0
	for _, s := range splits {
		if s.Pace == nil {
			continue
		}
		if fastest < 0 || *s.Pace < fastest {
			fastest = *s.Pace
		}
		if *s.Pace > slowest {
			slowest = *s.Pace
		}
	}

	const barWidth = 24
	for _, s := range splits {
		row := fmt.Sprintf("  %-4d  %8s  %8s  %7d  ", s.Km, formatPace(s.Pace), formatClock(s.TimeSec), s.Samples)

		frac := 0.0
		if s.Pace != nil && fastest > 0 {
			frac = fastest / *s.Pace
		}
		bar := RenderBar(frac, barWidth, secondaryColor)

		if s.Pace != nil && *s.Pace == fastest && fastest != slowest {
			lines = append(lines, successStyle.Bold(true).Render(row)+bar)
		} else {
			lines = append(lines, row+bar)
		}
	}

	lines = append(lines, "")
	return strings.Join(lines, "\n")
}

// timelineCells assigns each of width cells the type of the segment that
// covers its share of the total duration
func timelineCells(segments []analysis.Segment, width int) []analysis.SegmentType {
	var total float64
	for _, s := range segments {
		total += s.DurationSec
	}
	if total <= 0 || width <= 0 {
		return nil
	}

	cells := make([]analysis.SegmentType, width)
	var elapsed float64
	seg := 0
	for i := range cells {
		mid := (float64(i) + 0.5) / float64(width) * total
		for seg < len(segments)-1 && elapsed+segments[seg].DurationSec < mid {
			elapsed += segments[seg].DurationSec
			seg++
		}
		cells[i] = segments[seg].Type
	}
	return cells
}

func renderTimeline(segments []analysis.Segment, width int) string {
	cells := timelineCells(segments, width)
	if cells == nil {
		return ""
	}

	runStyle := lipgloss.NewStyle().Foreground(primaryColor)
	walkStyle := lipgloss.NewStyle().Foreground(walkColor)

	var b strings.Builder
	for _, c := range cells {
		if c == analysis.SegmentWalk {
			b.WriteString(walkStyle.Render("░"))
		} else {
			b.WriteString(runStyle.Render("█"))
		}
	}

	summary := analysis.SummarizeSegments(segments)
	legend := fmt.Sprintf("  %s run (%d)   %s walk (%d)",
		runStyle.Render("█"), summary.RunCount, walkStyle.Render("░"), summary.WalkCount)

	return strings.Join([]string{sectionTitle("Run/Walk Timeline"), "  " + b.String(), legend, ""}, "\n")
}

// renderSegmentTable lists segments of one kind with their start time
func renderSegmentTable(title, kind string, segments []analysis.Segment, samples []analysis.Sample) string {
	lines := []string{sectionTitle(title)}
	if len(segments) == 0 {
		lines = append(lines, fmt.Sprintf("  No %s segments detected.", kind), "")
		return strings.Join(lines, "\n")
	}

	header := fmt.Sprintf("  %-4s  %8s  %9s  %8s", "#", "Start", "Duration", "Pace")
	lines = append(lines, lipgloss.NewStyle().Foreground(primaryColor).Render(header))

	for i, s := range segments {
		start := 0.0
		if s.StartIndex < len(samples) {
			start = samples[s.StartIndex].Time
		}
		lines = append(lines, fmt.Sprintf("  %-4d  %8s  %9s  %8s",
			i+1, formatClock(start), formatDuration(s.DurationSec), formatPace(s.AvgPace)))
	}

	lines = append(lines, "")
	return strings.Join(lines, "\n")
}
