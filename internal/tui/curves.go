package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"runanalyzer/internal/service"
)

// renderPerformanceCurves draws the mean-max pace table and curve
func renderPerformanceCurves(r *service.Report, width int) string {
	mmp := r.Result.Insights.MeanMaxPace
	lines := []string{sectionTitle("Mean Max Pace")}

	var curve []float64
	for _, p := range mmp {
		if p.Pace != nil {
			curve = append(curve, *p.Pace)
		}
	}
	if len(curve) == 0 {
		lines = append(lines, "  No mean max pace data available.")
		return strings.Join(lines, "\n")
	}

	header := fmt.Sprintf("  %-8s  %10s", "Window", "Best Pace")
	lines = append(lines, lipgloss.NewStyle().Foreground(primaryColor).Render(header))
	for _, p := range mmp {
		lines = append(lines, fmt.Sprintf("  %-8s  %10s", p.Label, formatPaceWithUnit(p.Pace)))
	}
	lines = append(lines, "")

	if len(curve) >= 2 {
		labels := make([]string, 0, len(mmp))
		for _, p := range mmp {
			if p.Pace != nil {
				labels = append(labels, p.Label)
			}
		}
		chart := asciigraph.Plot(curve,
			asciigraph.Height(8),
			asciigraph.Width(chartWidth(width)/2),
			asciigraph.Precision(2),
			asciigraph.Caption("fastest average pace (min/km) for "+strings.Join(labels, ", ")),
		)
		lines = append(lines, chart, "")
	}

	return strings.Join(lines, "\n")
}
