package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"runanalyzer/internal/analysis"
	"runanalyzer/internal/service"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FC4C02")).
			Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243")).
			Width(18)

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255")).
			Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(0, 1)
)

func formatPace(pace *float64) string {
	if pace == nil {
		return "-"
	}
	total := int(*pace*60 + 0.5)
	return fmt.Sprintf("%d:%02d /km", total/60, total%60)
}

func formatOptional(v *float64, format string) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf(format, *v)
}

func formatSeconds(sec float64) string {
	total := int(sec + 0.5)
	if total >= 3600 {
		return fmt.Sprintf("%dh %02dm", total/3600, (total%3600)/60)
	}
	return fmt.Sprintf("%dm %02ds", total/60, total%60)
}

func row(label, value string) string {
	return labelStyle.Render(label) + valueStyle.Render(value)
}

// renderSummary writes the text form of a report
func renderSummary(w io.Writer, r *service.Report) {
	fmt.Fprintln(w, headerStyle.Render(r.Title()))

	in := r.Result.Insights
	if in.HasError() {
		fmt.Fprintln(w, warnStyle.Render(in.Error))
		return
	}

	var lines []string
	if a := r.Activity; a != nil {
		lines = append(lines,
			row("Distance", fmt.Sprintf("%.2f km", a.DistanceKm)),
			row("Moving time", formatSeconds(float64(a.MovingTimeSec))),
		)
	}
	lines = append(lines,
		row("Avg pace", formatPace(in.AvgPace)),
		row("Pace variability", formatOptional(in.PaceFluctuation, "%.2f min/km")),
		row("Walk breaks", fmt.Sprintf("%d", in.WalkCount)),
		row("Avg run", fmt.Sprintf("%.1f min", in.AvgRunDurationMin)),
		row("Avg walk", fmt.Sprintf("%.1f min", in.AvgWalkDurationMin)),
		row("Avg HR", formatOptional(in.AvgHeartRate, "%.0f bpm")),
		row("Max HR", formatOptional(in.MaxHeartRate, "%.0f bpm")),
	)

	effort := r.Result.Effort
	if effort.EfficiencyFactor != nil {
		lines = append(lines, row("Efficiency", formatOptional(effort.EfficiencyFactor, "%.2f")))
	}
	if effort.AerobicDecoupling != nil {
		lines = append(lines, row("Decoupling", formatOptional(effort.AerobicDecoupling, "%.1f%%")))
	}
	fmt.Fprintln(w, cardStyle.Render(strings.Join(lines, "\n")))

	if len(in.HRZoneDistribution) > 0 {
		fmt.Fprintln(w, titleStyle.Render("Heart rate zones"))
		for _, z := range in.HRZoneDistribution {
			fmt.Fprintf(w, "  Z%d %-10s %4.0f-%-4.0f %s\n", z.Zone, z.Label, z.LowerBPM, z.UpperBPM, formatSeconds(float64(z.Samples)))
		}
	}

	if len(in.MeanMaxPace) > 0 {
		fmt.Fprintln(w, titleStyle.Render("Best efforts"))
		for _, m := range in.MeanMaxPace {
			fmt.Fprintf(w, "  %-6s %s\n", m.Label, formatPace(m.Pace))
		}
	}

	if len(in.DistanceSplits) > 0 {
		fmt.Fprintln(w, titleStyle.Render("Splits"))
		for _, s := range in.DistanceSplits {
			fmt.Fprintf(w, "  km %-3d %-11s %s\n", s.Km, formatPace(s.Pace), formatSeconds(s.TimeSec))
		}
	}

	fmt.Fprintln(w, titleStyle.Render("Segments"))
	for _, s := range r.Result.Segments {
		fmt.Fprintf(w, "  %-4s %-9s %s\n", s.Type, formatSeconds(s.DurationSec), formatPace(s.AvgPace))
	}

	renderList(w, "Suggestions", in.Suggestions)
	renderList(w, "AI coach", in.AISuggestions)

	for _, warning := range in.Warnings {
		fmt.Fprintln(w, warnStyle.Render("! "+warningText(warning)))
	}
}

func renderList(w io.Writer, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintln(w, titleStyle.Render(title))
	for _, item := range items {
		fmt.Fprintf(w, "  * %s\n", item)
	}
}

func warningText(w analysis.Warning) string {
	if w.Stream == "" {
		return w.Message
	}
	return w.Stream + ": " + w.Message
}
