package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// HelpModel is the help overlay
type HelpModel struct{}

// NewHelpModel creates a new help model
func NewHelpModel() HelpModel {
	return HelpModel{}
}

// View renders the help screen
func (m HelpModel) View() string {
	var sections []string

	sections = append(sections, cardTitleStyle.Render("Keyboard Shortcuts"))

	sections = append(sections, m.renderSection("Navigation", []keyHelp{
		{"1-5", "Switch tab"},
		{"tab / shift+tab", "Next / previous tab"},
		{"?", "Help (this screen)"},
		{"esc", "Close help"},
		{"q / ctrl+c", "Quit"},
	}))

	sections = append(sections, m.renderSection("Runs", []keyHelp{
		{"j / k", "Move cursor"},
		{"enter", "Analyze the selected run"},
		{"r", "Refresh list"},
	}))

	sections = append(sections, m.renderSection("Analysis Tabs", []keyHelp{
		{"j / k, pgup / pgdn", "Scroll"},
	}))

	sections = append(sections, m.renderSection("Coach", []keyHelp{
		{"enter", "Get AI suggestions, then send a question"},
		{"esc", "Leave the input box"},
		{"i", "Back to the input box"},
	}))

	sections = append(sections, m.renderMetricsHelp())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

type keyHelp struct {
	key  string
	desc string
}

func (m HelpModel) renderSection(title string, keys []keyHelp) string {
	lines := []string{"", sectionTitle(title)}
	for _, k := range keys {
		lines = append(lines, "  "+RenderKeyHelp(k.key, k.desc))
	}
	return strings.Join(lines, "\n")
}

func (m HelpModel) renderMetricsHelp() string {
	lines := []string{"", sectionTitle("Metrics Explained"), ""}

	metrics := []struct {
		name string
		desc string
	}{
		{"Walk break", "A stretch below 2.0 m/s (8:20 /km)."},
		{"Pace fluctuation", "Standard deviation of pace. Above 1.5 min/km is uneven pacing."},
		{"HR zones", "Shares of your max HR in this run: <60, 60-70, 70-80, 80-90, 90+ %."},
		{"Mean max pace", "Fastest average pace held for 30 s, 1 min and 5 min."},
		{"EF (Efficiency Factor)", "Speed per heartbeat. Higher = more efficient aerobic system."},
		{"Decoupling", "Efficiency lost from first to second half. <5% = good aerobic base."},
	}

	for _, metric := range metrics {
		lines = append(lines, "  "+helpKeyStyle.Render(metric.name))
		lines = append(lines, "  "+helpDescStyle.Render(metric.desc))
		lines = append(lines, "")
	}

	return strings.Join(lines, "\n")
}
