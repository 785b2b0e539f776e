package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"runanalyzer/internal/service"
)

// reservedRows is the height taken by header, nav and footer
const reservedRows = 7

// renderFunc draws one analysis tab for the given content width
type renderFunc func(r *service.Report, width int) string

// ReportViewModel is a scrollable analysis tab
type ReportViewModel struct {
	render   renderFunc
	report   *service.Report
	viewport viewport.Model
	width    int
	ready    bool
}

// NewReportViewModel creates a tab that draws reports with render
func NewReportViewModel(render renderFunc, width, height int) ReportViewModel {
	m := ReportViewModel{render: render, width: width}
	if width > 0 && height > 0 {
		m.viewport = viewport.New(width, height-reservedRows)
		m.ready = true
	}
	return m
}

// SetReport replaces the report shown in the tab
func (m ReportViewModel) SetReport(r *service.Report) ReportViewModel {
	m.report = r
	if m.ready {
		m.viewport.SetContent(m.content())
		m.viewport.GotoTop()
	}
	return m
}

// Update handles resizing and scrolling
func (m ReportViewModel) Update(msg tea.Msg) (ReportViewModel, tea.Cmd) {
	if msg, ok := msg.(tea.WindowSizeMsg); ok {
		m.width = msg.Width
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-reservedRows)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - reservedRows
		}
		m.viewport.SetContent(m.content())
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View renders the tab
func (m ReportViewModel) View() string {
	if m.report == nil {
		return "\n  No run analyzed yet. Pick one on the Runs tab."
	}
	if !m.ready {
		return m.content()
	}
	footer := statusStyle.Render("  j/k or arrows: scroll")
	return lipgloss.JoinVertical(lipgloss.Left, m.viewport.View(), footer)
}

func (m ReportViewModel) content() string {
	if m.report == nil {
		return ""
	}
	if m.report.Result.Insights.HasError() {
		return lipgloss.JoinVertical(lipgloss.Left,
			renderReportHeader(m.report),
			errorStyle.Render("  "+m.report.Result.Insights.Error))
	}
	return lipgloss.JoinVertical(lipgloss.Left, renderReportHeader(m.report), m.render(m.report, m.width))
}

func renderReportHeader(r *service.Report) string {
	title := cardTitleStyle.Render(r.Title())

	var stats []string
	if a := r.Activity; a != nil {
		stats = append(stats,
			fmt.Sprintf("%.2f km", a.DistanceKm),
			formatDuration(float64(a.MovingTimeSec)),
			formatPaceWithUnit(a.AvgPace))
	}
	stats = append(stats, fmt.Sprintf("%d samples", len(r.Result.Samples)))

	statsLine := lipgloss.NewStyle().Foreground(textColor).Bold(true).Render(strings.Join(stats, "  •  "))
	return lipgloss.JoinVertical(lipgloss.Left, "", title, statsLine, "")
}

// chartWidth leaves room for the axis labels
func chartWidth(width int) int {
	w := width - 12
	switch {
	case w > 100:
		return 100
	case w < 20:
		return 50
	}
	return w
}
