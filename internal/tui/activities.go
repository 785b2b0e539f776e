package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"runanalyzer/internal/store"
)

// RunsModel is the recent runs list
type RunsModel struct {
	ctx      context.Context
	analyzer Analyzer
	runs     []store.Activity
	cursor   int
	loading  bool
	loaded   bool
	err      error
	// analyzedID marks the run currently shown in the analysis tabs
	analyzedID int64
}

// NewRunsModel creates a new runs model. A nil analyzer means offline mode.
func NewRunsModel(ctx context.Context, analyzer Analyzer) RunsModel {
	return RunsModel{
		ctx:      ctx,
		analyzer: analyzer,
		loading:  analyzer != nil,
	}
}

// Init loads the run list
func (m RunsModel) Init() tea.Cmd {
	if m.analyzer == nil {
		return nil
	}
	return m.loadRuns
}

type runsLoadedMsg struct {
	runs []store.Activity
	err  error
}

// AnalyzeRunMsg asks the app to analyze one activity
type AnalyzeRunMsg struct {
	ActivityID int64
	Name       string
}

func (m RunsModel) loadRuns() tea.Msg {
	runs, err := m.analyzer.RecentRuns(m.ctx)
	return runsLoadedMsg{runs: runs, err: err}
}

// Update handles messages
func (m RunsModel) Update(msg tea.Msg) (RunsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case runsLoadedMsg:
		m.loading = false
		m.loaded = true
		m.err = msg.err
		m.runs = msg.runs
		if m.cursor >= len(m.runs) {
			m.cursor = 0
		}

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.runs)-1 {
				m.cursor++
			}
		case "r":
			if m.analyzer != nil && !m.loading {
				m.loading = true
				return m, m.loadRuns
			}
		case "enter":
			if m.cursor < len(m.runs) {
				run := m.runs[m.cursor]
				return m, func() tea.Msg {
					return AnalyzeRunMsg{ActivityID: run.ID, Name: run.Name}
				}
			}
		}
	}
	return m, nil
}

// View renders the runs list
func (m RunsModel) View() string {
	if m.analyzer == nil {
		return "\n  Offline: showing an imported file. Run 'runanalyzer login' to browse Strava runs."
	}

	if m.loading {
		return "\n  Loading recent runs..."
	}

	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("\n  Error: %v", m.err))
	}

	if len(m.runs) == 0 {
		return "\n  No recent runs found. Press 'r' to refresh."
	}

	var sections []string
	sections = append(sections, cardTitleStyle.Render(fmt.Sprintf("Recent Runs (%d)", len(m.runs))))

	header := tableHeaderStyle.Render(fmt.Sprintf("   %-14s  %-28s  %9s  %8s  %8s  %5s",
		"When", "Name", "Distance", "Time", "Pace", "HR"))
	sections = append(sections, header)

	for i, a := range m.runs {
		var pace *float64
		if a.AverageSpeed > 0 {
			p := metersPerKm / (a.AverageSpeed * 60)
			pace = &p
		}

		cursor := "  "
		if i == m.cursor {
			cursor = "> "
		}
		marker := " "
		if a.ID == m.analyzedID {
			marker = "*"
		}

		row := fmt.Sprintf("%s%-14s  %-28s  %9s  %8s  %8s  %5s%s",
			cursor,
			truncateName(humanize.Time(a.StartDate), 14),
			truncateName(a.Name, 28),
			formatDistance(a.Distance),
			formatClock(float64(a.MovingTime)),
			formatPace(pace),
			formatOptional("%.0f", a.AverageHeartrate),
			marker,
		)

		if i == m.cursor {
			sections = append(sections, tableSelectedStyle.Render(row))
		} else {
			sections = append(sections, tableRowStyle.Render(row))
		}
	}

	sections = append(sections, statusStyle.Render("  enter: analyze  j/k: navigate  r: refresh"))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}
