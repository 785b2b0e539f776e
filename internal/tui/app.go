// Package tui is the terminal dashboard for analyzed runs.
package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"runanalyzer/internal/coach"
	"runanalyzer/internal/service"
	"runanalyzer/internal/store"
)

// Tab identifiers
type Tab int

const (
	TabRuns Tab = iota
	TabPace
	TabSplits
	TabCurves
	TabCoach
	tabCount
)

var tabNames = [tabCount]string{"Runs", "Pace & Effort", "Splits & Segments", "Performance Curves", "Coach"}

// Analyzer lists runs and analyzes them
type Analyzer interface {
	RecentRuns(ctx context.Context) ([]store.Activity, error)
	AnalyzeActivity(ctx context.Context, activityID int64) (*service.Report, error)
}

// Options configures the app. A nil Analyzer runs offline with only Report.
type Options struct {
	Analyzer Analyzer
	Coach    coach.Coach
	Report   *service.Report
	Logger   *zap.Logger
}

// App is the root Bubble Tea model
type App struct {
	ctx    context.Context
	logger *zap.Logger

	tab      Tab
	showHelp bool

	runs   RunsModel
	pace   ReportViewModel
	splits ReportViewModel
	curves ReportViewModel
	coach  CoachModel
	help   HelpModel

	spinner   spinner.Model
	analyzing bool
	report    *service.Report
	// autoLatest analyzes the newest run once the first listing arrives
	autoLatest bool

	width  int
	height int

	status string
	err    error
}

type reportLoadedMsg struct {
	report *service.Report
	err    error
}

// NewApp creates a new App
func NewApp(ctx context.Context, opts Options) *App {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	c := opts.Coach
	if c == nil {
		c = coach.Disabled{}
	}

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(primaryColor)

	a := &App{
		ctx:        ctx,
		logger:     logger,
		runs:       NewRunsModel(ctx, opts.Analyzer),
		pace:       NewReportViewModel(renderPaceEffort, 0, 0),
		splits:     NewReportViewModel(renderSplitsSegments, 0, 0),
		curves:     NewReportViewModel(renderPerformanceCurves, 0, 0),
		coach:      NewCoachModel(ctx, c, logger),
		help:       NewHelpModel(),
		spinner:    s,
		autoLatest: opts.Report == nil,
	}
	if opts.Report != nil {
		a.setReport(opts.Report)
		a.tab = TabPace
	}
	return a
}

// Init loads the run list
func (a *App) Init() tea.Cmd {
	return tea.Batch(a.spinner.Tick, a.runs.Init())
}

func (a *App) busy() bool {
	return a.analyzing || a.runs.loading || a.coach.Waiting()
}

func (a *App) analyze(id int64, name string) tea.Cmd {
	a.analyzing = true
	a.err = nil
	a.status = fmt.Sprintf("Analyzing %s...", name)
	a.logger.Debug("Analyzing from TUI", zap.Int64("activity_id", id))

	analyzer, ctx := a.runs.analyzer, a.ctx
	return func() tea.Msg {
		report, err := analyzer.AnalyzeActivity(ctx, id)
		return reportLoadedMsg{report: report, err: err}
	}
}

func (a *App) setReport(r *service.Report) {
	a.report = r
	a.pace = a.pace.SetReport(r)
	a.splits = a.splits.SetReport(r)
	a.curves = a.curves.SetReport(r)
	a.coach = a.coach.SetReport(r)
	if r.Activity != nil {
		a.runs.analyzedID = r.Activity.ID
	}
}

// Update handles messages
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		if a.tab == TabCoach && a.coach.Capturing() {
			break
		}
		switch msg.String() {
		case "q":
			return a, tea.Quit
		case "?":
			a.showHelp = !a.showHelp
			return a, nil
		case "esc":
			if a.showHelp {
				a.showHelp = false
				return a, nil
			}
		case "tab":
			a.switchTab((a.tab + 1) % tabCount)
			return a, nil
		case "shift+tab":
			a.switchTab((a.tab + tabCount - 1) % tabCount)
			return a, nil
		case "1", "2", "3", "4", "5":
			a.switchTab(Tab(msg.String()[0] - '1'))
			return a, nil
		}
		if a.showHelp {
			return a, nil
		}

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.pace, _ = a.pace.Update(msg)
		a.splits, _ = a.splits.Update(msg)
		a.curves, _ = a.curves.Update(msg)
		a.coach, _ = a.coach.Update(msg)
		return a, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case runsLoadedMsg:
		var cmd tea.Cmd
		a.runs, cmd = a.runs.Update(msg)
		if msg.err != nil {
			a.logger.Error("Failed to list runs", zap.Error(msg.err))
		}
		if a.autoLatest && msg.err == nil && len(msg.runs) > 0 {
			a.autoLatest = false
			latest := msg.runs[0]
			return a, tea.Batch(cmd, a.analyze(latest.ID, latest.Name))
		}
		return a, cmd

	case AnalyzeRunMsg:
		if a.analyzing {
			return a, nil
		}
		a.autoLatest = false
		return a, a.analyze(msg.ActivityID, msg.Name)

	case reportLoadedMsg:
		a.analyzing = false
		a.status = ""
		if msg.err != nil {
			a.err = msg.err
			a.logger.Error("Analysis failed", zap.Error(msg.err))
			return a, nil
		}
		a.setReport(msg.report)
		if a.tab == TabRuns {
			a.tab = TabPace
		}
		return a, nil

	case coachStartedMsg, coachReplyMsg:
		var cmd tea.Cmd
		a.coach, cmd = a.coach.Update(msg)
		return a, cmd
	}

	// Delegate to the current tab
	var cmd tea.Cmd
	switch a.tab {
	case TabRuns:
		a.runs, cmd = a.runs.Update(msg)
	case TabPace:
		a.pace, cmd = a.pace.Update(msg)
	case TabSplits:
		a.splits, cmd = a.splits.Update(msg)
	case TabCurves:
		a.curves, cmd = a.curves.Update(msg)
	case TabCoach:
		a.coach, cmd = a.coach.Update(msg)
	}
	return a, cmd
}

func (a *App) switchTab(t Tab) {
	a.tab = t
	a.showHelp = false
}

// View renders the app
func (a *App) View() string {
	var content string
	if a.showHelp {
		content = a.help.View()
	} else {
		switch a.tab {
		case TabRuns:
			content = a.runs.View()
		case TabPace:
			content = a.pace.View()
		case TabSplits:
			content = a.splits.View()
		case TabCurves:
			content = a.curves.View()
		case TabCoach:
			content = a.coach.View()
		}
	}

	return lipgloss.JoinVertical(lipgloss.Left, a.renderHeader(), a.renderNav(), content, a.renderFooter())
}

func (a *App) renderHeader() string {
	title := "Strava Run Analyzer"
	if a.report != nil {
		title += " | " + a.report.Title()
	}
	return headerStyle.Render(title)
}

func (a *App) renderNav() string {
	var nav string
	for i, name := range tabNames {
		if i > 0 {
			nav += "  "
		}
		label := fmt.Sprintf("[%d] %s", i+1, name)
		if Tab(i) == a.tab && !a.showHelp {
			nav += navActiveStyle.Render(label)
		} else {
			nav += navInactiveStyle.Render(label)
		}
	}
	nav += "  " + navInactiveStyle.Render("[?] Help  [q] Quit")
	return navStyle.Render(nav)
}

func (a *App) renderFooter() string {
	switch {
	case a.err != nil:
		return errorStyle.Render(fmt.Sprintf("Error: %v", a.err))
	case a.busy():
		status := a.status
		if status == "" {
			status = "Working..."
		}
		return statusStyle.Render(a.spinner.View() + " " + status)
	case a.status != "":
		return statusStyle.Render(a.status)
	}
	return ""
}
