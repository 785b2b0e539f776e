package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"runanalyzer/internal/auth"
	"runanalyzer/internal/tui"
)

var (
	cfgFile     string
	metricsAddr string
	tuiFitFile  string
	version     = "dev"
	commit      = "unknown"
	date        = "unknown"
)

// rootCmd opens the dashboard when called without a subcommand
var rootCmd = &cobra.Command{
	Use:   "runanalyzer",
	Short: "Analyze your Strava runs in the terminal",
	Long: `runanalyzer fetches your latest Strava run, breaks it into run and walk
segments, and reports pace, heart rate zones, mean-max pace and 1 km splits,
with an optional AI coach to talk it over.

Quick Start:
  runanalyzer login                 # Connect your Strava account
  runanalyzer                       # Open the dashboard on your latest run
  runanalyzer analyze --latest      # Print an analysis of the latest run
  runanalyzer analyze --fit run.fit # Analyze a FIT file without Strava`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runTUI,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default ~/.runanalyzer/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address, e.g. :9090")
	rootCmd.Flags().StringVar(&tuiFitFile, "fit", "", "Open a FIT file instead of Strava runs")

	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)
}

func runTUI(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	// The terminal belongs to the dashboard, so logs only go to the file
	a, err := setup(ctx, cmd, setupOptions{requireStrava: tuiFitFile == ""})
	if err != nil {
		return err
	}
	defer a.Close()

	opts := tui.Options{Coach: a.coach, Logger: a.logger}
	if a.svc.Online() {
		opts.Analyzer = a.svc
	}

	if tuiFitFile != "" {
		report, err := a.analyzeFIT(ctx, tuiFitFile)
		if err != nil {
			return err
		}
		opts.Report = report
	} else if !a.svc.Online() {
		return auth.ErrNoAuth
	}

	p := tea.NewProgram(tui.NewApp(ctx, opts), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running TUI: %w", err)
	}
	return nil
}
