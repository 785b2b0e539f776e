package cmd

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"runanalyzer/internal/service"
	"runanalyzer/internal/store"
)

var (
	runsDays    int
	runsHistory bool
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recent runs",
	Long: `List runs from the last few days, newest first. Runs come from Strava when
you are logged in and from the local cache otherwise.

Use --history to list past analyses instead.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := setup(ctx, cmd, setupOptions{console: cmd.ErrOrStderr()})
		if err != nil {
			return err
		}
		defer a.Close()

		out := cmd.OutOrStdout()
		if runsHistory {
			history, err := a.svc.History(service.HistoryLimit)
			if err != nil {
				return fmt.Errorf("loading history: %w", err)
			}
			displayHistory(out, history)
			return nil
		}

		days := runsDays
		if days == 0 {
			days = a.svc.AfterDays()
		}
		if days < 0 {
			return fmt.Errorf("--days must be positive, got %d", days)
		}

		runs, err := a.svc.RecentRunsWithin(ctx, days)
		if err != nil {
			return err
		}
		ids := make([]int64, len(runs))
		for i, r := range runs {
			ids[i] = r.ID
		}
		cached, err := a.svc.CachedStreams(ids)
		if err != nil {
			return err
		}
		displayRuns(out, runs, cached, days)
		if last, err := a.svc.LastRefreshed(); err != nil {
			a.logger.Warn("Could not read last refresh time", zap.Error(err))
		} else if !last.IsZero() {
			fmt.Fprintln(out, dimStyle.Render("Run list refreshed "+humanize.Time(last)))
		}
		if a.client != nil {
			short, daily := a.client.RateLimitStatus()
			fmt.Fprintln(out, dimStyle.Render(fmt.Sprintf("Strava API: %d requests left in this 15 minute window, %d today", short, daily)))
		}
		return nil
	},
}

func init() {
	runsCmd.Flags().IntVar(&runsDays, "days", 0, "Look back this many days (default from config)")
	runsCmd.Flags().BoolVar(&runsHistory, "history", false, "List past analyses instead of runs")
	rootCmd.AddCommand(runsCmd)
}

// displayRuns lists runs; cached marks the ones whose streams are stored
// locally and can be analyzed offline
func displayRuns(w io.Writer, runs []store.Activity, cached map[int64]bool, days int) {
	if len(runs) == 0 {
		fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("No runs in the last %d days", days)))
		return
	}
	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("%d run(s) in the last %d days", len(runs), days)))
	fmt.Fprintln(w)

	tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
	fmt.Fprintln(tw, "ID\tName\tWhen\tDistance\tTime\tPace\tHR\tCached\t")
	fmt.Fprintln(tw, strings.Repeat("-", 80))
	for _, r := range runs {
		var pace *float64
		if r.AverageSpeed > 0 {
			p := 1000 / (r.AverageSpeed * 60)
			pace = &p
		}
		offline := ""
		if cached[r.ID] {
			offline = "yes"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%.2f km\t%s\t%s\t%s\t%s\t\n",
			r.ID,
			truncate(r.Name, 32),
			humanize.Time(r.StartDate),
			r.Distance/1000,
			formatSeconds(float64(r.MovingTime)),
			formatPace(pace),
			formatOptional(r.AverageHeartrate, "%.0f"),
			offline,
		)
	}
	_ = tw.Flush()
	fmt.Fprintln(w)
	fmt.Fprintln(w, dimStyle.Render(fmt.Sprintf("Tip: runanalyzer analyze %d", runs[0].ID)))
}

func displayHistory(w io.Writer, history []store.AnalysisRun) {
	if len(history) == 0 {
		fmt.Fprintln(w, headerStyle.Render("No analyses yet"))
		return
	}
	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("Last %d analyses", len(history))))
	fmt.Fprintln(w)

	tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
	fmt.Fprintln(tw, "Run ID\tSource\tWhen\tSamples\tWalks\tPace\tHR\tNotes\t")
	fmt.Fprintln(tw, strings.Repeat("-", 80))
	for _, h := range history {
		// Offline sources are file paths
		source := filepath.Base(h.Source)
		if h.ActivityID != nil {
			source = fmt.Sprintf("%s #%d", h.Source, *h.ActivityID)
		}
		notes := ""
		switch {
		case h.Error != "":
			notes = h.Error
		case h.WarningCount > 0:
			notes = fmt.Sprintf("%d warning(s)", h.WarningCount)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%s\t%s\t%s\t\n",
			shortID(h.RunID),
			truncate(source, 32),
			humanize.Time(h.AnalyzedAt),
			h.SampleCount,
			h.WalkCount,
			formatPace(h.AvgPace),
			formatOptional(h.AvgHeartrate, "%.0f"),
			notes,
		)
	}
	_ = tw.Flush()
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
