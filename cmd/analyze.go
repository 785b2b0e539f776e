package cmd

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"runanalyzer/internal/export"
	"runanalyzer/internal/service"
)

const formatText = "text"

var (
	analyzeLatest  bool
	analyzeFitFile string
	analyzeFormat  string
	analyzeParquet string
	analyzeSamples bool
	analyzeCoach   bool
	analyzeRefetch bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [activity-id]",
	Short: "Analyze a run and print the report",
	Long: `Analyze one run: a Strava activity by id, the latest run (the default), or a
FIT file. The report is printed as a text summary or encoded as YAML or JSON.

Examples:
  runanalyzer analyze --latest
  runanalyzer analyze 12345678901 --format json
  runanalyzer analyze --fit morning.fit --parquet samples.parquet
  runanalyzer analyze 12345678901 --refetch`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sources := 0
		for _, set := range []bool{len(args) == 1, analyzeLatest, analyzeFitFile != ""} {
			if set {
				sources++
			}
		}
		if sources > 1 {
			return errors.New("choose one of an activity id, --latest or --fit")
		}
		if analyzeRefetch && analyzeFitFile != "" {
			return errors.New("--refetch only applies to Strava activities")
		}

		var activityID int64
		if len(args) == 1 {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || id <= 0 {
				return fmt.Errorf("invalid activity id %q", args[0])
			}
			activityID = id
		}

		format := export.Format(formatText)
		if analyzeFormat != formatText {
			f, err := export.ParseFormat(analyzeFormat)
			if err != nil {
				return err
			}
			format = f
		}

		ctx := cmd.Context()
		a, err := setup(ctx, cmd, setupOptions{console: cmd.ErrOrStderr()})
		if err != nil {
			return err
		}
		defer a.Close()

		var report *service.Report
		switch {
		case analyzeFitFile != "":
			report, err = a.analyzeFIT(ctx, analyzeFitFile)
		case analyzeRefetch:
			if activityID == 0 {
				if activityID, err = a.svc.LatestRunID(ctx); err != nil {
					return err
				}
			}
			if err := a.svc.ForgetStreams(activityID); err != nil {
				return err
			}
			report, err = a.svc.AnalyzeActivity(ctx, activityID)
		case activityID != 0:
			report, err = a.svc.AnalyzeActivity(ctx, activityID)
		default:
			report, err = a.svc.LatestRun(ctx)
		}
		if err != nil {
			return err
		}

		if analyzeCoach {
			session := service.NewCoachSession(a.coach, report, a.logger)
			if _, err := session.Start(ctx); err != nil {
				return fmt.Errorf("asking the coach: %w", err)
			}
		}

		if analyzeParquet != "" {
			if err := export.WriteSamplesParquet(analyzeParquet, report.Result.Samples); err != nil {
				return err
			}
			a.logger.Info("Wrote samples",
				zap.String("path", analyzeParquet),
				zap.Int("samples", len(report.Result.Samples)),
			)
		}

		out := cmd.OutOrStdout()
		if format == formatText {
			renderSummary(out, report)
			return nil
		}
		return export.WriteReport(out, report, format, analyzeSamples)
	},
}

func init() {
	analyzeCmd.Flags().BoolVar(&analyzeLatest, "latest", false, "Analyze the most recent run")
	analyzeCmd.Flags().StringVar(&analyzeFitFile, "fit", "", "Analyze a FIT file instead of a Strava activity")
	analyzeCmd.Flags().StringVarP(&analyzeFormat, "format", "f", formatText, "Output format: text, yaml or json")
	analyzeCmd.Flags().StringVar(&analyzeParquet, "parquet", "", "Also write the aligned samples to this parquet file")
	analyzeCmd.Flags().BoolVar(&analyzeSamples, "samples", false, "Include aligned samples in yaml/json output")
	analyzeCmd.Flags().BoolVar(&analyzeCoach, "coach", false, "Ask the AI coach for suggestions")
	analyzeCmd.Flags().BoolVar(&analyzeRefetch, "refetch", false, "Drop cached streams and download them again")
	rootCmd.AddCommand(analyzeCmd)
}
