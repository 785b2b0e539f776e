// Package mcpserver exposes run analysis to MCP clients over stdio.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"runanalyzer/internal/export"
	"runanalyzer/internal/service"
	"runanalyzer/internal/store"
)

const serverName = "runanalyzer"

// ptr returns a pointer to the given value
func ptr[T any](v T) *T {
	return &v
}

// Analyzer is what the tools need from the analysis service
type Analyzer interface {
	RecentRunsWithin(ctx context.Context, afterDays int) ([]store.Activity, error)
	AnalyzeActivity(ctx context.Context, activityID int64) (*service.Report, error)
	LatestRun(ctx context.Context) (*service.Report, error)
}

// Server wraps the MCP server and the analyzer behind its tools
type Server struct {
	mcp      *mcp.Server
	analyzer Analyzer
	logger   *zap.Logger
}

// New creates the server and registers its tools
func New(analyzer Analyzer, version string, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		mcp: mcp.NewServer(&mcp.Implementation{
			Name:    serverName,
			Version: version,
		}, nil),
		analyzer: analyzer,
		logger:   logger,
	}
	s.registerTools()

	logger.Info("MCP server initialized", zap.String("version", version))
	return s
}

// MCPServer returns the underlying MCP server
func (s *Server) MCPServer() *mcp.Server {
	return s.mcp
}

// Run serves over stdin/stdout until ctx is done or the client disconnects
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info("MCP server starting")
	defer s.logger.Info("MCP server stopped")
	return s.mcp.Run(ctx, &mcp.StdioTransport{})
}

func readOnly(title string) *mcp.ToolAnnotations {
	return &mcp.ToolAnnotations{
		Title:           title,
		ReadOnlyHint:    true,
		IdempotentHint:  true,
		OpenWorldHint:   ptr(true),
		DestructiveHint: ptr(false),
	}
}

func (s *Server) registerTools() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name: "list_recent_runs",
		Description: `List recent Strava runs, newest first.

Parameters:
- after_days (integer): How many days back to look. Defaults to the configured window (7).

Returns: id, name, start date, distance, moving time and average pace for each run.`,
		Annotations: readOnly("List Recent Runs"),
	}, s.listRecentRuns)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name: "analyze_activity",
		Description: `Analyze one run's time-series: pace, walk/run segments, heart rate zones, mean-max pace, 1 km splits, efficiency and rule-based suggestions.

Parameters:
- activity_id (integer, required): Strava activity ID, as returned by list_recent_runs.

Returns: the analysis report without per-sample data.`,
		Annotations: readOnly("Analyze Activity"),
	}, s.analyzeActivity)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "analyze_latest_run",
		Description: "Analyze the most recent run. Returns the same report as analyze_activity.",
		Annotations: readOnly("Analyze Latest Run"),
	}, s.analyzeLatestRun)
}

// ListRecentRunsInput is the input of list_recent_runs
type ListRecentRunsInput struct {
	AfterDays int `json:"after_days,omitempty" jsonschema:"Number of days to look back. Defaults to the configured window."`
}

// AnalyzeActivityInput is the input of analyze_activity
type AnalyzeActivityInput struct {
	ActivityID int64 `json:"activity_id" jsonschema:"Strava activity ID to analyze."`
}

// AnalyzeLatestRunInput is the (empty) input of analyze_latest_run
type AnalyzeLatestRunInput struct{}

// RunSummary is one entry of list_recent_runs
type RunSummary struct {
	ID            int64    `json:"id"`
	Name          string   `json:"name"`
	StartDate     string   `json:"start_date"`
	DistanceKm    float64  `json:"distance_km"`
	MovingTimeSec int      `json:"moving_time_sec"`
	AvgPace       *float64 `json:"avg_pace_min_km,omitempty"`
	AvgHeartrate  *float64 `json:"avg_heartrate,omitempty"`
}

func (s *Server) listRecentRuns(ctx context.Context, req *mcp.CallToolRequest, input ListRecentRunsInput) (*mcp.CallToolResult, any, error) {
	s.logger.Info("MCP tool call", zap.String("tool", "list_recent_runs"), zap.Int("after_days", input.AfterDays))
	if input.AfterDays < 0 {
		return nil, nil, fmt.Errorf("after_days must not be negative, got %d", input.AfterDays)
	}

	runs, err := s.analyzer.RecentRunsWithin(ctx, input.AfterDays)
	if err != nil {
		return nil, nil, fmt.Errorf("listing runs: %w", err)
	}

	out := make([]RunSummary, 0, len(runs))
	for _, r := range runs {
		summary := RunSummary{
			ID:            r.ID,
			Name:          r.Name,
			StartDate:     r.StartDateLocal.Format(time.RFC3339),
			DistanceKm:    r.Distance / 1000,
			MovingTimeSec: r.MovingTime,
			AvgHeartrate:  r.AverageHeartrate,
		}
		if r.AverageSpeed > 0 {
			summary.AvgPace = ptr(1000 / (r.AverageSpeed * 60))
		}
		out = append(out, summary)
	}
	return jsonResult(map[string]any{"runs": out})
}

func (s *Server) analyzeActivity(ctx context.Context, req *mcp.CallToolRequest, input AnalyzeActivityInput) (*mcp.CallToolResult, any, error) {
	s.logger.Info("MCP tool call", zap.String("tool", "analyze_activity"), zap.Int64("activity_id", input.ActivityID))
	if input.ActivityID <= 0 {
		return nil, nil, fmt.Errorf("activity_id is required")
	}

	report, err := s.analyzer.AnalyzeActivity(ctx, input.ActivityID)
	if err != nil {
		return nil, nil, fmt.Errorf("analyzing activity %d: %w", input.ActivityID, err)
	}
	return jsonResult(export.NewDocument(report, false))
}

func (s *Server) analyzeLatestRun(ctx context.Context, req *mcp.CallToolRequest, input AnalyzeLatestRunInput) (*mcp.CallToolResult, any, error) {
	s.logger.Info("MCP tool call", zap.String("tool", "analyze_latest_run"))

	report, err := s.analyzer.LatestRun(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("analyzing latest run: %w", err)
	}
	return jsonResult(export.NewDocument(report, false))
}

// jsonResult renders v as the text content of a tool result
func jsonResult(v any) (*mcp.CallToolResult, any, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, nil, fmt.Errorf("encoding result: %w", err)
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(data)}},
	}, nil, nil
}
