package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"runanalyzer/internal/analysis"
	"runanalyzer/internal/config"
	"runanalyzer/internal/store"
	"runanalyzer/internal/strava"
)

var (
	ErrNoRecentRuns = errors.New("no recent runs found")
	ErrOffline      = errors.New("not connected to Strava: run 'runanalyzer login' first")
)

// Provider is the part of the Strava client the service relies on
type Provider interface {
	GetRecentRuns(ctx context.Context, afterDays int, latestOnly bool) ([]strava.Activity, error)
	GetActivity(ctx context.Context, activityID int64) (*strava.Activity, error)
	GetActivityStreams(ctx context.Context, activityID int64) (analysis.StreamBundle, error)
}

// AnalysisService fetches runs, caches their streams and analyzes them
type AnalysisService struct {
	provider Provider // nil when not logged in
	store    *store.DB
	fetch    config.FetchConfig
	logger   *zap.Logger

	now   func() time.Time
	newID func() string
}

// NewAnalysisService creates the service. provider may be nil, in which case
// only cached activities and offline bundles can be analyzed.
func NewAnalysisService(provider Provider, db *store.DB, fetch config.FetchConfig, logger *zap.Logger) *AnalysisService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnalysisService{
		provider: provider,
		store:    db,
		fetch:    fetch,
		logger:   logger,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// Online reports whether a Strava provider is configured
func (s *AnalysisService) Online() bool {
	return s.provider != nil
}

// AfterDays is the configured listing window
func (s *AnalysisService) AfterDays() int {
	return s.fetch.AfterDays
}

// RecentRuns lists runs from the configured window, newest first. The list
// comes from Strava when possible and is cached; when Strava can't be
// reached the cached runs from the same window are returned instead.
func (s *AnalysisService) RecentRuns(ctx context.Context) ([]store.Activity, error) {
	return s.RecentRunsWithin(ctx, s.fetch.AfterDays)
}

// RecentRunsWithin is RecentRuns with an explicit window in days
func (s *AnalysisService) RecentRunsWithin(ctx context.Context, afterDays int) ([]store.Activity, error) {
	if afterDays <= 0 {
		afterDays = s.fetch.AfterDays
	}
	since := s.now().Add(-time.Duration(afterDays) * 24 * time.Hour)

	if s.provider == nil {
		runListings.WithLabelValues(runsFromCache).Inc()
		return s.store.ListRuns(since, recentRunsLimit)
	}

	fetched, err := s.provider.GetRecentRuns(ctx, afterDays, s.fetch.LatestOnly)
	if err != nil {
		if ctx.Err() != nil {
			return nil, err
		}
		cached, cacheErr := s.store.ListRuns(since, recentRunsLimit)
		if cacheErr != nil || len(cached) == 0 {
			return nil, fmt.Errorf("listing recent runs: %w", err)
		}
		s.logger.Warn("Strava unavailable, using cached runs",
			zap.Error(err),
			zap.Int("cached", len(cached)),
		)
		runListings.WithLabelValues(runsFromCache).Inc()
		return cached, nil
	}

	runs := make([]store.Activity, 0, len(fetched))
	for _, a := range fetched {
		activity := convertActivity(a)
		if err := s.store.UpsertActivity(activity); err != nil {
			s.logger.Error("Caching activity", zap.Int64("activity_id", a.ID), zap.Error(err))
		}
		runs = append(runs, *activity)
	}
	if err := s.store.SetLastRunsFetch(s.now()); err != nil {
		s.logger.Error("Recording run list fetch", zap.Error(err))
	}

	runListings.WithLabelValues(runsFromAPI).Inc()
	s.logger.Info("Listed recent runs", zap.Int("runs", len(runs)), zap.Int("after_days", afterDays))
	return runs, nil
}

// LatestRunID returns the id of the most recent run
func (s *AnalysisService) LatestRunID(ctx context.Context) (int64, error) {
	runs, err := s.RecentRuns(ctx)
	if err != nil {
		return 0, err
	}
	if len(runs) == 0 {
		return 0, fmt.Errorf("%w in the last %d days", ErrNoRecentRuns, s.fetch.AfterDays)
	}
	return runs[0].ID, nil
}

// LatestRun analyzes the most recent run
func (s *AnalysisService) LatestRun(ctx context.Context) (*Report, error) {
	id, err := s.LatestRunID(ctx)
	if err != nil {
		return nil, err
	}
	return s.AnalyzeActivity(ctx, id)
}

// LastRefreshed is when the run list was last fetched from Strava, or the
// zero time if it never was
func (s *AnalysisService) LastRefreshed() (time.Time, error) {
	return s.store.LastRunsFetch()
}

// CachedStreams reports which of the given activities have their streams
// cached locally and can be analyzed offline
func (s *AnalysisService) CachedStreams(activityIDs []int64) (map[int64]bool, error) {
	cached := make(map[int64]bool, len(activityIDs))
	for _, id := range activityIDs {
		has, err := s.store.HasStreamBundle(id)
		if err != nil {
			return nil, fmt.Errorf("checking cached streams for %d: %w", id, err)
		}
		cached[id] = has
	}
	return cached, nil
}

// ForgetStreams drops the cached streams of an activity so the next analysis
// fetches them again. Offline there would be no way to get them back.
func (s *AnalysisService) ForgetStreams(activityID int64) error {
	if s.provider == nil {
		return ErrOffline
	}
	if err := s.store.DeleteStreamBundle(activityID); err != nil {
		return fmt.Errorf("dropping cached streams for %d: %w", activityID, err)
	}
	s.logger.Info("Dropped cached streams", zap.Int64("activity_id", activityID))
	return nil
}

// AnalyzeActivity analyzes one activity. Streams are read from the cache and
// fetched from Strava only when missing.
func (s *AnalysisService) AnalyzeActivity(ctx context.Context, activityID int64) (*Report, error) {
	logger := s.logger.With(zap.Int64("activity_id", activityID))

	activity, err := s.activity(ctx, activityID)
	if err != nil {
		analysesTotal.WithLabelValues(sourceStrava, outcomeFailed).Inc()
		return nil, err
	}

	bundle, err := s.streams(ctx, activityID, logger)
	if err != nil {
		analysesTotal.WithLabelValues(sourceStrava, outcomeFailed).Inc()
		logger.Error("Fetching streams failed", zap.Error(err))
		return nil, err
	}

	report := s.analyze(bundle, sourceStrava, logger)
	report.Activity = summarizeActivity(activity)
	s.record(report, &activityID, logger)
	return report, nil
}

// AnalyzeBundle analyzes a stream bundle that didn't come from Strava,
// such as a FIT file. source names where it came from.
func (s *AnalysisService) AnalyzeBundle(ctx context.Context, source string, bundle analysis.StreamBundle) (*Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	logger := s.logger.With(zap.String("source", source))

	report := s.analyze(bundle, sourceOffline, logger)
	report.Source = source
	s.record(report, nil, logger)
	return report, nil
}

func (s *AnalysisService) activity(ctx context.Context, activityID int64) (*store.Activity, error) {
	cached, err := s.store.GetActivity(activityID)
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, store.ErrActivityNotFound) {
		return nil, fmt.Errorf("reading activity %d: %w", activityID, err)
	}
	if s.provider == nil {
		return nil, fmt.Errorf("activity %d is not cached: %w", activityID, ErrOffline)
	}

	fetched, err := s.provider.GetActivity(ctx, activityID)
	if err != nil {
		return nil, err
	}
	activity := convertActivity(*fetched)
	if err := s.store.UpsertActivity(activity); err != nil {
		s.logger.Error("Caching activity", zap.Int64("activity_id", activityID), zap.Error(err))
	}
	return activity, nil
}

func (s *AnalysisService) streams(ctx context.Context, activityID int64, logger *zap.Logger) (analysis.StreamBundle, error) {
	bundle, err := s.store.GetStreamBundle(activityID)
	if err == nil {
		streamFetches.WithLabelValues(cacheHit).Inc()
		logger.Debug("Using cached streams", zap.Int("samples", bundle.Len()))
		return bundle, nil
	}
	if !errors.Is(err, store.ErrStreamsNotFound) {
		return nil, fmt.Errorf("reading cached streams: %w", err)
	}
	if s.provider == nil {
		return nil, fmt.Errorf("streams for activity %d are not cached: %w", activityID, ErrOffline)
	}

	streamFetches.WithLabelValues(cacheMiss).Inc()
	start := s.now()
	bundle, err = s.provider.GetActivityStreams(ctx, activityID)
	if err != nil {
		return nil, err
	}
	logger.Info("Fetched streams",
		zap.Int("samples", bundle.Len()),
		zap.Duration("duration", s.now().Sub(start)),
	)

	// An empty bundle isn't worth caching; Strava may still be processing the upload
	if bundle.Len() > 0 {
		if err := s.store.SaveStreamBundle(activityID, bundle); err != nil {
			logger.Error("Caching streams", zap.Error(err))
		}
	}
	return bundle, nil
}

func (s *AnalysisService) analyze(bundle analysis.StreamBundle, source string, logger *zap.Logger) *Report {
	report := &Report{
		RunID:      s.newID(),
		Source:     source,
		AnalyzedAt: s.now(),
	}
	logger = logger.With(zap.String("run_id", report.RunID))

	start := time.Now()
	report.Result = analysis.Analyze(bundle)
	analysisDuration.Observe(time.Since(start).Seconds())

	insights := report.Result.Insights
	if insights.HasError() {
		analysesTotal.WithLabelValues(source, outcomeNoData).Inc()
		logger.Warn("Nothing to analyze", zap.String("error", insights.Error))
		return report
	}

	analysesTotal.WithLabelValues(source, outcomeOK).Inc()
	analysisSamples.Observe(float64(len(report.Result.Samples)))
	for _, w := range insights.Warnings {
		analysisWarnings.WithLabelValues(string(w.Kind), w.Stream).Inc()
		logger.Warn("Analysis warning",
			zap.String("kind", string(w.Kind)),
			zap.String("stream", w.Stream),
			zap.String("message", w.Message),
		)
	}
	logger.Info("Analysis complete",
		zap.Int("samples", len(report.Result.Samples)),
		zap.Int("segments", len(report.Result.Segments)),
		zap.Int("walks", insights.WalkCount),
	)
	return report
}

// record stores the headline numbers; a failure here doesn't fail the analysis
func (s *AnalysisService) record(report *Report, activityID *int64, logger *zap.Logger) {
	insights := report.Result.Insights
	run := &store.AnalysisRun{
		RunID:        report.RunID,
		ActivityID:   activityID,
		Source:       report.Source,
		SampleCount:  len(report.Result.Samples),
		WalkCount:    insights.WalkCount,
		AvgPace:      insights.AvgPace,
		AvgHeartrate: insights.AvgHeartRate,
		WarningCount: len(insights.Warnings),
		Error:        insights.Error,
		AnalyzedAt:   report.AnalyzedAt,
	}
	if err := s.store.RecordAnalysisRun(run); err != nil {
		logger.Error("Recording analysis run", zap.Error(err))
	}
}

// History returns the most recent analyses, newest first
func (s *AnalysisService) History(limit int) ([]store.AnalysisRun, error) {
	return s.store.ListAnalysisRuns(limit)
}

// convertActivity converts a Strava API activity to a store activity
func convertActivity(a strava.Activity) *store.Activity {
	activity := &store.Activity{
		ID:                 a.ID,
		Name:               a.Name,
		Type:               a.Type,
		StartDate:          a.StartDate,
		StartDateLocal:     a.StartDateLocal,
		Timezone:           a.Timezone,
		Distance:           a.Distance,
		MovingTime:         a.MovingTime,
		ElapsedTime:        a.ElapsedTime,
		TotalElevationGain: a.TotalElevationGain,
		AverageSpeed:       a.AverageSpeed,
		MaxSpeed:           a.MaxSpeed,
		HasHeartrate:       a.HasHeartrate,
	}
	if a.AverageHeartrate > 0 {
		activity.AverageHeartrate = &a.AverageHeartrate
	}
	if a.MaxHeartrate > 0 {
		activity.MaxHeartrate = &a.MaxHeartrate
	}
	return activity
}
