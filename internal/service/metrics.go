package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metric label values
const (
	outcomeOK     = "ok"
	outcomeNoData = "no_data"
	outcomeFailed = "failed"
	cacheHit      = "hit"
	cacheMiss     = "miss"
	coachStart    = "suggestions"
	coachFollowUp = "follow_up"
	coachDisabled = "disabled"
	coachFallback = "fallback"
	coachAnswered = "answered"
	sourceStrava  = "strava"
	sourceOffline = "file"
	runsFromAPI   = "api"
	runsFromCache = "cache"
)

var (
	analysesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "runanalyzer_analyses_total",
			Help: "Analyses performed, by data source and outcome.",
		},
		[]string{"source", "outcome"},
	)
	analysisDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "runanalyzer_analysis_duration_seconds",
			Help:    "Time spent in the local analysis pipeline.",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 8),
		},
	)
	analysisSamples = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "runanalyzer_analysis_samples",
			Help:    "Number of aligned samples per analysis.",
			Buckets: prometheus.ExponentialBuckets(60, 2, 9),
		},
	)
	analysisWarnings = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "runanalyzer_analysis_warnings_total",
			Help: "Data quality warnings raised during analysis.",
		},
		[]string{"kind", "stream"},
	)
	streamFetches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "runanalyzer_stream_fetches_total",
			Help: "Stream bundle lookups, by cache result.",
		},
		[]string{"cache"},
	)
	runListings = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "runanalyzer_run_listings_total",
			Help: "Recent run listings, by where the list came from.",
		},
		[]string{"from"},
	)
	coachRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "runanalyzer_coach_requests_total",
			Help: "Coach requests, by kind and result.",
		},
		[]string{"kind", "result"},
	)
)
