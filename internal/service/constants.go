package service

const (
	// Upper bound on cached runs returned when Strava is unreachable
	recentRunsLimit = 50

	// Default number of analyses shown in history listings
	HistoryLimit = 20
)
