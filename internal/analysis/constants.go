package analysis

const (
	// WalkVelocityThreshold is the speed (m/s) below which a sample counts as walking
	WalkVelocityThreshold = 2.0

	// Suggestion heuristics
	FrequentWalkThreshold  = 3   // walk segments
	PaceVariationThreshold = 1.5 // min/km standard deviation

	// Unit conversions
	MetersPerKm      = 1000.0
	SecondsPerMinute = 60.0
)

// HRZoneFractions are the zone edges as fractions of the session's own max HR
var HRZoneFractions = []float64{0, 0.6, 0.7, 0.8, 0.9, 1.0}

// HRZoneLabels names the five zones, lowest to highest
var HRZoneLabels = []string{
	"Zone 1 (Warm-up)",
	"Zone 2 (Easy)",
	"Zone 3 (Aerobic)",
	"Zone 4 (Threshold)",
	"Zone 5 (Max Effort)",
}

// MeanMaxDurations are the mean-max pace windows in samples (~1 Hz, so seconds)
var MeanMaxDurations = []int{30, 60, 300}
