package analysis

// ZoneCount is the number of samples that fell in one heart rate zone
type ZoneCount struct {
	Zone     int     `json:"zone" yaml:"zone"` // 1-5
	Label    string  `json:"label" yaml:"label"`
	LowerBPM float64 `json:"lower_bpm" yaml:"lower_bpm"` // inclusive
	UpperBPM float64 `json:"upper_bpm" yaml:"upper_bpm"` // exclusive
	Samples  int     `json:"samples" yaml:"samples"`
}

// HeartRateZones bins heart rate samples into five zones relative to the
// session's own max HR. Bins are closed-open; the top edge is max+1 so the
// max itself lands in zone 5. All five zones are returned, including empty
// ones. Returns nil when no sample has a heart rate.
func HeartRateZones(samples []Sample) []ZoneCount {
	maxHR := maxOf(Heartrates(samples))
	if maxHR == nil {
		return nil
	}

	edges := make([]float64, len(HRZoneFractions))
	for i, f := range HRZoneFractions {
		edges[i] = f * *maxHR
	}
	edges[len(edges)-1] = *maxHR + 1

	zones := make([]ZoneCount, len(HRZoneLabels))
	for i, label := range HRZoneLabels {
		zones[i] = ZoneCount{
			Zone:     i + 1,
			Label:    label,
			LowerBPM: edges[i],
			UpperBPM: edges[i+1],
		}
	}

	for _, s := range samples {
		if s.Heartrate == nil {
			continue
		}
		if z := zoneIndex(*s.Heartrate, edges); z >= 0 {
			zones[z].Samples++
		}
	}

	return zones
}

// zoneIndex returns the first bin [edges[i], edges[i+1]) holding hr, or -1
func zoneIndex(hr float64, edges []float64) int {
	for i := 0; i < len(edges)-1; i++ {
		if hr >= edges[i] && hr < edges[i+1] {
			return i
		}
	}
	return -1
}

// TotalZoneSamples sums the samples across all zones
func TotalZoneSamples(zones []ZoneCount) int {
	total := 0
	for _, z := range zones {
		total += z.Samples
	}
	return total
}
