package analysis

// Effort holds pace-to-heart-rate efficiency metrics. Values are nil when the
// activity lacks enough paired velocity and heart rate data.
type Effort struct {
	// EfficiencyFactor is meters per minute per heartbeat; higher is better
	EfficiencyFactor *float64 `json:"efficiency_factor" yaml:"efficiency_factor"`
	// AerobicDecoupling is the percent drop in efficiency from the first half
	// to the second. Under 5% on a long run indicates a good aerobic base.
	AerobicDecoupling *float64 `json:"aerobic_decoupling_pct" yaml:"aerobic_decoupling_pct"`
	// CardiacDrift is the bpm rise between the first and last quarter of
	// steady-state running
	CardiacDrift   *float64 `json:"cardiac_drift_bpm" yaml:"cardiac_drift_bpm"`
	SteadyStatePct *float64 `json:"steady_state_pct" yaml:"steady_state_pct"`
}

const (
	effortMinVelocity     = 0.5 // m/s
	effortMinHR           = 80
	effortMaxHR           = 220
	decouplingMinSamples  = 120 // 2 minutes at 1 Hz
	driftMinSamples       = 240
	driftMinSteadySamples = 120
	steadyBand            = 0.1 // within 10% of average velocity
)

// ComputeEffort derives efficiency metrics from aligned samples
func ComputeEffort(samples []Sample) Effort {
	var effort Effort

	if ef := efficiencyFactor(samples); ef > 0 {
		effort.EfficiencyFactor = ptr(ef)
	}

	if len(samples) >= decouplingMinSamples {
		mid := len(samples) / 2
		first, second := efficiencyFactor(samples[:mid]), efficiencyFactor(samples[mid:])
		if first > 0 && second > 0 {
			effort.AerobicDecoupling = ptr((first/second - 1) * 100)
		}
	}

	avgVelocity := meanOf(Velocities(samples))
	if avgVelocity == nil || *avgVelocity <= 0 {
		return effort
	}

	var steady []Sample
	valid := 0
	for _, s := range samples {
		if s.Velocity == nil {
			continue
		}
		valid++
		if isSteady(*s.Velocity, *avgVelocity) {
			steady = append(steady, s)
		}
	}
	if valid > 0 {
		effort.SteadyStatePct = ptr(float64(len(steady)) / float64(valid) * 100)
	}

	if len(samples) >= driftMinSamples {
		effort.CardiacDrift = cardiacDrift(steady)
	}

	return effort
}

func isSteady(velocity, avg float64) bool {
	ratio := velocity / avg
	return ratio > 1-steadyBand && ratio < 1+steadyBand
}

// efficiencyFactor is average m/min over average HR for moving samples
func efficiencyFactor(samples []Sample) float64 {
	var totalVelocity, totalHR float64
	var count int

	for _, s := range samples {
		if s.Velocity == nil || s.Heartrate == nil {
			continue
		}
		vel, hr := *s.Velocity, *s.Heartrate
		// Filter noise: must be moving with a plausible HR
		if vel > effortMinVelocity && hr > effortMinHR && hr < effortMaxHR {
			totalVelocity += vel
			totalHR += hr
			count++
		}
	}

	if count == 0 {
		return 0
	}
	return (totalVelocity / float64(count) * SecondsPerMinute) / (totalHR / float64(count))
}

func cardiacDrift(steady []Sample) *float64 {
	var paired []Sample
	for _, s := range steady {
		if s.Heartrate != nil && *s.Heartrate > 0 {
			paired = append(paired, s)
		}
	}
	if len(paired) < driftMinSteadySamples {
		return nil
	}

	q := len(paired) / 4
	first := meanOf(Heartrates(paired[:q]))
	last := meanOf(Heartrates(paired[len(paired)-q:]))
	if first == nil || last == nil {
		return nil
	}
	return ptr(*last - *first)
}
