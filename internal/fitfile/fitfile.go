// Package fitfile reads activity FIT files into stream bundles so runs
// recorded on a device can be analyzed without Strava.
package fitfile

import (
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"time"

	"github.com/tormoder/fit"

	"runanalyzer/internal/analysis"
)

// File is a decoded activity
type File struct {
	StartTime time.Time
	Sport     string
	Records   int
	Bundle    analysis.StreamBundle
}

// Load decodes the activity FIT file at path
func Load(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening FIT file: %w", err)
	}
	defer f.Close()

	return Decode(f)
}

// Decode reads an activity FIT file from r. Records are ordered by
// timestamp and time is expressed in seconds since the first one.
// Records without a valid timestamp are skipped.
func Decode(r io.Reader) (*File, error) {
	decoded, err := fit.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decoding FIT file: %w", err)
	}

	activity, err := decoded.Activity()
	if err != nil {
		return nil, fmt.Errorf("activity FIT expected: %w", err)
	}

	records := make([]*fit.RecordMsg, 0, len(activity.Records))
	for _, rec := range activity.Records {
		if rec != nil && validTime(rec.Timestamp) {
			records = append(records, rec)
		}
	}
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Timestamp.Before(records[j].Timestamp)
	})

	out := &File{
		Records: len(records),
		Bundle:  buildBundle(records),
	}
	if len(records) > 0 {
		out.StartTime = records[0].Timestamp.UTC()
	}
	if len(activity.Sessions) > 0 && activity.Sessions[0] != nil {
		out.Sport = fmt.Sprint(activity.Sessions[0].Sport)
	}
	return out, nil
}

func buildBundle(records []*fit.RecordMsg) analysis.StreamBundle {
	if len(records) == 0 {
		return analysis.StreamBundle{}
	}

	start := records[0].Timestamp
	times := make([]float64, len(records))
	distances := make([]*float64, len(records))
	velocities := make([]*float64, len(records))
	heartrates := make([]*float64, len(records))

	var haveDistance, haveVelocity, haveHR bool
	for i, rec := range records {
		times[i] = rec.Timestamp.Sub(start).Seconds()

		if d, ok := distance(rec); ok {
			distances[i] = &d
			haveDistance = true
		}
		if v, ok := speed(rec); ok {
			velocities[i] = &v
			haveVelocity = true
		}
		if hr, ok := heartRate(rec); ok {
			heartrates[i] = &hr
			haveHR = true
		}
	}

	bundle := analysis.StreamBundle{
		analysis.StreamTime: analysis.NewStream(times),
	}
	// Streams the device never recorded are left out, the way Strava omits them
	if haveDistance {
		bundle[analysis.StreamDistance] = analysis.NewOptionalStream(distances)
	}
	if haveVelocity {
		bundle[analysis.StreamVelocity] = analysis.NewOptionalStream(velocities)
	}
	if haveHR {
		bundle[analysis.StreamHeartrate] = analysis.NewOptionalStream(heartrates)
	}
	return bundle
}

func validTime(t time.Time) bool {
	return !t.IsZero() && !fit.IsBaseTime(t)
}

func distance(rec *fit.RecordMsg) (float64, bool) {
	d := rec.GetDistanceScaled()
	if !isFinite(d) || d < 0 {
		return 0, false
	}
	return d, true
}

// speed prefers the enhanced field and falls back to the 16-bit one
func speed(rec *fit.RecordMsg) (float64, bool) {
	v := rec.GetEnhancedSpeedScaled()
	if isFinite(v) && v >= 0 {
		return v, true
	}
	v = rec.GetSpeedScaled()
	if isFinite(v) && v >= 0 {
		return v, true
	}
	return 0, false
}

func heartRate(rec *fit.RecordMsg) (float64, bool) {
	if rec.HeartRate == math.MaxUint8 {
		return 0, false
	}
	return float64(rec.HeartRate), true
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
