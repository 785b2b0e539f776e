package analysis

import (
	"math"
	"sort"
)

// Split is one 1 km distance bucket
type Split struct {
	Km      int      `json:"km_split" yaml:"km_split"` // 1-indexed
	Pace    *float64 `json:"split_pace" yaml:"split_pace"`
	TimeSec float64  `json:"split_time_sec" yaml:"split_time_sec"`
	Samples int      `json:"samples" yaml:"samples"`
}

type splitBucket struct {
	paces    []*float64
	minTime  float64
	maxTime  float64
	hasTimes bool
}

// DistanceSplits groups samples by floor(distance/1000) and reports the mean
// pace and elapsed time of each bucket in ascending distance order. Samples
// without a distance are left out. Returns nil when no sample has a distance.
func DistanceSplits(samples []Sample) []Split {
	buckets := make(map[int]*splitBucket)

	for _, s := range samples {
		if s.Distance == nil {
			continue
		}
		key := int(math.Floor(*s.Distance / MetersPerKm))
		b, ok := buckets[key]
		if !ok {
			b = &splitBucket{}
			buckets[key] = b
		}
		b.paces = append(b.paces, s.Pace)
		if !b.hasTimes || s.Time < b.minTime {
			b.minTime = s.Time
		}
		if !b.hasTimes || s.Time > b.maxTime {
			b.maxTime = s.Time
		}
		b.hasTimes = true
	}

	if len(buckets) == 0 {
		return nil
	}

	keys := make([]int, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Ints(keys)

	splits := make([]Split, 0, len(keys))
	for _, k := range keys {
		b := buckets[k]
		splits = append(splits, Split{
			Km:      k + 1,
			Pace:    meanOf(b.paces),
			TimeSec: b.maxTime - b.minTime,
			Samples: len(b.paces),
		})
	}
	return splits
}
