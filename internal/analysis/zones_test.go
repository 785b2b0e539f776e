package analysis

import "testing"

func samplesWithHR(hr []*float64) []Sample {
	samples := make([]Sample, len(hr))
	for i, h := range hr {
		samples[i] = Sample{Time: float64(i), Heartrate: h}
	}
	return samples
}

func TestHeartRateZones(t *testing.T) {
	samples := samplesWithHR([]*float64{
		floatPtr(100), // < 120 -> Z1
		floatPtr(120), // [120,140) -> Z2
		floatPtr(140), // [140,160) -> Z3
		floatPtr(160), // [160,180) -> Z4
		floatPtr(180), // [180,201) -> Z5
		floatPtr(200), // max itself -> Z5
		nil,           // excluded
	})

	zones := HeartRateZones(samples)
	if len(zones) != 5 {
		t.Fatalf("len(zones) = %d, want 5", len(zones))
	}

	want := []int{1, 1, 1, 1, 2}
	for i, z := range zones {
		if z.Zone != i+1 {
			t.Errorf("zones[%d].Zone = %d, want %d", i, z.Zone, i+1)
		}
		if z.Label != HRZoneLabels[i] {
			t.Errorf("zones[%d].Label = %q, want %q", i, z.Label, HRZoneLabels[i])
		}
		if z.Samples != want[i] {
			t.Errorf("zones[%d].Samples = %d, want %d", i, z.Samples, want[i])
		}
	}

	if zones[4].UpperBPM != 201 {
		t.Errorf("top edge = %v, want max+1 = 201", zones[4].UpperBPM)
	}
	if TotalZoneSamples(zones) != 6 {
		t.Errorf("TotalZoneSamples() = %d, want 6", TotalZoneSamples(zones))
	}
}

func TestHeartRateZones_EmptyZonesReported(t *testing.T) {
	samples := samplesWithHR([]*float64{floatPtr(150), floatPtr(150), floatPtr(150)})

	zones := HeartRateZones(samples)
	if len(zones) != 5 {
		t.Fatalf("len(zones) = %d, want all 5 zones", len(zones))
	}
	for i := 0; i < 4; i++ {
		if zones[i].Samples != 0 {
			t.Errorf("zones[%d].Samples = %d, want 0", i, zones[i].Samples)
		}
	}
	if zones[4].Samples != 3 {
		t.Errorf("zones[4].Samples = %d, want 3", zones[4].Samples)
	}
}

func TestHeartRateZones_NoHeartrate(t *testing.T) {
	tests := []struct {
		name    string
		samples []Sample
	}{
		{"no samples", nil},
		{"all missing", samplesWithHR([]*float64{nil, nil, nil})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if zones := HeartRateZones(tt.samples); zones != nil {
				t.Errorf("Expected absent distribution, got %v", zones)
			}
		})
	}
}

func TestHeartRateZones_EverySampleInOneZone(t *testing.T) {
	var hr []*float64
	for v := 60.0; v <= 190; v += 0.5 {
		hr = append(hr, floatPtr(v))
	}
	samples := samplesWithHR(hr)

	zones := HeartRateZones(samples)
	if TotalZoneSamples(zones) != len(hr) {
		t.Errorf("TotalZoneSamples() = %d, want %d", TotalZoneSamples(zones), len(hr))
	}
}
