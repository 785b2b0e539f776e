package export

import (
	"fmt"

	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"

	"runanalyzer/internal/analysis"
)

// sampleRow is one aligned sample. Readings that were missing stay null.
type sampleRow struct {
	Index     int64    `parquet:"name=index, type=INT64"`
	TimeS     float64  `parquet:"name=time_s, type=DOUBLE"`
	DistanceM *float64 `parquet:"name=distance_m, type=DOUBLE, repetitiontype=OPTIONAL"`
	SpeedMPS  *float64 `parquet:"name=velocity_mps, type=DOUBLE, repetitiontype=OPTIONAL"`
	HRBPM     *float64 `parquet:"name=heartrate_bpm, type=DOUBLE, repetitiontype=OPTIONAL"`
	PaceMinKm *float64 `parquet:"name=pace_min_km, type=DOUBLE, repetitiontype=OPTIONAL"`
	CumAvg    *float64 `parquet:"name=cumulative_avg_pace, type=DOUBLE, repetitiontype=OPTIONAL"`
	IsWalking bool     `parquet:"name=is_walking, type=BOOLEAN"`
}

// WriteSamplesParquet writes the aligned samples to a snappy-compressed parquet file
func WriteSamplesParquet(path string, samples []analysis.Sample) error {
	fw, err := local.NewLocalFileWriter(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	pw, err := writer.NewParquetWriter(fw, new(sampleRow), 4)
	if err != nil {
		_ = fw.Close()
		return fmt.Errorf("creating parquet writer: %w", err)
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY

	for i, s := range samples {
		row := sampleRow{
			Index:     int64(i),
			TimeS:     s.Time,
			DistanceM: s.Distance,
			SpeedMPS:  s.Velocity,
			HRBPM:     s.Heartrate,
			PaceMinKm: s.Pace,
			CumAvg:    s.CumAvg,
			IsWalking: s.IsWalking,
		}
		if err := pw.Write(row); err != nil {
			_ = pw.WriteStop()
			_ = fw.Close()
			return fmt.Errorf("writing sample %d: %w", i, err)
		}
	}
	if err := pw.WriteStop(); err != nil {
		_ = fw.Close()
		return fmt.Errorf("finishing parquet file: %w", err)
	}
	return fw.Close()
}
