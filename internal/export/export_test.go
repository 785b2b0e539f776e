package export

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/reader"

	"runanalyzer/internal/analysis"
	"runanalyzer/internal/service"
)

func testReport(t *testing.T) *service.Report {
	t.Helper()
	bundle := analysis.StreamBundle{
		analysis.StreamTime:      analysis.NewStream([]float64{0, 1, 2, 3, 4, 5}),
		analysis.StreamDistance:  analysis.NewStream([]float64{0, 3, 6, 9, 10, 11}),
		analysis.StreamVelocity:  analysis.NewStream([]float64{3, 3, 3, 1, 1, 3}),
		analysis.StreamHeartrate: &analysis.Stream{Data: []any{140.0, 150.0, nil, 160.0, 170.0, 180.0}},
	}
	return &service.Report{
		RunID:      "run-1",
		Source:     "strava",
		Activity:   &service.ActivitySummary{ID: 7, Name: "Lunch Run", DistanceKm: 5},
		AnalyzedAt: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
		Result:     analysis.Analyze(bundle),
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"json", FormatJSON, false},
		{"YAML", FormatYAML, false},
		{"yml", FormatYAML, false},
		{"csv", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseFormat(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestWriteReport_JSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteReport(&buf, testReport(t), FormatJSON, false); err != nil {
		t.Fatalf("WriteReport() error = %v", err)
	}

	var doc map[string]any
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if _, ok := doc["samples"]; ok {
		t.Error("samples exported without being requested")
	}
	insights, ok := doc["insights"].(map[string]any)
	if !ok {
		t.Fatalf("insights = %T", doc["insights"])
	}
	if insights["walk_count"] != float64(1) {
		t.Errorf("walk_count = %v, want 1", insights["walk_count"])
	}
	segments, ok := doc["segments"].([]any)
	if !ok || len(segments) != 3 {
		t.Fatalf("segments = %v, want 3", doc["segments"])
	}
	if first := segments[0].(map[string]any); first["type"] != "Run" {
		t.Errorf("segments[0].type = %v, want Run", first["type"])
	}
}

func TestWriteReport_JSONWithSamples(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteReport(&buf, testReport(t), FormatJSON, true); err != nil {
		t.Fatalf("WriteReport() error = %v", err)
	}

	var doc struct {
		Samples []analysis.Sample `json:"samples"`
	}
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatal(err)
	}
	if len(doc.Samples) != 6 {
		t.Fatalf("len(samples) = %d, want 6", len(doc.Samples))
	}
	if doc.Samples[2].Heartrate != nil {
		t.Errorf("samples[2].heartrate = %v, want null", *doc.Samples[2].Heartrate)
	}
}

func TestWriteReport_YAML(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteReport(&buf, testReport(t), FormatYAML, false); err != nil {
		t.Fatalf("WriteReport() error = %v", err)
	}
	out := buf.String()
	for _, want := range []string{"run_id: run-1", "walk_count: 1", "name: Lunch Run", "type: Walk"} {
		if !strings.Contains(out, want) {
			t.Errorf("yaml missing %q:\n%s", want, out)
		}
	}
}

func TestWriteReport_NoData(t *testing.T) {
	report := &service.Report{RunID: "r", Source: "x.fit", Result: analysis.Analyze(nil)}

	var buf bytes.Buffer
	if err := WriteReport(&buf, report, FormatJSON, false); err != nil {
		t.Fatalf("WriteReport() error = %v", err)
	}
	if !strings.Contains(buf.String(), `"insights": {
    "error": "No stream data available for analysis."
  }`) {
		t.Errorf("output = %s", buf.String())
	}
}

func TestWriteSamplesParquet(t *testing.T) {
	report := testReport(t)
	path := filepath.Join(t.TempDir(), "samples.parquet")

	if err := WriteSamplesParquet(path, report.Result.Samples); err != nil {
		t.Fatalf("WriteSamplesParquet() error = %v", err)
	}

	fr, err := local.NewLocalFileReader(path)
	if err != nil {
		t.Fatalf("open parquet: %v", err)
	}
	defer fr.Close()

	pr, err := reader.NewParquetReader(fr, new(sampleRow), 1)
	if err != nil {
		t.Fatalf("new parquet reader: %v", err)
	}
	defer pr.ReadStop()

	n := int(pr.GetNumRows())
	if n != 6 {
		t.Fatalf("rows = %d, want 6", n)
	}
	rows := make([]sampleRow, n)
	if err := pr.Read(&rows); err != nil {
		t.Fatalf("read rows: %v", err)
	}

	if rows[1].TimeS != 1 || rows[1].SpeedMPS == nil || *rows[1].SpeedMPS != 3 {
		t.Errorf("rows[1] = %+v", rows[1])
	}
	if rows[2].HRBPM != nil {
		t.Errorf("rows[2].HRBPM = %v, want null", *rows[2].HRBPM)
	}
	if !rows[3].IsWalking || rows[0].IsWalking {
		t.Errorf("walk flags = %v,%v, want false,true", rows[0].IsWalking, rows[3].IsWalking)
	}
}
