// Package export writes analysis reports and samples to files.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"runanalyzer/internal/analysis"
	"runanalyzer/internal/service"
)

// Format is a report encoding
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat accepts json, yaml or yml in any case
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unsupported format %q (expected json|yaml)", s)
}

// Document is the exported shape of a report. Samples are included only on request.
type Document struct {
	RunID      string                   `json:"run_id" yaml:"run_id"`
	Source     string                   `json:"source" yaml:"source"`
	Activity   *service.ActivitySummary `json:"activity,omitempty" yaml:"activity,omitempty"`
	AnalyzedAt time.Time                `json:"analyzed_at" yaml:"analyzed_at"`
	Insights   analysis.Insights        `json:"insights" yaml:"insights"`
	Segments   []analysis.Segment       `json:"segments" yaml:"segments"`
	Effort     analysis.Effort          `json:"effort" yaml:"effort"`
	Samples    []analysis.Sample        `json:"samples,omitempty" yaml:"samples,omitempty"`
}

// NewDocument flattens a report for export
func NewDocument(r *service.Report, includeSamples bool) Document {
	doc := Document{
		RunID:      r.RunID,
		Source:     r.Source,
		Activity:   r.Activity,
		AnalyzedAt: r.AnalyzedAt,
		Insights:   r.Result.Insights,
		Segments:   r.Result.Segments,
		Effort:     r.Result.Effort,
	}
	if doc.Segments == nil {
		doc.Segments = []analysis.Segment{}
	}
	if includeSamples {
		doc.Samples = r.Result.Samples
	}
	return doc
}

// WriteReport encodes the report to w
func WriteReport(w io.Writer, r *service.Report, format Format, includeSamples bool) error {
	doc := NewDocument(r, includeSamples)

	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("encoding report as json: %w", err)
		}
		return nil
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("encoding report as yaml: %w", err)
		}
		return enc.Close()
	}
	return fmt.Errorf("unsupported format %q", format)
}
