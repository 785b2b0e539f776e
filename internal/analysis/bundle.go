package analysis

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Stream names recognised in a StreamBundle
const (
	StreamTime      = "time"
	StreamDistance  = "distance"
	StreamVelocity  = "velocity_smooth"
	StreamHeartrate = "heartrate"
)

// Stream is a single named series as returned by the activity provider.
// Data holds raw decoded JSON values so that non-numeric entries can be
// coerced to missing instead of failing the decode.
type Stream struct {
	Data         []any  `json:"data" yaml:"data"`
	SeriesType   string `json:"series_type,omitempty" yaml:"series_type,omitempty"`
	OriginalSize int    `json:"original_size,omitempty" yaml:"original_size,omitempty"`
	Resolution   string `json:"resolution,omitempty" yaml:"resolution,omitempty"`
}

// StreamBundle maps a stream name to its data
type StreamBundle map[string]*Stream

// NewStream builds a stream from plain values
func NewStream(values []float64) *Stream {
	data := make([]any, len(values))
	for i, v := range values {
		data[i] = v
	}
	return &Stream{Data: data}
}

// NewOptionalStream builds a stream where nil entries are missing readings
func NewOptionalStream(values []*float64) *Stream {
	data := make([]any, len(values))
	for i, v := range values {
		if v != nil {
			data[i] = *v
		}
	}
	return &Stream{Data: data}
}

// Data returns the raw values of the named stream, or nil if absent
func (b StreamBundle) Data(name string) []any {
	if b == nil {
		return nil
	}
	s, ok := b[name]
	if !ok || s == nil {
		return nil
	}
	return s.Data
}

// Has reports whether the named stream is present with at least one value
func (b StreamBundle) Has(name string) bool {
	return len(b.Data(name)) > 0
}

// Len returns the length of the time stream, which is authoritative
func (b StreamBundle) Len() int {
	return len(b.Data(StreamTime))
}

// toFloat coerces a decoded value to a number. Anything that is not
// a finite number (or a numeric string) becomes missing.
func toFloat(v any) *float64 {
	var f float64
	switch n := v.(type) {
	case nil:
		return nil
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int32:
		f = float64(n)
	case int64:
		f = float64(n)
	case uint8:
		f = float64(n)
	case uint16:
		f = float64(n)
	case uint32:
		f = float64(n)
	case *float64:
		if n == nil {
			return nil
		}
		f = *n
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return nil
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return nil
		}
		f = parsed
	default:
		return nil
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}
