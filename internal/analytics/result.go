package analytics

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// InsufficientData is the wire marker for a metric that could not be computed.
const InsufficientData = "Insufficient data"

// MetricResult is either a computed value or the insufficient-data marker.
// The zero value is unavailable, so an unset metric never reads as 0.
type MetricResult struct {
	value float64
	ok    bool
}

// Computed wraps v as an available result. Non-finite values become Unavailable.
func Computed(v float64) MetricResult {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return MetricResult{}
	}
	return MetricResult{value: v, ok: true}
}

// Unavailable returns the insufficient-data marker.
func Unavailable() MetricResult { return MetricResult{} }

// Float64 returns the value and whether it is available.
func (m MetricResult) Float64() (float64, bool) { return m.value, m.ok }

// Available reports whether the metric was computed.
func (m MetricResult) Available() bool { return m.ok }

func (m MetricResult) String() string {
	if !m.ok {
		return InsufficientData
	}
	return strconv.FormatFloat(m.value, 'f', 2, 64)
}

// MarshalJSON encodes a number, or the marker string when unavailable.
func (m MetricResult) MarshalJSON() ([]byte, error) {
	if !m.ok {
		return json.Marshal(InsufficientData)
	}
	return json.Marshal(m.value)
}

// UnmarshalJSON accepts a number, the marker string, or null.
func (m *MetricResult) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*m = Unavailable()
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s != InsufficientData {
			return fmt.Errorf("analytics: unexpected metric marker %q", s)
		}
		*m = Unavailable()
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*m = Computed(v)
	return nil
}
