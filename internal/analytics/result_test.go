package analytics

import (
	"encoding/json"
	"math"
	"testing"
)

func TestMetricResultZeroValueIsUnavailable(t *testing.T) {
	var m MetricResult
	if m.Available() {
		t.Error("zero MetricResult should be unavailable")
	}
	if m.String() != InsufficientData {
		t.Errorf("String() = %q, want %q", m.String(), InsufficientData)
	}
}

func TestComputedZeroIsDistinctFromUnavailable(t *testing.T) {
	zero := Computed(0)
	v, ok := zero.Float64()
	if !ok || v != 0 {
		t.Errorf("Computed(0).Float64() = %v, %v; want 0, true", v, ok)
	}
	if zero == Unavailable() {
		t.Error("Computed(0) must not equal Unavailable()")
	}
}

func TestComputedRejectsNonFinite(t *testing.T) {
	for _, v := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		if Computed(v).Available() {
			t.Errorf("Computed(%v) should be unavailable", v)
		}
	}
}

func TestMetricResultJSON(t *testing.T) {
	type slot struct {
		A MetricResult `json:"a"`
		B MetricResult `json:"b"`
	}

	data, err := json.Marshal(slot{A: Computed(-12.5), B: Unavailable()})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	want := `{"a":-12.5,"b":"Insufficient data"}`
	if string(data) != want {
		t.Errorf("Marshal = %s, want %s", data, want)
	}

	var decoded slot
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if v, ok := decoded.A.Float64(); !ok || v != -12.5 {
		t.Errorf("decoded A = %v, %v", v, ok)
	}
	if decoded.B.Available() {
		t.Error("decoded B should be unavailable")
	}

	if err := json.Unmarshal([]byte(`{"a":"N/A"}`), &decoded); err == nil {
		t.Error("Unmarshal should reject unknown marker strings")
	}
}
