package utils

import "testing"

func TestNormalizeTicker(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"RELIANCE", "RELIANCE"},
		{"reliance", "RELIANCE"},
		{" reliance ", "RELIANCE"},
		{"RIL", "RELIANCE"},
		{"$TCS", "TCS"},
		{"INFOSYS", "INFY"},
		{"hul", "HINDUNILVR"},
		{"tcs.ns", "TCS.NS"},
		{"UNKNOWNSTOCK", "UNKNOWNSTOCK"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := NormalizeTicker(tt.input); got != tt.expected {
				t.Errorf("NormalizeTicker(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestToYFinanceTicker(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"RELIANCE", "RELIANCE.NS"},
		{"RIL", "RELIANCE.NS"},
		{"NIFTY", "^NSEI"},
		{"banknifty", "^NSEBANK"},
		{"SENSEX", "^BSESN"},
		{"TCS.NS", "TCS.NS"},
		{"500325.BO", "500325.BO"},
		{"^CRSLDX", "^CRSLDX"},
		{"UNKNOWN", "UNKNOWN.NS"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ToYFinanceTicker(tt.input); got != tt.expected {
				t.Errorf("ToYFinanceTicker(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestFromYFinanceTicker(t *testing.T) {
	tests := map[string]string{
		"RELIANCE.NS": "RELIANCE",
		"RELIANCE.BO": "RELIANCE",
		"RELIANCE":    "RELIANCE",
	}
	for in, want := range tests {
		if got := FromYFinanceTicker(in); got != want {
			t.Errorf("FromYFinanceTicker(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestIsIndex(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"NIFTY", true},
		{"nifty 50", true},
		{"^NSEI", true},
		{"RELIANCE", false},
		{"TCS.NS", false},
	}
	for _, tt := range tests {
		if got := IsIndex(tt.input); got != tt.want {
			t.Errorf("IsIndex(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestExchange(t *testing.T) {
	tests := map[string]string{
		"TCS.NS":    "NSE",
		"500325.BO": "BSE",
		"^NSEI":     "INDEX",
	}
	for in, want := range tests {
		if got := Exchange(in); got != want {
			t.Errorf("Exchange(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestIsValidTicker(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"RELIANCE", true},
		{"M&M", true},
		{"BAJAJ-AUTO.NS", true},
		{"", false},
		{"   ", false},
		{"DROP TABLE", false},
		{"a/b", false},
	}
	for _, tt := range tests {
		if got := IsValidTicker(tt.input); got != tt.want {
			t.Errorf("IsValidTicker(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestIsSchemeCode(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"119551", true},
		{" 120503 ", true},
		{"", false},
		{"12a45", false},
		{"-1", false},
	}
	for _, tt := range tests {
		if got := IsSchemeCode(tt.input); got != tt.want {
			t.Errorf("IsSchemeCode(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}
