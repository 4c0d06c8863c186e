package utils

import (
	"testing"
	"time"
)

func TestNowIST(t *testing.T) {
	now := NowIST()
	if now.Location() != IST {
		t.Errorf("NowIST() location = %v, want IST", now.Location())
	}
}

func TestDayIST(t *testing.T) {
	// 20:00 UTC is 01:30 the next day in IST.
	in := time.Date(2025, 3, 14, 20, 0, 0, 0, time.UTC)
	got := DayIST(in)
	if got.Day() != 15 || got.Hour() != 0 || got.Minute() != 0 {
		t.Errorf("DayIST(%v) = %v, want 2025-03-15 00:00 IST", in, got)
	}
}

func TestParseAMFIDate(t *testing.T) {
	got, err := ParseAMFIDate("05-02-2024")
	if err != nil {
		t.Fatalf("ParseAMFIDate error: %v", err)
	}
	if got.Year() != 2024 || got.Month() != time.February || got.Day() != 5 {
		t.Errorf("ParseAMFIDate = %v, want 2024-02-05", got)
	}
	if _, err := ParseAMFIDate("2024-02-05"); err == nil {
		t.Error("ParseAMFIDate should reject ISO dates")
	}
	if _, err := ParseAMFIDate("31-02-2024"); err == nil {
		t.Error("ParseAMFIDate should reject impossible dates")
	}
}

func TestParseFormatDateIST(t *testing.T) {
	d, err := ParseDateIST("2026-01-15")
	if err != nil {
		t.Fatalf("ParseDateIST error: %v", err)
	}
	if got := FormatDateIST(d); got != "2026-01-15" {
		t.Errorf("FormatDateIST = %q, want %q", got, "2026-01-15")
	}
}

func TestMarketStatus(t *testing.T) {
	tests := []struct {
		name string
		at   time.Time
		want string
	}{
		{"saturday", time.Date(2026, 1, 17, 11, 0, 0, 0, IST), "CLOSED (Weekend)"},
		{"early", time.Date(2026, 1, 19, 8, 0, 0, 0, IST), "PRE-MARKET"},
		{"pre-open", time.Date(2026, 1, 19, 9, 5, 0, 0, IST), "PRE-OPEN SESSION"},
		{"open", time.Date(2026, 1, 19, 11, 0, 0, 0, IST), "OPEN"},
		{"closed", time.Date(2026, 1, 19, 16, 0, 0, 0, IST), "CLOSED"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MarketStatus(tt.at); got != tt.want {
				t.Errorf("MarketStatus(%v) = %q, want %q", tt.at, got, tt.want)
			}
		})
	}
}
