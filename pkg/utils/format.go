// Package utils provides formatting and symbol helpers for Indian market data.
package utils

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FormatINR formats an amount in Indian Rupee notation (₹12,34,567.89).
// Digits are grouped as the last three, then pairs.
func FormatINR(amount float64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	paise := int64(math.Round(amount * 100))
	return fmt.Sprintf("%s₹%s.%02d", sign, groupIndian(paise/100), paise%100)
}

// FormatINRCompact formats an amount using lakh/crore units, e.g. "₹19.27 L", "₹1,250 Cr".
func FormatINRCompact(amount float64) string {
	prefix := "₹"
	if amount < 0 {
		prefix = "-₹"
		amount = -amount
	}

	switch {
	case amount >= 1e12:
		return prefix + trimDecimals(amount/1e12) + " L Cr"
	case amount >= 1e7:
		return prefix + trimDecimals(amount/1e7) + " Cr"
	case amount >= 1e5:
		return prefix + trimDecimals(amount/1e5) + " L"
	default:
		return fmt.Sprintf("%s%.2f", prefix, amount)
	}
}

// FormatPct formats a percentage with an explicit sign, e.g. "+2.45%".
func FormatPct(pct float64) string {
	if pct >= 0 {
		return fmt.Sprintf("+%.2f%%", pct)
	}
	return fmt.Sprintf("%.2f%%", pct)
}

// Round rounds v to the given number of decimal places.
func Round(v float64, places int) float64 {
	mult := math.Pow(10, float64(places))
	r := math.Round(v*mult) / mult
	if r == 0 {
		return 0 // drop negative zero
	}
	return r
}

// groupIndian formats a non-negative integer with Indian digit grouping.
func groupIndian(n int64) string {
	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}

	head, tail := s[:len(s)-3], s[len(s)-3:]
	var groups []string
	for len(head) > 2 {
		groups = append([]string{head[len(head)-2:]}, groups...)
		head = head[:len(head)-2]
	}
	if head != "" {
		groups = append([]string{head}, groups...)
	}
	return strings.Join(append(groups, tail), ",")
}

// trimDecimals formats with at most two decimals and no trailing zeros.
func trimDecimals(n float64) string {
	s := strconv.FormatFloat(n, 'f', 2, 64)
	s = strings.TrimRight(s, "0")
	return strings.TrimRight(s, ".")
}
