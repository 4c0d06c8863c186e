package utils

import (
	"time"
)

// IST is the Indian Standard Time location (UTC+5:30).
var IST *time.Location

func init() {
	var err error
	IST, err = time.LoadLocation("Asia/Kolkata")
	if err != nil {
		// tz database missing
		IST = time.FixedZone("IST", 5*60*60+30*60)
	}
}

// Date layouts used across Indian market data.
const (
	DateLayout     = "2006-01-02"
	AMFIDateLayout = "02-01-2006"
	AMFIListLayout = "02-Jan-2006"
)

// NowIST returns the current time in IST.
func NowIST() time.Time {
	return time.Now().In(IST)
}

// DayIST truncates t to midnight of its calendar day in IST.
func DayIST(t time.Time) time.Time {
	t = t.In(IST)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, IST)
}

// ParseDateIST parses a "2006-01-02" date string in IST.
func ParseDateIST(dateStr string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, dateStr, IST)
}

// ParseAMFIDate parses a day-month-year ("02-01-2006") date string in IST.
func ParseAMFIDate(dateStr string) (time.Time, error) {
	return time.ParseInLocation(AMFIDateLayout, dateStr, IST)
}

// FormatDateIST formats a time.Time to "2006-01-02" in IST.
func FormatDateIST(t time.Time) string {
	return t.In(IST).Format(DateLayout)
}

// FormatDateTimeIST formats a time.Time to "2006-01-02 15:04:05 IST".
func FormatDateTimeIST(t time.Time) string {
	return t.In(IST).Format("2006-01-02 15:04:05 IST")
}

// YearsAgo returns the instant n years before t.
func YearsAgo(t time.Time, n int) time.Time {
	return t.AddDate(-n, 0, 0)
}

// MarketStatus returns the NSE cash market session for the given time.
// Exchange holidays are not tracked.
func MarketStatus(now time.Time) string {
	now = now.In(IST)
	if now.Weekday() == time.Saturday || now.Weekday() == time.Sunday {
		return "CLOSED (Weekend)"
	}

	y, m, d := now.Date()
	preOpen := time.Date(y, m, d, 9, 0, 0, 0, IST)
	open := time.Date(y, m, d, 9, 15, 0, 0, IST)
	close := time.Date(y, m, d, 15, 30, 0, 0, IST)

	switch {
	case now.Before(preOpen):
		return "PRE-MARKET"
	case now.Before(open):
		return "PRE-OPEN SESSION"
	case !now.After(close):
		return "OPEN"
	default:
		return "CLOSED"
	}
}
