package services

import (
	"time"
)

// MaterializeDates derives the absolute validity window for a plan's
// month-based window relative to a reference date. The start date is the
// first day of startMonth in the reference year; the end date is the last
// day of endMonth, rolling into the next year when endMonth <= startMonth
// (a window wrapping past December).
func MaterializeDates(startMonth, endMonth time.Month, ref time.Time) (time.Time, time.Time) {
	year := ref.Year()

	start := time.Date(year, startMonth, 1, 0, 0, 0, 0, ref.Location())

	endYear := year
	if endMonth <= startMonth {
		endYear++
	}
	// First day of the following month minus one day; time.Date
	// normalizes month 13 into January of the next year.
	end := time.Date(endYear, endMonth+1, 1, 0, 0, 0, 0, ref.Location()).AddDate(0, 0, -1)

	return start, end
}

// FormatLegacyDate renders a date in the DD/MM/YYYY display format used
// by the admin panel. Storage stays structured; this is presentation only.
func FormatLegacyDate(t time.Time) string {
	return t.Format("02/01/2006")
}
