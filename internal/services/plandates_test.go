package services

import (
	"testing"
	"time"
)

func TestMaterializeDates(t *testing.T) {
	ref := func(y int, m time.Month, d int) time.Time {
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	}

	tests := []struct {
		name       string
		startMonth time.Month
		endMonth   time.Month
		ref        time.Time
		wantStart  time.Time
		wantEnd    time.Time
	}{
		{
			name:       "window within the year",
			startMonth: time.April,
			endMonth:   time.September,
			ref:        ref(2024, time.June, 1),
			wantStart:  ref(2024, time.April, 1),
			wantEnd:    ref(2024, time.September, 30),
		},
		{
			name:       "window wrapping past december",
			startMonth: time.October,
			endMonth:   time.March,
			ref:        ref(2024, time.January, 1),
			wantStart:  ref(2024, time.October, 1),
			wantEnd:    ref(2025, time.March, 31),
		},
		{
			name:       "same start and end month spans a full year",
			startMonth: time.April,
			endMonth:   time.April,
			ref:        ref(2024, time.July, 15),
			wantStart:  ref(2024, time.April, 1),
			wantEnd:    ref(2025, time.April, 30),
		},
		{
			name:       "february end in a leap year",
			startMonth: time.January,
			endMonth:   time.February,
			ref:        ref(2024, time.January, 10),
			wantStart:  ref(2024, time.January, 1),
			wantEnd:    ref(2024, time.February, 29),
		},
		{
			name:       "february end after wrap into non leap year",
			startMonth: time.June,
			endMonth:   time.February,
			ref:        ref(2024, time.August, 1),
			wantStart:  ref(2024, time.June, 1),
			wantEnd:    ref(2025, time.February, 28),
		},
		{
			name:       "december end does not wrap",
			startMonth: time.January,
			endMonth:   time.December,
			ref:        ref(2023, time.March, 3),
			wantStart:  ref(2023, time.January, 1),
			wantEnd:    ref(2023, time.December, 31),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := MaterializeDates(tt.startMonth, tt.endMonth, tt.ref)
			if !start.Equal(tt.wantStart) {
				t.Errorf("start = %s; want %s", start.Format("2006-01-02"), tt.wantStart.Format("2006-01-02"))
			}
			if !end.Equal(tt.wantEnd) {
				t.Errorf("end = %s; want %s", end.Format("2006-01-02"), tt.wantEnd.Format("2006-01-02"))
			}
		})
	}
}

func TestFormatLegacyDate(t *testing.T) {
	got := FormatLegacyDate(time.Date(2024, time.September, 30, 0, 0, 0, 0, time.UTC))
	if got != "30/09/2024" {
		t.Errorf("FormatLegacyDate() = %q; want %q", got, "30/09/2024")
	}
}
