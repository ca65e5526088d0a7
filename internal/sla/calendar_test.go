package sla

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/josoro11/FOXITE-V2/internal/domain"
)

func weekdayHours() *domain.BusinessHours {
	return &domain.BusinessHours{
		Timezone:  "UTC",
		WorkDays:  []int{1, 2, 3, 4, 5},
		StartTime: "09:00",
		EndTime:   "17:00",
	}
}

func TestAdvanceNoHours(t *testing.T) {
	start := time.Date(2025, 1, 11, 3, 17, 42, 0, time.UTC) // Saturday, deep in the night

	for _, minutes := range []int{0, 1, 30, 60, 480, 10080} {
		got, err := Advance(start, minutes, nil)
		require.NoError(t, err)
		assert.Equal(t, start.Add(time.Duration(minutes)*time.Minute), got)
	}
}

func TestAdvanceZeroMinutesIsNoOp(t *testing.T) {
	// Zero-cost operations never snap forward, even outside the window.
	start := time.Date(2025, 1, 11, 12, 0, 0, 0, time.UTC) // Saturday noon
	got, err := Advance(start, 0, weekdayHours())
	require.NoError(t, err)
	assert.Equal(t, start, got)
}

func TestAdvanceBusinessWalk(t *testing.T) {
	tests := []struct {
		name    string
		start   time.Time
		minutes int
		want    time.Time
	}{
		{
			name:    "inside window, same day",
			start:   time.Date(2025, 1, 6, 10, 0, 0, 0, time.UTC), // Monday 10:00
			minutes: 90,
			want:    time.Date(2025, 1, 6, 11, 30, 0, 0, time.UTC),
		},
		{
			name:    "friday afternoon rolls to monday open",
			start:   time.Date(2025, 1, 10, 16, 30, 0, 0, time.UTC), // Friday 16:30
			minutes: 60,
			want:    time.Date(2025, 1, 13, 9, 30, 0, 0, time.UTC), // Monday 09:30
		},
		{
			name:    "full eight hour day lands same clock next day",
			start:   time.Date(2025, 1, 8, 10, 0, 0, 0, time.UTC), // Wednesday 10:00
			minutes: 480,
			want:    time.Date(2025, 1, 9, 10, 0, 0, 0, time.UTC), // Thursday 10:00
		},
		{
			name:    "before window snaps to window open",
			start:   time.Date(2025, 1, 6, 7, 0, 0, 0, time.UTC), // Monday 07:00
			minutes: 30,
			want:    time.Date(2025, 1, 6, 9, 30, 0, 0, time.UTC),
		},
		{
			name:    "weekend start skips to monday",
			start:   time.Date(2025, 1, 11, 12, 0, 0, 0, time.UTC), // Saturday
			minutes: 60,
			want:    time.Date(2025, 1, 13, 10, 0, 0, 0, time.UTC),
		},
		{
			name:    "after window end skips to next day",
			start:   time.Date(2025, 1, 6, 18, 0, 0, 0, time.UTC), // Monday 18:00
			minutes: 15,
			want:    time.Date(2025, 1, 7, 9, 15, 0, 0, time.UTC),
		},
		{
			name:    "consumption ending exactly at window close",
			start:   time.Date(2025, 1, 6, 9, 0, 0, 0, time.UTC), // Monday 09:00
			minutes: 480,
			want:    time.Date(2025, 1, 6, 17, 0, 0, 0, time.UTC),
		},
		{
			name:    "budget spanning multiple days",
			start:   time.Date(2025, 1, 6, 13, 0, 0, 0, time.UTC), // Monday 13:00
			minutes: 3 * 480,                                      // three full days
			want:    time.Date(2025, 1, 9, 13, 0, 0, 0, time.UTC), // Thursday 13:00
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Advance(tt.start, tt.minutes, weekdayHours())
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAdvanceLandsInsideWindow(t *testing.T) {
	hours := weekdayHours()
	start := time.Date(2025, 1, 4, 22, 45, 0, 0, time.UTC) // Saturday night

	for _, minutes := range []int{1, 17, 59, 240, 481, 2000} {
		got, err := Advance(start, minutes, hours)
		require.NoError(t, err)

		day := isoWeekday(got)
		assert.Contains(t, []int{1, 2, 3, 4, 5}, day, "landed on %v", got)

		minuteOfDay := got.Hour()*60 + got.Minute()
		assert.GreaterOrEqual(t, minuteOfDay, 9*60)
		assert.LessOrEqual(t, minuteOfDay, 17*60)
	}
}

func TestAdvanceSkipsHolidays(t *testing.T) {
	hours := weekdayHours()
	hours.Holidays = []string{"2025-01-13"} // the following Monday

	start := time.Date(2025, 1, 10, 16, 30, 0, 0, time.UTC) // Friday 16:30
	got, err := Advance(start, 60, hours)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 1, 14, 9, 30, 0, 0, time.UTC), got) // Tuesday
}

func TestAdvanceHonorsTimezone(t *testing.T) {
	hours := &domain.BusinessHours{
		Timezone:  "America/New_York",
		WorkDays:  []int{1, 2, 3, 4, 5},
		StartTime: "09:00",
		EndTime:   "17:00",
	}

	// Monday 13:00 UTC is 08:00 in New York during EST: snap to 09:00 local
	// (14:00 UTC) and consume one hour.
	start := time.Date(2025, 1, 6, 13, 0, 0, 0, time.UTC)
	got, err := Advance(start, 60, hours)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 1, 6, 15, 0, 0, 0, time.UTC), got)
	assert.Equal(t, time.UTC, got.Location())
}

func TestAdvanceConfigurationErrors(t *testing.T) {
	tests := []struct {
		name  string
		hours *domain.BusinessHours
	}{
		{
			name: "empty work days never satisfiable",
			hours: &domain.BusinessHours{
				Timezone:  "UTC",
				WorkDays:  []int{},
				StartTime: "09:00",
				EndTime:   "17:00",
			},
		},
		{
			name: "unknown timezone",
			hours: &domain.BusinessHours{
				Timezone:  "Mars/Olympus_Mons",
				WorkDays:  []int{1},
				StartTime: "09:00",
				EndTime:   "17:00",
			},
		},
		{
			name: "window start not before end",
			hours: &domain.BusinessHours{
				Timezone:  "UTC",
				WorkDays:  []int{1},
				StartTime: "17:00",
				EndTime:   "09:00",
			},
		},
		{
			name: "unparseable clock value",
			hours: &domain.BusinessHours{
				Timezone:  "UTC",
				WorkDays:  []int{1},
				StartTime: "9am",
				EndTime:   "17:00",
			},
		},
	}

	start := time.Date(2025, 1, 6, 10, 0, 0, 0, time.UTC)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Advance(start, 60, tt.hours)
			var cfgErr *ConfigurationError
			require.ErrorAs(t, err, &cfgErr)
		})
	}
}

func TestAdvanceRejectsNegativeBudget(t *testing.T) {
	_, err := Advance(time.Now(), -1, nil)
	var cfgErr *ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
}
