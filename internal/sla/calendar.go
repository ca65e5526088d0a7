// Package sla implements business-hours aware due-date calculation and
// breach evaluation for ticket SLAs. Everything in this package is a pure
// function over fully-materialized inputs: no I/O, no clocks, no stores.
package sla

import (
	"fmt"
	"time"

	"github.com/josoro11/FOXITE-V2/internal/domain"
)

// searchHorizonDays bounds the forward walk so an unsatisfiable calendar
// (e.g. empty work-day set) fails instead of looping forever.
const searchHorizonDays = 3650

// ConfigurationError signals that an organization's business-hours record
// cannot be used for calculation. Not a transient fault; the caller should
// surface it as a tenant configuration problem.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "business hours configuration invalid: " + e.Reason
}

// Advance moves start forward by the given number of business minutes.
//
// With hours == nil there is no business-hour restriction and the result is
// exactly start + minutes. With minutes == 0 start is returned unchanged,
// even when it falls outside the working window. Otherwise the walk runs in
// the configured timezone: non-working weekdays and holidays are skipped,
// a start before the window snaps to window open, and budget is consumed
// day by day until exhausted. The result is converted back to start's
// original location.
func Advance(start time.Time, minutes int, hours *domain.BusinessHours) (time.Time, error) {
	if minutes < 0 {
		return time.Time{}, &ConfigurationError{Reason: fmt.Sprintf("negative minute budget %d", minutes)}
	}
	if hours == nil {
		return start.Add(time.Duration(minutes) * time.Minute), nil
	}
	if minutes == 0 {
		return start, nil
	}

	loc, err := time.LoadLocation(hours.Timezone)
	if err != nil {
		return time.Time{}, &ConfigurationError{Reason: fmt.Sprintf("unknown timezone %q", hours.Timezone)}
	}
	windowStart, err := parseClock(hours.StartTime)
	if err != nil {
		return time.Time{}, &ConfigurationError{Reason: fmt.Sprintf("bad start_time %q", hours.StartTime)}
	}
	windowEnd, err := parseClock(hours.EndTime)
	if err != nil {
		return time.Time{}, &ConfigurationError{Reason: fmt.Sprintf("bad end_time %q", hours.EndTime)}
	}
	if windowStart >= windowEnd {
		return time.Time{}, &ConfigurationError{Reason: fmt.Sprintf("start_time %s not before end_time %s", hours.StartTime, hours.EndTime)}
	}

	workDays := make(map[int]bool, len(hours.WorkDays))
	for _, d := range hours.WorkDays {
		if d >= 1 && d <= 7 {
			workDays[d] = true
		}
	}
	holidays := make(map[string]bool, len(hours.Holidays))
	for _, h := range hours.Holidays {
		holidays[h] = true
	}

	cur := start.In(loc).Truncate(time.Minute)
	remaining := minutes

	for day := 0; day < searchHorizonDays; day++ {
		if !workDays[isoWeekday(cur)] || holidays[cur.Format("2006-01-02")] {
			cur = nextWindowStart(cur, loc, windowStart)
			continue
		}
		minuteOfDay := cur.Hour()*60 + cur.Minute()
		if minuteOfDay < windowStart {
			cur = clockOnDay(cur, loc, windowStart)
			minuteOfDay = windowStart
		}
		if minuteOfDay >= windowEnd {
			cur = nextWindowStart(cur, loc, windowStart)
			continue
		}
		available := windowEnd - minuteOfDay
		if available >= remaining {
			return cur.Add(time.Duration(remaining) * time.Minute).In(start.Location()), nil
		}
		remaining -= available
		cur = nextWindowStart(cur, loc, windowStart)
	}

	return time.Time{}, &ConfigurationError{Reason: fmt.Sprintf("no working day found within %d days", searchHorizonDays)}
}

// isoWeekday maps time.Weekday (Sunday=0) to ISO numbering (Monday=1..Sunday=7).
func isoWeekday(t time.Time) int {
	return (int(t.Weekday())+6)%7 + 1
}

func parseClock(s string) (int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, err
	}
	return t.Hour()*60 + t.Minute(), nil
}

func clockOnDay(t time.Time, loc *time.Location, minuteOfDay int) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), minuteOfDay/60, minuteOfDay%60, 0, 0, loc)
}

func nextWindowStart(t time.Time, loc *time.Location, windowStart int) time.Time {
	next := t.AddDate(0, 0, 1)
	return clockOnDay(next, loc, windowStart)
}
