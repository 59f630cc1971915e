package clock

import "time"

// GameDay returns the calendar date (midnight, in loc) that counts as "today" for the
// daily game. From cutoffHour onwards the next day's target is already live.
func GameDay(now time.Time, loc *time.Location, cutoffHour int) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	local := now.In(loc)
	day := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	if cutoffHour > 0 && cutoffHour < 24 && local.Hour() >= cutoffHour {
		day = day.AddDate(0, 0, 1)
	}
	return day
}

// LocalDayBounds returns [start, end) of the local calendar day containing now.
func LocalDayBounds(now time.Time, loc *time.Location) (time.Time, time.Time) {
	if loc == nil {
		loc = time.UTC
	}
	local := now.In(loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 0, 1)
}

// DateKey formats a day the way DATE columns are queried.
func DateKey(day time.Time) string {
	return day.Format(time.DateOnly)
}
