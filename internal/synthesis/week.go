// Package synthesis aggregates a week of ratings and learnings into a report.
package synthesis

import (
	"time"

	"github.com/dotcommander/pai/internal/models"
)

const day = 24 * time.Hour

// WeekNumber returns the week of year containing t, counting weeks that start
// on Sunday with January 1 in week 1. Days are measured as elapsed time from
// local midnight on January 1, so a DST shift can move a timestamp just after
// midnight into the previous day.
func WeekNumber(t time.Time) int {
	jan1 := time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, t.Location())
	days := int(t.Sub(jan1) / day)
	return (days + int(jan1.Weekday()) + 1 + 6) / 7
}

// WeekDateRange returns the Sunday and Saturday bounding (year, week) in loc.
func WeekDateRange(year, week int, loc *time.Location) (start, end time.Time) {
	jan1 := time.Date(year, time.January, 1, 0, 0, 0, 0, loc)
	offset := (week-1)*7 - int(jan1.Weekday()) + 1
	start = time.Date(year, time.January, offset, 0, 0, 0, 0, loc)
	end = time.Date(year, time.January, offset+6, 0, 0, 0, 0, loc)
	return start, end
}

// formatDate renders the calendar date of t in its own zone.
func formatDate(t time.Time) string {
	return t.Format(models.DateLayout)
}
