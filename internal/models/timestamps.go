package models

import (
	"fmt"
	"strings"
	"time"
)

// Local timestamp layouts. Ratings use the ISO-like "T" form; documents use a space.
const (
	RatingTimestampLayout   = "2006-01-02T15:04:05"
	DocumentTimestampLayout = "2006-01-02 15:04:05"
	DateLayout              = "2006-01-02"
	MonthLayout             = "2006-01"
)

// ParseLocalTimestamp parses a stored timestamp in loc.
// Zone-qualified RFC 3339 values keep their own offset.
func ParseLocalTimestamp(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	for _, layout := range []string{RatingTimestampLayout, DocumentTimestampLayout, DateLayout} {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}
