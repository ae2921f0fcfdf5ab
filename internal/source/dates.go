package source

import (
	"fmt"
	"strings"
	"time"
)

var dateLayouts = []string{
	"02-Jan-06",
	"2-Jan-06",
	"2006-01-02",
	time.RFC3339,
	"01/02/2006",
}

// ParseDate reads the date formats seen in scraped files. The result is a UTC calendar date.
func ParseDate(raw string) (time.Time, error) {
	value := strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		parsed, err := time.Parse(layout, value)
		if err == nil {
			y, m, d := parsed.Date()
			return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", raw)
}
