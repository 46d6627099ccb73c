package parser

import (
	"strings"
	"time"

	"github.com/markusmobius/go-dateparser"
)

// dayLayouts are tried before natural language parsing.
var dayLayouts = []string{"2006-01-02", "20060102", "2006/01/02"}

// ParseDay resolves a day argument relative to now and returns local
// midnight of that day. An empty input means today. Besides ISO dates it
// accepts natural language such as "yesterday", "last friday" or
// "3 days ago".
func ParseDay(input string, now time.Time) (time.Time, error) {
	input = strings.TrimSpace(input)
	switch strings.ToLower(input) {
	case "", "today", "now":
		return midnight(now), nil
	case "yesterday":
		return midnight(now).AddDate(0, 0, -1), nil
	}

	for _, layout := range dayLayouts {
		if t, err := time.ParseInLocation(layout, input, now.Location()); err == nil {
			return t, nil
		}
	}

	cfg := &dateparser.Configuration{
		CurrentTime:     now,
		DefaultTimezone: now.Location(),
	}
	result, err := dateparser.Parse(cfg, input)
	if err != nil || result.Time.IsZero() {
		return time.Time{}, NewDayError(input)
	}
	return midnight(result.Time.In(now.Location())), nil
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
