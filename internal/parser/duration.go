package parser

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// durationPattern matches expressions like "5m", "90 seconds", "1h 30m", "2.5 minutes".
var durationPattern = regexp.MustCompile(`(?i)^(\d+(?:\.\d+)?)\s*(h|hr|hrs|hour|hours|m|min|mins|minute|minutes|s|sec|secs|second|seconds|ms|millis|milliseconds)\s*(?:(\d+(?:\.\d+)?)\s*(m|min|mins|minute|minutes|s|sec|secs|second|seconds))?$`)

// ParseInterval parses a capture interval. A bare integer is milliseconds,
// matching the stored configuration value. Anything else must carry a unit:
//   - "5m" or "5 minutes"
//   - "90s" or "90 seconds"
//   - "1h30m" or "1 hour 30 minutes"
//   - "2.5m"
func ParseInterval(input string) (time.Duration, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return 0, NewIntervalError(input)
	}

	if ms, err := strconv.ParseInt(input, 10, 64); err == nil {
		if ms <= 0 {
			return 0, NewIntervalError(input)
		}
		return time.Duration(ms) * time.Millisecond, nil
	}

	if d, err := time.ParseDuration(input); err == nil {
		if d < time.Millisecond {
			return 0, NewIntervalError(input)
		}
		return d, nil
	}

	matches := durationPattern.FindStringSubmatch(input)
	if matches == nil {
		return 0, NewIntervalError(input)
	}

	var total time.Duration
	value, _ := strconv.ParseFloat(matches[1], 64)
	total += unitToDuration(value, strings.ToLower(matches[2]))
	if matches[3] != "" {
		value, _ := strconv.ParseFloat(matches[3], 64)
		total += unitToDuration(value, strings.ToLower(matches[4]))
	}

	if total < time.Millisecond {
		return 0, NewIntervalError(input)
	}
	return total, nil
}

func unitToDuration(value float64, unit string) time.Duration {
	switch unit {
	case "h", "hr", "hrs", "hour", "hours":
		return time.Duration(value * float64(time.Hour))
	case "m", "min", "mins", "minute", "minutes":
		return time.Duration(value * float64(time.Minute))
	case "ms", "millis", "milliseconds":
		return time.Duration(value * float64(time.Millisecond))
	default:
		return time.Duration(value * float64(time.Second))
	}
}

// FormatInterval renders d the way users type it, e.g. "5m" or "1h30m".
func FormatInterval(d time.Duration) string {
	if d%time.Second != 0 {
		return d.String()
	}
	s := d.String()
	if strings.HasSuffix(s, "m0s") {
		s = strings.TrimSuffix(s, "0s")
	}
	if strings.HasSuffix(s, "h0m") {
		s = strings.TrimSuffix(s, "0m")
	}
	return s
}
