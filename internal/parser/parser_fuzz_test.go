package parser

import (
	"errors"
	"testing"
	"time"
)

// Run with: go test ./internal/parser -fuzz=FuzzParseDay -fuzztime=30s
func FuzzParseDay(f *testing.F) {
	seeds := []string{
		"",
		"today",
		"yesterday",
		"2024-03-05",
		"20240305",
		"2024/03/05",
		"3 days ago",
		"last friday",
		"2024-02-30",
		"xyzzy",
	}
	for _, seed := range seeds {
		f.Add(seed)
	}

	now := time.Date(2024, 3, 5, 15, 4, 5, 0, time.UTC)
	f.Fuzz(func(t *testing.T, input string) {
		day, err := ParseDay(input, now)
		if err != nil {
			var pe *ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("ParseDay(%q) returned %T, want *ParseError", input, err)
			}
			return
		}
		if day.Hour() != 0 || day.Minute() != 0 || day.Second() != 0 || day.Nanosecond() != 0 {
			t.Fatalf("ParseDay(%q) = %v, want midnight", input, day)
		}
	})
}

// Run with: go test ./internal/parser -fuzz=FuzzParseInterval -fuzztime=30s
func FuzzParseInterval(f *testing.F) {
	seeds := []string{
		"300000",
		"5m",
		"90s",
		"1h30m",
		"1 hour 30 minutes",
		"2.5 minutes",
		"0",
		"-5",
		"0.0001s",
		"99999999999999999999h",
	}
	for _, seed := range seeds {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, input string) {
		d, err := ParseInterval(input)
		if err != nil {
			return
		}
		if d < time.Millisecond {
			t.Fatalf("ParseInterval(%q) = %v, want at least 1ms", input, d)
		}
	})
}
