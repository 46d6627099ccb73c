// Package parser turns command-line arguments such as day names and capture
// intervals into values.
package parser

import (
	"fmt"
	"strings"

	"github.com/manav03panchal/worklog/internal/errors"
)

// ParseError is an input that could not be parsed, with examples of what
// would have worked.
type ParseError struct {
	Input      string
	Field      string
	Message    string
	Examples   []string
	Suggestion string
	Cause      error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid %s '%s': %s", e.Field, e.Input, e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}

// FormatWithExamples returns the error message with example suggestions.
func (e *ParseError) FormatWithExamples() string {
	var sb strings.Builder
	sb.WriteString(e.Error())

	if len(e.Examples) > 0 {
		sb.WriteString("\n\nValid examples:\n")
		for _, ex := range e.Examples {
			sb.WriteString("  - ")
			sb.WriteString(ex)
			sb.WriteString("\n")
		}
	}

	if e.Suggestion != "" {
		sb.WriteString("\n")
		sb.WriteString(e.Suggestion)
	}

	return sb.String()
}

// ToUserError converts the error for display by the CLI.
func (e *ParseError) ToUserError() *errors.UserError {
	suggestion := e.Suggestion
	if suggestion == "" && len(e.Examples) > 0 {
		suggestion = fmt.Sprintf("Try: %s", strings.Join(e.Examples[:min(3, len(e.Examples))], ", "))
	}
	ue := errors.NewUserErrorWithField(e.Field, e.Input, e.Message, suggestion)
	ue.Cause = e.Cause
	return ue
}

// DayExamples lists accepted day formats.
var DayExamples = []string{
	"today",
	"yesterday",
	"2024-01-31",
	"20240131",
	"last friday",
	"3 days ago",
}

// IntervalExamples lists accepted interval formats.
var IntervalExamples = []string{
	"300000",
	"5m",
	"90 seconds",
	"1h 30m",
}

// NewDayError creates a day parse error.
func NewDayError(input string) *ParseError {
	return &ParseError{
		Input:      input,
		Field:      "day",
		Message:    "could not parse day",
		Examples:   DayExamples,
		Suggestion: "Use a date like '2024-01-31' or a relative day like 'yesterday'.",
		Cause:      errors.ErrInvalidDay,
	}
}

// NewIntervalError creates an interval parse error.
func NewIntervalError(input string) *ParseError {
	return &ParseError{
		Input:      input,
		Field:      "interval",
		Message:    "could not parse interval",
		Examples:   IntervalExamples,
		Suggestion: "Plain numbers are milliseconds; otherwise add a unit (ms, s, m, h).",
		Cause:      errors.ErrInvalidInterval,
	}
}
