package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/manav03panchal/worklog/internal/errors"
)

func TestParseErrorError(t *testing.T) {
	err := NewDayError("someday")
	assert.Equal(t, "invalid day 'someday': could not parse day", err.Error())
}

func TestFormatWithExamples(t *testing.T) {
	out := NewIntervalError("soon").FormatWithExamples()
	assert.Contains(t, out, "invalid interval 'soon'")
	assert.Contains(t, out, "Valid examples:")
	assert.Contains(t, out, "  - 5m")
	assert.Contains(t, out, "Plain numbers are milliseconds")
}

func TestFormatWithExamples_NoExamples(t *testing.T) {
	err := &ParseError{Input: "x", Field: "day", Message: "bad"}
	assert.Equal(t, "invalid day 'x': bad", err.FormatWithExamples())
}

func TestToUserError(t *testing.T) {
	ue := NewDayError("someday").ToUserError()
	assert.Equal(t, "day", ue.Field)
	assert.Equal(t, "someday", ue.Value)
	assert.Equal(t, "could not parse day: 'someday'", ue.Error())
	assert.NotEmpty(t, ue.Suggestion)
	assert.ErrorIs(t, ue, errors.ErrInvalidDay)
}

func TestToUserError_SuggestionFromExamples(t *testing.T) {
	pe := &ParseError{Input: "x", Field: "day", Message: "bad", Examples: DayExamples}
	assert.Equal(t, "Try: today, yesterday, 2024-01-31", pe.ToUserError().Suggestion)
}
