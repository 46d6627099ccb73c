package config

import (
	"fmt"

	"github.com/hay-kot/criterio"

	"github.com/manav03panchal/worklog/internal/errors"
	"github.com/manav03panchal/worklog/internal/validate"
)

// Validate checks every field of c, collecting one error per invalid field.
// The returned error is a criterio.FieldErrors.
func (c Configuration) Validate() error {
	var errs criterio.FieldErrorsBuilder

	if c.Interval <= 0 {
		errs = errs.Append("interval", fmt.Errorf("%w, got %d", errors.ErrInvalidInterval, c.Interval))
	}
	if c.JpegQuality < 0 || c.JpegQuality > 100 {
		errs = errs.Append("jpegQuality", fmt.Errorf("%w, got %d", errors.ErrInvalidQuality, c.JpegQuality))
	}
	if _, err := ParseTimeOfDay(c.DailyReportTime); err != nil {
		errs = errs.Append("dailyReportTime", err)
	}
	if err := validate.Directory(c.SaveDirectory); err != nil {
		errs = errs.Append("saveDirectory", err)
	}

	return errs.ToError()
}

// sanitize resets every field that fails validation to its default and
// returns the names of the fields it reset.
func sanitize(c Configuration) (Configuration, []string) {
	err := c.Validate()
	if err == nil {
		return c, nil
	}

	var fieldErrs criterio.FieldErrors
	if !errors.As(err, &fieldErrs) {
		return c, nil
	}

	defaults := Defaults()
	var reset []string
	for _, fe := range fieldErrs {
		switch fe.Field {
		case "interval":
			c.Interval = defaults.Interval
		case "jpegQuality":
			c.JpegQuality = defaults.JpegQuality
		case "dailyReportTime":
			c.DailyReportTime = defaults.DailyReportTime
		case "saveDirectory":
			c.SaveDirectory = defaults.SaveDirectory
		default:
			continue
		}
		reset = append(reset, fe.Field)
	}
	return c, reset
}
