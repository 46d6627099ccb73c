package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/manav03panchal/worklog/internal/clock"
	"github.com/manav03panchal/worklog/internal/errors"
	"github.com/manav03panchal/worklog/internal/parser"
	"github.com/manav03panchal/worklog/internal/report"
)

// reportCmd builds a daily report on demand.
var reportCmd = &cobra.Command{
	Use:   "report [DAY]",
	Short: "Build the HTML report for a day",
	Long: `Build the HTML report for a day (today by default). Screenshots are
grouped by hour. Nothing is written for a day without screenshots.

DAY accepts dates (2024-03-05, 20240305) and relative days (yesterday,
"3 days ago", "last friday").

Examples:
  worklog report
  worklog report yesterday
  worklog report 2024-03-05
  worklog report "last friday"`,
	Args:              cobra.MaximumNArgs(1),
	ValidArgsFunction: completeDay,
	RunE:              runReport,
}

func init() {
	rootCmd.AddCommand(reportCmd)
}

// parseDayArg resolves the optional day argument.
func parseDayArg(args []string, now time.Time) (time.Time, error) {
	input := ""
	if len(args) > 0 {
		input = args[0]
	}
	day, err := parser.ParseDay(input, now)
	if err != nil {
		var pe *parser.ParseError
		if errors.As(err, &pe) {
			return time.Time{}, pe.ToUserError()
		}
		return time.Time{}, err
	}
	return day, nil
}

func runReport(cmd *cobra.Command, args []string) error {
	clk := clock.New()
	day, err := parseDayArg(args, clk.Now())
	if err != nil {
		return err
	}

	doc, err := report.NewBuilder(ctx.Store, clk).Build(cmd.Context(), day)
	if err != nil {
		return err
	}

	if ctx.IsJSON() {
		return ctx.JSONFormatter().PrintReport(day, doc)
	}
	ctx.CLIFormatter().PrintReport(doc)
	return nil
}
