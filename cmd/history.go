package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/manav03panchal/worklog/internal/clock"
	"github.com/manav03panchal/worklog/internal/output"
)

// historyCmd lists a day's capture journal.
var historyCmd = &cobra.Command{
	Use:     "history [DAY]",
	Aliases: []string{"log", "journal"},
	Short:   "List the capture attempts of a day",
	Long: `List every capture attempt of a day (today by default), including
failures and whether each screenshot was committed.

The journal is held by a running daemon; stop it first to read history.

Examples:
  worklog history
  worklog history yesterday
  worklog history 2024-03-05 --format json`,
	Args:              cobra.MaximumNArgs(1),
	ValidArgsFunction: completeDay,
	RunE:              runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	day, err := parseDayArg(args, clock.New().Now())
	if err != nil {
		return err
	}

	repo, err := ctx.Captures()
	if err != nil {
		return err
	}
	records, err := repo.ListDay(day)
	if err != nil {
		return err
	}

	if ctx.IsJSON() {
		return ctx.JSONFormatter().PrintCaptures(day, records)
	}

	cli := ctx.CLIFormatter()
	cli.Title("Captures on " + output.FormatDate(day))
	if len(records) == 0 {
		cli.Muted("No captures recorded.")
		return nil
	}
	cli.PrintCaptures(records)

	summary, err := repo.Summarize(day)
	if err != nil {
		return err
	}
	ctx.Formatter.Println()
	cli.Field("Saved", fmt.Sprintf("%d", summary.Captures))
	cli.Field("Committed", fmt.Sprintf("%d", summary.Committed))
	cli.Field("Failed", fmt.Sprintf("%d", summary.Failures))
	if !summary.First.IsZero() {
		cli.Field("Span", output.FormatTimeOnly(summary.First)+" – "+output.FormatTimeOnly(summary.Last))
	}
	return nil
}
