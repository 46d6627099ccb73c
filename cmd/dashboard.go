package cmd

import (
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/manav03panchal/worklog/internal/errors"
	"github.com/manav03panchal/worklog/internal/tui"
)

// dashboardCmd opens the live terminal dashboard.
var dashboardCmd = &cobra.Command{
	Use:     "dashboard",
	Aliases: []string{"dash", "ui"},
	Short:   "Watch the daemon live in the terminal",
	Long: `Open a live view of the daemon: recording state, time to the next
capture, the next daily report and counters since the daemon started.

Keys:
  space, t  toggle recording
  r         build today's report
  u         refresh
  q         quit`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !isatty.IsTerminal(os.Stdout.Fd()) {
			return errors.NewUserError("dashboard needs a terminal",
				"Use 'worklog daemon status --format json' when piping output.")
		}
		return tui.Run(tui.DashboardConfig{
			Source:     ctx.Daemon,
			Controller: ctx.Daemon,
		})
	},
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
}
