package cmd

import (
	"github.com/spf13/cobra"

	"github.com/manav03panchal/worklog/internal/daemon"
	"github.com/manav03panchal/worklog/internal/errors"
)

// recordCmd controls recording in the running daemon.
var recordCmd = &cobra.Command{
	Use:     "record",
	Aliases: []string{"rec"},
	Short:   "Start or stop recording",
	Long: `Start or stop recording in the running daemon. Starting takes a
screenshot immediately and then one every interval.

Examples:
  worklog record toggle
  worklog record start
  worklog record stop`,
}

var recordToggleCmd = &cobra.Command{
	Use:   "toggle",
	Short: "Flip recording on or off",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return sendRecordControl(nil)
	},
}

var recordStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start recording",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		want := true
		return sendRecordControl(&want)
	},
}

var recordStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop recording",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		want := false
		return sendRecordControl(&want)
	},
}

func init() {
	recordCmd.AddCommand(recordToggleCmd)
	recordCmd.AddCommand(recordStartCmd)
	recordCmd.AddCommand(recordStopCmd)

	rootCmd.AddCommand(recordCmd)
}

// sendRecordControl toggles recording, or does nothing when want is set and
// already matches the daemon's state.
func sendRecordControl(want *bool) error {
	status := ctx.Daemon.Status()
	if !status.Running {
		return errors.ErrDaemonNotRunning
	}

	recording := status.State != nil && status.State.Recording
	if want != nil && *want == recording {
		if recording {
			ctx.CLIFormatter().Muted("Already recording")
		} else {
			ctx.CLIFormatter().Muted("Not recording")
		}
		return nil
	}

	if err := ctx.Daemon.Control(daemon.ControlToggle); err != nil {
		return err
	}

	if ctx.IsJSON() {
		return ctx.Formatter.JSON(map[string]interface{}{
			"status":    "sent",
			"recording": !recording,
		})
	}
	if recording {
		ctx.CLIFormatter().Success("Stopping recording")
	} else {
		ctx.CLIFormatter().Success("Starting recording")
		ctx.CLIFormatter().Muted("Check 'worklog daemon status' to confirm the first screenshot succeeded.")
	}
	return nil
}
