package cmd

import (
	"github.com/spf13/cobra"

	"github.com/manav03panchal/worklog/internal/archive"
	"github.com/manav03panchal/worklog/internal/capture"
	"github.com/manav03panchal/worklog/internal/config"
	"github.com/manav03panchal/worklog/internal/errors"
	"github.com/manav03panchal/worklog/internal/executil"
	"github.com/manav03panchal/worklog/internal/logging"
	"github.com/manav03panchal/worklog/internal/notify"
	"github.com/manav03panchal/worklog/internal/output"
)

// captureCmd takes one screenshot now.
var captureCmd = &cobra.Command{
	Use:     "capture",
	Aliases: []string{"snap", "shot"},
	Short:   "Take one screenshot now",
	Long: `Take one screenshot now, using the current settings, and commit it to
the archive. This does not need the daemon and does not change whether
recording is on.`,
	Args: cobra.NoArgs,
	RunE: runCapture,
}

func init() {
	rootCmd.AddCommand(captureCmd)
}

func runCapture(cmd *cobra.Command, args []string) error {
	runner := &executil.RealExecutor{}

	gate := capture.NewPermissionGate(runner)
	if !gate.IsGranted() {
		if err := gate.RequestAccess(); err != nil {
			logging.Warn("failed to request screen recording access", logging.Err(err))
		}
		return errors.NewCaptureError("permission", "", errors.ErrPermissionDenied)
	}

	var sinks []notify.Sink
	if desktop := notify.NewDesktop(runner); desktop != nil {
		sinks = append(sinks, desktop)
	}
	dispatcher := notify.NewDispatcher(config.Global.Notify.Timeout, sinks...)
	defer dispatcher.Wait()

	executor := capture.NewExecutor(capture.Options{
		Config:   ctx.Store,
		Device:   capture.NewDevice(runner),
		Archive:  archive.New(config.Global.Capture.GitBinary, runner),
		Notifier: dispatcher,
	})

	art, err := executor.Capture(logging.NewCycleContext(cmd.Context()))
	if art == nil {
		return err
	}

	if ctx.IsJSON() {
		resp := map[string]interface{}{
			"status":    "saved",
			"name":      art.Name,
			"path":      art.Path,
			"taken_at":  art.TakenAt,
			"committed": err == nil && ctx.Store.Current().GitEnabled,
		}
		if err != nil {
			resp["warning"] = err.Error()
		}
		return ctx.Formatter.JSON(resp)
	}

	cli := ctx.CLIFormatter()
	cli.Success("Screenshot saved: " + art.Name)
	cli.Field("Path", art.Path)
	cli.Field("Taken", output.FormatTime(art.TakenAt))
	if err != nil {
		cli.Warning(errors.FormatError(err))
	}
	return nil
}
