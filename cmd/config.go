package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/manav03panchal/worklog/internal/config"
	"github.com/manav03panchal/worklog/internal/daemon"
	"github.com/manav03panchal/worklog/internal/errors"
	"github.com/manav03panchal/worklog/internal/executil"
	"github.com/manav03panchal/worklog/internal/logging"
	"github.com/manav03panchal/worklog/internal/output"
)

// configCmd represents the config command.
var configCmd = &cobra.Command{
	Use:     "config",
	Aliases: []string{"cfg", "settings"},
	Short:   "Manage settings",
	Long: `View and modify WorkLog settings. Changes take effect in a running
daemon without a restart.

Examples:
  worklog config show
  worklog config get interval
  worklog config set interval 5m
  worklog config set dailyReportTime 18:30
  worklog config set saveDirectory ~/Documents/WorkLog
  worklog config reset`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show all settings",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var configGetCmd = &cobra.Command{
	Use:               "get KEY",
	Short:             "Get a setting",
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completeConfigKeys,
	RunE:              runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:   "set KEY VALUE",
	Short: "Change a setting",
	Long: `Change a setting.

Keys:
` + keyHelp() + `
Examples:
  worklog config set interval 300000
  worklog config set interval "2 minutes"
  worklog config set compressToJpeg false
  worklog config set startAtLogin true`,
	Args:              cobra.ExactArgs(2),
	ValidArgsFunction: completeConfigKeys,
	RunE:              runConfigSet,
}

var configResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Restore every setting to its default",
	Args:  cobra.NoArgs,
	RunE:  runConfigReset,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the settings file location",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx.Formatter.Println(ctx.Store.Path())
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configResetCmd)
	configCmd.AddCommand(configPathCmd)

	rootCmd.AddCommand(configCmd)
}

func keyHelp() string {
	var b strings.Builder
	for _, k := range config.Keys() {
		fmt.Fprintf(&b, "  %-18s %s\n", k, config.Help(k))
	}
	return b.String()
}

func configEntries(cfg config.Configuration) []output.ConfigEntry {
	var entries []output.ConfigEntry
	for _, k := range config.Keys() {
		v, _ := config.Value(cfg, k)
		entries = append(entries, output.ConfigEntry{Key: k, Value: v, Help: config.Help(k)})
	}
	return entries
}

func printConfig(cfg config.Configuration) error {
	entries := configEntries(cfg)
	if ctx.IsJSON() {
		return ctx.JSONFormatter().PrintConfig(ctx.Store.Path(), entries)
	}
	ctx.CLIFormatter().PrintConfig(ctx.Store.Path(), entries)
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	return printConfig(ctx.Store.Current())
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	v, err := config.Value(ctx.Store.Current(), args[0])
	if err != nil {
		return err
	}
	if ctx.IsJSON() {
		return ctx.Formatter.JSON(output.ConfigEntry{Key: args[0], Value: v})
	}
	ctx.Formatter.Println(v)
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	p, err := config.ParsePartial(args[0], args[1])
	if err != nil {
		return err
	}

	old := ctx.Store.Current()
	cfg, err := ctx.Store.Update(p)
	if err != nil {
		if !errors.IsConfigError(err) {
			return err
		}
		ctx.CLIFormatter().Warning("Setting applied but not saved: " + err.Error())
	}

	if p.StartAtLogin != nil && old.StartAtLogin != cfg.StartAtLogin {
		if err := applyStartAtLogin(cmd, cfg.StartAtLogin); err != nil {
			return err
		}
	}

	key := args[0]
	v, _ := config.Value(cfg, key)
	if ctx.IsJSON() {
		return ctx.Formatter.JSON(output.ConfigEntry{Key: key, Value: v})
	}
	ctx.CLIFormatter().Success(fmt.Sprintf("%s = %s", key, v))
	return nil
}

func runConfigReset(cmd *cobra.Command, args []string) error {
	old := ctx.Store.Current()
	cfg, err := ctx.Store.Reset()
	if err != nil {
		if !errors.IsConfigError(err) {
			return err
		}
		ctx.CLIFormatter().Warning("Defaults applied but not saved: " + err.Error())
	}
	if old.StartAtLogin != cfg.StartAtLogin {
		if err := applyStartAtLogin(cmd, cfg.StartAtLogin); err != nil {
			return err
		}
	}
	if !ctx.IsJSON() {
		ctx.CLIFormatter().Success("Settings reset to defaults")
	}
	return printConfig(cfg)
}

// applyStartAtLogin installs or removes the login service. A failure leaves
// the setting saved and is reported as a warning.
func applyStartAtLogin(cmd *cobra.Command, enabled bool) error {
	mgr, err := daemon.NewServiceManager(&executil.RealExecutor{})
	if err != nil {
		return err
	}
	if err := mgr.Apply(cmd.Context(), enabled); err != nil {
		logging.Warn("failed to update login service", logging.Err(err))
		ctx.CLIFormatter().Warning("Could not update the login service: " + err.Error())
	}
	return nil
}
