// Package cmd provides the CLI commands for WorkLog.
//
// This software is a derivative work based on Zeit (https://github.com/mrusme/zeit)
// Original work copyright (c) マリウス (mrusme)
// Modifications copyright (c) Manav Panchal
//
// Licensed under the SEGV License, Version 1.0
// See LICENSE file for full license text.
package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/manav03panchal/worklog/internal/config"
	"github.com/manav03panchal/worklog/internal/errors"
	"github.com/manav03panchal/worklog/internal/logging"
	"github.com/manav03panchal/worklog/internal/output"
	"github.com/manav03panchal/worklog/internal/runtime"
	"github.com/manav03panchal/worklog/internal/storage"
)

// Version information (set at build time via ldflags).
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// Global flags.
var (
	flagFormat string
	flagColor  string
	flagDebug  bool
)

// ctx is the shared runtime context.
var ctx *runtime.Context

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "worklog",
	Short: "Record periodic screenshots of your work day",
	Long: `WorkLog takes a screenshot every few minutes while recording is on,
archives each one in a git repository and writes a daily HTML report that
groups the day's screenshots by hour.

Examples:
  worklog daemon start
  worklog record toggle
  worklog config set interval 5m
  worklog report yesterday
  worklog history`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip initialization for completion and help commands (but allow __complete for dynamic completions)
		if cmd.Name() == "completion" || cmd.Name() == "help" {
			return nil
		}

		if flagDebug {
			logging.InitDebug()
		}
		storage.SetThresholds(config.Global.Storage.MinFreeSpace, config.Global.Storage.MinFreeSpaceWarning)

		format, err := output.ParseFormat(flagFormat)
		if err != nil {
			return err
		}
		colorMode, err := output.ParseColorMode(flagColor)
		if err != nil {
			return err
		}

		opts := runtime.DefaultOptions()
		opts.Format = format
		opts.ColorMode = colorMode
		opts.Debug = flagDebug

		ctx, err = runtime.New(opts)
		if err != nil {
			return err
		}
		ctx.Debugf("config %s, journal %s", ctx.Store.Path(), ctx.JournalPath())
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if ctx != nil {
			return ctx.Close()
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		// Default behavior: show daemon and recording status
		return runDaemonStatus(cmd, args)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVarP(&flagFormat, "format", "f", "cli",
		"Output format: cli, json, plain")
	rootCmd.PersistentFlags().StringVar(&flagColor, "color", "auto",
		"Color output: auto, always, never")
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false,
		"Enable debug output")

	rootCmd.AddCommand(versionCmd)
}

// versionCmd shows version information.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("worklog %s\n", Version)
		cmd.Printf("  commit: %s\n", Commit)
		cmd.Printf("  built: %s\n", BuildTime)
		cmd.Println("")
		cmd.Println("Based on Zeit (https://github.com/mrusme/zeit)")
		cmd.Println("Licensed under SEGV License v1.0")
	},
}

// Die prints an error and exits.
func Die(err error) {
	if ctx != nil && ctx.IsJSON() {
		_ = ctx.JSONFormatter().PrintError("error", err.Error(), errors.GetSuggestion(err))
	} else {
		os.Stderr.WriteString("Error: " + errors.FormatError(err) + "\n")
	}
	if ctx != nil {
		_ = ctx.Close()
	}
	os.Exit(1)
}
