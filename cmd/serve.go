package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/manav03panchal/worklog/internal/clock"
	"github.com/manav03panchal/worklog/internal/config"
	"github.com/manav03panchal/worklog/internal/logging"
	"github.com/manav03panchal/worklog/internal/report"
	"github.com/manav03panchal/worklog/internal/server"
)

var serveFlagAddr string

// serveCmd runs the report browser.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Browse reports and screenshots over HTTP",
	Long: `Serve the reports and screenshots directories over HTTP.

Routes:
  GET  /api/reports         list report documents
  GET  /reports/NAME        one report document
  GET  /screenshots/NAME    one screenshot
  GET  /api/status          daemon status
  POST /api/reports/DAY     build the report for DAY now

Examples:
  worklog serve
  worklog serve --addr 127.0.0.1:9000`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveFlagAddr, "addr", "",
		"Listen address (default from WORKLOG_SERVE_ADDR or 127.0.0.1:7777)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	addr := serveFlagAddr
	if addr == "" {
		addr = config.Global.Server.Addr
	}

	watcher, err := config.Watch(ctx.Store, config.Global.Watcher.Debounce)
	if err != nil {
		logging.Warn("config watcher unavailable", logging.Err(err))
	} else {
		defer watcher.Close()
	}

	clk := clock.New()
	srv := server.New(server.Options{
		Config:  ctx.Store,
		Builder: report.NewBuilder(ctx.Store, clk),
		Status:  ctx.Daemon,
		Clock:   clk,
	})

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ctx.CLIFormatter().Success("Serving reports on http://" + addr)
	return srv.ListenAndServe(runCtx, addr)
}
