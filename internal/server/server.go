// Package server is the read-only report browser behind `worklog serve`.
// It lists and serves report documents and screenshots, exposes the daemon
// status and can build a report on demand.
package server

import (
	"context"
	stderrors "errors"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/manav03panchal/worklog/internal/artifact"
	"github.com/manav03panchal/worklog/internal/clock"
	"github.com/manav03panchal/worklog/internal/config"
	"github.com/manav03panchal/worklog/internal/daemon"
	"github.com/manav03panchal/worklog/internal/errors"
	"github.com/manav03panchal/worklog/internal/logging"
	"github.com/manav03panchal/worklog/internal/output"
	"github.com/manav03panchal/worklog/internal/parser"
	"github.com/manav03panchal/worklog/internal/report"
	"github.com/manav03panchal/worklog/internal/validate"
)

// ConfigSource provides the current configuration.
type ConfigSource interface {
	Current() config.Configuration
}

// ReportBuilder builds the report for a day.
type ReportBuilder interface {
	Build(ctx context.Context, day time.Time) (*report.Document, error)
}

// StatusSource reports the daemon status.
type StatusSource interface {
	Status() *daemon.Status
}

// Options configures a Server.
type Options struct {
	Config  ConfigSource
	Builder ReportBuilder
	Status  StatusSource
	Clock   clock.Clock
}

// Server serves reports and screenshots over HTTP.
type Server struct {
	opts   Options
	router *gin.Engine
}

// ReportEntry is one report in the listing.
type ReportEntry struct {
	Day  string `json:"day"`
	Name string `json:"name"`
	Href string `json:"href"`
}

// New creates a server and registers its routes.
func New(opts Options) *Server {
	if opts.Clock == nil {
		opts.Clock = clock.New()
	}
	if gin.Mode() == gin.DebugMode && !logging.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(requestLogger(), gin.Recovery())
	_ = router.SetTrustedProxies(nil)

	s := &Server{opts: opts, router: router}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusFound, "/api/reports")
	})
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})
	s.router.GET("/reports/:name", s.serveReport)
	s.router.GET("/screenshots/:name", s.serveScreenshot)

	api := s.router.Group("/api")
	api.GET("/status", s.status)
	api.GET("/reports", s.listReports)
	api.POST("/reports/:day", s.buildReport)
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on addr until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info("report server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (s *Server) status(c *gin.Context) {
	if s.opts.Status == nil {
		c.JSON(http.StatusOK, &output.StatusOutput{})
		return
	}
	c.JSON(http.StatusOK, s.opts.Status.Status().Output())
}

func (s *Server) listReports(c *gin.Context) {
	dir := s.opts.Config.Current().ReportDir()
	entries, err := os.ReadDir(dir)
	if err != nil && !os.IsNotExist(err) {
		logging.Warn("failed to list reports", logging.KeyDir, dir, logging.Err(err))
		c.JSON(http.StatusInternalServerError, &output.ErrorResponse{Status: "error", Error: "failed to list reports"})
		return
	}

	reports := []ReportEntry{}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		day, ok := artifact.ParseReportName(e.Name(), time.Local)
		if !ok {
			continue
		}
		reports = append(reports, ReportEntry{
			Day:  day.Format(time.DateOnly),
			Name: e.Name(),
			Href: "/reports/" + e.Name(),
		})
	}
	sort.Slice(reports, func(i, j int) bool { return reports[i].Day > reports[j].Day })

	c.JSON(http.StatusOK, gin.H{"reports": reports})
}

func (s *Server) serveReport(c *gin.Context) {
	name := c.Param("name")
	if _, ok := artifact.ParseReportName(name, time.Local); !ok {
		c.JSON(http.StatusNotFound, &output.ErrorResponse{Status: "error", Error: "report not found"})
		return
	}
	s.serveFile(c, s.opts.Config.Current().ReportDir(), name, "report not found")
}

func (s *Server) serveScreenshot(c *gin.Context) {
	name := c.Param("name")
	if _, ok := artifact.Parse(name, time.Local); !ok {
		c.JSON(http.StatusNotFound, &output.ErrorResponse{Status: "error", Error: "screenshot not found"})
		return
	}
	s.serveFile(c, s.opts.Config.Current().ScreenshotDir(), name, "screenshot not found")
}

func (s *Server) serveFile(c *gin.Context, dir, name, missing string) {
	path, err := validate.JoinWithin(dir, name)
	if err != nil {
		c.JSON(http.StatusNotFound, &output.ErrorResponse{Status: "error", Error: missing})
		return
	}
	if _, err := os.Stat(path); err != nil {
		c.JSON(http.StatusNotFound, &output.ErrorResponse{Status: "error", Error: missing})
		return
	}
	c.File(path)
}

func (s *Server) buildReport(c *gin.Context) {
	if s.opts.Builder == nil {
		c.JSON(http.StatusServiceUnavailable, &output.ErrorResponse{Status: "error", Error: "report building is not available"})
		return
	}

	day, err := parser.ParseDay(c.Param("day"), s.opts.Clock.Now())
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err))
		return
	}

	doc, err := s.opts.Builder.Build(c.Request.Context(), day)
	if err != nil {
		logging.Warn("report build failed", logging.KeyDay, day.Format(time.DateOnly), logging.Err(err))
		c.JSON(http.StatusInternalServerError, errorResponse(err))
		return
	}

	resp := output.NewReportResponse(day, doc)
	if doc != nil {
		c.Header("Location", "/reports/"+filepath.Base(doc.Path))
		c.JSON(http.StatusCreated, resp)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func errorResponse(err error) *output.ErrorResponse {
	return &output.ErrorResponse{
		Status:  "error",
		Error:   err.Error(),
		Message: errors.GetSuggestion(err),
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logging.DebugLog("http request",
			"method", c.Request.Method,
			logging.KeyPath, c.Request.URL.Path,
			"status", c.Writer.Status(),
			logging.KeyDuration, time.Since(start).Milliseconds(),
		)
	}
}
