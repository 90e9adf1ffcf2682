// Package server exposes scrapes over HTTP: trigger a run, download the
// latest artifact, read the latest run log.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/smithp17/AutoDialer/internal/config"
	"github.com/smithp17/AutoDialer/internal/logger"
	"github.com/smithp17/AutoDialer/internal/output"
	"github.com/smithp17/AutoDialer/internal/runner"
)

// RunFunc executes one scrape, writing progress lines to progress and the
// artifact to path.
type RunFunc func(ctx context.Context, progress io.Writer, path string) (*runner.Report, error)

// RunnerFunc returns a RunFunc backed by runner.Runner and a copy of cfg.
func RunnerFunc(cfg *config.Config) RunFunc {
	return func(ctx context.Context, progress io.Writer, path string) (*runner.Report, error) {
		c := *cfg
		c.Output.Path = path
		return runner.New(&c, runner.WithProgress(progress)).Execute(ctx)
	}
}

// Server serializes scrapes: at most one runs at a time because they share
// a single logged-in account.
type Server struct {
	dir    string
	format output.Format
	run    RunFunc
	log    *slog.Logger
	start  time.Time

	running sync.Mutex

	mu   sync.RWMutex
	last *lastRun
}

type lastRun struct {
	file     string
	finished time.Time
}

// New returns a Server that keeps artifacts and logs under dir.
func New(dir string, format output.Format, run RunFunc) *Server {
	return &Server{
		dir:    dir,
		format: format,
		run:    run,
		log:    logger.Component("server"),
		start:  time.Now(),
	}
}

// artifactPath is where every run writes its records.
func (s *Server) artifactPath() string {
	return filepath.Join(s.dir, "scraped_profiles"+s.format.Extension())
}

func (s *Server) logPath() string {
	return filepath.Join(s.dir, "scrape.log")
}

// Router builds the gin engine.
//
//	GET  /healthz
//	POST /scrapes
//	GET  /scrapes/download
//	GET  /scrapes/log
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger(s.log))

	r.GET("/healthz", s.health)

	scrapes := r.Group("/scrapes")
	scrapes.POST("", s.createScrape)
	scrapes.GET("/download", s.download)
	scrapes.GET("/log", s.runLog)

	return r
}

// ListenAndServe serves on addr until ctx is done, then drains in-flight
// requests for up to drain.
func (s *Server) ListenAndServe(ctx context.Context, addr string, drain time.Duration) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.log.Info("HTTP server listening", "addr", addr, "dir", s.dir)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen %s: %w", addr, err)
	case <-ctx.Done():
	}

	s.log.Info("shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), drain)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	s.log.Info("HTTP server drained gracefully")
	return nil
}

// requestLogger logs one line per request through slog.
func requestLogger(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start).Round(time.Millisecond))
	}
}
