package server

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/smithp17/AutoDialer/internal/browser"
	"github.com/smithp17/AutoDialer/internal/config"
	"github.com/smithp17/AutoDialer/internal/version"
)

// Run statuses reported by POST /scrapes.
const (
	StatusOK      = "ok"
	StatusPartial = "partial"
	StatusError   = "error"
	StatusBusy    = "busy"
)

// ScrapeResponse is the body of POST /scrapes.
type ScrapeResponse struct {
	Status    string `json:"status"`
	Records   int    `json:"records"`
	Attempted int    `json:"attempted"`
	Failures  int    `json:"failures"`
	File      string `json:"file,omitempty"`
	Error     string `json:"error,omitempty"`
}

// HealthResponse is the body of GET /healthz.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Uptime  string `json:"uptime"`
	Running bool   `json:"running"`
}

func (s *Server) health(c *gin.Context) {
	running := !s.running.TryLock()
	if !running {
		s.running.Unlock()
	}
	c.JSON(http.StatusOK, HealthResponse{
		Status:  "ok",
		Version: version.Get().Version,
		Uptime:  time.Since(s.start).Round(time.Second).String(),
		Running: running,
	})
}

// createScrape handles POST /scrapes. The run is synchronous; the response
// is sent when the artifact has been written.
func (s *Server) createScrape(c *gin.Context) {
	if !s.running.TryLock() {
		c.JSON(http.StatusConflict, ScrapeResponse{Status: StatusBusy, Error: "a scrape is already running"})
		return
	}
	defer s.running.Unlock()

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		c.JSON(http.StatusInternalServerError, ScrapeResponse{Status: StatusError, Error: err.Error()})
		return
	}
	logFile, err := os.Create(s.logPath())
	if err != nil {
		c.JSON(http.StatusInternalServerError, ScrapeResponse{Status: StatusError, Error: err.Error()})
		return
	}
	defer logFile.Close()

	path := s.artifactPath()
	s.log.Info("scrape started", "file", path)
	rep, err := s.run(c.Request.Context(), logFile, path)

	if rep == nil {
		s.log.Error("scrape failed", "error", err)
		c.JSON(statusFor(err), ScrapeResponse{Status: StatusError, Error: errString(err)})
		return
	}

	resp := ScrapeResponse{
		Status:    StatusOK,
		Records:   rep.Result.Len(),
		Attempted: rep.Attempted,
		Failures:  len(rep.Failures),
	}
	if rep.File != "" {
		resp.File = filepath.Base(rep.File)
		s.mu.Lock()
		s.last = &lastRun{file: rep.File, finished: time.Now()}
		s.mu.Unlock()
	}
	if err != nil {
		resp.Status = StatusPartial
		resp.Error = err.Error()
		s.log.Warn("scrape ended early", "error", err, "records", resp.Records)
	}
	c.JSON(http.StatusOK, resp)
}

// download handles GET /scrapes/download.
func (s *Server) download(c *gin.Context) {
	path := s.latestArtifact()
	if path == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "no scrape results available"})
		return
	}
	c.Header("Content-Type", s.format.ContentType())
	c.FileAttachment(path, filepath.Base(path))
}

// runLog handles GET /scrapes/log.
func (s *Server) runLog(c *gin.Context) {
	data, err := os.ReadFile(s.logPath())
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no scrape log available"})
		return
	}
	c.Data(http.StatusOK, "text/plain; charset=utf-8", data)
}

// latestArtifact returns the file written by the last run in this process,
// falling back to one left by an earlier process.
func (s *Server) latestArtifact() string {
	s.mu.RLock()
	last := s.last
	s.mu.RUnlock()

	candidates := []string{s.artifactPath()}
	if last != nil {
		candidates = append([]string{last.file}, candidates...)
	}
	for _, p := range candidates {
		if fi, err := os.Stat(p); err == nil && fi.Mode().IsRegular() {
			return p
		}
	}
	return ""
}

// statusFor maps a fatal run error to an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, config.ErrConfiguration):
		return http.StatusServiceUnavailable
	case errors.Is(err, browser.ErrAuthentication):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func errString(err error) string {
	if err == nil {
		return "scrape produced no report"
	}
	return err.Error()
}
