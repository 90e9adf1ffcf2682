// Package browser drives a single authenticated Chrome session through
// chromedp: login, profile navigation, about-text expansion and teardown.
package browser

import (
	"errors"
	"time"

	"github.com/smithp17/AutoDialer/internal/config"
	"github.com/smithp17/AutoDialer/internal/profile"
)

var (
	// ErrAuthentication is returned when login could not be confirmed.
	ErrAuthentication = errors.New("authentication failed")

	// ErrSettleTimeout is returned when a page does not become ready in time.
	ErrSettleTimeout = errors.New("page did not settle")

	// ErrChallenge is returned when navigation lands on a checkpoint,
	// authwall or login page instead of the requested profile.
	ErrChallenge = errors.New("challenge page")

	// ErrNoExpandControl is returned by ExpandAbout when the page has no
	// show-more control.
	ErrNoExpandControl = errors.New("no show-more control")

	// ErrClosed is returned by every operation after Close.
	ErrClosed = errors.New("session closed")
)

// Chrome user agent for better compatibility
const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36"

// Config holds everything a Session needs.
type Config struct {
	BaseURL    string
	Headless   bool
	Stealth    bool
	ChromePath string // empty means search the usual install locations
	UserAgent  string
	DebugDir   string // screenshots of failed fetches go here when set
	Settle     config.SettleConfig
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		BaseURL:   profile.DefaultBaseURL,
		Headless:  true,
		Stealth:   true,
		UserAgent: defaultUserAgent,
		Settle: config.SettleConfig{
			Mode:        config.SettlePoll,
			Timeout:     20 * time.Second,
			FormDelay:   2 * time.Second,
			LoginDelay:  5 * time.Second,
			PageDelay:   4 * time.Second,
			ExpandDelay: 2 * time.Second,
		},
	}
}

// NewConfig derives a session Config from the run configuration.
func NewConfig(c *config.Config) Config {
	cfg := Config{
		BaseURL:    c.BaseURL,
		Headless:   c.Browser.Headless,
		Stealth:    c.Browser.Stealth,
		ChromePath: c.Browser.ChromePath,
		UserAgent:  c.Browser.UserAgent,
		DebugDir:   c.Browser.DebugDir,
		Settle:     c.Settle,
	}
	return cfg.withDefaults()
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.BaseURL == "" {
		c.BaseURL = d.BaseURL
	}
	if c.UserAgent == "" {
		c.UserAgent = d.UserAgent
	}
	if c.Settle.Mode == "" {
		c.Settle.Mode = d.Settle.Mode
	}
	if c.Settle.Timeout <= 0 {
		c.Settle.Timeout = d.Settle.Timeout
	}
	return c
}
