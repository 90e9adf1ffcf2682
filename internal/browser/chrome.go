package browser

import (
	"os/exec"
	"path/filepath"

	"github.com/smithp17/AutoDialer/internal/logger"
)

// Common Chrome/Chromium binary names across different systems
var chromeBinaryNames = []string{
	"google-chrome-stable",
	"google-chrome",
	"chromium",
	"chromium-browser",
	"chrome",
	"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
	"/Applications/Chromium.app/Contents/MacOS/Chromium",
	"/snap/bin/chromium",
	`C:\Program Files\Google\Chrome\Application\chrome.exe`,
	`C:\Program Files (x86)\Google\Chrome\Application\chrome.exe`,
}

// FindChromePath returns the first Chrome binary found on PATH or in a
// common install location, or "" to let chromedp use its own lookup.
func FindChromePath() string {
	return findChrome(chromeBinaryNames, exec.LookPath)
}

func findChrome(candidates []string, lookPath func(string) (string, error)) string {
	for _, name := range candidates {
		if path, err := lookPath(name); err == nil {
			logger.Debug("found Chrome binary", "name", filepath.Base(name), "path", path)
			return path
		}
	}
	logger.Warn("no Chrome binary found, falling back to chromedp defaults")
	return ""
}
