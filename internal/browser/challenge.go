package browser

import (
	"net/url"
	"strings"
)

// detectChallenge classifies a page that is not the requested profile.
// It returns "" for an ordinary page.
func detectChallenge(location, title string) string {
	path := strings.ToLower(location)
	if u, err := url.Parse(location); err == nil {
		path = strings.ToLower(u.Path)
	}

	switch {
	case strings.HasPrefix(path, "/checkpoint/"), strings.HasPrefix(path, "/challenge"):
		return "checkpoint"
	case strings.HasPrefix(path, "/authwall"):
		return "authwall"
	case path == "/login", strings.HasPrefix(path, "/login/"), strings.HasPrefix(path, "/uas/login"):
		return "login"
	}

	titleLower := strings.ToLower(title)
	if strings.Contains(titleLower, "security verification") ||
		strings.Contains(titleLower, "just a moment") {
		return "security-check"
	}
	return ""
}
