package browser

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/google/go-cmp/cmp"

	"github.com/smithp17/AutoDialer/internal/config"
	"github.com/smithp17/AutoDialer/internal/logger"
)

func closedSession() *Session {
	s := &Session{cfg: DefaultConfig(), log: logger.Component("browser")}
	s.closed.Store(true)
	return s
}

// --- Challenge Detection Tests ---

func TestDetectChallenge(t *testing.T) {
	tests := []struct {
		name     string
		location string
		title    string
		expected string
	}{
		{"profile page", "https://www.linkedin.com/in/janedoe/", "Jane Doe | LinkedIn", ""},
		{"feed", "https://www.linkedin.com/feed/", "Feed | LinkedIn", ""},
		{"checkpoint", "https://www.linkedin.com/checkpoint/challenge/AgF", "Security Verification", "checkpoint"},
		{"authwall", "https://www.linkedin.com/authwall?trk=x", "Sign Up | LinkedIn", "authwall"},
		{"login redirect", "https://www.linkedin.com/login?session_redirect=x", "LinkedIn Login", "login"},
		{"legacy login", "https://www.linkedin.com/uas/login", "", "login"},
		{"profile named login", "https://www.linkedin.com/in/login-expert", "Login Expert", ""},
		{"verification title", "https://www.linkedin.com/in/x", "Security Verification | LinkedIn", "security-check"},
		{"interstitial title", "https://www.linkedin.com/in/x", "Just a moment...", "security-check"},
		{"empty", "", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := detectChallenge(tt.location, tt.title); got != tt.expected {
				t.Errorf("detectChallenge(%q, %q) = %q, want %q", tt.location, tt.title, got, tt.expected)
			}
		})
	}
}

// --- Settle Tests ---

func TestWaitFor_ReadyAfterRetries(t *testing.T) {
	calls := 0
	err := waitFor(context.Background(), time.Second, time.Millisecond, func(context.Context) (bool, error) {
		calls++
		if calls < 3 {
			return false, errors.New("execution context was destroyed")
		}
		return true, nil
	})
	if err != nil {
		t.Fatalf("waitFor() error = %v", err)
	}
	if calls != 3 {
		t.Errorf("check called %d times, want 3", calls)
	}
}

func TestWaitFor_Timeout(t *testing.T) {
	err := waitFor(context.Background(), 20*time.Millisecond, time.Millisecond, func(context.Context) (bool, error) {
		return false, errors.New("not yet")
	})
	if !errors.Is(err, ErrSettleTimeout) {
		t.Fatalf("waitFor() error = %v, want ErrSettleTimeout", err)
	}
	if !strings.Contains(err.Error(), "not yet") {
		t.Errorf("timeout error should carry the last probe error, got %v", err)
	}
}

func TestWaitFor_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := waitFor(ctx, time.Second, time.Millisecond, func(context.Context) (bool, error) {
		return false, nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("waitFor() error = %v, want context.Canceled", err)
	}
}

func TestWaitFor_StopsOnClosedSession(t *testing.T) {
	calls := 0
	err := waitFor(context.Background(), time.Second, time.Millisecond, func(context.Context) (bool, error) {
		calls++
		return false, ErrClosed
	})
	if !errors.Is(err, ErrClosed) {
		t.Errorf("waitFor() error = %v, want ErrClosed", err)
	}
	if calls != 1 {
		t.Errorf("check called %d times, want 1", calls)
	}
}

func TestSleep(t *testing.T) {
	if err := sleep(context.Background(), time.Millisecond); err != nil {
		t.Errorf("sleep() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := sleep(ctx, time.Hour); !errors.Is(err, context.Canceled) {
		t.Errorf("sleep() on cancelled ctx error = %v, want context.Canceled", err)
	}
}

// --- Session Tests ---

func TestSession_ClosedOperations(t *testing.T) {
	s := closedSession()
	ctx := context.Background()

	if _, err := s.Fetch(ctx, "https://www.linkedin.com/in/x"); !errors.Is(err, ErrClosed) {
		t.Errorf("Fetch() error = %v, want ErrClosed", err)
	}
	if _, err := s.ExpandAbout(ctx); !errors.Is(err, ErrClosed) {
		t.Errorf("ExpandAbout() error = %v, want ErrClosed", err)
	}
	err := s.Authenticate(ctx, config.Credentials{Email: "a@example.com", Password: "pw"})
	if !errors.Is(err, ErrClosed) || !errors.Is(err, ErrAuthentication) {
		t.Errorf("Authenticate() error = %v, want ErrAuthentication wrapping ErrClosed", err)
	}
}

func TestSession_AuthenticateMissingCredentials(t *testing.T) {
	s := closedSession()

	err := s.Authenticate(context.Background(), config.Credentials{Email: "a@example.com"})

	var verr *config.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Authenticate() error = %v, want *config.ValidationError", err)
	}
	if diff := cmp.Diff([]string{"credentials.password"}, verr.Fields); diff != "" {
		t.Errorf("fields mismatch (-want +got):\n%s", diff)
	}
	if errors.Is(err, ErrAuthentication) {
		t.Error("missing credentials should not be reported as an authentication failure")
	}
}

func TestHasCookie(t *testing.T) {
	cookies := []*network.Cookie{
		nil,
		{Name: "JSESSIONID", Value: "ajax:1"},
		{Name: sessionCookie, Value: ""},
	}
	if hasCookie(cookies, sessionCookie) {
		t.Error("empty session cookie should not count")
	}

	cookies = append(cookies, &network.Cookie{Name: sessionCookie, Value: "token"})
	if !hasCookie(cookies, sessionCookie) {
		t.Error("expected session cookie to be found")
	}
}

// --- Config Tests ---

func TestNewConfig(t *testing.T) {
	c := &config.Config{
		BaseURL: "http://127.0.0.1:9999",
		Browser: config.BrowserConfig{Headless: false, Stealth: true, ChromePath: "/opt/chrome", DebugDir: "shots"},
		Settle:  config.SettleConfig{Mode: config.SettleFixed, Timeout: time.Second, PageDelay: 4 * time.Second},
	}

	got := NewConfig(c)

	want := Config{
		BaseURL:    "http://127.0.0.1:9999",
		Stealth:    true,
		ChromePath: "/opt/chrome",
		UserAgent:  defaultUserAgent,
		DebugDir:   "shots",
		Settle:     config.SettleConfig{Mode: config.SettleFixed, Timeout: time.Second, PageDelay: 4 * time.Second},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestConfig_WithDefaults(t *testing.T) {
	got := Config{}.withDefaults()
	d := DefaultConfig()

	if got.BaseURL != d.BaseURL || got.UserAgent != d.UserAgent {
		t.Errorf("withDefaults() = %+v", got)
	}
	if got.Settle.Mode != config.SettlePoll || got.Settle.Timeout != d.Settle.Timeout {
		t.Errorf("settle defaults not applied: %+v", got.Settle)
	}
}

func TestFindChrome(t *testing.T) {
	lookPath := func(name string) (string, error) {
		if name == "chromium" {
			return "/usr/bin/chromium", nil
		}
		return "", errors.New("not found")
	}

	if got := findChrome([]string{"google-chrome", "chromium"}, lookPath); got != "/usr/bin/chromium" {
		t.Errorf("findChrome() = %q, want /usr/bin/chromium", got)
	}
	if got := findChrome([]string{"google-chrome"}, lookPath); got != "" {
		t.Errorf("findChrome() = %q, want empty", got)
	}
}

func TestAllocatorOptions(t *testing.T) {
	plain := allocatorOptions(Config{UserAgent: "ua"}, "")
	stealth := allocatorOptions(Config{UserAgent: "ua", Stealth: true}, "/usr/bin/chromium")

	if len(stealth) <= len(plain) {
		t.Errorf("stealth options (%d) should extend plain options (%d)", len(stealth), len(plain))
	}
}
