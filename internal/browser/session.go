package browser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"sync/atomic"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/smithp17/AutoDialer/internal/logger"
)

// Snapshot is the rendered state of the current page.
type Snapshot struct {
	URL   string // location after redirects
	Title string
	HTML  string
}

// Session owns one Chrome instance and its single tab. A Session is not safe
// for concurrent use; callers visit pages one at a time.
type Session struct {
	cfg Config
	log *slog.Logger

	allocCtx      context.Context
	cancelAlloc   context.CancelFunc
	browserCtx    context.Context
	cancelBrowser context.CancelFunc

	closed    atomic.Bool
	closeOnce sync.Once
	closeErr  error
}

// New launches Chrome and returns a ready Session. The browser lives until
// Close, independent of ctx, which only bounds the launch.
func New(ctx context.Context, cfg Config) (*Session, error) {
	cfg = cfg.withDefaults()
	log := logger.Component("browser")

	chromePath := cfg.ChromePath
	if chromePath == "" {
		chromePath = FindChromePath()
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), allocatorOptions(cfg, chromePath)...)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(func(format string, args ...any) {
			log.Debug("chromedp", "msg", fmt.Sprintf(format, args...))
		}),
	)

	s := &Session{
		cfg:           cfg,
		log:           log,
		allocCtx:      allocCtx,
		cancelAlloc:   cancelAlloc,
		browserCtx:    browserCtx,
		cancelBrowser: cancelBrowser,
	}

	actions := []chromedp.Action{}
	if cfg.Stealth {
		actions = append(actions, injectStealthScript())
	}
	if err := s.run(ctx, cfg.Settle.Timeout, actions...); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("launch browser: %w", err)
	}

	log.Debug("browser session started",
		"headless", cfg.Headless,
		"stealth", cfg.Stealth,
		"settle", cfg.Settle.Mode,
		"chrome", chromePath)
	return s, nil
}

// run executes actions in the session's tab, bounded by timeout and by the
// caller's ctx.
func (s *Session) run(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	if s.closed.Load() {
		return ErrClosed
	}
	runCtx, cancel := context.WithTimeout(s.browserCtx, timeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	err := chromedp.Run(runCtx, actions...)
	if err != nil && ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

// Fetch navigates to url, waits for the page to settle and returns its
// rendered HTML. Landing on a checkpoint, authwall or login page instead
// yields ErrChallenge.
func (s *Session) Fetch(ctx context.Context, url string) (Snapshot, error) {
	s.log.Debug("navigating", "url", url)

	if err := s.run(ctx, s.cfg.Settle.Timeout, chromedp.Navigate(url)); err != nil {
		s.saveDebugScreenshot(url)
		return Snapshot{}, fmt.Errorf("navigate %s: %w", url, err)
	}
	if err := s.settle(ctx, pageReadyJS, s.cfg.Settle.PageDelay); err != nil {
		s.saveDebugScreenshot(url)
		return Snapshot{}, fmt.Errorf("load %s: %w", url, err)
	}

	snap, err := s.snapshot(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("read %s: %w", url, err)
	}
	if kind := detectChallenge(snap.URL, snap.Title); kind != "" {
		s.log.Warn("challenge page detected", "url", url, "location", snap.URL, "type", kind)
		s.saveDebugScreenshot(url)
		return snap, fmt.Errorf("%w: %s at %s", ErrChallenge, kind, snap.URL)
	}

	s.log.Debug("page loaded", "url", url, "title", snap.Title, "html_size", len(snap.HTML))
	return snap, nil
}

// ExpandAbout clicks the about section's show-more control on the current
// page, waits for the text to expand and returns a fresh snapshot.
func (s *Session) ExpandAbout(ctx context.Context) (Snapshot, error) {
	var clicked bool
	if err := s.run(ctx, s.cfg.Settle.Timeout, chromedp.Evaluate(clickShowMoreJS, &clicked)); err != nil {
		return Snapshot{}, fmt.Errorf("expand about: %w", err)
	}
	if !clicked {
		return Snapshot{}, ErrNoExpandControl
	}
	if err := s.settle(ctx, aboutExpandedJS, s.cfg.Settle.ExpandDelay); err != nil {
		return Snapshot{}, fmt.Errorf("expand about: %w", err)
	}
	return s.snapshot(ctx)
}

func (s *Session) snapshot(ctx context.Context) (Snapshot, error) {
	var snap Snapshot
	err := s.run(ctx, s.cfg.Settle.Timeout,
		chromedp.Location(&snap.URL),
		chromedp.Title(&snap.Title),
		chromedp.OuterHTML("html", &snap.HTML, chromedp.ByQuery),
	)
	return snap, err
}

// Close shuts the browser down. It is safe to call more than once; only the
// first call does any work.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		s.closed.Store(true)
		if err := chromedp.Cancel(s.browserCtx); err != nil && !errors.Is(err, context.Canceled) {
			s.closeErr = fmt.Errorf("close browser: %w", err)
		}
		s.cancelBrowser()
		s.cancelAlloc()
		s.log.Debug("browser session closed")
	})
	return s.closeErr
}

var unsafeFileChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// saveDebugScreenshot writes the current viewport to DebugDir, if set.
func (s *Session) saveDebugScreenshot(url string) {
	if s.cfg.DebugDir == "" || s.closed.Load() {
		return
	}
	buf := captureScreenshot(s.browserCtx)
	if buf == nil {
		return
	}
	if err := os.MkdirAll(s.cfg.DebugDir, 0o755); err != nil {
		s.log.Debug("debug screenshot skipped", "error", err)
		return
	}
	name := fmt.Sprintf("%s-%d.png", unsafeFileChars.ReplaceAllString(url, "_"), time.Now().UnixNano())
	path := filepath.Join(s.cfg.DebugDir, name)
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		s.log.Debug("debug screenshot skipped", "error", err)
		return
	}
	s.log.Debug("debug screenshot saved", "path", path)
}
