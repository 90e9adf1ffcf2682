// Package runner drives one scrape: authenticate, visit every username in
// order, resolve each page into a record and persist the result.
package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/smithp17/AutoDialer/internal/browser"
	"github.com/smithp17/AutoDialer/internal/config"
	"github.com/smithp17/AutoDialer/internal/extract"
	"github.com/smithp17/AutoDialer/internal/logger"
	"github.com/smithp17/AutoDialer/internal/output"
	"github.com/smithp17/AutoDialer/internal/profile"
)

// ErrRunAborted marks a run that ended before visiting every username.
// Records gathered up to that point are still in the Report.
var ErrRunAborted = errors.New("run aborted")

// FetchError records a username whose page could not be retrieved. It
// contributes no record; the run continues with the next username.
type FetchError struct {
	Index    int
	Username string
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.Username, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Report summarizes one run.
type Report struct {
	Result    *profile.RunResult
	Attempted int
	Failures  []*FetchError
	Started   time.Time
	Duration  time.Duration

	// Set by Execute once the artifact is written.
	File  string
	Bytes int64
}

// Runner executes scrapes for one configuration.
type Runner struct {
	cfg      *config.Config
	open     Opener
	resolver *extract.Resolver
	pacer    *Pacer
	progress *Reporter
	log      *slog.Logger
}

// Option configures a Runner.
type Option func(*Runner)

// WithOpener replaces the browser launcher.
func WithOpener(open Opener) Option {
	return func(r *Runner) {
		r.open = open
	}
}

// WithProgress sends console progress lines to w.
func WithProgress(w io.Writer) Option {
	return func(r *Runner) {
		r.progress = NewReporter(w)
	}
}

// New returns a Runner for cfg that launches Chrome unless WithOpener is given.
func New(cfg *config.Config, opts ...Option) *Runner {
	r := &Runner{
		cfg:      cfg,
		open:     BrowserOpener(browser.NewConfig(cfg)),
		resolver: extract.NewResolver(extract.WithAboutMaxRunes(cfg.About.MaxRunes)),
		pacer:    NewPacer(cfg.Pacing.Delay),
		progress: NewReporter(nil),
		log:      logger.Component("runner"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run authenticates and visits every configured username in order.
//
// Missing credentials fail before a browser is opened. An authentication
// failure is fatal and yields no Report. Otherwise the Report is always
// returned, and the error is non-nil only if the run was aborted by
// cancellation or an unexpected panic. The browser is closed on every path.
func (r *Runner) Run(ctx context.Context) (rep *Report, err error) {
	if err := r.cfg.Credentials.Validate(); err != nil {
		return nil, err
	}

	started := time.Now()
	sess, err := r.open(ctx)
	if err != nil {
		return nil, fmt.Errorf("open browser: %w", err)
	}
	defer func() {
		if cerr := sess.Close(); cerr != nil {
			r.log.Warn("browser close failed", "error", cerr)
		}
		r.progress.Closed()
	}()

	r.progress.LoggingIn()
	if err := sess.Authenticate(ctx, r.cfg.Credentials); err != nil {
		return nil, err
	}

	rep = &Report{
		Result:  profile.NewRunResult(len(r.cfg.Usernames)),
		Started: started,
	}
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("%w: panic: %v", ErrRunAborted, p)
			r.log.Error("run aborted", "error", err, "scraped", rep.Result.Len())
		}
		rep.Duration = time.Since(started)
	}()

	err = r.scrapeAll(ctx, sess, rep)
	return rep, err
}

func (r *Runner) scrapeAll(ctx context.Context, sess Session, rep *Report) error {
	total := len(r.cfg.Usernames)
	r.progress.Starting(total)

	for i, username := range r.cfg.Usernames {
		if err := r.pacer.Wait(ctx); err != nil {
			return r.abort(err, rep)
		}

		rep.Attempted++
		r.progress.Begin(i+1, total, username)

		rec, err := r.scrapeOne(ctx, sess, username)
		r.pacer.Mark()
		if err != nil {
			if ctx.Err() != nil {
				return r.abort(ctx.Err(), rep)
			}
			ferr := &FetchError{Index: i, Username: username, Err: err}
			rep.Failures = append(rep.Failures, ferr)
			r.log.Warn("profile skipped", "username", username, "error", err)
			r.progress.Failed(username, err)
			continue
		}

		rep.Result.Append(rec)
		r.progress.Scraped(username, rec)
	}
	return nil
}

func (r *Runner) abort(cause error, rep *Report) error {
	err := fmt.Errorf("%w: %w", ErrRunAborted, cause)
	r.log.Error("run aborted", "error", err, "scraped", rep.Result.Len())
	return err
}

// scrapeOne fetches one profile and resolves it into a record.
func (r *Runner) scrapeOne(ctx context.Context, sess Session, username string) (profile.Record, error) {
	url := profile.URL(r.cfg.BaseURL, username)

	snap, err := sess.Fetch(ctx, url)
	if err != nil {
		return profile.Record{}, err
	}
	doc, err := extract.NewDocument(snap.HTML)
	if err != nil {
		return profile.Record{}, fmt.Errorf("parse %s: %w", url, err)
	}
	r.log.Debug("page parsed", "username", username, "title", doc.Title())
	return r.resolver.Resolve(ctx, url, doc, expander{s: sess}), nil
}

// Execute runs the scrape and writes the artifact. Records gathered by an
// aborted run are still written.
func (r *Runner) Execute(ctx context.Context) (*Report, error) {
	rep, err := r.Run(ctx)
	if rep == nil {
		return nil, err
	}

	format, ferr := output.ParseFormat(r.cfg.Output.Format)
	if ferr != nil {
		return rep, errors.Join(err, ferr)
	}
	n, werr := output.WriteFile(r.cfg.Output.Path, format, r.cfg.Output.Indent, rep.Result.Records())
	if werr != nil {
		return rep, errors.Join(err, werr)
	}
	rep.File = r.cfg.Output.Path
	rep.Bytes = n

	r.log.Info("run complete",
		"scraped", rep.Result.Len(),
		"attempted", rep.Attempted,
		"failures", len(rep.Failures),
		"file", rep.File,
		"size", humanize.Bytes(uint64(n)),
		"duration", rep.Duration.Round(time.Millisecond))
	r.progress.Saved(rep)
	return rep, err
}
