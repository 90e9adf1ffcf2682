package browser

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/smithp17/AutoDialer/internal/config"
)

const pollInterval = 250 * time.Millisecond

// showMoreSelector is the control that expands truncated about text.
const showMoreSelector = `.inline-show-more-text__button`

// Readiness probes evaluated in the page. Each returns a boolean.
const (
	loginFormReadyJS = `document.readyState === 'complete' && !!document.querySelector('#username') && !!document.querySelector('#password')`

	pageReadyJS = `document.readyState === 'complete' && !!document.querySelector('main, h1')`

	clickShowMoreJS = `(() => {
  const b = document.querySelector('` + showMoreSelector + `');
  if (!b) return false;
  b.click();
  return true;
})()`

	aboutExpandedJS = `(() => {
  const b = document.querySelector('` + showMoreSelector + `');
  return !b || b.getAttribute('aria-expanded') === 'true';
})()`
)

// settle waits for the page after a navigation or interaction. In fixed
// mode it sleeps delay; in poll mode it evaluates probe until it is true.
func (s *Session) settle(ctx context.Context, probe string, delay time.Duration) error {
	if s.cfg.Settle.Mode == config.SettleFixed {
		return sleep(ctx, delay)
	}
	return waitFor(ctx, s.cfg.Settle.Timeout, pollInterval, func(ctx context.Context) (bool, error) {
		var ok bool
		err := s.run(ctx, 4*pollInterval, chromedp.Evaluate(probe, &ok))
		return ok, err
	})
}

// waitFor polls check every interval until it reports true, ctx is done or
// timeout elapses. Errors from check count as "not yet": pages mid-navigation
// routinely reject evaluation. The last such error is reported on timeout.
func waitFor(ctx context.Context, timeout, interval time.Duration, check func(context.Context) (bool, error)) error {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var lastErr error
	for {
		ok, err := check(ctx)
		switch {
		case err == nil && ok:
			return nil
		case errors.Is(err, ErrClosed):
			return err
		case err != nil:
			lastErr = err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-deadline.C:
			if lastErr != nil {
				return fmt.Errorf("%w after %s: %v", ErrSettleTimeout, timeout, lastErr)
			}
			return fmt.Errorf("%w after %s", ErrSettleTimeout, timeout)
		case <-ticker.C:
		}
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
