package runner

import (
	"context"

	"github.com/smithp17/AutoDialer/internal/browser"
	"github.com/smithp17/AutoDialer/internal/config"
	"github.com/smithp17/AutoDialer/internal/extract"
)

// Session is the browser surface the runner drives. *browser.Session
// implements it.
type Session interface {
	Authenticate(ctx context.Context, creds config.Credentials) error
	Fetch(ctx context.Context, url string) (browser.Snapshot, error)
	ExpandAbout(ctx context.Context) (browser.Snapshot, error)
	Close() error
}

// Opener starts a Session.
type Opener func(ctx context.Context) (Session, error)

// BrowserOpener launches a real Chrome session configured by cfg.
func BrowserOpener(cfg browser.Config) Opener {
	return func(ctx context.Context) (Session, error) {
		s, err := browser.New(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
}

// expander adapts a Session to extract.Expander.
type expander struct {
	s Session
}

func (e expander) ExpandAbout(ctx context.Context) (*extract.Document, error) {
	snap, err := e.s.ExpandAbout(ctx)
	if err != nil {
		return nil, err
	}
	return extract.NewDocument(snap.HTML)
}
