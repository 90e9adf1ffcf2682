package extract

import (
	"context"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/smithp17/AutoDialer/internal/logger"
	"github.com/smithp17/AutoDialer/internal/profile"
)

// DefaultAboutMaxRunes bounds the last-resort about slice.
const DefaultAboutMaxRunes = 500

// Expander triggers expansion of truncated about text on the live page and
// returns a fresh snapshot. An error means the control was unavailable.
type Expander interface {
	ExpandAbout(ctx context.Context) (*Document, error)
}

// Resolver turns a page snapshot into a profile.Record.
type Resolver struct {
	name     Cascade
	headline Cascade
	about    Cascade
	log      *slog.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithAboutMaxRunes sets the bound of the last-resort about slice.
func WithAboutMaxRunes(n int) Option {
	return func(r *Resolver) {
		r.about = AboutCascade(n)
	}
}

// WithLogger sets the logger used for per-field debug output.
func WithLogger(l *slog.Logger) Option {
	return func(r *Resolver) {
		r.log = l
	}
}

// NewResolver returns a Resolver with the default cascades.
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{
		name:     NameCascade(),
		headline: HeadlineCascade(),
		about:    AboutCascade(DefaultAboutMaxRunes),
		log:      logger.Component("extract"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// NameCascade returns the strategies for the display name.
func NameCascade() Cascade {
	return Cascade{
		FirstText("heading-xlarge", matchNameHeading),
		FirstText("first-h1", matchAnyHeading),
		FirstText("visually-hidden-span", matchHiddenName),
	}
}

// HeadlineCascade returns the strategies for the headline.
func HeadlineCascade() Cascade {
	return Cascade{
		FirstText("text-body-medium", matchHeadlineBody),
		FirstText("break-words", matchHeadlineBreak),
		FirstTextWhere("headline-sized-div", matchAnyDiv, looksLikeHeadline),
	}
}

// AboutCascade returns the strategies for the about section.
func AboutCascade(maxRunes int) Cascade {
	return Cascade{
		FirstText("display-flex-ph5", matchAboutFlex),
		FirstText("about-section", matchAboutSection),
		TextAfter("about-marker-slice", AboutMarker, maxRunes),
	}
}

// looksLikeHeadline accepts short single-purpose text that is not an address.
func looksLikeHeadline(text string) bool {
	n := utf8.RuneCountInString(text)
	return n > 10 && n < 200 && !strings.ContainsRune(text, '@')
}

// Resolve extracts every field from doc. It never fails: fields no strategy
// could produce are empty. If exp is non-nil it is asked to expand the about
// text first; when that fails the original doc is used for about as well.
func (r *Resolver) Resolve(ctx context.Context, url string, doc *Document, exp Expander) profile.Record {
	rec := profile.Record{URL: url}
	rec.Name = r.field("name", r.name, doc)
	rec.Headline = r.field("headline", r.headline, doc)
	rec.About = r.field("about", r.about, r.expanded(ctx, doc, exp))
	return rec
}

func (r *Resolver) field(field string, c Cascade, doc *Document) string {
	value, strategy := c.Resolve(doc)
	if strategy == "" {
		r.log.Debug("no strategy matched", "field", field)
		return ""
	}
	r.log.Debug("field resolved", "field", field, "strategy", strategy, "length", len(value))
	return value
}

// expanded returns the post-expansion snapshot, or doc if expansion is
// unavailable for any reason.
func (r *Resolver) expanded(ctx context.Context, doc *Document, exp Expander) (out *Document) {
	if exp == nil {
		return doc
	}
	defer func() {
		if rec := recover(); rec != nil {
			r.log.Debug("about expansion panicked", "panic", rec)
			out = doc
		}
	}()

	expandedDoc, err := exp.ExpandAbout(ctx)
	if err != nil || expandedDoc == nil {
		r.log.Debug("about expansion unavailable", "error", err)
		return doc
	}
	return expandedDoc
}
