package runner

import (
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/smithp17/AutoDialer/internal/profile"
)

// headlinePreview is how much of a headline the progress line shows.
const headlinePreview = 80

// Reporter prints human-facing progress lines. It is separate from the
// structured log and is silent when constructed with a nil writer.
type Reporter struct {
	w io.Writer
}

// NewReporter returns a Reporter writing to w.
func NewReporter(w io.Writer) *Reporter {
	if w == nil {
		w = io.Discard
	}
	return &Reporter{w: w}
}

func (p *Reporter) LoggingIn() {
	fmt.Fprintln(p.w, "Logging in...")
}

func (p *Reporter) Starting(total int) {
	fmt.Fprintf(p.w, "Starting to scrape %d profiles...\n\n", total)
}

func (p *Reporter) Begin(index, total int, username string) {
	fmt.Fprintf(p.w, "[%d/%d] Scraping profile: %s\n", index, total, username)
}

func (p *Reporter) Scraped(username string, rec profile.Record) {
	fmt.Fprintf(p.w, "  Name: %s\n", orNA(rec.Name))
	fmt.Fprintf(p.w, "  Headline: %s\n", preview(orNA(rec.Headline), headlinePreview))
	fmt.Fprintf(p.w, "  Successfully scraped: %s\n\n", username)
}

func (p *Reporter) Failed(username string, err error) {
	fmt.Fprintf(p.w, "  Error scraping %s: %v\n\n", username, err)
}

func (p *Reporter) Saved(rep *Report) {
	fmt.Fprintf(p.w, "\nTotal profiles scraped: %d\n", rep.Result.Len())
	fmt.Fprintf(p.w, "Data saved to %s\n", rep.File)
}

func (p *Reporter) Closed() {
	fmt.Fprintln(p.w, "Browser closed")
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

// preview cuts s to n runes and marks the cut with an ellipsis.
func preview(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "..."
}
