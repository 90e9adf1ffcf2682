// Package profile defines the records produced by a scrape run.
package profile

import (
	"net/url"
	"strings"
)

// DefaultBaseURL is the site profiles are scraped from.
const DefaultBaseURL = "https://www.linkedin.com"

// DefaultUsernames is the fixed input list used when no override is configured.
var DefaultUsernames = []string{
	"laxmimerit", "satyanadella", "jeffweiner08", "williamhgates", "reidhoffman",
	"shreyas", "naval", "paulg", "elonmusk", "markzuckerberg",
	"sherylsandberg", "sundarpicha", "timcook", "aaronlevie", "dharmesh",
	"brianchesky", "nathanblecharczyk", "sidkumar", "adamgrant", "simonssinek",
}

// Record is the extracted data for one username. Any field but URL may be empty.
type Record struct {
	Name     string `json:"name" yaml:"name"`
	URL      string `json:"url" yaml:"url"`
	Headline string `json:"headline" yaml:"headline"`
	About    string `json:"about" yaml:"about"`
}

// URL builds the public profile URL for username.
func URL(baseURL, username string) string {
	return strings.TrimRight(baseURL, "/") + "/in/" + url.PathEscape(username)
}

// RunResult is the ordered, append-only collection of records for one run.
// It is owned by a single goroutine and is not safe for concurrent use.
type RunResult struct {
	records []Record
}

// NewRunResult returns an empty result with room for n records.
func NewRunResult(n int) *RunResult {
	return &RunResult{records: make([]Record, 0, n)}
}

// Append adds r after all previously appended records.
func (r *RunResult) Append(rec Record) {
	r.records = append(r.records, rec)
}

// Len returns the number of records.
func (r *RunResult) Len() int {
	if r == nil {
		return 0
	}
	return len(r.records)
}

// Records returns a copy of the records in insertion order. A nil or empty
// result yields an empty, non-nil slice so it serializes as [].
func (r *RunResult) Records() []Record {
	if r == nil {
		return []Record{}
	}
	out := make([]Record, len(r.records))
	copy(out, r.records)
	return out
}
