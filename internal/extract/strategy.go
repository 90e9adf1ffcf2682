package extract

import (
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

// Strategy is one independent attempt at producing a field value. Find
// reports ok=false when it found nothing; it never sees the result of any
// other strategy.
type Strategy struct {
	Name string
	Find func(doc *Document) (string, bool)
}

// Cascade is an ordered list of strategies for one field, most specific first.
type Cascade []Strategy

// Resolve evaluates the strategies in order and returns the first non-empty
// trimmed value along with the name of the strategy that produced it. A
// strategy that panics counts as a miss. If every strategy misses, both
// return values are empty.
func (c Cascade) Resolve(doc *Document) (value, strategy string) {
	if doc == nil {
		return "", ""
	}
	for _, s := range c {
		if v, ok := attempt(s, doc); ok {
			return v, s.Name
		}
	}
	return "", ""
}

// attempt runs a single strategy, converting panics into a miss.
func attempt(s Strategy, doc *Document) (value string, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			value, ok = "", false
		}
	}()

	if s.Find == nil {
		return "", false
	}
	v, found := s.Find(doc)
	v = strings.TrimSpace(v)
	return v, found && v != ""
}

// FirstText matches the first element selected by m and returns its text.
func FirstText(name string, m goquery.Matcher) Strategy {
	return Strategy{
		Name: name,
		Find: func(doc *Document) (string, bool) {
			sel := doc.Selection().FindMatcher(m).First()
			if sel.Length() == 0 {
				return "", false
			}
			return sel.Text(), true
		},
	}
}

// FirstTextWhere returns the text of the first element selected by m whose
// trimmed text satisfies keep.
func FirstTextWhere(name string, m goquery.Matcher, keep func(text string) bool) Strategy {
	return Strategy{
		Name: name,
		Find: func(doc *Document) (string, bool) {
			var found string
			doc.Selection().FindMatcher(m).EachWithBreak(func(_ int, s *goquery.Selection) bool {
				text := strings.TrimSpace(s.Text())
				if keep(text) {
					found = text
					return false
				}
				return true
			})
			return found, found != ""
		},
	}
}

// TextAfter slices the visible document text following the first occurrence
// of marker, up to the next occurrence of marker, and keeps at most maxRunes
// runes of it. The result is imprecise and meant as a last resort.
func TextAfter(name, marker string, maxRunes int) Strategy {
	return Strategy{
		Name: name,
		Find: func(doc *Document) (string, bool) {
			text := doc.VisibleText()
			_, rest, ok := strings.Cut(text, marker)
			if !ok {
				return "", false
			}
			if next := strings.Index(rest, marker); next >= 0 {
				rest = rest[:next]
			}
			return truncateRunes(strings.TrimSpace(rest), maxRunes), true
		},
	}
}

// truncateRunes keeps the first n runes of s without splitting a rune.
func truncateRunes(s string, n int) string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
