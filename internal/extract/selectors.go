package extract

import "github.com/andybalholm/cascadia"

// Profile page selectors. These track the site's markup and break when it
// changes; inspect a rendered /in/<username> page to update them.
const (
	SelectorNameHeading = `h1[class*="text-heading-xlarge"]`
	SelectorAnyHeading  = `h1`
	SelectorHiddenName  = `span.visually-hidden`

	SelectorHeadlineBody      = `div[class*="text-body-medium"]`
	SelectorHeadlineBreakWord = `div[class*="break-words"]`
	SelectorAnyDiv            = `div`

	SelectorAboutFlex    = `div[class*="display-flex"][class*="ph5"]`
	SelectorAboutSection = `div[id="about"]`
)

// AboutMarker is the heading text the last-resort about strategy slices after.
const AboutMarker = "About"

var (
	matchNameHeading   = cascadia.MustCompile(SelectorNameHeading)
	matchAnyHeading    = cascadia.MustCompile(SelectorAnyHeading)
	matchHiddenName    = cascadia.MustCompile(SelectorHiddenName)
	matchHeadlineBody  = cascadia.MustCompile(SelectorHeadlineBody)
	matchHeadlineBreak = cascadia.MustCompile(SelectorHeadlineBreakWord)
	matchAnyDiv        = cascadia.MustCompile(SelectorAnyDiv)
	matchAboutFlex     = cascadia.MustCompile(SelectorAboutFlex)
	matchAboutSection  = cascadia.MustCompile(SelectorAboutSection)
)
