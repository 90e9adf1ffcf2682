// Package extract resolves profile fields from a rendered page snapshot.
//
// Each field is produced by a Cascade: an ordered list of independent
// strategies evaluated until one yields a non-empty value. The package never
// performs network I/O; it only reads the Document it is handed.
package extract

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Document is a parsed, immutable snapshot of a rendered page.
type Document struct {
	doc *goquery.Document
}

// NewDocument parses html into a Document.
func NewDocument(html string) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	return &Document{doc: doc}, nil
}

// Selection returns the root selection of the document.
func (d *Document) Selection() *goquery.Selection {
	return d.doc.Selection
}

// Text returns the concatenated text of the whole document.
func (d *Document) Text() string {
	return d.doc.Text()
}

// Title returns the trimmed <title> text.
func (d *Document) Title() string {
	return strings.TrimSpace(d.doc.Find("title").First().Text())
}

// VisibleText returns the document text with script, style and noscript
// content removed. The receiver is not modified.
func (d *Document) VisibleText() string {
	sel := d.doc.Selection.Clone()
	sel.Find("script, style, noscript, template").Remove()
	return sel.Text()
}
