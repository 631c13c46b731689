package sanitizer

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Document is a parsed, mutable element tree. It belongs to the call that
// produced it and must not be shared between requests.
type Document struct {
	doc *goquery.Document
}

// Parse builds a Document from HTML. Unrecognised markup degrades to text.
func Parse(content string) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return nil, err
	}
	return &Document{doc: doc}, nil
}

// empty returns a Document with an empty body.
func empty() *Document {
	d, err := Parse("")
	if err != nil {
		// Parsing an empty string cannot fail, but never hand out nil.
		return &Document{doc: goquery.NewDocumentFromNode(&html.Node{Type: html.DocumentNode})}
	}
	return d
}

// Body returns the body selection of the document.
func (d *Document) Body() *goquery.Selection {
	return d.doc.Find("body")
}

// BodyNode returns the body element, or nil for an unstructured tree.
func (d *Document) BodyNode() *html.Node {
	body := d.Body()
	if body.Length() == 0 {
		return nil
	}
	return body.Nodes[0]
}

// HTML serialises the body contents.
func (d *Document) HTML() (string, error) {
	body := d.Body()
	if body.Length() == 0 {
		return d.doc.Html()
	}
	return body.Html()
}

// Text returns the whitespace-trimmed text of the body.
func (d *Document) Text() string {
	return strings.TrimSpace(d.Body().Text())
}

// Selection exposes the full document for callers that walk it.
func (d *Document) Selection() *goquery.Selection {
	return d.doc.Selection
}
