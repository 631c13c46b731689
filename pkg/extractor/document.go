package extractor

import (
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// Document is the last-resort extractor: the page <title> and the whole
// body. Used when neither readability nor trafilatura finds an article.
type Document struct{}

// NewDocument creates a new whole-document extractor.
func NewDocument() *Document {
	return &Document{}
}

// Extract returns the page title and body contents.
func (d *Document) Extract(pageHTML, _ string) (*Result, error) {
	start := time.Now()

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(pageHTML))
	if err != nil {
		return nil, fmt.Errorf("parse page: %w", err)
	}

	title := strings.TrimSpace(doc.Find("title").First().Text())
	if title == "" {
		title = strings.TrimSpace(doc.Find("h1").First().Text())
	}

	body, err := doc.Find("body").Html()
	if err != nil {
		return nil, fmt.Errorf("serialise body: %w", err)
	}
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, ErrNoContent
	}

	return &Result{
		Title:     title,
		HTML:      body,
		Extractor: d.Name(),
		Duration:  time.Since(start),
	}, nil
}

// Name returns the extractor type.
func (d *Document) Name() string {
	return "document"
}

// Default returns the serving chain: readability, then trafilatura, then
// the whole document.
func Default() *FallbackExtractor {
	return NewFallback(NewReadability(nil), NewTrafilatura(), NewDocument())
}
