// Package extractor reduces a full web page to its article: a title and a
// simplified body fragment.
package extractor

import (
	"bytes"
	"errors"
	"strings"
	"time"

	"golang.org/x/net/html"
)

// ErrNoContent is returned when an extractor finds nothing readable.
var ErrNoContent = errors.New("no readable content")

// Extractor extracts the main article from raw page HTML.
type Extractor interface {
	// Extract reduces pageHTML to an article. pageURL resolves relative
	// references and may be empty.
	Extract(pageHTML, pageURL string) (*Result, error)

	// Name returns the extractor identifier.
	Name() string
}

// Result holds the extraction output.
type Result struct {
	// Title is the best-effort article title.
	Title string

	// HTML is the article body fragment.
	HTML string

	// Extractor is the name of the extractor that produced the result.
	Extractor string

	// Duration is the total time spent extracting.
	Duration time.Duration
}

// renderChildren writes n without the wrappers extractors put around the
// content they keep: a <body>, or readability's
// <div id="readability-page-N" class="page">. Wrappers are unwrapped
// recursively; anything else is rendered as is.
func renderChildren(buf *bytes.Buffer, n *html.Node) error {
	if !isWrapper(n) {
		return html.Render(buf, n)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if err := renderChildren(buf, c); err != nil {
			return err
		}
	}
	return nil
}

func isWrapper(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	switch n.Data {
	case "body":
		return true
	case "div":
		for _, a := range n.Attr {
			if a.Key == "id" {
				return strings.HasPrefix(a.Val, "readability-page-")
			}
		}
	}
	return false
}
