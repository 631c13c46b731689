package extractor

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/markusmobius/go-trafilatura"
)

// Trafilatura extracts articles with go-trafilatura. It copes with pages
// readability rejects, such as short news items and forum posts.
type Trafilatura struct {
	opts trafilatura.Options
}

// NewTrafilatura creates a trafilatura extractor. Comments are dropped;
// links, images and tables are kept for the sanitizer to deal with.
func NewTrafilatura() *Trafilatura {
	return &Trafilatura{opts: trafilatura.Options{
		ExcludeComments: true,
		IncludeLinks:    true,
		IncludeImages:   true,
		EnableFallback:  false,
	}}
}

// Extract returns the article title and body HTML.
func (t *Trafilatura) Extract(pageHTML, pageURL string) (*Result, error) {
	start := time.Now()

	opts := t.opts
	if pageURL != "" {
		if u, err := url.Parse(pageURL); err == nil {
			opts.OriginalURL = u
		}
	}

	extracted, err := trafilatura.Extract(strings.NewReader(pageHTML), opts)
	if err != nil {
		return nil, fmt.Errorf("trafilatura: %w", err)
	}
	if extracted == nil || extracted.ContentNode == nil {
		return nil, ErrNoContent
	}

	var buf bytes.Buffer
	if err := renderChildren(&buf, extracted.ContentNode); err != nil {
		return nil, fmt.Errorf("render article: %w", err)
	}
	body := strings.TrimSpace(buf.String())
	if body == "" {
		return nil, ErrNoContent
	}

	return &Result{
		Title:     strings.TrimSpace(extracted.Metadata.Title),
		HTML:      body,
		Extractor: t.Name(),
		Duration:  time.Since(start),
	}, nil
}

// Name returns the extractor type.
func (t *Trafilatura) Name() string {
	return "trafilatura"
}
