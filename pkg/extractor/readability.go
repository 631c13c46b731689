package extractor

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"
	"time"

	readability "codeberg.org/readeck/go-readability/v2"
)

// ReadabilityConfig configures the Readability extractor.
type ReadabilityConfig struct {
	// MaxElemsToParse limits the number of nodes to parse (0 = no limit).
	MaxElemsToParse int
	// NTopCandidates is the number of top candidates to consider (default: 5).
	NTopCandidates int
	// CharThreshold is the minimum character count for valid content (default: 500).
	CharThreshold int
}

// Readability extracts the main content of a page using go-readability,
// a port of Mozilla's Readability.js.
type Readability struct {
	parser readability.Parser
}

// NewReadability creates a new Readability extractor.
// Pass nil for default configuration.
func NewReadability(cfg *ReadabilityConfig) *Readability {
	if cfg == nil {
		cfg = &ReadabilityConfig{}
	}

	parser := readability.NewParser()
	if cfg.MaxElemsToParse > 0 {
		parser.MaxElemsToParse = cfg.MaxElemsToParse
	}
	if cfg.NTopCandidates > 0 {
		parser.NTopCandidates = cfg.NTopCandidates
	}
	if cfg.CharThreshold > 0 {
		parser.CharThresholds = cfg.CharThreshold
	}

	return &Readability{parser: parser}
}

// Extract returns the article title and body HTML.
func (r *Readability) Extract(pageHTML, pageURL string) (*Result, error) {
	start := time.Now()

	var baseURL *url.URL
	if pageURL != "" {
		if u, err := url.Parse(pageURL); err == nil {
			baseURL = u
		}
	}

	article, err := r.parser.Parse(strings.NewReader(pageHTML), baseURL)
	if err != nil {
		return nil, fmt.Errorf("readability parse: %w", err)
	}
	if article.Node == nil {
		return nil, ErrNoContent
	}

	// Drop the readability-page-N wrapper; its id matches the ad filter.
	var buf bytes.Buffer
	if err := renderChildren(&buf, article.Node); err != nil {
		return nil, fmt.Errorf("render article: %w", err)
	}
	body := strings.TrimSpace(buf.String())
	if body == "" {
		return nil, ErrNoContent
	}

	return &Result{
		Title:     strings.TrimSpace(article.Title()),
		HTML:      body,
		Extractor: r.Name(),
		Duration:  time.Since(start),
	}, nil
}

// Name returns the extractor type.
func (r *Readability) Name() string {
	return "readability"
}
