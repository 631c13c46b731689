// Package fetcher defines the interface for retrieving upstream pages.
package fetcher

import (
	"context"
	"errors"
	"time"
)

// Fetcher abstracts page fetching strategies.
type Fetcher interface {
	// Fetch retrieves page content from a URL.
	Fetch(ctx context.Context, url string, opts Options) (Content, error)

	// Close releases any resources (browser instances, etc.).
	Close() error

	// Type returns a string identifying the fetcher type (e.g., "static", "dynamic").
	Type() string
}

// Options controls fetching behavior. Zero values fall back to the
// fetcher's configuration.
type Options struct {
	UserAgent       string
	Timeout         time.Duration
	WaitForSelector string        // CSS selector to wait for (dynamic fetchers)
	WaitDuration    time.Duration // Additional wait after load
	Headers         map[string]string
}

// Content represents fetched page data.
type Content struct {
	// URL is the requested URL.
	URL string
	// FinalURL is the URL after redirects; relative links resolve against it.
	FinalURL    string
	HTML        string
	StatusCode  int
	ContentType string
	FetchedAt   time.Time
}

// BaseURL returns the URL relative references should resolve against.
func (c Content) BaseURL() string {
	if c.FinalURL != "" {
		return c.FinalURL
	}
	return c.URL
}

// Error types for distinguishing failure reasons.
var (
	// ErrHTTPStatus indicates the upstream answered with a non-2xx status.
	ErrHTTPStatus = errors.New("unexpected HTTP status")
	// ErrTimeout indicates the fetch did not complete in time.
	ErrTimeout = errors.New("fetch timed out")
)

// Chrome user agent for better compatibility
const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64)"

// coalesce returns the first non-empty string.
func coalesce(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
