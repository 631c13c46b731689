// Package search queries the DuckDuckGo HTML endpoint and scrapes its
// result list.
package search

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/jmylchreest/frogfind/internal/logger"
	"github.com/jmylchreest/frogfind/internal/metrics"
	"github.com/jmylchreest/frogfind/pkg/fetcher"
)

// ErrBackend indicates the search backend could not be reached or answered
// with an error.
var ErrBackend = errors.New("search backend failed")

// Defaults for the search backend.
const (
	DefaultEndpoint  = "https://html.duckduckgo.com/html/"
	DefaultUserAgent = "Mozilla/5.0 (compatible; FrogFind/1.0)"
	DefaultTimeout   = 10 * time.Second
)

// Result is one scraped search hit.
type Result struct {
	Title   string `json:"title" yaml:"title"`
	Snippet string `json:"snippet" yaml:"snippet"`
	// URL is the real target, unwrapped from the backend's redirect link.
	URL string `json:"url" yaml:"url"`
}

// Config holds search client settings.
type Config struct {
	Endpoint  string
	UserAgent string
	Timeout   time.Duration
}

// Client runs searches through a Fetcher. Results are never cached.
type Client struct {
	fetcher fetcher.Fetcher
	config  Config
}

// New creates a search client. Zero config fields take the defaults.
func New(f fetcher.Fetcher, cfg Config) *Client {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Client{fetcher: f, config: cfg}
}

// Search returns the results for query in backend order. Hits missing a
// title, snippet or target URL are skipped.
func (c *Client) Search(ctx context.Context, query string) ([]Result, error) {
	start := time.Now()
	searchURL := c.config.Endpoint + "?q=" + url.QueryEscape(query)

	content, err := c.fetcher.Fetch(ctx, searchURL, fetcher.Options{
		UserAgent: c.config.UserAgent,
		Timeout:   c.config.Timeout,
	})
	if err != nil {
		metrics.ObserveSearch("error")
		return nil, fmt.Errorf("%w: %w", ErrBackend, err)
	}

	results, err := Parse(content.HTML)
	if err != nil {
		metrics.ObserveSearch("error")
		return nil, fmt.Errorf("%w: %w", ErrBackend, err)
	}

	metrics.ObserveSearch("ok")
	logger.Info("search complete",
		"query", query,
		"results", len(results),
		"duration", time.Since(start))
	return results, nil
}

// Parse scrapes results from a backend result page.
func Parse(page string) ([]Result, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("parse result page: %w", err)
	}

	var results []Result
	doc.Find("div.result").Each(func(_ int, sel *goquery.Selection) {
		title := strings.TrimSpace(sel.Find("h2.result__title a").First().Text())
		snippet := strings.TrimSpace(sel.Find("a.result__snippet, a.result__snippet--video").First().Text())
		href, _ := sel.Find("a.result__url").First().Attr("href")
		target := unwrap(href)
		if title == "" || snippet == "" || target == "" {
			return
		}
		results = append(results, Result{Title: title, Snippet: snippet, URL: target})
	})
	return results, nil
}

// unwrap extracts the destination from a redirect link's uddg parameter.
func unwrap(href string) string {
	if href == "" {
		return ""
	}
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return u.Query().Get("uddg")
}
