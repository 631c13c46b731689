// Package article fetches, extracts, sanitises and renders single pages,
// caching the result per URL, tier and persisted params.
package article

import (
	"context"
	"errors"
	"fmt"
	"html"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/jmylchreest/frogfind/internal/logger"
	"github.com/jmylchreest/frogfind/internal/metrics"
	"github.com/jmylchreest/frogfind/pkg/compat"
	"github.com/jmylchreest/frogfind/pkg/extractor"
	"github.com/jmylchreest/frogfind/pkg/fetcher"
	"github.com/jmylchreest/frogfind/pkg/render"
	"github.com/jmylchreest/frogfind/pkg/sanitizer"
)

// Article is a rendered page, ready for composition. It is the cache's
// unit of storage and is never modified after creation.
type Article struct {
	Title string
	// Body is a markup fragment in the tier's dialect.
	Body    string
	IsError bool
}

// ErrorTitle is the title of articles describing a failed fetch.
const ErrorTitle = "Error"

// Defaults for the article pipeline.
const (
	DefaultTTL       = 15 * time.Minute
	DefaultTimeout   = 10 * time.Second
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64)"
)

// Options configures the outbound fetch.
type Options struct {
	UserAgent string
	Timeout   time.Duration
}

// Service runs the fetch -> extract -> sanitise -> render pipeline behind
// a cache. Failed fetches are cached like successes so a broken upstream is
// not hit again within the TTL.
type Service struct {
	cache     *Cache
	fetcher   fetcher.Fetcher
	extractor extractor.Extractor
	sanitizer *sanitizer.Sanitizer
	opts      Options
	group     singleflight.Group
}

// NewService wires the pipeline. A nil sanitizer uses the default rules.
func NewService(cache *Cache, f fetcher.Fetcher, ext extractor.Extractor, san *sanitizer.Sanitizer, opts Options) *Service {
	if san == nil {
		san = sanitizer.New(nil)
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.Timeout == 0 {
		opts.Timeout = DefaultTimeout
	}
	return &Service{
		cache:     cache,
		fetcher:   f,
		extractor: ext,
		sanitizer: san,
		opts:      opts,
	}
}

// Cache returns the cache backing the service.
func (s *Service) Cache() *Cache {
	return s.cache
}

// FetchAndRender returns the article for rawURL rendered for tier, from the
// cache when a fresh entry exists. Concurrent misses for the same key share
// a single upstream fetch. It never fails: errors become error articles.
func (s *Service) FetchAndRender(ctx context.Context, rawURL string, tier compat.Tier, params compat.Params) Article {
	key := NewKey(rawURL, tier, params)
	if a, ok := s.cache.Get(key); ok {
		metrics.ObserveCache("hit")
		logger.Debug("article cache hit", "key", key.String())
		return a
	}
	metrics.ObserveCache("miss")

	v, _, shared := s.group.Do(key.String(), func() (any, error) {
		if a, ok := s.cache.Get(key); ok {
			return a, nil
		}
		a := s.build(ctx, rawURL, tier, params)
		s.cache.Set(key, a)
		metrics.ObserveCacheSize(s.cache.Len())
		return a, nil
	})
	if shared {
		metrics.ObserveCache("shared")
	}
	return v.(Article)
}

// build runs the uncached pipeline.
func (s *Service) build(ctx context.Context, rawURL string, tier compat.Tier, params compat.Params) Article {
	start := time.Now()

	// The fetch is shared between waiting requests, so one client going
	// away must not fail it for the others.
	fetchCtx := context.WithoutCancel(ctx)
	content, err := s.fetcher.Fetch(fetchCtx, rawURL, fetcher.Options{
		UserAgent: s.opts.UserAgent,
		Timeout:   s.opts.Timeout,
	})
	if err != nil {
		metrics.ObserveFetch(fetchStatus(err), time.Since(start))
		logger.Warn("article fetch failed", "url", rawURL, "error", err)
		return s.errorArticle(fmt.Sprintf("Could not load %s: %v", rawURL, err), tier, params)
	}

	extracted, err := s.extractor.Extract(content.HTML, content.BaseURL())
	if err != nil {
		metrics.ObserveFetch("unreadable", time.Since(start))
		logger.Warn("article extraction failed", "url", rawURL, "error", err)
		return s.errorArticle(fmt.Sprintf("No readable content found at %s.", rawURL), tier, params)
	}

	result := s.sanitizer.Sanitize(extracted.HTML, content.BaseURL(), tier, params)
	for _, w := range result.Warnings {
		logger.Debug("sanitize warning", "url", rawURL, "warning", w.String())
	}
	body, err := render.Render(result.Document, tier)
	if err != nil {
		metrics.ObserveFetch("render_error", time.Since(start))
		logger.Error("article render failed", "url", rawURL, "error", err)
		return s.errorArticle(fmt.Sprintf("Could not render %s.", rawURL), tier, params)
	}

	title := extracted.Title
	if title == "" {
		title = content.BaseURL()
	}

	metrics.ObserveFetch("ok", time.Since(start))
	logger.Info("article rendered",
		"url", rawURL,
		"final_url", content.BaseURL(),
		"tier", tier.String(),
		"extractor", extracted.Extractor,
		"duration", time.Since(start))

	return Article{Title: title, Body: body}
}

// errorArticle renders message in the tier's dialect.
func (s *Service) errorArticle(message string, tier compat.Tier, params compat.Params) Article {
	fragment := "<p>" + html.EscapeString(message) + "</p>"
	result := s.sanitizer.Sanitize(fragment, "", tier, params)
	body, err := render.Render(result.Document, tier)
	if err != nil {
		body = fragment
	}
	return Article{Title: ErrorTitle, Body: body, IsError: true}
}

func fetchStatus(err error) string {
	switch {
	case errors.Is(err, fetcher.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, fetcher.ErrHTTPStatus):
		return "http_error"
	}
	return "error"
}
