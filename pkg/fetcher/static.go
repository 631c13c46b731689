package fetcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gocolly/colly/v2"

	"github.com/jmylchreest/frogfind/internal/logger"
)

// acceptHTML asks upstreams for markup over JSON or images.
const acceptHTML = "text/html,application/xhtml+xml;q=0.9,*/*;q=0.5"

// StaticConfig holds configuration for the static fetcher.
type StaticConfig struct {
	UserAgent   string
	Timeout     time.Duration
	MaxBodySize int // bytes, 0 = colly default
}

// DefaultStaticConfig returns the defaults used for zero fields.
func DefaultStaticConfig() StaticConfig {
	return StaticConfig{
		UserAgent: defaultUserAgent,
		Timeout:   10 * time.Second,
	}
}

// StaticFetcher retrieves pages over plain HTTP with colly. Bodies are
// converted to UTF-8 whatever charset the upstream declares.
type StaticFetcher struct {
	config    StaticConfig
	transport *http.Transport
	log       *slog.Logger
}

// NewStatic creates a static fetcher, filling zero fields from
// DefaultStaticConfig.
func NewStatic(cfg StaticConfig) *StaticFetcher {
	def := DefaultStaticConfig()
	cfg.UserAgent = coalesce(cfg.UserAgent, def.UserAgent)
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	return &StaticFetcher{
		config:    cfg,
		transport: newTransport(cfg.Timeout),
		log:       logger.Component("fetcher.static"),
	}
}

// Fetch performs one GET. Non-2xx answers fail with ErrHTTPStatus, slow
// upstreams with ErrTimeout, and cancellation of ctx with ctx.Err().
func (f *StaticFetcher) Fetch(ctx context.Context, targetURL string, opts Options) (Content, error) {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = f.config.Timeout
	}

	c := colly.NewCollector(f.collectorOptions(ctx, opts)...)
	c.SetRequestTimeout(timeout)
	c.WithTransport(f.transport)

	c.OnRequest(func(r *colly.Request) {
		r.Headers.Set("Accept", acceptHTML)
		for k, v := range opts.Headers {
			r.Headers.Set(k, v)
		}
	})

	content := Content{URL: targetURL, FetchedAt: time.Now()}
	var failure error
	c.OnResponse(func(r *colly.Response) {
		content.StatusCode = r.StatusCode
		content.ContentType = r.Headers.Get("Content-Type")
		content.FinalURL = r.Request.URL.String()
		content.HTML = string(r.Body)
	})
	c.OnError(func(r *colly.Response, err error) {
		if r != nil && r.StatusCode != 0 {
			content.StatusCode = r.StatusCode
		}
		failure = err
	})

	f.log.Debug("fetching", "url", targetURL, "timeout", timeout)
	visitErr := c.Visit(targetURL)

	if err := ctx.Err(); err != nil {
		return Content{URL: targetURL, FetchedAt: content.FetchedAt}, fmt.Errorf("fetch %s: %w", targetURL, classify(err))
	}
	if err := failureOrVisit(failure, visitErr); err != nil {
		f.log.Debug("fetch failed", "url", targetURL, "status", content.StatusCode, "error", err)
		return content, fmt.Errorf("fetch %s: %w", targetURL, classify(err))
	}
	if content.StatusCode < 200 || content.StatusCode > 299 {
		f.log.Debug("upstream refused", "url", targetURL, "status", content.StatusCode)
		return content, fmt.Errorf("fetch %s: %w: %d %s",
			targetURL, ErrHTTPStatus, content.StatusCode, http.StatusText(content.StatusCode))
	}

	f.log.Debug("fetched", "url", targetURL, "final_url", content.FinalURL, "bytes", len(content.HTML))
	return content, nil
}

// collectorOptions builds a single-use collector. Error responses are
// delivered to OnResponse so the status check happens in one place.
func (f *StaticFetcher) collectorOptions(ctx context.Context, opts Options) []colly.CollectorOption {
	options := []colly.CollectorOption{
		colly.StdlibContext(ctx),
		colly.UserAgent(coalesce(opts.UserAgent, f.config.UserAgent)),
		colly.AllowURLRevisit(),
		colly.ParseHTTPErrorResponse(),
		colly.DetectCharset(),
	}
	if f.config.MaxBodySize > 0 {
		options = append(options, colly.MaxBodySize(f.config.MaxBodySize))
	}
	return options
}

// newTransport builds the connection pool shared by every collector. The
// per-call timeout is enforced by the collector's client, not here.
func newTransport(timeout time.Duration) *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   timeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout: timeout,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 4,
		IdleConnTimeout:     90 * time.Second,
	}
}

func failureOrVisit(failure, visitErr error) error {
	if failure != nil {
		return failure
	}
	return visitErr
}

// classify marks timeouts with ErrTimeout while keeping the cause.
func classify(err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return fmt.Errorf("%w: %w", ErrTimeout, err)
	}
	return err
}

// Close drops the idle upstream connections.
func (f *StaticFetcher) Close() error {
	f.transport.CloseIdleConnections()
	return nil
}

// Type returns "static".
func (f *StaticFetcher) Type() string {
	return "static"
}
