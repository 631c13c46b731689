package fetcher

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"

	"github.com/jmylchreest/frogfind/internal/logger"
)

// DynamicConfig holds configuration for the headless browser fetcher.
type DynamicConfig struct {
	UserAgent string
	Timeout   time.Duration
	// WaitDuration is added after the page is ready unless the call
	// sets its own.
	WaitDuration time.Duration
	// ChromePath overrides browser discovery.
	ChromePath string
}

// DynamicFetcher renders pages in headless Chrome for sites whose content
// only exists after JavaScript runs. One browser process is shared; each
// fetch gets its own tab.
type DynamicFetcher struct {
	config      DynamicConfig
	allocCtx    context.Context
	cancelAlloc context.CancelFunc
	log         *slog.Logger
}

// NewDynamic starts a browser allocator. Chrome itself is launched lazily
// on the first fetch.
func NewDynamic(cfg DynamicConfig) (*DynamicFetcher, error) {
	cfg.UserAgent = coalesce(cfg.UserAgent, defaultUserAgent)
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultStaticConfig().Timeout
	}

	log := logger.Component("fetcher.dynamic")
	opts := allocatorOptions(cfg)
	log.Debug("allocator ready", "chrome", coalesce(cfg.ChromePath, FindChromePath(), "default"))

	allocCtx, cancel := chromedp.NewExecAllocator(context.Background(), opts...)
	return &DynamicFetcher{
		config:      cfg,
		allocCtx:    allocCtx,
		cancelAlloc: cancel,
		log:         log,
	}, nil
}

func allocatorOptions(cfg DynamicConfig) []chromedp.ExecAllocatorOption {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent(cfg.UserAgent),
		chromedp.WindowSize(1024, 768),
	)
	if path := coalesce(cfg.ChromePath, FindChromePath()); path != "" {
		opts = append(opts, chromedp.ExecPath(path))
	}
	return opts
}

// Fetch loads targetURL in a fresh tab and returns the rendered DOM. The
// status of the top-level document is checked like the static fetcher's.
func (f *DynamicFetcher) Fetch(ctx context.Context, targetURL string, opts Options) (Content, error) {
	content := Content{URL: targetURL, FetchedAt: time.Now()}

	tabCtx, closeTab := chromedp.NewContext(f.allocCtx)
	defer closeTab()

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = f.config.Timeout
	}
	runCtx, cancel := context.WithTimeout(tabCtx, timeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	var status atomic.Int64
	var mimeType atomic.Value
	chromedp.ListenTarget(tabCtx, func(ev any) {
		if e, ok := ev.(*network.EventResponseReceived); ok && e.Type == network.ResourceTypeDocument {
			// The first document response is the page itself; frames follow.
			if status.CompareAndSwap(0, e.Response.Status) {
				mimeType.Store(e.Response.MimeType)
			}
		}
	})

	var html, location string
	if err := chromedp.Run(runCtx, f.actions(targetURL, opts, &html, &location)...); err != nil {
		f.log.Debug("browser fetch failed", "url", targetURL, "error", err)
		if ctx.Err() != nil {
			return content, fmt.Errorf("fetch %s: %w", targetURL, ctx.Err())
		}
		if runCtx.Err() != nil {
			return content, fmt.Errorf("fetch %s: %w: %w", targetURL, ErrTimeout, err)
		}
		return content, fmt.Errorf("fetch %s: browser automation failed: %w", targetURL, err)
	}

	content.HTML = html
	content.FinalURL = location
	content.StatusCode = int(status.Load())
	content.ContentType = "text/html"
	if mt, ok := mimeType.Load().(string); ok && mt != "" {
		content.ContentType = mt
	}
	if content.StatusCode == 0 {
		// No document response seen, e.g. served from the browser cache.
		content.StatusCode = http.StatusOK
	}
	if content.StatusCode < 200 || content.StatusCode > 299 {
		return content, fmt.Errorf("fetch %s: %w: %d %s",
			targetURL, ErrHTTPStatus, content.StatusCode, http.StatusText(content.StatusCode))
	}

	f.log.Debug("fetched", "url", targetURL, "final_url", location, "bytes", len(html))
	return content, nil
}

func (f *DynamicFetcher) actions(targetURL string, opts Options, html, location *string) []chromedp.Action {
	actions := []chromedp.Action{network.Enable()}
	if opts.UserAgent != "" {
		actions = append(actions, emulation.SetUserAgentOverride(opts.UserAgent))
	}
	if len(opts.Headers) > 0 {
		headers := make(network.Headers, len(opts.Headers))
		for k, v := range opts.Headers {
			headers[k] = v
		}
		actions = append(actions, network.SetExtraHTTPHeaders(headers))
	}

	actions = append(actions,
		chromedp.Navigate(targetURL),
		chromedp.WaitReady(coalesce(opts.WaitForSelector, "body")),
	)
	wait := opts.WaitDuration
	if wait <= 0 {
		wait = f.config.WaitDuration
	}
	if wait > 0 {
		actions = append(actions, chromedp.Sleep(wait))
	}
	return append(actions,
		chromedp.OuterHTML("html", html),
		chromedp.Location(location),
	)
}

// Close shuts the browser down.
func (f *DynamicFetcher) Close() error {
	if f.cancelAlloc != nil {
		f.cancelAlloc()
	}
	return nil
}

// Type returns "dynamic".
func (f *DynamicFetcher) Type() string {
	return "dynamic"
}
