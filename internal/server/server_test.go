package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jmylchreest/frogfind/internal/config"
	"github.com/jmylchreest/frogfind/pkg/article"
	"github.com/jmylchreest/frogfind/pkg/extractor"
	"github.com/jmylchreest/frogfind/pkg/fetcher"
	"github.com/jmylchreest/frogfind/pkg/search"
)

// countingFetcher records fetches and fails or serves a fixed page.
type countingFetcher struct {
	calls atomic.Int32
	html  string
	err   error
}

func (f *countingFetcher) Fetch(_ context.Context, u string, _ fetcher.Options) (fetcher.Content, error) {
	f.calls.Add(1)
	if f.err != nil {
		return fetcher.Content{URL: u}, f.err
	}
	return fetcher.Content{URL: u, FinalURL: u, HTML: f.html, StatusCode: http.StatusOK}, nil
}

func (f *countingFetcher) Close() error { return nil }
func (f *countingFetcher) Type() string { return "counting" }

type fakeSearcher struct {
	results []search.Result
	err     error
	queries []string
}

func (f *fakeSearcher) Search(_ context.Context, query string) ([]search.Result, error) {
	f.queries = append(f.queries, query)
	return f.results, f.err
}

func newTestServer(f fetcher.Fetcher, s Searcher) *Server {
	svc := article.NewService(article.NewCache(article.DefaultTTL, 0), f, extractor.NewDocument(), nil, article.Options{})
	return New(svc, s)
}

func do(t *testing.T, srv *Server, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func TestRead_MissingURL(t *testing.T) {
	f := &countingFetcher{}
	srv := newTestServer(f, &fakeSearcher{})

	for _, req := range []*http.Request{
		httptest.NewRequest(http.MethodGet, "/read", nil),
		httptest.NewRequest(http.MethodGet, "/read?mode=retro", nil),
		postForm("/read", url.Values{"mode": {"wap"}}),
	} {
		rec := do(t, srv, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s %s: status = %d, want 400", req.Method, req.URL, rec.Code)
		}
	}
	if got := f.calls.Load(); got != 0 {
		t.Errorf("fetch calls = %d, want 0", got)
	}
}

func TestRead_FetchTimeoutRendersErrorPage(t *testing.T) {
	f := &countingFetcher{err: fmt.Errorf("fetch https://slow.example/: %w", fetcher.ErrTimeout)}
	srv := newTestServer(f, &fakeSearcher{})

	rec := do(t, srv, httptest.NewRequest(http.MethodGet, "/read?url=https%3A%2F%2Fslow.example%2F", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Could not load https://slow.example/") {
		t.Errorf("error message not embedded: %s", body)
	}
	if !strings.Contains(body, "<h1>Error</h1>") {
		t.Errorf("missing error title: %s", body)
	}
}

func TestRead_Article(t *testing.T) {
	f := &countingFetcher{html: `<html><head><title>Frogs</title></head><body><p>Frogs <a href="/ponds">live</a> here.</p></body></html>`}
	srv := newTestServer(f, &fakeSearcher{})

	req := httptest.NewRequest(http.MethodGet, "/read?url=https%3A%2F%2Ffrogs.example%2F&dark=1", nil)
	rec := do(t, srv, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/html; charset=utf-8" {
		t.Errorf("Content-Type = %q", ct)
	}
	body := rec.Body.String()
	for _, want := range []string{
		"<title>Frogs</title>",
		"Dark mode active",
		`href="/?dark=1"`,
		`/read?url=https%3A%2F%2Ffrogs.example%2Fponds&amp;dark=1`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q:\n%s", want, body)
		}
	}

	// Served from cache the second time.
	do(t, srv, httptest.NewRequest(http.MethodGet, "/read?url=https%3A%2F%2Ffrogs.example%2F&dark=1", nil))
	if got := f.calls.Load(); got != 1 {
		t.Errorf("fetch calls = %d, want 1", got)
	}
}

func TestRead_PostFormWAP(t *testing.T) {
	f := &countingFetcher{html: `<html><body><h1>Hi</h1><p>Body</p></body></html>`}
	srv := newTestServer(f, &fakeSearcher{})

	req := postForm("/read", url.Values{"url": {"https://wap.example/"}, "mode": {"wap"}})
	rec := do(t, srv, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/vnd.wap.wml" {
		t.Errorf("Content-Type = %q", ct)
	}
	body := rec.Body.String()
	if !strings.HasPrefix(body, "<?xml") || !strings.Contains(body, `<card id="main"`) {
		t.Errorf("not a WML deck: %s", body)
	}
	if !strings.Contains(body, "<p>Body</p>") {
		t.Errorf("content missing: %s", body)
	}
}

func TestRead_UltraRetroUserAgent(t *testing.T) {
	f := &countingFetcher{html: `<html><body><p>A <img src="c.png" alt="cat"> here</p></body></html>`}
	srv := newTestServer(f, &fakeSearcher{})

	req := httptest.NewRequest(http.MethodGet, "/read?url=https%3A%2F%2Fcats.example%2F", nil)
	req.Header.Set("User-Agent", "Mozilla/4.0 (compatible; MSIE 3.0; Windows 95)")
	body := do(t, srv, req).Body.String()
	if !strings.Contains(body, "[Image: cat]") {
		t.Errorf("image placeholder missing: %s", body)
	}
	if strings.Contains(body, "<style>") {
		t.Error("ultra retro pages must not carry a stylesheet")
	}
}

func TestSearch(t *testing.T) {
	searcher := &fakeSearcher{results: []search.Result{
		{Title: "Frog", Snippet: "Amphibian.", URL: "https://en.example/frog"},
	}}
	srv := newTestServer(&countingFetcher{}, searcher)

	rec := do(t, srv, httptest.NewRequest(http.MethodGet, "/search?q=frog&mode=retro", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if len(searcher.queries) != 1 || searcher.queries[0] != "frog" {
		t.Errorf("queries = %v", searcher.queries)
	}
	if !strings.Contains(rec.Body.String(), `/read?url=https%3A%2F%2Fen.example%2Ffrog&amp;mode=retro`) {
		t.Errorf("result link missing: %s", rec.Body.String())
	}
}

func TestSearch_MissingQuery(t *testing.T) {
	searcher := &fakeSearcher{}
	srv := newTestServer(&countingFetcher{}, searcher)

	rec := do(t, srv, httptest.NewRequest(http.MethodGet, "/search", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "missing search term") {
		t.Errorf("body = %q", rec.Body.String())
	}
	if len(searcher.queries) != 0 {
		t.Error("backend should not be queried")
	}
}

func TestSearch_BackendError(t *testing.T) {
	searcher := &fakeSearcher{err: fmt.Errorf("%w: connection refused", search.ErrBackend)}
	srv := newTestServer(&countingFetcher{}, searcher)

	rec := do(t, srv, httptest.NewRequest(http.MethodGet, "/search?q=x", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "search failed") {
		t.Errorf("body = %q", rec.Body.String())
	}
}

func TestHome(t *testing.T) {
	srv := newTestServer(&countingFetcher{}, &fakeSearcher{})

	rec := do(t, srv, httptest.NewRequest(http.MethodGet, "/?mode=ultra_retro&dark=1", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{
		`<option value="ultra_retro" selected>`,
		`<input type="hidden" name="mode" value="ultra_retro">`,
		"System mode: <b>ultra_retro</b> | Dark mode active",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("home missing %q", want)
		}
	}
}

func TestHealthzAndMetrics(t *testing.T) {
	srv := newTestServer(&countingFetcher{}, &fakeSearcher{})

	rec := do(t, srv, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"status":"ok"`) {
		t.Errorf("healthz = %d %q", rec.Code, rec.Body.String())
	}

	rec = do(t, srv, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "frogfind_http_requests_total") {
		t.Errorf("metrics missing request counter")
	}
}

func TestListenAndServe_Shutdown(t *testing.T) {
	srv := newTestServer(&countingFetcher{}, &fakeSearcher{})
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- srv.ListenAndServe(ctx, config.ServerConfig{
			Addr:            "127.0.0.1:0",
			ReadTimeout:     time.Second,
			WriteTimeout:    time.Second,
			ShutdownTimeout: time.Second,
		})
	}()
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil && !errors.Is(err, context.Canceled) {
			t.Errorf("ListenAndServe() = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func postForm(path string, values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}
