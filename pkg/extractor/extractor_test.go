package extractor

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"golang.org/x/net/html"
)

const articlePage = `<!DOCTYPE html>
<html><head><title>Tree Frogs of the Amazon</title></head>
<body>
<nav><a href="/">Home</a> <a href="/about">About</a></nav>
<article>
<h1>Tree Frogs of the Amazon</h1>
<p>Tree frogs spend almost their entire lives in the canopy, rarely descending to the forest floor.
Their toe pads let them cling to wet leaves, and many species are active only at night when the
air is humid enough to keep their skin moist.</p>
<p>Researchers counting frogs along river banks have found that populations shift with the rainy
season, moving higher into the trees as the water rises. Some species lay eggs on leaves that hang
over water so that the tadpoles drop straight into the river when they hatch.</p>
<p>Colour plays a large role in their survival. Bright patterns warn predators of toxins in the skin,
while duller species rely on camouflage against bark and moss. <a href="/species">See the species list</a>.</p>
</article>
<footer>Copyright Frog Facts</footer>
</body></html>`

type stubExtractor struct {
	name   string
	result *Result
	err    error
	calls  int
}

func (s *stubExtractor) Extract(_, _ string) (*Result, error) {
	s.calls++
	return s.result, s.err
}

func (s *stubExtractor) Name() string { return s.name }

func TestReadability_Extract(t *testing.T) {
	result, err := NewReadability(nil).Extract(articlePage, "https://frogs.example/tree-frogs")
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if result.Title != "Tree Frogs of the Amazon" {
		t.Errorf("Title = %q", result.Title)
	}
	if !strings.Contains(result.HTML, "toe pads") {
		t.Errorf("article text missing from %q", result.HTML)
	}
	if strings.Contains(result.HTML, "Copyright Frog Facts") {
		t.Errorf("footer leaked into article: %q", result.HTML)
	}
	if result.Extractor != "readability" {
		t.Errorf("Extractor = %q", result.Extractor)
	}
	if strings.Contains(result.HTML, "readability-page") {
		t.Errorf("page wrapper should be unwrapped: %q", result.HTML)
	}
}

func TestTrafilatura_Extract(t *testing.T) {
	result, err := NewTrafilatura().Extract(articlePage, "https://frogs.example/tree-frogs")
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if !strings.Contains(result.HTML, "canopy") {
		t.Errorf("article text missing from %q", result.HTML)
	}
	if strings.HasPrefix(result.HTML, "<body") {
		t.Errorf("body wrapper should be unwrapped: %q", result.HTML)
	}
	if result.Extractor != "trafilatura" {
		t.Errorf("Extractor = %q", result.Extractor)
	}
}

func TestRenderChildren(t *testing.T) {
	doc, err := html.Parse(strings.NewReader("<p>a</p><p>b</p>"))
	if err != nil {
		t.Fatal(err)
	}
	body := doc.FirstChild.LastChild // html > body

	var buf bytes.Buffer
	if err := renderChildren(&buf, body); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "<p>a</p><p>b</p>" {
		t.Errorf("renderChildren(body) = %q", buf.String())
	}

	buf.Reset()
	_ = renderChildren(&buf, body.FirstChild)
	if buf.String() != "<p>a</p>" {
		t.Errorf("renderChildren(p) = %q", buf.String())
	}

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "readability page wrapper",
			input: `<div id="readability-page-1" class="page"><p>a</p></div>`,
			want:  "<p>a</p>",
		},
		{
			name:  "nested wrappers",
			input: `<div id="readability-page-1" class="page"><div id="readability-page-2"><p>a</p></div><p>b</p></div>`,
			want:  "<p>a</p><p>b</p>",
		},
		{
			name:  "ordinary div kept",
			input: `<div id="content"><p>a</p></div>`,
			want:  `<div id="content"><p>a</p></div>`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := html.Parse(strings.NewReader(tt.input))
			if err != nil {
				t.Fatal(err)
			}
			var buf bytes.Buffer
			if err := renderChildren(&buf, doc.FirstChild.LastChild.FirstChild); err != nil {
				t.Fatal(err)
			}
			if buf.String() != tt.want {
				t.Errorf("renderChildren() = %q, want %q", buf.String(), tt.want)
			}
		})
	}
}

func TestDocument_Extract(t *testing.T) {
	tests := []struct {
		name      string
		page      string
		wantTitle string
		wantBody  string
		wantErr   error
	}{
		{
			name:      "title element",
			page:      `<html><head><title>Pond</title></head><body><p>Water</p></body></html>`,
			wantTitle: "Pond",
			wantBody:  "<p>Water</p>",
		},
		{
			name:      "heading fallback",
			page:      `<html><body><h1>Lily Pad</h1><p>Green</p></body></html>`,
			wantTitle: "Lily Pad",
			wantBody:  "<h1>Lily Pad</h1><p>Green</p>",
		},
		{
			name:    "empty body",
			page:    `<html><head><title>Nothing</title></head><body>  </body></html>`,
			wantErr: ErrNoContent,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := NewDocument().Extract(tt.page, "")
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Extract() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Extract() error = %v", err)
			}
			if result.Title != tt.wantTitle {
				t.Errorf("Title = %q, want %q", result.Title, tt.wantTitle)
			}
			if result.HTML != tt.wantBody {
				t.Errorf("HTML = %q, want %q", result.HTML, tt.wantBody)
			}
		})
	}
}

func TestFallback_FirstSuccessWins(t *testing.T) {
	failing := &stubExtractor{name: "a", err: ErrNoContent}
	working := &stubExtractor{name: "b", result: &Result{Title: "T", HTML: "<p>x</p>", Extractor: "b"}}
	unused := &stubExtractor{name: "c", result: &Result{Title: "other"}}

	chain := NewFallback(failing, working, unused)
	result, err := chain.Extract("<p>x</p>", "")
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if result.Extractor != "b" {
		t.Errorf("Extractor = %q, want b", result.Extractor)
	}
	if unused.calls != 0 {
		t.Error("extractors after the first success should not run")
	}
	if chain.Name() != "fallback(a,b,c)" {
		t.Errorf("Name() = %q", chain.Name())
	}
}

func TestFallback_AllFail(t *testing.T) {
	chain := NewFallback(
		&stubExtractor{name: "a", err: errors.New("boom")},
		&stubExtractor{name: "b", err: ErrNoContent},
	)
	_, err := chain.Extract("", "")
	if !errors.Is(err, ErrNoContent) {
		t.Fatalf("error = %v, want wrapped last error", err)
	}
	if !strings.Contains(err.Error(), "tried: a, b") {
		t.Errorf("error = %q, want tried list", err)
	}
}

func TestFallback_NilResultFallsThrough(t *testing.T) {
	chain := NewFallback(
		&stubExtractor{name: "silent"},
		&stubExtractor{name: "doc", result: &Result{Title: "T", Extractor: "doc"}},
	)
	result, err := chain.Extract("<p>x</p>", "")
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if result.Extractor != "doc" {
		t.Errorf("Extractor = %q, want doc", result.Extractor)
	}
}

func TestFallback_Empty(t *testing.T) {
	if _, err := NewFallback().Extract("<p>x</p>", ""); !errors.Is(err, ErrNoExtractorAvailable) {
		t.Errorf("error = %v, want ErrNoExtractorAvailable", err)
	}
}

func TestDefault_Chain(t *testing.T) {
	if got := Default().Name(); got != "fallback(readability,trafilatura,document)" {
		t.Errorf("Name() = %q", got)
	}
}

func TestDefault_FallsBackToDocument(t *testing.T) {
	result, err := Default().Extract(`<html><head><title>Short</title></head><body><p>Hi</p></body></html>`, "")
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if result.Title != "Short" {
		t.Errorf("Title = %q", result.Title)
	}
	if !strings.Contains(result.HTML, "Hi") {
		t.Errorf("HTML = %q", result.HTML)
	}
}
