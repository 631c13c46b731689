package sanitizer

import (
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/jmylchreest/frogfind/internal/logger"
	"github.com/jmylchreest/frogfind/pkg/compat"
)

// Sanitizer strips article HTML down to whitelisted, proxied content.
type Sanitizer struct {
	config *Config
}

// New creates a new Sanitizer with the given configuration.
// If config is nil, DefaultConfig() is used.
func New(config *Config) *Sanitizer {
	if config == nil {
		config = DefaultConfig()
	}
	return &Sanitizer{config: config}
}

// Name returns the sanitizer name for logging.
func (s *Sanitizer) Name() string {
	return "frogfind"
}

// Sanitize parses content and applies every cleaning step for tier.
// Links are resolved against baseURL and rewritten to carry params.
// It never fails: a document that cannot be parsed yields an empty tree
// and a warning.
func (s *Sanitizer) Sanitize(content, baseURL string, tier compat.Tier, params compat.Params) *Result {
	startTime := time.Now()
	result := &Result{Stats: NewStats()}
	result.Stats.InputBytes = len(content)

	parseStart := time.Now()
	doc, err := Parse(content)
	result.Stats.ParseDuration = time.Since(parseStart)
	if err != nil {
		result.AddWarning("parse", "HTML parse failed, returning empty document", err.Error())
		result.Document = empty()
		result.Stats.TotalDuration = time.Since(startTime)
		return result
	}
	result.Document = doc

	transformStart := time.Now()
	s.transform(doc.doc, baseURL, tier, params, result)
	result.Stats.TransformDuration = time.Since(transformStart)
	result.Stats.TotalDuration = time.Since(startTime)

	if s.config.Debug {
		logger.Debug("sanitize complete", "tier", tier.String(), "stats", result.Stats)
	}
	return result
}

// transform applies the cleaning steps. Order matters: later steps rely on
// the removals of earlier ones.
func (s *Sanitizer) transform(doc *goquery.Document, baseURL string, tier compat.Tier, params compat.Params, result *Result) {
	// 1. Non-content elements
	s.removeTags(doc, result)

	// 2. Ad heuristic
	s.removeAds(doc, result)

	// 3. Proxy links
	s.rewriteLinks(doc, baseURL, params, result)

	// 4. Tier-specific
	switch tier {
	case compat.UltraRetro:
		s.replaceImages(doc, result)
	case compat.Modern, compat.Retro, compat.Wap:
	}

	// 5. Empty leaves
	s.removeEmptyElements(doc, result)

	// 6. Attribute whitelist
	s.whitelistAttributes(doc, result)

	doc.Find("body *").Each(func(_ int, _ *goquery.Selection) {
		result.Stats.ElementsKept++
	})
}

// removeTags removes every element of the configured non-content kinds.
func (s *Sanitizer) removeTags(doc *goquery.Document, result *Result) {
	if len(s.config.RemoveTags) == 0 {
		return
	}
	doc.Find(strings.Join(s.config.RemoveTags, ", ")).Each(func(_ int, sel *goquery.Selection) {
		if attached(sel.Nodes[0]) {
			s.remove(sel, "tag", result)
		}
	})
}

// removeAds removes elements carrying the ad token in their class list or
// anywhere in their id.
func (s *Sanitizer) removeAds(doc *goquery.Document, result *Result) {
	token := s.config.AdToken
	if token == "" {
		return
	}
	doc.Find("[class], [id]").Each(func(_ int, sel *goquery.Selection) {
		if attached(sel.Nodes[0]) && isAd(sel, token) {
			result.Stats.AdRemovals++
			s.remove(sel, "ad", result)
		}
	})
}

func isAd(sel *goquery.Selection, token string) bool {
	if class, ok := sel.Attr("class"); ok {
		for _, c := range strings.Fields(class) {
			if c == token {
				return true
			}
		}
	}
	if id, ok := sel.Attr("id"); ok && strings.Contains(id, token) {
		return true
	}
	return false
}

// rewriteLinks points every hyperlink back at the read endpoint.
// Links that cannot be made absolute lose their href.
func (s *Sanitizer) rewriteLinks(doc *goquery.Document, baseURL string, params compat.Params, result *Result) {
	base, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		result.AddWarning("transform", "invalid base URL, relative links dropped", baseURL)
		base = nil
	}

	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		href = strings.TrimSpace(href)
		if compat.IsReadURL(href) {
			return
		}

		target, ok := resolve(base, href)
		if !ok {
			sel.RemoveAttr("href")
			result.Stats.LinksDropped++
			return
		}
		sel.SetAttr("href", compat.ReadURL(target, params))
		result.Stats.LinksRewritten++
	})
}

// resolve makes href absolute against base. Only http and https targets
// are proxied.
func resolve(base *url.URL, href string) (string, bool) {
	ref, err := url.Parse(href)
	if err != nil {
		return "", false
	}
	if base != nil {
		ref = base.ResolveReference(ref)
	}
	if !ref.IsAbs() || ref.Host == "" {
		return "", false
	}
	switch strings.ToLower(ref.Scheme) {
	case "http", "https":
		return ref.String(), true
	}
	return "", false
}

// replaceImages swaps images for a bracketed text placeholder.
func (s *Sanitizer) replaceImages(doc *goquery.Document, result *Result) {
	doc.Find("img").Each(func(_ int, sel *goquery.Selection) {
		alt := strings.TrimSpace(sel.AttrOr("alt", ""))
		if alt == "" {
			alt = s.config.ImageFallback
		}
		text := "[" + s.config.ImagePlaceholder + ": " + alt + "]"
		sel.ReplaceWithNodes(&html.Node{Type: html.TextNode, Data: text})
		result.Stats.ImagesReplaced++
	})
}

// removeEmptyElements removes elements with no text and no child elements
// until nothing changes, so containers emptied by a pass go in the next.
func (s *Sanitizer) removeEmptyElements(doc *goquery.Document, result *Result) {
	for {
		removed := 0
		doc.Find("body *").Each(func(_ int, sel *goquery.Selection) {
			if !attached(sel.Nodes[0]) {
				return
			}
			if s.config.exempt(goquery.NodeName(sel)) {
				return
			}
			if sel.Children().Length() > 0 || strings.TrimSpace(sel.Text()) != "" {
				return
			}
			result.Stats.EmptyElementRemovals++
			s.remove(sel, "empty", result)
			removed++
		})
		result.Stats.EmptyPasses++
		if removed == 0 {
			return
		}
	}
}

// whitelistAttributes drops every attribute not allowed for its tag.
func (s *Sanitizer) whitelistAttributes(doc *goquery.Document, result *Result) {
	doc.Find("*").Each(func(_ int, sel *goquery.Selection) {
		node := sel.Nodes[0]
		if len(node.Attr) == 0 {
			return
		}
		kept := node.Attr[:0]
		for _, attr := range node.Attr {
			if attr.Namespace == "" && s.config.allowed(node.Data, attr.Key) {
				kept = append(kept, attr)
				continue
			}
			result.Stats.AttributesRemoved++
		}
		if len(kept) == 0 {
			node.Attr = nil
			return
		}
		node.Attr = kept
	})
}

// attached reports whether node is still reachable from the document root.
func attached(node *html.Node) bool {
	for n := node; n != nil; n = n.Parent {
		if n.Type == html.DocumentNode {
			return true
		}
	}
	return false
}

func (s *Sanitizer) remove(sel *goquery.Selection, reason string, result *Result) {
	tag := goquery.NodeName(sel)
	if s.config.Debug {
		logger.Debug("sanitize removing element", "tag", tag, "reason", reason)
	}
	result.Stats.RecordRemoval(tag)
	sel.Remove()
}
