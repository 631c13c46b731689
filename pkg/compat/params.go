package compat

import (
	"html"
	"net/url"
	"strings"
)

// Params are the preferences echoed into every generated link. They are the
// only session state and live entirely in the URL.
type Params struct {
	Mode string
	Dark bool
}

// Pair is a single query parameter.
type Pair struct {
	Key   string
	Value string
}

// Pairs returns the params in a fixed order: mode, then dark.
func (p Params) Pairs() []Pair {
	var pairs []Pair
	if p.Mode != "" {
		pairs = append(pairs, Pair{Key: "mode", Value: p.Mode})
	}
	if p.Dark {
		pairs = append(pairs, Pair{Key: "dark", Value: "1"})
	}
	return pairs
}

// Encode returns the params as a query string without a leading '?'.
func (p Params) Encode() string {
	var sb strings.Builder
	for i, pair := range p.Pairs() {
		if i > 0 {
			sb.WriteByte('&')
		}
		sb.WriteString(url.QueryEscape(pair.Key))
		sb.WriteByte('=')
		sb.WriteString(url.QueryEscape(pair.Value))
	}
	return sb.String()
}

// Hidden returns the params as hidden form inputs.
func (p Params) Hidden() string {
	var sb strings.Builder
	for _, pair := range p.Pairs() {
		sb.WriteString(`<input type="hidden" name="`)
		sb.WriteString(html.EscapeString(pair.Key))
		sb.WriteString(`" value="`)
		sb.WriteString(html.EscapeString(pair.Value))
		sb.WriteString(`">`)
	}
	return sb.String()
}

// ReadPath is the endpoint every rewritten link points at.
const ReadPath = "/read"

// ReadURL builds a link that loops target back through the read endpoint.
func ReadURL(target string, p Params) string {
	var sb strings.Builder
	sb.WriteString(ReadPath)
	sb.WriteString("?url=")
	sb.WriteString(url.QueryEscape(target))
	if extra := p.Encode(); extra != "" {
		sb.WriteByte('&')
		sb.WriteString(extra)
	}
	return sb.String()
}

// IsReadURL reports whether href already points at the read endpoint.
func IsReadURL(href string) bool {
	return strings.HasPrefix(href, ReadPath+"?url=")
}

// HomeURL returns the landing page link carrying the params.
func HomeURL(p Params) string {
	if extra := p.Encode(); extra != "" {
		return "/?" + extra
	}
	return "/"
}

// RequestContext is resolved once per inbound request and read-only after.
type RequestContext struct {
	Tier   Tier
	Dark   bool
	Params Params
}

// NewRequestContext resolves the tier and persisted params from the
// User-Agent header and the mode/dark request parameters.
func NewRequestContext(userAgent, mode, dark string) RequestContext {
	rc := RequestContext{
		Tier: Classify(userAgent, mode),
		Dark: dark == "1",
	}
	rc.Params = Params{Mode: mode, Dark: rc.Dark}
	return rc
}
