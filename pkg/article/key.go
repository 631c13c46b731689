package article

import (
	"net/url"
	"sort"
	"strings"

	"github.com/jmylchreest/frogfind/pkg/compat"
)

// Key identifies one cached rendering: the same URL rendered for a
// different tier or with different persisted params is a different entry.
type Key struct {
	URL    string
	Tier   compat.Tier
	Params compat.Params
}

// NewKey builds a Key with a normalised URL.
func NewKey(rawURL string, tier compat.Tier, params compat.Params) Key {
	return Key{
		URL:    NormalizeURL(rawURL),
		Tier:   tier,
		Params: params,
	}
}

// String returns a stable representation for logs and singleflight.
func (k Key) String() string {
	var sb strings.Builder
	sb.WriteString(k.Tier.String())
	sb.WriteByte('|')
	sb.WriteString(k.Params.Encode())
	sb.WriteByte('|')
	sb.WriteString(k.URL)
	return sb.String()
}

// NormalizeURL normalizes a URL for cache key generation: lowercase scheme
// and host, sorted query params, no fragment.
func NormalizeURL(rawURL string) string {
	rawURL = strings.TrimSpace(rawURL)
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}

	parsed.Scheme = strings.ToLower(parsed.Scheme)
	parsed.Host = strings.ToLower(parsed.Host)
	parsed.Fragment = ""
	parsed.RawFragment = ""

	query := parsed.Query()
	keys := make([]string, 0, len(query))
	for k := range query {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sortedQuery strings.Builder
	for _, k := range keys {
		values := query[k]
		for _, v := range values {
			if sortedQuery.Len() > 0 {
				sortedQuery.WriteByte('&')
			}
			sortedQuery.WriteString(url.QueryEscape(k))
			sortedQuery.WriteByte('=')
			sortedQuery.WriteString(url.QueryEscape(v))
		}
	}

	parsed.RawQuery = sortedQuery.String()
	return parsed.String()
}
