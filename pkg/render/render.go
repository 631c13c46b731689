// Package render turns a sanitised document into the markup dialect a
// compatibility tier can display.
package render

import (
	"fmt"

	"github.com/yosssi/gohtml"

	"github.com/jmylchreest/frogfind/pkg/compat"
	"github.com/jmylchreest/frogfind/pkg/sanitizer"
)

// Dialect is the markup language of rendered output.
type Dialect string

const (
	DialectHTML Dialect = "html"
	DialectWML  Dialect = "wml"
)

// DialectFor returns the dialect served to tier.
func DialectFor(tier compat.Tier) Dialect {
	switch tier {
	case compat.Wap:
		return DialectWML
	case compat.Modern, compat.Retro, compat.UltraRetro:
		return DialectHTML
	}
	return DialectHTML
}

// Render serialises doc for tier. Tier-specific simplification has already
// happened during sanitising; this only picks and writes the dialect.
func Render(doc *sanitizer.Document, tier compat.Tier) (string, error) {
	if doc == nil {
		return "", nil
	}
	switch DialectFor(tier) {
	case DialectWML:
		root := doc.BodyNode()
		if root == nil {
			root = doc.Selection().Nodes[0]
		}
		return WML(root), nil
	case DialectHTML:
		return HTML(doc)
	}
	return "", fmt.Errorf("no dialect for tier %s", tier)
}

// HTML returns the pretty-printed body contents of doc.
func HTML(doc *sanitizer.Document) (string, error) {
	content, err := doc.HTML()
	if err != nil {
		return "", fmt.Errorf("serialise document: %w", err)
	}
	return gohtml.Format(content), nil
}
