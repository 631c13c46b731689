package render

import (
	"fmt"
	"net/url"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/PuerkitoBio/goquery"

	"github.com/jmylchreest/frogfind/pkg/compat"
)

// Markdown converts a rendered HTML article body to Markdown for terminal
// reading. Links that loop through the read endpoint are pointed back at
// their targets.
func Markdown(fragment string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return "", fmt.Errorf("parse fragment: %w", err)
	}
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		if target := readTarget(href); target != "" {
			a.SetAttr("href", target)
		}
	})

	body, err := doc.Find("body").Html()
	if err != nil {
		return "", fmt.Errorf("serialise fragment: %w", err)
	}
	md, err := htmltomarkdown.ConvertString(body)
	if err != nil {
		return "", fmt.Errorf("convert to markdown: %w", err)
	}
	return strings.TrimSpace(md), nil
}

// readTarget returns the url parameter of a read endpoint link, or "".
func readTarget(href string) string {
	if !compat.IsReadURL(href) {
		return ""
	}
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return u.Query().Get("url")
}
