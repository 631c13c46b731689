package render

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// wmlRule is what WML gets in place of a horizontal rule.
const wmlRule = "<p>----------</p>"

var spaceRun = regexp.MustCompile(`\s+`)

// WML walks the tree under root and emits the minimal WML equivalent of
// paragraphs, h1-h3, links, line breaks, rules and preformatted blocks.
// Anything else is descended into but not emitted.
func WML(root *html.Node) string {
	var sb strings.Builder
	wmlBlock(&sb, root)
	return sb.String()
}

func wmlBlock(sb *strings.Builder, n *html.Node) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		switch c.DataAtom {
		case atom.P, atom.Pre:
			wmlPara(sb, wmlInline(c), false)
		case atom.H1, atom.H2, atom.H3:
			wmlPara(sb, wmlInline(c), true)
		case atom.Hr:
			sb.WriteString(wmlRule)
		case atom.Br:
			// A card only holds paragraphs; breaks between them are implied.
		case atom.A:
			wmlPara(sb, wmlAnchor(c), false)
		default:
			wmlBlock(sb, c)
		}
	}
}

func wmlPara(sb *strings.Builder, content string, bold bool) {
	content = trimBreaks(strings.TrimSpace(spaceRun.ReplaceAllString(content, " ")))
	if content == "" {
		return
	}
	sb.WriteString("<p>")
	if bold {
		sb.WriteString("<b>")
		sb.WriteString(content)
		sb.WriteString("</b>")
	} else {
		sb.WriteString(content)
	}
	sb.WriteString("</p>")
}

// trimBreaks strips every leading and trailing <br/>.
func trimBreaks(content string) string {
	for {
		trimmed := strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(content, "<br/>"), "<br/>"))
		if trimmed == content {
			return content
		}
		content = trimmed
	}
}

// wmlInline renders the text, links and line breaks inside a block.
func wmlInline(n *html.Node) string {
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.TextNode:
			sb.WriteString(EscapeWML(c.Data))
		case html.ElementNode:
			switch c.DataAtom {
			case atom.A:
				sb.WriteString(wmlAnchor(c))
			case atom.Br:
				sb.WriteString(" <br/> ")
			default:
				sb.WriteString(wmlInline(c))
			}
		}
	}
	return sb.String()
}

func wmlAnchor(n *html.Node) string {
	text := strings.TrimSpace(spaceRun.ReplaceAllString(wmlInline(n), " "))
	href := attr(n, "href")
	if text == "" || href == "" {
		return text
	}
	return `<a href="` + EscapeWML(href) + `">` + text + "</a>"
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

var wmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
	"$", "$$",
)

// EscapeWML escapes text for WML. Dollar signs are doubled since WML
// treats them as variable references.
func EscapeWML(s string) string {
	return wmlEscaper.Replace(s)
}
