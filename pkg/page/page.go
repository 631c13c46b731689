// Package page wraps rendered content in the document shell a tier expects:
// a styled HTML5 page, a bare HTML page for ultra retro browsers, or a WML
// deck for WAP phones.
package page

import (
	"html"
	"strings"

	"github.com/jmylchreest/frogfind/pkg/compat"
	"github.com/jmylchreest/frogfind/pkg/render"
)

// Content types of composed responses.
const (
	ContentTypeHTML = "text/html; charset=utf-8"
	ContentTypeWML  = "text/vnd.wap.wml"
)

// Page is a content fragment awaiting its document shell. Content must
// already be in the dialect of Ctx.Tier.
type Page struct {
	Title   string
	Content string
	Ctx     compat.RequestContext
	IsHome  bool
}

// Response is a complete document ready to be written to the client.
type Response struct {
	Body        string
	ContentType string
}

const (
	lightPalette = ":root{--bg-color:#FFF;--text-color:#000;--link-color:#0000EE;--visited-color:#551A8B;--border-color:#999;--block-bg-color:#EEE}"
	darkPalette  = ":root{--bg-color:#212121;--text-color:#E0E0E0;--link-color:#82aaff;--visited-color:#c792ea;--border-color:#555;--block-bg-color:#333}"

	baseStyle = "h1,h2,h3{line-height:1.2}" +
		"img{max-width:100%;height:auto}" +
		"a{color:var(--link-color)}" +
		"a:visited{color:var(--visited-color)}" +
		"pre{background-color:var(--block-bg-color);padding:10px;white-space:pre-wrap;word-wrap:break-word;overflow-wrap:break-word;border:1px solid var(--border-color)}" +
		"blockquote{border-left:2px solid #ccc;margin-left:20px;padding-left:10px}" +
		"input,select{font-size:1em;margin:5px}" +
		"hr{width:80%;border-style:solid;border-color:var(--border-color);border-width:1px 0 0 0}" +
		".search-result{margin-bottom:1.5em;text-align:left}" +
		".url-input{width:80%}" +
		".info-box{font-size:0.8em;color:#555;background-color:#EEE;padding:5px;border:1px solid #CCC;margin-bottom:1em}" +
		".options-box{border:1px solid var(--border-color);padding:10px;margin-top:2em;display:inline-block;text-align:left}"

	bodyStyle = "font-family:Times New Roman,serif;line-height:1.6;max-width:800px;margin:1em auto;padding:0 1em;background-color:var(--bg-color);color:var(--text-color);"

	wmlProlog = `<?xml version="1.0"?>` + "\n" +
		`<!DOCTYPE wml PUBLIC "-//WAPFORUM//DTD WML 1.1//EN" "http://www.wapforum.org/DTD/wml_1.1.xml">` + "\n"
)

// Compose wraps p in the shell for its tier.
func Compose(p Page) Response {
	switch p.Ctx.Tier {
	case compat.Wap:
		return Response{Body: composeWML(p), ContentType: ContentTypeWML}
	case compat.Modern, compat.Retro, compat.UltraRetro:
		return Response{Body: composeHTML(p), ContentType: ContentTypeHTML}
	}
	return Response{Body: composeHTML(p), ContentType: ContentTypeHTML}
}

func composeWML(p Page) string {
	var sb strings.Builder
	sb.WriteString(wmlProlog)
	sb.WriteString(`<wml><card id="main" title="`)
	sb.WriteString(render.EscapeWML(p.Title))
	sb.WriteString(`">`)
	sb.WriteString(p.Content)
	sb.WriteString("</card></wml>")
	return sb.String()
}

func composeHTML(p Page) string {
	var sb strings.Builder
	sb.WriteString(`<!DOCTYPE html><html lang="en"><head><meta charset="UTF-8"><title>`)
	sb.WriteString(html.EscapeString(p.Title))
	sb.WriteString("</title>")
	if p.Ctx.Tier != compat.UltraRetro {
		sb.WriteString(stylesheet(p.Ctx.Dark, p.IsHome))
	}
	sb.WriteString(`</head><body><div class="info-box">System mode: <b>`)
	sb.WriteString(p.Ctx.Tier.String())
	sb.WriteString("</b>")
	if p.Ctx.Dark {
		sb.WriteString(" | Dark mode active")
	}
	sb.WriteString("</div>")
	sb.WriteString(p.Content)
	sb.WriteString("</body></html>")
	return sb.String()
}

// stylesheet returns the style block. The palette depends on dark only;
// the landing page is centred.
func stylesheet(dark, home bool) string {
	palette := lightPalette
	if dark {
		palette = darkPalette
	}
	body := bodyStyle
	if home {
		body += "text-align:center;"
	}
	return "<style>" + palette + "body{" + body + "}" + baseStyle + "</style>"
}
