package page

import (
	"html"
	"strings"

	"github.com/jmylchreest/frogfind/pkg/article"
	"github.com/jmylchreest/frogfind/pkg/compat"
	"github.com/jmylchreest/frogfind/pkg/render"
	"github.com/jmylchreest/frogfind/pkg/search"
)

// SiteName is the title of the landing page.
const SiteName = "FrogFind"

// BackLink returns a link to the landing page in the tier's dialect,
// carrying the persisted params.
func BackLink(ctx compat.RequestContext) string {
	home := compat.HomeURL(ctx.Params)
	if ctx.Tier == compat.Wap {
		return `<p><a href="` + render.EscapeWML(home) + `">Back</a></p>`
	}
	return `<p><a href="` + html.EscapeString(home) + `">&larr; Back</a></p>`
}

// Home builds the landing page: a search form, a read-URL form and, for
// HTML tiers, the mode and dark mode options.
func Home(ctx compat.RequestContext) Page {
	p := Page{Title: SiteName, Ctx: ctx, IsHome: true}
	if ctx.Tier == compat.Wap {
		p.Content = homeWML(ctx)
		return p
	}
	p.Content = homeHTML(ctx)
	return p
}

func homeHTML(ctx compat.RequestContext) string {
	hidden := ctx.Params.Hidden()

	var sb strings.Builder
	sb.WriteString("<h1>" + SiteName + "</h1><p>A simple interface to the modern web.</p><hr>")

	sb.WriteString(`<h2>Search the web</h2><form action="/search" method="get">`)
	sb.WriteString(hidden)
	sb.WriteString(`<input type="text" name="q" size="40"><input type="submit" value="Search"></form><hr>`)

	sb.WriteString(`<h2>Read a URL</h2><form action="` + compat.ReadPath + `" method="post">`)
	sb.WriteString(hidden)
	sb.WriteString(`<input type="url" name="url" class="url-input" placeholder="https://..."><input type="submit" value="Read"></form><br>`)

	sb.WriteString(`<div class="options-box"><h2>Options</h2><form action="/" method="get">`)
	sb.WriteString(`<label for="mode">Mode:</label><select name="mode" id="mode">`)
	for _, t := range compat.Tiers {
		sb.WriteString(`<option value="` + t.String() + `"`)
		if t == ctx.Tier {
			sb.WriteString(" selected")
		}
		sb.WriteString(">" + t.Label() + "</option>")
	}
	sb.WriteString(`</select><br><input type="checkbox" name="dark" value="1" id="dark"`)
	if ctx.Dark {
		sb.WriteString(" checked")
	}
	sb.WriteString(`><label for="dark">Dark mode</label><br><br><input type="submit" value="Apply"></form></div>`)
	return sb.String()
}

func homeWML(ctx compat.RequestContext) string {
	var fields strings.Builder
	for _, pair := range ctx.Params.Pairs() {
		fields.WriteString(`<postfield name="` + render.EscapeWML(pair.Key) + `" value="` + render.EscapeWML(pair.Value) + `"/>`)
	}

	var sb strings.Builder
	sb.WriteString("<p><b>" + SiteName + "</b></p>")
	sb.WriteString(`<p>Search:<br/><input name="q" title="Search"/>`)
	sb.WriteString(`<anchor>Go<go href="/search" method="get"><postfield name="q" value="$(q)"/>`)
	sb.WriteString(fields.String())
	sb.WriteString("</go></anchor></p>")
	sb.WriteString(`<p>Read URL:<br/><input name="url" title="URL"/>`)
	sb.WriteString(`<anchor>Read<go href="` + compat.ReadPath + `" method="post"><postfield name="url" value="$(url)"/>`)
	sb.WriteString(fields.String())
	sb.WriteString("</go></anchor></p>")
	return sb.String()
}

// SearchResults builds the result list for query. Every hit links through
// the read endpoint.
func SearchResults(ctx compat.RequestContext, query string, results []search.Result) Page {
	p := Page{Title: "Search: " + query, Ctx: ctx}

	var sb strings.Builder
	sb.WriteString(BackLink(ctx))
	if ctx.Tier == compat.Wap {
		sb.WriteString("<p><b>Results for " + render.EscapeWML(query) + "</b></p>")
		for _, r := range results {
			sb.WriteString(`<p><a href="` + render.EscapeWML(compat.ReadURL(r.URL, ctx.Params)) + `">`)
			sb.WriteString(render.EscapeWML(r.Title))
			sb.WriteString("</a><br/>")
			sb.WriteString(render.EscapeWML(r.Snippet))
			sb.WriteString("</p>")
		}
		if len(results) == 0 {
			sb.WriteString("<p>No results.</p>")
		}
		p.Content = sb.String()
		return p
	}

	sb.WriteString("<hr><h1>Search results for '" + html.EscapeString(query) + "'</h1>")
	for _, r := range results {
		href := html.EscapeString(compat.ReadURL(r.URL, ctx.Params))
		sb.WriteString(`<div class="search-result"><h3><a href="` + href + `">`)
		sb.WriteString(html.EscapeString(r.Title))
		sb.WriteString("</a></h3><p>")
		sb.WriteString(html.EscapeString(r.Snippet))
		sb.WriteString(`</p><a href="` + href + `"><small>`)
		sb.WriteString(html.EscapeString(r.URL))
		sb.WriteString("</small></a></div>")
	}
	if len(results) == 0 {
		sb.WriteString("<p>No results.</p>")
	}
	p.Content = sb.String()
	return p
}

// ArticlePage places a rendered article under a back link and its title.
// Error articles are shown the same way.
func ArticlePage(ctx compat.RequestContext, a article.Article) Page {
	var sb strings.Builder
	sb.WriteString(BackLink(ctx))
	if ctx.Tier == compat.Wap {
		sb.WriteString("<p><b>" + render.EscapeWML(a.Title) + "</b></p>")
	} else {
		sb.WriteString("<hr><h1>" + html.EscapeString(a.Title) + "</h1>")
	}
	sb.WriteString(a.Body)
	return Page{Title: a.Title, Content: sb.String(), Ctx: ctx}
}
