package pipeline

import (
	"golang.org/x/net/html"

	"git.home.luguber.info/inful/sitemigrate/internal/config"
	"git.home.luguber.info/inful/sitemigrate/internal/htmldoc"
)

// applySlugTables applies the per-page correction tables: element
// removal by id and anchor re-pointing by id. These are targeted
// fixes for individual pages the heuristics cannot express.
func applySlugTables(doc *htmldoc.Document, slug string, tables config.TablesConfig) {
	if doc.Body == nil {
		return
	}

	for _, id := range tables.RemoveIDs[slug] {
		if n := htmldoc.Find(doc.Body, byID(id)); n != nil {
			htmldoc.Detach(n)
		}
	}

	for id, href := range tables.ImageLinkRewrite {
		n := htmldoc.Find(doc.Body, byID(id))
		if n == nil {
			continue
		}
		if n.Data == "a" {
			htmldoc.SetAttr(n, "href", href)
			continue
		}
		// The id may sit on a figure or image; re-point the nearest
		// enclosing or contained anchor.
		if a := htmldoc.Find(n, htmldoc.ByTag("a")); a != nil {
			htmldoc.SetAttr(a, "href", href)
		}
	}
}

func byID(id string) func(*html.Node) bool {
	return func(n *html.Node) bool { return htmldoc.Attr(n, "id") == id }
}
