package pipeline

import (
	"strings"
	"unicode/utf8"

	"git.home.luguber.info/inful/sitemigrate/internal/htmldoc"
	"git.home.luguber.info/inful/sitemigrate/internal/render"
	"git.home.luguber.info/inful/sitemigrate/internal/slug"
)

// buildBreadcrumb derives the breadcrumb trail for one slug. Labels
// for known section tokens come from the label table; other segments
// are title-cased from their slug form. Intermediate entries link only
// when the segment path is itself a produced page; the final entry is
// the current page.
func buildBreadcrumb(pageSlug, title string, labels map[string]string, existing map[string]bool) []render.Crumb {
	if pageSlug == "/" {
		return nil
	}

	parts := strings.Split(strings.Trim(pageSlug, "/"), "/")
	crumbs := make([]render.Crumb, 0, len(parts)+1)
	crumbs = append(crumbs, render.Crumb{Label: "Inicio", URL: "/"})

	path := ""
	for i, part := range parts {
		path += "/" + part
		candidate := path + "/"

		if i == len(parts)-1 {
			crumbs = append(crumbs, render.Crumb{Label: title, URL: candidate})
			continue
		}

		label, ok := labels[part]
		if !ok {
			label = slug.Humanize(part)
		}
		url := ""
		if existing[candidate] {
			url = candidate
		}
		crumbs = append(crumbs, render.Crumb{Label: label, URL: url})
	}
	return crumbs
}

const (
	metaMinLen = 40
	metaMaxLen = 160
)

// metaDescription extracts the first substantial paragraph as the
// page's meta description, truncated at a word boundary.
func metaDescription(doc *htmldoc.Document) string {
	if doc.Body == nil {
		return ""
	}
	for _, para := range htmldoc.FindAll(doc.Body, htmldoc.ByTag("p")) {
		text := htmldoc.Text(para)
		if len(text) <= metaMinLen {
			continue
		}
		if len(text) > metaMaxLen {
			// Back up to a rune start so the byte cut never splits a
			// multi-byte character.
			limit := metaMaxLen - 3
			for limit > 0 && !utf8.RuneStart(text[limit]) {
				limit--
			}
			cut := text[:limit]
			if i := strings.LastIndex(cut, " "); i > 0 {
				cut = cut[:i]
			}
			return cut + "..."
		}
		return text
	}
	return ""
}
