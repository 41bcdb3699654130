// Package render turns resolved documents into final HTML files. The
// templates are embedded; the rendering contract is the Page struct
// and nothing else, so the pipeline performs all resolution before
// anything reaches this layer.
package render

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"strings"

	"git.home.luguber.info/inful/sitemigrate/internal/config"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Site carries the site-wide template context.
type Site struct {
	Name        string
	Tagline     string
	URL         string
	Lang        string
	Footer      string
	ContactMail string
	Nav         []config.NavItem
}

// Crumb is one breadcrumb entry. An empty URL renders as plain text.
type Crumb struct {
	Label string
	URL   string
}

// Card is one entry on a hub page, fully resolved.
type Card struct {
	Title       string
	URL         string
	Icon        string
	Description string
	Image       string
}

// Page is the per-page template context.
type Page struct {
	Title           string
	Content         template.HTML
	CoverImage      string
	Kind            string // article|hub|home
	Breadcrumb      []Crumb
	CurrentSection  string
	Cards           []Card
	MetaDescription string
	CanonicalURL    string
	OGImage         string
}

type context struct {
	Site Site
	Page Page
}

// Renderer executes the embedded templates.
type Renderer struct {
	tmpl *template.Template
	site Site
}

// New parses the embedded templates for the given site.
func New(site Site) (*Renderer, error) {
	if site.Lang == "" {
		site.Lang = "es"
	}
	tmpl, err := template.New("").Funcs(template.FuncMap{
		"sectionOf": sectionOf,
	}).ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Renderer{tmpl: tmpl, site: site}, nil
}

// Render writes one page to w, selecting the template by Page.Kind.
func (r *Renderer) Render(w io.Writer, p Page) error {
	name := "page.html"
	switch p.Kind {
	case "hub":
		name = "hub.html"
	case "home":
		name = "home.html"
	}
	if err := r.tmpl.ExecuteTemplate(w, name, context{Site: r.site, Page: p}); err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}
	return nil
}

// sectionOf extracts the first path component of a nav URL so the
// template can highlight the active section.
func sectionOf(url string) string {
	trimmed := strings.Trim(url, "/")
	if trimmed == "" {
		return ""
	}
	if i := strings.Index(trimmed, "/"); i >= 0 {
		return trimmed[:i]
	}
	return trimmed
}
