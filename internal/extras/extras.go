// Package extras compiles hand-authored Markdown pages into the build.
// These are pages the export never contained (legal notices, landing
// placeholders) that should still render through the site templates.
package extras

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/yuin/goldmark"

	"git.home.luguber.info/inful/sitemigrate/internal/frontmatter"
	"git.home.luguber.info/inful/sitemigrate/internal/slug"
)

// Page is one compiled extra page.
type Page struct {
	Slug        string
	Title       string
	Description string
	HTML        string
}

// meta is the YAML frontmatter of an authored page.
type meta struct {
	Title       string `yaml:"title"`
	Slug        string `yaml:"slug,omitempty"`
	Description string `yaml:"description,omitempty"`
}

// Load compiles every .md file directly under dir, sorted by filename
// so the build order is deterministic. A missing directory is not an
// error; extras are optional.
func Load(dir string) ([]Page, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read extras directory: %w", err)
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".md") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	pages := make([]Page, 0, len(names))
	for _, name := range names {
		page, err := compile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("compile %s: %w", name, err)
		}
		pages = append(pages, page)
	}
	return pages, nil
}

func compile(path string) (Page, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Page{}, err
	}

	var m meta
	body, err := frontmatter.Decode(raw, &m)
	if err != nil {
		return Page{}, fmt.Errorf("parse frontmatter: %w", err)
	}

	stem := strings.TrimSuffix(filepath.Base(path), ".md")
	if m.Title == "" {
		m.Title = slug.Humanize(stem)
	}
	if m.Slug == "" {
		m.Slug = "/" + slug.Make(stem, 0) + "/"
	}
	if !strings.HasPrefix(m.Slug, "/") {
		m.Slug = "/" + m.Slug
	}
	if !strings.HasSuffix(m.Slug, "/") {
		m.Slug += "/"
	}

	var html bytes.Buffer
	if err := goldmark.Convert(body, &html); err != nil {
		return Page{}, fmt.Errorf("render markdown: %w", err)
	}

	return Page{
		Slug:        m.Slug,
		Title:       m.Title,
		Description: m.Description,
		HTML:        html.String(),
	}, nil
}
