package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// writeSitemap produces sitemap.xml over every resolved slug. Shallow
// pages get a higher priority than deep ones.
func (p *Pipeline) writeSitemap(slugs map[string]string) error {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	b.WriteString(`<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">` + "\n")
	fmt.Fprintf(&b, "  <url><loc>%s/</loc><priority>1.0</priority></url>\n", p.cfg.Site.URL)

	sorted := make([]string, 0, len(slugs))
	for _, s := range slugs {
		sorted = append(sorted, s)
	}
	sort.Strings(sorted)

	for _, s := range sorted {
		if s == "/" {
			continue
		}
		priority := "0.6"
		if strings.Count(s, "/") <= 2 {
			priority = "0.8"
		}
		fmt.Fprintf(&b, "  <url><loc>%s%s</loc><priority>%s</priority></url>\n", p.cfg.Site.URL, s, priority)
	}
	b.WriteString("</urlset>\n")

	path := filepath.Join(p.cfg.Paths.OutputDir, "sitemap.xml")
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("write sitemap: %w", err)
	}
	return nil
}

func (p *Pipeline) writeRobots() error {
	content := fmt.Sprintf("User-agent: *\nAllow: /\nSitemap: %s/sitemap.xml\n", p.cfg.Site.URL)
	path := filepath.Join(p.cfg.Paths.OutputDir, "robots.txt")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write robots.txt: %w", err)
	}
	return nil
}
