// Package linkverify audits a produced output tree for dangling
// references. It is a read-only verifier over the final on-disk
// layout, independent of the build pipeline's in-memory state.
package linkverify

import (
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"
)

// Link represents an extracted link from HTML content.
type Link struct {
	URL        string // The URL or path
	Text       string // Link text/title
	Tag        string // HTML tag (a, img, script, link, etc.)
	Attribute  string // Attribute containing the link (href, src, srcset, poster)
	IsInternal bool   // True if link is internal to the site
}

// ExtractLinks extracts all links from an HTML file.
func ExtractLinks(htmlPath string, baseURL string) ([]*Link, error) {
	file, err := os.Open(filepath.Clean(htmlPath))
	if err != nil {
		return nil, fmt.Errorf("open HTML file %s: %w", htmlPath, err)
	}
	defer func() {
		_ = file.Close() // Ignore close errors on read-only operation
	}()

	return ExtractLinksFromReader(file, baseURL)
}

// ExtractLinksFromReader extracts all links from an HTML reader.
func ExtractLinksFromReader(r io.Reader, baseURL string) ([]*Link, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse HTML: %w", err)
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", baseURL, err)
	}

	var links []*Link
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.ElementNode {
			extractElementLinks(n, &links, base)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}

	extract(doc)
	return links, nil
}

// extractElementLinks extracts links from a single HTML element.
func extractElementLinks(n *html.Node, links *[]*Link, base *url.URL) {
	add := func(ref, text, attr string) {
		if ref == "" {
			return
		}
		*links = append(*links, &Link{
			URL:        ref,
			Text:       text,
			Tag:        n.Data,
			Attribute:  attr,
			IsInternal: isInternalLink(ref, base),
		})
	}

	switch n.Data {
	case "a":
		add(getAttr(n, "href"), extractText(n), "href")
	case "img":
		add(getAttr(n, "src"), getAttr(n, "alt"), "src")
		for _, candidate := range parseSrcset(getAttr(n, "srcset")) {
			add(candidate, getAttr(n, "alt"), "srcset")
		}
	case "script":
		add(getAttr(n, "src"), "", "src")
	case "link":
		add(getAttr(n, "href"), getAttr(n, "rel"), "href")
	case "video", "audio":
		add(getAttr(n, "src"), "", "src")
		add(getAttr(n, "poster"), "", "poster")
	case "source":
		add(getAttr(n, "src"), "", "src")
		for _, candidate := range parseSrcset(getAttr(n, "srcset")) {
			add(candidate, "", "srcset")
		}
	case "iframe":
		add(getAttr(n, "src"), "", "src")
	}
}

// parseSrcset splits a srcset attribute into its URL candidates,
// dropping the density/width descriptors.
func parseSrcset(srcset string) []string {
	if srcset == "" {
		return nil
	}
	var urls []string
	for _, candidate := range strings.Split(srcset, ",") {
		fields := strings.Fields(strings.TrimSpace(candidate))
		if len(fields) > 0 {
			urls = append(urls, fields[0])
		}
	}
	return urls
}

// getAttr retrieves an attribute value from an HTML node.
func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

// extractText extracts text content from an HTML node and its children.
func extractText(n *html.Node) string {
	if n.Type == html.TextNode {
		return strings.TrimSpace(n.Data)
	}

	var text strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		text.WriteString(extractText(c))
	}

	return strings.TrimSpace(text.String())
}

// isInternalLink determines if a URL is internal to the site.
func isInternalLink(linkURL string, baseURL *url.URL) bool {
	// Skip special protocols
	if strings.HasPrefix(linkURL, "mailto:") ||
		strings.HasPrefix(linkURL, "tel:") ||
		strings.HasPrefix(linkURL, "javascript:") ||
		strings.HasPrefix(linkURL, "#") {
		return true // These are not external links
	}

	u, err := url.Parse(linkURL)
	if err != nil {
		return false
	}

	// Relative URLs are internal
	if u.Scheme == "" || u.Host == "" {
		return true
	}

	if baseURL != nil && u.Host == baseURL.Host {
		return true
	}

	return false
}

// ShouldVerifyLink determines if a link should be checked against the
// output tree. Anchors, special protocols and generated SEO files are
// skipped.
func ShouldVerifyLink(link *Link) bool {
	if link.URL == "" || strings.HasPrefix(link.URL, "#") {
		return false
	}
	if strings.HasPrefix(link.URL, "mailto:") ||
		strings.HasPrefix(link.URL, "tel:") ||
		strings.HasPrefix(link.URL, "javascript:") ||
		strings.HasPrefix(link.URL, "data:") {
		return false
	}
	return true
}
