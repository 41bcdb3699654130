// Package linker resolves references in parsed documents: links to
// other documents against the slug map, image and style references
// against the asset map. It is the only stage that may extend the
// asset map after the initial build pass, when a reference points at a
// file outside the scanned tree but inside the broader export.
package linker

import (
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"sync/atomic"

	"golang.org/x/net/html"

	"git.home.luguber.info/inful/sitemigrate/internal/htmldoc"
	"git.home.luguber.info/inful/sitemigrate/internal/resolve"
	"git.home.luguber.info/inful/sitemigrate/internal/source"
)

// Materializer copies one adopted out-of-tree asset into the output
// tree under its assigned name. The rewriter calls it at most once per
// source path.
type Materializer interface {
	Materialize(srcPath, assignedName string) error
}

// Config wires a Rewriter. ContentRoot is the scanned tree the asset
// map's relative paths are anchored to; ExportRoot is the broader
// export superset that bounds out-of-tree adoption (empty disables
// adoption).
type Config struct {
	Slugs       map[string]string
	Overrides   map[string]string
	Assets      *resolve.AssetMap
	SiteHosts   []string
	ExportHosts []string
	ContentRoot string
	ExportRoot  string
	Files       Materializer
}

// Rewriter resolves references in place. Safe for concurrent use: the
// maps are read-only here except for AssetMap.Adopt, which is an
// atomic insert-if-absent, and the counters are atomic.
type Rewriter struct {
	cfg Config

	fuzzy      atomic.Int64
	adopted    atomic.Int64
	unresolved atomic.Int64
}

// New builds a Rewriter over frozen slug and asset maps.
func New(cfg Config) *Rewriter {
	return &Rewriter{cfg: cfg}
}

// Stats is a snapshot of the resolution counters. Fuzzy counts
// filename-only asset matches, the degraded-confidence branch the
// build report flags.
type Stats struct {
	Fuzzy      int64
	Adopted    int64
	Unresolved int64
}

// Stats returns the current counter values.
func (r *Rewriter) Stats() Stats {
	return Stats{
		Fuzzy:      r.fuzzy.Load(),
		Adopted:    r.adopted.Load(),
		Unresolved: r.unresolved.Load(),
	}
}

var styleURLRe = regexp.MustCompile(`url\(["']?([^"')\s]+)["']?\)`)

// Rewrite resolves every reference in doc: body anchors, images and
// inline background-image styles, plus the cover reference and card
// targets. sourcePath is the document's absolute source file path;
// relative references resolve against its directory.
func (r *Rewriter) Rewrite(doc *htmldoc.Document, sourcePath string) {
	dir := filepath.Dir(sourcePath)

	if doc.Body != nil {
		for _, a := range htmldoc.FindAll(doc.Body, htmldoc.ByTag("a")) {
			if href := htmldoc.Attr(a, "href"); href != "" {
				if resolved, ok := r.RewriteHref(href, dir); ok {
					htmldoc.SetAttr(a, "href", resolved)
				}
			}
		}
		for _, img := range htmldoc.FindAll(doc.Body, htmldoc.ByTag("img")) {
			if src := htmldoc.Attr(img, "src"); src != "" {
				if resolved, ok := r.RewriteAssetRef(src, dir); ok {
					htmldoc.SetAttr(img, "src", resolved)
				}
			}
		}
		for _, n := range htmldoc.FindAll(doc.Body, hasBackgroundImage) {
			style := htmldoc.Attr(n, "style")
			for _, m := range styleURLRe.FindAllStringSubmatch(style, -1) {
				if resolved, ok := r.RewriteAssetRef(m[1], dir); ok {
					style = strings.ReplaceAll(style, m[1], resolved)
				}
			}
			htmldoc.SetAttr(n, "style", style)
		}
	}

	if doc.CoverRef != "" {
		if resolved, ok := r.RewriteAssetRef(doc.CoverRef, dir); ok {
			doc.CoverRef = resolved
		}
	}
	for i := range doc.Cards {
		card := &doc.Cards[i]
		if card.Target != "" {
			if resolved, ok := r.RewriteHref(card.Target, dir); ok {
				card.Target = resolved
			}
		}
		if card.Icon != "" {
			if resolved, ok := r.RewriteAssetRef(card.Icon, dir); ok {
				card.Icon = resolved
			}
		}
		if card.Image != "" {
			if resolved, ok := r.RewriteAssetRef(card.Image, dir); ok {
				card.Image = resolved
			}
		}
	}
}

func hasBackgroundImage(n *html.Node) bool {
	return strings.Contains(htmldoc.Attr(n, "style"), "background-image")
}

// RewriteHref resolves one link target. ok=false means no rewrite:
// anchors, script targets, site-absolute paths and unmatched external
// links pass through unchanged.
func (r *Rewriter) RewriteHref(href, sourceDir string) (string, bool) {
	if href == "" || strings.HasPrefix(href, "#") || strings.HasPrefix(href, "javascript:") {
		return "", false
	}
	decoded := source.Decode(href)

	if isExternal(decoded) {
		for _, host := range r.cfg.SiteHosts {
			if strings.Contains(decoded, host) {
				return "/", true
			}
		}
		for _, host := range r.cfg.ExportHosts {
			if !strings.Contains(decoded, host) {
				continue
			}
			if id, ok := extractIDFromURL(decoded); ok {
				if slug, ok := r.lookupSlug(id); ok {
					return slug, true
				}
			}
			break
		}
		return "", false
	}

	// Already site-absolute, nothing to resolve.
	if strings.HasPrefix(decoded, "/") {
		return "", false
	}

	if strings.HasSuffix(decoded, ".html") || strings.Contains(decoded, ".html#") {
		target, fragment := splitFragment(decoded)

		abs := filepath.Join(sourceDir, filepath.FromSlash(target))
		if _, id, ok := source.ExtractID(filepath.Base(abs)); ok {
			if slug, ok := r.lookupSlug(id); ok {
				return slug + fragment, true
			}
		}
		// The unresolved path form may still carry a matchable name.
		if _, id, ok := source.ExtractID(path.Base(target)); ok {
			if slug, ok := r.lookupSlug(id); ok {
				return slug + fragment, true
			}
		}
		r.unresolved.Add(1)
		return "", false
	}

	return r.RewriteAssetRef(href, sourceDir)
}

// RewriteAssetRef resolves one asset reference: exact relative path,
// then separator-normalized path, then filename-only fuzzy match, then
// out-of-tree adoption. ok=false leaves the reference untouched.
func (r *Rewriter) RewriteAssetRef(ref, sourceDir string) (string, bool) {
	if ref == "" || strings.HasPrefix(ref, "data:") || strings.HasPrefix(ref, "/") || isExternal(ref) {
		return "", false
	}
	decoded := source.Decode(ref)

	abs := filepath.Join(sourceDir, filepath.FromSlash(decoded))
	rel, err := filepath.Rel(r.cfg.ContentRoot, abs)
	if err != nil {
		r.unresolved.Add(1)
		return "", false
	}
	relSlash := filepath.ToSlash(rel)

	if url, ok := r.cfg.Assets.Lookup(relSlash); ok {
		return url, true
	}

	base := path.Base(strings.ReplaceAll(decoded, "\\", "/"))
	if url, ok := r.cfg.Assets.LookupByFilename(base); ok {
		r.fuzzy.Add(1)
		return url, true
	}

	if strings.HasPrefix(relSlash, "../") && r.cfg.ExportRoot != "" {
		if url, ok := r.adoptOutOfTree(abs, relSlash); ok {
			return url, true
		}
	}

	r.unresolved.Add(1)
	return "", false
}

// adoptOutOfTree registers an asset living outside the scanned tree
// but inside the export superset. The map insert decides a single
// winner, and only the winner materializes the file, so the copy
// happens once per source path no matter how many documents
// reference it.
func (r *Rewriter) adoptOutOfTree(abs, relSlash string) (string, bool) {
	info, err := os.Stat(abs)
	if err != nil || info.IsDir() {
		return "", false
	}
	relExport, err := filepath.Rel(r.cfg.ExportRoot, abs)
	if err != nil || strings.HasPrefix(filepath.ToSlash(relExport), "../") {
		return "", false
	}

	url, added := r.cfg.Assets.Adopt(relSlash)
	if added {
		r.adopted.Add(1)
		name := strings.TrimPrefix(url, "/assets/")
		if r.cfg.Files != nil {
			if err := r.cfg.Files.Materialize(abs, name); err != nil {
				slog.Warn("failed to materialize adopted asset",
					"source", abs, "name", name, "error", err)
			}
		}
	}
	return url, true
}

// lookupSlug resolves an identifier against the slug map, falling back
// to the override table for documents outside the scanned tree.
func (r *Rewriter) lookupSlug(id string) (string, bool) {
	if slug, ok := r.cfg.Slugs[id]; ok {
		return slug, true
	}
	slug, ok := r.cfg.Overrides[id]
	return slug, ok
}

func isExternal(ref string) bool {
	return strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://")
}

func splitFragment(ref string) (target, fragment string) {
	if i := strings.LastIndex(ref, "#"); i >= 0 {
		return ref[:i], ref[i:]
	}
	return ref, ""
}

// extractIDFromURL pulls a 32-hex identifier out of a hosted-export
// URL, tolerating the dashed UUID form.
func extractIDFromURL(url string) (string, bool) {
	if m := source.HexID.FindString(strings.ReplaceAll(url, "-", "")); m != "" {
		return m, true
	}
	return "", false
}
