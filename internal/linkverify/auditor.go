package linkverify

import (
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Broken is one dangling reference found in the output tree.
type Broken struct {
	Page      string // site path of the referring page, e.g. /blog/entrada/
	URL       string // the broken reference as written
	Tag       string
	Attribute string
	Text      string
}

// AuditReport groups broken references by referring page.
type AuditReport struct {
	Pages    int // pages scanned
	Links    int // internal references checked
	ByPage   map[string][]Broken
	External int // external references seen (not checked)
}

// Total returns the number of broken references found.
func (r *AuditReport) Total() int {
	n := 0
	for _, b := range r.ByPage {
		n += len(b)
	}
	return n
}

// SortedPages returns the referring pages with broken links in stable
// order, for deterministic report output.
func (r *AuditReport) SortedPages() []string {
	pages := make([]string, 0, len(r.ByPage))
	for p := range r.ByPage {
		pages = append(pages, p)
	}
	sort.Strings(pages)
	return pages
}

// Auditor verifies a produced output tree.
type Auditor struct {
	outputDir string
	siteURL   string
}

// NewAuditor builds an auditor over one output tree. siteURL lets
// absolute links to the site's own host be treated as internal.
func NewAuditor(outputDir, siteURL string) *Auditor {
	return &Auditor{outputDir: outputDir, siteURL: siteURL}
}

// Audit walks every rendered page and checks each internal reference
// against the on-disk layout: /slug/ resolves to slug/index.html,
// anything else to the literal file path.
func (a *Auditor) Audit() (*AuditReport, error) {
	report := &AuditReport{ByPage: make(map[string][]Broken)}

	err := filepath.WalkDir(a.outputDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || d.Name() != "index.html" {
			return nil
		}

		pagePath, err := a.sitePath(path)
		if err != nil {
			return err
		}
		links, err := ExtractLinks(path, a.siteURL)
		if err != nil {
			return fmt.Errorf("extract links from %s: %w", pagePath, err)
		}
		report.Pages++

		for _, link := range links {
			if !ShouldVerifyLink(link) {
				continue
			}
			if !link.IsInternal {
				report.External++
				continue
			}
			report.Links++
			if !a.exists(link.URL, filepath.Dir(path)) {
				report.ByPage[pagePath] = append(report.ByPage[pagePath], Broken{
					Page:      pagePath,
					URL:       link.URL,
					Tag:       link.Tag,
					Attribute: link.Attribute,
					Text:      link.Text,
				})
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk output tree: %w", err)
	}
	return report, nil
}

// sitePath maps an output file back to its public page path.
func (a *Auditor) sitePath(indexPath string) (string, error) {
	rel, err := filepath.Rel(a.outputDir, filepath.Dir(indexPath))
	if err != nil {
		return "", err
	}
	if rel == "." {
		return "/", nil
	}
	return "/" + filepath.ToSlash(rel) + "/", nil
}

// exists checks one internal reference against the output tree.
func (a *Auditor) exists(ref, pageDir string) bool {
	// Strip the site's own origin from absolute self-links.
	if a.siteURL != "" && strings.HasPrefix(ref, a.siteURL) {
		ref = strings.TrimPrefix(ref, a.siteURL)
		if ref == "" {
			ref = "/"
		}
	}

	// Fragment and query do not affect file existence.
	if i := strings.IndexAny(ref, "#?"); i >= 0 {
		ref = ref[:i]
		if ref == "" {
			return true
		}
	}

	decoded := ref
	if d, err := url.PathUnescape(ref); err == nil {
		decoded = d
	}

	var target string
	if strings.HasPrefix(decoded, "/") {
		target = filepath.Join(a.outputDir, filepath.FromSlash(decoded))
	} else {
		target = filepath.Join(pageDir, filepath.FromSlash(decoded))
	}

	info, err := os.Stat(target)
	if err == nil && !info.IsDir() {
		return true
	}
	// Directory-style page paths resolve to their index document.
	info, err = os.Stat(filepath.Join(target, "index.html"))
	return err == nil && !info.IsDir()
}
