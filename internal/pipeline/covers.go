package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"git.home.luguber.info/inful/sitemigrate/internal/resolve"
	"git.home.luguber.info/inful/sitemigrate/internal/source"
)

var coverImageRe = regexp.MustCompile(`<img\s+class="page-cover-image"\s+src="([^"]+)"`)

// scanCovers pre-scans every source document for cover image tags and
// resolves them so hub cards can show the target page's cover. Local
// assets win over external URLs; the manual table wins over both.
func scanCovers(tree *source.Tree, assets *resolve.AssetMap, manual map[string]string) (map[string]string, error) {
	covers := make(map[string]string)

	for _, doc := range tree.Documents {
		raw, err := os.ReadFile(doc.Path)
		if err != nil {
			return nil, fmt.Errorf("read %s for cover scan: %w", doc.Path, err)
		}

		var localURL, externalURL string
		for _, m := range coverImageRe.FindAllStringSubmatch(string(raw), -1) {
			src := m[1]
			if strings.HasPrefix(src, "http") {
				if externalURL == "" {
					externalURL = strings.ReplaceAll(src, "&amp;", "&")
				}
				continue
			}
			if localURL != "" {
				continue
			}
			decoded := source.Decode(src)
			abs := filepath.Join(filepath.Dir(doc.Path), filepath.FromSlash(decoded))
			rel, err := filepath.Rel(tree.Root, abs)
			if err != nil {
				continue
			}
			if url, ok := assets.Lookup(filepath.ToSlash(rel)); ok {
				localURL = url
			}
		}

		switch {
		case localURL != "":
			covers[doc.ID] = localURL
		case externalURL != "":
			covers[doc.ID] = externalURL
		}
	}

	for id, url := range manual {
		covers[id] = url
	}
	return covers, nil
}
