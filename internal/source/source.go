// Package source walks a content export tree and presents it to the
// pipeline as documents and assets. It is the only package that knows
// the export's on-disk naming scheme (titles with a trailing 32-hex
// identifier); everything downstream works with the extracted fields.
package source

import (
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// Document is one exported HTML page. The body is not loaded here;
// callers read it when they process the page.
type Document struct {
	ID       string   // 32-char lowercase hex identifier from the filename
	RawTitle string   // title portion of the filename, percent-decoded
	Path     string   // absolute path of the source file
	RelDir   []string // directory segments below the content root, as stored
}

// Asset is one media file under the content root.
type Asset struct {
	RelPath string // slash-separated path relative to the content root
	AbsPath string
}

// Tree is the scanned input: all documents and assets below one
// content root, in deterministic (lexicographic) walk order.
type Tree struct {
	Root      string
	Documents []Document
	Assets    []Asset
}

var (
	// Filenames look like "Estatutos 55e021b5b0194c9ebaba695a74433538.html".
	filenameIDRe = regexp.MustCompile(`^(.+?)\s+([a-f0-9]{32})\.html$`)
	// Some files carry a truncated identifier instead.
	filenameShortIDRe = regexp.MustCompile(`^(.+?)\s+([a-f0-9]{4}-[a-f0-9]{4})\.html$`)
	// Directory names carry the same identifier suffix without extension.
	dirIDSuffixRe = regexp.MustCompile(`\s+[a-f0-9]{32}$`)
	// HexID matches a bare 32-hex identifier anywhere in a string.
	HexID = regexp.MustCompile(`[a-f0-9]{32}`)
)

// ExtractID splits an export filename into its title and identifier.
// Returns ok=false when the filename does not follow the export scheme.
func ExtractID(filename string) (title, id string, ok bool) {
	if m := filenameIDRe.FindStringSubmatch(filename); m != nil {
		return strings.TrimSpace(m[1]), m[2], true
	}
	if m := filenameShortIDRe.FindStringSubmatch(filename); m != nil {
		return strings.TrimSpace(m[1]), m[2], true
	}
	return "", "", false
}

// ExtractIDFromPath extracts the identifier from any path or URL whose
// final element names an export document.
func ExtractIDFromPath(p string) (string, bool) {
	base := filepath.Base(strings.TrimSuffix(p, "/"))
	_, id, ok := ExtractID(base)
	return id, ok
}

// CleanSegment strips the identifier suffix from a directory segment
// and percent-decodes it.
func CleanSegment(seg string) string {
	seg = Decode(seg)
	return strings.TrimSpace(dirIDSuffixRe.ReplaceAllString(seg, ""))
}

// Decode percent-decodes s, returning s unchanged when it is not valid
// percent-encoding. Export trees mix encoded and literal names freely.
func Decode(s string) string {
	if decoded, err := url.PathUnescape(s); err == nil {
		return decoded
	}
	return s
}

// Scan walks the content root and collects documents and every file
// whose lowercased extension is in mediaExts. filepath.WalkDir visits
// entries in lexical order, which keeps asset collision resolution
// deterministic across runs.
func Scan(root string, mediaExts map[string]bool) (*Tree, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve content root: %w", err)
	}
	if _, err := os.Stat(absRoot); err != nil {
		return nil, fmt.Errorf("content root not accessible: %w", err)
	}

	tree := &Tree{Root: absRoot}
	err = filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		name := d.Name()
		if title, id, ok := ExtractID(name); ok {
			rel, relErr := filepath.Rel(absRoot, filepath.Dir(path))
			if relErr != nil {
				return relErr
			}
			var segs []string
			if rel != "." {
				segs = strings.Split(filepath.ToSlash(rel), "/")
			}
			tree.Documents = append(tree.Documents, Document{
				ID:       id,
				RawTitle: Decode(title),
				Path:     path,
				RelDir:   segs,
			})
			return nil
		}

		ext := strings.ToLower(filepath.Ext(name))
		if mediaExts[ext] {
			rel, relErr := filepath.Rel(absRoot, path)
			if relErr != nil {
				return relErr
			}
			tree.Assets = append(tree.Assets, Asset{
				RelPath: filepath.ToSlash(rel),
				AbsPath: path,
			})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk content root: %w", err)
	}
	return tree, nil
}
