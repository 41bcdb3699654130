package resolve

import (
	"path"
	"strconv"
	"strings"
	"sync"

	"git.home.luguber.info/inful/sitemigrate/internal/slug"
	"git.home.luguber.info/inful/sitemigrate/internal/source"
)

const (
	maxAssetNameLen = 80
	maxParentLen    = 30
	assetPrefix     = "/assets/"
)

// AssetMap maps an asset's relative source path to its public URL
// (/assets/{name}). Names are made unique at insertion time, so
// insertion order decides naming; the initial build pass inserts in
// lexicographic walk order. After the build pass the map only grows
// through Adopt, which is safe for concurrent use.
type AssetMap struct {
	mu     sync.Mutex
	byPath map[string]string   // relative source path -> public URL
	names  map[string]struct{} // assigned filenames, global uniqueness
	order  []string            // insertion order of source paths
}

// NewAssetMap returns an empty asset map.
func NewAssetMap() *AssetMap {
	return &AssetMap{
		byPath: make(map[string]string),
		names:  make(map[string]struct{}),
	}
}

// BuildAssetMap runs the initial full pass over the scanned assets.
func BuildAssetMap(assets []source.Asset) *AssetMap {
	m := NewAssetMap()
	for _, a := range assets {
		m.insert(a.RelPath)
	}
	return m
}

// insert assigns a collision-free name for relPath and records it.
// Existing entries are returned unchanged.
func (m *AssetMap) insert(relPath string) string {
	if url, ok := m.byPath[relPath]; ok {
		return url
	}

	base := path.Base(source.Decode(relPath))
	ext := strings.ToLower(path.Ext(base))
	stem := strings.TrimSuffix(base, path.Ext(base))

	clean := slug.Make(stem, maxAssetNameLen)
	if clean == "" {
		clean = "file"
	}
	name := clean + ext

	// First collision: qualify with the immediate parent directory.
	if _, taken := m.names[name]; taken {
		parent := path.Base(path.Dir(source.Decode(relPath)))
		if parentSlug := slug.Make(parent, maxParentLen); parentSlug != "" {
			name = parentSlug + "-" + name
		}
	}

	// Still colliding: numeric suffix before the extension.
	if _, taken := m.names[name]; taken {
		stemPart := strings.TrimSuffix(name, ext)
		for i := 2; ; i++ {
			candidate := stemPart + "-" + strconv.Itoa(i) + ext
			if _, taken := m.names[candidate]; !taken {
				name = candidate
				break
			}
		}
	}

	m.names[name] = struct{}{}
	url := assetPrefix + name
	m.byPath[relPath] = url
	m.order = append(m.order, relPath)
	return url
}

// Lookup resolves a relative source path, trying the exact key first
// and then the key with normalized separators.
func (m *AssetMap) Lookup(relPath string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if url, ok := m.byPath[relPath]; ok {
		return url, true
	}
	normalized := strings.ReplaceAll(relPath, "\\", "/")
	url, ok := m.byPath[normalized]
	return url, ok
}

// LookupByFilename is the last-resort fuzzy match: the first entry (in
// insertion order, which is deterministic) whose source filename
// equals name wins. Callers count how often this branch fires so the
// build report can flag degraded-confidence resolutions.
func (m *AssetMap) LookupByFilename(name string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, relPath := range m.order {
		if path.Base(relPath) == name {
			return m.byPath[relPath], true
		}
	}
	return "", false
}

// Adopt registers an out-of-tree asset discovered during reference
// rewriting. It is an insert-if-absent: the first caller wins the name
// assignment and gets added=true, later callers for the same path get
// the recorded URL. The caller materializes the file only when
// added is true, so a path is never copied twice.
func (m *AssetMap) Adopt(relPath string) (url string, added bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.byPath[relPath]; ok {
		return existing, false
	}
	return m.insert(relPath), true
}

// Len returns the number of mapped assets.
func (m *AssetMap) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.byPath)
}

// Entries returns (source path, assigned filename) pairs in insertion
// order, for the asset-copy collaborator.
func (m *AssetMap) Entries() []AssetEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	entries := make([]AssetEntry, 0, len(m.order))
	for _, relPath := range m.order {
		entries = append(entries, AssetEntry{
			SourcePath: relPath,
			Name:       strings.TrimPrefix(m.byPath[relPath], assetPrefix),
		})
	}
	return entries
}

// AssetEntry pairs an asset's source path with its assigned filename.
type AssetEntry struct {
	SourcePath string
	Name       string
}
