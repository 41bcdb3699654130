// Package resolve builds the two global mappings every later stage
// depends on: document identifier to URL slug, and asset source path
// to public asset URL. Both passes run to completion before any
// document is parsed; only the asset map accepts late additions (see
// AssetMap.Adopt).
package resolve

import (
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"git.home.luguber.info/inful/sitemigrate/internal/slug"
	"git.home.luguber.info/inful/sitemigrate/internal/source"
)

const (
	maxSlugLen    = 60
	maxSectionLen = 40
)

// SlugResolver derives URL slugs from document titles and directory
// context. The tables come from configuration so fixtures can swap
// them out.
type SlugResolver struct {
	Sections  map[string]string // cleaned directory name -> section token
	Noise     map[string]bool   // intermediate segment slugs dropped from URLs
	Overrides map[string]string // document id -> literal slug, wins always

	// sectionsBySlug indexes the section table by slug-folded key. Built
	// from sorted keys: when two keys fold to the same slug, the
	// lexicographically first one owns the entry.
	sectionsBySlug map[string]string
}

// NewSlugResolver builds a resolver from configuration tables.
func NewSlugResolver(sections map[string]string, noise []string, overrides map[string]string) *SlugResolver {
	noiseSet := make(map[string]bool, len(noise))
	for _, n := range noise {
		noiseSet[slug.Make(n, 0)] = true
	}

	keys := make([]string, 0, len(sections))
	for k := range sections {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	bySlug := make(map[string]string, len(sections))
	for _, k := range keys {
		folded := slug.Make(k, 0)
		if _, taken := bySlug[folded]; !taken {
			bySlug[folded] = sections[k]
		}
	}

	return &SlugResolver{
		Sections:       sections,
		Noise:          noiseSet,
		Overrides:      overrides,
		sectionsBySlug: bySlug,
	}
}

// SlugResult is the output of the identity pass.
type SlugResult struct {
	Slugs      map[string]string // id -> slug
	Titles     map[string]string // id -> decoded title
	Paths      map[string]string // id -> absolute source path
	Collisions int               // distinct ids whose computed slug collided
}

// Resolve assigns a slug to every document. Distinct identifiers
// computing the same slug are detected: the later document (in walk
// order) gets a numeric suffix and the collision is logged loudly,
// since a silent overwrite would destroy content.
func (r *SlugResolver) Resolve(docs []source.Document) *SlugResult {
	res := &SlugResult{
		Slugs:  make(map[string]string, len(docs)),
		Titles: make(map[string]string, len(docs)),
		Paths:  make(map[string]string, len(docs)),
	}
	taken := make(map[string]string, len(docs)) // slug -> id

	for _, doc := range docs {
		res.Titles[doc.ID] = doc.RawTitle
		res.Paths[doc.ID] = doc.Path

		s, overridden := r.Overrides[doc.ID]
		if !overridden {
			s = r.slugFor(doc)
		}

		if prev, exists := taken[s]; exists && prev != doc.ID {
			if overridden {
				// Overrides are deliberate; trust them even on collision.
				slog.Error("slug override collides with existing slug",
					"slug", s, "id", doc.ID, "existing_id", prev)
			} else {
				res.Collisions++
				disambiguated := disambiguate(s, taken)
				slog.Error("slug collision, disambiguating later document",
					"slug", s, "id", doc.ID, "existing_id", prev, "assigned", disambiguated)
				s = disambiguated
			}
		}
		taken[s] = doc.ID
		res.Slugs[doc.ID] = s
	}
	return res
}

// slugFor computes /{section}/{intermediates...}/{base}/ per the
// heuristics: title slug with "page" fallback, section from the first
// directory segment matching the section table, remaining segments
// cleaned of noise and of duplicates of the base slug.
func (r *SlugResolver) slugFor(doc source.Document) string {
	base := slug.Make(doc.RawTitle, maxSlugLen)
	if base == "" {
		base = "page"
	}

	if len(doc.RelDir) == 0 {
		return "/" + base + "/"
	}

	cleaned := make([]string, len(doc.RelDir))
	for i, seg := range doc.RelDir {
		cleaned[i] = source.CleanSegment(seg)
	}

	section, sectionIdx := r.findSection(cleaned)
	if section == "" {
		section = slug.Make(cleaned[0], maxSectionLen)
		sectionIdx = 0
		if section == "" {
			section = "page"
		}
	}

	var sub []string
	for _, seg := range cleaned[sectionIdx+1:] {
		segSlug := slug.Make(seg, maxSlugLen)
		if segSlug == "" || r.Noise[segSlug] || segSlug == base {
			continue
		}
		sub = append(sub, segSlug)
	}

	parts := append([]string{section}, append(sub, base)...)
	return "/" + strings.Join(parts, "/") + "/"
}

// findSection returns the section token of the first directory segment
// present in the section table, matching first by exact name and then
// by slug equality through the precomputed index.
func (r *SlugResolver) findSection(cleaned []string) (string, int) {
	for i, seg := range cleaned {
		if token, ok := r.Sections[seg]; ok {
			return token, i
		}
		if token, ok := r.sectionsBySlug[slug.Make(seg, 0)]; ok {
			return token, i
		}
	}
	return "", -1
}

// disambiguate appends the smallest numeric suffix that frees the slug.
func disambiguate(s string, taken map[string]string) string {
	trimmed := strings.TrimSuffix(s, "/")
	for i := 2; ; i++ {
		candidate := trimmed + "-" + strconv.Itoa(i) + "/"
		if _, exists := taken[candidate]; !exists {
			return candidate
		}
	}
}
