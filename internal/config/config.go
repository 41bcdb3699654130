// Package config loads the sitemigrate configuration. All heuristic
// lookup tables used by the resolvers and the document parser live
// here rather than as code literals, so a test (or a different export)
// can substitute its own minimal tables.
package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the application configuration.
type Config struct {
	Site   SiteConfig   `yaml:"site"`
	Paths  PathsConfig  `yaml:"paths"`
	Nav    []NavItem    `yaml:"nav,omitempty"`
	Tables TablesConfig `yaml:"tables"`
}

// SiteConfig describes the produced site.
type SiteConfig struct {
	Name        string `yaml:"name"`
	Tagline     string `yaml:"tagline,omitempty"`
	URL         string `yaml:"url"`
	Lang        string `yaml:"lang,omitempty"`
	Footer      string `yaml:"footer,omitempty"`
	ContactMail string `yaml:"contact_mail,omitempty"`
}

// PathsConfig locates the export input and the output tree.
type PathsConfig struct {
	ExportRoot string `yaml:"export_root"` // the full export superset
	ContentDir string `yaml:"content_dir"` // document tree, relative to export_root
	StaticDir  string `yaml:"static_dir,omitempty"`
	ExtraDir   string `yaml:"extra_assets_dir,omitempty"` // pre-existing assets copied verbatim
	ExtrasDir  string `yaml:"extras_dir,omitempty"`       // hand-authored markdown pages
	OutputDir  string `yaml:"output_dir"`
	ManifestDB string `yaml:"manifest_db,omitempty"` // sqlite build manifest store
}

// NavItem is one main navigation entry.
type NavItem struct {
	Label    string    `yaml:"label"`
	URL      string    `yaml:"url"`
	Children []NavItem `yaml:"children,omitempty"`
}

// DomainCard maps an external domain to a styled link card. Remove
// marks domains whose elements cannot render without live script and
// are dropped from the output entirely.
type DomainCard struct {
	Label  string `yaml:"label,omitempty"`
	Icon   string `yaml:"icon,omitempty"`
	Remove bool   `yaml:"remove,omitempty"`
}

// FileType maps a download extension to an icon category and label.
type FileType struct {
	Category string `yaml:"category"`
	Label    string `yaml:"label"`
}

// TablesConfig holds every lookup table the heuristics consult.
type TablesConfig struct {
	// Sections maps a cleaned top-level directory name to the first
	// URL path component (which may itself contain a slash).
	Sections map[string]string `yaml:"sections"`
	// SectionLabels maps a section token to its breadcrumb label.
	SectionLabels map[string]string `yaml:"section_labels"`
	// NoiseSegments are intermediate directory slugs dropped from URLs.
	NoiseSegments []string `yaml:"noise_segments"`
	// SlugOverrides pins a document identifier to a literal slug.
	// Overrides win over every heuristic.
	SlugOverrides map[string]string `yaml:"slug_overrides"`
	// ManualCovers backfills card cover images by document identifier.
	ManualCovers map[string]string `yaml:"manual_covers"`
	// SkipTitles are page titles excluded from the build.
	SkipTitles []string `yaml:"skip_titles"`
	// MediaExts is the asset extension allow-list (lowercase, dotted).
	MediaExts []string `yaml:"media_exts"`
	// NavKeywords identify the exported navigation header block.
	NavKeywords []string `yaml:"nav_keywords"`
	// FooterPhrase starts the exported footer call-to-action block.
	FooterPhrase string `yaml:"footer_phrase"`
	// CopyrightMarks identify the copyright line (all must appear).
	CopyrightMarks []string `yaml:"copyright_marks"`
	// ContactPrefixes are paragraph prefixes stripped from bodies.
	ContactPrefixes []string `yaml:"contact_prefixes"`
	// IconURLSubstring marks decorative icon images by URL fragment.
	IconURLSubstring string `yaml:"icon_url_substring"`
	// UglyLinkPatterns mark raw storage URLs shown as link text.
	UglyLinkPatterns []string `yaml:"ugly_link_patterns"`
	// PodcastTitles maps an episode slug to its display title.
	PodcastTitles map[string]string `yaml:"podcast_titles"`
	// PodcastHosts are hosts whose episode links form podcast grids.
	PodcastHosts []string `yaml:"podcast_hosts"`
	// DomainCards maps external domains to link-card styling.
	DomainCards map[string]DomainCard `yaml:"domain_cards"`
	// FileTypes maps download extensions to icon/label pairs.
	FileTypes map[string]FileType `yaml:"file_types"`
	// SiteHosts are former hosted locations of this same site; links
	// to them collapse to the site root.
	SiteHosts []string `yaml:"site_hosts"`
	// ExportHosts are hosts whose URLs embed document identifiers.
	ExportHosts []string `yaml:"export_hosts"`
	// ContentAppend adds extra HTML to specific slugs.
	ContentAppend map[string]string `yaml:"content_append"`
	// RemoveIDs drops elements by id attribute on specific slugs.
	RemoveIDs map[string][]string `yaml:"remove_ids"`
	// ImageLinkRewrite re-points anchor hrefs by element id.
	ImageLinkRewrite map[string]string `yaml:"image_link_rewrite"`
	// HubSections are section tokens rendered with the card layout.
	HubSections []string `yaml:"hub_sections"`
}

// MediaExtSet returns the media extension allow-list as a set.
func (t TablesConfig) MediaExtSet() map[string]bool {
	set := make(map[string]bool, len(t.MediaExts))
	for _, ext := range t.MediaExts {
		set[ext] = true
	}
	return set
}

// Load reads configuration from path. A .env file is loaded first when
// present, and environment variables referenced in the YAML content
// are expanded before unmarshaling.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Note: .env file couldn't be loaded: %v\n", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the required paths are set.
func (c *Config) Validate() error {
	if c.Paths.ExportRoot == "" {
		return fmt.Errorf("paths.export_root is required")
	}
	if c.Paths.OutputDir == "" {
		return fmt.Errorf("paths.output_dir is required")
	}
	return nil
}

// Init writes an example configuration file.
func Init(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", path)
	}

	cfg := Default()
	cfg.Paths = PathsConfig{
		ExportRoot: "./export",
		ContentDir: "Site map",
		OutputDir:  "./output",
		ManifestDB: "./sitemigrate.db",
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal example config: %w", err)
	}
	header := "# sitemigrate configuration\n# Tables override the built-in defaults; omit a table to keep them.\n"
	if err := os.WriteFile(path, append([]byte(header), data...), 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}
