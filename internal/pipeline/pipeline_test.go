package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sitemigrate/internal/config"
)

const (
	hubID   = "1111111111111111111111111111aaaa"
	entryID = "2222222222222222222222222222bbbb"
)

// testExport lays out a minimal export: a hub page at the root whose
// listing table links to one entry inside a section directory, plus
// one image asset next to the entry.
func testExport(t *testing.T) *config.Config {
	t.Helper()
	exportRoot := t.TempDir()
	contentDir := "Site map"
	blogDir := filepath.Join(exportRoot, contentDir, "Blog "+hubID)
	require.NoError(t, os.MkdirAll(blogDir, 0o755))

	hub := `<html><body><article id="` + hubID + `">
<h1 class="page-title">Blog</h1>
<div class="page-body">
<table class="collection-content">
<tr><td><a href="Blog%20` + hubID + `/Mi%20Entrada%20` + entryID + `.html">Mi Entrada</a></td><td>Una entrada</td></tr>
</table>
</div></article></body></html>`
	require.NoError(t, os.WriteFile(
		filepath.Join(exportRoot, contentDir, "Blog "+hubID+".html"), []byte(hub), 0o644))

	entry := `<html><body><article id="` + entryID + `">
<img class="page-cover-image" src="foto.png">
<h1 class="page-title">Mi Entrada</h1>
<div class="page-body">
<p>Este es el primer párrafo de la entrada, con suficiente texto para la descripción.</p>
<p><img src="foto.png"></p>
<p><a href="../Blog%20` + hubID + `.html">volver al blog</a></p>
</div></article></body></html>`
	require.NoError(t, os.WriteFile(filepath.Join(blogDir, "Mi Entrada "+entryID+".html"), []byte(entry), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(blogDir, "foto.png"), []byte("png-bytes"), 0o644))

	return &config.Config{
		Site: config.SiteConfig{
			Name:    "Sitio de Prueba",
			Tagline: "Probando",
			URL:     "https://example.org",
		},
		Paths: config.PathsConfig{
			ExportRoot: exportRoot,
			ContentDir: contentDir,
			OutputDir:  filepath.Join(t.TempDir(), "out"),
		},
		Nav: []config.NavItem{{Label: "Blog", URL: "/blog/"}},
		Tables: config.TablesConfig{
			Sections:      map[string]string{"Blog": "blog"},
			SectionLabels: map[string]string{"blog": "Blog"},
			MediaExts:     []string{".png"},
			ContentAppend: map[string]string{
				"/blog/mi-entrada/": `<div class="appended">Extra</div>`,
			},
		},
	}
}

func readOutput(t *testing.T, cfg *config.Config, parts ...string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(append([]string{cfg.Paths.OutputDir}, parts...)...))
	require.NoError(t, err)
	return string(data)
}

func TestRunBuildsCompleteSite(t *testing.T) {
	cfg := testExport(t)
	report, err := New(cfg, WithWorkers(2)).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, report.Pages) // hub, entry, default home
	assert.Equal(t, 1, report.Hubs)
	assert.Zero(t, report.Errors)
	assert.Zero(t, report.Collisions)
	assert.Zero(t, report.Unresolved)
	assert.Equal(t, 1, report.Assets)
	assert.Equal(t, "success", report.Outcome())

	entry := readOutput(t, cfg, "blog", "mi-entrada", "index.html")
	assert.Contains(t, entry, "<h1 class=\"article-title\">Mi Entrada</h1>")
	assert.Contains(t, entry, `src="/assets/foto.png"`)
	assert.Contains(t, entry, `href="/blog/"`)
	assert.Contains(t, entry, `<div class="appended">Extra</div>`)
	assert.Contains(t, entry, `name="description"`)
	assert.Contains(t, entry, `rel="canonical" href="https://example.org/blog/mi-entrada/"`)

	hub := readOutput(t, cfg, "blog", "index.html")
	assert.Contains(t, hub, `class="card"`)
	assert.Contains(t, hub, `href="/blog/mi-entrada/"`)
	// Card image backfilled from the entry's cover via the pre-scan.
	assert.Contains(t, hub, `src="/assets/foto.png"`)

	home := readOutput(t, cfg, "index.html")
	assert.Contains(t, home, "Sitio de Prueba")

	assert.Equal(t, "png-bytes", readOutput(t, cfg, "assets", "foto.png"))

	sitemap := readOutput(t, cfg, "sitemap.xml")
	assert.Contains(t, sitemap, "<loc>https://example.org/blog/mi-entrada/</loc>")
	assert.Contains(t, sitemap, "<loc>https://example.org/</loc>")

	robots := readOutput(t, cfg, "robots.txt")
	assert.Contains(t, robots, "Sitemap: https://example.org/sitemap.xml")
}

func TestRunIsRepeatable(t *testing.T) {
	cfg := testExport(t)
	p := New(cfg)

	first, err := p.Run(context.Background())
	require.NoError(t, err)
	entryFirst := readOutput(t, cfg, "blog", "mi-entrada", "index.html")

	second, err := New(cfg).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first.Pages, second.Pages)
	assert.Equal(t, entryFirst, readOutput(t, cfg, "blog", "mi-entrada", "index.html"))
}

func TestRunSkipsConfiguredTitles(t *testing.T) {
	cfg := testExport(t)
	cfg.Tables.SkipTitles = []string{"Mi Entrada"}

	report, err := New(cfg).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, report.Pages) // hub and home only
	_, err = os.Stat(filepath.Join(cfg.Paths.OutputDir, "blog", "mi-entrada"))
	assert.True(t, os.IsNotExist(err))
}

func TestHubSectionForcesCardLayout(t *testing.T) {
	cfg := testExport(t)
	cfg.Tables.HubSections = []string{"blog"}

	report, err := New(cfg).Run(context.Background())
	require.NoError(t, err)

	// The entry would render as an article on content alone; its
	// section is configured as a hub section, so both pages count.
	assert.Equal(t, 2, report.Hubs)
	entry := readOutput(t, cfg, "blog", "mi-entrada", "index.html")
	assert.Contains(t, entry, `<h1 class="hub-title">Mi Entrada</h1>`)
	assert.NotContains(t, entry, `class="article-title"`)
}

func TestRunFailsCleanlyOnMissingTree(t *testing.T) {
	cfg := testExport(t)
	cfg.Paths.ExportRoot = filepath.Join(cfg.Paths.ExportRoot, "does-not-exist")

	_, err := New(cfg).Run(context.Background())
	assert.Error(t, err)
}

func TestApplySlugTablesRemovesAndRewrites(t *testing.T) {
	doc := docWithBody(t,
		`<div id="widget">fuera</div><p id="keep">texto</p>`+
			`<figure id="fig"><a href="old"><img src="x.png"></a></figure>`)
	tables := config.TablesConfig{
		RemoveIDs:        map[string][]string{"/x/": {"widget"}},
		ImageLinkRewrite: map[string]string{"fig": "/nuevo/"},
	}

	applySlugTables(doc, "/x/", tables)

	out := doc.BodyHTML()
	assert.NotContains(t, out, "fuera")
	assert.Contains(t, out, "texto")
	assert.Contains(t, out, `href="/nuevo/"`)
}
