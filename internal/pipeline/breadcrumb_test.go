package pipeline

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"git.home.luguber.info/inful/sitemigrate/internal/htmldoc"
	"git.home.luguber.info/inful/sitemigrate/internal/render"
)

var sectionLabels = map[string]string{
	"blog":      "Blog",
	"contenido": "Contenido",
}

func TestBreadcrumbLinksOnlyExistingPages(t *testing.T) {
	existing := map[string]bool{
		"/blog/":            true,
		"/blog/mi-entrada/": true,
	}
	crumbs := buildBreadcrumb("/blog/mi-entrada/", "Mi Entrada", sectionLabels, existing)

	assert.Equal(t, []render.Crumb{
		{Label: "Inicio", URL: "/"},
		{Label: "Blog", URL: "/blog/"},
		{Label: "Mi Entrada", URL: "/blog/mi-entrada/"},
	}, crumbs)
}

func TestBreadcrumbMissingIntermediateIsPlainText(t *testing.T) {
	existing := map[string]bool{"/contenido/carpeta/hoja/": true}
	crumbs := buildBreadcrumb("/contenido/carpeta/hoja/", "Hoja", sectionLabels, existing)

	require.Len(t, crumbs, 4)
	assert.Equal(t, render.Crumb{Label: "Contenido", URL: ""}, crumbs[1])
	// Unlabeled segments are humanized from their slug form.
	assert.Equal(t, render.Crumb{Label: "Carpeta", URL: ""}, crumbs[2])
}

func TestBreadcrumbRootIsEmpty(t *testing.T) {
	assert.Nil(t, buildBreadcrumb("/", "Inicio", sectionLabels, nil))
}

func docWithBody(t *testing.T, inner string) *htmldoc.Document {
	t.Helper()
	root, err := html.Parse(strings.NewReader(`<div class="page-body">` + inner + `</div>`))
	require.NoError(t, err)
	return &htmldoc.Document{Body: htmldoc.Find(root, htmldoc.ByTagClass("div", "page-body"))}
}

func TestMetaDescriptionSkipsShortParagraphs(t *testing.T) {
	doc := docWithBody(t,
		`<p>Corto.</p><p>Este párrafo sí tiene suficiente contenido como para servir de descripción.</p>`)
	got := metaDescription(doc)
	assert.True(t, strings.HasPrefix(got, "Este párrafo"))
}

func TestMetaDescriptionTruncatesAtWordBoundary(t *testing.T) {
	long := strings.Repeat("palabra ", 40)
	doc := docWithBody(t, "<p>"+long+"</p>")
	got := metaDescription(doc)
	assert.LessOrEqual(t, len(got), 160)
	assert.True(t, strings.HasSuffix(got, "..."))
	assert.NotContains(t, got, "  ")
}

func TestMetaDescriptionTruncationKeepsValidUTF8(t *testing.T) {
	// No spaces in the first 157 bytes, and two-byte runes positioned
	// so a naive byte cut would land mid-sequence.
	doc := docWithBody(t, "<p>"+strings.Repeat("ñ", 120)+"</p>")
	got := metaDescription(doc)
	assert.True(t, utf8.ValidString(got))
	assert.True(t, strings.HasSuffix(got, "..."))
	assert.LessOrEqual(t, len(got), 160)
}

func TestMetaDescriptionEmptyBody(t *testing.T) {
	assert.Equal(t, "", metaDescription(&htmldoc.Document{}))
}
