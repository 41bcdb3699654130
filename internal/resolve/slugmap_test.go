package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sitemigrate/internal/source"
)

func testResolver() *SlugResolver {
	return NewSlugResolver(
		map[string]string{
			"Blog":      "blog",
			"Contenido": "contenido",
			"The Book":  "prabhupada-now/the-book",
		},
		[]string{"Untitled", "Temas", "Categorías"},
		map[string]string{
			"55e021b5b0194c9ebaba695a74433538": "/estatutos/",
		},
	)
}

func doc(id, title string, dir ...string) source.Document {
	return source.Document{ID: id, RawTitle: title, RelDir: dir}
}

func TestOverrideWinsRegardlessOfLocation(t *testing.T) {
	r := testResolver()
	res := r.Resolve([]source.Document{
		doc("55e021b5b0194c9ebaba695a74433538", "Estatutos",
			"Contenido 4de5e2fd65e8460e90aeb8f0a256ecfc", "Untitled"),
	})
	assert.Equal(t, "/estatutos/", res.Slugs["55e021b5b0194c9ebaba695a74433538"])
}

func TestTopLevelDocument(t *testing.T) {
	r := testResolver()
	res := r.Resolve([]source.Document{doc("a1", "Página de Inicio")})
	assert.Equal(t, "/pagina-de-inicio/", res.Slugs["a1"])
}

func TestSectionFromDirectoryTable(t *testing.T) {
	r := testResolver()
	res := r.Resolve([]source.Document{
		doc("b2", "Mi Entrada", "Blog d8a09ede1598464693ac1750b9ba2cce"),
	})
	assert.Equal(t, "/blog/mi-entrada/", res.Slugs["b2"])
}

func TestSectionMatchedBySlugEquality(t *testing.T) {
	r := testResolver()
	// Percent-encoded on disk; decoded and slug-compared against the table.
	res := r.Resolve([]source.Document{doc("c3", "Entrada", "blog")})
	assert.Equal(t, "/blog/entrada/", res.Slugs["c3"])
}

func TestNoiseSegmentsAndDuplicateBaseFiltered(t *testing.T) {
	r := testResolver()
	res := r.Resolve([]source.Document{
		doc("d4", "Recetas",
			"Contenido 4de5e2fd65e8460e90aeb8f0a256ecfc",
			"Untitled",
			"Temas 1234567890abcdef1234567890abcdef",
			"Recetas"),
	})
	// Noise dirs vanish and a segment equal to the base slug is not repeated.
	assert.Equal(t, "/contenido/recetas/", res.Slugs["d4"])
}

func TestMultiComponentSectionToken(t *testing.T) {
	r := testResolver()
	res := r.Resolve([]source.Document{doc("e5", "Chapter One", "The Book")})
	assert.Equal(t, "/prabhupada-now/the-book/chapter-one/", res.Slugs["e5"])
}

func TestUnknownSectionFallsBackToFirstSegment(t *testing.T) {
	r := testResolver()
	res := r.Resolve([]source.Document{
		doc("f6", "Algo", "Archivo Histórico 1234567890abcdef1234567890abcdef"),
	})
	assert.Equal(t, "/archivo-historico/algo/", res.Slugs["f6"])
}

func TestEmptyTitleFallsBackToPage(t *testing.T) {
	r := testResolver()
	res := r.Resolve([]source.Document{doc("a7", "🏡")})
	assert.Equal(t, "/page/", res.Slugs["a7"])
}

func TestCollisionDetectedAndDisambiguated(t *testing.T) {
	r := testResolver()
	res := r.Resolve([]source.Document{
		doc("a8", "Entrada", "Blog d8a09ede1598464693ac1750b9ba2cce"),
		doc("b9", "Entrada", "Blog 1234567890abcdef1234567890abcdef"),
	})
	require.Equal(t, 1, res.Collisions)
	assert.Equal(t, "/blog/entrada/", res.Slugs["a8"])
	assert.Equal(t, "/blog/entrada-2/", res.Slugs["b9"])
	assert.NotEqual(t, res.Slugs["a8"], res.Slugs["b9"])
}

func TestResolveDeterministic(t *testing.T) {
	docs := []source.Document{
		doc("a8", "Entrada", "Blog d8a09ede1598464693ac1750b9ba2cce"),
		doc("b9", "Entrada", "Blog 1234567890abcdef1234567890abcdef"),
		doc("c3", "Otra", "Contenido"),
	}
	r := testResolver()
	first := r.Resolve(docs)
	second := testResolver().Resolve(docs)
	assert.Equal(t, first.Slugs, second.Slugs)
}

func TestSectionSlugFoldTieIsDeterministic(t *testing.T) {
	// Both keys fold to "recursos"; the lexicographically first key
	// ("Recursos") must win every time, not whichever map iteration
	// order happens to visit first.
	for i := 0; i < 20; i++ {
		r := NewSlugResolver(
			map[string]string{"Recursos": "material", "recursos": "descargas"},
			nil, nil,
		)
		res := r.Resolve([]source.Document{doc("aa", "Guía", "RECURSOS")})
		require.Equal(t, "/material/guia/", res.Slugs["aa"])
	}
}
