package source

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractID(t *testing.T) {
	title, id, ok := ExtractID("Estatutos 55e021b5b0194c9ebaba695a74433538.html")
	require.True(t, ok)
	assert.Equal(t, "Estatutos", title)
	assert.Equal(t, "55e021b5b0194c9ebaba695a74433538", id)

	title, id, ok = ExtractID("Notas breves ab12-cd34.html")
	require.True(t, ok)
	assert.Equal(t, "Notas breves", title)
	assert.Equal(t, "ab12-cd34", id)

	_, _, ok = ExtractID("index.html")
	assert.False(t, ok)
	_, _, ok = ExtractID("foto.jpg")
	assert.False(t, ok)
}

func TestExtractIDFromPath(t *testing.T) {
	id, ok := ExtractIDFromPath("Blog d8a09ede1598464693ac1750b9ba2cce/Entrada 4add3f0953664561937781f3ebd0af12.html")
	require.True(t, ok)
	assert.Equal(t, "4add3f0953664561937781f3ebd0af12", id)
}

func TestCleanSegment(t *testing.T) {
	assert.Equal(t, "Blog", CleanSegment("Blog d8a09ede1598464693ac1750b9ba2cce"))
	assert.Equal(t, "La Casa de Krsna", CleanSegment("La%20Casa%20de%20Krsna"))
	assert.Equal(t, "Contenido", CleanSegment("Contenido"))
}

func TestScan(t *testing.T) {
	root := t.TempDir()
	blogDir := filepath.Join(root, "Blog d8a09ede1598464693ac1750b9ba2cce")
	require.NoError(t, os.MkdirAll(blogDir, 0o755))

	writeFile(t, filepath.Join(root, "Estatutos 55e021b5b0194c9ebaba695a74433538.html"), "<html></html>")
	writeFile(t, filepath.Join(blogDir, "Entrada 4add3f0953664561937781f3ebd0af12.html"), "<html></html>")
	writeFile(t, filepath.Join(blogDir, "foto.jpg"), "jpegbytes")
	writeFile(t, filepath.Join(blogDir, "notes.txt"), "ignored")

	tree, err := Scan(root, map[string]bool{".jpg": true})
	require.NoError(t, err)

	require.Len(t, tree.Documents, 2)
	// Lexical walk order: the Blog subdirectory sorts before the
	// root-level Estatutos file.
	assert.Equal(t, "4add3f0953664561937781f3ebd0af12", tree.Documents[0].ID)
	assert.Equal(t, []string{"Blog d8a09ede1598464693ac1750b9ba2cce"}, tree.Documents[0].RelDir)
	assert.Equal(t, "55e021b5b0194c9ebaba695a74433538", tree.Documents[1].ID)
	assert.Empty(t, tree.Documents[1].RelDir)

	require.Len(t, tree.Assets, 1)
	assert.Equal(t, "Blog d8a09ede1598464693ac1750b9ba2cce/foto.jpg", tree.Assets[0].RelPath)
}

func TestScanMissingRoot(t *testing.T) {
	_, err := Scan(filepath.Join(t.TempDir(), "does-not-exist"), nil)
	assert.Error(t, err)
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}
