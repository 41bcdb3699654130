package linkverify

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeOutput(t *testing.T, root string, parts ...string) {
	t.Helper()
	content := parts[len(parts)-1]
	path := filepath.Join(append([]string{root}, parts[:len(parts)-1]...)...)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestAuditCleanTree(t *testing.T) {
	root := t.TempDir()
	writeOutput(t, root, "index.html",
		`<a href="/blog/">blog</a><img src="/assets/a.png">`)
	writeOutput(t, root, "blog", "index.html",
		`<a href="/">inicio</a><a href="/blog/entrada/#seccion">entrada</a>`)
	writeOutput(t, root, "blog", "entrada", "index.html",
		`<a href="https://external.example/">fuera</a>`)
	writeOutput(t, root, "assets", "a.png", "png")

	report, err := NewAuditor(root, "https://example.org").Audit()
	require.NoError(t, err)

	assert.Equal(t, 3, report.Pages)
	assert.Zero(t, report.Total())
	assert.Equal(t, 1, report.External)
}

func TestAuditFindsBrokenReferences(t *testing.T) {
	root := t.TempDir()
	writeOutput(t, root, "index.html",
		`<a href="/no-existe/">rota</a><img src="/assets/falta.png">`)

	report, err := NewAuditor(root, "https://example.org").Audit()
	require.NoError(t, err)

	require.Equal(t, 2, report.Total())
	broken := report.ByPage["/"]
	require.Len(t, broken, 2)
	assert.Equal(t, "/no-existe/", broken[0].URL)
	assert.Equal(t, "a", broken[0].Tag)
	assert.Equal(t, "/assets/falta.png", broken[1].URL)
	assert.Equal(t, []string{"/"}, report.SortedPages())
}

func TestAuditSelfHostAbsoluteLinks(t *testing.T) {
	root := t.TempDir()
	writeOutput(t, root, "index.html",
		`<a href="https://example.org/blog/">blog</a>`)
	writeOutput(t, root, "blog", "index.html", `ok`)

	report, err := NewAuditor(root, "https://example.org").Audit()
	require.NoError(t, err)
	assert.Zero(t, report.Total())
}

func TestAuditFragmentOnlyAndQueryLinks(t *testing.T) {
	root := t.TempDir()
	writeOutput(t, root, "index.html",
		`<a href="#nota">nota</a><a href="/blog/?page=2">paginada</a>`)
	writeOutput(t, root, "blog", "index.html", `ok`)

	report, err := NewAuditor(root, "").Audit()
	require.NoError(t, err)
	assert.Zero(t, report.Total())
}

func TestAuditPercentEncodedReference(t *testing.T) {
	root := t.TempDir()
	writeOutput(t, root, "index.html", `<img src="/assets/foto%20final.png">`)
	writeOutput(t, root, "assets", "foto final.png", "png")

	report, err := NewAuditor(root, "").Audit()
	require.NoError(t, err)
	assert.Zero(t, report.Total())
}
