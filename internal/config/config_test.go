package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadAppliesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
paths:
  export_root: /srv/export
  content_dir: Mapa de la web
  output_dir: /srv/output
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/srv/export", cfg.Paths.ExportRoot)
	assert.Equal(t, "Mapa de la web", cfg.Paths.ContentDir)
	// Tables not present in the file fall back to the built-ins.
	assert.Equal(t, "/estatutos/", cfg.Tables.SlugOverrides["55e021b5b0194c9ebaba695a74433538"])
	assert.Contains(t, cfg.Tables.MediaExts, ".pdf")
	assert.NotEmpty(t, cfg.Tables.Sections)
}

func TestLoadOverridesTables(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
paths:
  export_root: /srv/export
  output_dir: /srv/output
tables:
  sections:
    Docs: docs
  noise_segments: [drafts]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, map[string]string{"Docs": "docs"}, cfg.Tables.Sections)
	assert.Equal(t, []string{"drafts"}, cfg.Tables.NoiseSegments)
}

func TestLoadExpandsEnv(t *testing.T) {
	t.Setenv("EXPORT_ROOT", "/data/export")
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
paths:
  export_root: ${EXPORT_ROOT}
  output_dir: /srv/output
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/data/export", cfg.Paths.ExportRoot)
}

func TestLoadMissingRequiredPaths(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("site:\n  name: X\n"), 0o644))

	_, err := Load(path)
	assert.ErrorContains(t, err, "export_root")
}

func TestInitRefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, Init(path, false))
	assert.Error(t, Init(path, false))
	assert.NoError(t, Init(path, true))
}

func TestMediaExtSet(t *testing.T) {
	set := Default().Tables.MediaExtSet()
	assert.True(t, set[".jpg"])
	assert.False(t, set[".txt"])
}
