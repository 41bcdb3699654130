package pipeline

import (
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/sitemigrate/internal/resolve"
	"git.home.luguber.info/inful/sitemigrate/internal/source"
)

// assetWriter materializes adopted out-of-tree assets into the output
// assets directory. It implements linker.Materializer and may be
// called from concurrent document workers; each source path is
// materialized by exactly one caller (the adoption winner).
type assetWriter struct {
	outputDir string
}

func (w *assetWriter) Materialize(srcPath, assignedName string) error {
	dest := filepath.Join(w.outputDir, "assets", assignedName)
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}
	return copyFile(srcPath, dest)
}

// copyAssets copies every mapped asset into {output}/assets/ under its
// assigned name, then layers the extra-assets directory and the static
// tree on top. A missing source file is retried with its
// percent-decoded path; exports mix encoded and literal names.
func (p *Pipeline) copyAssets(assets *resolve.AssetMap) error {
	contentRoot := filepath.Join(p.cfg.Paths.ExportRoot, p.cfg.Paths.ContentDir)
	outputAssets := filepath.Join(p.cfg.Paths.OutputDir, "assets")
	if err := os.MkdirAll(outputAssets, 0o755); err != nil {
		return fmt.Errorf("create assets directory: %w", err)
	}

	missing := 0
	for _, entry := range assets.Entries() {
		src := filepath.Join(contentRoot, filepath.FromSlash(entry.SourcePath))
		if _, err := os.Stat(src); err != nil {
			src = filepath.Join(contentRoot, filepath.FromSlash(source.Decode(entry.SourcePath)))
		}
		if err := copyFile(src, filepath.Join(outputAssets, entry.Name)); err != nil {
			slog.Warn("asset copy failed", "source", entry.SourcePath, "error", err)
			missing++
		}
	}
	if missing > 0 {
		slog.Warn("some assets could not be copied", "count", missing)
	}

	if p.cfg.Paths.ExtraDir != "" {
		if err := copyDirFlat(p.cfg.Paths.ExtraDir, outputAssets); err != nil {
			return fmt.Errorf("copy extra assets: %w", err)
		}
	}
	if p.cfg.Paths.StaticDir != "" {
		if err := copyDirInto(p.cfg.Paths.StaticDir, filepath.Join(p.cfg.Paths.OutputDir, "static")); err != nil {
			return fmt.Errorf("copy static files: %w", err)
		}
	}
	return nil
}

// copyDirFlat copies the regular files directly under src into dest.
func copyDirFlat(src, dest string) error {
	entries, err := os.ReadDir(src)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if err := copyFile(filepath.Join(src, e.Name()), filepath.Join(dest, e.Name())); err != nil {
			return err
		}
	}
	return nil
}

// copyDirInto mirrors src recursively into dest.
func copyDirInto(src, dest string) error {
	if _, err := os.Stat(src); os.IsNotExist(err) {
		return nil
	}
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dest, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		return copyFile(path, target)
	})
}

func copyFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
