// Package pipeline orchestrates a full site build: scan, resolve,
// parse, rewrite, render, copy, verify. The resolver passes complete
// before any document is processed; after that barrier the slug map is
// read-only and the asset map only grows through guarded adoption.
package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/sitemigrate/internal/config"
	"git.home.luguber.info/inful/sitemigrate/internal/extras"
	"git.home.luguber.info/inful/sitemigrate/internal/htmldoc"
	"git.home.luguber.info/inful/sitemigrate/internal/linker"
	"git.home.luguber.info/inful/sitemigrate/internal/metrics"
	"git.home.luguber.info/inful/sitemigrate/internal/observability"
	"git.home.luguber.info/inful/sitemigrate/internal/render"
	"git.home.luguber.info/inful/sitemigrate/internal/resolve"
	"git.home.luguber.info/inful/sitemigrate/internal/source"
)

// Pipeline runs complete batch builds.
type Pipeline struct {
	cfg         *config.Config
	recorder    metrics.Recorder
	renderer    *render.Renderer
	workers     int
	hubSections map[string]bool
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithRecorder injects a metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(p *Pipeline) { p.recorder = r }
}

// WithWorkers overrides the document worker count.
func WithWorkers(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.workers = n
		}
	}
}

// New builds a Pipeline for the given configuration.
func New(cfg *config.Config, opts ...Option) *Pipeline {
	p := &Pipeline{
		cfg:         cfg,
		recorder:    metrics.NoopRecorder{},
		workers:     runtime.NumCPU(),
		hubSections: make(map[string]bool, len(cfg.Tables.HubSections)),
	}
	for _, s := range cfg.Tables.HubSections {
		p.hubSections[s] = true
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// buildContext carries the shared state of one build run past the
// resolver barrier. Slugs and covers are frozen; the asset map accepts
// guarded late insertions only.
type buildContext struct {
	tree     *source.Tree
	slugs    *resolve.SlugResult
	assets   *resolve.AssetMap
	covers   map[string]string // document id -> resolved cover URL
	existing map[string]bool   // every produced slug, for breadcrumb links
	rewriter *linker.Rewriter
}

// Run executes one complete build. Per-document failures are collected
// in the report, not returned; the error covers failures that make the
// whole run meaningless (unreadable input tree, unwritable output).
func (p *Pipeline) Run(ctx context.Context) (*Report, error) {
	start := time.Now()
	report := &Report{BuildID: uuid.NewString(), Started: start}
	ctx = observability.WithBuildID(ctx, report.BuildID)
	log := slog.With("build_id", report.BuildID)

	contentRoot := filepath.Join(p.cfg.Paths.ExportRoot, p.cfg.Paths.ContentDir)

	tree, err := timedStage(p, "scan", func() (*source.Tree, error) {
		return source.Scan(contentRoot, p.cfg.Tables.MediaExtSet())
	})
	if err != nil {
		return report, fmt.Errorf("scan content tree: %w", err)
	}
	tree.Documents = p.filterSkipped(tree.Documents)
	log.Info("scanned export", "documents", len(tree.Documents), "assets", len(tree.Assets))

	bctx, err := p.resolveStage(tree)
	if err != nil {
		return report, err
	}
	report.Collisions = bctx.slugs.Collisions
	for i := 0; i < bctx.slugs.Collisions; i++ {
		p.recorder.IncSlugCollision()
	}

	p.renderer, err = render.New(render.Site{
		Name:        p.cfg.Site.Name,
		Tagline:     p.cfg.Site.Tagline,
		URL:         p.cfg.Site.URL,
		Lang:        p.cfg.Site.Lang,
		Footer:      p.cfg.Site.Footer,
		ContactMail: p.cfg.Site.ContactMail,
		Nav:         p.cfg.Nav,
	})
	if err != nil {
		return report, err
	}

	if err := p.prepareOutput(); err != nil {
		return report, err
	}

	bctx.rewriter = linker.New(linker.Config{
		Slugs:       bctx.slugs.Slugs,
		Overrides:   p.cfg.Tables.SlugOverrides,
		Assets:      bctx.assets,
		SiteHosts:   p.cfg.Tables.SiteHosts,
		ExportHosts: p.cfg.Tables.ExportHosts,
		ContentRoot: tree.Root,
		ExportRoot:  p.cfg.Paths.ExportRoot,
		Files:       &assetWriter{outputDir: p.cfg.Paths.OutputDir},
	})

	// Cover map pre-scan needs resolved asset URLs, so it runs after
	// the resolver barrier but before any document is processed.
	bctx.covers, err = timedStage(p, "covers", func() (map[string]string, error) {
		return scanCovers(tree, bctx.assets, p.cfg.Tables.ManualCovers)
	})
	if err != nil {
		return report, err
	}

	if _, err := timedStage(p, "copy_assets", func() (struct{}, error) {
		return struct{}{}, p.copyAssets(bctx.assets)
	}); err != nil {
		return report, err
	}

	p.processDocuments(ctx, log, bctx, report)

	if _, err := timedStage(p, "finalize", func() (struct{}, error) {
		if err := p.renderHome(bctx, report); err != nil {
			return struct{}{}, err
		}
		if err := p.buildExtras(bctx, report); err != nil {
			return struct{}{}, err
		}
		if err := p.writeSitemap(bctx.slugs.Slugs); err != nil {
			return struct{}{}, err
		}
		return struct{}{}, p.writeRobots()
	}); err != nil {
		return report, err
	}

	stats := bctx.rewriter.Stats()
	report.Fuzzy = stats.Fuzzy
	report.Adopted = stats.Adopted
	report.Unresolved = stats.Unresolved
	report.Assets = bctx.assets.Len()
	report.Duration = time.Since(start)

	p.recorder.AddReferences(metrics.ReferenceFuzzy, int(stats.Fuzzy))
	p.recorder.AddReferences(metrics.ReferenceAdopted, int(stats.Adopted))
	p.recorder.AddReferences(metrics.ReferenceUnresolved, int(stats.Unresolved))
	p.recorder.SetAssetsMapped(bctx.assets.Len())
	p.recorder.ObserveBuildDuration(report.Duration)
	p.recorder.IncBuildOutcome(report.Outcome())

	observability.InfoContext(ctx, "build finished",
		slog.Int("pages", report.Pages), slog.Int("hubs", report.Hubs),
		slog.Int("assets", report.Assets), slog.Int("errors", report.Errors),
		slog.Int64("fuzzy", report.Fuzzy), slog.Int64("unresolved", report.Unresolved),
		slog.Duration("duration", report.Duration))
	return report, nil
}

// resolveStage runs both full resolver passes. This is the barrier:
// nothing downstream starts until both maps are complete.
func (p *Pipeline) resolveStage(tree *source.Tree) (*buildContext, error) {
	return timedStage(p, "resolve", func() (*buildContext, error) {
		resolver := resolve.NewSlugResolver(
			p.cfg.Tables.Sections, p.cfg.Tables.NoiseSegments, p.cfg.Tables.SlugOverrides)
		slugs := resolver.Resolve(tree.Documents)

		existing := make(map[string]bool, len(slugs.Slugs))
		for _, s := range slugs.Slugs {
			existing[s] = true
		}

		return &buildContext{
			tree:     tree,
			slugs:    slugs,
			assets:   resolve.BuildAssetMap(tree.Assets),
			existing: existing,
		}, nil
	})
}

// processDocuments parses, rewrites and renders every document with a
// bounded worker pool. Both maps are frozen by now except the asset
// map's guarded adoption path, so parallel processing is safe.
func (p *Pipeline) processDocuments(ctx context.Context, log *slog.Logger, bctx *buildContext, report *Report) {
	stageStart := time.Now()
	parser := htmldoc.NewParser(p.cfg.Tables)

	jobs := make(chan source.Document)
	var wg sync.WaitGroup
	var mu sync.Mutex

	for i := 0; i < p.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for doc := range jobs {
				hub, err := p.processDocument(parser, bctx, doc)
				mu.Lock()
				if err != nil {
					report.Errors++
					report.Failed = append(report.Failed, doc.RawTitle)
					log.Error("document failed", "title", doc.RawTitle, "id", doc.ID, "error", err)
				} else {
					report.Pages++
					if hub {
						report.Hubs++
					}
				}
				mu.Unlock()
			}
		}()
	}

	for _, doc := range bctx.tree.Documents {
		select {
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return
		case jobs <- doc:
		}
	}
	close(jobs)
	wg.Wait()

	p.recorder.ObserveStageDuration("documents", time.Since(stageStart))
	if report.Errors > 0 {
		p.recorder.IncStageResult("documents", metrics.ResultWarning)
	} else {
		p.recorder.IncStageResult("documents", metrics.ResultSuccess)
	}
}

// processDocument runs the full per-document path: parse, rewrite,
// card backfill, per-slug table tweaks, render, write.
func (p *Pipeline) processDocument(parser *htmldoc.Parser, bctx *buildContext, doc source.Document) (hub bool, err error) {
	slug := bctx.slugs.Slugs[doc.ID]

	raw, err := os.ReadFile(doc.Path)
	if err != nil {
		return false, fmt.Errorf("read source: %w", err)
	}

	parsed := parser.Parse(raw)
	p.backfillCardImages(parsed, bctx)
	bctx.rewriter.Rewrite(parsed, doc.Path)
	applySlugTables(parsed, slug, p.cfg.Tables)

	// The root page renders as the homepage, not as a section page.
	if slug == "/" {
		return false, p.writeRenderedHome(parsed)
	}

	title := parsed.Title
	if title == "" {
		title = doc.RawTitle
	}

	// Content-detected hubs and pages in configured hub sections both
	// get the card layout.
	isHub := parsed.IsHub || p.hubSections[sectionToken(slug)]
	kind := "article"
	if isHub {
		kind = "hub"
	}
	content := parsed.BodyHTML()
	if extra, ok := p.cfg.Tables.ContentAppend[slug]; ok {
		content += extra
	}

	page := render.Page{
		Title:           title,
		Content:         template.HTML(content),
		CoverImage:      coverURL(parsed.CoverRef),
		Kind:            kind,
		Breadcrumb:      buildBreadcrumb(slug, title, p.cfg.Tables.SectionLabels, bctx.existing),
		CurrentSection:  sectionToken(slug),
		Cards:           renderCards(parsed.Cards),
		MetaDescription: metaDescription(parsed),
		CanonicalURL:    p.cfg.Site.URL + slug,
		OGImage:         p.ogImage(parsed.CoverRef),
	}

	if err := p.writePage(slug, page); err != nil {
		return false, err
	}
	p.recorder.IncPageRendered(kind)
	return isHub, nil
}

// backfillCardImages fills missing card images from the pre-scanned
// cover map, keyed by the identifier embedded in the card target. It
// runs before reference rewriting, while targets still carry their
// source identifiers.
func (p *Pipeline) backfillCardImages(parsed *htmldoc.Document, bctx *buildContext) {
	for i := range parsed.Cards {
		card := &parsed.Cards[i]
		if card.Image != "" || card.Target == "" {
			continue
		}
		if id, ok := source.ExtractIDFromPath(source.Decode(card.Target)); ok {
			if cover, found := bctx.covers[id]; found {
				card.Image = cover
			}
		}
	}
}

// writeRenderedHome renders the tree's root document with the home
// layout at the output root.
func (p *Pipeline) writeRenderedHome(parsed *htmldoc.Document) error {
	page := render.Page{
		Content:         template.HTML(parsed.BodyHTML()),
		Kind:            "home",
		Cards:           renderCards(parsed.Cards),
		MetaDescription: p.cfg.Site.Tagline,
		CanonicalURL:    p.cfg.Site.URL + "/",
	}
	if err := p.writePage("/", page); err != nil {
		return err
	}
	p.recorder.IncPageRendered("home")
	return nil
}

// renderHome writes the default homepage when no document claimed the
// root slug.
func (p *Pipeline) renderHome(bctx *buildContext, report *Report) error {
	if bctx.existing["/"] {
		return nil
	}
	page := render.Page{
		Kind:            "home",
		MetaDescription: p.cfg.Site.Tagline,
		CanonicalURL:    p.cfg.Site.URL + "/",
	}
	if err := p.writePage("/", page); err != nil {
		return err
	}
	report.Pages++
	p.recorder.IncPageRendered("home")
	return nil
}

// buildExtras compiles hand-authored markdown pages through the same
// template contract.
func (p *Pipeline) buildExtras(bctx *buildContext, report *Report) error {
	if p.cfg.Paths.ExtrasDir == "" {
		return nil
	}
	pages, err := extras.Load(p.cfg.Paths.ExtrasDir)
	if err != nil {
		return fmt.Errorf("load extra pages: %w", err)
	}
	for _, ep := range pages {
		page := render.Page{
			Title:           ep.Title,
			Content:         template.HTML(ep.HTML),
			Kind:            "article",
			Breadcrumb:      buildBreadcrumb(ep.Slug, ep.Title, p.cfg.Tables.SectionLabels, bctx.existing),
			CurrentSection:  sectionToken(ep.Slug),
			MetaDescription: ep.Description,
			CanonicalURL:    p.cfg.Site.URL + ep.Slug,
		}
		if err := p.writePage(ep.Slug, page); err != nil {
			return fmt.Errorf("write extra page %s: %w", ep.Slug, err)
		}
		report.Pages++
		p.recorder.IncPageRendered("extra")
	}
	return nil
}

// writePage renders one page into {output}/{slug}/index.html.
func (p *Pipeline) writePage(slug string, page render.Page) error {
	var buf bytes.Buffer
	if err := p.renderer.Render(&buf, page); err != nil {
		return err
	}
	dir := filepath.Join(p.cfg.Paths.OutputDir, filepath.FromSlash(strings.Trim(slug, "/")))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create page directory: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "index.html"), buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write page: %w", err)
	}
	return nil
}

func (p *Pipeline) prepareOutput() error {
	if err := os.RemoveAll(p.cfg.Paths.OutputDir); err != nil {
		return fmt.Errorf("clean output directory: %w", err)
	}
	if err := os.MkdirAll(p.cfg.Paths.OutputDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	return nil
}

func (p *Pipeline) filterSkipped(docs []source.Document) []source.Document {
	if len(p.cfg.Tables.SkipTitles) == 0 {
		return docs
	}
	skip := make(map[string]bool, len(p.cfg.Tables.SkipTitles))
	for _, t := range p.cfg.Tables.SkipTitles {
		skip[t] = true
	}
	kept := docs[:0]
	for _, d := range docs {
		if skip[d.RawTitle] {
			slog.Debug("skipping page", "title", d.RawTitle, "id", d.ID)
			continue
		}
		kept = append(kept, d)
	}
	return kept
}

func (p *Pipeline) ogImage(coverRef string) string {
	if strings.HasPrefix(coverRef, "/") {
		return p.cfg.Site.URL + coverRef
	}
	return ""
}

func coverURL(ref string) string {
	// Unresolved local references would render as broken images.
	if ref == "" || strings.HasPrefix(ref, "/") || strings.HasPrefix(ref, "http") {
		return ref
	}
	return ""
}

func sectionToken(slug string) string {
	trimmed := strings.Trim(slug, "/")
	if trimmed == "" {
		return ""
	}
	if i := strings.Index(trimmed, "/"); i >= 0 {
		return trimmed[:i]
	}
	return trimmed
}

func renderCards(cards []htmldoc.Card) []render.Card {
	out := make([]render.Card, 0, len(cards))
	for _, c := range cards {
		out = append(out, render.Card{
			Title:       c.Title,
			URL:         c.Target,
			Icon:        c.Icon,
			Description: c.Description,
			Image:       c.Image,
		})
	}
	return out
}

// timedStage wraps a stage with duration and result metrics.
func timedStage[T any](p *Pipeline, name string, fn func() (T, error)) (T, error) {
	start := time.Now()
	out, err := fn()
	p.recorder.ObserveStageDuration(name, time.Since(start))
	if err != nil {
		p.recorder.IncStageResult(name, metrics.ResultFatal)
	} else {
		p.recorder.IncStageResult(name, metrics.ResultSuccess)
	}
	return out, err
}
