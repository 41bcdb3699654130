package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"git.home.luguber.info/inful/sitemigrate/internal/config"
	"git.home.luguber.info/inful/sitemigrate/internal/linkverify"
	"git.home.luguber.info/inful/sitemigrate/internal/manifest"
	"git.home.luguber.info/inful/sitemigrate/internal/metrics"
	"git.home.luguber.info/inful/sitemigrate/internal/pipeline"
	"git.home.luguber.info/inful/sitemigrate/internal/version"
	"git.home.luguber.info/inful/sitemigrate/internal/watch"
	"github.com/alecthomas/kong"
)

var CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"config.yaml"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `help:"Show version and exit"`

	Build struct {
		Workers int  `short:"w" help:"Document worker count (default: CPU count)"`
		Metrics bool `help:"Record Prometheus metrics and print them after the build"`
	} `cmd:"" help:"Build the site from the configured export tree"`

	Audit struct {
		Strict bool `help:"Exit non-zero when any broken reference is found"`
	} `cmd:"" help:"Verify internal links and asset references in the built site"`

	Watch struct {
		Debounce      time.Duration `help:"Quiet period before a rebuild" default:"500ms"`
		MetricsListen string        `help:"Serve Prometheus metrics on this address while watching (e.g. :9090)"`
	} `cmd:"" help:"Rebuild the site whenever the export tree changes"`

	Report struct {
		Limit int `short:"n" help:"Number of recent builds to show" default:"10"`
	} `cmd:"" help:"Show recent builds from the manifest store"`

	Init struct {
		Force bool `help:"Overwrite existing configuration file"`
	} `cmd:"" help:"Initialize a new configuration file"`
}

func main() {
	kctx := kong.Parse(&CLI, kong.Vars{"version": version.String()})

	logLevel := slog.LevelInfo
	if CLI.Verbose {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	})))

	var err error
	switch kctx.Command() {
	case "build":
		err = runBuild()
	case "audit":
		err = runAudit()
	case "watch":
		err = runWatch()
	case "report":
		err = runReport()
	case "init":
		err = config.Init(CLI.Config, CLI.Init.Force)
	}
	if err != nil {
		slog.Error("Command failed", "command", kctx.Command(), "error", err)
		os.Exit(1)
	}
}

func runBuild() error {
	cfg, err := config.Load(CLI.Config)
	if err != nil {
		return err
	}

	opts := []pipeline.Option{pipeline.WithWorkers(CLI.Build.Workers)}
	var rec *metrics.PrometheusRecorder
	if CLI.Build.Metrics {
		rec = metrics.NewPrometheusRecorder(nil)
		opts = append(opts, pipeline.WithRecorder(rec))
	}

	report, err := pipeline.New(cfg, opts...).Run(context.Background())
	if err != nil {
		return err
	}

	saveManifest(cfg, report)

	if rec != nil {
		if err := metrics.WriteText(os.Stdout, rec.Registry()); err != nil {
			slog.Warn("Could not dump metrics", "error", err)
		}
	}

	if report.Errors > 0 {
		return fmt.Errorf("%d of %d documents failed", report.Errors, report.Pages+report.Errors)
	}
	return nil
}

// saveManifest persists the build record when a manifest store is
// configured. A store failure never fails the build itself.
func saveManifest(cfg *config.Config, report *pipeline.Report) {
	if cfg.Paths.ManifestDB == "" {
		return
	}
	store, err := manifest.Open(cfg.Paths.ManifestDB)
	if err != nil {
		slog.Warn("Could not open manifest store", "path", cfg.Paths.ManifestDB, "error", err)
		return
	}
	defer store.Close()

	err = store.Save(context.Background(), manifest.Record{
		BuildID:    report.BuildID,
		Started:    report.Started,
		Duration:   report.Duration,
		Outcome:    report.Outcome(),
		Pages:      report.Pages,
		Hubs:       report.Hubs,
		Assets:     report.Assets,
		Errors:     report.Errors,
		Collisions: report.Collisions,
		Fuzzy:      report.Fuzzy,
		Adopted:    report.Adopted,
		Unresolved: report.Unresolved,
	})
	if err != nil {
		slog.Warn("Could not save build record", "error", err)
	}
}

func runAudit() error {
	cfg, err := config.Load(CLI.Config)
	if err != nil {
		return err
	}

	report, err := linkverify.NewAuditor(cfg.Paths.OutputDir, cfg.Site.URL).Audit()
	if err != nil {
		return err
	}

	slog.Info("Audit finished",
		"pages", report.Pages, "links", report.Links,
		"external", report.External, "broken", report.Total())

	for _, page := range report.SortedPages() {
		for _, b := range report.ByPage[page] {
			slog.Warn("Broken reference",
				"page", b.Page, "url", b.URL, "tag", b.Tag, "text", b.Text)
		}
	}

	if CLI.Audit.Strict && report.Total() > 0 {
		return fmt.Errorf("%d broken references", report.Total())
	}
	return nil
}

func runWatch() error {
	cfg, err := config.Load(CLI.Config)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var opts []pipeline.Option
	if CLI.Watch.MetricsListen != "" {
		// One recorder across all rebuilds of the session, so counters
		// accumulate and the scrape endpoint sees the full history.
		rec := metrics.NewPrometheusRecorder(nil)
		opts = append(opts, pipeline.WithRecorder(rec))
		go func() {
			slog.Info("Serving metrics", "addr", CLI.Watch.MetricsListen)
			if err := http.ListenAndServe(CLI.Watch.MetricsListen, metrics.HTTPHandler(rec.Registry())); err != nil {
				slog.Error("Metrics server failed", "error", err)
			}
		}()
	}

	rebuild := func(ctx context.Context) error {
		report, err := pipeline.New(cfg, opts...).Run(ctx)
		if err != nil {
			return err
		}
		saveManifest(cfg, report)
		return nil
	}

	// One immediate build so the output is never stale while waiting
	// for the first change.
	if err := rebuild(ctx); err != nil {
		slog.Error("Initial build failed", "error", err)
	}

	w, err := watch.New(cfg.Paths.ExportRoot, rebuild, watch.WithDebounce(CLI.Watch.Debounce))
	if err != nil {
		return err
	}
	if err := w.Start(ctx); err != nil {
		return err
	}
	defer w.Stop()

	slog.Info("Watching for changes, press Ctrl+C to stop")
	<-ctx.Done()
	return nil
}

func runReport() error {
	cfg, err := config.Load(CLI.Config)
	if err != nil {
		return err
	}
	if cfg.Paths.ManifestDB == "" {
		return fmt.Errorf("paths.manifest_db is not configured")
	}

	store, err := manifest.Open(cfg.Paths.ManifestDB)
	if err != nil {
		return err
	}
	defer store.Close()

	records, err := store.Latest(context.Background(), CLI.Report.Limit)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Println("No builds recorded yet.")
		return nil
	}

	for _, r := range records {
		fmt.Printf("%s  %-7s  pages=%d hubs=%d assets=%d errors=%d fuzzy=%d unresolved=%d  %s  %s\n",
			r.Started.Format("2006-01-02 15:04:05"), r.Outcome,
			r.Pages, r.Hubs, r.Assets, r.Errors, r.Fuzzy, r.Unresolved,
			r.Duration.Round(time.Millisecond), r.BuildID)
	}
	return nil
}
