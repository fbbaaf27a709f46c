// Package cmd defines and implements the CLI commands for the otowatch executable.
package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"otowatch/internal/archive"
	"otowatch/internal/clock/system"
	"otowatch/internal/export"
	"otowatch/internal/fetch"
	"otowatch/internal/logging"
	"otowatch/internal/reconcile"
	"otowatch/internal/scraper"
	"otowatch/internal/variant"
)

// newScrapeCmd creates and configures the 'scrape' subcommand.
// It retrieves the application instance from the context and uses it to
// assemble and run one full scrape-and-reconcile pass.
func newScrapeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scrape",
		Short: "Runs one scrape-and-reconcile pass",
		Long: `Fetches the configured search results page by page, extracts each
listing, assigns durable auction identities, and writes a CSV backup of
everything observed during the run.`,

		RunE: runScrapeCommand,
	}
	return cmd
}

func runScrapeCommand(cmd *cobra.Command, _ []string) error {
	appInstance, err := resolveApp(cmd.Context())
	if err != nil {
		return err
	}
	logger := appInstance.GetLogger()

	cfg, err := scraper.LoadConfig(viper.GetViper())
	if err != nil {
		return fmt.Errorf("load scraper config: %w", err)
	}

	engine, err := buildScrapeEngine(cfg, appInstance.GetStore(), logger)
	if err != nil {
		return err
	}

	report, err := engine.Run(cmd.Context())
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("run scraper: %w", err)
	}

	logging.L.Info("Scrape command finished.",
		zap.String("run_id", report.RunID),
		zap.Int("total_listings", report.TotalListings),
		zap.Int("pages_scraped", report.PagesScraped),
		zap.Int("inserted", report.Counters.Inserted),
		zap.Int("duplicates", report.Counters.Duplicates),
		zap.Int("failed", report.Counters.Failed),
	)
	return nil
}

func resolveApp(ctx context.Context) (App, error) {
	appInstance, ok := ctx.Value(appKey).(App)
	if !ok || appInstance == nil {
		return nil, errors.New("application services not initialized")
	}
	return appInstance, nil
}

func buildScrapeEngine(cfg scraper.Config, store reconcile.Store, logger *zap.Logger) (*scraper.Engine, error) {
	fetcher, err := fetch.New(fetch.Config{
		UserAgent:  viper.GetString("fetch.user_agent"),
		Timeout:    viper.GetDuration("fetch.timeout"),
		Retries:    viper.GetInt("fetch.retries"),
		RetryDelay: viper.GetDuration("fetch.retry_delay"),
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("init fetcher: %w", err)
	}

	extractor := scraper.NewExtractor(cfg.ProductFilter, variant.NewDS7(), logger)
	reconciler := &storeReconciler{
		engine: reconcile.NewEngine(store, system.Clock{}, logger),
	}

	var archiver scraper.Archiver
	if cfg.ArchiveDir != "" {
		sink, err := archive.New(cfg.ArchiveDir, cfg.ArchiveMax, logger)
		if err != nil {
			return nil, fmt.Errorf("init archive: %w", err)
		}
		archiver = sink
	}

	var exporter scraper.Exporter
	if cfg.ExportPath != "" {
		path, includePrice := cfg.ExportPath, cfg.ExportPrice
		exporter = func(listings []scraper.Listing) error {
			return export.SaveCSV(path, listings, includePrice)
		}
	}

	return scraper.NewEngine(cfg, fetcher, extractor, reconciler, archiver, exporter, logger), nil
}

// storeReconciler adapts the reconcile engine to the scraper's outcome shape.
type storeReconciler struct {
	engine *reconcile.Engine
}

func (r *storeReconciler) Reconcile(ctx context.Context, listing *scraper.Listing) scraper.ReconcileOutcome {
	out := r.engine.Reconcile(ctx, listing)
	return scraper.ReconcileOutcome{Class: string(out.Class), RowID: out.RowID}
}
