package scraper

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"otowatch/internal/metrics"
)

// ErrFirstPageUnavailable aborts a run before it starts: with no first page
// there is no pagination estimate and nothing to do.
var ErrFirstPageUnavailable = errors.New("first search page unavailable")

// Fetcher retrieves one page of HTML; empty body means page unavailable.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// Reconciler assigns durable identity to one listing and persists it.
// Implemented by reconcile.Engine; redeclared here so the scrape loop does
// not depend on the reconcile package.
type Reconciler interface {
	Reconcile(ctx context.Context, listing *Listing) ReconcileOutcome
}

// ReconcileOutcome mirrors the reconciliation result the loop cares about.
type ReconcileOutcome struct {
	Class string
	RowID int64
}

// Reconcile outcome classes as the loop counts them.
const (
	OutcomeNew       = "new"
	OutcomeDuplicate = "duplicate"
	OutcomeFailed    = "failed"
)

// Archiver stores a raw page snapshot, best-effort.
type Archiver interface {
	SavePage(pageURL, html string, fetchedAt time.Time) (string, error)
}

// Exporter writes the end-of-run CSV backup.
type Exporter func(listings []Listing) error

// Engine drives one full scrape pass: estimate pagination on page 1, walk
// the pages sequentially, extract and reconcile every listing, accumulate
// the run report. Everything is synchronous; the only shared mutable state
// is the run-scoped Counters.
type Engine struct {
	cfg        Config
	fetcher    Fetcher
	extractor  *Extractor
	reconciler Reconciler
	archiver   Archiver
	exporter   Exporter
	logger     *zap.Logger
}

// NewEngine wires a scrape engine. archiver and exporter may be nil.
func NewEngine(
	cfg Config,
	fetcher Fetcher,
	extractor *Extractor,
	reconciler Reconciler,
	archiver Archiver,
	exporter Exporter,
	logger *zap.Logger,
) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		cfg:        cfg,
		fetcher:    fetcher,
		extractor:  extractor,
		reconciler: reconciler,
		archiver:   archiver,
		exporter:   exporter,
		logger:     logger,
	}
}

// Run executes one scrape pass. It never panics out to the caller: an
// unexpected panic is recovered, logged with the run id, and reported as a
// failed run so the schedule survives.
func (e *Engine) Run(ctx context.Context) (report Report, err error) {
	report.RunID = uuid.NewString()
	report.StartedAt = time.Now().UTC()
	logger := e.logger.With(zap.String("run_id", report.RunID))

	defer func() {
		report.FinishedAt = time.Now().UTC()
		if r := recover(); r != nil {
			logger.Error("run panicked", zap.Any("panic", r), zap.Stack("stack"))
			metrics.ObserveRun("panic")
			err = fmt.Errorf("scrape run panicked: %v", r)
			return
		}
		if err != nil {
			metrics.ObserveRun("failure")
		} else {
			metrics.ObserveRun("success")
		}
		logger.Info("run finished",
			zap.Int("processed", report.Counters.Processed),
			zap.Int("inserted", report.Counters.Inserted),
			zap.Int("duplicates", report.Counters.Duplicates),
			zap.Int("failed", report.Counters.Failed),
			zap.Int("skipped", report.Counters.Skipped),
			zap.Int("pages_failed", report.Counters.PagesFailed),
		)
	}()

	firstDoc, firstHTML, ferr := e.fetchDoc(ctx, e.pageURL(1))
	if ferr != nil {
		metrics.ObservePage("failed")
		return report, fmt.Errorf("%w: %v", ErrFirstPageUnavailable, ferr)
	}
	metrics.ObservePage("ok")
	e.archive(e.pageURL(1), firstHTML)

	total, pages := EstimateListings(firstDoc)
	report.TotalListings = total
	report.TotalPages = pages
	if pages > e.cfg.MaxPages {
		logger.Info("capping page count",
			zap.Int("estimated", pages),
			zap.Int("cap", e.cfg.MaxPages),
		)
		pages = e.cfg.MaxPages
	}
	logger.Info("pagination estimated", zap.Int("total", total), zap.Int("pages", pages))

	var collected []Listing
	for page := 1; page <= pages; page++ {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		doc := firstDoc
		if page > 1 {
			e.pause(ctx)
			pageURL := e.pageURL(page)
			var html string
			doc, html, ferr = e.fetchDoc(ctx, pageURL)
			if ferr != nil {
				logger.Warn("page fetch failed, skipping",
					zap.Int("page", page),
					zap.Error(ferr),
				)
				metrics.ObservePage("failed")
				report.Counters.PagesFailed++
				continue
			}
			metrics.ObservePage("ok")
			e.archive(pageURL, html)
		}

		listings, skipped, perr := e.extractor.ExtractPage(doc)
		if perr != nil {
			// A later page that fails to parse is skipped, but the first
			// page failing means the whole layout is gone and every page
			// estimate derived from it is fiction.
			if page == 1 {
				return report, fmt.Errorf("%w: %w", ErrFirstPageUnavailable, perr)
			}
			logger.Warn("page yielded no listings",
				zap.Int("page", page),
				zap.Error(perr),
			)
			report.Counters.PagesFailed++
			continue
		}
		report.Counters.Skipped += skipped
		metrics.ObserveListings("skipped", skipped)

		for i := range listings {
			listing := &listings[i]
			report.Counters.Processed++
			outcome := e.reconciler.Reconcile(ctx, listing)
			switch outcome.Class {
			case OutcomeNew:
				report.Counters.Inserted++
			case OutcomeDuplicate:
				report.Counters.Duplicates++
			default:
				report.Counters.Failed++
			}
			metrics.ObserveListing(outcome.Class)
			collected = append(collected, *listing)
		}
		report.PagesScraped++
	}

	if e.exporter != nil && len(collected) > 0 {
		if xerr := e.exporter(collected); xerr != nil {
			logger.Warn("csv export failed", zap.Error(xerr))
		}
	}
	return report, nil
}

func (e *Engine) fetchDoc(ctx context.Context, pageURL string) (*goquery.Document, string, error) {
	html, err := e.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		return nil, "", err
	}
	if html == "" {
		return nil, "", errors.New("empty page body")
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, "", fmt.Errorf("parse page html: %w", err)
	}
	return doc, html, nil
}

func (e *Engine) archive(pageURL, html string) {
	if e.archiver == nil {
		return
	}
	if _, err := e.archiver.SavePage(pageURL, html, time.Now().UTC()); err != nil {
		e.logger.Debug("page archive failed", zap.String("url", pageURL), zap.Error(err))
	}
}

func (e *Engine) pause(ctx context.Context) {
	if e.cfg.PageDelay <= 0 {
		return
	}
	select {
	case <-time.After(e.cfg.PageDelay):
	case <-ctx.Done():
	}
}

// pageURL appends/overrides the page query parameter on the search URL.
func (e *Engine) pageURL(page int) string {
	u, err := url.Parse(e.cfg.SearchURL)
	if err != nil {
		if page == 1 {
			return e.cfg.SearchURL
		}
		return fmt.Sprintf("%s?page=%d", e.cfg.SearchURL, page)
	}
	q := u.Query()
	if page > 1 {
		q.Set("page", strconv.Itoa(page))
	} else {
		q.Del("page")
	}
	u.RawQuery = q.Encode()
	return u.String()
}
