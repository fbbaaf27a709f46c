// Package reconcile assigns each scraped listing its durable identity: a
// content-addressed auction key and a stable sequential auction number, with
// same-day idempotency against the persistent store.
package reconcile

import (
	"context"
	"time"

	"go.uber.org/zap"

	"otowatch/internal/scraper"
)

// SentinelNumber is assigned when the store cannot be queried for an
// existing number. It sits far outside the organic sequence so an audit can
// find every listing whose number was never reconciled; silently handing
// out a plausible small number would corrupt the sequence instead.
const SentinelNumber = 99_999_999

// Class labels the outcome of reconciling one observation.
type Class string

// Reconciliation outcome classes.
const (
	ClassNew       Class = "new"
	ClassDuplicate Class = "duplicate"
	ClassFailed    Class = "failed"
)

// Outcome reports what the engine decided for one listing.
type Outcome struct {
	Class  Class
	Number int
	RowID  int64
}

// Store is the persistence collaborator. A single append-mostly listings
// table backs all four calls.
type Store interface {
	// FindNumberByKey returns the auction number bound to the key, or
	// (0, nil) when the key has never been seen. When historical rows
	// disagree the most recent row wins.
	FindNumberByKey(ctx context.Context, key string) (int, error)
	// MaxNumber returns the highest auction number ever assigned, 0 for an
	// empty store.
	MaxNumber(ctx context.Context) (int, error)
	// FindTodayRow returns the row id of a same-day observation of the
	// number, or (0, nil) when none exists.
	FindTodayRow(ctx context.Context, number int, day time.Time) (int64, error)
	// Insert persists the listing and returns the new row id.
	Insert(ctx context.Context, listing scraper.Listing) (int64, error)
}

// Clock abstracts time.Now so same-day idempotency is testable.
type Clock interface {
	Now() time.Time
}

// Engine reconciles listing observations against the Store.
type Engine struct {
	store  Store
	clock  Clock
	logger *zap.Logger
}

// NewEngine builds a reconciliation engine.
func NewEngine(store Store, clock Clock, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{store: store, clock: clock, logger: logger}
}

// Reconcile assigns key and number to the listing, then either inserts it
// or reuses today's existing row.
//
// The number assignment is read-max-then-increment with no transactional
// guard; the deployment contract is a single non-overlapping scheduled run,
// and the store's unique index on (auction_number, day) backstops a race.
// Store failures never abort the run: a failed lookup degrades to the
// sentinel number, a failed insert is classified ClassFailed.
func (e *Engine) Reconcile(ctx context.Context, listing *scraper.Listing) Outcome {
	listing.AuctionKey = Key(listing.CanonicalURL)

	number, err := e.store.FindNumberByKey(ctx, listing.AuctionKey)
	if err != nil {
		e.logger.Warn("number lookup failed, assigning sentinel",
			zap.String("key", listing.AuctionKey),
			zap.Error(err),
		)
		number = SentinelNumber
	} else if number == 0 {
		number, err = e.nextNumber(ctx)
		if err != nil {
			e.logger.Warn("max number lookup failed, assigning sentinel",
				zap.String("key", listing.AuctionKey),
				zap.Error(err),
			)
			number = SentinelNumber
		}
	}
	listing.AuctionNumber = number

	today := e.clock.Now()
	if rowID, err := e.store.FindTodayRow(ctx, number, today); err != nil {
		e.logger.Warn("same-day lookup failed",
			zap.Int("number", number),
			zap.Error(err),
		)
	} else if rowID != 0 {
		// Same calendar day, same number: reuse, never a second row.
		return Outcome{Class: ClassDuplicate, Number: number, RowID: rowID}
	}

	rowID, err := e.store.Insert(ctx, *listing)
	if err != nil {
		e.logger.Error("listing insert failed",
			zap.String("url", listing.CanonicalURL),
			zap.Int("number", number),
			zap.Error(err),
		)
		return Outcome{Class: ClassFailed, Number: number}
	}
	return Outcome{Class: ClassNew, Number: number, RowID: rowID}
}

// nextNumber hands out max+1, so the first-ever key gets 1 and numbers are
// monotonically increasing and never reused.
func (e *Engine) nextNumber(ctx context.Context) (int, error) {
	maxNumber, err := e.store.MaxNumber(ctx)
	if err != nil {
		return 0, err
	}
	return maxNumber + 1, nil
}
