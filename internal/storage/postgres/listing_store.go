// Package postgres provides the Postgres-backed listing store.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"otowatch/internal/scraper"
)

var validTableName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// ListingStoreConfig controls the Postgres connection pool.
type ListingStoreConfig struct {
	DSN             string
	Table           string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
}

type pgxQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// ListingStore implements reconcile.Store on a single append-mostly table:
//
//	CREATE TABLE listings (
//	    id              BIGSERIAL PRIMARY KEY,
//	    auction_key     TEXT NOT NULL,
//	    auction_number  INTEGER NOT NULL,
//	    url             TEXT NOT NULL,
//	    title           TEXT NOT NULL DEFAULT '',
//	    description     TEXT NOT NULL DEFAULT '',
//	    model_year      INTEGER NOT NULL DEFAULT 0,
//	    mileage_km      INTEGER NOT NULL DEFAULT 0,
//	    engine_cap_ccm  INTEGER NOT NULL DEFAULT 0,
//	    engine_power    TEXT NOT NULL DEFAULT '',
//	    fuel_type       TEXT NOT NULL DEFAULT '',
//	    price           INTEGER NOT NULL DEFAULT 0,
//	    seller          TEXT NOT NULL DEFAULT 'unknown',
//	    city            TEXT NOT NULL DEFAULT '',
//	    region          TEXT NOT NULL DEFAULT '',
//	    variant_tag     TEXT NOT NULL DEFAULT '',
//	    status          TEXT NOT NULL DEFAULT 'active',
//	    observed_at     TIMESTAMPTZ NOT NULL,
//	    created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
//	);
//	CREATE UNIQUE INDEX listings_number_day
//	    ON listings (auction_number, (created_at::date));
//
// The unique index is the storage-side guard behind same-day idempotency:
// even if two runs overlap, the second insert for a (number, day) pair fails
// loudly instead of creating a duplicate row.
type ListingStore struct {
	pool  pgxQuerier
	table string
}

// NewListingStore connects a pool and returns the store.
func NewListingStore(ctx context.Context, cfg ListingStoreConfig) (*ListingStore, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("database.dsn is required")
	}
	table := cfg.Table
	if table == "" {
		table = "listings"
	}
	if !validTableName.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return &ListingStore{pool: pool, table: table}, nil
}

// NewListingStoreWithPool constructs a store from an existing pool
// (primarily for testing with pgxmock).
func NewListingStoreWithPool(pool pgxQuerier, table string) (*ListingStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	if table == "" {
		table = "listings"
	}
	if !validTableName.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	return &ListingStore{pool: pool, table: table}, nil
}

// Close releases the underlying pool resources.
func (s *ListingStore) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

// FindNumberByKey returns the auction number bound to the key, 0 when the
// key is unseen. Most recent row wins when historical rows disagree.
func (s *ListingStore) FindNumberByKey(ctx context.Context, key string) (int, error) {
	query := fmt.Sprintf(
		`SELECT auction_number FROM %s WHERE auction_key = $1 ORDER BY created_at DESC, id DESC LIMIT 1`,
		s.table,
	)
	var number int
	err := s.pool.QueryRow(ctx, query, key).Scan(&number)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("find number by key: %w", err)
	}
	return number, nil
}

// MaxNumber returns the highest auction number ever assigned, 0 for an
// empty table. The reconciliation sentinel is excluded so an unreconciled
// run cannot poison the sequence.
func (s *ListingStore) MaxNumber(ctx context.Context) (int, error) {
	query := fmt.Sprintf(
		`SELECT COALESCE(MAX(auction_number), 0) FROM %s WHERE auction_number < $1`,
		s.table,
	)
	var maxNumber int
	if err := s.pool.QueryRow(ctx, query, sentinelFloor).Scan(&maxNumber); err != nil {
		return 0, fmt.Errorf("max auction number: %w", err)
	}
	return maxNumber, nil
}

// sentinelFloor keeps reserved sentinel numbers out of MAX(). Kept in sync
// with reconcile.SentinelNumber by the store test.
const sentinelFloor = 99_999_999

// FindTodayRow returns the row id of an observation of number on the given
// calendar day, 0 when there is none.
func (s *ListingStore) FindTodayRow(ctx context.Context, number int, day time.Time) (int64, error) {
	query := fmt.Sprintf(
		`SELECT id FROM %s WHERE auction_number = $1 AND created_at::date = $2::date ORDER BY id LIMIT 1`,
		s.table,
	)
	var id int64
	err := s.pool.QueryRow(ctx, query, number, day).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("find today row: %w", err)
	}
	return id, nil
}

// Insert persists one listing observation and returns the new row id.
func (s *ListingStore) Insert(ctx context.Context, listing scraper.Listing) (int64, error) {
	query := fmt.Sprintf(`
INSERT INTO %s (
	auction_key,
	auction_number,
	url,
	title,
	description,
	model_year,
	mileage_km,
	engine_cap_ccm,
	engine_power,
	fuel_type,
	price,
	seller,
	city,
	region,
	variant_tag,
	status,
	observed_at
) VALUES (
	$1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17
) RETURNING id`, s.table)

	args := []any{
		listing.AuctionKey,
		listing.AuctionNumber,
		listing.CanonicalURL,
		listing.Title,
		listing.Description,
		listing.ModelYear,
		listing.MileageKm,
		listing.EngineCapCcm,
		listing.EnginePower,
		listing.FuelType,
		listing.Price,
		string(listing.Seller),
		listing.City,
		listing.Region,
		listing.VariantTag,
		listing.Status,
		listing.ObservedAt,
	}
	var id int64
	if err := s.pool.QueryRow(ctx, query, args...).Scan(&id); err != nil {
		return 0, fmt.Errorf("insert listing: %w", err)
	}
	return id, nil
}
