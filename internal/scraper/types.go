// Package scraper extracts vehicle listings from Otomoto search-results
// pages. It owns the listing model, the per-field extraction strategy
// tables, page-level orchestration, and the pagination estimate.
package scraper

import "time"

// SellerCategory classifies who posted the listing.
type SellerCategory string

// Seller categories persisted with each listing.
const (
	SellerPrivate SellerCategory = "private"
	SellerDealer  SellerCategory = "dealer"
	SellerUnknown SellerCategory = "unknown"
)

// StatusActive is the default status of a freshly observed listing.
const StatusActive = "active"

// Listing is one observed vehicle listing at scrape time. Numeric fields
// hold 0 when the page did not yield a plausible value; a parse miss never
// aborts extraction of the rest of the listing.
type Listing struct {
	CanonicalURL  string
	AuctionKey    string
	AuctionNumber int
	Title         string
	Description   string
	ModelYear     int
	MileageKm     int
	EngineCapCcm  int
	EnginePower   string
	FuelType      string
	Price         int
	Seller        SellerCategory
	City          string
	Region        string
	VariantTag    string
	ObservedAt    time.Time
	Status        string
}

// Counters accumulates per-run tallies. One instance is threaded through
// the scrape loop by reference; it is run-scoped, never process-wide.
type Counters struct {
	Processed   int
	Inserted    int
	Duplicates  int
	Failed      int
	Skipped     int
	PagesFailed int
}

// Report is what a finished run hands back to the trigger collaborator.
type Report struct {
	RunID         string
	StartedAt     time.Time
	FinishedAt    time.Time
	TotalListings int
	TotalPages    int
	PagesScraped  int
	Counters      Counters
}
