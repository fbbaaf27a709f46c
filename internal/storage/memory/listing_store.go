// Package memory provides a listing store for dry runs and local development.
package memory

import (
	"context"
	"sync"
	"time"

	"otowatch/internal/scraper"
)

// Numbers at or above this floor are audit sentinels, not part of the
// organic sequence; MaxNumber must never treat one as the high-water mark.
// Kept in sync with reconcile.SentinelNumber (asserted in tests).
const sentinelFloor = 99_999_999

type row struct {
	id      int64
	key     string
	number  int
	day     string
	listing scraper.Listing
}

// ListingStore implements reconcile.Store entirely in memory. Nothing
// survives process exit; it exists so a scrape can run end to end
// without a database.
type ListingStore struct {
	mu     sync.Mutex
	rows   []row
	nextID int64
}

// NewListingStore constructs an empty in-memory store.
func NewListingStore() *ListingStore {
	return &ListingStore{nextID: 1}
}

// FindNumberByKey returns the number most recently bound to the key,
// 0 when the key has never been seen.
func (s *ListingStore) FindNumberByKey(_ context.Context, key string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.rows) - 1; i >= 0; i-- {
		if s.rows[i].key == key {
			return s.rows[i].number, nil
		}
	}
	return 0, nil
}

// MaxNumber returns the highest organic number assigned so far, 0 for an
// empty store. Sentinel numbers are excluded.
func (s *ListingStore) MaxNumber(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	max := 0
	for _, r := range s.rows {
		if r.number > max && r.number < sentinelFloor {
			max = r.number
		}
	}
	return max, nil
}

// FindTodayRow returns the row ID for (number, day) or 0 when absent.
func (s *ListingStore) FindTodayRow(_ context.Context, number int, day time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	want := day.UTC().Format("2006-01-02")
	for _, r := range s.rows {
		if r.number == number && r.day == want {
			return r.id, nil
		}
	}
	return 0, nil
}

// Insert appends a row and returns its ID.
func (s *ListingStore) Insert(_ context.Context, listing scraper.Listing) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.rows = append(s.rows, row{
		id:      id,
		key:     listing.AuctionKey,
		number:  listing.AuctionNumber,
		day:     listing.ObservedAt.UTC().Format("2006-01-02"),
		listing: listing,
	})
	return id, nil
}

// Len reports the number of stored rows.
func (s *ListingStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rows)
}
