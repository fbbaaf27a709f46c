// Package export serializes a finished run's listings to a CSV backup.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"otowatch/internal/scraper"
)

// Column order is part of the backup contract: downstream spreadsheets key
// on position. Reconciliation fields (auction key/number) are internal and
// never exported; price is policy-gated.
var baseHeader = []string{
	"url",
	"title",
	"description",
	"model_year",
	"mileage_km",
	"engine_cap_ccm",
	"engine_power",
	"fuel_type",
	"seller",
	"city",
	"region",
	"variant_tag",
	"status",
	"observed_at",
}

// WriteCSV writes the listings to w in the stable column order.
func WriteCSV(w io.Writer, listings []scraper.Listing, includePrice bool) error {
	cw := csv.NewWriter(w)

	header := append([]string(nil), baseHeader...)
	if includePrice {
		header = append(header, "price")
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, l := range listings {
		row := []string{
			l.CanonicalURL,
			l.Title,
			l.Description,
			strconv.Itoa(l.ModelYear),
			strconv.Itoa(l.MileageKm),
			strconv.Itoa(l.EngineCapCcm),
			l.EnginePower,
			l.FuelType,
			string(l.Seller),
			l.City,
			l.Region,
			l.VariantTag,
			l.Status,
			l.ObservedAt.UTC().Format("2006-01-02T15:04:05Z"),
		}
		if includePrice {
			row = append(row, strconv.Itoa(l.Price))
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

// SaveCSV writes the backup file, creating parent directories as needed.
func SaveCSV(path string, listings []scraper.Listing, includePrice bool) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create export file: %w", err)
	}
	defer f.Close() //nolint:errcheck // close error surfaces via WriteCSV flush

	return WriteCSV(f, listings, includePrice)
}
