package scraper

import (
	"regexp"

	"github.com/PuerkitoBio/goquery"

	"otowatch/internal/textutil"
)

// PageSize is Otomoto's fixed number of listings per search-results page.
const PageSize = 32

// Hard fallbacks used when every pagination signal on the page is gone.
// They only need to keep the scrape loop moving; the page cap still bounds
// the run.
const (
	fallbackTotal = 320
	fallbackPages = 10
)

// "344 ogłoszeń" / "344 ogloszen" / "344 wyników", digits possibly grouped
// with (non-breaking) spaces.
var counterPattern = regexp.MustCompile(`(\d{1,3}(?:[ \x{00a0}]?\d{3})*)\s*(?:ogłosze|ogloszen|wynik|ofert)`)

// EstimateListings derives (total listings, total pages) from whichever
// signal the first page still carries, in order of trust:
//
//  1. the explicit "<N> ogłoszeń" counter text
//  2. the pagination widget's highest page number
//  3. extrapolation from the other signal at the fixed page size
//  4. hard-coded fallback
//
// The counter is the most precise signal and the first to vanish in a
// redesign; the fallback guarantees forward progress. Never returns
// pages < 1.
func EstimateListings(doc *goquery.Document) (total, pages int) {
	total = counterTotal(doc)
	pages = paginationMax(doc)

	switch {
	case total > 0 && pages > 0:
		// Both signals present; trust the counter for the page count too,
		// the widget sometimes caps the number it renders.
		pages = ceilDiv(total, PageSize)
	case total > 0:
		pages = ceilDiv(total, PageSize)
	case pages > 0:
		total = pages * PageSize
	default:
		total, pages = fallbackTotal, fallbackPages
	}
	if pages < 1 {
		pages = 1
	}
	return total, pages
}

func counterTotal(doc *goquery.Document) int {
	text := doc.Find("body").Text()
	m := counterPattern.FindStringSubmatch(text)
	if m == nil {
		return 0
	}
	return textutil.ExtractDigits(m[1])
}

func paginationMax(doc *goquery.Document) int {
	maxPage := 0
	scan := func(sel *goquery.Selection) {
		sel.Each(func(_ int, node *goquery.Selection) {
			if n := textutil.ExtractDigits(node.Text()); n > maxPage && n < 10_000 {
				maxPage = n
			}
		})
	}
	scan(doc.Find(`[data-testid="pagination"] li`))
	if maxPage == 0 {
		scan(doc.Find(`ul[class*="pagination"] li, nav[class*="pagination"] a`))
	}
	return maxPage
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}
