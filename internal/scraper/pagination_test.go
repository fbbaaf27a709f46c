package scraper

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEstimateListingsFromCounter(t *testing.T) {
	t.Parallel()

	doc := docFromHTML(t, `<html><body><h1>DS 7 Crossback</h1><p>344 ogłoszeń</p></body></html>`)
	total, pages := EstimateListings(doc)
	require.Equal(t, 344, total)
	require.Equal(t, 11, pages, "344 listings at page size 32 is 11 pages, ceiling division")
}

func TestEstimateListingsCounterWithGroupedDigits(t *testing.T) {
	t.Parallel()

	doc := docFromHTML(t, "<html><body><p>1 245 ogłoszeń znaleziono</p></body></html>")
	total, pages := EstimateListings(doc)
	require.Equal(t, 1245, total)
	require.Equal(t, 39, pages)
}

func TestEstimateListingsFromPaginationWidget(t *testing.T) {
	t.Parallel()

	doc := docFromHTML(t, `
<html><body>
<ul data-testid="pagination">
  <li>1</li><li>2</li><li>3</li><li>...</li><li>7</li>
</ul>
</body></html>`)

	total, pages := EstimateListings(doc)
	require.Equal(t, 7, pages)
	require.Equal(t, 7*PageSize, total, "total extrapolated from page count")
}

func TestEstimateListingsClassNamedWidget(t *testing.T) {
	t.Parallel()

	doc := docFromHTML(t, `
<html><body>
<ul class="ooa-pagination-x"><li>1</li><li>2</li><li>5</li></ul>
</body></html>`)

	_, pages := EstimateListings(doc)
	require.Equal(t, 5, pages)
}

func TestEstimateListingsCounterBeatsWidget(t *testing.T) {
	t.Parallel()

	// The widget only renders a handful of page links; the counter is the
	// precise signal when both are present.
	doc := docFromHTML(t, `
<html><body>
<p>344 ogłoszeń</p>
<ul data-testid="pagination"><li>1</li><li>2</li><li>3</li></ul>
</body></html>`)

	total, pages := EstimateListings(doc)
	require.Equal(t, 344, total)
	require.Equal(t, 11, pages)
}

func TestEstimateListingsHardFallback(t *testing.T) {
	t.Parallel()

	doc := docFromHTML(t, `<html><body><div>nic tu nie ma</div></body></html>`)
	total, pages := EstimateListings(doc)
	require.Equal(t, fallbackTotal, total)
	require.Equal(t, fallbackPages, pages)
	require.GreaterOrEqual(t, pages, 1)
}
