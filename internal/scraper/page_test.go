package scraper

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

func docFromHTML(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

const threeListingPage = `
<html><body>
<header><a href="/promo">reklama</a></header>
<div data-testid="search-results">
  <article>
    <h2><a href="/oferta/ds-7-crossback-so-chic-ID6F010.html">DS 7 Crossback So Chic</a></h2>
    <li data-parameter="year">2019</li>
    <li data-parameter="mileage">52 000 km</li>
    <p data-testid="ad-price">119 000 PLN</p>
  </article>
  <article>
    <h2><a href="/oferta/peugeot-3008-ID6F011.html">Peugeot 3008</a></h2>
    <li data-parameter="year">2020</li>
    <p data-testid="ad-price">99 000 PLN</p>
  </article>
  <article>
    <h2><a href="/oferta/ds-7-crossback-rivoli-ID6F012.html">DS 7 Crossback Rivoli</a></h2>
    <li data-parameter="year">2021</li>
    <li data-parameter="mileage">18 000 km</li>
    <p data-testid="ad-price">165 000 PLN</p>
  </article>
</div>
</body></html>`

func TestExtractPageFiltersOffProductListings(t *testing.T) {
	t.Parallel()

	doc := docFromHTML(t, threeListingPage)
	listings, skipped, err := newTestExtractor().ExtractPage(doc)
	require.NoError(t, err)

	require.Len(t, listings, 2, "the off-product fragment is filtered, not errored")
	require.Equal(t, 1, skipped)
	for _, l := range listings {
		require.Equal(t, StatusActive, l.Status)
		require.NotZero(t, l.ModelYear)
		require.NotZero(t, l.Price)
	}
	// Document order is preserved.
	require.Contains(t, listings[0].CanonicalURL, "so-chic")
	require.Contains(t, listings[1].CanonicalURL, "rivoli")
}

func TestExtractPageClassNameContainer(t *testing.T) {
	t.Parallel()

	doc := docFromHTML(t, `
<html><body>
<section class="ooa-search-results-xyz">
  <article><h2><a href="/oferta/ds-7-crossback-ID6F020.html">DS 7 Crossback</a></h2></article>
  <article><h2><a href="/oferta/ds-7-crossback-ID6F021.html">DS 7 Crossback</a></h2></article>
</section>
</body></html>`)

	listings, skipped, err := newTestExtractor().ExtractPage(doc)
	require.NoError(t, err)
	require.Len(t, listings, 2)
	require.Zero(t, skipped)
}

func TestExtractPageStructuralFallback(t *testing.T) {
	t.Parallel()

	// No test-id, no recognizable class: the structural heuristic has to
	// find the block with multiple link-bearing children.
	doc := docFromHTML(t, `
<html><body>
<div class="x1">
  <div class="x2">
    <div><a href="/oferta/ds-7-crossback-ID6F030.html">DS 7 Crossback jeden</a></div>
    <div><a href="/oferta/ds-7-crossback-ID6F031.html">DS 7 Crossback dwa</a></div>
    <div><a href="/oferta/ds-7-crossback-ID6F032.html">DS 7 Crossback trzy</a></div>
  </div>
</div>
</body></html>`)

	listings, _, err := newTestExtractor().ExtractPage(doc)
	require.NoError(t, err)
	require.Len(t, listings, 3)
}

func TestExtractPageNoContainer(t *testing.T) {
	t.Parallel()

	doc := docFromHTML(t, `<html><body><p>Serwis niedostępny</p></body></html>`)
	listings, _, err := newTestExtractor().ExtractPage(doc)
	require.ErrorIs(t, err, ErrNoContainer)
	require.Empty(t, listings)
}
