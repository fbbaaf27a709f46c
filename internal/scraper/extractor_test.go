package scraper

import (
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"otowatch/internal/variant"
)

const richFragment = `
<article>
  <h2><a href="/osobowe/oferta/ds-automobiles-ds-7-crossback-performance-line-ID6F001.html">DS 7 Crossback Preformance Line</a></h2>
  <p data-testid="ad-description">Stan idealny, pierwszy właściciel</p>
  <ul>
    <li data-parameter="year">2019</li>
    <li data-parameter="mileage">35 000 km</li>
    <li data-parameter="engine_capacity">1 598 cm3</li>
    <li data-parameter="engine_power">180 KM</li>
    <li data-parameter="fuel_type">Benzyna</li>
  </ul>
  <p data-testid="ad-price">129 900 PLN</p>
  <p data-testid="location-date">Wrocław (Dolnośląskie)</p>
  <span>Prywatny sprzedawca</span>
</article>`

// degradedFragment mimics a redesign: every test-id and data-parameter hook
// is gone, only generated classes and raw text remain.
const degradedFragment = `
<div class="ooa-1x2y3z">
  <a href="https://www.otomoto.pl/osobowe/oferta/ds-7-crossback-grand-chic-ID6F002.html">DS 7 Crossback Grand Chic</a>
  <ul>
    <li class="ooa-year-e5f6">2020</li>
    <li>41 250 km</li>
    <li>1 997 cm3</li>
    <li>Diesel</li>
  </ul>
  <div class="ooa-price-a1b2">154 500 PLN</div>
  <p class="ooa-location-c3d4">Zator, oświęcimski, Małopolskie</p>
</div>`

func fragmentFromHTML(t *testing.T, html string) *goquery.Selection {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc.Find("body").Children().First()
}

func newTestExtractor() *Extractor {
	return NewExtractor("ds-7-crossback", variant.NewDS7(), zap.NewNop())
}

func TestExtractListingRichMarkup(t *testing.T) {
	t.Parallel()

	frag := fragmentFromHTML(t, richFragment)
	listing, err := newTestExtractor().ExtractListing(frag)
	require.NoError(t, err)

	require.Equal(t,
		"https://www.otomoto.pl/osobowe/oferta/ds-automobiles-ds-7-crossback-performance-line-ID6F001.html",
		listing.CanonicalURL,
	)
	require.Equal(t, "DS 7 Crossback Preformance Line", listing.Title)
	require.Equal(t, "Stan idealny, pierwszy właściciel", listing.Description)
	require.Equal(t, 2019, listing.ModelYear)
	require.Equal(t, 35000, listing.MileageKm)
	require.Equal(t, 1598, listing.EngineCapCcm)
	require.Equal(t, "180 KM", listing.EnginePower)
	require.Equal(t, "benzyna", listing.FuelType)
	require.Equal(t, 129900, listing.Price)
	require.Equal(t, SellerPrivate, listing.Seller)
	require.Equal(t, "Wrocław", listing.City)
	require.Equal(t, "Dolnośląskie", listing.Region)
	require.Equal(t, "Performance Line", listing.VariantTag, "misspelled trim still fuzzy-matches")
	require.Equal(t, StatusActive, listing.Status)
	require.False(t, listing.ObservedAt.IsZero())
}

func TestExtractListingDegradedMarkup(t *testing.T) {
	t.Parallel()

	frag := fragmentFromHTML(t, degradedFragment)
	listing, err := newTestExtractor().ExtractListing(frag)
	require.NoError(t, err)

	require.Equal(t, "DS 7 Crossback Grand Chic", listing.Title)
	require.Equal(t, 2020, listing.ModelYear)
	require.Equal(t, 41250, listing.MileageKm)
	require.Equal(t, 1997, listing.EngineCapCcm)
	require.Equal(t, "diesel", listing.FuelType)
	require.Equal(t, 154500, listing.Price)
	require.Equal(t, "Zator", listing.City)
	require.Equal(t, "Małopolskie", listing.Region)
	require.Equal(t, "Grand Chic", listing.VariantTag)
	require.Equal(t, SellerUnknown, listing.Seller)
}

func TestExtractListingMissingFieldsTakeSentinels(t *testing.T) {
	t.Parallel()

	frag := fragmentFromHTML(t, `
<article>
  <h2><a href="/oferta/ds-7-crossback-bare-ID6F003.html">DS 7 Crossback</a></h2>
</article>`)

	listing, err := newTestExtractor().ExtractListing(frag)
	require.NoError(t, err, "a single missing field must never abort extraction")
	require.Zero(t, listing.ModelYear)
	require.Zero(t, listing.MileageKm)
	require.Zero(t, listing.EngineCapCcm)
	require.Zero(t, listing.Price)
	require.Empty(t, listing.FuelType)
	require.Empty(t, listing.City)
	require.Equal(t, StatusActive, listing.Status)
}

func TestExtractListingRejectsMissingURL(t *testing.T) {
	t.Parallel()

	frag := fragmentFromHTML(t, `<article><h2>DS 7 Crossback bez linku</h2></article>`)
	_, err := newTestExtractor().ExtractListing(frag)
	require.ErrorIs(t, err, ErrNoListingURL)
}

func TestExtractListingRejectsWrongProduct(t *testing.T) {
	t.Parallel()

	frag := fragmentFromHTML(t, `
<article>
  <h2><a href="/oferta/citroen-c5-aircross-ID6F004.html">Citroen C5 Aircross</a></h2>
</article>`)

	_, err := newTestExtractor().ExtractListing(frag)
	require.ErrorIs(t, err, ErrWrongProduct)
}

func TestExtractListingImplausibleYearFallsThrough(t *testing.T) {
	t.Parallel()

	// The structured year is nonsense; the regex fallback should pick the
	// plausible year out of the title text instead.
	frag := fragmentFromHTML(t, `
<article>
  <h2><a href="/oferta/ds-7-crossback-ID6F005.html">DS 7 Crossback 2018</a></h2>
  <li data-parameter="year">1899</li>
</article>`)

	listing, err := newTestExtractor().ExtractListing(frag)
	require.NoError(t, err)
	require.Equal(t, 2018, listing.ModelYear)
}

func TestExtractListingYearBoundFollowsClock(t *testing.T) {
	t.Parallel()

	const html = `
<article>
  <h2><a href="/oferta/ds-7-crossback-ID6F006.html">DS 7 Crossback</a></h2>
  <li data-parameter="year">2031</li>
</article>`

	at := func(year int) *Extractor {
		e := newTestExtractor()
		e.clock = func() time.Time {
			return time.Date(year, 6, 1, 0, 0, 0, 0, time.UTC)
		}
		return e
	}

	listing, err := at(2026).ExtractListing(fragmentFromHTML(t, html))
	require.NoError(t, err)
	require.Zero(t, listing.ModelYear, "a future model year is implausible")

	listing, err = at(2031).ExtractListing(fragmentFromHTML(t, html))
	require.NoError(t, err)
	require.Equal(t, 2031, listing.ModelYear)
}

func TestNormalizeFuelType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"Benzyna", "benzyna"},
		{"Petrol", "benzyna"},
		{"Benzyna+LPG", "benzyna+lpg"},
		{"Diesel", "diesel"},
		{"Olej napędowy", "diesel"},
		{"Hybryda", "hybryda"},
		{"Plug-in Hybrid", "hybryda"},
		{"Elektryczny", "elektryczny"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			require.Equal(t, tt.want, NormalizeFuelType(tt.in))
		})
	}
}
