package scraper

import (
	"errors"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"otowatch/internal/textutil"
	"otowatch/internal/variant"
)

// Listing-level rejection reasons. Anything else that goes wrong inside a
// fragment degrades to a sentinel field value instead of an error.
var (
	// ErrNoListingURL means no strategy could resolve a detail link.
	ErrNoListingURL = errors.New("no usable listing url in fragment")
	// ErrWrongProduct means the resolved URL is not for the target product.
	ErrWrongProduct = errors.New("listing url outside the product filter")
)

// Extractor pulls a Listing out of one search-result fragment.
// All state is read-only after construction, so one Extractor serves a
// whole run.
type Extractor struct {
	productFilter string
	matcher       *variant.Matcher
	clock         func() time.Time
	logger        *zap.Logger
}

// NewExtractor builds an Extractor. productFilter is the canonical-URL
// substring a listing must carry to count as the target product (e.g.
// "ds-7-crossback"); empty disables the filter.
func NewExtractor(productFilter string, matcher *variant.Matcher, logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{
		productFilter: strings.ToLower(productFilter),
		matcher:       matcher,
		clock:         func() time.Time { return time.Now().UTC() },
		logger:        logger,
	}
}

// ExtractListing runs every field's strategy chain over the fragment and
// assembles a Listing. A field whose whole chain misses takes its unknown
// sentinel (0 or "") and extraction continues; only a missing or
// off-product canonical URL rejects the fragment.
func (e *Extractor) ExtractListing(frag *goquery.Selection) (Listing, error) {
	rawURL, urlStrategy := e.firstPlausible(frag, urlStrategies)
	if rawURL == "" {
		return Listing{}, ErrNoListingURL
	}
	canonical := textutil.NormalizeURL(rawURL)
	if e.productFilter != "" && !strings.Contains(strings.ToLower(canonical), e.productFilter) {
		return Listing{}, ErrWrongProduct
	}

	title, titleStrategy := e.firstPlausible(frag, titleStrategies)
	description, _ := e.firstPlausible(frag, descriptionStrategies)
	year, _ := e.firstPlausible(frag, yearStrategies(e.clock().Year()))
	mileage, _ := e.firstPlausible(frag, mileageStrategies)
	displacement, _ := e.firstPlausible(frag, displacementStrategies)
	power, _ := e.firstPlausible(frag, powerStrategies)
	fuel, _ := e.firstPlausible(frag, fuelStrategies)
	price, priceStrategy := e.firstPlausible(frag, priceStrategies)
	location, _ := e.firstPlausible(frag, locationStrategies)

	city, region := textutil.SplitLocation(location)

	listing := Listing{
		CanonicalURL: canonical,
		Title:        title,
		Description:  description,
		ModelYear:    textutil.ExtractDigits(year),
		MileageKm:    textutil.ExtractDigits(mileage),
		EngineCapCcm: textutil.ExtractDigits(displacement),
		EnginePower:  power,
		FuelType:     NormalizeFuelType(fuel),
		Price:        textutil.ExtractDigits(price),
		Seller:       classifySeller(frag),
		City:         city,
		Region:       region,
		ObservedAt:   e.clock(),
		Status:       StatusActive,
	}
	if e.matcher != nil {
		listing.VariantTag = e.matcher.Match(listing.Title, listing.Description)
	}

	// Which strategies fired is the early-warning signal for layout drift.
	e.logger.Debug("extracted listing",
		zap.String("url", canonical),
		zap.String("url_strategy", urlStrategy),
		zap.String("title_strategy", titleStrategy),
		zap.String("price_strategy", priceStrategy),
	)
	return listing, nil
}

// firstPlausible walks a strategy chain and returns the first value that is
// non-empty and plausible, plus the winning strategy ID ("" on total miss).
func (e *Extractor) firstPlausible(frag *goquery.Selection, chain []fieldStrategy) (string, string) {
	for _, strategy := range chain {
		value := strategy.Extract(frag)
		if value == "" {
			continue
		}
		if strategy.Validate != nil && !strategy.Validate(value) {
			e.logger.Debug("strategy value rejected",
				zap.String("strategy", strategy.ID),
				zap.String("value", value),
			)
			continue
		}
		return value, strategy.ID
	}
	return "", ""
}

// classifySeller decides private vs dealer from the fragment text.
// Otomoto labels private sellers explicitly; dealers show a company badge.
func classifySeller(frag *goquery.Selection) SellerCategory {
	text := strings.ToLower(textutil.CollapseSpace(frag.Text()))
	switch {
	case strings.Contains(text, "prywatny sprzedawca"):
		return SellerPrivate
	case strings.Contains(text, "autoryzowany dealer"),
		strings.Contains(text, "dealer"),
		strings.Contains(text, "firma"):
		return SellerDealer
	default:
		return SellerUnknown
	}
}
