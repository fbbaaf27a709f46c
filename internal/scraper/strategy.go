package scraper

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"otowatch/internal/textutil"
)

// fieldStrategy is one attempt at extracting a single field from a listing
// fragment. Strategies for a field are tried in declaration order, most
// specific first; the first result that is non-empty and passes Validate
// wins. Keeping them as table entries rather than nested conditionals makes
// each one independently testable and lets a new site layout be covered by
// appending a row.
type fieldStrategy struct {
	ID       string
	Extract  func(frag *goquery.Selection) string
	Validate func(value string) bool
}

// selectorText returns the trimmed text of the first node matching a CSS
// selector inside the fragment.
func selectorText(selector string) func(*goquery.Selection) string {
	return func(frag *goquery.Selection) string {
		return textutil.CollapseSpace(frag.Find(selector).First().Text())
	}
}

// selectorAttr returns an attribute of the first node matching the selector.
func selectorAttr(selector, attr string) func(*goquery.Selection) string {
	return func(frag *goquery.Selection) string {
		value, _ := frag.Find(selector).First().Attr(attr)
		return strings.TrimSpace(value)
	}
}

// classContainsText finds the first element of the given tag whose class
// attribute contains the fragment. Otomoto's generated class names churn on
// every deploy but tend to keep a recognizable stem.
func classContainsText(tag, classFragment string) func(*goquery.Selection) string {
	selector := fmt.Sprintf(`%s[class*=%q]`, tag, classFragment)
	return func(frag *goquery.Selection) string {
		return textutil.CollapseSpace(frag.Find(selector).First().Text())
	}
}

// keywordScan walks the fragment's leaf-ish text nodes (li, p, span, dd)
// and returns the first one containing the keyword. This is the last-resort
// strategy when every structured selector has drifted away.
func keywordScan(keyword string) func(*goquery.Selection) string {
	lower := strings.ToLower(keyword)
	return func(frag *goquery.Selection) string {
		var found string
		frag.Find("li, p, span, dd").EachWithBreak(func(_ int, node *goquery.Selection) bool {
			text := textutil.CollapseSpace(node.Text())
			if text != "" && strings.Contains(strings.ToLower(text), lower) {
				found = text
				return false
			}
			return true
		})
		return found
	}
}

// regexScan applies a pattern to the fragment's full text and returns the
// first capture group (or the whole match when the pattern has no group).
func regexScan(pattern *regexp.Regexp) func(*goquery.Selection) string {
	return func(frag *goquery.Selection) string {
		m := pattern.FindStringSubmatch(textutil.CollapseSpace(frag.Text()))
		if m == nil {
			return ""
		}
		if len(m) > 1 {
			return m[1]
		}
		return m[0]
	}
}

// Plausibility checks. A value that parses but is nonsense (a 1 km mileage
// typo page, a five-digit year) must not shadow a later strategy.

// validYearUpTo bounds model years to [2000, maxYear]; the extractor
// supplies the upper bound from its clock.
func validYearUpTo(maxYear int) func(string) bool {
	return func(value string) bool {
		year := textutil.ExtractDigits(value)
		return year >= 2000 && year <= maxYear
	}
}

func validMileage(value string) bool {
	km := textutil.ExtractDigits(value)
	return km > 0 && km < 1_000_000
}

func validPrice(value string) bool {
	return textutil.ExtractDigits(value) > 0
}

func validDisplacement(value string) bool {
	ccm := textutil.ExtractDigits(value)
	return ccm >= 500 && ccm <= 10_000
}

func nonEmpty(value string) bool {
	return strings.TrimSpace(value) != ""
}

var (
	yearPattern  = regexp.MustCompile(`\b(20[0-4][0-9])\b`)
	powerPattern = regexp.MustCompile(`\b(\d{2,3}\s?KM)\b`)
)

// Strategy tables, most specific first. The data-parameter attributes are
// Otomoto's own machine-readable hooks and survive most redesigns; the
// class-substring rows cover the generated-class era; the scans are the
// safety net.

var titleStrategies = []fieldStrategy{
	{ID: "title/h-link", Extract: selectorText("h1 a, h2 a"), Validate: nonEmpty},
	{ID: "title/testid", Extract: selectorText(`[data-testid="ad-title"]`), Validate: nonEmpty},
	{ID: "title/first-link", Extract: selectorText("a[href]"), Validate: nonEmpty},
}

var descriptionStrategies = []fieldStrategy{
	{ID: "desc/testid", Extract: selectorText(`[data-testid="ad-description"]`), Validate: nonEmpty},
	{ID: "desc/class", Extract: classContainsText("p", "descri"), Validate: nonEmpty},
	{ID: "desc/subtitle", Extract: classContainsText("p", "subtitle"), Validate: nonEmpty},
}

func yearStrategies(maxYear int) []fieldStrategy {
	valid := validYearUpTo(maxYear)
	return []fieldStrategy{
		{ID: "year/parameter", Extract: selectorText(`[data-parameter="year"]`), Validate: valid},
		{ID: "year/class", Extract: classContainsText("li", "year"), Validate: valid},
		{ID: "year/regex", Extract: regexScan(yearPattern), Validate: valid},
	}
}

var mileageStrategies = []fieldStrategy{
	{ID: "mileage/parameter", Extract: selectorText(`[data-parameter="mileage"]`), Validate: validMileage},
	{ID: "mileage/class", Extract: classContainsText("li", "mileage"), Validate: validMileage},
	{ID: "mileage/keyword", Extract: keywordScan(" km"), Validate: validMileage},
}

var displacementStrategies = []fieldStrategy{
	{ID: "engine/parameter", Extract: selectorText(`[data-parameter="engine_capacity"]`), Validate: validDisplacement},
	{ID: "engine/class", Extract: classContainsText("li", "engine"), Validate: validDisplacement},
	{ID: "engine/keyword", Extract: keywordScan("cm3"), Validate: validDisplacement},
}

var powerStrategies = []fieldStrategy{
	{ID: "power/parameter", Extract: selectorText(`[data-parameter="engine_power"]`), Validate: nonEmpty},
	{ID: "power/regex", Extract: regexScan(powerPattern), Validate: nonEmpty},
}

var fuelStrategies = []fieldStrategy{
	{ID: "fuel/parameter", Extract: selectorText(`[data-parameter="fuel_type"]`), Validate: nonEmpty},
	{ID: "fuel/class", Extract: classContainsText("li", "fuel"), Validate: nonEmpty},
	{ID: "fuel/keyword", Extract: scanFuelKeywords, Validate: nonEmpty},
}

var priceStrategies = []fieldStrategy{
	{ID: "price/testid", Extract: selectorText(`[data-testid="ad-price"]`), Validate: validPrice},
	{ID: "price/class", Extract: classContainsText("", "price"), Validate: validPrice},
	{ID: "price/keyword", Extract: keywordScan("PLN"), Validate: validPrice},
}

var locationStrategies = []fieldStrategy{
	{ID: "location/testid", Extract: selectorText(`[data-testid="location-date"]`), Validate: nonEmpty},
	{ID: "location/class", Extract: classContainsText("", "location"), Validate: nonEmpty},
	{ID: "location/svg-label", Extract: selectorText("dd.ooa-location, p.ooa-location"), Validate: nonEmpty},
}

var urlStrategies = []fieldStrategy{
	{ID: "url/h-link", Extract: selectorAttr("h1 a, h2 a", "href"), Validate: nonEmpty},
	{ID: "url/offer-link", Extract: selectorAttr(`a[href*="/oferta/"]`, "href"), Validate: nonEmpty},
	{ID: "url/first-link", Extract: selectorAttr("a[href]", "href"), Validate: nonEmpty},
}

// scanFuelKeywords looks for a known fuel word anywhere in the fragment.
func scanFuelKeywords(frag *goquery.Selection) string {
	text := strings.ToLower(textutil.CollapseSpace(frag.Text()))
	for _, word := range []string{"benzyna", "diesel", "hybryda", "hybrid", "elektryczny", "lpg"} {
		if strings.Contains(text, word) {
			return word
		}
	}
	return ""
}

// NormalizeFuelType collapses fuel-type synonyms to one label per fuel.
func NormalizeFuelType(raw string) string {
	value := strings.ToLower(textutil.CollapseSpace(raw))
	switch {
	case value == "":
		return ""
	case strings.Contains(value, "benzyna") && strings.Contains(value, "lpg"):
		return "benzyna+lpg"
	case strings.Contains(value, "benzyna"), strings.Contains(value, "petrol"), strings.Contains(value, "gasoline"):
		return "benzyna"
	case strings.Contains(value, "diesel"), strings.Contains(value, "olej nap"):
		return "diesel"
	case strings.Contains(value, "hybryda"), strings.Contains(value, "hybrid"), strings.Contains(value, "phev"):
		return "hybryda"
	case strings.Contains(value, "elektryczny"), strings.Contains(value, "electric"), strings.Contains(value, "ev"):
		return "elektryczny"
	case strings.Contains(value, "lpg"):
		return "lpg"
	default:
		return value
	}
}
