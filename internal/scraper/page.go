package scraper

import (
	"errors"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

// ErrNoContainer signals a page-level failure: no results container could
// be located by any detection strategy. The caller logs it, skips the page,
// and moves on; it never turns one bad page into an aborted run (the very
// first page is the exception, decided by the engine).
var ErrNoContainer = errors.New("no results container found on page")

// containerStrategy locates the element holding all listing fragments.
type containerStrategy struct {
	ID     string
	Locate func(doc *goquery.Document) *goquery.Selection
}

var containerStrategies = []containerStrategy{
	{
		ID: "container/testid",
		Locate: func(doc *goquery.Document) *goquery.Selection {
			return firstNonEmpty(doc.Find(`[data-testid="search-results"]`))
		},
	},
	{
		ID: "container/class",
		Locate: func(doc *goquery.Document) *goquery.Selection {
			return firstNonEmpty(doc.Find(`div[class*="results"], section[class*="results"], main[class*="listing"]`))
		},
	},
	{
		ID:     "container/structural",
		Locate: structuralContainer,
	},
}

// fragmentSelectors enumerate listing fragments inside the container, again
// most specific first.
var fragmentSelectors = []struct {
	ID       string
	Selector string
}{
	{ID: "fragments/article", Selector: "article"},
	{ID: "fragments/testid", Selector: `[data-testid="listing-ad"]`},
}

// ExtractPage locates the results container, enumerates listing fragments,
// and maps the Extractor across them in document order. Fragments rejected
// by the canonical-URL filter are counted into skipped, not errored.
func (e *Extractor) ExtractPage(doc *goquery.Document) (listings []Listing, skipped int, err error) {
	container, containerID := findContainer(doc)
	if container == nil {
		return nil, 0, ErrNoContainer
	}

	fragments, fragmentID := findFragments(container)
	if len(fragments) == 0 {
		return nil, 0, ErrNoContainer
	}
	e.logger.Debug("page structure located",
		zap.String("container_strategy", containerID),
		zap.String("fragment_strategy", fragmentID),
		zap.Int("fragments", len(fragments)),
	)

	for _, frag := range fragments {
		listing, lerr := e.ExtractListing(frag)
		switch {
		case lerr == nil:
			listings = append(listings, listing)
		case errors.Is(lerr, ErrNoListingURL), errors.Is(lerr, ErrWrongProduct):
			skipped++
		}
	}
	return listings, skipped, nil
}

func findContainer(doc *goquery.Document) (*goquery.Selection, string) {
	for _, strategy := range containerStrategies {
		if sel := strategy.Locate(doc); sel != nil {
			return sel, strategy.ID
		}
	}
	return nil, ""
}

func findFragments(container *goquery.Selection) ([]*goquery.Selection, string) {
	for _, fs := range fragmentSelectors {
		nodes := container.Find(fs.Selector)
		if nodes.Length() < 1 {
			continue
		}
		fragments := make([]*goquery.Selection, 0, nodes.Length())
		nodes.Each(func(_ int, node *goquery.Selection) {
			fragments = append(fragments, node)
		})
		return fragments, fs.ID
	}

	// Structural fallback: direct children that each carry a link. Works
	// when the card element is an anonymous generated-class div.
	var fragments []*goquery.Selection
	container.Children().Each(func(_ int, child *goquery.Selection) {
		if child.Find("a[href]").Length() > 0 {
			fragments = append(fragments, child)
		}
	})
	if len(fragments) > 0 {
		return fragments, "fragments/link-children"
	}
	return nil, ""
}

// structuralContainer is the last-resort detection strategy: the shallowest
// element holding at least two link-bearing child blocks. It keys on the
// shape of a results list rather than on any markup the site controls.
func structuralContainer(doc *goquery.Document) *goquery.Selection {
	var best *goquery.Selection
	bestDepth := -1
	doc.Find("body *").Each(func(_ int, el *goquery.Selection) {
		linkChildren := 0
		el.Children().Each(func(_ int, child *goquery.Selection) {
			if child.Find("a[href]").Length() > 0 {
				linkChildren++
			}
		})
		if linkChildren < 2 {
			return
		}
		depth := el.Parents().Length()
		if best == nil || depth < bestDepth {
			best = el
			bestDepth = depth
		}
	})
	return best
}

func firstNonEmpty(sel *goquery.Selection) *goquery.Selection {
	if sel.Length() == 0 {
		return nil
	}
	return sel.First()
}
