// Package variant tags listings with a trim-level label by fuzzy-matching
// listing text against a declared vocabulary.
package variant

import (
	"strings"

	"github.com/hbollon/go-edlib"

	"otowatch/internal/textutil"
)

// DefaultThreshold is the minimum normalized similarity a window must reach
// before a vocabulary entry is accepted. High on purpose: the matcher should
// absorb a dropped letter or swapped pair ("Preformance"), not recall loosely
// related text.
const DefaultThreshold = 0.9

// DS7Vocabulary lists the DS 7 Crossback trim levels, most specific first.
// Declaration order is match order: the first entry that clears the
// threshold wins, so longer labels must precede their prefixes.
var DS7Vocabulary = []string{
	"Performance Line+",
	"Performance Line",
	"Grand Chic",
	"So Chic",
	"Be Chic",
	"Ultra Prestige",
	"Prestige",
	"Rivoli",
	"Opera",
	"Bastille",
	"Louvre",
}

// Matcher fuzzy-matches a fixed vocabulary against scraped text.
type Matcher struct {
	vocabulary []string
	folded     []string
	threshold  float64
}

// New builds a Matcher over vocabulary with the given threshold.
// A threshold outside (0, 1] falls back to DefaultThreshold.
func New(vocabulary []string, threshold float64) *Matcher {
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultThreshold
	}
	folded := make([]string, len(vocabulary))
	for i, entry := range vocabulary {
		folded[i] = foldText(entry)
	}
	return &Matcher{
		vocabulary: vocabulary,
		folded:     folded,
		threshold:  threshold,
	}
}

// NewDS7 builds a Matcher for the DS 7 Crossback trims at the default threshold.
func NewDS7() *Matcher {
	return New(DS7Vocabulary, DefaultThreshold)
}

// Match returns the first vocabulary entry whose best sliding-window
// similarity inside the title, then the description, meets the threshold.
// Returns "" when nothing clears it. First match wins, not best match:
// vocabulary order encodes precedence.
func (m *Matcher) Match(title, description string) string {
	haystacks := []string{foldText(title), foldText(description)}
	for i, entry := range m.folded {
		if entry == "" {
			continue
		}
		for _, hay := range haystacks {
			if m.windowSimilarity(hay, entry) >= m.threshold {
				return m.vocabulary[i]
			}
		}
	}
	return ""
}

// windowSimilarity slides a window of len(needle) runes across the haystack
// and returns the highest normalized similarity seen. Scanning windows of
// the needle's own length keeps the comparison local and cheap; a whole-text
// edit distance would both cost more and match far too permissively.
func (m *Matcher) windowSimilarity(haystack, needle string) float64 {
	hay := []rune(haystack)
	size := len([]rune(needle))
	if size == 0 || len(hay) < size {
		return 0
	}
	best := 0.0
	for i := 0; i+size <= len(hay); i++ {
		window := string(hay[i : i+size])
		// Damerau distance so a swapped letter pair costs one edit, not two;
		// "Preformance" must still clear a 0.9 threshold.
		dist := edlib.DamerauLevenshteinDistance(window, needle)
		sim := 1 - float64(dist)/float64(size)
		if sim > best {
			best = sim
			if best == 1 {
				return best
			}
		}
	}
	return best
}

func foldText(s string) string {
	return strings.ToLower(textutil.FoldDiacritics(s))
}
