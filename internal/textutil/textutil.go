// Package textutil cleans the raw strings scraped from listing markup:
// URL normalization, digit extraction, location splitting, and Polish
// diacritic folding.
package textutil

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// SiteOrigin is prefixed onto scheme-relative listing links.
const SiteOrigin = "https://www.otomoto.pl"

var diacriticFolder = transform.Chain(
	norm.NFD,
	runes.Remove(runes.In(unicode.Mn)),
	norm.NFC,
)

// NormalizeURL turns a scraped href into an absolute listing URL.
// Scheme-relative paths get the site origin prefixed; anything else is
// returned trimmed. Idempotent: normalizing twice changes nothing.
func NormalizeURL(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if strings.HasPrefix(trimmed, "/") {
		return SiteOrigin + trimmed
	}
	return trimmed
}

// ExtractDigits strips everything but digits and parses the remainder.
// Empty or non-numeric input yields 0, never an error; Otomoto renders
// numbers with space or NBSP thousands separators ("35 000 km").
func ExtractDigits(text string) int {
	var b strings.Builder
	for _, r := range text {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return 0
	}
	n, err := strconv.Atoi(b.String())
	if err != nil {
		return 0
	}
	return n
}

// SplitLocation canonicalizes a free-text location into (city, region).
//
// Supported shapes, in precedence order:
//
//	"Wrocław (Dolnośląskie)"                          → city, parenthesized region
//	"Zator, oświęcimski, Małopolskie"                  → first segment city, last segment region
//	"Jasna 4 - 44-122 Gliwice, śląskie (Polska)"       → street prefix stripped, country dropped
//
// A trailing parenthesized token wins as region unless it names the country.
// Unrecognized input comes back as (trimmed text, "").
func SplitLocation(text string) (city, region string) {
	s := CollapseSpace(text)
	if s == "" {
		return "", ""
	}

	// Trailing "(...)" is either the region or the country.
	if open := strings.LastIndex(s, "("); open >= 0 && strings.HasSuffix(s, ")") {
		paren := strings.TrimSpace(s[open+1 : len(s)-1])
		rest := strings.TrimSpace(s[:open])
		if isCountry(paren) {
			s = rest
		} else if !strings.Contains(rest, ",") {
			return cityFromSegment(rest), paren
		} else {
			// "Street - Postcode City, District, Region (Country)" already
			// handled above; a region in parens after commas still wins.
			parts := splitSegments(rest)
			return cityFromSegment(parts[0]), paren
		}
	}

	parts := splitSegments(s)
	if len(parts) == 1 {
		return cityFromSegment(parts[0]), ""
	}
	return cityFromSegment(parts[0]), parts[len(parts)-1]
}

// CollapseSpace trims and squeezes all whitespace runs, including NBSP,
// down to single spaces.
func CollapseSpace(s string) string {
	return strings.Join(strings.Fields(strings.ReplaceAll(s, " ", " ")), " ")
}

// FoldDiacritics rewrites Polish (and other Latin) diacritics to their
// ASCII base letters: "Małopolskie" → "Malopolskie". Used so fuzzy
// comparison survives accent drift between title and vocabulary.
func FoldDiacritics(s string) string {
	out, _, err := transform.String(diacriticFolder, s)
	if err != nil {
		return s
	}
	// NFD does not decompose the Polish stroked l.
	out = strings.ReplaceAll(out, "ł", "l")
	return strings.ReplaceAll(out, "Ł", "L")
}

func splitSegments(s string) []string {
	raw := strings.Split(s, ",")
	out := make([]string, 0, len(raw))
	for _, p := range raw {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		out = append(out, strings.TrimSpace(s))
	}
	return out
}

// cityFromSegment drops a leading "Street - Postcode" prefix and a postcode
// in front of the city name, e.g. "Jasna 4 - 44-122 Gliwice" → "Gliwice".
func cityFromSegment(seg string) string {
	if idx := strings.LastIndex(seg, " - "); idx >= 0 {
		seg = seg[idx+3:]
	}
	fields := strings.Fields(seg)
	// Strip "NN-NNN" postcode tokens left over from the street form.
	for len(fields) > 0 && isPostcode(fields[0]) {
		fields = fields[1:]
	}
	return strings.Join(fields, " ")
}

func isPostcode(tok string) bool {
	if len(tok) != 6 || tok[2] != '-' {
		return false
	}
	for i, r := range tok {
		if i == 2 {
			continue
		}
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func isCountry(s string) bool {
	switch strings.ToLower(FoldDiacritics(s)) {
	case "polska", "poland":
		return true
	}
	return false
}
