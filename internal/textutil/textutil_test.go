package textutil

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "scheme relative path gets origin",
			in:   "/osobowe/oferta/ds-automobiles-ds-7-crossback-ID6Gabcd.html",
			want: "https://www.otomoto.pl/osobowe/oferta/ds-automobiles-ds-7-crossback-ID6Gabcd.html",
		},
		{
			name: "absolute url unchanged",
			in:   "https://www.otomoto.pl/osobowe/oferta/x-ID1.html",
			want: "https://www.otomoto.pl/osobowe/oferta/x-ID1.html",
		},
		{name: "surrounding whitespace trimmed", in: "  https://example.com/a  ", want: "https://example.com/a"},
		{name: "empty stays empty", in: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeURL(tt.in)
			require.Equal(t, tt.want, got)
			// Idempotency is part of the contract.
			require.Equal(t, got, NormalizeURL(got))
		})
	}
}

func TestExtractDigits(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want int
	}{
		{"35 000 km", 35000},
		{"35 000 km", 35000},
		{"", 0},
		{"brak danych", 0},
		{"1 599 cm3", 1599},
		{"129 900 PLN", 129900},
		{"2019", 2019},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			require.Equal(t, tt.want, ExtractDigits(tt.in))
		})
	}
}

func TestSplitLocation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		in         string
		wantCity   string
		wantRegion string
	}{
		{"city with parenthesized region", "Wrocław (Dolnośląskie)", "Wrocław", "Dolnośląskie"},
		{"comma chain takes first and last", "Zator, oświęcimski, Małopolskie", "Zator", "Małopolskie"},
		{
			"street form with postcode and country",
			"Jasna 4 - 44-122 Gliwice, śląskie (Polska)",
			"Gliwice", "śląskie",
		},
		{"bare city", "Poznań", "Poznań", ""},
		{"empty", "", "", ""},
		{"two segments", "Kraków, Małopolskie", "Kraków", "Małopolskie"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			city, region := SplitLocation(tt.in)
			require.Equal(t, tt.wantCity, city)
			require.Equal(t, tt.wantRegion, region)
		})
	}
}

func TestFoldDiacritics(t *testing.T) {
	t.Parallel()

	require.Equal(t, "Malopolskie", FoldDiacritics("Małopolskie"))
	require.Equal(t, "slaskie", FoldDiacritics("śląskie"))
	require.Equal(t, "Performance Line", FoldDiacritics("Performance Line"))
}

func TestCollapseSpace(t *testing.T) {
	t.Parallel()

	require.Equal(t, "35 000 km", CollapseSpace("  35 000   km \n"))
	require.Equal(t, "", CollapseSpace("   "))
}
