package variant

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMatchExactTrim(t *testing.T) {
	t.Parallel()

	m := NewDS7()
	got := m.Match("DS 7 Crossback 1.6 Performance Line", "")
	require.Equal(t, "Performance Line", got)
}

func TestMatchSurvivesMisspelling(t *testing.T) {
	t.Parallel()

	m := New([]string{"Performance Line", "Grand Chic"}, 0.9)
	got := m.Match("DS 7 Crossback Preformance Line", "")
	require.Equal(t, "Performance Line", got)
}

func TestMatchChecksTitleBeforeDescription(t *testing.T) {
	t.Parallel()

	m := NewDS7()
	got := m.Match("DS 7 Crossback So Chic", "wcześniej Performance Line")
	// Title is scanned first, but vocabulary order still decides: the first
	// entry that clears the threshold in either haystack wins.
	require.Equal(t, "Performance Line", got)
}

func TestMatchDeclarationOrderWins(t *testing.T) {
	t.Parallel()

	// "Performance Line+" precedes "Performance Line" so the longer label
	// is claimed before its prefix can shadow it.
	m := NewDS7()
	got := m.Match("DS7 Performance Line+ 225KM", "")
	require.Equal(t, "Performance Line+", got)
}

func TestMatchNoHit(t *testing.T) {
	t.Parallel()

	m := NewDS7()
	require.Equal(t, "", m.Match("Citroen C5 Aircross Shine", ""))
	require.Equal(t, "", m.Match("", ""))
}

func TestMatchFoldsDiacritics(t *testing.T) {
	t.Parallel()

	m := New([]string{"Grand Chic"}, 0.9)
	require.Equal(t, "Grand Chic", m.Match("", "wersja Grand Chić, bogate wyposażenie"))
}
