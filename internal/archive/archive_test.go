package archive

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSavePageWritesSnapshot(t *testing.T) {
	t.Parallel()

	sink, err := New(t.TempDir(), 1<<20, zap.NewNop())
	require.NoError(t, err)

	fetched := time.Date(2026, 8, 30, 6, 0, 0, 0, time.UTC)
	path, err := sink.SavePage("https://www.otomoto.pl/osobowe/ds?page=1", "<html>x</html>", fetched)
	require.NoError(t, err)
	require.Contains(t, path, "2026-08-30")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "<html>x</html>", string(data))
}

func TestSavePageRejectsOversized(t *testing.T) {
	t.Parallel()

	sink, err := New(t.TempDir(), 8, zap.NewNop())
	require.NoError(t, err)

	_, err = sink.SavePage("https://example.com", strings.Repeat("x", 9), time.Now())
	require.Error(t, err)
}

func TestSavePageRejectsEmpty(t *testing.T) {
	t.Parallel()

	sink, err := New(t.TempDir(), 0, zap.NewNop())
	require.NoError(t, err)

	_, err = sink.SavePage("https://example.com", "", time.Now())
	require.Error(t, err)
}
