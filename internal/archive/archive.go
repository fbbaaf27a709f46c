// Package archive saves raw search-page snapshots to disk so a markup
// change can be diagnosed after the fact, against the bytes the run
// actually saw.
package archive

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
)

// Sink writes per-page HTML snapshots under a date-partitioned root.
type Sink struct {
	root     string
	maxBytes int64
	logger   *zap.Logger
}

// New returns a sink rooted at dir. maxBytes caps a single snapshot;
// oversized pages are skipped, not truncated.
func New(root string, maxBytes int64, logger *zap.Logger) (*Sink, error) {
	if err := os.MkdirAll(root, 0o750); err != nil {
		return nil, fmt.Errorf("create archive dir %s: %w", root, err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sink{root: root, maxBytes: maxBytes, logger: logger}, nil
}

// SavePage writes one snapshot and returns its path. Archiving is
// best-effort: the caller logs the error and keeps scraping.
func (s *Sink) SavePage(pageURL, html string, fetchedAt time.Time) (string, error) {
	if html == "" {
		return "", fmt.Errorf("empty page body")
	}
	if s.maxBytes > 0 && int64(len(html)) > s.maxBytes {
		return "", fmt.Errorf("page size %d exceeds max %d", len(html), s.maxBytes)
	}
	target := s.pagePath(pageURL, fetchedAt)
	if err := os.MkdirAll(filepath.Dir(target), 0o750); err != nil {
		return "", fmt.Errorf("create snapshot dir for %s: %w", target, err)
	}
	if err := os.WriteFile(target, []byte(html), 0o600); err != nil {
		return "", fmt.Errorf("write snapshot %s: %w", target, err)
	}
	s.logger.Debug("archived page", zap.String("url", pageURL), zap.String("path", target))
	return target, nil
}

func (s *Sink) pagePath(pageURL string, fetchedAt time.Time) string {
	sum := sha256.Sum256([]byte(pageURL))
	name := hex.EncodeToString(sum[:])[:16] + ".html"
	return filepath.Join(s.root, fetchedAt.UTC().Format("2006-01-02"), name)
}
