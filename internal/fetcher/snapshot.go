package fetcher

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"amazonworker/helpers"
	"amazonworker/logger"
	scraperrors "amazonworker/pkg/errors"

	"golang.org/x/net/html/charset"
)

var snapshotASINPattern = regexp.MustCompile(`/dp/([A-Z0-9]{10})`)

// SnapshotStore maps URLs to local HTML files so previously captured pages
// can replace live fetches. Search pages are keyed by the query string,
// detail pages by the product identifier embedded in the URL path.
type SnapshotStore struct {
	dir string
	log *logger.Logger
}

// NewSnapshotStore creates a snapshot store rooted at dir
func NewSnapshotStore(dir string) *SnapshotStore {
	return &SnapshotStore{
		dir: dir,
		log: logger.ForFetcher(),
	}
}

// Filename returns the deterministic snapshot path for a URL, or "" when the
// URL matches neither the search-page nor the detail-page pattern.
func (s *SnapshotStore) Filename(url string) string {
	if strings.Contains(url, "/s?k=") {
		query, err := helpers.GetSplitPart(url, "/s?k=", 1)
		if err != nil {
			return ""
		}
		query = strings.Split(query, "&")[0]
		return filepath.Join(s.dir, fmt.Sprintf("search_%s.html", query))
	}

	if m := snapshotASINPattern.FindStringSubmatch(url); m != nil {
		return filepath.Join(s.dir, fmt.Sprintf("product_%s.html", m[1]))
	}

	return ""
}

// Exists reports whether a snapshot file is present for the URL
func (s *SnapshotStore) Exists(url string) bool {
	filename := s.Filename(url)
	if filename == "" {
		return false
	}
	_, err := os.Stat(filename)
	return err == nil
}

// Load reads the snapshot for a URL. Snapshots captured by other tools are
// not always UTF-8, so the content is transcoded when necessary.
func (s *SnapshotStore) Load(url string) (string, error) {
	filename := s.Filename(url)
	if filename == "" {
		return "", scraperrors.NewSnapshotMissing(url, "unknown URL pattern")
	}

	raw, err := os.ReadFile(filename)
	if err != nil {
		return "", scraperrors.NewSnapshotMissing(url, filename)
	}

	html, err := toUTF8(raw)
	if err != nil {
		return "", scraperrors.New(scraperrors.ErrorTypeSnapshotMissing, url, "decode snapshot "+filename, err)
	}

	s.log.Info().Str("file", filename).Msg("Loaded HTML from local snapshot")
	return html, nil
}

// Save writes a snapshot for the URL. URLs without a derivable filename are
// skipped with a warning; saving is best effort and never fails a fetch.
func (s *SnapshotStore) Save(url, html string) error {
	filename := s.Filename(url)
	if filename == "" {
		s.log.Warn().Str("url", url).Msg("Could not derive snapshot filename for URL")
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(filename), 0o755); err != nil {
		return fmt.Errorf("create snapshot dir for %s: %w", filename, err)
	}

	if err := os.WriteFile(filename, []byte(html), 0o644); err != nil {
		return fmt.Errorf("write snapshot %s: %w", filename, err)
	}

	s.log.Debug().Str("file", filename).Msg("Saved HTML snapshot")
	return nil
}

// toUTF8 detects the content encoding and transcodes to UTF-8 when needed
func toUTF8(raw []byte) (string, error) {
	enc, name, _ := charset.DetermineEncoding(raw, "")
	if name == "utf-8" || name == "UTF-8" {
		return string(raw), nil
	}

	reader := enc.NewDecoder().Reader(bytes.NewReader(raw))
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, reader); err != nil {
		return "", err
	}
	return buf.String(), nil
}
