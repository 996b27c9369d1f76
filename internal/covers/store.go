package covers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mmcdole/shelf/internal/domain"
)

const (
	// DefaultBaseURL is the Open Library covers host.
	DefaultBaseURL = "https://covers.openlibrary.org"

	// DefaultFetchTimeout bounds a single cover download.
	DefaultFetchTimeout = 15 * time.Second

	userAgent = "shelf/1.0"
)

// Fetcher resolves a cover id to a local file.
type Fetcher interface {
	Fetch(ctx context.Context, id domain.CoverID, variant domain.SizeVariant) FetchOutcome
	Path(id domain.CoverID, variant domain.SizeVariant) string
	// Evict drops the cached file so the next Fetch downloads it again.
	Evict(id domain.CoverID, variant domain.SizeVariant) error
}

// Store maps (cover id, variant) to a file in an on-disk cache, downloading
// on miss. It keeps no state between calls and is safe for concurrent use.
type Store struct {
	dir        string
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger

	// afterTempWrite runs between the temp file being closed and the rename.
	afterTempWrite func(tmpPath string)
}

// StoreOption customizes a Store.
type StoreOption func(*Store)

// WithBaseURL overrides the covers host, e.g. for a test server.
func WithBaseURL(u string) StoreOption {
	return func(s *Store) {
		if u != "" {
			s.baseURL = strings.TrimRight(u, "/")
		}
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) StoreOption {
	return func(s *Store) {
		if d > 0 {
			s.httpClient.Timeout = d
		}
	}
}

// WithHTTPClient replaces the HTTP client entirely.
func WithHTTPClient(c *http.Client) StoreOption {
	return func(s *Store) {
		if c != nil {
			s.httpClient = c
		}
	}
}

// WithLogger sets the store's logger.
func WithLogger(l *slog.Logger) StoreOption {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewStore creates a store rooted at dir. The directory is created on first
// download, not here.
func NewStore(dir string, opts ...StoreOption) *Store {
	s := &Store{
		dir:     dir,
		baseURL: DefaultBaseURL,
		httpClient: &http.Client{
			Timeout: DefaultFetchTimeout,
		},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Dir returns the cache directory.
func (s *Store) Dir() string { return s.dir }

// Path returns the cache location for (id, variant).
func (s *Store) Path(id domain.CoverID, variant domain.SizeVariant) string {
	return filepath.Join(s.dir, fmt.Sprintf("%d-%s.jpg", id, variant))
}

// URL returns the remote location for (id, variant).
func (s *Store) URL(id domain.CoverID, variant domain.SizeVariant) string {
	return fmt.Sprintf("%s/b/id/%d-%s.jpg", s.baseURL, id, variant)
}

// Fetch returns Found with a local path, NotFound when the covers API
// answers 404, or Failed for anything else. A non-empty cached file is
// returned without touching the network.
func (s *Store) Fetch(ctx context.Context, id domain.CoverID, variant domain.SizeVariant) FetchOutcome {
	if !id.Valid() {
		return Failed(fmt.Errorf("%w: invalid cover id %d", domain.ErrTransient, id))
	}
	if !variant.Valid() {
		return Failed(fmt.Errorf("%w: invalid size variant %q", domain.ErrTransient, variant))
	}

	path := s.Path(id, variant)
	if info, err := os.Stat(path); err == nil && info.Size() > 0 {
		return Found(path)
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return Failed(fmt.Errorf("%w: create cache dir: %v", domain.ErrLocalIO, err))
	}

	url := s.URL(id, variant)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Failed(fmt.Errorf("%w: build request: %v", domain.ErrTransient, err))
	}
	req.Header.Set("User-Agent", userAgent)

	s.logger.Debug("cover request", "coverID", id, "variant", variant, "url", url)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		s.logger.Warn("cover request failed", "coverID", id, "error", err)
		return Failed(fmt.Errorf("%w: %v", domain.ErrTransient, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		s.logger.Debug("cover not found upstream", "coverID", id, "variant", variant)
		return NotFound()
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		s.logger.Warn("cover request returned error status", "coverID", id, "status", resp.StatusCode)
		return Failed(fmt.Errorf("%w: status %d", domain.ErrTransient, resp.StatusCode))
	}

	if err := s.writeAtomic(path, resp.Body); err != nil {
		s.logger.Warn("failed to cache cover", "coverID", id, "path", path, "error", err)
		return Failed(err)
	}

	s.logger.Debug("cached cover", "coverID", id, "variant", variant, "path", path)
	return Found(path)
}

// Evict removes the cached file for (id, variant). A missing file is not an
// error.
func (s *Store) Evict(id domain.CoverID, variant domain.SizeVariant) error {
	path := s.Path(id, variant)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("%w: evict cover: %v", domain.ErrLocalIO, err)
	}
	s.logger.Debug("evicted cover", "coverID", id, "variant", variant, "path", path)
	return nil
}

// writeAtomic streams r into a unique temp sibling of path and renames it
// into place. Readers see either no file or the complete file.
func (s *Store) writeAtomic(path string, r io.Reader) error {
	tmpPath := fmt.Sprintf("%s.%s.tmp", path, uuid.NewString())
	tmp, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("%w: create temp file: %v", domain.ErrLocalIO, err)
	}

	n, err := io.Copy(tmp, r)
	if err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("%w: read body: %v", domain.ErrTransient, err)
	}
	if n == 0 {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("%w: empty response body", domain.ErrTransient)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("%w: close temp file: %v", domain.ErrLocalIO, err)
	}

	if s.afterTempWrite != nil {
		s.afterTempWrite(tmpPath)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("%w: rename temp file: %v", domain.ErrLocalIO, err)
	}
	return nil
}

// CacheStats summarizes the on-disk cache.
type CacheStats struct {
	Files int
	Bytes int64
}

// Stats walks the cache directory. A missing directory is an empty cache.
func (s *Store) Stats() (CacheStats, error) {
	var st CacheStats
	entries, err := os.ReadDir(s.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return st, nil
	}
	if err != nil {
		return st, err
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".jpg") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		st.Files++
		st.Bytes += info.Size()
	}
	return st, nil
}

// Clear removes every cached cover and leftover temp file.
func (s *Store) Clear() error {
	if err := os.RemoveAll(s.dir); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to clear cover cache: %w", err)
	}
	s.logger.Info("cleared cover cache", "dir", s.dir)
	return nil
}
