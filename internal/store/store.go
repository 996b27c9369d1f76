package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/mmcdole/shelf/internal/domain"
	bolt "go.etcd.io/bbolt"
	bolterrors "go.etcd.io/bbolt/errors"
)

// Bucket names
var (
	bucketSearches  = []byte("searches")
	bucketSearchTS  = []byte("search_ts")
	allBuckets      = [][]byte{bucketSearches, bucketSearchTS}
	defaultFileName = "search-cache.db"
)

// SearchStore implements domain.SearchCache using BoltDB.
type SearchStore struct {
	db *bolt.DB
	mu sync.RWMutex // Protects memory cache

	// In-memory cache for hot-path reads (promoted on access)
	cache map[string][]byte

	now func() time.Time
}

var _ domain.SearchCache = (*SearchStore)(nil)

// NewSearchStore opens the cache under dir. An empty dir keeps results in
// memory only.
func NewSearchStore(dir string) (*SearchStore, error) {
	s := &SearchStore{cache: make(map[string][]byte), now: time.Now}
	if dir == "" {
		return s, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	dbPath := filepath.Join(dir, defaultFileName)
	db, err := bolt.Open(dbPath, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range allBuckets {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	s.db = db
	return s, nil
}

// NormalizeKey folds case and whitespace so equivalent queries share an entry.
func NormalizeKey(query string) string {
	return strings.Join(strings.Fields(strings.ToLower(query)), " ")
}

func (s *SearchStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// === Generic helpers ===

func (s *SearchStore) get(bucket []byte, key string, dest interface{}) bool {
	cacheKey := string(bucket) + ":" + key

	s.mu.RLock()
	if data, ok := s.cache[cacheKey]; ok {
		s.mu.RUnlock()
		return json.Unmarshal(data, dest) == nil
	}
	s.mu.RUnlock()

	if s.db == nil {
		return false
	}

	var data []byte
	s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)
		if b == nil {
			return nil
		}
		if v := b.Get([]byte(key)); v != nil {
			data = make([]byte, len(v))
			copy(data, v)
		}
		return nil
	})

	if data == nil {
		return false
	}

	// Promote to memory cache
	s.mu.Lock()
	s.cache[cacheKey] = data
	s.mu.Unlock()

	return json.Unmarshal(data, dest) == nil
}

func (s *SearchStore) set(bucket []byte, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.cache[string(bucket)+":"+key] = data
	s.mu.Unlock()

	if s.db == nil {
		return nil // Memory-only mode
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucket).Put([]byte(key), data)
	})
}

func (s *SearchStore) delete(bucket []byte, key string) {
	s.mu.Lock()
	delete(s.cache, string(bucket)+":"+key)
	s.mu.Unlock()

	if s.db == nil {
		return
	}

	s.db.Update(func(tx *bolt.Tx) error {
		if b := tx.Bucket(bucket); b != nil {
			b.Delete([]byte(key))
		}
		return nil
	})
}

// === Search results ===

// GetResults returns cached results for query regardless of age.
func (s *SearchStore) GetResults(query string) ([]domain.SearchResult, bool) {
	var results []domain.SearchResult
	ok := s.get(bucketSearches, NormalizeKey(query), &results)
	return results, ok
}

// SaveResults stores results for query and stamps the save time.
func (s *SearchStore) SaveResults(query string, results []domain.SearchResult) error {
	key := NormalizeKey(query)
	if key == "" {
		return nil
	}
	if results == nil {
		results = []domain.SearchResult{}
	}
	if err := s.set(bucketSearches, key, results); err != nil {
		return err
	}
	// Timestamp is stored separately for freshness checks
	return s.set(bucketSearchTS, key, s.now().Unix())
}

// IsFresh reports whether query was saved less than maxAge ago.
func (s *SearchStore) IsFresh(query string, maxAge time.Duration) bool {
	var savedAt int64
	if !s.get(bucketSearchTS, NormalizeKey(query), &savedAt) {
		return false
	}
	return s.now().Sub(time.Unix(savedAt, 0)) < maxAge
}

// Invalidate drops one query.
func (s *SearchStore) Invalidate(query string) {
	key := NormalizeKey(query)
	s.delete(bucketSearches, key)
	s.delete(bucketSearchTS, key)
}

// Len returns the number of cached queries.
func (s *SearchStore) Len() int {
	if s.db == nil {
		s.mu.RLock()
		defer s.mu.RUnlock()
		n := 0
		prefix := string(bucketSearches) + ":"
		for k := range s.cache {
			if strings.HasPrefix(k, prefix) {
				n++
			}
		}
		return n
	}

	n := 0
	s.db.View(func(tx *bolt.Tx) error {
		n = tx.Bucket(bucketSearches).Stats().KeyN
		return nil
	})
	return n
}

func (s *SearchStore) InvalidateAll() {
	s.mu.Lock()
	s.cache = make(map[string][]byte)
	s.mu.Unlock()

	if s.db == nil {
		return
	}

	s.db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range allBuckets {
			if err := tx.DeleteBucket(bucket); err != nil && err != bolterrors.ErrBucketNotFound {
				return err
			}
			if _, err := tx.CreateBucket(bucket); err != nil {
				return err
			}
		}
		return nil
	})
}
