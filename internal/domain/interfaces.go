package domain

import (
	"context"
	"time"
)

// ItemRepository persists items in the local database.
// Every operation touches a single row; there are no multi-row transactions.
type ItemRepository interface {
	Add(ctx context.Context, item Item) (ItemID, error)
	Get(ctx context.Context, id ItemID) (*Item, error) // ErrItemNotFound on miss
	List(ctx context.Context) ([]Item, error)          // newest first
	Update(ctx context.Context, item Item) error
	Delete(ctx context.Context, id ItemID) error
	Count(ctx context.Context) (int, error)
}

// MetadataSearcher looks up book metadata online.
type MetadataSearcher interface {
	Search(ctx context.Context, query string, limit int) ([]SearchResult, error)
}

// SearchCache stores search responses locally so repeated lookups stay offline.
type SearchCache interface {
	GetResults(key string) ([]SearchResult, bool)
	SaveResults(key string, results []SearchResult) error
	IsFresh(key string, maxAge time.Duration) bool
	InvalidateAll()
	Close() error
}
