package library

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mmcdole/shelf/internal/domain"
)

const (
	defaultSearchLimit = 25
	defaultCacheTTL    = 24 * time.Hour
)

// Options tunes a Service. Zero values pick the defaults.
type Options struct {
	SearchLimit int
	CacheTTL    time.Duration
}

// Service orchestrates the item repository, the online searcher and the
// search cache.
type Service struct {
	repo     domain.ItemRepository
	searcher domain.MetadataSearcher
	cache    domain.SearchCache
	opts     Options
	logger   *slog.Logger
}

// NewService creates a new library service. searcher and cache may be nil,
// in which case online search is unavailable or uncached.
func NewService(repo domain.ItemRepository, searcher domain.MetadataSearcher, cache domain.SearchCache, opts Options, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.SearchLimit <= 0 {
		opts.SearchLimit = defaultSearchLimit
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = defaultCacheTTL
	}
	return &Service{repo: repo, searcher: searcher, cache: cache, opts: opts, logger: logger}
}

func (s *Service) ListItems(ctx context.Context) ([]domain.Item, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		s.logger.Error("failed to list items", "error", err)
		return nil, err
	}
	s.logger.Debug("listed items", "count", len(items))
	return items, nil
}

func (s *Service) GetItem(ctx context.Context, id domain.ItemID) (*domain.Item, error) {
	return s.repo.Get(ctx, id)
}

// AddItem normalizes and stores a new item, returning it with its id set.
func (s *Service) AddItem(ctx context.Context, item domain.Item) (domain.Item, error) {
	item = normalize(item)
	id, err := s.repo.Add(ctx, item)
	if err != nil {
		s.logger.Error("failed to add item", "title", item.Title, "error", err)
		return domain.Item{}, err
	}
	item.ID = id
	s.logger.Info("added item", "itemID", id, "title", item.Title, "coverID", item.CoverID)
	return item, nil
}

func (s *Service) UpdateItem(ctx context.Context, item domain.Item) error {
	item = normalize(item)
	if err := s.repo.Update(ctx, item); err != nil {
		s.logger.Error("failed to update item", "itemID", item.ID, "error", err)
		return err
	}
	s.logger.Debug("updated item", "itemID", item.ID)
	return nil
}

func (s *Service) DeleteItem(ctx context.Context, id domain.ItemID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Error("failed to delete item", "itemID", id, "error", err)
		return err
	}
	s.logger.Info("deleted item", "itemID", id)
	return nil
}

func (s *Service) Count(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}

// EnsureSampleData seeds an empty library with a few items. It does nothing
// when any item exists.
func (s *Service) EnsureSampleData(ctx context.Context) (int, error) {
	n, err := s.repo.Count(ctx)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		return 0, nil
	}
	added := 0
	for _, item := range sampleItems() {
		if _, err := s.repo.Add(ctx, item); err != nil {
			return added, fmt.Errorf("seed %q: %w", item.Title, err)
		}
		added++
	}
	s.logger.Info("seeded sample data", "count", added)
	return added, nil
}

func sampleItems() []domain.Item {
	return []domain.Item{
		{
			Title:            "The Hobbit",
			MediaType:        domain.MediaTypeBook,
			Status:           domain.StatusDone,
			Rating:           5,
			Notes:            "Sample item",
			Author:           "J.R.R. Tolkien",
			FirstPublishYear: 1937,
			OpenLibraryKey:   "/works/OL262758W",
			CoverID:          14627509,
		},
		{
			Title:     "Amazing Spider-Man #1",
			MediaType: domain.MediaTypeComic,
			Status:    domain.StatusBacklog,
		},
		{
			Title:     "The Social Network",
			MediaType: domain.MediaTypeMovie,
			Status:    domain.StatusDone,
			Rating:    4,
		},
	}
}

func normalize(item domain.Item) domain.Item {
	item.Title = strings.TrimSpace(item.Title)
	item.Author = strings.TrimSpace(item.Author)
	item.Notes = strings.TrimSpace(item.Notes)
	if item.MediaType == "" {
		item.MediaType = domain.MediaTypeBook
	}
	if item.Status == "" {
		item.Status = domain.StatusBacklog
	}
	if st, err := domain.ParseItemStatus(string(item.Status)); err == nil {
		item.Status = st
	}
	return item
}
