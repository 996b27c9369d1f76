package library

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mmcdole/shelf/internal/domain"
)

// SearchOutcome is the value produced by an online search.
type SearchOutcome struct {
	Query     string
	Results   []domain.SearchResult
	FromCache bool
}

// SearchOnline answers from a fresh cache entry when possible, otherwise
// queries the searcher and caches the answer. If the network fails and a
// stale entry exists, the stale entry is returned. A blank query yields no
// results and touches neither the cache nor the network.
func (s *Service) SearchOnline(ctx context.Context, query string) (SearchOutcome, error) {
	query = strings.TrimSpace(query)
	out := SearchOutcome{Query: query}
	if query == "" {
		return out, nil
	}
	if s.cache != nil && s.cache.IsFresh(query, s.opts.CacheTTL) {
		if results, ok := s.cache.GetResults(query); ok {
			s.logger.Debug("search cache fresh", "query", query, "count", len(results))
			out.Results, out.FromCache = results, true
			return out, nil
		}
	}

	if s.searcher == nil {
		return out, domain.ErrSearchUnavailable
	}

	results, err := s.searcher.Search(ctx, query, s.opts.SearchLimit)
	if err != nil {
		s.logger.Warn("online search failed", "query", query, "error", err)
		if s.cache != nil && errors.Is(err, domain.ErrSearchUnavailable) {
			if stale, ok := s.cache.GetResults(query); ok {
				out.Results, out.FromCache = stale, true
				return out, nil
			}
		}
		return out, err
	}

	if s.cache != nil {
		if err := s.cache.SaveResults(query, results); err != nil {
			s.logger.Error("failed to cache search results", "query", query, "error", err)
		}
	}
	out.Results = results
	return out, nil
}

// Import adds a search hit as a backlog book.
func (s *Service) Import(ctx context.Context, result domain.SearchResult) (domain.Item, error) {
	item := result.ToItem()
	if item.Title == "" {
		return domain.Item{}, fmt.Errorf("%w: search result has no title", domain.ErrInvalidItem)
	}
	return s.AddItem(ctx, item)
}

// CycleStatus advances an item to its next status.
func (s *Service) CycleStatus(ctx context.Context, id domain.ItemID) (domain.Item, error) {
	item, err := s.repo.Get(ctx, id)
	if err != nil {
		return domain.Item{}, err
	}
	item.Status = item.Status.Next()
	if err := s.UpdateItem(ctx, *item); err != nil {
		return domain.Item{}, err
	}
	return *item, nil
}

// SetRating sets an item's rating; 0 clears it.
func (s *Service) SetRating(ctx context.Context, id domain.ItemID, rating int) (domain.Item, error) {
	if rating < 0 || rating > domain.MaxRating {
		return domain.Item{}, fmt.Errorf("%w: rating %d out of range 0-%d", domain.ErrInvalidItem, rating, domain.MaxRating)
	}
	item, err := s.repo.Get(ctx, id)
	if err != nil {
		return domain.Item{}, err
	}
	item.Rating = rating
	if err := s.UpdateItem(ctx, *item); err != nil {
		return domain.Item{}, err
	}
	return *item, nil
}
