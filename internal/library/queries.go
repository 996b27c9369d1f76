package library

import (
	"sort"
	"strings"

	fuzzysearch "github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/mmcdole/shelf/internal/domain"
)

// Filter returns the items whose title or author fuzzily matches query,
// best match first. A blank query returns items unchanged.
func Filter(items []domain.Item, query string) []domain.Item {
	query = strings.TrimSpace(query)
	if query == "" {
		return items
	}

	targets := make([]string, len(items))
	for i, item := range items {
		targets[i] = filterTarget(item)
	}

	ranks := fuzzysearch.RankFindFold(query, targets)
	sort.Stable(ranks)

	out := make([]domain.Item, 0, len(ranks))
	for _, r := range ranks {
		out = append(out, items[r.OriginalIndex])
	}
	return out
}

func filterTarget(item domain.Item) string {
	if item.Author == "" {
		return item.Title
	}
	return item.Title + " " + item.Author
}

// CachedResults returns a previous search without touching the network.
func (s *Service) CachedResults(query string) ([]domain.SearchResult, bool) {
	if s.cache == nil {
		return nil, false
	}
	return s.cache.GetResults(query)
}

// ClearSearchCache drops every cached search.
func (s *Service) ClearSearchCache() {
	if s.cache != nil {
		s.cache.InvalidateAll()
	}
}
