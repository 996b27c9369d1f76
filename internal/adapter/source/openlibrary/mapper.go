package openlibrary

import (
	"strings"

	"github.com/mmcdole/shelf/internal/domain"
)

// MapResults converts search docs to domain results, skipping docs without
// a key or title.
func MapResults(docs []Doc) []domain.SearchResult {
	results := make([]domain.SearchResult, 0, len(docs))
	for _, d := range docs {
		if d.Key == "" || strings.TrimSpace(d.Title) == "" {
			continue
		}
		results = append(results, mapResult(d))
	}
	return results
}

func mapResult(d Doc) domain.SearchResult {
	r := domain.SearchResult{
		Key:   d.Key,
		Title: strings.TrimSpace(d.Title),
	}
	if len(d.AuthorName) > 0 {
		r.Author = d.AuthorName[0]
	}
	if d.FirstPublishYear != nil {
		r.FirstPublishYear = *d.FirstPublishYear
	}
	if d.EditionCount != nil {
		r.EditionCount = *d.EditionCount
	}
	if d.CoverI != nil && *d.CoverI > 0 {
		r.CoverID = domain.CoverID(*d.CoverI)
	}
	return r
}
