package main

import (
	"fmt"
	"io"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/mmcdole/shelf/internal/domain"
)

const (
	outputTable = "table"
	outputYAML  = "yaml"
	outputTOML  = "toml"
)

type itemRecord struct {
	ID             int64  `yaml:"id" toml:"id"`
	Title          string `yaml:"title" toml:"title"`
	Type           string `yaml:"type" toml:"type"`
	Status         string `yaml:"status" toml:"status"`
	Rating         int    `yaml:"rating,omitempty" toml:"rating,omitempty"`
	Author         string `yaml:"author,omitempty" toml:"author,omitempty"`
	Year           int    `yaml:"year,omitempty" toml:"year,omitempty"`
	Notes          string `yaml:"notes,omitempty" toml:"notes,omitempty"`
	OpenLibraryKey string `yaml:"openlibrary_key,omitempty" toml:"openlibrary_key,omitempty"`
	CoverID        int64  `yaml:"cover_id,omitempty" toml:"cover_id,omitempty"`
}

type resultRecord struct {
	Key      string `yaml:"key" toml:"key"`
	Title    string `yaml:"title" toml:"title"`
	Author   string `yaml:"author,omitempty" toml:"author,omitempty"`
	Year     int    `yaml:"year,omitempty" toml:"year,omitempty"`
	Editions int    `yaml:"editions,omitempty" toml:"editions,omitempty"`
	CoverID  int64  `yaml:"cover_id,omitempty" toml:"cover_id,omitempty"`
}

// TOML has no top-level arrays, so both documents wrap their list.
type itemDocument struct {
	Items []itemRecord `yaml:"items" toml:"items"`
}

type resultDocument struct {
	Query     string         `yaml:"query" toml:"query"`
	FromCache bool           `yaml:"from_cache" toml:"from_cache"`
	Results   []resultRecord `yaml:"results" toml:"results"`
}

func newItemDocument(items []domain.Item) itemDocument {
	doc := itemDocument{Items: make([]itemRecord, len(items))}
	for i, item := range items {
		doc.Items[i] = itemRecord{
			ID:             int64(item.ID),
			Title:          item.Title,
			Type:           string(item.MediaType),
			Status:         string(item.Status),
			Rating:         item.Rating,
			Author:         item.Author,
			Year:           item.FirstPublishYear,
			Notes:          item.Notes,
			OpenLibraryKey: item.OpenLibraryKey,
			CoverID:        int64(item.CoverID),
		}
	}
	return doc
}

func newResultDocument(query string, fromCache bool, results []domain.SearchResult) resultDocument {
	doc := resultDocument{Query: query, FromCache: fromCache, Results: make([]resultRecord, len(results))}
	for i, r := range results {
		doc.Results[i] = resultRecord{
			Key:      r.Key,
			Title:    r.Title,
			Author:   r.Author,
			Year:     r.FirstPublishYear,
			Editions: r.EditionCount,
			CoverID:  int64(r.CoverID),
		}
	}
	return doc
}

func validateOutput(format string) (string, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	switch format {
	case "", outputTable:
		return outputTable, nil
	case outputYAML, outputTOML:
		return format, nil
	}
	return "", fmt.Errorf("unknown output format %q (want table, yaml or toml)", format)
}

// encodeDocument writes doc as YAML or TOML.
func encodeDocument(out io.Writer, format string, doc any) error {
	var (
		data []byte
		err  error
	)
	switch format {
	case outputYAML:
		data, err = yaml.Marshal(doc)
	case outputTOML:
		data, err = toml.Marshal(doc)
	default:
		return fmt.Errorf("cannot encode %s output", format)
	}
	if err != nil {
		return fmt.Errorf("encode %s: %w", format, err)
	}
	_, err = out.Write(data)
	return err
}
