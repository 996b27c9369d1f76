package openlibrary

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"

	"github.com/mmcdole/shelf/internal/domain"
)

const hobbitResponse = `{
  "numFound": 2,
  "start": 0,
  "docs": [
    {"key": "/works/OL262758W", "title": "The Hobbit", "author_name": ["J.R.R. Tolkien", "Someone Else"],
     "first_publish_year": 1937, "edition_count": 500, "cover_i": 14627509},
    {"key": "/works/OL1W", "title": "  Hobbit Companion ", "cover_i": -1},
    {"key": "", "title": "No key"}
  ]
}`

func TestSearch(t *testing.T) {
	var gotQuery atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search.json" {
			http.NotFound(w, r)
			return
		}
		gotQuery.Store(r.URL.Query())
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(hobbitResponse))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 0, nil)
	results, err := c.Search(context.Background(), "  the hobbit ", 5)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}

	q := gotQuery.Load().(url.Values)
	if q.Get("q") != "the hobbit" || q.Get("limit") != "5" || q.Get("fields") != searchFields {
		t.Errorf("unexpected query params: %v", q)
	}

	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	want := domain.SearchResult{
		Key:              "/works/OL262758W",
		Title:            "The Hobbit",
		Author:           "J.R.R. Tolkien",
		FirstPublishYear: 1937,
		EditionCount:     500,
		CoverID:          14627509,
	}
	if results[0] != want {
		t.Errorf("results[0] = %+v, want %+v", results[0], want)
	}
	if results[1].Title != "Hobbit Companion" || results[1].CoverID != 0 || results[1].Author != "" {
		t.Errorf("results[1] = %+v", results[1])
	}
}

func TestSearchBlankQuerySkipsRequest(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	results, err := NewClient(srv.URL, 0, nil).Search(context.Background(), "   ", 10)
	if err != nil || results != nil {
		t.Fatalf("Search() = %v, %v", results, err)
	}
	if hits.Load() != 0 {
		t.Error("blank query made a request")
	}
}

func TestSearchErrors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		unavail bool
	}{
		{"server error", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusInternalServerError) }, true},
		{"bad json", func(w http.ResponseWriter, r *http.Request) { w.Write([]byte("{")) }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			_, err := NewClient(srv.URL, 0, nil).Search(context.Background(), "x", 1)
			if err == nil {
				t.Fatal("expected an error")
			}
			if got := errors.Is(err, domain.ErrSearchUnavailable); got != tt.unavail {
				t.Errorf("errors.Is(ErrSearchUnavailable) = %v, want %v (err=%v)", got, tt.unavail, err)
			}
		})
	}

	t.Run("unreachable", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
		addr := srv.URL
		srv.Close()
		_, err := NewClient(addr, 0, nil).Search(context.Background(), "x", 1)
		if !errors.Is(err, domain.ErrSearchUnavailable) {
			t.Errorf("err = %v, want ErrSearchUnavailable", err)
		}
	})
}
