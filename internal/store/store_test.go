package store

import (
	"testing"
	"time"

	"github.com/mmcdole/shelf/internal/domain"
)

var sample = []domain.SearchResult{
	{Key: "/works/OL262758W", Title: "The Hobbit", Author: "J.R.R. Tolkien", FirstPublishYear: 1937, CoverID: 14627509},
	{Key: "/works/OL1W", Title: "Hobbit Companion"},
}

func TestSearchStorePersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()

	s, err := NewSearchStore(dir)
	if err != nil {
		t.Fatalf("NewSearchStore() error = %v", err)
	}
	if err := s.SaveResults("The Hobbit", sample); err != nil {
		t.Fatalf("SaveResults() error = %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	s, err = NewSearchStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	got, ok := s.GetResults("  the   HOBBIT ")
	if !ok {
		t.Fatal("expected cached results after reopen")
	}
	if len(got) != len(sample) || got[0] != sample[0] || got[1] != sample[1] {
		t.Errorf("GetResults() = %+v", got)
	}
	if s.Len() != 1 {
		t.Errorf("Len() = %d, want 1", s.Len())
	}
}

func TestSearchStoreFreshness(t *testing.T) {
	s, err := NewSearchStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	if s.IsFresh("dune", time.Hour) {
		t.Error("unknown query reported fresh")
	}
	if err := s.SaveResults("dune", nil); err != nil {
		t.Fatal(err)
	}
	if !s.IsFresh("dune", time.Hour) {
		t.Error("just-saved query should be fresh")
	}
	if got, ok := s.GetResults("dune"); !ok || len(got) != 0 {
		t.Errorf("empty result set should be cached, got %v %v", got, ok)
	}

	now = now.Add(2 * time.Hour)
	if s.IsFresh("dune", time.Hour) {
		t.Error("stale query reported fresh")
	}
	if _, ok := s.GetResults("dune"); !ok {
		t.Error("stale results should still be readable")
	}
}

func TestSearchStoreInvalidate(t *testing.T) {
	s, err := NewSearchStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	s.SaveResults("a", sample)
	s.SaveResults("b", sample)

	s.Invalidate("A")
	if _, ok := s.GetResults("a"); ok {
		t.Error("a still cached after Invalidate")
	}
	if _, ok := s.GetResults("b"); !ok {
		t.Error("b should survive invalidating a")
	}

	s.InvalidateAll()
	if _, ok := s.GetResults("b"); ok {
		t.Error("b still cached after InvalidateAll")
	}
	if s.Len() != 0 {
		t.Errorf("Len() = %d after InvalidateAll", s.Len())
	}
	if err := s.SaveResults("c", sample); err != nil {
		t.Errorf("SaveResults after InvalidateAll: %v", err)
	}
}

func TestSearchStoreMemoryOnly(t *testing.T) {
	s, err := NewSearchStore("")
	if err != nil {
		t.Fatal(err)
	}
	if err := s.SaveResults("x", sample); err != nil {
		t.Fatal(err)
	}
	if _, ok := s.GetResults("X"); !ok {
		t.Error("memory-only store lost results")
	}
	if s.Len() != 1 {
		t.Errorf("Len() = %d, want 1", s.Len())
	}
	if err := s.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}
