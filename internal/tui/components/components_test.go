package components

import (
	"image"
	"image/color"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mmcdole/shelf/internal/covers"
	"github.com/mmcdole/shelf/internal/domain"
	"github.com/mmcdole/shelf/internal/testsupport"
)

func solid(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func TestRenderHalfBlocks(t *testing.T) {
	tests := []struct {
		name      string
		w, h      int
		wantLines int
	}{
		{"even height", 3, 4, 2},
		{"odd height", 3, 5, 3},
		{"single row", 2, 1, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := RenderHalfBlocks(solid(tt.w, tt.h, color.RGBA{R: 200, A: 255}))
			lines := strings.Split(out, "\n")
			if len(lines) != tt.wantLines {
				t.Fatalf("lines = %d, want %d", len(lines), tt.wantLines)
			}
			for i, line := range lines {
				if n := strings.Count(line, halfBlock); n != tt.w {
					t.Errorf("line %d has %d blocks, want %d", i, n, tt.w)
				}
			}
		})
	}

	if RenderHalfBlocks(nil) != "" {
		t.Error("nil image should render empty")
	}
}

func TestAverageColor(t *testing.T) {
	if got := AverageColor(solid(4, 4, color.RGBA{R: 255, A: 255})); got != "#FF0000" {
		t.Errorf("AverageColor = %s, want #FF0000", got)
	}

	img := solid(2, 1, color.RGBA{A: 255})
	img.Set(1, 0, color.RGBA{R: 200, G: 100, B: 50, A: 255})
	if got := AverageColor(img); got != "#643219" {
		t.Errorf("AverageColor = %s, want #643219", got)
	}
}

func TestCoverGlyph(t *testing.T) {
	tests := []struct {
		state covers.CoverState
		want  string
	}{
		{covers.CoverState{Kind: covers.StateNone}, "  "},
		{covers.CoverState{Kind: covers.StateLoading}, "… "},
		{covers.CoverState{Kind: covers.StateMissing}, "× "},
		{covers.CoverState{Kind: covers.StateReady, Image: solid(1, 1, color.White)}, "██"},
	}
	for _, tt := range tests {
		t.Run(tt.state.Kind.String(), func(t *testing.T) {
			if got := CoverGlyph(tt.state).Text; got != tt.want {
				t.Errorf("glyph = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestInspectorCoverPath(t *testing.T) {
	dir := t.TempDir()
	path := testsupport.WriteJPEG(t, dir, "7-M.jpg", 60, 90)

	item := domain.Item{ID: 1, Title: "Dune", MediaType: domain.MediaTypeBook, Status: domain.StatusBacklog, CoverID: 7}
	insp := NewInspector()
	insp.SetSize(60, 40)
	insp.SetItem(&item)

	t.Run("other selection is ignored", func(t *testing.T) {
		if insp.SetCoverPath(covers.SelectionToken{Item: 2, Cover: 7}, path) {
			t.Error("accepted a token for another item")
		}
		if insp.SetCoverPath(covers.SelectionToken{Item: 1, Cover: 8}, path) {
			t.Error("accepted a token for another cover")
		}
		if insp.CoverKind() != covers.StateNone {
			t.Errorf("kind = %v, want none", insp.CoverKind())
		}
	})

	token := covers.SelectionToken{Item: 1, Cover: 7}

	t.Run("empty path shows no cover", func(t *testing.T) {
		if !insp.SetCoverPath(token, "") {
			t.Fatal("rejected matching token")
		}
		if insp.CoverKind() != covers.StateMissing {
			t.Errorf("kind = %v, want missing", insp.CoverKind())
		}
		if !strings.Contains(insp.View(), "No cover") {
			t.Error("view does not say No cover")
		}
	})

	t.Run("undecodable file shows no cover", func(t *testing.T) {
		insp.SetCoverPath(token, filepath.Join(dir, "absent.jpg"))
		if insp.CoverKind() != covers.StateMissing {
			t.Errorf("kind = %v, want missing", insp.CoverKind())
		}
	})

	t.Run("decodable file renders", func(t *testing.T) {
		insp.SetCoverPath(token, path)
		if insp.CoverKind() != covers.StateReady {
			t.Fatalf("kind = %v, want ready", insp.CoverKind())
		}
		if !strings.Contains(insp.View(), halfBlock) {
			t.Error("view has no cover blocks")
		}
	})

	t.Run("refresh keeps the cover", func(t *testing.T) {
		updated := item
		updated.Status = domain.StatusDone
		if !insp.Refresh(updated) {
			t.Fatal("refresh rejected the same item")
		}
		if insp.CoverKind() != covers.StateReady || insp.Item().Status != domain.StatusDone {
			t.Errorf("after refresh kind=%v status=%v", insp.CoverKind(), insp.Item().Status)
		}
		updated.CoverID = 9
		if insp.Refresh(updated) {
			t.Error("refresh accepted a different cover")
		}
	})
}

func tableItems(titles ...string) []domain.Item {
	items := make([]domain.Item, len(titles))
	for i, title := range titles {
		items[i] = domain.Item{
			ID:        domain.ItemID(i + 1),
			Title:     title,
			MediaType: domain.MediaTypeBook,
			Status:    domain.StatusBacklog,
			CoverID:   domain.CoverID(i + 1),
		}
	}
	return items
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestItemTableVisibleWindow(t *testing.T) {
	table := NewItemTable("Library")
	table.SetFocused(true)
	table.SetSize(80, 9) // three rows
	table.SetItems(tableItems("a", "b", "c", "d", "e"))

	if got := len(table.VisibleItems()); got != 3 {
		t.Fatalf("visible = %d, want 3", got)
	}

	table.Update(keyRunes("G"))
	visible := table.VisibleItems()
	if visible[len(visible)-1].Title != "e" {
		t.Errorf("last visible = %q, want e", visible[len(visible)-1].Title)
	}
	if sel := table.SelectedItem(); sel == nil || sel.Title != "e" {
		t.Errorf("selected = %v, want e", sel)
	}
}

func TestItemTableSetItemsKeepsSelection(t *testing.T) {
	table := NewItemTable("Library")
	table.SetFocused(true)
	table.SetSize(80, 20)
	table.SetItems(tableItems("a", "b", "c"))
	table.Update(keyRunes("j"))

	// a new item arrives at the top, as List returns newest first
	items := append([]domain.Item{{ID: 9, Title: "new", MediaType: domain.MediaTypeBook, Status: domain.StatusBacklog}}, tableItems("a", "b", "c")...)
	table.SetItems(items)

	if sel := table.SelectedItem(); sel == nil || sel.Title != "b" {
		t.Errorf("selected = %v, want b", sel)
	}
}

func TestItemTableFilter(t *testing.T) {
	table := NewItemTable("Library")
	table.SetFocused(true)
	table.SetSize(80, 20)
	table.SetItems(tableItems("The Hobbit", "Dune", "The Fellowship of the Ring"))

	table.ToggleFilter()
	table.Update(keyRunes("dune"))
	if got := table.ItemCount(); got != 1 {
		t.Fatalf("filtered count = %d, want 1", got)
	}
	if sel := table.SelectedItem(); sel == nil || sel.Title != "Dune" {
		t.Errorf("selected = %v, want Dune", sel)
	}

	table.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if table.IsFiltering() || table.ItemCount() != 3 {
		t.Errorf("filter not cleared: filtering=%v count=%d", table.IsFiltering(), table.ItemCount())
	}
	if sel := table.SelectedItem(); sel == nil || sel.Title != "Dune" {
		t.Errorf("selection after clear = %v, want Dune", sel)
	}
}

func TestAddItemModalItem(t *testing.T) {
	tests := []struct {
		name    string
		title   string
		year    string
		wantErr bool
	}{
		{"title only", "Dune", "", false},
		{"with year", "Dune", "1965", false},
		{"missing title", "  ", "", true},
		{"bad year", "Dune", "soon", true},
		{"negative year", "Dune", "-1", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewAddItemModal()
			m.Show()
			m.inputs[fieldTitle].SetValue(tt.title)
			m.inputs[fieldYear].SetValue(tt.year)

			item, err := m.Item()
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if item.MediaType != domain.MediaTypeBook || item.Status != domain.StatusBacklog {
				t.Errorf("defaults = %s/%s", item.MediaType, item.Status)
			}
		})
	}
}

func TestAddItemModalCyclesMediaType(t *testing.T) {
	m := NewAddItemModal()
	m.Show()
	for range fieldType {
		m, _, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	}
	m, _, _ = m.Update(tea.KeyMsg{Type: tea.KeyRight})
	m.inputs[fieldTitle].SetValue("Watchmen")

	item, err := m.Item()
	if err != nil {
		t.Fatal(err)
	}
	if item.MediaType != domain.MediaTypeComic {
		t.Errorf("media type = %s, want comic", item.MediaType)
	}
}
