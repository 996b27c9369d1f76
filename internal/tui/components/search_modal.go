package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mmcdole/shelf/internal/covers"
	"github.com/mmcdole/shelf/internal/domain"
	"github.com/mmcdole/shelf/internal/tui/styles"
)

// SearchAction tells the caller what a key press in the search modal asks for
type SearchAction int

const (
	SearchNone SearchAction = iota
	SearchSubmit
	SearchImport
)

const maxSearchRows = 10

// SearchModal is the online search dialog with importable results
type SearchModal struct {
	input     textinput.Model
	results   []domain.SearchResult
	cursor    int
	visible   bool
	width     int
	height    int
	loading   bool
	fromCache bool
	query     string // query the current results belong to
	err       string
	covers    CoverPeeker
}

// NewSearchModal creates a new search modal
func NewSearchModal() SearchModal {
	ti := textinput.New()
	ti.Placeholder = "Search Open Library..."
	ti.CharLimit = 100
	ti.Width = 40
	ti.Prompt = "? "
	ti.PromptStyle = styles.AccentStyle
	ti.TextStyle = lipgloss.NewStyle().Foreground(styles.White)
	ti.PlaceholderStyle = styles.DimStyle

	return SearchModal{input: ti}
}

// Show makes the modal visible with an empty query
func (s *SearchModal) Show() {
	s.visible = true
	s.input.SetValue("")
	s.input.Focus()
	s.results = nil
	s.cursor = 0
	s.loading = false
	s.fromCache = false
	s.query = ""
	s.err = ""
}

// Hide hides the modal
func (s *SearchModal) Hide() {
	s.visible = false
	s.input.Blur()
}

// IsVisible returns true if the modal is visible
func (s SearchModal) IsVisible() bool { return s.visible }

// SetCoverSource wires the cover state used for result glyphs
func (s *SearchModal) SetCoverSource(src CoverPeeker) { s.covers = src }

// SetSize updates the component dimensions
func (s *SearchModal) SetSize(width, height int) {
	s.width = width
	s.height = height
	s.input.Width = max(s.modalWidth()-12, 10)
}

// Query returns the text currently typed
func (s SearchModal) Query() string { return strings.TrimSpace(s.input.Value()) }

// SetLoading marks a search for query as running
func (s *SearchModal) SetLoading(query string) {
	s.loading = true
	s.query = query
	s.err = ""
}

// IsLoading reports whether a search is running
func (s SearchModal) IsLoading() bool { return s.loading }

// PendingQuery returns the query of the running or last completed search
func (s SearchModal) PendingQuery() string { return s.query }

// SetResults shows the results of a completed search and moves focus to
// the list when there is something to pick.
func (s *SearchModal) SetResults(results []domain.SearchResult, fromCache bool) {
	s.results = results
	s.fromCache = fromCache
	s.cursor = 0
	s.loading = false
	s.err = ""
	if len(results) > 0 {
		s.input.Blur()
	}
}

// SetError shows a failed search
func (s *SearchModal) SetError(msg string) {
	s.loading = false
	s.results = nil
	s.err = msg
	s.input.Focus()
}

// SelectedResult returns the result under the cursor
func (s SearchModal) SelectedResult() *domain.SearchResult {
	if s.cursor < 0 || s.cursor >= len(s.results) {
		return nil
	}
	r := s.results[s.cursor]
	return &r
}

// VisibleResults returns the results drawn on screen
func (s SearchModal) VisibleResults() []domain.SearchResult {
	start, end := s.window()
	return s.results[start:end]
}

func (s SearchModal) window() (int, int) {
	start := 0
	if s.cursor >= maxSearchRows {
		start = s.cursor - maxSearchRows + 1
	}
	return start, min(start+maxSearchRows, len(s.results))
}

// Init initializes the component
func (s SearchModal) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages
func (s SearchModal) Update(msg tea.Msg) (SearchModal, tea.Cmd, SearchAction) {
	if !s.visible {
		return s, nil, SearchNone
	}

	if km, ok := msg.(tea.KeyMsg); ok {
		switch km.String() {
		case "esc":
			s.Hide()
			return s, nil, SearchNone
		case "enter":
			if s.input.Focused() {
				if s.Query() == "" || s.loading {
					return s, nil, SearchNone
				}
				return s, nil, SearchSubmit
			}
			if s.SelectedResult() != nil {
				return s, nil, SearchImport
			}
			return s, nil, SearchNone
		case "tab", "/":
			if !s.input.Focused() {
				s.input.Focus()
				return s, nil, SearchNone
			}
			if km.String() == "tab" && len(s.results) > 0 {
				s.input.Blur()
				return s, nil, SearchNone
			}
		case "down", "ctrl+n", "j":
			if !s.input.Focused() || km.String() != "j" {
				if s.cursor < len(s.results)-1 {
					s.cursor++
				}
				return s, nil, SearchNone
			}
		case "up", "ctrl+p", "k":
			if !s.input.Focused() || km.String() != "k" {
				if s.cursor > 0 {
					s.cursor--
				}
				return s, nil, SearchNone
			}
		}
	}

	if !s.input.Focused() {
		return s, nil, SearchNone
	}
	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return s, cmd, SearchNone
}

func (s SearchModal) modalWidth() int {
	return min(max(s.width*2/3, 40), 90)
}

// View renders the component
func (s SearchModal) View() string {
	if !s.visible {
		return ""
	}

	modalWidth := s.modalWidth()
	var b strings.Builder

	b.WriteString("Search online")
	b.WriteString("\n\n")
	b.WriteString(s.input.View())
	b.WriteString("\n\n")

	switch {
	case s.loading:
		b.WriteString(styles.SpinnerStyle.Render(fmt.Sprintf("Searching for %q...", s.query)))
	case s.err != "":
		b.WriteString(styles.ErrorStyle.Render(wordWrap(s.err, modalWidth-8)))
	case s.query != "" && len(s.results) == 0:
		b.WriteString(styles.DimStyle.Render("No results"))
	default:
		s.renderResults(&b, modalWidth-8)
	}

	content := lipgloss.NewStyle().
		Width(modalWidth - 4).
		Render(b.String())

	modal := styles.ModalStyle.
		Width(modalWidth).
		Render(content)

	return lipgloss.Place(s.width, s.height, lipgloss.Center, lipgloss.Center, modal)
}

func (s SearchModal) renderResults(b *strings.Builder, width int) {
	if len(s.results) == 0 {
		return
	}

	start, end := s.window()
	for i := start; i < end; i++ {
		r := s.results[i]

		state := covers.CoverState{}
		if s.covers != nil {
			state = s.covers.Peek(r.CoverID)
		}

		title := r.Title
		if r.FirstPublishYear > 0 {
			title = fmt.Sprintf("%s (%d)", r.Title, r.FirstPublishYear)
		}
		author := r.Author
		if author == "" {
			author = "unknown author"
		}
		dim := styles.DimGray
		parts := []styles.RowPart{
			CoverGlyph(state),
			{Text: " " + styles.Truncate(title, width/2)},
			{Text: "  " + styles.Truncate(author, width/2-6), Foreground: &dim},
		}
		b.WriteString(styles.RenderListRow(parts, i == s.cursor && !s.input.Focused(), width))
		b.WriteString("\n")
	}

	footer := fmt.Sprintf("%d results", len(s.results))
	if s.fromCache {
		footer += " · cached"
	}
	b.WriteString("\n")
	b.WriteString(styles.DimStyle.Render(footer + " · enter import · tab edit query"))
}
