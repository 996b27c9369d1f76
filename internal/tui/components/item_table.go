package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mmcdole/shelf/internal/covers"
	"github.com/mmcdole/shelf/internal/domain"
	"github.com/mmcdole/shelf/internal/tui/styles"
	"github.com/sahilm/fuzzy"
)

// Layout constants for the item table
const (
	// Border adds 1 char on each side (left+right for width, top+bottom for height)
	BorderWidth  = 2
	BorderHeight = 2

	// Title line, column header, and the two scroll indicators
	tableChromeLines = 4

	coverColWidth  = 2
	typeColWidth   = 6
	statusColWidth = 12
	ratingColWidth = 6
)

// CoverPeeker reads cover state without side effects. View paths use it so
// rendering never schedules work.
type CoverPeeker interface {
	Peek(id domain.CoverID) covers.CoverState
}

// ItemTable is the scrollable, filterable table of library items
type ItemTable struct {
	items []domain.Item

	// Selection
	cursor     int
	offset     int
	maxVisible int

	// Dimensions
	width   int
	height  int
	focused bool

	title string

	loading bool
	spinner string

	covers     CoverPeeker
	showCovers bool

	// Filter state
	filterActive bool
	filterInput  textinput.Model
	filterQuery  string
	filteredIdx  []int // indices into items
}

// NewItemTable creates an empty table
func NewItemTable(title string) *ItemTable {
	ti := textinput.New()
	ti.Placeholder = "type to filter..."
	ti.Prompt = "/ "
	ti.PromptStyle = styles.FilterPromptStyle
	ti.TextStyle = styles.AccentStyle

	return &ItemTable{
		title:       title,
		filterInput: ti,
		showCovers:  true,
		loading:     true,
	}
}

// Update handles navigation and filter typing
func (t *ItemTable) Update(msg tea.Msg) tea.Cmd {
	if !t.focused {
		return nil
	}

	if t.filterActive && t.filterInput.Focused() {
		if km, ok := msg.(tea.KeyMsg); ok {
			switch km.String() {
			case "esc":
				t.clearFilter()
				return nil
			case "enter":
				// keep the filter, hand keys back to navigation
				t.filterInput.Blur()
				return nil
			case "backspace":
				if t.filterInput.Value() == "" {
					t.clearFilter()
					return nil
				}
			}
		}

		var cmd tea.Cmd
		t.filterInput, cmd = t.filterInput.Update(msg)
		t.applyFilter()
		return cmd
	}

	if t.filterActive {
		if km, ok := msg.(tea.KeyMsg); ok {
			switch km.String() {
			case "esc":
				t.clearFilter()
				return nil
			case "/":
				t.filterInput.Focus()
				return nil
			}
		}
	}

	count := t.ItemCount()
	if count == 0 {
		return nil
	}

	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}
	switch km.String() {
	case "j", "down":
		if t.cursor < count-1 {
			t.cursor++
			t.ensureVisible()
		}
	case "k", "up":
		if t.cursor > 0 {
			t.cursor--
			t.ensureVisible()
		}
	case "g", "home":
		t.cursor = 0
		t.offset = 0
	case "G", "end":
		t.cursor = count - 1
		t.ensureVisible()
	case "ctrl+d", "pgdown":
		t.cursor = min(t.cursor+max(t.maxVisible/2, 1), count-1)
		t.ensureVisible()
	case "ctrl+u", "pgup":
		t.cursor = max(t.cursor-max(t.maxVisible/2, 1), 0)
		t.ensureVisible()
	}
	return nil
}

// View renders the bordered table
func (t *ItemTable) View() string {
	style := styles.InactiveBorder
	if t.focused {
		style = styles.ActiveBorder
	}
	frameW, frameH := style.GetFrameSize()
	return style.
		Width(max(t.width-frameW, 0)).
		Height(max(t.height-frameH, 0)).
		Render(t.renderContent())
}

// SetSize updates the table dimensions
func (t *ItemTable) SetSize(width, height int) {
	t.width = width
	t.height = height
	t.recalcMaxVisible()
	t.ensureVisible()
}

func (t *ItemTable) SetFocused(focused bool) { t.focused = focused }

// SetCoverSource wires the cover state used for the glyph column
func (t *ItemTable) SetCoverSource(src CoverPeeker) { t.covers = src }

// SetShowCovers toggles the cover glyph column
func (t *ItemTable) SetShowCovers(show bool) { t.showCovers = show }

func (t *ItemTable) SetLoading(loading bool) { t.loading = loading }

func (t *ItemTable) IsLoading() bool { return t.loading }

func (t *ItemTable) SetSpinner(frame string) { t.spinner = frame }

// SetItems replaces the rows. The cursor stays on the item with the same id
// when it is still present.
func (t *ItemTable) SetItems(items []domain.Item) {
	var keep domain.ItemID
	if sel := t.SelectedItem(); sel != nil {
		keep = sel.ID
	}

	t.items = items
	t.loading = false
	if t.filterActive {
		t.applyFilter()
	}

	t.cursor = 0
	t.offset = 0
	for i := 0; i < t.ItemCount(); i++ {
		if t.items[t.mapIndex(i)].ID == keep {
			t.cursor = i
			break
		}
	}
	t.ensureVisible()
}

// Items returns every row, ignoring the filter
func (t *ItemTable) Items() []domain.Item { return t.items }

// SelectedItem returns the row under the cursor, or nil
func (t *ItemTable) SelectedItem() *domain.Item {
	count := t.ItemCount()
	if count == 0 || t.cursor >= count {
		return nil
	}
	item := t.items[t.mapIndex(t.cursor)]
	return &item
}

// SelectedIndex returns the cursor position within the filtered rows
func (t *ItemTable) SelectedIndex() int { return t.cursor }

// SetSelectedIndex moves the cursor, clamped to the row count
func (t *ItemTable) SetSelectedIndex(idx int) {
	last := t.ItemCount() - 1
	if last < 0 {
		t.cursor = 0
		return
	}
	t.cursor = max(0, min(idx, last))
	t.ensureVisible()
}

// VisibleItems returns the rows currently on screen. Cover requests are
// issued for these only.
func (t *ItemTable) VisibleItems() []domain.Item {
	count := t.ItemCount()
	end := min(t.offset+t.maxVisible, count)
	out := make([]domain.Item, 0, max(end-t.offset, 0))
	for i := t.offset; i < end; i++ {
		out = append(out, t.items[t.mapIndex(i)])
	}
	return out
}

// ItemCount returns the number of rows after filtering
func (t *ItemTable) ItemCount() int {
	if t.filteredIdx != nil {
		return len(t.filteredIdx)
	}
	return len(t.items)
}

// ToggleFilter activates the filter input
func (t *ItemTable) ToggleFilter() {
	t.filterActive = true
	t.filterInput.Focus()
	t.recalcMaxVisible()
}

// IsFiltering returns true if filter mode is active
func (t *ItemTable) IsFiltering() bool { return t.filterActive }

// IsFilterTyping returns true if filter is active AND input is focused
func (t *ItemTable) IsFilterTyping() bool {
	return t.filterActive && t.filterInput.Focused()
}

// ClearFilter deactivates the filter and shows all items
func (t *ItemTable) ClearFilter() { t.clearFilter() }

func (t *ItemTable) recalcMaxVisible() {
	t.maxVisible = t.height - BorderHeight - tableChromeLines
	if t.filterActive {
		t.maxVisible--
	}
	if t.maxVisible < 1 {
		t.maxVisible = 1
	}
}

func (t *ItemTable) ensureVisible() {
	if t.maxVisible <= 0 {
		return
	}
	if t.cursor < t.offset {
		t.offset = t.cursor
	}
	if t.cursor >= t.offset+t.maxVisible {
		t.offset = t.cursor - t.maxVisible + 1
	}
}

func (t *ItemTable) clearFilter() {
	keep := t.SelectedItem()
	t.filterActive = false
	t.filterQuery = ""
	t.filteredIdx = nil
	t.filterInput.SetValue("")
	t.filterInput.Blur()
	t.recalcMaxVisible()

	t.cursor = 0
	if keep != nil {
		for i, it := range t.items {
			if it.ID == keep.ID {
				t.cursor = i
				break
			}
		}
	}
	t.ensureVisible()
}

func (t *ItemTable) applyFilter() {
	query := t.filterInput.Value()
	t.filterQuery = query

	if query == "" {
		t.filteredIdx = nil
		return
	}

	targets := make([]string, len(t.items))
	for i, it := range t.items {
		targets[i] = strings.ToLower(it.Title + " " + it.Author)
	}
	matches := fuzzy.Find(strings.ToLower(query), targets)

	t.filteredIdx = make([]int, len(matches))
	for i, match := range matches {
		t.filteredIdx[i] = match.Index
	}

	t.cursor = 0
	t.offset = 0
}

func (t *ItemTable) mapIndex(i int) int {
	if t.filteredIdx != nil && i < len(t.filteredIdx) {
		return t.filteredIdx[i]
	}
	return i
}

// Rendering

func (t *ItemTable) renderContent() string {
	rowWidth := max(t.width-BorderWidth, 20)

	titleLine := styles.AccentStyle.Render(styles.Truncate(t.title, rowWidth))

	if t.loading {
		return titleLine + "\n \n" + styles.DimStyle.Render(t.spinner+" Loading...")
	}

	count := t.ItemCount()
	if count == 0 {
		empty := "No items. Press a to add one or o to search online."
		if t.filterActive && t.filterQuery != "" {
			empty = "No matches"
		}
		content := titleLine + "\n \n" + styles.DimStyle.Render(empty)
		if t.filterActive {
			content += "\n" + t.renderFilterBar()
		}
		return content
	}

	end := min(t.offset+t.maxVisible, count)
	lines := make([]string, 0, end-t.offset)
	for i := t.offset; i < end; i++ {
		lines = append(lines, t.renderRow(t.items[t.mapIndex(i)], i == t.cursor, rowWidth))
	}

	header := " "
	if t.offset > 0 {
		header = styles.DimStyle.Render("↑ more")
	}
	footer := " "
	if end < count {
		footer = styles.DimStyle.Render("↓ more")
	}

	content := titleLine + "\n" + t.renderHeader(rowWidth) + "\n" + header + "\n" +
		strings.Join(lines, "\n") + "\n" + footer
	if t.filterActive {
		content += "\n" + t.renderFilterBar()
	}
	return content
}

func (t *ItemTable) titleWidth(rowWidth int) int {
	// margins(2) + the fixed columns, each followed by a space
	w := rowWidth - 2 - (typeColWidth + 1) - (statusColWidth + 1) - (ratingColWidth + 1)
	if t.showCovers {
		w -= coverColWidth + 1
	}
	return max(w, 5)
}

func (t *ItemTable) renderHeader(rowWidth int) string {
	var b strings.Builder
	b.WriteString(" ")
	if t.showCovers {
		b.WriteString(strings.Repeat(" ", coverColWidth+1))
	}
	b.WriteString(styles.Pad("Title", t.titleWidth(rowWidth)) + " ")
	b.WriteString(styles.Pad("Type", typeColWidth) + " ")
	b.WriteString(styles.Pad("Status", statusColWidth) + " ")
	b.WriteString(styles.Pad("Rating", ratingColWidth))
	return styles.HeaderStyle.Render(b.String())
}

func (t *ItemTable) renderRow(item domain.Item, selected bool, rowWidth int) string {
	parts := make([]styles.RowPart, 0, 6)

	if t.showCovers {
		state := covers.CoverState{}
		if t.covers != nil {
			state = t.covers.Peek(item.CoverID)
		}
		parts = append(parts, CoverGlyph(state), styles.RowPart{Text: " "})
	}

	title := item.Title
	if year := item.YearLabel(); year != "" {
		title = fmt.Sprintf("%s (%s)", item.Title, year)
	}
	statusFg := styles.StatusColor(item.Status)
	ratingFg := styles.Amber

	parts = append(parts,
		styles.RowPart{Text: styles.Pad(title, t.titleWidth(rowWidth)) + " "},
		styles.RowPart{Text: styles.Pad(string(item.MediaType), typeColWidth) + " "},
		styles.RowPart{Text: styles.Pad(item.Status.Label(), statusColWidth) + " ", Foreground: &statusFg},
		styles.RowPart{Text: ratingCell(item.Rating), Foreground: &ratingFg},
	)
	return styles.RenderListRow(parts, selected, rowWidth)
}

// ratingCell squeezes the rating into ratingColWidth cells
func ratingCell(rating int) string {
	if rating <= 0 {
		return styles.Pad("-", ratingColWidth)
	}
	return styles.Pad(strings.Repeat("★", rating), ratingColWidth)
}

func (t *ItemTable) renderFilterBar() string {
	input := t.filterInput.View()
	if t.filterQuery == "" {
		return input
	}
	return input + styles.DimStyle.Render(fmt.Sprintf(" [%d/%d]", t.ItemCount(), len(t.items)))
}
