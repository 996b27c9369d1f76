package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mmcdole/shelf/internal/tui/styles"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// RenderSpinner renders a loading spinner
func RenderSpinner(frame int) string {
	return styles.SpinnerStyle.Render(spinnerFrames[frame%len(spinnerFrames)])
}

// View renders the whole screen
func (m Model) View() string {
	if !m.Ready {
		return "Loading..."
	}

	switch m.State {
	case StateHelp:
		return m.renderHelp()
	case StateConfirmDelete:
		return m.renderDeleteConfirmation()
	}

	layout := m.calculateLayout(m.Width)
	content := m.Table.View()
	if layout.inspectorWidth > 0 {
		content = lipgloss.JoinHorizontal(lipgloss.Top, content, m.Inspector.View())
	}

	view := lipgloss.JoinVertical(lipgloss.Left, content, m.renderFooter())

	if m.AddModal.IsVisible() {
		view = lipgloss.Place(m.Width, m.Height,
			lipgloss.Center, lipgloss.Center,
			m.AddModal.View())
	}
	if m.Search.IsVisible() {
		view = m.Search.View()
	}
	return view
}

// renderFooter renders a single-line minimal footer
func (m Model) renderFooter() string {
	var left string
	switch {
	case m.StatusMsg != "" && m.StatusIsErr:
		left = styles.ErrorStyle.Render(m.StatusMsg)
	case m.StatusMsg != "":
		left = styles.DimStyle.Render(m.StatusMsg)
	case m.busy():
		left = RenderSpinner(m.SpinnerFrame) + " " + styles.DimStyle.Render(m.busyText())
	}

	var center string
	if m.Covers != nil && m.ShowCovers {
		st := m.Covers.Stats()
		center = styles.DimStyle.Render(strings.Join([]string{
			plural(st.Thumbnails, "cover"),
			plural(m.Table.ItemCount(), "item"),
		}, " · "))
	}

	right := styles.AccentStyle.Render("?") + styles.DimStyle.Render(" help")

	leftWidth := lipgloss.Width(left)
	centerWidth := lipgloss.Width(center)
	rightWidth := lipgloss.Width(right)

	if leftWidth+centerWidth+rightWidth >= m.Width {
		gap := max(m.Width-leftWidth-rightWidth, 0)
		return left + strings.Repeat(" ", gap) + right
	}

	available := m.Width - leftWidth - rightWidth
	leftPad := (available - centerWidth) / 2
	rightPad := available - centerWidth - leftPad
	return left + strings.Repeat(" ", leftPad) + center + strings.Repeat(" ", rightPad) + right
}

func (m Model) busyText() string {
	switch {
	case m.searchTask != 0:
		return "Searching..."
	case m.Table.IsLoading():
		return "Loading items..."
	default:
		return "Fetching covers..."
	}
}

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return fmt.Sprintf("%d %ss", n, noun)
}

// renderHelp renders the help screen
func (m Model) renderHelp() string {
	help := `
NAVIGATION                      ITEMS
  j/k        Up/down               a      Add item
  g/Home     First item            o      Search Open Library
  G/End      Last item             s      Cycle status
  Ctrl+u/d   Scroll half page      0-5    Rate (0 clears)
  J/K        Scroll details        x      Delete

VIEW                            COVERS
  /          Filter                r      Refetch cover
  i          Toggle details        v      Open in viewer
  R          Reload items
  ?          This help             q      Quit

Press any key to return...
`

	return lipgloss.Place(m.Width, m.Height,
		lipgloss.Center, lipgloss.Center,
		styles.ModalStyle.Render(help))
}

// renderDeleteConfirmation renders the delete confirmation modal
func (m Model) renderDeleteConfirmation() string {
	title := ""
	if m.pendingDelete != nil {
		title = styles.Truncate(m.pendingDelete.Title, 32)
	}
	modal := "\n  Delete item?\n\n  " + styles.TitleStyle.Render(title) +
		"\n\n  [Y] Yes      [N] No\n"

	return lipgloss.Place(m.Width, m.Height,
		lipgloss.Center, lipgloss.Center,
		styles.ModalStyle.Render(modal))
}
