package tui

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mmcdole/shelf/internal/covers"
	"github.com/mmcdole/shelf/internal/tui/components"
)

// handleKeyMsg handles keyboard input
func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.State {
	case StateHelp:
		m.State = StateBrowsing
		return m, nil

	case StateConfirmDelete:
		item := m.pendingDelete
		m.State = StateBrowsing
		m.pendingDelete = nil
		if key.Matches(msg, Keys.Confirm) && item != nil {
			return m, DeleteItemCmd(m.Library, *item)
		}
		return m, nil
	}

	if handled, newModel, cmd := m.routeToModal(msg); handled {
		return newModel, cmd
	}

	// The filter input owns the keyboard while typing
	if m.Table.IsFilterTyping() {
		cmd := m.Table.Update(msg)
		return m, tea.Batch(cmd, m.syncCovers())
	}

	switch {
	case key.Matches(msg, Keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, Keys.Help):
		m.State = StateHelp
		return m, nil

	case key.Matches(msg, Keys.Escape):
		if m.Table.IsFiltering() {
			m.Table.ClearFilter()
			return m, m.syncCovers()
		}
		return m, nil

	case key.Matches(msg, Keys.Filter):
		m.Table.ToggleFilter()
		return m, m.syncCovers()

	case key.Matches(msg, Keys.Add):
		m.AddModal.Show()
		return m, nil

	case key.Matches(msg, Keys.Search):
		m.Search.Show()
		m.Search.SetSize(m.Width, m.Height)
		return m, m.Search.Init()

	case key.Matches(msg, Keys.ToggleInspector):
		m.ShowInspector = !m.ShowInspector
		m.updateLayout()
		return m, m.syncCovers()

	case key.Matches(msg, Keys.Reload):
		m.Table.SetLoading(true)
		return m, tea.Batch(LoadItemsCmd(m.Library), m.ensureTicking())

	case key.Matches(msg, Keys.ScrollDetails):
		if msg.String() == "J" {
			m.Inspector.ScrollBy(1)
		} else {
			m.Inspector.ScrollBy(-1)
		}
		return m, nil
	}

	// Item actions below need a selection
	sel := m.Table.SelectedItem()

	switch {
	case key.Matches(msg, Keys.Delete):
		if sel == nil {
			return m, nil
		}
		m.pendingDelete = sel
		m.State = StateConfirmDelete
		return m, nil

	case key.Matches(msg, Keys.CycleStatus):
		if sel == nil {
			return m, nil
		}
		return m, CycleStatusCmd(m.Library, sel.ID)

	case key.Matches(msg, Keys.Rate):
		if sel == nil {
			return m, nil
		}
		rating, _ := strconv.Atoi(msg.String())
		return m, SetRatingCmd(m.Library, sel.ID, rating)

	case key.Matches(msg, Keys.RetryCover):
		if sel == nil || !sel.HasCover() {
			return m, m.setStatus("Selected item has no cover", true)
		}
		m.Covers.Retry(sel.CoverID)
		m.Inspector.SetItem(sel)
		m.Inspector.SetCover(m.Covers.Select(sel.ID, sel.CoverID))
		return m, tea.Batch(m.setStatus(fmt.Sprintf("Refetching cover %s", sel.CoverID), false), m.ensureTicking())

	case key.Matches(msg, Keys.OpenCover):
		if sel == nil || !sel.HasCover() {
			return m, m.setStatus("Selected item has no cover", true)
		}
		if m.Viewer == nil || m.Inspector.CoverKind() != covers.StateReady {
			return m, m.setStatus("Cover is not downloaded", true)
		}
		return m, OpenCoverCmd(m.Viewer, m.Covers.Path(sel.CoverID))
	}

	// Navigation goes to the table
	cmd := m.Table.Update(msg)
	return m, tea.Batch(cmd, m.syncCovers())
}

// routeToModal sends the key to whichever modal is open
func (m Model) routeToModal(msg tea.KeyMsg) (bool, tea.Model, tea.Cmd) {
	switch {
	case m.AddModal.IsVisible():
		var cmd tea.Cmd
		var submitted bool
		m.AddModal, cmd, submitted = m.AddModal.Update(msg)
		if !submitted {
			return true, m, cmd
		}
		item, err := m.AddModal.Item()
		if err != nil {
			m.AddModal.SetError(err.Error())
			return true, m, nil
		}
		m.AddModal.Hide()
		return true, m, AddItemCmd(m.Library, item)

	case m.Search.IsVisible():
		var cmd tea.Cmd
		var action components.SearchAction
		m.Search, cmd, action = m.Search.Update(msg)
		switch action {
		case components.SearchSubmit:
			query := m.Search.Query()
			h, err := submitSearch(m.Pool, m.Library, query)
			if err != nil {
				m.Search.SetError(err.Error())
				return true, m, nil
			}
			m.searchTask = h.ID
			m.Search.SetLoading(query)
			return true, m, m.ensureTicking()
		case components.SearchImport:
			result := m.Search.SelectedResult()
			m.Search.Hide()
			return true, m, ImportResultCmd(m.Library, *result)
		}
		if !m.Search.IsVisible() {
			// closed with esc; a running search is no longer wanted
			m.searchTask = 0
		}
		return true, m, tea.Batch(cmd, m.syncCovers())
	}
	return false, m, nil
}
