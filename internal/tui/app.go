package tui

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mmcdole/shelf/internal/covers"
	"github.com/mmcdole/shelf/internal/domain"
	"github.com/mmcdole/shelf/internal/library"
	"github.com/mmcdole/shelf/internal/tui/components"
	"github.com/mmcdole/shelf/internal/worker"
)

// ApplicationState represents the current state of the application
type ApplicationState int

const (
	StateBrowsing ApplicationState = iota
	StateHelp
	StateConfirmDelete
)

const (
	spinnerInterval = 100 * time.Millisecond
	statusDuration  = 3 * time.Second
)

// CoverViewer opens a cover file outside the terminal
type CoverViewer interface {
	Open(path string) error
}

// Options wires the model to the services it drives
type Options struct {
	Library    *library.Service
	Covers     *covers.Pipeline
	Pool       *worker.Pool
	Inbox      *worker.Inbox
	Viewer     CoverViewer
	ShowCovers bool
	Logger     *slog.Logger
}

// Model is the main Bubble Tea model for the application.
//
// Update is the only writer of the cover pipeline. Fetch completions reach it
// through the worker inbox and ListenCmd, never through shared state.
type Model struct {
	// Application state
	State ApplicationState
	Ready bool

	// Services
	Library *library.Service
	Covers  *covers.Pipeline
	Pool    *worker.Pool
	Inbox   *worker.Inbox
	Viewer  CoverViewer
	Logger  *slog.Logger

	// UI Components
	Table     *components.ItemTable
	Inspector components.Inspector
	AddModal  components.AddItemModal
	Search    components.SearchModal

	// Dimensions
	Width  int
	Height int

	// UI state
	StatusMsg     string
	StatusIsErr   bool
	SpinnerFrame  int
	ShowInspector bool
	ShowCovers    bool

	ticking       bool
	searchTask    uint64 // task id of the search whose result the modal waits for
	pendingDelete *domain.Item
}

// NewModel creates a new application model
func NewModel(opts Options) Model {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	table := components.NewItemTable("Library")
	table.SetFocused(true)
	table.SetShowCovers(opts.ShowCovers)
	search := components.NewSearchModal()
	if opts.Covers != nil {
		table.SetCoverSource(opts.Covers)
		search.SetCoverSource(opts.Covers)
	}

	return Model{
		State:         StateBrowsing,
		Library:       opts.Library,
		Covers:        opts.Covers,
		Pool:          opts.Pool,
		Inbox:         opts.Inbox,
		Viewer:        opts.Viewer,
		Logger:        logger,
		Table:         table,
		Inspector:     components.NewInspector(),
		AddModal:      components.NewAddItemModal(),
		Search:        search,
		ShowInspector: true,
		ShowCovers:    opts.ShowCovers,
		ticking:       true,
	}
}

// Init starts loading items, listening for completions and the spinner
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		LoadItemsCmd(m.Library),
		ListenCmd(m.Inbox),
		TickCmd(spinnerInterval),
	)
}

// Update handles all messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.Ready = true
		m.updateLayout()
		return m, m.syncCovers()

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case deliveredMsg:
		cmd := m.handleDelivered(msg.msg)
		return m, tea.Batch(cmd, ListenCmd(m.Inbox))

	case TickMsg:
		m.SpinnerFrame++
		m.Table.SetSpinner(spinnerFrames[m.SpinnerFrame%len(spinnerFrames)])
		if m.busy() {
			return m, TickCmd(spinnerInterval)
		}
		m.ticking = false
		return m, nil

	case ItemsLoadedMsg:
		m.Table.SetItems(msg.Items)
		return m, m.syncCovers()

	case ItemSavedMsg:
		verb := "Updated"
		if msg.Created {
			verb = "Added"
		}
		m.Inspector.Refresh(msg.Item)
		cmd := m.setStatus(fmt.Sprintf("%s %q", verb, msg.Item.Title), false)
		return m, tea.Batch(cmd, LoadItemsCmd(m.Library))

	case ItemDeletedMsg:
		cmd := m.setStatus(fmt.Sprintf("Deleted %q", msg.Title), false)
		return m, tea.Batch(cmd, LoadItemsCmd(m.Library))

	case CoverOpenedMsg:
		return m, m.setStatus("Opened cover in viewer", false)

	case ErrMsg:
		m.Logger.Error("tui operation failed", "context", msg.Context, "error", msg.Err)
		m.Table.SetLoading(false)
		return m, m.setStatus(msg.Error(), true)

	case ClearStatusMsg:
		m.StatusMsg = ""
		m.StatusIsErr = false
		return m, nil
	}

	// Anything else (cursor blink and the like) goes to the open modal
	var cmd tea.Cmd
	switch {
	case m.AddModal.IsVisible():
		m.AddModal, cmd, _ = m.AddModal.Update(msg)
	case m.Search.IsVisible():
		m.Search, cmd, _ = m.Search.Update(msg)
	}
	return m, cmd
}

// handleDelivered applies one completion from the worker pool
func (m *Model) handleDelivered(msg any) tea.Cmd {
	switch done := msg.(type) {
	case covers.FetchDone:
		u, ok := m.Covers.Complete(done)
		if !ok {
			return nil
		}
		if u.Detail {
			m.Inspector.SetCoverPath(u.Token, u.Path)
		}
		return nil

	case worker.Done[library.SearchOutcome]:
		if done.Task.ID != m.searchTask {
			// superseded by a newer query
			return nil
		}
		m.searchTask = 0
		if done.Err != nil {
			m.Logger.Warn("online search failed", "error", done.Err)
			msg := "Search failed: " + done.Err.Error()
			if errors.Is(done.Err, domain.ErrSearchUnavailable) {
				msg = "Open Library is unreachable and nothing is cached for this query"
			}
			m.Search.SetError(msg)
			return nil
		}
		m.Search.SetResults(done.Value.Results, done.Value.FromCache)
		return m.syncCovers()
	}

	m.Logger.Debug("unhandled delivery", "type", fmt.Sprintf("%T", msg))
	return nil
}

// syncCovers requests covers for the rows on screen and points the detail
// pane at the current selection. It is called after anything that can
// change which rows are visible.
func (m *Model) syncCovers() tea.Cmd {
	if m.Covers == nil {
		return nil
	}
	if m.ShowCovers {
		for _, item := range m.Table.VisibleItems() {
			m.Covers.Decorate(item.CoverID)
		}
		if m.Search.IsVisible() {
			for _, r := range m.Search.VisibleResults() {
				m.Covers.Decorate(r.CoverID)
			}
		}
	}
	m.syncSelection()
	return m.ensureTicking()
}

// syncSelection keeps the inspector and the pipeline's selection token on
// the item under the cursor.
func (m *Model) syncSelection() {
	sel := m.Table.SelectedItem()
	if sel == nil {
		if m.Inspector.HasItem() {
			m.Inspector.SetItem(nil)
			m.Covers.ClearSelection()
		}
		return
	}
	if m.Inspector.Refresh(*sel) {
		return
	}
	m.Inspector.SetItem(sel)
	m.Inspector.SetCover(m.Covers.Select(sel.ID, sel.CoverID))
}

// busy reports whether anything on screen is waiting for work
func (m Model) busy() bool {
	if m.searchTask != 0 || m.Table.IsLoading() {
		return true
	}
	if m.Covers != nil && m.Covers.Stats().InFlight > 0 {
		return true
	}
	return false
}

func (m *Model) ensureTicking() tea.Cmd {
	if m.ticking || !m.busy() {
		return nil
	}
	m.ticking = true
	return TickCmd(spinnerInterval)
}

func (m *Model) setStatus(msg string, isErr bool) tea.Cmd {
	m.StatusMsg = msg
	m.StatusIsErr = isErr
	return ClearStatusCmd(statusDuration)
}
