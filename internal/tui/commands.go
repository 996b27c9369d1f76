package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mmcdole/shelf/internal/domain"
	"github.com/mmcdole/shelf/internal/library"
	"github.com/mmcdole/shelf/internal/worker"
)

// storeTimeout bounds local database commands
const storeTimeout = 5 * time.Second

// Command factories for async operations

// LoadItemsCmd loads every item from the store
func LoadItemsCmd(svc *library.Service) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		defer cancel()

		items, err := svc.ListItems(ctx)
		if err != nil {
			return ErrMsg{Err: err, Context: "loading items"}
		}
		return ItemsLoadedMsg{Items: items}
	}
}

// AddItemCmd stores a new item
func AddItemCmd(svc *library.Service, item domain.Item) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		defer cancel()

		saved, err := svc.AddItem(ctx, item)
		if err != nil {
			return ErrMsg{Err: err, Context: "adding item"}
		}
		return ItemSavedMsg{Item: saved, Created: true}
	}
}

// ImportResultCmd stores a search result as a new item
func ImportResultCmd(svc *library.Service, result domain.SearchResult) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		defer cancel()

		saved, err := svc.Import(ctx, result)
		if err != nil {
			return ErrMsg{Err: err, Context: "importing " + result.Title}
		}
		return ItemSavedMsg{Item: saved, Created: true}
	}
}

// CycleStatusCmd advances an item's status
func CycleStatusCmd(svc *library.Service, id domain.ItemID) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		defer cancel()

		item, err := svc.CycleStatus(ctx, id)
		if err != nil {
			return ErrMsg{Err: err, Context: "updating status"}
		}
		return ItemSavedMsg{Item: item}
	}
}

// SetRatingCmd sets an item's rating; 0 clears it
func SetRatingCmd(svc *library.Service, id domain.ItemID, rating int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		defer cancel()

		item, err := svc.SetRating(ctx, id, rating)
		if err != nil {
			return ErrMsg{Err: err, Context: "updating rating"}
		}
		return ItemSavedMsg{Item: item}
	}
}

// DeleteItemCmd removes an item
func DeleteItemCmd(svc *library.Service, item domain.Item) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		defer cancel()

		if err := svc.DeleteItem(ctx, item.ID); err != nil {
			return ErrMsg{Err: err, Context: "deleting item"}
		}
		return ItemDeletedMsg{ID: item.ID, Title: item.Title}
	}
}

// OpenCoverCmd shows a cached cover file in the external viewer
func OpenCoverCmd(viewer CoverViewer, path string) tea.Cmd {
	return func() tea.Msg {
		if err := viewer.Open(path); err != nil {
			return ErrMsg{Err: err, Context: "opening cover"}
		}
		return CoverOpenedMsg{Path: path}
	}
}

// submitSearch runs an online search on the worker pool. The completion
// arrives as worker.Done[library.SearchOutcome] through the inbox.
func submitSearch(pool *worker.Pool, svc *library.Service, query string) (worker.Handle, error) {
	return worker.Submit(pool, "search", func(ctx context.Context) (library.SearchOutcome, error) {
		return svc.SearchOnline(ctx, query)
	})
}

// TickCmd returns a command that ticks after a delay
func TickCmd(delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(time.Time) tea.Msg {
		return TickMsg{}
	})
}

// ClearStatusCmd returns a command that clears status after a delay
func ClearStatusCmd(delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(time.Time) tea.Msg {
		return ClearStatusMsg{}
	})
}
