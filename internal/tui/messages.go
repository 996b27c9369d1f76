package tui

import (
	"github.com/mmcdole/shelf/internal/domain"
)

// Message types for the TUI

// ErrMsg represents an error
type ErrMsg struct {
	Err     error
	Context string
}

// Error implements the error interface
func (e ErrMsg) Error() string {
	if e.Context != "" {
		return e.Context + ": " + e.Err.Error()
	}
	return e.Err.Error()
}

// ItemsLoadedMsg carries the full item list
type ItemsLoadedMsg struct {
	Items []domain.Item
}

// ItemSavedMsg signals that an item was created or changed
type ItemSavedMsg struct {
	Item    domain.Item
	Created bool
}

// ItemDeletedMsg signals that an item was removed
type ItemDeletedMsg struct {
	ID    domain.ItemID
	Title string
}

// CoverOpenedMsg signals that the cover viewer was launched
type CoverOpenedMsg struct {
	Path string
}

// TickMsg drives the spinner
type TickMsg struct{}

// ClearStatusMsg clears the status bar
type ClearStatusMsg struct{}

// deliveredMsg wraps a completion taken from the worker inbox. The wrapper
// tells Update to arm the next listen.
type deliveredMsg struct {
	msg any
}
