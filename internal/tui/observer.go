package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mmcdole/shelf/internal/worker"
)

// ListenCmd waits for the next completion in inbox and hands it to Update.
// Update re-arms it after every delivery, so exactly one listener is
// outstanding. It returns nil once the inbox is closed.
func ListenCmd(inbox *worker.Inbox) tea.Cmd {
	if inbox == nil {
		return nil
	}
	return func() tea.Msg {
		msg, ok := inbox.Next(context.Background())
		if !ok {
			return nil
		}
		return deliveredMsg{msg: msg}
	}
}
