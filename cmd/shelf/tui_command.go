package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mmcdole/shelf/internal/adapter"
	"github.com/mmcdole/shelf/internal/tui"
)

func runTUI(ctx context.Context, cc *commandContext) error {
	return cc.withApp(ctx, func(a *app) error {
		a.logger.Info("starting shelf", "version", Version)

		pipeline := a.startWorkers(ctx)
		model := tui.NewModel(tui.Options{
			Library:    a.library,
			Covers:     pipeline,
			Pool:       a.pool,
			Inbox:      a.inbox,
			Viewer:     adapter.NewLauncher(a.cfg.Covers.Viewer, a.logger),
			ShowCovers: a.cfg.UI.ShowCovers,
			Logger:     a.logger,
		})

		p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

		a.logger.Info("starting TUI")
		if _, err := p.Run(); err != nil {
			a.logger.Error("TUI error", "error", err)
			return fmt.Errorf("TUI error: %w", err)
		}
		a.logger.Info("shutting down")
		return nil
	})
}
