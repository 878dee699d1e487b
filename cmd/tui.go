package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v3"

	"github.com/vaporisers/reelist/internal/shared"
	"github.com/vaporisers/reelist/internal/ui"
)

// TUI launches the interactive terminal UI for browsing and saving movies.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	if r.catalog == nil {
		return fmt.Errorf("%w: movie catalog not initialized", shared.ErrServiceUnavailable)
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger("./tmp/reelist-tui.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	r.restoreSession()
	if _, err := r.session.Current(ctx); err != nil {
		fileLogger.Warn("session check failed", "error", err)
	}

	model := ui.NewModel(ctx, r.catalog, r.session, r.watchlist, r.tracker, fileLogger)
	p := tea.NewProgram(model)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
