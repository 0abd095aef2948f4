// Package tui is the interactive terminal browser: an index picker and
// a document grid over one preview session. It renders session
// snapshots and never touches the cluster directly; every backend call
// goes through the session so the grid, the REPL, and the dashboard
// share one lifecycle.
package tui

import (
	"context"
	"errors"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/indexlens/indexlens/internal/preview"
)

// Options configures a browse run.
type Options struct {
	// Session drives all backend access. Required.
	Session *preview.Session

	// Index, when set, is selected immediately after the index list
	// loads instead of waiting for a pick.
	Index string

	// Cluster is the display label for the title bar, usually the
	// cluster URL or a named-cluster alias.
	Cluster string

	// Logger receives debug output. Nil discards.
	Logger *slog.Logger
}

// Run starts the browser and blocks until the user quits or ctx is
// canceled. Cancellation is a clean exit, not an error.
func Run(ctx context.Context, opts Options) error {
	if opts.Session == nil {
		return errors.New("tui: session is required")
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}

	p := tea.NewProgram(newModel(ctx, opts), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) || errors.Is(err, tea.ErrInterrupted) {
			return nil
		}
		return err
	}
	return nil
}
