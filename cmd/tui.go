package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/lidify/internal/repositories"
	"github.com/desertthunder/lidify/internal/shared"
	"github.com/desertthunder/lidify/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive terminal UI for artist migration.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	if r.engine == nil {
		return fmt.Errorf("%w: migration engine not initialized", shared.ErrServiceUnavailable)
	}

	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	snapshots := repositories.NewSnapshotRepository(db)
	artists, err := snapshots.Artists()
	if err != nil {
		return fmt.Errorf("failed to load snapshot: %w", err)
	}
	if len(artists) == 0 {
		return fmt.Errorf("%w: run 'lidify spotify extract' first", shared.ErrNoSnapshot)
	}

	albums, err := snapshots.Albums()
	if err != nil {
		return fmt.Errorf("failed to load snapshot: %w", err)
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger("./tmp/lidify-tui.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	cfg := r.runConfig(cmd)

	model := ui.NewModel(ctx, r.engine, cfg, artists, albums)
	p := tea.NewProgram(model)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
