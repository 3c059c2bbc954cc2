package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/lidify/internal/repositories"
	"github.com/urfave/cli/v3"
)

// CacheShow prints the current snapshot counts.
func (r *Runner) CacheShow(ctx context.Context, cmd *cli.Command) error {
	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	artists, albums, err := repositories.NewSnapshotRepository(db).Counts()
	if err != nil {
		return fmt.Errorf("failed to read snapshot: %w", err)
	}

	if artists == 0 && albums == 0 {
		r.writePlain("Snapshot is empty. Run 'lidify spotify extract' to populate it.\n")
		return nil
	}

	r.writePlain("Snapshot contents:\n")
	r.writePlain("  Artists: %d\n", artists)
	r.writePlain("  Albums: %d\n", albums)

	return nil
}

// CacheClear deletes the stored snapshot.
func (r *Runner) CacheClear(ctx context.Context, cmd *cli.Command) error {
	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	if err := repositories.NewSnapshotRepository(db).Clear(); err != nil {
		return fmt.Errorf("failed to clear snapshot: %w", err)
	}

	r.logger.Info("snapshot cleared")
	r.writePlain("✓ Snapshot cleared\n")

	return nil
}
