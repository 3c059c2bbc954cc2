package main

import (
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/lidify/internal/formatter"
	"github.com/desertthunder/lidify/internal/match"
	"github.com/desertthunder/lidify/internal/repositories"
	"github.com/desertthunder/lidify/internal/services"
	"github.com/desertthunder/lidify/internal/shared"
	"github.com/desertthunder/lidify/internal/tasks"
	"github.com/urfave/cli/v3"
)

// MigrateRun runs a full migration of the extracted snapshot into Lidarr.
func (r *Runner) MigrateRun(ctx context.Context, cmd *cli.Command) error {
	outputFile := cmd.String("output")
	format := cmd.String("format")

	if r.engine == nil {
		return fmt.Errorf("%w: migration engine not initialized (check lidarr.url and lidarr.api_key in config.toml)", shared.ErrServiceUnavailable)
	}

	cfg := r.runConfig(cmd)

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
		return fmt.Errorf("%w: no extracted artists found, run 'lidify spotify extract' first", shared.ErrNoSnapshot)
	}

	if selection := cmd.StringSlice("artists"); len(selection) > 0 {
		artists = filterArtists(artists, selection)
		if len(artists) == 0 {
			return fmt.Errorf("%w: none of the named artists are in the snapshot", shared.ErrInvalidFlag)
		}
	}

	albums, err := snapshots.Albums()
	if err != nil {
		return fmt.Errorf("failed to load snapshot: %w", err)
	}

	runs := repositories.NewRunRepository(db)
	runID, err := runs.Create()
	if err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}

	r.logger.Info("starting migration", "run", runID, "artists", len(artists), "policy", cfg.Policy)
	r.writePlain("Starting migration of %d artists (policy: %s)\n\n", len(artists), cfg.Policy)

	progressCh := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progressCh {
			switch update.Phase {
			case tasks.Preflight:
				r.writePlain("⚙ %s\n", update.Message)
			case tasks.ResolveArtist:
				r.writePlain("\n%s\n", update.Message)
			case tasks.RecordOutcome:
				r.writePlain("   %s\n", update.Message)
			case tasks.MonitorAlbums:
				r.writePlain("   %s\n", update.Message)
			case tasks.RunAborted:
				r.writePlain("\n✗ Aborted: %s\n", update.Message)
			}
		}
	}()

	result, runErr := r.engine.Run(ctx, progressCh, artists, albums, cfg)
	close(progressCh)
	<-done

	if err := runs.Finish(runID, result); err != nil {
		r.logger.Warn("failed to persist run result", "error", err)
	}

	if runErr != nil {
		return runErr
	}

	r.writePlain("\n")
	r.writePlainHeader("Migration Complete")
	r.writePlain("Added: %d\n", result.Added)
	r.writePlain("Already present: %d\n", result.Exists)
	r.writePlain("Failed: %d\n", result.Failed)
	if result.Skipped > 0 {
		r.writePlain("Skipped: %d\n", result.Skipped)
	}
	r.writePlain("Run ID: %s\n", runID)

	if outputFile != "" {
		report, err := r.formatResult(result, format)
		if err != nil {
			return err
		}
		if err := os.WriteFile(outputFile, report, 0644); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		r.writePlain("\n✓ Report written to %s\n", outputFile)
	}

	return nil
}

// MigrateHistory lists past migration runs, newest first.
func (r *Runner) MigrateHistory(ctx context.Context, cmd *cli.Command) error {
	limit := cmd.Int("limit")

	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	runs, err := repositories.NewRunRepository(db).List(int(limit))
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	if len(runs) == 0 {
		r.writePlain("No migration runs recorded.\n")
		return nil
	}

	r.writePlain("Recent migration runs:\n\n")
	for _, run := range runs {
		r.writePlain("%s  %s  started %s\n", run.ID, run.State, run.StartedAt.Format("2006-01-02 15:04:05"))
		r.writePlain("   added %d, existing %d, failed %d, skipped %d\n", run.Added, run.Existing, run.Failed, run.Skipped)
	}

	return nil
}

// MigrateOutcomes shows per-artist outcomes for a past run.
func (r *Runner) MigrateOutcomes(ctx context.Context, cmd *cli.Command) error {
	runID := cmd.StringArg("run-id")
	useJSON := cmd.Bool("json")

	if runID == "" {
		return fmt.Errorf("%w: run ID is required", shared.ErrMissingArgument)
	}

	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	outcomes, err := repositories.NewRunRepository(db).Outcomes(runID)
	if err != nil {
		return fmt.Errorf("failed to load outcomes: %w", err)
	}

	if useJSON {
		return r.writeJSON(outcomes, true)
	}

	if len(outcomes) == 0 {
		r.writePlain("No outcomes recorded for run %s.\n", runID)
		return nil
	}

	for i, o := range outcomes {
		r.writePlain("%d. %s [%s] %s\n", i+1, o.Artist, o.Status, o.Message)
	}

	return nil
}

// runConfig builds the run configuration from config file defaults and flag overrides.
func (r *Runner) runConfig(cmd *cli.Command) tasks.RunConfig {
	cfg := tasks.RunConfig{
		QualityProfileID:  r.config.Migration.QualityProfileID,
		MetadataProfileID: r.config.Migration.MetadataProfileID,
		RootFolderPath:    r.config.Migration.RootFolderPath,
		Policy:            tasks.MonitorPolicy(r.config.Migration.MonitorPolicy),
		SearchForMissing:  r.config.Migration.SearchForMissing,
	}

	if v := cmd.Int64("quality-profile"); v != 0 {
		cfg.QualityProfileID = v
	}
	if v := cmd.Int64("metadata-profile"); v != 0 {
		cfg.MetadataProfileID = v
	}
	if v := cmd.String("root-folder"); v != "" {
		cfg.RootFolderPath = v
	}
	if v := cmd.String("policy"); v != "" {
		cfg.Policy = tasks.MonitorPolicy(v)
	}
	if cmd.IsSet("search-missing") {
		cfg.SearchForMissing = cmd.Bool("search-missing")
	}

	return cfg
}

// filterArtists keeps the snapshot artists whose normalized name
// matches one of the requested names.
func filterArtists(artists []services.SourceArtist, names []string) []services.SourceArtist {
	wanted := make(map[string]struct{}, len(names))
	for _, name := range names {
		wanted[match.Normalize(name)] = struct{}{}
	}

	var out []services.SourceArtist
	for _, artist := range artists {
		if _, ok := wanted[match.Normalize(artist.Name)]; ok {
			out = append(out, artist)
		}
	}
	return out
}

func (r *Runner) formatResult(result *tasks.MigrationResult, format string) ([]byte, error) {
	switch format {
	case "json":
		return shared.MarshalJSON(result, true)
	case "csv":
		return formatter.ResultToCSV(result)
	case "markdown", "md":
		return formatter.ResultToMarkdown(result), nil
	case "text", "":
		return formatter.ResultToText(result), nil
	default:
		return nil, fmt.Errorf("%w: unknown format %q", shared.ErrInvalidFlag, format)
	}
}
