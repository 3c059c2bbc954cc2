package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/lidify/internal/shared"
	"github.com/urfave/cli/v3"
)

// LidarrStatus checks connectivity to the configured Lidarr server.
func (r *Runner) LidarrStatus(ctx context.Context, cmd *cli.Command) error {
	if r.lidarr == nil {
		return fmt.Errorf("%w: Lidarr service not initialized (set lidarr.url and lidarr.api_key in config.toml)", shared.ErrServiceUnavailable)
	}

	r.logger.Info("checking lidarr connectivity", "url", r.config.Lidarr.URL)

	status, err := r.lidarr.TestConnection(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	r.writePlain("✓ Connected to %s %s\n", status.AppName, status.Version)
	if status.OSName != "" {
		r.writePlain("  OS: %s\n", status.OSName)
	}

	quality, err := r.lidarr.GetQualityProfiles(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	metadata, err := r.lidarr.GetMetadataProfiles(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	folders, err := r.lidarr.GetRootFolders(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	r.writePlain("  Quality profiles: %d\n", len(quality))
	r.writePlain("  Metadata profiles: %d\n", len(metadata))
	r.writePlain("  Root folders: %d\n", len(folders))

	return nil
}

// LidarrProfiles lists quality and metadata profiles.
func (r *Runner) LidarrProfiles(ctx context.Context, cmd *cli.Command) error {
	useJSON := cmd.Bool("json")
	pretty := cmd.Bool("pretty")

	if r.lidarr == nil {
		return fmt.Errorf("%w: Lidarr service not initialized", shared.ErrServiceUnavailable)
	}

	quality, err := r.lidarr.GetQualityProfiles(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	metadata, err := r.lidarr.GetMetadataProfiles(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	if useJSON {
		return r.writeJSON(map[string]any{
			"quality":  quality,
			"metadata": metadata,
		}, pretty)
	}

	r.writePlain("Quality profiles:\n")
	for _, p := range quality {
		r.writePlain("  %d. %s\n", p.ID, p.Name)
	}

	r.writePlain("\nMetadata profiles:\n")
	for _, p := range metadata {
		r.writePlain("  %d. %s\n", p.ID, p.Name)
	}

	return nil
}

// LidarrRootFolders lists configured root folders.
func (r *Runner) LidarrRootFolders(ctx context.Context, cmd *cli.Command) error {
	useJSON := cmd.Bool("json")

	if r.lidarr == nil {
		return fmt.Errorf("%w: Lidarr service not initialized", shared.ErrServiceUnavailable)
	}

	folders, err := r.lidarr.GetRootFolders(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	if useJSON {
		return r.writeJSON(folders, false)
	}

	r.writePlain("Root folders:\n")
	for _, f := range folders {
		marker := "✓"
		if !f.Accessible {
			marker = "✗"
		}
		r.writePlain("  %s %s (%.1f GB free)\n", marker, f.Path, float64(f.FreeSpace)/(1<<30))
	}

	return nil
}

// LidarrArtists lists artists already present in the library.
func (r *Runner) LidarrArtists(ctx context.Context, cmd *cli.Command) error {
	useJSON := cmd.Bool("json")

	if r.lidarr == nil {
		return fmt.Errorf("%w: Lidarr service not initialized", shared.ErrServiceUnavailable)
	}

	artists, err := r.lidarr.GetArtists(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	if useJSON {
		return r.writeJSON(artists, false)
	}

	r.writePlain("Library contains %d artists:\n\n", len(artists))
	for i, a := range artists {
		monitored := "monitored"
		if !a.Monitored {
			monitored = "unmonitored"
		}
		r.writePlain("%d. %s (%s)\n", i+1, a.ArtistName, monitored)
	}

	return nil
}
