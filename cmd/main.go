package main

import (
	"context"
	"os"

	"github.com/desertthunder/lidify/internal/services"
	"github.com/desertthunder/lidify/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)

	config := shared.DefaultConfig()
	if _, err := os.Stat("config.toml"); err == nil {
		if loadedConfig, err := shared.LoadConfig("config.toml"); err == nil {
			config = loadedConfig
		}
	}

	var spotifyService services.Source
	if config.Credentials.Spotify.ClientID != "" && config.Credentials.Spotify.ClientSecret != "" {
		if svc, err := services.NewSpotifyService(config.Credentials.Spotify.Map()); err == nil {
			if token := config.Credentials.Spotify.Token(); token != nil {
				if err := svc.OAuthenticate(context.Background(), token); err != nil {
					logger.Warnf("stored spotify token rejected: %v", err)
				}
			}
			spotifyService = svc
		}
	}

	var lidarrService *services.LidarrService
	if config.Lidarr.URL != "" && config.Lidarr.APIKey != "" {
		if svc, err := services.NewLidarrService(config.Lidarr.URL, config.Lidarr.APIKey, nil); err == nil {
			lidarrService = svc
		}
	}

	registry, err := services.NewMusicBrainzService(config.MusicBrainz.UserAgent(), nil)
	if err != nil {
		logger.Fatalf("failed to create MusicBrainz service: %v", err)
	}

	runner := NewRunner(RunnerOpts{
		Config:   config,
		Spotify:  spotifyService,
		Lidarr:   lidarrService,
		Registry: registry,
		Logger:   logger,
	})

	app := &cli.Command{
		Name:     "lidify",
		Usage:    "Migrate followed Spotify artists into a Lidarr library",
		Version:  "0.1.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		logger.Fatalf("application error: %v", err)
	}
}
