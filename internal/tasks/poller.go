package tasks

import (
	"context"
	"time"

	"github.com/desertthunder/lidify/internal/match"
	"github.com/desertthunder/lidify/internal/services"
)

// defaultPollDelays is how long the poller waits before each album
// fetch. Lidarr populates albums asynchronously after an add, usually
// within a few seconds.
var defaultPollDelays = []time.Duration{
	2 * time.Second,
	4 * time.Second,
	8 * time.Second,
}

// monitorSavedAlbums waits for Lidarr to materialize the artist's album
// list, then flags the albums matching the user's saved titles as
// monitored in one bulk call. Returns (matched, total fetched). Three
// empty fetches yield (0, 0) without error: an artist with no
// catalogued releases is not a failure.
func (e *MigrationEngine) monitorSavedAlbums(ctx context.Context, artistID int64, savedTitles []string) (int, int, error) {
	albums, err := e.waitForAlbums(ctx, artistID)
	if err != nil {
		return 0, 0, err
	}
	if len(albums) == 0 {
		return 0, 0, nil
	}

	var matchedIDs []int64
	for _, album := range albums {
		for _, title := range savedTitles {
			if match.SameAlbum(album.Title, title) {
				matchedIDs = append(matchedIDs, album.ID)
				break
			}
		}
	}

	if len(matchedIDs) > 0 {
		if err := e.lidarr.MonitorAlbums(ctx, matchedIDs, true); err != nil {
			return 0, len(albums), err
		}
	}
	return len(matchedIDs), len(albums), nil
}

// waitForAlbums fetches the artist's albums after each configured
// delay, stopping at the first non-empty result.
func (e *MigrationEngine) waitForAlbums(ctx context.Context, artistID int64) ([]services.LidarrAlbum, error) {
	var lastErr error
	for _, delay := range e.pollDelays {
		e.sleep(ctx, delay)
		albums, err := e.lidarr.GetArtistAlbums(ctx, artistID)
		if err != nil {
			lastErr = err
			continue
		}
		if len(albums) > 0 {
			return albums, nil
		}
		lastErr = nil
	}
	return nil, lastErr
}
