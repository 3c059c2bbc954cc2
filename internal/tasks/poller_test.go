package tasks

import (
	"context"
	"fmt"
	"testing"

	"github.com/desertthunder/lidify/internal/services"
)

func TestMonitorSavedAlbums(t *testing.T) {
	t.Run("matches saved titles against fetched albums", func(t *testing.T) {
		lib := &mockLibrary{
			albumFetches: [][]services.LidarrAlbum{
				{
					{ID: 1, Title: "Abbey Road", ArtistID: 7},
					{ID: 2, Title: "Yellow Submarine", ArtistID: 7},
				},
			},
		}
		engine := testEngine(lib, &mockRegistry{})

		matched, total, err := engine.monitorSavedAlbums(context.Background(), 7, []string{"Abbey Road"})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if matched != 1 || total != 2 {
			t.Errorf("expected (1, 2), got (%d, %d)", matched, total)
		}
		if len(lib.monitorCalls) != 1 || lib.monitorCalls[0][0] != 1 {
			t.Errorf("expected bulk monitor call for album 1, got %v", lib.monitorCalls)
		}
	})

	t.Run("reissue title matches by containment", func(t *testing.T) {
		lib := &mockLibrary{
			albumFetches: [][]services.LidarrAlbum{
				{
					{ID: 1, Title: "Abbey Road (Remastered)", ArtistID: 7},
					{ID: 2, Title: "Let It Be", ArtistID: 7},
				},
			},
		}
		engine := testEngine(lib, &mockRegistry{})

		matched, total, err := engine.monitorSavedAlbums(context.Background(), 7, []string{"Abbey Road"})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if matched != 1 || total != 2 {
			t.Errorf("expected (1, 2), got (%d, %d)", matched, total)
		}
		if len(lib.monitorCalls) != 1 || lib.monitorCalls[0][0] != 1 {
			t.Errorf("expected bulk monitor call for album 1, got %v", lib.monitorCalls)
		}
	})

	t.Run("near-identical titles match by similarity", func(t *testing.T) {
		lib := &mockLibrary{
			albumFetches: [][]services.LidarrAlbum{
				{{ID: 1, Title: "Abbey Road", ArtistID: 7}},
			},
		}
		engine := testEngine(lib, &mockRegistry{})

		// "Abbey Roads" is not an exact match but clears the similarity bar.
		matched, total, err := engine.monitorSavedAlbums(context.Background(), 7, []string{"Abbey Roads"})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if matched != 1 || total != 1 {
			t.Errorf("expected (1, 1), got (%d, %d)", matched, total)
		}
	})

	t.Run("unrelated titles do not match", func(t *testing.T) {
		lib := &mockLibrary{
			albumFetches: [][]services.LidarrAlbum{
				{{ID: 1, Title: "Let It Be", ArtistID: 7}},
			},
		}
		engine := testEngine(lib, &mockRegistry{})

		matched, total, err := engine.monitorSavedAlbums(context.Background(), 7, []string{"Abbey Road"})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if matched != 0 || total != 1 {
			t.Errorf("expected (0, 1), got (%d, %d)", matched, total)
		}

		// Nothing matched, so no monitor call goes out.
		if len(lib.monitorCalls) != 0 {
			t.Errorf("expected no monitor calls, got %v", lib.monitorCalls)
		}
	})

	t.Run("three empty fetches succeed with nothing to monitor", func(t *testing.T) {
		lib := &mockLibrary{}
		engine := testEngine(lib, &mockRegistry{})

		matched, total, err := engine.monitorSavedAlbums(context.Background(), 7, []string{"Abbey Road"})
		if err != nil {
			t.Fatalf("expected no error for empty album list, got %v", err)
		}
		if matched != 0 || total != 0 {
			t.Errorf("expected (0, 0), got (%d, %d)", matched, total)
		}
		if len(lib.monitorCalls) != 0 {
			t.Errorf("expected no monitor calls, got %v", lib.monitorCalls)
		}
	})

	t.Run("stops polling at first non-empty fetch", func(t *testing.T) {
		lib := &mockLibrary{
			albumFetches: [][]services.LidarrAlbum{
				{},
				{{ID: 1, Title: "Abbey Road", ArtistID: 7}},
				{{ID: 99, Title: "Should Never Be Fetched", ArtistID: 7}},
			},
		}
		engine := testEngine(lib, &mockRegistry{})

		matched, total, err := engine.monitorSavedAlbums(context.Background(), 7, []string{"Abbey Road"})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if matched != 1 || total != 1 {
			t.Errorf("expected (1, 1) from the second fetch, got (%d, %d)", matched, total)
		}
		if lib.fetchIndex != 2 {
			t.Errorf("expected polling to stop after the second fetch, got %d fetches", lib.fetchIndex)
		}
	})

	t.Run("persistent fetch errors surface", func(t *testing.T) {
		lib := &mockLibrary{getAlbumsErr: fmt.Errorf("lidarr 500 on GET /album: boom")}
		engine := testEngine(lib, &mockRegistry{})

		_, _, err := engine.monitorSavedAlbums(context.Background(), 7, []string{"Abbey Road"})
		if err == nil {
			t.Fatal("expected error when every fetch fails")
		}
	})

	t.Run("monitor call failure surfaces with total", func(t *testing.T) {
		lib := &mockLibrary{
			albumFetches: [][]services.LidarrAlbum{
				{{ID: 1, Title: "Abbey Road", ArtistID: 7}},
			},
			monitorErr: fmt.Errorf("lidarr 500 on PUT /album/monitor: boom"),
		}
		engine := testEngine(lib, &mockRegistry{})

		matched, total, err := engine.monitorSavedAlbums(context.Background(), 7, []string{"Abbey Road"})
		if err == nil {
			t.Fatal("expected error from monitor call")
		}
		if matched != 0 || total != 1 {
			t.Errorf("expected (0, 1) on monitor failure, got (%d, %d)", matched, total)
		}
	})
}
