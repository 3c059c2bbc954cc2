package main

import (
	"errors"
	"strings"
	"testing"

	"github.com/desertthunder/lidify/internal/services"
	"github.com/desertthunder/lidify/internal/shared"
	"github.com/desertthunder/lidify/internal/tasks"
)

func TestFilterArtists(t *testing.T) {
	artists := []services.SourceArtist{
		{ID: "1", Name: "Boards of Canada"},
		{ID: "2", Name: "Four Tet"},
		{ID: "3", Name: "Caribou"},
	}

	tests := []struct {
		name    string
		names   []string
		wantIDs []string
	}{
		{
			name:    "exact names",
			names:   []string{"Four Tet"},
			wantIDs: []string{"2"},
		},
		{
			name:    "case and punctuation insensitive",
			names:   []string{"boards of canada!", "CARIBOU"},
			wantIDs: []string{"1", "3"},
		},
		{
			name:    "unknown names drop everything",
			names:   []string{"Aphex Twin"},
			wantIDs: nil,
		},
		{
			name:    "preserves snapshot order",
			names:   []string{"Caribou", "Boards of Canada"},
			wantIDs: []string{"1", "3"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := filterArtists(artists, tt.names)
			if len(got) != len(tt.wantIDs) {
				t.Fatalf("filtered to %d artists, want %d", len(got), len(tt.wantIDs))
			}
			for i, artist := range got {
				if artist.ID != tt.wantIDs[i] {
					t.Errorf("artist %d is %q, want ID %q", i, artist.ID, tt.wantIDs[i])
				}
			}
		})
	}
}

func TestFormatResult(t *testing.T) {
	runner := NewRunner(RunnerOpts{})
	result := &tasks.MigrationResult{
		State: tasks.Completed,
		Outcomes: []tasks.Outcome{
			{Artist: "Caribou", Status: tasks.StatusAdded, MatchedName: "Caribou", LidarrID: 42},
		},
		Added: 1,
	}

	t.Run("text", func(t *testing.T) {
		out, err := runner.formatResult(result, "text")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(string(out), "Caribou") {
			t.Errorf("text report missing artist, got %s", out)
		}
	})

	t.Run("empty format defaults to text", func(t *testing.T) {
		out, err := runner.formatResult(result, "")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(string(out), "Caribou") {
			t.Errorf("default report missing artist, got %s", out)
		}
	})

	t.Run("json", func(t *testing.T) {
		out, err := runner.formatResult(result, "json")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(string(out), `"Caribou"`) {
			t.Errorf("json report missing artist, got %s", out)
		}
	})

	t.Run("csv", func(t *testing.T) {
		out, err := runner.formatResult(result, "csv")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.HasPrefix(string(out), "Artist,") {
			t.Errorf("csv report missing header, got %s", out)
		}
	})

	t.Run("markdown alias", func(t *testing.T) {
		out, err := runner.formatResult(result, "md")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(string(out), "# Migration Report") {
			t.Errorf("markdown report missing heading, got %s", out)
		}
	})

	t.Run("unknown format", func(t *testing.T) {
		_, err := runner.formatResult(result, "yaml")
		if !errors.Is(err, shared.ErrInvalidFlag) {
			t.Errorf("expected ErrInvalidFlag, got %v", err)
		}
	})
}
