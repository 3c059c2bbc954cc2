package repositories

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/lidify/internal/services"
)

// SnapshotRepository persists the artists and albums extracted from the
// source catalog. Writing a new snapshot replaces the previous one:
// extraction is cheap to redo and stale rows would silently skew a run.
type SnapshotRepository struct {
	db *sql.DB
}

// NewSnapshotRepository creates a new SnapshotRepository with the given database connection
func NewSnapshotRepository(db *sql.DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

// SaveArtists replaces the stored artist snapshot.
func (r *SnapshotRepository) SaveArtists(artists []services.SourceArtist) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM artists"); err != nil {
		return fmt.Errorf("failed to clear artist snapshot: %w", err)
	}

	now := time.Now()
	for _, artist := range artists {
		_, err := tx.Exec(
			"INSERT INTO artists (id, name, genres, extracted_at) VALUES (?, ?, ?, ?)",
			artist.ID, artist.Name, strings.Join(artist.Genres, ","), now,
		)
		if err != nil {
			return fmt.Errorf("failed to insert artist %s: %w", artist.ID, err)
		}
	}

	return tx.Commit()
}

// SaveAlbums replaces the stored album snapshot.
func (r *SnapshotRepository) SaveAlbums(albums []services.SourceAlbum) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM albums"); err != nil {
		return fmt.Errorf("failed to clear album snapshot: %w", err)
	}

	now := time.Now()
	for _, album := range albums {
		_, err := tx.Exec(
			"INSERT INTO albums (id, name, release_date, artist_ids, extracted_at) VALUES (?, ?, ?, ?, ?)",
			album.ID, album.Name, album.ReleaseDate, strings.Join(album.ArtistIDs, ","), now,
		)
		if err != nil {
			return fmt.Errorf("failed to insert album %s: %w", album.ID, err)
		}
	}

	return tx.Commit()
}

// Artists returns the stored artist snapshot in extraction order.
func (r *SnapshotRepository) Artists() ([]services.SourceArtist, error) {
	rows, err := r.db.Query("SELECT id, name, genres FROM artists ORDER BY rowid")
	if err != nil {
		return nil, fmt.Errorf("failed to query artists: %w", err)
	}
	defer rows.Close()

	var artists []services.SourceArtist
	for rows.Next() {
		var artist services.SourceArtist
		var genres string
		if err := rows.Scan(&artist.ID, &artist.Name, &genres); err != nil {
			return nil, fmt.Errorf("failed to scan artist: %w", err)
		}
		artist.Genres = splitList(genres)
		artists = append(artists, artist)
	}
	return artists, rows.Err()
}

// Albums returns the stored album snapshot in extraction order.
func (r *SnapshotRepository) Albums() ([]services.SourceAlbum, error) {
	rows, err := r.db.Query("SELECT id, name, release_date, artist_ids FROM albums ORDER BY rowid")
	if err != nil {
		return nil, fmt.Errorf("failed to query albums: %w", err)
	}
	defer rows.Close()

	var albums []services.SourceAlbum
	for rows.Next() {
		var album services.SourceAlbum
		var artistIDs string
		if err := rows.Scan(&album.ID, &album.Name, &album.ReleaseDate, &artistIDs); err != nil {
			return nil, fmt.Errorf("failed to scan album: %w", err)
		}
		album.ArtistIDs = splitList(artistIDs)
		albums = append(albums, album)
	}
	return albums, rows.Err()
}

// Clear drops both snapshots.
func (r *SnapshotRepository) Clear() error {
	if _, err := r.db.Exec("DELETE FROM albums"); err != nil {
		return fmt.Errorf("failed to clear albums: %w", err)
	}
	if _, err := r.db.Exec("DELETE FROM artists"); err != nil {
		return fmt.Errorf("failed to clear artists: %w", err)
	}
	return nil
}

// Counts reports how many artists and albums are stored.
func (r *SnapshotRepository) Counts() (artists, albums int, err error) {
	if err = r.db.QueryRow("SELECT COUNT(*) FROM artists").Scan(&artists); err != nil {
		return 0, 0, fmt.Errorf("failed to count artists: %w", err)
	}
	if err = r.db.QueryRow("SELECT COUNT(*) FROM albums").Scan(&albums); err != nil {
		return 0, 0, fmt.Errorf("failed to count albums: %w", err)
	}
	return artists, albums, nil
}

// splitList reverses strings.Join on a comma-separated column, keeping
// nil for the empty string.
func splitList(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}
