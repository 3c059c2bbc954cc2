package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/lidify/internal/shared"
	"github.com/desertthunder/lidify/internal/tasks"
)

// Run is a persisted migration run header.
type Run struct {
	ID         string
	State      string
	StartedAt  time.Time
	FinishedAt *time.Time
	Added      int
	Existing   int
	Failed     int
	Skipped    int
}

// RunRepository records migration runs and their outcomes for later
// reporting.
type RunRepository struct {
	db *sql.DB
}

// NewRunRepository creates a new RunRepository with the given database connection
func NewRunRepository(db *sql.DB) *RunRepository {
	return &RunRepository{db: db}
}

// Create inserts a run header in the running state and returns its ID.
func (r *RunRepository) Create() (string, error) {
	id := shared.GenerateID()
	_, err := r.db.Exec(
		"INSERT INTO runs (id, state, started_at) VALUES (?, ?, ?)",
		id, tasks.Running.String(), time.Now(),
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert run: %w", err)
	}
	return id, nil
}

// Finish writes the run's terminal state, counters, and outcomes.
func (r *RunRepository) Finish(id string, result *tasks.MigrationResult) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		"UPDATE runs SET state = ?, finished_at = ?, added = ?, existing = ?, failed = ?, skipped = ? WHERE id = ?",
		result.State.String(), time.Now(), result.Added, result.Exists, result.Failed, result.Skipped, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update run: %w", err)
	}

	for i, outcome := range result.Outcomes {
		_, err := tx.Exec(
			`INSERT INTO outcomes
				(run_id, position, artist, status, message, matched_name, lidarr_id, lookup_results, albums_monitored, albums_total)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			id, i, outcome.Artist, string(outcome.Status), outcome.Message, outcome.MatchedName,
			outcome.LidarrID, outcome.LookupResults, outcome.AlbumsMonitored, outcome.AlbumsTotal,
		)
		if err != nil {
			return fmt.Errorf("failed to insert outcome %d: %w", i, err)
		}
	}

	return tx.Commit()
}

// List returns run headers, newest first.
func (r *RunRepository) List(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.Query(
		"SELECT id, state, started_at, finished_at, added, existing, failed, skipped FROM runs ORDER BY started_at DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		var finished sql.NullTime
		if err := rows.Scan(&run.ID, &run.State, &run.StartedAt, &finished, &run.Added, &run.Existing, &run.Failed, &run.Skipped); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		if finished.Valid {
			t := finished.Time
			run.FinishedAt = &t
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Outcomes returns one run's outcomes in pipeline order.
func (r *RunRepository) Outcomes(runID string) ([]tasks.Outcome, error) {
	rows, err := r.db.Query(
		`SELECT artist, status, message, matched_name, lidarr_id, lookup_results, albums_monitored, albums_total
		FROM outcomes WHERE run_id = ? ORDER BY position`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query outcomes: %w", err)
	}
	defer rows.Close()

	var outcomes []tasks.Outcome
	for rows.Next() {
		var o tasks.Outcome
		var status string
		if err := rows.Scan(&o.Artist, &status, &o.Message, &o.MatchedName, &o.LidarrID, &o.LookupResults, &o.AlbumsMonitored, &o.AlbumsTotal); err != nil {
			return nil, fmt.Errorf("failed to scan outcome: %w", err)
		}
		o.Status = tasks.OutcomeStatus(status)
		outcomes = append(outcomes, o)
	}
	return outcomes, rows.Err()
}
