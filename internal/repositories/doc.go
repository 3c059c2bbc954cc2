// Package repositories implements SQLite persistence for the
// extraction snapshot and migration run history.
//
// Key Implementations:
//   - [SnapshotRepository] : followed artists and saved albums pulled from the source catalog
//   - [RunRepository] : migration runs and their per-artist outcomes
//
// The snapshot lets a migration be reviewed and re-run without
// re-extracting; run history exists for reporting only and is never
// used to resume a partially completed run.
package repositories
