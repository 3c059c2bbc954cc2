// Package tasks orchestrates the migration of source-library artists into Lidarr with real-time progress reporting.
//
// # Core Operation
//
// [MigrationEngine.Run] executes one migration:
//
//  1. Preflight : validates quality profile, metadata profile, root folder
//     and monitor policy before any artist is touched. A failed preflight
//     aborts the run with zero outcomes.
//  2. Dedupe seeding : the Lidarr artist list is fetched once and keyed by
//     MusicBrainz ID. The set is extended in memory after every add and
//     never re-fetched mid-run.
//  3. Per-artist pipeline : MusicBrainz lookup → candidate matching →
//     dedupe check → add → optional album-monitoring sync. Artists are
//     processed strictly one at a time in input order with a pause between
//     items; one item's failure, or even panic, never stops the run.
//
// # Album Monitoring
//
// Under the savedAlbumsOnly policy the engine adds each artist with
// monitoring disabled, waits for Lidarr to materialize the album list,
// flags the albums matching the user's saved titles in one bulk call,
// then re-monitors the artist itself.
//
// # Progress Reporting
//
// All operations use non-blocking channels for progress updates.
//
// The [ProgressUpdate] struct contains phase, step counters, messages, and optional data for advanced UI rendering.
// Updates use select with default to prevent blocking.
//
// # Implementation
//
// [MigrationEngine] depends on:
//   - [Library] : the Lidarr API client (services.LidarrService)
//   - [Registry] : the MusicBrainz search client (services.MusicBrainzService)
package tasks
