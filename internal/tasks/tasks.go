// package tasks implements the migration pipeline from a source catalog
// into Lidarr.
//
// The core abstraction is MigrationEngine, which resolves each selected
// artist against MusicBrainz, dedupes against the Lidarr library, adds
// what is new, and optionally reconciles album monitoring. Operations
// emit progress updates via channels for non-blocking status reporting
// to CLI/UI layers.
package tasks

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/lidify/internal/match"
	"github.com/desertthunder/lidify/internal/services"
	"github.com/desertthunder/lidify/internal/shared"
)

// interItemPause spaces artists out beyond what the rate limiters
// already enforce, since each artist can fan out into several calls.
const interItemPause = 2000 * time.Millisecond

// MonitorPolicy selects which of an artist's albums Lidarr should track
// after the add.
type MonitorPolicy string

const (
	MonitorAll             MonitorPolicy = "all"
	MonitorFuture          MonitorPolicy = "future"
	MonitorMissing         MonitorPolicy = "missing"
	MonitorExisting        MonitorPolicy = "existing"
	MonitorFirst           MonitorPolicy = "first"
	MonitorLatest          MonitorPolicy = "latest"
	MonitorNone            MonitorPolicy = "none"
	MonitorSavedAlbumsOnly MonitorPolicy = "savedAlbumsOnly"
)

// Valid reports whether p is one of the accepted policies.
func (p MonitorPolicy) Valid() bool {
	switch p {
	case MonitorAll, MonitorFuture, MonitorMissing, MonitorExisting,
		MonitorFirst, MonitorLatest, MonitorNone, MonitorSavedAlbumsOnly:
		return true
	}
	return false
}

// OutcomeStatus is the terminal per-artist result of a run.
type OutcomeStatus string

const (
	StatusAdded   OutcomeStatus = "added"
	StatusExists  OutcomeStatus = "exists"
	StatusFailed  OutcomeStatus = "failed"
	StatusSkipped OutcomeStatus = "skipped"
)

// Outcome records what happened to one artist. Outcomes accumulate in
// run order and are never revised once appended.
type Outcome struct {
	Artist          string        // Source display name
	Status          OutcomeStatus // added, exists, failed, skipped
	Message         string        // Human-readable detail
	MatchedName     string        // Canonical name chosen by the matcher
	LidarrID        int64         // Target-system ID when added
	LookupResults   int           // Number of registry candidates seen
	AlbumsMonitored int           // Albums flagged by the poller
	AlbumsTotal     int           // Albums the poller saw
}

// RunState is the lifecycle of a migration run.
type RunState int

const (
	Idle RunState = iota
	Running
	Completed
	Aborted
)

func (s RunState) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Completed:
		return "completed"
	case Aborted:
		return "aborted"
	default:
		return ""
	}
}

// RunConfig is the caller-supplied configuration for one run, validated
// before any artist is touched.
type RunConfig struct {
	QualityProfileID  int64
	MetadataProfileID int64
	RootFolderPath    string
	Policy            MonitorPolicy
	SearchForMissing  bool
}

// MigrationResult contains everything a run produced.
type MigrationResult struct {
	State    RunState
	Outcomes []Outcome
	Added    int
	Exists   int
	Failed   int
	Skipped  int
}

// Library defines the Lidarr operations the pipeline needs.
// This abstraction allows for easier testing and decoupling from concrete implementation.
type Library interface {
	GetQualityProfiles(ctx context.Context) ([]services.LidarrQualityProfile, error)
	GetMetadataProfiles(ctx context.Context) ([]services.LidarrMetadataProfile, error)
	GetRootFolders(ctx context.Context) ([]services.LidarrRootFolder, error)
	GetArtists(ctx context.Context) ([]services.LidarrArtist, error)
	AddArtist(ctx context.Context, name, foreignID string, input services.LidarrAddArtistInput) (*services.LidarrArtist, error)
	GetArtistAlbums(ctx context.Context, artistID int64) ([]services.LidarrAlbum, error)
	MonitorAlbums(ctx context.Context, albumIDs []int64, monitored bool) error
	UpdateArtist(ctx context.Context, artist *services.LidarrArtist) (*services.LidarrArtist, error)
}

// Registry defines the metadata lookup the pipeline resolves names with.
type Registry interface {
	SearchArtist(ctx context.Context, name string) ([]services.MusicBrainzArtist, error)
}

// MigrationEngine orchestrates a run. Artists are processed one at a
// time in input order; a single item's failure never stops the run.
type MigrationEngine struct {
	lidarr   Library
	registry Registry
	logger   *log.Logger

	pause      time.Duration
	pollDelays []time.Duration
}

// EngineOpts overrides the engine's pacing, mainly for tests.
type EngineOpts struct {
	Pause      time.Duration
	PollDelays []time.Duration
}

// NewMigrationEngine creates an engine over the given Lidarr library
// and metadata registry.
func NewMigrationEngine(lidarr Library, registry Registry, logger *log.Logger, opts *EngineOpts) *MigrationEngine {
	e := &MigrationEngine{
		lidarr:     lidarr,
		registry:   registry,
		logger:     logger,
		pause:      interItemPause,
		pollDelays: defaultPollDelays,
	}
	if e.logger == nil {
		e.logger = log.Default()
	}
	if opts != nil {
		if opts.Pause > 0 {
			e.pause = opts.Pause
		}
		if len(opts.PollDelays) > 0 {
			e.pollDelays = opts.PollDelays
		}
	}
	return e
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *MigrationEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
		// Sent successfully
	default:
		// Channel full or closed, skip this update
	}
}

// Run migrates the selected artists. The run aborts only when required
// configuration is missing or the library cannot be listed; after that,
// every artist is processed and the run always completes.
func (e *MigrationEngine) Run(ctx context.Context, progress chan<- ProgressUpdate, artists []services.SourceArtist, albums []services.SourceAlbum, cfg RunConfig) (*MigrationResult, error) {
	result := &MigrationResult{State: Running}

	if err := e.preflight(cfg); err != nil {
		result.State = Aborted
		e.sendProgress(progress, abortedUpdate(err.Error()))
		return result, err
	}

	e.sendProgress(progress, preflightUpdate("Reading existing Lidarr artists..."))
	dedupe, err := e.seedDedupeSet(ctx)
	if err != nil {
		result.State = Aborted
		e.sendProgress(progress, abortedUpdate(err.Error()))
		return result, fmt.Errorf("failed to read existing artists: %w", err)
	}

	var savedTitles map[string][]string
	if cfg.Policy == MonitorSavedAlbumsOnly {
		savedTitles = albumTitlesByArtist(albums)
	}

	total := len(artists)
	for i, artist := range artists {
		if i > 0 {
			e.sleep(ctx, e.pause)
		}
		e.sendProgress(progress, artistUpdate(i+1, total, artist.Name))

		outcome := e.processArtist(ctx, progress, i+1, total, artist, cfg, dedupe, savedTitles)
		result.Outcomes = append(result.Outcomes, outcome)
		switch outcome.Status {
		case StatusAdded:
			result.Added++
		case StatusExists:
			result.Exists++
		case StatusFailed:
			result.Failed++
		case StatusSkipped:
			result.Skipped++
		}
		e.sendProgress(progress, outcomeUpdate(i+1, total, outcome))
	}

	result.State = Completed
	e.sendProgress(progress, completedUpdate(total))
	return result, nil
}

// preflight validates the run configuration.
func (e *MigrationEngine) preflight(cfg RunConfig) error {
	var missing []string
	if cfg.QualityProfileID == 0 {
		missing = append(missing, "quality profile")
	}
	if cfg.MetadataProfileID == 0 {
		missing = append(missing, "metadata profile")
	}
	if cfg.RootFolderPath == "" {
		missing = append(missing, "root folder")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", shared.ErrMissingConfig, strings.Join(missing, ", "))
	}
	if !cfg.Policy.Valid() {
		return fmt.Errorf("%w: unknown monitor policy %q", shared.ErrInvalidConfig, string(cfg.Policy))
	}
	return nil
}

// seedDedupeSet reads the full artist listing once and keys it by
// MusicBrainz ID. The set is extended in memory after each add and
// never re-fetched mid-run.
func (e *MigrationEngine) seedDedupeSet(ctx context.Context) (map[string]struct{}, error) {
	existing, err := e.lidarr.GetArtists(ctx)
	if err != nil {
		return nil, err
	}
	dedupe := make(map[string]struct{}, len(existing))
	for _, a := range existing {
		dedupe[a.ForeignArtistID] = struct{}{}
	}
	return dedupe, nil
}

// albumTitlesByArtist indexes saved album titles by source artist ID.
func albumTitlesByArtist(albums []services.SourceAlbum) map[string][]string {
	index := make(map[string][]string)
	for _, album := range albums {
		for _, artistID := range album.ArtistIDs {
			index[artistID] = append(index[artistID], album.Name)
		}
	}
	return index
}

// processArtist runs the per-item pipeline: lookup, match, dedupe, add,
// optional album-monitoring sync. Panics are contained here so one bad
// item cannot take down the run.
func (e *MigrationEngine) processArtist(ctx context.Context, progress chan<- ProgressUpdate, step, total int, artist services.SourceArtist, cfg RunConfig, dedupe map[string]struct{}, savedTitles map[string][]string) (outcome Outcome) {
	outcome = Outcome{Artist: artist.Name}

	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("unexpected error processing artist", "artist", artist.Name, "panic", r)
			outcome.Status = StatusFailed
			outcome.Message = "unexpected error"
		}
	}()

	results, err := e.registry.SearchArtist(ctx, artist.Name)
	if err != nil {
		outcome.Status = StatusFailed
		outcome.Message = fmt.Sprintf("MusicBrainz lookup failed: %v", err)
		return outcome
	}
	outcome.LookupResults = len(results)

	if len(results) == 0 {
		outcome.Status = StatusFailed
		outcome.Message = "no results found in MusicBrainz"
		return outcome
	}

	best, ok := match.BestMatch(artist.Name, services.Candidates(results))
	if !ok {
		outcome.Status = StatusFailed
		outcome.Message = fmt.Sprintf("no close match among %d results (top: %s)", len(results), results[0].Name)
		return outcome
	}
	outcome.MatchedName = best.Name

	if _, seen := dedupe[best.ID]; seen {
		outcome.Status = StatusExists
		outcome.Message = "already in Lidarr"
		return outcome
	}

	input := services.LidarrAddArtistInput{
		QualityProfileID:  cfg.QualityProfileID,
		MetadataProfileID: cfg.MetadataProfileID,
		RootFolderPath:    cfg.RootFolderPath,
		Monitored:         true,
		AddOptions: services.LidarrAddOptions{
			Monitor:                string(cfg.Policy),
			Monitored:              true,
			SearchForMissingAlbums: cfg.SearchForMissing,
		},
	}
	if cfg.Policy == MonitorSavedAlbumsOnly {
		// Albums are monitored selectively after the poller runs, so
		// the add itself must not monitor or search anything.
		input.AddOptions.Monitor = string(MonitorNone)
		input.AddOptions.SearchForMissingAlbums = false
	}

	added, err := e.lidarr.AddArtist(ctx, best.Name, best.ID, input)
	if err != nil {
		if isDuplicateAddError(err) {
			outcome.Status = StatusExists
			outcome.Message = "already in Lidarr"
			dedupe[best.ID] = struct{}{}
			return outcome
		}
		outcome.Status = StatusFailed
		outcome.Message = fmt.Sprintf("add failed: %v", err)
		return outcome
	}

	outcome.Status = StatusAdded
	outcome.LidarrID = added.ID
	outcome.Message = fmt.Sprintf("added as %s", best.Name)

	if cfg.Policy == MonitorSavedAlbumsOnly {
		e.sendProgress(progress, monitorAlbumsUpdate(step, total, best.Name))
		matched, totalAlbums, pollErr := e.monitorSavedAlbums(ctx, added.ID, savedTitles[artist.ID])
		if pollErr != nil {
			e.logger.Warn("album monitoring failed", "artist", best.Name, "err", pollErr)
			outcome.Message = fmt.Sprintf("added as %s (album monitoring failed)", best.Name)
		} else {
			outcome.AlbumsMonitored = matched
			outcome.AlbumsTotal = totalAlbums
			outcome.Message = fmt.Sprintf("added as %s, %d/%d albums monitored", best.Name, matched, totalAlbums)
		}

		// The monitor:none add option leaves the artist itself
		// unmonitored; flip it back now that albums are settled.
		added.Monitored = true
		if _, err := e.lidarr.UpdateArtist(ctx, added); err != nil {
			e.logger.Warn("failed to re-monitor artist", "artist", best.Name, "err", err)
		}
	}

	dedupe[best.ID] = struct{}{}
	return outcome
}

// isDuplicateAddError reports whether an add rejection means the artist
// (or its folder) is already present. Lidarr has no structured code for
// this, so the check is textual against its known error phrasing.
func isDuplicateAddError(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "already") || strings.Contains(msg, "exist")
}

// sleep waits for d or until ctx is done, whichever comes first.
func (e *MigrationEngine) sleep(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}
