package tasks

import "fmt"

// ProgressUpdate represents a progress event during a migration run.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	Preflight Phase = iota
	ResolveArtist
	RecordOutcome
	MonitorAlbums
	RunComplete
	RunAborted
)

func (p Phase) String() string {
	switch p {
	case Preflight:
		return "preflight"
	case ResolveArtist:
		return "resolve_artist"
	case RecordOutcome:
		return "record_outcome"
	case MonitorAlbums:
		return "monitor_albums"
	case RunComplete:
		return "run_complete"
	case RunAborted:
		return "run_aborted"
	default:
		return ""
	}
}

func preflightUpdate(message string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Preflight,
		Message: message,
	}
}

func artistUpdate(step, total int, name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ResolveArtist,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s", step, total, name),
	}
}

func outcomeUpdate(step, total int, outcome Outcome) ProgressUpdate {
	var mark string
	switch outcome.Status {
	case StatusAdded:
		mark = "✓"
	case StatusExists:
		mark = "•"
	default:
		mark = "✗"
	}
	return ProgressUpdate{
		Phase:   RecordOutcome,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s %s: %s", step, total, mark, outcome.Artist, outcome.Message),
		Data:    outcome,
	}
}

func monitorAlbumsUpdate(step, total int, name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   MonitorAlbums,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Waiting for albums of %s...", name),
	}
}

func completedUpdate(total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   RunComplete,
		Step:    total,
		Total:   total,
		Message: fmt.Sprintf("Migration complete: %d artists processed", total),
	}
}

func abortedUpdate(message string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   RunAborted,
		Message: message,
	}
}
