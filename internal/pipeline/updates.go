package pipeline

import (
	"fmt"

	"github.com/desertthunder/continuum/internal/models"
)

// Update represents a progress event during a pipeline run.
type Update struct {
	Phase    Phase                // Operation phase
	Progress models.ProgressState // Lookups completed so far
	Message  string               // Human-readable message for display
}

// ProgressFunc receives updates on the goroutine running the pipeline.
type ProgressFunc func(Update)

// Phase enumerates the steps of a pipeline run.
type Phase int

const (
	Enrich Phase = iota
	Solve
)

func (p Phase) String() string {
	switch p {
	case Enrich:
		return "enrich"
	case Solve:
		return "solve"
	default:
		return ""
	}
}

func lookupUpdate(step, total int, tr models.RawTrack) Update {
	return Update{
		Phase:    Enrich,
		Progress: models.ProgressState{Completed: step, Total: total, Label: tr.Name},
		Message:  fmt.Sprintf("[%d/%d] %s - %s", step+1, total, tr.Artist, tr.Name),
	}
}

func enrichedUpdate(total, found int) Update {
	return Update{
		Phase:    Enrich,
		Progress: models.ProgressState{Completed: total, Total: total, Finished: true},
		Message:  fmt.Sprintf("Found features for %d of %d tracks", found, total),
	}
}

func solvingUpdate(total, count int, minutes float64) Update {
	return Update{
		Phase:    Solve,
		Progress: models.ProgressState{Completed: total, Total: total, Finished: true},
		Message:  fmt.Sprintf("Solving a %.0f minute mix from %d tracks...", minutes, count),
	}
}
