package pipeline

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/continuum/internal/models"
	"golang.org/x/time/rate"
)

// Backend is the part of the gateway the pipeline calls.
type Backend interface {
	LookupFeatures(ctx context.Context, track models.RawTrack) (models.EnrichedTrack, bool, error)
	Solve(ctx context.Context, tracks []models.EnrichedTrack, minutes float64) (models.Mix, error)
}

// EngineOpts configures an [Engine].
type EngineOpts struct {
	RequestsPerSecond float64 // Lookup pacing; 0 disables it
	Burst             int     // Lookups allowed back to back (default: 1)
	Logger            *log.Logger
}

// Engine runs enrichment and solve against a [Backend].
type Engine struct {
	backend Backend
	limiter *rate.Limiter
	logger  *log.Logger
}

// NewEngine creates an Engine.
func NewEngine(backend Backend, opts EngineOpts) *Engine {
	e := &Engine{backend: backend, logger: opts.Logger}
	if e.logger == nil {
		e.logger = log.New(io.Discard)
	}
	if opts.RequestsPerSecond > 0 {
		if opts.Burst <= 0 {
			opts.Burst = 1
		}
		e.limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), opts.Burst)
	}
	return e
}

func report(progress ProgressFunc, u Update) {
	if progress != nil {
		progress(u)
	}
}

// Enrich looks up features for every track in order and returns the ones that were found.
//
// The returned slice is never longer than tracks and keeps input order. Any lookup error
// aborts the run and is returned as is.
func (e *Engine) Enrich(ctx context.Context, tracks []models.RawTrack, progress ProgressFunc) ([]models.EnrichedTrack, error) {
	total := len(tracks)
	enriched := make([]models.EnrichedTrack, 0, total)

	for i, track := range tracks {
		report(progress, lookupUpdate(i, total, track))

		if e.limiter != nil {
			if err := e.limiter.Wait(ctx); err != nil {
				return nil, fmt.Errorf("enrichment interrupted: %w", err)
			}
		}

		result, found, err := e.backend.LookupFeatures(ctx, track)
		if err != nil {
			e.logger.Warn("feature lookup failed, aborting enrichment", "position", i+1, "total", total)
			return nil, err
		}
		if !found {
			e.logger.Debug("no features", "track", track.ID)
			continue
		}

		result.RawTrack = track
		enriched = append(enriched, result)
	}

	report(progress, enrichedUpdate(total, len(enriched)))
	e.logger.Info("enrichment finished", "found", len(enriched), "total", total)
	return enriched, nil
}

// Run enriches tracks and solves the result into a mix of about minutes length.
func (e *Engine) Run(ctx context.Context, tracks []models.RawTrack, minutes float64, progress ProgressFunc) (models.Mix, error) {
	enriched, err := e.Enrich(ctx, tracks, progress)
	if err != nil {
		return nil, err
	}

	report(progress, solvingUpdate(len(tracks), len(enriched), minutes))

	mix, err := e.backend.Solve(ctx, enriched, minutes)
	if err != nil {
		return nil, err
	}

	e.logger.Info("mix solved", "tracks", mix.Len(), "duration", mix.TotalDuration())
	return mix, nil
}
