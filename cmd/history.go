package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/continuum/internal/formatter"
	"github.com/desertthunder/continuum/internal/models"
	"github.com/desertthunder/continuum/internal/repositories"
	"github.com/desertthunder/continuum/internal/shared"
	"github.com/urfave/cli/v3"
)

// historyEntry is the JSON form of a listed mix.
type historyEntry struct {
	Number        int     `json:"number"`
	ID            string  `json:"id"`
	AuthMode      string  `json:"auth_mode"`
	SourceMode    string  `json:"source_mode"`
	Input         string  `json:"input"`
	TargetMinutes float64 `json:"target_minutes"`
	Tracks        int     `json:"tracks"`
	SavedURL      string  `json:"saved_url,omitempty"`
	CreatedAt     string  `json:"created_at"`
}

// HistoryList lists recorded mixes, newest first.
func (r *Runner) HistoryList(ctx context.Context, cmd *cli.Command) error {
	mixes, closeHistory, err := r.openHistory()
	if err != nil {
		return err
	}
	defer closeHistory()

	criteria := map[string]any{"limit": cmd.Int("limit")}
	if source := cmd.String("source"); source != "" {
		mode, err := models.ParseSourceMode(source)
		if err != nil {
			return fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
		}
		criteria["source_mode"] = mode.String()
	}
	if cmd.Bool("saved") {
		criteria["saved"] = true
	}

	records, err := mixes.List(criteria)
	if err != nil {
		return err
	}
	counts, err := mixes.CountTracks()
	if err != nil {
		return err
	}

	entries := make([]historyEntry, 0, len(records))
	for _, rec := range records {
		entries = append(entries, historyEntry{
			Number:        rec.Sequence(),
			ID:            rec.ID(),
			AuthMode:      rec.AuthMode().String(),
			SourceMode:    rec.SourceMode().String(),
			Input:         rec.Input(),
			TargetMinutes: rec.TargetMinutes(),
			Tracks:        counts[rec.ID()],
			SavedURL:      rec.SavedURL(),
			CreatedAt:     rec.CreatedAt().Format("2006-01-02 15:04"),
		})
	}

	if cmd.Bool("json") {
		return r.writeJSON(entries, true)
	}

	if len(entries) == 0 {
		return r.writePlain("No mixes recorded yet. Run 'continuum mix' or 'continuum tui'.\n")
	}

	r.writePlain("Found %d mixes:\n\n", len(entries))
	for _, e := range entries {
		r.writePlain("#%d  %s  %s %q  %d tracks / %.0f min\n", e.Number, e.CreatedAt, e.SourceMode, e.Input, e.Tracks, e.TargetMinutes)
		if e.SavedURL != "" {
			r.writePlain("     Saved: %s\n", e.SavedURL)
		}
	}
	return nil
}

// HistoryShow prints one recorded mix.
func (r *Runner) HistoryShow(ctx context.Context, cmd *cli.Command) error {
	_, rec, closeHistory, err := r.historyRecord(cmd)
	if err != nil {
		return err
	}
	defer closeHistory()

	if cmd.Bool("json") {
		data, err := formatter.ExportToJSON(rec)
		if err != nil {
			return err
		}
		return r.writePlain("%s\n", data)
	}

	data, err := formatter.ExportToMarkdown(rec)
	if err != nil {
		return err
	}
	return r.writePlain("%s", data)
}

// HistoryExport writes one recorded mix in the requested format.
func (r *Runner) HistoryExport(ctx context.Context, cmd *cli.Command) error {
	_, rec, closeHistory, err := r.historyRecord(cmd)
	if err != nil {
		return err
	}
	defer closeHistory()

	files, err := formatter.WriteExport(rec, cmd.String("format"), cmd.String("output"))
	if err != nil {
		return err
	}

	r.logger.Info("mix exported", "number", rec.Sequence(), "files", files)
	for _, f := range files {
		r.writePlain("✓ Wrote %s\n", f)
	}
	return nil
}

// HistoryDelete soft-deletes one recorded mix.
func (r *Runner) HistoryDelete(ctx context.Context, cmd *cli.Command) error {
	mixes, rec, closeHistory, err := r.historyRecord(cmd)
	if err != nil {
		return err
	}
	defer closeHistory()

	if err := mixes.Delete(rec.ID()); err != nil {
		return err
	}
	return r.writePlain("✓ Deleted mix #%d\n", rec.Sequence())
}

// historyRecord resolves the "number" argument to a record. The close func releases the database.
func (r *Runner) historyRecord(cmd *cli.Command) (*repositories.MixRepository, *models.MixRecord, func(), error) {
	number := cmd.IntArg("number")
	if number <= 0 {
		return nil, nil, func() {}, fmt.Errorf("%w: mix number", shared.ErrMissingArgument)
	}

	mixes, closeHistory, err := r.openHistory()
	if err != nil {
		return nil, nil, closeHistory, err
	}

	rec, err := mixes.GetBySequence(number)
	if err != nil {
		closeHistory()
		return nil, nil, func() {}, err
	}
	return mixes, rec, closeHistory, nil
}
