package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/desertthunder/continuum/internal/formatter"
	"github.com/desertthunder/continuum/internal/models"
	"github.com/desertthunder/continuum/internal/shared"
	"github.com/desertthunder/continuum/internal/workflow"
	"github.com/urfave/cli/v3"
)

// Mix runs the workflow headlessly: authorize, fetch, enrich, solve, then export and optionally save.
func (r *Runner) Mix(ctx context.Context, cmd *cli.Command) error {
	authFlag := cmd.String("auth")
	if authFlag == "" {
		authFlag = r.config.Auth.DefaultMode
	}
	authMode, err := models.ParseAuthMode(authFlag)
	if err != nil {
		return err
	}

	sourceMode, err := models.ParseSourceMode(cmd.String("source"))
	if err != nil {
		return err
	}

	minutes := r.config.Mix.DefaultMinutes
	if cmd.IsSet("minutes") {
		minutes = cmd.Float("minutes")
	}

	exportPath := cmd.String("export")
	if exportPath == "" {
		exportPath = r.config.Mix.ExportPath
	}

	if cmd.Bool("save") && !authMode.CanSave() {
		return fmt.Errorf("%w: --save requires --auth user", shared.ErrInvalidArgument)
	}

	mixes, closeHistory := r.optionalHistory()
	defer closeHistory()

	machine := r.newMachine(mixes)
	if !cmd.Bool("json") {
		machine.SetObserver(r.progressReporter())
	}

	if err := machine.SubmitAuth(ctx, authMode); err != nil {
		return err
	}

	if url, pending := machine.Snapshot().PendingURL(); pending {
		redirect, err := r.awaitRedirect(ctx, url, r.callbackAddr(cmd), cmd.Bool("open"))
		if err != nil {
			return r.abandonAuth(machine, err)
		}
		if err := machine.CompleteAuth(ctx, redirect); err != nil {
			return err
		}
		r.writePlain("✓ Authorized\n")
	}

	if err := machine.SubmitSource(ctx, sourceMode, cmd.String("input"), minutes); err != nil {
		return err
	}

	text, err := machine.Export()
	if err != nil {
		return err
	}
	if err := os.WriteFile(exportPath, []byte(text), 0644); err != nil {
		return fmt.Errorf("failed to write text file: %w", err)
	}
	r.logger.Info("mix exported", "path", exportPath)

	if cmd.Bool("save") {
		if err := machine.Save(ctx); err != nil {
			r.logger.Warn("failed to save playlist", "error", machine.Snapshot().ErrorMessage())
			r.writePlain("⚠ Saving failed: %s\n", machine.Snapshot().ErrorMessage())
		}
	}

	snap := machine.Snapshot()
	if cmd.Bool("json") {
		return r.writeJSON(snap.Mix(), true)
	}

	r.writeMix(snap.Mix())
	r.writePlain("\n✓ Exported to %s\n", exportPath)
	if saved := snap.Saved(); saved != nil {
		r.writePlain("✓ Saved playlist: %s\n", saved.URL)
	}
	return nil
}

// abandonAuth leaves the pending authorization after the redirect could not be obtained.
func (r *Runner) abandonAuth(machine *workflow.Machine, cause error) error {
	if err := machine.CancelAuth(); err != nil {
		r.logger.Warn("failed to cancel authorization", "error", err)
		return errors.Join(cause, err)
	}
	return cause
}

// progressReporter prints each new processing message once.
func (r *Runner) progressReporter() workflow.Observer {
	var last string
	return func(snap workflow.Snapshot) {
		st, ok := snap.Stage.(workflow.ProcessingStage)
		if !ok || st.Message == "" || st.Message == last {
			return
		}
		last = st.Message
		r.writePlain("%s\n", st.Message)
	}
}

func (r *Runner) writeMix(mix models.Mix) {
	r.writePlain("\n")
	r.writePlainHeader(fmt.Sprintf("Mix: %d tracks, %s", mix.Len(), formatter.FormatDuration(mix.TotalDuration())))
	for i, track := range mix {
		r.writePlain("%2d. %s  [%s, %.0f BPM, %s]\n",
			i+1,
			track.Line(),
			track.KeyName(),
			track.Tempo,
			formatter.FormatDuration(time.Duration(track.DurationMS)*time.Millisecond),
		)
	}
}
