package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/continuum/internal/server"
	"github.com/desertthunder/continuum/internal/shared"
	"github.com/desertthunder/continuum/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive mix builder.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	// Redirect logs to a rotating file so they do not interfere with TUI rendering
	fileLogger, err := shared.NewFileLogger(r.config.Log)
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	mixes, closeHistory := r.optionalHistory()
	defer closeHistory()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	opts := ui.Opts{
		ExportPath:     r.config.Mix.ExportPath,
		DefaultMinutes: r.config.Mix.DefaultMinutes,
		OpenBrowser:    r.openBrowser,
	}
	if addr := r.callbackAddr(cmd); addr != "" {
		opts.WaitRedirect = r.redirectListener(addr)
	}

	model := ui.NewModel(ctx, r.newMachine(mixes), opts)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}

// redirectListener starts a fresh callback server per wait.
func (r *Runner) redirectListener(addr string) func(ctx context.Context) (string, error) {
	return func(ctx context.Context) (string, error) {
		srv, err := server.StartCallbackServer(addr, "", r.logger)
		if err != nil {
			return "", err
		}
		defer srv.Close()
		return srv.Wait(ctx, server.DefaultWaitTimeout)
	}
}
