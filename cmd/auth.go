package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/desertthunder/continuum/internal/server"
	"github.com/desertthunder/continuum/internal/shared"
	"github.com/urfave/cli/v3"
)

// AuthURL prints the backend's authorization URL.
func (r *Runner) AuthURL(ctx context.Context, cmd *cli.Command) error {
	url, err := r.gateway.AuthURL(ctx)
	if err != nil {
		return err
	}

	if cmd.Bool("open") {
		if err := r.openBrowser(url); err != nil {
			r.logger.Warnf("failed to open browser automatically %v", err)
		}
	}

	return r.writePlain("%s\n", url)
}

// AuthLogin runs the user authorization flow: fetch the URL, capture or read the redirect, exchange it.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	url, err := r.gateway.AuthURL(ctx)
	if err != nil {
		return err
	}

	redirect, err := r.awaitRedirect(ctx, url, r.callbackAddr(cmd), cmd.Bool("open"))
	if err != nil {
		return err
	}

	if err := r.gateway.ExchangeToken(ctx, redirect); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
	}

	r.logger.Info("authorization successful")
	return r.writePlain("✓ Authorization successful\n")
}

// AuthStatus reports whether the backend holds a user token.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	r.logger.Info("checking auth status")

	authenticated, err := r.gateway.CheckAuth(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrServiceUnavailable, err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(map[string]bool{"authenticated": authenticated}, false)
	}

	r.writePlain("Backend: %s\n", r.api.BaseURL())
	if authenticated {
		return r.writePlain("Authentication: ✓ Authenticated\n")
	}
	return r.writePlain("Authentication: ✗ Not authenticated\n")
}

// callbackAddr prefers the --callback-addr flag over [shared.AuthConfig.CallbackAddr].
func (r *Runner) callbackAddr(cmd *cli.Command) string {
	if addr := cmd.String("callback-addr"); addr != "" {
		return addr
	}
	return r.config.Auth.CallbackAddr
}

// awaitRedirect shows url and returns the redirected URL, either captured by a local listener on addr or
// read as one line from the runner's input.
func (r *Runner) awaitRedirect(ctx context.Context, url, addr string, open bool) (string, error) {
	r.writePlain("Open this URL to authorize continuum:\n\n%s\n\n", url)

	if open {
		r.writePlain("→ Opening browser...\n")
		if err := r.openBrowser(url); err != nil {
			r.logger.Warnf("failed to open browser automatically %v", err)
			r.writePlainln("⚠ Could not open browser automatically.")
		}
	}

	if addr != "" {
		srv, err := server.StartCallbackServer(addr, "", r.logger)
		if err != nil {
			return "", err
		}
		defer srv.Close()

		r.writePlain("→ Waiting for the redirect on %s (2 minute timeout)...\n", srv.CallbackURL())
		return srv.Wait(ctx, server.DefaultWaitTimeout)
	}

	r.writePlain("Paste the URL you were redirected to: ")
	line, err := bufio.NewReader(r.input).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read redirect URL: %w", err)
	}

	redirect := strings.TrimSpace(line)
	if redirect == "" {
		return "", fmt.Errorf("%w: no redirect URL given", shared.ErrAuthCancelled)
	}
	return redirect, nil
}
