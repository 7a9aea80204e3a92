package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/continuum/internal/shared"
)

// DefaultWaitTimeout bounds how long [CallbackServer.Wait] blocks.
const DefaultWaitTimeout = 2 * time.Minute

// CallbackServer is a short-lived local listener that captures one authorization redirect.
type CallbackServer struct {
	handler  *CallbackHandler
	srv      *http.Server
	listener net.Listener
	errs     chan error
	logger   *log.Logger
}

// StartCallbackServer listens on addr and serves a [CallbackHandler] at path in the background.
func StartCallbackServer(addr, path string, logger *log.Logger) (*CallbackServer, error) {
	if logger == nil {
		logger = log.New(io.Discard)
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	handler := NewCallbackHandler(path)
	router := NewBasicRouter()
	router.Use(LogRequests(logger))
	router.Handler(handler)

	s := &CallbackServer{
		handler:  handler,
		srv:      &http.Server{Handler: router, ReadHeaderTimeout: 10 * time.Second},
		listener: ln,
		errs:     make(chan error, 1),
		logger:   logger,
	}

	go func() {
		logger.Infof("starting callback server at %v", ln.Addr())
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.errs <- err
		}
	}()
	return s, nil
}

// Addr returns the bound listener address.
func (s *CallbackServer) Addr() string {
	return s.listener.Addr().String()
}

// CallbackURL returns the absolute URL the handler serves.
func (s *CallbackServer) CallbackURL() string {
	return "http://" + s.Addr() + s.handler.path
}

// Wait blocks until a redirect is captured, the server fails, ctx ends or timeout elapses.
// A timeout of zero uses [DefaultWaitTimeout].
func (s *CallbackServer) Wait(ctx context.Context, timeout time.Duration) (string, error) {
	if timeout <= 0 {
		timeout = DefaultWaitTimeout
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case result := <-s.handler.Result():
		if result.Error() != nil {
			return "", result.Error()
		}
		return result.URL, nil
	case err := <-s.errs:
		return "", fmt.Errorf("server error: %w", err)
	case <-timer.C:
		return "", fmt.Errorf("%w: no redirect received after %v", shared.ErrTimeout, timeout)
	case <-ctx.Done():
		return "", fmt.Errorf("%w: %v", shared.ErrAuthCancelled, ctx.Err())
	}
}

// Close shuts the server down, waiting up to five seconds for in-flight requests.
func (s *CallbackServer) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.srv.Shutdown(ctx); err != nil {
		s.logger.Warn("error shutting down server", "error", err)
		return err
	}
	return nil
}
