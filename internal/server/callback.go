package server

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/desertthunder/continuum/internal/shared"
)

// DefaultCallbackPath is the path the authorization page redirects to.
const DefaultCallbackPath = "/callback"

// CallbackResult contains the redirected URL captured by a [CallbackHandler].
type CallbackResult struct {
	URL string
	err error
}

func (c *CallbackResult) Error() error {
	return c.err
}

// CallbackHandler captures the browser redirect that ends a user authorization.
//
// The full redirected URL (scheme, host, path and query) is forwarded untouched; the backend
// owns the code exchange. Implements the Handler interface for registration with a Router.
type CallbackHandler struct {
	path        string
	resultChan  chan CallbackResult
	once        sync.Once
	callbackHit bool
	mu          sync.Mutex
}

// NewCallbackHandler creates a handler serving path, or [DefaultCallbackPath] when path is empty.
func NewCallbackHandler(path string) *CallbackHandler {
	if path == "" {
		path = DefaultCallbackPath
	}
	return &CallbackHandler{
		path:       path,
		resultChan: make(chan CallbackResult, 1),
	}
}

// Routes returns the HTTP routes this handler serves.
func (h *CallbackHandler) Routes() []string {
	return []string{h.path}
}

// ServeHTTP handles the redirect request. Only the first hit is accepted.
func (h *CallbackHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	if h.callbackHit {
		h.mu.Unlock()
		http.Error(w, "Callback already processed", http.StatusBadRequest)
		return
	}
	h.callbackHit = true
	h.mu.Unlock()

	if errParam := r.URL.Query().Get("error"); errParam != "" {
		h.Send(CallbackResult{err: fmt.Errorf("%w: %s", shared.ErrAuthFailed, errParam)})
		http.Error(w, "Authorization failed", http.StatusBadRequest)
		return
	}

	h.Send(CallbackResult{URL: RedirectedURL(r)})

	w.Header().Set("Content-Type", "text/html")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, successPage)
}

// Send sends the result through the channel (only once).
func (h *CallbackHandler) Send(result CallbackResult) {
	h.once.Do(func() {
		h.resultChan <- result
		close(h.resultChan)
	})
}

// Result returns the result channel.
//
// Channel will receive exactly one result and then be closed.
func (h *CallbackHandler) Result() <-chan CallbackResult {
	return h.resultChan
}

// RedirectedURL rebuilds the absolute URL the browser requested.
func RedirectedURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host + r.URL.RequestURI()
}

const successPage = `
<!DOCTYPE html>
<html>
<head>
    <title>Authorization Received</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
               display: flex; align-items: center; justify-content: center; height: 100vh;
               margin: 0; background: #f5f5f5; }
        .container { text-align: center; background: white; padding: 2rem;
                     border-radius: 8px; box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
        h1 { color: #1DB954; margin: 0 0 1rem 0; }
        p { color: #666; margin: 0; }
    </style>
</head>
<body>
    <div class="container">
        <h1>✓ Authorization Received</h1>
        <p>You can close this window and return to continuum.</p>
    </div>
</body>
</html>
`
