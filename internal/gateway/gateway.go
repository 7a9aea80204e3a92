package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/continuum/internal/models"
	"golang.org/x/oauth2"
)

// Gateway is the set of backend operations the workflow depends on.
type Gateway interface {
	// AuthURL returns the authorization URL the user must visit.
	AuthURL(ctx context.Context) (string, error)
	// ExchangeToken hands the redirected URL back to the backend.
	ExchangeToken(ctx context.Context, redirect string) error
	// CheckAuth reports whether the backend holds a user token.
	CheckAuth(ctx context.Context) (bool, error)
	// FetchSource returns the raw track pool for a playlist or a seed artist.
	FetchSource(ctx context.Context, authMode models.AuthMode, sourceMode models.SourceMode, input string) ([]models.RawTrack, error)
	// LookupFeatures looks up key and tempo for one track. found is false when the feature service has no match.
	LookupFeatures(ctx context.Context, track models.RawTrack) (enriched models.EnrichedTrack, found bool, err error)
	// Solve orders tracks into a mix of about minutes length.
	Solve(ctx context.Context, tracks []models.EnrichedTrack, minutes float64) (models.Mix, error)
	// SavePlaylist creates a playlist from the URIs and returns where it lives.
	SavePlaylist(ctx context.Context, uris []string) (models.SavedPlaylistRef, error)
}

// Backend endpoint paths.
const (
	PathAuthURL         = "/api/auth/url"
	PathAuthToken       = "/api/auth/token"
	PathAuthCheck       = "/api/auth/check"
	PathPlaylist        = "/api/playlist"
	PathRecommendations = "/api/recommendations"
	PathFeatures        = "/api/features"
	PathSolve           = "/api/solve"
	PathSave            = "/api/save"
)

// NewHTTPClient returns an HTTP client that sends token as a bearer token, or [http.DefaultClient] when token is empty.
func NewHTTPClient(ctx context.Context, token string) *http.Client {
	if token == "" {
		return http.DefaultClient
	}
	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"})
	return oauth2.NewClient(ctx, src)
}

// Client implements [Gateway] over HTTP.
type Client struct {
	api    *APIService
	logger *log.Logger
}

// NewClient creates a Client on top of api. A nil logger discards output.
func NewClient(api *APIService, logger *log.Logger) *Client {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Client{api: api, logger: logger}
}

// API returns the underlying raw transport.
func (c *Client) API() *APIService { return c.api }

type errorBody struct {
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

func (e errorBody) text() string {
	if e.Error != "" {
		return e.Error
	}
	return e.Message
}

type authURLResponse struct {
	errorBody
	URL string `json:"url"`
}

type tokenRequest struct {
	URL string `json:"url"`
}

type tokenResponse struct {
	errorBody
	Success bool `json:"success"`
}

type checkResponse struct {
	errorBody
	Authenticated bool `json:"authenticated"`
}

type playlistRequest struct {
	ID   string `json:"id"`
	Mode string `json:"mode"`
}

type recommendationsRequest struct {
	Seed string `json:"seed"`
	Mode string `json:"mode"`
}

type sourceResponse struct {
	errorBody
	Tracks []models.RawTrack `json:"tracks"`
}

type featuresRequest struct {
	Track models.RawTrack `json:"track"`
}

type featuresResponse struct {
	errorBody
	Track json.RawMessage `json:"track"`
	Found bool            `json:"found"`
}

type solveRequest struct {
	Songs  []models.EnrichedTrack `json:"songs"`
	Length float64                `json:"length"`
}

type solveResponse struct {
	errorBody
	Success bool       `json:"success"`
	Mix     models.Mix `json:"mix"`
}

type saveRequest struct {
	URIs []string `json:"uris"`
}

type saveResponse struct {
	errorBody
	URL string `json:"url"`
}

// AuthURL implements [Gateway].
func (c *Client) AuthURL(ctx context.Context) (string, error) {
	resp, err := c.api.Get(ctx, PathAuthURL)
	if err != nil {
		return "", transportFault(KindAuth, err)
	}

	var out authURLResponse
	if err := c.decode(KindAuth, PathAuthURL, resp, &out); err != nil {
		return "", err
	}
	if out.URL == "" {
		return "", &Fault{Kind: KindAuth, Message: "backend returned no authorization url", Status: resp.StatusCode}
	}
	return out.URL, nil
}

// ExchangeToken implements [Gateway].
func (c *Client) ExchangeToken(ctx context.Context, redirect string) error {
	resp, err := c.api.PostJSON(ctx, PathAuthToken, tokenRequest{URL: redirect})
	if err != nil {
		return transportFault(KindAuth, err)
	}

	var out tokenResponse
	if err := c.decode(KindAuth, PathAuthToken, resp, &out); err != nil {
		return err
	}
	if !out.Success {
		return &Fault{Kind: KindAuth, Message: "token exchange was not accepted", Status: resp.StatusCode}
	}
	return nil
}

// CheckAuth implements [Gateway].
func (c *Client) CheckAuth(ctx context.Context) (bool, error) {
	resp, err := c.api.Get(ctx, PathAuthCheck)
	if err != nil {
		return false, transportFault(KindAuth, err)
	}

	var out checkResponse
	if err := c.decode(KindAuth, PathAuthCheck, resp, &out); err != nil {
		return false, err
	}
	return out.Authenticated, nil
}

// FetchSource implements [Gateway].
func (c *Client) FetchSource(ctx context.Context, authMode models.AuthMode, sourceMode models.SourceMode, input string) ([]models.RawTrack, error) {
	var (
		path string
		body any
	)
	switch sourceMode {
	case models.RecommendationsSource:
		path, body = PathRecommendations, recommendationsRequest{Seed: input, Mode: authMode.String()}
	default:
		path, body = PathPlaylist, playlistRequest{ID: input, Mode: authMode.String()}
	}

	resp, err := c.api.PostJSON(ctx, path, body)
	if err != nil {
		return nil, transportFault(KindSource, err)
	}

	var out sourceResponse
	if err := c.decode(KindSource, path, resp, &out); err != nil {
		return nil, err
	}
	return out.Tracks, nil
}

// LookupFeatures implements [Gateway].
func (c *Client) LookupFeatures(ctx context.Context, track models.RawTrack) (models.EnrichedTrack, bool, error) {
	resp, err := c.api.PostJSON(ctx, PathFeatures, featuresRequest{Track: track})
	if err != nil {
		return models.EnrichedTrack{}, false, transportFault(KindEnrichment, err)
	}

	var out featuresResponse
	if err := c.decode(KindEnrichment, PathFeatures, resp, &out); err != nil {
		return models.EnrichedTrack{}, false, err
	}
	if !out.Found {
		return models.EnrichedTrack{}, false, nil
	}

	enriched := models.EnrichedTrack{RawTrack: track}
	if len(out.Track) > 0 {
		if err := json.Unmarshal(out.Track, &enriched); err != nil {
			return models.EnrichedTrack{}, false, &Fault{
				Kind: KindEnrichment, Message: "invalid track in response: " + err.Error(), Status: resp.StatusCode, Err: err,
			}
		}
	}
	// the lookup may not change which track this is
	enriched.ID = track.ID
	return enriched, true, nil
}

// Solve implements [Gateway].
func (c *Client) Solve(ctx context.Context, tracks []models.EnrichedTrack, minutes float64) (models.Mix, error) {
	if tracks == nil {
		tracks = []models.EnrichedTrack{}
	}

	resp, err := c.api.PostJSON(ctx, PathSolve, solveRequest{Songs: tracks, Length: minutes})
	if err != nil {
		return nil, transportFault(KindSolve, err)
	}

	var out solveResponse
	if err := c.decode(KindSolve, PathSolve, resp, &out); err != nil {
		return nil, err
	}
	if !out.Success {
		return nil, &Fault{Kind: KindSolve, Message: out.text(), Status: resp.StatusCode}
	}
	return out.Mix, nil
}

// SavePlaylist implements [Gateway].
func (c *Client) SavePlaylist(ctx context.Context, uris []string) (models.SavedPlaylistRef, error) {
	resp, err := c.api.PostJSON(ctx, PathSave, saveRequest{URIs: uris})
	if err != nil {
		return models.SavedPlaylistRef{}, transportFault(KindSave, err)
	}

	var out saveResponse
	if err := c.decode(KindSave, PathSave, resp, &out); err != nil {
		return models.SavedPlaylistRef{}, err
	}
	if out.URL == "" {
		return models.SavedPlaylistRef{}, &Fault{Kind: KindSave, Message: "backend returned no playlist url", Status: resp.StatusCode}
	}
	return models.SavedPlaylistRef{URL: out.URL}, nil
}

// decode turns resp into v, or into a [Fault] of kind when the status is not 2xx, the body is not
// the expected JSON, or the body carries an error field.
func (c *Client) decode(kind Kind, path string, resp *APIResponse, v interface{ text() string }) error {
	c.logger.Debug("backend response", "path", path, "status", resp.StatusCode)

	if !resp.OK() {
		var body errorBody
		_ = json.Unmarshal(resp.Body, &body)
		msg := body.text()
		if msg == "" {
			msg = fmt.Sprintf("unexpected status %d", resp.StatusCode)
		}
		return &Fault{Kind: kind, Message: msg, Status: resp.StatusCode}
	}

	if err := json.Unmarshal(resp.Body, v); err != nil {
		return &Fault{Kind: kind, Message: "invalid response: " + err.Error(), Status: resp.StatusCode, Err: err}
	}

	if msg := v.text(); msg != "" {
		return &Fault{Kind: kind, Message: msg, Status: resp.StatusCode}
	}
	return nil
}

var _ Gateway = (*Client)(nil)
