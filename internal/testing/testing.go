// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"testing"

	"github.com/desertthunder/continuum/internal/models"
)

// MockGateway is a scripted test double for [gateway.Gateway].
//
// Lookups succeed for IDs present in Features and report not-found otherwise. Every call is
// appended to Calls by operation name so tests can assert on call order.
type MockGateway struct {
	URL        string
	AuthURLErr error

	ExchangeErr error
	Redirects   []string

	Authenticated bool
	CheckErr      error

	Tracks         []models.RawTrack
	SourceErr      error
	SourceRequests []SourceRequest

	Features      map[string]models.EnrichedTrack
	FeatureErr    error
	FeatureErrFor string
	Lookups       []string

	// SolveFn overrides the default solver, which returns the enriched tracks in input order.
	SolveFn  func(tracks []models.EnrichedTrack, minutes float64) (models.Mix, error)
	SolveErr error
	Solved   [][]models.EnrichedTrack

	SaveURL string
	SaveErr error
	Saved   [][]string

	Calls []string
}

// SourceRequest records the arguments of a FetchSource call.
type SourceRequest struct {
	AuthMode   models.AuthMode
	SourceMode models.SourceMode
	Input      string
}

func (m *MockGateway) AuthURL(ctx context.Context) (string, error) {
	m.Calls = append(m.Calls, "AuthURL")
	if m.AuthURLErr != nil {
		return "", m.AuthURLErr
	}
	return m.URL, nil
}

func (m *MockGateway) ExchangeToken(ctx context.Context, redirect string) error {
	m.Calls = append(m.Calls, "ExchangeToken")
	m.Redirects = append(m.Redirects, redirect)
	return m.ExchangeErr
}

func (m *MockGateway) CheckAuth(ctx context.Context) (bool, error) {
	m.Calls = append(m.Calls, "CheckAuth")
	return m.Authenticated, m.CheckErr
}

func (m *MockGateway) FetchSource(ctx context.Context, authMode models.AuthMode, sourceMode models.SourceMode, input string) ([]models.RawTrack, error) {
	m.Calls = append(m.Calls, "FetchSource")
	m.SourceRequests = append(m.SourceRequests, SourceRequest{authMode, sourceMode, input})
	if m.SourceErr != nil {
		return nil, m.SourceErr
	}
	return m.Tracks, nil
}

func (m *MockGateway) LookupFeatures(ctx context.Context, track models.RawTrack) (models.EnrichedTrack, bool, error) {
	m.Calls = append(m.Calls, "LookupFeatures")
	m.Lookups = append(m.Lookups, track.ID)
	if m.FeatureErr != nil && (m.FeatureErrFor == "" || m.FeatureErrFor == track.ID) {
		return models.EnrichedTrack{}, false, m.FeatureErr
	}
	enriched, ok := m.Features[track.ID]
	if !ok {
		return models.EnrichedTrack{}, false, nil
	}
	enriched.RawTrack = track
	return enriched, true, nil
}

func (m *MockGateway) Solve(ctx context.Context, tracks []models.EnrichedTrack, minutes float64) (models.Mix, error) {
	m.Calls = append(m.Calls, "Solve")
	m.Solved = append(m.Solved, tracks)
	if m.SolveErr != nil {
		return nil, m.SolveErr
	}
	if m.SolveFn != nil {
		return m.SolveFn(tracks, minutes)
	}
	return models.Mix(tracks).Clone(), nil
}

func (m *MockGateway) SavePlaylist(ctx context.Context, uris []string) (models.SavedPlaylistRef, error) {
	m.Calls = append(m.Calls, "SavePlaylist")
	m.Saved = append(m.Saved, uris)
	if m.SaveErr != nil {
		return models.SavedPlaylistRef{}, m.SaveErr
	}
	return models.SavedPlaylistRef{URL: m.SaveURL}, nil
}

// CountCalls returns how many times op was called.
func (m *MockGateway) CountCalls(op string) int {
	n := 0
	for _, c := range m.Calls {
		if c == op {
			n++
		}
	}
	return n
}

// RawTracks builds n raw tracks with IDs "t1".."tn".
func RawTracks(n int) []models.RawTrack {
	tracks := make([]models.RawTrack, 0, n)
	for i := 1; i <= n; i++ {
		id := fmt.Sprintf("t%d", i)
		tracks = append(tracks, models.RawTrack{
			ID:         id,
			Name:       "Track " + id,
			Artist:     "Artist " + id,
			Album:      "Album",
			URI:        "spotify:track:" + id,
			DurationMS: 240000,
		})
	}
	return tracks
}

// FeaturesFor returns enrichment data for the given IDs.
func FeaturesFor(ids ...string) map[string]models.EnrichedTrack {
	features := make(map[string]models.EnrichedTrack, len(ids))
	for i, id := range ids {
		tempo := 118 + float64(i)
		features[id] = models.EnrichedTrack{Key: i % 12, Mode: i % 2, Tempo: tempo, Energy: 0.5, BPM: tempo}
	}
	return features
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func MustChdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory to %s: %v", dir, err)
	}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
