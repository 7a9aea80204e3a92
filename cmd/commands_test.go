package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/continuum/internal/gateway"
	"github.com/desertthunder/continuum/internal/models"
	"github.com/desertthunder/continuum/internal/repositories"
	"github.com/desertthunder/continuum/internal/shared"
	tu "github.com/desertthunder/continuum/internal/testing"
)

func testRunner(t *testing.T, gw *tu.MockGateway, input string) (*Runner, *bytes.Buffer, *repositories.MixRepository) {
	t.Helper()
	output := &bytes.Buffer{}
	mixes := setupHistory(t)
	runner := NewRunner(RunnerOpts{
		Gateway:     gw,
		Mixes:       mixes,
		Logger:      shared.NewLogger(io.Discard),
		Output:      output,
		Input:       strings.NewReader(input),
		OpenBrowser: func(string) error { return errors.New("no browser in tests") },
	})
	return runner, output, mixes
}

func mixGateway(n int) *tu.MockGateway {
	ids := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		ids = append(ids, "t"+string(rune('0'+i)))
	}
	return &tu.MockGateway{
		URL:      "https://accounts.example/authorize",
		Tracks:   tu.RawTracks(n),
		Features: tu.FeaturesFor(ids...),
		SaveURL:  "https://open.example/playlist/abc",
	}
}

func seedMix(t *testing.T, mixes *repositories.MixRepository, input string) *models.MixRecord {
	t.Helper()
	features := tu.FeaturesFor("t1", "t2")
	var mix models.Mix
	for _, raw := range tu.RawTracks(2) {
		track := features[raw.ID]
		track.RawTrack = raw
		mix = append(mix, track)
	}

	rec := models.NewMixRecord(0, models.ClientAuth, models.PlaylistSource, input, 30, mix)
	if err := mixes.Create(rec); err != nil {
		t.Fatalf("failed to seed mix: %v", err)
	}
	return rec
}

func TestMixCommand(t *testing.T) {
	t.Run("client mode exports and records the mix", func(t *testing.T) {
		gw := mixGateway(3)
		runner, output, mixes := testRunner(t, gw, "")
		exportPath := filepath.Join(t.TempDir(), "mix.txt")

		err := runApp(runner, "mix", "--auth", "client", "--source", "recommendations",
			"--input", "Daft Punk", "--minutes", "20", "--export", exportPath)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if gw.CountCalls("AuthURL") != 0 {
			t.Error("client mode should not request an authorization URL")
		}
		req := gw.SourceRequests[0]
		if req.AuthMode != models.ClientAuth || req.SourceMode != models.RecommendationsSource || req.Input != "Daft Punk" {
			t.Errorf("unexpected source request %+v", req)
		}

		text := tu.MustReadFile(t, exportPath)
		if !strings.Contains(text, "Artist t1 - Track t1") || !strings.Contains(text, "Artist t3 - Track t3") {
			t.Errorf("unexpected export contents %q", text)
		}

		out := output.String()
		if !strings.Contains(out, "Mix: 3 tracks") {
			t.Errorf("expected mix summary, got %q", out)
		}
		if !strings.Contains(out, "✓ Exported to "+exportPath) {
			t.Errorf("expected export confirmation, got %q", out)
		}

		records, _ := mixes.List(nil)
		if len(records) != 1 || records[0].TargetMinutes() != 20 {
			t.Fatalf("expected one recorded 20 minute mix, got %d", len(records))
		}
	})

	t.Run("exports to mix.txt by default", func(t *testing.T) {
		wd := tu.MustGetwd(t)
		dir := t.TempDir()
		tu.MustChdir(t, dir)
		defer tu.MustChdir(t, wd)

		runner, _, _ := testRunner(t, mixGateway(2), "")

		if err := runApp(runner, "mix", "--auth", "client", "--input", "pl1"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := tu.MustReadFile(t, filepath.Join(dir, "mix.txt")); got != "Artist t1 - Track t1\nArtist t2 - Track t2" {
			t.Errorf("unexpected export contents %q", got)
		}
	})

	t.Run("user mode reads the pasted redirect and saves", func(t *testing.T) {
		gw := mixGateway(2)
		runner, output, mixes := testRunner(t, gw, "http://127.0.0.1:8080/callback?code=xyz\n")
		exportPath := filepath.Join(t.TempDir(), "mix.txt")

		err := runApp(runner, "mix", "--auth", "user", "--input", "pl1", "--export", exportPath, "--save")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(gw.Redirects) != 1 || gw.Redirects[0] != "http://127.0.0.1:8080/callback?code=xyz" {
			t.Errorf("unexpected redirects %v", gw.Redirects)
		}
		if len(gw.Saved) != 1 || len(gw.Saved[0]) != 2 {
			t.Errorf("expected two URIs saved, got %v", gw.Saved)
		}

		out := output.String()
		for _, want := range []string{gw.URL, "✓ Authorized", "✓ Saved playlist: " + gw.SaveURL} {
			if !strings.Contains(out, want) {
				t.Errorf("expected output to contain %q, got %q", want, out)
			}
		}

		records, _ := mixes.List(map[string]any{"saved": true})
		if len(records) != 1 || records[0].SavedURL() != gw.SaveURL {
			t.Error("expected the saved URL to be recorded")
		}
	})

	t.Run("json output", func(t *testing.T) {
		gw := mixGateway(2)
		runner, output, _ := testRunner(t, gw, "")
		exportPath := filepath.Join(t.TempDir(), "mix.txt")

		err := runApp(runner, "mix", "--auth", "client", "--input", "pl1", "--export", exportPath, "--json")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var tracks []map[string]any
		if err := json.Unmarshal(output.Bytes(), &tracks); err != nil {
			t.Fatalf("expected JSON output, got %q: %v", output.String(), err)
		}
		if len(tracks) != 2 {
			t.Errorf("expected 2 tracks, got %d", len(tracks))
		}
	})

	t.Run("save failure is reported but export succeeds", func(t *testing.T) {
		gw := mixGateway(1)
		gw.SaveErr = &gateway.Fault{Kind: gateway.KindSave, Message: "quota exceeded"}
		runner, output, _ := testRunner(t, gw, "http://127.0.0.1:8080/callback?code=xyz\n")
		exportPath := filepath.Join(t.TempDir(), "mix.txt")

		err := runApp(runner, "mix", "--auth", "user", "--input", "pl1", "--export", exportPath, "--save")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		tu.AssertFileExists(t, exportPath)
		if !strings.Contains(output.String(), "⚠ Saving failed: quota exceeded") {
			t.Errorf("expected save warning, got %q", output.String())
		}
	})

	t.Run("empty redirect cancels", func(t *testing.T) {
		gw := mixGateway(1)
		runner, _, _ := testRunner(t, gw, "\n")

		err := runApp(runner, "mix", "--auth", "user", "--input", "pl1", "--export", filepath.Join(t.TempDir(), "mix.txt"))
		if !errors.Is(err, shared.ErrAuthCancelled) {
			t.Fatalf("expected ErrAuthCancelled, got %v", err)
		}
		if gw.CountCalls("FetchSource") != 0 {
			t.Error("source should not be fetched after cancelling")
		}
	})

	t.Run("save requires user mode", func(t *testing.T) {
		gw := mixGateway(1)
		runner, _, _ := testRunner(t, gw, "")

		err := runApp(runner, "mix", "--auth", "client", "--input", "pl1", "--save")
		if !errors.Is(err, shared.ErrInvalidArgument) {
			t.Fatalf("expected ErrInvalidArgument, got %v", err)
		}
		if len(gw.Calls) != 0 {
			t.Errorf("expected no gateway calls, got %v", gw.Calls)
		}
	})

	t.Run("source fault is returned", func(t *testing.T) {
		gw := mixGateway(1)
		gw.SourceErr = &gateway.Fault{Kind: gateway.KindSource, Message: "playlist not found"}
		runner, _, mixes := testRunner(t, gw, "")
		exportPath := filepath.Join(t.TempDir(), "mix.txt")

		err := runApp(runner, "mix", "--auth", "client", "--input", "nope", "--export", exportPath)
		if !gateway.IsKind(err, gateway.KindSource) {
			t.Fatalf("expected source fault, got %v", err)
		}
		if _, statErr := os.Stat(exportPath); !os.IsNotExist(statErr) {
			t.Error("nothing should be exported after a source fault")
		}
		if records, _ := mixes.List(nil); len(records) != 0 {
			t.Error("nothing should be recorded after a source fault")
		}
	})

	t.Run("unknown modes are rejected", func(t *testing.T) {
		runner, _, _ := testRunner(t, mixGateway(1), "")

		if err := runApp(runner, "mix", "--auth", "admin", "--input", "pl1"); err == nil {
			t.Error("expected error for unknown auth mode")
		}
		if err := runApp(runner, "mix", "--auth", "client", "--source", "radio", "--input", "pl1"); err == nil {
			t.Error("expected error for unknown source mode")
		}
	})
}

func TestAbandonAuth(t *testing.T) {
	t.Run("cancels the pending authorization", func(t *testing.T) {
		gw := mixGateway(0)
		runner, _, _ := testRunner(t, gw, "")
		machine := runner.newMachine(nil)
		if err := machine.SubmitAuth(context.Background(), models.UserAuth); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		cause := fmt.Errorf("%w: listener closed", shared.ErrAuthCancelled)
		err := runner.abandonAuth(machine, cause)

		if err != cause {
			t.Errorf("expected the cause to be returned unchanged, got %v", err)
		}
		if _, pending := machine.Snapshot().PendingURL(); pending {
			t.Error("expected the pending authorization to be cleared")
		}
	})

	t.Run("reports a failed cancel with the cause", func(t *testing.T) {
		runner, _, _ := testRunner(t, mixGateway(0), "")
		machine := runner.newMachine(nil)
		if err := machine.SubmitAuth(context.Background(), models.ClientAuth); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		err := runner.abandonAuth(machine, shared.ErrAuthCancelled)

		if !errors.Is(err, shared.ErrAuthCancelled) {
			t.Errorf("expected the cause to be kept, got %v", err)
		}
		if !errors.Is(err, shared.ErrInvalidTransition) {
			t.Errorf("expected the cancel failure to be joined, got %v", err)
		}
	})
}

func TestAuthCommand(t *testing.T) {
	t.Run("url prints the authorization URL", func(t *testing.T) {
		gw := mixGateway(0)
		runner, output, _ := testRunner(t, gw, "")

		if err := runApp(runner, "auth", "url"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if strings.TrimSpace(output.String()) != gw.URL {
			t.Errorf("expected %q, got %q", gw.URL, output.String())
		}
	})

	t.Run("login exchanges the pasted redirect", func(t *testing.T) {
		gw := mixGateway(0)
		runner, output, _ := testRunner(t, gw, "  http://127.0.0.1:8080/callback?code=abc  \n")

		if err := runApp(runner, "auth", "login"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(gw.Redirects) != 1 || gw.Redirects[0] != "http://127.0.0.1:8080/callback?code=abc" {
			t.Errorf("unexpected redirects %v", gw.Redirects)
		}
		if !strings.Contains(output.String(), "✓ Authorization successful") {
			t.Errorf("expected success message, got %q", output.String())
		}
	})

	t.Run("login wraps exchange failures", func(t *testing.T) {
		gw := mixGateway(0)
		gw.ExchangeErr = &gateway.Fault{Kind: gateway.KindAuth, Message: "invalid code"}
		runner, _, _ := testRunner(t, gw, "http://127.0.0.1:8080/callback?code=bad\n")

		err := runApp(runner, "auth", "login")
		if !errors.Is(err, shared.ErrAuthFailed) {
			t.Fatalf("expected ErrAuthFailed, got %v", err)
		}
	})

	t.Run("status", func(t *testing.T) {
		gw := mixGateway(0)
		gw.Authenticated = true
		runner, output, _ := testRunner(t, gw, "")

		if err := runApp(runner, "auth", "status"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(output.String(), "Authentication: ✓ Authenticated") {
			t.Errorf("unexpected output %q", output.String())
		}

		output.Reset()
		gw.Authenticated = false
		if err := runApp(runner, "auth", "status", "--json"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if strings.TrimSpace(output.String()) != `{"authenticated":false}` {
			t.Errorf("unexpected output %q", output.String())
		}
	})

	t.Run("status reports an unreachable backend", func(t *testing.T) {
		gw := mixGateway(0)
		gw.CheckErr = errors.New("connection refused")
		runner, _, _ := testRunner(t, gw, "")

		err := runApp(runner, "auth", "status")
		if !errors.Is(err, shared.ErrServiceUnavailable) {
			t.Fatalf("expected ErrServiceUnavailable, got %v", err)
		}
	})
}

func TestAPICommand(t *testing.T) {
	var gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/check_auth":
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"authenticated":true}`))
		case "/solve":
			body, _ := io.ReadAll(r.Body)
			gotBody = string(body)
			w.Write([]byte(`{"tracks":[]}`))
		case "/plain":
			w.Write([]byte("hello"))
		default:
			http.Error(w, "missing", http.StatusNotFound)
		}
	}))
	defer srv.Close()

	newRunner := func() (*Runner, *bytes.Buffer) {
		output := &bytes.Buffer{}
		return NewRunner(RunnerOpts{
			API:    gateway.NewAPIService(srv.URL, srv.Client()),
			Logger: shared.NewLogger(io.Discard),
			Output: output,
		}), output
	}

	t.Run("get prints JSON", func(t *testing.T) {
		runner, output := newRunner()

		if err := runApp(runner, "api", "get", "/check_auth"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if strings.TrimSpace(output.String()) != `{"authenticated":true}` {
			t.Errorf("unexpected output %q", output.String())
		}
	})

	t.Run("get prints plain bodies", func(t *testing.T) {
		runner, output := newRunner()

		if err := runApp(runner, "api", "get", "/plain"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if output.String() != "hello\n" {
			t.Errorf("unexpected output %q", output.String())
		}
	})

	t.Run("get fails on error status", func(t *testing.T) {
		runner, _ := newRunner()

		err := runApp(runner, "api", "get", "/nowhere")
		if !errors.Is(err, shared.ErrAPIRequest) {
			t.Fatalf("expected ErrAPIRequest, got %v", err)
		}
	})

	t.Run("get requires a path", func(t *testing.T) {
		runner, _ := newRunner()

		err := runApp(runner, "api", "get")
		if !errors.Is(err, shared.ErrMissingArgument) {
			t.Fatalf("expected ErrMissingArgument, got %v", err)
		}
	})

	t.Run("post sends the data", func(t *testing.T) {
		runner, output := newRunner()

		if err := runApp(runner, "api", "post", "/solve", "--data", `{"minutes":30}`); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if gotBody != `{"minutes":30}` {
			t.Errorf("unexpected request body %q", gotBody)
		}
		if !strings.Contains(output.String(), `"tracks": []`) {
			t.Errorf("expected pretty JSON, got %q", output.String())
		}
	})

	t.Run("post rejects invalid JSON", func(t *testing.T) {
		runner, _ := newRunner()

		err := runApp(runner, "api", "post", "/solve", "--data", "{not json")
		if !errors.Is(err, shared.ErrInvalidInput) {
			t.Fatalf("expected ErrInvalidInput, got %v", err)
		}
	})
}

func TestHistoryCommand(t *testing.T) {
	t.Run("list", func(t *testing.T) {
		runner, output, mixes := testRunner(t, &tu.MockGateway{}, "")

		if err := runApp(runner, "history", "list"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(output.String(), "No mixes recorded yet") {
			t.Errorf("expected empty message, got %q", output.String())
		}

		seedMix(t, mixes, "first")
		second := seedMix(t, mixes, "second")
		if err := mixes.SetSavedURL(second.ID(), "https://open.example/playlist/2"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output.Reset()
		if err := runApp(runner, "history", "list"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		out := output.String()
		if !strings.Contains(out, "Found 2 mixes") {
			t.Errorf("expected count, got %q", out)
		}
		if strings.Index(out, `"second"`) > strings.Index(out, `"first"`) {
			t.Error("expected newest mix first")
		}
		if !strings.Contains(out, "2 tracks / 30 min") {
			t.Errorf("expected track counts, got %q", out)
		}

		output.Reset()
		if err := runApp(runner, "history", "list", "--saved", "--json"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		var entries []historyEntry
		if err := json.Unmarshal(output.Bytes(), &entries); err != nil {
			t.Fatalf("expected JSON output: %v", err)
		}
		if len(entries) != 1 || entries[0].Input != "second" || entries[0].Tracks != 2 {
			t.Errorf("unexpected entries %+v", entries)
		}
	})

	t.Run("list rejects unknown sources", func(t *testing.T) {
		runner, _, _ := testRunner(t, &tu.MockGateway{}, "")

		err := runApp(runner, "history", "list", "--source", "radio")
		if !errors.Is(err, shared.ErrInvalidArgument) {
			t.Fatalf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("show", func(t *testing.T) {
		runner, output, mixes := testRunner(t, &tu.MockGateway{}, "")
		rec := seedMix(t, mixes, "pl1")

		if err := runApp(runner, "history", "show", "1"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(output.String(), "# Mix #1") || !strings.Contains(output.String(), "Artist t2 - Track t2") {
			t.Errorf("unexpected markdown %q", output.String())
		}

		output.Reset()
		if err := runApp(runner, "history", "show", "1", "--json"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(output.String(), rec.ID()) {
			t.Errorf("expected JSON to carry the mix ID, got %q", output.String())
		}
	})

	t.Run("show requires a number", func(t *testing.T) {
		runner, _, _ := testRunner(t, &tu.MockGateway{}, "")

		err := runApp(runner, "history", "show")
		if !errors.Is(err, shared.ErrMissingArgument) {
			t.Fatalf("expected ErrMissingArgument, got %v", err)
		}
	})

	t.Run("show unknown mix", func(t *testing.T) {
		runner, _, _ := testRunner(t, &tu.MockGateway{}, "")

		err := runApp(runner, "history", "show", "7")
		if !errors.Is(err, shared.ErrMixNotFound) {
			t.Fatalf("expected ErrMixNotFound, got %v", err)
		}
	})

	t.Run("export", func(t *testing.T) {
		runner, output, mixes := testRunner(t, &tu.MockGateway{}, "")
		seedMix(t, mixes, "pl1")
		dir := t.TempDir()

		textPath := filepath.Join(dir, "out.txt")
		if err := runApp(runner, "history", "export", "1", "--output", textPath); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(tu.MustReadFile(t, textPath), "Artist t1 - Track t1") {
			t.Error("expected text export to list the tracks")
		}

		mdPath := filepath.Join(dir, "out.md")
		if err := runApp(runner, "history", "export", "1", "--format", "markdown", "--output", mdPath); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		tu.AssertFileExists(t, mdPath)

		if !strings.Contains(output.String(), "✓ Wrote "+mdPath) {
			t.Errorf("expected written paths, got %q", output.String())
		}
	})

	t.Run("delete", func(t *testing.T) {
		runner, output, mixes := testRunner(t, &tu.MockGateway{}, "")
		seedMix(t, mixes, "pl1")

		if err := runApp(runner, "history", "delete", "1"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(output.String(), "✓ Deleted mix #1") {
			t.Errorf("unexpected output %q", output.String())
		}
		if _, err := mixes.GetBySequence(1); !errors.Is(err, shared.ErrMixNotFound) {
			t.Errorf("expected deleted mix to be gone, got %v", err)
		}
	})
}

func TestSetupCommand(t *testing.T) {
	t.Run("config writes the template", func(t *testing.T) {
		runner, output, _ := testRunner(t, &tu.MockGateway{}, "")
		path := filepath.Join(t.TempDir(), "config.toml")

		if err := runApp(runner, "setup", "config", "--config", path); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		tu.AssertFileExists(t, path)
		if !strings.Contains(output.String(), "✓ Configuration written to "+path) {
			t.Errorf("unexpected output %q", output.String())
		}
	})

	t.Run("config refuses to overwrite without force", func(t *testing.T) {
		runner, _, _ := testRunner(t, &tu.MockGateway{}, "")
		path := filepath.Join(t.TempDir(), "config.toml")
		if err := os.WriteFile(path, []byte("# mine\n"), 0644); err != nil {
			t.Fatal(err)
		}

		err := runApp(runner, "setup", "config", "--config", path)
		if !errors.Is(err, shared.ErrInvalidArgument) {
			t.Fatalf("expected ErrInvalidArgument, got %v", err)
		}
		if tu.MustReadFile(t, path) != "# mine\n" {
			t.Error("existing config should be untouched")
		}

		if err := runApp(runner, "setup", "config", "--config", path, "--force"); err != nil {
			t.Fatalf("unexpected error with --force: %v", err)
		}
		if !strings.Contains(tu.MustReadFile(t, path), "[gateway]") {
			t.Error("expected template to replace the existing config")
		}
	})

	t.Run("database migrates the configured path", func(t *testing.T) {
		runner, output, _ := testRunner(t, &tu.MockGateway{}, "")
		dir := t.TempDir()

		config := shared.DefaultConfig()
		config.Database.Path = filepath.Join(dir, "history.db")
		configPath := filepath.Join(dir, "config.toml")
		if err := shared.SaveConfig(configPath, config); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		if err := runApp(runner, "setup", "database", "--config", configPath); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		tu.AssertFileExists(t, config.Database.Path)
		if !strings.Contains(output.String(), "✓ Database ready at "+config.Database.Path) {
			t.Errorf("unexpected output %q", output.String())
		}
	})
}
