package formatter

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/continuum/internal/models"
	"github.com/desertthunder/continuum/internal/shared"
	th "github.com/desertthunder/continuum/internal/testing"
)

func testMix() models.Mix {
	return models.Mix{
		{
			RawTrack: models.RawTrack{ID: "track1", Name: "Song One", Artist: "Artist One", Album: "Album One", URI: "spotify:track:1", DurationMS: 180000},
			Key:      9, Mode: 0, Tempo: 124.4, Energy: 0.71, BPM: 124.4,
		},
		{
			RawTrack: models.RawTrack{ID: "track2", Name: "Song Two", Artist: "Artist Two", URI: "spotify:track:2", DurationMS: 245000},
			Key:      0, Mode: 1, Tempo: 126, Energy: 0.8, BPM: 126,
		},
	}
}

func testRecord() *models.MixRecord {
	rec := models.NewMixRecord(7, models.UserAuth, models.RecommendationsSource, "Daft Punk", 45, testMix())
	rec.SetID("mix-id")
	rec.SetCreatedAt(time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))
	return rec
}

func TestMixText(t *testing.T) {
	t.Run("Two Entries", func(t *testing.T) {
		mix := models.Mix{
			{RawTrack: models.RawTrack{Artist: "A", Name: "X"}},
			{RawTrack: models.RawTrack{Artist: "B", Name: "Y"}},
		}
		if got := MixText(mix); got != "A - X\nB - Y" {
			t.Errorf("unexpected text %q", got)
		}
	})

	t.Run("Empty Mix", func(t *testing.T) {
		if got := MixText(nil); got != "" {
			t.Errorf("expected empty text, got %q", got)
		}
	})

	t.Run("WriteMixText", func(t *testing.T) {
		t.Run("WithDefaultPath", func(t *testing.T) {
			tempDir := t.TempDir()
			originalDir := th.MustGetwd(t)
			th.MustChdir(t, tempDir)
			defer th.MustChdir(t, originalDir)

			path, err := WriteMixText(testMix(), "")
			if err != nil {
				t.Fatalf("WriteMixText failed: %v", err)
			}
			if path != DefaultTextFile {
				t.Errorf("expected %s, got %s", DefaultTextFile, path)
			}

			content := th.MustReadFile(t, path)
			if content != "Artist One - Song One\nArtist Two - Song Two" {
				t.Errorf("unexpected file content %q", content)
			}
		})

		t.Run("Unwritable Path", func(t *testing.T) {
			_, err := WriteMixText(testMix(), filepath.Join(t.TempDir(), "missing", "mix.txt"))
			if err == nil || !strings.Contains(err.Error(), "failed to write text file") {
				t.Errorf("expected write error, got %v", err)
			}
		})
	})
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, "0:00"},
		{59 * time.Second, "0:59"},
		{3 * time.Minute, "3:00"},
		{4*time.Minute + 5*time.Second, "4:05"},
		{time.Hour + 2*time.Minute + 3*time.Second, "1:02:03"},
	}
	for _, tt := range tests {
		if got := FormatDuration(tt.in); got != tt.want {
			t.Errorf("FormatDuration(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestExporters(t *testing.T) {
	t.Run("ExportToCSV", func(t *testing.T) {
		data, err := ExportToCSV(testMix())
		if err != nil {
			t.Fatalf("ExportToCSV failed: %v", err)
		}

		output := string(data)

		if !strings.Contains(output, "Position,ID,Name,Artist,Album,Duration,Key,Tempo,Energy,URI") {
			t.Errorf("CSV missing headers, got: %s", output)
		}
		if !strings.Contains(output, "1,track1,Song One,Artist One,Album One,3:00,A minor,124.4,0.71,spotify:track:1") {
			t.Errorf("CSV missing track1 row, got: %s", output)
		}
		if !strings.Contains(output, "2,track2,Song Two,Artist Two,,4:05,C major,126.0,0.80,spotify:track:2") {
			t.Errorf("CSV missing track2 row, got: %s", output)
		}
	})

	t.Run("ExportToMarkdown", func(t *testing.T) {
		rec := testRecord()

		t.Run("unsaved", func(t *testing.T) {
			data, err := ExportToMarkdown(rec)
			if err != nil {
				t.Fatalf("ExportToMarkdown failed: %v", err)
			}

			output := string(data)

			for _, want := range []string{
				"# Mix #7",
				"**Source**: recs `Daft Punk`",
				"**Target**: 45 min",
				"**Length**: 7:05 (2 tracks)",
				"## Tracks",
				"1. Artist One - Song One [A minor, 124 BPM, 3:00]",
				"2. Artist Two - Song Two [C major, 126 BPM, 4:05]",
			} {
				if !strings.Contains(output, want) {
					t.Errorf("Markdown missing %q, got:\n%s", want, output)
				}
			}
			if strings.Contains(output, "**Playlist**") {
				t.Error("unsaved mix should not list a playlist")
			}
		})

		t.Run("saved", func(t *testing.T) {
			rec.SetSavedURL("https://open.example.com/playlist/abc")
			data, _ := ExportToMarkdown(rec)
			if !strings.Contains(string(data), "**Playlist**: https://open.example.com/playlist/abc") {
				t.Error("Markdown missing saved playlist url")
			}
		})
	})

	t.Run("ExportToJSON", func(t *testing.T) {
		data, err := ExportToJSON(testRecord())
		if err != nil {
			t.Fatalf("ExportToJSON failed: %v", err)
		}

		var doc struct {
			ID         string `json:"id"`
			Sequence   int    `json:"sequence"`
			SourceMode string `json:"source_mode"`
			Tracks     []struct {
				ID    string  `json:"id"`
				Tempo float64 `json:"tempo"`
			} `json:"tracks"`
		}
		if err := json.Unmarshal(data, &doc); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if doc.ID != "mix-id" || doc.Sequence != 7 || doc.SourceMode != "recs" {
			t.Errorf("unexpected document %+v", doc)
		}
		if len(doc.Tracks) != 2 || doc.Tracks[0].ID != "track1" {
			t.Errorf("unexpected tracks %+v", doc.Tracks)
		}
	})

	t.Run("ToMetadataJSON", func(t *testing.T) {
		data, err := ToMetadataJSON(testRecord())
		if err != nil {
			t.Fatalf("ToMetadataJSON failed: %v", err)
		}

		var doc map[string]any
		if err := json.Unmarshal(data, &doc); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if doc["tracks"] != float64(2) {
			t.Errorf("expected track count 2, got %v", doc["tracks"])
		}
		if doc["input"] != "Daft Punk" {
			t.Errorf("expected input, got %v", doc["input"])
		}
	})
}

func TestWriters(t *testing.T) {
	t.Run("WriteCSVExport", func(t *testing.T) {
		t.Run("WithDefaultPath", func(t *testing.T) {
			tempDir := t.TempDir()
			originalDir := th.MustGetwd(t)
			th.MustChdir(t, tempDir)
			defer th.MustChdir(t, originalDir)

			result, err := WriteCSVExport(testRecord(), "")
			if err != nil {
				t.Fatalf("WriteCSVExport failed: %v", err)
			}

			if result.TracksFile != "mix_7_tracks.csv" {
				t.Errorf("Expected tracks file 'mix_7_tracks.csv', got '%s'", result.TracksFile)
			}
			if result.MetadataFile != "mix_7_metadata.json" {
				t.Errorf("Expected metadata file 'mix_7_metadata.json', got '%s'", result.MetadataFile)
			}

			th.AssertFileExists(t, result.TracksFile)
			th.AssertFileExists(t, result.MetadataFile)

			csvContent := th.MustReadFile(t, result.TracksFile)
			if !strings.Contains(csvContent, "track1") || !strings.Contains(csvContent, "Song One") {
				t.Errorf("CSV missing track data")
			}
		})

		t.Run("WithCustomPath", func(t *testing.T) {
			base := filepath.Join(t.TempDir(), "custom_export")

			result, err := WriteCSVExport(testRecord(), base)
			if err != nil {
				t.Fatalf("WriteCSVExport failed: %v", err)
			}

			if result.TracksFile != base+"_tracks.csv" {
				t.Errorf("Expected '%s_tracks.csv', got '%s'", base, result.TracksFile)
			}
			th.AssertFileExists(t, result.TracksFile)
			th.AssertFileExists(t, result.MetadataFile)
		})
	})

	t.Run("WriteExport", func(t *testing.T) {
		tests := []struct {
			format string
			files  int
			want   string
		}{
			{FormatText, 1, "Artist One - Song One"},
			{FormatMarkdown, 1, "# Mix #7"},
			{FormatJSON, 1, `"source_mode": "recs"`},
			{FormatCSV, 2, "Position,ID,Name"},
		}

		for _, tt := range tests {
			t.Run(tt.format, func(t *testing.T) {
				path := filepath.Join(t.TempDir(), "out")
				files, err := WriteExport(testRecord(), tt.format, path)
				if err != nil {
					t.Fatalf("WriteExport failed: %v", err)
				}
				if len(files) != tt.files {
					t.Fatalf("expected %d files, got %v", tt.files, files)
				}
				for _, f := range files {
					th.AssertFileExists(t, f)
				}
				if content := th.MustReadFile(t, files[0]); !strings.Contains(content, tt.want) {
					t.Errorf("expected %q in %s, got:\n%s", tt.want, files[0], content)
				}
			})
		}

		t.Run("Default Names", func(t *testing.T) {
			tempDir := t.TempDir()
			originalDir := th.MustGetwd(t)
			th.MustChdir(t, tempDir)
			defer th.MustChdir(t, originalDir)

			for format, want := range map[string]string{
				FormatText:     "mix_7.txt",
				FormatMarkdown: "mix_7.md",
				FormatJSON:     "mix_7.json",
			} {
				files, err := WriteExport(testRecord(), format, "")
				if err != nil {
					t.Fatalf("WriteExport(%s) failed: %v", format, err)
				}
				if files[0] != want {
					t.Errorf("format %s: expected %s, got %s", format, want, files[0])
				}
			}
		})

		t.Run("Unknown Format", func(t *testing.T) {
			_, err := WriteExport(testRecord(), "xml", "")
			if !errors.Is(err, shared.ErrInvalidArgument) {
				t.Errorf("expected ErrInvalidArgument, got %v", err)
			}
		})
	})
}
