// package formatter renders mixes to text, CSV, Markdown and JSON
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/continuum/internal/models"
	"github.com/desertthunder/continuum/internal/shared"
)

// DefaultTextFile is the file WriteMixText uses when no path is given.
const DefaultTextFile = "mix.txt"

// Supported export formats.
const (
	FormatText     = "txt"
	FormatCSV      = "csv"
	FormatMarkdown = "markdown"
	FormatJSON     = "json"
)

// MixText renders one "<artist> - <name>" line per entry, newline-separated, without a trailing newline.
func MixText(mix models.Mix) string {
	lines := make([]string, 0, len(mix))
	for _, track := range mix {
		lines = append(lines, track.Line())
	}
	return strings.Join(lines, "\n")
}

// WriteMixText writes [MixText] to path, defaulting to [DefaultTextFile].
func WriteMixText(mix models.Mix, path string) (string, error) {
	if path == "" {
		path = DefaultTextFile
	}

	if err := os.WriteFile(path, []byte(MixText(mix)), 0644); err != nil {
		return "", fmt.Errorf("failed to write text file: %w", err)
	}

	return path, nil
}

// FormatDuration renders d as m:ss, or h:mm:ss from an hour up.
func FormatDuration(d time.Duration) string {
	total := int(d.Round(time.Second).Seconds())
	h, m, s := total/3600, (total%3600)/60, total%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

func trackDuration(t models.EnrichedTrack) string {
	return FormatDuration(time.Duration(t.DurationMS) * time.Millisecond)
}

// ExportToCSV converts a mix to CSV with columns: Position, ID, Name, Artist, Album, Duration, Key, Tempo, Energy, URI
func ExportToCSV(mix models.Mix) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Position", "ID", "Name", "Artist", "Album", "Duration", "Key", "Tempo", "Energy", "URI"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for i, track := range mix {
		record := []string{
			strconv.Itoa(i + 1),
			track.ID,
			track.Name,
			track.Artist,
			track.Album,
			trackDuration(track),
			track.KeyName(),
			strconv.FormatFloat(track.Tempo, 'f', 1, 64),
			strconv.FormatFloat(track.Energy, 'f', 2, 64),
			track.URI,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown renders a mix record with its inputs and a numbered track list.
func ExportToMarkdown(rec *models.MixRecord) ([]byte, error) {
	var buf bytes.Buffer
	tracks := rec.Tracks()

	buf.WriteString(fmt.Sprintf("# Mix #%d\n\n", rec.Sequence()))
	buf.WriteString(fmt.Sprintf("**Source**: %s `%s`\n", rec.SourceMode(), rec.Input()))
	buf.WriteString(fmt.Sprintf("**Target**: %.0f min\n", rec.TargetMinutes()))
	buf.WriteString(fmt.Sprintf("**Length**: %s (%d tracks)\n", FormatDuration(tracks.TotalDuration()), tracks.Len()))
	if rec.SavedURL() != "" {
		buf.WriteString(fmt.Sprintf("**Playlist**: %s\n", rec.SavedURL()))
	}
	buf.WriteString(fmt.Sprintf("**Created**: %s\n\n", rec.CreatedAt().Format(time.RFC3339)))

	buf.WriteString("## Tracks\n\n")
	for i, track := range tracks {
		buf.WriteString(fmt.Sprintf("%d. %s - %s [%s, %.0f BPM, %s]\n",
			i+1, track.Artist, track.Name, track.KeyName(), track.Tempo, trackDuration(track)))
	}

	return buf.Bytes(), nil
}

// mixDocument is the JSON form of a [models.MixRecord].
type mixDocument struct {
	ID            string     `json:"id"`
	Sequence      int        `json:"sequence"`
	AuthMode      string     `json:"auth_mode"`
	SourceMode    string     `json:"source_mode"`
	Input         string     `json:"input"`
	TargetMinutes float64    `json:"target_minutes"`
	SavedURL      string     `json:"saved_url,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	Tracks        models.Mix `json:"tracks"`
}

func toDocument(rec *models.MixRecord) mixDocument {
	tracks := rec.Tracks()
	if tracks == nil {
		tracks = models.Mix{}
	}
	return mixDocument{
		ID:            rec.ID(),
		Sequence:      rec.Sequence(),
		AuthMode:      rec.AuthMode().String(),
		SourceMode:    rec.SourceMode().String(),
		Input:         rec.Input(),
		TargetMinutes: rec.TargetMinutes(),
		SavedURL:      rec.SavedURL(),
		CreatedAt:     rec.CreatedAt(),
		Tracks:        tracks,
	}
}

// ExportToJSON renders a mix record, tracks included, as indented JSON.
func ExportToJSON(rec *models.MixRecord) ([]byte, error) {
	return shared.MarshalJSON(toDocument(rec), true)
}

// ToMetadataJSON renders a mix record without its tracks.
func ToMetadataJSON(rec *models.MixRecord) ([]byte, error) {
	doc := toDocument(rec)
	doc.Tracks = nil
	return shared.MarshalJSON(struct {
		mixDocument
		Tracks int `json:"tracks"`
	}{doc, rec.Tracks().Len()}, true)
}

// CSVExportResult contains the paths of files created by WriteCSVExport
type CSVExportResult struct {
	TracksFile   string
	MetadataFile string
}

// DefaultBaseName is the base filename used for a record when none is given.
func DefaultBaseName(rec *models.MixRecord) string {
	return fmt.Sprintf("mix_%d", rec.Sequence())
}

// WriteCSVExport exports a mix record to CSV with an accompanying metadata JSON file.
//
// Defaults to mix_{sequence} as the base filename & creates {base}_tracks.csv and {base}_metadata.json
func WriteCSVExport(rec *models.MixRecord, baseFilepath string) (*CSVExportResult, error) {
	if baseFilepath == "" {
		baseFilepath = DefaultBaseName(rec)
	}

	csvData, err := ExportToCSV(rec.Tracks())
	if err != nil {
		return nil, fmt.Errorf("failed to generate CSV: %w", err)
	}

	tracksFile := baseFilepath + "_tracks.csv"
	if err := os.WriteFile(tracksFile, csvData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write CSV file: %w", err)
	}

	metadataJSON, err := ToMetadataJSON(rec)
	if err != nil {
		return nil, fmt.Errorf("failed to generate metadata JSON: %w", err)
	}

	metadataFile := baseFilepath + "_metadata.json"
	if err := os.WriteFile(metadataFile, metadataJSON, 0644); err != nil {
		return nil, fmt.Errorf("failed to write metadata file: %w", err)
	}

	return &CSVExportResult{
		TracksFile:   tracksFile,
		MetadataFile: metadataFile,
	}, nil
}

// WriteExport writes rec in format to path and returns the files it created.
//
// For CSV, path is a base name (see [WriteCSVExport]). An empty path derives a name from the record.
func WriteExport(rec *models.MixRecord, format, path string) ([]string, error) {
	switch format {
	case FormatCSV:
		res, err := WriteCSVExport(rec, path)
		if err != nil {
			return nil, fmt.Errorf("CSV export failed: %w", err)
		}
		return []string{res.TracksFile, res.MetadataFile}, nil
	case FormatMarkdown:
		if path == "" {
			path = DefaultBaseName(rec) + ".md"
		}
		data, err := ExportToMarkdown(rec)
		if err != nil {
			return nil, fmt.Errorf("markdown export failed: %w", err)
		}
		if err := os.WriteFile(path, data, 0644); err != nil {
			return nil, fmt.Errorf("markdown write failed: %w", err)
		}
		return []string{path}, nil
	case FormatJSON:
		if path == "" {
			path = DefaultBaseName(rec) + ".json"
		}
		data, err := ExportToJSON(rec)
		if err != nil {
			return nil, fmt.Errorf("JSON marshal failed: %w", err)
		}
		if err := os.WriteFile(path, data, 0644); err != nil {
			return nil, fmt.Errorf("JSON write failed: %w", err)
		}
		return []string{path}, nil
	case FormatText, "":
		if path == "" {
			path = DefaultBaseName(rec) + ".txt"
		}
		written, err := WriteMixText(rec.Tracks(), path)
		if err != nil {
			return nil, fmt.Errorf("text export failed: %w", err)
		}
		return []string{written}, nil
	default:
		return nil, fmt.Errorf("%w: unknown format %q (want txt, csv, markdown or json)", shared.ErrInvalidArgument, format)
	}
}
