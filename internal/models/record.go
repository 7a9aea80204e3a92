package models

import (
	"errors"
	"fmt"
	"time"
)

// MixRecord is a solved mix persisted to the history, together with the inputs that produced it.
type MixRecord struct {
	id            string
	sequence      int
	authMode      AuthMode
	sourceMode    SourceMode
	input         string
	targetMinutes float64
	tracks        Mix
	savedURL      string
	createdAt     time.Time
	updatedAt     time.Time
	deletedAt     *time.Time
}

// NewMixRecord creates a record for a freshly solved mix.
func NewMixRecord(sequence int, authMode AuthMode, sourceMode SourceMode, input string, targetMinutes float64, tracks Mix) *MixRecord {
	now := time.Now()
	return &MixRecord{
		sequence:      sequence,
		authMode:      authMode,
		sourceMode:    sourceMode,
		input:         input,
		targetMinutes: targetMinutes,
		tracks:        tracks.Clone(),
		createdAt:     now,
		updatedAt:     now,
	}
}

func (m *MixRecord) ID() string { return m.id }
func (m *MixRecord) Sequence() int { return m.sequence }
func (m *MixRecord) AuthMode() AuthMode { return m.authMode }
func (m *MixRecord) SourceMode() SourceMode { return m.sourceMode }
func (m *MixRecord) Input() string { return m.input }
func (m *MixRecord) TargetMinutes() float64 { return m.targetMinutes }
func (m *MixRecord) Tracks() Mix { return m.tracks }
func (m *MixRecord) SavedURL() string { return m.savedURL }
func (m *MixRecord) CreatedAt() time.Time { return m.createdAt }
func (m *MixRecord) UpdatedAt() time.Time { return m.updatedAt }
func (m *MixRecord) DeletedAt() *time.Time { return m.deletedAt }

func (m *MixRecord) SetID(id string) { m.id = id }
func (m *MixRecord) SetSequence(sequence int) { m.sequence = sequence }
func (m *MixRecord) SetTracks(tracks Mix) { m.tracks = tracks }
func (m *MixRecord) SetSavedURL(url string) { m.savedURL = url }
func (m *MixRecord) SetCreatedAt(t time.Time) { m.createdAt = t }
func (m *MixRecord) SetUpdatedAt(t time.Time) { m.updatedAt = t }
func (m *MixRecord) SetDeletedAt(t *time.Time) { m.deletedAt = t }

// Validate checks the record's required fields.
func (m *MixRecord) Validate() error {
	if m.authMode.String() == "" {
		return errors.New("auth mode is invalid")
	}
	if m.sourceMode.String() == "" {
		return errors.New("source mode is invalid")
	}
	if m.input == "" {
		return errors.New("input is required")
	}
	for i, t := range m.tracks {
		if t.URI == "" {
			return fmt.Errorf("track %q at position %d has no uri", t.Name, i)
		}
	}
	return nil
}
