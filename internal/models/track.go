package models

import "fmt"

// RawTrack is a track returned by the source lookup, before feature enrichment.
type RawTrack struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Artist     string `json:"artist"`
	Album      string `json:"album,omitempty"`
	URI        string `json:"uri"`
	DurationMS int    `json:"duration_ms"`
}

// EnrichedTrack is a RawTrack the feature service recognised.
//
// Key is a pitch class 0–11 and Mode is 0 (minor) or 1 (major).
// The JSON form is flat: RawTrack fields sit next to the features.
type EnrichedTrack struct {
	RawTrack
	Key    int     `json:"key"`
	Mode   int     `json:"mode"`
	Tempo  float64 `json:"tempo"`
	Energy float64 `json:"energy"`
	BPM    float64 `json:"BPM"`
}

var pitchClasses = [12]string{"C", "C♯", "D", "E♭", "E", "F", "F♯", "G", "A♭", "A", "B♭", "B"}

// KeyName renders Key and Mode, e.g. "A minor"; "?" when Key is out of range.
func (t EnrichedTrack) KeyName() string {
	if t.Key < 0 || t.Key > 11 {
		return "?"
	}
	if t.Mode == 0 {
		return pitchClasses[t.Key] + " minor"
	}
	return pitchClasses[t.Key] + " major"
}

// Line renders the export form "<artist> - <name>".
func (t EnrichedTrack) Line() string {
	return fmt.Sprintf("%s - %s", t.Artist, t.Name)
}
