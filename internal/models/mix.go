package models

import "time"

// Mix is the solver's ordered selection from the enriched tracks.
type Mix []EnrichedTrack

// Len returns the number of entries.
func (m Mix) Len() int { return len(m) }

// URIs returns the track URIs in mix order.
func (m Mix) URIs() []string {
	uris := make([]string, 0, len(m))
	for _, t := range m {
		uris = append(uris, t.URI)
	}
	return uris
}

// TotalDuration sums the track durations.
func (m Mix) TotalDuration() time.Duration {
	var ms int
	for _, t := range m {
		ms += t.DurationMS
	}
	return time.Duration(ms) * time.Millisecond
}

// Clone returns a copy that shares no backing array with m.
func (m Mix) Clone() Mix {
	if m == nil {
		return nil
	}
	return append(Mix(nil), m...)
}

// SavedPlaylistRef locates a playlist created from a mix.
type SavedPlaylistRef struct {
	URL string `json:"url"`
}
