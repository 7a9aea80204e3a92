package models

import (
	"fmt"
	"strings"
)

// AuthMode selects how the backend talks to the streaming catalog.
type AuthMode int

const (
	// ClientAuth uses application credentials; read-only, mixes are exported as text.
	ClientAuth AuthMode = iota
	// UserAuth uses a user token obtained through the redirect flow; mixes can be saved.
	UserAuth
)

func (m AuthMode) String() string {
	switch m {
	case ClientAuth:
		return "client"
	case UserAuth:
		return "user"
	default:
		return ""
	}
}

// CanSave reports whether playlists can be created in this mode.
func (m AuthMode) CanSave() bool { return m == UserAuth }

// ParseAuthMode parses "user" or "client".
func ParseAuthMode(s string) (AuthMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "user":
		return UserAuth, nil
	case "client":
		return ClientAuth, nil
	default:
		return 0, fmt.Errorf("unknown auth mode %q (want user or client)", s)
	}
}

// SourceMode selects where the raw tracks come from.
type SourceMode int

const (
	// PlaylistSource reads an existing playlist by ID or URL.
	PlaylistSource SourceMode = iota
	// RecommendationsSource builds a pool from a seed artist and related artists.
	RecommendationsSource
)

func (m SourceMode) String() string {
	switch m {
	case PlaylistSource:
		return "playlist"
	case RecommendationsSource:
		return "recs"
	default:
		return ""
	}
}

// Prompt is the label for the free-text input in this mode.
func (m SourceMode) Prompt() string {
	if m == RecommendationsSource {
		return "Seed artist"
	}
	return "Playlist ID or URL"
}

// ParseSourceMode parses "playlist", "recs" or "recommendations".
func ParseSourceMode(s string) (SourceMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "playlist":
		return PlaylistSource, nil
	case "recs", "recommendations":
		return RecommendationsSource, nil
	default:
		return 0, fmt.Errorf("unknown source mode %q (want playlist or recs)", s)
	}
}
