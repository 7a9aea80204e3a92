package workflow

import "github.com/desertthunder/continuum/internal/models"

// StageKind enumerates the stage variants.
type StageKind int

const (
	KindAuth StageKind = iota
	KindSource
	KindProcessing
	KindResults
)

func (k StageKind) String() string {
	switch k {
	case KindAuth:
		return "auth"
	case KindSource:
		return "source"
	case KindProcessing:
		return "processing"
	case KindResults:
		return "results"
	default:
		return "unknown"
	}
}

// Stage is one of [AuthStage], [SourceStage], [ProcessingStage] or [ResultsStage].
type Stage interface {
	Kind() StageKind
	clone() Stage
}

// PendingAuth is present while the machine waits for the authorization redirect.
type PendingAuth struct {
	URL string
}

// AuthStage selects the authorization mode.
type AuthStage struct {
	Pending *PendingAuth
}

func (AuthStage) Kind() StageKind { return KindAuth }

func (s AuthStage) clone() Stage {
	if s.Pending != nil {
		p := *s.Pending
		s.Pending = &p
	}
	return s
}

// SourceStage collects the source mode, input and target length.
type SourceStage struct{}

func (SourceStage) Kind() StageKind { return KindSource }

func (s SourceStage) clone() Stage { return s }

// ProcessingStage runs fetch, enrichment and solve.
type ProcessingStage struct {
	Progress models.ProgressState
	Message  string
}

func (ProcessingStage) Kind() StageKind { return KindProcessing }

func (s ProcessingStage) clone() Stage { return s }

// ResultsStage holds the solved mix and, once saved, where it was saved.
type ResultsStage struct {
	Mix   models.Mix
	Saved *models.SavedPlaylistRef
}

func (ResultsStage) Kind() StageKind { return KindResults }

func (s ResultsStage) clone() Stage {
	s.Mix = s.Mix.Clone()
	if s.Saved != nil {
		ref := *s.Saved
		s.Saved = &ref
	}
	return s
}
