package workflow

import (
	"github.com/desertthunder/continuum/internal/gateway"
	"github.com/desertthunder/continuum/internal/models"
)

// GenericErrorMessage is shown when a fault carries no message.
const GenericErrorMessage = "something went wrong"

// Session is the state of one interaction. Only [Machine] mutates it.
type Session struct {
	stage         Stage
	authMode      models.AuthMode
	sourceMode    models.SourceMode
	input         string
	targetMinutes float64
	err           error
	recordID      string
}

func newSession(minutes float64) Session {
	return Session{
		stage:         AuthStage{},
		authMode:      models.UserAuth,
		sourceMode:    models.PlaylistSource,
		targetMinutes: minutes,
	}
}

// Snapshot is an immutable copy of a [Session].
type Snapshot struct {
	Stage         Stage
	AuthMode      models.AuthMode
	SourceMode    models.SourceMode
	Input         string
	TargetMinutes float64
	Err           error
}

func (s *Session) snapshot() Snapshot {
	return Snapshot{
		Stage:         s.stage.clone(),
		AuthMode:      s.authMode,
		SourceMode:    s.sourceMode,
		Input:         s.input,
		TargetMinutes: s.targetMinutes,
		Err:           s.err,
	}
}

// Kind returns the kind of the current stage.
func (s Snapshot) Kind() StageKind { return s.Stage.Kind() }

// ErrorMessage returns the human-readable form of Err, or "" when there is none.
func (s Snapshot) ErrorMessage() string {
	if s.Err == nil {
		return ""
	}
	if msg := gateway.MessageOf(s.Err); msg != "" {
		return msg
	}
	return GenericErrorMessage
}

// PendingURL returns the authorization URL while the machine waits for a redirect.
func (s Snapshot) PendingURL() (string, bool) {
	if st, ok := s.Stage.(AuthStage); ok && st.Pending != nil {
		return st.Pending.URL, true
	}
	return "", false
}

// Progress returns the enrichment progress, or the zero value outside Processing.
func (s Snapshot) Progress() models.ProgressState {
	if st, ok := s.Stage.(ProcessingStage); ok {
		return st.Progress
	}
	return models.ProgressState{}
}

// Mix returns the solved mix, or nil outside Results.
func (s Snapshot) Mix() models.Mix {
	if st, ok := s.Stage.(ResultsStage); ok {
		return st.Mix
	}
	return nil
}

// Saved returns the saved playlist reference, if any.
func (s Snapshot) Saved() *models.SavedPlaylistRef {
	if st, ok := s.Stage.(ResultsStage); ok {
		return st.Saved
	}
	return nil
}

// CanSave reports whether [Machine.Save] is allowed.
func (s Snapshot) CanSave() bool {
	return s.Kind() == KindResults && s.AuthMode.CanSave()
}
