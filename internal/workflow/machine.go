package workflow

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/continuum/internal/formatter"
	"github.com/desertthunder/continuum/internal/gateway"
	"github.com/desertthunder/continuum/internal/models"
	"github.com/desertthunder/continuum/internal/pipeline"
	"github.com/desertthunder/continuum/internal/shared"
)

// DefaultMinutes is the target mix length when none is configured.
const DefaultMinutes = 45.0

// Recorder persists solved mixes. [repositories.MixRepository] implements it.
type Recorder interface {
	Create(rec *models.MixRecord) error
	SetSavedURL(id, url string) error
}

// Observer receives a snapshot after every change to the session.
type Observer func(Snapshot)

// MachineOpts configures a [Machine].
type MachineOpts struct {
	Engine         *pipeline.Engine // Defaults to an unpaced engine over the gateway
	Recorder       Recorder         // Optional mix history
	Observer       Observer
	Logger         *log.Logger
	DefaultMinutes float64
}

// Machine drives a [Session] through its stages.
type Machine struct {
	gw       gateway.Gateway
	engine   *pipeline.Engine
	recorder Recorder
	observer Observer
	logger   *log.Logger
	session  Session
}

// NewMachine creates a Machine in the Auth stage.
func NewMachine(gw gateway.Gateway, opts MachineOpts) *Machine {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	engine := opts.Engine
	if engine == nil {
		engine = pipeline.NewEngine(gw, pipeline.EngineOpts{Logger: logger})
	}
	minutes := opts.DefaultMinutes
	if minutes <= 0 {
		minutes = DefaultMinutes
	}

	return &Machine{
		gw:       gw,
		engine:   engine,
		recorder: opts.Recorder,
		observer: opts.Observer,
		logger:   logger,
		session:  newSession(minutes),
	}
}

// SetObserver replaces the observer.
func (m *Machine) SetObserver(o Observer) { m.observer = o }

// Snapshot returns an immutable copy of the session.
func (m *Machine) Snapshot() Snapshot { return m.session.snapshot() }

func (m *Machine) notify() {
	if m.observer != nil {
		m.observer(m.session.snapshot())
	}
}

func (m *Machine) transition(next Stage) {
	prev := m.session.stage.Kind()
	m.session.stage = next
	if prev != next.Kind() {
		m.logger.Info("stage changed", "from", prev, "to", next.Kind())
	}
	m.notify()
}

// fail stores err on the session and moves to next.
func (m *Machine) fail(next Stage, err error) error {
	m.session.err = err
	if kind := gateway.KindOf(err); kind != 0 {
		m.logger.Warn("gateway fault", "kind", kind, "stage", m.session.stage.Kind())
	}
	m.transition(next)
	return err
}

func (m *Machine) invalid(op string) error {
	return fmt.Errorf("%w: %s is not allowed in the %s stage", shared.ErrInvalidTransition, op, m.session.stage.Kind())
}

func (m *Machine) begin() {
	m.session.err = nil
}

// SubmitAuth chooses the authorization mode.
//
// Client mode moves straight to Source. User mode asks the backend for an authorization URL and
// suspends in Auth with it pending until [Machine.CompleteAuth] or [Machine.CancelAuth].
func (m *Machine) SubmitAuth(ctx context.Context, mode models.AuthMode) error {
	st, ok := m.session.stage.(AuthStage)
	if !ok || st.Pending != nil {
		return m.invalid("submit auth")
	}

	m.begin()
	m.session.authMode = mode

	if mode == models.ClientAuth {
		m.transition(SourceStage{})
		return nil
	}

	m.notify()
	url, err := m.gw.AuthURL(ctx)
	if err != nil {
		return m.fail(AuthStage{}, err)
	}

	m.transition(AuthStage{Pending: &PendingAuth{URL: url}})
	return nil
}

// CompleteAuth hands the redirected URL to the backend and moves to Source on success.
func (m *Machine) CompleteAuth(ctx context.Context, redirect string) error {
	st, ok := m.session.stage.(AuthStage)
	if !ok || st.Pending == nil {
		return m.invalid("complete auth")
	}

	m.begin()
	m.notify()

	if err := m.gw.ExchangeToken(ctx, redirect); err != nil {
		return m.fail(AuthStage{}, err)
	}

	m.transition(SourceStage{})
	return nil
}

// CancelAuth abandons a pending authorization and returns to mode selection.
func (m *Machine) CancelAuth() error {
	st, ok := m.session.stage.(AuthStage)
	if !ok || st.Pending == nil {
		return m.invalid("cancel auth")
	}

	m.session.err = shared.ErrAuthCancelled
	m.transition(AuthStage{})
	return nil
}

// SubmitSource fetches the track pool, enriches it and solves it into a mix.
//
// The inputs are passed to the backend as given. Any fault returns the session to Source.
func (m *Machine) SubmitSource(ctx context.Context, sourceMode models.SourceMode, input string, minutes float64) error {
	if _, ok := m.session.stage.(SourceStage); !ok {
		return m.invalid("submit source")
	}

	m.begin()
	m.session.sourceMode = sourceMode
	m.session.input = input
	m.session.targetMinutes = minutes
	m.transition(ProcessingStage{Message: "Fetching tracks..."})

	tracks, err := m.gw.FetchSource(ctx, m.session.authMode, sourceMode, input)
	if err != nil {
		return m.fail(SourceStage{}, err)
	}
	m.logger.Info("source fetched", "mode", sourceMode, "tracks", len(tracks))

	mix, err := m.engine.Run(ctx, tracks, minutes, func(u pipeline.Update) {
		m.transition(ProcessingStage{Progress: u.Progress, Message: u.Message})
	})
	if err != nil {
		return m.fail(SourceStage{}, err)
	}

	m.record(mix)
	m.transition(ResultsStage{Mix: mix})
	return nil
}

func (m *Machine) record(mix models.Mix) {
	m.session.recordID = ""
	if m.recorder == nil {
		return
	}

	rec := models.NewMixRecord(0, m.session.authMode, m.session.sourceMode, m.session.input, m.session.targetMinutes, mix)
	if err := m.recorder.Create(rec); err != nil {
		m.logger.Error("failed to record mix", "error", err)
		return
	}
	m.session.recordID = rec.ID()
}

// Restart discards the results and returns to Source with the previous inputs kept.
func (m *Machine) Restart() error {
	if _, ok := m.session.stage.(ResultsStage); !ok {
		return m.invalid("restart")
	}

	m.session.err = nil
	m.session.recordID = ""
	m.transition(SourceStage{})
	return nil
}

// Save creates a playlist from the mix. Only allowed in user mode; a fault keeps the results.
func (m *Machine) Save(ctx context.Context) error {
	st, ok := m.session.stage.(ResultsStage)
	if !ok {
		return m.invalid("save")
	}
	if !m.session.authMode.CanSave() {
		return fmt.Errorf("%w: saving requires user authorization", shared.ErrInvalidTransition)
	}

	m.begin()
	m.notify()

	ref, err := m.gw.SavePlaylist(ctx, st.Mix.URIs())
	if err != nil {
		return m.fail(st, err)
	}

	st.Saved = &ref
	m.transition(st)
	m.logger.Info("mix saved")

	if m.recorder != nil && m.session.recordID != "" {
		if err := m.recorder.SetSavedURL(m.session.recordID, ref.URL); err != nil {
			m.logger.Error("failed to record saved playlist", "error", err)
		}
	}
	return nil
}

// Export renders the mix as "<artist> - <name>" lines.
func (m *Machine) Export() (string, error) {
	st, ok := m.session.stage.(ResultsStage)
	if !ok {
		return "", m.invalid("export")
	}
	return formatter.MixText(st.Mix), nil
}
