package ui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/continuum/internal/formatter"
	"github.com/desertthunder/continuum/internal/models"
	"github.com/desertthunder/continuum/internal/shared"
	"github.com/desertthunder/continuum/internal/workflow"
)

const eventBuffer = 64

// Source form fields.
const (
	fieldInput = iota
	fieldMinutes
)

// Opts configures a [Model].
type Opts struct {
	ExportPath     string                 // Defaults to [formatter.DefaultTextFile]
	DefaultMinutes float64                // Used when the minutes field does not parse
	OpenBrowser    func(url string) error // Defaults to [shared.OpenBrowser]

	// WaitRedirect captures the authorization redirect instead of a paste when set.
	WaitRedirect func(ctx context.Context) (string, error)
}

// Model represents the TUI application state.
//
// The machine is only touched from one goroutine at a time: intents run in a command while busy is set,
// and every session change arrives back through events.
type Model struct {
	ctx     context.Context
	machine *workflow.Machine
	opts    Opts
	events  chan tea.Msg
	snap    workflow.Snapshot
	busy    bool
	waiting bool
	notice  string

	authChoice models.AuthMode
	sourceMode models.SourceMode
	focus      int

	redirect textinput.Model
	source   textinput.Model
	minutes  textinput.Model
	mixList  list.Model
	spinner  spinner.Model
	progress progress.Model
	help     help.Model
	keys     keyMap

	width  int
	height int
}

// NewModel creates a TUI model driving machine. It replaces the machine's observer.
func NewModel(ctx context.Context, machine *workflow.Machine, opts Opts) *Model {
	if opts.OpenBrowser == nil {
		opts.OpenBrowser = shared.OpenBrowser
	}
	if opts.DefaultMinutes <= 0 {
		opts.DefaultMinutes = workflow.DefaultMinutes
	}
	if opts.ExportPath == "" {
		opts.ExportPath = formatter.DefaultTextFile
	}

	m := &Model{
		ctx:      ctx,
		machine:  machine,
		opts:     opts,
		events:   make(chan tea.Msg, eventBuffer),
		snap:     machine.Snapshot(),
		spinner:  spinner.New(spinner.WithSpinner(spinner.Dot)),
		progress: progress.New(progress.WithDefaultGradient(), progress.WithWidth(50)),
		help:     help.New(),
		keys:     newKeyMap(),
	}
	m.authChoice = m.snap.AuthMode
	m.sourceMode = m.snap.SourceMode

	m.redirect = newInput("paste the redirected URL", 0)
	m.source = newInput(m.sourceMode.Prompt(), 0)
	m.minutes = newInput("minutes", 8)
	m.minutes.SetValue(strconv.FormatFloat(opts.DefaultMinutes, 'f', -1, 64))
	m.mixList = newMixList(nil, 0, 0)

	machine.SetObserver(m.observe)
	return m
}

func newInput(placeholder string, limit int) textinput.Model {
	in := textinput.New()
	in.Placeholder = placeholder
	if limit > 0 {
		in.CharLimit = limit
	}
	return in
}

func newMixList(mix models.Mix, width, height int) list.Model {
	if width <= 0 || height <= 0 {
		width, height = 80, 20
	}
	l := list.New(mixItems(mix), list.NewDefaultDelegate(), width, height)
	l.Title = fmt.Sprintf("Your mix (%d tracks)", len(mix))
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	l.DisableQuitKeybindings()
	return l
}

// observe runs on the intent goroutine.
func (m *Model) observe(snap workflow.Snapshot) {
	m.events <- snapshotMsg(snap)
}

// Init starts listening for session changes.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.waitForEvent(), m.spinner.Tick)
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.mixList.SetSize(max(msg.Width-4, 0), max(msg.Height-10, 0))
		m.progress.Width = min(max(msg.Width-4, 10), 60)
		return m, nil
	case tea.KeyMsg:
		return m.handleKeys(msg)
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case Msg:
		return m.handleMsg(msg)
	}
	return m, nil
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgSnapshot:
		m.apply(msg.data.(workflow.Snapshot))
		return m, m.waitForEvent()

	case MsgIntentDone:
		result := msg.data.(intentResult)
		m.busy = false
		m.apply(result.snap)
		switch {
		case errors.Is(result.err, shared.ErrInvalidTransition):
			m.notice = result.err.Error()
		case result.name == "save" && result.err == nil:
			if saved := result.snap.Saved(); saved != nil {
				m.notice = "Saved playlist: " + saved.URL
			}
		}

		cmds := []tea.Cmd{m.waitForEvent()}
		if _, pending := result.snap.PendingURL(); pending && m.opts.WaitRedirect != nil && !m.waiting {
			cmds = append(cmds, m.listenForRedirect())
		}
		return m, tea.Batch(cmds...)

	case MsgRedirectCaptured:
		data := msg.data.(struct {
			url string
			err error
		})
		m.waiting = false
		_, pending := m.snap.PendingURL()
		if !pending || m.busy {
			return m, nil
		}
		if data.err != nil {
			m.notice = fmt.Sprintf("Redirect listener stopped (%v); paste the URL instead", data.err)
			return m, nil
		}
		redirect := data.url
		return m, m.run("complete auth", func() error { return m.machine.CompleteAuth(m.ctx, redirect) })

	case MsgExported:
		data := msg.data.(struct {
			path string
			err  error
		})
		if data.err != nil {
			m.notice = fmt.Sprintf("Export failed: %v", data.err)
		} else {
			m.notice = "Exported to " + data.path
		}
		return m, nil
	}
	return m, nil
}

// apply adopts snap and resets widgets on stage entry.
func (m *Model) apply(snap workflow.Snapshot) {
	prev := m.snap.Kind()
	m.snap = snap

	switch snap.Kind() {
	case workflow.KindAuth:
		if _, pending := snap.PendingURL(); pending {
			m.redirect.Focus()
		} else {
			m.redirect.Reset()
			m.redirect.Blur()
		}
	case workflow.KindSource:
		if prev != workflow.KindSource {
			m.focusField(m.focus)
		}
	case workflow.KindResults:
		if prev != workflow.KindResults {
			m.mixList = newMixList(snap.Mix(), m.width-4, m.height-10)
		}
	}
}

func (m *Model) handleKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.kill) {
		return m, tea.Quit
	}
	if m.busy {
		return m, nil
	}

	switch m.snap.Kind() {
	case workflow.KindAuth:
		return m.handleAuthKeys(msg)
	case workflow.KindSource:
		return m.handleSourceKeys(msg)
	case workflow.KindResults:
		return m.handleResultKeys(msg)
	}
	if key.Matches(msg, m.keys.quit) {
		return m, tea.Quit
	}
	return m, nil
}

func (m *Model) handleAuthKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if url, pending := m.snap.PendingURL(); pending {
		switch {
		case key.Matches(msg, m.keys.back):
			return m, m.run("cancel auth", m.machine.CancelAuth)
		case key.Matches(msg, m.keys.open):
			if err := m.opts.OpenBrowser(url); err != nil {
				m.notice = "Could not open browser; copy the URL above"
			}
			return m, nil
		case key.Matches(msg, m.keys.enter):
			redirect := strings.TrimSpace(m.redirect.Value())
			return m, m.run("complete auth", func() error { return m.machine.CompleteAuth(m.ctx, redirect) })
		}

		var cmd tea.Cmd
		m.redirect, cmd = m.redirect.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.client):
		m.authChoice = models.ClientAuth
		return m, m.submitAuth()
	case key.Matches(msg, m.keys.user):
		m.authChoice = models.UserAuth
		return m, m.submitAuth()
	case key.Matches(msg, m.keys.up, m.keys.down, m.keys.toggle):
		m.authChoice = 1 - m.authChoice
	case key.Matches(msg, m.keys.enter):
		return m, m.submitAuth()
	}
	return m, nil
}

func (m *Model) submitAuth() tea.Cmd {
	mode := m.authChoice
	return m.run("submit auth", func() error { return m.machine.SubmitAuth(m.ctx, mode) })
}

func (m *Model) handleSourceKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.toggle):
		m.sourceMode = 1 - m.sourceMode
		m.source.Placeholder = m.sourceMode.Prompt()
		return m, nil
	case key.Matches(msg, m.keys.up, m.keys.down):
		m.focusField(1 - m.focus)
		return m, nil
	case key.Matches(msg, m.keys.enter):
		mode := m.sourceMode
		input := strings.TrimSpace(m.source.Value())
		minutes := m.parseMinutes()
		return m, m.run("submit source", func() error { return m.machine.SubmitSource(m.ctx, mode, input, minutes) })
	}

	var cmd tea.Cmd
	if m.focus == fieldInput {
		m.source, cmd = m.source.Update(msg)
	} else {
		m.minutes, cmd = m.minutes.Update(msg)
	}
	return m, cmd
}

func (m *Model) focusField(field int) {
	m.focus = field
	if field == fieldInput {
		m.source.Focus()
		m.minutes.Blur()
	} else {
		m.minutes.Focus()
		m.source.Blur()
	}
}

// parseMinutes falls back to the configured default when the field does not parse.
func (m *Model) parseMinutes() float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(m.minutes.Value()), 64)
	if err != nil {
		return m.opts.DefaultMinutes
	}
	return v
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.export):
		return m, m.export()
	case key.Matches(msg, m.keys.save):
		if !m.snap.CanSave() {
			m.notice = "Saving requires user authorization"
			return m, nil
		}
		return m, m.run("save", func() error { return m.machine.Save(m.ctx) })
	case key.Matches(msg, m.keys.restart):
		m.notice = ""
		return m, m.run("restart", m.machine.Restart)
	case key.Matches(msg, m.keys.open):
		if saved := m.snap.Saved(); saved != nil {
			if err := m.opts.OpenBrowser(saved.URL); err != nil {
				m.notice = "Could not open browser: " + saved.URL
			}
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.mixList, cmd = m.mixList.Update(msg)
	return m, cmd
}

func (m *Model) export() tea.Cmd {
	text, err := m.machine.Export()
	if err != nil {
		m.notice = err.Error()
		return nil
	}

	path := m.opts.ExportPath
	return func() tea.Msg {
		return exportedMsg(path, os.WriteFile(path, []byte(text), 0644))
	}
}

// run executes an intent off the update loop. The final snapshot travels on the same channel as
// the observer's, so it can never overtake them.
func (m *Model) run(name string, intent func() error) tea.Cmd {
	m.busy = true
	m.notice = ""
	return func() tea.Msg {
		err := intent()
		m.events <- intentDoneMsg(name, m.machine.Snapshot(), err)
		return nil
	}
}

func (m *Model) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		return <-m.events
	}
}

func (m *Model) listenForRedirect() tea.Cmd {
	m.waiting = true
	wait := m.opts.WaitRedirect
	ctx := m.ctx
	return func() tea.Msg {
		url, err := wait(ctx)
		return redirectCapturedMsg(url, err)
	}
}

// View renders the UI based on the current stage.
func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(styles.title.Render("continuum"))
	b.WriteString("\n")

	switch m.snap.Kind() {
	case workflow.KindAuth:
		b.WriteString(m.renderAuth())
	case workflow.KindSource:
		b.WriteString(m.renderSource())
	case workflow.KindProcessing:
		b.WriteString(m.renderProcessing())
	case workflow.KindResults:
		b.WriteString(m.renderResults())
	}

	if m.busy && m.snap.Kind() != workflow.KindProcessing {
		b.WriteString(fmt.Sprintf("\n%s Working...\n", m.spinner.View()))
	}
	if msg := m.snap.ErrorMessage(); msg != "" {
		b.WriteString("\n" + styles.err.Render("Error: "+msg) + "\n")
	}
	if m.notice != "" {
		b.WriteString("\n" + styles.warn.Render(m.notice) + "\n")
	}

	b.WriteString("\n" + m.help.ShortHelpView(m.helpKeys()))
	return b.String()
}

func (m *Model) helpKeys() []key.Binding {
	switch m.snap.Kind() {
	case workflow.KindAuth:
		if _, pending := m.snap.PendingURL(); pending {
			return []key.Binding{m.keys.enter, m.keys.open, m.keys.back, m.keys.kill}
		}
		return []key.Binding{m.keys.client, m.keys.user, m.keys.enter, m.keys.quit}
	case workflow.KindSource:
		return []key.Binding{m.keys.toggle, m.keys.up, m.keys.down, m.keys.enter, m.keys.kill}
	case workflow.KindResults:
		keys := []key.Binding{m.keys.export}
		if m.snap.CanSave() {
			keys = append(keys, m.keys.save)
		}
		if m.snap.Saved() != nil {
			keys = append(keys, m.keys.open)
		}
		return append(keys, m.keys.restart, m.keys.quit)
	}
	return []key.Binding{m.keys.quit}
}

func (m *Model) renderAuth() string {
	if url, pending := m.snap.PendingURL(); pending {
		var b strings.Builder
		b.WriteString("Open this URL and authorize continuum:\n\n")
		b.WriteString(styles.selected.Render(url) + "\n\n")
		if m.waiting {
			b.WriteString(styles.help.Render("Waiting for the browser redirect, or paste it below.") + "\n")
		} else {
			b.WriteString("Then paste the URL you were redirected to:\n")
		}
		b.WriteString(m.redirect.View() + "\n")
		return b.String()
	}

	options := []struct {
		mode models.AuthMode
		text string
	}{
		{models.ClientAuth, "1. Client credentials (browse only)"},
		{models.UserAuth, "2. User authorization (can save playlists)"},
	}

	var b strings.Builder
	b.WriteString("How should continuum connect?\n\n")
	for _, opt := range options {
		if opt.mode == m.authChoice {
			b.WriteString(styles.selected.Render("> "+opt.text) + "\n")
		} else {
			b.WriteString("  " + opt.text + "\n")
		}
	}
	return b.String()
}

func (m *Model) renderSource() string {
	var b strings.Builder
	b.WriteString(styles.label.Render("Connected with "+m.snap.AuthMode.String()+" authorization") + "\n\n")

	for _, mode := range []models.SourceMode{models.PlaylistSource, models.RecommendationsSource} {
		label := " " + mode.String() + " "
		if mode == m.sourceMode {
			b.WriteString(styles.selected.Render("[" + label + "]"))
		} else {
			b.WriteString(" " + label + " ")
		}
	}
	b.WriteString("\n\n")

	b.WriteString(m.sourceMode.Prompt() + ":\n" + m.source.View() + "\n\n")
	b.WriteString("Target length in minutes:\n" + m.minutes.View() + "\n")
	return b.String()
}

func (m *Model) renderProcessing() string {
	st, _ := m.snap.Stage.(workflow.ProcessingStage)
	p := st.Progress

	var b strings.Builder
	b.WriteString(fmt.Sprintf("%s %s\n\n", m.spinner.View(), st.Message))
	b.WriteString(m.progress.ViewAs(p.Fraction()) + "\n")
	if p.Total > 0 {
		b.WriteString(styles.label.Render(fmt.Sprintf("%d/%d tracks analysed", p.Completed, p.Total)) + "\n")
	}
	return b.String()
}

func (m *Model) renderResults() string {
	mix := m.snap.Mix()
	var b strings.Builder
	b.WriteString(styles.ok.Render(fmt.Sprintf("✓ Mix ready: %d tracks, %s", mix.Len(), formatter.FormatDuration(mix.TotalDuration()))) + "\n\n")
	b.WriteString(m.mixList.View() + "\n")
	if saved := m.snap.Saved(); saved != nil {
		b.WriteString("\n" + styles.ok.Render("Saved: ") + saved.URL + "\n")
	}
	return b.String()
}
