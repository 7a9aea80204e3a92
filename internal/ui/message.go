package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/continuum/internal/workflow"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgSnapshot MsgKind = iota
	MsgIntentDone
	MsgRedirectCaptured
	MsgExported
)

// intentResult is the payload of [MsgIntentDone].
type intentResult struct {
	name string
	snap workflow.Snapshot
	err  error
}

// snapshotMsg is the constructor for [MsgSnapshot]
func snapshotMsg(snap workflow.Snapshot) Msg {
	return Msg{kind: MsgSnapshot, data: snap}
}

// intentDoneMsg is the constructor for [MsgIntentDone]
func intentDoneMsg(name string, snap workflow.Snapshot, err error) Msg {
	return Msg{kind: MsgIntentDone, data: intentResult{name, snap, err}}
}

// redirectCapturedMsg is the constructor for [MsgRedirectCaptured]
func redirectCapturedMsg(url string, err error) Msg {
	return Msg{
		kind: MsgRedirectCaptured,
		data: struct {
			url string
			err error
		}{url, err},
	}
}

// exportedMsg is the constructor for [MsgExported]
func exportedMsg(path string, err error) Msg {
	return Msg{
		kind: MsgExported,
		data: struct {
			path string
			err  error
		}{path, err},
	}
}
