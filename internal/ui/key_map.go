package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	up      key.Binding
	down    key.Binding
	enter   key.Binding
	back    key.Binding
	toggle  key.Binding
	client  key.Binding
	user    key.Binding
	open    key.Binding
	export  key.Binding
	save    key.Binding
	restart key.Binding
	quit    key.Binding
	kill    key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up:      key.NewBinding(key.WithKeys("up"), key.WithHelp("↑", "up")),
		down:    key.NewBinding(key.WithKeys("down"), key.WithHelp("↓", "down")),
		enter:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "submit")),
		back:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		toggle:  key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "switch source")),
		client:  key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "client")),
		user:    key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "user")),
		open:    key.NewBinding(key.WithKeys("ctrl+o"), key.WithHelp("ctrl+o", "open browser")),
		export:  key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "export")),
		save:    key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "save")),
		restart: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "restart")),
		quit:    key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
		kill:    key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.kill}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.client, k.user, k.enter, k.open, k.back},
		{k.up, k.down, k.toggle},
		{k.export, k.save, k.restart, k.quit},
	}
}
