package ui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Send       key.Binding
	Up         key.Binding
	Down       key.Binding
	Delete     key.Binding
	SwitchUser key.Binding
	Refresh    key.Binding
	Confirm    key.Binding
	Cancel     key.Binding
	Quit       key.Binding
}

var keys = keyMap{
	Send:       key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "send")),
	Up:         key.NewBinding(key.WithKeys("up"), key.WithHelp("↑", "newer")),
	Down:       key.NewBinding(key.WithKeys("down"), key.WithHelp("↓", "older")),
	Delete:     key.NewBinding(key.WithKeys("ctrl+d"), key.WithHelp("ctrl+d", "delete")),
	SwitchUser: key.NewBinding(key.WithKeys("ctrl+t"), key.WithHelp("ctrl+t", "switch user")),
	Refresh:    key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "refresh")),
	Confirm:    key.NewBinding(key.WithKeys("y", "Y"), key.WithHelp("y", "delete")),
	Cancel:     key.NewBinding(key.WithKeys("n", "N", "esc"), key.WithHelp("n", "cancel")),
	Quit:       key.NewBinding(key.WithKeys("ctrl+c", "esc"), key.WithHelp("esc", "quit")),
}
