package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Toggle  key.Binding
	Reset   key.Binding
	Reroll  key.Binding
	Longer  key.Binding
	Shorter key.Binding
	Help    key.Binding
	Quit    key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Toggle:  key.NewBinding(key.WithKeys(" ", "space", "enter"), key.WithHelp("space", "fight/pause")),
		Reset:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reset")),
		Reroll:  key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new pokemon")),
		Longer:  key.NewBinding(key.WithKeys("+", "=", "up", "k"), key.WithHelp("+", "5 min more")),
		Shorter: key.NewBinding(key.WithKeys("-", "down", "j"), key.WithHelp("-", "5 min less")),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c", "esc"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.Reroll, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Toggle, k.Reset, k.Reroll},
		{k.Longer, k.Shorter},
		{k.Help, k.Quit},
	}
}
