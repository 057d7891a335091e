package monitor

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the dashboard keybindings.
type KeyMap struct {
	Hotter  key.Binding
	Colder  key.Binding
	Save    key.Binding
	Pause   key.Binding
	Refresh key.Binding
	Help    key.Binding
	Quit    key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Hotter: key.NewBinding(
			key.WithKeys("up", "k", "+"),
			key.WithHelp("↑/k", "hotter"),
		),
		Colder: key.NewBinding(
			key.WithKeys("down", "j", "-"),
			key.WithHelp("↓/j", "colder"),
		),
		Save: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "save to flash"),
		),
		Pause: key.NewBinding(
			key.WithKeys("p", " "),
			key.WithHelp("p", "pause"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c", "esc"),
			key.WithHelp("q", "quit"),
		),
	}
}

func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Hotter, k.Colder, k.Pause, k.Help, k.Quit}
}

func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Hotter, k.Colder, k.Save},
		{k.Pause, k.Refresh, k.Help, k.Quit},
	}
}
