package monitor

import "github.com/charmbracelet/lipgloss"

type Styles struct {
	App      lipgloss.Style
	Title    lipgloss.Style
	TitleBar lipgloss.Style

	Label lipgloss.Style
	Value lipgloss.Style
	Hot   lipgloss.Style
	Muted lipgloss.Style

	Online  lipgloss.Style
	Offline lipgloss.Style
	Error   lipgloss.Style
	Warning lipgloss.Style

	Graph lipgloss.Style
	Help  lipgloss.Style
}

func DefaultStyles() Styles {
	subtle := lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#383838"}
	muted := lipgloss.AdaptiveColor{Light: "#9B9B9B", Dark: "#626262"}
	text := lipgloss.AdaptiveColor{Light: "#343433", Dark: "#C1C6B2"}
	orange := lipgloss.AdaptiveColor{Light: "#E8590C", Dark: "#FF922B"}
	green := lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}

	return Styles{
		App: lipgloss.NewStyle().Padding(1, 2),
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(orange).
			Padding(0, 1),
		TitleBar: lipgloss.NewStyle().
			Foreground(text).
			Background(subtle).
			Padding(0, 1).
			MarginBottom(1),

		Label: lipgloss.NewStyle().Foreground(muted).Width(16),
		Value: lipgloss.NewStyle().Foreground(text),
		Hot:   lipgloss.NewStyle().Foreground(orange).Bold(true),
		Muted: lipgloss.NewStyle().Foreground(muted),

		Online:  lipgloss.NewStyle().Foreground(green).Bold(true),
		Offline: lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Bold(true),
		Error:   lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")),
		Warning: lipgloss.NewStyle().Foreground(lipgloss.Color("#FFCC00")),

		Graph: lipgloss.NewStyle().Foreground(orange).MarginTop(1),
		Help:  lipgloss.NewStyle().Foreground(muted).MarginTop(1),
	}
}
