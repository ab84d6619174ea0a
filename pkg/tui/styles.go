package tui

import "github.com/charmbracelet/lipgloss"

// Styles holds the lipgloss styles the series browser renders with.
type Styles struct {
	Primary lipgloss.Color
	Muted   lipgloss.Color
	Error   lipgloss.Color

	Header       lipgloss.Style
	Search       lipgloss.Style
	Card         lipgloss.Style
	SelectedCard lipgloss.Style
	CardTitle    lipgloss.Style
	MutedText    lipgloss.Style
	ErrorBox     lipgloss.Style
	Empty        lipgloss.Style
	Detail       lipgloss.Style
	Path         lipgloss.Style
	Status       lipgloss.Style
}

func NewStyles() *Styles {
	primary := lipgloss.Color("#e23636")
	muted := lipgloss.Color("#6c7086")
	errorColor := lipgloss.Color("#f38ba8")
	background := lipgloss.Color("#1e1e2e")

	return &Styles{
		Primary: primary,
		Muted:   muted,
		Error:   errorColor,

		Header: lipgloss.NewStyle().
			Background(primary).
			Foreground(background).
			Bold(true).
			Padding(0, 1).
			MarginBottom(1),

		Search: lipgloss.NewStyle().
			MarginBottom(1),

		Card: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(muted).
			Padding(0, 1),

		SelectedCard: lipgloss.NewStyle().
			Border(lipgloss.ThickBorder()).
			BorderForeground(primary).
			Padding(0, 1),

		CardTitle: lipgloss.NewStyle().
			Bold(true),

		MutedText: lipgloss.NewStyle().
			Foreground(muted),

		ErrorBox: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(errorColor).
			Foreground(errorColor).
			Padding(1, 2),

		Empty: lipgloss.NewStyle().
			Foreground(muted).
			Italic(true).
			Padding(1, 2),

		Detail: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(primary).
			Padding(1, 2),

		Path: lipgloss.NewStyle().
			Foreground(primary),

		Status: lipgloss.NewStyle().
			MarginTop(1),
	}
}
