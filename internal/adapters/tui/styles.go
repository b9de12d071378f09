package tui

import "github.com/charmbracelet/lipgloss"

var (
	colorPrimary  = lipgloss.Color("#4CAF50")
	colorInfo     = lipgloss.Color("#2196F3")
	colorWarning  = lipgloss.Color("#FF9800")
	colorDanger   = lipgloss.Color("#F44336")
	colorMuted    = lipgloss.Color("#9E9E9E")
	colorSelected = lipgloss.Color("#FFFFFF")
)

type styles struct {
	title    lipgloss.Style
	subtitle lipgloss.Style
	label    lipgloss.Style
	focused  lipgloss.Style
	muted    lipgloss.Style
	errorMsg lipgloss.Style
	okMsg    lipgloss.Style
	box      lipgloss.Style
	big      lipgloss.Style
	button   lipgloss.Style
	cursor   lipgloss.Style
	accepted lipgloss.Style
	rejected lipgloss.Style
	help     lipgloss.Style
}

func defaultStyles() styles {
	return styles{
		title:    lipgloss.NewStyle().Bold(true).Foreground(colorSelected).Background(colorPrimary).Padding(0, 1),
		subtitle: lipgloss.NewStyle().Foreground(colorMuted).Italic(true),
		label:    lipgloss.NewStyle().Bold(true),
		focused:  lipgloss.NewStyle().Bold(true).Foreground(colorInfo),
		muted:    lipgloss.NewStyle().Foreground(colorMuted),
		errorMsg: lipgloss.NewStyle().Bold(true).Foreground(colorDanger),
		okMsg:    lipgloss.NewStyle().Bold(true).Foreground(colorPrimary),
		box:      lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorInfo).Padding(0, 1),
		big:      lipgloss.NewStyle().Bold(true).Foreground(colorInfo),
		button:   lipgloss.NewStyle().Padding(0, 1),
		cursor:   lipgloss.NewStyle().Padding(0, 1).Bold(true).Foreground(colorSelected).Background(colorInfo),
		accepted: lipgloss.NewStyle().Foreground(colorPrimary),
		rejected: lipgloss.NewStyle().Foreground(colorDanger).Bold(true),
		help:     lipgloss.NewStyle().Foreground(colorWarning),
	}
}
