package ui

import (
	"github.com/charmbracelet/lipgloss"
)

// Styles contains all the style definitions for the UI
type Styles struct {
	Title         lipgloss.Style
	Dim           lipgloss.Style
	Status        lipgloss.Style
	TranscriptBox lipgloss.Style
	Prompt        lipgloss.Style
	Help          lipgloss.Style
	Main          lipgloss.Style
	Connected     lipgloss.Style
	Disconnected  lipgloss.Style
	StatusError   lipgloss.Style
	Match         lipgloss.Style
}

// NewStyles creates a new Styles instance with default values
func NewStyles() *Styles {
	return &Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("99")).
			MarginBottom(1),
		Dim: lipgloss.NewStyle().Faint(true),
		Status: lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			MarginTop(1),
		TranscriptBox: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			Padding(0, 1).
			Width(76).
			BorderForeground(lipgloss.Color("241")),
		Prompt:       lipgloss.NewStyle().Foreground(lipgloss.Color("214")), // yellow
		Help:         lipgloss.NewStyle().Faint(true),
		Main:         lipgloss.NewStyle().Padding(1, 2),
		Connected:    lipgloss.NewStyle().Foreground(lipgloss.Color("78")),  // green
		Disconnected: lipgloss.NewStyle().Foreground(lipgloss.Color("241")), // gray
		StatusError:  lipgloss.NewStyle().Foreground(lipgloss.Color("203")), // red
		Match:        lipgloss.NewStyle().Foreground(lipgloss.Color("226")).Bold(true),
	}
}
