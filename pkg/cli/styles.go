package cli

import "github.com/charmbracelet/lipgloss"

// Theme defines the terminal color scheme.
type Theme struct {
	Primary lipgloss.Color // Questions and headings
	Dim     lipgloss.Color // Hints and secondary text
	Good    lipgloss.Color
	Bad     lipgloss.Color
}

// DefaultTheme is the default bright green theme.
var DefaultTheme = Theme{
	Primary: lipgloss.Color("#00ff9f"),
	Dim:     lipgloss.Color("#6e7681"),
	Good:    lipgloss.Color("#3fb950"),
	Bad:     lipgloss.Color("#f85149"),
}

// Styles holds all styles derived from a theme.
type Styles struct {
	Question lipgloss.Style
	Help     lipgloss.Style
	Success  lipgloss.Style
	Failure  lipgloss.Style
	Label    lipgloss.Style
}

// NewStyles creates styles from a theme. Colors degrade to plain text when
// the output is not a terminal.
func NewStyles(t Theme) Styles {
	return Styles{
		Question: lipgloss.NewStyle().Bold(true).Foreground(t.Primary),
		Help:     lipgloss.NewStyle().Foreground(t.Dim),
		Success:  lipgloss.NewStyle().Bold(true).Foreground(t.Good),
		Failure:  lipgloss.NewStyle().Bold(true).Foreground(t.Bad),
		Label:    lipgloss.NewStyle().Bold(true).Foreground(t.Primary),
	}
}

// PlainStyles renders everything unstyled.
func PlainStyles() Styles {
	s := lipgloss.NewStyle()
	return Styles{Question: s, Help: s, Success: s, Failure: s, Label: s}
}
