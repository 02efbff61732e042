// Package styles provides colour themes and styling for the TUI.
package styles

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme is the colour palette the styles are built from.
type Theme struct {
	Primary    lipgloss.Color // headings and the assistant label
	Secondary  lipgloss.Color // sub-headings and the user label
	Foreground lipgloss.Color
	Muted      lipgloss.Color
	Success    lipgloss.Color
	Warning    lipgloss.Color
	Error      lipgloss.Color
	Border     lipgloss.Color
	Bar        lipgloss.Color // status bar background
}

// DefaultTheme returns the default palette: warm ink on a dark page.
func DefaultTheme() *Theme {
	return &Theme{
		Primary:    lipgloss.Color("#E0A458"),
		Secondary:  lipgloss.Color("#7FB7BE"),
		Foreground: lipgloss.Color("#E8E3D9"),
		Muted:      lipgloss.Color("#8A8378"),
		Success:    lipgloss.Color("#9BC53D"),
		Warning:    lipgloss.Color("#F2C14E"),
		Error:      lipgloss.Color("#E4572E"),
		Border:     lipgloss.Color("#4A443B"),
		Bar:        lipgloss.Color("#24211D"),
	}
}

// Styles holds the lipgloss styles shared by all views.
type Styles struct {
	theme *Theme

	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Normal   lipgloss.Style
	Muted    lipgloss.Style
	Selected lipgloss.Style
	Help     lipgloss.Style

	Error   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style

	InputField lipgloss.Style
	StatusBar  lipgloss.Style
	Border     lipgloss.Style

	// Chat transcript.
	UserTurn      lipgloss.Style
	AssistantTurn lipgloss.Style
	Source        lipgloss.Style
}

// NewStyles builds styles from a theme. A nil theme uses DefaultTheme.
func NewStyles(theme *Theme) *Styles {
	if theme == nil {
		theme = DefaultTheme()
	}
	fg := func(c lipgloss.Color) lipgloss.Style {
		return lipgloss.NewStyle().Foreground(c)
	}
	boxed := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border)

	return &Styles{
		theme: theme,

		Title:    fg(theme.Primary).Bold(true),
		Subtitle: fg(theme.Secondary).Bold(true),
		Normal:   fg(theme.Foreground),
		Muted:    fg(theme.Muted),
		Selected: fg(theme.Bar).Background(theme.Primary).Bold(true),
		Help:     fg(theme.Muted).Italic(true),

		Error:   fg(theme.Error),
		Success: fg(theme.Success),
		Warning: fg(theme.Warning),

		InputField: boxed.Padding(0, 1),
		StatusBar:  fg(theme.Muted).Background(theme.Bar).Padding(0, 1),
		Border:     boxed,

		UserTurn:      fg(theme.Secondary).Bold(true),
		AssistantTurn: fg(theme.Primary).Bold(true),
		Source:        fg(theme.Muted).Italic(true).Underline(true),
	}
}

// DefaultStyles returns styles with the default theme.
func DefaultStyles() *Styles {
	return NewStyles(DefaultTheme())
}

// Theme returns the theme used by these styles.
func (s *Styles) Theme() *Theme {
	return s.theme
}

// Confidence picks the style for an answer confidence in [0, 1]: success
// from 0.7, warning from 0.4, error below.
func (s *Styles) Confidence(score float64) lipgloss.Style {
	switch {
	case score >= 0.7:
		return s.Success
	case score >= 0.4:
		return s.Warning
	default:
		return s.Error
	}
}
