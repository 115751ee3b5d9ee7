package cli

import (
	"github.com/charmbracelet/lipgloss"

	"fintrack/internal/app"
	"fintrack/internal/preferences"
)

// Icons.
const (
	SuccessIcon = "✓"
	ErrorIcon   = "✗"
	WarningIcon = "!"
	InfoIcon    = "i"
)

var (
	successColor = lipgloss.Color("#4ECDC4")
	warningColor = lipgloss.Color("#FFE66D")
	errorColor   = lipgloss.Color("#FF6B6B")

	primaryColors = map[preferences.ThemeColor]lipgloss.Color{
		preferences.Blue:   lipgloss.Color("#1976D2"),
		preferences.Purple: lipgloss.Color("#7B1FA2"),
		preferences.Green:  lipgloss.Color("#388E3C"),
	}
)

// Theme holds the styles derived from the user's preferences.
type Theme struct {
	Title   lipgloss.Style
	Header  lipgloss.Style
	Subtle  lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Info    lipgloss.Style
	Income  lipgloss.Style
	Expense lipgloss.Style
}

// NewTheme maps the color and mode preferences onto terminal styles.
func NewTheme(p preferences.Preferences) Theme {
	primary, ok := primaryColors[p.ThemeColor]
	if !ok {
		primary = primaryColors[preferences.Blue]
	}
	subtle := lipgloss.Color("#666666")
	if p.ThemeMode == preferences.Dark {
		subtle = lipgloss.Color("#A0A0A0")
	}

	return Theme{
		Title:   lipgloss.NewStyle().Bold(true).Foreground(primary),
		Header:  lipgloss.NewStyle().Bold(true).Foreground(primary),
		Subtle:  lipgloss.NewStyle().Foreground(subtle),
		Success: lipgloss.NewStyle().Foreground(successColor),
		Warning: lipgloss.NewStyle().Foreground(warningColor),
		Error:   lipgloss.NewStyle().Foreground(errorColor),
		Info:    lipgloss.NewStyle().Foreground(primary),
		Income:  lipgloss.NewStyle().Foreground(successColor),
		Expense: lipgloss.NewStyle().Foreground(errorColor),
	}
}

// Format renders message with the icon and color of level.
func (t Theme) Format(level app.Level, message string) string {
	switch level {
	case app.LevelSuccess:
		return t.Success.Render(SuccessIcon + " " + message)
	case app.LevelError:
		return t.Error.Render(ErrorIcon + " " + message)
	case app.LevelWarning:
		return t.Warning.Render(WarningIcon + " " + message)
	default:
		return t.Info.Render(InfoIcon + " " + message)
	}
}
