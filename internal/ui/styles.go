// Package ui holds uber's user-facing output: a small set of named lipgloss
// styles and the Reporter that prints diagnostics with them.
package ui

import "github.com/charmbracelet/lipgloss"

// Palette. Adaptive colors keep the output readable on light and dark
// terminals.
var (
	ColorError   = lipgloss.AdaptiveColor{Light: "#DC2626", Dark: "#F87171"}
	ColorWarning = lipgloss.AdaptiveColor{Light: "#D97706", Dark: "#FBBF24"}
	ColorSuccess = lipgloss.AdaptiveColor{Light: "#16A34A", Dark: "#4ADE80"}
	ColorMuted   = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#9CA3AF"}
	ColorPrimary = lipgloss.AdaptiveColor{Light: "#5A56E0", Dark: "#7B78FF"}
)

// Styles is the presentation configuration shared by every command. It is
// built once and passed to whatever prints.
type Styles struct {
	Error   lipgloss.Style
	Warning lipgloss.Style
	Info    lipgloss.Style
	Success lipgloss.Style
	Label   lipgloss.Style
	Muted   lipgloss.Style
}

// DefaultStyles returns the standard styles. INFO lines use the warning
// color, matching the yellow of the tool's earlier shell output.
func DefaultStyles() Styles {
	return Styles{
		Error:   lipgloss.NewStyle().Foreground(ColorError),
		Warning: lipgloss.NewStyle().Foreground(ColorWarning).Bold(true),
		Info:    lipgloss.NewStyle().Foreground(ColorWarning),
		Success: lipgloss.NewStyle().Foreground(ColorSuccess),
		Label:   lipgloss.NewStyle().Foreground(ColorPrimary).Bold(true),
		Muted:   lipgloss.NewStyle().Foreground(ColorMuted),
	}
}

// PlainStyles returns styles that render text unchanged.
func PlainStyles() Styles {
	plain := lipgloss.NewStyle()
	return Styles{Error: plain, Warning: plain, Info: plain, Success: plain, Label: plain, Muted: plain}
}
